package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath string

	// HTTP server
	Port          string
	BaseUrl       string
	SessionSecret string

	// put.io API
	PutioAPIURL        string
	PutioClientID      string
	PutioClientSecret  string
	RequestTimeout     int
	ProviderMaxRetries int

	// Crawler
	CrawlMaxDepth    int
	CrawlConcurrency int
	MediaTypesFile   string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// GetRequestTimeout returns the provider request timeout as time.Duration
func (c *Cfg) GetRequestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// RedirectURL is the OAuth callback registered with put.io.
func (c *Cfg) RedirectURL() string {
	return c.PublicURL() + "/register"
}

// PublicURL returns the externally visible origin of the service.
func (c *Cfg) PublicURL() string {
	if c.BaseUrl != "" {
		return c.BaseUrl
	}
	return "http://localhost:" + c.Port
}

package putio

import (
	"strings"

	"golang.org/x/oauth2"
)

// OAuthConfig describes the put.io authorization-code flow for this app.
func OAuthConfig(apiURL, clientID, clientSecret, redirectURL string) *oauth2.Config {
	apiURL = strings.TrimRight(apiURL, "/")

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   apiURL + "/oauth2/authenticate",
			TokenURL:  apiURL + "/oauth2/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

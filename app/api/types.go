package api

import (
	"context"

	"github.com/lysyi3m/putcast/app/database"
	"github.com/lysyi3m/putcast/app/feed"
	"github.com/lysyi3m/putcast/app/putio"
	"golang.org/x/oauth2"
)

type GeneratorInterface interface {
	Run(doc feed.Document) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// AccountProvider is the part of the put.io API the web UI calls directly.
type AccountProvider interface {
	ListFolder(ctx context.Context, folderID, token string) ([]putio.File, error)
	AccountInfo(ctx context.Context, token string) (*putio.AccountInfo, error)
}

var _ AccountProvider = (*putio.Client)(nil)

// OAuthConfig is the authorization-code flow used by /auth and /register.
type OAuthConfig interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

var _ OAuthConfig = (*oauth2.Config)(nil)

type Handler struct {
	service   *feed.Service
	feedRepo  database.FeedRepository
	generator GeneratorInterface
	provider  AccountProvider
	oauth     OAuthConfig
	publicURL string
}

// feedView is the JSON and template shape of a stored feed.
type feedView struct {
	Token          string   `json:"feed_token"`
	Name           string   `json:"name"`
	URL            string   `json:"url"`
	Audio          bool     `json:"audio"`
	Video          bool     `json:"video"`
	PreferOriginal bool     `json:"org"`
	FolderIDs      []string `json:"items"`
}

package database

import (
	"time"
)

// Feed is a user-owned mapping of put.io folders to an RSS feed.
type Feed struct {
	Token          string // Public feed token
	UserToken      string // Owner's put.io access token
	Name           string
	Audio          bool
	Video          bool
	PreferOriginal bool // Serve original containers instead of mp4 renditions
	CreatedAt      time.Time
}

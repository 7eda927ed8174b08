package feed

import (
	"github.com/lysyi3m/putcast/app/database"
)

// Document is an assembled feed ready to be rendered as RSS.
type Document struct {
	Title   string
	Link    string // URL the feed was fetched from
	Entries []Entry
}

// NewFeed is the user input for creating a feed.
type NewFeed struct {
	Name           string
	FolderIDs      []string
	Audio          bool
	Video          bool
	PreferOriginal bool
}

// Summary describes a stored feed for its owner.
type Summary struct {
	database.Feed
	FolderIDs []string
	URL       string
}

// Assemble builds the feed document. Entry order is preserved.
func Assemble(feed database.Feed, entries []Entry, selfURL string) Document {
	if entries == nil {
		entries = []Entry{}
	}

	return Document{
		Title:   feed.Name,
		Link:    selfURL,
		Entries: entries,
	}
}

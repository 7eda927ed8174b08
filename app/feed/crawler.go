package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/putcast/app/database"
	"github.com/lysyi3m/putcast/app/putio"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultMaxDepth    = 32
	DefaultConcurrency = 1
)

// Provider lists folders and builds authenticated download links.
type Provider interface {
	ListFolder(ctx context.Context, folderID, token string) ([]putio.File, error)
	DownloadURL(file putio.File, token string) string
	MP4DownloadURL(file putio.File, token string) string
}

var _ Provider = (*putio.Client)(nil)

// Entry is one RSS item produced from a put.io file.
type Entry struct {
	FileID      int64
	Title       string
	Size        int64
	ContentType string
	PubDate     string // RFC 2822, empty when put.io sent an unreadable timestamp
	PublishedAt time.Time
	Link        string
	Kind        LinkKind
}

type Crawler struct {
	provider    Provider
	classifier  *Classifier
	maxDepth    int
	concurrency int
}

type CrawlerOption func(*Crawler)

// WithMaxDepth limits how deep below a root folder the crawler descends.
func WithMaxDepth(depth int) CrawlerOption {
	return func(c *Crawler) { c.maxDepth = depth }
}

// WithConcurrency allows up to n folder listings in flight per crawl.
func WithConcurrency(n int) CrawlerOption {
	return func(c *Crawler) { c.concurrency = n }
}

func NewCrawler(provider Provider, classifier *Classifier, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		provider:    provider,
		classifier:  classifier,
		maxDepth:    DefaultMaxDepth,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxDepth < 1 {
		c.maxDepth = DefaultMaxDepth
	}
	if c.concurrency < 1 {
		c.concurrency = DefaultConcurrency
	}
	return c
}

// CrawlFeed concatenates the entries of every root in configuration order.
// Any listing failure aborts the whole crawl.
func (c *Crawler) CrawlFeed(ctx context.Context, feed database.Feed, roots []string) ([]Entry, error) {
	start := time.Now()
	defer func() { crawlDuration.Observe(time.Since(start).Seconds()) }()

	entries := []Entry{}
	for _, root := range roots {
		rootEntries, err := c.Crawl(ctx, feed, root)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rootEntries...)
	}

	slog.Debug("Feed crawled", "feed", feed.Token, "roots", len(roots), "entries", len(entries), "duration", time.Since(start))

	return entries, nil
}

// Crawl walks one root folder depth-first. Entries follow put.io's listing
// order, with each subfolder's entries in place of the subfolder.
func (c *Crawler) Crawl(ctx context.Context, feed database.Feed, rootFolderID string) ([]Entry, error) {
	w := &walk{
		Crawler: c,
		token:   feed.UserToken,
		flags: MediaFlags{
			Audio:          feed.Audio,
			Video:          feed.Video,
			PreferOriginal: feed.PreferOriginal,
		},
	}
	if c.concurrency > 1 {
		w.sem = semaphore.NewWeighted(int64(c.concurrency))
	}

	entries, err := w.folder(ctx, rootFolderID, 0)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// walk is the state of a single crawl.
type walk struct {
	*Crawler
	token string
	flags MediaFlags
	sem   *semaphore.Weighted // nil for sequential crawls
}

func (w *walk) folder(ctx context.Context, folderID string, depth int) ([]Entry, error) {
	if depth > w.maxDepth {
		return nil, fmt.Errorf("%w: folder %s is nested more than %d levels deep", ErrMaxDepthExceeded, folderID, w.maxDepth)
	}

	files, err := w.list(ctx, folderID)
	if err != nil {
		return nil, err
	}

	// One slot per child keeps subtree results in listing order.
	slots := make([][]Entry, len(files))

	if w.sem == nil {
		for i, file := range files {
			if !file.IsDir() {
				slots[i] = w.entries(file)
				continue
			}
			sub, err := w.folder(ctx, file.FolderID(), depth+1)
			if err != nil {
				return nil, err
			}
			slots[i] = sub
		}
		return lo.Flatten(slots), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		if !file.IsDir() {
			slots[i] = w.entries(file)
			continue
		}
		g.Go(func() error {
			sub, err := w.folder(gctx, file.FolderID(), depth+1)
			if err != nil {
				return err
			}
			slots[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return lo.Flatten(slots), nil
}

func (w *walk) list(ctx context.Context, folderID string) ([]putio.File, error) {
	if w.sem != nil {
		if err := w.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer w.sem.Release(1)
	}

	folderListings.Inc()
	return w.provider.ListFolder(ctx, folderID, w.token)
}

func (w *walk) entries(file putio.File) []Entry {
	decisions := w.classifier.Classify(file, w.flags)
	if len(decisions) == 0 {
		return nil
	}

	var pubDate string
	published, err := file.CreatedTime()
	if err != nil {
		slog.Warn("Unreadable creation time, omitting pubDate", "file_id", file.ID, "created_at", file.CreatedAt, "error", err)
	} else {
		pubDate = published.Format(time.RFC1123Z)
	}

	entries := make([]Entry, 0, len(decisions))
	for _, decision := range decisions {
		link := w.provider.DownloadURL(file, w.token)
		if decision.Kind.Transcoded() {
			link = w.provider.MP4DownloadURL(file, w.token)
		}

		entries = append(entries, Entry{
			FileID:      file.ID,
			Title:       file.Name,
			Size:        file.Size,
			ContentType: file.ContentType,
			PubDate:     pubDate,
			PublishedAt: published,
			Link:        link,
			Kind:        decision.Kind,
		})
		entriesEmitted.WithLabelValues(decision.Kind.String()).Inc()
	}

	return entries
}

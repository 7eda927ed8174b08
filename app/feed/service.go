package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/putcast/app/database"
	"github.com/lysyi3m/putcast/app/putio"
	"github.com/samber/lo"
)

// Service implements feed management and feed document building on top of
// the repository and the crawler.
type Service struct {
	repo      database.FeedRepository
	crawler   *Crawler
	publicURL string
}

func NewService(repo database.FeedRepository, crawler *Crawler, publicURL string) *Service {
	return &Service{
		repo:      repo,
		crawler:   crawler,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// CreateFeed stores a new feed owned by credential under a fresh token.
func (s *Service) CreateFeed(ctx context.Context, credential string, input NewFeed) (*database.Feed, error) {
	if credential == "" {
		return nil, putio.ErrUnauthorized
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidFeed)
	}

	folderIDs := NormalizeFolderIDs(input.FolderIDs)
	if len(folderIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one folder is required", ErrInvalidFeed)
	}

	token, err := GenerateToken(ctx, s.repo.FeedTokenExists)
	if err != nil {
		return nil, err
	}

	feed := database.Feed{
		Token:          token,
		UserToken:      credential,
		Name:           name,
		Audio:          input.Audio,
		Video:          input.Video,
		PreferOriginal: input.PreferOriginal,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.CreateFeed(ctx, feed, folderIDs); err != nil {
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}

	slog.Info("Feed created", "feed", feed.Token, "roots", len(folderIDs), "audio", feed.Audio, "video", feed.Video, "org", feed.PreferOriginal)

	return &feed, nil
}

// DeleteFeed removes a feed owned by credential. Deleting an unknown token is a no-op.
func (s *Service) DeleteFeed(ctx context.Context, credential, token string) error {
	if credential == "" {
		return putio.ErrUnauthorized
	}

	feed, err := s.repo.GetFeed(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to load feed: %w", err)
	}
	if feed == nil {
		return nil
	}
	if feed.UserToken != credential {
		return ErrForbidden
	}

	if err := s.repo.DeleteFeed(ctx, token); err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}

	slog.Info("Feed deleted", "feed", token)
	return nil
}

// ListFeeds returns the feeds owned by credential with their roots and public URLs.
func (s *Service) ListFeeds(ctx context.Context, credential string) ([]Summary, error) {
	if credential == "" {
		return nil, putio.ErrUnauthorized
	}

	feeds, err := s.repo.ListFeedsByOwner(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	summaries := make([]Summary, 0, len(feeds))
	for _, feed := range feeds {
		roots, err := s.repo.ListRoots(ctx, feed.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to list roots of feed %s: %w", feed.Token, err)
		}
		summaries = append(summaries, Summary{
			Feed:      feed,
			FolderIDs: roots,
			URL:       s.FeedURL(feed),
		})
	}

	return summaries, nil
}

// FeedURL is the public RSS address of a feed.
func (s *Service) FeedURL(feed database.Feed) string {
	return fmt.Sprintf("%s/feed/%s/%s", s.publicURL, feed.Token, Slug(feed.Name))
}

// BuildDocument crawls every root of the feed identified by token. It fails
// with ErrFeedNotFound for unknown tokens and with the provider's error when
// any folder listing fails; no partial document is returned.
func (s *Service) BuildDocument(ctx context.Context, token, selfURL string) (Document, error) {
	doc, err := s.buildDocument(ctx, token, selfURL)

	switch {
	case err == nil:
		feedFetches.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrFeedNotFound):
		feedFetches.WithLabelValues("not_found").Inc()
	default:
		feedFetches.WithLabelValues("error").Inc()
	}

	return doc, err
}

func (s *Service) buildDocument(ctx context.Context, token, selfURL string) (Document, error) {
	feed, err := s.repo.GetFeed(ctx, token)
	if err != nil {
		return Document{}, fmt.Errorf("failed to load feed: %w", err)
	}
	if feed == nil {
		return Document{}, ErrFeedNotFound
	}

	roots, err := s.repo.ListRoots(ctx, token)
	if err != nil {
		return Document{}, fmt.Errorf("failed to load feed roots: %w", err)
	}

	entries, err := s.crawler.CrawlFeed(ctx, *feed, roots)
	if err != nil {
		return Document{}, err
	}

	return Assemble(*feed, entries, selfURL), nil
}

// NormalizeFolderIDs trims ids, drops empty ones and removes repeats while
// keeping the first occurrence's position.
func NormalizeFolderIDs(ids []string) []string {
	return lo.Uniq(lo.Compact(lo.Map(ids, func(id string, _ int) string {
		return strings.TrimSpace(id)
	})))
}

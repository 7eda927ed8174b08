package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

var feedColumns = []string{"feed_token", "user_token", "name", "audio", "video", "org", "created_at"}

// SQLiteFeedRepository handles database operations for feeds and their folder roots
type SQLiteFeedRepository struct {
	db *DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *DB) *SQLiteFeedRepository {
	return &SQLiteFeedRepository{db: db}
}

// CreateFeed stores a feed and its ordered folder roots in one transaction.
func (r *SQLiteFeedRepository) CreateFeed(ctx context.Context, feed Feed, folderIDs []string) error {
	if feed.CreatedAt.IsZero() {
		feed.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("feeds").Cols(feedColumns...).Values(
		feed.Token, feed.UserToken, feed.Name, feed.Audio, feed.Video, feed.PreferOriginal, feed.CreatedAt.Unix())
	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert feed: %w", err)
	}

	if len(folderIDs) > 0 {
		ib = sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto("items").Cols("feed_token", "folder_id", "position")
		for i, folderID := range folderIDs {
			ib.Values(feed.Token, folderID, i)
		}
		query, args = ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert feed items: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feed: %w", err)
	}

	return nil
}

// GetFeed retrieves a feed by its token. It returns nil when no feed matches.
func (r *SQLiteFeedRepository) GetFeed(ctx context.Context, token string) (*Feed, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(feedColumns...).From("feeds").Where(sb.Equal("feed_token", token))
	query, args := sb.Build()

	feed, err := scanFeed(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

// ListRoots returns the folder ids of a feed in configuration order.
func (r *SQLiteFeedRepository) ListRoots(ctx context.Context, token string) ([]string, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("folder_id").From("items").Where(sb.Equal("feed_token", token)).OrderBy("position", "id").Asc()
	query, args := sb.Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed roots: %w", err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var folderID string
		if err := rows.Scan(&folderID); err != nil {
			return nil, fmt.Errorf("failed to scan feed root: %w", err)
		}
		roots = append(roots, folderID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed roots: %w", err)
	}

	return roots, nil
}

// FeedTokenExists reports whether a feed with the given token is stored.
func (r *SQLiteFeedRepository) FeedTokenExists(ctx context.Context, token string) (bool, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("1").From("feeds").Where(sb.Equal("feed_token", token)).Limit(1)
	query, args := sb.Build()

	var one int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check feed token: %w", err)
	}

	return true, nil
}

// ListFeedsByOwner returns the feeds created with the given access token, oldest first.
func (r *SQLiteFeedRepository) ListFeedsByOwner(ctx context.Context, userToken string) ([]Feed, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(feedColumns...).From("feeds").Where(sb.Equal("user_token", userToken)).OrderBy("created_at", "feed_token").Asc()
	query, args := sb.Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// DeleteFeed removes a feed together with its folder roots.
func (r *SQLiteFeedRepository) DeleteFeed(ctx context.Context, token string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"items", "feeds"} {
		db := sqlbuilder.SQLite.NewDeleteBuilder()
		db.DeleteFrom(table).Where(db.Equal("feed_token", token))
		query, args := db.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feed deletion: %w", err)
	}

	return nil
}

// GetFeedCount returns the total number of feeds
func (r *SQLiteFeedRepository) GetFeedCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	var feed Feed
	var createdAt int64
	err := row.Scan(
		&feed.Token, &feed.UserToken, &feed.Name,
		&feed.Audio, &feed.Video, &feed.PreferOriginal, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	feed.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &feed, nil
}

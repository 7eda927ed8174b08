package database

import "context"

type FeedRepository interface {
	CreateFeed(ctx context.Context, feed Feed, folderIDs []string) error
	GetFeed(ctx context.Context, token string) (*Feed, error)
	ListRoots(ctx context.Context, token string) ([]string, error)
	FeedTokenExists(ctx context.Context, token string) (bool, error)
	ListFeedsByOwner(ctx context.Context, userToken string) ([]Feed, error)
	DeleteFeed(ctx context.Context, token string) error
	GetFeedCount(ctx context.Context) (int, error)
}

var _ FeedRepository = (*SQLiteFeedRepository)(nil)

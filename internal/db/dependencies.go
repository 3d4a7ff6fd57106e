package db

import (
	"context"
	"time"
)

type Client interface {
	Close() error

	GetBan(ctx context.Context, fingerprint string) (*BanRecord, error)
	UpsertBan(ctx context.Context, ban *BanRecord) error
	DeleteBan(ctx context.Context, fingerprint string) (bool, error)
	DeleteExpiredBans(ctx context.Context, now time.Time) (int, error)

	GetRestriction(ctx context.Context, fingerprint string) (*RestrictionRecord, error)
	UpsertRestriction(ctx context.Context, restriction *RestrictionRecord) error
	DeleteRestriction(ctx context.Context, fingerprint string) (bool, error)

	CreateReport(ctx context.Context, report *Report) error
	HasReport(ctx context.Context, postID, reporterID string) (bool, error)
	IncrementReportCount(ctx context.Context, postID string) (int, error)
	MarkPostRemoved(ctx context.Context, postID string) (bool, error)

	GetUserFlag(ctx context.Context, actorID string) (*UserFlag, error)
	UpsertUserFlag(ctx context.Context, flag *UserFlag) error

	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	GetPostsByActor(ctx context.Context, actorID string) ([]*Post, error)
	DeletePost(ctx context.Context, id string) error
	CountPostEngagement(ctx context.Context, postID string) (int, error)
	CreateComment(ctx context.Context, comment *Comment) error
}

// Package storage contains a storage interface.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/soundscroll/orpheus/internal/entities"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound ...
var ErrNotFound = fmt.Errorf("not found")

// Storage provides methods for interacting with database.
type Storage interface {
	ListPosts(ctx context.Context, p *ListPostsParams) ([]*entities.Post, error)
	CreatePost(ctx context.Context, p *entities.Post) error
	GetPost(ctx context.Context, id string) (*entities.Post, error)

	SetLike(ctx context.Context, postID, userID string, timestamp time.Time) error
	UnsetLike(ctx context.Context, postID, userID string) error
	ListLikes(ctx context.Context, p *ListLikesParams) ([]*entities.Like, error)

	CreateComment(ctx context.Context, c *entities.Comment) error
	GetCommentStats(ctx context.Context, recentSince time.Time, postID ...string) (map[string]CommentStats, error)

	GetEngagedTrackIDs(ctx context.Context, userID string, since time.Time) ([]string, error)
	GetTrackEngagements(ctx context.Context, since time.Time, trackID ...string) ([]*TrackEngagement, error)

	GetTrack(ctx context.Context, id string) (*entities.Track, error)
	UpsertTracks(ctx context.Context, tracks ...*entities.Track) error
}

// ListPostsParams ...
// Posts are always ordered by created_at descending.
type ListPostsParams struct {
	Visibility   *entities.Visibility
	Type         *entities.PostType
	TrackIDs     []string
	CreatedAfter *time.Time
	Limit        uint16
}

// ListLikesParams ...
type ListLikesParams struct {
	PostIDs      []string
	LikedBy      *string
	CreatedAfter *time.Time
}

// CommentStats holds total and recent comment counts for a post.
type CommentStats struct {
	Total  uint32
	Recent uint32
}

// TrackEngagement is a single user's like or repost touching a track.
type TrackEngagement struct {
	UserID  string
	TrackID string
}

// Package feed contains feed ranking and orchestration.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/soundscroll/orpheus/internal/entities"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

// ErrAnonymous returned when an operation requires an authenticated user.
var ErrAnonymous = errors.New("anonymous user")

// Service is the feed surface consumed by the transport layer.
type Service interface {
	Fetch(ctx context.Context, userID string, policy Policy) (*Snapshot, error)

	ToggleLike(ctx context.Context, userID, postID string) (*Snapshot, error)
	AddComment(ctx context.Context, userID, postID, text string) (*Snapshot, error)

	Repost(ctx context.Context, userID, originalPostID, text string) (*entities.Post, error)
	CreateClip(ctx context.Context, userID, trackID string, startMs int64, text string) (*entities.Post, error)

	SearchTracks(ctx context.Context, query string) ([]*entities.Track, error)
}

// Snapshot is a published feed ordering. An empty snapshot is a valid
// terminal state.
type Snapshot struct {
	Posts     []*entities.RankedPost
	Liked     map[string]bool
	Policy    Policy
	FetchedAt time.Time
}

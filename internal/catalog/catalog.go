// Package catalog contains interface of external music catalog.
package catalog

import (
	"context"
	"errors"

	"github.com/soundscroll/orpheus/internal/entities"
)

//go:generate mockgen -destination=./mock/catalog.go -package=mock -source=catalog.go

// ErrTrackNotFound returned when catalog has no track with requested id.
var ErrTrackNotFound = errors.New("track not found")

// Provider provides tracks from an external music catalog.
// All calls are fallible, callers are expected to degrade on errors.
type Provider interface {
	GetRandomTracks(ctx context.Context, count int) ([]*entities.Track, error)
	SearchTracks(ctx context.Context, query string) ([]*entities.Track, error)
	GetTrack(ctx context.Context, id string) (*entities.Track, error)
}

// Package neighbors computes taste neighbors from shared listening behaviour.
package neighbors

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/soundscroll/orpheus/internal/storage"
)

var log = logrus.WithField("package", "neighbors")

const (
	// DefaultLookback bounds the engagement window considered for neighbor discovery.
	DefaultLookback = 30 * 24 * time.Hour
	// DefaultOverlapThreshold is the minimum number of distinct shared tracks.
	// Rejects coincidental single-track overlap.
	DefaultOverlapThreshold = 3
)

// Finder ...
type Finder struct {
	s storage.Storage

	lookback  time.Duration
	threshold int
}

// Option overrides a tuning constant of the finder.
type Option func(*Finder)

// WithLookback ...
func WithLookback(d time.Duration) Option {
	return func(f *Finder) { f.lookback = d }
}

// WithOverlapThreshold ...
func WithOverlapThreshold(n int) Option {
	return func(f *Finder) { f.threshold = n }
}

// New creates new instance of Finder.
func New(s storage.Storage, opts ...Option) *Finder {
	f := &Finder{
		s:         s,
		lookback:  DefaultLookback,
		threshold: DefaultOverlapThreshold,
	}

	for _, o := range opts {
		o(f)
	}

	return f
}

// Find returns the set of users whose recent likes and reposts overlap the
// given user's on enough distinct tracks. Missing or empty upstream data
// degrades to an empty set, never an error.
func (f *Finder) Find(ctx context.Context, userID string, now time.Time) map[string]struct{} {
	out := map[string]struct{}{}

	if userID == "" {
		return out
	}

	since := now.Add(-f.lookback)

	seed, err := f.s.GetEngagedTrackIDs(ctx, userID, since)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("failed to get seed tracks")
		return out
	}

	// Cold start: no recent engagement means no personalization boost.
	if len(seed) == 0 {
		return out
	}

	engagements, err := f.s.GetTrackEngagements(ctx, since, seed...)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("failed to get track engagements")
		return out
	}

	overlaps := make(map[string]map[string]struct{})
	for _, e := range engagements {
		if e.UserID == userID {
			continue
		}

		if overlaps[e.UserID] == nil {
			overlaps[e.UserID] = make(map[string]struct{})
		}
		overlaps[e.UserID][e.TrackID] = struct{}{}
	}

	for candidate, tracks := range overlaps {
		if len(tracks) >= f.threshold {
			out[candidate] = struct{}{}
		}
	}

	return out
}

// Package trackcache is a memoizing track metadata lookup over the persistent
// store and the external catalog.
package trackcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/soundscroll/orpheus/internal/catalog"
	"github.com/soundscroll/orpheus/internal/entities"
	"github.com/soundscroll/orpheus/internal/storage"
)

var log = logrus.WithField("package", "trackcache")

// ErrTrackNotFound returned when a track is missing from both caches and the catalog.
var ErrTrackNotFound = errors.New("track not found")

// Cache looks tracks up in memory, then in the persistent cache, then in the
// catalog. Entries do not expire within a process lifetime.
type Cache struct {
	s storage.Storage
	c catalog.Provider

	group  singleflight.Group
	tracks syncTracks
}

// New creates new instance of Cache.
func New(s storage.Storage, c catalog.Provider) *Cache {
	return &Cache{
		s: s,
		c: c,
	}
}

// Get returns track metadata by id.
func (c *Cache) Get(ctx context.Context, id string) (*entities.Track, error) {
	if t, ok := c.tracks.get(id); ok {
		return t, nil
	}

	// Concurrent lookups of the same id share one storage/catalog round trip.
	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		return c.lookup(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	return v.(*entities.Track), nil
}

// GetMany returns metadata for every id it can resolve. A failed lookup
// drops that single track, it never fails the batch.
func (c *Cache) GetMany(ctx context.Context, ids []string) map[string]*entities.Track {
	out := make(map[string]*entities.Track, len(ids))

	for _, id := range ids {
		t, err := c.Get(ctx, id)
		if err != nil {
			log.WithError(err).WithField("track_id", id).Warn("failed to get track")
			continue
		}
		out[id] = t
	}

	return out
}

// Put writes tracks through to both cache tiers. The persistent write is
// best-effort.
func (c *Cache) Put(ctx context.Context, tracks ...*entities.Track) {
	if len(tracks) == 0 {
		return
	}

	if err := c.s.UpsertTracks(ctx, tracks...); err != nil {
		log.WithError(err).Error("failed to upsert tracks cache")
	}

	for _, t := range tracks {
		c.tracks.set(t)
	}
}

func (c *Cache) lookup(ctx context.Context, id string) (*entities.Track, error) {
	t, err := c.s.GetTrack(ctx, id)
	if err == nil {
		c.tracks.set(t)
		return t, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get track from storage: %w", err)
	}

	t, err = c.c.GetTrack(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrTrackNotFound) {
			return nil, ErrTrackNotFound
		}
		return nil, fmt.Errorf("failed to get track from catalog: %w", err)
	}

	c.Put(ctx, t)

	return t, nil
}

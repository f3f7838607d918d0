// Package moments backfills the feed with generated moments when human-authored
// supply is below the floor.
package moments

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/soundscroll/orpheus/internal/catalog"
	"github.com/soundscroll/orpheus/internal/entities"
	"github.com/soundscroll/orpheus/internal/storage"
	"github.com/soundscroll/orpheus/internal/trackcache"
)

var log = logrus.WithField("package", "moments")

const (
	// DefaultMinFeedItems is the feed supply floor.
	DefaultMinFeedItems = 30
	// DefaultDuplicateWindow is the span during which a track is not reused by generation.
	DefaultDuplicateWindow = 6 * time.Hour
)

// Generator ...
type Generator struct {
	s storage.Storage
	c catalog.Provider
	t *trackcache.Cache

	minFeedItems    int
	duplicateWindow time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option overrides a tuning constant of the generator.
type Option func(*Generator)

// WithMinFeedItems ...
func WithMinFeedItems(n int) Option {
	return func(g *Generator) { g.minFeedItems = n }
}

// WithDuplicateWindow ...
func WithDuplicateWindow(d time.Duration) Option {
	return func(g *Generator) { g.duplicateWindow = d }
}

// WithRand ...
func WithRand(rnd *rand.Rand) Option {
	return func(g *Generator) { g.rnd = rnd }
}

// New creates new instance of Generator.
func New(s storage.Storage, c catalog.Provider, t *trackcache.Cache, opts ...Option) *Generator {
	g := &Generator{
		s:               s,
		c:               c,
		t:               t,
		minFeedItems:    DefaultMinFeedItems,
		duplicateWindow: DefaultDuplicateWindow,
		rnd:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, o := range opts {
		o(g)
	}

	return g
}

// Ensure tops the feed up to the floor with generated moments on behalf of the
// requesting user. It is best-effort throughout: catalog and write failures are
// logged and skipped, never fatal. Concurrent callers are not serialized, so
// duplicate moments bounded by the duplicate window are possible.
func (g *Generator) Ensure(ctx context.Context, currentCount int, userID string, now time.Time) int {
	if userID == "" || currentCount >= g.minFeedItems {
		return 0
	}

	needed := g.minFeedItems - currentCount

	tracks, err := g.c.GetRandomTracks(ctx, needed)
	if err != nil {
		log.WithError(err).Warn("failed to get candidate tracks")
		return 0
	}

	if len(tracks) == 0 {
		return 0
	}

	tracks = uniqueByID(tracks)

	recent := g.recentlyGenerated(ctx, tracks, now)

	inserted := 0
	written := make([]*entities.Track, 0, len(tracks))

	for _, track := range tracks {
		if _, ok := recent[track.ID]; ok {
			continue
		}

		p, err := entities.NewAutoMoment(userID, track, g.clipStart(track), now)
		if err != nil {
			log.WithError(err).WithField("track_id", track.ID).Warn("skipping invalid moment")
			continue
		}

		if err := g.s.CreatePost(ctx, p); err != nil {
			log.WithError(err).WithField("track_id", track.ID).Error("failed to insert moment")
			continue
		}

		inserted++
		written = append(written, track)
	}

	g.t.Put(ctx, written...)

	return inserted
}

// recentlyGenerated returns track ids already used by moments within the
// duplicate window. A failed read degrades to no dedup information.
func (g *Generator) recentlyGenerated(ctx context.Context, tracks []*entities.Track, now time.Time) map[string]struct{} {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}

	momentType := entities.AutoMomentPostType
	since := now.Add(-g.duplicateWindow)

	posts, err := g.s.ListPosts(ctx, &storage.ListPostsParams{
		Type:         &momentType,
		TrackIDs:     ids,
		CreatedAfter: &since,
	})
	if err != nil {
		log.WithError(err).Warn("failed to query recent moments")
		return map[string]struct{}{}
	}

	out := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		out[p.TrackID] = struct{}{}
	}

	return out
}

// clipStart picks a start offset keeping the clip inside the track.
func (g *Generator) clipStart(t *entities.Track) int64 {
	maxStart := t.DurationMs - entities.ClipWindowMs
	if maxStart <= 0 {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rnd.Int63n(maxStart)
}

func uniqueByID(tt []*entities.Track) []*entities.Track {
	m := make(map[string]struct{}, len(tt))
	out := make([]*entities.Track, 0, len(tt))

	for _, t := range tt {
		if _, ok := m[t.ID]; !ok {
			m[t.ID] = struct{}{}
			out = append(out, t)
		}
	}

	return out
}

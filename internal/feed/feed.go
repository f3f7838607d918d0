package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/soundscroll/orpheus/internal/catalog"
	"github.com/soundscroll/orpheus/internal/entities"
	"github.com/soundscroll/orpheus/internal/moments"
	"github.com/soundscroll/orpheus/internal/neighbors"
	"github.com/soundscroll/orpheus/internal/storage"
	"github.com/soundscroll/orpheus/internal/trackcache"
)

var log = logrus.WithField("package", "feed")

// DefaultPageLimit bounds a single feed load.
const DefaultPageLimit = 80

// Config ...
type Config struct {
	DefaultPolicy Policy
	PageLimit     uint16
	MinFeedItems  int
	Weights       Weights
}

// DefaultConfig ...
func DefaultConfig() Config {
	return Config{
		DefaultPolicy: PopularityPolicy,
		PageLimit:     DefaultPageLimit,
		MinFeedItems:  moments.DefaultMinFeedItems,
		Weights:       DefaultWeights(),
	}
}

// Feed sequences neighbor discovery, supply backfill, aggregate loading and
// ranking per fetch request, and owns optimistic local mutations.
type Feed struct {
	s         storage.Storage
	c         catalog.Provider
	tracks    *trackcache.Cache
	neighbors *neighbors.Finder
	generator *moments.Generator

	cfg Config
	now func() time.Time

	// Fetches are tagged with a monotonically increasing token, shared state
	// is only overwritten by the most recent one.
	token     uint64
	published uint64

	mu    sync.Mutex
	state *state
}

type state struct {
	posts      []*entities.Post
	aggregates map[string]Aggregates
	neighbors  map[string]struct{}
	liked      map[string]bool
	policy     Policy
	fetchedAt  time.Time
}

// New creates new instance of Feed.
func New(
	s storage.Storage,
	c catalog.Provider,
	tracks *trackcache.Cache,
	n *neighbors.Finder,
	g *moments.Generator,
	cfg Config,
) *Feed {
	return &Feed{
		s:         s,
		c:         c,
		tracks:    tracks,
		neighbors: n,
		generator: g,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Fetch recomputes the feed for the user. The next full fetch is always
// authoritative over optimistic local updates.
func (f *Feed) Fetch(ctx context.Context, userID string, policy Policy) (*Snapshot, error) {
	token := atomic.AddUint64(&f.token, 1)

	if policy == "" {
		policy = f.cfg.DefaultPolicy
	}

	now := f.now()

	var neighborSet map[string]struct{}
	if policy == NeighborsPolicy {
		neighborSet = f.neighbors.Find(ctx, userID, now)
	}

	posts, err := f.loadPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	if len(posts) < f.cfg.MinFeedItems {
		if inserted := f.generator.Ensure(ctx, len(posts), userID, now); inserted > 0 {
			log.WithField("count", inserted).Debug("generated moments")
		}

		if posts, err = f.loadPosts(ctx); err != nil {
			return nil, fmt.Errorf("failed to reload posts: %w", err)
		}
	}

	if len(posts) == 0 {
		return f.publish(token, &state{policy: policy, fetchedAt: now}), nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	recentSince := now.Add(-f.cfg.Weights.RecentWindow)

	aggregates, err := f.loadAggregates(ctx, ids, recentSince)
	if err != nil {
		return nil, err
	}

	liked, err := f.loadOwnLikes(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	return f.publish(token, &state{
		posts:      posts,
		aggregates: aggregates,
		neighbors:  neighborSet,
		liked:      liked,
		policy:     policy,
		fetchedAt:  now,
	}), nil
}

// ToggleLike flips the user's like on a post, applying an optimistic local
// update to derived counts and re-running the active policy without a reload.
func (f *Feed) ToggleLike(ctx context.Context, userID, postID string) (*Snapshot, error) {
	if userID == "" {
		return nil, ErrAnonymous
	}

	likes, err := f.s.ListLikes(ctx, &storage.ListLikesParams{
		PostIDs: []string{postID},
		LikedBy: &userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get like membership: %w", err)
	}

	liked := len(likes) > 0
	now := f.now()

	if liked {
		if err := f.s.UnsetLike(ctx, postID, userID); err != nil {
			return nil, fmt.Errorf("failed to unset like: %w", err)
		}
	} else {
		if err := f.s.SetLike(ctx, postID, userID, now); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to set like: %w", err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == nil {
		return nil, nil
	}

	if f.state.aggregates == nil {
		f.state.aggregates = map[string]Aggregates{}
	}
	if f.state.liked == nil {
		f.state.liked = map[string]bool{}
	}

	agg := f.state.aggregates[postID]
	if agg.Likers == nil {
		agg.Likers = map[string]struct{}{}
	}

	if liked {
		if agg.Likes > 0 {
			agg.Likes--
		}
		if agg.RecentLikes > 0 {
			agg.RecentLikes--
		}
		delete(agg.Likers, userID)
	} else {
		agg.Likes++
		agg.RecentLikes++
		agg.Likers[userID] = struct{}{}
	}

	f.state.aggregates[postID] = agg
	f.state.liked[postID] = !liked

	return f.snapshotLocked(), nil
}

// AddComment appends a comment and applies the optimistic count update.
func (f *Feed) AddComment(ctx context.Context, userID, postID, text string) (*Snapshot, error) {
	if userID == "" {
		return nil, ErrAnonymous
	}

	if text == "" {
		return nil, fmt.Errorf("empty comment text")
	}

	if err := f.s.CreateComment(ctx, &entities.Comment{
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: f.now(),
	}); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == nil {
		return nil, nil
	}

	if f.state.aggregates == nil {
		f.state.aggregates = map[string]Aggregates{}
	}

	agg := f.state.aggregates[postID]
	agg.Comments++
	agg.RecentComments++
	f.state.aggregates[postID] = agg

	return f.snapshotLocked(), nil
}

// Repost creates a repost of an existing post.
func (f *Feed) Repost(ctx context.Context, userID, originalPostID, text string) (*entities.Post, error) {
	if userID == "" {
		return nil, ErrAnonymous
	}

	if _, err := f.s.GetPost(ctx, originalPostID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get original post: %w", err)
	}

	p, err := entities.NewRepost(userID, originalPostID, text, f.now())
	if err != nil {
		return nil, err
	}

	if err := f.s.CreatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create repost: %w", err)
	}

	return p, nil
}

// CreateClip creates a user-authored moment, validating the clip against the
// track duration before persistence.
func (f *Feed) CreateClip(ctx context.Context, userID, trackID string, startMs int64, text string) (*entities.Post, error) {
	if userID == "" {
		return nil, ErrAnonymous
	}

	track, err := f.tracks.Get(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	p, err := entities.NewUserClip(userID, track, startMs, text, f.now())
	if err != nil {
		return nil, err
	}

	if err := f.s.CreatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create clip: %w", err)
	}

	return p, nil
}

// SearchTracks queries the catalog. Catalog failures degrade to an empty result.
func (f *Feed) SearchTracks(ctx context.Context, query string) ([]*entities.Track, error) {
	tracks, err := f.c.SearchTracks(ctx, query)
	if err != nil {
		log.WithError(err).Warn("failed to search tracks")
		return nil, nil
	}

	return tracks, nil
}

func (f *Feed) loadPosts(ctx context.Context) ([]*entities.Post, error) {
	visibility := entities.PublicVisibility

	return f.s.ListPosts(ctx, &storage.ListPostsParams{
		Visibility: &visibility,
		Limit:      f.cfg.PageLimit,
	})
}

// loadAggregates fetches engagement scoped to exactly the loaded id set.
func (f *Feed) loadAggregates(ctx context.Context, ids []string, recentSince time.Time) (map[string]Aggregates, error) {
	likes, err := f.s.ListLikes(ctx, &storage.ListLikesParams{PostIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}

	comments, err := f.s.GetCommentStats(ctx, recentSince, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment stats: %w", err)
	}

	out := make(map[string]Aggregates, len(ids))

	for _, l := range likes {
		agg := out[l.PostID]
		if agg.Likers == nil {
			agg.Likers = map[string]struct{}{}
		}

		agg.Likes++
		if !l.CreatedAt.Before(recentSince) {
			agg.RecentLikes++
		}
		agg.Likers[l.UserID] = struct{}{}

		out[l.PostID] = agg
	}

	for id, cs := range comments {
		agg := out[id]
		agg.Comments = cs.Total
		agg.RecentComments = cs.Recent
		out[id] = agg
	}

	return out, nil
}

func (f *Feed) loadOwnLikes(ctx context.Context, userID string, ids []string) (map[string]bool, error) {
	out := make(map[string]bool)

	if userID == "" {
		return out, nil
	}

	likes, err := f.s.ListLikes(ctx, &storage.ListLikesParams{
		PostIDs: ids,
		LikedBy: &userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list own likes: %w", err)
	}

	for _, l := range likes {
		out[l.PostID] = true
	}

	return out, nil
}

// publish stores the state unless a newer fetch has been issued meanwhile,
// and returns the ranked snapshot of this fetch either way.
func (f *Feed) publish(token uint64, st *state) *Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	if token > f.published && token == atomic.LoadUint64(&f.token) {
		f.published = token
		f.state = st
	}

	return snapshotOf(st, f.cfg.Weights)
}

func (f *Feed) snapshotLocked() *Snapshot {
	return snapshotOf(f.state, f.cfg.Weights)
}

func snapshotOf(st *state, w Weights) *Snapshot {
	liked := make(map[string]bool, len(st.liked))
	for k, v := range st.liked {
		if v {
			liked[k] = true
		}
	}

	return &Snapshot{
		Posts:     Rank(st.posts, st.aggregates, st.neighbors, st.fetchedAt, st.policy, w),
		Liked:     liked,
		Policy:    st.policy,
		FetchedAt: st.fetchedAt,
	}
}

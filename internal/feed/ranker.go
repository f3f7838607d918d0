package feed

import (
	"sort"
	"time"

	"github.com/soundscroll/orpheus/internal/entities"
)

// Policy selects a feed ordering strategy.
type Policy string

const (
	// RecencyPolicy is a stable sort by creation time, newest first.
	RecencyPolicy Policy = "recency"
	// PopularityPolicy ranks by recent engagement, falling back to lifetime
	// totals for posts with no recent activity.
	PopularityPolicy Policy = "popularity"
	// NeighborsPolicy is freshness-decayed scoring boosted by taste neighbors.
	NeighborsPolicy Policy = "neighbors"
)

// Weights are the tuning constants of the scoring policies. The values are
// inherited from production tuning, kept overridable rather than explained.
type Weights struct {
	Base          float64
	RepostBoost   float64
	NeighborBoost float64
	LikeBoost     float64

	LikeWeight    float64
	CommentWeight float64

	RecentWindow time.Duration
}

// DefaultWeights ...
func DefaultWeights() Weights {
	return Weights{
		Base:          1,
		RepostBoost:   1.5,
		NeighborBoost: 1.2,
		LikeBoost:     0.25,
		LikeWeight:    2,
		CommentWeight: 3,
		RecentWindow:  24 * time.Hour,
	}
}

// Aggregates is the engagement of a single post used for scoring.
type Aggregates struct {
	Likes          uint32
	Comments       uint32
	RecentLikes    uint32
	RecentComments uint32
	Likers         map[string]struct{}
}

// Rank is a pure function producing an ordered read-only view of posts.
// Posts missing from aggregates score as having no engagement.
func Rank(
	posts []*entities.Post,
	aggregates map[string]Aggregates,
	neighborSet map[string]struct{},
	now time.Time,
	policy Policy,
	w Weights,
) []*entities.RankedPost {
	out := make([]*entities.RankedPost, len(posts))

	for i, p := range posts {
		agg := aggregates[p.ID]

		out[i] = &entities.RankedPost{
			Post:               *p,
			LikeCount:          agg.Likes,
			CommentCount:       agg.Comments,
			RecentLikeCount:    agg.RecentLikes,
			RecentCommentCount: agg.RecentComments,
			Score:              score(p, agg, neighborSet, now, policy, w),
		}
	}

	switch policy {
	case RecencyPolicy:
		// Stable: equal timestamps keep their loaded order.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Score != out[j].Score {
				return out[i].Score > out[j].Score
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}

func score(
	p *entities.Post,
	agg Aggregates,
	neighborSet map[string]struct{},
	now time.Time,
	policy Policy,
	w Weights,
) float64 {
	switch policy {
	case PopularityPolicy:
		// Recent activity wins over accumulated totals; a dormant post falls
		// back to its lifetime engagement.
		if agg.RecentLikes > 0 || agg.RecentComments > 0 {
			return float64(agg.RecentLikes)*w.LikeWeight + float64(agg.RecentComments)*w.CommentWeight
		}
		return float64(agg.Likes)*w.LikeWeight + float64(agg.Comments)*w.CommentWeight

	case NeighborsPolicy:
		s := w.Base
		if p.Type == entities.RepostPostType {
			s += w.RepostBoost
		}
		s += float64(agg.Likes) * w.LikeBoost
		if neighborEngaged(p, agg, neighborSet) {
			s += w.NeighborBoost
		}

		ageHours := now.Sub(p.CreatedAt).Hours()
		if ageHours < 0 {
			ageHours = 0
		}

		// Smooth decay, roughly halving per 24h.
		return s / (1 + ageHours/24)

	default:
		return 0
	}
}

func neighborEngaged(p *entities.Post, agg Aggregates, neighborSet map[string]struct{}) bool {
	if _, ok := neighborSet[p.Owner]; ok {
		return true
	}

	for liker := range agg.Likers {
		if _, ok := neighborSet[liker]; ok {
			return true
		}
	}

	return false
}

// Package entities contains main entities of service.
package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClipWindowMs is the fixed length of a moment clip.
const ClipWindowMs = 15000

// ErrInvalidPost returned when a post violates structural invariants.
var ErrInvalidPost = errors.New("invalid post")

// PostType ...
type PostType string

const (
	// AutoMomentPostType is a moment synthesized by the generator.
	AutoMomentPostType PostType = "auto_moment"
	// UserClipPostType is a moment authored by a user.
	UserClipPostType PostType = "song_moment"
	// RepostPostType is a reshare of another post.
	RepostPostType PostType = "repost"
)

// Visibility ...
type Visibility string

const (
	// PublicVisibility ...
	PublicVisibility Visibility = "public"
	// HiddenVisibility ...
	HiddenVisibility Visibility = "hidden"
)

// Post ...
type Post struct {
	ID             string
	Owner          string
	Type           PostType
	TrackID        string
	StartMs        int64
	Text           string
	OriginalPostID string
	CreatedAt      time.Time
	Visibility     Visibility
}

// Track is a cached catalog track. Immutable once cached within a process lifetime.
type Track struct {
	ID            string
	Title         string
	Artist        string
	DurationMs    int64
	ArtworkURL    string
	PermalinkURL  string
	StreamURL     string
	LastFetchedAt time.Time
}

// Like ...
type Like struct {
	PostID    string
	UserID    string
	CreatedAt time.Time
}

// Comment ...
type Comment struct {
	PostID    string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// RankedPost is a read-only view of a post with derived engagement fields.
// It is produced by the ranker and never persisted.
type RankedPost struct {
	Post

	LikeCount          uint32
	CommentCount       uint32
	RecentLikeCount    uint32
	RecentCommentCount uint32
	Score              float64
}

// NewAutoMoment creates a generated moment referencing a bounded window of the track.
func NewAutoMoment(owner string, track *Track, startMs int64, createdAt time.Time) (*Post, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: empty owner", ErrInvalidPost)
	}

	p := &Post{
		ID:         uuid.NewString(),
		Owner:      owner,
		Type:       AutoMomentPostType,
		StartMs:    startMs,
		CreatedAt:  createdAt,
		Visibility: PublicVisibility,
	}

	if err := setClip(p, track); err != nil {
		return nil, err
	}

	return p, nil
}

// NewUserClip creates a user-authored moment.
func NewUserClip(owner string, track *Track, startMs int64, text string, createdAt time.Time) (*Post, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: empty owner", ErrInvalidPost)
	}

	p := &Post{
		ID:         uuid.NewString(),
		Owner:      owner,
		Type:       UserClipPostType,
		StartMs:    startMs,
		Text:       text,
		CreatedAt:  createdAt,
		Visibility: PublicVisibility,
	}

	if err := setClip(p, track); err != nil {
		return nil, err
	}

	return p, nil
}

// NewRepost creates a repost of an existing post.
func NewRepost(owner, originalPostID, text string, createdAt time.Time) (*Post, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: empty owner", ErrInvalidPost)
	}

	if originalPostID == "" {
		return nil, fmt.Errorf("%w: repost without original post", ErrInvalidPost)
	}

	return &Post{
		ID:             uuid.NewString(),
		Owner:          owner,
		Type:           RepostPostType,
		OriginalPostID: originalPostID,
		Text:           text,
		CreatedAt:      createdAt,
		Visibility:     PublicVisibility,
	}, nil
}

func setClip(p *Post, track *Track) error {
	if track == nil || track.ID == "" {
		return fmt.Errorf("%w: moment without track", ErrInvalidPost)
	}

	if p.StartMs < 0 {
		return fmt.Errorf("%w: negative start offset", ErrInvalidPost)
	}

	// Tracks shorter than the clip window are allowed with a zero offset only.
	if track.DurationMs < ClipWindowMs {
		if p.StartMs != 0 {
			return fmt.Errorf("%w: non-zero offset into short track", ErrInvalidPost)
		}
	} else if p.StartMs+ClipWindowMs > track.DurationMs {
		return fmt.Errorf("%w: clip exceeds track duration", ErrInvalidPost)
	}

	p.TrackID = track.ID

	return nil
}

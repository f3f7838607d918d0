package server

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/soundscroll/orpheus/internal/entities"
	"github.com/soundscroll/orpheus/internal/feed"
)

const maxBodySize = 1024

// Error ...
type Error struct {
	Error string `json:"error"`
}

// FeedResponse ...
type FeedResponse struct {
	Posts  []Post `json:"posts"`
	Policy string `json:"policy"`
}

// Post ...
type Post struct {
	ID             string  `json:"id"`
	Owner          string  `json:"owner"`
	Type           string  `json:"type"`
	TrackID        string  `json:"track_id,omitempty"`
	StartMs        int64   `json:"start_ms"`
	Text           string  `json:"text,omitempty"`
	OriginalPostID string  `json:"original_post_id,omitempty"`
	CreatedAt      int64   `json:"created_at"`
	Likes          uint32  `json:"likes"`
	Comments       uint32  `json:"comments"`
	RecentLikes    uint32  `json:"recent_likes"`
	RecentComments uint32  `json:"recent_comments"`
	Score          float64 `json:"score"`
	Liked          bool    `json:"liked"`
}

// Track ...
type Track struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	DurationMs   int64  `json:"duration_ms"`
	ArtworkURL   string `json:"artwork_url,omitempty"`
	PermalinkURL string `json:"permalink_url,omitempty"`
	StreamURL    string `json:"stream_url,omitempty"`
}

// SearchTracksResponse ...
type SearchTracksResponse struct {
	Tracks []Track `json:"tracks"`
}

// CreatePostResponse ...
type CreatePostResponse struct {
	Post Post `json:"post"`
}

func toFeedResponse(s *feed.Snapshot) FeedResponse {
	out := FeedResponse{
		Posts:  make([]Post, len(s.Posts)),
		Policy: string(s.Policy),
	}

	for i, p := range s.Posts {
		out.Posts[i] = Post{
			ID:             p.ID,
			Owner:          p.Owner,
			Type:           string(p.Type),
			TrackID:        p.TrackID,
			StartMs:        p.StartMs,
			Text:           p.Text,
			OriginalPostID: p.OriginalPostID,
			CreatedAt:      p.CreatedAt.Unix(),
			Likes:          p.LikeCount,
			Comments:       p.CommentCount,
			RecentLikes:    p.RecentLikeCount,
			RecentComments: p.RecentCommentCount,
			Score:          p.Score,
			Liked:          s.Liked[p.ID],
		}
	}

	return out
}

func toAPIPost(p *entities.Post) Post {
	return Post{
		ID:             p.ID,
		Owner:          p.Owner,
		Type:           string(p.Type),
		TrackID:        p.TrackID,
		StartMs:        p.StartMs,
		Text:           p.Text,
		OriginalPostID: p.OriginalPostID,
		CreatedAt:      p.CreatedAt.Unix(),
	}
}

func toAPITracks(tt []*entities.Track) []Track {
	out := make([]Track, len(tt))
	for i, t := range tt {
		out[i] = Track{
			ID:           t.ID,
			Title:        t.Title,
			Artist:       t.Artist,
			DurationMs:   t.DurationMs,
			ArtworkURL:   t.ArtworkURL,
			PermalinkURL: t.PermalinkURL,
			StreamURL:    t.StreamURL,
		}
	}

	return out
}

func writeOK(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeOK(w, status, Error{Error: message})
}

func readBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return false
	}

	return true
}

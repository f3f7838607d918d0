package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/soundscroll/orpheus/internal/entities"
	"github.com/soundscroll/orpheus/internal/feed"
	"github.com/soundscroll/orpheus/internal/identity"
	"github.com/soundscroll/orpheus/internal/storage"
	"github.com/soundscroll/orpheus/internal/trackcache"
)

func (s server) getFeed(w http.ResponseWriter, r *http.Request) {
	policy, ok := extractPolicy(r.URL.Query().Get("policy"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid policy")
		return
	}

	snapshot, err := s.f.Fetch(r.Context(), identity.FromContext(r.Context()), policy)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch feed")
		log.WithError(err).Error("failed to fetch feed")
		return
	}

	writeOK(w, http.StatusOK, toFeedResponse(snapshot))
}

func (s server) createClip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackID string `json:"track_id"`
		StartMs int64  `json:"start_ms"`
		Text    string `json:"text"`
	}

	if !readBody(w, r, &req) {
		return
	}

	if req.TrackID == "" {
		writeError(w, http.StatusBadRequest, "empty track_id")
		return
	}

	p, err := s.f.CreateClip(r.Context(), identity.FromContext(r.Context()), req.TrackID, req.StartMs, req.Text)
	if err != nil {
		writeServiceError(w, err, "failed to create clip")
		return
	}

	writeOK(w, http.StatusCreated, CreatePostResponse{Post: toAPIPost(p)})
}

func (s server) repost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}

	if !readBody(w, r, &req) {
		return
	}

	p, err := s.f.Repost(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeServiceError(w, err, "failed to repost")
		return
	}

	writeOK(w, http.StatusCreated, CreatePostResponse{Post: toAPIPost(p)})
}

func (s server) toggleLike(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.f.ToggleLike(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "failed to toggle like")
		return
	}

	if snapshot == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeOK(w, http.StatusOK, toFeedResponse(snapshot))
}

func (s server) addComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}

	if !readBody(w, r, &req) {
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "empty comment text")
		return
	}

	snapshot, err := s.f.AddComment(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeServiceError(w, err, "failed to add comment")
		return
	}

	if snapshot == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeOK(w, http.StatusOK, toFeedResponse(snapshot))
}

func (s server) searchTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.f.SearchTracks(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search tracks")
		log.WithError(err).Error("failed to search tracks")
		return
	}

	writeOK(w, http.StatusOK, SearchTracksResponse{Tracks: toAPITracks(tracks)})
}

func writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, feed.ErrAnonymous):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, trackcache.ErrTrackNotFound):
		writeError(w, http.StatusNotFound, "track not found")
	case errors.Is(err, entities.ErrInvalidPost):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, message)
		log.WithError(err).Error(message)
	}
}

func extractPolicy(s string) (feed.Policy, bool) {
	switch feed.Policy(s) {
	case feed.RecencyPolicy, feed.PopularityPolicy, feed.NeighborsPolicy:
		return feed.Policy(s), true
	case "":
		return "", true
	default:
		return "", false
	}
}

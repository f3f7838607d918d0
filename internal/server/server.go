// Package server Orpheus
//
// The Orpheus service powers a continuously-scrolling music-discovery feed.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/soundscroll/orpheus/internal/feed"
	"github.com/soundscroll/orpheus/internal/identity"
	mm "github.com/soundscroll/orpheus/internal/middleware"
)

var log = logrus.WithField("layer", "server")

const searchCacheTTL = 10 * time.Minute

type server struct {
	f feed.Service
}

// SetupRouter setups handlers to chi router.
func SetupRouter(f feed.Service, ip identity.Provider, r chi.Router, timeout time.Duration) {
	r.Use(
		middleware.RequestID,
		middleware.StripSlashes,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		cors.AllowAll().Handler,
		identity.Middleware(ip),
	)

	srv := server{
		f: f,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/feed", srv.getFeed)
		r.Post("/posts", srv.createClip)
		r.Post("/posts/{id}/repost", srv.repost)
		r.Post("/posts/{id}/like", srv.toggleLike)
		r.Post("/posts/{id}/comments", srv.addComment)
		r.Get("/tracks/search", mm.Cached(searchCacheTTL, srv.searchTracks))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

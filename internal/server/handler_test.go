package server

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundscroll/orpheus/internal/entities"
	"github.com/soundscroll/orpheus/internal/feed"
	feedmock "github.com/soundscroll/orpheus/internal/feed/mock"
	"github.com/soundscroll/orpheus/internal/storage"
	"github.com/soundscroll/orpheus/internal/trackcache"
)

var testNow = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

type staticIdentity string

func (s staticIdentity) UserID(*http.Request) string { return string(s) }

func newTestRouter(t *testing.T, userID string) (*feedmock.MockService, chi.Router) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := feedmock.NewMockService(ctrl)

	r := chi.NewRouter()
	SetupRouter(f, staticIdentity(userID), r, time.Second)

	return f, r
}

func doRequest(r chi.Router, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, strings.NewReader(body)))

	return w
}

func testSnapshot() *feed.Snapshot {
	return &feed.Snapshot{
		Posts: []*entities.RankedPost{
			{
				Post: entities.Post{
					ID:         "p1",
					Owner:      "u1",
					Type:       entities.UserClipPostType,
					TrackID:    "t1",
					StartMs:    5000,
					Text:       "listen",
					CreatedAt:  testNow,
					Visibility: entities.PublicVisibility,
				},
				LikeCount:          2,
				CommentCount:       1,
				RecentLikeCount:    1,
				RecentCommentCount: 1,
				Score:              5,
			},
		},
		Liked:     map[string]bool{"p1": true},
		Policy:    feed.PopularityPolicy,
		FetchedAt: testNow,
	}
}

func TestGetFeed(t *testing.T) {
	f, r := newTestRouter(t, "user")

	f.EXPECT().Fetch(gomock.Any(), "user", feed.Policy("")).Return(testSnapshot(), nil)

	w := doRequest(r, http.MethodGet, "/v1/feed", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{
		"policy": "popularity",
		"posts": [{
			"id": "p1",
			"owner": "u1",
			"type": "song_moment",
			"track_id": "t1",
			"start_ms": 5000,
			"text": "listen",
			"created_at": %d,
			"likes": 2,
			"comments": 1,
			"recent_likes": 1,
			"recent_comments": 1,
			"score": 5,
			"liked": true
		}]
	}`, testNow.Unix()), w.Body.String())
}

func TestGetFeed_PolicyParam(t *testing.T) {
	f, r := newTestRouter(t, "user")

	f.EXPECT().Fetch(gomock.Any(), "user", feed.NeighborsPolicy).Return(&feed.Snapshot{
		Policy:    feed.NeighborsPolicy,
		FetchedAt: testNow,
	}, nil)

	w := doRequest(r, http.MethodGet, "/v1/feed?policy=neighbors", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"policy": "neighbors", "posts": []}`, w.Body.String())
}

func TestGetFeed_InvalidPolicy(t *testing.T) {
	_, r := newTestRouter(t, "user")

	w := doRequest(r, http.MethodGet, "/v1/feed?policy=viral", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "invalid policy"}`, w.Body.String())
}

func TestGetFeed_ServiceError(t *testing.T) {
	f, r := newTestRouter(t, "user")

	f.EXPECT().Fetch(gomock.Any(), "user", feed.Policy("")).Return(nil, fmt.Errorf("boom"))

	w := doRequest(r, http.MethodGet, "/v1/feed", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "failed to fetch feed"}`, w.Body.String())
}

func TestCreateClip(t *testing.T) {
	f, r := newTestRouter(t, "user")

	f.EXPECT().CreateClip(gomock.Any(), "user", "t1", int64(5000), "drop").Return(&entities.Post{
		ID:        "p1",
		Owner:     "user",
		Type:      entities.UserClipPostType,
		TrackID:   "t1",
		StartMs:   5000,
		Text:      "drop",
		CreatedAt: testNow,
	}, nil)

	w := doRequest(r, http.MethodPost, "/v1/posts", `{"track_id": "t1", "start_ms": 5000, "text": "drop"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{
		"post": {
			"id": "p1",
			"owner": "user",
			"type": "song_moment",
			"track_id": "t1",
			"start_ms": 5000,
			"text": "drop",
			"created_at": %d,
			"likes": 0,
			"comments": 0,
			"recent_likes": 0,
			"recent_comments": 0,
			"score": 0,
			"liked": false
		}
	}`, testNow.Unix()), w.Body.String())
}

func TestCreateClip_Validation(t *testing.T) {
	tt := []struct {
		name string
		body string

		setup  func(f *feedmock.MockService)
		status int
		err    string
	}{
		{
			name:   "invalid body",
			body:   "not json",
			status: http.StatusBadRequest,
			err:    "invalid body",
		},
		{
			name:   "empty track id",
			body:   `{"start_ms": 0}`,
			status: http.StatusBadRequest,
			err:    "empty track_id",
		},
		{
			name: "anonymous",
			body: `{"track_id": "t1"}`,
			setup: func(f *feedmock.MockService) {
				f.EXPECT().CreateClip(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, feed.ErrAnonymous)
			},
			status: http.StatusUnauthorized,
			err:    "authentication required",
		},
		{
			name: "unknown track",
			body: `{"track_id": "t1"}`,
			setup: func(f *feedmock.MockService) {
				f.EXPECT().CreateClip(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("failed to get track: %w", trackcache.ErrTrackNotFound))
			},
			status: http.StatusNotFound,
			err:    "track not found",
		},
		{
			name: "clip out of bounds",
			body: `{"track_id": "t1", "start_ms": 999999}`,
			setup: func(f *feedmock.MockService) {
				f.EXPECT().CreateClip(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: clip exceeds track duration", entities.ErrInvalidPost))
			},
			status: http.StatusBadRequest,
		},
	}

	for i := range tt {
		tc := tt[i]
		t.Run(tc.name, func(t *testing.T) {
			f, r := newTestRouter(t, "user")

			if tc.setup != nil {
				tc.setup(f)
			}

			w := doRequest(r, http.MethodPost, "/v1/posts", tc.body)

			require.Equal(t, tc.status, w.Code)
			if tc.err != "" {
				assert.JSONEq(t, fmt.Sprintf(`{"error": %q}`, tc.err), w.Body.String())
			}
		})
	}
}

func TestRepost(t *testing.T) {
	f, r := newTestRouter(t, "user")

	f.EXPECT().Repost(gomock.Any(), "user", "orig", "check this").Return(&entities.Post{
		ID:             "p2",
		Owner:          "user",
		Type:           entities.RepostPostType,
		OriginalPostID: "orig",
		Text:           "check this",
		CreatedAt:      testNow,
	}, nil)

	w := doRequest(r, http.MethodPost, "/v1/posts/orig/repost", `{"text": "check this"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"original_post_id":"orig"`)
}

func TestRepost_OriginalNotFound(t *testing.T) {
	f, r := newTestRouter(t, "user")

	f.EXPECT().Repost(gomock.Any(), "user", "missing", "").Return(nil, storage.ErrNotFound)

	w := doRequest(r, http.MethodPost, "/v1/posts/missing/repost", `{}`)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "post not found"}`, w.Body.String())
}

func TestToggleLike(t *testing.T) {
	f, r := newTestRouter(t, "user")

	f.EXPECT().ToggleLike(gomock.Any(), "user", "p1").Return(testSnapshot(), nil)

	w := doRequest(r, http.MethodPost, "/v1/posts/p1/like", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"liked":true`)
}

func TestToggleLike_NoLoadedFeed(t *testing.T) {
	f, r := newTestRouter(t, "user")

	f.EXPECT().ToggleLike(gomock.Any(), "user", "p1").Return(nil, nil)

	w := doRequest(r, http.MethodPost, "/v1/posts/p1/like", "")

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestToggleLike_Anonymous(t *testing.T) {
	f, r := newTestRouter(t, "")

	f.EXPECT().ToggleLike(gomock.Any(), "", "p1").Return(nil, feed.ErrAnonymous)

	w := doRequest(r, http.MethodPost, "/v1/posts/p1/like", "")

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddComment(t *testing.T) {
	f, r := newTestRouter(t, "user")

	f.EXPECT().AddComment(gomock.Any(), "user", "p1", "nice").Return(testSnapshot(), nil)

	w := doRequest(r, http.MethodPost, "/v1/posts/p1/comments", `{"text": "nice"}`)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestAddComment_EmptyText(t *testing.T) {
	_, r := newTestRouter(t, "user")

	w := doRequest(r, http.MethodPost, "/v1/posts/p1/comments", `{"text": ""}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "empty comment text"}`, w.Body.String())
}

func TestSearchTracks(t *testing.T) {
	f, r := newTestRouter(t, "user")

	// The cache middleware serves the second identical request.
	f.EXPECT().SearchTracks(gomock.Any(), "lofi beats").Return([]*entities.Track{
		{ID: "t1", Title: "track", Artist: "artist", DurationMs: 60000, StreamURL: "https://node/stream"},
	}, nil).Times(1)

	want := `{
		"tracks": [{
			"id": "t1",
			"title": "track",
			"artist": "artist",
			"duration_ms": 60000,
			"stream_url": "https://node/stream"
		}]
	}`

	for i := 0; i < 2; i++ {
		w := doRequest(r, http.MethodGet, "/v1/tracks/search?query=lofi+beats", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, want, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	_, r := newTestRouter(t, "")

	w := doRequest(r, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)

	body, err := ioutil.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

//+build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	m "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/soundscroll/orpheus/internal/entities"
	"github.com/soundscroll/orpheus/internal/storage"
)

var (
	db  *sql.DB
	ctx = context.Background()
	s   storage.Storage
)

func TestMain(m *testing.M) {
	shutdown := setup()

	s = New(db)

	code := m.Run()
	shutdown()
	os.Exit(code)
}

func setup() func() {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:12",
		Env:          map[string]string{"POSTGRES_PASSWORD": "root"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
	})
	if err != nil {
		logrus.WithError(err).Fatalf("failed to create container")
	}

	if err := c.Start(ctx); err != nil {
		logrus.WithError(err).Fatal("failed to start container")
	}

	host, err := c.Host(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to get host")
	}

	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		logrus.WithError(err).Fatal("failed to map port")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=postgres password=root sslmode=disable", host, port.Int())

	db, err = sql.Open("postgres", dsn)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open connection")
	}

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	shutdownFn := func() {
		if c != nil {
			c.Terminate(ctx)
		}
	}

	migrate("postgres", "root", host, "postgres", port.Int())

	return shutdownFn
}

func migrate(username, password, hostname, dbname string, port int) {
	_, currFile, _, ok := runtime.Caller(0)
	if !ok {
		logrus.Fatal("failed to get current file location")
	}

	migrations := filepath.Join(currFile, "../../../../scripts/migrations/postgres/")

	migrator, err := m.New(
		fmt.Sprintf("file://%s", migrations),
		fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			username, password, hostname, port, dbname),
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		logrus.WithError(err).Fatal("failed to migrate")
	}
}

func cleanup(t *testing.T) {
	_, err := db.ExecContext(ctx, `DELETE FROM likes`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM comments`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM posts`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM tracks_cache`)
	require.NoError(t, err)
}

func newMoment(id, owner, trackID string, createdAt time.Time) *entities.Post {
	return &entities.Post{
		ID:         id,
		Owner:      owner,
		Type:       entities.AutoMomentPostType,
		TrackID:    trackID,
		StartMs:    5000,
		CreatedAt:  createdAt,
		Visibility: entities.PublicVisibility,
	}
}

func TestPg_CreatePost(t *testing.T) {
	defer cleanup(t)

	expected := &entities.Post{
		ID:         "p1",
		Owner:      "user",
		Type:       entities.UserClipPostType,
		TrackID:    "t1",
		StartMs:    5000,
		Text:       "listen",
		CreatedAt:  time.Unix(100, 0).UTC(),
		Visibility: entities.PublicVisibility,
	}

	require.NoError(t, s.CreatePost(ctx, expected))

	p, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, expected.ID, p.ID)
	require.Equal(t, expected.Owner, p.Owner)
	require.Equal(t, expected.Type, p.Type)
	require.Equal(t, expected.TrackID, p.TrackID)
	require.Equal(t, expected.StartMs, p.StartMs)
	require.Equal(t, expected.Text, p.Text)
	require.Equal(t, expected.CreatedAt.Unix(), p.CreatedAt.Unix())
	require.Equal(t, expected.Visibility, p.Visibility)
}

func TestPg_CreatePost_Repost(t *testing.T) {
	defer cleanup(t)

	require.NoError(t, s.CreatePost(ctx, newMoment("orig", "user", "t1", time.Unix(100, 0))))

	repost := &entities.Post{
		ID:             "r1",
		Owner:          "user2",
		Type:           entities.RepostPostType,
		OriginalPostID: "orig",
		CreatedAt:      time.Unix(200, 0).UTC(),
		Visibility:     entities.PublicVisibility,
	}
	require.NoError(t, s.CreatePost(ctx, repost))

	p, err := s.GetPost(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "orig", p.OriginalPostID)
	require.Empty(t, p.TrackID)
}

func TestPg_CreatePost_MissingOriginal(t *testing.T) {
	defer cleanup(t)

	repost := &entities.Post{
		ID:             "r1",
		Owner:          "user",
		Type:           entities.RepostPostType,
		OriginalPostID: "missing",
		CreatedAt:      time.Unix(100, 0).UTC(),
		Visibility:     entities.PublicVisibility,
	}

	require.Equal(t, storage.ErrNotFound, s.CreatePost(ctx, repost))
}

func TestPg_GetPost(t *testing.T) {
	defer cleanup(t)

	_, err := s.GetPost(ctx, "missing")
	require.Equal(t, storage.ErrNotFound, err)
}

func TestPg_ListPosts(t *testing.T) {
	defer cleanup(t)

	require.NoError(t, s.CreatePost(ctx, newMoment("p1", "u1", "t1", time.Unix(1, 0))))
	require.NoError(t, s.CreatePost(ctx, newMoment("p2", "u2", "t2", time.Unix(2, 0))))
	require.NoError(t, s.CreatePost(ctx, newMoment("p3", "u3", "t3", time.Unix(3, 0))))

	hidden := newMoment("p4", "u4", "t4", time.Unix(4, 0))
	hidden.Visibility = entities.HiddenVisibility
	require.NoError(t, s.CreatePost(ctx, hidden))

	clip := newMoment("p5", "u5", "t1", time.Unix(5, 0))
	clip.Type = entities.UserClipPostType
	require.NoError(t, s.CreatePost(ctx, clip))

	public := entities.PublicVisibility
	momentType := entities.AutoMomentPostType
	after := time.Unix(2, 0).UTC()

	tt := []struct {
		name string
		p    storage.ListPostsParams
		ids  []string
	}{
		{
			name: "all",
			p:    storage.ListPostsParams{},
			ids:  []string{"p5", "p4", "p3", "p2", "p1"},
		},
		{
			name: "public only",
			p:    storage.ListPostsParams{Visibility: &public},
			ids:  []string{"p5", "p3", "p2", "p1"},
		},
		{
			name: "by type",
			p:    storage.ListPostsParams{Type: &momentType},
			ids:  []string{"p4", "p3", "p2", "p1"},
		},
		{
			name: "by tracks",
			p:    storage.ListPostsParams{TrackIDs: []string{"t1", "t2"}},
			ids:  []string{"p5", "p2", "p1"},
		},
		{
			name: "created after",
			p:    storage.ListPostsParams{CreatedAfter: &after},
			ids:  []string{"p5", "p4", "p3", "p2"},
		},
		{
			name: "limit",
			p:    storage.ListPostsParams{Limit: 2},
			ids:  []string{"p5", "p4"},
		},
	}

	for i := range tt {
		tc := tt[i]
		t.Run(tc.name, func(t *testing.T) {
			pp, err := s.ListPosts(ctx, &tc.p)
			require.NoError(t, err)
			require.Len(t, pp, len(tc.ids))
			for i, v := range tc.ids {
				require.Equal(t, v, pp[i].ID)
			}
		})
	}
}

func TestPg_SetLike(t *testing.T) {
	defer cleanup(t)

	require.Equal(t, storage.ErrNotFound, s.SetLike(ctx, "missing", "user", time.Unix(1, 0)))

	require.NoError(t, s.CreatePost(ctx, newMoment("p1", "u1", "t1", time.Unix(1, 0))))

	require.NoError(t, s.SetLike(ctx, "p1", "user", time.Unix(2, 0)))
	// A duplicate like is a no-op.
	require.NoError(t, s.SetLike(ctx, "p1", "user", time.Unix(3, 0)))

	likes, err := s.ListLikes(ctx, &storage.ListLikesParams{PostIDs: []string{"p1"}})
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "p1", likes[0].PostID)
	assert.Equal(t, "user", likes[0].UserID)
	assert.Equal(t, time.Unix(2, 0).Unix(), likes[0].CreatedAt.Unix())
}

func TestPg_UnsetLike(t *testing.T) {
	defer cleanup(t)

	require.NoError(t, s.CreatePost(ctx, newMoment("p1", "u1", "t1", time.Unix(1, 0))))
	require.NoError(t, s.SetLike(ctx, "p1", "user", time.Unix(2, 0)))
	require.NoError(t, s.UnsetLike(ctx, "p1", "user"))
	// Removing an absent like is a no-op.
	require.NoError(t, s.UnsetLike(ctx, "p1", "user"))

	likes, err := s.ListLikes(ctx, &storage.ListLikesParams{PostIDs: []string{"p1"}})
	require.NoError(t, err)
	require.Empty(t, likes)
}

func TestPg_ListLikes(t *testing.T) {
	defer cleanup(t)

	require.NoError(t, s.CreatePost(ctx, newMoment("p1", "u1", "t1", time.Unix(1, 0))))
	require.NoError(t, s.CreatePost(ctx, newMoment("p2", "u2", "t2", time.Unix(1, 0))))

	require.NoError(t, s.SetLike(ctx, "p1", "a", time.Unix(10, 0)))
	require.NoError(t, s.SetLike(ctx, "p1", "b", time.Unix(20, 0)))
	require.NoError(t, s.SetLike(ctx, "p2", "a", time.Unix(30, 0)))

	likedBy := "a"
	after := time.Unix(15, 0).UTC()

	likes, err := s.ListLikes(ctx, &storage.ListLikesParams{PostIDs: []string{"p1", "p2"}})
	require.NoError(t, err)
	require.Len(t, likes, 3)

	likes, err = s.ListLikes(ctx, &storage.ListLikesParams{PostIDs: []string{"p1", "p2"}, LikedBy: &likedBy})
	require.NoError(t, err)
	require.Len(t, likes, 2)

	likes, err = s.ListLikes(ctx, &storage.ListLikesParams{PostIDs: []string{"p1", "p2"}, CreatedAfter: &after})
	require.NoError(t, err)
	require.Len(t, likes, 2)
}

func TestPg_CreateComment(t *testing.T) {
	defer cleanup(t)

	require.Equal(t, storage.ErrNotFound, s.CreateComment(ctx, &entities.Comment{
		PostID: "missing", UserID: "user", Text: "hi", CreatedAt: time.Unix(1, 0),
	}))

	require.NoError(t, s.CreatePost(ctx, newMoment("p1", "u1", "t1", time.Unix(1, 0))))
	require.NoError(t, s.CreateComment(ctx, &entities.Comment{
		PostID: "p1", UserID: "user", Text: "hi", CreatedAt: time.Unix(2, 0),
	}))
}

func TestPg_GetCommentStats(t *testing.T) {
	defer cleanup(t)

	require.NoError(t, s.CreatePost(ctx, newMoment("p1", "u1", "t1", time.Unix(1, 0))))
	require.NoError(t, s.CreatePost(ctx, newMoment("p2", "u2", "t2", time.Unix(1, 0))))

	for i, ts := range []int64{10, 20, 30} {
		require.NoError(t, s.CreateComment(ctx, &entities.Comment{
			PostID: "p1", UserID: fmt.Sprintf("u%d", i), Text: "hi", CreatedAt: time.Unix(ts, 0),
		}))
	}

	stats, err := s.GetCommentStats(ctx, time.Unix(25, 0), "p1", "p2", "p1")
	require.NoError(t, err)

	assert.Equal(t, map[string]storage.CommentStats{
		"p1": {Total: 3, Recent: 1},
	}, stats)
}

func TestPg_GetEngagedTrackIDs(t *testing.T) {
	defer cleanup(t)

	require.NoError(t, s.CreatePost(ctx, newMoment("p1", "u1", "t1", time.Unix(1, 0))))
	require.NoError(t, s.CreatePost(ctx, newMoment("p2", "u2", "t2", time.Unix(1, 0))))
	require.NoError(t, s.CreatePost(ctx, &entities.Post{
		ID: "r1", Owner: "user", Type: entities.RepostPostType, OriginalPostID: "p2",
		CreatedAt: time.Unix(10, 0).UTC(), Visibility: entities.PublicVisibility,
	}))

	require.NoError(t, s.SetLike(ctx, "p1", "user", time.Unix(10, 0)))
	require.NoError(t, s.SetLike(ctx, "p2", "other", time.Unix(10, 0)))

	ids, err := s.GetEngagedTrackIDs(ctx, "user", time.Unix(5, 0))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, ids)

	// Outside the window.
	ids, err = s.GetEngagedTrackIDs(ctx, "user", time.Unix(50, 0))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPg_GetTrackEngagements(t *testing.T) {
	defer cleanup(t)

	require.NoError(t, s.CreatePost(ctx, newMoment("p1", "u1", "t1", time.Unix(1, 0))))
	require.NoError(t, s.CreatePost(ctx, newMoment("p2", "u2", "t2", time.Unix(1, 0))))
	require.NoError(t, s.CreatePost(ctx, &entities.Post{
		ID: "r1", Owner: "reposter", Type: entities.RepostPostType, OriginalPostID: "p1",
		CreatedAt: time.Unix(10, 0).UTC(), Visibility: entities.PublicVisibility,
	}))

	require.NoError(t, s.SetLike(ctx, "p1", "liker", time.Unix(10, 0)))
	require.NoError(t, s.SetLike(ctx, "p2", "liker", time.Unix(10, 0)))

	ee, err := s.GetTrackEngagements(ctx, time.Unix(5, 0), "t1", "t2")
	require.NoError(t, err)

	assert.ElementsMatch(t, []*storage.TrackEngagement{
		{UserID: "liker", TrackID: "t1"},
		{UserID: "liker", TrackID: "t2"},
		{UserID: "reposter", TrackID: "t1"},
	}, ee)
}

func TestPg_UpsertTracks(t *testing.T) {
	defer cleanup(t)

	track := &entities.Track{
		ID:            "t1",
		Title:         "title",
		Artist:        "artist",
		DurationMs:    60000,
		StreamURL:     "https://node/stream",
		LastFetchedAt: time.Unix(100, 0).UTC(),
	}

	require.NoError(t, s.UpsertTracks(ctx, track))

	got, err := s.GetTrack(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "title", got.Title)
	assert.Empty(t, got.ArtworkURL)

	track.Title = "renamed"
	track.ArtworkURL = "https://node/art"
	require.NoError(t, s.UpsertTracks(ctx, track))

	got, err = s.GetTrack(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "https://node/art", got.ArtworkURL)
}

func TestPg_GetTrack(t *testing.T) {
	defer cleanup(t)

	_, err := s.GetTrack(ctx, "missing")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

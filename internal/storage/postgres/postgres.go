// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/soundscroll/orpheus/internal/entities"
	"github.com/soundscroll/orpheus/internal/storage"
)

const foreignKeyViolation = "23503"

type pg struct {
	ext sqlx.ExtContext
}

type postDTO struct {
	ID             string         `db:"id"`
	Owner          string         `db:"user_id"`
	Type           string         `db:"type"`
	TrackID        sql.NullString `db:"track_id"`
	StartMs        sql.NullInt64  `db:"start_ms"`
	Text           sql.NullString `db:"text"`
	OriginalPostID sql.NullString `db:"original_post_id"`
	CreatedAt      time.Time      `db:"created_at"`
	Visibility     string         `db:"visibility"`
}

type likeDTO struct {
	PostID    string    `db:"post_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

type trackDTO struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Artist        string         `db:"artist"`
	DurationMs    int64          `db:"duration_ms"`
	ArtworkURL    sql.NullString `db:"artwork_url"`
	PermalinkURL  sql.NullString `db:"permalink_url"`
	StreamURL     sql.NullString `db:"stream_url"`
	LastFetchedAt time.Time      `db:"last_fetched_at"`
}

func (s pg) ListPosts(ctx context.Context, p *storage.ListPostsParams) ([]*entities.Post, error) {
	query := `
		SELECT id, user_id, type, track_id, start_ms, text, original_post_id, created_at, visibility
		FROM posts`

	var (
		conditions []string
		args       []interface{}
	)

	if p.Visibility != nil {
		conditions = append(conditions, "visibility = ?")
		args = append(args, string(*p.Visibility))
	}

	if p.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*p.Type))
	}

	if len(p.TrackIDs) > 0 {
		conditions = append(conditions, "track_id IN (?)")
		args = append(args, stringsUnique(p.TrackIDs))
	}

	if p.CreatedAfter != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, p.CreatedAfter.UTC())
	}

	if len(conditions) > 0 {
		query = fmt.Sprintf("%s WHERE %s", query, strings.Join(conditions, " AND "))
	}

	query = fmt.Sprintf("%s ORDER BY created_at DESC", query)

	if p.Limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, p.Limit)
	}

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to construct IN clause: %w", err)
	}

	var pp []*postDTO
	if err := sqlx.SelectContext(ctx, s.ext, &pp, s.ext.Rebind(query), inArgs...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Post, len(pp))
	for i, v := range pp {
		out[i] = toPost(v)
	}

	return out, nil
}

func (s pg) CreatePost(ctx context.Context, p *entities.Post) error {
	post := postDTO{
		ID:             p.ID,
		Owner:          p.Owner,
		Type:           string(p.Type),
		TrackID:        nullString(p.TrackID),
		Text:           nullString(p.Text),
		OriginalPostID: nullString(p.OriginalPostID),
		CreatedAt:      p.CreatedAt.UTC(),
		Visibility:     string(p.Visibility),
	}

	if p.TrackID != "" {
		post.StartMs = sql.NullInt64{Int64: p.StartMs, Valid: true}
	}

	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO posts(id, user_id, type, track_id, start_ms, text, original_post_id, created_at, visibility)
			VALUES(:id, :user_id, :type, :track_id, :start_ms, :text, :original_post_id, :created_at, :visibility)
		`, post,
	); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return storage.ErrNotFound
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) GetPost(ctx context.Context, id string) (*entities.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p, `
			SELECT id, user_id, type, track_id, start_ms, text, original_post_id, created_at, visibility
			FROM posts
			WHERE id = $1
		`,
		id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toPost(&p), nil
}

func (s pg) SetLike(ctx context.Context, postID, userID string, timestamp time.Time) error {
	if _, err := s.ext.ExecContext(ctx, `
			INSERT INTO likes(post_id, user_id, created_at)
				VALUES($1, $2, $3)
			ON CONFLICT(post_id, user_id) DO NOTHING`,
		postID, userID, timestamp.UTC(),
	); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return storage.ErrNotFound
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) UnsetLike(ctx context.Context, postID, userID string) error {
	if _, err := s.ext.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id=$1 AND user_id=$2`,
		postID, userID,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) ListLikes(ctx context.Context, p *storage.ListLikesParams) ([]*entities.Like, error) {
	query := `SELECT post_id, user_id, created_at FROM likes`

	var (
		conditions []string
		args       []interface{}
	)

	if len(p.PostIDs) > 0 {
		conditions = append(conditions, "post_id IN (?)")
		args = append(args, stringsUnique(p.PostIDs))
	}

	if p.LikedBy != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *p.LikedBy)
	}

	if p.CreatedAfter != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, p.CreatedAfter.UTC())
	}

	if len(conditions) > 0 {
		query = fmt.Sprintf("%s WHERE %s", query, strings.Join(conditions, " AND "))
	}

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to construct IN clause: %w", err)
	}

	var ll []*likeDTO
	if err := sqlx.SelectContext(ctx, s.ext, &ll, s.ext.Rebind(query), inArgs...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Like, len(ll))
	for i, v := range ll {
		out[i] = &entities.Like{
			PostID:    v.PostID,
			UserID:    v.UserID,
			CreatedAt: v.CreatedAt,
		}
	}

	return out, nil
}

func (s pg) CreateComment(ctx context.Context, c *entities.Comment) error {
	if _, err := s.ext.ExecContext(ctx, `
			INSERT INTO comments(post_id, user_id, text, created_at)
			VALUES($1, $2, $3, $4)`,
		c.PostID, c.UserID, c.Text, c.CreatedAt.UTC(),
	); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return storage.ErrNotFound
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) GetCommentStats(ctx context.Context, recentSince time.Time, postID ...string) (map[string]storage.CommentStats, error) {
	if len(postID) == 0 {
		return map[string]storage.CommentStats{}, nil
	}

	query, args, err := sqlx.In(`
			SELECT post_id,
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE created_at >= ?) AS recent
			FROM comments
			WHERE post_id IN (?)
			GROUP BY post_id
		`, recentSince.UTC(), stringsUnique(postID))
	if err != nil {
		return nil, fmt.Errorf("failed to construct IN clause: %w", err)
	}

	var cc []*struct {
		PostID string `db:"post_id"`
		Total  uint32 `db:"total"`
		Recent uint32 `db:"recent"`
	}

	if err := sqlx.SelectContext(ctx, s.ext, &cc, s.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make(map[string]storage.CommentStats, len(cc))
	for _, v := range cc {
		out[v.PostID] = storage.CommentStats{
			Total:  v.Total,
			Recent: v.Recent,
		}
	}

	return out, nil
}

func (s pg) GetEngagedTrackIDs(ctx context.Context, userID string, since time.Time) ([]string, error) {
	var ids []string

	if err := sqlx.SelectContext(ctx, s.ext, &ids, `
			SELECT p.track_id FROM likes l
				JOIN posts p ON p.id = l.post_id
			WHERE l.user_id = $1 AND l.created_at >= $2 AND p.track_id IS NOT NULL
			UNION
			SELECT o.track_id FROM posts r
				JOIN posts o ON o.id = r.original_post_id
			WHERE r.user_id = $1 AND r.type = 'repost' AND r.created_at >= $2 AND o.track_id IS NOT NULL
		`,
		userID, since.UTC(),
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return ids, nil
}

func (s pg) GetTrackEngagements(ctx context.Context, since time.Time, trackID ...string) ([]*storage.TrackEngagement, error) {
	if len(trackID) == 0 {
		return nil, nil
	}

	trackID = stringsUnique(trackID)

	query, args, err := sqlx.In(`
			SELECT l.user_id AS user_id, p.track_id AS track_id FROM likes l
				JOIN posts p ON p.id = l.post_id
			WHERE l.created_at >= ? AND p.track_id IN (?)
			UNION
			SELECT r.user_id AS user_id, o.track_id AS track_id FROM posts r
				JOIN posts o ON o.id = r.original_post_id
			WHERE r.type = 'repost' AND r.created_at >= ? AND o.track_id IN (?)
		`, since.UTC(), trackID, since.UTC(), trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to construct IN clause: %w", err)
	}

	var ee []*struct {
		UserID  string `db:"user_id"`
		TrackID string `db:"track_id"`
	}

	if err := sqlx.SelectContext(ctx, s.ext, &ee, s.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*storage.TrackEngagement, len(ee))
	for i, v := range ee {
		out[i] = &storage.TrackEngagement{
			UserID:  v.UserID,
			TrackID: v.TrackID,
		}
	}

	return out, nil
}

func (s pg) GetTrack(ctx context.Context, id string) (*entities.Track, error) {
	var t trackDTO

	if err := sqlx.GetContext(ctx, s.ext, &t, `
			SELECT id, title, artist, duration_ms, artwork_url, permalink_url, stream_url, last_fetched_at
			FROM tracks_cache
			WHERE id = $1
		`,
		id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return &entities.Track{
		ID:            t.ID,
		Title:         t.Title,
		Artist:        t.Artist,
		DurationMs:    t.DurationMs,
		ArtworkURL:    t.ArtworkURL.String,
		PermalinkURL:  t.PermalinkURL.String,
		StreamURL:     t.StreamURL.String,
		LastFetchedAt: t.LastFetchedAt,
	}, nil
}

func (s pg) UpsertTracks(ctx context.Context, tracks ...*entities.Track) error {
	for _, t := range tracks {
		track := trackDTO{
			ID:            t.ID,
			Title:         t.Title,
			Artist:        t.Artist,
			DurationMs:    t.DurationMs,
			ArtworkURL:    nullString(t.ArtworkURL),
			PermalinkURL:  nullString(t.PermalinkURL),
			StreamURL:     nullString(t.StreamURL),
			LastFetchedAt: t.LastFetchedAt.UTC(),
		}

		if _, err := sqlx.NamedExecContext(ctx, s.ext,
			`
				INSERT INTO tracks_cache(id, title, artist, duration_ms, artwork_url, permalink_url, stream_url, last_fetched_at)
				VALUES(:id, :title, :artist, :duration_ms, :artwork_url, :permalink_url, :stream_url, :last_fetched_at)
				ON CONFLICT(id) DO UPDATE SET
				title=excluded.title, artist=excluded.artist, duration_ms=excluded.duration_ms,
				artwork_url=excluded.artwork_url, permalink_url=excluded.permalink_url,
				stream_url=excluded.stream_url, last_fetched_at=excluded.last_fetched_at
			`, track,
		); err != nil {
			return fmt.Errorf("failed to exec: %w", err)
		}
	}

	return nil
}

// New creates new instance of pg.
func New(db *sql.DB) storage.Storage {
	return pg{
		ext: sqlx.NewDb(db, "postgres"),
	}
}

func toPost(p *postDTO) *entities.Post {
	return &entities.Post{
		ID:             p.ID,
		Owner:          p.Owner,
		Type:           entities.PostType(p.Type),
		TrackID:        p.TrackID.String,
		StartMs:        p.StartMs.Int64,
		Text:           p.Text.String,
		OriginalPostID: p.OriginalPostID.String,
		CreatedAt:      p.CreatedAt,
		Visibility:     entities.Visibility(p.Visibility),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringsUnique(s []string) []string {
	m := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))

	for _, v := range s {
		if _, ok := m[v]; !ok {
			m[v] = struct{}{}
			out = append(out, v)
		}
	}

	return out
}

// Package audius is an implementation of catalog interface over the Audius API.
package audius

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/soundscroll/orpheus/internal/catalog"
	"github.com/soundscroll/orpheus/internal/entities"
)

var log = logrus.WithField("package", "audius")

// DefaultDiscoveryURL is the public Audius discovery endpoint.
const DefaultDiscoveryURL = "https://api.audius.co"

const (
	searchLimit   = 50
	maxPoolOffset = 200
)

// Search keywords used to build random track pools.
var keywords = []string{
	"lofi", "chill", "ambient", "focus", "sleep", "beats", "hip hop", "house",
	"techno", "disco", "jazz", "soul", "guitar", "piano", "synth", "indie",
	"electronic", "dance", "workout", "acoustic", "instrumental", "vocal",
	"folk", "rock", "experimental", "soundtrack", "downtempo", "meditation",
	"city pop", "dream pop",
}

var trendingPeriods = []string{"week", "month", "year", "all_time"}

type client struct {
	http         *http.Client
	discoveryURL string

	mu   sync.Mutex
	host string
	rnd  *rand.Rand
}

// New creates new instance of audius catalog client.
func New(discoveryURL string, timeout time.Duration) catalog.Provider {
	return &client{
		http:         &http.Client{Timeout: timeout},
		discoveryURL: discoveryURL,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type trackJSON struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Duration     int64  `json:"duration"`
	IsStreamable *bool  `json:"is_streamable"`
	Permalink    string `json:"permalink"`
	User         struct {
		Name string `json:"name"`
	} `json:"user"`
	Artwork struct {
		Small string `json:"150x150"`
		Large string `json:"480x480"`
	} `json:"artwork"`
}

func (c *client) GetRandomTracks(ctx context.Context, count int) ([]*entities.Track, error) {
	if count <= 0 {
		return nil, nil
	}

	attempts := count/8 + 1
	if attempts < 3 {
		attempts = 3
	}

	var out []*entities.Track
	for attempt := 0; attempt < attempts && len(out) < count; attempt++ {
		var (
			tracks []*entities.Track
			err    error
		)

		// Alternate trending and keyword-search pools to vary the supply.
		if attempt%2 == 0 {
			tracks, err = c.requestTracks(ctx, fmt.Sprintf("/v1/tracks/trending?time=%s&limit=%d&offset=%d",
				c.pickString(trendingPeriods), searchLimit, c.intn(maxPoolOffset)))
		} else {
			tracks, err = c.requestTracks(ctx, fmt.Sprintf("/v1/tracks/search?query=%s&limit=%d&offset=%d",
				url.QueryEscape(c.pickString(keywords)), searchLimit, c.intn(maxPoolOffset)))
		}

		if err != nil {
			log.WithError(err).Warn("failed to fetch random tracks pool")
			c.resetHost()
			continue
		}

		out = append(out, tracks...)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no tracks fetched in %d attempts", attempts)
	}

	c.shuffle(out)
	if len(out) > count {
		out = out[:count]
	}

	return out, nil
}

func (c *client) SearchTracks(ctx context.Context, query string) ([]*entities.Track, error) {
	if query == "" {
		return nil, nil
	}

	tracks, err := c.requestTracks(ctx, fmt.Sprintf("/v1/tracks/search?query=%s&limit=20", url.QueryEscape(query)))
	if err != nil {
		c.resetHost()
		return nil, fmt.Errorf("failed to search tracks: %w", err)
	}

	return tracks, nil
}

func (c *client) GetTrack(ctx context.Context, id string) (*entities.Track, error) {
	host, err := c.resolveHost(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host: %w", err)
	}

	var resp struct {
		Data *trackJSON `json:"data"`
	}

	if err := c.getJSON(ctx, fmt.Sprintf("%s/v1/tracks/%s", host, url.PathEscape(id)), &resp); err != nil {
		c.resetHost()
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	if resp.Data == nil {
		return nil, catalog.ErrTrackNotFound
	}

	t := toTrack(host, resp.Data)
	if t == nil {
		return nil, catalog.ErrTrackNotFound
	}

	return t, nil
}

func (c *client) requestTracks(ctx context.Context, endpoint string) ([]*entities.Track, error) {
	host, err := c.resolveHost(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host: %w", err)
	}

	var resp struct {
		Data []*trackJSON `json:"data"`
	}

	if err := c.getJSON(ctx, host+endpoint, &resp); err != nil {
		return nil, err
	}

	out := make([]*entities.Track, 0, len(resp.Data))
	for _, v := range resp.Data {
		if t := toTrack(host, v); t != nil {
			out = append(out, t)
		}
	}

	return out, nil
}

// resolveHost picks a discovery node and keeps it until a request against it fails.
func (c *client) resolveHost(ctx context.Context) (string, error) {
	c.mu.Lock()
	host := c.host
	c.mu.Unlock()

	if host != "" {
		return host, nil
	}

	var resp struct {
		Data []string `json:"data"`
	}

	if err := c.getJSON(ctx, c.discoveryURL, &resp); err != nil {
		return "", err
	}

	if len(resp.Data) == 0 {
		return "", fmt.Errorf("no hosts available")
	}

	c.mu.Lock()
	c.host = resp.Data[c.rnd.Intn(len(resp.Data))]
	host = c.host
	c.mu.Unlock()

	return host, nil
}

func (c *client) resetHost() {
	c.mu.Lock()
	c.host = ""
	c.mu.Unlock()
}

func (c *client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *client) pickString(ss []string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ss[c.rnd.Intn(len(ss))]
}

func (c *client) intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rnd.Intn(n)
}

func (c *client) shuffle(tt []*entities.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rnd.Shuffle(len(tt), func(i, j int) {
		tt[i], tt[j] = tt[j], tt[i]
	})
}

func toTrack(host string, t *trackJSON) *entities.Track {
	if t.ID == "" || (t.IsStreamable != nil && !*t.IsStreamable) {
		return nil
	}

	title := t.Title
	if title == "" {
		title = "Untitled"
	}

	artist := t.User.Name
	if artist == "" {
		artist = "Unknown"
	}

	artwork := t.Artwork.Large
	if artwork == "" {
		artwork = t.Artwork.Small
	}

	return &entities.Track{
		ID:            t.ID,
		Title:         title,
		Artist:        artist,
		DurationMs:    t.Duration * 1000,
		ArtworkURL:    artwork,
		PermalinkURL:  t.Permalink,
		StreamURL:     fmt.Sprintf("%s/v1/tracks/%s/stream", host, t.ID),
		LastFetchedAt: time.Now(),
	}
}

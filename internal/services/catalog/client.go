package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://www.googleapis.com/youtube/v3"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultHTTPTimeout = 30 * time.Second
	expirySkew         = 60 * time.Second
)

// ErrEmptyPlaylist indicates the watched playlist has no entries.
var ErrEmptyPlaylist = errors.New("catalog: playlist is empty")

// Entry describes one playlist entry pending processing.
type Entry struct {
	PlaylistItemID string
	VideoID        string
	Title          string
}

// WatchURL returns the public video URL for the entry.
func (e Entry) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + e.VideoID
}

// Service is the playlist operations the pipeline depends on.
type Service interface {
	NextEntry(ctx context.Context) (Entry, error)
	RemoveEntry(ctx context.Context, playlistItemID string) error
	HealthCheck(ctx context.Context) error
}

// Config captures the settings for the playlist API client.
type Config struct {
	PlaylistID     string
	BaseURL        string
	TokenURL       string
	TokenFile      string
	ClientID       string
	ClientSecret   string
	TimeoutSeconds int
}

// Client talks to the YouTube Data API v3 playlistItems resource using an
// OAuth token persisted on disk.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the time source (used by tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a playlist client from the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.TokenURL == "" {
		client.cfg.TokenURL = defaultTokenURL
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NextEntry returns the first entry of the watched playlist.
func (c *Client) NextEntry(ctx context.Context) (Entry, error) {
	if strings.TrimSpace(c.cfg.PlaylistID) == "" {
		return Entry{}, errors.New("catalog: playlist id required")
	}
	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("playlistId", c.cfg.PlaylistID)
	query.Set("maxResults", "1")

	body, err := c.doAuthorized(ctx, http.MethodGet, "/playlistItems?"+query.Encode(), nil)
	if err != nil {
		return Entry{}, fmt.Errorf("catalog: list playlist items: %w", err)
	}

	var parsed struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title      string `json:"title"`
				ResourceID struct {
					VideoID string `json:"videoId"`
				} `json:"resourceId"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Entry{}, fmt.Errorf("catalog: decode playlist response: %w", err)
	}
	if len(parsed.Items) == 0 {
		return Entry{}, ErrEmptyPlaylist
	}
	first := parsed.Items[0]
	entry := Entry{
		PlaylistItemID: first.ID,
		VideoID:        first.Snippet.ResourceID.VideoID,
		Title:          strings.TrimSpace(first.Snippet.Title),
	}
	if entry.PlaylistItemID == "" || entry.VideoID == "" {
		return Entry{}, errors.New("catalog: playlist entry missing identifiers")
	}
	return entry, nil
}

// RemoveEntry deletes a playlist entry after its video has been published.
func (c *Client) RemoveEntry(ctx context.Context, playlistItemID string) error {
	playlistItemID = strings.TrimSpace(playlistItemID)
	if playlistItemID == "" {
		return errors.New("catalog: playlist item id required")
	}
	query := url.Values{}
	query.Set("id", playlistItemID)
	if _, err := c.doAuthorized(ctx, http.MethodDelete, "/playlistItems?"+query.Encode(), nil); err != nil {
		return fmt.Errorf("catalog: remove playlist item %s: %w", playlistItemID, err)
	}
	return nil
}

// HealthCheck verifies the stored credentials can reach the playlist.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.NextEntry(ctx)
	if errors.Is(err, ErrEmptyPlaylist) {
		return nil
	}
	return err
}

func (c *Client) doAuthorized(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, summarizeBody(payload))
	}
	return payload, nil
}

func summarizeBody(body []byte) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	const limit = 200
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	if text == "" {
		return "<empty body>"
	}
	return text
}

// package lyrics fetches and selects synced-lyric timelines for tracks from
// an lrclib-style backend.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	httpTimeout = 10 * time.Second
	maxRetries  = 2
	userAgent   = "lyricbird/1.0"
)

// errNoMatch marks a clean backend miss (404), as opposed to a transient
// failure worth retrying.
var errNoMatch = errors.New("no match from backend")

// Candidate is one backend search result.
type Candidate struct {
	ID           int64   `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Client talks to an lrclib-compatible API. Requests are rate limited and
// transient failures retried with bounded backoff.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *log.Logger
}

func NewClient(baseURL string, logger *log.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 2 * time.Second,
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: transport,
			Timeout:   httpTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		log:     logger.With("component", "lyrics"),
	}
}

// Get does an exact lookup against /get using title, artist, album, and the
// duration hint. A 404 is errNoMatch, not a failure.
func (c *Client) Get(ctx context.Context, title, artist, album string, duration time.Duration) (*Candidate, error) {
	query := url.Values{}
	query.Set("track_name", title)
	query.Set("artist_name", artist)
	if album != "" {
		query.Set("album_name", album)
	}
	if duration > 0 {
		query.Set("duration", strconv.Itoa(int(duration.Round(time.Second).Seconds())))
	}

	var result Candidate
	if err := c.doJSON(ctx, "/get", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Search lists candidate results from /search, in the backend's own
// confidence order.
func (c *Client) Search(ctx context.Context, title, artist string) ([]Candidate, error) {
	query := url.Values{}
	query.Set("track_name", title)
	query.Set("artist_name", artist)

	var results []Candidate
	if err := c.doJSON(ctx, "/search", query, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) doJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	requestURL := c.baseURL + endpoint + "?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			c.log.Debug("retrying backend request", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.doOnce(ctx, requestURL, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, errNoMatch) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("backend request failed after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) doOnce(ctx context.Context, requestURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build http request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNoMatch
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read backend response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode backend json: %w", err)
	}

	return nil
}

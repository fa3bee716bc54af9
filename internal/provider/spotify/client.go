// Package spotify adapts the Spotify Web API playback endpoints to the
// provider contract. Commands target a Connect device; the web player the
// user has open acts as that device.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultBaseURL is the Spotify Web API base URL.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is a minimal Spotify Web API playback client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	deviceID    string
	log         *log.Logger
}

// NewClient creates a client with the given bearer token. baseURL may be
// empty to use the public API.
func NewClient(accessToken, deviceID, baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: accessToken,
		deviceID:    deviceID,
		log:         logger,
	}
}

// PlayOptions configures a play request.
type PlayOptions struct {
	URIs       []string `json:"uris,omitempty"`
	PositionMS int      `json:"position_ms,omitempty"`
}

// PlaybackState is the subset of the player state response the adapter
// needs.
type PlaybackState struct {
	IsPlaying  bool `json:"is_playing"`
	ProgressMS int  `json:"progress_ms"`
	Item       *struct {
		DurationMS int `json:"duration_ms"`
	} `json:"item"`
}

// Play starts playback. If opts is nil, resumes current playback.
func (c *Client) Play(ctx context.Context, opts *PlayOptions) error {
	// Spotify requires a JSON body even for resume
	body := opts
	if body == nil {
		body = &PlayOptions{}
	}
	return c.request(ctx, http.MethodPut, c.withDevice("/me/player/play", nil), body, nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.request(ctx, http.MethodPut, c.withDevice("/me/player/pause", nil), nil, nil)
}

// Seek seeks to a position in the current track.
func (c *Client) Seek(ctx context.Context, positionMS int) error {
	path := c.withDevice("/me/player/seek", map[string]string{
		"position_ms": strconv.Itoa(positionMS),
	})
	return c.request(ctx, http.MethodPut, path, nil, nil)
}

// SetVolume sets the playback volume (0-100).
func (c *Client) SetVolume(ctx context.Context, percent int) error {
	path := c.withDevice("/me/player/volume", map[string]string{
		"volume_percent": strconv.Itoa(percent),
	})
	return c.request(ctx, http.MethodPut, path, nil, nil)
}

// GetState returns the current playback state, or nil if nothing is
// playing (204 from the API).
func (c *Client) GetState(ctx context.Context) (*PlaybackState, error) {
	var state PlaybackState
	ok, err := c.requestMaybeEmpty(ctx, http.MethodGet, "/me/player", nil, &state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (c *Client) withDevice(path string, params map[string]string) string {
	if c.deviceID != "" {
		if params == nil {
			params = map[string]string{}
		}
		params["device_id"] = c.deviceID
	}
	if len(params) == 0 {
		return path
	}
	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) request(ctx context.Context, method, path string, body, result any) error {
	_, err := c.requestMaybeEmpty(ctx, method, path, body, result)
	return err
}

// requestMaybeEmpty performs the request with retries on network errors,
// 429 and 5xx. It returns false when the API answered 204 No Content.
func (c *Client) requestMaybeEmpty(ctx context.Context, method, path string, body, result any) (bool, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := baseRetryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			c.log.Debug("retrying spotify request", "attempt", attempt, "wait", wait, "err", lastErr)
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(wait):
			}
		}

		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = strings.NewReader(string(jsonBody))
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return false, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue // Retry on network error
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusNoContent {
			return false, nil
		}

		// Rate limited and server errors are transient
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = apiError(resp.StatusCode, respBody)
			continue
		}

		// Don't retry other 4xx errors
		if resp.StatusCode >= 400 {
			return false, apiError(resp.StatusCode, respBody)
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return false, fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return true, nil
	}

	return false, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// APIError represents a Spotify API error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error %d: %s", e.Status, e.Message)
}

func apiError(status int, body []byte) error {
	var payload struct {
		ErrorInfo struct {
			Status  int    `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.ErrorInfo.Message != "" {
		return &APIError{Status: payload.ErrorInfo.Status, Message: payload.ErrorInfo.Message}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}

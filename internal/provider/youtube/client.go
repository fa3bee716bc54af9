// Package youtube adapts a local embedded-player host to the provider
// contract. The host wraps the IFrame player and exposes a small JSON
// API: load/play/pause/seek/volume/mute/destroy plus a state endpoint.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is where the player host listens when unconfigured.
const DefaultBaseURL = "http://localhost:8977"

// Client talks to the player host.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the player host at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// LoadRequest cues a video into the player.
type LoadRequest struct {
	VideoID  string  `json:"video_id"`
	Autoplay bool    `json:"autoplay"`
	Muted    bool    `json:"muted"`
	Volume   float64 `json:"volume"` // 0.0 - 1.0
}

// PlayerState is the host's view of the embedded player.
type PlayerState struct {
	Ready      bool `json:"ready"`
	Playing    bool `json:"playing"`
	PositionMS int  `json:"position_ms"`
	DurationMS int  `json:"duration_ms"`
}

// Load cues a new video.
func (c *Client) Load(ctx context.Context, req LoadRequest) error {
	return c.post(ctx, "/player/load", req)
}

// Play resumes playback.
func (c *Client) Play(ctx context.Context) error {
	return c.post(ctx, "/player/play", nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.post(ctx, "/player/pause", nil)
}

// Seek moves playback to the given position.
func (c *Client) Seek(ctx context.Context, positionMS int) error {
	return c.post(ctx, "/player/seek", map[string]int{"position_ms": positionMS})
}

// SetVolume sets the player volume (0.0 - 1.0).
func (c *Client) SetVolume(ctx context.Context, volume float64) error {
	return c.post(ctx, "/player/volume", map[string]float64{"volume": volume})
}

// SetMuted mutes or unmutes the player.
func (c *Client) SetMuted(ctx context.Context, muted bool) error {
	return c.post(ctx, "/player/mute", map[string]bool{"muted": muted})
}

// Destroy tears the embedded player down.
func (c *Client) Destroy(ctx context.Context) error {
	return c.post(ctx, "/player/destroy", nil)
}

// State fetches the current player state.
func (c *Client) State(ctx context.Context) (*PlayerState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/player/state", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player host error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var state PlayerState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	return &state, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("player host error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

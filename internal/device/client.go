package device

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// API is the set of device calls the dashboard makes. Client is the real
// implementation; tests substitute fakes.
type API interface {
	Status(ctx context.Context) (bool, error)
	LatestData(ctx context.Context) (Snapshot, error)
	LatestImage(ctx context.Context) (string, error)
	TriggerCapture(ctx context.Context) error
	FetchConfig(ctx context.Context) (Config, error)
	ApplyConfig(ctx context.Context, cfg Config) error
}

// Client wraps the device HTTP API. Every method normalizes failure into a
// *Failure; nothing is raised past this boundary.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewClient returns a client for the device API rooted at baseURL.
// A nil logger discards; a zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Status asks the device whether it considers itself connected.
func (c *Client) Status(ctx context.Context) (bool, error) {
	var body struct {
		Connected bool `json:"connected"`
	}
	if err := c.getJSON(ctx, "/api/connection_status", &body); err != nil {
		return false, err
	}
	return body.Connected, nil
}

// LatestData fetches the current capture snapshot metadata. The image payload
// is fetched separately via LatestImage; snapshots are small, images are not.
func (c *Client) LatestData(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := c.getJSON(ctx, "/api/latest_data", &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// LatestImage fetches the encoded image payload for the current snapshot.
func (c *Client) LatestImage(ctx context.Context) (string, error) {
	var body struct {
		Image string `json:"image"`
	}
	if err := c.getJSON(ctx, "/api/latest_image", &body); err != nil {
		return "", err
	}
	if body.Image == "" {
		return "", serverFailure(http.StatusNotFound, "no image available")
	}
	return body.Image, nil
}

// TriggerCapture asks the device to capture and analyze a new frame. The
// device needs settle time afterwards; callers wait before refreshing.
func (c *Client) TriggerCapture(ctx context.Context) error {
	return c.postJSON(ctx, "/api/trigger_capture", nil, nil)
}

// FetchConfig reads the device configuration, filling firmware defaults for
// any field the device omits.
func (c *Client) FetchConfig(ctx context.Context) (Config, error) {
	var body struct {
		DetectionThreshold  *float64 `json:"detection_threshold"`
		CameraEnabled       *bool    `json:"camera_enabled"`
		ExternalCameraIndex *int     `json:"external_camera_index"`
	}
	if err := c.getJSON(ctx, "/api/get_config", &body); err != nil {
		return Config{}, err
	}
	cfg := Config{
		DetectionThreshold:  DefaultDetectionThreshold,
		CameraEnabled:       DefaultCameraEnabled,
		ExternalCameraIndex: DefaultCameraIndex,
	}
	if body.DetectionThreshold != nil {
		cfg.DetectionThreshold = *body.DetectionThreshold
	}
	if body.CameraEnabled != nil {
		cfg.CameraEnabled = *body.CameraEnabled
	}
	if body.ExternalCameraIndex != nil {
		cfg.ExternalCameraIndex = *body.ExternalCameraIndex
	}
	return cfg, nil
}

// ApplyConfig submits an edited configuration to the device.
func (c *Client) ApplyConfig(ctx context.Context, cfg Config) error {
	return c.postJSON(ctx, "/api/set_config", cfg, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return networkFailure(err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	var payload io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return protocolFailure(err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return networkFailure(err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("device request failed", "path", req.URL.Path, "err", err)
		return networkFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serverFailure(resp.StatusCode, errorMessage(resp.Body))
	}
	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return protocolFailure(err)
	}
	return nil
}

// errorMessage extracts a human-readable message from a JSON error body, or
// returns "" so the caller falls back to a generic status message.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ""
	}
	return strings.TrimSpace(parsed.Error)
}

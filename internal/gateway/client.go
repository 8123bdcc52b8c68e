package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"

	"localcloud-tools-backend/config"
)

// Health is the emulator gateway health document: per-service states plus
// edition and version metadata.
type Health struct {
	Services map[string]string `json:"services"`
	Edition  string            `json:"edition,omitempty"`
	Version  string            `json:"version,omitempty"`
}

// ChaosFault describes one fault rule on the emulator's chaos endpoint. An
// empty field matches every value.
type ChaosFault struct {
	Service     string  `json:"service,omitempty"`
	Region      string  `json:"region,omitempty"`
	Operation   string  `json:"operation,omitempty"`
	Probability float64 `json:"probability,omitempty"`
	ErrorCode   string  `json:"error,omitempty"`
}

// Client talks to the emulator's management HTTP endpoints. These live under
// /_localstack on the edge port, next to the emulated AWS APIs.
type Client interface {
	CheckHealth(ctx context.Context) (Health, error)
	GetChaosFaults(ctx context.Context) ([]ChaosFault, error)
	SetChaosFaults(ctx context.Context, faults []ChaosFault) error
	SaveState(ctx context.Context) error
	LoadState(ctx context.Context) error
}

type gatewayClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	return &gatewayClient{
		baseURL:    cfg.Emulator.GatewayURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// CheckHealth fetches the gateway health document, retrying transient
// failures with exponential backoff. The emulator takes a few seconds to
// accept connections after container start.
func (c *gatewayClient) CheckHealth(ctx context.Context) (Health, error) {
	var health Health

	operation := func() error {
		body, err := c.do(ctx, http.MethodGet, "/_localstack/health", nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, &health)
	}

	healthBackoff := backoff.NewExponentialBackOff()
	healthBackoff.InitialInterval = 500 * time.Millisecond
	healthBackoff.MaxInterval = 5 * time.Second
	healthBackoff.MaxElapsedTime = 20 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(healthBackoff, ctx)); err != nil {
		return Health{}, fmt.Errorf("failed to reach emulator gateway: %w", err)
	}

	log.Debug().Int("services", len(health.Services)).Msg("Fetched emulator health")
	return health, nil
}

func (c *gatewayClient) GetChaosFaults(ctx context.Context) ([]ChaosFault, error) {
	body, err := c.do(ctx, http.MethodGet, "/_localstack/chaos/faults", nil)
	if err != nil {
		return nil, err
	}

	var faults []ChaosFault
	if err := json.Unmarshal(body, &faults); err != nil {
		return nil, fmt.Errorf("failed to decode chaos faults: %w", err)
	}
	return faults, nil
}

// SetChaosFaults replaces the emulator's active fault configuration. An empty
// slice clears all faults.
func (c *gatewayClient) SetChaosFaults(ctx context.Context, faults []ChaosFault) error {
	if faults == nil {
		faults = []ChaosFault{}
	}
	payload, err := json.Marshal(faults)
	if err != nil {
		return fmt.Errorf("failed to encode chaos faults: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, "/_localstack/chaos/faults", payload)
	return err
}

func (c *gatewayClient) SaveState(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/_localstack/state/save", nil)
	return err
}

func (c *gatewayClient) LoadState(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/_localstack/state/load", nil)
	return err
}

func (c *gatewayClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway returned %d for %s %s: %s", resp.StatusCode, method, path, bytes.TrimSpace(body))
	}

	return body, nil
}

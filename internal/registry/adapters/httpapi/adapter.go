// Package httpapi implements the provider adapter contract over plain
// HTTP/JSON lookup APIs. Provider-specific request shapes stay inside the
// adapter; the client only sees raw payloads.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fleetgate/internal/registry/ports"
)

// Config describes one provider endpoint.
type Config struct {
	Tag     string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Adapter is a generic JSON-over-HTTP provider adapter.
type Adapter struct {
	cfg    Config
	client *http.Client
}

// New creates an adapter for one provider endpoint.
func New(cfg Config) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (a *Adapter) Tag() string {
	return a.cfg.Tag
}

// Fetch posts the registration number to the provider's lookup endpoint.
// Network failures, timeouts, and 5xx responses are transient; 4xx responses
// are terminal for this registration number.
func (a *Adapter) Fetch(ctx context.Context, registrationNumber string) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{"registration_number": registrationNumber})
	if err != nil {
		return nil, fmt.Errorf("marshal lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v1/rc/lookup", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, ports.Transient(fmt.Errorf("%s lookup: %w", a.cfg.Tag, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, ports.Transient(fmt.Errorf("%s lookup: status %d", a.cfg.Tag, resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ports.Transient(fmt.Errorf("%s lookup: provider throttled", a.cfg.Tag))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s lookup: status %d", a.cfg.Tag, resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, ports.Transient(fmt.Errorf("%s lookup: decode response: %w", a.cfg.Tag, err))
	}
	return payload, nil
}

// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package deliver posts serialised incident documents to the configured
// incident API endpoint. One synchronous attempt per invocation; retry
// policy, if any, belongs to the caller's scheduler.
package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// Config describes the incident API connection.
type Config struct {
	// Optional client-credentials grant for the API. When TokenURL is empty
	// the client sends unauthenticated requests.
	TokenURL     string
	ClientID     string
	ClientSecret string

	// Timeout bounds the whole POST round-trip.
	Timeout time.Duration
}

// NewHTTPClient builds the HTTP client for the incident API: an oauth2
// client-credentials client when a token URL is configured, a plain client
// otherwise. The request timeout applies either way.
func NewHTTPClient(ctx context.Context, cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	if cfg.TokenURL == "" {
		return &http.Client{Timeout: timeout}
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	client := creds.Client(ctx)
	client.Timeout = timeout
	return client
}

// Client transmits documents to a single configured endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a transmitter targeting the given endpoint.
func NewClient(httpClient *http.Client, endpoint string) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
	}
}

// Send posts the document body and returns the parsed acknowledgment on any
// 2xx response. Non-2xx responses and unparseable bodies are failures
// carrying whatever diagnostic text the remote end provided.
func (c *Client) Send(ctx context.Context, body []byte) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post incident: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read incident API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("incident API rejected document",
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return nil, fmt.Errorf("incident API returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var ack map[string]any
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return nil, fmt.Errorf("decode incident API response %q: %w", string(respBody), err)
	}

	return ack, nil
}

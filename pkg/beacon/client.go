// Package beacon implements a client for the node-health beacon service,
// which scores public Hive RPC endpoints.
package beacon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the public beacon instance.
const DefaultBaseURL = "https://beacon.peakd.com"

// Node describes a candidate RPC endpoint with its health metadata.
// The beacon has shipped both "endpoint" and "url" as the address key over
// time, so both are accepted.
type Node struct {
	Endpoint    string `json:"endpoint"`
	URL         string `json:"url"`
	Version     string `json:"version"`
	LastUpdate  string `json:"updated_at"`
	Score       string `json:"score"`
	PassedTests int    `json:"success"`
	FailedTests int    `json:"fail"`
}

// Address returns whichever endpoint field the beacon populated.
func (n Node) Address() string {
	if n.Endpoint != "" {
		return n.Endpoint
	}
	return n.URL
}

// Client represents a beacon API client
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new beacon API client
func NewClient() *Client {
	return NewClientWithHTTP(&http.Client{Timeout: 10 * time.Second}, DefaultBaseURL)
}

// NewClientWithHTTP creates a new beacon API client with custom HTTP client and base URL
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Nodes retrieves the scored endpoint candidates, in beacon order.
// The beacon pre-sorts candidates best-first.
func (c *Client) Nodes(ctx context.Context) ([]Node, error) {
	url := fmt.Sprintf("%s/api/nodes", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var nodes []Node
	if err := json.NewDecoder(resp.Body).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return nodes, nil
}

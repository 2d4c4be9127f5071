// Package hiverpc implements a JSON-RPC 2.0 client for the Hive condenser
// and database APIs, with typed request/response schemas per method.
package hiverpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hivescope/witnessboard/pkg/metrics"
)

// DefaultEndpoint is the hardcoded endpoint used when no healthier node is
// known and as the transport-failure fallback.
const DefaultEndpoint = "https://api.hive.blog"

// Sentinel errors for failure cases
var (
	ErrRequestFailed    = errors.New("RPC request failed")
	ErrErrorResponse    = errors.New("RPC error response")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// Client represents a Hive JSON-RPC API client.
// Calls go to the primary endpoint; a transport failure is retried once
// against the fallback endpoint when the two differ.
type Client struct {
	httpClient *http.Client
	endpoint   string
	fallback   string
	nextID     atomic.Int64
}

// NewClient creates a client for the default public endpoint.
func NewClient() *Client {
	return NewClientWithHTTP(&http.Client{Timeout: 30 * time.Second}, DefaultEndpoint, DefaultEndpoint)
}

// NewClientWithHTTP creates a client with a custom HTTP client, primary
// endpoint and fallback endpoint.
func NewClientWithHTTP(httpClient *http.Client, endpoint, fallback string) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		fallback:   fallback,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type rpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Call issues a JSON-RPC request and decodes the result into out.
// A nil chain result leaves out untouched.
func (c *Client) Call(ctx context.Context, method string, params any, out any) error {
	start := time.Now()
	err := c.call(ctx, method, params, out)
	metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.RPCCallsTotal.WithLabelValues(method, outcome).Inc()
	return err
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	raw, err := c.post(ctx, c.endpoint, method, params)
	if err != nil && c.fallback != "" && c.fallback != c.endpoint {
		metrics.RPCFallbackRetriesTotal.Inc()
		raw, err = c.post(ctx, c.fallback, method, params)
	}
	if err != nil {
		return err
	}

	if out == nil || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

// post performs a single JSON-RPC round trip against the given endpoint.
func (c *Client) post(ctx context.Context, endpoint, method string, params any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w: %d", ErrRequestFailed, ErrUnexpectedStatus, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("%w: %s (%d)", ErrErrorResponse, rpcResp.Error.Message, rpcResp.Error.Code)
	}
	return rpcResp.Result, nil
}

// DynamicGlobalProperties fetches the chain-wide global properties.
func (c *Client) DynamicGlobalProperties(ctx context.Context) (*GlobalProperties, error) {
	var props GlobalProperties
	if err := c.Call(ctx, "condenser_api.get_dynamic_global_properties", nil, &props); err != nil {
		return nil, err
	}
	return &props, nil
}

// CurrentMedianHistoryPrice fetches the current median price feed.
func (c *Client) CurrentMedianHistoryPrice(ctx context.Context) (*Price, error) {
	var price Price
	if err := c.Call(ctx, "condenser_api.get_current_median_history_price", nil, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// WitnessesByVote fetches up to limit witnesses in vote-sorted order,
// starting at the given witness name. The start record is included when it
// names an existing witness.
func (c *Client) WitnessesByVote(ctx context.Context, start string, limit int) ([]Witness, error) {
	var witnesses []Witness
	if err := c.Call(ctx, "condenser_api.get_witnesses_by_vote", []any{start, limit}, &witnesses); err != nil {
		return nil, err
	}
	return witnesses, nil
}

// WitnessByAccount fetches a single witness record, or nil when the account
// is not a witness.
func (c *Client) WitnessByAccount(ctx context.Context, name string) (*Witness, error) {
	var witness *Witness
	if err := c.Call(ctx, "condenser_api.get_witness_by_account", []any{name}, &witness); err != nil {
		return nil, err
	}
	return witness, nil
}

// Accounts batch-fetches full account objects for the given names.
// Unknown names are simply absent from the result.
func (c *Client) Accounts(ctx context.Context, names []string) ([]Account, error) {
	var accounts []Account
	if err := c.Call(ctx, "condenser_api.get_accounts", []any{names}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListWitnessVotes pages the chain's witness-vote index ordered by
// (account, witness), starting at the given pair.
func (c *Client) ListWitnessVotes(ctx context.Context, startAccount, startWitness string, limit int) (*WitnessVotesPage, error) {
	params := map[string]any{
		"start": []string{startAccount, startWitness},
		"limit": limit,
		"order": "by_account_witness",
	}
	var page WitnessVotesPage
	if err := c.Call(ctx, "database_api.list_witness_votes", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListVestingDelegations pages the chain's vesting-delegation index ordered
// by (delegator, delegatee).
func (c *Client) ListVestingDelegations(ctx context.Context, startDelegator, startDelegatee string, limit int) (*VestingDelegationsPage, error) {
	params := map[string]any{
		"start": []string{startDelegator, startDelegatee},
		"limit": limit,
		"order": "by_delegation",
	}
	var page VestingDelegationsPage
	if err := c.Call(ctx, "database_api.list_vesting_delegations", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// LookupAccounts returns up to limit account names starting at the given
// lower bound, in name order.
func (c *Client) LookupAccounts(ctx context.Context, start string, limit int) ([]string, error) {
	var names []string
	if err := c.Call(ctx, "condenser_api.lookup_accounts", []any{start, limit}, &names); err != nil {
		return nil, err
	}
	return names, nil
}

package hiverpc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivescope/witnessboard/pkg/hiverpc"
)

// rpcServer serves canned JSON-RPC results per method.
func rpcServer(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string `json:"jsonrpc"`
			Method  string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		result, ok := results[req.Method]
		if !ok {
			result = `null`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":` + result + `,"id":1}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *hiverpc.Client {
	return hiverpc.NewClientWithHTTP(srv.Client(), srv.URL, srv.URL)
}

func TestClient(t *testing.T) {
	t.Parallel()

	t.Run("it decodes global properties", func(t *testing.T) {
		t.Parallel()

		// Arrange
		srv := rpcServer(t, map[string]string{
			"condenser_api.get_dynamic_global_properties": `{
				"head_block_number": 90000000,
				"total_vesting_fund_hive": "100.000 HIVE",
				"total_vesting_shares": "200.000000 VESTS"
			}`,
		})
		client := newClient(srv)

		// Act
		props, err := client.DynamicGlobalProperties(context.Background())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(90_000_000), props.HeadBlockNumber)
		assert.Equal(t, "100.000 HIVE", props.TotalVestingFundHive)
		assert.Equal(t, "200.000000 VESTS", props.TotalVestingShares)
	})

	t.Run("it decodes a witness list with numeric votes kept as strings", func(t *testing.T) {
		t.Parallel()

		srv := rpcServer(t, map[string]string{
			"condenser_api.get_witnesses_by_vote": `[
				{"owner": "alpha", "votes": "123456789012345", "last_confirmed_block_num": 90000000},
				{"owner": "beta", "votes": 42, "last_confirmed_block_num": 89999999}
			]`,
		})
		client := newClient(srv)

		witnesses, err := client.WitnessesByVote(context.Background(), "", 2)

		require.NoError(t, err)
		require.Len(t, witnesses, 2)
		assert.Equal(t, "alpha", witnesses[0].Owner)
		assert.Equal(t, json.Number("123456789012345"), witnesses[0].Votes)
		assert.Equal(t, json.Number("42"), witnesses[1].Votes)
	})

	t.Run("it returns nil for a non-witness account", func(t *testing.T) {
		t.Parallel()

		srv := rpcServer(t, map[string]string{
			"condenser_api.get_witness_by_account": `null`,
		})
		client := newClient(srv)

		witness, err := client.WitnessByAccount(context.Background(), "nobody")

		require.NoError(t, err)
		assert.Nil(t, witness)
	})

	t.Run("it sends database_api paging params as a named map", func(t *testing.T) {
		t.Parallel()

		var gotParams any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Params any `json:"params"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotParams = req.Params
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":{"votes":[]},"id":1}`))
		}))
		t.Cleanup(srv.Close)
		client := newClient(srv)

		_, err := client.ListWitnessVotes(context.Background(), "alice", "thewitness", 1000)

		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"start": []any{"alice", "thewitness"},
			"limit": float64(1000),
			"order": "by_account_witness",
		}, gotParams)
	})

	t.Run("it surfaces an RPC error envelope", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32000,"message":"itr != idx.end()"},"id":1}`))
		}))
		t.Cleanup(srv.Close)
		client := newClient(srv)

		_, err := client.DynamicGlobalProperties(context.Background())

		require.ErrorIs(t, err, hiverpc.ErrErrorResponse)
		assert.ErrorContains(t, err, "itr != idx.end()")
	})

	t.Run("it rejects a non-200 status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)
		client := newClient(srv)

		_, err := client.DynamicGlobalProperties(context.Background())

		require.ErrorIs(t, err, hiverpc.ErrRequestFailed)
		assert.ErrorIs(t, err, hiverpc.ErrUnexpectedStatus)
	})

	t.Run("it retries the fallback endpoint when the primary is down", func(t *testing.T) {
		t.Parallel()

		// Arrange: primary always 502, fallback healthy
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(primary.Close)
		fallback := rpcServer(t, map[string]string{
			"condenser_api.lookup_accounts": `["alice","bob"]`,
		})
		client := hiverpc.NewClientWithHTTP(fallback.Client(), primary.URL, fallback.URL)

		// Act
		names, err := client.LookupAccounts(context.Background(), "", 2)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, names)
	})

	t.Run("it fails without retrying when primary and fallback match", func(t *testing.T) {
		t.Parallel()

		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)
		client := newClient(srv)

		_, err := client.LookupAccounts(context.Background(), "", 2)

		require.ErrorIs(t, err, hiverpc.ErrRequestFailed)
		assert.Equal(t, 1, hits)
	})

	t.Run("it increments the request id per call", func(t *testing.T) {
		t.Parallel()

		var ids []int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				ID int64 `json:"id"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			ids = append(ids, req.ID)
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":[],"id":1}`))
		}))
		t.Cleanup(srv.Close)
		client := newClient(srv)

		_, err := client.LookupAccounts(context.Background(), "", 1)
		require.NoError(t, err)
		_, err = client.LookupAccounts(context.Background(), "", 1)
		require.NoError(t, err)

		assert.Equal(t, []int64{1, 2}, ids)
	})
}

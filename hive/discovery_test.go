package hive_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivescope/witnessboard/hive"
	"github.com/hivescope/witnessboard/pkg/clock"
	"github.com/hivescope/witnessboard/pkg/hiverpc"
)

// newEngine builds a discovery engine with a manual clock so batch delays
// do not really sleep.
func newEngine(chain *fakeChain, opts ...hive.DiscoveryOption) *hive.DiscoveryEngine {
	base := []hive.DiscoveryOption{
		hive.WithClock(clock.NewManualClock(time.Unix(0, 0))),
	}
	return hive.NewDiscoveryEngine(chain, hive.NewConverter(chain), append(base, opts...)...)
}

// voteEdges serves list_witness_votes with a fixed candidate pool.
func voteEdges(accounts ...string) func(context.Context, string, string, int) (*hiverpc.WitnessVotesPage, error) {
	return func(_ context.Context, startAccount, _ string, _ int) (*hiverpc.WitnessVotesPage, error) {
		votes := make([]hiverpc.WitnessVote, len(accounts))
		for i, acc := range accounts {
			votes[i] = hiverpc.WitnessVote{Account: acc, Witness: startAccount}
		}
		return &hiverpc.WitnessVotesPage{Votes: votes}, nil
	}
}

func TestProxiesOf(t *testing.T) {
	t.Parallel()

	t.Run("it never returns an account whose proxy field differs from the target", func(t *testing.T) {
		t.Parallel()

		// Arrange: a candidate pool with varied proxy fields
		proxies := map[string]string{
			"match-a":      "target",
			"match-b":      "target",
			"other-proxy":  "someoneelse",
			"empty-proxy":  "",
			"near-miss":    "target2",
			"case-differs": "Target",
		}
		var accounts []hiverpc.Account
		var names []string
		for name, proxy := range proxies {
			acc := account(name, "1000.000000 VESTS")
			acc.Proxy = proxy
			accounts = append(accounts, acc)
			names = append(names, name)
		}
		chain := &fakeChain{
			propsFn:        healthyProps(1),
			witnessVotesFn: voteEdges(names...),
			accountsFn:     accountsByName(accounts...),
		}
		engine := newEngine(chain)

		// Act
		relations := engine.ProxiesOf(context.Background(), "target")

		// Assert: only exact matches survive
		require.Len(t, relations, 2)
		for _, rel := range relations {
			assert.Equal(t, "target", rel.Proxy)
			assert.Contains(t, []string{"match-a", "match-b"}, rel.Delegator)
		}
	})

	t.Run("it sorts relations by power descending", func(t *testing.T) {
		t.Parallel()

		small := account("small", "1000.000000 VESTS")
		small.Proxy = "target"
		big := account("big", "9000.000000 VESTS")
		big.Proxy = "target"
		chain := &fakeChain{
			propsFn:        healthyProps(1),
			witnessVotesFn: voteEdges("small", "big"),
			accountsFn:     accountsByName(small, big),
		}
		engine := newEngine(chain)

		relations := engine.ProxiesOf(context.Background(), "target")

		require.Len(t, relations, 2)
		assert.Equal(t, "big", relations[0].Delegator)
		assert.InDelta(t, 4500.0, relations[0].Power, 1e-9) // 9000 vests at ratio 0.5
	})

	t.Run("it returns an empty list when the vote index is unreachable", func(t *testing.T) {
		t.Parallel()

		chain := &fakeChain{propsFn: healthyProps(1)}
		engine := newEngine(chain)

		relations := engine.ProxiesOf(context.Background(), "target")

		assert.Empty(t, relations)
	})

	t.Run("it fetches candidate details in sequential delayed batches", func(t *testing.T) {
		t.Parallel()

		// Arrange: 120 candidates at batch size 50 means 3 batches
		names := witnessNames(120)
		accounts := make([]hiverpc.Account, len(names))
		for i, name := range names {
			accounts[i] = account(name, "1.000000 VESTS")
			accounts[i].Proxy = "target"
		}
		var batchSizes []int
		byName := accountsByName(accounts...)
		chain := &fakeChain{
			propsFn:        healthyProps(1),
			witnessVotesFn: voteEdges(names...),
		}
		chain.accountsFn = func(ctx context.Context, batch []string) ([]hiverpc.Account, error) {
			batchSizes = append(batchSizes, len(batch))
			return byName(ctx, batch)
		}
		engine := newEngine(chain)

		// Act
		relations := engine.ProxiesOf(context.Background(), "target")

		// Assert
		assert.Len(t, relations, 120)
		assert.Equal(t, []int{50, 50, 20}, batchSizes)
	})
}

func TestVotersOf(t *testing.T) {
	t.Parallel()

	t.Run("it yields each matching username exactly once across overlapping passes", func(t *testing.T) {
		t.Parallel()

		// Arrange: "alice" appears in the delegator pool, the allowlist and
		// the stake sample; every pool member votes for the witness.
		voters := []hiverpc.Account{
			votingAccount("alice", "4000.000000 VESTS", "thewitness"),
			votingAccount("bob", "3000.000000 VESTS", "thewitness"),
			votingAccount("carol", "2000.000000 VESTS", "thewitness"),
		}
		chain := &fakeChain{
			propsFn:    healthyProps(1_000_000),
			accountsFn: accountsByName(voters...),
			delegationsFn: delegationPool(
				delegation("alice", "500.000000 VESTS"),
				delegation("bob", "100.000000 VESTS"),
			),
			witnessesFn: witnessLedger([]string{"carol"}),
			lookupFn:    lookupPool("alice", "carol"),
		}
		engine := newEngine(chain, hive.WithAllowlist([]string{"alice"}))

		// Act
		records := engine.VotersOf(context.Background(), "thewitness")

		// Assert: deduplicated, sorted by total power descending
		require.Len(t, records, 3)
		assert.Equal(t, "alice", records[0].Username)
		assert.Equal(t, "bob", records[1].Username)
		assert.Equal(t, "carol", records[2].Username)
	})

	t.Run("it excludes accounts that do not vote for the witness", func(t *testing.T) {
		t.Parallel()

		chain := &fakeChain{
			propsFn: healthyProps(1_000_000),
			accountsFn: accountsByName(
				votingAccount("supporter", "1000.000000 VESTS", "thewitness"),
				votingAccount("bystander", "9000.000000 VESTS", "otherwitness"),
			),
			delegationsFn: delegationPool(
				delegation("supporter", "1.000000 VESTS"),
				delegation("bystander", "1.000000 VESTS"),
			),
			witnessesFn: witnessLedger(nil),
			lookupFn:    lookupPool(),
		}
		engine := newEngine(chain, hive.WithAllowlist(nil))

		records := engine.VotersOf(context.Background(), "thewitness")

		require.Len(t, records, 1)
		assert.Equal(t, "supporter", records[0].Username)
	})

	t.Run("it isolates a failed pass from its siblings", func(t *testing.T) {
		t.Parallel()

		// Arrange: the delegation and lookup pools are down; the allowlist
		// pass still discovers its voter.
		chain := &fakeChain{
			propsFn:     healthyProps(1_000_000),
			accountsFn:  accountsByName(votingAccount("alice", "1000.000000 VESTS", "thewitness")),
			witnessesFn: witnessLedger(nil),
		}
		engine := newEngine(chain, hive.WithAllowlist([]string{"alice"}))

		records := engine.VotersOf(context.Background(), "thewitness")

		require.Len(t, records, 1)
		assert.Equal(t, "alice", records[0].Username)
	})

	t.Run("it returns an empty list on total failure", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(&fakeChain{}, hive.WithAllowlist(nil))

		records := engine.VotersOf(context.Background(), "thewitness")

		assert.Empty(t, records)
	})

	t.Run("it adds proxied power to the total and keeps it numeric", func(t *testing.T) {
		t.Parallel()

		// Arrange: 2,000,000 own vests plus 4e12 proxied micro-vests
		acc := votingAccount("whale", "2000000.000000 VESTS", "thewitness")
		acc.ProxiedVSFVotes = []json.Number{"3000000000000", "1000000000000", "0", "0"}
		chain := &fakeChain{
			propsFn:       healthyProps(1_000_000),
			accountsFn:    accountsByName(acc),
			delegationsFn: delegationPool(delegation("whale", "1.000000 VESTS")),
			witnessesFn:   witnessLedger(nil),
			lookupFn:      lookupPool(),
		}
		engine := newEngine(chain, hive.WithAllowlist(nil))

		// Act
		records := engine.VotersOf(context.Background(), "thewitness")

		// Assert: own 1,000,000 + proxied 4e12/1e6*0.5 = 2,000,000
		require.Len(t, records, 1)
		assert.InDelta(t, 1_000_000.0, records[0].OwnPower, 1e-6)
		assert.InDelta(t, 2_000_000.0, records[0].ProxiedPower, 1e-6)
		assert.InDelta(t, 3_000_000.0, records[0].TotalPower, 1e-6)
		assert.Equal(t, "3,000,000.000 Hive Power", records[0].TotalDisplay)
	})

	t.Run("it reports pass diagnostics without affecting results", func(t *testing.T) {
		t.Parallel()

		events := make(chan hive.Event, 64)
		chain := &fakeChain{
			propsFn:     healthyProps(1_000_000),
			accountsFn:  accountsByName(votingAccount("alice", "1000.000000 VESTS", "thewitness")),
			witnessesFn: witnessLedger(nil),
		}
		engine := newEngine(chain,
			hive.WithAllowlist([]string{"alice"}),
			hive.WithEvents(events),
		)

		records := engine.VotersOf(context.Background(), "thewitness")
		close(events)

		require.Len(t, records, 1)

		var failed, completed int
		var done *hive.DiscoveryDone
		for ev := range events {
			switch e := ev.(type) {
			case hive.PassFailed:
				failed++
			case hive.PassCompleted:
				completed++
			case hive.DiscoveryDone:
				done = &e
			}
		}
		assert.Equal(t, 2, failed, "delegation and lookup pools were down")
		assert.Equal(t, 2, completed)
		require.NotNil(t, done)
		assert.Equal(t, 1, done.Records)
		assert.Equal(t, 2, done.FailedPasses)
	})
}

// votingAccount builds an account voting for the given witness.
func votingAccount(name, vests, witness string) hiverpc.Account {
	acc := account(name, vests)
	acc.WitnessVotes = []string{witness}
	return acc
}

// delegation builds one outgoing vesting-delegation edge.
func delegation(delegator, vests string) hiverpc.VestingDelegation {
	return hiverpc.VestingDelegation{Delegator: delegator, VestingShares: vests}
}

// delegationPool serves list_vesting_delegations with fixed edges.
func delegationPool(edges ...hiverpc.VestingDelegation) func(context.Context, string, string, int) (*hiverpc.VestingDelegationsPage, error) {
	return func(context.Context, string, string, int) (*hiverpc.VestingDelegationsPage, error) {
		return &hiverpc.VestingDelegationsPage{Delegations: edges}, nil
	}
}

// lookupPool serves a single lookup_accounts batch with fixed names.
func lookupPool(names ...string) func(context.Context, string, int) ([]string, error) {
	return func(context.Context, string, int) ([]string, error) {
		return names, nil
	}
}

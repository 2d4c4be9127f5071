// Package hive aggregates witness and governance data from the Hive
// blockchain RPC API: endpoint selection, vests-to-power conversion, the
// witness catalog, account snapshots and heuristic proxy/voter discovery.
package hive

import (
	"context"
	"time"

	"github.com/hivescope/witnessboard/pkg/beacon"
	"github.com/hivescope/witnessboard/pkg/hiverpc"
)

// Chain-level constants used across the dashboard.
const (
	// MaxWitnessVotes is the fixed cap of witness-vote slots per account.
	MaxWitnessVotes = 30

	// ActivityWindow is the trailing window inside which a witness must
	// have signed a block to count as active.
	ActivityWindow = 72 * time.Hour

	// BlockInterval is the chain's fixed block time.
	BlockInterval = 3 * time.Second

	// VoteWeightScale is the granularity of the chain's internal
	// vote-weight encoding.
	VoteWeightScale = 1_000_000

	// FallbackRatio approximates the vests-to-power exchange ratio when the
	// chain-wide totals cannot be fetched.
	FallbackRatio = 0.0005
)

// Discovery tuning defaults; overridable through engine options.
const (
	DefaultAccountBatchSize = 50
	DefaultBatchDelay       = 100 * time.Millisecond
)

// ActivityWindowBlocks is the activity window expressed in blocks.
func ActivityWindowBlocks() uint64 {
	return uint64(ActivityWindow / BlockInterval)
}

// Clock abstracts time for production and testing
type Clock interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}

// NodeLister fetches scored endpoint candidates from the beacon service
type NodeLister interface {
	Nodes(ctx context.Context) ([]beacon.Node, error)
}

// ChainAPI is the subset of the chain RPC surface the dashboard consumes.
// *hiverpc.Client satisfies it.
type ChainAPI interface {
	DynamicGlobalProperties(ctx context.Context) (*hiverpc.GlobalProperties, error)
	CurrentMedianHistoryPrice(ctx context.Context) (*hiverpc.Price, error)
	WitnessesByVote(ctx context.Context, start string, limit int) ([]hiverpc.Witness, error)
	WitnessByAccount(ctx context.Context, name string) (*hiverpc.Witness, error)
	Accounts(ctx context.Context, names []string) ([]hiverpc.Account, error)
	ListWitnessVotes(ctx context.Context, startAccount, startWitness string, limit int) (*hiverpc.WitnessVotesPage, error)
	ListVestingDelegations(ctx context.Context, startDelegator, startDelegatee string, limit int) (*hiverpc.VestingDelegationsPage, error)
	LookupAccounts(ctx context.Context, start string, limit int) ([]string, error)
}

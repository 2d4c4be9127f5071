package hive_test

import (
	"context"
	"errors"

	"github.com/hivescope/witnessboard/pkg/hiverpc"
)

// errChainDown simulates transport failure in fakes
var errChainDown = errors.New("chain unreachable")

// fakeChain implements hive.ChainAPI with pluggable behaviors. Unset
// behaviors fail with errChainDown, matching a dead endpoint.
type fakeChain struct {
	propsFn        func(ctx context.Context) (*hiverpc.GlobalProperties, error)
	priceFn        func(ctx context.Context) (*hiverpc.Price, error)
	witnessesFn    func(ctx context.Context, start string, limit int) ([]hiverpc.Witness, error)
	witnessFn      func(ctx context.Context, name string) (*hiverpc.Witness, error)
	accountsFn     func(ctx context.Context, names []string) ([]hiverpc.Account, error)
	witnessVotesFn func(ctx context.Context, startAccount, startWitness string, limit int) (*hiverpc.WitnessVotesPage, error)
	delegationsFn  func(ctx context.Context, startDelegator, startDelegatee string, limit int) (*hiverpc.VestingDelegationsPage, error)
	lookupFn       func(ctx context.Context, start string, limit int) ([]string, error)
}

func (f *fakeChain) DynamicGlobalProperties(ctx context.Context) (*hiverpc.GlobalProperties, error) {
	if f.propsFn == nil {
		return nil, errChainDown
	}
	return f.propsFn(ctx)
}

func (f *fakeChain) CurrentMedianHistoryPrice(ctx context.Context) (*hiverpc.Price, error) {
	if f.priceFn == nil {
		return nil, errChainDown
	}
	return f.priceFn(ctx)
}

func (f *fakeChain) WitnessesByVote(ctx context.Context, start string, limit int) ([]hiverpc.Witness, error) {
	if f.witnessesFn == nil {
		return nil, errChainDown
	}
	return f.witnessesFn(ctx, start, limit)
}

func (f *fakeChain) WitnessByAccount(ctx context.Context, name string) (*hiverpc.Witness, error) {
	if f.witnessFn == nil {
		return nil, errChainDown
	}
	return f.witnessFn(ctx, name)
}

func (f *fakeChain) Accounts(ctx context.Context, names []string) ([]hiverpc.Account, error) {
	if f.accountsFn == nil {
		return nil, errChainDown
	}
	return f.accountsFn(ctx, names)
}

func (f *fakeChain) ListWitnessVotes(ctx context.Context, startAccount, startWitness string, limit int) (*hiverpc.WitnessVotesPage, error) {
	if f.witnessVotesFn == nil {
		return nil, errChainDown
	}
	return f.witnessVotesFn(ctx, startAccount, startWitness, limit)
}

func (f *fakeChain) ListVestingDelegations(ctx context.Context, startDelegator, startDelegatee string, limit int) (*hiverpc.VestingDelegationsPage, error) {
	if f.delegationsFn == nil {
		return nil, errChainDown
	}
	return f.delegationsFn(ctx, startDelegator, startDelegatee, limit)
}

func (f *fakeChain) LookupAccounts(ctx context.Context, start string, limit int) ([]string, error) {
	if f.lookupFn == nil {
		return nil, errChainDown
	}
	return f.lookupFn(ctx, start, limit)
}

// healthyProps returns global properties yielding an exchange ratio of 0.5
// (100 HIVE fund over 200 VESTS) at the given head block.
func healthyProps(head uint64) func(context.Context) (*hiverpc.GlobalProperties, error) {
	return func(context.Context) (*hiverpc.GlobalProperties, error) {
		return &hiverpc.GlobalProperties{
			HeadBlockNumber:      head,
			TotalVestingFundHive: "100.000 HIVE",
			TotalVestingShares:   "200.000000 VESTS",
		}, nil
	}
}

// accountsByName serves get_accounts requests out of a fixed account set,
// omitting unknown names the way the chain does.
func accountsByName(all ...hiverpc.Account) func(context.Context, []string) ([]hiverpc.Account, error) {
	byName := make(map[string]hiverpc.Account, len(all))
	for _, acc := range all {
		byName[acc.Name] = acc
	}
	return func(_ context.Context, names []string) ([]hiverpc.Account, error) {
		out := make([]hiverpc.Account, 0, len(names))
		for _, name := range names {
			if acc, ok := byName[name]; ok {
				out = append(out, acc)
			}
		}
		return out, nil
	}
}

// account builds a minimal chain account with the given stake.
func account(name, vestingShares string) hiverpc.Account {
	return hiverpc.Account{
		Name:          name,
		VestingShares: vestingShares,
	}
}

package hive

import (
	"context"
	"slices"
	"time"

	"github.com/hivescope/witnessboard/pkg/clock"
	"github.com/hivescope/witnessboard/pkg/hiverpc"
)

// ProxyRelation is a discovered (delegator, proxy target) pair with the
// delegator's power at query time. Recomputed on each discovery run.
type ProxyRelation struct {
	Delegator string
	Proxy     string
	Power     float64
}

// VoterRecord is a discovered supporter of a witness. TotalPower is kept
// numeric alongside the display string so sorting never re-parses it.
type VoterRecord struct {
	Username     string
	OwnPower     float64
	ProxiedPower float64
	TotalPower   float64
	TotalDisplay string
}

// Discovery pass names, also used as diagnostics labels.
const (
	PassVoteEdges       = "vote_edges"
	PassTopDelegators   = "top_delegators"
	PassAllowlist       = "allowlist"
	PassActiveWitnesses = "active_witnesses"
	PassStakeSample     = "stake_sample"
)

// Candidate pool limits. The chain has no index for "accounts whose proxy is
// X" or "voters of witness Y", so discovery samples plausible high-power
// subsets instead of scanning the account space.
const (
	voteEdgePoolLimit      = 1000
	delegationPoolLimit    = 1000
	activeWitnessPoolLimit = 250
	lookupSampleLimit      = 1000
	lookupPageSize         = 100
	topPerSampleBatch      = 25
	topDelegatorsLimit     = 100
)

// DefaultAllowlist names known major stakeholders checked in the second
// voter-discovery pass.
var DefaultAllowlist = []string{
	"blocktrades", "freedom", "darthknight", "theycallmedan", "smooth",
	"pumpkin", "ranchorelaxo", "tarazkp", "gtg", "ocdb",
}

// DiscoveryOption configures the DiscoveryEngine
// ----------------------------------------------
type DiscoveryOption func(*DiscoveryEngine)

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(c Clock) DiscoveryOption {
	return func(e *DiscoveryEngine) { e.clock = c }
}

// WithBatchSize sets the account-lookup batch size
func WithBatchSize(n int) DiscoveryOption {
	return func(e *DiscoveryEngine) { e.batchSize = n }
}

// WithBatchDelay sets the pause between successive account batches
func WithBatchDelay(d time.Duration) DiscoveryOption {
	return func(e *DiscoveryEngine) { e.batchDelay = d }
}

// WithAllowlist replaces the major-stakeholder allowlist
func WithAllowlist(names []string) DiscoveryOption {
	return func(e *DiscoveryEngine) { e.allowlist = names }
}

// WithEvents attaches a diagnostics channel. Sends are non-blocking; a slow
// or absent consumer never affects the success path.
func WithEvents(events chan<- Event) DiscoveryOption {
	return func(e *DiscoveryEngine) { e.events = events }
}

// DiscoveryEngine approximates proxy and voter relations through multiple
// heuristic candidate pools. Results are best-effort: no false positives,
// accepted false negatives.
// -------------------------------------------------------------------------
type DiscoveryEngine struct {
	api       ChainAPI
	converter *Converter
	clock     Clock
	events    chan<- Event

	allowlist  []string
	batchSize  int
	batchDelay time.Duration
}

// NewDiscoveryEngine constructs an engine with required dependencies and
// options. By default it uses a real clock, batches of 50 and a 100ms
// inter-batch delay.
func NewDiscoveryEngine(api ChainAPI, converter *Converter, opts ...DiscoveryOption) *DiscoveryEngine {
	e := &DiscoveryEngine{
		api:        api,
		converter:  converter,
		clock:      clock.SystemClock{},
		allowlist:  DefaultAllowlist,
		batchSize:  DefaultAccountBatchSize,
		batchDelay: DefaultBatchDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProxiesOf discovers accounts whose on-chain proxy field names the target.
//
// The candidate pool comes from the witness-vote index for the target name;
// accounts absent from that pool are never discovered, which is accepted
// incompleteness. An account only appears in the result when its proxy
// field matches the target exactly. Never errors; total failure yields an
// empty list.
func (e *DiscoveryEngine) ProxiesOf(ctx context.Context, target string) []ProxyRelation {
	start := e.clock.Now()
	e.emit(DiscoveryStarted{Kind: "proxies", Target: target})

	page, err := e.api.ListWitnessVotes(ctx, target, "", voteEdgePoolLimit)
	if err != nil {
		e.emit(PassFailed{Pass: PassVoteEdges, Err: err})
		e.emit(DiscoveryDone{
			Kind:         "proxies",
			Target:       target,
			FailedPasses: 1,
			Duration:     e.clock.Now().Sub(start),
		})
		return []ProxyRelation{}
	}

	names := make([]string, 0, len(page.Votes))
	for _, vote := range page.Votes {
		names = append(names, vote.Account)
	}
	names = distinct(names)

	accounts := e.fetchAccountsBatched(ctx, names)
	ratio := e.converter.Ratio(ctx)

	relations := []ProxyRelation{}
	for _, acc := range accounts {
		if acc.Proxy != target {
			continue
		}
		relations = append(relations, ProxyRelation{
			Delegator: acc.Name,
			Proxy:     target,
			Power:     VestsToPower(AssetAmount(acc.VestingShares), ratio),
		})
	}
	slices.SortFunc(relations, func(a, b ProxyRelation) int {
		switch {
		case a.Power > b.Power:
			return -1
		case a.Power < b.Power:
			return 1
		default:
			return 0
		}
	})

	e.emit(PassCompleted{Pass: PassVoteEdges, Candidates: len(names), Matches: len(relations)})
	e.emit(DiscoveryDone{
		Kind:     "proxies",
		Target:   target,
		Records:  len(relations),
		Duration: e.clock.Now().Sub(start),
	})
	return relations
}

// VotersOf discovers accounts voting for the given witness by merging four
// overlapping candidate pools, deduplicated by username with the first
// successful write per name winning. A failed pass contributes nothing
// without aborting the others. Never errors; total failure yields an empty
// list.
func (e *DiscoveryEngine) VotersOf(ctx context.Context, witness string) []VoterRecord {
	start := e.clock.Now()
	e.emit(DiscoveryStarted{Kind: "voters", Target: witness})

	ratio := e.converter.Ratio(ctx)
	records := map[string]VoterRecord{}
	failed := 0

	passes := []struct {
		name       string
		candidates func(context.Context) ([]string, error)
	}{
		{PassTopDelegators, e.topDelegators},
		{PassAllowlist, func(context.Context) ([]string, error) { return e.allowlist, nil }},
		{PassActiveWitnesses, e.activeWitnesses},
		{PassStakeSample, e.stakeSample},
	}

	for _, pass := range passes {
		names, err := pass.candidates(ctx)
		if err != nil {
			failed++
			e.emit(PassFailed{Pass: pass.name, Err: err})
			continue
		}

		// Skip candidates already claimed by an earlier pass.
		fresh := make([]string, 0, len(names))
		for _, name := range distinct(names) {
			if _, ok := records[name]; !ok {
				fresh = append(fresh, name)
			}
		}

		matches := 0
		for _, acc := range e.fetchAccountsBatched(ctx, fresh) {
			if _, ok := records[acc.Name]; ok {
				continue
			}
			if !slices.Contains(acc.WitnessVotes, witness) {
				continue
			}
			records[acc.Name] = buildVoterRecord(acc, ratio)
			matches++
		}
		e.emit(PassCompleted{Pass: pass.name, Candidates: len(fresh), Matches: matches})
	}

	result := make([]VoterRecord, 0, len(records))
	for _, rec := range records {
		result = append(result, rec)
	}
	slices.SortFunc(result, func(a, b VoterRecord) int {
		switch {
		case a.TotalPower > b.TotalPower:
			return -1
		case a.TotalPower < b.TotalPower:
			return 1
		default:
			return 0
		}
	})

	e.emit(DiscoveryDone{
		Kind:         "voters",
		Target:       witness,
		Records:      len(result),
		FailedPasses: failed,
		Duration:     e.clock.Now().Sub(start),
	})
	return result
}

func buildVoterRecord(acc hiverpc.Account, ratio float64) VoterRecord {
	own := VestsToPower(AssetAmount(acc.VestingShares), ratio)

	var proxied float64
	if raw := proxiedVests(acc); raw > 0 {
		proxied = raw / VoteWeightScale * ratio
	}

	total := own + proxied
	return VoterRecord{
		Username:     acc.Name,
		OwnPower:     own,
		ProxiedPower: proxied,
		TotalPower:   total,
		TotalDisplay: FormatPower(total),
	}
}

// topDelegators returns the largest delegators by outgoing delegation
// amount, a proxy for large stakeholders.
func (e *DiscoveryEngine) topDelegators(ctx context.Context) ([]string, error) {
	page, err := e.api.ListVestingDelegations(ctx, "", "", delegationPoolLimit)
	if err != nil {
		return nil, err
	}

	edges := slices.Clone(page.Delegations)
	slices.SortFunc(edges, func(a, b hiverpc.VestingDelegation) int {
		av, bv := AssetAmount(a.VestingShares), AssetAmount(b.VestingShares)
		switch {
		case av > bv:
			return -1
		case av < bv:
			return 1
		default:
			return 0
		}
	})

	names := make([]string, 0, len(edges))
	for _, edge := range edges {
		names = append(names, edge.Delegator)
	}
	names = distinct(names)
	if len(names) > topDelegatorsLimit {
		names = names[:topDelegatorsLimit]
	}
	return names, nil
}

// activeWitnesses returns the names of currently-active witnesses, which
// often vote for each other. When the chain height is unknown the activity
// filter is skipped rather than emptying the pool.
func (e *DiscoveryEngine) activeWitnesses(ctx context.Context) ([]string, error) {
	witnesses, err := e.api.WitnessesByVote(ctx, "", activeWitnessPoolLimit)
	if err != nil {
		return nil, err
	}

	var head uint64
	if props, err := e.api.DynamicGlobalProperties(ctx); err == nil {
		head = props.HeadBlockNumber
	}

	names := make([]string, 0, len(witnesses))
	for _, w := range witnesses {
		if head > 0 && !isActive(w.LastConfirmedBlockNum, head) {
			continue
		}
		names = append(names, w.Owner)
	}
	return names, nil
}

// stakeSample walks a broad sample of account names and keeps the highest-
// staked candidates of each fetched batch.
func (e *DiscoveryEngine) stakeSample(ctx context.Context) ([]string, error) {
	var out []string
	start := ""

	for fetched := 0; fetched < lookupSampleLimit; {
		names, err := e.api.LookupAccounts(ctx, start, lookupPageSize)
		if err != nil {
			if len(out) == 0 {
				return nil, err
			}
			break
		}
		if len(names) == 0 {
			break
		}
		fetched += len(names)

		accounts := e.fetchAccountsBatched(ctx, names)
		slices.SortFunc(accounts, func(a, b hiverpc.Account) int {
			av, bv := AssetAmount(a.VestingShares), AssetAmount(b.VestingShares)
			switch {
			case av > bv:
				return -1
			case av < bv:
				return 1
			default:
				return 0
			}
		})
		top := min(topPerSampleBatch, len(accounts))
		for _, acc := range accounts[:top] {
			out = append(out, acc.Name)
		}

		if len(names) < lookupPageSize {
			break
		}
		start = names[len(names)-1]
		if err := e.pause(ctx); err != nil {
			break
		}
	}
	return out, nil
}

// fetchAccountsBatched fetches account details in sequential fixed-size
// batches with a pause between batches. A failed batch is skipped; partial
// results are returned.
func (e *DiscoveryEngine) fetchAccountsBatched(ctx context.Context, names []string) []hiverpc.Account {
	var out []hiverpc.Account
	for i := 0; i < len(names); i += e.batchSize {
		if i > 0 {
			if err := e.pause(ctx); err != nil {
				break
			}
		}
		end := min(i+e.batchSize, len(names))
		batch, err := e.api.Accounts(ctx, names[i:end])
		if err != nil {
			continue
		}
		out = append(out, batch...)
	}
	return out
}

// pause waits the inter-batch delay. This is deliberate backpressure to
// avoid overloading the shared RPC endpoint.
func (e *DiscoveryEngine) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.clock.After(e.batchDelay):
		return nil
	}
}

// emit sends a diagnostics event without ever blocking the discovery run.
func (e *DiscoveryEngine) emit(ev Event) {
	if e.events == nil {
		return
	}
	select {
	case e.events <- ev:
	default:
	}
}

// distinct returns names deduplicated, first occurrence wins, order kept.
func distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

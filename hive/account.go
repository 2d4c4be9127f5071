package hive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hivescope/witnessboard/pkg/hiverpc"
)

// AccountSnapshot is a single account's raw ledger state plus the derived
// governance-power figures. ProxiedPower is not derivable from the account's
// own record; the composer fills it through discovery.
type AccountSnapshot struct {
	Username string

	OwnVests       float64
	DelegatedVests float64
	ReceivedVests  float64

	Proxy        string
	WitnessVotes []string
	FreeVotes    int

	OwnPower              float64
	OwnPowerDisplay       string
	EffectivePower        float64
	EffectivePowerDisplay string
	ProxiedPower          float64
	ProxiedPowerDisplay   string

	ProfileImage string
}

// AccountService retrieves and derives per-account governance state.
type AccountService struct {
	api       ChainAPI
	converter *Converter
}

// NewAccountService constructs an AccountService.
func NewAccountService(api ChainAPI, converter *Converter) *AccountService {
	return &AccountService{api: api, converter: converter}
}

// Snapshot fetches one account through the batch lookup and derives its
// power figures. Unknown accounts return (nil, nil): semantic absence, not
// an error. Transport failure is propagated.
func (s *AccountService) Snapshot(ctx context.Context, username string) (*AccountSnapshot, error) {
	accounts, err := s.api.Accounts(ctx, []string{username})
	if err != nil {
		return nil, fmt.Errorf("fetching account %q: %w", username, err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}

	ratio := s.converter.Ratio(ctx)
	snap := buildAccountSnapshot(accounts[0], ratio)
	return &snap, nil
}

func buildAccountSnapshot(acc hiverpc.Account, ratio float64) AccountSnapshot {
	own := AssetAmount(acc.VestingShares)
	delegated := AssetAmount(acc.DelegatedVestingShares)
	received := AssetAmount(acc.ReceivedVestingShares)

	ownPower := VestsToPower(own, ratio)
	effectivePower := VestsToPower(own+received-delegated, ratio)

	return AccountSnapshot{
		Username:              acc.Name,
		OwnVests:              own,
		DelegatedVests:        delegated,
		ReceivedVests:         received,
		Proxy:                 acc.Proxy,
		WitnessVotes:          acc.WitnessVotes,
		FreeVotes:             freeVotes(acc.WitnessVotes),
		OwnPower:              ownPower,
		OwnPowerDisplay:       FormatPower(ownPower),
		EffectivePower:        effectivePower,
		EffectivePowerDisplay: FormatPower(effectivePower),
		ProxiedPowerDisplay:   FormatPower(0),
		ProfileImage:          profileImage(acc.PostingJSONMetadata),
	}
}

// freeVotes returns the remaining witness-vote slots out of the fixed cap.
func freeVotes(votes []string) int {
	used := min(len(votes), MaxWitnessVotes)
	return MaxWitnessVotes - used
}

// proxiedVests blindly sums the per-tier proxied vote buckets. The exact
// per-tier semantics are opaque; the sum is an approximation.
func proxiedVests(acc hiverpc.Account) float64 {
	var sum float64
	for _, bucket := range acc.ProxiedVSFVotes {
		v, err := bucket.Float64()
		if err != nil {
			continue
		}
		sum += v
	}
	return sum
}

// profileImage extracts profile.profile_image from the account's posting
// metadata; malformed metadata degrades to empty.
func profileImage(metadata string) string {
	if metadata == "" {
		return ""
	}
	var parsed struct {
		Profile struct {
			ProfileImage string `json:"profile_image"`
		} `json:"profile"`
	}
	if err := json.Unmarshal([]byte(metadata), &parsed); err != nil {
		return ""
	}
	return parsed.Profile.ProfileImage
}

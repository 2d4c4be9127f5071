package hive

import "context"

// UserSnapshot is the composed per-user view consumed by the presentation
// layer. Every field degrades independently; a snapshot is always usable.
type UserSnapshot struct {
	Username string `json:"username"`

	OwnPower              float64 `json:"own_power"`
	OwnPowerDisplay       string  `json:"own_power_display"`
	EffectivePower        float64 `json:"effective_power"`
	EffectivePowerDisplay string  `json:"effective_power_display"`
	ProxiedPower          float64 `json:"proxied_power"`
	ProxiedPowerDisplay   string  `json:"proxied_power_display"`

	Proxy        string   `json:"proxy"`
	WitnessVotes []string `json:"witness_votes"`
	FreeVotes    int      `json:"free_votes"`

	ProfileImage string `json:"profile_image"`
}

// ProxyDiscoverer is the slice of the discovery engine the composer needs.
type ProxyDiscoverer interface {
	ProxiesOf(ctx context.Context, target string) []ProxyRelation
}

// Composer orchestrates the account fetcher and discovery engine into one
// coherent per-user snapshot.
type Composer struct {
	accounts  *AccountService
	discovery ProxyDiscoverer
}

// NewComposer constructs a Composer.
func NewComposer(accounts *AccountService, discovery ProxyDiscoverer) *Composer {
	return &Composer{accounts: accounts, discovery: discovery}
}

// UserData composes the per-user snapshot. Any failed step degrades its
// field to a safe default; the composer never errors.
//
// Proxied power short-circuits to zero when the account itself delegates its
// governance outward: under this model an account cannot simultaneously
// proxy out and receive proxy power.
func (c *Composer) UserData(ctx context.Context, username string) UserSnapshot {
	snap, err := c.accounts.Snapshot(ctx, username)
	if err != nil || snap == nil {
		return UserSnapshot{
			Username:              username,
			OwnPowerDisplay:       FormatPower(0),
			EffectivePowerDisplay: FormatPower(0),
			ProxiedPowerDisplay:   FormatPower(0),
			WitnessVotes:          []string{},
			FreeVotes:             MaxWitnessVotes,
		}
	}

	var proxied float64
	if snap.Proxy == "" {
		for _, rel := range c.discovery.ProxiesOf(ctx, username) {
			proxied += rel.Power
		}
	}

	votes := snap.WitnessVotes
	if votes == nil {
		votes = []string{}
	}

	return UserSnapshot{
		Username:              snap.Username,
		OwnPower:              snap.OwnPower,
		OwnPowerDisplay:       snap.OwnPowerDisplay,
		EffectivePower:        snap.EffectivePower,
		EffectivePowerDisplay: snap.EffectivePowerDisplay,
		ProxiedPower:          proxied,
		ProxiedPowerDisplay:   FormatPower(proxied),
		Proxy:                 snap.Proxy,
		WitnessVotes:          votes,
		FreeVotes:             snap.FreeVotes,
		ProfileImage:          snap.ProfileImage,
	}
}

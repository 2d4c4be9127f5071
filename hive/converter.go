package hive

import (
	"context"
	"errors"
	"fmt"

	gocache "github.com/patrickmn/go-cache"
)

// Sentinel errors for ratio computation
var (
	ErrGlobalPropsFetch = errors.New("global properties fetch failed")
	ErrZeroVestingTotal = errors.New("total vesting shares is zero")
)

const ratioKey = "exchange_ratio"

// Converter maintains the vests-to-power exchange ratio, computed from the
// chain-wide vesting totals. The ratio is cached on first success and only
// overwritten by a successful Refresh; when no ratio has ever been computed,
// callers receive FallbackRatio rather than an error.
type Converter struct {
	api      ChainAPI
	cache    *gocache.Cache
	fallback float64
}

// NewConverter constructs a Converter over the given chain API.
func NewConverter(api ChainAPI) *Converter {
	return &Converter{
		api:      api,
		cache:    gocache.New(gocache.NoExpiration, 0),
		fallback: FallbackRatio,
	}
}

// Ratio returns the cached exchange ratio, computing it on first use.
// Fetch failure degrades to the fixed fallback ratio; it never errors.
func (c *Converter) Ratio(ctx context.Context) float64 {
	if cached, ok := c.cache.Get(ratioKey); ok {
		return cached.(float64)
	}

	ratio, err := c.Refresh(ctx)
	if err != nil {
		return c.fallback
	}
	return ratio
}

// Refresh recomputes the ratio from the chain-wide totals. The shared cache
// is only overwritten on success.
func (c *Converter) Refresh(ctx context.Context) (float64, error) {
	props, err := c.api.DynamicGlobalProperties(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrGlobalPropsFetch, err)
	}

	fund, err := ParseAsset(props.TotalVestingFundHive)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrGlobalPropsFetch, err)
	}
	shares, err := ParseAsset(props.TotalVestingShares)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrGlobalPropsFetch, err)
	}
	if shares.Amount == 0 {
		return 0, ErrZeroVestingTotal
	}

	ratio := fund.Amount / shares.Amount
	c.cache.Set(ratioKey, ratio, gocache.NoExpiration)
	return ratio, nil
}

// Invalidate drops the cached ratio so the next Ratio call recomputes it.
func (c *Converter) Invalidate() {
	c.cache.Delete(ratioKey)
}

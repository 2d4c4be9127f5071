package hive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for asset parsing
var (
	ErrMalformedAsset = errors.New("malformed asset string")
)

// Asset is a chain amount of the form "<amount> <symbol>",
// e.g. "100.000 HIVE" or "200.000000 VESTS".
type Asset struct {
	Amount float64
	Symbol string
}

// ParseAsset parses an asset string, rejecting unexpected shapes rather than
// coercing them.
func ParseAsset(s string) (Asset, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Asset{}, fmt.Errorf("%w: %q", ErrMalformedAsset, s)
	}

	amount, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %q: %w", ErrMalformedAsset, s, err)
	}

	return Asset{Amount: amount, Symbol: parts[1]}, nil
}

// AssetAmount returns the numeric amount of an asset string, or 0 for any
// shape that does not parse. Used where a missing figure degrades to zero
// instead of failing the caller.
func AssetAmount(s string) float64 {
	asset, err := ParseAsset(s)
	if err != nil {
		return 0
	}
	return asset.Amount
}

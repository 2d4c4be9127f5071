package hive

import (
	"context"

	"github.com/hivescope/witnessboard/pkg/hiverpc"
)

// WitnessRecord is a catalog entry enriched with computed power, activity
// and display fields. Rank is relative to the offset the page was fetched
// with, not globally stable.
type WitnessRecord struct {
	ID      int64
	Name    string
	URL     string
	Created string

	Votes        float64 // raw vote weight in vests at VoteWeightScale granularity
	Power        float64
	PowerDisplay string

	LastBlock        uint64
	LastBlockDisplay string
	Missed           int64

	Version         string
	PriceFeed       string
	HBDInterestRate float64 // percent

	Rank     int
	IsActive bool
}

// CatalogService retrieves the vote-ranked witness catalog.
type CatalogService struct {
	api       ChainAPI
	converter *Converter
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(api ChainAPI, converter *Converter) *CatalogService {
	return &CatalogService{api: api, converter: converter}
}

// ListWitnesses returns one page of the vote-ranked catalog.
//
// The chain API only supports "start at a given key, return N", so numeric
// offsets are emulated: a preliminary request for offset records from the
// empty key learns the last name of the preceding page, and the real request
// starts at that name. A failed preliminary lookup silently degrades to
// page-1 behavior. Total fetch failure yields an empty list, which callers
// must treat as unknown rather than zero witnesses.
func (s *CatalogService) ListWitnesses(ctx context.Context, offset, limit int) []WitnessRecord {
	start, startInclusive := "", false
	if offset > 0 {
		preceding, err := s.api.WitnessesByVote(ctx, "", offset)
		if err == nil && len(preceding) > 0 {
			start = preceding[len(preceding)-1].Owner
			startInclusive = true
		}
	}

	fetchLimit := limit
	if startInclusive {
		// The start record belongs to the preceding page.
		fetchLimit = limit + 1
	}

	raw, err := s.api.WitnessesByVote(ctx, start, fetchLimit)
	if err != nil {
		return []WitnessRecord{}
	}
	if startInclusive && len(raw) > 0 && raw[0].Owner == start {
		raw = raw[1:]
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}

	ratio := s.converter.Ratio(ctx)
	head := s.headBlock(ctx)

	records := make([]WitnessRecord, len(raw))
	for i, w := range raw {
		records[i] = buildWitnessRecord(w, ratio, head)
		records[i].Rank = offset + i + 1
	}
	return records
}

// ListPage wraps ListWitnesses in page-oriented navigation metadata. One
// extra record is requested to learn whether a further page exists.
func (s *CatalogService) ListPage(ctx context.Context, page Page, size PerPage) *WitnessesPage {
	limit := int(size.Uint64())
	records := s.ListWitnesses(ctx, page.Offset(size), limit+1)

	hasMore := len(records) > limit
	if hasMore {
		records = records[:limit]
	}
	return &WitnessesPage{
		Witnesses: records,
		HasMore:   hasMore,
		Number:    page,
		Size:      size,
	}
}

// headBlock fetches the current chain height, or 0 when unavailable.
func (s *CatalogService) headBlock(ctx context.Context) uint64 {
	props, err := s.api.DynamicGlobalProperties(ctx)
	if err != nil {
		return 0
	}
	return props.HeadBlockNumber
}

func buildWitnessRecord(w hiverpc.Witness, ratio float64, head uint64) WitnessRecord {
	votes, _ := w.Votes.Float64()
	power := VoteWeightToPower(votes, ratio)

	rate, _ := w.Props.HBDInterestRate.Float64()

	return WitnessRecord{
		ID:               w.ID,
		Name:             w.Owner,
		URL:              w.URL,
		Created:          w.Created,
		Votes:            votes,
		Power:            power,
		PowerDisplay:     FormatPower(power),
		LastBlock:        w.LastConfirmedBlockNum,
		LastBlockDisplay: FormatBlock(w.LastConfirmedBlockNum),
		Missed:           w.TotalMissed,
		Version:          w.RunningVersion,
		PriceFeed:        formatPriceFeed(w.HBDExchangeRate),
		HBDInterestRate:  rate / 100, // chain stores basis points
		IsActive:         isActive(w.LastConfirmedBlockNum, head),
	}
}

// isActive reports whether the witness signed a block inside the trailing
// activity window. An unknown head marks everything inactive.
func isActive(lastBlock, head uint64) bool {
	if head == 0 {
		return false
	}
	return int64(lastBlock) > int64(head)-int64(ActivityWindowBlocks())
}

// formatPriceFeed renders the declared price feed as e.g. "$0.250", or
// "N/A" when the quote is unusable.
func formatPriceFeed(feed hiverpc.Price) string {
	base := AssetAmount(feed.Base)
	quote := AssetAmount(feed.Quote)
	if quote == 0 {
		return "N/A"
	}
	return printer.Sprintf("$%.3f", base/quote)
}

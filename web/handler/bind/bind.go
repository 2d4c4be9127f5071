package bind

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/hivescope/witnessboard/hive"
	"github.com/hivescope/witnessboard/pkg/beacon"
	"github.com/hivescope/witnessboard/web/api"
)

// Sentinel errors for request binding
var (
	ErrInvalidPage    = errors.New("invalid page parameter")
	ErrInvalidPerPage = errors.New("invalid per_page parameter")
	ErrInvalidAccount = errors.New("invalid account name")

	// Specific page validation errors
	ErrPageNotNumeric  = errors.New("page must be numeric")
	ErrPageNotPositive = errors.New("page must be positive")

	// Specific per_page validation errors
	ErrPerPageNotNumeric  = errors.New("per_page must be numeric")
	ErrPerPageNotPositive = errors.New("per_page must be positive")
	ErrPerPageTooLarge    = errors.New("per_page must be between 1 and 100")
)

// Hive account names: 3-16 chars of lowercase letters, digits, dots, dashes.
var accountNamePattern = regexp.MustCompile(`^[a-z0-9.-]{3,16}$`)

// GetWitnessesRequest binds HTTP request to WitnessesRequest with defaults
func GetWitnessesRequest(r *http.Request) (api.WitnessesRequest, error) {
	req := api.WitnessesRequest{
		Page:    hive.DefaultPage,
		PerPage: hive.DefaultPerPage,
	}

	query := r.URL.Query()

	if pageParam := query.Get("page"); pageParam != "" {
		page, err := parsePageNumber(pageParam)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrInvalidPage, err)
		}
		req.Page = page
	}

	if perPageParam := query.Get("per_page"); perPageParam != "" {
		perPage, err := parsePerPageLimit(perPageParam)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
		}
		req.PerPage = perPage
	}

	return req, nil
}

// AccountName binds and validates the {name} path segment
func AccountName(r *http.Request) (string, error) {
	name := r.PathValue("name")
	if !accountNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccount, name)
	}
	return name, nil
}

// parsePageNumber validates that the page parameter is a positive integer
func parsePageNumber(pageParam string) (uint64, error) {
	page, err := strconv.ParseUint(pageParam, 10, 64)
	if err != nil {
		return 0, ErrPageNotNumeric
	}
	if page == 0 {
		return 0, ErrPageNotPositive
	}
	return page, nil
}

// parsePerPageLimit validates that the per_page parameter is within acceptable limits
func parsePerPageLimit(perPageParam string) (uint64, error) {
	perPage, err := strconv.ParseUint(perPageParam, 10, 64)
	if err != nil {
		return 0, ErrPerPageNotNumeric
	}
	if perPage == 0 {
		return 0, ErrPerPageNotPositive
	}
	if perPage > hive.MaxPerPage {
		return 0, ErrPerPageTooLarge
	}
	return perPage, nil
}

// GetWitnessesResponse binds catalog records to the API response format
func GetWitnessesResponse(records []hive.WitnessRecord) api.WitnessesResponse {
	witnesses := make([]api.Witness, len(records))
	for i, rec := range records {
		witnesses[i] = api.Witness{
			Rank:            rec.Rank,
			Name:            rec.Name,
			URL:             rec.URL,
			Created:         rec.Created,
			Power:           rec.PowerDisplay,
			LastBlock:       rec.LastBlockDisplay,
			Missed:          rec.Missed,
			Version:         rec.Version,
			PriceFeed:       rec.PriceFeed,
			HBDInterestRate: rec.HBDInterestRate,
			Active:          rec.IsActive,
		}
	}
	return api.WitnessesResponse{Data: witnesses}
}

// GetAccountResponse binds an account snapshot to the API response format
func GetAccountResponse(snap hive.AccountSnapshot) api.AccountResponse {
	votes := snap.WitnessVotes
	if votes == nil {
		votes = []string{}
	}
	return api.AccountResponse{
		Data: api.Account{
			Username:       snap.Username,
			OwnPower:       snap.OwnPowerDisplay,
			EffectivePower: snap.EffectivePowerDisplay,
			Proxy:          snap.Proxy,
			WitnessVotes:   votes,
			FreeVotes:      snap.FreeVotes,
			ProfileImage:   snap.ProfileImage,
		},
	}
}

// GetProxiesResponse binds discovered proxy relations to the API response format
func GetProxiesResponse(relations []hive.ProxyRelation) api.ProxiesResponse {
	out := make([]api.ProxyRelation, len(relations))
	for i, rel := range relations {
		out[i] = api.ProxyRelation{
			Delegator: rel.Delegator,
			Power:     rel.Power,
		}
	}
	return api.ProxiesResponse{Data: out}
}

// GetVotersResponse binds discovered voter records to the API response format
func GetVotersResponse(records []hive.VoterRecord) api.VotersResponse {
	out := make([]api.Voter, len(records))
	for i, rec := range records {
		out[i] = api.Voter{
			Username:     rec.Username,
			OwnPower:     rec.OwnPower,
			ProxiedPower: rec.ProxiedPower,
			TotalPower:   rec.TotalPower,
			TotalDisplay: rec.TotalDisplay,
		}
	}
	return api.VotersResponse{Data: out}
}

// GetNodesResponse binds beacon candidates to the API response format
func GetNodesResponse(nodes []beacon.Node) api.NodesResponse {
	out := make([]api.Node, len(nodes))
	for i, node := range nodes {
		out[i] = api.Node{
			Endpoint:    node.Address(),
			Version:     node.Version,
			Score:       node.Score,
			LastUpdate:  node.LastUpdate,
			PassedTests: node.PassedTests,
			FailedTests: node.FailedTests,
		}
	}
	return api.NodesResponse{Data: out}
}

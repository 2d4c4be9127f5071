package hiverpc

import "encoding/json"

// GlobalProperties is the subset of get_dynamic_global_properties consumed
// by the dashboard.
type GlobalProperties struct {
	HeadBlockNumber      uint64      `json:"head_block_number"`
	TotalVestingFundHive string      `json:"total_vesting_fund_hive"`
	TotalVestingShares   string      `json:"total_vesting_shares"`
	CurrentAslot         uint64      `json:"current_aslot"`
	HBDInterestRate      json.Number `json:"hbd_interest_rate"`
}

// Price represents a chain price quote such as the median history price.
// Base and Quote are asset strings of the form "<amount> <symbol>".
type Price struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// WitnessProps carries the witness-declared chain parameters we display.
type WitnessProps struct {
	HBDInterestRate json.Number `json:"hbd_interest_rate"`
}

// Witness is a raw witness object as returned by get_witnesses_by_vote
// and get_witness_by_account.
type Witness struct {
	ID                    int64        `json:"id"`
	Owner                 string       `json:"owner"`
	Votes                 json.Number  `json:"votes"`
	LastConfirmedBlockNum uint64       `json:"last_confirmed_block_num"`
	TotalMissed           int64        `json:"total_missed"`
	HBDExchangeRate       Price        `json:"hbd_exchange_rate"`
	RunningVersion        string       `json:"running_version"`
	Created               string       `json:"created"`
	URL                   string       `json:"url"`
	Props                 WitnessProps `json:"props"`
}

// Account is a raw account object as returned by get_accounts.
// ProxiedVSFVotes holds per-tier proxied vote buckets; the chain encodes the
// entries as either numbers or numeric strings depending on magnitude.
type Account struct {
	Name                   string        `json:"name"`
	VestingShares          string        `json:"vesting_shares"`
	DelegatedVestingShares string        `json:"delegated_vesting_shares"`
	ReceivedVestingShares  string        `json:"received_vesting_shares"`
	Proxy                  string        `json:"proxy"`
	WitnessVotes           []string      `json:"witness_votes"`
	ProxiedVSFVotes        []json.Number `json:"proxied_vsf_votes"`
	PostingJSONMetadata    string        `json:"posting_json_metadata"`
}

// WitnessVote is a single edge from the chain's witness-vote index.
type WitnessVote struct {
	Account string `json:"account"`
	Witness string `json:"witness"`
}

// WitnessVotesPage is the result envelope of list_witness_votes.
type WitnessVotesPage struct {
	Votes []WitnessVote `json:"votes"`
}

// VestingDelegation is a single outgoing vesting delegation edge.
type VestingDelegation struct {
	Delegator     string `json:"delegator"`
	Delegatee     string `json:"delegatee"`
	VestingShares string `json:"vesting_shares"`
}

// VestingDelegationsPage is the result envelope of list_vesting_delegations.
type VestingDelegationsPage struct {
	Delegations []VestingDelegation `json:"delegations"`
}

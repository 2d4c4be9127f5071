package api

// Account represents an account snapshot in the API response
type Account struct {
	Username       string   `json:"username"`
	OwnPower       string   `json:"own_power"`
	EffectivePower string   `json:"effective_power"`
	Proxy          string   `json:"proxy"`
	WitnessVotes   []string `json:"witness_votes"`
	FreeVotes      int      `json:"free_votes"`
	ProfileImage   string   `json:"profile_image,omitempty"`
}

// AccountResponse represents the API response format for GET /accounts/{name}
type AccountResponse struct {
	Data Account `json:"data"`
}

// ProxyRelation represents one discovered proxy delegation
type ProxyRelation struct {
	Delegator string  `json:"delegator"`
	Power     float64 `json:"power"`
}

// ProxiesResponse represents the API response format for GET /accounts/{name}/proxies
type ProxiesResponse struct {
	Data []ProxyRelation `json:"data"`
}

// Voter represents one discovered witness supporter
type Voter struct {
	Username     string  `json:"username"`
	OwnPower     float64 `json:"own_power"`
	ProxiedPower float64 `json:"proxied_power,omitempty"`
	TotalPower   float64 `json:"total_power"`
	TotalDisplay string  `json:"total_display"`
}

// VotersResponse represents the API response format for GET /witnesses/{name}/voters
type VotersResponse struct {
	Data []Voter `json:"data"`
}

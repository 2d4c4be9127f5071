package api

// WitnessesRequest represents the query parameters for GET /witnesses
type WitnessesRequest struct {
	Page    uint64 `query:"page"`     // Page number for pagination (default: 1)
	PerPage uint64 `query:"per_page"` // Number of items per page (default: 50, max: 100)
}

// Witness represents a single catalog entry in the API response
type Witness struct {
	Rank            int     `json:"rank"`
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	Created         string  `json:"created"`
	Power           string  `json:"power"`
	LastBlock       string  `json:"last_block"`
	Missed          int64   `json:"missed"`
	Version         string  `json:"version"`
	PriceFeed       string  `json:"price_feed"`
	HBDInterestRate float64 `json:"hbd_interest_rate"`
	Active          bool    `json:"active"`
}

// WitnessesResponse represents the API response format for GET /witnesses
type WitnessesResponse struct {
	Data []Witness `json:"data"`
}

// Node represents one beacon endpoint candidate for GET /nodes
type Node struct {
	Endpoint    string `json:"endpoint"`
	Version     string `json:"version"`
	Score       string `json:"score"`
	LastUpdate  string `json:"last_update"`
	PassedTests int    `json:"passed_tests"`
	FailedTests int    `json:"failed_tests"`
}

// NodesResponse represents the API response format for GET /nodes
type NodesResponse struct {
	Data []Node `json:"data"`
}

package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hivescope/witnessboard/hive"
	"github.com/hivescope/witnessboard/pkg/httpkit"
	"github.com/hivescope/witnessboard/web/api"
	"github.com/hivescope/witnessboard/web/handler/bind"
)

const GetWitnessesRoute = http.MethodGet + " " + "/witnesses"

// WitnessCatalog lists pages of the vote-ranked witness catalog
type WitnessCatalog interface {
	ListPage(ctx context.Context, page hive.Page, size hive.PerPage) *hive.WitnessesPage
}

type GetWitnesses struct {
	catalog WitnessCatalog
}

func NewGetWitnesses(catalog WitnessCatalog) *GetWitnesses {
	return &GetWitnesses{
		catalog: catalog,
	}
}

func (h *GetWitnesses) AddRoutes(m *http.ServeMux) {
	m.Handle(GetWitnessesRoute, httpkit.HandlerFunc(h.GetWitnesses))
}

func (h *GetWitnesses) GetWitnesses(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	// Parse query parameters using bind layer
	req, err := bind.GetWitnessesRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	// Create domain pagination with validation
	perPage, err := hive.ParsePerPageFromUint64(req.PerPage)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}
	page := hive.ParsePageFromUint64(req.Page)

	// Query the catalog. An empty page means the chain was unreachable or
	// the page is past the end; both are represented as empty data.
	result := h.catalog.ListPage(r.Context(), page, perPage)

	// Build GitHub-style Link header for navigation
	if linkHeader := buildPaginationLinks(result, r.URL); linkHeader != "" {
		w.Header().Set("Link", linkHeader)
	}

	resp := bind.GetWitnessesResponse(result.Witnesses)
	return httpkit.JSON(resp)
}

// buildPaginationLinks creates GitHub-style Link header for pagination navigation
func buildPaginationLinks(page *hive.WitnessesPage, baseURL *url.URL) string {
	var links []string

	u := *baseURL
	query := u.Query()

	// Previous page link
	if page.HasPrevious() {
		query.Set("page", fmt.Sprintf("%d", page.Number-1))
		query.Set("per_page", fmt.Sprintf("%d", page.Size))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, u.String()))
	}

	// Next page link (only if we know there are more pages)
	if page.HasNext() {
		query.Set("page", fmt.Sprintf("%d", page.Number+1))
		query.Set("per_page", fmt.Sprintf("%d", page.Size))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, u.String()))
	}

	if len(links) == 0 {
		return ""
	}

	result := links[0]
	for _, link := range links[1:] {
		result += ", " + link
	}
	return result
}

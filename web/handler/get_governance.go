package handler

import (
	"context"
	"net/http"

	"github.com/hivescope/witnessboard/hive"
	"github.com/hivescope/witnessboard/pkg/httpkit"
	"github.com/hivescope/witnessboard/web/api"
	"github.com/hivescope/witnessboard/web/handler/bind"
)

// Routes for the discovery and composition endpoints
const (
	GetProxiesRoute = http.MethodGet + " " + "/accounts/{name}/proxies"
	GetVotersRoute  = http.MethodGet + " " + "/witnesses/{name}/voters"
	GetUserRoute    = http.MethodGet + " " + "/users/{name}"
)

// Discoverer approximates proxy and voter relations for a target account
type Discoverer interface {
	ProxiesOf(ctx context.Context, target string) []hive.ProxyRelation
	VotersOf(ctx context.Context, witness string) []hive.VoterRecord
}

// UserComposer builds the composed per-user snapshot
type UserComposer interface {
	UserData(ctx context.Context, username string) hive.UserSnapshot
}

// GetGovernance serves the discovery and user-composition endpoints. The
// underlying operations are best-effort and never fail: empty data means
// "unknown", not an error.
type GetGovernance struct {
	discovery Discoverer
	composer  UserComposer
}

func NewGetGovernance(discovery Discoverer, composer UserComposer) *GetGovernance {
	return &GetGovernance{
		discovery: discovery,
		composer:  composer,
	}
}

func (h *GetGovernance) AddRoutes(m *http.ServeMux) {
	m.Handle(GetProxiesRoute, httpkit.HandlerFunc(h.GetProxies))
	m.Handle(GetVotersRoute, httpkit.HandlerFunc(h.GetVoters))
	m.Handle(GetUserRoute, httpkit.HandlerFunc(h.GetUser))
}

func (h *GetGovernance) GetProxies(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	name, err := bind.AccountName(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	relations := h.discovery.ProxiesOf(r.Context(), name)
	return httpkit.JSON(bind.GetProxiesResponse(relations))
}

func (h *GetGovernance) GetVoters(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	name, err := bind.AccountName(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	voters := h.discovery.VotersOf(r.Context(), name)
	return httpkit.JSON(bind.GetVotersResponse(voters))
}

func (h *GetGovernance) GetUser(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	name, err := bind.AccountName(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	snapshot := h.composer.UserData(r.Context(), name)
	return httpkit.JSON(snapshot)
}

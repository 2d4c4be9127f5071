package handler

import (
	"context"
	"net/http"

	"github.com/hivescope/witnessboard/pkg/beacon"
	"github.com/hivescope/witnessboard/pkg/httpkit"
	"github.com/hivescope/witnessboard/web/handler/bind"
)

const GetNodesRoute = http.MethodGet + " " + "/nodes"

// NodeLister returns the cached beacon endpoint candidates
type NodeLister interface {
	Nodes(ctx context.Context) []beacon.Node
}

// GetNodes exposes the raw beacon candidate list for status displays.
type GetNodes struct {
	gateway NodeLister
}

func NewGetNodes(gateway NodeLister) *GetNodes {
	return &GetNodes{
		gateway: gateway,
	}
}

func (h *GetNodes) AddRoutes(m *http.ServeMux) {
	m.Handle(GetNodesRoute, httpkit.HandlerFunc(h.GetNodes))
}

func (h *GetNodes) GetNodes(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	nodes := h.gateway.Nodes(r.Context())
	return httpkit.JSON(bind.GetNodesResponse(nodes))
}

package hive

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hivescope/witnessboard/pkg/beacon"
	"github.com/hivescope/witnessboard/pkg/hiverpc"
)

// PerfectScore is the beacon health score of a fully passing endpoint.
const PerfectScore = "100%"

// Cache keys for resolved gateway state
const (
	bestEndpointKey = "best_endpoint"
	nodeListKey     = "node_list"
)

// GatewaySelector resolves the best-scoring chain RPC endpoint from the
// beacon service. The first successful resolution is cached for the process
// lifetime; Invalidate forces re-resolution on the next call.
type GatewaySelector struct {
	beacon          NodeLister
	cache           *gocache.Cache
	defaultEndpoint string
}

// GatewayOption configures the GatewaySelector
type GatewayOption func(*GatewaySelector)

// WithDefaultEndpoint overrides the hardcoded fallback endpoint
func WithDefaultEndpoint(endpoint string) GatewayOption {
	return func(g *GatewaySelector) { g.defaultEndpoint = endpoint }
}

// NewGatewaySelector constructs a selector over the given beacon client.
func NewGatewaySelector(nodes NodeLister, opts ...GatewayOption) *GatewaySelector {
	g := &GatewaySelector{
		beacon:          nodes,
		cache:           gocache.New(gocache.NoExpiration, 0),
		defaultEndpoint: hiverpc.DefaultEndpoint,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BestEndpoint returns the first candidate scoring exactly 100%, else the
// first candidate in beacon order, else the default endpoint. Beacon
// failures are not cached, so a later call may still resolve.
func (g *GatewaySelector) BestEndpoint(ctx context.Context) string {
	if cached, ok := g.cache.Get(bestEndpointKey); ok {
		return cached.(string)
	}

	nodes, err := g.beacon.Nodes(ctx)
	if err != nil || len(nodes) == 0 {
		return g.defaultEndpoint
	}
	g.cache.Set(nodeListKey, nodes, gocache.NoExpiration)

	best := nodes[0].Address()
	for _, node := range nodes {
		if node.Score == PerfectScore {
			best = node.Address()
			break
		}
	}

	g.cache.Set(bestEndpointKey, best, gocache.NoExpiration)
	return best
}

// Nodes returns the cached candidate list, fetching it if a selection has
// not populated it yet. Returns an empty list when the beacon is down.
func (g *GatewaySelector) Nodes(ctx context.Context) []beacon.Node {
	if cached, ok := g.cache.Get(nodeListKey); ok {
		return cached.([]beacon.Node)
	}

	nodes, err := g.beacon.Nodes(ctx)
	if err != nil {
		return nil
	}
	g.cache.Set(nodeListKey, nodes, gocache.NoExpiration)
	return nodes
}

// Invalidate drops the cached selection and candidate list.
func (g *GatewaySelector) Invalidate() {
	g.cache.Delete(bestEndpointKey)
	g.cache.Delete(nodeListKey)
}

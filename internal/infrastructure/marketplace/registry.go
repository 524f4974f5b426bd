package marketplace

import (
	"fmt"
	"sort"
	"time"

	"github.com/sellerhub/backend/internal/domain/integration"
)

// Registry holds the configured marketplace gateways keyed by platform
type Registry struct {
	gateways map[integration.Platform]integration.MarketplaceGateway
}

var _ integration.GatewayRegistry = (*Registry)(nil)

// NewRegistry builds a registry from the given gateways. A later gateway
// for the same platform replaces the earlier one.
func NewRegistry(gateways ...integration.MarketplaceGateway) *Registry {
	registry := &Registry{
		gateways: make(map[integration.Platform]integration.MarketplaceGateway, len(gateways)),
	}
	for _, gateway := range gateways {
		registry.gateways[gateway.Platform()] = gateway
	}
	return registry
}

// NewDefaultRegistry builds a registry with the production gateways for all
// supported platforms
func NewDefaultRegistry(requestTimeout time.Duration) *Registry {
	return NewRegistry(
		NewTrendyolGateway("", requestTimeout),
		NewN11Gateway("", requestTimeout),
		NewHepsiburadaGateway("", "", requestTimeout),
		NewAmazonGateway("", requestTimeout),
	)
}

// Gateway returns the gateway for the given platform
func (r *Registry) Gateway(platform integration.Platform) (integration.MarketplaceGateway, error) {
	gateway, ok := r.gateways[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformNotConfigured, platform)
	}
	return gateway, nil
}

// Gateways returns all registered gateways ordered by platform
func (r *Registry) Gateways() []integration.MarketplaceGateway {
	gateways := make([]integration.MarketplaceGateway, 0, len(r.gateways))
	for _, gateway := range r.gateways {
		gateways = append(gateways, gateway)
	}
	sort.Slice(gateways, func(i, j int) bool {
		return gateways[i].Platform() < gateways[j].Platform()
	})
	return gateways
}

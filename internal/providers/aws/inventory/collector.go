// Package inventory implements the per-service resource collectors. Each
// collector turns a region-bound ClientSet into normalized resource records,
// consuming the SDK's paginated listing operations fully. A collector either
// yields its complete resource sequence or fails as a whole; partial success
// within one task is not defined.
package inventory

import (
	"context"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
)

// Collector is one service-specific resource collector.
type Collector interface {
	// Service names the resource kind this collector produces.
	Service() models.Service

	// Global reports whether the service is queried once per account with
	// the "global" pseudo-region, ignoring requested regions. This flag, not
	// ad hoc branching, drives the scheduler's region collapsing.
	Global() bool

	// Collect lists every resource of this kind visible to clients in
	// region, tagged with accountID/region/service and the service's primary
	// identifier field.
	Collect(ctx context.Context, clients *common.ClientSet, region, accountID string) ([]models.Resource, error)
}

// Registry looks up collectors by service name.
type Registry struct {
	collectors map[models.Service]Collector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[models.Service]Collector)}
}

// DefaultRegistry returns a registry with all eight built-in collectors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&EC2Collector{})
	r.Register(&S3Collector{})
	r.Register(&RDSCollector{})
	r.Register(&DynamoDBCollector{})
	r.Register(&IAMCollector{})
	r.Register(&VPCCollector{})
	r.Register(&EKSCollector{})
	r.Register(&ECSCollector{})
	return r
}

// Register adds a collector, replacing any previous one for the same service.
func (r *Registry) Register(c Collector) {
	r.collectors[c.Service()] = c
}

// Get returns the collector for service.
func (r *Registry) Get(service models.Service) (Collector, bool) {
	c, ok := r.collectors[service]
	return c, ok
}

// newResource builds a resource record with the mandatory fields set.
func newResource(service models.Service, accountID, region string) models.Resource {
	return models.Resource{
		models.FieldAccountID: accountID,
		models.FieldRegion:    region,
		models.FieldService:   string(service),
	}
}

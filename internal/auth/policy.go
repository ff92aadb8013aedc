// Package auth maps caller group claims to the set of services they may
// inventory. The policy is a pure table injected at construction; the check
// runs before any account resolution or credential brokering so an
// unauthorized request performs zero cross-account calls.
package auth

import (
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

// Policy maps a group name to the services its members may inventory.
type Policy map[string][]models.Service

// DefaultPolicy is the built-in group table. Admin groups get every service,
// read-only groups get compute and storage basics, and the security group
// gets the security-relevant subset.
func DefaultPolicy() Policy {
	return Policy{
		"admins":         models.AllServices,
		"infra-admins":   models.AllServices,
		"read-only":      {models.ServiceEC2, models.ServiceS3},
		"cloud-readonly": {models.ServiceEC2, models.ServiceS3},
		"security": {
			models.ServiceIAM,
			models.ServiceEC2,
			models.ServiceS3,
			models.ServiceRDS,
			models.ServiceVPC,
		},
	}
}

// Filter answers authorization questions against a Policy.
type Filter struct {
	policy Policy
}

// NewFilter returns a Filter over the supplied policy. Pass DefaultPolicy()
// for the standard table.
func NewFilter(policy Policy) *Filter {
	return &Filter{policy: policy}
}

// AllowedServices returns the union of services permitted to any of the
// caller's groups. Groups absent from the policy contribute nothing.
func (f *Filter) AllowedServices(groups []string) []models.Service {
	seen := make(map[models.Service]struct{})
	var allowed []models.Service
	for _, g := range groups {
		for _, svc := range f.policy[g] {
			if _, dup := seen[svc]; dup {
				continue
			}
			seen[svc] = struct{}{}
			allowed = append(allowed, svc)
		}
	}
	return allowed
}

// Authorize returns nil when the caller's groups allow service, or a typed
// AuthorizationError otherwise.
func (f *Filter) Authorize(caller models.AuthContext, service models.Service) error {
	for _, svc := range f.AllowedServices(caller.Groups) {
		if svc == service {
			return nil
		}
	}
	return &models.AuthorizationError{Username: caller.Username, Service: service}
}

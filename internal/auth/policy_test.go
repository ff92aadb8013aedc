package auth

import (
	"errors"
	"testing"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

func TestAuthorize(t *testing.T) {
	f := NewFilter(DefaultPolicy())

	tests := []struct {
		name    string
		groups  []string
		service models.Service
		allowed bool
	}{
		{name: "admin gets everything", groups: []string{"admins"}, service: models.ServiceECS, allowed: true},
		{name: "infra-admins alias", groups: []string{"infra-admins"}, service: models.ServiceDynamoDB, allowed: true},
		{name: "read-only gets ec2", groups: []string{"read-only"}, service: models.ServiceEC2, allowed: true},
		{name: "read-only denied rds", groups: []string{"read-only"}, service: models.ServiceRDS, allowed: false},
		{name: "security gets iam", groups: []string{"security"}, service: models.ServiceIAM, allowed: true},
		{name: "security denied eks", groups: []string{"security"}, service: models.ServiceEKS, allowed: false},
		{name: "union across groups", groups: []string{"read-only", "security"}, service: models.ServiceRDS, allowed: true},
		{name: "unknown group denied", groups: []string{"developers"}, service: models.ServiceEC2, allowed: false},
		{name: "no groups denied", groups: nil, service: models.ServiceS3, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Authorize(models.AuthContext{Username: "alice", Groups: tt.groups}, tt.service)
			if tt.allowed && err != nil {
				t.Fatalf("Authorize: unexpected denial: %v", err)
			}
			if !tt.allowed {
				if err == nil {
					t.Fatal("Authorize: expected denial, got nil")
				}
				var authErr *models.AuthorizationError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected *models.AuthorizationError, got %T", err)
				}
			}
		})
	}
}

func TestAllowedServicesUnionDeduplicates(t *testing.T) {
	f := NewFilter(DefaultPolicy())

	// read-only and security overlap on ec2 and s3; the union must list each
	// service once.
	allowed := f.AllowedServices([]string{"read-only", "security"})
	seen := make(map[models.Service]int)
	for _, svc := range allowed {
		seen[svc]++
	}
	for svc, n := range seen {
		if n > 1 {
			t.Errorf("service %q appears %d times in union", svc, n)
		}
	}
	if len(allowed) != 5 {
		t.Fatalf("union size = %d, want 5 (ec2, s3, iam, rds, vpc)", len(allowed))
	}
}

package query

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

func resource(service, id string, extra map[string]any) models.Resource {
	r := models.Resource{
		models.FieldAccountID: "111122223333",
		models.FieldRegion:    "us-east-1",
		models.FieldService:   service,
	}
	idField := models.Service(service).IDFields()[0]
	r[idField] = id
	for k, v := range extra {
		r[k] = v
	}
	return r
}

func TestFilterMatchesNestedValues(t *testing.T) {
	resources := []models.Resource{
		resource("ec2", "i-aaa", map[string]any{
			"state": "running",
			"tags":  map[string]string{"Team": "payments"},
		}),
		resource("ec2", "i-bbb", map[string]any{"state": "stopped"}),
		resource("rds", "orders-db", map[string]any{"status": "available"}),
	}

	tests := []struct {
		search string
		want   int
	}{
		{"", 3},
		{"I-AAA", 1},        // case-insensitive
		{"payments", 1},     // nested tag value
		{"team", 1},         // nested tag key
		{"db", 1},           // identifier substring
		{"us-east-1", 3},    // mandatory field
		{"nonexistent", 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("search=%q", tt.search), func(t *testing.T) {
			if got := len(Filter(resources, tt.search)); got != tt.want {
				t.Errorf("Filter(%q) matched %d resources, want %d", tt.search, got, tt.want)
			}
		})
	}
}

func TestProcessFiltersBeforePaginating(t *testing.T) {
	var resources []models.Resource
	for i := 0; i < 120; i++ {
		state := "running"
		if i%2 == 0 {
			state = "stopped"
		}
		resources = append(resources, resource("ec2", fmt.Sprintf("i-%03d", i), map[string]any{"state": state}))
	}
	result := &models.CollectionResult{Resources: resources}

	// Unfiltered: 120 resources in pages of 50 → 50, 50, 20.
	p := Process(result, "", 3, 50)
	if p.Total != 120 || p.TotalPages != 3 || len(p.Resources) != 20 {
		t.Fatalf("page 3: total=%d totalPages=%d resources=%d, want 120/3/20", p.Total, p.TotalPages, len(p.Resources))
	}

	// Filtered: total reflects the filtered count, not the raw count.
	p = Process(result, "running", 1, 50)
	if p.Total != 60 || p.TotalPages != 2 {
		t.Fatalf("filtered: total=%d totalPages=%d, want 60/2", p.Total, p.TotalPages)
	}

	// Page beyond the end: empty window, same totals.
	p = Process(result, "", 9, 50)
	if len(p.Resources) != 0 || p.Total != 120 {
		t.Fatalf("overflow page: resources=%d total=%d, want 0/120", len(p.Resources), p.Total)
	}
}

func TestPageWireFormat(t *testing.T) {
	result := &models.CollectionResult{
		Resources: []models.Resource{resource("ec2", "i-aaa", nil)},
	}
	body, err := json.Marshal(Process(result, "", 1, 50))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"resources", "total", "page", "size", "totalPages", "errors"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("page envelope missing key %q: %s", key, body)
		}
	}
	if _, ok := decoded["items"]; ok {
		t.Errorf("page envelope carries undocumented key \"items\": %s", body)
	}
}

func TestSummarize(t *testing.T) {
	resources := []models.Resource{
		resource("ec2", "i-aaa", map[string]any{"state": "running", "publiclyAccessible": true}),
		resource("ec2", "i-bbb", map[string]any{"state": "Running"}),
		resource("rds", "orders-db", map[string]any{"status": "available", "unencrypted": true, "publiclyAccessible": true}),
		resource("iam", "alice", map[string]any{"noMfa": true}),
	}

	s := Summarize(resources)
	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.ByStatus["running"] != 2 {
		t.Errorf("byStatus[running] = %d, want 2 (case-folded)", s.ByStatus["running"])
	}
	if s.ByStatus["available"] != 1 {
		t.Errorf("byStatus[available] = %d, want 1", s.ByStatus["available"])
	}
	if s.ByStatus["unknown"] != 1 {
		t.Errorf("byStatus[unknown] = %d, want 1 for the status-less IAM user", s.ByStatus["unknown"])
	}
	if s.SecurityIssues["publiclyAccessible"] != 2 || s.SecurityIssues["unencrypted"] != 1 || s.SecurityIssues["noMfa"] != 1 {
		t.Errorf("securityIssues = %v", s.SecurityIssues)
	}

	body, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"total", "byStatus", "securityIssues"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("summary missing key %q: %s", key, body)
		}
	}
}

func TestFindByID(t *testing.T) {
	resources := []models.Resource{
		resource("ec2", "i-aaa", nil),
		resource("rds", "orders-db", map[string]any{"dbiResourceId": "db-XYZ"}),
	}

	if r, ok := FindByID(resources, "i-aaa"); !ok || r.Service() != "ec2" {
		t.Errorf("lookup by canonical field failed: %v %v", r, ok)
	}
	// Secondary identifier field.
	if r, ok := FindByID(resources, "db-XYZ"); !ok || r.Service() != "rds" {
		t.Errorf("lookup by secondary field failed: %v %v", r, ok)
	}
	if _, ok := FindByID(resources, "missing"); ok {
		t.Error("lookup of unknown id succeeded")
	}
}

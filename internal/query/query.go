// Package query applies search, pagination, and summary statistics to an
// aggregated collection result. Search filters the full resource list before
// pagination and before summarization, so totals always reflect the filtered
// set, never the raw collection count.
package query

import (
	"fmt"
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

// Page is one window of a filtered resource list, with the collection errors
// passed through alongside it.
type Page struct {
	Resources  []models.Resource        `json:"resources"`
	Total      int                      `json:"total"`
	Page       int                      `json:"page"`
	Size       int                      `json:"size"`
	TotalPages int                      `json:"totalPages"`
	Errors     []models.CollectionError `json:"errors"`
}

// Summary describes a filtered resource set: the total count, counts grouped
// by the service's status field, and how many resources carry each derived
// security flag.
type Summary struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"byStatus"`
	SecurityIssues map[string]int `json:"securityIssues"`
}

// securityFlags are the derived boolean fields counted in summaries.
var securityFlags = []string{"publiclyAccessible", "unencrypted", "noMfa"}

// Process filters result's resources by the search term and slices the
// page-th window of the filtered list. page is 1-indexed; callers are
// expected to have normalized page and size beforehand.
func Process(result *models.CollectionResult, search string, page, size int) *Page {
	filtered := Filter(result.Resources, search)

	totalPages := (len(filtered) + size - 1) / size

	start := (page - 1) * size
	window := []models.Resource{}
	if start < len(filtered) {
		end := start + size
		if end > len(filtered) {
			end = len(filtered)
		}
		window = filtered[start:end]
	}

	errs := result.Errors
	if errs == nil {
		errs = []models.CollectionError{}
	}

	return &Page{
		Resources:  window,
		Total:      len(filtered),
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
		Errors:     errs,
	}
}

// Filter returns the resources matching the search term. An empty term
// matches everything.
func Filter(resources []models.Resource, search string) []models.Resource {
	if strings.TrimSpace(search) == "" {
		return resources
	}
	needle := strings.ToLower(search)
	var out []models.Resource
	for _, r := range resources {
		if valueContains(map[string]any(r), needle) {
			out = append(out, r)
		}
	}
	return out
}

// valueContains reports whether needle is a substring of any value reachable
// from v, stringified recursively. Map keys are searched too, so tag names
// match as well as tag values.
func valueContains(v any, needle string) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.Contains(strings.ToLower(t), needle)
	case map[string]any:
		for k, vv := range t {
			if strings.Contains(strings.ToLower(k), needle) || valueContains(vv, needle) {
				return true
			}
		}
		return false
	case map[string]string:
		for k, vv := range t {
			if strings.Contains(strings.ToLower(k), needle) ||
				strings.Contains(strings.ToLower(vv), needle) {
				return true
			}
		}
		return false
	case []any:
		for _, vv := range t {
			if valueContains(vv, needle) {
				return true
			}
		}
		return false
	case []string:
		for _, vv := range t {
			if strings.Contains(strings.ToLower(vv), needle) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(strings.ToLower(fmt.Sprint(t)), needle)
	}
}

// Summarize computes summary statistics over an already-filtered resource
// set. The status grouping reads "state" first, then "status", since
// services disagree on the field name; resources with neither are counted
// under "unknown".
func Summarize(resources []models.Resource) Summary {
	s := Summary{
		Total:          len(resources),
		ByStatus:       map[string]int{},
		SecurityIssues: map[string]int{},
	}
	for _, r := range resources {
		status := r.StringField("state")
		if status == "" {
			status = r.StringField("status")
		}
		if status == "" {
			status = "unknown"
		}
		s.ByStatus[strings.ToLower(status)]++

		for _, flag := range securityFlags {
			if set, _ := r[flag].(bool); set {
				s.SecurityIssues[flag]++
			}
		}
	}
	return s
}

// FindByID returns the first resource whose recognized identifier fields
// match id. Each service declares which of its fields count as identifiers;
// the canonical field is checked first.
func FindByID(resources []models.Resource, id string) (models.Resource, bool) {
	for _, r := range resources {
		svc := models.Service(r.Service())
		for _, field := range svc.IDFields() {
			if r.StringField(field) == id {
				return r, true
			}
		}
	}
	return nil, false
}

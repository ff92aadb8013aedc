package models

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Services
// ---------------------------------------------------------------------------

// Service identifies one of the supported AWS resource kinds.
type Service string

const (
	ServiceEC2      Service = "ec2"
	ServiceS3       Service = "s3"
	ServiceRDS      Service = "rds"
	ServiceDynamoDB Service = "dynamodb"
	ServiceIAM      Service = "iam"
	ServiceVPC      Service = "vpc"
	ServiceEKS      Service = "eks"
	ServiceECS      Service = "ecs"
)

// AllServices lists every supported service in stable order.
var AllServices = []Service{
	ServiceEC2,
	ServiceS3,
	ServiceRDS,
	ServiceDynamoDB,
	ServiceIAM,
	ServiceVPC,
	ServiceEKS,
	ServiceECS,
}

// serviceIDFields maps each service to the resource fields recognised as its
// primary identifier. Detail lookup checks them in order, so the canonical
// field comes first.
var serviceIDFields = map[Service][]string{
	ServiceEC2:      {"instanceId"},
	ServiceS3:       {"bucketName", "name"},
	ServiceRDS:      {"dbInstanceIdentifier", "dbiResourceId"},
	ServiceDynamoDB: {"tableName"},
	ServiceIAM:      {"userName", "roleName", "arn"},
	ServiceVPC:      {"vpcId"},
	ServiceEKS:      {"clusterName", "clusterArn"},
	ServiceECS:      {"clusterName", "clusterArn"},
}

// ParseService validates a caller-supplied service name.
func ParseService(name string) (Service, error) {
	s := Service(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllServices {
		if s == known {
			return s, nil
		}
	}
	return "", &ValidationError{Msg: fmt.Sprintf("unknown service %q", name)}
}

// IDFields returns the resource fields recognised as primary identifiers for
// the service, canonical field first.
func (s Service) IDFields() []string {
	return serviceIDFields[s]
}

// ---------------------------------------------------------------------------
// Resources
// ---------------------------------------------------------------------------

// Mandatory resource fields. Every resource returned to a caller carries a
// non-empty value for AccountID and Region; the aggregator backfills them
// when a collector did not.
const (
	FieldAccountID = "accountId"
	FieldRegion    = "region"
	FieldService   = "service"
)

// GlobalRegion is the pseudo-region used for services that are not
// region-scoped (IAM, S3).
const GlobalRegion = "global"

// Resource is an open mapping of provider-specific attributes plus the
// mandatory accountId/region/service fields. Values may be nested maps,
// slices, or scalars; consumers must not assume a fixed schema beyond the
// mandatory fields.
type Resource map[string]any

// StringField returns the named field as a string, or "" when it is absent
// or not a string.
func (r Resource) StringField(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// AccountID returns the mandatory account field.
func (r Resource) AccountID() string { return r.StringField(FieldAccountID) }

// Region returns the mandatory region field.
func (r Resource) Region() string { return r.StringField(FieldRegion) }

// Service returns the mandatory service field.
func (r Resource) Service() string { return r.StringField(FieldService) }

// ---------------------------------------------------------------------------
// Accounts and results
// ---------------------------------------------------------------------------

// Account is one target account produced by the account resolver.
// Immutable for the lifetime of a request. An empty RoleARN marks the
// caller's own account: collection against it uses the management identity
// directly, without brokering. AccountName is display data only.
type Account struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName,omitempty"`
	RoleARN     string `json:"roleArn,omitempty"`
}

// CollectionError attributes one failed collection task to its
// (account, region) pair.
type CollectionError struct {
	AccountID string `json:"accountId"`
	Region    string `json:"region"`
	Message   string `json:"message"`
}

// CollectionResult is the aggregate outcome of one collection request:
// every resource obtained plus one error entry per failed task. Partial data
// alongside a non-empty Errors list is a normal response shape.
type CollectionResult struct {
	Resources []Resource        `json:"resources"`
	Errors    []CollectionError `json:"errors"`
}

// AuthContext carries the caller's already-verified claims. The engine never
// fetches or validates tokens itself.
type AuthContext struct {
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// Pagination bounds. Size is clamped to [MinPageSize, MaxPageSize].
const (
	DefaultPageSize = 50
	MinPageSize     = 1
	MaxPageSize     = 100
	MaxSearchLen    = 500
)

// CollectionRequest is one inventory request after parameter parsing.
type CollectionRequest struct {
	Service  Service  `json:"service"`
	Accounts []string `json:"accounts,omitempty"`
	Regions  []string `json:"regions,omitempty"`
	Page     int      `json:"page"`
	Size     int      `json:"size"`
	Search   string   `json:"search,omitempty"`
}

// Normalize clamps pagination to its documented bounds and caps the search
// term at MaxSearchLen characters.
func (r *CollectionRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Size == 0 {
		r.Size = DefaultPageSize
	}
	if r.Size < MinPageSize {
		r.Size = MinPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	if len(r.Search) > MaxSearchLen {
		r.Search = r.Search[:MaxSearchLen]
	}
	// Drop empty entries left behind by stray commas in the query string.
	r.Accounts = compactStrings(r.Accounts)
	r.Regions = compactStrings(r.Regions)
}

// compactStrings trims each entry, drops empties, and deduplicates while
// preserving first-seen order.
func compactStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ServiceNames returns the supported service names sorted alphabetically,
// for error messages and CLI help text.
func ServiceNames() []string {
	names := make([]string, 0, len(AllServices))
	for _, s := range AllServices {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

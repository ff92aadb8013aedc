// Package export renders a filtered resource set as CSV or JSON. Export
// always covers the full filtered set — pagination never applies here.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a caller-supplied format name. Empty means JSON.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", &models.ValidationError{Msg: fmt.Sprintf("unknown export format %q", name)}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// JSON emits the unflattened resource list verbatim.
func JSON(resources []models.Resource) ([]byte, error) {
	if resources == nil {
		resources = []models.Resource{}
	}
	return json.MarshalIndent(resources, "", "  ")
}

// CSV emits one row per resource. The column set is the union of all
// flattened keys across the set; nested maps and slices flatten into dotted
// and indexed names. accountId and region are forced to be the first two
// columns, the rest sort alphabetically.
func CSV(resources []models.Resource) ([]byte, error) {
	flattened := make([]map[string]string, 0, len(resources))
	columnSet := make(map[string]struct{})
	for _, r := range resources {
		row := make(map[string]string)
		for k, v := range r {
			flattenInto(row, k, v)
		}
		for k := range row {
			columnSet[k] = struct{}{}
		}
		flattened = append(flattened, row)
	}

	columns := orderColumns(columnSet)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	record := make([]string, len(columns))
	for _, row := range flattened {
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenInto records v under key, recursing into maps with dotted names and
// into slices with indexed names.
func flattenInto(row map[string]string, key string, v any) {
	switch t := v.(type) {
	case nil:
		row[key] = ""
	case map[string]any:
		for k, vv := range t {
			flattenInto(row, key+"."+k, vv)
		}
	case map[string]string:
		for k, vv := range t {
			row[key+"."+k] = vv
		}
	case []any:
		for i, vv := range t {
			flattenInto(row, key+"."+strconv.Itoa(i), vv)
		}
	case []string:
		for i, vv := range t {
			row[key+"."+strconv.Itoa(i)] = vv
		}
	case string:
		row[key] = t
	default:
		row[key] = fmt.Sprint(t)
	}
}

// orderColumns places accountId and region first, then the remaining columns
// alphabetically.
func orderColumns(set map[string]struct{}) []string {
	columns := []string{models.FieldAccountID, models.FieldRegion}
	var rest []string
	for col := range set {
		if col == models.FieldAccountID || col == models.FieldRegion {
			continue
		}
		rest = append(rest, col)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

func TestCSVColumnOrderAndFlattening(t *testing.T) {
	resources := []models.Resource{
		{
			"accountId":  "111122223333",
			"region":     "us-east-1",
			"service":    "ec2",
			"instanceId": "i-aaa",
			"tags":       map[string]string{"Team": "payments"},
			"zones":      []string{"us-east-1a", "us-east-1b"},
		},
		{
			"accountId":          "444455556666",
			"region":             "eu-west-1",
			"service":            "ec2",
			"instanceId":         "i-bbb",
			"publiclyAccessible": true,
		},
	}

	out, err := CSV(resources)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse generated CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}

	header := records[0]
	if header[0] != "accountId" || header[1] != "region" {
		t.Fatalf("header starts %v, want accountId then region", header[:2])
	}
	// The rest is the alphabetical union of flattened keys from both rows.
	rest := header[2:]
	want := []string{
		"instanceId", "publiclyAccessible", "service",
		"tags.Team", "zones.0", "zones.1",
	}
	if len(rest) != len(want) {
		t.Fatalf("columns = %v, want %v", rest, want)
	}
	for i := range want {
		if rest[i] != want[i] {
			t.Fatalf("column %d = %q, want %q", i+2, rest[i], want[i])
		}
	}

	byCol := func(row []string, name string) string {
		for i, col := range header {
			if col == name {
				return row[i]
			}
		}
		t.Fatalf("no column %q", name)
		return ""
	}
	if byCol(records[1], "tags.Team") != "payments" {
		t.Errorf("nested tag not flattened: %v", records[1])
	}
	if byCol(records[1], "zones.1") != "us-east-1b" {
		t.Errorf("slice not indexed: %v", records[1])
	}
	// Row without a column gets an empty cell, not a parse error.
	if byCol(records[1], "publiclyAccessible") != "" {
		t.Errorf("missing field should render empty")
	}
	if byCol(records[2], "publiclyAccessible") != "true" {
		t.Errorf("bool not stringified: %v", records[2])
	}
}

func TestJSONPassthrough(t *testing.T) {
	resources := []models.Resource{
		{"accountId": "111122223333", "region": "global", "service": "s3", "bucketName": "logs"},
	}
	out, err := JSON(resources)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["bucketName"] != "logs" {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestJSONEmptySetIsEmptyArray(t *testing.T) {
	out, err := JSON(nil)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if string(out) != "[]" {
		t.Fatalf("empty export = %q, want []", out)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Errorf("empty format: %v %v, want json default", f, err)
	}
	if f, err := ParseFormat("csv"); err != nil || f != FormatCSV {
		t.Errorf("csv: %v %v", f, err)
	}
	_, err := ParseFormat("xml")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("unknown format error = %v (%T), want *models.ValidationError", err, err)
	}
}

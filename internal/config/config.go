// Package config holds the engine configuration. Values are read from the
// environment because the inventory engine runs as a service; flags can
// override individual fields at the CLI layer.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultRoleName   = "CloudInventoryReadOnly"
	DefaultWorkers    = 10
	DefaultListenAddr = ":8080"
)

// DefaultRegions is the full supported region list used when a request does
// not name explicit regions.
var DefaultRegions = []string{
	"us-east-1", "us-east-2", "us-west-1", "us-west-2",
	"eu-west-1", "eu-west-2", "eu-central-1",
	"ap-southeast-1", "ap-southeast-2", "ap-northeast-1",
}

// Config is the top-level engine configuration.
type Config struct {
	// RoleName is the cross-account role assumed in every target account.
	// It is operator configuration, never caller-supplied.
	RoleName string

	// ExternalID is the shared secret required by the trust policy on the
	// target roles. Empty disables the external-ID condition.
	ExternalID string

	// StaticAccounts is an optional fixed account list ("id" or "id:name"
	// entries, comma separated) used when the organizational directory is
	// unavailable.
	StaticAccounts []string

	// Regions is the supported region list offered when a request does not
	// restrict regions.
	Regions []string

	// Workers bounds the number of concurrent collection tasks.
	Workers int

	// ListenAddr is the HTTP API bind address.
	ListenAddr string

	// LogLevel selects the zerolog level ("debug", "info", "warn", "error").
	LogLevel string
}

// FromEnv builds a Config from CLOUDINV_* environment variables, applying
// defaults for anything unset.
func FromEnv() (*Config, error) {
	cfg := &Config{
		RoleName:       envOr("CLOUDINV_ROLE_NAME", DefaultRoleName),
		ExternalID:     os.Getenv("CLOUDINV_EXTERNAL_ID"),
		StaticAccounts: splitList(os.Getenv("CLOUDINV_ACCOUNTS")),
		Regions:        splitList(os.Getenv("CLOUDINV_REGIONS")),
		ListenAddr:     envOr("CLOUDINV_LISTEN_ADDR", DefaultListenAddr),
		LogLevel:       envOr("CLOUDINV_LOG_LEVEL", "info"),
		Workers:        DefaultWorkers,
	}

	if raw := os.Getenv("CLOUDINV_WORKERS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid CLOUDINV_WORKERS %q: must be a positive integer", raw)
		}
		cfg.Workers = n
	}

	if len(cfg.Regions) == 0 {
		cfg.Regions = append([]string(nil), DefaultRegions...)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

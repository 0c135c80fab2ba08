package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ConfigValidator validates configuration values
type ConfigValidator struct{}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEndpoint validates an http(s) base URL
func (v *ConfigValidator) ValidateEndpoint(name, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%s: invalid URL format: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: unsupported URL scheme %q (must be http or https)", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: URL must include host", name)
	}
	return nil
}

// ValidateLogLevel validates a log level name
func (v *ConfigValidator) ValidateLogLevel(level string) error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "off"}

	normalizedLevel := strings.ToLower(strings.TrimSpace(level))
	for _, valid := range validLevels {
		if normalizedLevel == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (valid levels: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateInterval requires a positive poll interval
func (v *ConfigValidator) ValidateInterval(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return nil
}

// ValidateTimeout accepts zero (no limit) or a positive duration
func (v *ConfigValidator) ValidateTimeout(name string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%s cannot be negative, got %s", name, d)
	}
	return nil
}

// ValidatePatterns checks script name patterns
func (v *ConfigValidator) ValidatePatterns(patterns []string) error {
	if len(patterns) == 0 {
		return fmt.Errorf("at least one script pattern is required")
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid script pattern %q", p)
		}
	}
	return nil
}

// ValidateStoreKey rejects keys that cannot name a slot file
func (v *ConfigValidator) ValidateStoreKey(key string) error {
	if key == "" {
		return fmt.Errorf("store key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("store key %q cannot contain path separators", key)
	}
	return nil
}

// Validate checks every field and joins the failures
func (v *ConfigValidator) Validate(cfg Config) error {
	var errs []error

	if cfg.Repo.Owner == "" {
		errs = append(errs, fmt.Errorf("repo.owner cannot be empty"))
	}
	if cfg.Repo.Name == "" {
		errs = append(errs, fmt.Errorf("repo.name cannot be empty"))
	}
	errs = append(errs, v.ValidateEndpoint("repo.api_root", cfg.Repo.APIRoot))
	if cfg.Repo.RawRoot != "" {
		errs = append(errs, v.ValidateEndpoint("repo.raw_root", cfg.Repo.RawRoot))
	}
	if cfg.SectionID == "" {
		errs = append(errs, fmt.Errorf("settings.section_id cannot be empty"))
	}
	errs = append(errs,
		v.ValidatePatterns(cfg.ScriptPatterns),
		v.ValidateStoreKey(cfg.StoreKey),
		v.ValidateLogLevel(cfg.LogLevel),
		v.ValidateInterval("poll.host_interval", cfg.HostInterval),
		v.ValidateInterval("poll.anchor_interval", cfg.AnchorInterval),
		v.ValidateTimeout("exec.timeout", cfg.ExecTimeout),
		v.ValidateTimeout("http.timeout", cfg.HTTPTimeout),
	)

	return errors.Join(errs...)
}

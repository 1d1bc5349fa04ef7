package config

import (
	"fmt"
	"strings"
	"time"
)

// parseDuration reads a Go duration option. Empty means unset and yields 0.
func parseDuration(field, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	case d < 0:
		return 0, fmt.Errorf("%s: duration must be >= 0, got %s", field, d)
	}
	return d, nil
}

// BusyTimeoutOr returns storage.busy_timeout, or def when it is unset or zero.
func (s *StorageConfig) BusyTimeoutOr(def time.Duration) (time.Duration, error) {
	if s == nil {
		return def, nil
	}
	d, err := parseDuration("storage.busy_timeout", s.BusyTimeout)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return def, nil
	}
	return d, nil
}

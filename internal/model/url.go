package model

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL checks the URL is an absolute http or https URL.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url is required: %w", ErrNotValid)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, ErrNotValid)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https: %w", raw, ErrNotValid)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host: %w", raw, ErrNotValid)
	}

	return nil
}

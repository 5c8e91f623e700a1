package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := validateURL("mirror.base_url", c.Mirror.BaseURL); err != nil {
		return err
	}

	if c.Mirror.CallbackURL != "" {
		if err := validateURL("mirror.callback_url", c.Mirror.CallbackURL); err != nil {
			return err
		}
	}

	if c.Mirror.Timeout <= 0 {
		return fmt.Errorf("mirror.timeout must be > 0 (got %v)", c.Mirror.Timeout)
	}

	if strings.TrimSpace(c.Cover.Title) == "" {
		return fmt.Errorf("cover.title must not be empty")
	}

	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an absolute http(s) URL (got %q)", field, raw)
	}
	return nil
}

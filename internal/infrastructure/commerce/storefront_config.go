// Package commerce implements the client for the external commerce
// platform's storefront API.
package commerce

import "time"

// StorefrontConfig configures the storefront API client
type StorefrontConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Validate checks the required settings
func (c StorefrontConfig) Validate() error {
	if c.BaseURL == "" {
		return errMissingBaseURL
	}
	if c.APIKey == "" {
		return errMissingAPIKey
	}
	return nil
}

// Package sheets pushes the tender book to a shared Google Sheets
// spreadsheet.
package sheets

import (
	"fmt"
	"time"

	"github.com/atlas-conseil/tenderflow/internal/common"
)

// Config holds Google Sheets export configuration. Either a service account
// key or an OAuth2 client with a refresh token must be provided.
type Config struct {
	SpreadsheetID      string
	SpreadsheetName    string
	ServiceAccountPath string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// Validate checks the configuration for a usable credential set.
func (c *Config) Validate() error {
	if c.ServiceAccountPath == "" && (c.ClientID == "" || c.ClientSecret == "") {
		return fmt.Errorf("%w: a service account key or an OAuth2 client is required", common.ErrMissingConfig)
	}

	if c.SpreadsheetName == "" {
		c.SpreadsheetName = "Suivi des appels d'offres"
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}

	return nil
}

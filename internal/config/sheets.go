package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/atlas-conseil/tenderflow/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration, preferring viper
// settings (config file or TENDERFLOW_ env vars) over the GOOGLE_SHEETS_*
// environment variables.
func LoadSheetsConfig() (*sheets.Config, error) {
	cfg := &sheets.Config{
		ServiceAccountPath: ExpandPath(viper.GetString("sheets.service_account_path")),
		ClientID:           viper.GetString("sheets.client_id"),
		ClientSecret:       viper.GetString("sheets.client_secret"),
		RefreshToken:       viper.GetString("sheets.refresh_token"),
		SpreadsheetID:      viper.GetString("sheets.spreadsheet_id"),
		SpreadsheetName:    viper.GetString("sheets.spreadsheet_name"),
		TokenFile:          ExpandPath(viper.GetString("sheets.token_file")),
	}

	if cfg.ServiceAccountPath == "" {
		cfg.ServiceAccountPath = ExpandPath(os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if cfg.RefreshToken == "" {
		cfg.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if cfg.SpreadsheetID == "" {
		cfg.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

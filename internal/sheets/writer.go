package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

const sheetTitle = "Appels d'offres"

var sheetHeaders = []any{
	"Référence AO",
	"Organisme émetteur",
	"Objet",
	"Région/Ville",
	"Secteur",
	"Montant estimé (MAD)",
	"Montant offert (MAD)",
	"Date de publication",
	"Date de soumission",
	"GO/NO GO",
	"Statut",
	"Responsable",
	"Complexité",
	"Historique client",
}

// Writer pushes tender rows to a Google Sheets spreadsheet.
type Writer struct {
	service *sheets.Service
	config  Config
}

// NewWriter creates a Google Sheets writer from the configured credentials.
func NewWriter(ctx context.Context, cfg Config) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheets config: %w", err)
	}

	svc, err := createSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{service: svc, config: cfg}, nil
}

// Write replaces the spreadsheet contents with the given tender set.
func (w *Writer) Write(ctx context.Context, records []model.TenderRecord) error {
	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	values := make([][]any, 0, len(records)+1)
	values = append(values, sheetHeaders)
	for i := range records {
		values = append(values, tenderRow(&records[i]))
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		clearReq := w.service.Spreadsheets.Values.Clear(spreadsheetID, sheetTitle, &sheets.ClearValuesRequest{})
		if _, clearErr := clearReq.Context(ctx).Do(); clearErr != nil {
			return fmt.Errorf("failed to clear sheet: %w", clearErr)
		}

		updateReq := w.service.Spreadsheets.Values.Update(spreadsheetID, sheetTitle+"!A1",
			&sheets.ValueRange{Values: values})
		if _, updateErr := updateReq.ValueInputOption("USER_ENTERED").Context(ctx).Do(); updateErr != nil {
			return fmt.Errorf("failed to write rows: %w", updateErr)
		}
		return nil
	}, retryOpts)
	if err != nil {
		return err
	}

	slog.Info("Spreadsheet updated",
		"spreadsheet_id", spreadsheetID,
		"rows", len(values))
	return nil
}

func tenderRow(rec *model.TenderRecord) []any {
	return []any{
		rec.Reference,
		rec.Organization,
		rec.Object,
		rec.Region,
		rec.Sector,
		sheetFloat(rec.EstimatedAmount),
		sheetFloat(rec.OfferedAmount),
		sheetDate(rec.PublicationDate),
		sheetDate(rec.SubmissionDate),
		string(rec.Decision),
		string(rec.Status),
		rec.Owner,
		rec.Complexity,
		rec.ClientHistory,
	}
}

func sheetFloat(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func sheetDate(p *time.Time) any {
	if p == nil {
		return ""
	}
	return p.Format("02/01/2006")
}

// createSheetsService builds the API client from either a service account
// key or an OAuth2 refresh token.
func createSheetsService(ctx context.Context, cfg Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if cfg.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(cfg.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: cfg.RefreshToken,
			TokenType:    "Bearer",
		}

		if cfg.TokenFile != "" {
			if cached, err := LoadToken(cfg.TokenFile); err == nil {
				token = cached
			}

			refreshed, err := RefreshTokenIfNeeded(ctx, cfg, token)
			if err != nil {
				return nil, err
			}
			token = refreshed
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet verifies the configured spreadsheet or creates a
// fresh one with the tender sheet in place.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: w.config.SpreadsheetName,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetTitle}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	slog.Info("Created spreadsheet",
		"spreadsheet_id", created.SpreadsheetId,
		"title", w.config.SpreadsheetName)
	return created.SpreadsheetId, nil
}

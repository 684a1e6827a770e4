// Package export renders the tender book to files the team shares outside
// the tool.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

const (
	tendersSheet = "Appels d'offres"
	statsSheet   = "Synthèse"
)

// excelHeaders are the column titles of the tender sheet, matching the
// team's historical workbook.
var excelHeaders = []string{
	"Référence AO",
	"Organisme émetteur",
	"Objet",
	"Région/Ville",
	"Secteur",
	"Montant estimé (MAD)",
	"Montant offert (MAD)",
	"Caution (MAD)",
	"Date de publication",
	"Date de soumission",
	"Date de décision",
	"GO/NO GO",
	"Statut",
	"Motif de rejet",
	"Complexité",
	"Type de mission",
	"Responsable",
	"Durée (mois)",
	"Concurrents",
	"Score technique",
	"Temps de traitement (jours)",
	"Écart montant (%)",
	"Score stratégique",
	"Historique client",
}

// Excel writes tenders and the dashboard synthesis to an xlsx workbook.
type Excel struct {
	storage service.Storage
}

// NewExcel creates an Excel exporter.
func NewExcel(storage service.Storage) *Excel {
	return &Excel{storage: storage}
}

// Write renders the workbook for the filtered tender set into w.
func (e *Excel) Write(ctx context.Context, w io.Writer, filter service.TenderFilter) error {
	records, err := e.storage.ListTenders(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load tenders: %w", err)
	}

	stats, err := e.storage.DashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := buildTenderSheet(f, records); err != nil {
		return err
	}
	if err := buildStatsSheet(f, stats); err != nil {
		return err
	}

	// Drop the default sheet created by excelize.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildTenderSheet(f *excelize.File, records []model.TenderRecord) error {
	if _, err := f.NewSheet(tendersSheet); err != nil {
		return fmt.Errorf("failed to create tender sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range excelHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(tendersSheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(tendersSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, rec := range records {
		row := []any{
			rec.Reference,
			rec.Organization,
			rec.Object,
			rec.Region,
			rec.Sector,
			cellFloat(rec.EstimatedAmount),
			cellFloat(rec.OfferedAmount),
			cellFloat(rec.DepositAmount),
			cellDate(rec.PublicationDate),
			cellDate(rec.SubmissionDate),
			cellDate(rec.DecisionDate),
			string(rec.Decision),
			string(rec.Status),
			rec.RejectionReason,
			rec.Complexity,
			string(rec.MissionType),
			rec.Owner,
			cellInt(rec.ContractMonths),
			cellInt(rec.CompetitorCount),
			cellInt(rec.TechnicalScore),
			cellInt(rec.ProcessingDays),
			cellFloat(rec.AmountVariancePct),
			cellFloat(rec.StrategicScore),
			rec.ClientHistory,
		}

		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row: %w", err)
		}
		if err := f.SetSheetRow(tendersSheet, start, &row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

func buildStatsSheet(f *excelize.File, stats service.DashboardStats) error {
	if _, err := f.NewSheet(statsSheet); err != nil {
		return fmt.Errorf("failed to create stats sheet: %w", err)
	}

	rows := [][]any{
		{"Total appels d'offres", stats.TotalTenders},
		{"Décisions GO", stats.GoCount},
		{"Gagnés", stats.WonCount},
		{"En attente", stats.PendingCount},
		{"Valeur du pipeline (MAD)", stats.PipelineValue},
		{"Taux de GO (%)", stats.GoRate},
		{"Taux de réponse (%)", stats.ResponseRate},
		{"Taux de succès (%)", stats.SuccessRate},
		{"Délai moyen de traitement (jours)", stats.AvgProcessingDays},
	}

	for i, row := range rows {
		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address stats row: %w", err)
		}
		rowCopy := row
		if err := f.SetSheetRow(statsSheet, start, &rowCopy); err != nil {
			return fmt.Errorf("failed to write stats row: %w", err)
		}
	}

	return nil
}

func cellFloat(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func cellInt(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}

func cellDate(p *time.Time) any {
	if p == nil {
		return ""
	}
	return p.Format("02/01/2006")
}

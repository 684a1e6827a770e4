package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlas-conseil/tenderflow/internal/cli"
	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/config"
	"github.com/atlas-conseil/tenderflow/internal/export"
	"github.com/atlas-conseil/tenderflow/internal/service"
	"github.com/atlas-conseil/tenderflow/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tenders to Excel or Google Sheets",
		Long: `Write the tender database to an Excel workbook, or push it to the
configured Google Sheets spreadsheet with --sheets.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("output", "o", "appels_offres.xlsx", "output file for the Excel export")
	cmd.Flags().Bool("sheets", false, "push to Google Sheets instead of writing a file")
	cmd.Flags().String("status", "", "only export tenders with this status")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	toSheets, _ := cmd.Flags().GetBool("sheets")
	status, _ := cmd.Flags().GetString("status")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	filter := service.TenderFilter{Status: status}

	if toSheets {
		cfg, err := config.LoadSheetsConfig()
		if err != nil {
			return common.NewUserError("Configuration Google Sheets incomplète", err)
		}

		writer, err := sheets.NewWriter(ctx, *cfg)
		if err != nil {
			return fmt.Errorf("failed to create sheets writer: %w", err)
		}

		records, err := store.ListTenders(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list tenders: %w", err)
		}

		if err := writer.Write(ctx, records); err != nil {
			return fmt.Errorf("failed to write to Google Sheets: %w", err)
		}

		fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d appel(s) d'offres exporté(s) vers Google Sheets", len(records))))
		return nil
	}

	output, _ := cmd.Flags().GetString("output")
	f, err := os.Create(output) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := export.NewExcel(store).Write(ctx, f, filter); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Export écrit dans " + output))
	return nil
}

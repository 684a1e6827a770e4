package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlas-conseil/tenderflow/internal/cli"
	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked tenders",
		Long: `List tenders from the local database, newest first, with pending
decisions surfaced before the rest. All filters combine.`,
		RunE: runList,
	}

	cmd.Flags().String("status", "", "filter by status (Gagné, Perdu, En attente, ...)")
	cmd.Flags().String("owner", "", "filter by responsible team member")
	cmd.Flags().String("sector", "", "filter by activity sector")
	cmd.Flags().String("region", "", "filter by region")
	cmd.Flags().String("search", "", "search object and reference")
	cmd.Flags().Int("limit", 50, "maximum number of rows")
	cmd.Flags().Int("offset", 0, "number of rows to skip")
	cmd.Flags().Bool("json", false, "print records as JSON")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")
	search, _ := cmd.Flags().GetString("search")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	var records []model.TenderRecord
	if search != "" {
		records, err = store.SearchTenders(ctx, search)
	} else {
		filter := service.TenderFilter{}
		filter.Status, _ = cmd.Flags().GetString("status")
		filter.Owner, _ = cmd.Flags().GetString("owner")
		filter.Sector, _ = cmd.Flags().GetString("sector")
		filter.Region, _ = cmd.Flags().GetString("region")
		filter.Limit, _ = cmd.Flags().GetInt("limit")
		filter.Offset, _ = cmd.Flags().GetInt("offset")
		records, err = store.ListTenders(ctx, filter)
	}
	if err != nil {
		return fmt.Errorf("failed to list tenders: %w", err)
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println(cli.SubtleStyle.Render("Aucun appel d'offres."))
		return nil
	}

	printTenderTable(records)
	fmt.Println()
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%d appel(s) d'offres", len(records))))

	return nil
}

var listColumns = []struct {
	title string
	width int
}{
	{"Référence", 18},
	{"Maître d'Ouvrage", 28},
	{"Objet", 36},
	{"Décision", 8},
	{"Statut", 12},
	{"Responsable", 14},
}

func printTenderTable(records []model.TenderRecord) {
	var header strings.Builder
	for _, col := range listColumns {
		header.WriteString(pad(col.title, col.width))
	}
	fmt.Println(cli.TableHeaderStyle.Render(header.String()))

	for i := range records {
		rec := &records[i]
		status := string(rec.Status)
		if status == "" {
			status = "-"
		}

		var row strings.Builder
		row.WriteString(pad(rec.Reference, listColumns[0].width))
		row.WriteString(pad(rec.Organization, listColumns[1].width))
		row.WriteString(pad(rec.Object, listColumns[2].width))
		row.WriteString(pad(string(rec.Decision), listColumns[3].width))
		row.WriteString(cli.StatusStyle(string(rec.Status)).Render(pad(status, listColumns[4].width)))
		row.WriteString(pad(rec.Owner, listColumns[5].width))
		fmt.Println(row.String())
	}
}

// pad truncates or right-pads a cell to its column width. Widths are rune
// based so the accented French labels line up.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width-2 {
		return string(runes[:width-3]) + "… "
	}
	return s + strings.Repeat(" ", width-len(runes))
}

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlas-conseil/tenderflow/internal/cli"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Long: `Print the headline KPIs along with the status, sector and team
breakdowns computed over the whole database.`,
		RunE: runStats,
	}

	cmd.Flags().Bool("owners", false, "include per-team-member performance")

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	withOwners, _ := cmd.Flags().GetBool("owners")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	stats, err := store.DashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	kpis := [][2]string{
		{"Total appels d'offres", fmt.Sprintf("%d", stats.TotalTenders)},
		{"Décisions GO", fmt.Sprintf("%d (%.1f%%)", stats.GoCount, stats.GoRate)},
		{"Gagnés", fmt.Sprintf("%d (%.1f%%)", stats.WonCount, stats.SuccessRate)},
		{"En attente", fmt.Sprintf("%d", stats.PendingCount)},
		{"Valeur du pipeline", fmt.Sprintf("%.0f MAD", stats.PipelineValue)},
		{"Taux de réponse", fmt.Sprintf("%.1f%%", stats.ResponseRate)},
		{"Délai moyen de traitement", fmt.Sprintf("%.1f jours", stats.AvgProcessingDays)},
	}
	fmt.Println(cli.RenderBox("Tableau de bord", formatPairs(kpis)))

	statuses, err := store.StatusDistribution(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute status distribution: %w", err)
	}
	fmt.Println(cli.RenderBox("Par statut", formatDistribution(statuses)))

	sectors, err := store.SectorDistribution(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute sector distribution: %w", err)
	}
	fmt.Println(cli.RenderBox("Par secteur", formatDistribution(sectors)))

	if !withOwners {
		return nil
	}

	owners, err := store.OwnerPerformance(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute owner performance: %w", err)
	}

	rows := make([][2]string, 0, len(owners))
	for _, o := range owners {
		rows = append(rows, [2]string{
			o.Owner,
			fmt.Sprintf("%d dossier(s), %d gagné(s), %.1f%% de réussite", o.Total, o.Wins, o.WinRate),
		})
	}
	fmt.Println(cli.RenderBox("Par responsable", formatPairs(rows)))

	return nil
}

func formatPairs(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if n := len([]rune(p[0])); n > width {
			width = n
		}
	}

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		label := p[0] + strings.Repeat(" ", width-len([]rune(p[0])))
		lines = append(lines, fmt.Sprintf("%s  %s", cli.SubtleStyle.Render(label), p[1]))
	}
	return strings.Join(lines, "\n")
}

func formatDistribution(counts map[string]int) string {
	if len(counts) == 0 {
		return cli.SubtleStyle.Render("Aucune donnée")
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, fmt.Sprintf("%d", counts[k])})
	}
	return formatPairs(pairs)
}

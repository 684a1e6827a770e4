package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/atlas-conseil/tenderflow/internal/cli"
	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/engine"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract tender fields from a document",
		Long: `Run the field extraction over a text document (the text of a tender
notice) and print the candidate record along with any validation
problems that still need fixing before it can be saved.

With --save, a record that passes validation is persisted directly.`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().Bool("save", false, "save the record when it passes validation")
	cmd.Flags().Bool("json", false, "print the result as JSON")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	save, _ := cmd.Flags().GetBool("save")
	asJSON, _ := cmd.Flags().GetBool("json")

	document, err := os.ReadFile(args[0]) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	extractor, err := initExtractor(store)
	if err != nil {
		return err
	}
	if extractor == nil {
		return common.NewUserError("Aucun fournisseur d'extraction configuré, renseignez extraction.api_key", nil)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Extraction des champs"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	extractor.Progress = func(done, total int) {
		bar.ChangeMax(total)
		_ = bar.Set(done)
	}

	result, err := extractor.Run(ctx, args[0], string(document))
	if err != nil {
		return err
	}
	_ = bar.Finish()

	eng := engine.New(store)
	rec, violations := eng.Prepare(result.Fields)

	if asJSON {
		out := map[string]any{
			"fields":     result.Fields,
			"record":     rec,
			"violations": violations,
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	fmt.Println(cli.FormatTitle("Champs extraits"))
	for _, fp := range extractionOrder() {
		if answer, ok := result.Run.Fields[fp]; ok {
			fmt.Printf("  %s: %s\n", cli.TableCellStyle.Render(fp), answer)
		}
	}

	if len(violations) > 0 {
		fmt.Println()
		fmt.Println(cli.FormatWarning("À compléter avant enregistrement:"))
		for _, v := range violations {
			fmt.Printf("  - %s\n", v)
		}
		if save {
			return fmt.Errorf("record failed validation, not saved")
		}
		return nil
	}

	if save {
		saved, err := eng.Save(ctx, &rec)
		if err != nil {
			return err
		}
		verb := "mis à jour"
		if saved.IsNew {
			verb = "créé"
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Appel d'offres %s: %s", verb, saved.Key)))
	}

	return nil
}

func extractionOrder() []string {
	return []string{
		"Référence",
		"Objet",
		"Maître d'Ouvrage",
		"Date",
		"Estimation des coûts",
		"Montant de la caution",
	}
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"arclose/internal/config"
	"arclose/internal/dispute"
	"arclose/internal/engine"
	"arclose/internal/ledger"
	"arclose/internal/logger"
	"arclose/internal/report"
	"arclose/internal/rules"
)

// Default export file names inside the export directory, used when no
// explicit paths are given. The surrounding automation drops the exports
// under these names.
const (
	openItemsFile    = "open_items.txt"
	clearedItemsFile = "cleared_items.txt"
	disputeCasesFile = "dispute_cases.txt"
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Evaluate exported data and derive case-closing instructions",
	Long: `Evaluate receivables and dispute-case exports and derive the closing
instructions for cases whose credit notes now reconcile.

The command merges the ledger export with the dispute-case export, checks
every matched pair for consistency, matches amounts against the country
thresholds and writes the closing instructions plus per-country reports
to the output directory.`,
	Example: `  # Full evaluation with explicit export paths
  arclose close --rules rules.yaml --ledger open.txt --ledger cleared.txt --disputes cases.txt

  # Evaluate the exports of EXPORT_DIR without writing closing instructions
  arclose close --rules rules.yaml --dry-run`,
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)

	closeCmd.Flags().String("rules", "", "Path to the country closing rules file (default: CLOSING_RULES_PATH)")
	closeCmd.Flags().StringSlice("ledger", nil, "Path to a receivables export file, repeatable (default: open and cleared items in EXPORT_DIR)")
	closeCmd.Flags().String("disputes", "", "Path to the dispute-case export file (default: dispute cases in EXPORT_DIR)")
	closeCmd.Flags().String("out", "", "Directory the instructions and reports are written to (default: OUTPUT_DIR)")
	closeCmd.Flags().String("sheet", "Data", "Name of the report data sheet")
	closeCmd.Flags().Bool("dry-run", false, "Evaluate but don't write closing instructions")
}

func runClose(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("close")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rulesPath, _ := cmd.Flags().GetString("rules")
	ledgerPaths, _ := cmd.Flags().GetStringSlice("ledger")
	disputesPath, _ := cmd.Flags().GetString("disputes")
	outDir, _ := cmd.Flags().GetString("out")
	sheetName, _ := cmd.Flags().GetString("sheet")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if rulesPath == "" {
		rulesPath = cfg.RulesPath
	}
	if rulesPath == "" {
		return fmt.Errorf("closing rules path is required (--rules or CLOSING_RULES_PATH)")
	}
	if len(ledgerPaths) == 0 {
		ledgerPaths = []string{
			filepath.Join(cfg.ExportDir, openItemsFile),
			filepath.Join(cfg.ExportDir, clearedItemsFile),
		}
	}
	if disputesPath == "" {
		disputesPath = filepath.Join(cfg.ExportDir, disputeCasesFile)
	}
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	log.Info().
		Str("rules", rulesPath).
		Strs("ledger", ledgerPaths).
		Str("disputes", disputesPath).
		Bool("dry_run", dryRun).
		Msg("Starting dispute-case evaluation")

	ruleSet, err := rules.Load(rulesPath)
	if err != nil {
		return fmt.Errorf("failed to load closing rules: %w", err)
	}

	countries, err := ruleSet.ActiveCountries()
	if err != nil {
		return fmt.Errorf("failed to list active countries: %w", err)
	}

	records, err := prepareData(ruleSet, countries, ledgerPaths, disputesPath)
	if err != nil {
		return err
	}

	evaluated, err := engine.New().Evaluate(records, ruleSet)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	instructions, err := engine.BuildInstructions(evaluated)
	switch {
	case errors.Is(err, engine.ErrNoCasesToClose):
		log.Warn().Msg("No cases to close found")
	case err != nil:
		return fmt.Errorf("failed to build closing instructions: %w", err)
	case dryRun:
		log.Info().Int("cases", len(instructions)).Msg("Dry run mode: Closing instructions not written")
	default:
		if err := writeInstructions(instructions, filepath.Join(outDir, "closing_input.json")); err != nil {
			return err
		}
	}

	if err := writeReports(evaluated, ruleSet, countries, outDir, cfg.ReportName, sheetName); err != nil {
		return err
	}

	log.Info().Msg("Dispute-case evaluation completed successfully")
	return nil
}

// prepareData reads and preprocesses the exports: ledger parsing, case-ID
// extraction, dispute-case parsing and the left join into merged records.
func prepareData(ruleSet rules.Set, countries []string, ledgerPaths []string, disputesPath string) ([]engine.MergedRecord, error) {
	const op = "prepareData"
	log := logger.WithComponent("close")

	var texts []string
	for _, path := range ledgerPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read ledger export: %w", op, err)
		}
		texts = append(texts, string(raw))
	}

	entries, err := ledger.NewParser().Parse(texts...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse ledger export: %w", op, err)
	}
	log.Info().Int("ledger_entries", len(entries)).Msg("Ledger export parsed")

	if err := ledger.ExtractCaseIDs(entries, ruleSet.CasePatterns(countries)); err != nil {
		return nil, fmt.Errorf("%s: failed to extract case IDs: %w", op, err)
	}

	rawDisputes, err := os.ReadFile(disputesPath)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read dispute-case export: %w", op, err)
	}

	cases, err := dispute.NewParser().Parse(string(rawDisputes))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse dispute-case export: %w", op, err)
	}
	log.Info().Int("dispute_cases", len(cases)).Msg("Dispute-case export parsed")

	records, err := engine.Merge(entries, cases)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to merge data: %w", op, err)
	}

	return engine.CheckConsistency(records), nil
}

func writeInstructions(instructions []engine.ClosingInstruction, path string) error {
	log := logger.WithComponent("close")

	encoded, err := json.MarshalIndent(instructions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode closing instructions: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write closing instructions: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("cases", len(instructions)).
		Msg("Closing instructions written")

	return nil
}

// writeReports renders one xlsx report per country and the combined HTML
// summary used by the notification mail.
func writeReports(records []engine.MergedRecord, ruleSet rules.Set, countries []string, outDir, namePattern, sheetName string) error {
	log := logger.WithComponent("close")

	var summaries strings.Builder

	for _, country := range countries {
		companyCode := ruleSet[country].CompanyCode

		var subset []engine.MergedRecord
		for _, record := range records {
			if record.Entry.CompanyCode == companyCode {
				subset = append(subset, record)
			}
		}
		if len(subset) == 0 {
			log.Warn().Str("country", country).Msg("No records to report")
			continue
		}

		reportPath := filepath.Join(outDir, reportFileName(namePattern, country, companyCode))
		if err := report.Write(subset, reportPath, sheetName); err != nil {
			log.Error().Err(err).Str("country", country).Msg("Could not create report")
			continue
		}

		row, err := report.Summarize(subset, companyCode, country).HTMLRow()
		if err != nil {
			return fmt.Errorf("failed to render summary for %s: %w", country, err)
		}
		summaries.WriteString(row)
	}

	if summaries.Len() == 0 {
		return fmt.Errorf("no report could be created")
	}

	summaryPath := filepath.Join(outDir, "summary.html")
	if err := os.WriteFile(summaryPath, []byte(summaries.String()), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	log.Info().Str("path", summaryPath).Msg("Processing summary written")
	return nil
}

// reportFileName resolves the report name pattern for one country.
func reportFileName(pattern, country, companyCode string) string {
	name := strings.ReplaceAll(pattern, "$country$", country)
	return strings.ReplaceAll(name, "$company_code$", companyCode)
}

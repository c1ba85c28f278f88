package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"arclose/internal/config"
	"arclose/internal/logger"
	"arclose/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:     "rules",
	Short:   "Validate the closing rules file and list active countries",
	Example: `  arclose rules --rules rules.yaml`,
	RunE:    runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().String("rules", "", "Path to the country closing rules file (default: CLOSING_RULES_PATH)")
}

func runRules(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("rules")

	rulesPath, _ := cmd.Flags().GetString("rules")
	if rulesPath == "" {
		if cfg, err := config.Load(); err == nil {
			rulesPath = cfg.RulesPath
		}
	}
	if rulesPath == "" {
		return fmt.Errorf("closing rules path is required (--rules or CLOSING_RULES_PATH)")
	}

	ruleSet, err := rules.Load(rulesPath)
	if err != nil {
		return fmt.Errorf("closing rules validation failed: %w", err)
	}

	countries, err := ruleSet.ActiveCountries()
	if err != nil {
		return fmt.Errorf("closing rules validation failed: %w", err)
	}

	log.Info().Int("countries", len(ruleSet)).Msg("Closing rules are valid")

	fmt.Printf("Closing rules valid: %d countries, %d active\n", len(ruleSet), len(countries))
	for _, country := range countries {
		fmt.Printf("  %s (company code %s)\n", country, ruleSet[country].CompanyCode)
	}

	return nil
}

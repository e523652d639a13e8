package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faithogundimu/core/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Display the configuration the engine would run with.

Configuration is read from ~/.config/core/config.yaml, overridden by a
.core.yaml in the current directory or a parent, then by environment
variables (ANTHROPIC_API_KEY, CORE_DATA_DIR, ENTREZ_EMAIL).`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		displayAllConfig(cfg)
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("# user config: %s\n", config.GetUserConfigPath())
	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("data.dir: %s\n", cfg.Data.Dir)
	fmt.Printf("data.output_dir: %s\n", cfg.Data.OutputDir)
	fmt.Printf("orchestration.max_concurrent_cases: %d\n", cfg.Orchestra.MaxConcurrentCases)
	fmt.Printf("orchestration.fetch_timeout: %s\n", cfg.Orchestra.FetchTimeout)
	fmt.Printf("orchestration.stage_timeout: %s\n", cfg.Orchestra.StageTimeout)
	fmt.Printf("trials.base_url: %s\n", cfg.Trials.BaseURL)
	fmt.Printf("trials.max_results: %d\n", cfg.Trials.MaxResults)
	fmt.Printf("pubmed.base_url: %s\n", cfg.PubMed.BaseURL)
	fmt.Printf("pubmed.email: %s\n", cfg.PubMed.Email)
}

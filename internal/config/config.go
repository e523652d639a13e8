// Package config handles configuration loading for the readiness engine.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for an orchestration run.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Data      DataConfig      `mapstructure:"data"`
	Orchestra OrchestraConfig `mapstructure:"orchestration"`
	Trials    TrialsConfig    `mapstructure:"trials"`
	PubMed    PubMedConfig    `mapstructure:"pubmed"`
}

// AnthropicConfig holds LLM reasoning settings. When APIKey is empty the
// engine falls back to the deterministic rule reasoner.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// UseBedrock routes reasoning calls through AWS Bedrock.
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// DataConfig locates the clinical data collaborators.
type DataConfig struct {
	// Dir is the directory holding the data files below.
	Dir string `mapstructure:"dir"`
	// PathologyDB is the SQLite pathology report store.
	PathologyDB string `mapstructure:"pathology_db"`
	// RadiologyCSV is the radiology scan log.
	RadiologyCSV string `mapstructure:"radiology_csv"`
	// ClinicalJSON is the clinical-notes store.
	ClinicalJSON string `mapstructure:"clinical_json"`
	// GenomicsJSON is the genomics registry.
	GenomicsJSON string `mapstructure:"genomics_json"`
	// ContraindicationRules is the YAML drug-safety rule table.
	ContraindicationRules string `mapstructure:"contraindication_rules"`
	// OutputDir is where the dashboard artifact is written.
	OutputDir string `mapstructure:"output_dir"`
}

// OrchestraConfig holds concurrency and timeout settings.
type OrchestraConfig struct {
	// MaxConcurrentCases bounds how many patient workflows run at once.
	MaxConcurrentCases int `mapstructure:"max_concurrent_cases"`
	// FetchTimeout bounds each domain fetcher call.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// StageTimeout bounds each genomics pipeline stage.
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
	// DebugLog is an optional path for the orchestration debug log.
	DebugLog string `mapstructure:"debug_log"`
}

// TrialsConfig holds ClinicalTrials.gov client settings.
type TrialsConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// MaxResults bounds the trial set kept per patient.
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// PubMedConfig holds NCBI E-utilities client settings.
type PubMedConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Email is required by NCBI usage policy.
	Email      string        `mapstructure:"email"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Path returns the absolute path of a data file, resolving relative names
// against the data directory.
func (d DataConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

// Load loads configuration from XDG paths, project overrides, and environment
// variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, CORE_DATA_DIR, ENTREZ_EMAIL)
// 2. Project config (.core.yaml in current directory or parent)
// 3. User config (~/.config/core/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("data.dir", "CORE_DATA_DIR")
	v.BindEnv("pubmed.email", "ENTREZ_EMAIL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("data.dir", "mock_db")
	v.SetDefault("data.pathology_db", "pathology_db.sqlite")
	v.SetDefault("data.radiology_csv", "radiology_scans.csv")
	v.SetDefault("data.clinical_json", "clinical_notes.json")
	v.SetDefault("data.genomics_json", "genomics_data.json")
	v.SetDefault("data.contraindication_rules", "contraindication_rules.yaml")
	v.SetDefault("data.output_dir", "output")

	v.SetDefault("orchestration.max_concurrent_cases", 8)
	v.SetDefault("orchestration.fetch_timeout", "15s")
	v.SetDefault("orchestration.stage_timeout", "60s")
	v.SetDefault("orchestration.debug_log", "")

	v.SetDefault("trials.base_url", "https://clinicaltrials.gov/api/v2")
	v.SetDefault("trials.max_results", 5)
	v.SetDefault("trials.timeout", "30s")

	v.SetDefault("pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("pubmed.email", "")
	v.SetDefault("pubmed.max_results", 5)
	v.SetDefault("pubmed.timeout", "30s")
}

// getUserConfigDir returns the XDG config directory for the engine.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "core")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "core")
	}
	return filepath.Join(home, ".config", "core")
}

// findProjectConfig searches for .core.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".core.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:                   "mock_db",
			PathologyDB:           "pathology_db.sqlite",
			RadiologyCSV:          "radiology_scans.csv",
			ClinicalJSON:          "clinical_notes.json",
			GenomicsJSON:          "genomics_data.json",
			ContraindicationRules: "contraindication_rules.yaml",
			OutputDir:             "output",
		},
		Orchestra: OrchestraConfig{
			MaxConcurrentCases: 8,
			FetchTimeout:       15 * time.Second,
			StageTimeout:       60 * time.Second,
		},
		Trials: TrialsConfig{
			BaseURL:    "https://clinicaltrials.gov/api/v2",
			MaxResults: 5,
			Timeout:    30 * time.Second,
		},
		PubMed: PubMedConfig{
			BaseURL:    "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			MaxResults: 5,
			Timeout:    30 * time.Second,
		},
	}
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries everything the pipeline needs. It is loaded once in main and
// passed explicitly into the components that use it; there is no process-wide
// singleton.
type Config struct {
	// AppToken is the optional Socrata application token. Absence only
	// lowers the allowed request throughput, it never blocks fetching.
	AppToken string `yaml:"app_token"`

	BaseURL   string `yaml:"base_url"`
	DatasetID string `yaml:"dataset_id"`
	PageSize  int    `yaml:"page_size"`

	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`
	DBPath    string `yaml:"db_path"`
}

const (
	defaultBaseURL   = "https://data.cityofnewyork.us/resource"
	defaultDatasetID = "erm2-nwe9"
	defaultDataDir   = "data"
	defaultOutputDir = "output"
	defaultDBPath    = "data/audit.db"
)

// Load reads config.yaml (or CONFIG_PATH) when present, then applies
// environment overrides. A .env file in the working directory is folded into
// the environment first, so the Socrata token can live there.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	cfg := Config{
		BaseURL:   defaultBaseURL,
		DatasetID: defaultDatasetID,
		DataDir:   defaultDataDir,
		OutputDir: defaultOutputDir,
		DBPath:    defaultDBPath,
	}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", configPath, err)
		}
		log.Printf("loaded config from %s", configPath)
	}

	envOverride(&cfg.AppToken, "SOCRATA_APP_TOKEN")
	envOverride(&cfg.BaseURL, "NYC311_BASE_URL")
	envOverride(&cfg.DatasetID, "NYC311_DATASET_ID")
	envOverride(&cfg.DataDir, "NYC311_DATA_DIR")
	envOverride(&cfg.OutputDir, "NYC311_OUTPUT_DIR")
	envOverride(&cfg.DBPath, "NYC311_DB_PATH")
	if v := os.Getenv("NYC311_PAGE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("NYC311_PAGE_SIZE: %w", err)
		}
		cfg.PageSize = size
	}

	return cfg, nil
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

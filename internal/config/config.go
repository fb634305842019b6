// Package config provides centralized configuration for the artseen server.
// Values come from an optional YAML file (ARTSEEN_CONFIG) with environment
// variable overrides on top; everything has a sensible default.
package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/artseen/artseen/internal/identify"
)

// Config holds all server configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string `yaml:"port"`

	// DBPath is the path to the SQLite database file.
	DBPath string `yaml:"db_path"`

	// AuthSecret is the HS256 secret shared with the identity provider.
	AuthSecret string `yaml:"auth_secret"`

	// CORSOrigin is the allowed CORS origin. Defaults to "*".
	CORSOrigin string `yaml:"cors_origin"`

	// AICBaseURL is the Art Institute of Chicago API endpoint.
	AICBaseURL string `yaml:"aic_base_url"`

	// MetBaseURL is the Met collection API endpoint.
	MetBaseURL string `yaml:"met_base_url"`

	// WikidataURL is the SPARQL endpoint for enrichment.
	WikidataURL string `yaml:"wikidata_url"`

	// SourceTimeout is the per-source fetch timeout.
	SourceTimeout time.Duration `yaml:"source_timeout"`

	// EnrichTimeout is the per-call enrichment timeout.
	EnrichTimeout time.Duration `yaml:"enrich_timeout"`

	// WorkerInterval is the polling interval for the background worker.
	WorkerInterval time.Duration `yaml:"worker_interval"`

	// Offline switches the catalog sources and enricher to stubs.
	Offline bool `yaml:"offline"`

	// BonusRules is the museum affinity table used by the scorer.
	BonusRules []identify.BonusRule `yaml:"bonus_rules"`
}

const configPathEnv = "ARTSEEN_CONFIG"

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.BonusRules) == 0 {
		cfg.BonusRules = identify.DefaultBonusRules()
	}

	return cfg
}

func defaultConfig() Config {
	return Config{
		Port:           "8080",
		DBPath:         "artseen.db",
		AuthSecret:     "dev-secret-change-me",
		CORSOrigin:     "*",
		AICBaseURL:     "https://api.artic.edu/api/v1",
		MetBaseURL:     "https://collectionapi.metmuseum.org/public/collection/v1",
		WikidataURL:    "https://query.wikidata.org/sparql",
		SourceTimeout:  5 * time.Second,
		EnrichTimeout:  5 * time.Second,
		WorkerInterval: 3 * time.Second,
	}
}

func (c *Config) applyEnvOverrides() {
	overrideString(&c.Port, "PORT")
	overrideString(&c.DBPath, "DB_PATH")
	overrideString(&c.AuthSecret, "AUTH_SECRET")
	overrideString(&c.CORSOrigin, "CORS_ORIGIN")
	overrideString(&c.AICBaseURL, "AIC_BASE_URL")
	overrideString(&c.MetBaseURL, "MET_BASE_URL")
	overrideString(&c.WikidataURL, "WIKIDATA_URL")
	overrideDuration(&c.SourceTimeout, "SOURCE_TIMEOUT")
	overrideDuration(&c.EnrichTimeout, "ENRICH_TIMEOUT")
	overrideDuration(&c.WorkerInterval, "WORKER_INTERVAL")
	if v := os.Getenv("OFFLINE"); v == "1" || v == "true" {
		c.Offline = true
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid duration %s=%q, keeping %s", key, v, *dst)
		return
	}
	*dst = d
}

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds all workflow-app server configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	ListenAddr        string `json:"listen_addr"`
	DBPath            string `json:"db_path"`
	RuntimeURL        string `json:"runtime_url"`
	CatalogURL        string `json:"catalog_url"`
	LogLevel          string `json:"log_level"`
	Scheduler         bool   `json:"scheduler"`
	SchedulerInterval string `json:"scheduler_interval"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:        ":4200",
		DBPath:            filepath.Join(appDir(), "workflows.db"),
		LogLevel:          "info",
		Scheduler:         false,
		SchedulerInterval: "1m",
	}
}

func appDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".workflow-app"
	}
	return filepath.Join(home, ".workflow-app")
}

func settingsPath() string {
	return filepath.Join(appDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("WORKFLOW_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("WORKFLOW_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WORKFLOW_RUNTIME_URL"); v != "" {
		cfg.RuntimeURL = v
	}
	if v := os.Getenv("WORKFLOW_CATALOG_URL"); v != "" {
		cfg.CatalogURL = v
	}
	if v := os.Getenv("WORKFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WORKFLOW_SCHEDULER"); v != "" {
		cfg.Scheduler = v == "true" || v == "1"
	}
	if v := os.Getenv("WORKFLOW_SCHEDULER_INTERVAL"); v != "" {
		cfg.SchedulerInterval = v
	}

	return cfg
}

// schedulerInterval parses the configured interval, defaulting to one
// minute on garbage.
func (c Config) schedulerInterval() time.Duration {
	d, err := time.ParseDuration(c.SchedulerInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

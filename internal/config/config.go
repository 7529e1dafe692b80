// Package config содержит логику чтения конфигурации рабочего места.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultRunAddress    = "localhost:8080"
	defaultAPIBaseURL    = "http://localhost:8000"
	defaultDebtsEndpoint = "/debts"
	defaultSessionFile   = "debtdesk-session.json"
)

// Config содержит параметры конфигурации рабочего места.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	APIBaseURL    string `env:"API_BASE_URL"`
	DebtsEndpoint string `env:"DEBTS_ENDPOINT"`
	DatabaseURI   string `env:"DATABASE_URI"`
	SessionFile   string `env:"SESSION_FILE"`
}

// Parse считывает конфигурацию из файла .env, флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envCfg := *cfg

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.APIBaseURL, "b", defaultAPIBaseURL, "debt API base URL")
	flag.StringVar(&cfg.DebtsEndpoint, "e", defaultDebtsEndpoint, "debts endpoint path")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI for session storage")
	flag.StringVar(&cfg.SessionFile, "s", defaultSessionFile, "session file path")

	flag.Parse()

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.APIBaseURL != "" {
		cfg.APIBaseURL = envCfg.APIBaseURL
	}
	if envCfg.DebtsEndpoint != "" {
		cfg.DebtsEndpoint = envCfg.DebtsEndpoint
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.SessionFile != "" {
		cfg.SessionFile = envCfg.SessionFile
	}

	cfg.normalize()

	return cfg, nil
}

func (c *Config) normalize() {
	if c.RunAddress == "" {
		c.RunAddress = defaultRunAddress
	}

	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}

	c.DebtsEndpoint = strings.TrimSpace(c.DebtsEndpoint)
	switch {
	case c.DebtsEndpoint == "":
		c.DebtsEndpoint = defaultDebtsEndpoint
	case !strings.HasPrefix(c.DebtsEndpoint, "/"):
		c.DebtsEndpoint = "/" + c.DebtsEndpoint
	}
}

// DebtsURL возвращает полный адрес ресурса долгов.
func (c *Config) DebtsURL() string {
	return c.APIBaseURL + c.DebtsEndpoint
}

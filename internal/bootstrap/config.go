package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/target/restaurant-console/config"
)

// InitLogger initializes the structured logger.
func InitLogger(cfg config.ObservabilityLoggingConfig) *slog.Logger {
	logger := newLogger(os.Stdout, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.ObservabilityLoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// LoadConfig loads configuration from an optional .env file and environment
// variables, then applies command-line overrides from args.
func LoadConfig(args []string) (config.AppConfig, error) {
	var (
		envFile string
		addr    string
		policy  config.GatePolicy
	)
	flags := pflag.NewFlagSet("console", pflag.ContinueOnError)
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flags.StringVar(&addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	flags.Var(&policy, "gate-policy", "edge guard policy: strict or lazy (overrides GATE_POLICY)")
	if err := flags.Parse(args); err != nil {
		return config.AppConfig{}, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (development)
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("env-file") {
			return config.AppConfig{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if flags.Changed("addr") {
		cfg.HTTP.Addr = addr
	}
	if flags.Changed("gate-policy") {
		cfg.Gate.Policy = policy
	}

	cfg.Sanitize()
	return cfg, nil
}

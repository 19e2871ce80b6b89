// Package config loads run configuration from an optional ini file and
// validates it before any checking begins.
package config

import (
	"errors"
	"fmt"
	"net"

	"gopkg.in/ini.v1"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// LoadIni overlays values from an ini file onto cfg. Keys mirror the
// command line flags, e.g.:
//
//	type        = socks5
//	file        = proxies.txt
//	max_tasks   = 100
//	timeout     = 5
//	retries     = 1
//	retry_delay = 3
func LoadIni(cfg *model.Config, path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("load config file: %w", err)
	}
	if err := f.Section("").MapTo(cfg); err != nil {
		return fmt.Errorf("map config file: %w", err)
	}
	return nil
}

// Validate rejects configurations the run cannot start with. It is
// called once before the batch is built; nothing is checked partially.
func Validate(cfg model.Config) error {
	if _, err := model.ParseProtocol(cfg.ProxyType); err != nil {
		return err
	}
	if cfg.InputFile == "" {
		return errors.New("input file is required")
	}
	if cfg.MaxTasks <= 0 {
		return fmt.Errorf("max tasks must be positive, got %d", cfg.MaxTasks)
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", cfg.TimeoutSeconds)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", cfg.MaxRetries)
	}
	if cfg.RetryDelaySeconds < 0 {
		return fmt.Errorf("retry delay must not be negative, got %d", cfg.RetryDelaySeconds)
	}
	if _, _, err := net.SplitHostPort(cfg.ProbeTarget); err != nil {
		return fmt.Errorf("invalid probe target %q: %w", cfg.ProbeTarget, err)
	}
	switch cfg.OutputFormat {
	case "txt", "json", "csv":
	default:
		return fmt.Errorf("unsupported output format %q (want txt, json or csv)", cfg.OutputFormat)
	}
	return nil
}

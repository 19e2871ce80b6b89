package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Altaaaf/Proxy-Checker/internal/analytics"
	"github.com/Altaaaf/Proxy-Checker/internal/checker"
	"github.com/Altaaaf/Proxy-Checker/internal/config"
	"github.com/Altaaaf/Proxy-Checker/internal/dialer"
	"github.com/Altaaaf/Proxy-Checker/internal/logging"
	"github.com/Altaaaf/Proxy-Checker/internal/model"
	"github.com/Altaaaf/Proxy-Checker/internal/output"
	"github.com/Altaaaf/Proxy-Checker/internal/parser"
)

func main() {
	cfg := model.DefaultConfig()

	var configFile string
	flag.StringVar(&configFile, "config", "", "optional ini config file (flags take precedence)")
	flag.StringVar(&cfg.ProxyType, "type", cfg.ProxyType, "proxy type: http | https | socks4 | socks5")
	flag.StringVar(&cfg.InputFile, "file", cfg.InputFile, "path to file with proxy list")
	flag.StringVar(&cfg.OutputFile, "output", cfg.OutputFile, "optional path to write results")
	flag.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "output format: txt | json | csv")
	flag.IntVar(&cfg.MaxTasks, "max-tasks", cfg.MaxTasks, "maximum number of concurrent checks")
	flag.IntVar(&cfg.TimeoutSeconds, "timeout", cfg.TimeoutSeconds, "timeout in seconds for each attempt")
	flag.IntVar(&cfg.MaxRetries, "retries", cfg.MaxRetries, "extra attempts after a timed-out attempt")
	flag.IntVar(&cfg.RetryDelaySeconds, "retry-delay", cfg.RetryDelaySeconds, "seconds to wait before retrying a timed-out proxy")
	flag.StringVar(&cfg.ProbeTarget, "probe-target", cfg.ProbeTarget, "host:port the proxy must reach for the check to pass")
	flag.BoolVar(&cfg.ShowDead, "show-dead", cfg.ShowDead, "include dead proxies in the results table")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logs")
	flag.Parse()

	if configFile != "" {
		applyConfigFile(&cfg, configFile)
	}

	log := logging.NewLogger(cfg.Verbose)

	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	proto := cfg.Protocol()

	log.Info().
		Str("type", string(proto)).
		Int("timeout_seconds", cfg.TimeoutSeconds).
		Int("max_tasks", cfg.MaxTasks).
		Int("retries", cfg.MaxRetries).
		Str("probe_target", cfg.ProbeTarget).
		Msg("starting proxy check")

	records, pstats, err := parser.LoadFromFile(cfg.InputFile, proto)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.InputFile).Msg("failed to load proxies")
	}
	log.Info().
		Int("count", len(records)).
		Int("malformed", pstats.Malformed).
		Int("duplicates", pstats.Duplicates).
		Msg("proxies loaded")

	d, err := dialer.ForProtocol(proto, cfg.ProbeTarget)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dialer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results := checker.RunBatch(ctx, records, d, cfg, logging.WithComponent(log, "checker"))
	stats := analytics.Compute(results.Outcomes(), pstats, time.Since(start))

	log.Info().
		Int("alive", stats.AliveProxies).
		Int("total", stats.TotalProxies).
		Int64("total_ms", stats.TotalProcessingTimeMs).
		Msg("batch finished")

	output.PrintResultsTable(os.Stdout, results.Outcomes(), cfg.ShowDead)
	output.PrintSummary(os.Stdout, stats)

	if cfg.OutputFile != "" {
		if err := output.WriteFile(cfg.OutputFile, cfg.OutputFormat, results.Outcomes(), stats); err != nil {
			log.Error().Err(err).Str("path", cfg.OutputFile).Msg("failed to write output file")
		} else {
			log.Info().
				Str("path", cfg.OutputFile).
				Str("format", cfg.OutputFormat).
				Msg("results written")
		}
	}
}

// applyConfigFile fills in file-provided values for every flag the user
// did not set explicitly, keeping the precedence flags > file > defaults.
func applyConfigFile(cfg *model.Config, path string) {
	fileCfg := model.DefaultConfig()
	if err := config.LoadIni(&fileCfg, path); err != nil {
		logger := logging.NewLogger(false)
		logger.Fatal().Err(err).Str("path", path).Msg("failed to load config file")
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["type"] {
		cfg.ProxyType = fileCfg.ProxyType
	}
	if !set["file"] {
		cfg.InputFile = fileCfg.InputFile
	}
	if !set["output"] {
		cfg.OutputFile = fileCfg.OutputFile
	}
	if !set["format"] {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if !set["max-tasks"] {
		cfg.MaxTasks = fileCfg.MaxTasks
	}
	if !set["timeout"] {
		cfg.TimeoutSeconds = fileCfg.TimeoutSeconds
	}
	if !set["retries"] {
		cfg.MaxRetries = fileCfg.MaxRetries
	}
	if !set["retry-delay"] {
		cfg.RetryDelaySeconds = fileCfg.RetryDelaySeconds
	}
	if !set["probe-target"] {
		cfg.ProbeTarget = fileCfg.ProbeTarget
	}
	if !set["show-dead"] {
		cfg.ShowDead = fileCfg.ShowDead
	}
	if !set["verbose"] {
		cfg.Verbose = fileCfg.Verbose
	}
}

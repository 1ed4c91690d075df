package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alertops/opsgenie/internal/config"
	"github.com/alertops/opsgenie/internal/operator"
	"github.com/alertops/opsgenie/internal/runner"
	"github.com/alertops/opsgenie/internal/version"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "/config/tasks.yaml", "Path to task configuration")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	taskList := flag.String("task", "", "Comma-separated task ids to run (default: all)")
	dryRun := flag.Bool("dry-run", false, "Print the requests that would be sent and exit")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logLevelParsed, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logLevelParsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevelParsed)

	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("version", version.GetVersion()).
		Str("commit", version.GetCommit()).
		Logger()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("config_path", *configPath).
			Msg("Failed to load configuration")
	}

	logger.Info().
		Int("task_count", len(cfg.Tasks)).
		Int("connection_count", len(cfg.Connections)).
		Msg("Configuration loaded")

	tasks, err := runner.Build(cfg, operator.ConfigHookFactory(cfg, logger), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build tasks")
	}
	engine := runner.NewEngine(tasks, logger)

	only := splitTasks(*taskList)

	if *dryRun {
		plan, err := engine.Plan(only...)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to plan tasks")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan); err != nil {
			logger.Fatal().Err(err).Msg("Failed to write plan")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := engine.Run(ctx, only...); err != nil {
		logger.Error().Err(err).Msg("Run failed")
		stop()
		os.Exit(1)
	}
}

// splitTasks parses the -task flag
func splitTasks(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

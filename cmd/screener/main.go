// Command screener runs one pass of the value screen and writes the
// passlist artifacts. It is designed to be invoked by an external
// scheduler; a non-zero exit means no artifact was written.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"valuescreen/pkg/core/config"
	"valuescreen/pkg/core/pipeline"
	"valuescreen/pkg/core/provider"
	"valuescreen/pkg/core/reconcile"
	"valuescreen/pkg/core/report"
)

func main() {
	configPath := flag.String("config", "", "path to the screen config YAML (optional)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	aliases := reconcile.DefaultTable()
	if cfg.AliasFile != "" {
		aliases, err = reconcile.LoadTable(cfg.AliasFile, aliases)
		if err != nil {
			logger.Fatal("alias table error", zap.Error(err))
		}
		logger.Info("alias overlay loaded",
			zap.String("file", cfg.AliasFile),
			zap.String("version", aliases.Version))
	}

	client := provider.NewClient(cfg.BaseURL, cfg.APIKey, logger)
	client.SetMaxPages(cfg.MaxPages)

	orch := pipeline.New(client, cfg, aliases, logger)
	rep, err := orch.Run(context.Background())
	if err != nil {
		// Fatal errors abort before any artifact is written; a
		// mis-schema'd report is worse than no report.
		logger.Fatal("screen run failed", zap.Error(err))
	}

	if err := report.WriteJSON(cfg.OutputJSON, rep); err != nil {
		logger.Fatal("write report", zap.Error(err))
	}
	if err := report.WriteCSV(cfg.OutputCSV, rep); err != nil {
		logger.Fatal("write report", zap.Error(err))
	}

	logger.Info("passlist written",
		zap.String("json", cfg.OutputJSON),
		zap.String("csv", cfg.OutputCSV),
		zap.Int("pass", len(rep.Pass)),
		zap.Float64("skipped", rep.Stats["skipped"]))
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if os.Getenv("LOG_LEVEL") == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return logger
}

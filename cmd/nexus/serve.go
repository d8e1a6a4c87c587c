package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nexustrader/nexus/internal/advisory/factory"
	"github.com/nexustrader/nexus/internal/api"
	"github.com/nexustrader/nexus/internal/audit"
	"github.com/nexustrader/nexus/internal/config"
	"github.com/nexustrader/nexus/internal/lifecycle"
	"github.com/nexustrader/nexus/internal/logger"
	"github.com/nexustrader/nexus/internal/metrics"
	"github.com/nexustrader/nexus/internal/notifier"
	"github.com/nexustrader/nexus/internal/notifier/webhook"
	"github.com/nexustrader/nexus/internal/pipeline"
	"github.com/nexustrader/nexus/internal/ratelimit"
	"github.com/nexustrader/nexus/internal/storage/archive"
	signalstore "github.com/nexustrader/nexus/internal/storage/signal"
	"github.com/nexustrader/nexus/internal/validator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the NEXUS server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("starting NEXUS server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	store := signalstore.NewMemoryStore(cfg.Storage.MaxSignals)
	v := validator.New(log)

	engine := lifecycle.NewEngine(store, v, cfg.Pipeline.RiskThreshold, log)

	ingestLimiter := ratelimit.New(cfg.Pipeline.IngestRate.Window, cfg.Pipeline.IngestRate.Quota)
	advisoryLimiter := ratelimit.New(cfg.Pipeline.AdvisoryRate.Window, cfg.Pipeline.AdvisoryRate.Quota)

	p := pipeline.New(engine, v, ingestLimiter, advisoryLimiter, log)

	deps := api.Dependencies{Pipeline: p}

	if cfg.Advisory.Provider != "" {
		analyzer, err := factory.New(cfg.Advisory)
		if err != nil {
			return fmt.Errorf("creating advisory provider: %w", err)
		}
		p.SetAnalyzer(analyzer)
		log.Info("advisory provider configured",
			zap.String("provider", cfg.Advisory.Provider))
	} else {
		log.Warn("no advisory provider configured, analysis disabled")
	}

	if cfg.Audit.Enabled {
		archiveStore, err := buildArchive(cfg.Audit.Archive)
		if err != nil {
			return fmt.Errorf("creating audit archive: %w", err)
		}
		auditor := audit.NewRecorder(cfg.Audit.MaxEntries, archiveStore, log)
		engine.SetAuditor(auditor)
		p.SetAuditor(auditor)
		deps.Audit = auditor
	}

	if reg, err := buildNotifiers(cfg.Notifiers); err != nil {
		return fmt.Errorf("creating notifiers: %w", err)
	} else if reg != nil {
		engine.SetNotifiers(reg)
	}

	if cfg.Metrics.Enabled {
		m := metrics.NewRegistry()
		engine.SetMetrics(m)
		p.SetMetrics(m)
		deps.Metrics = m
	}

	server := api.NewServer(cfg, deps, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down NEXUS server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

func buildArchive(cfg config.ArchiveConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "localfs":
		return archive.NewLocalFS(cfg.Path)
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}

func buildNotifiers(cfgs map[string]config.NotifierConfig) (*notifier.Registry, error) {
	reg := notifier.NewRegistry()
	registered := 0

	for name, nc := range cfgs {
		if !nc.Enabled {
			continue
		}
		switch name {
		case "webhook":
			if err := reg.Register(webhook.New(nc.URL, nc.Headers)); err != nil {
				return nil, err
			}
			registered++
		default:
			return nil, fmt.Errorf("unknown notifier: %s", name)
		}
	}

	if registered == 0 {
		return nil, nil
	}
	return reg, nil
}

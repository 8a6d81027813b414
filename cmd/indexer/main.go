package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer/report"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/resilience"
)

const usage = "usage: indexer <input-folder> <output-folder>"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	if len(args) != 2 {
		err := apperrors.Newf(apperrors.ErrInvalidInput, "", "expected 2 arguments, got %d", len(args))
		fmt.Fprintf(stderr, "%v\n%s\n", err, usage)
		return apperrors.ExitCode(err)
	}
	inputDir, outputDir := args[0], args[1]

	cfg, err := config.Load(os.Getenv(config.EnvConfigPath))
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return apperrors.ExitFailure
	}
	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(stderr, "failed to set up logging: %v\n", err)
		return apperrors.ExitFailure
	}

	stopwords, err := tokenizer.LoadStopwords(cfg.Indexer.StopwordsPath)
	if err != nil {
		slog.Error("failed to load stopwords", "path", cfg.Indexer.StopwordsPath, "error", err)
		return apperrors.ExitFailure
	}
	slog.Info("stopwords loaded", "path", cfg.Indexer.StopwordsPath, "count", stopwords.Len())

	m := metrics.New()
	if cfg.Metrics.Enabled {
		srv, err := m.Serve(cfg.Metrics.Port)
		if err != nil {
			slog.Error("metrics server disabled", "error", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					slog.Error("metrics server shutdown failed", "error", err)
				}
			}()
		}
	}
	if cfg.Metrics.Textfile != "" {
		defer func() {
			if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				slog.Error("failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := indexer.NewEngine(cfg.Indexer, stopwords,
		indexer.WithMetrics(m),
		indexer.WithSpanLogging(cfg.Tracing.Enabled),
	)
	if err != nil {
		slog.Error("failed to create indexing engine", "error", err)
		return apperrors.ExitCode(err)
	}

	summary, err := engine.Run(ctx, inputDir, outputDir)
	if err != nil {
		if path := apperrors.PathOf(err); path != "" {
			fmt.Fprintf(stderr, "indexer: %v (%s)\n", err, path)
		} else {
			fmt.Fprintf(stderr, "indexer: %v\n", err)
		}
		return apperrors.ExitCode(err)
	}

	reporters, closeAll := buildReporters(ctx, cfg)
	defer closeAll()
	if err := report.All(ctx, slog.Default(), *summary, reporters...); err != nil {
		slog.Warn("some run reports were not delivered", "error", err)
	}
	return apperrors.ExitOK
}

// buildReporters connects the enabled sinks. A sink that cannot be reached is
// skipped with a warning.
func buildReporters(ctx context.Context, cfg *config.Config) ([]report.Reporter, func()) {
	retry := resilience.FromConfig(cfg.Retry)
	var reporters []report.Reporter
	var closers []func() error

	if cfg.Kafka.Enabled {
		checker := health.NewChecker()
		dialer := &kafkago.Dialer{Timeout: 5 * time.Second}
		for _, broker := range cfg.Kafka.Brokers {
			checker.Register("kafka:"+broker, health.KafkaBroker(dialer, broker))
		}
		if status := checker.Run(ctx).Status; status == health.StatusDown {
			slog.Warn("completion events disabled, no kafka broker reachable", "brokers", cfg.Kafka.Brokers)
		} else {
			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
			closers = append(closers, producer.Close)
			reporters = append(reporters, report.NewPublisher(producer, retry))
		}
	}

	if cfg.Postgres.Enabled {
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("run ledger disabled", "error", err)
		} else {
			closers = append(closers, db.Close)
			ledger := report.NewLedger(db.DB, retry)
			if err := ledger.EnsureSchema(ctx); err != nil {
				slog.Warn("run ledger disabled", "error", err)
			} else {
				reporters = append(reporters, ledger)
			}
		}
	}

	return reporters, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Error("failed to close reporter", "error", err)
			}
		}
	}
}

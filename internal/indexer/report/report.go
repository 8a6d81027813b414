// Package report forwards the summary of a finished indexing run to the
// optional sinks: a Kafka completion event and a PostgreSQL run ledger.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer"
)

// Reporter delivers a run summary somewhere outside the process.
type Reporter interface {
	Name() string
	Report(ctx context.Context, summary indexer.Summary) error
}

// All runs every reporter in order. A failing reporter does not stop the
// others; the failures are logged and returned joined.
func All(ctx context.Context, log *slog.Logger, summary indexer.Summary, reporters ...Reporter) error {
	var errs []error
	for _, r := range reporters {
		if err := r.Report(ctx, summary); err != nil {
			log.Warn("run report failed",
				"reporter", r.Name(),
				"run_id", summary.RunID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		log.Info("run reported", "reporter", r.Name(), "run_id", summary.RunID)
	}
	return errors.Join(errs...)
}

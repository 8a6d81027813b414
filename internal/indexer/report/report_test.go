package report

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/resilience"
)

var fastRetry = resilience.RetryConfig{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
}

func sampleSummary() indexer.Summary {
	return indexer.Summary{
		RunID:          "run-42",
		InputDir:       "corpus",
		OutputDir:      "out",
		Documents:      2,
		Terms:          3,
		Postings:       4,
		DictionaryPath: "out/DictionaryFile.txt",
		PostingsPath:   "out/PostingFile.txt",
		StartedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:       1500 * time.Millisecond,
	}
}

type flakyWriter struct {
	failures int
	messages []kafkago.Message
}

func (w *flakyWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.failures > 0 {
		w.failures--
		return errors.New("leader not available")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *flakyWriter) Close() error { return nil }

type execCall struct {
	query string
	args  []any
}

type fakeExecer struct {
	failures int
	calls    []execCall
}

func (e *fakeExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	if e.failures > 0 {
		e.failures--
		return nil, errors.New("connection reset")
	}
	e.calls = append(e.calls, execCall{query: query, args: args})
	return driver.RowsAffected(1), nil
}

type stubReporter struct {
	name string
	err  error
	seen []string
}

func (s *stubReporter) Name() string { return s.name }

func (s *stubReporter) Report(_ context.Context, summary indexer.Summary) error {
	s.seen = append(s.seen, summary.RunID)
	return s.err
}

func TestPublisherSendsCompletionEvent(t *testing.T) {
	w := &flakyWriter{failures: 1}
	pub := NewPublisher(kafka.NewProducerWithWriter(w, "index.complete"), fastRetry)

	require.NoError(t, pub.Report(context.Background(), sampleSummary()))
	require.Len(t, w.messages, 1)
	assert.Equal(t, "run-42", string(w.messages[0].Key))

	var got CompletionEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &got))
	assert.Equal(t, "index.complete", got.Type)
	assert.Equal(t, 3, got.Summary.Terms)
	assert.Equal(t, 4, got.Summary.Postings)
	assert.Equal(t, "out/PostingFile.txt", got.Summary.PostingsPath)
}

func TestPublisherGivesUp(t *testing.T) {
	w := &flakyWriter{failures: 10}
	pub := NewPublisher(kafka.NewProducerWithWriter(w, "index.complete"), fastRetry)

	err := pub.Report(context.Background(), sampleSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
	assert.Empty(t, w.messages)
}

func TestLedgerInsertsRun(t *testing.T) {
	db := &fakeExecer{failures: 1}
	ledger := NewLedger(db, fastRetry)

	require.NoError(t, ledger.Report(context.Background(), sampleSummary()))
	require.Len(t, db.calls, 1)
	call := db.calls[0]
	assert.Contains(t, call.query, "INSERT INTO index_runs")
	assert.Contains(t, call.query, "ON CONFLICT (run_id) DO NOTHING")
	require.Len(t, call.args, 9)
	assert.Equal(t, "run-42", call.args[0])
	assert.Equal(t, 2, call.args[3])
	assert.Equal(t, int64(1500), call.args[6])
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 1, 500_000_000, time.UTC), call.args[8])

	var stored indexer.Summary
	require.NoError(t, json.Unmarshal(call.args[7].([]byte), &stored))
	assert.Equal(t, sampleSummary(), stored)
}

func TestLedgerEnsureSchema(t *testing.T) {
	db := &fakeExecer{}
	require.NoError(t, NewLedger(db, fastRetry).EnsureSchema(context.Background()))
	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].query, "CREATE TABLE IF NOT EXISTS index_runs")
}

func TestLedgerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	db := &fakeExecer{failures: 10}

	err := NewLedger(db, fastRetry).Report(ctx, sampleSummary())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllContinuesPastFailures(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	broken := &stubReporter{name: "broken", err: errors.New("boom")}
	healthy := &stubReporter{name: "healthy"}

	err := All(context.Background(), log, sampleSummary(), broken, healthy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: boom")
	assert.Equal(t, []string{"run-42"}, broken.seen)
	assert.Equal(t, []string{"run-42"}, healthy.seen)
	assert.Contains(t, buf.String(), "run report failed")
	assert.Contains(t, buf.String(), "reporter=healthy")
}

func TestAllWithoutReporters(t *testing.T) {
	assert.NoError(t, All(context.Background(), slog.Default(), sampleSummary()))
}

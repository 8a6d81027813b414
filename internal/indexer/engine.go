package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer/extract"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/tracing"
)

// Pipeline stage names, used for spans and the stage duration histogram.
const (
	StageNormalize  = "normalize"
	StageVocabulary = "vocabulary"
	StageBuild      = "build_index"
	StageWeigh      = "weigh"
	StageSerialize  = "serialize"
	StageVerify     = "verify"
)

// Summary describes a completed run.
type Summary struct {
	RunID          string           `json:"run_id"`
	InputDir       string           `json:"input_dir"`
	OutputDir      string           `json:"output_dir"`
	Documents      int              `json:"documents"`
	EmptyDocuments int              `json:"empty_documents"`
	DecodeReplaced int              `json:"decode_replaced"`
	Terms          int              `json:"terms"`
	Postings       int              `json:"postings"`
	DictionaryPath string           `json:"dictionary_path"`
	PostingsPath   string           `json:"postings_path"`
	StartedAt      time.Time        `json:"started_at"`
	Duration       time.Duration    `json:"duration_ns"`
	Stages         []tracing.Timing `json:"stages,omitempty"`
}

// Engine runs the indexing pipeline: normalize every document in parallel,
// then build the vocabulary and inverted index, weigh the postings and write
// the dictionary and postings files.
type Engine struct {
	cfg       config.IndexerConfig
	stopwords tokenizer.Stopwords
	extractor extract.Extractor
	metrics   *metrics.Metrics
	logSpans  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records run metrics on m instead of a private set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSpanLogging logs the stage span tree when a run finishes.
func WithSpanLogging(enabled bool) Option {
	return func(e *Engine) { e.logSpans = enabled }
}

func NewEngine(cfg config.IndexerConfig, stopwords tokenizer.Stopwords, opts ...Option) (*Engine, error) {
	ex, err := extract.New(cfg.Extractor)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "", err.Error())
	}
	if cfg.Workers <= 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "", "workers must be positive, got %d", cfg.Workers)
	}
	e := &Engine{
		cfg:       cfg,
		stopwords: stopwords,
		extractor: ex,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.New()
	}
	return e, nil
}

// Run indexes every document of inputDir and writes the artifacts into
// outputDir.
func (e *Engine) Run(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	started := time.Now()
	runID := fmt.Sprintf("run-%d", started.UnixNano())
	ctx = logger.WithRunID(ctx, runID)
	ctx, root := tracing.StartSpan(ctx, "index_run", runID)
	log := logger.FromContext(ctx).With("component", "indexer")

	summary, err := e.run(ctx, log, inputDir, outputDir)
	root.End()
	if e.logSpans {
		root.Log(log)
	}
	if err != nil {
		e.metrics.RunsTotal.WithLabelValues("failure").Inc()
		log.Error("indexing run failed", "error", err)
		return nil, err
	}
	summary.RunID = runID
	summary.StartedAt = started
	summary.Stages = root.Timings()
	summary.Duration = time.Since(started)
	e.metrics.RunsTotal.WithLabelValues("success").Inc()
	log.Info("indexing run complete",
		"documents", summary.Documents,
		"terms", summary.Terms,
		"postings", summary.Postings,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (e *Engine) run(ctx context.Context, log *slog.Logger, inputDir, outputDir string) (*Summary, error) {
	files, err := corpus.List(inputDir)
	if err != nil {
		return nil, err
	}
	log.Info("input folder scanned", "folder", inputDir, "files", len(files))

	if err := prepareOutput(log, outputDir); err != nil {
		return nil, err
	}

	summary := &Summary{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Documents: len(files),
	}

	var docs []*index.Document
	err = e.stage(ctx, StageNormalize, func(ctx context.Context) error {
		var empty, replaced int
		docs, empty, replaced, err = e.normalize(ctx, log, files)
		summary.EmptyDocuments = empty
		summary.DecodeReplaced = replaced
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info("tokens generated", "documents", len(docs), "empty_documents", summary.EmptyDocuments)

	var vocab map[string]struct{}
	if err := e.stage(ctx, StageVocabulary, func(ctx context.Context) error {
		vocab = index.Vocabulary(docs)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("building vocabulary: %w", err)
	}
	e.metrics.VocabularySize.Set(float64(len(vocab)))
	log.Info("vocabulary built", "unique_terms", len(vocab))

	var idx *index.InvertedIndex
	err = e.stage(ctx, StageBuild, func(ctx context.Context) error {
		idx, err = index.Build(vocab, docs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("building inverted index: %w", err)
	}

	if err := e.stage(ctx, StageWeigh, func(ctx context.Context) error {
		return idx.Weigh()
	}); err != nil {
		return nil, fmt.Errorf("weighting postings: %w", err)
	}
	log.Info("inverted index generated", "terms", idx.Terms(), "postings", idx.Size())

	writer := segment.NewWriter(outputDir, e.cfg.DictionaryFile, e.cfg.PostingsFile)
	var stats segment.Stats
	err = e.stage(ctx, StageSerialize, func(ctx context.Context) error {
		stats, err = writer.Write(idx.Snapshot(), corpus.Filenames(files))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("serializing index: %w", err)
	}
	paths := writer.Paths()
	log.Info("dictionary file created", "path", paths.Dictionary, "terms", stats.Terms)
	log.Info("postings file created", "path", paths.Postings, "postings", stats.Postings)
	e.metrics.PostingsTotal.Set(float64(stats.Postings))

	if e.cfg.Verify {
		if err := e.stage(ctx, StageVerify, func(ctx context.Context) error {
			return verify(paths, stats)
		}); err != nil {
			return nil, err
		}
		log.Info("artifacts verified")
	}

	summary.Terms = stats.Terms
	summary.Postings = stats.Postings
	summary.DictionaryPath = paths.Dictionary
	summary.PostingsPath = paths.Postings
	return summary, nil
}

// normalize extracts and tokenizes every file on a bounded worker pool. Each
// task owns docs[file.ID]; nothing else is shared.
func (e *Engine) normalize(ctx context.Context, log *slog.Logger, files []corpus.File) ([]*index.Document, int, int, error) {
	docs := make([]*index.Document, len(files))
	var empty, replaced atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for _, file := range files {
		file := file
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file.Path)
			if err != nil {
				return fmt.Errorf("reading document %s: %w", file.Path, err)
			}
			text, wasReplaced, err := e.extractor.Extract(data)
			if err != nil {
				log.Warn("text extraction failed, indexing as empty",
					"file", file.Name,
					"error", err,
				)
				text = ""
			}
			if wasReplaced {
				replaced.Add(1)
				log.Debug("invalid bytes replaced",
					"file", file.Name,
					"error", apperrors.ErrDecode,
				)
			}
			doc := index.NewDocument(file.ID, file.Name, tokenizer.Count(text, e.stopwords))
			outcome := metrics.OutcomeOK
			switch {
			case doc.Empty():
				outcome = metrics.OutcomeEmpty
				empty.Add(1)
				log.Info("document has no indexable tokens",
					"file", file.Name,
					"error", apperrors.ErrEmptyDocument,
				)
			case wasReplaced:
				outcome = metrics.OutcomeDecodeReplace
			}
			e.metrics.DocumentsProcessed.WithLabelValues(outcome).Inc()
			e.metrics.TokensAccepted.Add(float64(doc.Total))
			docs[file.ID] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, 0, err
	}
	return docs, int(empty.Load()), int(replaced.Load()), nil
}

func (e *Engine) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracing.StartChildSpan(ctx, name)
	err := fn(ctx)
	elapsed := span.End()
	if err != nil {
		span.SetAttr("error", err.Error())
	}
	e.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	return err
}

func prepareOutput(log *slog.Logger, dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		log.Info("output folder already exists", "folder", dir)
		return nil
	case err == nil:
		return apperrors.New(apperrors.ErrOutputWrite, dir, "output path exists and is not a folder")
	case !os.IsNotExist(err):
		return apperrors.Wrap(apperrors.ErrOutputWrite, dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(apperrors.ErrOutputWrite, dir, err)
	}
	log.Info("output folder created", "folder", dir)
	return nil
}

func verify(paths segment.Paths, stats segment.Stats) error {
	r, err := segment.OpenReader(paths)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidState, paths.Dictionary, err)
	}
	if err := r.Verify(); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidState, paths.Dictionary, err)
	}
	if r.Terms() != stats.Terms || r.Postings() != stats.Postings {
		return apperrors.Newf(apperrors.ErrInvalidState, paths.Dictionary,
			"read back %d terms and %d postings, wrote %d and %d",
			r.Terms(), r.Postings(), stats.Terms, stats.Postings)
	}
	return nil
}

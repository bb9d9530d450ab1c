// Package convert answers conversation turns by retrieving responses from a
// precomputed index: rank, filter, calibrate, sample, format.
package convert

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ruthenian8/dream/internal/calibration"
	"github.com/ruthenian8/dream/internal/encoder"
	"github.com/ruthenian8/dream/internal/formatting"
	"github.com/ruthenian8/dream/internal/observability"
	"github.com/ruthenian8/dream/internal/ranking"
	"github.com/ruthenian8/dream/internal/safety"
	"github.com/ruthenian8/dream/internal/sampling"
	"github.com/ruthenian8/dream/internal/textsim"
	"github.com/ruthenian8/dream/models"
	"github.com/ruthenian8/dream/services"
)

// Service runs the retrieval pipeline over a fixed resource bundle.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	resources  *models.Resources
	encoder    encoder.Encoder
	ranker     *ranking.Ranker
	guard      *safety.Guard
	filter     *safety.Filter
	calibrator *calibration.Calibrator
	sampler    *sampling.Sampler
	formatter  *formatting.Formatter
	source     sampling.Source
	cfg        Config
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewService wires the pipeline stages. A nil source draws fresh random
// streams; a nil splitter selects formatting.RuleSplitter.
func NewService(
	resources *models.Resources,
	enc encoder.Encoder,
	cfg Config,
	source sampling.Source,
	splitter formatting.SentenceSplitter,
	logger *zap.Logger,
) (*Service, error) {
	if resources == nil {
		return nil, services.ErrResourcesNotLoaded
	}
	if err := resources.Validate(); err != nil {
		return nil, services.WrapInternal("invalid resources", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.EncoderBatchSize <= 0 {
		cfg.EncoderBatchSize = DefaultConfig().EncoderBatchSize
	}
	if source == nil {
		source = sampling.RandomSource()
	}

	ranker, err := ranking.NewRanker(resources.Index.Vectors, cfg.TopK)
	if err != nil {
		return nil, services.WrapInternal("failed to build ranker", err)
	}

	return &Service{
		resources:  resources,
		encoder:    enc,
		ranker:     ranker,
		guard:      safety.NewGuard(cfg.UnanswerablePhrases, cfg.GuardThreshold),
		filter:     safety.NewFilter(resources.Banned, cfg.Filter),
		calibrator: calibration.New(resources.Confidence, nil, cfg.DeratingFactor),
		sampler:    sampling.New(cfg.NumSample, cfg.Temperature),
		formatter:  formatting.New(splitter),
		source:     source,
		cfg:        cfg,
		tracer:     observability.Tracer(),
		logger:     logger,
	}, nil
}

// batchStats is updated concurrently by the workers of one batch
type batchStats struct {
	shortCircuited atomic.Int64
	failed         atomic.Int64
	survivors      atomic.Int64
	fallbacks      atomic.Int64
}

// Convert answers every item of the batch. Per-item failures yield an empty
// result; only invalid input or a cancelled context fail the whole batch.
func (s *Service) Convert(ctx context.Context, req *Request) ([]Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.New().String()
	ctx, span := s.tracer.Start(ctx, "convert.batch", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("batch_size", len(req.Items)),
	))
	defer span.End()

	logger := s.logger.With(zap.String("run_id", runID))
	stats := &batchStats{}
	results := make([]Result, len(req.Items))

	// Guard before encoding so short-circuited items never reach the encoder.
	pending := make([]int, 0, len(req.Items))
	for i, item := range req.Items {
		if s.guard.IsUnanswerable(item.History) {
			stats.shortCircuited.Add(1)
			logger.Debug("Unanswerable context", zap.Int("item", i))
			continue
		}
		pending = append(pending, i)
	}

	vectors := s.encodeAll(ctx, req.Items, pending, stats, logger)

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for _, i := range pending {
		if vectors[i] == nil {
			continue
		}
		g.Go(func() error {
			result, err := s.respond(ctx, req.Items[i], vectors[i], req.Options, s.source(i), stats, logger.With(zap.Int("item", i)))
			if err != nil {
				stats.failed.Add(1)
				logger.Warn("Item failed, returning empty result", zap.Int("item", i), zap.Error(err))
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "cancelled")
		return nil, services.NewDomainError(services.ErrorTypeUnavailable, "request cancelled", err)
	}

	span.SetAttributes(
		attribute.Int64("short_circuited", stats.shortCircuited.Load()),
		attribute.Int64("failed", stats.failed.Load()),
	)
	logger.Info("Converted batch",
		zap.Int("batch_size", len(req.Items)),
		zap.Int64("short_circuited", stats.shortCircuited.Load()),
		zap.Int64("failed", stats.failed.Load()),
		zap.Int64("survivors", stats.survivors.Load()),
		zap.Int64("sampler_fallbacks", stats.fallbacks.Load()),
		zap.Duration("exec_time", time.Since(start)),
	)
	return results, nil
}

// encodeAll encodes the pending items in chunks of EncoderBatchSize. Items
// of a failed chunk are left without a vector.
func (s *Service) encodeAll(ctx context.Context, items []models.BatchItem, pending []int, stats *batchStats, logger *zap.Logger) [][]float32 {
	vectors := make([][]float32, len(items))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for lo := 0; lo < len(pending); lo += s.cfg.EncoderBatchSize {
		chunk := pending[lo:min(lo+s.cfg.EncoderBatchSize, len(pending))]
		g.Go(func() error {
			ctx, span := s.tracer.Start(ctx, "convert.encode", trace.WithAttributes(attribute.Int("size", len(chunk))))
			defer span.End()

			histories := make([][]string, len(chunk))
			for j, i := range chunk {
				histories[j] = items[i].History
			}

			encoded, err := s.encoder.Encode(ctx, histories)
			if err == nil && len(encoded) != len(chunk) {
				err = fmt.Errorf("encoder returned %d vectors for %d histories", len(encoded), len(chunk))
			}
			if err != nil {
				err = services.WrapExternal(services.ErrEncoderFailed.Message, err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "encode failed")
				stats.failed.Add(int64(len(chunk)))
				logger.Error("Encoding failed, returning empty results for chunk",
					zap.Ints("items", chunk),
					zap.Error(err),
				)
				return nil
			}

			for j, i := range chunk {
				vectors[i] = encoded[j]
			}
			return nil
		})
	}
	_ = g.Wait()
	return vectors
}

// respond runs ranking through formatting for a single encoded item.
func (s *Service) respond(
	ctx context.Context,
	item models.BatchItem,
	vector []float32,
	opts Options,
	rng sampling.Rand,
	stats *batchStats,
	logger *zap.Logger,
) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = services.WrapInternal("pipeline panic", fmt.Errorf("%v", r))
		}
	}()

	_, span := s.tracer.Start(ctx, "convert.item")
	defer span.End()

	candidates, err := s.rankAndFilter(item, vector, opts, logger)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	stats.survivors.Add(int64(len(candidates)))
	span.AddEvent("filtered", trace.WithAttributes(attribute.Int("survivors", len(candidates))))
	if len(candidates) == 0 {
		return Result{}, nil
	}

	confidences := make([]float64, len(candidates))
	for i, c := range candidates {
		confidences[i] = c.Confidence
	}

	picked, sampleErr := s.sampler.Choose(rng, confidences)
	if sampleErr != nil {
		stats.fallbacks.Add(1)
		logger.Warn("Sampling failed, falling back to top candidate", zap.Error(sampleErr))
	}
	span.AddEvent("sampled", trace.WithAttributes(
		attribute.Int("picked", len(picked)),
		attribute.Bool("fallback", sampleErr != nil),
	))

	result = Result{
		Answers:     make([]string, 0, len(picked)),
		Confidences: make([]float64, 0, len(picked)),
	}
	for _, p := range picked {
		result.Answers = append(result.Answers, s.formatter.Format(candidates[p].Text))
		result.Confidences = append(result.Confidences, candidates[p].Confidence)
	}
	span.AddEvent("formatted")
	logger.Debug("Selected answers",
		zap.Strings("answers", result.Answers),
		zap.Float64s("confidences", result.Confidences),
	)
	return result, nil
}

// rankAndFilter returns the calibrated top-K candidates that pass the filter,
// in rank order.
func (s *Service) rankAndFilter(item models.BatchItem, vector []float32, opts Options, logger *zap.Logger) ([]Candidate, error) {
	top, err := s.ranker.TopK(vector)
	if err != nil {
		return nil, services.WrapInternal("ranking failed", err)
	}

	ownTurns := safety.OwnPriorTurns(item.History)
	calOpts := opts.calibration(item.Topics.AnyActive(s.cfg.RestrictedTopics))

	candidates := make([]Candidate, 0, len(top))
	for _, scored := range top {
		text := s.resources.Index.Texts[scored.Index]
		if reason := s.filter.Check(text, ownTurns); reason != safety.RejectNone {
			logger.Debug("Candidate rejected",
				zap.Int("index", scored.Index),
				zap.String("reason", string(reason)),
			)
			continue
		}
		candidates = append(candidates, Candidate{
			Index:      scored.Index,
			Text:       textsim.ClearText(text),
			RawScore:   scored.Score,
			Confidence: s.calibrator.Calibrate(scored.Score, calOpts),
		})
	}
	return candidates, nil
}

// Stats describes the resources and settings the service runs with
func (s *Service) Stats() Stats {
	return Stats{
		IndexSize:        s.resources.Index.Len(),
		Dimension:        s.resources.Index.Dimension(),
		IndexFingerprint: s.resources.Index.Fingerprint(),
		ConfidenceSample: len(s.resources.Confidence),
		BannedContent:    s.resources.Banned.Sizes(),
		NumSample:        s.sampler.Size,
		Temperature:      s.sampler.Temperature,
		TopK:             s.cfg.TopK,
		Workers:          s.cfg.Workers,
	}
}

func validateRequest(req *Request) error {
	if req == nil || len(req.Items) == 0 {
		return services.ErrEmptyBatch
	}
	for i, item := range req.Items {
		if len(item.History) == 0 {
			return services.NewDomainError(services.ErrorTypeValidation, services.ErrEmptyHistory.Message, nil).
				WithDetail("index", i)
		}
	}
	return nil
}

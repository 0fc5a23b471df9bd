// Package ensemble fuses model scorers, keyword matchers and patient history
// into a ranked disease prediction.
package ensemble

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"disease-detector/internal/catalog"
	"disease-detector/internal/matcher"
	"disease-detector/internal/scorer"
	"disease-detector/internal/textproc"
)

// DefaultHistoryTimeout bounds the patient history lookup.
const DefaultHistoryTimeout = time.Second

// HistorySource returns the diseases previously diagnosed for a patient.
// The engine only reads history; recording new results is up to the caller.
type HistorySource interface {
	PriorDiseases(ctx context.Context, patientID string) ([]string, error)
}

// Query 预测请求
type Query struct {
	Text      string
	PatientID string
}

// Prediction is the engine output for one query.
type Prediction struct {
	Results           []Result          `json:"predictions"`
	ModelsUsed        []string          `json:"models_used"`
	ModelsUnavailable map[string]string `json:"models_unavailable,omitempty"`
	HistoryApplied    []string          `json:"history_applied,omitempty"`
	NoViable          bool              `json:"-"`
}

// Top returns the best result, if any.
func (p *Prediction) Top() (Result, bool) {
	if p == nil || len(p.Results) == 0 {
		return Result{}, false
	}
	return p.Results[0], true
}

// Options 引擎参数
type Options struct {
	Weights        Weights
	HistoryBoost   float64
	TopK           int
	Threshold      float64
	HistoryTimeout time.Duration
}

// DefaultOptions returns the production constants for the given model
// weights.
func DefaultOptions(models map[string]float64) Options {
	return Options{
		Weights:        Weights{Models: models, Methods: DefaultMethodWeights()},
		HistoryBoost:   DefaultHistoryBoost,
		TopK:           DefaultTopK,
		Threshold:      DefaultViabilityThreshold,
		HistoryTimeout: DefaultHistoryTimeout,
	}
}

// Engine 多源集成预测引擎
type Engine struct {
	cat       *catalog.Catalog
	extractor *textproc.Extractor
	pool      *scorer.Pool
	simple    matcher.Matcher
	enhanced  matcher.Matcher
	combiner  *Combiner
	booster   HistoryBooster
	selector  Selector
	history   HistorySource

	historyTimeout time.Duration
	logger         *zap.Logger
}

// NewEngine wires the prediction pipeline. history may be nil. Every pool
// instance must have a model weight.
func NewEngine(cat *catalog.Catalog, pool *scorer.Pool, history HistorySource, opts Options, logger *zap.Logger) (*Engine, error) {
	if cat == nil || pool == nil {
		return nil, fmt.Errorf("ensemble: catalog and model pool are required")
	}
	combiner, err := NewCombiner(opts.Weights)
	if err != nil {
		return nil, err
	}
	for _, inst := range pool.Instances() {
		if _, ok := opts.Weights.Models[inst.Name()]; !ok {
			return nil, fmt.Errorf("ensemble: model %q has no weight", inst.Name())
		}
	}
	booster, err := NewHistoryBooster(opts.HistoryBoost)
	if err != nil {
		return nil, err
	}
	selector, err := NewSelector(opts.TopK, opts.Threshold)
	if err != nil {
		return nil, err
	}
	if opts.HistoryTimeout <= 0 {
		opts.HistoryTimeout = DefaultHistoryTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		cat:            cat,
		extractor:      textproc.NewExtractor(),
		pool:           pool,
		simple:         matcher.SimpleMatcher{},
		enhanced:       matcher.EnhancedMatcher{},
		combiner:       combiner,
		booster:        booster,
		selector:       selector,
		history:        history,
		historyTimeout: opts.HistoryTimeout,
		logger:         logger,
	}, nil
}

// Catalog returns the catalog the engine ranks against.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Pool returns the model pool.
func (e *Engine) Pool() *scorer.Pool { return e.pool }

// Predict validates the query, scores it with every model and matcher in
// parallel, fuses the scores, applies the history boost and selects the top
// results. It returns *textproc.ValidationError before any model runs for
// unusable text and *AllModelsUnavailableError when no model answered.
func (e *Engine) Predict(ctx context.Context, q Query) (*Prediction, error) {
	text := strings.TrimSpace(q.Text)
	kw, err := e.extractor.Extract(text)
	if err != nil {
		return nil, err
	}

	instances := e.pool.Instances()
	outcomes := make([]scorer.Outcome, len(instances))
	var simple, enhanced catalog.ScoreVector
	var prior []string

	var g errgroup.Group
	for i, inst := range instances {
		g.Go(func() error {
			outcomes[i] = inst.Score(ctx, text, e.cat)
			return nil
		})
	}
	g.Go(func() error {
		simple = e.simple.Score(kw, e.cat)
		return nil
	})
	g.Go(func() error {
		enhanced = e.enhanced.Score(kw, e.cat)
		return nil
	})
	if q.PatientID != "" && e.history != nil {
		g.Go(func() error {
			prior = e.priorDiseases(ctx, q.PatientID)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pred := &Prediction{ModelsUsed: []string{}}
	for _, o := range outcomes {
		if o.OK() {
			pred.ModelsUsed = append(pred.ModelsUsed, o.Model)
			continue
		}
		if pred.ModelsUnavailable == nil {
			pred.ModelsUnavailable = make(map[string]string)
		}
		pred.ModelsUnavailable[o.Model] = o.Reason.Error()
	}

	final, err := e.combiner.Combine(e.cat, outcomes, simple, enhanced)
	if err != nil {
		return nil, err
	}

	boosted, applied := e.booster.Boost(final, prior)
	pred.HistoryApplied = applied
	pred.Results = e.selector.Select(boosted, e.cat)
	pred.NoViable = len(pred.Results) == 0

	if len(pred.ModelsUnavailable) > 0 {
		e.logger.Warn("Prediction ran with reduced model ensemble",
			zap.Strings("models_used", pred.ModelsUsed),
			zap.Any("models_unavailable", pred.ModelsUnavailable),
		)
	}
	return pred, nil
}

// priorDiseases never fails the request: lookup errors and timeouts are
// logged and treated as an empty history.
func (e *Engine) priorDiseases(ctx context.Context, patientID string) []string {
	ctx, cancel := context.WithTimeout(ctx, e.historyTimeout)
	defer cancel()

	type result struct {
		names []string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		names, err := e.history.PriorDiseases(ctx, patientID)
		done <- result{names: names, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			e.logger.Warn("Patient history lookup failed, continuing without history",
				zap.String("patient_id", patientID),
				zap.Error(r.err),
			)
			return nil
		}
		return r.names
	case <-ctx.Done():
		e.logger.Warn("Patient history lookup timed out, continuing without history",
			zap.String("patient_id", patientID),
			zap.Duration("timeout", e.historyTimeout),
		)
		return nil
	}
}

package scorer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"disease-detector/internal/catalog"
)

// State 模型生命周期状态
type State string

const (
	StateNotLoaded State = "NOT_LOADED"
	StateLoading   State = "LOADING"
	StateReady     State = "READY"
	StateFailed    State = "FAILED"
)

// DefaultTimeout is the per-call scoring timeout when none is configured.
const DefaultTimeout = 3 * time.Second

// Instance owns one Scorer's lifecycle and guards each call with a timeout
// and panic recovery. Failures during Score never change the lifecycle
// state; they only make that call's Outcome unavailable.
type Instance struct {
	scorer  Scorer
	model   string
	weight  float64
	timeout time.Duration
	logger  *zap.Logger

	loadMu  sync.Mutex
	mu      sync.RWMutex
	state   State
	loadErr error
}

// InstanceOption configures an Instance.
type InstanceOption func(*Instance)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) InstanceOption {
	return func(i *Instance) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithModelID records the backing model for health reporting.
func WithModelID(id string) InstanceOption {
	return func(i *Instance) { i.model = id }
}

// NewInstance 创建模型实例，初始状态 NOT_LOADED
func NewInstance(s Scorer, weight float64, logger *zap.Logger, opts ...InstanceOption) *Instance {
	if logger == nil {
		logger = zap.NewNop()
	}
	i := &Instance{
		scorer:  s,
		weight:  weight,
		timeout: DefaultTimeout,
		logger:  logger.With(zap.String("model", s.Name())),
		state:   StateNotLoaded,
	}
	if m, ok := s.(interface{ ModelID() string }); ok {
		i.model = m.ModelID()
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Name 实例名称（权重键）
func (i *Instance) Name() string { return i.scorer.Name() }

// Weight is the configured model weight before renormalization.
func (i *Instance) Weight() float64 { return i.weight }

// State returns the current lifecycle state.
func (i *Instance) State() State {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

// Err returns the load error of a FAILED instance.
func (i *Instance) Err() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.loadErr
}

func (i *Instance) setState(s State, err error) {
	i.mu.Lock()
	i.state = s
	i.loadErr = err
	i.mu.Unlock()
}

// Load moves NOT_LOADED -> LOADING -> READY or FAILED. FAILED is terminal:
// loading a READY or FAILED instance again returns the stored result.
func (i *Instance) Load(ctx context.Context, cat *catalog.Catalog) error {
	i.loadMu.Lock()
	defer i.loadMu.Unlock()

	switch i.State() {
	case StateReady:
		return nil
	case StateFailed:
		return i.Err()
	}

	i.setState(StateLoading, nil)
	start := time.Now()
	i.logger.Info("Loading model")

	err := i.safeLoad(ctx, cat)
	if err != nil {
		err = fmt.Errorf("load %s: %w", i.Name(), err)
		i.setState(StateFailed, err)
		i.logger.Error("Model failed to load", zap.Error(err))
		return err
	}

	i.setState(StateReady, nil)
	i.logger.Info("Model ready", zap.Duration("duration", time.Since(start)))
	return nil
}

func (i *Instance) safeLoad(ctx context.Context, cat *catalog.Catalog) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return i.scorer.Load(ctx, cat)
}

type scoreResult struct {
	vector catalog.ScoreVector
	err    error
}

// Score runs the scorer under the instance timeout. It always returns an
// Outcome; a non-READY instance, an error, a panic, a timeout or an invalid
// vector all produce Unavailable.
func (i *Instance) Score(ctx context.Context, text string, cat *catalog.Catalog) Outcome {
	name := i.Name()
	if st := i.State(); st != StateReady {
		return Unavailable(name, fmt.Errorf("%w: %s", ErrNotReady, st))
	}

	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	done := make(chan scoreResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- scoreResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := i.scorer.Score(callCtx, text, cat)
		done <- scoreResult{vector: v, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
				res.err = fmt.Errorf("%w after %s: %v", ErrTimeout, i.timeout, res.err)
			}
			i.logger.Warn("Model scoring failed", zap.Error(res.err))
			return Unavailable(name, res.err)
		}
		v, err := checkVector(res.vector, cat)
		if err != nil {
			i.logger.Warn("Model returned invalid scores", zap.Error(err))
			return Unavailable(name, err)
		}
		return Available(name, v)
	case <-callCtx.Done():
		err := callCtx.Err()
		if ctx.Err() == nil {
			err = fmt.Errorf("%w after %s", ErrTimeout, i.timeout)
		}
		i.logger.Warn("Model scoring timed out", zap.Error(err))
		return Unavailable(name, err)
	}
}

// checkVector requires one finite entry per catalog disease and clamps
// values into [0,1].
func checkVector(v catalog.ScoreVector, cat *catalog.Catalog) (catalog.ScoreVector, error) {
	if v == nil {
		return nil, errors.New("nil score vector")
	}
	out := make(catalog.ScoreVector, cat.Len())
	for _, name := range cat.Names() {
		s, ok := v[name]
		if !ok {
			return nil, fmt.Errorf("missing score for %q", name)
		}
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("non-finite score for %q", name)
		}
		out[name] = clamp01(s)
	}
	return out, nil
}

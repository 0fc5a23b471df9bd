package scorer

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"disease-detector/internal/catalog"
)

// ModelHealth is the health view of one model instance.
type ModelHealth struct {
	Name   string  `json:"name"`
	Model  string  `json:"model,omitempty"`
	State  State   `json:"state"`
	Weight float64 `json:"weight"`
	Error  string  `json:"error,omitempty"`
}

// Pool 模型实例集合（顺序固定）
type Pool struct {
	instances []*Instance
	logger    *zap.Logger
}

// NewPool keeps instances in the given order; that order is the order
// outcomes are combined in.
func NewPool(logger *zap.Logger, instances ...*Instance) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{instances: instances, logger: logger}
}

// Instances returns the pool members in order.
func (p *Pool) Instances() []*Instance {
	out := make([]*Instance, len(p.instances))
	copy(out, p.instances)
	return out
}

// LoadAll loads every instance concurrently. One instance failing does not
// stop the others; the joined load errors are returned for logging.
func (p *Pool) LoadAll(ctx context.Context, cat *catalog.Catalog) error {
	errs := make([]error, len(p.instances))
	var g errgroup.Group
	for idx, inst := range p.instances {
		g.Go(func() error {
			errs[idx] = inst.Load(ctx, cat)
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Info("Model loading finished",
		zap.Int("ready", p.ReadyCount()),
		zap.Int("total", len(p.instances)),
	)
	return errors.Join(errs...)
}

// ReadyCount 就绪模型数量
func (p *Pool) ReadyCount() int {
	n := 0
	for _, inst := range p.instances {
		if inst.State() == StateReady {
			n++
		}
	}
	return n
}

// ReadyNames lists READY instance names in pool order.
func (p *Pool) ReadyNames() []string {
	var names []string
	for _, inst := range p.instances {
		if inst.State() == StateReady {
			names = append(names, inst.Name())
		}
	}
	return names
}

// Health 返回各模型健康状态
func (p *Pool) Health() []ModelHealth {
	out := make([]ModelHealth, 0, len(p.instances))
	for _, inst := range p.instances {
		h := ModelHealth{
			Name:   inst.Name(),
			Model:  inst.model,
			State:  inst.State(),
			Weight: inst.Weight(),
		}
		if err := inst.Err(); err != nil {
			h.Error = err.Error()
		}
		out = append(out, h)
	}
	return out
}

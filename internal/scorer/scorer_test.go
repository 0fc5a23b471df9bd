package scorer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"disease-detector/internal/catalog"
)

type fakeScorer struct {
	name    string
	loadErr error
	score   func(ctx context.Context) (catalog.ScoreVector, error)
	loads   atomic.Int32
	calls   atomic.Int32
}

func (f *fakeScorer) Name() string { return f.name }

func (f *fakeScorer) Load(context.Context, *catalog.Catalog) error {
	f.loads.Add(1)
	return f.loadErr
}

func (f *fakeScorer) Score(ctx context.Context, _ string, _ *catalog.Catalog) (catalog.ScoreVector, error) {
	f.calls.Add(1)
	return f.score(ctx)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func constant(c *catalog.Catalog, v float64) catalog.ScoreVector {
	out := catalog.NewScoreVector(c)
	for k := range out {
		out[k] = v
	}
	return out
}

func TestInstance_Lifecycle(t *testing.T) {
	cat := testCatalog(t)
	fs := &fakeScorer{name: "m", score: func(context.Context) (catalog.ScoreVector, error) {
		return constant(cat, 0.5), nil
	}}
	inst := NewInstance(fs, 0.4, zap.NewNop())

	assert.Equal(t, StateNotLoaded, inst.State())
	out := inst.Score(context.Background(), "fever", cat)
	assert.False(t, out.OK())
	assert.ErrorIs(t, out.Reason, ErrNotReady)
	assert.Equal(t, int32(0), fs.calls.Load())

	require.NoError(t, inst.Load(context.Background(), cat))
	assert.Equal(t, StateReady, inst.State())

	out = inst.Score(context.Background(), "fever", cat)
	require.True(t, out.OK())
	assert.Equal(t, "m", out.Model)
	assert.Len(t, out.Vector, cat.Len())

	require.NoError(t, inst.Load(context.Background(), cat))
	assert.Equal(t, int32(1), fs.loads.Load())
}

func TestInstance_FailedIsTerminal(t *testing.T) {
	cat := testCatalog(t)
	fs := &fakeScorer{name: "m", loadErr: errors.New("weights missing")}
	inst := NewInstance(fs, 0.4, zap.NewNop())

	err := inst.Load(context.Background(), cat)
	require.Error(t, err)
	assert.Equal(t, StateFailed, inst.State())

	err2 := inst.Load(context.Background(), cat)
	assert.Equal(t, err, err2)
	assert.Equal(t, int32(1), fs.loads.Load())
	assert.False(t, inst.Score(context.Background(), "x", cat).OK())
}

func TestInstance_LoadPanicFails(t *testing.T) {
	cat := testCatalog(t)
	inst := NewInstance(&panicLoader{}, 1, zap.NewNop())
	require.Error(t, inst.Load(context.Background(), cat))
	assert.Equal(t, StateFailed, inst.State())
}

type panicLoader struct{ fakeScorer }

func (p *panicLoader) Name() string { return "panicky" }

func (p *panicLoader) Load(context.Context, *catalog.Catalog) error { panic("boom") }

func TestInstance_TransientFailuresKeepReady(t *testing.T) {
	cat := testCatalog(t)
	tests := []struct {
		name  string
		score func(ctx context.Context) (catalog.ScoreVector, error)
		isErr error
	}{
		{"error", func(context.Context) (catalog.ScoreVector, error) {
			return nil, errors.New("inference failed")
		}, nil},
		{"panic", func(context.Context) (catalog.ScoreVector, error) {
			panic("inference panic")
		}, nil},
		{"timeout", func(ctx context.Context) (catalog.ScoreVector, error) {
			<-ctx.Done()
			time.Sleep(5 * time.Millisecond)
			return constant(cat, 1), nil
		}, ErrTimeout},
		{"incomplete vector", func(context.Context) (catalog.ScoreVector, error) {
			return catalog.ScoreVector{"Flu": 0.3}, nil
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := NewInstance(&fakeScorer{name: "m", score: tt.score}, 1, zap.NewNop(),
				WithTimeout(20*time.Millisecond))
			require.NoError(t, inst.Load(context.Background(), cat))

			out := inst.Score(context.Background(), "fever", cat)
			assert.False(t, out.OK())
			require.Error(t, out.Reason)
			if tt.isErr != nil {
				assert.ErrorIs(t, out.Reason, tt.isErr)
			}
			assert.Equal(t, StateReady, inst.State())
		})
	}
}

func TestInstance_ClampsScores(t *testing.T) {
	cat := testCatalog(t)
	inst := NewInstance(&fakeScorer{name: "m", score: func(context.Context) (catalog.ScoreVector, error) {
		return constant(cat, 1.7), nil
	}}, 1, zap.NewNop())
	require.NoError(t, inst.Load(context.Background(), cat))

	out := inst.Score(context.Background(), "fever", cat)
	require.True(t, out.OK())
	for _, v := range out.Vector {
		assert.Equal(t, 1.0, v)
	}
}

func TestPool_LoadAllAndHealth(t *testing.T) {
	cat := testCatalog(t)
	ok := &fakeScorer{name: "a", score: func(context.Context) (catalog.ScoreVector, error) { return constant(cat, 0), nil }}
	bad := &fakeScorer{name: "b", loadErr: errors.New("no weights")}
	pool := NewPool(zap.NewNop(),
		NewInstance(ok, 0.6, zap.NewNop()),
		NewInstance(bad, 0.4, zap.NewNop()),
	)

	err := pool.LoadAll(context.Background(), cat)
	require.Error(t, err)
	assert.Equal(t, 1, pool.ReadyCount())
	assert.Equal(t, []string{"a"}, pool.ReadyNames())

	health := pool.Health()
	require.Len(t, health, 2)
	assert.Equal(t, StateReady, health[0].State)
	assert.Equal(t, 0.6, health[0].Weight)
	assert.Equal(t, StateFailed, health[1].State)
	assert.Contains(t, health[1].Error, "no weights")
}

func TestBuildInstance_UnknownProviderFailsOnLoad(t *testing.T) {
	cat := testCatalog(t)
	inst := BuildInstance(context.Background(), ModelConfig{Name: "x", Provider: "bogus", Weight: 1}, time.Second, zap.NewNop())
	assert.Equal(t, StateNotLoaded, inst.State())
	require.Error(t, inst.Load(context.Background(), cat))
	assert.Equal(t, StateFailed, inst.State())
}

func TestBuildInstance_OpenAIWithoutKeyFails(t *testing.T) {
	inst := BuildInstance(context.Background(), ModelConfig{Name: "x", Provider: ProviderOpenAI, Weight: 1}, time.Second, zap.NewNop())
	require.Error(t, inst.Load(context.Background(), testCatalog(t)))
}

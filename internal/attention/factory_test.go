package attention_test

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/born-ml/attend/internal/attention"
	"github.com/born-ml/attend/internal/backend/cpu"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayer(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(21))
	spec := attention.LayerSpec{
		ScoreType: attention.ScaledDot,
		SrcDim:    4,
		TrgDim:    4,
		QueryDim:  3,
		KeyDim:    3,
		ValueDim:  2,
	}
	wantDim := map[string]int{
		attention.KindAttention:      4,
		attention.KindMaxAttention:   4,
		attention.KindHeadAttention:  2,
		attention.KindGatedAttention: 8,
	}

	src := randomSeq(backend, rng, 2, 3, 4)
	trg := randomSeq(backend, rng, 2, 2, 4)
	srcMask := lengthMask(t, backend, 3, 3, 2)
	trgMask := lengthMask(t, backend, 2, 2, 1)

	for _, kind := range attention.Kinds() {
		t.Run(kind, func(t *testing.T) {
			layer, err := attention.NewLayer(kind, spec, backend, attention.WithRand(rng), attention.WithName("test_"+kind))
			require.NoError(t, err)
			assert.Equal(t, kind, layer.Kind())
			assert.Equal(t, "test_"+kind, layer.Name())
			assert.Equal(t, wantDim[kind], layer.OutputDim())

			out, outMask, err := layer.Forward(src, trg, srcMask, trgMask)
			require.NoError(t, err)
			assert.Same(t, srcMask, outMask)
			assert.Equal(t, []int{2, 3, wantDim[kind]}, []int(out.Shape()))
		})
	}
}

func TestNewLayer_Errors(t *testing.T) {
	backend := cpu.New()

	layer, err := attention.NewLayer("self_att", attention.LayerSpec{ScoreType: attention.Dot, SrcDim: 2, TrgDim: 2}, backend)
	assert.Nil(t, layer)
	assert.True(t, errors.Is(err, attention.ErrUnsupportedVariant))

	layer, err = attention.NewLayer(attention.KindHeadAttention, attention.LayerSpec{ScoreType: attention.Dot, SrcDim: 2, TrgDim: 2}, backend)
	assert.Nil(t, layer)
	assert.True(t, errors.Is(err, attention.ErrDimensionMismatch))
}

func TestRegistry(t *testing.T) {
	backend := cpu.New()
	reg := attention.NewRegistry[cpuBackend]()
	ps, err := attention.NewParameterSet(attention.Bilinear, attention.Dims{Src: 3, Trg: 3}, true, backend, nil)
	require.NoError(t, err)

	id, err := reg.Register(ps)
	require.NoError(t, err)
	assert.Equal(t, ps.ID(), id)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, reg.Refs(id))

	got, err := reg.Acquire(id)
	require.NoError(t, err)
	assert.Same(t, ps, got)
	assert.Equal(t, 2, reg.Refs(id))

	// Layers built from an acquired set read the registered weights.
	att, err := attention.NewAttention(attention.Config{ScoreType: attention.Bilinear, SrcDim: 3, TrgDim: 3},
		backend, attention.WithParameters(got))
	require.NoError(t, err)
	assert.Same(t, ps, att.AttentionParameters())

	require.NoError(t, reg.Release(id))
	assert.Equal(t, 1, reg.Refs(id))
	require.NoError(t, reg.Release(id))
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 0, reg.Refs(id))

	_, err = reg.Acquire(id)
	assert.True(t, errors.Is(err, attention.ErrNotRegistered))

	_, err = reg.Register(nil)
	assert.Error(t, err)
	assert.Equal(t, 0, reg.Len())
	assert.True(t, errors.Is(reg.Release(uuid.New()), attention.ErrNotRegistered))
}

func TestRegistry_Concurrent(t *testing.T) {
	backend := cpu.New()
	reg := attention.NewRegistry[cpuBackend]()
	ps, err := attention.NewParameterSet(attention.Linear, attention.Dims{Src: 2, Trg: 2}, true, backend, nil)
	require.NoError(t, err)
	id, err := reg.Register(ps)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				got, err := reg.Acquire(id)
				if !assert.NoError(t, err) {
					return
				}
				assert.Same(t, ps, got)
				assert.NoError(t, reg.Release(id))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, reg.Refs(id))
	assert.Equal(t, 1, reg.Len())
}

package attention

import (
	"github.com/born-ml/attend/internal/nn"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// MaxAttention pools the source sequence into a single summary vector and
// broadcasts it back to every source position.
//
// Each source position is scored by its best match in the target: the
// scores and the pairwise mask are max-reduced over the target axis, the
// result is normalised over the source axis, and the weighted sum of the
// source rows is repeated Ls times. The max is taken over the raw scores,
// so padded target positions take part with the score they produce after
// masking of the inputs.
type MaxAttention[B tensor.Backend] struct {
	name    string
	cfg     Config
	variant *variant
	params  *ParameterSet[B]
}

// NewMaxAttention creates a max-attention layer.
func NewMaxAttention[B tensor.Backend](cfg Config, backend B, opts ...Option) (*MaxAttention[B], error) {
	o := buildOptions("max_att", opts)
	v, ps, err := newScorer(o, cfg, backend)
	if err != nil {
		return nil, errors.Wrapf(err, "max attention %q", o.name)
	}

	klog.V(1).Infof("max attention %q: score=%s src=%d trg=%d att=%d self=%t params=%d shared=%t",
		o.name, cfg.ScoreType, cfg.SrcDim, cfg.TrgDim, cfg.AttDim, cfg.IsSelf, ps.NumElements(), o.params != nil)

	return &MaxAttention[B]{
		name:    o.name,
		cfg:     cfg,
		variant: v,
		params:  ps,
	}, nil
}

// Forward returns the pooled source summary at every source position,
// [batch, Ls, Ds], and srcMask as the output mask.
func (m *MaxAttention[B]) Forward(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B], error) {
	out, outMask, _, err := m.ForwardWithWeights(src, trg, srcMask, trgMask)
	return out, outMask, err
}

// ForwardWithWeights is Forward that also returns the pooling weights over
// the source positions, [batch, 1, Ls].
func (m *MaxAttention[B]) ForwardWithWeights(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (out, outMask, weights *tensor.Tensor[float32, B], err error) {
	if err := checkInputs(src, trg, srcMask, trgMask, m.cfg.SrcDim, m.cfg.TrgDim); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "max attention %q", m.name)
	}
	batch, ls, ds := src.Shape()[0], src.Shape()[1], src.Shape()[2]

	src = src.Mul(srcMask)
	trg = trg.Mul(trgMask)

	scores := score(m.variant.form, src, trg, m.params)
	mask, err := PairwiseMask(srcMask, trgMask, m.cfg.IsSelf)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "max attention %q", m.name)
	}

	// [b, Ls, 1] best score and "any valid target" flag per source position.
	best := scores.MaxDim(2, true)
	anyValid := mask.MaxDim(2, true)
	weights = best.MaskedSoftmax(anyValid, 1).Transpose(0, 2, 1) // [b, 1, Ls]

	pooled := weights.BatchMatMul(src) // [b, 1, Ds]
	out = pooled.Expand(batch, ls, ds).Mul(srcMask)
	return out, srcMask, weights, nil
}

// Name returns the layer name.
func (m *MaxAttention[B]) Name() string {
	return m.name
}

// Kind returns "max_att".
func (m *MaxAttention[B]) Kind() string {
	return KindMaxAttention
}

// Config returns the layer configuration.
func (m *MaxAttention[B]) Config() Config {
	return m.cfg
}

// OutputDim returns the feature width of Forward's output.
func (m *MaxAttention[B]) OutputDim() int {
	return m.cfg.SrcDim
}

// AttentionParameters returns the shared parameter set.
func (m *MaxAttention[B]) AttentionParameters() *ParameterSet[B] {
	return m.params
}

// Parameters returns the layer's parameters in variant order.
func (m *MaxAttention[B]) Parameters() []*nn.Parameter[B] {
	return m.params.Parameters()
}

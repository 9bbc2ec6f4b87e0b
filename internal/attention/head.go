package attention

import (
	"math/rand"

	"github.com/born-ml/attend/internal/nn"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// HeadConfig describes a HeadAttention layer. Queries are projected from the
// source, keys and values from the target.
type HeadConfig struct {
	ScoreType ScoreType
	SrcDim    int
	TrgDim    int
	QueryDim  int
	KeyDim    int
	ValueDim  int
	IsSelf    bool
	Trainable bool
}

// attentionDims returns the widths the inner parameter set scores on:
// queries against keys, with the key width as hidden width.
func (c HeadConfig) attentionDims() Dims {
	return Dims{Src: c.QueryDim, Trg: c.KeyDim, Att: c.KeyDim}
}

// Validate checks the score type and widths.
func (c HeadConfig) Validate() error {
	for _, d := range []struct {
		name  string
		value int
	}{
		{"src dim", c.SrcDim},
		{"trg dim", c.TrgDim},
		{"query dim", c.QueryDim},
		{"key dim", c.KeyDim},
		{"value dim", c.ValueDim},
	} {
		if d.value <= 0 {
			return errors.Wrapf(ErrDimensionMismatch, "head attention: %s %d must be positive", d.name, d.value)
		}
	}
	if err := checkSelfDims(c.IsSelf, c.SrcDim, c.TrgDim); err != nil {
		return errors.Wrap(err, "head attention")
	}
	v, err := lookupVariant(c.ScoreType)
	if err != nil {
		return err
	}
	return v.checkDims(c.attentionDims())
}

// HeadParameters holds the query, key and value projections of a head
// together with the attention parameter set used on the projected widths.
// Like ParameterSet it is read-only and may be shared between layers.
type HeadParameters[B tensor.Backend] struct {
	id        uuid.UUID
	query     *nn.Parameter[B] // [SrcDim, QueryDim]
	key       *nn.Parameter[B] // [TrgDim, KeyDim]
	value     *nn.Parameter[B] // [TrgDim, ValueDim]
	attention *ParameterSet[B]
}

// NewHeadParameters creates glorot-uniform initialised head parameters.
func NewHeadParameters[B tensor.Backend](cfg HeadConfig, backend B, rng *rand.Rand) (*HeadParameters[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	newWeight := func(name string, in, out int) *nn.Parameter[B] {
		return nn.NewParameter(name, nn.GlorotUniform(tensor.Shape{in, out}, rng, backend), cfg.Trainable)
	}
	hp := &HeadParameters[B]{
		id:    uuid.New(),
		query: newWeight("query_projection_weight", cfg.SrcDim, cfg.QueryDim),
		key:   newWeight("key_projection_weight", cfg.TrgDim, cfg.KeyDim),
		value: newWeight("value_projection_weight", cfg.TrgDim, cfg.ValueDim),
	}

	ps, err := NewParameterSet(cfg.ScoreType, cfg.attentionDims(), cfg.Trainable, backend, rng)
	if err != nil {
		return nil, err
	}
	hp.attention = ps
	return hp, nil
}

// ID returns the identity of the head parameters.
func (hp *HeadParameters[B]) ID() uuid.UUID {
	return hp.id
}

// Query returns the query projection, [SrcDim, QueryDim].
func (hp *HeadParameters[B]) Query() *nn.Parameter[B] {
	return hp.query
}

// Key returns the key projection, [TrgDim, KeyDim].
func (hp *HeadParameters[B]) Key() *nn.Parameter[B] {
	return hp.key
}

// Value returns the value projection, [TrgDim, ValueDim].
func (hp *HeadParameters[B]) Value() *nn.Parameter[B] {
	return hp.value
}

// Attention returns the parameter set that scores queries against keys.
func (hp *HeadParameters[B]) Attention() *ParameterSet[B] {
	return hp.attention
}

// Projections returns the query, key and value projections in that order.
func (hp *HeadParameters[B]) Projections() []*nn.Parameter[B] {
	return []*nn.Parameter[B]{hp.query, hp.key, hp.value}
}

// Parameters returns the projections followed by the attention parameters.
func (hp *HeadParameters[B]) Parameters() []*nn.Parameter[B] {
	return append(hp.Projections(), hp.attention.params...)
}

// NumElements returns the number of scalars across all parameters.
func (hp *HeadParameters[B]) NumElements() int {
	return nn.NumElements(hp.Parameters())
}

// compatible checks that hp fits cfg.
func (hp *HeadParameters[B]) compatible(cfg HeadConfig) error {
	for _, w := range []struct {
		p    *nn.Parameter[B]
		want tensor.Shape
	}{
		{hp.query, tensor.Shape{cfg.SrcDim, cfg.QueryDim}},
		{hp.key, tensor.Shape{cfg.TrgDim, cfg.KeyDim}},
		{hp.value, tensor.Shape{cfg.TrgDim, cfg.ValueDim}},
	} {
		if !w.p.Shape().Equal(w.want) {
			return errors.Wrapf(ErrDimensionMismatch, "head parameters %s: %s has shape %v, layer needs %v",
				hp.id, w.p.Name(), w.p.Shape(), w.want)
		}
	}
	return hp.attention.compatible(cfg.ScoreType, cfg.attentionDims())
}

// HeadAttention attends over learned projections of its inputs: queries
// from the source, keys and values from the target.
//
// Forward:
//  1. src *= srcMask, trg *= trgMask
//  2. q = src·Wq, k = trg·Wk, v = trg·Wv
//  3. weights = MaskedSoftmax(Score(q, k), pairwise mask) over Lt
//  4. out = weights · v * srcMask    [batch, Ls, ValueDim]
type HeadAttention[B tensor.Backend] struct {
	name    string
	cfg     HeadConfig
	variant *variant
	params  *HeadParameters[B]
	query   *nn.Linear[B]
	key     *nn.Linear[B]
	value   *nn.Linear[B]
}

// NewHeadAttention creates a head-attention layer. WithHeadParameters reuses
// the projections and attention set of another layer.
func NewHeadAttention[B tensor.Backend](cfg HeadConfig, backend B, opts ...Option) (*HeadAttention[B], error) {
	o := buildOptions("head_att", opts)
	h, err := newHeadAttention(o, cfg, backend)
	if err != nil {
		return nil, errors.Wrapf(err, "head attention %q", o.name)
	}

	klog.V(1).Infof("head attention %q: score=%s src=%d trg=%d q=%d k=%d v=%d self=%t params=%d shared=%t",
		o.name, cfg.ScoreType, cfg.SrcDim, cfg.TrgDim, cfg.QueryDim, cfg.KeyDim, cfg.ValueDim, cfg.IsSelf,
		h.params.NumElements(), o.head != nil)
	return h, nil
}

func newHeadAttention[B tensor.Backend](o options, cfg HeadConfig, backend B) (*HeadAttention[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v, err := lookupVariant(cfg.ScoreType)
	if err != nil {
		return nil, err
	}

	hp, err := sharedHeadParameters[B](o)
	if err != nil {
		return nil, err
	}
	if hp != nil {
		if err := hp.compatible(cfg); err != nil {
			return nil, err
		}
	} else {
		if hp, err = NewHeadParameters(cfg, backend, o.rng); err != nil {
			return nil, err
		}
	}

	h := &HeadAttention[B]{
		name:    o.name,
		cfg:     cfg,
		variant: v,
		params:  hp,
	}
	for _, l := range []struct {
		dst **nn.Linear[B]
		w   *nn.Parameter[B]
	}{
		{&h.query, hp.query},
		{&h.key, hp.key},
		{&h.value, hp.value},
	} {
		if *l.dst, err = nn.LinearFrom[B](l.w, nil); err != nil {
			return nil, errors.Wrap(ErrDimensionMismatch, err.Error())
		}
	}
	return h, nil
}

// Forward returns the attended values for every source position,
// [batch, Ls, ValueDim], and srcMask as the output mask.
func (h *HeadAttention[B]) Forward(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B], error) {
	out, outMask, _, err := h.ForwardWithWeights(src, trg, srcMask, trgMask)
	return out, outMask, err
}

// ForwardWithWeights is Forward that also returns the normalised attention
// weights, [batch, Ls, Lt].
func (h *HeadAttention[B]) ForwardWithWeights(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (out, outMask, weights *tensor.Tensor[float32, B], err error) {
	if err := checkInputs(src, trg, srcMask, trgMask, h.cfg.SrcDim, h.cfg.TrgDim); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "head attention %q", h.name)
	}

	src = src.Mul(srcMask)
	trg = trg.Mul(trgMask)

	q, err := h.query.Forward(src)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "head attention %q: query", h.name)
	}
	k, err := h.key.Forward(trg)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "head attention %q: key", h.name)
	}
	v, err := h.value.Forward(trg)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "head attention %q: value", h.name)
	}

	weights, err = alignmentWeights(h.variant, h.params.attention, q, k, srcMask, trgMask, h.cfg.IsSelf)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "head attention %q", h.name)
	}

	out = weights.BatchMatMul(v).Mul(srcMask)
	return out, srcMask, weights, nil
}

// Name returns the layer name.
func (h *HeadAttention[B]) Name() string {
	return h.name
}

// Kind returns "head_att".
func (h *HeadAttention[B]) Kind() string {
	return KindHeadAttention
}

// Config returns the layer configuration.
func (h *HeadAttention[B]) Config() HeadConfig {
	return h.cfg
}

// OutputDim returns the feature width of Forward's output.
func (h *HeadAttention[B]) OutputDim() int {
	return h.cfg.ValueDim
}

// HeadParameters returns the shared head parameters.
func (h *HeadAttention[B]) HeadParameters() *HeadParameters[B] {
	return h.params
}

// ProjectionParameters returns the query, key and value projections.
func (h *HeadAttention[B]) ProjectionParameters() []*nn.Parameter[B] {
	return h.params.Projections()
}

// AttentionParameters returns the parameter set scoring queries against keys.
func (h *HeadAttention[B]) AttentionParameters() *ParameterSet[B] {
	return h.params.attention
}

// Parameters returns the projections followed by the attention parameters.
func (h *HeadAttention[B]) Parameters() []*nn.Parameter[B] {
	return h.params.Parameters()
}

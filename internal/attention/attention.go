// Package attention implements generalized attention between two
// variable-length sequences.
//
// A source sequence [batch, Ls, Ds] is aligned against a target sequence
// [batch, Lt, Dt] with one of seven score functions, the scores are
// normalised with a masked softmax and used to combine values:
//   - Attention: weighted sum of the target for every source position
//   - MaxAttention: one pooled source summary broadcast to every position
//   - HeadAttention: attention over learned query/key/value projections
//   - GatedAttention: attention fused with its input through a sigmoid gate
//
// Every layer takes [batch, L, 1] validity masks, returns the source mask
// unchanged as the output mask and zeroes padded output rows. Layers are
// immutable after construction and safe for concurrent Forward calls.
package attention

import (
	"github.com/born-ml/attend/internal/nn"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Config describes an Attention or MaxAttention layer.
type Config struct {
	ScoreType ScoreType
	SrcDim    int
	TrgDim    int
	AttDim    int  // hidden width of the nonlinear variants
	IsSelf    bool // a position never attends to itself
	Trainable bool
}

// Dims returns the widths the layer's parameter set is built for.
func (c Config) Dims() Dims {
	return Dims{Src: c.SrcDim, Trg: c.TrgDim, Att: c.AttDim}
}

// Validate checks the score type and widths. Self attention scores a
// sequence against itself, so it needs equal source and target widths.
func (c Config) Validate() error {
	v, err := lookupVariant(c.ScoreType)
	if err != nil {
		return err
	}
	if err := v.checkDims(c.Dims()); err != nil {
		return err
	}
	return checkSelfDims(c.IsSelf, c.SrcDim, c.TrgDim)
}

func checkSelfDims(isSelf bool, srcDim, trgDim int) error {
	if isSelf && srcDim != trgDim {
		return errors.Wrapf(ErrDimensionMismatch, "self attention needs equal widths, got src %d and trg %d", srcDim, trgDim)
	}
	return nil
}

// Attention computes, for every source position, a softmax-weighted sum of
// the target sequence.
//
// Forward:
//  1. src *= srcMask, trg *= trgMask
//  2. scores = Score(src, trg)                    [batch, Ls, Lt]
//  3. weights = MaskedSoftmax(scores, pairwise mask) over Lt
//  4. out = weights · trg * srcMask                [batch, Ls, Dt]
//
// Example:
//
//	backend := cpu.New()
//	att, err := attention.NewAttention(attention.Config{
//	    ScoreType: attention.ScaledDot, SrcDim: 64, TrgDim: 64,
//	}, backend)
//	out, outMask, err := att.Forward(passage, question, passageMask, questionMask)
type Attention[B tensor.Backend] struct {
	name    string
	cfg     Config
	variant *variant
	params  *ParameterSet[B]
}

// NewAttention creates an attention layer. WithParameters shares an existing
// parameter set, which must match cfg's score type and widths.
func NewAttention[B tensor.Backend](cfg Config, backend B, opts ...Option) (*Attention[B], error) {
	o := buildOptions("attention", opts)
	v, ps, err := newScorer(o, cfg, backend)
	if err != nil {
		return nil, errors.Wrapf(err, "attention %q", o.name)
	}

	klog.V(1).Infof("attention %q: score=%s src=%d trg=%d att=%d self=%t params=%d shared=%t",
		o.name, cfg.ScoreType, cfg.SrcDim, cfg.TrgDim, cfg.AttDim, cfg.IsSelf, ps.NumElements(), o.params != nil)

	return &Attention[B]{
		name:    o.name,
		cfg:     cfg,
		variant: v,
		params:  ps,
	}, nil
}

// newScorer validates cfg and resolves the parameter set, injected or new.
func newScorer[B tensor.Backend](o options, cfg Config, backend B) (*variant, *ParameterSet[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	v, err := lookupVariant(cfg.ScoreType)
	if err != nil {
		return nil, nil, err
	}

	ps, err := sharedParameters[B](o)
	if err != nil {
		return nil, nil, err
	}
	if ps != nil {
		if err := ps.compatible(cfg.ScoreType, cfg.Dims()); err != nil {
			return nil, nil, err
		}
		return v, ps, nil
	}

	ps, err = NewParameterSet(cfg.ScoreType, cfg.Dims(), cfg.Trainable, backend, o.rng)
	if err != nil {
		return nil, nil, err
	}
	return v, ps, nil
}

// Forward returns the attended target for every source position,
// [batch, Ls, Dt], and the output mask, which is srcMask itself.
func (a *Attention[B]) Forward(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B], error) {
	out, outMask, _, err := a.ForwardWithWeights(src, trg, srcMask, trgMask)
	return out, outMask, err
}

// ForwardWithWeights is Forward that also returns the normalised attention
// weights, [batch, Ls, Lt].
func (a *Attention[B]) ForwardWithWeights(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (out, outMask, weights *tensor.Tensor[float32, B], err error) {
	if err := checkInputs(src, trg, srcMask, trgMask, a.cfg.SrcDim, a.cfg.TrgDim); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "attention %q", a.name)
	}

	src = src.Mul(srcMask)
	trg = trg.Mul(trgMask)

	weights, err = alignmentWeights(a.variant, a.params, src, trg, srcMask, trgMask, a.cfg.IsSelf)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "attention %q", a.name)
	}

	out = weights.BatchMatMul(trg).Mul(srcMask)
	return out, srcMask, weights, nil
}

// alignmentWeights scores masked inputs and normalises over the target axis.
func alignmentWeights[B tensor.Backend](v *variant, ps *ParameterSet[B], src, trg, srcMask, trgMask *tensor.Tensor[float32, B], excludeSelf bool) (*tensor.Tensor[float32, B], error) {
	scores := score(v.form, src, trg, ps)
	mask, err := PairwiseMask(srcMask, trgMask, excludeSelf)
	if err != nil {
		return nil, err
	}
	return scores.MaskedSoftmax(mask, -1), nil
}

// Name returns the layer name.
func (a *Attention[B]) Name() string {
	return a.name
}

// Kind returns "att".
func (a *Attention[B]) Kind() string {
	return KindAttention
}

// Config returns the layer configuration.
func (a *Attention[B]) Config() Config {
	return a.cfg
}

// OutputDim returns the feature width of Forward's output.
func (a *Attention[B]) OutputDim() int {
	return a.cfg.TrgDim
}

// AttentionParameters returns the shared parameter set.
func (a *Attention[B]) AttentionParameters() *ParameterSet[B] {
	return a.params
}

// Parameters returns the layer's parameters in variant order.
func (a *Attention[B]) Parameters() []*nn.Parameter[B] {
	return a.params.Parameters()
}

// checkInputs validates sequence and mask shapes against the layer widths.
func checkInputs[B tensor.Backend](src, trg, srcMask, trgMask *tensor.Tensor[float32, B], srcDim, trgDim int) error {
	ss, ts := src.Shape(), trg.Shape()
	if err := checkSequencePair(ss, ts); err != nil {
		return err
	}
	if ss[2] != srcDim {
		return errors.Wrapf(ErrDimensionMismatch, "src width %d, layer expects %d", ss[2], srcDim)
	}
	if ts[2] != trgDim {
		return errors.Wrapf(ErrDimensionMismatch, "trg width %d, layer expects %d", ts[2], trgDim)
	}
	if !srcMask.Shape().Equal(tensor.Shape{ss[0], ss[1], 1}) {
		return errors.Wrapf(ErrDimensionMismatch, "src mask %v does not fit src %v", srcMask.Shape(), ss)
	}
	if !trgMask.Shape().Equal(tensor.Shape{ts[0], ts[1], 1}) {
		return errors.Wrapf(ErrDimensionMismatch, "trg mask %v does not fit trg %v", trgMask.Shape(), ts)
	}
	return nil
}

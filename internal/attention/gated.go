package attention

import (
	"github.com/born-ml/attend/internal/nn"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// GatedAttention fuses attention with its input through a sigmoid gate:
//
//	x   = [src ; Attention(src, trg)]   [batch, Ls, Ds+Dt]
//	g   = sigmoid(x · Wg)
//	out = g ⊙ x * srcMask
//
// Wg is [Ds+Dt, Ds+Dt] without bias. This is the gated attention-based
// recurrent encoder input of R-Net.
type GatedAttention[B tensor.Backend] struct {
	name      string
	attention *Attention[B]
	gate      *nn.Linear[B]
}

// NewGatedAttention creates a gated attention layer. WithParameters applies
// to the inner attention; the gate always gets its own weight.
func NewGatedAttention[B tensor.Backend](cfg Config, backend B, opts ...Option) (*GatedAttention[B], error) {
	o := buildOptions("gated_att", opts)
	innerOpts := append(append([]Option(nil), opts...), WithName(o.name+"/attention"))
	inner, err := NewAttention(cfg, backend, innerOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "gated attention %q", o.name)
	}

	width := cfg.SrcDim + cfg.TrgDim
	g := &GatedAttention[B]{
		name:      o.name,
		attention: inner,
		gate:      nn.NewLinear(o.name+"/gate", width, width, false, cfg.Trainable, o.rng, backend),
	}

	klog.V(1).Infof("gated attention %q: gate=%dx%d params=%d",
		o.name, width, width, nn.NumElements(g.Parameters()))
	return g, nil
}

// Forward returns the gated fusion, [batch, Ls, Ds+Dt], and srcMask as the
// output mask.
func (g *GatedAttention[B]) Forward(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B], error) {
	out, outMask, _, err := g.ForwardWithWeights(src, trg, srcMask, trgMask)
	return out, outMask, err
}

// ForwardWithWeights is Forward that also returns the inner attention
// weights, [batch, Ls, Lt].
func (g *GatedAttention[B]) ForwardWithWeights(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (out, outMask, weights *tensor.Tensor[float32, B], err error) {
	attended, _, weights, err := g.attention.ForwardWithWeights(src, trg, srcMask, trgMask)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "gated attention %q", g.name)
	}

	fused := src.Cat(2, attended)
	gate, err := g.gate.Forward(fused)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "gated attention %q: gate", g.name)
	}

	out = gate.Sigmoid().Mul(fused).Mul(srcMask)
	return out, srcMask, weights, nil
}

// Name returns the layer name.
func (g *GatedAttention[B]) Name() string {
	return g.name
}

// Kind returns "gated_att".
func (g *GatedAttention[B]) Kind() string {
	return KindGatedAttention
}

// Config returns the inner attention configuration.
func (g *GatedAttention[B]) Config() Config {
	return g.attention.cfg
}

// OutputDim returns the feature width of Forward's output.
func (g *GatedAttention[B]) OutputDim() int {
	return g.attention.cfg.SrcDim + g.attention.cfg.TrgDim
}

// AttentionParameters returns the inner attention's parameter set.
func (g *GatedAttention[B]) AttentionParameters() *ParameterSet[B] {
	return g.attention.params
}

// GateParameters returns the gate weight.
func (g *GatedAttention[B]) GateParameters() []*nn.Parameter[B] {
	return g.gate.Parameters()
}

// Parameters returns the attention parameters followed by the gate weight.
func (g *GatedAttention[B]) Parameters() []*nn.Parameter[B] {
	return append(g.attention.Parameters(), g.gate.Parameters()...)
}

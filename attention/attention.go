// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package attention

import (
	"math/rand"

	"github.com/born-ml/attend/internal/attention"
	"github.com/born-ml/attend/internal/nn"
	"github.com/born-ml/attend/tensor"
)

// ScoreType selects the alignment score formula.
type ScoreType = attention.ScoreType

// Score types.
const (
	Dot           = attention.Dot
	ScaledDot     = attention.ScaledDot
	Linear        = attention.Linear
	Bilinear      = attention.Bilinear
	Nonlinear     = attention.Nonlinear
	LinearPlus    = attention.LinearPlus
	NonlinearPlus = attention.NonlinearPlus
)

// Layer kinds accepted by NewLayer.
const (
	KindAttention      = attention.KindAttention
	KindMaxAttention   = attention.KindMaxAttention
	KindHeadAttention  = attention.KindHeadAttention
	KindGatedAttention = attention.KindGatedAttention
)

// Errors returned by the engine. Test with errors.Is.
var (
	ErrUnsupportedVariant = attention.ErrUnsupportedVariant
	ErrDimensionMismatch  = attention.ErrDimensionMismatch
	ErrNotRegistered      = attention.ErrNotRegistered
)

// Dims holds the widths a parameter set is built for.
type Dims = attention.Dims

// Config describes an Attention, MaxAttention or GatedAttention layer.
type Config = attention.Config

// HeadConfig describes a HeadAttention layer.
type HeadConfig = attention.HeadConfig

// LayerSpec holds the settings of any layer kind.
type LayerSpec = attention.LayerSpec

// Option configures layer construction.
type Option = attention.Option

// Parameter is a named weight tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// ParameterSet is the ordered list of weights a score variant needs.
type ParameterSet[B tensor.Backend] = attention.ParameterSet[B]

// HeadParameters holds the projections and attention set of a head.
type HeadParameters[B tensor.Backend] = attention.HeadParameters[B]

// Layer is the common surface of every attention layer.
type Layer[B tensor.Backend] = attention.Layer[B]

// Attention computes a softmax-weighted sum of the target per source position.
type Attention[B tensor.Backend] = attention.Attention[B]

// MaxAttention pools the source into one summary broadcast to every position.
type MaxAttention[B tensor.Backend] = attention.MaxAttention[B]

// HeadAttention attends over learned query/key/value projections.
type HeadAttention[B tensor.Backend] = attention.HeadAttention[B]

// GatedAttention fuses attention with its input through a sigmoid gate.
type GatedAttention[B tensor.Backend] = attention.GatedAttention[B]

// Registry hands out shared parameter sets by ID.
type Registry[B tensor.Backend] = attention.Registry[B]

// ParseScoreType resolves a name such as "scaled_dot".
func ParseScoreType(name string) (ScoreType, error) {
	return attention.ParseScoreType(name)
}

// ScoreTypes returns every supported score type.
func ScoreTypes() []ScoreType {
	return attention.ScoreTypes()
}

// Kinds returns the layer kinds NewLayer accepts.
func Kinds() []string {
	return attention.Kinds()
}

// NewParameterSet creates glorot-uniform initialised parameters for scoreType.
func NewParameterSet[B tensor.Backend](scoreType ScoreType, dims Dims, trainable bool, backend B, rng *rand.Rand) (*ParameterSet[B], error) {
	return attention.NewParameterSet(scoreType, dims, trainable, backend, rng)
}

// NewHeadParameters creates glorot-uniform initialised head parameters.
func NewHeadParameters[B tensor.Backend](cfg HeadConfig, backend B, rng *rand.Rand) (*HeadParameters[B], error) {
	return attention.NewHeadParameters(cfg, backend, rng)
}

// NewAttention creates an attention layer.
func NewAttention[B tensor.Backend](cfg Config, backend B, opts ...Option) (*Attention[B], error) {
	return attention.NewAttention(cfg, backend, opts...)
}

// NewMaxAttention creates a max-attention layer.
func NewMaxAttention[B tensor.Backend](cfg Config, backend B, opts ...Option) (*MaxAttention[B], error) {
	return attention.NewMaxAttention(cfg, backend, opts...)
}

// NewHeadAttention creates a head-attention layer.
func NewHeadAttention[B tensor.Backend](cfg HeadConfig, backend B, opts ...Option) (*HeadAttention[B], error) {
	return attention.NewHeadAttention(cfg, backend, opts...)
}

// NewGatedAttention creates a gated attention layer.
func NewGatedAttention[B tensor.Backend](cfg Config, backend B, opts ...Option) (*GatedAttention[B], error) {
	return attention.NewGatedAttention(cfg, backend, opts...)
}

// NewLayer creates a layer of kind "att", "max_att", "head_att" or "gated_att".
func NewLayer[B tensor.Backend](kind string, spec LayerSpec, backend B, opts ...Option) (Layer[B], error) {
	return attention.NewLayer(kind, spec, backend, opts...)
}

// NewRegistry creates an empty parameter set registry.
func NewRegistry[B tensor.Backend]() *Registry[B] {
	return attention.NewRegistry[B]()
}

// WithParameters shares ps with the new layer.
func WithParameters[B tensor.Backend](ps *ParameterSet[B]) Option {
	return attention.WithParameters(ps)
}

// WithHeadParameters shares hp with the new head-attention layer.
func WithHeadParameters[B tensor.Backend](hp *HeadParameters[B]) Option {
	return attention.WithHeadParameters(hp)
}

// WithRand sets the source used to initialise new parameters.
func WithRand(rng *rand.Rand) Option {
	return attention.WithRand(rng)
}

// WithName sets the layer name.
func WithName(name string) Option {
	return attention.WithName(name)
}

// Score computes raw alignment scores, [batch, Ls, Lt].
func Score[B tensor.Backend](scoreType ScoreType, src, trg *tensor.Tensor[float32, B], params *ParameterSet[B]) (*tensor.Tensor[float32, B], error) {
	return attention.Score(scoreType, src, trg, params)
}

// PairwiseMask builds the [batch, Ls, Lt] mask from two validity masks.
func PairwiseMask[B tensor.Backend](srcMask, trgMask *tensor.Tensor[float32, B], excludeSelf bool) (*tensor.Tensor[float32, B], error) {
	return attention.PairwiseMask(srcMask, trgMask, excludeSelf)
}

// MaskedSoftmax normalises scores along axis over unmasked positions.
func MaskedSoftmax[B tensor.Backend](scores, mask *tensor.Tensor[float32, B], axis int) (*tensor.Tensor[float32, B], error) {
	return attention.MaskedSoftmax(scores, mask, axis)
}

// Project applies w ([Din, Dout]) along the feature axis of x ([batch, L, Din]).
func Project[B tensor.Backend](x, w *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return attention.Project(x, w)
}

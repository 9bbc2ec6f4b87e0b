package attention

import (
	"github.com/born-ml/attend/internal/nn"
	"github.com/born-ml/attend/internal/tensor"
	"github.com/pkg/errors"
)

// Layer kinds accepted by NewLayer.
const (
	KindAttention      = "att"
	KindMaxAttention   = "max_att"
	KindHeadAttention  = "head_att"
	KindGatedAttention = "gated_att"
)

// Kinds returns the layer kinds NewLayer accepts.
func Kinds() []string {
	return []string{KindAttention, KindMaxAttention, KindHeadAttention, KindGatedAttention}
}

// Layer is the common surface of every attention layer.
type Layer[B tensor.Backend] interface {
	// Forward returns the layer output and the output mask, which is
	// always srcMask itself.
	Forward(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B], error)

	// ForwardWithWeights also returns the normalised weights.
	ForwardWithWeights(src, trg, srcMask, trgMask *tensor.Tensor[float32, B]) (out, outMask, weights *tensor.Tensor[float32, B], err error)

	Parameters() []*nn.Parameter[B]
	Kind() string
	Name() string
	OutputDim() int
}

// LayerSpec holds the settings of any layer kind. QueryDim, KeyDim and
// ValueDim are only read by head attention; AttDim only by the others.
type LayerSpec struct {
	ScoreType ScoreType
	SrcDim    int
	TrgDim    int
	AttDim    int
	QueryDim  int
	KeyDim    int
	ValueDim  int
	IsSelf    bool
	Trainable bool
}

// Config returns the Attention/MaxAttention/GatedAttention configuration.
func (s LayerSpec) Config() Config {
	return Config{
		ScoreType: s.ScoreType,
		SrcDim:    s.SrcDim,
		TrgDim:    s.TrgDim,
		AttDim:    s.AttDim,
		IsSelf:    s.IsSelf,
		Trainable: s.Trainable,
	}
}

// HeadConfig returns the HeadAttention configuration.
func (s LayerSpec) HeadConfig() HeadConfig {
	return HeadConfig{
		ScoreType: s.ScoreType,
		SrcDim:    s.SrcDim,
		TrgDim:    s.TrgDim,
		QueryDim:  s.QueryDim,
		KeyDim:    s.KeyDim,
		ValueDim:  s.ValueDim,
		IsSelf:    s.IsSelf,
		Trainable: s.Trainable,
	}
}

// NewLayer creates a layer of the given kind. Unknown kinds return
// ErrUnsupportedVariant.
//
// Example:
//
//	layer, err := attention.NewLayer("max_att", attention.LayerSpec{
//	    ScoreType: attention.Bilinear, SrcDim: 128, TrgDim: 64,
//	}, backend)
func NewLayer[B tensor.Backend](kind string, spec LayerSpec, backend B, opts ...Option) (Layer[B], error) {
	var (
		layer Layer[B]
		err   error
	)
	switch kind {
	case KindAttention:
		layer, err = NewAttention(spec.Config(), backend, opts...)
	case KindMaxAttention:
		layer, err = NewMaxAttention(spec.Config(), backend, opts...)
	case KindHeadAttention:
		layer, err = NewHeadAttention(spec.HeadConfig(), backend, opts...)
	case KindGatedAttention:
		layer, err = NewGatedAttention(spec.Config(), backend, opts...)
	default:
		return nil, errors.Wrapf(ErrUnsupportedVariant, "layer kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return layer, nil
}

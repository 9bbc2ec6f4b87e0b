// Package config loads attention layer definitions from YAML files.
//
// A layer file looks like:
//
//	kind: head_att
//	score_type: scaled_dot
//	src_dim: 64
//	trg_dim: 32
//	query_dim: 16
//	key_dim: 16
//	value_dim: 32
//	seed: 7
//	backend: cpu
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/attend/internal/attention"
)

// Backend names accepted in layer files.
const (
	BackendCPU    = "cpu"
	BackendWebGPU = "webgpu"
)

// LayerFile is the on-disk description of one attention layer.
type LayerFile struct {
	Kind      string              `yaml:"kind"`
	ScoreType attention.ScoreType `yaml:"score_type"`
	SrcDim    int                 `yaml:"src_dim"`
	TrgDim    int                 `yaml:"trg_dim"`
	AttDim    int                 `yaml:"att_dim,omitempty"`
	QueryDim  int                 `yaml:"query_dim,omitempty"`
	KeyDim    int                 `yaml:"key_dim,omitempty"`
	ValueDim  int                 `yaml:"value_dim,omitempty"`
	IsSelf    bool                `yaml:"is_self,omitempty"`
	Trainable bool                `yaml:"trainable"`
	Seed      int64               `yaml:"seed,omitempty"`
	Backend   string              `yaml:"backend,omitempty"`
}

// Default returns the layer used when no file is given: dot attention over
// 32-wide sequences on the CPU.
func Default() LayerFile {
	return LayerFile{
		Kind:      attention.KindAttention,
		ScoreType: attention.Dot,
		SrcDim:    32,
		TrgDim:    32,
		Trainable: true,
		Seed:      1,
		Backend:   BackendCPU,
	}
}

// Load reads and validates the layer file at path.
func Load(path string) (LayerFile, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line.
	if err != nil {
		return LayerFile{}, errors.Wrapf(err, "open layer file %s", path)
	}
	defer f.Close() //nolint:errcheck // read-only file.

	lf, err := Decode(f)
	if err != nil {
		return LayerFile{}, errors.Wrapf(err, "layer file %s", path)
	}
	return lf, nil
}

// Decode parses a layer definition. Missing kind and backend fall back to
// "att" and "cpu"; unknown fields are rejected.
func Decode(r io.Reader) (LayerFile, error) {
	lf := LayerFile{Trainable: true}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&lf); err != nil && !errors.Is(err, io.EOF) {
		return LayerFile{}, errors.Wrap(err, "decode yaml")
	}
	if lf.Kind == "" {
		lf.Kind = attention.KindAttention
	}
	if lf.Backend == "" {
		lf.Backend = BackendCPU
	}
	if err := lf.Validate(); err != nil {
		return LayerFile{}, err
	}
	return lf, nil
}

// Encode writes lf as YAML.
func (lf LayerFile) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lf); err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	return buf.Bytes(), nil
}

// Spec returns the layer settings for attention.NewLayer.
func (lf LayerFile) Spec() attention.LayerSpec {
	return attention.LayerSpec{
		ScoreType: lf.ScoreType,
		SrcDim:    lf.SrcDim,
		TrgDim:    lf.TrgDim,
		AttDim:    lf.AttDim,
		QueryDim:  lf.QueryDim,
		KeyDim:    lf.KeyDim,
		ValueDim:  lf.ValueDim,
		IsSelf:    lf.IsSelf,
		Trainable: lf.Trainable,
	}
}

// Validate checks the kind, the backend name and the layer dimensions.
func (lf LayerFile) Validate() error {
	switch lf.Backend {
	case BackendCPU, BackendWebGPU:
	default:
		return errors.Errorf("unknown backend %q (want %s or %s)", lf.Backend, BackendCPU, BackendWebGPU)
	}

	spec := lf.Spec()
	switch lf.Kind {
	case attention.KindHeadAttention:
		return spec.HeadConfig().Validate()
	case attention.KindAttention, attention.KindMaxAttention, attention.KindGatedAttention:
		return spec.Config().Validate()
	default:
		return errors.Wrapf(attention.ErrUnsupportedVariant, "layer kind %q", lf.Kind)
	}
}

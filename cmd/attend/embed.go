package main

import (
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/attend/tensor"
	"github.com/born-ml/attend/tokenizer"
)

// embed fills dst with a pseudo-random vector in [-1, 1) keyed on the
// normalised token text, so equal words get equal vectors whatever their ID.
func embed(piece string, dst []float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(piece))))
	rng := rand.New(rand.NewSource(int64(h.Sum64()))) //nolint:gosec // G115,G404: deterministic embedding seed.
	for k := range dst {
		dst[k] = float32(rng.Float64()*2 - 1)
	}
}

// embedBatch pads seqs and returns their [n, maxLen, dim] embeddings with
// the matching [n, maxLen, 1] validity mask. Padded positions are zero.
func embedBatch[B tensor.Backend](backend B, tok tokenizer.Tokenizer, seqs [][]int32, dim, maxLen int) (x, mask *tensor.Tensor[float32, B], batch tokenizer.Batch, err error) {
	batch = tokenizer.PadBatch(seqs, tok.PadToken(), maxLen)
	if batch.MaxLen == 0 {
		return nil, nil, batch, errors.New("embed: every sequence is empty")
	}

	n := len(seqs)
	data := make([]float32, n*batch.MaxLen*dim)
	for i, ids := range batch.IDs {
		for j := 0; j < batch.Lengths[i]; j++ {
			off := (i*batch.MaxLen + j) * dim
			embed(tok.Piece(ids[j]), data[off:off+dim])
		}
	}

	x, err = tensor.FromSlice(data, tensor.Shape{n, batch.MaxLen, dim}, backend)
	if err != nil {
		return nil, nil, batch, errors.Wrap(err, "embed")
	}
	mask, err = tensor.FromSlice(batch.FlatMask(), tensor.Shape{n, batch.MaxLen, 1}, backend)
	if err != nil {
		return nil, nil, batch, errors.Wrap(err, "embed mask")
	}
	return x, mask, batch, nil
}

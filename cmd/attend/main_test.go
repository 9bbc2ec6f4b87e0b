package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/attend/attention"
	"github.com/born-ml/attend/backend/cpu"
	"github.com/born-ml/attend/internal/config"
	"github.com/born-ml/attend/tokenizer"
)

func TestEmbed_Deterministic(t *testing.T) {
	a := make([]float32, 8)
	b := make([]float32, 8)
	c := make([]float32, 8)
	embed("Hamlet", a)
	embed(" hamlet", b)
	embed("ophelia", c)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for _, v := range a {
		assert.True(t, v >= -1 && v < 1)
	}
}

func TestEmbedBatch(t *testing.T) {
	backend := cpu.New()
	tok := tokenizer.NewWhitespace(true)
	a, err := tok.Encode("to be or not")
	require.NoError(t, err)
	b, err := tok.Encode("to be")
	require.NoError(t, err)

	x, mask, batch, err := embedBatch(backend, tok, [][]int32{a, b}, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, []int(x.Shape()))
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1, 0, 0}, mask.Data())
	assert.Equal(t, []int{4, 2}, batch.Lengths)

	data := x.Data()
	assert.Equal(t, data[0:12], data[24:36], "same words embed the same")
	assert.Equal(t, make([]float32, 12), data[36:48], "padding is zero")

	_, _, _, err = embedBatch(backend, tok, [][]int32{{}}, 6, 0)
	assert.Error(t, err)
}

func TestAlign(t *testing.T) {
	for _, kind := range []string{attention.KindAttention, attention.KindMaxAttention} {
		t.Run(kind, func(t *testing.T) {
			lf := config.Default()
			lf.Kind = kind
			lf.ScoreType = attention.ScaledDot

			var out bytes.Buffer
			err := align(&out, cpu.New(), lf, tokenizer.NewWhitespace(true), "who wrote hamlet", "shakespeare wrote hamlet")
			require.NoError(t, err)
			assert.Contains(t, out.String(), "layer "+kind)
			assert.Contains(t, out.String(), `"shakespeare"`)
			if kind == attention.KindAttention {
				// Identical words have identical embeddings and dominate the scaled dot product.
				assert.Regexp(t, `"hamlet"\s+"hamlet"`, out.String())
			}
		})
	}
}

func TestAlign_EmptyText(t *testing.T) {
	err := align(&bytes.Buffer{}, cpu.New(), config.Default(), tokenizer.NewWhitespace(true), "?", "")
	assert.Error(t, err)
}

func TestPrintVariants(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printVariants(&out, attention.Dims{Src: 4, Trg: 3, Att: 2}))
	text := out.String()
	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Len(t, lines, 1+len(attention.ScoreTypes()))
	assert.Contains(t, text, "bilinear")
	assert.Contains(t, text, "attention dimension mismatch", "dot needs equal widths")
}

func TestBench(t *testing.T) {
	lf := config.Default()
	lf.Kind = attention.KindHeadAttention
	lf.QueryDim, lf.KeyDim, lf.ValueDim = 8, 8, 4

	var out bytes.Buffer
	require.NoError(t, bench(&out, cpu.New(), lf, benchOptions{batch: 2, length: 5, iters: 3, quiet: true}))
	assert.Contains(t, out.String(), "layer:       head_att (dot)")
	assert.Contains(t, out.String(), "input:       batch 2, length 5")
}

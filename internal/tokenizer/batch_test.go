package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadBatch(t *testing.T) {
	seqs := [][]int32{{5, 6, 7}, {8}, {}}

	t.Run("pads to longest", func(t *testing.T) {
		b := PadBatch(seqs, 0, 0)
		assert.Equal(t, 3, b.MaxLen)
		assert.Equal(t, [][]int32{{5, 6, 7}, {8, 0, 0}, {0, 0, 0}}, b.IDs)
		assert.Equal(t, [][]float32{{1, 1, 1}, {1, 0, 0}, {0, 0, 0}}, b.Mask)
		assert.Equal(t, []int{3, 1, 0}, b.Lengths)
		assert.Equal(t, []float32{1, 1, 1, 1, 0, 0, 0, 0, 0}, b.FlatMask())
	})

	t.Run("truncates to max length", func(t *testing.T) {
		b := PadBatch(seqs, 9, 2)
		assert.Equal(t, [][]int32{{5, 6}, {8, 9}, {9, 9}}, b.IDs)
		assert.Equal(t, []int{2, 1, 0}, b.Lengths)
	})

	t.Run("negative pad becomes zero", func(t *testing.T) {
		b := PadBatch([][]int32{{3}, {4, 4}}, -1, 0)
		assert.Equal(t, [][]int32{{3, 0}, {4, 4}}, b.IDs)
	})

	t.Run("input untouched", func(t *testing.T) {
		in := [][]int32{{1, 2}}
		PadBatch(in, 0, 4)
		assert.Equal(t, [][]int32{{1, 2}}, in)
	})
}

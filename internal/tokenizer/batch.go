package tokenizer

// Batch is a set of token sequences padded to a common length.
type Batch struct {
	// IDs holds one row per sequence, padded with the pad ID.
	IDs [][]int32

	// Mask is 1 at real tokens and 0 at padding.
	Mask [][]float32

	// Lengths holds the unpadded length of each sequence after truncation.
	Lengths []int

	// MaxLen is the padded length of every row.
	MaxLen int
}

// PadBatch pads seqs to a common length. With maxLen > 0 longer sequences
// are truncated and every row has exactly maxLen entries; otherwise rows
// are padded to the longest sequence. A negative pad ID is replaced by 0;
// padded positions are identified by the mask, not the ID.
func PadBatch(seqs [][]int32, pad int32, maxLen int) Batch {
	if pad < 0 {
		pad = 0
	}
	if maxLen <= 0 {
		for _, s := range seqs {
			maxLen = max(maxLen, len(s))
		}
	}

	b := Batch{
		IDs:     make([][]int32, len(seqs)),
		Mask:    make([][]float32, len(seqs)),
		Lengths: make([]int, len(seqs)),
		MaxLen:  maxLen,
	}
	for i, s := range seqs {
		n := min(len(s), maxLen)
		ids := make([]int32, maxLen)
		mask := make([]float32, maxLen)
		copy(ids, s[:n])
		for j := range ids {
			if j < n {
				mask[j] = 1
			} else {
				ids[j] = pad
			}
		}
		b.IDs[i], b.Mask[i], b.Lengths[i] = ids, mask, n
	}
	return b
}

// FlatMask returns the mask as one row-major slice, the layout of a
// [batch, MaxLen, 1] mask tensor.
func (b Batch) FlatMask() []float32 {
	flat := make([]float32, 0, len(b.Mask)*b.MaxLen)
	for _, m := range b.Mask {
		flat = append(flat, m...)
	}
	return flat
}

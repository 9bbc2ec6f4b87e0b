// Package tokenizer turns text into token IDs and padded batches with
// validity masks, the input format of the attention layers.
//
// Tokenizers:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//   - Whitespace: word-level vocabulary grown from the text it sees
//
// Example usage:
//
//	tok := tokenizer.NewWhitespace(true)
//	q, _ := tok.Encode("Who wrote Hamlet?")
//	p, _ := tok.Encode("Hamlet was written by Shakespeare.")
//
//	batch := tokenizer.PadBatch([][]int32{q, p}, tok.PadToken(), 0)
//	// batch.IDs:  [2][6]int32, padded with the pad ID
//	// batch.Mask: [2][6]float32, 1 for real tokens and 0 for padding
package tokenizer

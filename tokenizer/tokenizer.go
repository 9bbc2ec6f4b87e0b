// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer turns text into the padded token batches and masks the
// attention layers consume.
//
// Supported tokenizers:
//   - Whitespace: word-level vocabulary grown on the fly
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//
// Example usage:
//
//	import "github.com/born-ml/attend/tokenizer"
//
//	tok, err := tokenizer.New("whitespace")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	a, _ := tok.Encode("who wrote hamlet")
//	b, _ := tok.Encode("shakespeare")
//	batch := tokenizer.PadBatch([][]int32{a, b}, tok.PadToken(), 0)
//	// batch.FlatMask() is the [2, batch.MaxLen, 1] sequence mask.
package tokenizer

import (
	"github.com/born-ml/attend/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// Whitespace is a word-level tokenizer with a growable vocabulary.
type Whitespace = tokenizer.Whitespace

// Batch is a set of token sequences padded to a common length.
type Batch = tokenizer.Batch

// Reserved IDs of the whitespace tokenizer.
const (
	WhitespacePad = tokenizer.WhitespacePad
	WhitespaceUnk = tokenizer.WhitespaceUnk
)

// New creates a tokenizer by name: "whitespace", "tiktoken" or a tiktoken
// encoding name.
func New(name string) (Tokenizer, error) {
	return tokenizer.New(name)
}

// NewWhitespace creates an empty whitespace tokenizer.
func NewWhitespace(lower bool) *Whitespace {
	return tokenizer.NewWhitespace(lower)
}

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base" (GPT-4), "p50k_base" (GPT-3).
func NewTikToken(encodingName string) (Tokenizer, error) {
	tok, err := tokenizer.NewTikToken(encodingName)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
//
// Example models: "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002".
func NewTikTokenForModel(modelName string) (Tokenizer, error) {
	tok, err := tokenizer.NewTikTokenForModel(modelName)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// PadBatch pads seqs to a common length, truncating to maxLen when it is
// positive.
func PadBatch(seqs [][]int32, pad int32, maxLen int) Batch {
	return tokenizer.PadBatch(seqs, pad, maxLen)
}

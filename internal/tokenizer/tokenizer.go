package tokenizer

// Tokenizer is the core interface for text tokenization.
//
// All tokenizer implementations (tiktoken, whitespace) implement this interface.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// Piece returns the surface text of a single token.
	Piece(token int32) string

	// VocabSize returns the total vocabulary size.
	VocabSize() int

	// PadToken returns the padding token ID.
	// Returns -1 if not applicable.
	PadToken() int32

	// Name returns the tokenizer name.
	Name() string
}

// New creates a tokenizer by name: "whitespace" or a tiktoken encoding such
// as "cl100k_base". "tiktoken" selects cl100k_base.
func New(name string) (Tokenizer, error) {
	if name == "whitespace" {
		return NewWhitespace(true), nil
	}
	if name == "tiktoken" {
		name = encodingCL100kBase
	}
	tok, err := NewTikToken(name)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

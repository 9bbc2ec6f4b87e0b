package tokenizer

import (
	"strings"
	"sync"
	"unicode"
)

// Reserved IDs of the whitespace tokenizer.
const (
	WhitespacePad int32 = 0
	WhitespaceUnk int32 = 1
)

// Whitespace is a word-level tokenizer. Words are runs of letters and
// digits; every other non-space rune is a token of its own. New words get
// the next free ID until Freeze is called, after which they map to
// WhitespaceUnk. It is safe for concurrent use.
type Whitespace struct {
	mu     sync.RWMutex
	lower  bool
	frozen bool
	ids    map[string]int32
	words  []string
}

// NewWhitespace creates an empty whitespace tokenizer. With lower set,
// words are lower-cased before lookup.
func NewWhitespace(lower bool) *Whitespace {
	return &Whitespace{
		lower: lower,
		ids:   map[string]int32{"<pad>": WhitespacePad, "<unk>": WhitespaceUnk},
		words: []string{"<pad>", "<unk>"},
	}
}

// Split returns the words of text without assigning IDs.
func (w *Whitespace) Split(text string) []string {
	var (
		words []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if w.lower {
				r = unicode.ToLower(r)
			}
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			words = append(words, string(r))
		}
	}
	flush()
	return words
}

// Encode converts text to token IDs, growing the vocabulary unless frozen.
func (w *Whitespace) Encode(text string) ([]int32, error) {
	words := w.Split(text)
	ids := make([]int32, len(words))

	w.mu.Lock()
	defer w.mu.Unlock()
	for i, word := range words {
		id, ok := w.ids[word]
		switch {
		case ok:
		case w.frozen:
			id = WhitespaceUnk
		default:
			id = int32(len(w.words)) //nolint:gosec // G115: vocabulary stays far below 2^31.
			w.ids[word] = id
			w.words = append(w.words, word)
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode joins the words of tokens with single spaces. Padding is skipped.
func (w *Whitespace) Decode(tokens []int32) (string, error) {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == WhitespacePad {
			continue
		}
		parts = append(parts, w.Piece(tok))
	}
	return strings.Join(parts, " "), nil
}

// Piece returns the word of token, or "<unk>" for unknown IDs.
func (w *Whitespace) Piece(token int32) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if token < 0 || int(token) >= len(w.words) {
		return w.words[WhitespaceUnk]
	}
	return w.words[token]
}

// Freeze stops vocabulary growth.
func (w *Whitespace) Freeze() {
	w.mu.Lock()
	w.frozen = true
	w.mu.Unlock()
}

// VocabSize returns the number of known words including the reserved ones.
func (w *Whitespace) VocabSize() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.words)
}

// PadToken returns WhitespacePad.
func (w *Whitespace) PadToken() int32 {
	return WhitespacePad
}

// Name returns "whitespace".
func (w *Whitespace) Name() string {
	return "whitespace"
}

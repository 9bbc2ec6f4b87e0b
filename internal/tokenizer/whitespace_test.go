package tokenizer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhitespace_Split(t *testing.T) {
	tests := []struct {
		name  string
		lower bool
		text  string
		want  []string
	}{
		{"words and punctuation", true, "Who wrote Hamlet?", []string{"who", "wrote", "hamlet", "?"}},
		{"keeps case", false, "Who wrote", []string{"Who", "wrote"}},
		{"collapses spaces", true, "  a \t b\n", []string{"a", "b"}},
		{"digits and unicode", true, "R2D2 über 世界", []string{"r2d2", "über", "世界"}},
		{"empty", true, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewWhitespace(tt.lower).Split(tt.text))
		})
	}
}

func TestWhitespace_Encode(t *testing.T) {
	tok := NewWhitespace(true)
	assert.Equal(t, 2, tok.VocabSize())

	ids, err := tok.Encode("the cat saw the dog")
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 3, 4, 2, 5}, ids)
	assert.Equal(t, 6, tok.VocabSize())

	text, err := tok.Decode(append(ids, WhitespacePad, WhitespacePad))
	require.NoError(t, err)
	assert.Equal(t, "the cat saw the dog", text)
	assert.Equal(t, "cat", tok.Piece(3))
	assert.Equal(t, "<unk>", tok.Piece(99))

	tok.Freeze()
	ids, err = tok.Encode("the bird")
	require.NoError(t, err)
	assert.Equal(t, []int32{2, WhitespaceUnk}, ids)
	assert.Equal(t, 6, tok.VocabSize())
}

func TestWhitespace_ConcurrentEncode(t *testing.T) {
	tok := NewWhitespace(true)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tok.Encode("one two three four")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ids, err := tok.Encode("one two three four")
	require.NoError(t, err)
	assert.Equal(t, 6, tok.VocabSize())
	assert.ElementsMatch(t, []int32{2, 3, 4, 5}, ids)
}

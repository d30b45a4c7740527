package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reassemble(chunks []string, overlap int) string {
	var b strings.Builder
	for i, chunk := range chunks {
		runes := []rune(chunk)
		if i > 0 {
			runes = runes[overlap:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func TestSplitText_Empty(t *testing.T) {
	assert.Nil(t, SplitText("", 1000, 200))
}

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	text := "a short document that fits in one chunk"
	chunks := SplitText(text, 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitText_ChunkSizeRespected(t *testing.T) {
	text := strings.Repeat("some words that go on and on. ", 200)
	chunks := SplitText(text, 100, 20)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100)
	}
}

func TestSplitText_OverlapShared(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon. ", 50)
	overlap := 20
	chunks := SplitText(text, 100, overlap)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		next := []rune(chunks[i])
		tail := string(prev[len(prev)-overlap:])
		head := string(next[:overlap])
		assert.Equal(t, tail, head, "chunk %d should start with chunk %d's tail", i, i-1)
	}
}

func TestSplitText_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
	}{
		{"paragraphs", strings.Repeat("First paragraph with details.\n\nSecond paragraph follows here.\n\n", 30), 120, 30},
		{"sentences", strings.Repeat("A sentence ends here. Another one follows! Is that all? ", 40), 150, 40},
		{"no boundaries", strings.Repeat("x", 2500), 400, 100},
		{"unicode", strings.Repeat("héllo wörld. ünïcode cöntent hère. ", 60), 90, 25},
		{"zero overlap", strings.Repeat("plain words separated by spaces ", 50), 128, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			require.NotEmpty(t, chunks)
			assert.Equal(t, tt.text, reassemble(chunks, tt.overlap))
		})
	}
}

func TestSplitText_PrefersParagraphBoundary(t *testing.T) {
	text := "First paragraph sits here with some content.\n\nSecond paragraph continues with more words than fit. " +
		strings.Repeat("filler ", 40)
	chunks := SplitText(text, 100, 10)
	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"), "first cut should land on the paragraph break")
}

func TestSplitText_InvalidOverlapIgnored(t *testing.T) {
	text := strings.Repeat("words in a row ", 40)
	chunks := SplitText(text, 50, 50)
	require.NotEmpty(t, chunks)
	assert.Equal(t, text, reassemble(chunks, 0))
}

func TestSplitText_DefaultsApplied(t *testing.T) {
	text := strings.Repeat("content ", 500)
	chunks := SplitText(text, 0, -1)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), DefaultChunkSize)
	}
	assert.Equal(t, text, reassemble(chunks, 0))
}

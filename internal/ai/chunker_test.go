package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkMarkdownEmptyInput(t *testing.T) {
	require.Empty(t, ChunkMarkdown(""))
	require.Empty(t, ChunkMarkdown("   \n\n  "))
}

func TestChunkMarkdownSingleParagraph(t *testing.T) {
	chunks := ChunkMarkdown("just a short paragraph")
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0].Text, "just a short paragraph")
	require.Equal(t, 0, chunks[0].Position)
	require.Equal(t, 1, chunks[0].Page)
}

func TestChunkMarkdownHeadingsStartNewChunks(t *testing.T) {
	md := "# Alpha\n\nfirst section body\n\n# Beta\n\nsecond section body\n"
	chunks := ChunkMarkdown(md)
	require.Len(t, chunks, 2)
	require.True(t, strings.HasPrefix(chunks[0].Text, "Alpha"))
	require.Contains(t, chunks[0].Text, "first section body")
	require.True(t, strings.HasPrefix(chunks[1].Text, "Beta"))
	require.Contains(t, chunks[1].Text, "second section body")
	require.Equal(t, 0, chunks[0].Position)
	require.Equal(t, 1, chunks[1].Position)
}

func TestChunkMarkdownLongTextSplitsWithOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString(strings.Repeat("word ", 30))
		sb.WriteString("\n\n")
	}
	chunks := ChunkMarkdown(sb.String())
	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		require.Equal(t, i, chunk.Position)
		require.LessOrEqual(t, estimateTokens(chunk.Text), chunkTokenBudget+chunkOverlapTokens+1)
	}
}

func TestChunkMarkdownKeepsFencedCodeIntact(t *testing.T) {
	md := "# Usage\n\nsome intro\n\n```go\nfunc main() {}\n```\n"
	chunks := ChunkMarkdown(md)
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0].Text, "```go")
	require.Contains(t, chunks[0].Text, "func main() {}")
}

func TestEstimateTokensCountsCJKRunes(t *testing.T) {
	require.Equal(t, 2, estimateTokens("hello world"))
	// Each CJK rune counts on its own, plus one field.
	require.Equal(t, 3, estimateTokens("你好"))
}

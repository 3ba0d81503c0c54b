package ai

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	chunkTokenBudget   = 400
	chunkOverlapTokens = 80
)

// TextChunk is one embeddable fragment of an extracted document. Page is a
// coarse locator derived from the chunk position, good enough for
// citations.
type TextChunk struct {
	Text     string
	Position int
	Page     int
}

// ChunkMarkdown splits extracted markdown into token-bounded fragments
// along the document's block structure. Top-level headings start a fresh
// chunk and are prepended as context so fragments stay searchable on their
// own; adjacent text chunks share a small overlap.
func ChunkMarkdown(markdown string) []TextChunk {
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	var chunks []TextChunk
	var currentChunk []string
	var currentTokens int
	var currentHeading string
	position := 0

	flush := func() {
		if len(currentChunk) == 0 {
			return
		}
		content := strings.Join(currentChunk, "\n\n")
		if currentHeading != "" {
			content = currentHeading + "\n" + content
		}
		chunks = append(chunks, TextChunk{
			Text:     content,
			Position: position,
			Page:     position + 1,
		})

		if len(currentChunk) > 1 {
			overlapTokens := 0
			var overlapParts []string
			for i := len(currentChunk) - 1; i >= 0; i-- {
				t := estimateTokens(currentChunk[i])
				if overlapTokens+t > chunkOverlapTokens {
					break
				}
				overlapTokens += t
				overlapParts = append([]string{currentChunk[i]}, overlapParts...)
			}
			currentChunk = overlapParts
			currentTokens = overlapTokens
		} else {
			currentChunk = nil
			currentTokens = 0
		}
		position++
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level == 1 || n.Level == 2 {
				flush()
				currentHeading = string(n.Text(reader.Source()))
			} else {
				txt := string(n.Text(reader.Source()))
				currentChunk = append(currentChunk, txt)
				currentTokens += estimateTokens(txt)
			}
		case *ast.FencedCodeBlock:
			lang := string(n.Language(reader.Source()))
			var code strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				code.Write(line.Value(reader.Source()))
			}
			block := "```" + lang + "\n" + code.String() + "\n```"
			tokens := estimateTokens(block)
			if currentTokens+tokens > chunkTokenBudget {
				flush()
			}
			currentChunk = append(currentChunk, block)
			currentTokens += tokens
		default:
			txt := extractText(n, reader.Source())
			if txt == "" {
				continue
			}
			tokens := estimateTokens(txt)
			if currentTokens+tokens > chunkTokenBudget {
				flush()
			}
			currentChunk = append(currentChunk, txt)
			currentTokens += tokens
		}
	}
	flush()
	return chunks
}

func estimateTokens(text string) int {
	// 1 token per word for latin text, 1 per rune for CJK.
	count := 0
	for _, r := range text {
		if r > 127 {
			count++
		}
	}
	count += len(strings.Fields(text))
	if count == 0 && len(text) > 0 {
		return 1
	}
	return count
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

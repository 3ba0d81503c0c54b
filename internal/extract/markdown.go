package extract

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// markdownExtractor passes textual uploads through unchanged. Markdown
// keeps its structure so the chunker can split along headings.
type markdownExtractor struct{}

func init() {
	Register("markdown", func(args interface{}) (Extractor, error) {
		return &markdownExtractor{}, nil
	})
}

func (e *markdownExtractor) Extract(ctx context.Context, r io.Reader, mimeType string) (*Result, error) {
	_ = ctx
	if !isTextual(mimeType) {
		return nil, fmt.Errorf("markdown extractor cannot handle %s", mimeType)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Result{Text: string(data), Confidence: 1.0}, nil
}

func isTextual(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mt, ";"); idx >= 0 {
		mt = strings.TrimSpace(mt[:idx])
	}
	switch {
	case strings.HasPrefix(mt, "text/"):
		return true
	case mt == "application/json", mt == "application/xml":
		return true
	case mt == "":
		// Unknown type, assume textual and let the chunker cope.
		return true
	default:
		return false
	}
}

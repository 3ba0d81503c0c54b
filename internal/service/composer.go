package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/ai"
	"github.com/docgate-io/docgate/internal/model"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
)

// EmptyAnswer is returned whenever no accessible context exists for a
// query. Callers compare against it, keep the wording stable.
const EmptyAnswer = "I couldn't find any relevant information in the knowledge base for your query."

const citationExcerptChars = 200

// Generator is the text-generation backend the composer calls.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	MaxInputChars() int
}

// ComposeService turns a question plus pre-filtered candidate chunks into
// a grounded answer with citations. It never sees candidates that failed
// access filtering, and it only ever cites chunks it was given.
type ComposeService struct {
	ai Generator
}

func NewComposeService(aiMgr Generator) *ComposeService {
	return &ComposeService{ai: aiMgr}
}

// Compose builds the answer. With no candidates it returns the canonical
// empty answer without calling the model at all: nothing accessible means
// nothing to ground on, and an ungrounded model answer could leak training
// data phrased as fact.
func (s *ComposeService) Compose(ctx context.Context, question string, candidates []model.CandidateChunk) (string, []model.Citation, error) {
	if len(candidates) == 0 {
		return EmptyAnswer, nil, nil
	}
	prompt := s.buildPrompt(question, candidates)
	raw, err := s.ai.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			return "", nil, fmt.Errorf("%w: %v", appErr.ErrCompositionUnavailable, err)
		}
		return "", nil, fmt.Errorf("%w: generate: %v", appErr.ErrCompositionUnavailable, err)
	}
	answer, used := parseSources(raw, len(candidates))
	if len(used) == 0 {
		// Model did not mark its sources, cite everything it was shown.
		logutil.GetLogger(ctx).Debug("no source markers in answer, citing all candidates", zap.Int("candidates", len(candidates)))
		used = allIndices(len(candidates))
	}
	return answer, buildCitations(candidates, used), nil
}

// buildPrompt numbers every candidate so the model can point back at the
// ones it used. Context is truncated from the tail to honour the backend's
// input limit, the top-ranked chunks survive. The question is appended
// after the passages, so its length is reserved up front.
func (s *ComposeService) buildPrompt(question string, candidates []model.CandidateChunk) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using only the numbered context passages below.\n")
	sb.WriteString("If the context does not contain the answer, say so.\n")
	sb.WriteString("End your reply with a line \"SOURCES: \" listing the passage numbers you used, comma separated.\n\n")
	budget := s.ai.MaxInputChars()
	reserved := len("Question: ") + len(question)
	for i, cand := range candidates {
		passage := fmt.Sprintf("[%d] %s (%s)\n%s\n\n", i+1, cand.Title, cand.URI, cand.Text)
		if budget > 0 && sb.Len()+len(passage)+reserved > budget {
			break
		}
		sb.WriteString(passage)
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}

// parseSources strips a trailing "SOURCES: 1,3" line from the model output
// and returns the zero-based candidate indices it names. Out-of-range and
// duplicate numbers are dropped.
func parseSources(raw string, numCandidates int) (string, []int) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	idx := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(lines[i])), "SOURCES:") {
			idx = i
			break
		}
	}
	if idx < 0 {
		return strings.TrimSpace(raw), nil
	}
	marker := strings.TrimSpace(lines[idx])
	answer := strings.TrimSpace(strings.Join(append(lines[:idx:idx], lines[idx+1:]...), "\n"))
	payload := strings.TrimSpace(marker[len("SOURCES:"):])
	seen := map[int]bool{}
	var used []int
	for _, part := range strings.Split(payload, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > numCandidates || seen[n] {
			continue
		}
		seen[n] = true
		used = append(used, n-1)
	}
	return answer, used
}

// buildCitations emits one citation per distinct document among the used
// candidates, keeping rank order. Excerpts are verbatim prefixes of the
// chunk text, never model output.
func buildCitations(candidates []model.CandidateChunk, used []int) []model.Citation {
	seenDoc := map[string]bool{}
	citations := make([]model.Citation, 0, len(used))
	for _, i := range used {
		cand := candidates[i]
		if seenDoc[cand.DocumentID] {
			continue
		}
		seenDoc[cand.DocumentID] = true
		citations = append(citations, model.Citation{
			DocumentID: cand.DocumentID,
			Title:      cand.Title,
			URI:        cand.URI,
			Page:       cand.Page,
			Excerpt:    excerpt(cand.Text),
		})
	}
	return citations
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= citationExcerptChars {
		return text
	}
	return string(runes[:citationExcerptChars]) + "..."
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

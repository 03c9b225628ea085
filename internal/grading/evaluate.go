package grading

import (
	"context"
	"fmt"
	"strings"

	"github.com/akhildhavil09/stugrader/internal/embedding"
)

// Level is the qualitative fulfillment bucket for one requirement.
type Level string

const (
	LevelMet          Level = "Met"
	LevelPartiallyMet Level = "Partially Met"
	LevelNotMet       Level = "Not Met"
)

// Similarity thresholds for level classification. Both comparisons are
// strict: exactly 0.85 is Partially Met, exactly 0.65 is Not Met.
const (
	metThreshold     = 0.85
	partialThreshold = 0.65
)

// FulfillmentResult is the judgment of one criterion against the submission.
//
// Score is the continuous blend of similarity and keyword coverage that
// drives awarded points. Level is the discrete threshold bucket that drives
// feedback wording. The two can disagree (a Met requirement may still earn
// well under full points); this mirrors the original grading model and is
// kept intentionally. See DESIGN.md.
type FulfillmentResult struct {
	Criterion       Criterion
	Score           float64
	Level           Level
	Similarity      float64
	KeywordPresence float64
	Feedback        string
	Suggestions     []string
}

// Evaluator judges criteria against assignment text using a shared embedding
// backend. Safe for concurrent use.
type Evaluator struct {
	embedder embedding.Embedder
}

func NewEvaluator(embedder embedding.Embedder) *Evaluator {
	return &Evaluator{embedder: embedder}
}

// Evaluate scores one criterion. The assignment vector is computed once by
// the caller and reused across all criteria to avoid re-embedding the same
// submission text.
func (e *Evaluator) Evaluate(ctx context.Context, c Criterion, assignmentText string, assignmentVec embedding.Vector) (FulfillmentResult, error) {
	reqVec, err := e.embedder.Embed(ctx, c.Requirement)
	if err != nil {
		return FulfillmentResult{}, fmt.Errorf("embed requirement %q: %w", c.Requirement, err)
	}
	similarity := reqVec.CosineSimilarity(assignmentVec)
	level := classifyLevel(similarity)
	presence := keywordPresence(c.Keywords, assignmentText)

	score := (similarity + presence) / 2
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}

	feedback, suggestions := criterionFeedback(level, c.Category)
	return FulfillmentResult{
		Criterion:       c,
		Score:           score,
		Level:           level,
		Similarity:      similarity,
		KeywordPresence: presence,
		Feedback:        feedback,
		Suggestions:     suggestions,
	}, nil
}

// classifyLevel buckets a similarity into a fulfillment level. Exactly 0.85
// is Partially Met and exactly 0.65 is Not Met.
func classifyLevel(similarity float64) Level {
	switch {
	case similarity > metThreshold:
		return LevelMet
	case similarity > partialThreshold:
		return LevelPartiallyMet
	default:
		return LevelNotMet
	}
}

// keywordPresence is the fraction of keywords found as case-insensitive
// substrings of the assignment. Zero when the keyword set is empty.
func keywordPresence(keywords []string, assignmentText string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	low := strings.ToLower(assignmentText)
	found := 0
	for _, k := range keywords {
		if strings.Contains(low, k) {
			found++
		}
	}
	return float64(found) / float64(len(keywords))
}

func criterionFeedback(level Level, category Category) (string, []string) {
	switch level {
	case LevelMet:
		return fmt.Sprintf("Excellent demonstration of %s requirements.", category),
			[]string{"Consider adding more examples to strengthen your argument."}
	case LevelPartiallyMet:
		return "Basic understanding shown, but needs more depth.",
			[]string{
				"Expand your discussion of key concepts.",
				"Add more specific examples.",
				"Link your ideas more clearly to the requirements.",
			}
	default:
		return "Requirement not adequately addressed.",
			[]string{
				"Review the requirement carefully.",
				"Include specific discussion of required topics.",
				"Add supporting evidence and examples.",
			}
	}
}

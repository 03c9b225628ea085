package grading

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/akhildhavil09/stugrader/internal/embedding"
)

// RequirementFeedback is the per-criterion line of the final report.
type RequirementFeedback struct {
	Requirement            string   `json:"requirement"`
	PointsPossible         float64  `json:"points_possible"`
	PointsEarned           float64  `json:"points_earned"`
	FulfillmentLevel       Level    `json:"fulfillment_level"`
	Feedback               string   `json:"feedback"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

// OverallFeedback summarizes the whole submission.
type OverallFeedback struct {
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	Summary             string   `json:"summary"`
}

// Report is the result of one grading pass, returned to the caller and
// serialized as-is. Not persisted.
type Report struct {
	Score            float64               `json:"score"`
	PointsEarned     float64               `json:"points_earned"`
	TotalPoints      float64               `json:"total_points"`
	DetailedFeedback []RequirementFeedback `json:"detailed_feedback"`
	OverallFeedback  OverallFeedback       `json:"overall_feedback"`
}

// Grader runs the full pipeline: parse rubric, embed the assignment once,
// evaluate every criterion, aggregate into a Report.
type Grader struct {
	embedder  embedding.Embedder
	evaluator *Evaluator
	workers   int
}

type Option func(*Grader)

// WithWorkers enables concurrent criterion evaluation across n goroutines.
// Report ordering is preserved by index regardless of completion order.
func WithWorkers(n int) Option {
	return func(g *Grader) {
		if n > 1 {
			g.workers = n
		}
	}
}

func NewGrader(embedder embedding.Embedder, opts ...Option) *Grader {
	g := &Grader{
		embedder:  embedder,
		evaluator: NewEvaluator(embedder),
		workers:   1,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Grade produces a Report for one rubric/assignment pair. An empty rubric is
// not an error: it yields a zero-score report with empty feedback lists.
func (g *Grader) Grade(ctx context.Context, rubricText, assignmentText string) (Report, error) {
	criteria := ParseRubric(rubricText)
	if len(criteria) == 0 {
		return zeroReport(), nil
	}

	assignmentVec, err := g.embedder.Embed(ctx, assignmentText)
	if err != nil {
		return Report{}, fmt.Errorf("embed assignment: %w", err)
	}

	results, err := g.evaluateAll(ctx, criteria, assignmentText, assignmentVec)
	if err != nil {
		return Report{}, err
	}

	var earned, total float64
	detailed := make([]RequirementFeedback, 0, len(results))
	for _, res := range results {
		pts := res.Criterion.Points * res.Score
		earned += pts
		total += res.Criterion.Points
		detailed = append(detailed, RequirementFeedback{
			Requirement:            res.Criterion.Requirement,
			PointsPossible:         res.Criterion.Points,
			PointsEarned:           round2(pts),
			FulfillmentLevel:       res.Level,
			Feedback:               res.Feedback,
			ImprovementSuggestions: res.Suggestions,
		})
	}

	score := 0.0
	if total > 0 {
		score = round1(earned / total * 100)
	}
	return Report{
		Score:            score,
		PointsEarned:     round2(earned),
		TotalPoints:      round2(total),
		DetailedFeedback: detailed,
		OverallFeedback:  overallFeedback(results),
	}, nil
}

// evaluateAll scores every criterion, fanning out across a bounded pool when
// workers > 1. Results land at their criterion's index; the first error wins.
func (g *Grader) evaluateAll(ctx context.Context, criteria []Criterion, assignmentText string, assignmentVec embedding.Vector) ([]FulfillmentResult, error) {
	results := make([]FulfillmentResult, len(criteria))

	if g.workers <= 1 || len(criteria) < 2 {
		for i, c := range criteria {
			res, err := g.evaluator.Evaluate(ctx, c, assignmentText, assignmentVec)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	indices := make(chan int)
	workers := g.workers
	if workers > len(criteria) {
		workers = len(criteria)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				res, err := g.evaluator.Evaluate(ctx, criteria[i], assignmentText, assignmentVec)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				results[i] = res
			}
		}()
	}
	for i := range criteria {
		indices <- i
	}
	close(indices)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func overallFeedback(results []FulfillmentResult) OverallFeedback {
	strengths := []string{}
	improvements := []string{}
	var met, partial, notMet int
	for _, r := range results {
		switch r.Level {
		case LevelMet:
			met++
			strengths = append(strengths, r.Criterion.Requirement)
		case LevelPartiallyMet:
			partial++
			improvements = append(improvements, r.Criterion.Requirement)
		default:
			notMet++
			improvements = append(improvements, r.Criterion.Requirement)
		}
	}
	summary := fmt.Sprintf("Out of %d requirements, %d were fully met, %d were partially met, and %d need improvement.",
		len(results), met, partial, notMet)
	return OverallFeedback{
		Strengths:           strengths,
		AreasForImprovement: improvements,
		Summary:             summary,
	}
}

func zeroReport() Report {
	return Report{
		DetailedFeedback: []RequirementFeedback{},
		OverallFeedback: OverallFeedback{
			Strengths:           []string{},
			AreasForImprovement: []string{},
			Summary:             "Out of 0 requirements, 0 were fully met, 0 were partially met, and 0 need improvement.",
		},
	}
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

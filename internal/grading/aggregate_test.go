package grading

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/akhildhavil09/stugrader/internal/embedding"
)

func TestGradeEmptyRubric(t *testing.T) {
	g := NewGrader(embedding.NewLocalEmbedder(0))

	for _, rubric := range []string{"", "   \n\n  "} {
		report, err := g.Grade(context.Background(), rubric, "some assignment text")
		if err != nil {
			t.Fatalf("Grade(%q) error: %v", rubric, err)
		}
		if report.Score != 0 || report.TotalPoints != 0 || report.PointsEarned != 0 {
			t.Errorf("empty rubric report = %+v, want all-zero score", report)
		}
		if report.DetailedFeedback == nil || len(report.DetailedFeedback) != 0 {
			t.Errorf("detailed feedback = %v, want empty list", report.DetailedFeedback)
		}
		if len(report.OverallFeedback.Strengths) != 0 || len(report.OverallFeedback.AreasForImprovement) != 0 {
			t.Errorf("overall feedback lists not empty: %+v", report.OverallFeedback)
		}
	}
}

func TestGradeInflationScenario(t *testing.T) {
	g := NewGrader(embedding.NewLocalEmbedder(0))
	rubric := "Students must explain the causes of inflation. 20 points."
	assignment := "We explain the causes of inflation."

	report, err := g.Grade(context.Background(), rubric, assignment)
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalPoints != 40 { // two overlapping cue matches, 20 points each
		t.Fatalf("total points = %v, want 40", report.TotalPoints)
	}
	first := report.DetailedFeedback[0]
	if first.Requirement != "explain the causes of inflation" {
		t.Fatalf("first requirement = %q", first.Requirement)
	}
	if first.FulfillmentLevel != LevelMet {
		t.Errorf("first requirement level = %s, want Met", first.FulfillmentLevel)
	}
	if first.PointsEarned < 18 {
		t.Errorf("first requirement earned %v of 20, want close to full credit", first.PointsEarned)
	}
	found := false
	for _, s := range report.OverallFeedback.Strengths {
		if s == "explain the causes of inflation" {
			found = true
		}
	}
	if !found {
		t.Errorf("strengths = %v, want to include the met requirement", report.OverallFeedback.Strengths)
	}
}

func TestGradeEmptyAssignment(t *testing.T) {
	g := NewGrader(embedding.NewLocalEmbedder(0))
	rubric := "Students must explain the causes of inflation. 20 points.\n\nStudents should analyze market trends. 10 points."

	report, err := g.Grade(context.Background(), rubric, "")
	if err != nil {
		t.Fatal(err)
	}
	if report.Score != 0 || report.PointsEarned != 0 {
		t.Errorf("score = %v, earned = %v, want 0", report.Score, report.PointsEarned)
	}
	for _, fb := range report.DetailedFeedback {
		if fb.FulfillmentLevel != LevelNotMet {
			t.Errorf("%q level = %s, want Not Met", fb.Requirement, fb.FulfillmentLevel)
		}
	}
	if len(report.OverallFeedback.Strengths) != 0 {
		t.Errorf("strengths = %v, want none", report.OverallFeedback.Strengths)
	}
	if len(report.OverallFeedback.AreasForImprovement) != len(report.DetailedFeedback) {
		t.Errorf("areas for improvement should list every requirement")
	}
}

func TestGradeIdempotent(t *testing.T) {
	g := NewGrader(embedding.NewLocalEmbedder(0))
	rubric := "Students must explain supply and demand. 15 points.\n\nShould demonstrate a worked example."
	assignment := "Supply and demand interact through prices. A worked example follows."

	a, err := g.Grade(context.Background(), rubric, assignment)
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.Grade(context.Background(), rubric, assignment)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("reports differ across identical runs:\n%+v\n%+v", a, b)
	}
}

func TestGradeWorkersMatchSequential(t *testing.T) {
	rubric := "Must explain inflation. 20 points.\n\nShould analyze markets. 10 points.\n\nMust demonstrate a model. 5 points.\n\nGeneral quality of writing"
	assignment := "We explain inflation and analyze markets, then demonstrate a model with careful writing."

	seq, err := NewGrader(embedding.NewLocalEmbedder(0)).Grade(context.Background(), rubric, assignment)
	if err != nil {
		t.Fatal(err)
	}
	par, err := NewGrader(embedding.NewLocalEmbedder(0), WithWorkers(4)).Grade(context.Background(), rubric, assignment)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Errorf("parallel report differs from sequential:\n%+v\n%+v", seq, par)
	}
}

func TestGradeSummaryCounts(t *testing.T) {
	g := NewGrader(embedding.NewLocalEmbedder(0))
	report, err := g.Grade(context.Background(), "Must explain gravity. 10 points.", "")
	if err != nil {
		t.Fatal(err)
	}
	want := "Out of 2 requirements, 0 were fully met, 0 were partially met, and 2 need improvement."
	if report.OverallFeedback.Summary != want {
		t.Errorf("summary = %q, want %q", report.OverallFeedback.Summary, want)
	}
}

func TestGradePointsEarnedTracksScore(t *testing.T) {
	g := NewGrader(embedding.NewLocalEmbedder(0))
	rubric := "Must explain the water cycle in detail. 30 points."
	assignment := "The water cycle: evaporation, condensation, precipitation, collection, repeated in detail."

	report, err := g.Grade(context.Background(), rubric, assignment)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, fb := range report.DetailedFeedback {
		if fb.PointsEarned < 0 || fb.PointsEarned > fb.PointsPossible {
			t.Errorf("%q earned %v of %v", fb.Requirement, fb.PointsEarned, fb.PointsPossible)
		}
		sum += fb.PointsEarned
	}
	// Per-item values are rounded to 2 decimals, so allow a small gap.
	if diff := report.PointsEarned - sum; diff > 0.05 || diff < -0.05 {
		t.Errorf("points_earned %v vs summed detail %v", report.PointsEarned, sum)
	}
}

func TestGradeEmbedFailureSurfaces(t *testing.T) {
	emb := &fakeEmbedder{err: embedding.ErrModelUnavailable}
	g := NewGrader(emb)

	_, err := g.Grade(context.Background(), "Must explain gravity. 10 points.", "text")
	if !errors.Is(err, embedding.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestGradeAssignmentEmbeddedOnce(t *testing.T) {
	emb := &fakeEmbedder{def: embedding.Vector{1, 0}}
	g := NewGrader(emb)

	rubric := "Must explain gravity. 10 points.\n\nShould analyze orbits. 5 points."
	if _, err := g.Grade(context.Background(), rubric, "assignment body"); err != nil {
		t.Fatal(err)
	}
	// One call for the assignment plus one per criterion (4 criteria from
	// the two sections' overlapping cues).
	if emb.calls != 5 {
		t.Errorf("embed calls = %d, want 5", emb.calls)
	}
}

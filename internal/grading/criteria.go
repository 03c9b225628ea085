// Package grading implements the rubric-to-criteria extraction and
// assignment scoring engine. A rubric is segmented into sections, each section
// yields one or more weighted Criterion records, and every criterion is judged
// against the submission text by semantic similarity plus keyword coverage.
package grading

import (
	"regexp"
	"strconv"
	"strings"
)

// Category classifies what kind of work a requirement asks for.
type Category string

const (
	CategoryAnalysis       Category = "analysis"
	CategoryImplementation Category = "implementation"
	CategoryUnderstanding  Category = "understanding"
	CategoryDemonstration  Category = "demonstration"
	CategoryGeneral        Category = "general"
)

// Criterion is one weighted, categorized requirement extracted from a rubric.
// Immutable after parsing.
type Criterion struct {
	Requirement string
	Points      float64
	Category    Category
	Keywords    []string
}

const defaultPoints = 10

// sectionSplit breaks a rubric on blank lines so multi-line requirement
// blocks stay together.
var sectionSplit = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

// pointPatterns are tried in order per section; first match wins.
var pointPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*points?`),
	regexp.MustCompile(`(?i)(\d+)\s*marks?`),
	regexp.MustCompile(`(?i)worth\s*(\d+)`),
	regexp.MustCompile(`(?i)value:\s*(\d+)`),
	regexp.MustCompile(`(?i)points:\s*(\d+)`),
}

// cuePatterns introduce requirement clauses. Every match in a section yields
// its own criterion; overlaps are kept.
var cuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)must\s+(.*?)[.!?]`),
	regexp.MustCompile(`(?i)should\s+(.*?)[.!?]`),
	regexp.MustCompile(`(?i)needs? to\s+(.*?)[.!?]`),
	regexp.MustCompile(`(?i)required to\s+(.*?)[.!?]`),
	regexp.MustCompile(`(?i)demonstrate\s+(.*?)[.!?]`),
	regexp.MustCompile(`(?i)explain\s+(.*?)[.!?]`),
	regexp.MustCompile(`(?i)analyze\s+(.*?)[.!?]`),
	regexp.MustCompile(`(?i)discuss\s+(.*?)[.!?]`),
}

// categoryTable maps verbs to a category; entries are checked in order and
// the first hit wins.
var categoryTable = []struct {
	category Category
	markers  []string
}{
	{CategoryAnalysis, []string{"analyze", "examine", "evaluate", "assess"}},
	{CategoryImplementation, []string{"implement", "create", "develop", "build"}},
	{CategoryUnderstanding, []string{"understand", "explain", "describe", "discuss"}},
	{CategoryDemonstration, []string{"demonstrate", "show", "display", "present"}},
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
}

// ParseRubric segments rubric text into sections and extracts an ordered
// sequence of criteria. A section with no recognizable cue becomes a single
// whole-section criterion so no rubric content is silently dropped.
func ParseRubric(rubricText string) []Criterion {
	var criteria []Criterion
	for _, section := range sectionSplit.Split(rubricText, -1) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		points := extractPoints(section)
		for _, req := range extractRequirements(section) {
			criteria = append(criteria, Criterion{
				Requirement: req,
				Points:      points,
				Category:    classifyCategory(req),
				Keywords:    extractKeywords(req),
			})
		}
	}
	return criteria
}

func extractPoints(section string) float64 {
	for _, pat := range pointPatterns {
		if m := pat.FindStringSubmatch(section); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return float64(n)
			}
		}
	}
	return defaultPoints
}

func extractRequirements(section string) []string {
	var reqs []string
	for _, pat := range cuePatterns {
		for _, m := range pat.FindAllStringSubmatch(section, -1) {
			if req := strings.TrimSpace(m[1]); req != "" {
				reqs = append(reqs, req)
			}
		}
	}
	if len(reqs) == 0 {
		reqs = append(reqs, section)
	}
	return reqs
}

func classifyCategory(requirement string) Category {
	low := strings.ToLower(requirement)
	for _, entry := range categoryTable {
		for _, marker := range entry.markers {
			if strings.Contains(low, marker) {
				return entry.category
			}
		}
	}
	return CategoryGeneral
}

// extractKeywords keeps lowercase words longer than 3 characters that are not
// stop words, with surrounding punctuation trimmed, deduplicated in order.
func extractKeywords(requirement string) []string {
	seen := map[string]struct{}{}
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(requirement)) {
		word = strings.Trim(word, ".,;:!?()[]{}\"'")
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

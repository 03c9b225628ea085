// Package embedding provides text embedding generation for semantic grading.
//
// An Embedder turns free text into a dense vector; vectors are compared with
// cosine similarity to judge how close a rubric requirement and a submission
// are in meaning. Implementations can use different backends (HTTP APIs, a
// local deterministic encoder) while maintaining a consistent interface.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrModelUnavailable indicates the embedding backend could not be reached or
// refused the request. Callers surface it; nothing is retried here.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Embed returns a vector embedding for the given text.
	Embed(ctx context.Context, text string) (Vector, error)

	// Dimensions returns the dimensionality of the output vectors.
	Dimensions() int

	// Model returns the model identifier, for logging and cache keys.
	Model() string
}

// Vector is a coordinate in an embedding space.
type Vector []float64

// CosineSimilarity reports how close two vectors are in meaning. 1.0 means
// identical direction, 0.0 means unrelated (or mismatched dimensions).
func (v Vector) CosineSimilarity(other Vector) float64 {
	if len(v) != len(other) || len(v) == 0 {
		return 0.0
	}
	var dot, n1, n2 float64
	for i := range v {
		dot += v[i] * other[i]
		n1 += v[i] * v[i]
		n2 += other[i] * other[i]
	}
	if n1 == 0 || n2 == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(n1) * math.Sqrt(n2))
}

// Encode renders the vector as space-separated float components, the storage
// form used by the cache.
func (v Vector) Encode() string {
	var b strings.Builder
	for i, f := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return b.String()
}

// DecodeVector parses the Encode format back into a Vector.
func DecodeVector(s string) (Vector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Vector{}, nil
	}
	parts := strings.Fields(s)
	v := make(Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("decode vector component %d: %w", i, err)
		}
		v[i] = f
	}
	return v, nil
}

// truncate caps text at max bytes without splitting a rune. Backends bound
// their input this way instead of failing on long documents.
func truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

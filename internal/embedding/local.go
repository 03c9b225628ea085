package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// LocalEmbedder is a deterministic feature-hashed bag-of-words encoder. Tokens
// are lowercased, hashed into a fixed number of buckets, counted, and the
// result is L2-normalized. It needs no network or model files, so it is the
// default backend; identical text always produces the identical vector.
//
// It captures lexical overlap only, not true semantics, which is adequate for
// offline use and for tests of the scoring pipeline.
type LocalEmbedder struct {
	dims     int
	maxBytes int
}

const (
	defaultLocalDims = 512
	defaultMaxBytes  = 8192
)

// NewLocalEmbedder creates a local encoder. dims <= 0 selects the default
// bucket count.
func NewLocalEmbedder(dims int) *LocalEmbedder {
	if dims <= 0 {
		dims = defaultLocalDims
	}
	return &LocalEmbedder{dims: dims, maxBytes: defaultMaxBytes}
}

func (e *LocalEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	vec := make(Vector, e.dims)
	toks := tokenize(truncate(text, e.maxBytes))
	if len(toks) == 0 {
		return vec, nil
	}
	for _, tok := range toks {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dims]++
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (e *LocalEmbedder) Dimensions() int { return e.dims }

func (e *LocalEmbedder) Model() string { return "local-bow" }

// tokenize splits on non-letter/digit runes and lowercases. Single-rune
// fragments are dropped as noise.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

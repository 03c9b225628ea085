package embedding

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"log"
	"time"
)

// CachedEmbedder wraps another Embedder with a content-addressed SQL cache.
// The key is a SHA-256 over model and text, so switching models never serves
// stale vectors. Cache failures degrade to a direct backend call; they are
// logged, never fatal.
type CachedEmbedder struct {
	inner Embedder
	db    *sql.DB
}

// NewCachedEmbedder wraps inner with a cache over db. The embeddings table is
// created by db.Open.
func NewCachedEmbedder(inner Embedder, db *sql.DB) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, db: db}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	key := cacheKey(c.inner.Model(), text)

	var encoded string
	err := c.db.QueryRowContext(ctx, `SELECT vector FROM embeddings WHERE content_hash = $1`, key).Scan(&encoded)
	switch {
	case err == nil:
		vec, decErr := DecodeVector(encoded)
		if decErr == nil {
			return vec, nil
		}
		log.Printf("embedding cache: bad stored vector for %s: %v", key[:12], decErr)
	case !errors.Is(err, sql.ErrNoRows):
		log.Printf("embedding cache: lookup failed: %v", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT INTO embeddings (content_hash, model, vector, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (content_hash) DO NOTHING`,
		key, c.inner.Model(), vec.Encode(), time.Now().Unix()); err != nil {
		log.Printf("embedding cache: store failed: %v", err)
	}
	return vec, nil
}

func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedder) Model() string { return c.inner.Model() }

func cacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

package moderation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// ResultCache stores classifier answers. Implementations report a miss with
// found=false and a nil error.
type ResultCache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedClassifier remembers successful classifications so a retried or
// repeated message does not cost a second external call. Only successes are
// cached and cache errors never change the answer.
type CachedClassifier struct {
	next  Classifier
	cache ResultCache
	ttl   time.Duration
}

func NewCachedClassifier(next Classifier, cache ResultCache, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{next: next, cache: cache, ttl: ttl}
}

func (c *CachedClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	key := cacheKey(text)

	if raw, found, err := c.cache.Get(ctx, key); err != nil {
		fiberlog.Warnf("moderation cache read failed: %v", err)
	} else if found {
		var cached Classification
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	res, err := c.next.Classify(ctx, text)
	if err != nil {
		return res, err
	}

	if raw, err := json.Marshal(res); err == nil {
		if err := c.cache.Set(ctx, key, string(raw), c.ttl); err != nil {
			fiberlog.Warnf("moderation cache write failed: %v", err)
		}
	}
	return res, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "moderation:v1:" + hex.EncodeToString(sum[:])
}

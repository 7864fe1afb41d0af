package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"sentiboard/internal/domain"
)

// Cache stores reconciled batch results keyed by provider, model and lines.
type Cache interface {
	Get(ctx context.Context, key string) ([]domain.AnalysisResult, bool, error)
	Set(ctx context.Context, key string, results []domain.AnalysisResult, ttl time.Duration) error
}

const keyPrefix = "sentiboard:batch:"

// Key is stable for the same ordered lines sent to the same model.
func Key(provider, model string, lines []string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(model))
	for _, line := range lines {
		h.Write([]byte{0})
		h.Write([]byte(line))
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

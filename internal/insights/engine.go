package insights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/ai"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"golang.org/x/sync/singleflight"
)

const sampleSize = 5

// Insights is the narrative payload shown on the dashboard. Degraded is set
// when the model could not be reached and AIInsights carries the failure note.
type Insights struct {
	AIInsights  string    `json:"ai_insights"`
	GeneratedAt time.Time `json:"generated_at"`
	Degraded    bool      `json:"degraded,omitempty"`
}

// Engine produces narrative insights. Identical concurrent requests share one
// model call and successful results are cached when a Cache is set.
type Engine struct {
	analyzer ai.Analyzer
	timeout  time.Duration
	cache    Cache
	group    singleflight.Group
	now      func() time.Time
}

func NewEngine(analyzer ai.Analyzer, timeout time.Duration, cache Cache) *Engine {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Engine{
		analyzer: analyzer,
		timeout:  timeout,
		cache:    cache,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Narrative never fails: any error from the model or the cache is folded
// into a degraded payload.
func (e *Engine) Narrative(ctx context.Context, claims []models.Claim) Insights {
	prompt, err := BuildPrompt(Summarize(claims), claims)
	if err != nil {
		return e.degraded(err)
	}
	key := cacheKey(prompt)

	if e.cache != nil {
		if cached, ok, err := e.cache.Get(ctx, key); err != nil {
			slog.Warn("insights cache read failed", "error", err)
		} else if ok {
			return cached
		}
	}

	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		return e.analyzer.Send(callCtx, prompt, nil)
	})
	if err != nil {
		slog.Warn("insights generation failed", "error", ai.FailureNote(err))
		return e.degraded(err)
	}

	out := Insights{AIInsights: v.(string), GeneratedAt: e.now()}
	if e.cache != nil {
		if err := e.cache.Set(ctx, key, out); err != nil {
			slog.Warn("insights cache write failed", "error", err)
		}
	}
	return out
}

func (e *Engine) degraded(err error) Insights {
	return Insights{
		AIInsights:  "Insights generation failed: " + ai.FailureNote(err),
		GeneratedAt: e.now(),
		Degraded:    true,
	}
}

// BuildPrompt embeds the statistics and the first few raw claims.
func BuildPrompt(stats models.Statistics, claims []models.Claim) (string, error) {
	sample := claims
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	raw, err := json.Marshal(sample)
	if err != nil {
		return "", fmt.Errorf("encode claim sample: %w", err)
	}

	return fmt.Sprintf(`You are an AI assistant specialized in analyzing FRA (Forest Rights Act) claims data and providing policy insights.

Analyze the following FRA claims statistics and provide insights:

Total Claims: %d
Approved: %d
Pending: %d
Under Review: %d
Rejected: %d
Approval Rate: %.2f%%

Sample claims data: %s

Provide insights on:
1. Approval patterns and trends
2. Areas with highest delays
3. Recommendations for better processing
4. Potential fraud indicators
5. Policy recommendations

Return as structured JSON with categories: trends, recommendations, alerts, statistics.`,
		stats.TotalClaims, stats.ApprovedClaims, stats.PendingClaims, stats.UnderReviewClaims,
		stats.RejectedClaims, stats.ApprovalRate, raw), nil
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

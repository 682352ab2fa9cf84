package cordsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"
)

// LLMClient is the pure-RPC boundary to an external large language
// model backend (Azure OpenAI in production). This module only
// specifies the cache that fronts it; the client itself is an
// interface so a real implementation can be swapped in without
// touching the engine.
type LLMClient interface {
	Overview(ctx context.Context, query string) (string, error)
	Summary(ctx context.Context, cordUID string) (string, error)
}

// NopLLMClient is the default client: it returns ErrExternal for every
// call. A real deployment supplies its own LLMClient via
// Engine.SetLLMClient.
type NopLLMClient struct{}

func (NopLLMClient) Overview(ctx context.Context, query string) (string, error) {
	return "", fmt.Errorf("ai overview: %w: no LLM client configured", ErrExternal)
}

func (NopLLMClient) Summary(ctx context.Context, cordUID string) (string, error) {
	return "", fmt.Errorf("ai summary: %w: no LLM client configured", ErrExternal)
}

// aiLimiter rate-limits calls into the external LLM backend so a
// burst of cache misses can't overrun an external quota. One limiter
// instance is shared across both overview and summary calls.
type aiLimiter struct {
	limiter *rate.Limiter
}

func newAILimiter(ratePerSecond float64, burst int) *aiLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 2
	}
	if burst <= 0 {
		burst = 5
	}
	return &aiLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (l *aiLimiter) wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// AIOverview returns a cached overview for query, computing and
// caching it via the configured LLMClient (rate-limited) on a miss.
func (e *Engine) AIOverview(ctx context.Context, query string) (string, bool, error) {
	key := "overview|" + query
	raw, fromCache, err := e.overviewCache.GetOrCompute(key, func() (json.RawMessage, error) {
		if err := e.aiLimiterOrDefault().wait(ctx); err != nil {
			return nil, err
		}
		text, err := e.llm.Overview(ctx, query)
		if err != nil {
			return nil, err
		}
		return json.Marshal(text)
	})
	if err != nil {
		return "", false, err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", false, fmt.Errorf("decode cached overview: %w", err)
	}
	return text, fromCache, nil
}

// AISummary returns a cached summary for cordUID, computing and
// caching it via the configured LLMClient (rate-limited) on a miss.
func (e *Engine) AISummary(ctx context.Context, cordUID string) (string, bool, error) {
	key := "summary|" + cordUID
	raw, fromCache, err := e.summaryCache.GetOrCompute(key, func() (json.RawMessage, error) {
		if err := e.aiLimiterOrDefault().wait(ctx); err != nil {
			return nil, err
		}
		text, err := e.llm.Summary(ctx, cordUID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(text)
	})
	if err != nil {
		return "", false, err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", false, fmt.Errorf("decode cached summary: %w", err)
	}
	return text, fromCache, nil
}

func (e *Engine) aiLimiterOrDefault() *aiLimiter {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.aiRateLimiter == nil {
		e.aiRateLimiter = newAILimiter(2, 5)
	}
	return e.aiRateLimiter
}

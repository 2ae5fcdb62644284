package llm

import (
	"context"
	"log"
	"time"
)

// LoggingProvider is a decorator that logs every LLM request on one line.
type LoggingProvider struct {
	inner Provider
}

func WithLogging(p Provider) Provider {
	return &LoggingProvider{inner: p}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start).Milliseconds()

	purpose, topic := PurposeFrom(ctx), TopicFrom(ctx)
	if err != nil {
		log.Printf("llm request failed model=%s purpose=%s topic=%s latency_ms=%d err=%v", l.inner.ModelID(), purpose, topic, latency, err)
		return nil, err
	}
	log.Printf("llm request model=%s purpose=%s topic=%s latency_ms=%d in=%d out=%d", resp.Model, purpose, topic, latency, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

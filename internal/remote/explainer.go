package remote

import (
	"context"
	"strings"

	"acadtutor/internal/domain"
	"acadtutor/internal/llm"
)

// Explainer asks an LLM for a prose explanation of a topic.
type Explainer struct {
	provider llm.Provider
}

func NewExplainer(provider llm.Provider) *Explainer {
	return &Explainer{provider: provider}
}

func (e *Explainer) Explain(ctx context.Context, req domain.ExplainRequest) (string, error) {
	resp, err := e.provider.Generate(llm.WithPurpose(ctx, llm.PurposeExplain, req.Subject, req.Topic),
		llm.UserPrompt(explainSystemPrompt, explainPrompt(req), nil, 4000, 0.7))
	if err != nil {
		return "", classify(err)
	}
	text := strings.TrimSpace(string(resp.Content))
	if text == "" {
		return "", malformed("empty explanation")
	}
	return text, nil
}

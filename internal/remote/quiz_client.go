package remote

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"acadtutor/internal/domain"
	"acadtutor/internal/llm"
)

// QuizClient asks an LLM for quiz questions. Its output is untrusted and only lightly shaped;
// the synthesizer is responsible for normalizing it.
type QuizClient struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
}

func NewQuizClient(provider llm.Provider) *QuizClient {
	return &QuizClient{provider: provider, maxTokens: 6000, temperature: 0.8}
}

// Generate returns whatever questions the LLM produced, possibly fewer or more than requested.
func (c *QuizClient) Generate(ctx context.Context, cfg domain.QuizConfig) (domain.RawQuizPayload, error) {
	req := llm.UserPrompt(quizSystemPrompt, quizPrompt(cfg), QuizSchema, c.maxTokens, c.temperature)
	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeQuiz, cfg.Subject, cfg.Topic), req)
	if err != nil {
		return domain.RawQuizPayload{}, classify(err)
	}

	cleaned := CleanJSON(string(resp.Content))
	if err := llm.Validate(QuizSchema, json.RawMessage(cleaned)); err != nil {
		log.Printf("quiz payload for %s: parsing leniently: %v", domain.TopicKey(cfg.Subject, cfg.Topic), err)
	}
	return ParseQuizPayload([]byte(cleaned))
}

// ParseQuizPayload decodes a quiz payload, tolerating missing fields, options given as a list
// and ids given as strings. It fails only when there is no question list at all.
func ParseQuizPayload(data []byte) (domain.RawQuizPayload, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.RawQuizPayload{}, malformed("quiz payload is not a JSON object: %v", err)
	}
	items, ok := doc["questions"].([]any)
	if !ok {
		return domain.RawQuizPayload{}, malformed("quiz payload has no questions list")
	}

	payload := domain.RawQuizPayload{Questions: make([]domain.RawQuestion, 0, len(items))}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		payload.Questions = append(payload.Questions, domain.RawQuestion{
			ID:             intField(obj["id"]),
			Prompt:         firstString(obj, "question", "prompt", "text"),
			Options:        optionsField(obj["options"]),
			CorrectAnswer:  firstString(obj, "correct_answer", "correctAnswer", "answer"),
			Explanation:    firstString(obj, "explanation"),
			KeyPoints:      stringList(obj["key_points"]),
			ModelAnswer:    firstString(obj, "model_answer", "modelAnswer"),
			ExpectedLength: firstString(obj, "expected_length", "expectedLength"),
		})
	}
	return payload, nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func intField(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	}
	return 0
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// optionsField accepts {"A": "..."} or ["...", "..."]; list entries are keyed A, B, C in order
// and a leading "A) " or "A. " label is dropped.
func optionsField(v any) map[string]string {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, val := range t {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	case []any:
		out := make(map[string]string, len(t))
		for i, val := range t {
			s, ok := val.(string)
			if !ok || i >= len(domain.OptionAlphabet) {
				continue
			}
			key := string(domain.OptionAlphabet[i])
			out[key] = stripOptionLabel(s, key)
		}
		return out
	}
	return nil
}

func stripOptionLabel(s, key string) string {
	trimmed := strings.TrimSpace(s)
	for _, sep := range []string{") ", ". ", ": "} {
		if strings.HasPrefix(strings.ToUpper(trimmed), key+sep) {
			return strings.TrimSpace(trimmed[len(key+sep):])
		}
	}
	return trimmed
}

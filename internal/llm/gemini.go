package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

// GeminiProvider implements Provider using the Google Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  resolveModel(cfg.Model, geminiModels),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}

	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}

	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	if req.Schema != nil {
		// JSON mode alone still applies; callers validate the payload themselves.
		config.ResponseMIMEType = "application/json"
		if schema, err := buildGeminiSchema(req.Schema.Definition); err == nil {
			config.ResponseSchema = schema
		} else {
			log.Printf("gemini: sending %s without a response schema: %v", req.Schema.Name, err)
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, buildGeminiContents(req.Messages), config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	content := json.RawMessage(result.Text())
	stop := mapGeminiStopReason(result)
	if stop == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}

	resp := &Response{
		Content:    content,
		Model:      p.model,
		StopReason: stop,
	}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func buildGeminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}

// buildGeminiSchema converts a JSON Schema definition map to a genai.Schema.
// Gemini has no way to express an object with free-form keys or a union of
// several non-null types, so such definitions are reported as untranslatable.
func buildGeminiSchema(def map[string]any) (*genai.Schema, error) {
	schema := &genai.Schema{}

	switch t := def["type"].(type) {
	case string:
		typ, err := mapGeminiType(t)
		if err != nil {
			return nil, err
		}
		schema.Type = typ
	case []any:
		var concrete []string
		nullable := false
		for _, v := range t {
			name, _ := v.(string)
			if name == "null" {
				nullable = true
				continue
			}
			concrete = append(concrete, name)
		}
		if len(concrete) != 1 {
			return nil, fmt.Errorf("union type %v", t)
		}
		typ, err := mapGeminiType(concrete[0])
		if err != nil {
			return nil, err
		}
		schema.Type = typ
		if nullable {
			schema.Nullable = &nullable
		}
	case nil:
	default:
		return nil, fmt.Errorf("unsupported type keyword %v", t)
	}

	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}
	if enum, ok := def["enum"].([]any); ok {
		for _, v := range enum {
			if s, ok := v.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}

	props, _ := def["properties"].(map[string]any)
	if schema.Type == genai.TypeObject && len(props) == 0 {
		return nil, fmt.Errorf("object without properties")
	}
	if len(props) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			propDef, ok := v.(map[string]any)
			if !ok {
				continue
			}
			prop, err := buildGeminiSchema(propDef)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			schema.Properties[k] = prop
		}
	}

	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	if items, ok := def["items"].(map[string]any); ok {
		item, err := buildGeminiSchema(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		schema.Items = item
	}

	return schema, nil
}

func mapGeminiType(t string) (genai.Type, error) {
	switch t {
	case "string":
		return genai.TypeString, nil
	case "number":
		return genai.TypeNumber, nil
	case "integer":
		return genai.TypeInteger, nil
	case "boolean":
		return genai.TypeBoolean, nil
	case "array":
		return genai.TypeArray, nil
	case "object":
		return genai.TypeObject, nil
	default:
		return "", fmt.Errorf("unsupported type %q", t)
	}
}

func mapGeminiStopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == "MAX_TOKENS" {
		return "max_tokens"
	}
	return "end"
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

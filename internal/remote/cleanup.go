package remote

import (
	"errors"
	"fmt"
	"strings"

	"acadtutor/internal/domain"
	"acadtutor/internal/llm"
)

// CleanJSON strips Markdown code fences and any prose around the outermost JSON object.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// classify maps provider errors onto the domain sentinels.
func classify(err error) error {
	var invalid *llm.ErrInvalidResponse
	var truncated *llm.ErrMaxTokensExceeded
	if errors.As(err, &invalid) || errors.As(err, &truncated) {
		return fmt.Errorf("%w: %v", domain.ErrMalformedRemoteData, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedRemoteData, fmt.Sprintf(format, args...))
}

package llm

import "context"

// Purpose names what an LLM call is for in the request log.
type Purpose string

const (
	PurposeQuiz       Purpose = "quiz"
	PurposeAssessment Purpose = "assessment"
	PurposeExplain    Purpose = "explain"
	purposeUnknown    Purpose = "unknown"
)

type ctxKey int

const (
	purposeKey ctxKey = iota
	topicKey
)

// WithPurpose tags the context with the call purpose and the subject/topic it concerns.
func WithPurpose(ctx context.Context, purpose Purpose, subject, topic string) context.Context {
	ctx = context.WithValue(ctx, purposeKey, purpose)
	if subject != "" || topic != "" {
		ctx = context.WithValue(ctx, topicKey, subject+"/"+topic)
	}
	return ctx
}

func PurposeFrom(ctx context.Context) Purpose {
	if v, ok := ctx.Value(purposeKey).(Purpose); ok {
		return v
	}
	return purposeUnknown
}

// TopicFrom returns "subject/topic" or "-" when the call was not tagged.
func TopicFrom(ctx context.Context) string {
	if v, ok := ctx.Value(topicKey).(string); ok {
		return v
	}
	return "-"
}

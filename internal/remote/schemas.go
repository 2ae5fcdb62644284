package remote

import "acadtutor/internal/llm"

// optionsSchema names the usual option keys so providers that need declared
// properties (Gemini) can still enforce the shape. Extra keys stay valid.
var optionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"A": map[string]any{"type": "string"},
		"B": map[string]any{"type": "string"},
		"C": map[string]any{"type": "string"},
		"D": map[string]any{"type": "string"},
	},
}

// QuizSchema describes the quiz payload. Validation failures are only logged;
// the payload is still parsed leniently.
var QuizSchema = &llm.Schema{
	Name:        "quiz-payload",
	Description: "A list of quiz questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":             map[string]any{"type": "integer"},
						"question":       map[string]any{"type": "string"},
						"options":        optionsSchema,
						"correct_answer": map[string]any{"type": "string"},
						"explanation":    map[string]any{"type": "string"},
						"key_points":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"model_answer":   map[string]any{"type": "string"},
					},
					"required": []any{"question"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

// AssessmentSchema describes the assessment payload. A payload that fails it is rejected.
var AssessmentSchema = &llm.Schema{
	Name:        "assessment-payload",
	Description: "Graded feedback for a quiz attempt",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"assessment": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"strengths":             map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"areas_for_improvement": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"overall_feedback":      map[string]any{"type": "string"},
				},
				"required": []any{"overall_feedback"},
			},
			"question_feedback": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_id": map[string]any{"type": "integer"},
						"is_correct":  map[string]any{"type": "boolean"},
						"explanation": map[string]any{"type": "string"},
						"why_wrong":   map[string]any{"type": []any{"string", "null"}},
						"score":       map[string]any{"type": "number"},
						"max_score":   map[string]any{"type": "number"},
					},
					"required": []any{"question_id"},
				},
			},
			"study_recommendations": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"assessment", "question_feedback"},
	},
}

package remote

import (
	"encoding/json"
	"fmt"
	"strings"

	"acadtutor/internal/domain"
)

const (
	quizSystemPrompt       = "You are a world-class educator and subject matter expert. Respond with ONLY valid JSON."
	assessmentSystemPrompt = "You are an expert educator providing detailed quiz assessments. Always respond with valid JSON only."
	explainSystemPrompt    = "You are an expert educator. Provide clear, accurate, and engaging explanations."
)

var levelGuidance = map[string]string{
	"Primary":     "simple explanations, basic concepts and concrete examples",
	"Secondary":   "structured explanations and analytical thinking",
	"College":     "in-depth analysis, critical thinking and theoretical understanding",
	"Competitive": "expert-level analysis and comprehensive reasoning",
}

var difficultyGuidance = map[domain.Difficulty]string{
	domain.DifficultyEasy:   "basic recall and simple concepts",
	domain.DifficultyMedium: "analysis and application, connecting concepts",
	domain.DifficultyHard:   "critical evaluation, synthesis and complex problem-solving",
}

func quizPrompt(cfg domain.QuizConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate EXACTLY %d unique questions about %q in %s for %s level students at %s difficulty.\n",
		cfg.NumQuestions, cfg.Topic, cfg.Subject, cfg.AcademicLevel, cfg.Difficulty)
	if g, ok := levelGuidance[cfg.AcademicLevel]; ok {
		fmt.Fprintf(&b, "Academic level: %s.\n", g)
	}
	if g, ok := difficultyGuidance[cfg.Difficulty]; ok {
		fmt.Fprintf(&b, "Difficulty: %s.\n", g)
	}

	if cfg.QuizType == domain.QuizTypeFreeResponse {
		b.WriteString(`Questions are open-ended. Respond with JSON in this format:
{"questions":[{"id":1,"question":"...","expected_length":"1-2 paragraphs","key_points":["...","..."],"model_answer":"..."}]}`)
	} else {
		b.WriteString(`Each question has exactly four options A-D and one correct answer. Respond with JSON in this format:
{"questions":[{"id":1,"question":"...","options":{"A":"...","B":"...","C":"...","D":"..."},"correct_answer":"B","explanation":"..."}]}`)
	}
	b.WriteString("\nRespond with ONLY the JSON object. No additional text or markdown.")
	return b.String()
}

type promptQuestion struct {
	ID        int               `json:"id"`
	Question  string            `json:"question"`
	Options   map[string]string `json:"options,omitempty"`
	Correct   string            `json:"correct_answer,omitempty"`
	KeyPoints []string          `json:"key_points,omitempty"`
}

func assessmentPrompt(req domain.AssessRequest) (string, error) {
	questions := make([]promptQuestion, 0, len(req.Quiz.Questions))
	for _, q := range req.Quiz.Questions {
		questions = append(questions, promptQuestion{ID: q.ID, Question: q.Prompt, Options: q.Options, Correct: q.CorrectAnswer, KeyPoints: q.KeyPoints})
	}
	payload, err := json.MarshalIndent(map[string]any{
		"questions":    questions,
		"user_answers": req.Answers,
	}, "", "  ")
	if err != nil {
		return "", err
	}

	kind := "multiple-choice quiz"
	perQuestion := `"question_id","is_correct","explanation","why_wrong"`
	if req.Quiz.QuizType == domain.QuizTypeFreeResponse {
		kind = "set of subjective answers"
		perQuestion = `"question_id","score","max_score","feedback","model_answer"`
	}

	return fmt.Sprintf(`You are assessing a %s on %s for a %s level student.

QUIZ QUESTIONS AND USER ANSWERS:
%s

Respond with ONLY valid JSON of the form:
{"total_questions":N,"correct_answers":N,"percentage":N,"grade":"B+",
 "assessment":{"strengths":["..."],"areas_for_improvement":["..."],"overall_feedback":"..."},
 "question_feedback":[{%s}],
 "study_recommendations":["..."]}`, kind, req.Quiz.Topic, req.Quiz.AcademicLevel, payload, perQuestion), nil
}

func explainPrompt(req domain.ExplainRequest) string {
	var body string
	switch req.Kind {
	case domain.ExplanationQuick:
		body = "Include a clear definition (2-3 sentences), 3-5 key points, a simple example and why it matters. Keep it to 300-500 words."
	case domain.ExplanationDetailed:
		body = "Include the technical definition and background, detailed mechanisms, multiple examples, current developments and practical applications. Aim for 1500-2000 words."
	default:
		body = "Cover a clear definition, core concepts, how it works, real-world applications, benefits, challenges, future implications and key takeaways. Use headers and bullet points."
	}
	prompt := fmt.Sprintf("Explain %q in %s for %s level students.\n%s", req.Topic, req.Subject, req.AcademicLevel, body)
	if ctx := strings.TrimSpace(req.Context); ctx != "" {
		prompt += "\nContext: " + ctx
	}
	return prompt
}

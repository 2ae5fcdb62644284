package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"acadtutor/internal/domain"
	"acadtutor/internal/engine"
	"acadtutor/internal/llm"
)

type wireAssessment struct {
	Assessment struct {
		Strengths           []string `json:"strengths"`
		AreasForImprovement []string `json:"areas_for_improvement"`
		OverallFeedback     string   `json:"overall_feedback"`
	} `json:"assessment"`
	QuestionFeedback     []wireQuestionFeedback `json:"question_feedback"`
	StudyRecommendations []string               `json:"study_recommendations"`
}

type wireQuestionFeedback struct {
	QuestionID  int      `json:"question_id"`
	IsCorrect   *bool    `json:"is_correct"`
	Explanation string   `json:"explanation"`
	WhyWrong    *string  `json:"why_wrong"`
	Feedback    string   `json:"feedback"`
	ModelAnswer string   `json:"model_answer"`
	Score       *float64 `json:"score"`
	MaxScore    *float64 `json:"max_score"`
}

// Assessor asks an LLM to assess a quiz attempt. Scores are always recomputed locally so that
// counts, percentage and grade stay consistent; the LLM contributes the prose.
type Assessor struct {
	provider  llm.Provider
	banks     BankSource
	seed      *engine.QuestionBank
	maxTokens int
}

// BankSource supplies the current question bank; app.BankRepository satisfies it.
type BankSource interface {
	GetBank(ctx context.Context) (*engine.QuestionBank, error)
}

// NewAssessor builds feedback from the bank that banks serves. A nil source, or one that
// fails, falls back to the built-in seed bank.
func NewAssessor(provider llm.Provider, banks BankSource) *Assessor {
	return &Assessor{
		provider:  provider,
		banks:     banks,
		seed:      engine.NewQuestionBank(engine.SeedCatalog()),
		maxTokens: 4000,
	}
}

func (a *Assessor) composer(ctx context.Context) *engine.FeedbackComposer {
	if a.banks == nil {
		return engine.NewFeedbackComposer(a.seed)
	}
	bank, err := a.banks.GetBank(ctx)
	if err != nil || bank == nil {
		log.Printf("remote assessment: question bank unavailable, using seed content: %v", err)
		return engine.NewFeedbackComposer(a.seed)
	}
	return engine.NewFeedbackComposer(bank)
}

func (a *Assessor) Assess(ctx context.Context, req domain.AssessRequest) (domain.Assessment, error) {
	prompt, err := assessmentPrompt(req)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("build assessment prompt: %w", err)
	}
	resp, err := a.provider.Generate(llm.WithPurpose(ctx, llm.PurposeAssessment, req.Quiz.Subject, req.Quiz.Topic),
		llm.UserPrompt(assessmentSystemPrompt, prompt, AssessmentSchema, a.maxTokens, 0.3))
	if err != nil {
		return domain.Assessment{}, classify(err)
	}

	cleaned := json.RawMessage(CleanJSON(string(resp.Content)))
	if err := llm.Validate(AssessmentSchema, cleaned); err != nil {
		return domain.Assessment{}, classify(err)
	}
	var wire wireAssessment
	if err := json.Unmarshal(cleaned, &wire); err != nil {
		return domain.Assessment{}, malformed("decode assessment: %v", err)
	}
	if strings.TrimSpace(wire.Assessment.OverallFeedback) == "" {
		return domain.Assessment{}, malformed("assessment has no overall feedback")
	}
	return a.merge(a.composer(ctx), req, wire), nil
}

func (a *Assessor) merge(composer *engine.FeedbackComposer, req domain.AssessRequest, wire wireAssessment) domain.Assessment {
	byID := make(map[int]wireQuestionFeedback, len(wire.QuestionFeedback))
	for _, fb := range wire.QuestionFeedback {
		byID[fb.QuestionID] = fb
	}
	freeResponse := req.Quiz.QuizType == domain.QuizTypeFreeResponse

	grading := engine.GradeQuiz(req.Quiz, req.Answers)
	if freeResponse {
		grading.Correct = 0
		for i := range grading.Results {
			r := &grading.Results[i]
			if w, ok := byID[r.Question.ID]; ok && answered(r.Answer) {
				switch {
				case w.IsCorrect != nil:
					r.Correct = *w.IsCorrect
				case w.Score != nil && w.MaxScore != nil && *w.MaxScore > 0:
					r.Correct = *w.Score*2 >= *w.MaxScore
				}
			}
			if r.Correct {
				grading.Correct++
			}
		}
		grading.Percentage = engine.Percentage(grading.Correct, grading.Total)
		grading.Grade = engine.LetterGrade(grading.Percentage)
	}

	out := composer.Compose(req.Quiz, grading)
	for i := range out.QuestionFeedback {
		fb := &out.QuestionFeedback[i]
		w, ok := byID[fb.QuestionID]
		if !ok {
			continue
		}
		if text := strings.TrimSpace(w.Explanation); text != "" {
			fb.Explanation = text
		} else if text := strings.TrimSpace(w.Feedback); text != "" {
			fb.Explanation = text
		}
		if !fb.IsCorrect && answered(fb.UserAnswer) && w.WhyWrong != nil && strings.TrimSpace(*w.WhyWrong) != "" {
			reason := strings.TrimSpace(*w.WhyWrong)
			fb.WhyWrong = &reason
		}
		if freeResponse && strings.TrimSpace(w.ModelAnswer) != "" {
			fb.ModelAnswer = strings.TrimSpace(w.ModelAnswer)
		}
	}

	if len(wire.Assessment.Strengths) > 0 {
		out.Strengths = wire.Assessment.Strengths
	}
	if len(wire.Assessment.AreasForImprovement) > 0 {
		out.AreasForImprovement = wire.Assessment.AreasForImprovement
	}
	out.OverallFeedback = strings.TrimSpace(wire.Assessment.OverallFeedback)
	if len(wire.StudyRecommendations) > 0 {
		out.StudyRecommendations = wire.StudyRecommendations
	}
	out.Source = domain.AssessedRemotely
	return out
}

func answered(a *string) bool {
	return a != nil && strings.TrimSpace(*a) != ""
}

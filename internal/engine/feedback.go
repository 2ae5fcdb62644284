package engine

import (
	"fmt"
	"strconv"
	"strings"

	"acadtutor/internal/domain"
)

// FeedbackComposer turns a grading into a learner-facing assessment.
type FeedbackComposer struct {
	bank *QuestionBank
}

func NewFeedbackComposer(bank *QuestionBank) *FeedbackComposer {
	return &FeedbackComposer{bank: bank}
}

// Assess grades the answers and composes the full local assessment.
func (c *FeedbackComposer) Assess(quiz domain.Quiz, answers domain.AnswerSet) domain.Assessment {
	return c.Compose(quiz, GradeQuiz(quiz, answers))
}

// Compose builds per-question and summary feedback. Output depends only on its inputs.
func (c *FeedbackComposer) Compose(quiz domain.Quiz, g Grading) domain.Assessment {
	feedback := make([]domain.QuestionFeedback, 0, len(g.Results))
	for _, r := range g.Results {
		feedback = append(feedback, c.questionFeedback(quiz, r))
	}

	strengths, areas, recommendations, closing := summaryBand(g.Percentage, quiz.Topic)
	return domain.Assessment{
		TotalQuestions:       g.Total,
		CorrectAnswers:       g.Correct,
		Percentage:           g.Percentage,
		Grade:                g.Grade,
		Strengths:            strengths,
		AreasForImprovement:  areas,
		OverallFeedback:      fmt.Sprintf("You scored %s%% on this %s quiz. %s", FormatPercentage(g.Percentage), quiz.Topic, closing),
		QuestionFeedback:     feedback,
		StudyRecommendations: recommendations,
		Source:               domain.AssessedLocally,
	}
}

func (c *FeedbackComposer) questionFeedback(quiz domain.Quiz, r GradedQuestion) domain.QuestionFeedback {
	q := r.Question
	fb := domain.QuestionFeedback{
		QuestionID:    q.ID,
		QuestionText:  q.Prompt,
		Options:       q.Options,
		UserAnswer:    r.Answer,
		CorrectAnswer: q.CorrectAnswer,
		IsCorrect:     r.Correct,
		Explanation:   strings.TrimSpace(q.Explanation),
	}
	if fb.Explanation == "" {
		fb.Explanation = fmt.Sprintf("This question tests your understanding of %s.", quiz.Topic)
	}

	if quiz.QuizType == domain.QuizTypeFreeResponse {
		fb.KeyPointsCovered = r.Covered
		fb.MissingPoints = r.Missing
		fb.ModelAnswer = q.ModelAnswer
		if !r.Correct {
			reason := "No answer was given."
			if r.Answer != nil && strings.TrimSpace(*r.Answer) != "" {
				reason = "Your answer does not yet cover: " + strings.Join(r.Missing, ", ") + "."
			}
			fb.WhyWrong = &reason
		}
		return fb
	}

	if !r.Correct {
		reason := c.whyWrong(q, r.Answer)
		fb.WhyWrong = &reason
	}
	return fb
}

func (c *FeedbackComposer) whyWrong(q domain.Question, answer *string) string {
	if answer == nil {
		return fmt.Sprintf("No answer was given. The correct answer is %s.", q.CorrectAnswer)
	}
	if c.bank != nil {
		if reason, ok := c.bank.WhyWrong(q.Prompt, *answer); ok {
			return reason
		}
	}
	return fmt.Sprintf("Answer %s is incorrect. The correct answer is %s.", *answer, q.CorrectAnswer)
}

func summaryBand(p float64, topic string) (strengths, areas, recommendations []string, closing string) {
	switch {
	case p >= 80:
		return []string{
				"Strong understanding of the core concepts",
				fmt.Sprintf("Consistent accuracy on %s questions", topic),
			},
			[]string{"Explore advanced applications of the topic"},
			[]string{
				fmt.Sprintf("Try a harder %s quiz", topic),
				"Teach the key ideas to someone else to consolidate them",
			},
			"Excellent work! You have a strong command of this topic."
	case p >= 60:
		return []string{"Good grasp of the fundamentals"},
			[]string{
				"Review the questions you missed",
				"Practice applying concepts to new problems",
			},
			[]string{
				fmt.Sprintf("Review %s concepts", topic),
				"Study the explanations provided",
				"Practice additional questions",
			},
			"Good effort! Review the questions you missed to strengthen your understanding."
	default:
		return []string{"Shows interest in learning"},
			[]string{
				"Review fundamental concepts",
				"Practice more questions",
			},
			[]string{
				fmt.Sprintf("Revisit the basics of %s", topic),
				"Work through the explanations for every question",
				"Retake the quiz at an easier difficulty",
			},
			"Keep practicing! Focus on the fundamentals and try again."
	}
}

// FormatPercentage renders a percentage without trailing zeros, e.g. 33.3 or 100.
func FormatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

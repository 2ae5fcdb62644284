package domain

import (
	"fmt"
	"strings"
)

// MaxQuestions bounds the number of questions a single quiz may request.
const MaxQuestions = 50

// DefaultAcademicLevel is used when a request does not name one.
const DefaultAcademicLevel = "Secondary"

// QuizConfig is what a caller asks for when starting a quiz.
type QuizConfig struct {
	Subject       string     `json:"subject"`
	Topic         string     `json:"topic"`
	AcademicLevel string     `json:"academicLevel"`
	QuizType      QuizType   `json:"quizType"`
	NumQuestions  int        `json:"numQuestions"`
	Difficulty    Difficulty `json:"difficulty"`
}

// Normalize fills defaults and rejects nonsensical requests with ErrInvalidConfiguration.
func (c QuizConfig) Normalize() (QuizConfig, error) {
	c.Subject = strings.TrimSpace(c.Subject)
	c.Topic = strings.TrimSpace(c.Topic)
	c.AcademicLevel = strings.TrimSpace(c.AcademicLevel)

	if c.Subject == "" || c.Topic == "" {
		return c, fmt.Errorf("%w: subject and topic are required", ErrInvalidConfiguration)
	}
	if c.NumQuestions <= 0 {
		return c, fmt.Errorf("%w: question count must be positive, got %d", ErrInvalidConfiguration, c.NumQuestions)
	}
	if c.NumQuestions > MaxQuestions {
		return c, fmt.Errorf("%w: at most %d questions per quiz, got %d", ErrInvalidConfiguration, MaxQuestions, c.NumQuestions)
	}
	if c.QuizType == "" {
		c.QuizType = QuizTypeMultipleChoice
	}
	if err := ValidateQuizType(c.QuizType); err != nil {
		return c, err
	}
	if c.Difficulty == "" {
		c.Difficulty = DifficultyMedium
	}
	if !c.Difficulty.Valid() {
		return c, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfiguration, c.Difficulty)
	}
	if c.AcademicLevel == "" {
		c.AcademicLevel = DefaultAcademicLevel
	}
	return c, nil
}

// ValidateQuizType rejects quiz types the engine cannot build.
func ValidateQuizType(t QuizType) error {
	switch t {
	case QuizTypeMultipleChoice, QuizTypeFreeResponse:
		return nil
	default:
		return fmt.Errorf("%w: unknown quiz type %q", ErrInvalidConfiguration, t)
	}
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// ValidateQuestion checks the invariants of a multiple-choice question.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %d: empty prompt", q.ID)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("question %d: no options", q.ID)
	}
	for key := range q.Options {
		if len(key) != 1 || !strings.Contains(OptionAlphabet, key) {
			return fmt.Errorf("question %d: option key %q outside %s", q.ID, key, OptionAlphabet)
		}
	}
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		return fmt.Errorf("question %d: correct answer %q is not an option", q.ID, q.CorrectAnswer)
	}
	return nil
}

// TopicKey builds the "subject::topic" aggregation key.
func TopicKey(subject, topic string) string {
	return subject + "::" + topic
}

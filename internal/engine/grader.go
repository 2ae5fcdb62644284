package engine

import (
	"math"
	"strings"
	"unicode"

	"acadtutor/internal/domain"
)

// GradedQuestion is the grading outcome of a single question.
type GradedQuestion struct {
	Question domain.Question
	Answer   *string
	Correct  bool
	Covered  []string
	Missing  []string
}

// Grading is the outcome of grading a whole quiz.
type Grading struct {
	Results    []GradedQuestion
	Correct    int
	Total      int
	Percentage float64
	Grade      string
}

// GradeQuiz grades answers against the quiz. It is a pure function of its inputs.
func GradeQuiz(quiz domain.Quiz, answers domain.AnswerSet) Grading {
	g := Grading{Total: len(quiz.Questions), Results: make([]GradedQuestion, 0, len(quiz.Questions))}
	for _, q := range quiz.Questions {
		r := GradedQuestion{Question: q}
		if a, ok := answers[q.ID]; ok {
			answer := a
			r.Answer = &answer
		}

		if quiz.QuizType == domain.QuizTypeFreeResponse {
			r.Correct, r.Covered, r.Missing = gradeFreeResponse(r.Answer, q.KeyPoints)
		} else {
			r.Correct = r.Answer != nil && *r.Answer == q.CorrectAnswer
		}
		if r.Correct {
			g.Correct++
		}
		g.Results = append(g.Results, r)
	}
	g.Percentage = Percentage(g.Correct, g.Total)
	g.Grade = LetterGrade(g.Percentage)
	return g
}

// Percentage returns correct/total*100 rounded to one decimal, or 0 when total is 0.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}

var gradeBands = []struct {
	min   float64
	grade string
}{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{50, "C-"},
}

// LetterGrade bands a percentage; the first threshold it reaches wins.
func LetterGrade(percentage float64) string {
	for _, b := range gradeBands {
		if percentage >= b.min {
			return b.grade
		}
	}
	return "F"
}

func gradeFreeResponse(answer *string, keyPoints []string) (bool, []string, []string) {
	if answer == nil || strings.TrimSpace(*answer) == "" {
		return false, nil, append([]string(nil), keyPoints...)
	}
	if len(keyPoints) == 0 {
		return true, nil, nil
	}

	text := strings.ToLower(*answer)
	words := make(map[string]struct{})
	for _, w := range splitWords(text) {
		words[w] = struct{}{}
	}

	var covered, missing []string
	for _, point := range keyPoints {
		if pointCovered(point, text, words) {
			covered = append(covered, point)
		} else {
			missing = append(missing, point)
		}
	}
	return len(covered)*2 >= len(keyPoints), covered, missing
}

func pointCovered(point, text string, words map[string]struct{}) bool {
	var significant []string
	for _, w := range splitWords(strings.ToLower(point)) {
		if len([]rune(w)) >= 4 {
			significant = append(significant, w)
		}
	}
	if len(significant) == 0 {
		return strings.Contains(text, strings.ToLower(strings.TrimSpace(point)))
	}
	hits := 0
	for _, w := range significant {
		if _, ok := words[w]; ok {
			hits++
		}
	}
	return hits*2 >= len(significant)
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

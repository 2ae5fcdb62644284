package engine

import (
	"fmt"

	"acadtutor/internal/domain"
)

// genericQuestions are used when the bank has nothing to offer for a multiple-choice quiz.
func genericQuestions(subject, topic string, difficulty domain.Difficulty) []domain.Question {
	switch difficulty {
	case domain.DifficultyEasy:
		return []domain.Question{
			mcq(easy, fmt.Sprintf("What is the basic definition of %s?", topic), "A",
				fmt.Sprintf("This tests your basic understanding of %s.", topic),
				fmt.Sprintf("A fundamental concept in %s", subject),
				"An advanced theory",
				"A historical event",
				"A mathematical formula"),
			mcq(easy, fmt.Sprintf("Which field does %s belong to?", topic), "A",
				fmt.Sprintf("%s is a core part of %s.", topic, subject),
				subject,
				"Culinary arts",
				"Fashion design",
				"Sports management"),
		}
	case domain.DifficultyHard:
		return []domain.Question{
			mcq(hard, fmt.Sprintf("Analyze the limitations of current %s approaches.", topic), "B",
				fmt.Sprintf("Critical analysis of %s requires weighing complexity, scalability and practical trade-offs.", topic),
				"There are no significant limitations",
				"Complexity, scalability and practical implementation challenges",
				"Only cost-related issues",
				"Limitations apply only to beginners"),
		}
	default:
		return []domain.Question{
			mcq(medium, fmt.Sprintf("How does %s apply in real-world scenarios?", topic), "A",
				fmt.Sprintf("This question assesses your understanding of practical applications of %s.", topic),
				fmt.Sprintf("Through practical problem-solving in %s", subject),
				"Only in theoretical research",
				"Not applicable in real life",
				"Only in academic settings"),
		}
	}
}

// expectedLengthFor maps an academic level to the answer length asked of free-response questions.
func expectedLengthFor(level string) string {
	switch level {
	case "Primary":
		return "2-3 sentences"
	case "College":
		return "2-3 paragraphs"
	case "Competitive":
		return "3-4 paragraphs"
	default:
		return "1-2 paragraphs"
	}
}

// freeResponseTemplates are the filler pool for free-response quizzes.
func freeResponseTemplates(subject, topic, level string, difficulty domain.Difficulty) []domain.Question {
	length := expectedLengthFor(level)
	return []domain.Question{
		{
			Prompt: fmt.Sprintf("Explain the key concepts and applications of %s in %s.", topic, subject),
			KeyPoints: []string{
				fmt.Sprintf("Definition of %s", topic),
				fmt.Sprintf("Main principles of %s", topic),
				fmt.Sprintf("Real-world applications of %s", topic),
			},
			ModelAnswer:    fmt.Sprintf("%s is an important concept in %s. A complete answer defines it, outlines its main principles and gives concrete applications.", topic, subject),
			ExpectedLength: length,
			Difficulty:     difficulty,
		},
		{
			Prompt: fmt.Sprintf("Describe how %s is used to solve real-world %s problems.", topic, subject),
			KeyPoints: []string{
				fmt.Sprintf("A concrete problem solved with %s", topic),
				"Steps of the solution",
				"Outcome and benefits",
			},
			ModelAnswer:    fmt.Sprintf("A strong answer picks a specific %s problem, walks through how %s is applied step by step and explains the result.", subject, topic),
			ExpectedLength: length,
			Difficulty:     difficulty,
		},
		{
			Prompt: fmt.Sprintf("Compare two important ideas within %s and evaluate their strengths and limitations.", topic),
			KeyPoints: []string{
				"Description of both ideas",
				"Strengths of each idea",
				"Limitations of each idea",
			},
			ModelAnswer:    fmt.Sprintf("The answer should describe two ideas from %s, contrast their strengths and limitations and conclude when each is preferable.", topic),
			ExpectedLength: length,
			Difficulty:     difficulty,
		},
	}
}

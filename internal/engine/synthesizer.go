package engine

import (
	"fmt"
	"strings"

	"acadtutor/internal/domain"
)

// Synthesizer turns a possibly partial remote payload into a quiz of exactly the requested length.
type Synthesizer struct {
	bank *QuestionBank
	seq  Sequence
}

func NewSynthesizer(bank *QuestionBank, seq Sequence) *Synthesizer {
	if seq == nil {
		seq = FixedSequence(0)
	}
	return &Synthesizer{bank: bank, seq: seq}
}

// Build normalizes the remote questions, pads a deficit from the bank and truncates any excess.
// It only fails on a non-positive count or an unknown quiz type.
func (s *Synthesizer) Build(cfg domain.QuizConfig, remote []domain.RawQuestion) (domain.Quiz, error) {
	if cfg.NumQuestions <= 0 {
		return domain.Quiz{}, fmt.Errorf("%w: question count must be positive, got %d", domain.ErrInvalidConfiguration, cfg.NumQuestions)
	}
	if cfg.QuizType == "" {
		cfg.QuizType = domain.QuizTypeMultipleChoice
	}
	if err := domain.ValidateQuizType(cfg.QuizType); err != nil {
		return domain.Quiz{}, err
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = domain.DifficultyMedium
	}
	if cfg.AcademicLevel == "" {
		cfg.AcademicLevel = domain.DefaultAcademicLevel
	}

	questions := make([]domain.Question, 0, cfg.NumQuestions)
	for i, raw := range remote {
		questions = append(questions, s.normalize(cfg, raw, i+1))
	}

	padded, truncated := false, false
	if deficit := cfg.NumQuestions - len(questions); deficit > 0 {
		questions = append(questions, s.fill(cfg, questions, deficit)...)
		padded = true
	}
	if len(questions) > cfg.NumQuestions {
		questions = questions[:cfg.NumQuestions]
		truncated = true
	}

	for i := range questions {
		questions[i].ID = i + 1
		questions[i].Difficulty = cfg.Difficulty
	}

	source := domain.SourceRemote
	switch {
	case len(remote) == 0:
		source = domain.SourceSynthesized
	case padded || truncated:
		source = domain.SourceBlended
	}

	return domain.Quiz{
		Title:         fmt.Sprintf("%s - %s Quiz", cfg.Subject, cfg.Topic),
		Subject:       cfg.Subject,
		Topic:         cfg.Topic,
		AcademicLevel: cfg.AcademicLevel,
		Difficulty:    cfg.Difficulty,
		QuizType:      cfg.QuizType,
		Questions:     questions,
		Source:        source,
	}, nil
}

func (s *Synthesizer) normalize(cfg domain.QuizConfig, raw domain.RawQuestion, position int) domain.Question {
	q := domain.Question{
		ID:          raw.ID,
		Prompt:      strings.TrimSpace(raw.Prompt),
		Explanation: strings.TrimSpace(raw.Explanation),
	}
	if q.ID <= 0 {
		q.ID = position
	}
	if q.Prompt == "" {
		q.Prompt = fmt.Sprintf("Question %d", position)
	}

	if cfg.QuizType == domain.QuizTypeFreeResponse {
		for _, p := range raw.KeyPoints {
			if p = strings.TrimSpace(p); p != "" {
				q.KeyPoints = append(q.KeyPoints, p)
			}
		}
		if len(q.KeyPoints) == 0 {
			q.KeyPoints = []string{fmt.Sprintf("Key concepts about %s", cfg.Topic)}
		}
		q.ModelAnswer = strings.TrimSpace(raw.ModelAnswer)
		if q.ModelAnswer == "" {
			q.ModelAnswer = fmt.Sprintf("A comprehensive answer should cover the main aspects of %s.", cfg.Topic)
		}
		q.ExpectedLength = strings.TrimSpace(raw.ExpectedLength)
		if q.ExpectedLength == "" {
			q.ExpectedLength = expectedLengthFor(cfg.AcademicLevel)
		}
		return q
	}

	q.Options = make(map[string]string, len(domain.PlaceholderOptionKeys))
	for key, text := range raw.Options {
		key = strings.ToUpper(strings.TrimSpace(key))
		if len(key) != 1 || !strings.Contains(domain.OptionAlphabet, key) {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			q.Options[key] = text
		}
	}
	for _, key := range domain.PlaceholderOptionKeys {
		if _, ok := q.Options[key]; !ok {
			q.Options[key] = "Option " + key
		}
	}

	q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(raw.CorrectAnswer))
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		q.CorrectAnswer = "A"
	}
	if q.Explanation == "" {
		q.Explanation = "Explanation not available"
	}
	return q
}

// fill draws deficit questions from the filler pool, cycling when the pool is smaller than the deficit.
func (s *Synthesizer) fill(cfg domain.QuizConfig, existing []domain.Question, deficit int) []domain.Question {
	var pool []domain.Question
	if cfg.QuizType == domain.QuizTypeFreeResponse {
		pool = freeResponseTemplates(cfg.Subject, cfg.Topic, cfg.AcademicLevel, cfg.Difficulty)
	} else if s.bank != nil {
		pool = s.bank.LookupFor(cfg.Subject, cfg.Topic, cfg.Difficulty)
	}
	if len(pool) == 0 {
		pool = genericQuestions(cfg.Subject, cfg.Topic, cfg.Difficulty)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, q := range existing {
		seen[promptKey(q.Prompt)] = struct{}{}
	}
	fresh := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if _, dup := seen[promptKey(q.Prompt)]; !dup {
			fresh = append(fresh, q)
		}
	}
	if len(fresh) > 0 {
		pool = fresh
	}

	offset := s.seq.Intn(len(pool))
	out := make([]domain.Question, 0, deficit)
	for i := 0; i < deficit; i++ {
		q := cloneQuestion(pool[(offset+i)%len(pool)])
		if i >= len(pool) {
			q.Prompt = fmt.Sprintf("%s (Question %d)", q.Prompt, len(existing)+i+1)
		}
		out = append(out, q)
	}
	return out
}

func promptKey(prompt string) string {
	return strings.ToLower(strings.TrimSpace(prompt))
}

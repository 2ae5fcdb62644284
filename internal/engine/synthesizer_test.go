package engine_test

import (
	"errors"
	"strings"
	"testing"

	"acadtutor/internal/domain"
	"acadtutor/internal/engine"
)

func newSynthesizer() *engine.Synthesizer {
	return engine.NewSynthesizer(engine.NewQuestionBank(engine.SeedCatalog()), engine.FixedSequence(0))
}

func mcqConfig(subject, topic string, n int) domain.QuizConfig {
	return domain.QuizConfig{Subject: subject, Topic: topic, NumQuestions: n, QuizType: domain.QuizTypeMultipleChoice, Difficulty: domain.DifficultyEasy}
}

func TestBuildCountAndIDs(t *testing.T) {
	s := newSynthesizer()
	remote := []domain.RawQuestion{{Prompt: "r1"}, {Prompt: "r2"}, {Prompt: "r3"}, {Prompt: "r4"}}
	for _, n := range []int{1, 2, 4, 7, 23} {
		for _, k := range []int{0, 1, 4} {
			quiz, err := s.Build(mcqConfig("Mathematics", "Algebra", n), remote[:k])
			if err != nil {
				t.Fatalf("n=%d k=%d: build failed: %v", n, k, err)
			}
			if len(quiz.Questions) != n {
				t.Fatalf("n=%d k=%d: expected %d questions, got %d", n, k, n, len(quiz.Questions))
			}
			for i, q := range quiz.Questions {
				if q.ID != i+1 {
					t.Fatalf("n=%d k=%d: expected id %d, got %d", n, k, i+1, q.ID)
				}
				if err := domain.ValidateQuestion(q); err != nil {
					t.Fatalf("n=%d k=%d: invalid question: %v", n, k, err)
				}
				if q.Difficulty != domain.DifficultyEasy {
					t.Fatalf("expected requested difficulty stamped, got %q", q.Difficulty)
				}
			}
		}
	}
}

func TestBuildEmptyPayloadUsesBank(t *testing.T) {
	quiz, err := newSynthesizer().Build(mcqConfig("Blockchain", "Basics", 5), nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if quiz.Source != domain.SourceSynthesized {
		t.Fatalf("expected synthesized source, got %q", quiz.Source)
	}
	bank := engine.SeedCatalog()["Blockchain"]["Basics"]
	prompts := map[string]bool{}
	for _, q := range bank {
		prompts[q.Prompt] = true
	}
	for _, q := range quiz.Questions {
		if !prompts[q.Prompt] {
			t.Fatalf("expected bank question, got %q", q.Prompt)
		}
		delete(prompts, q.Prompt)
	}
	if quiz.Title != "Blockchain - Basics Quiz" {
		t.Fatalf("unexpected title %q", quiz.Title)
	}
}

func TestBuildSourceLabels(t *testing.T) {
	s := newSynthesizer()
	full := []domain.RawQuestion{{Prompt: "a"}, {Prompt: "b"}}

	quiz, _ := s.Build(mcqConfig("Physics", "Mechanics", 2), full)
	if quiz.Source != domain.SourceRemote {
		t.Fatalf("expected remote, got %q", quiz.Source)
	}
	quiz, _ = s.Build(mcqConfig("Physics", "Mechanics", 1), full)
	if quiz.Source != domain.SourceBlended || quiz.Questions[0].Prompt != "a" {
		t.Fatalf("expected blended truncation keeping first question, got %q %q", quiz.Source, quiz.Questions[0].Prompt)
	}
	quiz, _ = s.Build(mcqConfig("Physics", "Mechanics", 3), full)
	if quiz.Source != domain.SourceBlended {
		t.Fatalf("expected blended padding, got %q", quiz.Source)
	}
}

func TestBuildNormalizesRemoteQuestion(t *testing.T) {
	remote := []domain.RawQuestion{{
		Options:       map[string]string{"a": "first", "b": "second", "zz": "junk"},
		CorrectAnswer: "Q",
	}}
	quiz, err := newSynthesizer().Build(mcqConfig("Physics", "Mechanics", 1), remote)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	q := quiz.Questions[0]
	if q.Prompt != "Question 1" {
		t.Fatalf("expected placeholder prompt, got %q", q.Prompt)
	}
	if q.CorrectAnswer != "A" || q.Explanation != "Explanation not available" {
		t.Fatalf("expected defaults, got %+v", q)
	}
	if q.Options["A"] != "first" || q.Options["C"] != "Option C" || q.Options["D"] != "Option D" {
		t.Fatalf("unexpected options %v", q.Options)
	}
	if _, ok := q.Options["ZZ"]; ok {
		t.Fatalf("expected junk key dropped, got %v", q.Options)
	}
}

func TestBuildCyclesWithSuffix(t *testing.T) {
	quiz, err := newSynthesizer().Build(mcqConfig("Physics", "Mechanics", 3), nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	base := quiz.Questions[0].Prompt
	if quiz.Questions[1].Prompt != base+" (Question 2)" || quiz.Questions[2].Prompt != base+" (Question 3)" {
		t.Fatalf("expected suffixed repeats, got %q / %q", quiz.Questions[1].Prompt, quiz.Questions[2].Prompt)
	}
}

func TestBuildSkipsDuplicatePrompts(t *testing.T) {
	remote := []domain.RawQuestion{{Prompt: "What is a smart contract?", Options: map[string]string{"A": "x", "B": "y"}, CorrectAnswer: "A"}}
	quiz, err := newSynthesizer().Build(mcqConfig("Blockchain", "Basics", 5), remote)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, q := range quiz.Questions[1:] {
		if strings.EqualFold(q.Prompt, "What is a smart contract?") {
			t.Fatalf("expected duplicate prompt to be skipped")
		}
	}
}

func TestBuildFreeResponse(t *testing.T) {
	cfg := domain.QuizConfig{Subject: "History", Topic: "Rome", NumQuestions: 2, QuizType: domain.QuizTypeFreeResponse, AcademicLevel: "College"}
	quiz, err := newSynthesizer().Build(cfg, []domain.RawQuestion{{Prompt: "Why did Rome fall?"}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	first := quiz.Questions[0]
	if len(first.KeyPoints) != 1 || first.KeyPoints[0] != "Key concepts about Rome" {
		t.Fatalf("expected default key point, got %v", first.KeyPoints)
	}
	if first.ExpectedLength != "2-3 paragraphs" || first.Options != nil {
		t.Fatalf("unexpected free-response shape %+v", first)
	}
	if !strings.Contains(quiz.Questions[1].Prompt, "Rome") {
		t.Fatalf("expected template filler about Rome, got %q", quiz.Questions[1].Prompt)
	}
}

func TestBuildUnknownSubjectFallsBackToDefaultTopic(t *testing.T) {
	quiz, err := newSynthesizer().Build(mcqConfig("Underwater Basket Weaving", "Knots", 2), nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if quiz.Questions[0].Prompt == "" || quiz.Subject != "Underwater Basket Weaving" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
}

func TestBuildEmptyBankUsesGenericTemplates(t *testing.T) {
	s := engine.NewSynthesizer(engine.NewQuestionBank(nil), nil)
	quiz, err := s.Build(domain.QuizConfig{Subject: "Art", Topic: "Color", NumQuestions: 2, Difficulty: domain.DifficultyHard}, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.Contains(quiz.Questions[0].Prompt, "Color") {
		t.Fatalf("expected generic template, got %q", quiz.Questions[0].Prompt)
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	s := newSynthesizer()
	if _, err := s.Build(mcqConfig("A", "B", 0), nil); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	cfg := mcqConfig("A", "B", 1)
	cfg.QuizType = "essay"
	if _, err := s.Build(cfg, nil); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestLookupForOrdersDifficulty(t *testing.T) {
	bank := engine.NewQuestionBank(engine.SeedCatalog())
	qs := bank.LookupFor("Mathematics", "Algebra", domain.DifficultyHard)
	if qs[0].Difficulty != domain.DifficultyHard {
		t.Fatalf("expected hard question first, got %q", qs[0].Difficulty)
	}
	all := bank.Lookup("Mathematics", "Geometry")
	if len(all) != 8 {
		t.Fatalf("expected whole-subject widening to 8 questions, got %d", len(all))
	}
}

func TestBankDropsInvalidEntries(t *testing.T) {
	bank := engine.NewQuestionBank(engine.Catalog{
		"S": {"T": {
			{Prompt: "ok", Options: map[string]string{"A": "1", "B": "2"}, CorrectAnswer: "B"},
			{Prompt: "bad", Options: map[string]string{"A": "1"}, CorrectAnswer: "C"},
		}},
	})
	if qs := bank.Lookup("S", "T"); len(qs) != 1 || qs[0].Prompt != "ok" {
		t.Fatalf("expected only the valid entry, got %+v", qs)
	}
}

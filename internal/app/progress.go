package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"acadtutor/internal/domain"
	"acadtutor/internal/ledger"
)

const (
	keyProfile          = "userProfile"
	keyHistory          = "quizHistory"
	keyTopicPerformance = "topicPerformance"
)

// StoreKey builds the persistence key of one of a user's records.
func StoreKey(userID, name string) string {
	return fmt.Sprintf("acadtutor:%s:%s", userID, name)
}

// GetProfile returns the persisted profile, or the default one when none is stored.
func (s *QuizService) GetProfile(ctx context.Context, userID string) domain.UserProfile {
	profile := domain.DefaultProfile()
	if s.loadJSON(ctx, StoreKey(userID, keyProfile), &profile) {
		profile = normalizeProfile(profile)
	}
	return profile
}

// SaveProfile fills defaults and persists the profile. Persistence failures are logged only.
func (s *QuizService) SaveProfile(ctx context.Context, userID string, profile domain.UserProfile) domain.UserProfile {
	profile = normalizeProfile(profile)
	s.saveJSON(ctx, StoreKey(userID, keyProfile), profile)
	return profile
}

func normalizeProfile(p domain.UserProfile) domain.UserProfile {
	def := domain.DefaultProfile()
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.AcademicLevel == "" {
		p.AcademicLevel = def.AcademicLevel
	}
	if p.PreferredSubjects == nil {
		p.PreferredSubjects = []string{}
	}
	return p
}

func (s *QuizService) record(ctx context.Context, userID string, quiz domain.Quiz, a domain.Assessment) {
	unlock := s.lockUser(userID)
	defer unlock()

	l := s.loadLedger(ctx, userID)
	l.RecordCompletion(domain.QuizHistoryEntry{
		Timestamp:      s.now(),
		Subject:        quiz.Subject,
		Topic:          quiz.Topic,
		Difficulty:     quiz.Difficulty,
		QuizType:       quiz.QuizType,
		Score:          a.Percentage,
		Grade:          a.Grade,
		TotalQuestions: a.TotalQuestions,
		CorrectAnswers: a.CorrectAnswers,
	})
	l.UpdateTopicPerformance(quiz.TopicKey(), a.Percentage)

	history, performance := l.Snapshot()
	s.saveJSON(ctx, StoreKey(userID, keyHistory), history)
	s.saveJSON(ctx, StoreKey(userID, keyTopicPerformance), performance)
}

// loadLedger rebuilds a user's ledger; missing or corrupt records count as empty.
func (s *QuizService) loadLedger(ctx context.Context, userID string) *ledger.Ledger {
	var history []domain.QuizHistoryEntry
	var performance map[string]domain.TopicPerformanceRecord
	s.loadJSON(ctx, StoreKey(userID, keyHistory), &history)
	s.loadJSON(ctx, StoreKey(userID, keyTopicPerformance), &performance)

	l := ledger.New(s.historyCap)
	l.Restore(history, performance)
	return l
}

// loadJSON decodes the value at key into v and reports whether it did.
func (s *QuizService) loadJSON(ctx context.Context, key string, v any) bool {
	if s.store == nil {
		return false
	}
	raw, ok, err := s.store.Load(ctx, key)
	if err != nil {
		log.Printf("%v: load %s: %v", domain.ErrPersistence, key, err)
		return false
	}
	if !ok || len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("%v: corrupt value at %s treated as empty: %v", domain.ErrPersistence, key, err)
		return false
	}
	return true
}

func (s *QuizService) saveJSON(ctx context.Context, key string, v any) {
	if s.store == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("%v: encode %s: %v", domain.ErrPersistence, key, err)
		return
	}
	if err := s.store.Save(ctx, key, raw); err != nil {
		log.Printf("%v: save %s: %v", domain.ErrPersistence, key, err)
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"acadtutor/internal/domain"
	"acadtutor/internal/engine"
	"acadtutor/internal/ledger"
)

// SessionRepository stores the single active quiz session of each user.
// Put replaces any earlier session of the same user. Take atomically removes and
// returns a session; a session already taken reports domain.ErrSessionNotFound.
type SessionRepository interface {
	Put(ctx context.Context, session domain.QuizSession) error
	Get(ctx context.Context, sessionID string) (domain.QuizSession, error)
	Take(ctx context.Context, sessionID string) (domain.QuizSession, error)
}

// Store is the key-value persistence collaborator for profile and progress data.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

// BankRepository provides the current question bank (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context) (*engine.QuestionBank, error)
}

// QuizGenerator is the remote quiz generation client.
type QuizGenerator interface {
	Generate(ctx context.Context, cfg domain.QuizConfig) (domain.RawQuizPayload, error)
}

// Assessor is the remote assessment client.
type Assessor interface {
	Assess(ctx context.Context, req domain.AssessRequest) (domain.Assessment, error)
}

// Explainer is the remote topic explanation client.
type Explainer interface {
	Explain(ctx context.Context, req domain.ExplainRequest) (string, error)
}

// QuizService contains the quiz lifecycle use cases. Remote collaborators are optional;
// whenever one is missing or fails, the local engine takes over.
type QuizService struct {
	sessions SessionRepository
	store    Store
	banks    BankRepository

	generator QuizGenerator
	assessor  Assessor
	explainer Explainer

	seq           engine.Sequence
	historyCap    int
	remoteTimeout time.Duration
	now           func() time.Time
	fallbackBank  *engine.QuestionBank

	userLocks sync.Map // userID -> *sync.Mutex
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithRemote wires the remote clients. Any of them may be nil.
func WithRemote(generator QuizGenerator, assessor Assessor, explainer Explainer) Option {
	return func(s *QuizService) {
		s.generator = generator
		s.assessor = assessor
		s.explainer = explainer
	}
}

// WithSequence sets the filler offset source; tests use engine.FixedSequence.
func WithSequence(seq engine.Sequence) Option {
	return func(s *QuizService) { s.seq = seq }
}

func WithHistoryCap(n int) Option {
	return func(s *QuizService) { s.historyCap = n }
}

func WithRemoteTimeout(d time.Duration) Option {
	return func(s *QuizService) { s.remoteTimeout = d }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(sessions SessionRepository, store Store, banks BankRepository, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:      sessions,
		store:         store,
		banks:         banks,
		seq:           engine.NewRandomSequence(time.Now().UnixNano()),
		historyCap:    ledger.DefaultHistoryCap,
		remoteTimeout: 30 * time.Second,
		now:           time.Now,
		fallbackBank:  engine.NewQuestionBank(engine.SeedCatalog()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartQuiz builds a quiz of exactly the requested length and opens it as the user's active session.
func (s *QuizService) StartQuiz(ctx context.Context, userID string, cfg domain.QuizConfig) (domain.QuizSession, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return domain.QuizSession{}, err
	}

	var remote []domain.RawQuestion
	if s.generator != nil {
		rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		payload, err := s.generator.Generate(rctx, cfg)
		cancel()
		if err != nil {
			log.Printf("user %s: quiz generation for %s degraded to local bank: %v", userID, domain.TopicKey(cfg.Subject, cfg.Topic), err)
		} else {
			remote = payload.Questions
		}
	}

	quiz, err := engine.NewSynthesizer(s.bank(ctx), s.seq).Build(cfg, remote)
	if err != nil {
		return domain.QuizSession{}, err
	}

	session := domain.QuizSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Config:    cfg,
		Quiz:      quiz,
		Answers:   domain.AnswerSet{},
		StartedAt: s.now(),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return domain.QuizSession{}, fmt.Errorf("%w: store session: %v", domain.ErrPersistence, err)
	}
	log.Printf("user %s: started %s quiz %s (%d questions, source=%s)", userID, quiz.TopicKey(), session.ID, len(quiz.Questions), quiz.Source)
	return session, nil
}

// Session returns an active session.
func (s *QuizService) Session(ctx context.Context, sessionID string) (domain.QuizSession, error) {
	return s.sessions.Get(ctx, sessionID)
}

// SelectAnswer records (or, with an empty answer, clears) the answer to one question.
func (s *QuizService) SelectAnswer(ctx context.Context, sessionID string, questionID int, answer string) (domain.QuizSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.QuizSession{}, err
	}
	if !hasQuestion(session.Quiz, questionID) {
		return domain.QuizSession{}, domain.ErrQuestionNotFound
	}

	if session.Answers == nil {
		session.Answers = domain.AnswerSet{}
	}
	if answer = normalizeAnswer(session.Quiz, answer); answer == "" {
		delete(session.Answers, questionID)
	} else {
		session.Answers[questionID] = answer
	}

	if err := s.sessions.Put(ctx, session); err != nil {
		return domain.QuizSession{}, fmt.Errorf("%w: store session: %v", domain.ErrPersistence, err)
	}
	return session, nil
}

// Submit finishes an active session. Answers passed here override the ones selected earlier.
// The session is closed before grading, so a repeated submit gets domain.ErrSessionNotFound.
func (s *QuizService) Submit(ctx context.Context, sessionID string, answers domain.AnswerSet) (domain.Assessment, error) {
	session, err := s.sessions.Take(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Assessment{}, err
		}
		return domain.Assessment{}, fmt.Errorf("%w: close session %s: %v", domain.ErrPersistence, sessionID, err)
	}
	merged := make(domain.AnswerSet, len(session.Answers)+len(answers))
	for id, a := range session.Answers {
		merged[id] = a
	}
	for id, a := range answers {
		if !hasQuestion(session.Quiz, id) {
			continue
		}
		if a = normalizeAnswer(session.Quiz, a); a == "" {
			delete(merged, id)
		} else {
			merged[id] = a
		}
	}

	return s.SubmitAnswers(ctx, session.UserID, session.Quiz, merged), nil
}

// SubmitAnswers assesses a quiz, remotely when possible, and records the result in the user's progress.
func (s *QuizService) SubmitAnswers(ctx context.Context, userID string, quiz domain.Quiz, answers domain.AnswerSet) domain.Assessment {
	var (
		assessment domain.Assessment
		assessed   bool
	)
	if s.assessor != nil {
		rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		a, err := s.assessor.Assess(rctx, domain.AssessRequest{Quiz: quiz, Answers: answers})
		cancel()
		if err != nil {
			log.Printf("user %s: assessment of %s degraded to local grading: %v", userID, quiz.TopicKey(), err)
		} else {
			assessment, assessed = a, true
		}
	}
	if !assessed {
		assessment = engine.NewFeedbackComposer(s.bank(ctx)).Assess(quiz, answers)
	}

	s.record(ctx, userID, quiz, assessment)
	return assessment
}

// GetTopicStats returns the aggregate for (subject, topic); ok is false when nothing was recorded.
func (s *QuizService) GetTopicStats(ctx context.Context, userID, subject, topic string) (domain.TopicPerformanceRecord, bool) {
	return s.loadLedger(ctx, userID).TopicStats(domain.TopicKey(subject, topic))
}

// GetHistory returns up to limit history entries, most recent first.
func (s *QuizService) GetHistory(ctx context.Context, userID string, limit int) []domain.QuizHistoryEntry {
	return s.loadLedger(ctx, userID).History(limit)
}

// GetStats returns the dashboard summary.
func (s *QuizService) GetStats(ctx context.Context, userID string) ledger.Stats {
	return s.loadLedger(ctx, userID).Stats()
}

// ExplainTopic returns a remote explanation, or a templated one when the remote path fails.
func (s *QuizService) ExplainTopic(ctx context.Context, req domain.ExplainRequest) (domain.Explanation, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Subject == "" || req.Topic == "" {
		return domain.Explanation{}, fmt.Errorf("%w: subject and topic are required", domain.ErrInvalidConfiguration)
	}
	if req.AcademicLevel == "" {
		req.AcademicLevel = domain.DefaultAcademicLevel
	}
	switch req.Kind {
	case "":
		req.Kind = domain.ExplanationComprehensive
	case domain.ExplanationQuick, domain.ExplanationDetailed, domain.ExplanationComprehensive:
	default:
		return domain.Explanation{}, fmt.Errorf("%w: unknown explanation type %q", domain.ErrInvalidConfiguration, req.Kind)
	}

	out := domain.Explanation{
		Subject:       req.Subject,
		Topic:         req.Topic,
		AcademicLevel: req.AcademicLevel,
		Kind:          req.Kind,
		GeneratedAt:   s.now(),
		Source:        domain.AssessedLocally,
	}
	if s.explainer != nil {
		rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		text, err := s.explainer.Explain(rctx, req)
		cancel()
		if err == nil {
			out.Text, out.Source = text, domain.AssessedRemotely
		} else {
			log.Printf("explanation of %s degraded to template: %v", domain.TopicKey(req.Subject, req.Topic), err)
		}
	}
	if out.Text == "" {
		out.Text = engine.LocalExplanation(req)
	}
	out.WordCount = len(strings.Fields(out.Text))
	return out, nil
}

func (s *QuizService) bank(ctx context.Context) *engine.QuestionBank {
	if s.banks == nil {
		return s.fallbackBank
	}
	bank, err := s.banks.GetBank(ctx)
	if err != nil || bank == nil {
		log.Printf("question bank unavailable, using seed content: %v", err)
		return s.fallbackBank
	}
	return bank
}

// lockUser serializes load-modify-save cycles on one user's progress.
func (s *QuizService) lockUser(userID string) func() {
	m, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func hasQuestion(quiz domain.Quiz, id int) bool {
	for _, q := range quiz.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}


// normalizeAnswer maps blank answers to "" (unanswered) and trims option keys.
// Free-response text is otherwise kept as typed.
func normalizeAnswer(quiz domain.Quiz, answer string) string {
	if strings.TrimSpace(answer) == "" {
		return ""
	}
	if quiz.QuizType == domain.QuizTypeFreeResponse {
		return answer
	}
	return strings.TrimSpace(answer)
}

package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"acadtutor/internal/app"
	"acadtutor/internal/domain"
	"acadtutor/internal/engine"
	"acadtutor/internal/infra/memory"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(opts ...app.Option) (*app.QuizService, *memory.Store) {
	store := memory.NewStore()
	banks := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(engine.SeedCatalog()), 5*time.Minute)
	opts = append([]app.Option{
		app.WithSequence(engine.FixedSequence(0)),
		app.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return app.NewQuizService(memory.NewSessionStore(), store, banks, opts...), store
}

type stubGenerator struct {
	payload domain.RawQuizPayload
	err     error
}

func (g stubGenerator) Generate(context.Context, domain.QuizConfig) (domain.RawQuizPayload, error) {
	return g.payload, g.err
}

type stubAssessor struct {
	err   error
	calls int
}

func (a *stubAssessor) Assess(_ context.Context, req domain.AssessRequest) (domain.Assessment, error) {
	a.calls++
	if a.err != nil {
		return domain.Assessment{}, a.err
	}
	out := engine.NewFeedbackComposer(engine.NewQuestionBank(nil)).Assess(req.Quiz, req.Answers)
	out.OverallFeedback = "remote says hi"
	out.Source = domain.AssessedRemotely
	return out, nil
}

type stubExplainer struct {
	text string
	err  error
}

func (e stubExplainer) Explain(context.Context, domain.ExplainRequest) (string, error) {
	return e.text, e.err
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (failingStore) Save(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func TestStartQuizFallsBackToBank(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(app.WithRemote(stubGenerator{err: domain.ErrRemoteUnavailable}, nil, nil))

	session, err := service.StartQuiz(ctx, "u1", domain.QuizConfig{Subject: "Blockchain", Topic: "Basics", NumQuestions: 5})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(session.Quiz.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(session.Quiz.Questions))
	}
	if session.Quiz.Source != domain.SourceSynthesized {
		t.Fatalf("expected synthesized quiz, got %s", session.Quiz.Source)
	}
	for i, q := range session.Quiz.Questions {
		if q.ID != i+1 {
			t.Fatalf("expected id %d, got %d", i+1, q.ID)
		}
	}
	if session.ID == "" || !session.StartedAt.Equal(fixedNow) {
		t.Fatalf("unexpected session metadata: %+v", session)
	}
}

func TestStartQuizBlendsRemoteQuestions(t *testing.T) {
	ctx := context.Background()
	gen := stubGenerator{payload: domain.RawQuizPayload{Questions: []domain.RawQuestion{
		{Prompt: "What is a nonce?", Options: map[string]string{"A": "A number used once", "B": "A wallet"}, CorrectAnswer: "A"},
	}}}
	service, _ := newTestService(app.WithRemote(gen, nil, nil))

	session, err := service.StartQuiz(ctx, "u1", domain.QuizConfig{Subject: "Blockchain", Topic: "Basics", NumQuestions: 3})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if session.Quiz.Source != domain.SourceBlended {
		t.Fatalf("expected blended quiz, got %s", session.Quiz.Source)
	}
	if session.Quiz.Questions[0].Prompt != "What is a nonce?" {
		t.Fatalf("expected remote question first, got %q", session.Quiz.Questions[0].Prompt)
	}
}

func TestStartQuizRejectsInvalidConfig(t *testing.T) {
	service, _ := newTestService()
	_, err := service.StartQuiz(context.Background(), "u1", domain.QuizConfig{Subject: "A", Topic: "B", NumQuestions: 0})
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestSelectAnswerAndSubmit(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	session, err := service.StartQuiz(ctx, "u1", domain.QuizConfig{Subject: "Blockchain", Topic: "Basics", NumQuestions: 3})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	correct := session.Quiz.Questions[0].CorrectAnswer

	if _, err := service.SelectAnswer(ctx, session.ID, 1, " "+correct+" "); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := service.SelectAnswer(ctx, session.ID, 99, "A"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if _, err := service.SelectAnswer(ctx, "missing", 1, "A"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	assessment, err := service.Submit(ctx, session.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if assessment.CorrectAnswers != 1 || assessment.TotalQuestions != 3 || assessment.Percentage != 33.3 {
		t.Fatalf("unexpected assessment: %d/%d %.1f", assessment.CorrectAnswers, assessment.TotalQuestions, assessment.Percentage)
	}
	if assessment.Source != domain.AssessedLocally {
		t.Fatalf("expected local assessment, got %s", assessment.Source)
	}
	if _, err := service.Session(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session to be closed, got %v", err)
	}

	history := service.GetHistory(ctx, "u1", 10)
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Score != 33.3 || history[0].Grade != "F" || !history[0].Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected history entry: %+v", history[0])
	}
}

func TestSubmitAnswersRecordsTopicStats(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	quiz := domain.Quiz{
		Subject: "Maths", Topic: "Sets", QuizType: domain.QuizTypeMultipleChoice, Difficulty: domain.DifficultyEasy,
		Questions: []domain.Question{
			{ID: 1, Prompt: "q1", Options: map[string]string{"A": "x", "B": "y"}, CorrectAnswer: "A"},
			{ID: 2, Prompt: "q2", Options: map[string]string{"A": "x", "B": "y"}, CorrectAnswer: "B"},
		},
	}

	service.SubmitAnswers(ctx, "u1", quiz, domain.AnswerSet{1: "A", 2: "B"})
	service.SubmitAnswers(ctx, "u1", quiz, domain.AnswerSet{1: "A"})

	rec, ok := service.GetTopicStats(ctx, "u1", "Maths", "Sets")
	if !ok {
		t.Fatalf("expected topic stats")
	}
	if rec.TotalQuizzes != 2 || rec.AverageScore != 75 {
		t.Fatalf("unexpected topic stats: %+v", rec)
	}
	if _, ok := service.GetTopicStats(ctx, "u2", "Maths", "Sets"); ok {
		t.Fatalf("expected no stats for another user")
	}

	stats := service.GetStats(ctx, "u1")
	if stats.TotalQuizzes != 2 || stats.AverageScore != 75 || stats.BestScore != 100 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestSubmitAnswersPrefersRemoteAssessment(t *testing.T) {
	ctx := context.Background()
	assessor := &stubAssessor{}
	service, _ := newTestService(app.WithRemote(nil, assessor, nil))
	quiz := domain.Quiz{Subject: "S", Topic: "T", Questions: []domain.Question{
		{ID: 1, Prompt: "q", Options: map[string]string{"A": "x", "B": "y"}, CorrectAnswer: "A"},
	}}

	a := service.SubmitAnswers(ctx, "u1", quiz, domain.AnswerSet{1: "A"})
	if a.Source != domain.AssessedRemotely || a.OverallFeedback != "remote says hi" {
		t.Fatalf("expected remote assessment, got %+v", a)
	}

	assessor.err = domain.ErrMalformedRemoteData
	a = service.SubmitAnswers(ctx, "u1", quiz, domain.AnswerSet{1: "B"})
	if a.Source != domain.AssessedLocally || a.Percentage != 0 {
		t.Fatalf("expected local fallback, got %+v", a)
	}
	if assessor.calls != 2 {
		t.Fatalf("expected one call per submission, got %d", assessor.calls)
	}
	if len(service.GetHistory(ctx, "u1", 0)) != 2 {
		t.Fatalf("expected both submissions recorded")
	}
}

func TestPersistenceFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	service := app.NewQuizService(memory.NewSessionStore(), failingStore{}, nil, app.WithSequence(engine.FixedSequence(0)))
	quiz := domain.Quiz{Subject: "S", Topic: "T", Questions: []domain.Question{
		{ID: 1, Prompt: "q", Options: map[string]string{"A": "x"}, CorrectAnswer: "A"},
	}}

	a := service.SubmitAnswers(ctx, "u1", quiz, domain.AnswerSet{1: "A"})
	if a.Percentage != 100 {
		t.Fatalf("expected assessment despite store failure, got %+v", a)
	}
	if h := service.GetHistory(ctx, "u1", 10); len(h) != 0 {
		t.Fatalf("expected empty history, got %d", len(h))
	}
	if p := service.GetProfile(ctx, "u1"); p.Name != "Student" {
		t.Fatalf("expected default profile, got %+v", p)
	}
}

func TestCorruptProgressTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()
	_ = store.Save(ctx, app.StoreKey("u1", "quizHistory"), []byte("{not json"))
	_ = store.Save(ctx, app.StoreKey("u1", "userProfile"), []byte("[]"))

	if h := service.GetHistory(ctx, "u1", 10); len(h) != 0 {
		t.Fatalf("expected empty history, got %d", len(h))
	}
	if p := service.GetProfile(ctx, "u1"); p.AcademicLevel != "College" {
		t.Fatalf("expected default profile, got %+v", p)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()

	saved := service.SaveProfile(ctx, "u1", domain.UserProfile{Name: "Ada"})
	if saved.AcademicLevel != "College" || saved.PreferredSubjects == nil {
		t.Fatalf("expected defaults filled, got %+v", saved)
	}
	got := service.GetProfile(ctx, "u1")
	if got.Name != "Ada" {
		t.Fatalf("expected stored profile, got %+v", got)
	}
	if _, ok, _ := store.Load(ctx, "acadtutor:u1:userProfile"); !ok {
		t.Fatalf("expected profile under the per-user key")
	}
}

func TestHistoryCapIsApplied(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	quiz := domain.Quiz{Subject: "S", Topic: "T", Questions: []domain.Question{
		{ID: 1, Prompt: "q", Options: map[string]string{"A": "x"}, CorrectAnswer: "A"},
	}}
	for i := 0; i < 55; i++ {
		service.SubmitAnswers(ctx, "u1", quiz, domain.AnswerSet{})
	}
	if h := service.GetHistory(ctx, "u1", 0); len(h) != 50 {
		t.Fatalf("expected 50 entries, got %d", len(h))
	}
}

func TestConcurrentSubmissionsKeepEveryEntry(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	quiz := domain.Quiz{Subject: "S", Topic: "T", Questions: []domain.Question{
		{ID: 1, Prompt: "q", Options: map[string]string{"A": "x"}, CorrectAnswer: "A"},
	}}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.SubmitAnswers(ctx, "u1", quiz, domain.AnswerSet{1: "A"})
		}()
	}
	wg.Wait()

	if h := service.GetHistory(ctx, "u1", 0); len(h) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(h))
	}
}

type slowAssessor struct {
	delay time.Duration
}

func (a slowAssessor) Assess(_ context.Context, req domain.AssessRequest) (domain.Assessment, error) {
	time.Sleep(a.delay)
	return engine.NewFeedbackComposer(engine.NewQuestionBank(nil)).Assess(req.Quiz, req.Answers), nil
}

func TestSubmitSameSessionTwiceRecordsOnce(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(app.WithRemote(nil, slowAssessor{delay: 50 * time.Millisecond}, nil))

	session, err := service.StartQuiz(ctx, "u1", domain.QuizConfig{Subject: "Blockchain", Topic: "Basics", NumQuestions: 3})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Submit(ctx, session.ID, nil)
		}(i)
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrSessionNotFound):
			notFound++
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	if ok != 1 || notFound != 1 {
		t.Fatalf("expected one success and one ErrSessionNotFound, got %v", errs)
	}
	if h := service.GetHistory(ctx, "u1", 0); len(h) != 1 {
		t.Fatalf("expected one history entry, got %d", len(h))
	}
	if rec, _ := service.GetTopicStats(ctx, "u1", "Blockchain", "Basics"); rec.TotalQuizzes != 1 {
		t.Fatalf("expected one topic score, got %+v", rec)
	}
}

func TestSubmitTrimsOptionKeys(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	session, err := service.StartQuiz(ctx, "u1", domain.QuizConfig{Subject: "Blockchain", Topic: "Basics", NumQuestions: 2})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	q1, q2 := session.Quiz.Questions[0], session.Quiz.Questions[1]
	if _, err := service.SelectAnswer(ctx, session.ID, q2.ID, q2.CorrectAnswer); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	assessment, err := service.Submit(ctx, session.ID, domain.AnswerSet{
		q1.ID: " " + q1.CorrectAnswer + "\n",
		q2.ID: "   ",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if assessment.CorrectAnswers != 1 {
		t.Fatalf("expected padded key to count and blank override to clear, got %d correct", assessment.CorrectAnswers)
	}
	if fb := assessment.QuestionFeedback[1]; fb.UserAnswer != nil {
		t.Fatalf("expected blank override to leave q2 unanswered, got %q", *fb.UserAnswer)
	}
}

func TestExplainTopic(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(app.WithRemote(nil, nil, stubExplainer{err: domain.ErrRemoteUnavailable}))

	out, err := service.ExplainTopic(ctx, domain.ExplainRequest{Subject: "Physics", Topic: "Mechanics", Kind: domain.ExplanationQuick})
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	if out.Source != domain.AssessedLocally || !strings.Contains(out.Text, "Mechanics") || out.WordCount == 0 {
		t.Fatalf("expected templated explanation, got %+v", out)
	}
	if out.AcademicLevel != domain.DefaultAcademicLevel {
		t.Fatalf("expected default level, got %q", out.AcademicLevel)
	}

	service, _ = newTestService(app.WithRemote(nil, nil, stubExplainer{text: "Forces cause acceleration."}))
	out, err = service.ExplainTopic(ctx, domain.ExplainRequest{Subject: "Physics", Topic: "Mechanics"})
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	if out.Source != domain.AssessedRemotely || out.WordCount != 3 || out.Kind != domain.ExplanationComprehensive {
		t.Fatalf("unexpected remote explanation: %+v", out)
	}

	if _, err := service.ExplainTopic(ctx, domain.ExplainRequest{Subject: "Physics", Topic: "Mechanics", Kind: "epic"}); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

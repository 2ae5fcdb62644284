package domain

import (
	"sort"
	"strings"
	"time"
)

// Difficulty is the requested difficulty of a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// QuizType selects between multiple-choice and free-response quizzes.
type QuizType string

const (
	QuizTypeMultipleChoice QuizType = "mcq"
	QuizTypeFreeResponse   QuizType = "subjective"
)

// QuizSource records where the questions of a quiz came from.
type QuizSource string

const (
	SourceRemote      QuizSource = "remote"
	SourceSynthesized QuizSource = "synthesized"
	SourceBlended     QuizSource = "blended"
)

// AssessmentSource records whether an assessment was produced remotely or by the local fallback.
type AssessmentSource string

const (
	AssessedRemotely AssessmentSource = "remote"
	AssessedLocally  AssessmentSource = "local"
)

// OptionAlphabet is the ordered set of option keys a multiple-choice question may use.
const OptionAlphabet = "ABCDEFGH"

// PlaceholderOptionKeys are the keys every normalized multiple-choice question carries at minimum.
var PlaceholderOptionKeys = []string{"A", "B", "C", "D"}

// Question is a single quiz question. Options and CorrectAnswer are only set for multiple-choice.
type Question struct {
	ID             int               `json:"id"`
	Prompt         string            `json:"question"`
	Options        map[string]string `json:"options,omitempty"`
	CorrectAnswer  string            `json:"correct_answer,omitempty"`
	Explanation    string            `json:"explanation,omitempty"`
	Difficulty     Difficulty        `json:"difficulty"`
	KeyPoints      []string          `json:"key_points,omitempty"`
	ModelAnswer    string            `json:"model_answer,omitempty"`
	ExpectedLength string            `json:"expected_length,omitempty"`
}

// OptionKeys returns the question's option keys in alphabet order.
func (q Question) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ki, kj := strings.Index(OptionAlphabet, keys[i]), strings.Index(OptionAlphabet, keys[j])
		if ki != kj {
			return ki < kj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Quiz is the generated set of questions presented in one sitting.
type Quiz struct {
	Title         string     `json:"title"`
	Subject       string     `json:"subject"`
	Topic         string     `json:"topic"`
	AcademicLevel string     `json:"academic_level"`
	Difficulty    Difficulty `json:"difficulty"`
	QuizType      QuizType   `json:"quiz_type"`
	Questions     []Question `json:"questions"`
	Source        QuizSource `json:"source"`
}

// TopicKey returns the aggregation key for the quiz's subject and topic.
func (q Quiz) TopicKey() string {
	return TopicKey(q.Subject, q.Topic)
}

// AnswerSet maps question ids to submitted answers. Unanswered questions are absent.
type AnswerSet map[int]string

// QuestionFeedback is the per-question part of an assessment.
type QuestionFeedback struct {
	QuestionID       int               `json:"question_id"`
	QuestionText     string            `json:"question_text"`
	Options          map[string]string `json:"options,omitempty"`
	UserAnswer       *string           `json:"user_answer"`
	CorrectAnswer    string            `json:"correct_answer,omitempty"`
	IsCorrect        bool              `json:"is_correct"`
	Explanation      string            `json:"explanation"`
	WhyWrong         *string           `json:"why_wrong"`
	KeyPointsCovered []string          `json:"key_points_covered,omitempty"`
	MissingPoints    []string          `json:"missing_points,omitempty"`
	ModelAnswer      string            `json:"model_answer,omitempty"`
}

// Assessment is the graded result of a quiz attempt.
type Assessment struct {
	TotalQuestions       int                `json:"total_questions"`
	CorrectAnswers       int                `json:"correct_answers"`
	Percentage           float64            `json:"percentage"`
	Grade                string             `json:"grade"`
	Strengths            []string           `json:"strengths"`
	AreasForImprovement  []string           `json:"areas_for_improvement"`
	OverallFeedback      string             `json:"overall_feedback"`
	QuestionFeedback     []QuestionFeedback `json:"question_feedback"`
	StudyRecommendations []string           `json:"study_recommendations,omitempty"`
	Source               AssessmentSource   `json:"source"`
}

// TopicPerformanceRecord aggregates every score recorded for one topic key.
type TopicPerformanceRecord struct {
	TopicKey     string    `json:"topic_key"`
	Scores       []float64 `json:"scores"`
	TotalQuizzes int       `json:"total_quizzes"`
	AverageScore int       `json:"average_score"`
}

// QuizHistoryEntry is an immutable snapshot of one completed quiz.
type QuizHistoryEntry struct {
	Timestamp      time.Time  `json:"timestamp"`
	Subject        string     `json:"subject"`
	Topic          string     `json:"topic"`
	Difficulty     Difficulty `json:"difficulty"`
	QuizType       QuizType   `json:"quiz_type"`
	Score          float64    `json:"score"`
	Grade          string     `json:"grade"`
	TotalQuestions int        `json:"total_questions"`
	CorrectAnswers int        `json:"correct_answers"`
}

// UserProfile holds the learner's persisted preferences.
type UserProfile struct {
	Name              string   `json:"name"`
	AcademicLevel     string   `json:"academic_level"`
	PreferredSubjects []string `json:"preferred_subjects"`
}

// DefaultProfile is used when no profile has been persisted yet.
func DefaultProfile() UserProfile {
	return UserProfile{Name: "Student", AcademicLevel: "College", PreferredSubjects: []string{}}
}

// QuizSession is the single active quiz of a user: the quiz plus the answers selected so far.
type QuizSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Config    QuizConfig `json:"config"`
	Quiz      Quiz       `json:"quiz"`
	Answers   AnswerSet  `json:"answers"`
	StartedAt time.Time  `json:"started_at"`
}

// RawQuestion is an untrusted question decoded from a remote payload. Zero values mean "missing".
type RawQuestion struct {
	ID             int
	Prompt         string
	Options        map[string]string
	CorrectAnswer  string
	Explanation    string
	KeyPoints      []string
	ModelAnswer    string
	ExpectedLength string
}

// RawQuizPayload is the untrusted result of the quiz generation client.
type RawQuizPayload struct {
	Questions []RawQuestion
}

// AssessRequest carries a finished quiz to the assessment client.
type AssessRequest struct {
	Quiz    Quiz
	Answers AnswerSet
}

// ExplanationKind selects the depth of a topic explanation.
type ExplanationKind string

const (
	ExplanationQuick         ExplanationKind = "quick"
	ExplanationDetailed      ExplanationKind = "detailed"
	ExplanationComprehensive ExplanationKind = "comprehensive"
)

// ExplainRequest asks for an explanation of a topic.
type ExplainRequest struct {
	Subject       string          `json:"subject"`
	Topic         string          `json:"topic"`
	AcademicLevel string          `json:"academicLevel"`
	Kind          ExplanationKind `json:"type"`
	Context       string          `json:"context"`
}

// Explanation is a generated or templated topic explanation.
type Explanation struct {
	Subject       string           `json:"subject"`
	Topic         string           `json:"topic"`
	AcademicLevel string           `json:"academic_level"`
	Kind          ExplanationKind  `json:"type"`
	Text          string           `json:"explanation"`
	WordCount     int              `json:"word_count"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Source        AssessmentSource `json:"source"`
}

package ledger

import (
	"math"

	"acadtutor/internal/domain"
)

const (
	DefaultHistoryCap = 50
	MinHistoryCap     = 50
	MaxHistoryCap     = 100
)

// Stats is the dashboard summary of a learner's history.
type Stats struct {
	TotalQuizzes int     `json:"total_quizzes"`
	AverageScore int     `json:"average_score"`
	BestScore    float64 `json:"best_score"`
	Trend        int     `json:"trend"`
}

// Ledger keeps a bounded quiz history (most recent first) and per-topic score aggregates.
// It is not safe for concurrent use; callers load, mutate and save it per request.
type Ledger struct {
	cap         int
	history     []domain.QuizHistoryEntry
	performance map[string]domain.TopicPerformanceRecord
}

// New returns an empty ledger. A cap outside [MinHistoryCap, MaxHistoryCap] is clamped.
func New(historyCap int) *Ledger {
	switch {
	case historyCap <= 0:
		historyCap = DefaultHistoryCap
	case historyCap < MinHistoryCap:
		historyCap = MinHistoryCap
	case historyCap > MaxHistoryCap:
		historyCap = MaxHistoryCap
	}
	return &Ledger{cap: historyCap, performance: make(map[string]domain.TopicPerformanceRecord)}
}

// Restore replaces the ledger's state with persisted snapshots. Nil input means empty,
// oversized history is truncated and performance records are recomputed from their scores.
func (l *Ledger) Restore(history []domain.QuizHistoryEntry, performance map[string]domain.TopicPerformanceRecord) {
	if len(history) > l.cap {
		history = history[:l.cap]
	}
	l.history = append([]domain.QuizHistoryEntry(nil), history...)
	l.performance = make(map[string]domain.TopicPerformanceRecord, len(performance))
	for key, rec := range performance {
		rec.TopicKey = key
		rec.Scores = append([]float64(nil), rec.Scores...)
		l.performance[key] = withAggregates(rec)
	}
}

// RecordCompletion prepends the entry and drops the oldest beyond the cap.
func (l *Ledger) RecordCompletion(entry domain.QuizHistoryEntry) {
	l.history = append([]domain.QuizHistoryEntry{entry}, l.history...)
	if len(l.history) > l.cap {
		l.history = l.history[:l.cap]
	}
}

// UpdateTopicPerformance appends a score to the topic and recomputes its aggregates.
func (l *Ledger) UpdateTopicPerformance(topicKey string, percentage float64) domain.TopicPerformanceRecord {
	rec := l.performance[topicKey]
	rec.TopicKey = topicKey
	rec.Scores = append(rec.Scores, percentage)
	rec = withAggregates(rec)
	l.performance[topicKey] = rec
	return rec
}

// Trend is the rounded average of the recentN latest scores minus that of the priorN before them.
// It is 0 until at least recentN+1 entries exist.
func (l *Ledger) Trend(recentN, priorN int) int {
	if recentN <= 0 || priorN <= 0 || len(l.history) < recentN+1 {
		return 0
	}
	recent := l.history[:recentN]
	end := recentN + priorN
	if end > len(l.history) {
		end = len(l.history)
	}
	prior := l.history[recentN:end]
	return int(math.Round(averageScore(recent) - averageScore(prior)))
}

// History returns up to limit entries, most recent first. A non-positive limit returns everything.
func (l *Ledger) History(limit int) []domain.QuizHistoryEntry {
	n := len(l.history)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]domain.QuizHistoryEntry{}, l.history[:n]...)
}

// TopicStats returns the aggregate for a topic key.
func (l *Ledger) TopicStats(topicKey string) (domain.TopicPerformanceRecord, bool) {
	rec, ok := l.performance[topicKey]
	if !ok {
		return domain.TopicPerformanceRecord{}, false
	}
	rec.Scores = append([]float64(nil), rec.Scores...)
	return rec, true
}

// Stats summarizes the retained history with the default 3-versus-3 trend.
func (l *Ledger) Stats() Stats {
	s := Stats{TotalQuizzes: len(l.history), Trend: l.Trend(3, 3)}
	if len(l.history) == 0 {
		return s
	}
	s.AverageScore = int(math.Round(averageScore(l.history)))
	for _, e := range l.history {
		if e.Score > s.BestScore {
			s.BestScore = e.Score
		}
	}
	return s
}

// Snapshot returns copies of the state for persistence.
func (l *Ledger) Snapshot() ([]domain.QuizHistoryEntry, map[string]domain.TopicPerformanceRecord) {
	perf := make(map[string]domain.TopicPerformanceRecord, len(l.performance))
	for key, rec := range l.performance {
		rec.Scores = append([]float64(nil), rec.Scores...)
		perf[key] = rec
	}
	return append([]domain.QuizHistoryEntry{}, l.history...), perf
}

func withAggregates(rec domain.TopicPerformanceRecord) domain.TopicPerformanceRecord {
	rec.TotalQuizzes = len(rec.Scores)
	rec.AverageScore = 0
	if len(rec.Scores) > 0 {
		sum := 0.0
		for _, s := range rec.Scores {
			sum += s
		}
		rec.AverageScore = int(math.Round(sum / float64(len(rec.Scores))))
	}
	return rec
}

func averageScore(entries []domain.QuizHistoryEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range entries {
		sum += e.Score
	}
	return sum / float64(len(entries))
}

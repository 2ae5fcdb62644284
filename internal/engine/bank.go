package engine

import (
	"log"
	"sort"

	"acadtutor/internal/domain"
)

const (
	// DefaultSubject and DefaultTopic name the question set used when nothing matches a lookup.
	DefaultSubject = "Blockchain"
	DefaultTopic   = "Basics"
)

// Catalog holds curated questions keyed by subject, then topic.
type Catalog map[string]map[string][]domain.Question

// Size returns the number of questions across all subjects and topics.
func (c Catalog) Size() int {
	n := 0
	for _, topics := range c {
		for _, qs := range topics {
			n += len(qs)
		}
	}
	return n
}

// Merge returns a new catalog with the topics of other layered over c.
func (c Catalog) Merge(other Catalog) Catalog {
	out := make(Catalog, len(c)+len(other))
	for _, src := range []Catalog{c, other} {
		for subject, topics := range src {
			if out[subject] == nil {
				out[subject] = make(map[string][]domain.Question, len(topics))
			}
			for topic, qs := range topics {
				out[subject][topic] = qs
			}
		}
	}
	return out
}

// WhyWrongTable maps exact question text to a rationale per wrong option key.
type WhyWrongTable map[string]map[string]string

// QuestionBank serves curated questions. It is read-only once built.
type QuestionBank struct {
	catalog        Catalog
	whyWrong       WhyWrongTable
	defaultSubject string
	defaultTopic   string
}

// BankOption customizes a QuestionBank.
type BankOption func(*QuestionBank)

// WithDefaultTopic overrides the question set used as the last lookup fallback.
func WithDefaultTopic(subject, topic string) BankOption {
	return func(b *QuestionBank) {
		b.defaultSubject = subject
		b.defaultTopic = topic
	}
}

// WithWhyWrong installs a curated wrong-answer rationale table.
func WithWhyWrong(table WhyWrongTable) BankOption {
	return func(b *QuestionBank) { b.whyWrong = table }
}

// NewQuestionBank copies the catalog, dropping questions that violate the multiple-choice invariants.
func NewQuestionBank(catalog Catalog, opts ...BankOption) *QuestionBank {
	b := &QuestionBank{
		catalog:        make(Catalog, len(catalog)),
		whyWrong:       SeedWhyWrong(),
		defaultSubject: DefaultSubject,
		defaultTopic:   DefaultTopic,
	}
	for _, opt := range opts {
		opt(b)
	}

	for subject, topics := range catalog {
		kept := make(map[string][]domain.Question, len(topics))
		for topic, qs := range topics {
			valid := make([]domain.Question, 0, len(qs))
			for _, q := range qs {
				if err := domain.ValidateQuestion(q); err != nil {
					log.Printf("question bank: dropping %s/%s entry: %v", subject, topic, err)
					continue
				}
				valid = append(valid, cloneQuestion(q))
			}
			if len(valid) > 0 {
				kept[topic] = valid
			}
		}
		if len(kept) > 0 {
			b.catalog[subject] = kept
		}
	}
	return b
}

// Lookup returns the curated questions for (subject, topic), widening to the whole subject and then
// to the default topic. The result is empty only when the default topic itself has no questions.
func (b *QuestionBank) Lookup(subject, topic string) []domain.Question {
	if topics, ok := b.catalog[subject]; ok {
		if qs, ok := topics[topic]; ok {
			return cloneQuestions(qs)
		}
		var all []domain.Question
		for _, name := range sortedTopics(topics) {
			all = append(all, topics[name]...)
		}
		return cloneQuestions(all)
	}
	return cloneQuestions(b.catalog[b.defaultSubject][b.defaultTopic])
}

// LookupFor is Lookup with questions of the requested difficulty ordered first.
func (b *QuestionBank) LookupFor(subject, topic string, difficulty domain.Difficulty) []domain.Question {
	qs := b.Lookup(subject, topic)
	rank := func(d domain.Difficulty) int {
		if d == difficulty {
			return -1
		}
		for i, known := range domain.Difficulties {
			if d == known {
				return i
			}
		}
		return len(domain.Difficulties)
	}
	sort.SliceStable(qs, func(i, j int) bool {
		return rank(qs[i].Difficulty) < rank(qs[j].Difficulty)
	})
	return qs
}

// WhyWrong returns the curated rationale for choosing wrongKey on the question with the given text.
func (b *QuestionBank) WhyWrong(questionText, wrongKey string) (string, bool) {
	byKey, ok := b.whyWrong[questionText]
	if !ok {
		return "", false
	}
	reason, ok := byKey[wrongKey]
	return reason, ok
}

// Subjects lists the subjects with curated content, sorted.
func (b *QuestionBank) Subjects() []string {
	subjects := make([]string, 0, len(b.catalog))
	for s := range b.catalog {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects
}

func sortedTopics(topics map[string][]domain.Question) []string {
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneQuestions(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		out[i] = cloneQuestion(q)
	}
	return out
}

func cloneQuestion(q domain.Question) domain.Question {
	if q.Options != nil {
		opts := make(map[string]string, len(q.Options))
		for k, v := range q.Options {
			opts[k] = v
		}
		q.Options = opts
	}
	if q.KeyPoints != nil {
		q.KeyPoints = append([]string(nil), q.KeyPoints...)
	}
	return q
}

package generator

import (
	"context"
	"sync"

	"quizcraft/internal/domain"
)

// StaticSource hands out a fixed question list in order, skipping prompts
// already present in the exclusion list. It backs tests and key-less demo
// runs of the server.
type StaticSource struct {
	mu        sync.Mutex
	questions []domain.Question
}

func NewStaticSource(questions []domain.Question) *StaticSource {
	return &StaticSource{questions: questions}
}

func (s *StaticSource) Generate(_ context.Context, _ string, existing []string) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := make(map[string]struct{}, len(existing))
	for _, prompt := range existing {
		used[domain.NormalizeAnswer(prompt)] = struct{}{}
	}
	for _, question := range s.questions {
		if _, ok := used[domain.NormalizeAnswer(question.Prompt)]; !ok {
			return question, nil
		}
	}
	return domain.Question{}, domain.ErrNoQuestions
}

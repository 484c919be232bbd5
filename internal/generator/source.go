// Package generator supplies freshly generated quiz questions for a topic.
package generator

import (
	"context"

	"quizcraft/internal/domain"
)

// Source produces one new question for a topic. The existing list carries
// the prompts already in use; the source makes a best effort to return a
// question textually distinct from all of them. Sources hold no mutable
// per-topic state: everything a request needs travels in its arguments.
type Source interface {
	Generate(ctx context.Context, topic string, existing []string) (domain.Question, error)
}

// GenerateBatch obtains n questions through n sequential Generate calls,
// feeding each question's prompt back into the exclusion list for the next.
// A failed call aborts the batch and the partial result is discarded, so a
// quiz is never created half-filled.
func GenerateBatch(ctx context.Context, src Source, topic string, existing []string, n int) ([]domain.Question, error) {
	exclude := append([]string(nil), existing...)
	batch := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		question, err := src.Generate(ctx, topic, exclude)
		if err != nil {
			return nil, err
		}
		batch = append(batch, question)
		exclude = append(exclude, question.Prompt)
	}
	return batch, nil
}

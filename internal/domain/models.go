package domain

import (
	"fmt"
	"strings"
	"time"
)

// OptionCount is the number of choices every question carries. Options are
// displayed in order, labeled A through D.
const OptionCount = 4

// Question models an MCQ item with exactly four options and one correct answer.
// The correct answer is identified by its text, not by index.
type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Quiz is a persisted collection of questions for one topic, plus the
// cumulative correct/incorrect counters across all play-throughs.
type Quiz struct {
	ID        string     `json:"id"`
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
	Correct   int        `json:"correct"`
	Incorrect int        `json:"incorrect"`
	CreatedAt time.Time  `json:"created_at"`
}

// Outcome is the resolution of a single question within a session.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeTimedOut  Outcome = "timed_out"
)

// NormalizeAnswer canonicalizes answer text for comparison: surrounding
// whitespace is trimmed and case is folded.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsCorrect reports whether choice matches the question's correct answer
// under normalized comparison.
func (q Question) IsCorrect(choice string) bool {
	return NormalizeAnswer(choice) == NormalizeAnswer(q.CorrectAnswer)
}

// Validate checks the question invariants: exactly four distinct options and
// a correct answer matching exactly one of them.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidQuestion)
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("%w: got %d options, want %d", ErrInvalidQuestion, len(q.Options), OptionCount)
	}
	seen := make(map[string]struct{}, OptionCount)
	matches := 0
	for _, opt := range q.Options {
		norm := NormalizeAnswer(opt)
		if norm == "" {
			return fmt.Errorf("%w: empty option", ErrInvalidQuestion)
		}
		if _, dup := seen[norm]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidQuestion, opt)
		}
		seen[norm] = struct{}{}
		if norm == NormalizeAnswer(q.CorrectAnswer) {
			matches++
		}
	}
	if matches != 1 {
		return fmt.Errorf("%w: correct answer %q matches %d options", ErrInvalidQuestion, q.CorrectAnswer, matches)
	}
	return nil
}

// Prompts returns the prompt text of every question, in play order. Used to
// seed the generator's exclusion list.
func (q Quiz) Prompts() []string {
	prompts := make([]string, len(q.Questions))
	for i, question := range q.Questions {
		prompts[i] = question.Prompt
	}
	return prompts
}

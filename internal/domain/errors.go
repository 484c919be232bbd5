package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz record could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when a play session has not been started.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidQuestion indicates a question violates the MCQ invariants.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrEmptyTopic is returned when quiz creation is attempted without a topic.
	ErrEmptyTopic = errors.New("topic must not be empty")
	// ErrNoQuestions is returned when a session is started with no questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrNotActive rejects an answer submitted while no question is open.
	ErrNotActive = errors.New("session is not awaiting an answer")
	// ErrNotResolved rejects an advance before the current question is resolved.
	ErrNotResolved = errors.New("current question is not resolved")
)

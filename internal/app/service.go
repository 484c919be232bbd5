package app

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"time"

	"quizcraft/internal/domain"
	"quizcraft/internal/generator"
	"quizcraft/internal/session"
)

// QuizStore abstracts the persistent quiz record (Postgres, in-memory, or a
// cache-wrapped composite).
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context, limit int) ([]domain.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	AppendQuestions(ctx context.Context, id string, questions []domain.Question) error
	// IncrementScore adds one to the quiz's correct or incorrect counter.
	// Implementations must be additive under concurrency, not
	// read-modify-write.
	IncrementScore(ctx context.Context, id string, correct bool) error
}

// SessionRepository tracks live play sessions by ID.
type SessionRepository interface {
	Put(s *session.Session)
	Get(id string) (*session.Session, bool)
	Delete(id string)
}

// Service contains the quiz use cases: creation from a topic, CRUD reads,
// and the play-session lifecycle.
type Service struct {
	quizzes    QuizStore
	sessions   SessionRepository
	source     generator.Source
	sessionCfg session.Config
}

func NewService(quizzes QuizStore, sessions SessionRepository, source generator.Source, cfg session.Config) *Service {
	return &Service{
		quizzes:    quizzes,
		sessions:   sessions,
		source:     source,
		sessionCfg: cfg,
	}
}

// CreateQuiz generates numQuestions questions for the topic and persists a
// new quiz record. Generation failure aborts the whole operation: no partial
// quiz is ever stored.
func (s *Service) CreateQuiz(ctx context.Context, topic string, numQuestions int) (domain.Quiz, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.Quiz{}, domain.ErrEmptyTopic
	}
	if numQuestions <= 0 {
		numQuestions = 1
	}

	questions, err := generator.GenerateBatch(ctx, s.source, topic, nil, numQuestions)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		ID:        newID(),
		Topic:     topic,
		Questions: questions,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// GetQuiz loads one quiz by ID.
func (s *Service) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, id)
}

// ListQuizzes returns quizzes ordered newest first.
func (s *Service) ListQuizzes(ctx context.Context, limit int) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx, limit)
}

// DeleteQuiz removes a quiz record.
func (s *Service) DeleteQuiz(ctx context.Context, id string) error {
	return s.quizzes.DeleteQuiz(ctx, id)
}

// StartSession begins a play-through of the quiz. Resolved questions feed
// the quiz's counters through a fire-and-forget bridge; a lost write is
// logged but never blocks play.
func (s *Service) StartSession(ctx context.Context, quizID string) (*session.Session, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	sink := &scoreBridge{store: s.quizzes, quizID: quiz.ID}
	sess, err := session.New(newID(), quiz.ID, quiz.Questions, s.sessionCfg, sink)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(sess)
	return sess, nil
}

// GetSession looks up a live session.
func (s *Service) GetSession(id string) (*session.Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// EndSession stops a session's countdown and forgets it. Any in-flight
// responses for the session are discarded on arrival.
func (s *Service) EndSession(id string) {
	if sess, ok := s.sessions.Get(id); ok {
		sess.Close()
		s.sessions.Delete(id)
	}
}

// Restart replays the session's current questions from the start.
func (s *Service) Restart(sess *session.Session) (session.Snapshot, error) {
	return sess.Restart(nil)
}

// RestartWithMore extends the quiz with n freshly generated questions and
// restarts the session over the grown list. The generator's exclusion list
// is seeded with every prompt the quiz already has. On generation failure
// the session keeps its current state and the caller may retry.
func (s *Service) RestartWithMore(ctx context.Context, sess *session.Session, n int) (session.Snapshot, error) {
	if n <= 0 {
		n = 1
	}
	quiz, err := s.quizzes.GetQuiz(ctx, sess.QuizID())
	if err != nil {
		return session.Snapshot{}, err
	}
	fresh, err := generator.GenerateBatch(ctx, s.source, quiz.Topic, quiz.Prompts(), n)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := s.quizzes.AppendQuestions(ctx, quiz.ID, fresh); err != nil {
		return session.Snapshot{}, err
	}
	return sess.Restart(append(quiz.Questions, fresh...))
}

// scoreBridge translates session outcomes into quiz counter increments.
// RecordOutcome returns immediately; the write happens in the background
// with its own deadline.
type scoreBridge struct {
	store  QuizStore
	quizID string
}

func (b *scoreBridge) RecordOutcome(correct bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.store.IncrementScore(ctx, b.quizID, correct); err != nil {
			log.Printf("quiz %s: score may not have saved: %v", b.quizID, err)
		}
	}()
}

const idCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

func newID() string {
	b := make([]byte, 12)
	for i := range b {
		b[i] = idCharset[rand.Intn(len(idCharset))]
	}
	return string(b)
}

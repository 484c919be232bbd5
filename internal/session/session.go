package session

import (
	"sync"
	"time"

	"quizcraft/internal/domain"
)

// Status is the lifecycle phase of a play session.
type Status string

const (
	// StatusActive means a question is open and the countdown is running.
	StatusActive Status = "active"
	// StatusResolved means the current question has an outcome and the
	// session is waiting for an advance.
	StatusResolved Status = "resolved"
	// StatusFinished means the last question has been resolved.
	StatusFinished Status = "finished"
)

// Config carries the tunable session parameters.
type Config struct {
	// CountdownTicks is the number of ticks a question stays open. The
	// countdown decrements by one unit per tick.
	CountdownTicks int
	// TickInterval is the real-time spacing between ticks. Zero disables
	// the internal ticker; ticks must then be driven through Tick.
	TickInterval time.Duration
	// PassThreshold is the minimum tally for a finished session to pass.
	PassThreshold int
}

// DefaultConfig mirrors the countdown and threshold the product shipped with.
func DefaultConfig() Config {
	return Config{
		CountdownTicks: 10,
		TickInterval:   time.Second,
		PassThreshold:  4,
	}
}

// ScoreSink receives the boolean outcome of every resolved question.
// Implementations must not block: persistence failures are the sink's
// problem and never hold up a state transition.
type ScoreSink interface {
	RecordOutcome(correct bool)
}

// NopSink discards outcomes.
type NopSink struct{}

func (NopSink) RecordOutcome(bool) {}

// Snapshot is the read-only view of a session handed to the presentation
// layer. The correct answer is only revealed once the question is resolved.
type Snapshot struct {
	SessionID     string         `json:"sessionId"`
	QuizID        string         `json:"quizId"`
	Status        Status         `json:"status"`
	Index         int            `json:"index"`
	Total         int            `json:"total"`
	Prompt        string         `json:"prompt"`
	Options       []string       `json:"options"`
	TimeRemaining int            `json:"timeRemaining"`
	Selected      string         `json:"selected,omitempty"`
	Outcome       domain.Outcome `json:"outcome,omitempty"`
	CorrectAnswer string         `json:"correctAnswer,omitempty"`
	Tally         int            `json:"tally"`
	Passed        bool           `json:"passed"`
}

// Session owns the in-memory lifecycle of one quiz play-through: current
// question, countdown, answer resolution and tally. All transitions are
// guarded by status, so a racing tick and submit cannot both win.
type Session struct {
	id     string
	quizID string
	cfg    Config
	sink   ScoreSink

	mu            sync.Mutex
	questions     []domain.Question
	index         int
	timeRemaining int
	selected      string
	outcome       domain.Outcome
	status        Status
	tally         int
	// epoch increments every time a fresh countdown starts. A tick carrying
	// a stale epoch is discarded, so no ticker stopped late can touch a
	// resolved or restarted session.
	epoch    uint64
	stopTick chan struct{}

	subscribers map[chan Snapshot]struct{}
	closed      bool
}

// New starts a session over a non-empty question sequence, entering Active
// on question 0 with a full countdown.
func New(id, quizID string, questions []domain.Question, cfg Config, sink ScoreSink) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if cfg.CountdownTicks <= 0 {
		cfg.CountdownTicks = DefaultConfig().CountdownTicks
	}
	if sink == nil {
		sink = NopSink{}
	}
	s := &Session{
		id:          id,
		quizID:      quizID,
		cfg:         cfg,
		sink:        sink,
		questions:   questions,
		subscribers: make(map[chan Snapshot]struct{}),
	}
	s.mu.Lock()
	s.activateLocked(0)
	s.mu.Unlock()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// QuizID returns the identifier of the quiz being played.
func (s *Session) QuizID() string { return s.quizID }

// Snapshot returns the current read-only state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SubmitAnswer resolves the open question against the given choice. Valid
// only while Active; a second submit or a submit after timeout is rejected
// with ErrNotActive and records nothing.
func (s *Session) SubmitAnswer(choice string) (Snapshot, error) {
	s.mu.Lock()
	if s.status != StatusActive {
		s.mu.Unlock()
		return Snapshot{}, domain.ErrNotActive
	}
	correct := s.questions[s.index].IsCorrect(choice)
	s.selected = choice
	if correct {
		s.outcome = domain.OutcomeCorrect
		s.tally++
	} else {
		s.outcome = domain.OutcomeIncorrect
	}
	s.resolveLocked()
	snap := s.broadcastLocked()
	s.mu.Unlock()

	s.sink.RecordOutcome(correct)
	return snap, nil
}

// Advance moves past a resolved question: to the next question with a fresh
// countdown, or to Finished after the last one.
func (s *Session) Advance() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusResolved {
		return Snapshot{}, domain.ErrNotResolved
	}
	if s.index+1 < len(s.questions) {
		s.activateLocked(s.index + 1)
	} else {
		s.status = StatusFinished
	}
	return s.broadcastLocked(), nil
}

// Restart resets the session to question 0 with a zero tally and a fresh
// countdown. It is valid in any state, as a recovery action. A non-nil
// question list replaces the current one; nil replays the same questions.
func (s *Session) Restart(questions []domain.Question) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if questions != nil {
		if len(questions) == 0 {
			return Snapshot{}, domain.ErrNoQuestions
		}
		s.questions = questions
	}
	s.stopCountdownLocked()
	s.tally = 0
	s.activateLocked(0)
	return s.broadcastLocked(), nil
}

// Tick decrements the countdown by one unit. It is driven by the internal
// ticker when TickInterval is set, or called directly in manual mode. Ticks
// arriving outside Active are discarded.
func (s *Session) Tick() {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	s.tick(epoch)
}

func (s *Session) tick(epoch uint64) {
	s.mu.Lock()
	if s.status != StatusActive || s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	s.timeRemaining--
	if s.timeRemaining > 0 {
		s.broadcastLocked()
		s.mu.Unlock()
		return
	}
	// Time expired: distinct timedOut outcome, counted as incorrect for scoring.
	s.timeRemaining = 0
	s.outcome = domain.OutcomeTimedOut
	s.resolveLocked()
	s.broadcastLocked()
	s.mu.Unlock()

	s.sink.RecordOutcome(false)
}

// Subscribe returns a channel receiving state snapshots, starting with the
// current one. The caller must invoke cancel to release the channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the countdown and drops all subscribers. The session accepts
// no further ticks afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopCountdownLocked()
	s.epoch++
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// activateLocked opens the question at idx with a full countdown.
func (s *Session) activateLocked(idx int) {
	s.index = idx
	s.timeRemaining = s.cfg.CountdownTicks
	s.selected = ""
	s.outcome = domain.OutcomeNone
	s.status = StatusActive
	s.epoch++
	s.startCountdownLocked()
}

// resolveLocked leaves Active: the countdown must be fully stopped before
// the status changes so no late tick can touch the resolved state.
func (s *Session) resolveLocked() {
	s.stopCountdownLocked()
	s.epoch++
	s.status = StatusResolved
}

func (s *Session) startCountdownLocked() {
	if s.cfg.TickInterval <= 0 || s.closed {
		return
	}
	stop := make(chan struct{})
	s.stopTick = stop
	epoch := s.epoch
	go func() {
		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.tick(epoch)
			case <-stop:
				return
			}
		}
	}()
}

func (s *Session) stopCountdownLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

func (s *Session) snapshotLocked() Snapshot {
	question := s.questions[s.index]
	snap := Snapshot{
		SessionID:     s.id,
		QuizID:        s.quizID,
		Status:        s.status,
		Index:         s.index,
		Total:         len(s.questions),
		Prompt:        question.Prompt,
		Options:       append([]string(nil), question.Options...),
		TimeRemaining: s.timeRemaining,
		Selected:      s.selected,
		Outcome:       s.outcome,
		Tally:         s.tally,
	}
	if s.status != StatusActive {
		snap.CorrectAnswer = question.CorrectAnswer
	}
	if s.status == StatusFinished {
		snap.Passed = s.tally >= s.cfg.PassThreshold
	}
	return snap
}

func (s *Session) broadcastLocked() Snapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest pending snapshot so a slow reader cannot
			// block a transition.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

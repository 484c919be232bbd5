package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizcraft/internal/app"
	"quizcraft/internal/domain"
	"quizcraft/internal/generator"
	"quizcraft/internal/infra/memory"
	"quizcraft/internal/session"
)

func newTestService(t *testing.T, questions int) (*app.Service, domain.Quiz) {
	t.Helper()
	pool := []domain.Question{
		{Prompt: "Q1", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "B"},
		{Prompt: "Q2", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "C"},
	}
	svc := app.NewService(memory.NewQuizStore(), memory.NewSessionStore(), generator.NewStaticSource(pool), session.Config{
		CountdownTicks: 10,
		TickInterval:   0, // no ticker noise in the message stream
		PassThreshold:  4,
	})
	quiz, err := svc.CreateQuiz(context.Background(), "go", questions)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return svc, quiz
}

func TestWebSocketPlayFlow(t *testing.T) {
	svc, quiz := newTestService(t, 1)
	wsHandler := NewWSHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/play", wsHandler.ServePlay)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/play?quizId=" + quiz.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial state: active on question 0 with a full countdown.
	snap := readState(conn, t)
	if snap.Status != session.StatusActive || snap.Index != 0 || snap.TimeRemaining != 10 {
		t.Fatalf("unexpected initial state %+v", snap)
	}
	if snap.CorrectAnswer != "" {
		t.Fatalf("active state must not reveal the correct answer")
	}

	// Answer with the wrong case: still correct.
	writeMsg(conn, t, map[string]any{"type": "answer", "payload": map[string]any{"answer": "b"}})
	snap = readState(conn, t)
	if snap.Status != session.StatusResolved || snap.Outcome != domain.OutcomeCorrect || snap.Tally != 1 {
		t.Fatalf("unexpected resolved state %+v", snap)
	}
	if snap.CorrectAnswer != "B" {
		t.Fatalf("resolved state should carry the correct answer, got %q", snap.CorrectAnswer)
	}

	// Advance past the last question into Finished.
	writeMsg(conn, t, map[string]any{"type": "advance"})
	snap = readState(conn, t)
	if snap.Status != session.StatusFinished || snap.Tally != 1 || snap.Total != 1 {
		t.Fatalf("unexpected finished state %+v", snap)
	}

	// Restart replays from question 0.
	writeMsg(conn, t, map[string]any{"type": "restart"})
	snap = readState(conn, t)
	if snap.Status != session.StatusActive || snap.Index != 0 || snap.Tally != 0 {
		t.Fatalf("unexpected restarted state %+v", snap)
	}
}

func TestWebSocketRejectsInvalidIntents(t *testing.T) {
	svc, quiz := newTestService(t, 1)
	wsHandler := NewWSHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/play", wsHandler.ServePlay)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/play?quizId=" + quiz.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readState(conn, t) // initial

	// Advancing while active is an error message, not a state change.
	writeMsg(conn, t, map[string]any{"type": "advance"})
	typ, payload := readNext(conn, t)
	if typ != "error" {
		t.Fatalf("expected error, got %s %+v", typ, payload)
	}

	writeMsg(conn, t, map[string]any{"type": "bogus"})
	typ, _ = readNext(conn, t)
	if typ != "error" {
		t.Fatalf("expected error for unsupported type, got %s", typ)
	}
}

func TestWebSocketUnknownQuiz(t *testing.T) {
	svc, _ := newTestService(t, 1)
	wsHandler := NewWSHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/play", wsHandler.ServePlay)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/play?quizId=missing"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	typ, payload := readNext(conn, t)
	if typ != "error" {
		t.Fatalf("expected error, got %s %+v", typ, payload)
	}
}

func writeMsg(conn *websocket.Conn, t *testing.T, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readState(conn *websocket.Conn, t *testing.T) session.Snapshot {
	t.Helper()
	var msg struct {
		Type    string           `json:"type"`
		Payload session.Snapshot `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %s", msg.Type)
	}
	return msg.Payload
}

func readNext(conn *websocket.Conn, t *testing.T) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

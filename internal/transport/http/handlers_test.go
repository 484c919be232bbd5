package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizcraft/internal/domain"
)

func newRESTServer(t *testing.T) (*httptest.Server, domain.Quiz) {
	t.Helper()
	svc, quiz := newTestService(t, 2)
	mux := http.NewServeMux()
	NewHandler(svc, 5).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, quiz
}

func TestCreateQuizEndpoint(t *testing.T) {
	server, _ := newRESTServer(t)

	resp, err := http.Post(server.URL+"/api/quizzes", "application/json",
		strings.NewReader(`{"topic":"history","numQuestions":1}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var quiz domain.Quiz
	if err := json.NewDecoder(resp.Body).Decode(&quiz); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if quiz.ID == "" || quiz.Topic != "history" || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
}

func TestCreateQuizEndpointRejectsEmptyTopic(t *testing.T) {
	server, _ := newRESTServer(t)

	resp, err := http.Post(server.URL+"/api/quizzes", "application/json",
		strings.NewReader(`{"topic":"  "}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetAndListQuizEndpoints(t *testing.T) {
	server, quiz := newRESTServer(t)

	resp, err := http.Get(server.URL + "/api/quizzes/" + quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var loaded domain.Quiz
	if err := json.NewDecoder(resp.Body).Decode(&loaded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loaded.ID != quiz.ID || len(loaded.Questions) != 2 {
		t.Fatalf("unexpected quiz %+v", loaded)
	}

	listResp, err := http.Get(server.URL + "/api/quizzes")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer listResp.Body.Close()
	var quizzes []domain.Quiz
	if err := json.NewDecoder(listResp.Body).Decode(&quizzes); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != quiz.ID {
		t.Fatalf("unexpected listing %+v", quizzes)
	}
}

func TestGetQuizEndpointNotFound(t *testing.T) {
	server, _ := newRESTServer(t)

	resp, err := http.Get(server.URL + "/api/quizzes/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteQuizEndpoint(t *testing.T) {
	server, quiz := newRESTServer(t)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/quizzes/"+quiz.ID, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	getResp, err := http.Get(server.URL + "/api/quizzes/" + quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", getResp.StatusCode)
	}
}

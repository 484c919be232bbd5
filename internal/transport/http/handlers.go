package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quizcraft/internal/app"
	"quizcraft/internal/domain"
)

// Handler exposes the quiz CRUD surface over REST.
type Handler struct {
	service          *app.Service
	defaultQuestions int
}

func NewHandler(service *app.Service, defaultQuestions int) *Handler {
	if defaultQuestions <= 0 {
		defaultQuestions = 5
	}
	return &Handler{service: service, defaultQuestions: defaultQuestions}
}

// Register mounts the REST routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/quizzes", h.createQuiz)
	mux.HandleFunc("GET /api/quizzes", h.listQuizzes)
	mux.HandleFunc("GET /api/quizzes/{id}", h.getQuiz)
	mux.HandleFunc("DELETE /api/quizzes/{id}", h.deleteQuiz)
}

type createQuizRequest struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"numQuestions"`
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NumQuestions <= 0 {
		req.NumQuestions = h.defaultQuestions
	}

	quiz, err := h.service.CreateQuiz(r.Context(), req.Topic, req.NumQuestions)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyTopic):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("create quiz: %v", err)
			writeError(w, http.StatusBadGateway, "failed to generate quiz")
		}
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	quizzes, err := h.service.ListQuizzes(r.Context(), limit)
	if err != nil {
		log.Printf("list quizzes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list quizzes")
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("get quiz: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load quiz")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("delete quiz: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete quiz")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

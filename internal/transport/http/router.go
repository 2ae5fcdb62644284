package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"acadtutor/internal/domain"
	"acadtutor/internal/ledger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// QuizAPI is the part of app.QuizService the transports drive.
type QuizAPI interface {
	StartQuiz(ctx context.Context, userID string, cfg domain.QuizConfig) (domain.QuizSession, error)
	Session(ctx context.Context, sessionID string) (domain.QuizSession, error)
	SelectAnswer(ctx context.Context, sessionID string, questionID int, answer string) (domain.QuizSession, error)
	Submit(ctx context.Context, sessionID string, answers domain.AnswerSet) (domain.Assessment, error)
	GetHistory(ctx context.Context, userID string, limit int) []domain.QuizHistoryEntry
	GetTopicStats(ctx context.Context, userID, subject, topic string) (domain.TopicPerformanceRecord, bool)
	GetStats(ctx context.Context, userID string) ledger.Stats
	GetProfile(ctx context.Context, userID string) domain.UserProfile
	SaveProfile(ctx context.Context, userID string, profile domain.UserProfile) domain.UserProfile
	ExplainTopic(ctx context.Context, req domain.ExplainRequest) (domain.Explanation, error)
}

// RouterOptions tunes the HTTP surface.
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter mounts the REST API, the WebSocket endpoint and the health check.
func NewRouter(service QuizAPI, opts RouterOptions) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", NewWSHandler(service).ServeWS)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Logger, middleware.Timeout(opts.RequestTimeout))

		api.Post("/quizzes", startQuizHandler(service))
		api.Get("/quizzes/{sessionID}", getSessionHandler(service))
		api.Post("/quizzes/{sessionID}/answers", selectAnswerHandler(service))
		api.Post("/quizzes/{sessionID}/submit", submitHandler(service))

		api.Get("/users/{userID}/history", historyHandler(service))
		api.Get("/users/{userID}/topics/{subject}/{topic}", topicStatsHandler(service))
		api.Get("/users/{userID}/stats", statsHandler(service))
		api.Get("/users/{userID}/profile", getProfileHandler(service))
		api.Put("/users/{userID}/profile", saveProfileHandler(service))

		api.Post("/explain", explainHandler(service))
	})
	return r
}

type startQuizRequest struct {
	UserID string `json:"userId"`
	domain.QuizConfig
}

func startQuizHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startQuizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		session, err := service.StartQuiz(r.Context(), req.UserID, req.QuizConfig)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

func getSessionHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := service.Session(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

type selectAnswerRequest struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

func selectAnswerHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectAnswerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		session, err := service.SelectAnswer(r.Context(), chi.URLParam(r, "sessionID"), req.QuestionID, req.Answer)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

type submitRequest struct {
	Answers domain.AnswerSet `json:"answers"`
}

func submitHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
		}
		assessment, err := service.Submit(r.Context(), chi.URLParam(r, "sessionID"), req.Answers)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, assessment)
	}
}

func historyHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}
		writeJSON(w, http.StatusOK, service.GetHistory(r.Context(), chi.URLParam(r, "userID"), limit))
	}
}

func topicStatsHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := service.GetTopicStats(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "subject"), chi.URLParam(r, "topic"))
		if !ok {
			writeError(w, http.StatusNotFound, "no quizzes recorded for this topic")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func statsHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.GetStats(r.Context(), chi.URLParam(r, "userID")))
	}
}

func getProfileHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.GetProfile(r.Context(), chi.URLParam(r, "userID")))
	}
}

func saveProfileHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var profile domain.UserProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		writeJSON(w, http.StatusOK, service.SaveProfile(r.Context(), chi.URLParam(r, "userID"), profile))
	}
}

func explainHandler(service QuizAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ExplainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		out, err := service.ExplainTopic(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}

// writeServiceError maps service errors to statuses; anything unexpected is reported without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

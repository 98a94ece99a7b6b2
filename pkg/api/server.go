// Package api exposes the operator HTTP surface: queue review, manual
// approval, health and metrics.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/ledger"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/pipeline"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/publish"
)

// Server handles operator requests against the review queue
type Server struct {
	queue     *publish.Queue
	publisher *publish.Publisher
	checkers  []pipeline.Checker
	ledger    *ledger.Ledger
	logger    *logging.Logger
	router    chi.Router
}

// NewServer creates the operator API server
func NewServer(queue *publish.Queue, publisher *publish.Publisher, checkers []pipeline.Checker, led *ledger.Ledger, logger *logging.Logger) *Server {
	s := &Server{
		queue:     queue,
		publisher: publisher,
		checkers:  checkers,
		ledger:    led,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/queue", s.handleListQueue)
		r.Post("/queue/{id}/publish", s.handleApprove)
		r.Delete("/queue/{id}", s.handleReject)
		r.Get("/health", s.handleHealth)
	})
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

// Handler returns the root http handler
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	status := publish.Status(r.URL.Query().Get("status"))
	switch status {
	case "", publish.StatusPending, publish.StatusPublished, publish.StatusRejected:
	default:
		s.writeError(w, http.StatusBadRequest, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown status filter").
			WithContext("status", string(status)))
		return
	}

	items := s.queue.List(status)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := s.publisher.PublishFromQueue(r.Context(), id)
	if err != nil {
		s.logger.Warn(logging.CategoryAPI, "approve_failed", "manual approval failed", map[string]any{
			"queue_id": id,
			"error":    err.Error(),
		})
		s.writeError(w, statusFor(err), err)
		return
	}

	s.logger.Info(logging.CategoryAPI, "approved", "queued content published", map[string]any{
		"queue_id": id,
		"post_id":  item.PostID,
	})
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := s.queue.Reject(id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.logger.Info(logging.CategoryAPI, "rejected", "queued content rejected", map[string]any{"queue_id": id})
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := pipeline.CheckHealth(r.Context(), s.checkers)

	body := struct {
		pipeline.HealthReport
		RecentExecutions []ledger.Execution `json:"recent_executions"`
	}{HealthReport: report}
	if s.ledger != nil {
		body.RecentExecutions = s.ledger.RecentExecutions(10)
	}

	code := http.StatusOK
	if report.Status == pipeline.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, body)
}

// statusFor maps error codes onto HTTP statuses
func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeValidation, apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeAuthFailed:
		return http.StatusBadGateway
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(logging.CategoryAPI, "encode_failed", "response encoding failed", map[string]any{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]any{
		"error": err.Error(),
		"code":  string(apperrors.GetCode(err)),
	})
}

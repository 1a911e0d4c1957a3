package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/learning"
)

type analyzeRequest struct {
	TicketID string `json:"ticket_id"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TicketID == "" {
		s.respondError(w, http.StatusBadRequest, "ticket_id is required")
		return
	}
	s.logger.Debug("analyze request", zap.String("ticket_id", req.TicketID))

	result, err := s.workflow.Analyze(r.Context(), req.TicketID)
	if errors.Is(err, learning.ErrStaleAnalysis) {
		s.respondError(w, http.StatusConflict, "analysis superseded by a newer request")
		return
	}
	if errors.Is(err, corpus.ErrTicketNotFound) {
		s.respondError(w, http.StatusNotFound, "ticket not found")
		return
	}
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	article, err := s.workflow.Approve(r.Context())
	if errors.Is(err, learning.ErrNoPendingDraft) {
		s.respondError(w, http.StatusConflict, "no pending draft to approve")
		return
	}
	if err != nil {
		s.logger.Error("approve failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, article)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	err := s.workflow.Dismiss(r.Context())
	if errors.Is(err, learning.ErrNoPendingDraft) {
		s.respondError(w, http.StatusConflict, "no pending draft to dismiss")
		return
	}
	if err != nil {
		s.logger.Error("dismiss failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func (s *Server) handleLearned(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.workflow.State().Learned)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.workflow.State().Events)
}

func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.workflow.State().Lineage)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ticket, err := s.repo.TicketByID(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "ticket not found")
		return
	}
	s.respondJSON(w, http.StatusOK, ticket)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tickets, err := s.repo.Tickets(ctx)
	if err != nil {
		s.logger.Error("status: load tickets failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	kb, err := s.repo.KBArticles(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	scripts, err := s.repo.Scripts(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	state := s.workflow.State()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"tickets":          len(tickets),
		"kb_articles":      len(kb),
		"scripts":          len(scripts),
		"learned_articles": len(state.Learned),
		"learning_events":  len(state.Events),
		"lineage_records":  len(state.Lineage),
		"cycle":            s.workflow.Cycle(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

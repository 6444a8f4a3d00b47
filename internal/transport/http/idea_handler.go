package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"venturevet/internal/idea"
	"venturevet/internal/logger"
	"venturevet/internal/session"
)

// IdeaHandler owns the startup-idea CRUD surface. These routes sit behind
// the route guard: the guard has already verified the session, and the
// subject user id from the token is the only ownership input ever used.
type IdeaHandler struct {
	svc    *idea.Service
	logger *slog.Logger
}

// NewIdeaHandler wires the idea handler.
func NewIdeaHandler(svc *idea.Service, log *slog.Logger) *IdeaHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &IdeaHandler{svc: svc, logger: log}
}

// Create handles POST /api/startup-ideas.
func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var sub idea.Submission
	if err := decodeJSON(r, &sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.Submit(r.Context(), claims.UserID, sub)
	if err != nil {
		if respondValidationError(w, err) {
			return
		}
		if errors.Is(err, idea.ErrAnalyzerUnavailable) {
			respondError(w, http.StatusBadGateway, "analysis service unavailable")
			return
		}
		h.logger.Error("failed to save idea",
			logger.UserID(claims.UserID.String()),
			logger.Error(err),
			logger.Component("idea_handler"),
		)
		respondError(w, http.StatusInternalServerError, "failed to save startup idea")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": created.ID})
}

// List handles GET /api/startup-ideas.
func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ideas, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to list ideas",
			logger.UserID(claims.UserID.String()),
			logger.Error(err),
			logger.Component("idea_handler"),
		)
		respondError(w, http.StatusInternalServerError, "failed to fetch startup ideas")
		return
	}
	if ideas == nil {
		ideas = []*idea.Idea{}
	}
	respondJSON(w, http.StatusOK, ideas)
}

// Get handles GET /api/startup-ideas/{id}.
func (h *IdeaHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid idea id")
		return
	}

	it, err := h.svc.Get(r.Context(), claims.UserID, id)
	if err != nil {
		if errors.Is(err, idea.ErrNotFound) {
			respondError(w, http.StatusNotFound, "idea not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch startup idea")
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// Delete handles DELETE /api/startup-ideas/{id}.
func (h *IdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid idea id")
		return
	}

	if err := h.svc.Delete(r.Context(), claims.UserID, id); err != nil {
		if errors.Is(err, idea.ErrNotFound) {
			respondError(w, http.StatusNotFound, "idea not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete startup idea")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

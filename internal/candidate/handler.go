package candidate

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/transport"
)

type ServiceAPI interface {
	ValidateCandidate(ctx context.Context, req CandidateRequest) error
	CreateCandidate(ctx context.Context, req CandidateRequest) (*Candidate, error)
	GetCandidate(ctx context.Context, id int64) (*Candidate, error)
	ListCandidates(ctx context.Context, limit, offset int) (*ListCandidatesResponse, error)
	UpdateCandidate(ctx context.Context, id int64, req CandidateRequest) (*Candidate, error)
	DeleteCandidate(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ValidateCandidate handles POST /candidates/validate
func (h *Handler) ValidateCandidate(w http.ResponseWriter, r *http.Request) {
	var req CandidateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.ValidateCandidate(r.Context(), req); err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, ValidationResponse{Valid: true})
}

// CreateCandidate handles POST /candidates
func (h *Handler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req CandidateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}

	c, err := h.Service.CreateCandidate(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

// ListCandidates handles GET /candidates
func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	limit, err := h.QueryInt(r, "limit", DefaultPageSize)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	offset, err := h.QueryInt(r, "offset", 0)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp, err := h.Service.ListCandidates(r.Context(), limit, offset)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// GetCandidate handles GET /candidates/{id}
func (h *Handler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	c, err := h.Service.GetCandidate(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// UpdateCandidate handles PUT /candidates/{id}
func (h *Handler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var req CandidateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, err)
		return
	}

	c, err := h.Service.UpdateCandidate(r.Context(), id, req)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// DeleteCandidate handles DELETE /candidates/{id}
func (h *Handler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.DeleteCandidate(r.Context(), id); err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toAppError(err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrCandidateNotFound):
		return internal.NewNotFoundError("candidate not found", internal.ErrCodeCandidateNotFound)
	case errors.Is(err, ErrCandidateConflict):
		return internal.NewConflictError("national id, email or phone number already in use", internal.ErrCodeCandidateConflict)
	default:
		return internal.NewInternalError("candidate operation failed", err)
	}
}

package audit

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/transport"
)

type ServiceAPI interface {
	ListEntries(ctx context.Context, f Filter) (*Page, error)
	ListForAccount(ctx context.Context, accountID int64, limit, offset int) (*Page, error)
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

// ListEntries handles GET /audit
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromQuery(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	page, err := h.Service.ListEntries(r.Context(), f)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

// ListAccountEntries handles GET /accounts/{id}/audit
func (h *Handler) ListAccountEntries(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
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

	page, err := h.Service.ListForAccount(r.Context(), id, limit, offset)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) filterFromQuery(r *http.Request) (Filter, error) {
	var f Filter

	if raw := r.URL.Query().Get("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, internal.NewValidationFieldError("account_id", "account_id must be a positive integer", internal.ErrCodeInvalidRequest)
		}
		f.AccountID = &id
	}
	f.Action = Action(r.URL.Query().Get("action"))

	var err error
	if f.Limit, err = h.QueryInt(r, "limit", DefaultPageSize); err != nil {
		return f, err
	}
	if f.Offset, err = h.QueryInt(r, "offset", 0); err != nil {
		return f, err
	}
	return f, nil
}

func toAppError(err error) error {
	if errors.Is(err, ErrUnknownAction) {
		return internal.NewValidationFieldError("action", "action must be one of: Created, Updated, Deleted", internal.ErrCodeInvalidChoice)
	}
	return internal.NewInternalError("failed to read audit log", err)
}

package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/transport"
)

type ServiceAPI interface {
	CreateAccount(ctx context.Context, dto CreateAccountDTO) (*Account, error)
	ImportAccounts(ctx context.Context, dtos []CreateAccountDTO) ([]*Account, error)
	GetAccount(ctx context.Context, id int64) (*Account, error)
	ListAccounts(ctx context.Context, limit, offset int) (*ListAccountsResponse, error)
	UpdateAccount(ctx context.Context, id int64, dto UpdateAccountDTO) (*Account, error)
	ChangePassword(ctx context.Context, id int64, dto ChangePasswordDTO) error
	SetGroups(ctx context.Context, id int64, dto MembershipDTO) (*Account, error)
	SetPermissions(ctx context.Context, id int64, dto MembershipDTO) (*Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	DeleteAccounts(ctx context.Context, dto BulkDeleteDTO) (int, error)
	PurgeAccount(ctx context.Context, id int64) error
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

// CreateAccount handles POST /accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var dto CreateAccountDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	acc, err := h.Service.CreateAccount(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, acc)
}

// ImportAccounts handles POST /accounts/import
func (h *Handler) ImportAccounts(w http.ResponseWriter, r *http.Request) {
	var dtos []CreateAccountDTO
	if err := h.DecodeJSON(r, &dtos); err != nil {
		h.WriteAppError(w, err)
		return
	}

	accs, err := h.Service.ImportAccounts(r.Context(), dtos)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, accs)
}

// ListAccounts handles GET /accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
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

	resp, err := h.Service.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// GetAccount handles GET /accounts/{id}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	acc, err := h.Service.GetAccount(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}

// UpdateAccount handles PATCH /accounts/{id}
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto UpdateAccountDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	acc, err := h.Service.UpdateAccount(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}

// ChangePassword handles PUT /accounts/{id}/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto ChangePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), id, dto); err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetGroups handles PUT /accounts/{id}/groups
func (h *Handler) SetGroups(w http.ResponseWriter, r *http.Request) {
	h.setMembership(w, r, h.Service.SetGroups)
}

// SetPermissions handles PUT /accounts/{id}/permissions
func (h *Handler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	h.setMembership(w, r, h.Service.SetPermissions)
}

func (h *Handler) setMembership(w http.ResponseWriter, r *http.Request, set func(context.Context, int64, MembershipDTO) (*Account, error)) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto MembershipDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	acc, err := set(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}

// DeleteAccount handles DELETE /accounts/{id}
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.DeleteAccount(r.Context(), id); err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccounts handles POST /accounts/bulk-delete
func (h *Handler) DeleteAccounts(w http.ResponseWriter, r *http.Request) {
	var dto BulkDeleteDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	deleted, err := h.Service.DeleteAccounts(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, BulkDeleteResponse{Deleted: deleted})
}

// PurgeAccount handles DELETE /accounts/{id}/purge
func (h *Handler) PurgeAccount(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.PurgeAccount(r.Context(), id); err != nil {
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
	case errors.Is(err, ErrAccountNotFound):
		return internal.NewNotFoundError("account not found", internal.ErrCodeAccountNotFound)
	case errors.Is(err, ErrAccountConflict):
		return internal.NewConflictError("username or email already in use", internal.ErrCodeAccountConflict)
	case errors.Is(err, ErrAccountProtected):
		return internal.NewConflictError("account has audit entries and cannot be purged", internal.ErrCodeAccountProtected)
	case errors.Is(err, ErrUnknownGroup):
		return internal.NewValidationFieldError("names", err.Error(), internal.ErrCodeUnknownGroup)
	case errors.Is(err, ErrUnknownPermission):
		return internal.NewValidationFieldError("names", err.Error(), internal.ErrCodeUnknownPermission)
	default:
		return internal.NewInternalError("account operation failed", err)
	}
}

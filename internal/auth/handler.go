package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/transport"
	"github.com/frahmantamala/hr-administration/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolveActor(ctx context.Context, claims *Claims) (*internal.Actor, error)
	HasAnyPermission(actor *internal.Actor, permissions ...string) bool
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// RefreshToken handles POST /auth/refresh
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}
	h.WriteJSON(w, http.StatusOK, actor)
}

// AuthMiddleware requires a valid bearer access token and puts the actor into the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.WriteAppError(w, toAppError(err))
			return
		}

		actor, err := h.Service.ResolveActor(r.Context(), claims)
		if err != nil {
			h.WriteAppError(w, toAppError(err))
			return
		}

		ctx := internal.ContextWithActor(r.Context(), actor)
		ctx = logger.With(ctx, "account_id", actor.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermissions lets the request through when the actor holds any of the permissions.
func (h *Handler) RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := internal.ActorFromContext(r.Context())
			if !ok {
				h.WriteAppError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
				return
			}

			if !h.Service.HasAnyPermission(actor, permissions...) {
				h.Logger.Warn("access denied: insufficient permissions",
					"account_id", actor.ID,
					"required_permissions", permissions,
					"account_permissions", actor.Permissions)
				h.WriteAppError(w, internal.NewForbiddenError("insufficient permissions", internal.ErrCodeInsufficientPerms))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func toAppError(err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return internal.NewUnauthorizedError("invalid credentials", internal.ErrCodeInvalidCredentials)
	case errors.Is(err, ErrUserInactive):
		return internal.NewUnauthorizedError("user is inactive", internal.ErrCodeUserInactive)
	case errors.Is(err, ErrTokenExpired):
		return internal.NewUnauthorizedError("token expired", internal.ErrCodeTokenExpired)
	case errors.Is(err, ErrInvalidToken):
		return internal.NewUnauthorizedError("invalid token", internal.ErrCodeInvalidToken)
	default:
		return internal.NewInternalError("authentication failed", err)
	}
}

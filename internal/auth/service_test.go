package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/account"
	"github.com/frahmantamala/hr-administration/internal/transport"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// mockAccountStore serves credentials from memory and records logins.
type mockAccountStore struct {
	creds         map[string]*account.Credentials
	logins        []int64
	errorToReturn error
}

func newMockAccountStore() *mockAccountStore {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
	return &mockAccountStore{
		creds: map[string]*account.Credentials{
			"admin": {AccountID: 1, Username: "admin", PasswordHash: string(hash), IsActive: true,
				Permissions: []string{PermManageAccounts, PermViewAudit}},
			"recruiter": {AccountID: 2, Username: "recruiter", PasswordHash: string(hash), IsActive: true,
				Permissions: []string{PermManageCandidates}},
			"retired": {AccountID: 3, Username: "retired", PasswordHash: string(hash), IsActive: false},
		},
	}
}

func (m *mockAccountStore) LookupCredentials(ctx context.Context, username string) (*account.Credentials, error) {
	if m.errorToReturn != nil {
		return nil, m.errorToReturn
	}
	c, ok := m.creds[username]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockAccountStore) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	m.logins = append(m.logins, id)
	return nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		store    *mockAccountStore
		tokenGen *JWTTokenGenerator
		ctx      context.Context
	)

	const (
		accessSecret  = "test-access-secret-test-access-secret"
		refreshSecret = "test-refresh-secret-test-refresh-secret"
	)

	ginkgo.BeforeEach(func() {
		store = newMockAccountStore()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 24*time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(store, tokenGen, bcrypt.MinCost, logger)
		ctx = context.Background()
	})

	ginkgo.Describe("NewService", func() {
		ginkgo.It("hashes the unknown-user placeholder at the configured cost", func() {
			svc := NewService(store, tokenGen, bcrypt.MinCost+1, nil)
			cost, err := bcrypt.Cost(svc.dummyHash)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cost).To(gomega.Equal(bcrypt.MinCost + 1))
		})

		ginkgo.It("falls back to the default cost below the bcrypt minimum", func() {
			svc := NewService(store, tokenGen, 0, nil)
			cost, err := bcrypt.Cost(svc.dummyHash)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cost).To(gomega.Equal(bcrypt.DefaultCost))
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("issues a token pair carrying the account permissions", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.TokenType).To(gomega.Equal("Bearer"))
			gomega.Expect(tokens.ExpiresIn).To(gomega.Equal(int64(900)))

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.AccountID).To(gomega.Equal(int64(1)))
			gomega.Expect(claims.Username).To(gomega.Equal("admin"))
			gomega.Expect(claims.Permissions).To(gomega.ConsistOf(PermManageAccounts, PermViewAudit))
			gomega.Expect(claims.Subject).To(gomega.Equal("1"))
		})

		ginkgo.It("records the login", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(store.logins).To(gomega.Equal([]int64{1}))
		})

		ginkgo.It("rejects a wrong password", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "wrong"})
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
			gomega.Expect(store.logins).To(gomega.BeEmpty())
		})

		ginkgo.It("rejects an unknown username with the same error", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "ghost", Password: "correct_password"})
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
		})

		ginkgo.It("rejects inactive accounts", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "retired", Password: "correct_password"})
			gomega.Expect(err).To(gomega.MatchError(ErrUserInactive))
		})

		ginkgo.It("validates the input", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Username: "admin"})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.FieldErrors()[0].Field).To(gomega.Equal("password"))
		})

		ginkgo.It("surfaces store failures", func() {
			store.errorToReturn = errors.New("db down")
			_, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).To(gomega.MatchError("db down"))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("issues a new pair for a valid refresh token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "recruiter", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			refreshed, err := service.RefreshTokens(ctx, RefreshTokenDTO{RefreshToken: tokens.RefreshToken})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.Permissions).To(gomega.ConsistOf(PermManageCandidates))
		})

		ginkgo.It("refuses an access token used as a refresh token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, RefreshTokenDTO{RefreshToken: tokens.AccessToken})
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("refuses once the account is deactivated", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			store.creds["admin"].IsActive = false
			_, err = service.RefreshTokens(ctx, RefreshTokenDTO{RefreshToken: tokens.RefreshToken})
			gomega.Expect(err).To(gomega.MatchError(ErrUserInactive))
		})

		ginkgo.It("refuses once the account is gone", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			delete(store.creds, "admin")
			_, err = service.RefreshTokens(ctx, RefreshTokenDTO{RefreshToken: tokens.RefreshToken})
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})
	})

	ginkgo.Describe("JWTTokenGenerator", func() {
		ginkgo.It("reports expired tokens", func() {
			expired := NewJWTTokenGenerator(accessSecret, refreshSecret, time.Nanosecond, time.Hour)
			token, err := expired.GenerateAccessToken(Principal{AccountID: 1, Username: "admin"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			time.Sleep(1100 * time.Millisecond)

			_, err = expired.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
		})

		ginkgo.It("rejects tokens signed with another secret", func() {
			other := NewJWTTokenGenerator("another-secret-another-secret-123", refreshSecret, time.Minute, time.Hour)
			token, err := other.GenerateAccessToken(Principal{AccountID: 1, Username: "admin"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = tokenGen.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("rejects the none algorithm", func() {
			claims := &Claims{AccountID: 1, Username: "admin", TokenType: TokenTypeAccess,
				RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = tokenGen.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("strips permissions from refresh tokens", func() {
			token, err := tokenGen.GenerateRefreshToken(Principal{AccountID: 1, Username: "admin", Permissions: []string{PermViewAudit}})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := tokenGen.ValidateRefreshToken(token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.Permissions).To(gomega.BeEmpty())
		})
	})
})

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		handler *Handler
		store   *mockAccountStore
		router  http.Handler
	)

	ginkgo.BeforeEach(func() {
		store = newMockAccountStore()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		tokenGen := NewJWTTokenGenerator("test-access-secret-test-access-secret", "test-refresh-secret-test-refresh-secret", time.Minute, time.Hour)
		handler = NewHandler(transport.NewBaseHandler(logger), NewService(store, tokenGen, bcrypt.MinCost, logger))

		mux := http.NewServeMux()
		mux.HandleFunc("/auth/login", handler.Login)
		mux.Handle("/auth/me", handler.AuthMiddleware(http.HandlerFunc(handler.Me)))
		mux.Handle("/audit", handler.AuthMiddleware(handler.RequirePermissions(PermViewAudit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))))
		router = mux
	})

	login := func(username string) string {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"`+username+`","password":"correct_password"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		body := w.Body.String()
		start := strings.Index(body, `"access_token":"`) + len(`"access_token":"`)
		end := strings.Index(body[start:], `"`)
		return body[start : start+end]
	}

	call := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	ginkgo.It("returns 401 for bad credentials", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"nope"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("INVALID_CREDENTIALS"))
	})

	ginkgo.It("requires a bearer token", func() {
		gomega.Expect(call("/auth/me", "")).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(call("/auth/me", "garbage")).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("serves the current actor", func() {
		gomega.Expect(call("/auth/me", login("admin"))).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("enforces permissions", func() {
		gomega.Expect(call("/audit", login("admin"))).To(gomega.Equal(http.StatusOK))
		gomega.Expect(call("/audit", login("recruiter"))).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("applies deactivation before the token expires", func() {
		token := login("admin")
		store.creds["admin"].IsActive = false
		gomega.Expect(call("/auth/me", token)).To(gomega.Equal(http.StatusUnauthorized))
	})
})

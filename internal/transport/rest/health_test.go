package rest

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HealthHandler", func() {
	var (
		db   *sql.DB
		mock sqlmock.Sqlmock
	)

	BeforeEach(func() {
		var err error
		db, mock, err = sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)
	})

	check := func(h *HealthHandler) (*httptest.ResponseRecorder, HealthResponse) {
		w := httptest.NewRecorder()
		h.healthCheckHandler(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		var resp HealthResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return w, resp
	}

	It("reports a reachable database as healthy", func() {
		mock.ExpectPing()

		w, resp := check(NewHealthHandler(db, "pgx"))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(resp.Status).To(Equal(HealthHealthy))
		Expect(resp.Components).To(HaveKey("pgx"))
		Expect(resp.Components["pgx"].Details).To(HaveKey("open_connections"))
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("reports a failed ping as unavailable", func() {
		mock.ExpectPing().WillReturnError(sql.ErrConnDone)

		w, resp := check(NewHealthHandler(db, "pgx"))
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(resp.Status).To(Equal(HealthUnhealthy))
		Expect(resp.Components["pgx"].Message).To(ContainSubstring("connection is already closed"))
	})

	It("reports a missing database under a generic name", func() {
		w, resp := check(NewHealthHandler(nil, ""))
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(resp.Components["database"].Message).To(Equal("database not configured"))
	})

	It("answers ping without touching the database", func() {
		w := httptest.NewRecorder()
		NewHealthHandler(db, "pgx").pingHandler(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"OK"`))
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})
})

package candidate_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/hr-administration/internal/candidate"
	candidatePostgres "github.com/frahmantamala/hr-administration/internal/candidate/postgres"
	candidateDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/candidate"
	"github.com/frahmantamala/hr-administration/internal/transport"
)

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Errors []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"errors"`
		} `json:"details"`
	} `json:"error"`
}

var _ = Describe("Candidate Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&candidateDatamodel.Candidate{})).To(Succeed())

		service := candidate.NewService(candidatePostgres.NewCandidateRepository(db), slogger)
		handler := candidate.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Post("/candidates", handler.CreateCandidate)
		router.Post("/candidates/validate", handler.ValidateCandidate)
		router.Get("/candidates", handler.ListCandidates)
		router.Get("/candidates/{id}", handler.GetCandidate)
		router.Put("/candidates/{id}", handler.UpdateCandidate)
		router.Delete("/candidates/{id}", handler.DeleteCandidate)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("creates a candidate and reads it back", func() {
		w := do(http.MethodPost, "/candidates", validRequest())
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created candidate.Candidate
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.ID).To(BeNumerically(">", 0))
		Expect(created.EmploymentDate).NotTo(BeEmpty())

		w = do(http.MethodGet, "/candidates/1", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("returns 400 with the email domain message", func() {
		req := validRequest()
		req.Email = "person@yahoo.com"

		w := do(http.MethodPost, "/candidates", req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var body errorBody
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Error.Type).To(Equal("VALIDATION_ERROR"))
		Expect(body.Error.Details.Errors).To(HaveLen(1))
		Expect(body.Error.Details.Errors[0].Message).To(Equal("Email must be from @gmail.com domain."))
		Expect(body.Error.Details.Errors[0].Code).To(Equal("INVALID_EMAIL_DOMAIN"))
	})

	It("returns 409 for a duplicate phone number", func() {
		Expect(do(http.MethodPost, "/candidates", validRequest()).Code).To(Equal(http.StatusCreated))

		req := validRequest()
		req.NationalID = "32730123456780"
		req.Email = "other@gmail.com"
		w := do(http.MethodPost, "/candidates", req)
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("validates without persisting", func() {
		w := do(http.MethodPost, "/candidates/validate", validRequest())
		Expect(w.Code).To(Equal(http.StatusOK))

		var count int64
		Expect(db.Model(&candidateDatamodel.Candidate{}).Count(&count).Error).To(Succeed())
		Expect(count).To(BeZero())
	})

	It("rejects unknown fields in the payload", func() {
		w := do(http.MethodPost, "/candidates", map[string]string{"employment_date": "2000-01-01"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for unknown candidates and 400 for bad ids", func() {
		Expect(do(http.MethodGet, "/candidates/42", nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodDelete, "/candidates/42", nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/candidates/abc", nil).Code).To(Equal(http.StatusBadRequest))
	})
})

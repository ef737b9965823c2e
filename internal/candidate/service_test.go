package candidate_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/candidate"
	candidateDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/candidate"
)

func TestCandidateService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Candidate Service Suite")
}

type MockRepository struct {
	rows      map[int64]*candidateDatamodel.Candidate
	nextID    int64
	writes    int
	failError error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{rows: make(map[int64]*candidateDatamodel.Candidate), nextID: 1}
}

func (m *MockRepository) Create(ctx context.Context, c *candidateDatamodel.Candidate) error {
	if m.failError != nil {
		return m.failError
	}
	for _, existing := range m.rows {
		if existing.PhoneNumber1 == c.PhoneNumber1 {
			return candidate.ErrCandidateConflict
		}
	}
	c.ID = m.nextID
	m.nextID++
	c.EmploymentDate = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	copied := *c
	m.rows[c.ID] = &copied
	m.writes++
	return nil
}

func (m *MockRepository) Update(ctx context.Context, c *candidateDatamodel.Candidate) error {
	if _, ok := m.rows[c.ID]; !ok {
		return candidate.ErrCandidateNotFound
	}
	copied := *c
	m.rows[c.ID] = &copied
	m.writes++
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return candidate.ErrCandidateNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*candidateDatamodel.Candidate, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, candidate.ErrCandidateNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *MockRepository) List(ctx context.Context, limit, offset int) ([]*candidateDatamodel.Candidate, int64, error) {
	if m.failError != nil {
		return nil, 0, m.failError
	}
	var rows []*candidateDatamodel.Candidate
	for id := int64(1); id < m.nextID; id++ {
		if c, ok := m.rows[id]; ok {
			rows = append(rows, c)
		}
	}
	return rows, int64(len(rows)), nil
}

func validRequest() candidate.CandidateRequest {
	return candidate.CandidateRequest{
		FirstName:       "Ayu",
		LastName:        "Lestari",
		Address:         "Jl. Merdeka 1, Bandung",
		NationalID:      "32730123456789",
		Email:           "person@gmail.com",
		PhoneNumber1:    "081234567890",
		GraduationDate:  "2020-08-01",
		YearOfBirth:     "1998-01-01",
		Qualification:   candidateDatamodel.QualificationBachelor,
		AppliedPosition: "HR Generalist",
	}
}

var _ = Describe("Candidate Service", func() {
	var (
		mockRepo *MockRepository
		service  *candidate.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = candidate.NewService(mockRepo, logger)
		ctx = context.Background()
	})

	Describe("CreateCandidate", func() {
		It("creates a valid gmail candidate", func() {
			c, err := service.CreateCandidate(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ID).To(Equal(int64(1)))
			Expect(c.Qualification).To(Equal("bachelor"))
			Expect(c.Gender).To(Equal("male"))
			Expect(c.GraduationDate).To(Equal("2020-08-01"))
			Expect(c.EmploymentDate).To(Equal("2026-10-19"))
		})

		It("refuses non-gmail addresses before writing", func() {
			req := validRequest()
			req.Email = "person@yahoo.com"

			_, err := service.CreateCandidate(ctx, req)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("Email must be from @gmail.com domain."))
			Expect(mockRepo.writes).To(BeZero())
		})

		It("reports malformed dates as field errors", func() {
			req := validRequest()
			req.GraduationDate = "01/08/2020"

			_, err := service.CreateCandidate(ctx, req)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.FieldErrors()[0].Field).To(Equal("graduation_date"))
		})

		It("rejects an overlong applied position", func() {
			req := validRequest()
			req.AppliedPosition = string(make([]byte, 101))

			_, err := service.CreateCandidate(ctx, req)
			Expect(err).To(HaveOccurred())
			Expect(mockRepo.writes).To(BeZero())
		})

		It("passes conflicts through", func() {
			_, err := service.CreateCandidate(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())

			req := validRequest()
			req.NationalID = "32730123456780"
			req.Email = "other@gmail.com"
			_, err = service.CreateCandidate(ctx, req)
			Expect(err).To(MatchError(candidate.ErrCandidateConflict))
		})
	})

	Describe("ValidateCandidate", func() {
		It("never writes", func() {
			Expect(service.ValidateCandidate(ctx, validRequest())).To(Succeed())

			req := validRequest()
			req.NationalID = "123"
			Expect(service.ValidateCandidate(ctx, req)).NotTo(Succeed())
			Expect(mockRepo.writes).To(BeZero())
		})
	})

	Describe("UpdateCandidate", func() {
		It("replaces fields but keeps the employment date", func() {
			created, err := service.CreateCandidate(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())

			req := validRequest()
			req.Address = "Jl. Sudirman 2, Jakarta"
			req.MaritalStatus = candidateDatamodel.MaritalStatusMarried
			updated, err := service.UpdateCandidate(ctx, created.ID, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Address).To(Equal("Jl. Sudirman 2, Jakarta"))
			Expect(updated.MaritalStatus).To(Equal("married"))
			Expect(updated.EmploymentDate).To(Equal(created.EmploymentDate))
		})

		It("validates before looking the candidate up", func() {
			req := validRequest()
			req.Email = "person@yahoo.com"
			_, err := service.UpdateCandidate(ctx, 99, req)
			Expect(err.Error()).To(Equal("Email must be from @gmail.com domain."))
		})

		It("returns not found for unknown candidates", func() {
			_, err := service.UpdateCandidate(ctx, 99, validRequest())
			Expect(err).To(MatchError(candidate.ErrCandidateNotFound))
		})
	})

	Describe("ListCandidates and DeleteCandidate", func() {
		It("lists and deletes", func() {
			c, err := service.CreateCandidate(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())

			resp, err := service.ListCandidates(ctx, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Total).To(Equal(int64(1)))
			Expect(resp.Limit).To(Equal(candidate.DefaultPageSize))

			Expect(service.DeleteCandidate(ctx, c.ID)).To(Succeed())
			_, err = service.GetCandidate(ctx, c.ID)
			Expect(err).To(MatchError(candidate.ErrCandidateNotFound))
		})

		It("wraps list failures", func() {
			mockRepo.failError = errors.New("db down")
			_, err := service.ListCandidates(ctx, 10, 0)
			Expect(err).To(MatchError(ContainSubstring("db down")))
		})
	})
})

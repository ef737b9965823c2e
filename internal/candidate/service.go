package candidate

import (
	"context"
	"fmt"
	"log/slog"

	candidateDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/candidate"
)

type RepositoryAPI interface {
	Create(ctx context.Context, c *candidateDatamodel.Candidate) error
	Update(ctx context.Context, c *candidateDatamodel.Candidate) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*candidateDatamodel.Candidate, error)
	List(ctx context.Context, limit, offset int) ([]*candidateDatamodel.Candidate, int64, error)
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Service always runs the full Clean pass before a candidate reaches the repository.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ValidateCandidate runs the validation pass without writing anything.
func (s *Service) ValidateCandidate(ctx context.Context, req CandidateRequest) error {
	_, err := s.clean(req)
	return err
}

func (s *Service) CreateCandidate(ctx context.Context, req CandidateRequest) (*Candidate, error) {
	fields, err := s.clean(req)
	if err != nil {
		return nil, err
	}

	row := &candidateDatamodel.Candidate{
		Fields:          fields,
		AppliedPosition: req.AppliedPosition,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create candidate", "email", fields.Email, "error", err)
		return nil, err
	}

	s.logger.Info("candidate created", "candidate_id", row.ID)
	return FromDataModel(row), nil
}

func (s *Service) GetCandidate(ctx context.Context, id int64) (*Candidate, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) ListCandidates(ctx context.Context, limit, offset int) (*ListCandidatesResponse, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list candidates", "error", err)
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	candidates := make([]*Candidate, len(rows))
	for i, row := range rows {
		candidates[i] = FromDataModel(row)
	}
	return &ListCandidatesResponse{
		Candidates: candidates,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// UpdateCandidate replaces every editable field. The employment date keeps its creation value.
func (s *Service) UpdateCandidate(ctx context.Context, id int64, req CandidateRequest) (*Candidate, error) {
	fields, err := s.clean(req)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	employed := row.EmploymentDate
	row.Fields = fields
	row.EmploymentDate = employed
	row.AppliedPosition = req.AppliedPosition

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update candidate", "candidate_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("candidate updated", "candidate_id", id)
	return FromDataModel(row), nil
}

func (s *Service) DeleteCandidate(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete candidate", "candidate_id", id, "error", err)
		return err
	}
	s.logger.Info("candidate deleted", "candidate_id", id)
	return nil
}

func (s *Service) clean(req CandidateRequest) (candidateDatamodel.Fields, error) {
	if err := req.validatePosition(); err != nil {
		return candidateDatamodel.Fields{}, err
	}
	fields, err := req.ToFields()
	if err != nil {
		return candidateDatamodel.Fields{}, err
	}
	if err := fields.Clean(); err != nil {
		s.logger.Debug("candidate failed validation", "error", err)
		return candidateDatamodel.Fields{}, err
	}
	return fields, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/hr-administration/internal/candidate"
	candidateDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/candidate"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) candidate.RepositoryAPI {
	return &CandidateRepository{db: db}
}

// Create inserts the row as given. Only the schema hook runs here; callers wanting the email
// domain rule go through the candidate service.
func (r *CandidateRepository) Create(ctx context.Context, c *candidateDatamodel.Candidate) error {
	return translateError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CandidateRepository) Update(ctx context.Context, c *candidateDatamodel.Candidate) error {
	res := r.db.WithContext(ctx).Model(c).Select("*").Omit("id", "created_at").Updates(c)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return candidate.ErrCandidateNotFound
	}
	return nil
}

func (r *CandidateRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&candidateDatamodel.Candidate{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return candidate.ErrCandidateNotFound
	}
	return nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id int64) (*candidateDatamodel.Candidate, error) {
	var c candidateDatamodel.Candidate
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (r *CandidateRepository) List(ctx context.Context, limit, offset int) ([]*candidateDatamodel.Candidate, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&candidateDatamodel.Candidate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*candidateDatamodel.Candidate
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return candidate.ErrCandidateNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", candidate.ErrCandidateConflict, err)
	default:
		return err
	}
}

package candidate

import (
	"errors"
	"time"

	candidateDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/candidate"
)

const DateLayout = "2006-01-02"

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrCandidateConflict = errors.New("candidate national id, email or phone number already exists")
)

type Candidate struct {
	ID              int64     `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Address         string    `json:"address"`
	NationalID      string    `json:"national_id"`
	Email           string    `json:"email"`
	PhoneNumber1    string    `json:"phone_number1"`
	PhoneNumber2    *string   `json:"phone_number2,omitempty"`
	GraduationDate  string    `json:"graduation_date"`
	Qualification   string    `json:"qualification"`
	Gender          string    `json:"gender"`
	YearOfBirth     string    `json:"year_of_birth"`
	MaritalStatus   string    `json:"marital_status"`
	EmploymentDate  string    `json:"employment_date"`
	AppliedPosition string    `json:"applied_position,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func FromDataModel(c *candidateDatamodel.Candidate) *Candidate {
	return &Candidate{
		ID:              c.ID,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Address:         c.Address,
		NationalID:      c.NationalID,
		Email:           c.Email,
		PhoneNumber1:    c.PhoneNumber1,
		PhoneNumber2:    c.PhoneNumber2,
		GraduationDate:  formatDate(c.GraduationDate),
		Qualification:   c.Qualification,
		Gender:          c.Gender,
		YearOfBirth:     formatDate(c.YearOfBirth),
		MaritalStatus:   c.MaritalStatus,
		EmploymentDate:  formatDate(c.EmploymentDate),
		AppliedPosition: c.AppliedPosition,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

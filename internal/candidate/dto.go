package candidate

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/hr-administration/internal"
	candidateDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/candidate"
)

// CandidateRequest is the payload for creating, replacing or validating a candidate.
// Dates use the YYYY-MM-DD layout. The employment date is assigned by the server.
type CandidateRequest struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Address         string  `json:"address"`
	NationalID      string  `json:"national_id"`
	Email           string  `json:"email"`
	PhoneNumber1    string  `json:"phone_number1"`
	PhoneNumber2    *string `json:"phone_number2,omitempty"`
	GraduationDate  string  `json:"graduation_date"`
	Qualification   string  `json:"qualification,omitempty"`
	Gender          string  `json:"gender,omitempty"`
	YearOfBirth     string  `json:"year_of_birth"`
	MaritalStatus   string  `json:"marital_status,omitempty"`
	AppliedPosition string  `json:"applied_position,omitempty"`
}

// ToFields converts the request into the base field-set. Unparseable dates are reported as
// field errors; empty dates are left zero for the schema check to reject.
func (r CandidateRequest) ToFields() (candidateDatamodel.Fields, error) {
	var dateErrs []errors.ValidationError

	graduation, err := parseDate(r.GraduationDate)
	if err != nil {
		dateErrs = append(dateErrs, errors.ValidationError{Field: "graduation_date", Message: "graduation_date must use the YYYY-MM-DD format", Code: string(errors.ErrCodeValidationFailed)})
	}
	birth, err := parseDate(r.YearOfBirth)
	if err != nil {
		dateErrs = append(dateErrs, errors.ValidationError{Field: "year_of_birth", Message: "year_of_birth must use the YYYY-MM-DD format", Code: string(errors.ErrCodeValidationFailed)})
	}
	if len(dateErrs) > 0 {
		return candidateDatamodel.Fields{}, errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: dateErrs})
	}

	var phone2 *string
	if r.PhoneNumber2 != nil {
		if p := strings.TrimSpace(*r.PhoneNumber2); p != "" {
			phone2 = &p
		}
	}

	f := candidateDatamodel.Fields{
		FirstName:      strings.TrimSpace(r.FirstName),
		LastName:       strings.TrimSpace(r.LastName),
		Address:        strings.TrimSpace(r.Address),
		NationalID:     strings.TrimSpace(r.NationalID),
		Email:          strings.TrimSpace(r.Email),
		PhoneNumber1:   strings.TrimSpace(r.PhoneNumber1),
		PhoneNumber2:   phone2,
		GraduationDate: graduation,
		Qualification:  r.Qualification,
		Gender:         r.Gender,
		YearOfBirth:    birth,
		MaritalStatus:  r.MaritalStatus,
	}
	f.ApplyDefaults()
	return f, nil
}

func (r CandidateRequest) validatePosition() error {
	if len([]rune(r.AppliedPosition)) > 100 {
		return errors.NewValidationFieldError("applied_position", "applied_position must not exceed 100 characters", errors.ErrCodeValidationFailed)
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, raw)
}

type ListCandidatesResponse struct {
	Candidates []*Candidate `json:"candidates"`
	Total      int64        `json:"total"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}

type ValidationResponse struct {
	Valid bool `json:"valid"`
}

package candidate

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	errors "github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/core/common/validation"
)

const (
	QualificationHighSchool = "high_school"
	QualificationBachelor   = "bachelor"
	QualificationMaster     = "master"
	QualificationDoctorate  = "doctorate"

	GenderMale   = "male"
	GenderFemale = "female"

	MaritalStatusSingle   = "single"
	MaritalStatusMarried  = "married"
	MaritalStatusDivorced = "divorced"
	MaritalStatusWidowed  = "widowed"

	NationalIDLength = 14

	EmailDomain        = "@gmail.com"
	EmailDomainMessage = "Email must be from @gmail.com domain."
)

// Fields is the candidate base schema. Concrete candidate entities embed it with `gorm:"embedded"`
// and inherit its columns, constraints and the schema hooks below.
type Fields struct {
	FirstName      string    `json:"first_name" gorm:"column:first_name;size:30;not null" validate:"required,max=30"`
	LastName       string    `json:"last_name" gorm:"column:last_name;size:50;not null" validate:"required,max=50"`
	Address        string    `json:"address" gorm:"column:address;size:150;not null" validate:"required,max=150"`
	NationalID     string    `json:"national_id" gorm:"column:national_id;size:14;uniqueIndex;not null" validate:"required,len=14"`
	Email          string    `json:"email" gorm:"column:email;size:245;uniqueIndex;not null" validate:"required,email,max=245"`
	PhoneNumber1   string    `json:"phone_number1" gorm:"column:phone_number1;size:13;uniqueIndex;not null" validate:"required,max=13"`
	PhoneNumber2   *string   `json:"phone_number2,omitempty" gorm:"column:phone_number2;size:13;uniqueIndex" validate:"omitempty,max=13"`
	GraduationDate time.Time `json:"graduation_date" gorm:"column:graduation_date;type:date;not null" validate:"required"`
	Qualification  string    `json:"qualification" gorm:"column:qualification;size:20;not null;default:high_school" validate:"required,oneof=high_school bachelor master doctorate"`
	Gender         string    `json:"gender" gorm:"column:gender;size:6;not null;default:male" validate:"required,oneof=male female"`
	YearOfBirth    time.Time `json:"year_of_birth" gorm:"column:year_of_birth;type:date;not null" validate:"required"`
	MaritalStatus  string    `json:"marital_status" gorm:"column:marital_status;size:10;not null;default:single" validate:"required,oneof=single married divorced widowed"`
	EmploymentDate time.Time `json:"employment_date" gorm:"column:employment_date;type:date;<-:create;not null"`
}

func (f Fields) String() string {
	return fmt.Sprintf("name is %s and email is %s", f.FirstName, f.Email)
}

func (f *Fields) ApplyDefaults() {
	if f.Qualification == "" {
		f.Qualification = QualificationHighSchool
	}
	if f.Gender == "" {
		f.Gender = GenderMale
	}
	if f.MaritalStatus == "" {
		f.MaritalStatus = MaritalStatusSingle
	}
	if f.PhoneNumber2 != nil && *f.PhoneNumber2 == "" {
		f.PhoneNumber2 = nil
	}
}

// ValidateSchema checks the declarative constraints: required fields, lengths, email format and choices.
func (f *Fields) ValidateSchema() error {
	f.ApplyDefaults()
	if err := validation.Struct(f); err != nil {
		return err
	}
	return nil
}

// Clean is the explicit validation pass: schema constraints plus the email domain rule.
// The domain failure is reported first so Error() yields its message.
func (f *Fields) Clean() error {
	domain := validation.NewValidator()
	domain.Field("email", f.Email).
		HasSuffix(EmailDomain, EmailDomainMessage, errors.ErrCodeInvalidEmailDomain)

	f.ApplyDefaults()
	if err := validation.Merge(domain.Validate(), validation.Struct(f)); err != nil {
		return err
	}
	return nil
}

// BeforeSave enforces the schema constraints on every write. The email domain rule is not
// part of it; see Clean.
func (f *Fields) BeforeSave(tx *gorm.DB) error {
	return f.ValidateSchema()
}

func (f *Fields) BeforeCreate(tx *gorm.DB) error {
	f.EmploymentDate = time.Now().UTC().Truncate(24 * time.Hour)
	return nil
}

// Candidate is the concrete recruitment candidate table built on Fields.
type Candidate struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	Fields          `gorm:"embedded"`
	AppliedPosition string    `json:"applied_position" gorm:"column:applied_position;size:100"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Candidate) TableName() string {
	return "candidates"
}

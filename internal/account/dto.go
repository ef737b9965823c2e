package account

import (
	"fmt"
	"regexp"
	"strings"

	errors "github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/core/common/validation"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

type CreateAccountDTO struct {
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=20"`
	LastName  string `json:"last_name" validate:"required,max=20"`
	Email     string `json:"email" validate:"required,email,max=250"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	IsStaff   bool   `json:"is_staff"`
}

func (d CreateAccountDTO) Validate() error {
	if err := validation.Merge(validation.Struct(d), validateUsername(d.Username), validatePasswordBytes(d.Password)); err != nil {
		return err
	}
	return nil
}

type UpdateAccountDTO struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=1,max=150"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=20"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=20"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=250"`
	IsActive  *bool   `json:"is_active,omitempty"`
	IsStaff   *bool   `json:"is_staff,omitempty"`
}

func (d UpdateAccountDTO) IsEmpty() bool {
	return d.Username == nil && d.FirstName == nil && d.LastName == nil &&
		d.Email == nil && d.IsActive == nil && d.IsStaff == nil
}

func (d UpdateAccountDTO) Validate() error {
	if d.IsEmpty() {
		return errors.NewValidationError("at least one field must be provided", errors.ErrCodeValidationFailed)
	}
	var usernameErr *errors.AppError
	if d.Username != nil {
		usernameErr = validateUsername(*d.Username)
	}
	if err := validation.Merge(validation.Struct(d), usernameErr); err != nil {
		return err
	}
	return nil
}

type ChangePasswordDTO struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (d ChangePasswordDTO) Validate() error {
	if err := validation.Merge(validation.Struct(d), validatePasswordBytes(d.Password)); err != nil {
		return err
	}
	return nil
}

// MembershipDTO replaces the full set of group names or permission codenames of an account.
type MembershipDTO struct {
	Names []string `json:"names" validate:"dive,required,max=150"`
}

func (d MembershipDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// Normalized returns trimmed, de-duplicated names in their original order.
func (d MembershipDTO) Normalized() []string {
	seen := make(map[string]struct{}, len(d.Names))
	out := make([]string, 0, len(d.Names))
	for _, n := range d.Names {
		n = strings.TrimSpace(n)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

type BulkDeleteDTO struct {
	IDs []int64 `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
}

func (d BulkDeleteDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

type ListAccountsResponse struct {
	Accounts []*Account `json:"accounts"`
	Total    int64      `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

func validateUsername(username string) *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", username).
		Required().
		MaxLength(150).
		Custom(func(value interface{}) *errors.AppError {
			if s, ok := value.(string); ok && s != "" && !usernamePattern.MatchString(s) {
				return errors.NewValidationFieldError("username", "username may contain only letters, digits and @/./+/-/_", errors.ErrCodeValidationFailed)
			}
			return nil
		})
	return v.Validate()
}

// validatePasswordBytes catches multi-byte passwords that pass the rune count but exceed bcrypt's input limit.
func validatePasswordBytes(password string) *errors.AppError {
	if len(password) > maxPasswordBytes {
		return errors.NewValidationFieldError("password", fmt.Sprintf("password must not exceed %d bytes", maxPasswordBytes), errors.ErrCodeValidationFailed)
	}
	return nil
}

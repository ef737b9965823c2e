package account

import (
	"errors"
	"time"

	accountDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/account"
)

// Account is the manager identity as exposed to callers. The password hash never leaves the repository layer.
type Account struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	Groups      []string   `json:"groups"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a *Account) String() string {
	return a.Username
}

func (a *Account) HasPermission(codename string) bool {
	for _, p := range a.Permissions {
		if p == codename {
			return true
		}
	}
	return false
}

// Credentials is what authentication needs to verify a login.
type Credentials struct {
	AccountID    int64
	Username     string
	PasswordHash string
	IsActive     bool
	Permissions  []string
}

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountConflict   = errors.New("account username or email already exists")
	ErrAccountProtected  = errors.New("account is referenced by audit entries and cannot be removed")
	ErrUnknownGroup      = errors.New("unknown group")
	ErrUnknownPermission = errors.New("unknown permission")
)

func FromDataModel(a *accountDatamodel.Account) *Account {
	groups := make([]string, 0, len(a.Groups))
	for _, g := range a.Groups {
		groups = append(groups, g.Name)
	}
	permissions := make([]string, 0, len(a.Permissions))
	for _, p := range a.Permissions {
		permissions = append(permissions, p.Codename)
	}

	return &Account{
		ID:          a.ID,
		Username:    a.Username,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Email:       a.Email,
		IsActive:    a.IsActive,
		IsStaff:     a.IsStaff,
		LastLogin:   a.LastLogin,
		Groups:      groups,
		Permissions: permissions,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDataModelSlice(accounts []*accountDatamodel.Account) []*Account {
	result := make([]*Account, len(accounts))
	for i, a := range accounts {
		result[i] = FromDataModel(a)
	}
	return result
}

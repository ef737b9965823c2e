package account

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ModelName is the entity type name written into audit entries for account mutations.
const ModelName = "Account"

var ErrAuditEntryImmutable = errors.New("audit entry is immutable")

type Account struct {
	ID           int64          `gorm:"primaryKey"`
	Username     string         `gorm:"column:username;size:150;uniqueIndex;not null"`
	FirstName    string         `gorm:"column:first_name;size:20;not null"`
	LastName     string         `gorm:"column:last_name;size:20;not null"`
	Email        string         `gorm:"column:email;size:250;uniqueIndex;not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	IsActive     bool           `gorm:"column:is_active;default:true"`
	IsStaff      bool           `gorm:"column:is_staff;default:false"`
	LastLogin    *time.Time     `gorm:"column:last_login"`
	Groups       []Group        `gorm:"many2many:account_groups;"`
	Permissions  []Permission   `gorm:"many2many:account_permissions;"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a Account) String() string {
	return a.Username
}

type Group struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;size:150;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Group) TableName() string {
	return "auth_groups"
}

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Codename    string    `gorm:"column:codename;size:100;uniqueIndex;not null"`
	Description string    `gorm:"column:description;size:255"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Permission) TableName() string {
	return "auth_permissions"
}

// AccountGroup and AccountPermission map the join tables GORM creates for the memberships.
type AccountGroup struct {
	AccountID int64 `gorm:"column:account_id;primaryKey"`
	GroupID   int64 `gorm:"column:group_id;primaryKey"`
}

func (AccountGroup) TableName() string {
	return "account_groups"
}

type AccountPermission struct {
	AccountID    int64 `gorm:"column:account_id;primaryKey"`
	PermissionID int64 `gorm:"column:permission_id;primaryKey"`
}

func (AccountPermission) TableName() string {
	return "account_permissions"
}

// AuditEntry is append-only. Deleting the referenced account is restricted while entries exist.
type AuditEntry struct {
	ID        int64     `gorm:"primaryKey"`
	AccountID int64     `gorm:"column:account_id;not null;index"`
	Account   *Account  `gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Action    string    `gorm:"column:action;size:20;not null"`
	ModelName string    `gorm:"column:model_name;size:100;not null"`
	ObjectID  int64     `gorm:"column:object_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}

// String renders "<username> - <action> on <model>", naming the account by id when it was
// not loaded.
func (e AuditEntry) String() string {
	subject := fmt.Sprintf("account #%d", e.AccountID)
	if e.Account != nil && e.Account.Username != "" {
		subject = e.Account.Username
	}
	return fmt.Sprintf("%s - %s on %s", subject, e.Action, e.ModelName)
}

func (e *AuditEntry) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditEntryImmutable
}

func (e *AuditEntry) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditEntryImmutable
}

// Models lists every table of the identity and audit domain in migration order.
func Models() []interface{} {
	return []interface{}{&Group{}, &Permission{}, &Account{}, &AuditEntry{}}
}

package audit

import (
	"fmt"
	"time"

	accountDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/account"
)

type Action string

const (
	ActionCreated Action = "Created"
	ActionUpdated Action = "Updated"
	ActionDeleted Action = "Deleted"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// ActionForSave maps the just-created flag of a save to the recorded action.
func ActionForSave(created bool) Action {
	if created {
		return ActionCreated
	}
	return ActionUpdated
}

var ErrEntryImmutable = accountDatamodel.ErrAuditEntryImmutable

// Entry is the read model of an audit row.
type Entry struct {
	ID        int64     `json:"id" db:"id"`
	AccountID int64     `json:"account_id" db:"account_id"`
	Username  string    `json:"username" db:"username"`
	Action    Action    `json:"action" db:"action"`
	ModelName string    `json:"model_name" db:"model_name"`
	ObjectID  int64     `json:"object_id" db:"object_id"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

func (e Entry) String() string {
	subject := e.Username
	if subject == "" {
		subject = fmt.Sprintf("account #%d", e.AccountID)
	}
	return fmt.Sprintf("%s - %s on %s", subject, e.Action, e.ModelName)
}

type Filter struct {
	AccountID *int64
	Action    Action
	Limit     int
	Offset    int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

type Page struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

func FromDataModel(e *accountDatamodel.AuditEntry) Entry {
	entry := Entry{
		ID:        e.ID,
		AccountID: e.AccountID,
		Action:    Action(e.Action),
		ModelName: e.ModelName,
		ObjectID:  e.ObjectID,
		Timestamp: e.CreatedAt,
	}
	if e.Account != nil {
		entry.Username = e.Account.Username
	}
	return entry
}

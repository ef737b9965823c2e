package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/hr-administration/internal/audit"
)

const selectEntries = `SELECT e.id, e.account_id, a.username, e.action, e.model_name, e.object_id, e.created_at
FROM audit_entries e
JOIN accounts a ON a.id = e.account_id`

// Reader serves the read side of the audit log with plain SQL. Soft-deleted accounts are
// joined on purpose: their history stays readable.
type Reader struct {
	db *sqlx.DB
}

func NewReader(db *sqlx.DB) *Reader {
	return &Reader{db: db}
}

func (r *Reader) List(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	f = f.Normalize()
	where, args := whereClause(f)

	query := r.db.Rebind(selectEntries + where + " ORDER BY e.id DESC LIMIT ? OFFSET ?")
	args = append(args, f.Limit, f.Offset)

	entries := make([]audit.Entry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func (r *Reader) Count(ctx context.Context, f audit.Filter) (int64, error) {
	where, args := whereClause(f)

	var total int64
	query := r.db.Rebind("SELECT COUNT(*) FROM audit_entries e" + where)
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return total, nil
}

func whereClause(f audit.Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.AccountID != nil {
		conds = append(conds, "e.account_id = ?")
		args = append(args, *f.AccountID)
	}
	if f.Action != "" {
		conds = append(conds, "e.action = ?")
		args = append(args, string(f.Action))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

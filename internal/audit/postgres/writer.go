package postgres

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/frahmantamala/hr-administration/internal/audit"
	accountDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/account"
)

// Writer appends audit entries. It is only called from the account repository, inside the
// transaction of the mutation it describes, so an entry exists exactly when its mutation does.
type Writer struct {
	metrics *audit.Metrics
	logger  *slog.Logger
}

func NewWriter(metrics *audit.Metrics, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		metrics: metrics,
		logger:  logger,
	}
}

func (w *Writer) Record(tx *gorm.DB, subject *accountDatamodel.Account, action audit.Action) (*accountDatamodel.AuditEntry, error) {
	if subject == nil || subject.ID <= 0 {
		return nil, fmt.Errorf("audit subject must be a persisted account")
	}
	if !action.Valid() {
		return nil, fmt.Errorf("unknown audit action %q", action)
	}

	entry := &accountDatamodel.AuditEntry{
		AccountID: subject.ID,
		Action:    string(action),
		ModelName: accountDatamodel.ModelName,
		ObjectID:  subject.ID,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}
	return entry, nil
}

// RecordEach writes one entry per subject. Bulk mutations never collapse into a single entry.
func (w *Writer) RecordEach(tx *gorm.DB, subjects []*accountDatamodel.Account, action audit.Action) ([]*accountDatamodel.AuditEntry, error) {
	entries := make([]*accountDatamodel.AuditEntry, 0, len(subjects))
	for _, subject := range subjects {
		entry, err := w.Record(tx, subject, action)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Committed is called once the surrounding transaction has committed.
func (w *Writer) Committed(entries ...*accountDatamodel.AuditEntry) {
	for _, e := range entries {
		w.metrics.IncrementRecorded(audit.Action(e.Action), e.ModelName)
		w.logger.Info("audit entry recorded",
			"audit_id", e.ID,
			"account_id", e.AccountID,
			"action", e.Action,
			"model_name", e.ModelName,
			"object_id", e.ObjectID)
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/hr-administration/internal/account"
	"github.com/frahmantamala/hr-administration/internal/audit"
	auditPostgres "github.com/frahmantamala/hr-administration/internal/audit/postgres"
	accountDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/account"
)

var updatableColumns = []string{
	"username",
	"first_name",
	"last_name",
	"email",
	"password_hash",
	"is_active",
	"is_staff",
	"last_login",
	"updated_at",
}

type AccountRepository struct {
	db    *gorm.DB
	audit *auditPostgres.Writer
}

func NewAccountRepository(db *gorm.DB, writer *auditPostgres.Writer) account.RepositoryAPI {
	return &AccountRepository{
		db:    db,
		audit: writer,
	}
}

// mutation writes account rows inside tx and reports which rows changed and how.
type mutation func(tx *gorm.DB) ([]*accountDatamodel.Account, audit.Action, error)

// apply runs m and appends one audit entry per changed row before the transaction commits.
// It is the only place account writes happen.
func (r *AccountRepository) apply(ctx context.Context, m mutation) error {
	var entries []*accountDatamodel.AuditEntry

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subjects, action, err := m(tx)
		if err != nil {
			return err
		}
		entries, err = r.audit.RecordEach(tx, subjects, action)
		return err
	})
	if err != nil {
		return translateError(err)
	}

	r.audit.Committed(entries...)
	return nil
}

func (r *AccountRepository) CreateBatch(ctx context.Context, accs []*accountDatamodel.Account) error {
	if len(accs) == 0 {
		return nil
	}
	return r.apply(ctx, func(tx *gorm.DB) ([]*accountDatamodel.Account, audit.Action, error) {
		if err := tx.Omit(clause.Associations).Create(&accs).Error; err != nil {
			return nil, "", err
		}
		return accs, audit.ActionCreated, nil
	})
}

// Update writes an existing account. A row without an ID cannot exist yet.
func (r *AccountRepository) Update(ctx context.Context, acc *accountDatamodel.Account) error {
	if acc.ID == 0 {
		return account.ErrAccountNotFound
	}
	_, err := r.Save(ctx, acc)
	return err
}

// Save inserts when acc has no ID yet and updates otherwise. The recorded action follows the
// statement that actually ran.
func (r *AccountRepository) Save(ctx context.Context, acc *accountDatamodel.Account) (bool, error) {
	var created bool
	err := r.apply(ctx, func(tx *gorm.DB) ([]*accountDatamodel.Account, audit.Action, error) {
		if acc.ID == 0 {
			if err := insert(tx, acc); err != nil {
				return nil, "", err
			}
			created = true
		} else if err := update(tx, acc); err != nil {
			return nil, "", err
		}
		return []*accountDatamodel.Account{acc}, audit.ActionForSave(created), nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) (*accountDatamodel.Account, error) {
	var acc accountDatamodel.Account
	err := r.apply(ctx, func(tx *gorm.DB) ([]*accountDatamodel.Account, audit.Action, error) {
		if err := tx.First(&acc, id).Error; err != nil {
			return nil, "", err
		}
		if err := tx.Delete(&acc).Error; err != nil {
			return nil, "", err
		}
		return []*accountDatamodel.Account{&acc}, audit.ActionDeleted, nil
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// DeleteBatch soft-deletes every live account among ids. Unknown or already deleted ids are skipped.
func (r *AccountRepository) DeleteBatch(ctx context.Context, ids []int64) ([]*accountDatamodel.Account, error) {
	var accs []*accountDatamodel.Account
	err := r.apply(ctx, func(tx *gorm.DB) ([]*accountDatamodel.Account, audit.Action, error) {
		if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&accs).Error; err != nil {
			return nil, "", err
		}
		if len(accs) == 0 {
			return nil, audit.ActionDeleted, nil
		}
		if err := tx.Delete(&accs).Error; err != nil {
			return nil, "", err
		}
		return accs, audit.ActionDeleted, nil
	})
	if err != nil {
		return nil, err
	}
	return accs, nil
}

// Purge hard-deletes an account, including a soft-deleted one. It is refused while audit
// entries reference the account; the RESTRICT foreign key backs the in-transaction check.
// Purge writes no audit entry: it can only succeed for an account that has none.
func (r *AccountRepository) Purge(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acc accountDatamodel.Account
		if err := tx.Unscoped().First(&acc, id).Error; err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&accountDatamodel.AuditEntry{}).Where("account_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return account.ErrAccountProtected
		}

		if err := tx.Where("account_id = ?", id).Delete(&accountDatamodel.AccountGroup{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&accountDatamodel.AccountPermission{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&acc).Error
	})
	return translateError(err)
}

func (r *AccountRepository) SetGroups(ctx context.Context, id int64, names []string) (*accountDatamodel.Account, error) {
	err := r.apply(ctx, func(tx *gorm.DB) ([]*accountDatamodel.Account, audit.Action, error) {
		var acc accountDatamodel.Account
		if err := tx.First(&acc, id).Error; err != nil {
			return nil, "", err
		}

		var groups []accountDatamodel.Group
		if len(names) > 0 {
			if err := tx.Where("name IN ?", names).Find(&groups).Error; err != nil {
				return nil, "", err
			}
			if len(groups) != len(names) {
				return nil, "", fmt.Errorf("%w: %v", account.ErrUnknownGroup, missingNames(names, groups, func(g accountDatamodel.Group) string { return g.Name }))
			}
		}

		if err := tx.Where("account_id = ?", id).Delete(&accountDatamodel.AccountGroup{}).Error; err != nil {
			return nil, "", err
		}
		if len(groups) > 0 {
			links := make([]accountDatamodel.AccountGroup, len(groups))
			for i, g := range groups {
				links[i] = accountDatamodel.AccountGroup{AccountID: id, GroupID: g.ID}
			}
			if err := tx.Create(&links).Error; err != nil {
				return nil, "", err
			}
		}
		if err := touch(tx, &acc); err != nil {
			return nil, "", err
		}
		return []*accountDatamodel.Account{&acc}, audit.ActionUpdated, nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *AccountRepository) SetPermissions(ctx context.Context, id int64, codenames []string) (*accountDatamodel.Account, error) {
	err := r.apply(ctx, func(tx *gorm.DB) ([]*accountDatamodel.Account, audit.Action, error) {
		var acc accountDatamodel.Account
		if err := tx.First(&acc, id).Error; err != nil {
			return nil, "", err
		}

		var perms []accountDatamodel.Permission
		if len(codenames) > 0 {
			if err := tx.Where("codename IN ?", codenames).Find(&perms).Error; err != nil {
				return nil, "", err
			}
			if len(perms) != len(codenames) {
				return nil, "", fmt.Errorf("%w: %v", account.ErrUnknownPermission, missingNames(codenames, perms, func(p accountDatamodel.Permission) string { return p.Codename }))
			}
		}

		if err := tx.Where("account_id = ?", id).Delete(&accountDatamodel.AccountPermission{}).Error; err != nil {
			return nil, "", err
		}
		if len(perms) > 0 {
			links := make([]accountDatamodel.AccountPermission, len(perms))
			for i, p := range perms {
				links[i] = accountDatamodel.AccountPermission{AccountID: id, PermissionID: p.ID}
			}
			if err := tx.Create(&links).Error; err != nil {
				return nil, "", err
			}
		}
		if err := touch(tx, &acc); err != nil {
			return nil, "", err
		}
		return []*accountDatamodel.Account{&acc}, audit.ActionUpdated, nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*accountDatamodel.Account, error) {
	var acc accountDatamodel.Account
	err := r.withMemberships(ctx).First(&acc, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &acc, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*accountDatamodel.Account, error) {
	var acc accountDatamodel.Account
	err := r.withMemberships(ctx).Where("username = ?", username).First(&acc).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &acc, nil
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*accountDatamodel.Account, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&accountDatamodel.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accs []*accountDatamodel.Account
	err := r.withMemberships(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&accs).Error
	if err != nil {
		return nil, 0, err
	}
	return accs, total, nil
}

func (r *AccountRepository) withMemberships(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Groups", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Permissions", func(db *gorm.DB) *gorm.DB { return db.Order("codename ASC") })
}

func insert(tx *gorm.DB, acc *accountDatamodel.Account) error {
	return tx.Omit(clause.Associations).Create(acc).Error
}

// update writes the profile columns of a live account. Memberships are changed only through
// SetGroups and SetPermissions.
func update(tx *gorm.DB, acc *accountDatamodel.Account) error {
	res := tx.Model(acc).Select(updatableColumns).Updates(acc)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func touch(tx *gorm.DB, acc *accountDatamodel.Account) error {
	acc.UpdatedAt = time.Now()
	return tx.Model(acc).UpdateColumn("updated_at", acc.UpdatedAt).Error
}

func missingNames[T any](want []string, found []T, name func(T) string) []string {
	have := make(map[string]struct{}, len(found))
	for _, f := range found {
		have[name(f)] = struct{}{}
	}
	var missing []string
	for _, w := range want {
		if _, ok := have[w]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return account.ErrAccountNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", account.ErrAccountConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return account.ErrAccountProtected
	default:
		return err
	}
}

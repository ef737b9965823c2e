package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/hr-administration/internal/audit"
	accountDatamodel "github.com/frahmantamala/hr-administration/internal/core/datamodel/account"
	"github.com/frahmantamala/hr-administration/internal/core/events"
)

// RepositoryAPI is the only write path for accounts. Every mutating method records its audit
// entries in the same transaction as the account write.
type RepositoryAPI interface {
	CreateBatch(ctx context.Context, accs []*accountDatamodel.Account) error
	Update(ctx context.Context, acc *accountDatamodel.Account) error
	Save(ctx context.Context, acc *accountDatamodel.Account) (created bool, err error)
	Delete(ctx context.Context, id int64) (*accountDatamodel.Account, error)
	DeleteBatch(ctx context.Context, ids []int64) ([]*accountDatamodel.Account, error)
	Purge(ctx context.Context, id int64) error
	SetGroups(ctx context.Context, id int64, names []string) (*accountDatamodel.Account, error)
	SetPermissions(ctx context.Context, id int64, codenames []string) (*accountDatamodel.Account, error)
	GetByID(ctx context.Context, id int64) (*accountDatamodel.Account, error)
	GetByUsername(ctx context.Context, username string) (*accountDatamodel.Account, error)
	List(ctx context.Context, limit, offset int) ([]*accountDatamodel.Account, int64, error)
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

type Service struct {
	repo       RepositoryAPI
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) CreateAccount(ctx context.Context, dto CreateAccountDTO) (*Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.newRow(dto)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, row); err != nil {
		s.logger.Error("failed to create account", "username", dto.Username, "error", err)
		return nil, err
	}
	return FromDataModel(row), nil
}

// ImportAccounts creates several accounts in one transaction. Each row gets its own audit entry.
func (s *Service) ImportAccounts(ctx context.Context, dtos []CreateAccountDTO) ([]*Account, error) {
	rows := make([]*accountDatamodel.Account, 0, len(dtos))
	for i, dto := range dtos {
		if err := dto.Validate(); err != nil {
			s.logger.Warn("rejected account import", "index", i, "username", dto.Username)
			return nil, err
		}
		row, err := s.newRow(dto)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return []*Account{}, nil
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		s.logger.Error("failed to import accounts", "count", len(rows), "error", err)
		return nil, err
	}

	for _, row := range rows {
		s.publish(ctx, events.EventTypeAccountCreated, row, audit.ActionCreated)
	}
	s.logger.Info("accounts imported", "count", len(rows))
	return FromDataModelSlice(rows), nil
}

func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	row, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) ListAccounts(ctx context.Context, limit, offset int) (*ListAccountsResponse, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return &ListAccountsResponse{
		Accounts: FromDataModelSlice(rows),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func (s *Service) UpdateAccount(ctx context.Context, id int64, dto UpdateAccountDTO) (*Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Username != nil {
		row.Username = strings.TrimSpace(*dto.Username)
	}
	if dto.FirstName != nil {
		row.FirstName = strings.TrimSpace(*dto.FirstName)
	}
	if dto.LastName != nil {
		row.LastName = strings.TrimSpace(*dto.LastName)
	}
	if dto.Email != nil {
		row.Email = normalizeEmail(*dto.Email)
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}
	if dto.IsStaff != nil {
		row.IsStaff = *dto.IsStaff
	}

	if err := s.save(ctx, row); err != nil {
		s.logger.Error("failed to update account", "account_id", id, "error", err)
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) ChangePassword(ctx context.Context, id int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hash, err := s.hashPassword(dto.Password)
	if err != nil {
		return err
	}
	row.PasswordHash = hash

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to change password", "account_id", id, "error", err)
		return err
	}

	s.logger.Info("account password changed", "account_id", id)
	s.publish(ctx, events.EventTypeAccountUpdated, row, audit.ActionUpdated)
	return nil
}

func (s *Service) SetGroups(ctx context.Context, id int64, dto MembershipDTO) (*Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.SetGroups(ctx, id, dto.Normalized())
	if err != nil {
		s.logger.Error("failed to set account groups", "account_id", id, "error", err)
		return nil, err
	}

	s.publish(ctx, events.EventTypeAccountUpdated, row, audit.ActionUpdated)
	return FromDataModel(row), nil
}

func (s *Service) SetPermissions(ctx context.Context, id int64, dto MembershipDTO) (*Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.SetPermissions(ctx, id, dto.Normalized())
	if err != nil {
		s.logger.Error("failed to set account permissions", "account_id", id, "error", err)
		return nil, err
	}

	s.publish(ctx, events.EventTypeAccountUpdated, row, audit.ActionUpdated)
	return FromDataModel(row), nil
}

// DeleteAccount soft-deletes the account. The row is kept so its audit trail stays referenced.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	row, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete account", "account_id", id, "error", err)
		return err
	}

	s.logger.Info("account deleted", "account_id", id)
	s.publish(ctx, events.EventTypeAccountDeleted, row, audit.ActionDeleted)
	return nil
}

func (s *Service) DeleteAccounts(ctx context.Context, dto BulkDeleteDTO) (int, error) {
	if err := dto.Validate(); err != nil {
		return 0, err
	}

	rows, err := s.repo.DeleteBatch(ctx, dto.IDs)
	if err != nil {
		s.logger.Error("failed to delete accounts", "count", len(dto.IDs), "error", err)
		return 0, err
	}

	for _, row := range rows {
		s.publish(ctx, events.EventTypeAccountDeleted, row, audit.ActionDeleted)
	}
	s.logger.Info("accounts deleted", "requested", len(dto.IDs), "deleted", len(rows))
	return len(rows), nil
}

// PurgeAccount removes the account row for good. It fails with ErrAccountProtected while any
// audit entry references the account.
func (s *Service) PurgeAccount(ctx context.Context, id int64) error {
	if err := s.repo.Purge(ctx, id); err != nil {
		if errors.Is(err, ErrAccountProtected) {
			s.logger.Warn("refused to purge audited account", "account_id", id)
		} else {
			s.logger.Error("failed to purge account", "account_id", id, "error", err)
		}
		return err
	}

	s.logger.Info("account purged", "account_id", id)
	return nil
}

// LookupCredentials returns what login needs to verify a password.
func (s *Service) LookupCredentials(ctx context.Context, username string) (*Credentials, error) {
	row, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	return &Credentials{
		AccountID:    row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
		Permissions:  FromDataModel(row).Permissions,
	}, nil
}

// RecordLogin stamps last_login through the audited update path.
func (s *Service) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	at = at.UTC()
	row.LastLogin = &at
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to record login", "account_id", id, "error", err)
		return err
	}

	s.publish(ctx, events.EventTypeAccountUpdated, row, audit.ActionUpdated)
	return nil
}

// save writes row through the repository's insert-or-update path and announces whichever
// of the two actually ran.
func (s *Service) save(ctx context.Context, row *accountDatamodel.Account) error {
	created, err := s.repo.Save(ctx, row)
	if err != nil {
		return err
	}

	action := audit.ActionForSave(created)
	eventType := events.EventTypeAccountUpdated
	if created {
		eventType = events.EventTypeAccountCreated
	}
	s.logger.Info("account saved", "account_id", row.ID, "username", row.Username, "action", action)
	s.publish(ctx, eventType, row, action)
	return nil
}

func (s *Service) newRow(dto CreateAccountDTO) (*accountDatamodel.Account, error) {
	hash, err := s.hashPassword(dto.Password)
	if err != nil {
		return nil, err
	}
	return &accountDatamodel.Account{
		Username:     strings.TrimSpace(dto.Username),
		FirstName:    strings.TrimSpace(dto.FirstName),
		LastName:     strings.TrimSpace(dto.LastName),
		Email:        normalizeEmail(dto.Email),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      dto.IsStaff,
	}, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	if appErr := validatePasswordBytes(password); appErr != nil {
		return "", appErr
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) publish(ctx context.Context, eventType string, row *accountDatamodel.Account, action audit.Action) {
	if s.publisher == nil {
		return
	}
	event := events.NewAccountEvent(eventType, row.ID, row.Username, string(action))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish account event", "event_type", eventType, "account_id", row.ID, "error", err)
	}
}

// normalizeEmail lowercases the domain part only.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

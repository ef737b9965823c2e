package audit

import (
	"context"
	"fmt"
	"log/slog"
)

type Reader interface {
	List(ctx context.Context, f Filter) ([]Entry, error)
	Count(ctx context.Context, f Filter) (int64, error)
}

// Service exposes the audit log read-only. Entries are written by the account repository only.
type Service struct {
	reader Reader
	logger *slog.Logger
}

func NewService(reader Reader, logger *slog.Logger) *Service {
	return &Service{
		reader: reader,
		logger: logger,
	}
}

func (s *Service) ListEntries(ctx context.Context, f Filter) (*Page, error) {
	f = f.Normalize()
	if f.Action != "" && !f.Action.Valid() {
		return nil, ErrUnknownAction
	}

	entries, err := s.reader.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	total, err := s.reader.Count(ctx, f)
	if err != nil {
		s.logger.Error("failed to count audit entries", "error", err)
		return nil, fmt.Errorf("failed to count audit entries: %w", err)
	}

	return &Page{
		Entries: entries,
		Total:   total,
		Limit:   f.Limit,
		Offset:  f.Offset,
	}, nil
}

func (s *Service) ListForAccount(ctx context.Context, accountID int64, limit, offset int) (*Page, error) {
	return s.ListEntries(ctx, Filter{AccountID: &accountID, Limit: limit, Offset: offset})
}

package auditmock

import (
	"context"

	domain "loanfund-backend/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies audit.Repository. It records
// appended entries by default so tests can assert the audit trail.
type Repo struct {
	AppendFn func(ctx context.Context, e *domain.OverrideAuditEntry) error
	ListFn   func(ctx context.Context, f domain.Filter) ([]domain.OverrideAuditEntry, error)

	Appended []domain.OverrideAuditEntry
}

func (m *Repo) Append(ctx context.Context, e *domain.OverrideAuditEntry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	m.Appended = append(m.Appended, *e)
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.OverrideAuditEntry, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return m.Appended, nil
}

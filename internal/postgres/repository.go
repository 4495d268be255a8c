package postgres

import (
	"context"
	"errors"
	"fmt"

	"token-ledger-go/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// repository implements store.Store against the pool or one open transaction.
type repository struct {
	q querier
}

var _ store.Store = (*repository)(nil)

// PostgreSQL SQLSTATE codes the ledger reacts to
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// translateError maps driver failures onto the store error taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", store.ErrTransient, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: referenced row does not exist (%s)", store.ErrNotFound, pgErr.ConstraintName)
		case codeCheckViolation:
			if pgErr.ConstraintName == "balances_amount_check" {
				return fmt.Errorf("%w: %s", store.ErrInsufficientFunds, pgErr.Message)
			}
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %s", store.ErrConcurrentModification, pgErr.Message)
		case codeLockNotAvailable, codeQueryCanceled:
			return fmt.Errorf("%w: %s", store.ErrTransient, pgErr.Message)
		}
		return err
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", store.ErrTransient, err)
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s '%s': %w", field, value, err)
	}
	return d, nil
}

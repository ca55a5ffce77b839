package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

const pgUniqueViolation = "23505"

// dbtx is satisfied by *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxPool is the subset of *pgxpool.Pool the repositories use.
type PgxPool interface {
	dbtx
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// storageError classifies a raw database error, mapping unique violations to a conflict.
func storageError(err error, conflict func() *apperrors.Failure) error {
	if err == nil {
		return nil
	}
	if conflict != nil && isUniqueViolation(err) {
		f := conflict()
		f.Err = err
		return f
	}
	return apperrors.WrapStorage(err)
}

func nullableString(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

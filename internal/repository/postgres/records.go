package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	recordsTable = "records"

	uniqueViolation = "23505"
)

var recordColumns = []string{"namespace", "key", "value", "version", "created_at", "updated_at"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// RecordStore keeps every namespace in the records table as JSONB.
type RecordStore struct {
	log *slog.Logger
	sq  sq.StatementBuilderType
}

var _ repository.RecordStore = (*RecordStore)(nil)

func NewRecordStore(log *slog.Logger) *RecordStore {
	return &RecordStore{
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *RecordStore) Get(ctx context.Context, ext sqlx.ExtContext, namespace, key string) (*domain.Record, error) {
	const op = "internal.repository.postgres.records.Get"

	query, args, err := s.sq.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"namespace": namespace, "key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	return s.getOne(ctx, ext, op, namespace, key, query, args)
}

func (s *RecordStore) GetForUpdate(ctx context.Context, tx repository.Tx, namespace, key string) (*domain.Record, error) {
	const op = "internal.repository.postgres.records.GetForUpdate"

	query, args, err := s.sq.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"namespace": namespace, "key": key}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	return s.getOne(ctx, tx, op, namespace, key, query, args)
}

func (s *RecordStore) getOne(ctx context.Context, ext sqlx.ExtContext, op, namespace, key, query string, args []interface{}) (*domain.Record, error) {
	var rec domain.Record
	if err := sqlx.GetContext(ctx, ext, &rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: record '%s/%s'", op, apperrors.ErrNotFound, namespace, key)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &rec, nil
}

func (s *RecordStore) List(ctx context.Context, ext sqlx.ExtContext, namespace, keyPrefix string) ([]domain.Record, error) {
	const op = "internal.repository.postgres.records.List"

	builder := s.sq.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"namespace": namespace})

	if keyPrefix != "" {
		builder = builder.Where(sq.Like{"key": likeEscaper.Replace(keyPrefix) + "%"})
	}

	query, args, err := builder.OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var recs []domain.Record
	if err := sqlx.SelectContext(ctx, ext, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return recs, nil
}

func (s *RecordStore) FindByField(ctx context.Context, ext sqlx.ExtContext, namespace, field, value string) ([]domain.Record, error) {
	const op = "internal.repository.postgres.records.FindByField"

	query, args, err := s.sq.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"namespace": namespace}).
		Where(sq.Expr("value @> jsonb_build_object(?::text, ?::text)", field, value)).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var recs []domain.Record
	if err := sqlx.SelectContext(ctx, ext, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return recs, nil
}

func (s *RecordStore) Insert(ctx context.Context, ext sqlx.ExtContext, namespace, key string, value []byte) error {
	const op = "internal.repository.postgres.records.Insert"

	query, args, err := s.sq.Insert(recordsTable).
		Columns("namespace", "key", "value").
		Values(namespace, key, string(value)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w: record '%s/%s'", op, apperrors.ErrAlreadyExists, namespace, key)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (s *RecordStore) Update(ctx context.Context, ext sqlx.ExtContext, namespace, key string, value []byte, expectedVersion int64) error {
	const op = "internal.repository.postgres.records.Update"

	query, args, err := s.sq.Update(recordsTable).
		Set("value", string(value)).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"namespace": namespace, "key": key, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	if rowsAffected > 0 {
		return nil
	}

	if _, err := s.Get(ctx, ext, namespace, key); err != nil {
		return err
	}

	s.log.Warn("record version mismatch",
		slog.String("op", op),
		slog.String("namespace", namespace),
		slog.String("key", key),
		slog.Int64("expected_version", expectedVersion),
	)

	return fmt.Errorf("%s: %w: record '%s/%s'", op, apperrors.ErrConflict, namespace, key)
}

func (s *RecordStore) Upsert(ctx context.Context, ext sqlx.ExtContext, namespace, key string, value []byte) error {
	const op = "internal.repository.postgres.records.Upsert"

	query, args, err := s.sq.Insert(recordsTable).
		Columns("namespace", "key", "value").
		Values(namespace, key, string(value)).
		Suffix("ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, " +
			"version = " + recordsTable + ".version + 1, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute upsert: %w", op, err)
	}

	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/YusovID/barter-service/internal/repository"
	"github.com/YusovID/barter-service/pkg/logger/sl"
	"github.com/jmoiron/sqlx"
)

// Transactor is the store handle the services run on. Reads outside a
// transaction go through Executor; every state change goes through BeginTx.
type Transactor interface {
	BeginTx(ctx context.Context) (repository.Tx, error)
	Executor() sqlx.ExtContext
}

type BaseService struct {
	db  Transactor
	log *slog.Logger
}

func NewBaseService(db Transactor, log *slog.Logger) BaseService {
	return BaseService{db: db, log: log}
}

// reader is the executor for single-statement reads.
func (s *BaseService) reader() sqlx.ExtContext {
	return s.db.Executor()
}

// transaction runs fn in one store transaction. fn's error is returned as is,
// so typed domain errors reach the caller unwrapped by this layer.
func (s *BaseService) transaction(ctx context.Context, op string, fn func(tx repository.Tx) error) error {
	started := time.Now()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	done := false

	defer func() {
		if done {
			return
		}

		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.log.Error("failed to rollback transaction", slog.String("op", op), sl.Err(err))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	done = true

	s.log.Debug("transaction committed", slog.String("op", op), slog.Duration("elapsed", time.Since(started)))

	return nil
}

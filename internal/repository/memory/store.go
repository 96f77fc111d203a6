// package memory implements the record store in process memory.
// Transactions are serialized: a transaction holds the store until it commits or rolls back,
// and its writes become visible to other readers only on commit.
package memory

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

type entry struct {
	rec domain.Record
	seq int64
}

type Store struct {
	// The embedded connection is never used; it lets the store be passed where
	// the repositories expect an executor.
	sqlx.ExtContext

	txSem chan struct{}

	mu   sync.RWMutex
	data map[string]map[string]entry
	seq  int64
	now  func() time.Time
}

var _ repository.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{
		txSem: make(chan struct{}, 1),
		data:  make(map[string]map[string]entry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Tx is a memory store transaction.
type Tx struct {
	sqlx.ExtContext

	store  *Store
	writes map[string]map[string]entry
	done   bool
}

// BeginTx waits until no other transaction holds the store.
func (s *Store) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}

	return tx, nil
}

// Executor returns the handle for reads outside a transaction.
func (s *Store) Executor() sqlx.ExtContext {
	return s
}

func (s *Store) begin(ctx context.Context) (*Tx, error) {
	select {
	case s.txSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Tx{store: s, writes: make(map[string]map[string]entry)}, nil
}

func (t *Tx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}

	t.done = true

	t.store.mu.Lock()
	for ns, entries := range t.writes {
		if t.store.data[ns] == nil {
			t.store.data[ns] = make(map[string]entry)
		}

		for key, e := range entries {
			t.store.data[ns][key] = e
		}
	}
	t.store.mu.Unlock()

	<-t.store.txSem

	return nil
}

func (t *Tx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}

	t.done = true
	t.writes = nil

	<-t.store.txSem

	return nil
}

func (s *Store) txOf(ext sqlx.ExtContext) *Tx {
	if tx, ok := ext.(*Tx); ok && tx.store == s && !tx.done {
		return tx
	}

	return nil
}

// mutate runs fn inside the caller's transaction, or inside a short one of its own.
func (s *Store) mutate(ctx context.Context, ext sqlx.ExtContext, fn func(tx *Tx) error) error {
	if tx := s.txOf(ext); tx != nil {
		return fn(tx)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *Store) lookup(tx *Tx, namespace, key string) (entry, bool) {
	if tx != nil {
		if e, ok := tx.writes[namespace][key]; ok {
			return e, true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[namespace][key]

	return e, ok
}

func (s *Store) stage(tx *Tx, e entry) {
	ns := e.rec.Namespace
	if tx.writes[ns] == nil {
		tx.writes[ns] = make(map[string]entry)
	}

	tx.writes[ns][e.rec.Key] = e
}

func (s *Store) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++

	return s.seq
}

// scan returns the entries of namespace visible to tx that satisfy keep, in insertion order.
func (s *Store) scan(tx *Tx, namespace string, keep func(key string, value []byte) bool) []domain.Record {
	visible := make(map[string]entry)

	s.mu.RLock()
	for key, e := range s.data[namespace] {
		visible[key] = e
	}
	s.mu.RUnlock()

	if tx != nil {
		for key, e := range tx.writes[namespace] {
			visible[key] = e
		}
	}

	matched := make([]entry, 0, len(visible))
	for key, e := range visible {
		if keep(key, e.rec.Value) {
			matched = append(matched, e)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	recs := make([]domain.Record, len(matched))
	for i, e := range matched {
		recs[i] = copyRecord(e.rec)
	}

	return recs
}

func (s *Store) Get(_ context.Context, ext sqlx.ExtContext, namespace, key string) (*domain.Record, error) {
	const op = "internal.repository.memory.Get"

	e, ok := s.lookup(s.txOf(ext), namespace, key)
	if !ok {
		return nil, fmt.Errorf("%s: %w: record '%s/%s'", op, apperrors.ErrNotFound, namespace, key)
	}

	rec := copyRecord(e.rec)

	return &rec, nil
}

// GetForUpdate needs no extra locking: the transaction already holds the whole store.
func (s *Store) GetForUpdate(ctx context.Context, tx repository.Tx, namespace, key string) (*domain.Record, error) {
	return s.Get(ctx, tx, namespace, key)
}

func (s *Store) List(_ context.Context, ext sqlx.ExtContext, namespace, keyPrefix string) ([]domain.Record, error) {
	return s.scan(s.txOf(ext), namespace, func(key string, _ []byte) bool {
		return strings.HasPrefix(key, keyPrefix)
	}), nil
}

func (s *Store) FindByField(_ context.Context, ext sqlx.ExtContext, namespace, field, value string) ([]domain.Record, error) {
	return s.scan(s.txOf(ext), namespace, func(_ string, raw []byte) bool {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return false
		}

		var got string
		if err := json.Unmarshal(fields[field], &got); err != nil {
			return false
		}

		return got == value
	}), nil
}

func (s *Store) Insert(ctx context.Context, ext sqlx.ExtContext, namespace, key string, value []byte) error {
	const op = "internal.repository.memory.Insert"

	return s.mutate(ctx, ext, func(tx *Tx) error {
		if _, ok := s.lookup(tx, namespace, key); ok {
			return fmt.Errorf("%s: %w: record '%s/%s'", op, apperrors.ErrAlreadyExists, namespace, key)
		}

		now := s.now()
		s.stage(tx, entry{
			rec: domain.Record{
				Namespace: namespace,
				Key:       key,
				Value:     bytes.Clone(value),
				Version:   1,
				CreatedAt: now,
				UpdatedAt: now,
			},
			seq: s.nextSeq(),
		})

		return nil
	})
}

func (s *Store) Update(ctx context.Context, ext sqlx.ExtContext, namespace, key string, value []byte, expectedVersion int64) error {
	const op = "internal.repository.memory.Update"

	return s.mutate(ctx, ext, func(tx *Tx) error {
		e, ok := s.lookup(tx, namespace, key)
		if !ok {
			return fmt.Errorf("%s: %w: record '%s/%s'", op, apperrors.ErrNotFound, namespace, key)
		}

		if e.rec.Version != expectedVersion {
			return fmt.Errorf("%s: %w: record '%s/%s'", op, apperrors.ErrConflict, namespace, key)
		}

		e.rec.Value = bytes.Clone(value)
		e.rec.Version++
		e.rec.UpdatedAt = s.now()
		s.stage(tx, e)

		return nil
	})
}

func (s *Store) Upsert(ctx context.Context, ext sqlx.ExtContext, namespace, key string, value []byte) error {
	return s.mutate(ctx, ext, func(tx *Tx) error {
		now := s.now()

		e, ok := s.lookup(tx, namespace, key)
		if !ok {
			e = entry{
				rec: domain.Record{Namespace: namespace, Key: key, CreatedAt: now},
				seq: s.nextSeq(),
			}
		}

		e.rec.Value = bytes.Clone(value)
		e.rec.Version++
		e.rec.UpdatedAt = now
		s.stage(tx, e)

		return nil
	})
}

func copyRecord(rec domain.Record) domain.Record {
	rec.Value = bytes.Clone(rec.Value)
	return rec
}

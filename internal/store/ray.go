package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ir"
)

// Ray returns a ray over the stored messages in the given order.
//
// Every shift issues one single-row seek, so a traversal touches only the
// rows it returns (plus one probe per composite convergence step). ctx
// bounds every query the ray issues; once it is done, shifts fail and the
// iterator that issued them stops with a shift error.
func (s *Store) Ray(ctx context.Context, order inf.Order) *SQLRay {
	return &SQLRay{ctx: ctx, store: s, order: order}
}

// SQLRay implements inf.Ray and inf.Index on top of the store.
//
// Thread-safety: safe for concurrent use; database/sql serializes access
// to the single SQLite connection.
type SQLRay struct {
	ctx   context.Context
	store *Store
	order inf.Order
}

// Cursor implements inf.Ray.
func (r *SQLRay) Cursor() inf.Cursor { return inf.NewCursor(r) }

// Order implements inf.Index.
func (r *SQLRay) Order() inf.Order { return r.order }

// Next implements inf.Index.
func (r *SQLRay) Next(from inf.Cursor) (inf.Cursor, error) {
	if from.End() {
		return from, nil
	}
	query := `SELECT number FROM messages`
	var args []any
	if !from.Top() {
		query += ` WHERE number ` + r.beyond() + ` ?`
		args = append(args, int64(from.Number()))
	}
	query += ` ORDER BY number ` + r.direction() + ` LIMIT 1`
	return r.seek(from, query, args...)
}

// NextWith implements inf.Index with an index seek on
// attrs(name, value, number).
func (r *SQLRay) NextWith(from inf.Cursor, attr string, value ir.IRValue) (inf.Cursor, error) {
	if from.End() {
		return from, nil
	}
	key, err := ir.AttrKey(value)
	if err != nil {
		return from, err
	}
	query := `SELECT number FROM attrs WHERE name = ? AND value = ?`
	args := []any{attr, key}
	if !from.Top() {
		query += ` AND number ` + r.beyond() + ` ?`
		args = append(args, int64(from.Number()))
	}
	query += ` ORDER BY number ` + r.direction() + ` LIMIT 1`
	return r.seek(from, query, args...)
}

// Contains implements inf.Index.
func (r *SQLRay) Contains(n ir.MsgNumber) (bool, error) {
	var one int
	err := r.store.db.QueryRowContext(r.ctx,
		`SELECT 1 FROM messages WHERE number = ?`, int64(n)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("contains %d: %w", n, err)
	}
	return true, nil
}

// Msg implements inf.Index.
func (r *SQLRay) Msg(n ir.MsgNumber) (ir.Message, error) {
	return r.store.ReadMessage(r.ctx, n)
}

func (r *SQLRay) seek(from inf.Cursor, query string, args ...any) (inf.Cursor, error) {
	var n int64
	err := r.store.db.QueryRowContext(r.ctx, query, args...).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return from.Ended(), nil
	}
	if err != nil {
		return from, fmt.Errorf("seek from %s: %w", from, err)
	}
	return from.At(ir.MsgNumber(n)), nil
}

func (r *SQLRay) beyond() string {
	if r.order == inf.Ascending {
		return ">"
	}
	return "<"
}

func (r *SQLRay) direction() string {
	if r.order == inf.Ascending {
		return "ASC"
	}
	return "DESC"
}

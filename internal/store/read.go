package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/queryir"
	"github.com/roach88/boutinf/internal/querysql"
)

// ErrNotFound is returned when a message number is not stored.
var ErrNotFound = errors.New("message not found")

// ReadMessage loads message n with its custom attributes.
func (s *Store) ReadMessage(ctx context.Context, n ir.MsgNumber) (ir.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT number, bout, author, text, date, seen
		FROM messages
		WHERE number = ?
	`, int64(n))

	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Message{}, fmt.Errorf("read message %d: %w", n, ErrNotFound)
	}
	if err != nil {
		return ir.Message{}, fmt.Errorf("read message %d: %w", n, err)
	}

	attrs, err := s.readAttrs(ctx, `WHERE number = ?`, int64(n))
	if err != nil {
		return ir.Message{}, err
	}
	msg.Attrs = attrs[msg.Number]
	return msg, nil
}

// Scan calls fn for every message in ascending number order.
//
// All rows are read before the first call, so fn may call back into the
// store. Scan stops at the first error fn returns.
func (s *Store) Scan(ctx context.Context, fn func(ir.Message) error) error {
	attrs, err := s.readAttrs(ctx, "")
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT number, bout, author, text, date, seen
		FROM messages
		ORDER BY number ASC
	`)
	if err != nil {
		return fmt.Errorf("scan messages: %w", err)
	}
	var msgs []ir.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			rows.Close()
			return fmt.Errorf("scan messages: %w", err)
		}
		msg.Attrs = attrs[msg.Number]
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate messages: %w", err)
	}
	rows.Close()

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of stored messages.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// Count returns how many messages satisfy p, evaluated in one statement.
func (s *Store) Count(ctx context.Context, p queryir.Predicate) (int, error) {
	query, params, err := querysql.NewSQLCompiler().Count(p)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Select returns the numbers of messages satisfying p in traversal order,
// at most limit of them when limit > 0. It is the eager counterpart of a
// lazy traversal and serves as its reference.
func (s *Store) Select(ctx context.Context, p queryir.Predicate, order inf.Order, limit int) ([]ir.MsgNumber, error) {
	query, params, err := querysql.NewSQLCompiler().Select(p, order, limit)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	defer rows.Close()

	out := []ir.MsgNumber{}
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("select: %w", err)
		}
		out = append(out, ir.MsgNumber(n))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate select: %w", err)
	}
	return out, nil
}

// readAttrs loads custom attributes grouped by message number.
func (s *Store) readAttrs(ctx context.Context, where string, args ...any) (map[ir.MsgNumber]ir.IRObject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, name, value
		FROM attrs
		`+where+`
		ORDER BY number ASC, name COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query attrs: %w", err)
	}
	defer rows.Close()

	out := make(map[ir.MsgNumber]ir.IRObject)
	for rows.Next() {
		var (
			n           int64
			name, value string
		)
		if err := rows.Scan(&n, &name, &value); err != nil {
			return nil, fmt.Errorf("scan attr: %w", err)
		}
		if isBuiltin(name) {
			continue
		}
		v, err := unmarshalAttr(value)
		if err != nil {
			return nil, err
		}
		num := ir.MsgNumber(n)
		if out[num] == nil {
			out[num] = ir.IRObject{}
		}
		out[num][name] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attrs: %w", err)
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (ir.Message, error) {
	var (
		msg    ir.Message
		number int64
		date   string
	)
	if err := row.Scan(&number, &msg.Bout, &msg.Author, &msg.Text, &date, &msg.Seen); err != nil {
		return ir.Message{}, err
	}
	msg.Number = ir.MsgNumber(number)
	t, err := unmarshalDate(date)
	if err != nil {
		return ir.Message{}, err
	}
	msg.Date = t
	return msg, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/boutinf/internal/ir"
)

// ErrMessageExists is returned when a message number is already stored.
var ErrMessageExists = errors.New("message already exists")

// AddMessage inserts a message and its attributes in one transaction.
// Returns ErrMessageExists if the number is taken; the stored message is
// left untouched.
func (s *Store) AddMessage(ctx context.Context, msg ir.Message) error {
	return s.AddMessages(ctx, []ir.Message{msg})
}

// AddMessages inserts messages in one transaction. Either all are stored
// or none is.
func (s *Store) AddMessages(ctx context.Context, msgs []ir.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add messages: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, msg := range msgs {
		if err := insertMessage(ctx, tx, msg); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add messages: commit: %w", err)
	}
	return nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, msg ir.Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	attrs, err := marshalAttrs(msg)
	if err != nil {
		return fmt.Errorf("add message %d: %w", msg.Number, err)
	}

	// ON CONFLICT DO NOTHING turns a duplicate into zero affected rows,
	// which is reported instead of overwriting.
	res, err := tx.ExecContext(ctx, `
		INSERT INTO messages (number, bout, author, text, date, seen)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO NOTHING
	`,
		int64(msg.Number),
		msg.Bout,
		msg.Author,
		msg.Text,
		marshalDate(msg.Date),
		msg.Seen,
	)
	if err != nil {
		return fmt.Errorf("add message %d: %w", msg.Number, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add message %d: %w", msg.Number, err)
	}
	if n == 0 {
		return fmt.Errorf("add message %d: %w", msg.Number, ErrMessageExists)
	}

	for _, a := range attrs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attrs (number, name, value) VALUES (?, ?, ?)`,
			int64(msg.Number), a.name, a.value,
		); err != nil {
			return fmt.Errorf("add message %d: attribute %q: %w", msg.Number, a.name, err)
		}
	}
	return nil
}

// MarkSeen flips the seen flag of message n and its seen attribute.
func (s *Store) MarkSeen(ctx context.Context, n ir.MsgNumber, seen bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark seen: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE messages SET seen = ? WHERE number = ?`, seen, int64(n))
	if err != nil {
		return fmt.Errorf("mark seen %d: %w", n, err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("mark seen %d: %w", n, err)
	} else if affected == 0 {
		return fmt.Errorf("mark seen %d: %w", n, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE attrs SET value = ? WHERE number = ? AND name = ?`,
		ir.MustAttrKey(ir.IRBool(seen)), int64(n), ir.AttrSeen,
	); err != nil {
		return fmt.Errorf("mark seen %d: %w", n, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mark seen: commit: %w", err)
	}
	return nil
}

// Package querysql compiles predicates to parameterized SQLite queries
// over the message store schema.
//
// It is the reference evaluator: the store uses it to answer Count and
// Select in one statement, and the test harness cross-checks every lazy
// traversal against it.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/queryir"
)

// SQLCompiler compiles predicates to parameterized SQL for SQLite.
//
// CRITICAL: every row-returning query ends in ORDER BY m.number, so SQL
// results line up with traversal order.
// CRITICAL: all values are parameterized, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Select returns a query yielding matching message numbers in order,
// at most limit of them when limit > 0.
func (c *SQLCompiler) Select(p queryir.Predicate, order inf.Order, limit int) (string, []any, error) {
	where, params, err := c.Where(p)
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT m.number FROM messages m WHERE " + where + " ORDER BY " + orderKey(order)
	if limit > 0 {
		sql += " LIMIT ?"
		params = append(params, limit)
	}
	return sql, params, nil
}

// Count returns a query yielding the number of matching messages.
func (c *SQLCompiler) Count(p queryir.Predicate) (string, []any, error) {
	where, params, err := c.Where(p)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM messages m WHERE " + where, params, nil
}

// Where compiles p to a boolean expression over the row alias m.
func (c *SQLCompiler) Where(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, fmt.Errorf("cannot compile nil predicate")
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case queryir.Number:
		return "m.number = ?", []any{int64(pred.N)}, nil
	case queryir.And:
		return c.compileList(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return c.compileList(pred.Predicates, " OR ", "1 = 0")
	case queryir.Not:
		sql, params, err := c.Where(pred.Predicate)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + sql + ")", params, nil
	case queryir.Always:
		return "1 = 1", nil, nil
	case queryir.Never:
		return "1 = 0", nil, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals probes the attrs table, which holds built-in and custom
// attributes alike under their canonical encoding.
func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	key, err := ir.AttrKey(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("equal %q: %w", eq.Attr, err)
	}
	sql := "EXISTS (SELECT 1 FROM attrs a WHERE a.number = m.number AND a.name = ? AND a.value = ?)"
	return sql, []any{eq.Attr, key}, nil
}

func (c *SQLCompiler) compileList(ps []queryir.Predicate, sep, empty string) (string, []any, error) {
	if len(ps) == 0 {
		return empty, nil, nil
	}

	var sqlParts []string
	var allParams []any
	for _, p := range ps {
		sql, params, err := c.Where(p)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}
	if len(sqlParts) == 1 {
		return sqlParts[0], allParams, nil
	}
	return "(" + strings.Join(sqlParts, sep) + ")", allParams, nil
}

func orderKey(o inf.Order) string {
	if o == inf.Ascending {
		return "m.number ASC"
	}
	return "m.number DESC"
}

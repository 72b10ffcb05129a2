// Package inf implements the lazy, term-directed retrieval engine.
//
// A Ray hands out before-first Cursors over one index. A Term is a
// predicate tree (leaf matchers combined with And, Or and Not) that knows
// how to Shift a cursor to the next position where it holds. Messages ties
// one Ray and one Term together and hands every consumer its own Iterator.
//
// TRAVERSAL ORDER:
//
// Cursors from one ray move in a single direction chosen by the ray
// (Descending by default, newest message first). "Forward" always means
// monotonically decreasing under Cursor.Compare:
//
//	before-first > every message position > end
//
// PROGRESS INVARIANT:
//
// Shift never stalls or reverses. Iterators check every shift and abort
// with a WRONG_WAY RuntimeError when a term returns a cursor that is not
// strictly beyond the one it was given. The check is always on; it signals
// a broken term or a corrupted index and is never retried.
//
// CONCURRENCY:
//
// No goroutines are started here and every call is synchronous. A Term
// tree may be shared by any number of Messages values; each Iterator works
// on its own Copy of the term and its own Cursor. The only lock is the
// per-Iterator mutex that serializes HasNext and Next on one instance.
//
// LATENCY BUDGET:
//
// An iterator that has been alive longer than its budget (5s by default)
// stops reporting elements and logs a warning. Callers cannot tell an
// expired iterator from an exhausted one and must treat partial results as
// valid. WithProfiling disables the budget for offline runs.
package inf

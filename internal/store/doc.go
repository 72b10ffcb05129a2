// Package store provides SQLite-backed durable storage for messages.
//
// The store keeps two tables:
//   - messages: one row per message with its typed built-in fields
//   - attrs: every attribute of every message, built-ins included
//
// Attribute values are stored as their canonical JSON encoding
// (ir.AttrKey), so an equality test never depends on how a value was
// spelled when it was written.
//
// # Retrieval
//
// Ray returns an inf.Ray whose index answers each shift with a single-row
// seek (ORDER BY number LIMIT 1) on the primary key or on
// idx_attrs_lookup. Count and Select evaluate a whole predicate in one
// statement compiled by querysql.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Message numbers are unique; AddMessage refuses to overwrite.
package store

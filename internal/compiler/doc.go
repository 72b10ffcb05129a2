// Package compiler turns predicate documents into executable terms.
//
// Compilation runs in three steps:
//
//	[queryir.Predicate] → Validate → Normalize → Lower → [inf.Term]
//
// Normalize simplifies the predicate without changing which messages it
// selects: nested conjunctions and disjunctions are flattened, constant
// children are folded, duplicates are removed and double negations cancel.
// Lower maps each predicate node onto the matching term constructor.
//
// Query files may also be written in CUE; CompileQuery and CompileQueries
// read them through the CUE Go API.
package compiler

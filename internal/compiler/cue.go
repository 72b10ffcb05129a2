package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/boutinf/internal/queryir"
)

// CompileQuery reads one query document from a CUE value.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the query struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`query: unread: { where: equal: seen: false }`)
//	doc, err := CompileQuery(v.LookupPath(cue.ParsePath("query.unread")))
//
// The struct label becomes the document name unless a name field is set.
func CompileQuery(v cue.Value) (queryir.Document, error) {
	if err := v.Err(); err != nil {
		return queryir.Document{}, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return queryir.Document{}, formatCUEError(err)
	}

	whereVal := v.LookupPath(cue.ParsePath("where"))
	if !whereVal.Exists() {
		return queryir.Document{}, &CompileError{
			Field:   "where",
			Message: "where is required",
			Pos:     v.Pos(),
		}
	}

	// CUE exports to JSON; floats survive as JSON numbers with a fraction
	// and are rejected by the predicate parser.
	data, err := v.MarshalJSON()
	if err != nil {
		return queryir.Document{}, formatCUEError(err)
	}
	doc, err := queryir.UnmarshalDocument(data)
	if err != nil {
		return queryir.Document{}, &CompileError{
			Field:   "where",
			Message: err.Error(),
			Pos:     whereVal.Pos(),
		}
	}

	if doc.Name == "" {
		labels := v.Path().Selectors()
		if len(labels) > 0 {
			doc.Name = labels[len(labels)-1].String()
		}
	}
	return doc, nil
}

// CompileQueries reads every query under the top-level "query" struct,
// in source order.
func CompileQueries(v cue.Value) ([]queryir.Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	qs := v.LookupPath(cue.ParsePath("query"))
	if !qs.Exists() {
		return nil, &CompileError{
			Field:   "query",
			Message: "no query struct found",
			Pos:     v.Pos(),
		}
	}

	it, err := qs.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var docs []queryir.Document
	for it.Next() {
		doc, err := CompileQuery(it.Value())
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/boutinf/internal/compiler"
	"github.com/roach88/boutinf/internal/harness"
	"github.com/roach88/boutinf/internal/ir"
	"github.com/roach88/boutinf/internal/queryir"
)

// LoadError represents an error that occurred while loading a query or
// fixture file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	// Query errors
	ErrCodeNoQuery      = "E101" // No query struct or where clause
	ErrCodeInvalidWhere = "E102" // Malformed predicate
	ErrCodeInvalidQuery = "E103" // Predicate failed validation
	ErrCodeBadFixture   = "E110" // Malformed fixture

	// Runtime errors
	ErrCodeStore     = "E201" // Store open/read/write failed
	ErrCodeTraversal = "E202" // Lazy traversal failed
)

// LoadQueries reads query documents from path.
//
// A .cue file, or a directory of them, holds any number of queries under
// a top-level "query" struct; the label names each query. Any other file
// is parsed as one YAML (or JSON) query document.
func LoadQueries(path string) ([]queryir.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", path)}
	}

	if info.IsDir() || filepath.Ext(path) == ".cue" {
		v, err := loadCUE(path, info.IsDir())
		if err != nil {
			return nil, err
		}
		docs, err := compiler.CompileQueries(v)
		if err != nil {
			return nil, convertCompileError(err, path)
		}
		if len(docs) == 0 {
			return nil, &LoadError{Code: ErrCodeNoQuery, Message: fmt.Sprintf("no queries found in %s", path)}
		}
		return docs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	doc, err := queryir.UnmarshalDocument(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidWhere, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	if doc.Name == "" {
		doc.Name = trimExt(filepath.Base(path))
	}
	return []queryir.Document{doc}, nil
}

// LoadFixtureFile reads fixture messages. CUE fixtures are exported to
// JSON and go through the same decoder as YAML ones.
func LoadFixtureFile(path string) ([]ir.Message, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("fixture not found: %s", path)}
	}

	var data []byte
	if info.IsDir() || filepath.Ext(path) == ".cue" {
		v, err := loadCUE(path, info.IsDir())
		if err != nil {
			return nil, err
		}
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, convertCompileError(err, path)
		}
		if data, err = v.MarshalJSON(); err != nil {
			return nil, convertCompileError(err, path)
		}
	} else if data, err = os.ReadFile(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}

	msgs, err := harness.ParseFixture(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadFixture, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return msgs, nil
}

// loadCUE builds a single .cue file, or the package in a directory.
func loadCUE(path string, dir bool) (cue.Value, error) {
	ctx := cuecontext.New()

	if !dir {
		data, err := os.ReadFile(path)
		if err != nil {
			return cue.Value{}, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return cue.Value{}, convertCompileError(err, path)
		}
		return v, nil
	}

	files, err := FindCUEFiles(path)
	if err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return cue.Value{}, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return v, nil
}

// FindCUEFiles returns the .cue files directly inside dir.
func FindCUEFiles(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*.cue"))
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := ErrCodeGeneric
		switch compileErr.Field {
		case "query":
			code = ErrCodeNoQuery
		case "where":
			code = ErrCodeInvalidWhere
		case "cue":
			code = ErrCodeBuildFailed
		}
		return &LoadError{
			Code:    code,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

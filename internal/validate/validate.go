// Package validate checks generated pipeline documents before they are
// written. A rejected document is still written; the caller records the
// message as a warning.
package validate

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/gen192/internal/doc"
)

//go:embed schema.cue
var schemaSource string

// SchemaDefinition is the definition in schema.cue every document must satisfy.
const SchemaDefinition = "#Pipeline"

// Validator reports whether a configuration document is acceptable. message
// is empty when ok is true.
type Validator interface {
	Validate(m doc.Map) (ok bool, message string)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(m doc.Map) (bool, string)

// Validate calls f(m).
func (f ValidatorFunc) Validate(m doc.Map) (bool, string) {
	return f(m)
}

// AcceptAll accepts every document.
var AcceptAll Validator = ValidatorFunc(func(doc.Map) (bool, string) { return true, "" })

// CUEValidator unifies documents with a compiled CUE definition.
//
// A cue.Context is not safe for concurrent use, so Validate serializes calls.
type CUEValidator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewCUEValidator compiles the embedded C-PAC schema.
func NewCUEValidator() (*CUEValidator, error) {
	return NewCUEValidatorFromSource(schemaSource, SchemaDefinition)
}

// NewCUEValidatorFromSource compiles src and validates against the
// definition named by def (for example "#Pipeline").
func NewCUEValidatorFromSource(src, def string) (*CUEValidator, error) {
	ctx := cuecontext.New()

	value := ctx.CompileString(src, cue.Filename("schema.cue"))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	schema := value.LookupPath(cue.ParsePath(def))
	if !schema.Exists() {
		return nil, fmt.Errorf("schema has no definition %s", def)
	}
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("schema definition %s: %w", def, err)
	}

	return &CUEValidator{ctx: ctx, schema: schema}, nil
}

// Validate unifies m with the schema and requires the result to be concrete.
// The message is the first error CUE reports.
func (v *CUEValidator) Validate(m doc.Map) (bool, string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	data := v.ctx.Encode(doc.ToAny(m))
	if err := data.Err(); err != nil {
		return false, firstError(err)
	}

	unified := v.schema.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return false, firstError(err)
	}
	return true, ""
}

// firstError renders the first CUE error as "<path>: <message>".
func firstError(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	format, args := errs[0].Msg()
	msg := fmt.Sprintf(format, args...)
	if path := errs[0].Path(); len(path) > 0 {
		return strings.Join(path, ".") + ": " + msg
	}
	return msg
}

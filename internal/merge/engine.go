// Package merge materialises one combination: it clones the target pipeline,
// overlays the step's sub-trees from the perturbation source, applies the
// fixed normalisation patches and the per-combination corrections, and names
// the result.
package merge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/gen192/internal/catalog"
	"github.com/roach88/gen192/internal/combo"
	"github.com/roach88/gen192/internal/doc"
	"github.com/roach88/gen192/internal/pipeline"
	"github.com/roach88/gen192/internal/warn"
)

// ErrUnknownLabel is returned when a combination names a pipeline that is
// not in the lookup table.
var ErrUnknownLabel = errors.New("pipeline label not loaded")

// LookupTable maps a label to its loaded base template. Generate only reads
// entries; every combination works on clones.
type LookupTable map[string]*pipeline.Template

// Options tune the normalisation patches.
type Options struct {
	FreesurferDir string
}

// DefaultOptions returns the options of the reference sweep.
func DefaultOptions() Options {
	return Options{FreesurferDir: DefaultFreesurferDir}
}

// Engine generates perturbed templates for combinations of one catalog.
//
// Thread-safety: Generate holds no state between calls. It is safe for
// concurrent use provided the sink is.
type Engine struct {
	cat  *catalog.Catalog
	opts Options
	sink warn.Sink
}

// New creates an engine. A nil sink discards warnings.
func New(cat *catalog.Catalog, opts Options, sink warn.Sink) *Engine {
	if sink == nil {
		sink = warn.Discard
	}
	return &Engine{cat: cat, opts: opts, sink: sink}
}

// Result is one generated, not yet persisted, template.
type Result struct {
	Template    *pipeline.Template
	Combination combo.Combination
	Warnings    []warn.Warning
	Corrections []catalog.Correction
}

// Warn records a warning on the result: it is appended to Warnings and to
// the template notes.
func (r *Result) Warn(kind warn.Kind, msg string) {
	r.Warnings = append(r.Warnings, warn.Warning{Kind: kind, Message: msg})
	r.Template.AddNote(msg)
}

// HasWarning reports whether a warning of kind was recorded.
func (r *Result) HasWarning(kind warn.Kind) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// Generate builds the template for c from the base templates in table.
//
// Missing merge paths and no-op perturbations are recorded as warnings, not
// errors. Errors are returned only for unknown labels and for edits that
// cannot be applied to the document's shape.
func (e *Engine) Generate(c combo.Combination, table LookupTable) (*Result, error) {
	target, ok := table[c.Target]
	if !ok {
		return nil, fmt.Errorf("generate %s: target %q: %w", c.Name(), c.Target, ErrUnknownLabel)
	}
	source, ok := table[c.Perturb]
	if !ok {
		return nil, fmt.Errorf("generate %s: perturbation %q: %w", c.Name(), c.Perturb, ErrUnknownLabel)
	}

	res := &Result{Template: target.Clone(), Combination: c}
	perturb := source.Clone()

	if err := e.mergeStep(res, perturb, c); err != nil {
		return nil, fmt.Errorf("generate %s: %w", c.Name(), err)
	}

	if err := applyOps(res.Template.Doc, NormalizationOps(e.opts.FreesurferDir)); err != nil {
		return nil, fmt.Errorf("generate %s: normalize: %w", c.Name(), err)
	}

	for _, corr := range e.cat.Matching(c.Triple()) {
		if err := applyOps(res.Template.Doc, corr.Ops); err != nil {
			return nil, fmt.Errorf("generate %s: correction %q: %w", c.Name(), corr.Reference, err)
		}
		res.Corrections = append(res.Corrections, corr)
		slog.Debug("correction applied",
			"combination", c.Name(),
			"reference", corr.Reference,
			"ops", len(corr.Ops),
		)
	}

	if err := res.Template.Rename(c.Name()); err != nil {
		return nil, fmt.Errorf("generate %s: %w", c.Name(), err)
	}
	return res, nil
}

// mergeStep overlays every merge path of the step from perturb onto the
// result. A path missing from perturb is removed from the result instead of
// being left stale.
func (e *Engine) mergeStep(res *Result, perturb *pipeline.Template, c combo.Combination) error {
	// Paths missing from the source do not count against identity, so a step
	// whose paths are all missing is also reported as identical.
	identical := true

	for _, path := range c.Step.MergePaths {
		snippet, ok := doc.Get(perturb.Doc, path)
		if !ok {
			e.warn(res, warn.MissingPath, fmt.Sprintf("Can't find path %s in %s", path, perturb.Name))
			doc.Delete(res.Template.Doc, path)
			continue
		}

		current, ok := doc.Get(res.Template.Doc, path)
		if !ok || !doc.Equal(snippet, current) {
			identical = false
		}

		// Written even when identical; equality only feeds the warning.
		if err := doc.Set(res.Template.Doc, path, snippet); err != nil {
			return fmt.Errorf("merge %s: %w", path, err)
		}
	}

	if identical {
		e.warn(res, warn.IdenticalMerge, fmt.Sprintf(
			"%q perturbation (%s) is identical to target (%s).",
			c.Step.Name, c.Perturb, c.Target,
		))
	}
	return nil
}

func (e *Engine) warn(res *Result, kind warn.Kind, msg string) {
	res.Warn(kind, msg)
	e.sink.Warn(msg)
}

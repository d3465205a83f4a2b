package catalog

import (
	"fmt"

	"github.com/roach88/gen192/internal/doc"
)

// Triple identifies one combination by label and step names.
type Triple struct {
	Target  string
	Perturb string
	Step    string
}

func (t Triple) String() string {
	return fmt.Sprintf("(%s, %s, %s)", t.Target, t.Perturb, t.Step)
}

// GuardMode says how a guard combines its triples.
type GuardMode int

const (
	// AnyOf matches when the combination equals any listed triple.
	AnyOf GuardMode = iota
	// AllOf matches only when the combination equals every listed triple.
	AllOf
)

// Guard decides by exact match whether a correction applies.
type Guard struct {
	Mode    GuardMode
	Triples []Triple
}

// Matches reports whether the guard accepts the combination t.
func (g Guard) Matches(t Triple) bool {
	if len(g.Triples) == 0 {
		return false
	}
	switch g.Mode {
	case AllOf:
		for _, want := range g.Triples {
			if want != t {
				return false
			}
		}
		return true
	default:
		for _, want := range g.Triples {
			if want == t {
				return true
			}
		}
		return false
	}
}

// Unsatisfiable reports an AllOf guard over two or more distinct triples.
// A single combination can never equal both, so the correction never fires.
func (g Guard) Unsatisfiable() bool {
	if g.Mode != AllOf || len(g.Triples) < 2 {
		return false
	}
	for _, t := range g.Triples[1:] {
		if t != g.Triples[0] {
			return true
		}
	}
	return false
}

// OpKind selects what an Op does to its path.
type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
)

// Op is a single path edit.
type Op struct {
	Kind  OpKind
	Path  doc.Path
	Value doc.Value
}

// SetOp assigns v at path.
func SetOp(path doc.Path, v doc.Value) Op {
	return Op{Kind: OpSet, Path: path, Value: v}
}

// DeleteOp removes path if present.
func DeleteOp(path doc.Path) Op {
	return Op{Kind: OpDelete, Path: path}
}

// Apply performs the edit on m. Set values are cloned so documents never
// share structure with the table.
func (o Op) Apply(m doc.Map) error {
	switch o.Kind {
	case OpSet:
		return doc.Set(m, o.Path, doc.Clone(o.Value))
	case OpDelete:
		doc.Delete(m, o.Path)
		return nil
	default:
		return fmt.Errorf("unknown op kind %d", o.Kind)
	}
}

func (o Op) String() string {
	if o.Kind == OpDelete {
		return "delete " + o.Path.String()
	}
	return "set " + o.Path.String()
}

// Correction is an empirically derived fix for a known cross-pipeline
// incompatibility. Reference is the search term in the C-PAC team's notes.
type Correction struct {
	Guard     Guard
	Ops       []Op
	Reference string
}

// Paths touched by the correction table.
var (
	pathApplyFuncMaskNative  = doc.P("functional_preproc", "func_masking", "apply_func_mask_in_native_space")
	pathFuncMaskingUsing     = doc.P("functional_preproc", "func_masking", "using")
	pathOverwriteTransform   = doc.P("registration_workflows", "anatomical_registration", "overwrite_transform", "run")
	pathOverwriteTransformBy = doc.P("registration_workflows", "anatomical_registration", "overwrite_transform", "using")
	pathRegistrationUsing    = doc.P("registration_workflows", "anatomical_registration", "registration", "using")
)

// DefaultCorrections returns the correction table in application order.
// Each entry is independent; no rule is derived from another.
//
// Two entries carry AllOf guards over distinct triples and therefore never
// fire. They are kept as recorded; see Guard.Unsatisfiable.
func DefaultCorrections() []Correction {
	return []Correction{
		{
			Reference: "apply_func_mask_in_native_space: false",
			Guard: Guard{Mode: AnyOf, Triples: []Triple{
				{LabelABCD, LabelCCS, StepFunctionalRegistration},
				{LabelCCS, LabelABCD, StepFunctionalMasking},
			}},
			Ops: []Op{SetOp(pathApplyFuncMaskNative, doc.Bool(true))},
		},
		{
			Reference: "overwrite transform",
			Guard: Guard{Mode: AnyOf, Triples: []Triple{
				{LabelABCD, LabelRBC, StepStructuralRegistration},
			}},
			Ops: []Op{SetOp(pathOverwriteTransform, doc.Bool(true))},
		},
		{
			Reference: "Anatomical_Resampled to CCS_Anatomical_Refined",
			Guard: Guard{Mode: AnyOf, Triples: []Triple{
				{LabelABCD, LabelRBC, StepFunctionalRegistration},
				{LabelABCD, LabelFMRIPrep, StepFunctionalRegistration},
				{LabelRBC, LabelABCD, StepFunctionalMasking},
			}},
			Ops: []Op{SetOp(pathFuncMaskingUsing, doc.StringList("CCS_Anatomical_Refined"))},
		},
		{
			Reference: "registration: using: ANTS",
			Guard: Guard{Mode: AnyOf, Triples: []Triple{
				{LabelABCD, LabelFMRIPrep, StepStructuralRegistration},
				{LabelCCS, LabelABCD, StepStructuralMasking},
			}},
			Ops: []Op{
				SetOp(pathRegistrationUsing, doc.StringList("FSL")),
				SetOp(pathOverwriteTransform, doc.Bool(true)),
			},
		},
		{
			Reference: "overwrite transform",
			Guard: Guard{Mode: AllOf, Triples: []Triple{
				{LabelRBC, LabelABCD, StepFunctionalMasking},
				{LabelFMRIPrep, LabelABCD, StepStructuralMasking},
			}},
			Ops: []Op{SetOp(pathOverwriteTransform, doc.Bool(true))},
		},
		{
			Reference: "overwrite transform",
			Guard: Guard{Mode: AnyOf, Triples: []Triple{
				{LabelRBC, LabelCCS, StepStructuralRegistration},
			}},
			Ops: []Op{SetOp(pathRegistrationUsing, doc.StringList("ANTS"))},
		},
		{
			Guard: Guard{Mode: AllOf, Triples: []Triple{
				{LabelFMRIPrep, LabelCCS, StepStructuralRegistration},
				{LabelRBC, LabelCCS, StepStructuralRegistration},
			}},
			Ops: []Op{
				DeleteOp(pathOverwriteTransformBy),
				SetOp(pathRegistrationUsing, doc.StringList("ANTS")),
			},
		},
	}
}

// Matching returns the corrections whose guard accepts t, in table order.
func (c *Catalog) Matching(t Triple) []Correction {
	var out []Correction
	for _, corr := range c.Corrections {
		if corr.Guard.Matches(t) {
			out = append(out, corr)
		}
	}
	return out
}

// Unsatisfiable returns the indexes of corrections that can never fire.
func (c *Catalog) Unsatisfiable() []int {
	var out []int
	for i, corr := range c.Corrections {
		if corr.Guard.Unsatisfiable() {
			out = append(out, i)
		}
	}
	return out
}

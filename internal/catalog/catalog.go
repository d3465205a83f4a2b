// Package catalog holds the static tables that drive generation: the base
// pipeline labels, the processing steps and the paths they own, and the
// table of empirically derived per-combination corrections.
//
// Tables are built by Default and passed explicitly; nothing in gen192 reads
// package-level mutable state.
package catalog

import (
	"fmt"

	"github.com/roach88/gen192/internal/doc"
)

// Label names one base pipeline and the C-PAC preset it is expanded from.
type Label struct {
	Name     string
	PresetID string
}

// Step is a named processing stage whose settings live at MergePaths.
type Step struct {
	Name       string
	MergePaths []doc.Path
}

// Step names used by the default catalog and the correction table.
const (
	StepStructuralMasking      = "Structural Masking"
	StepStructuralRegistration = "Structural Registration"
	StepFunctionalMasking      = "Functional Masking"
	StepFunctionalRegistration = "Functional Registration"
)

// Label names used by the default catalog and the correction table.
const (
	LabelABCD     = "ABCD"
	LabelCCS      = "CCS"
	LabelRBC      = "RBC"
	LabelFMRIPrep = "fMRIPrep"
)

// Catalog bundles everything the enumerator and merge engine consult.
// Treat it as read-only once built.
type Catalog struct {
	Labels      []Label
	Steps       []Step
	Corrections []Correction
}

// Default returns the catalog of the four-pipeline, four-step sweep.
func Default() *Catalog {
	return &Catalog{
		Labels:      DefaultLabels(),
		Steps:       DefaultSteps(),
		Corrections: DefaultCorrections(),
	}
}

// DefaultLabels lists the base pipelines in declaration order.
func DefaultLabels() []Label {
	return []Label{
		{Name: LabelABCD, PresetID: "abcd-options"},
		{Name: LabelCCS, PresetID: "ccs-options"},
		{Name: LabelRBC, PresetID: "rbc-options"},
		{Name: LabelFMRIPrep, PresetID: "fmriprep-options"},
	}
}

// DefaultSteps lists the perturbable steps in declaration order.
func DefaultSteps() []Step {
	return []Step{
		{
			Name:       StepStructuralMasking,
			MergePaths: []doc.Path{doc.P("anatomical_preproc")},
		},
		{
			Name: StepStructuralRegistration,
			MergePaths: []doc.Path{
				doc.P("registration_workflows", "anatomical_registration"),
			},
		},
		{
			Name: StepFunctionalMasking,
			MergePaths: []doc.Path{
				doc.P("functional_preproc", "func_masking"),
				doc.P("registration_workflows", "anatomical_registration", "T1w_brain_template_mask"),
				doc.P(
					"registration_workflows",
					"functional_registration",
					"func_registration_to_template",
					"target_template",
					"T1_template",
					"T1w_brain_template_mask_funcreg",
				),
			},
		},
		{
			Name: StepFunctionalRegistration,
			MergePaths: []doc.Path{
				doc.P("registration_workflows", "functional_registration", "coregistration"),
			},
		},
	}
}

// LabelNames returns the label names in declaration order.
func (c *Catalog) LabelNames() []string {
	names := make([]string, len(c.Labels))
	for i, l := range c.Labels {
		names[i] = l.Name
	}
	return names
}

// Step looks up a step by name.
func (c *Catalog) Step(name string) (Step, bool) {
	for _, s := range c.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Validate checks the catalog is usable: at least two labels, unique label
// and step names, and no empty merge paths.
func (c *Catalog) Validate() error {
	if len(c.Labels) < 2 {
		return fmt.Errorf("catalog needs at least two labels, got %d", len(c.Labels))
	}
	seen := make(map[string]bool, len(c.Labels))
	for _, l := range c.Labels {
		if seen[l.Name] {
			return fmt.Errorf("duplicate label %q", l.Name)
		}
		seen[l.Name] = true
	}

	seen = make(map[string]bool, len(c.Steps))
	for _, s := range c.Steps {
		if seen[s.Name] {
			return fmt.Errorf("duplicate step %q", s.Name)
		}
		seen[s.Name] = true
		if len(s.MergePaths) == 0 {
			return fmt.Errorf("step %q has no merge paths", s.Name)
		}
		for _, p := range s.MergePaths {
			if len(p) == 0 {
				return fmt.Errorf("step %q has an empty merge path", s.Name)
			}
		}
	}
	return nil
}

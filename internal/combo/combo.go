// Package combo enumerates (target, perturbation, step) combinations and
// renders the deterministic names generated artifacts are written under.
package combo

import (
	"fmt"
	"iter"

	"github.com/roach88/gen192/internal/catalog"
	"github.com/roach88/gen192/internal/pipeline"
)

// Combination is one (target, perturbation source, step) triple to be
// materialised as one generated artifact. Seq is its position in the
// self-pair-free enumeration and is unique within a run.
type Combination struct {
	Seq     int
	Target  string
	Perturb string
	Step    catalog.Step
}

// Triple returns the identity used by the correction table.
func (c Combination) Triple() catalog.Triple {
	return catalog.Triple{Target: c.Target, Perturb: c.Perturb, Step: c.Step.Name}
}

// Name renders p<NNN>_base-<target>_perturb-<perturb>_step-<step> with every
// part passed through pipeline.FileSafeDefault.
func (c Combination) Name() string {
	return fmt.Sprintf("p%03d_base-%s_perturb-%s_step-%s",
		c.Seq,
		pipeline.FileSafeDefault(c.Target),
		pipeline.FileSafeDefault(c.Perturb),
		pipeline.FileSafeDefault(c.Step.Name),
	)
}

// Filename is Name with the .yml extension.
func (c Combination) Filename() string {
	return c.Name() + ".yml"
}

// EnumerateAll yields every triple, self pairs included, in nested
// declaration order: target, then perturbation, then step. Seq counts every
// emitted triple.
func EnumerateAll(cat *catalog.Catalog) iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		seq := 0
		for _, target := range cat.Labels {
			for _, perturb := range cat.Labels {
				for _, step := range cat.Steps {
					c := Combination{Seq: seq, Target: target.Name, Perturb: perturb.Name, Step: step}
					if !yield(c) {
						return
					}
					seq++
				}
			}
		}
	}
}

// Enumerate yields the combinations with target != perturbation in the same
// nested order as EnumerateAll, numbering them from 0 without gaps.
// The order is fixed by the catalog, so file names are reproducible run to run.
func Enumerate(cat *catalog.Catalog) iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		seq := 0
		for c := range EnumerateAll(cat) {
			if c.Target == c.Perturb {
				continue
			}
			c.Seq = seq
			if !yield(c) {
				return
			}
			seq++
		}
	}
}

// Count returns how many combinations Enumerate yields:
// labels * (labels - 1) * steps.
func Count(cat *catalog.Catalog) int {
	n := len(cat.Labels)
	if n < 2 {
		return 0
	}
	return n * (n - 1) * len(cat.Steps)
}

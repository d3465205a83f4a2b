package combo

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gen192/internal/catalog"
	"github.com/roach88/gen192/internal/doc"
	"github.com/roach88/gen192/internal/testutil"
)

func testCombination(seq int) Combination {
	return Combination{
		Seq:     seq,
		Target:  "1",
		Perturb: "2",
		Step:    catalog.Step{Name: "TestPipeline", MergePaths: []doc.Path{doc.P("path1", "path2")}},
	}
}

func TestCombination_Name(t *testing.T) {
	seq := rand.IntN(192) + 1
	c := testCombination(seq)

	want := strings.Join([]string{
		fmt.Sprintf("p%03d", seq),
		"base-1",
		"perturb-2",
		"step-testpipeline",
	}, "_")
	assert.Equal(t, want, c.Name())
	assert.Equal(t, want+".yml", c.Filename())
}

func TestCombination_NamePadding(t *testing.T) {
	assert.True(t, strings.HasPrefix(testCombination(7).Name(), "p007_"))
	assert.True(t, strings.HasPrefix(testCombination(47).Name(), "p047_"))
	// Minimum width, not a maximum.
	assert.True(t, strings.HasPrefix(testCombination(1234).Name(), "p1234_"))
}

func TestCombination_Triple(t *testing.T) {
	c := testCombination(0)
	assert.Equal(t, catalog.Triple{Target: "1", Perturb: "2", Step: "TestPipeline"}, c.Triple())
}

func TestEnumerateAll_Count(t *testing.T) {
	cat := catalog.Default()
	all := slices.Collect(EnumerateAll(cat))
	assert.Len(t, all, 4*4*4)
}

func TestEnumerate_Completeness(t *testing.T) {
	cat := catalog.Default()
	got := slices.Collect(Enumerate(cat))

	require.Len(t, got, 48)
	assert.Equal(t, Count(cat), len(got))

	seen := make(map[catalog.Triple]bool)
	for i, c := range got {
		assert.Equal(t, i, c.Seq, "sequence numbers start at 0 without gaps")
		assert.NotEqual(t, c.Target, c.Perturb)
		assert.False(t, seen[c.Triple()], "duplicate %s", c.Triple())
		seen[c.Triple()] = true
	}
	assert.Less(t, len(got), len(slices.Collect(EnumerateAll(cat))))
}

func TestEnumerate_Order(t *testing.T) {
	got := slices.Collect(Enumerate(catalog.Default()))

	assert.Equal(t, catalog.Triple{Target: "ABCD", Perturb: "CCS", Step: catalog.StepStructuralMasking}, got[0].Triple())
	assert.Equal(t, catalog.Triple{Target: "ABCD", Perturb: "CCS", Step: catalog.StepFunctionalRegistration}, got[3].Triple())
	assert.Equal(t, catalog.Triple{Target: "ABCD", Perturb: "RBC", Step: catalog.StepStructuralMasking}, got[4].Triple())
	assert.Equal(t, catalog.Triple{Target: "CCS", Perturb: "ABCD", Step: catalog.StepStructuralMasking}, got[12].Triple())
	assert.Equal(t, catalog.Triple{Target: "fMRIPrep", Perturb: "RBC", Step: catalog.StepFunctionalRegistration}, got[47].Triple())
}

func TestEnumerate_EarlyStop(t *testing.T) {
	n := 0
	for c := range Enumerate(catalog.Default()) {
		if c.Seq == 5 {
			break
		}
		n++
	}
	assert.Equal(t, 5, n)
}

func TestEnumerate_Parameterised(t *testing.T) {
	cat := &catalog.Catalog{
		Labels: []catalog.Label{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Steps:  catalog.DefaultSteps()[:2],
	}
	got := slices.Collect(Enumerate(cat))
	assert.Len(t, got, 3*2*2)
	assert.Equal(t, 12, Count(cat))

	assert.Equal(t, 0, Count(&catalog.Catalog{Labels: []catalog.Label{{Name: "A"}}}))
}

func TestEnumerate_Filenames_Golden(t *testing.T) {
	render := func() []byte {
		var b strings.Builder
		for c := range Enumerate(catalog.Default()) {
			b.WriteString(c.Filename())
			b.WriteByte('\n')
		}
		return []byte(b.String())
	}

	first := render()
	assert.Equal(t, first, render(), "two runs must produce identical names")

	testutil.Golden(t).Assert(t, "filenames", first)
}

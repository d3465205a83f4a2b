package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gen192/internal/doc"
)

func TestGuard_AnyOf(t *testing.T) {
	g := Guard{Mode: AnyOf, Triples: []Triple{
		{"ABCD", "CCS", StepFunctionalRegistration},
		{"CCS", "ABCD", StepFunctionalMasking},
	}}

	assert.True(t, g.Matches(Triple{"ABCD", "CCS", StepFunctionalRegistration}))
	assert.True(t, g.Matches(Triple{"CCS", "ABCD", StepFunctionalMasking}))
	assert.False(t, g.Matches(Triple{"CCS", "ABCD", StepFunctionalRegistration}))
	assert.False(t, g.Unsatisfiable())
}

func TestGuard_AllOfDistinctNeverMatches(t *testing.T) {
	a := Triple{"RBC", "ABCD", StepFunctionalMasking}
	b := Triple{"fMRIPrep", "ABCD", StepStructuralMasking}
	g := Guard{Mode: AllOf, Triples: []Triple{a, b}}

	assert.False(t, g.Matches(a))
	assert.False(t, g.Matches(b))
	assert.True(t, g.Unsatisfiable())
}

func TestGuard_AllOfSingle(t *testing.T) {
	a := Triple{"RBC", "ABCD", StepFunctionalMasking}
	g := Guard{Mode: AllOf, Triples: []Triple{a}}

	assert.True(t, g.Matches(a))
	assert.False(t, g.Unsatisfiable())
}

func TestGuard_Empty(t *testing.T) {
	assert.False(t, Guard{}.Matches(Triple{"A", "B", "s"}))
}

func TestDefaultCorrections_Unsatisfiable(t *testing.T) {
	cat := Default()
	assert.Equal(t, []int{4, 6}, cat.Unsatisfiable())
}

func TestMatching_TableOrder(t *testing.T) {
	cat := Default()

	got := cat.Matching(Triple{LabelRBC, LabelABCD, StepFunctionalMasking})
	require.Len(t, got, 1)
	assert.Equal(t, "Anatomical_Resampled to CCS_Anatomical_Refined", got[0].Reference)

	got = cat.Matching(Triple{LabelCCS, LabelABCD, StepStructuralMasking})
	require.Len(t, got, 1)
	require.Len(t, got[0].Ops, 2)
	assert.Equal(t, doc.StringList("FSL"), got[0].Ops[0].Value)

	assert.Empty(t, cat.Matching(Triple{LabelCCS, LabelRBC, StepStructuralMasking}))
}

func TestMatching_EveryAnyOfTripleFires(t *testing.T) {
	cat := Default()
	for i, corr := range cat.Corrections {
		if corr.Guard.Mode != AnyOf {
			continue
		}
		for _, tr := range corr.Guard.Triples {
			found := false
			for _, m := range cat.Matching(tr) {
				if m.Reference == corr.Reference && len(m.Ops) == len(corr.Ops) {
					found = true
				}
			}
			assert.True(t, found, "correction %d should fire for %s", i, tr)
		}
	}
}

func TestOp_Apply(t *testing.T) {
	m := doc.Map{}
	list := doc.StringList("ANTS")

	require.NoError(t, SetOp(doc.P("a", "b"), list).Apply(m))
	got, ok := doc.Get(m, doc.P("a", "b"))
	require.True(t, ok)
	assert.Equal(t, list, got)

	// The stored value is a copy of the table's value.
	got.(doc.Seq)[0] = doc.String("FSL")
	assert.Equal(t, doc.String("ANTS"), list[0])

	require.NoError(t, DeleteOp(doc.P("a", "b")).Apply(m))
	_, ok = doc.Get(m, doc.P("a", "b"))
	assert.False(t, ok)

	// Deleting a missing path is a no-op.
	require.NoError(t, DeleteOp(doc.P("x", "y")).Apply(m))
}

func TestOp_ApplyUnknownKind(t *testing.T) {
	err := Op{Kind: OpKind(9), Path: doc.P("a")}.Apply(doc.Map{})
	assert.Error(t, err)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "set ['a']", SetOp(doc.P("a"), doc.Bool(true)).String())
	assert.Equal(t, "delete ['a', 'b']", DeleteOp(doc.P("a", "b")).String())
}

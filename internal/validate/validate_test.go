package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gen192/internal/doc"
)

func validDoc() doc.Map {
	return doc.MustMap(map[string]any{
		"pipeline_setup": map[string]any{
			"pipeline_name":  "p000_base-abcd_perturb-ccs_step-structural-masking",
			"freesurfer_dir": "/data/fs",
			"system_config":  map[string]any{"max_cores_per_participant": 4},
		},
		"anatomical_preproc": map[string]any{
			"run":              "On",
			"brain_extraction": map[string]any{"using": []any{"3dSkullStrip"}},
		},
		"registration_workflows": map[string]any{
			"anatomical_registration": map[string]any{
				"T1w_brain_template_mask": nil,
				"registration":            map[string]any{"using": []any{"FSL"}},
				"overwrite_transform":     map[string]any{"run": true, "using": "FSL"},
			},
		},
		"functional_preproc": map[string]any{
			"func_masking": map[string]any{
				"using":                           []any{"CCS_Anatomical_Refined"},
				"apply_func_mask_in_native_space": []any{true, false},
			},
		},
		"timeseries_extraction": map[string]any{"run": true},
		"regional_homogeneity":  map[string]any{"run": []any{"Off"}},
		"post_processing": map[string]any{
			"z-scoring": map[string]any{"run": false},
		},
		"surface_analysis": map[string]any{
			"freesurfer": map[string]any{"ingress_reconall": true, "run_reconall": false},
		},
	})
}

func newValidator(t *testing.T) *CUEValidator {
	t.Helper()
	v, err := NewCUEValidator()
	require.NoError(t, err)
	return v
}

func TestCUEValidator_Accepts(t *testing.T) {
	ok, msg := newValidator(t).Validate(validDoc())
	assert.True(t, ok, msg)
	assert.Empty(t, msg)
}

func TestCUEValidator_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		path    doc.Path
		value   doc.Value
		wantMsg string
	}{
		{
			name:    "non-string pipeline name",
			path:    doc.P("pipeline_setup", "pipeline_name"),
			value:   doc.Int(5),
			wantMsg: "pipeline_name",
		},
		{
			name:    "empty pipeline name",
			path:    doc.P("pipeline_setup", "pipeline_name"),
			value:   doc.String(""),
			wantMsg: "pipeline_name",
		},
		{
			name:    "bad toggle",
			path:    doc.P("timeseries_extraction", "run"),
			value:   doc.String("maybe"),
			wantMsg: "run",
		},
		{
			name:    "scalar where options list expected",
			path:    doc.P("functional_preproc", "func_masking", "using"),
			value:   doc.String("FSL"),
			wantMsg: "using",
		},
		{
			name:    "derivative toggle",
			path:    doc.P("post_processing", "spatial_smoothing", "run"),
			value:   doc.Int(1),
			wantMsg: "spatial_smoothing",
		},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validDoc()
			require.NoError(t, doc.Set(m, tt.path, tt.value))

			ok, msg := v.Validate(m)
			assert.False(t, ok)
			assert.Contains(t, msg, tt.wantMsg)
		})
	}
}

func TestCUEValidator_MissingName(t *testing.T) {
	m := validDoc()
	doc.Delete(m, doc.P("pipeline_setup", "pipeline_name"))

	ok, msg := newValidator(t).Validate(m)
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestCUEValidator_UnknownSectionsAllowed(t *testing.T) {
	m := validDoc()
	require.NoError(t, doc.Set(m, doc.P("nuisance_corrections", "2-nuisance_regression", "run"), doc.StringList("On")))

	ok, msg := newValidator(t).Validate(m)
	assert.True(t, ok, msg)
}

func TestNewCUEValidatorFromSource_Errors(t *testing.T) {
	_, err := NewCUEValidatorFromSource("#A: {", "#A")
	assert.Error(t, err)

	_, err = NewCUEValidatorFromSource("#A: {x?: int}", "#B")
	assert.ErrorContains(t, err, "#B")
}

func TestNewCUEValidatorFromSource_Custom(t *testing.T) {
	v, err := NewCUEValidatorFromSource("#A: {x: int, ...}", "#A")
	require.NoError(t, err)

	ok, _ := v.Validate(doc.MustMap(map[string]any{"x": 1, "y": "z"}))
	assert.True(t, ok)

	ok, msg := v.Validate(doc.MustMap(map[string]any{"x": "one"}))
	assert.False(t, ok)
	assert.Contains(t, msg, "x")
}

func TestValidatorFunc(t *testing.T) {
	var calls int
	v := ValidatorFunc(func(doc.Map) (bool, string) {
		calls++
		return false, "nope"
	})

	ok, msg := v.Validate(doc.Map{})
	assert.False(t, ok)
	assert.Equal(t, "nope", msg)
	assert.Equal(t, 1, calls)

	ok, _ = AcceptAll.Validate(doc.Map{})
	assert.True(t, ok)
}

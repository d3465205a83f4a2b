package testutil

import (
	"github.com/spf13/afero"

	"github.com/roach88/gen192/internal/catalog"
	"github.com/roach88/gen192/internal/doc"
	"github.com/roach88/gen192/internal/pipeline"
)

// BaseDoc builds a small C-PAC-shaped document. Every sub-tree a step owns
// carries flavour, so a merge from another pipeline is always observable and
// never identical.
func BaseDoc(name, flavour string) doc.Map {
	return doc.MustMap(map[string]any{
		"pipeline_setup": map[string]any{"pipeline_name": name},
		"anatomical_preproc": map[string]any{
			"run":              true,
			"brain_extraction": map[string]any{"using": []any{flavour + "-skullstrip"}},
		},
		"registration_workflows": map[string]any{
			"anatomical_registration": map[string]any{
				"T1w_brain_template_mask": flavour + "_mask.nii.gz",
				"registration":            map[string]any{"using": []any{"ANTS"}},
			},
			"functional_registration": map[string]any{
				"coregistration": map[string]any{
					"run":       true,
					"reference": "brain",
					"func_input_prep": map[string]any{
						"input": []any{flavour + "_mean"},
					},
				},
				"func_registration_to_template": map[string]any{
					"target_template": map[string]any{
						"T1_template": map[string]any{
							"T1w_brain_template_mask_funcreg": flavour + "_funcreg_mask.nii.gz",
						},
					},
				},
			},
		},
		"functional_preproc": map[string]any{
			"func_masking": map[string]any{"using": []any{flavour + "_masking"}},
		},
		"timeseries_extraction": map[string]any{
			"run": false,
			"connectivity_matrix": map[string]any{
				"using":   []any{"Nilearn"},
				"measure": []any{"Partial"},
			},
		},
		"regional_homogeneity": map[string]any{"run": []any{true}},
		"post_processing": map[string]any{
			"spatial_smoothing": map[string]any{"run": true, "fwhm": []any{4}},
		},
		"surface_analysis": map[string]any{
			"freesurfer": map[string]any{"run_reconall": true},
		},
	})
}

// TemplateName is the pipeline_name BaseTemplates gives a label.
func TemplateName(l catalog.Label) string {
	return "cpac_" + l.PresetID
}

// BaseTemplates returns one template per default label, keyed by label
// name, as if freshly loaded from build/cpac_source_configs.
func BaseTemplates() map[string]*pipeline.Template {
	out := make(map[string]*pipeline.Template)
	for _, l := range catalog.DefaultLabels() {
		out[l.Name] = &pipeline.Template{
			Name:     TemplateName(l),
			Location: "build/cpac_source_configs/" + pipeline.FileSafeDefault(l.Name) + ".yml",
			Doc:      BaseDoc(TemplateName(l), l.Name),
		}
	}
	return out
}

// WriteTemplates persists a BaseDoc for each label at location(label).
// It stands in for fetching from C-PAC.
func WriteTemplates(fsys afero.Fs, labels []catalog.Label, location func(label string) string) error {
	for _, l := range labels {
		tpl := &pipeline.Template{
			Name:     TemplateName(l),
			Location: location(l.Name),
			Doc:      BaseDoc(TemplateName(l), l.Name),
		}
		if err := tpl.Persist(fsys, true); err != nil {
			return err
		}
	}
	return nil
}

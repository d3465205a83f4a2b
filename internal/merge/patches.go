package merge

import (
	"fmt"

	"github.com/roach88/gen192/internal/catalog"
	"github.com/roach88/gen192/internal/doc"
	"github.com/roach88/gen192/internal/pipeline"
)

// DefaultFreesurferDir is where pre-computed recon-all results are ingested from.
const DefaultFreesurferDir = "/ocean/projects/med220004p/trogers1/many_pipelines/freesurfer/outputs/ABCD_all_subjects"

// DerivativeRunPaths are the derivative toggles switched off so that only
// connectome outputs survive.
func DerivativeRunPaths() []doc.Path {
	return []doc.Path{
		doc.P("amplitude_low_frequency_fluctuation", "run"),
		doc.P("regional_homogeneity", "run"),
		doc.P("voxel_mirrored_homotopic_connectivity", "run"),
		doc.P("network_centrality", "run"),
		doc.P("longitudinal_template_generation", "run"),
		doc.P("post_processing", "spatial_smoothing", "run"),
		doc.P("post_processing", "z-scoring", "run"),
		doc.P("seed_based_correlation_analysis", "run"),
		doc.P("PyPEER", "run"),
	}
}

var (
	pathTimeseriesRun       = doc.P("timeseries_extraction", "run")
	pathConnectivityMatrix  = doc.P("timeseries_extraction", "connectivity_matrix")
	pathConnectivityMeasure = doc.P("timeseries_extraction", "connectivity_matrix", "measure")
	pathCoregReference      = doc.P("registration_workflows", "functional_registration", "coregistration", "reference")
	pathIngressReconall     = doc.P("surface_analysis", "freesurfer", "ingress_reconall")
	pathRunReconall         = doc.P("surface_analysis", "freesurfer", "run_reconall")
	pathFreesurferDir       = doc.P("pipeline_setup", "freesurfer_dir")
)

// deactivateDerivativesOps sets every derivative toggle to false.
func deactivateDerivativesOps() []catalog.Op {
	paths := DerivativeRunPaths()
	ops := make([]catalog.Op, len(paths))
	for i, p := range paths {
		ops[i] = catalog.SetOp(p, doc.Bool(false))
	}
	return ops
}

// NormalizationOps lists the fixed patches applied to every generated
// combination, in order.
//
// The connectivity measure is set and then the whole connectivity_matrix
// branch is removed a few ops later. Both edits are kept; no connectivity
// computation is configured in the generated pipelines.
func NormalizationOps(freesurferDir string) []catalog.Op {
	ops := []catalog.Op{
		catalog.SetOp(pathTimeseriesRun, doc.Bool(true)),
		catalog.SetOp(pathConnectivityMeasure, doc.StringList("Pearson")),
	}
	ops = append(ops, deactivateDerivativesOps()...)
	ops = append(ops,
		// Deprecated upstream; C-PAC asked for it to be dropped.
		catalog.DeleteOp(pathCoregReference),
		catalog.SetOp(pathIngressReconall, doc.Bool(true)),
		catalog.SetOp(pathRunReconall, doc.Bool(false)),
		catalog.DeleteOp(pathConnectivityMatrix),
		catalog.SetOp(pathFreesurferDir, doc.String(freesurferDir)),
	)
	return ops
}

// DeactivateDerivatives switches off every derivative of t except connectomes.
func DeactivateDerivatives(t *pipeline.Template) error {
	return applyOps(t.Doc, deactivateDerivativesOps())
}

func applyOps(m doc.Map, ops []catalog.Op) error {
	for _, op := range ops {
		if err := op.Apply(m); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Package driver runs one gen192 sweep end to end: fetch the base
// templates, write the pure baselines, generate every perturbation, record
// the run manifest and zip the build directories.
//
// A run is strictly sequential. Every combination works on fresh clones of
// the base templates, so nothing is shared between combinations.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/roach88/gen192/internal/archive"
	"github.com/roach88/gen192/internal/catalog"
	"github.com/roach88/gen192/internal/combo"
	"github.com/roach88/gen192/internal/doc"
	"github.com/roach88/gen192/internal/manifest"
	"github.com/roach88/gen192/internal/merge"
	"github.com/roach88/gen192/internal/pipeline"
	"github.com/roach88/gen192/internal/source"
	"github.com/roach88/gen192/internal/validate"
	"github.com/roach88/gen192/internal/warn"
)

// ValidationPrefix starts the warning recorded for a rejected document.
const ValidationPrefix = "CPAC-reported config validation error"

// Driver wires the collaborators of a run. Nil fields fall back to defaults
// in Run: the default catalog, a git fetcher under TempDir, the embedded
// CUE validator, a console warning sink and UUIDv7 run ids.
type Driver struct {
	Config    Config
	Fs        afero.Fs
	Out       io.Writer
	Catalog   *catalog.Catalog
	Fetcher   source.Fetcher
	Validator validate.Validator
	Warnings  warn.Sink
	IDs       manifest.IDGenerator
}

// New creates a driver on the OS filesystem printing progress to out.
func New(cfg Config, out io.Writer) *Driver {
	return &Driver{Config: cfg, Fs: afero.NewOsFs(), Out: out}
}

// Summary describes a finished run.
type Summary struct {
	RunID         string
	Pure          int
	Perturbations int
	Warnings      int
	Identical     int // combinations whose perturbation changed nothing
	Rejected      int
	Archives      []string
}

func (d *Driver) defaults() error {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Fetcher == nil {
		d.Fetcher = source.NewGitFetcher(d.Fs, filepath.Join(d.Config.TempDir, "cpac_source"), d.Out)
	}
	if d.Validator == nil {
		v, err := validate.NewCUEValidator()
		if err != nil {
			return fmt.Errorf("loading validator: %w", err)
		}
		d.Validator = v
	}
	if d.Warnings == nil {
		d.Warnings = warn.NewConsole(d.Out)
	}
	if d.IDs == nil {
		d.IDs = manifest.UUIDv7Generator{}
	}
	return nil
}

// Run executes the sweep. Errors from the template source wrap
// source.ErrFetch; a persist collision wraps pipeline.ErrAlreadyExists.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	if err := d.defaults(); err != nil {
		return nil, err
	}
	if err := d.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	for _, i := range d.Catalog.Unsatisfiable() {
		slog.Warn("correction can never fire",
			"index", i,
			"reference", d.Catalog.Corrections[i].Reference,
		)
	}

	cfg := d.Config
	if cfg.Force {
		if err := d.clean(cfg.DistDir, cfg.BuildDir); err != nil {
			return nil, err
		}
	}
	for _, dir := range []string{cfg.BuildDir, cfg.TempDir} {
		if err := d.Fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	configsDir := filepath.Join(cfg.BuildDir, source.DirName(cfg.Revision))
	if err := d.Fetcher.Fetch(ctx, cfg.Revision, configsDir, d.Catalog.Labels); err != nil {
		return nil, err
	}

	table, err := d.load(configsDir)
	if err != nil {
		return nil, err
	}

	rec, err := d.openRecorder(ctx)
	if err != nil {
		return nil, err
	}
	defer rec.close()

	sum := &Summary{RunID: rec.runID}
	if err := d.generate(ctx, table, rec, sum); err != nil {
		rec.fail(ctx)
		return nil, err
	}

	archives, err := archive.Subdirs(d.Fs, cfg.BuildDir, cfg.DistDir)
	if err != nil {
		rec.fail(ctx)
		return nil, fmt.Errorf("archiving: %w", err)
	}
	sum.Archives = archives
	slog.Info("archived build", "archives", len(archives), "dist", cfg.DistDir)

	if err := rec.finish(ctx, manifest.StatusComplete); err != nil {
		return nil, err
	}
	return sum, nil
}

func (d *Driver) generate(ctx context.Context, table merge.LookupTable, rec *recorder, sum *Summary) error {
	if err := d.generatePure(ctx, table, rec, sum); err != nil {
		return err
	}
	return d.generatePerturbations(ctx, table, rec, sum)
}

func (d *Driver) clean(dirs ...string) error {
	for _, dir := range dirs {
		exists, err := afero.DirExists(d.Fs, dir)
		if err != nil {
			return fmt.Errorf("checking %s: %w", dir, err)
		}
		if !exists {
			continue
		}
		fmt.Fprintf(d.Out, "Force option enabled: Removing %s\n", dir)
		if err := d.Fs.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
	}
	return nil
}

// load reads the fetched template of every label.
func (d *Driver) load(configsDir string) (merge.LookupTable, error) {
	table := make(merge.LookupTable, len(d.Catalog.Labels))
	for _, l := range d.Catalog.Labels {
		location := source.TemplateFile(configsDir, l.Name)
		tpl, err := pipeline.Load(d.Fs, location)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.Name, err)
		}
		table[l.Name] = tpl
		fmt.Fprintf(d.Out, "Loaded pipeline %s from %s\n", l.Name, location)
	}
	slog.Info("base templates loaded", "labels", d.Catalog.LabelNames(), "dir", configsDir)
	return table, nil
}

// generatePure writes every base template with derivatives switched off,
// renamed to its bare label.
func (d *Driver) generatePure(ctx context.Context, table merge.LookupTable, rec *recorder, sum *Summary) error {
	dir := filepath.Join(d.Config.BuildDir, d.Config.PureDirName)
	if err := d.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	fmt.Fprintf(d.Out, "Generating base pipeline configs in folder %q\n", dir)

	for i, l := range d.Catalog.Labels {
		tpl := table[l.Name].Clone()
		tpl.Location = filepath.Join(dir, l.Name+".yml")
		if err := tpl.Rename(l.Name); err != nil {
			return err
		}
		if err := merge.DeactivateDerivatives(tpl); err != nil {
			return fmt.Errorf("pure %s: %w", l.Name, err)
		}
		if err := tpl.Persist(d.Fs, false); err != nil {
			return fmt.Errorf("pure %s: %w", l.Name, err)
		}
		if err := rec.record(ctx, manifest.Artifact{
			Seq:    i,
			Kind:   manifest.KindPure,
			Name:   tpl.Name,
			Target: l.Name,
			Path:   tpl.Location,
			Notes:  tpl.Notes,
			Valid:  true,
		}, tpl.Doc); err != nil {
			return err
		}
		sum.Pure++
		fmt.Fprintf(d.Out, "> Generated pipeline %s\n", l.Name)
	}
	return nil
}

// generatePerturbations runs the merge engine for every combination,
// validates the result and writes it. A rejected document is still written
// with the rejection recorded in its notes.
func (d *Driver) generatePerturbations(ctx context.Context, table merge.LookupTable, rec *recorder, sum *Summary) error {
	dir := filepath.Join(d.Config.BuildDir, d.Config.PerturbDirName)
	if err := d.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	fmt.Fprintf(d.Out, "Generating %d permutations in folder %q\n", combo.Count(d.Catalog), dir)

	engine := merge.New(d.Catalog, merge.Options{FreesurferDir: d.Config.FreesurferDir}, d.Warnings)
	for c := range combo.Enumerate(d.Catalog) {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(d.Out, "> Generating %s\n", c.Filename())

		res, err := engine.Generate(c, table)
		if err != nil {
			return err
		}
		res.Template.Location = filepath.Join(dir, c.Filename())

		valid, msg := d.Validator.Validate(res.Template.Doc)
		if !valid {
			w := fmt.Sprintf("%s: \"%s\"", ValidationPrefix, msg)
			res.Warn(warn.ValidationFailure, w)
			d.Warnings.Warn(w)
			sum.Rejected++
		}

		if err := res.Template.Persist(d.Fs, false); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
		if err := rec.record(ctx, manifest.Artifact{
			Seq:     c.Seq,
			Kind:    manifest.KindPerturbation,
			Name:    res.Template.Name,
			Target:  c.Target,
			Perturb: c.Perturb,
			Step:    c.Step.Name,
			Path:    res.Template.Location,
			Notes:   res.Template.Notes,
			Valid:   valid,
		}, res.Template.Doc); err != nil {
			return err
		}
		sum.Perturbations++
		sum.Warnings += len(res.Warnings)
		if res.HasWarning(warn.IdenticalMerge) {
			sum.Identical++
		}
	}
	return nil
}

// recorder writes artifacts to the manifest, or does nothing when the
// manifest is disabled.
type recorder struct {
	store *manifest.Store
	runID string
}

func (d *Driver) openRecorder(ctx context.Context) (*recorder, error) {
	path := d.Config.ManifestPath
	if path == "" {
		return &recorder{}, nil
	}
	// SQLite opens the file itself, outside the afero filesystem.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}
	st, err := manifest.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	runID, err := st.BeginRun(ctx, d.IDs, d.Config.Revision)
	if err != nil {
		st.Close()
		return nil, err
	}
	slog.Info("run started", "run_id", runID, "revision", d.Config.Revision, "manifest", path)
	return &recorder{store: st, runID: runID}, nil
}

func (r *recorder) record(ctx context.Context, a manifest.Artifact, m doc.Map) error {
	if r.store == nil {
		return nil
	}
	digest, err := doc.Digest(m)
	if err != nil {
		// Non-finite floats have no canonical form; the file is already written.
		slog.Warn("artifact has no digest", "path", a.Path, "error", err)
	}
	a.RunID = r.runID
	a.Digest = digest
	return r.store.WriteArtifact(ctx, a)
}

func (r *recorder) finish(ctx context.Context, status string) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.FinishRun(ctx, r.runID, status); err != nil {
		return err
	}
	slog.Info("run finished", "run_id", r.runID, "status", status)
	return nil
}

// fail marks the run failed. It runs even when ctx is already cancelled, so
// an interrupted run does not stay "running".
func (r *recorder) fail(ctx context.Context) {
	if err := r.finish(context.WithoutCancel(ctx), manifest.StatusFailed); err != nil {
		slog.Error("error recording failed run", "run_id", r.runID, "error", err)
	}
}

func (r *recorder) close() {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		slog.Error("error closing manifest", "error", err)
	}
}

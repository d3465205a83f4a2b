package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gen192/internal/catalog"
	"github.com/roach88/gen192/internal/driver"
	"github.com/roach88/gen192/internal/pipeline"
	"github.com/roach88/gen192/internal/source"
	"github.com/roach88/gen192/internal/testutil"
	"github.com/roach88/gen192/internal/validate"
	"github.com/roach88/gen192/internal/warn"
)

type fetchFunc func(ctx context.Context, revision, outDir string, labels []catalog.Label) error

func (f fetchFunc) Fetch(ctx context.Context, revision, outDir string, labels []catalog.Label) error {
	return f(ctx, revision, outDir, labels)
}

func writeTemplates(fsys afero.Fs) fetchFunc {
	return func(_ context.Context, _, outDir string, labels []catalog.Label) error {
		return testutil.WriteTemplates(fsys, labels, func(label string) string {
			return source.TemplateFile(outDir, label)
		})
	}
}

// execute runs the command against an in-memory filesystem.
func execute(t *testing.T, fetcher source.Fetcher, args ...string) (string, driver.Config, error) {
	t.Helper()
	return executeOn(t, afero.NewMemMapFs(), fetcher, args...)
}

func executeOn(t *testing.T, fsys afero.Fs, fetcher source.Fetcher, args ...string) (string, driver.Config, error) {
	t.Helper()
	var got driver.Config
	if fetcher == nil {
		fetcher = writeTemplates(fsys)
	}

	opts := &RootOptions{
		NewDriver: func(cfg driver.Config, out io.Writer) *driver.Driver {
			cfg.ManifestPath = ""
			got = cfg
			return &driver.Driver{
				Config:    cfg,
				Fs:        fsys,
				Out:       out,
				Fetcher:   fetcher,
				Validator: validate.AcceptAll,
				Warnings:  warn.Discard,
			}
		},
	}
	cmd := newRootCommand(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), got, err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gen192", cmd.Use)
	assert.Contains(t, cmd.Long, "gen192_nofork")
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := NewRootCommand()

	force := cmd.Flags().Lookup("force")
	require.NotNil(t, force)
	assert.Equal(t, "f", force.Shorthand)
	assert.Equal(t, "false", force.DefValue)

	var names []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) { names = append(names, f.Name) })
	assert.Equal(t, []string{"force"}, names)
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	_, _, err := execute(t, nil, "extra")
	assert.Error(t, err)
}

func TestRun_Success(t *testing.T) {
	out, cfg, err := execute(t, nil)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, GetExitCode(err))
	assert.False(t, cfg.Force)

	assert.Contains(t, out, "Loaded pipeline fMRIPrep from")
	assert.Contains(t, out, "Generating 48 permutations in folder")
}

func TestRun_ForceFlag(t *testing.T) {
	for _, arg := range []string{"--force", "-f"} {
		t.Run(arg, func(t *testing.T) {
			_, cfg, err := execute(t, nil, arg)
			require.NoError(t, err)
			assert.True(t, cfg.Force)
		})
	}
}

func TestRun_FetchFailureExitsOne(t *testing.T) {
	failing := fetchFunc(func(context.Context, string, string, []catalog.Label) error {
		return source.ErrCheckout
	})

	_, _, err := execute(t, failing)
	require.Error(t, err)
	assert.Equal(t, ExitFetchFailure, GetExitCode(err))
	assert.ErrorIs(t, err, source.ErrFetch)
}

func TestRun_OtherFailureExitsTwo(t *testing.T) {
	nothing := fetchFunc(func(context.Context, string, string, []catalog.Label) error {
		return nil
	})

	_, _, err := execute(t, nothing)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "loading ABCD")
}

func TestRun_PreviousOutputSuggestsForce(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, _, err := executeOn(t, fsys, nil)
	require.NoError(t, err)

	_, _, err = executeOn(t, fsys, nil)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, pipeline.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "--force")

	_, _, err = executeOn(t, fsys, nil, "--force")
	assert.NoError(t, err)
}

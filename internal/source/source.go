// Package source fetches the base pipeline templates: it checks out the
// C-PAC repository at a revision, expands each preset's FROM chain and
// writes one YAML document per label.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/roach88/gen192/internal/catalog"
	"github.com/roach88/gen192/internal/pipeline"
)

// DefaultRepoURL is the upstream C-PAC repository.
const DefaultRepoURL = "https://github.com/FCP-INDI/C-PAC.git"

// ConfigsPath is where C-PAC keeps its preset configs, relative to the checkout.
const ConfigsPath = "CPAC/resources/configs"

var (
	// ErrFetch marks every failure to obtain the templates. The CLI maps it
	// to exit code 1.
	ErrFetch = errors.New("fetching templates failed")

	// ErrClone is returned when the repository cannot be cloned.
	ErrClone = fmt.Errorf("%w: git clone", ErrFetch)

	// ErrCheckout is returned when the revision cannot be checked out.
	ErrCheckout = fmt.Errorf("%w: git checkout", ErrFetch)
)

// Fetcher produces one file-safe-named YAML document per label in outDir.
type Fetcher interface {
	Fetch(ctx context.Context, revision, outDir string, labels []catalog.Label) error
}

// DirName is the build sub-directory holding templates fetched at revision.
func DirName(revision string) string {
	return "cpac_source_configs_" + pipeline.B64URLSafeHash(revision)
}

// TemplateFile is where Fetch writes the template for label.
func TemplateFile(outDir, label string) string {
	return filepath.Join(outDir, pipeline.FileSafeDefault(label)+".yml")
}

// GitRunner runs git with args in dir.
type GitRunner func(ctx context.Context, dir string, args ...string) error

// GitFetcher fetches templates from a git checkout of C-PAC.
type GitFetcher struct {
	Fs          afero.Fs
	RepoURL     string
	CheckoutDir string
	Out         io.Writer
	Git         GitRunner
}

// NewGitFetcher creates a fetcher cloning DefaultRepoURL into checkoutDir.
// git output and progress lines go to out.
func NewGitFetcher(fsys afero.Fs, checkoutDir string, out io.Writer) *GitFetcher {
	f := &GitFetcher{
		Fs:          fsys,
		RepoURL:     DefaultRepoURL,
		CheckoutDir: checkoutDir,
		Out:         out,
	}
	f.Git = f.execGit
	return f
}

func (f *GitFetcher) execGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = f.Out
	cmd.Stderr = f.Out
	return cmd.Run()
}

// Fetch checks out revision unless CheckoutDir already holds a CPAC tree,
// then expands the preset of every label into outDir. Existing files in
// outDir are overwritten.
func (f *GitFetcher) Fetch(ctx context.Context, revision, outDir string, labels []catalog.Label) error {
	present, err := afero.DirExists(f.Fs, filepath.Join(f.CheckoutDir, "CPAC"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if !present {
		if err := f.Fs.MkdirAll(f.CheckoutDir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrFetch, err)
		}
		if err := f.download(ctx, revision); err != nil {
			return err
		}
	}

	if err := f.Fs.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	configsDir := filepath.Join(f.CheckoutDir, ConfigsPath)
	for _, l := range labels {
		m, err := ExpandPreset(f.Fs, configsDir, l.PresetID)
		if err != nil {
			return fmt.Errorf("%w: preset %s for %s: %v", ErrFetch, l.PresetID, l.Name, err)
		}
		tpl := &pipeline.Template{Name: l.Name, Location: TemplateFile(outDir, l.Name), Doc: m}
		if err := tpl.Persist(f.Fs, true); err != nil {
			return fmt.Errorf("writing template %s: %w", l.Name, err)
		}
	}
	return nil
}

func (f *GitFetcher) download(ctx context.Context, revision string) error {
	fmt.Fprintf(f.Out, "Check out C-PAC (%s) from github...\n", revision)
	fmt.Fprintln(f.Out, "-------------------------------------------")

	if err := f.Git(ctx, "", "clone", f.RepoURL, f.CheckoutDir); err != nil {
		return fmt.Errorf("%w %s: %v", ErrClone, f.RepoURL, err)
	}
	if err := f.Git(ctx, f.CheckoutDir, "checkout", revision); err != nil {
		fmt.Fprintf(f.Out, "Could not checkout %s\n", revision)
		return fmt.Errorf("%w %s: %v", ErrCheckout, revision, err)
	}

	fmt.Fprintln(f.Out, "-------------------------------------------")
	return nil
}

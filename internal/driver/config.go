package driver

import "github.com/roach88/gen192/internal/merge"

// DefaultRevision is the C-PAC revision the base templates are taken from.
const DefaultRevision = "v1.8.7"

// Config holds everything a run needs to know about its inputs and outputs.
// There is no configuration file; the CLI starts from DefaultConfig.
type Config struct {
	// BuildDir receives fetched templates and generated sets.
	BuildDir string
	// DistDir receives one zip per build sub-directory.
	DistDir string
	// TempDir holds the C-PAC checkout.
	TempDir string

	PureDirName    string
	PerturbDirName string

	// ManifestPath is the run manifest database. Empty disables it.
	ManifestPath string

	Revision      string
	FreesurferDir string

	// Force removes DistDir and BuildDir before running.
	Force bool
}

// DefaultConfig returns the layout used by the gen192 command.
func DefaultConfig() Config {
	return Config{
		BuildDir:       "build",
		DistDir:        "dist",
		TempDir:        "temp",
		PureDirName:    "gen192_pure",
		PerturbDirName: "gen192_nofork",
		ManifestPath:   "dist/manifest.db",
		Revision:       DefaultRevision,
		FreesurferDir:  merge.DefaultFreesurferDir,
	}
}

package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/roach88/gen192/internal/doc"
)

// NamePath is where a C-PAC document declares its own name.
var NamePath = doc.P("pipeline_setup", "pipeline_name")

// NotesSuffix replaces the document extension for the notes sidecar.
const NotesSuffix = ".notes.txt"

const fileMode fs.FileMode = 0o644

// Template is one named pipeline configuration document.
//
// Name always equals Doc's pipeline_setup.pipeline_name once Rename has been
// called. Notes accumulates warnings recorded while the template was derived;
// empty Notes means nothing was recorded.
type Template struct {
	Name     string
	Location string
	Doc      doc.Map
	Notes    string
}

// Clone returns a deep copy. Mutating the clone's document never affects t.
func (t *Template) Clone() *Template {
	return &Template{
		Name:     t.Name,
		Location: t.Location,
		Doc:      doc.CloneMap(t.Doc),
		Notes:    t.Notes,
	}
}

// Rename sets Name and pipeline_setup.pipeline_name together.
func (t *Template) Rename(name string) error {
	if t.Doc == nil {
		t.Doc = doc.Map{}
	}
	if err := doc.Set(t.Doc, NamePath, doc.String(name)); err != nil {
		return fmt.Errorf("rename %q: %w", name, err)
	}
	t.Name = name
	return nil
}

// AddNote appends msg as a new line of Notes.
func (t *Template) AddNote(msg string) {
	if t.Notes == "" {
		t.Notes = msg
		return
	}
	t.Notes += "\n" + msg
}

// NotesLocation derives the sidecar path: build/x/p000.yml -> build/x/p000.notes.txt.
func (t *Template) NotesLocation() string {
	return strings.TrimSuffix(t.Location, filepath.Ext(t.Location)) + NotesSuffix
}

// Persist writes the document to Location. When the location is occupied and
// allowOverwrite is false it returns an *ExistsError and writes nothing.
// Non-empty Notes are written to NotesLocation.
func (t *Template) Persist(fsys afero.Fs, allowOverwrite bool) error {
	if t.Location == "" {
		return fmt.Errorf("persist %q: no location set", t.Name)
	}

	exists, err := afero.Exists(fsys, t.Location)
	if err != nil {
		return fmt.Errorf("persist %q: %w", t.Name, err)
	}
	if exists && !allowOverwrite {
		return &ExistsError{Location: t.Location}
	}

	data, err := doc.MarshalYAML(t.Doc)
	if err != nil {
		return fmt.Errorf("persist %q: %w", t.Name, err)
	}
	if err := afero.WriteFile(fsys, t.Location, data, fileMode); err != nil {
		return fmt.Errorf("persist %q: %w", t.Name, err)
	}

	notesPath := t.NotesLocation()
	if t.Notes == "" {
		// An overwrite must not leave a previous run's notes behind.
		if err := fsys.Remove(notesPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("persist %q: remove stale notes: %w", t.Name, err)
		}
		return nil
	}
	if err := afero.WriteFile(fsys, notesPath, []byte(t.Notes), fileMode); err != nil {
		return fmt.Errorf("persist %q: notes: %w", t.Name, err)
	}
	return nil
}

// Load reads a template from location. The name comes from the document's
// pipeline_setup.pipeline_name, which must be a string.
func Load(fsys afero.Fs, location string) (*Template, error) {
	data, err := afero.ReadFile(fsys, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline config: %w", err)
	}

	m, err := doc.DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	raw, ok := doc.Get(m, NamePath)
	if !ok {
		return nil, fmt.Errorf("%s: %w", location, ErrMissingName)
	}
	name, ok := raw.(doc.String)
	if !ok {
		return nil, fmt.Errorf("%s: pipeline_name is %T: %w", location, raw, ErrMissingName)
	}

	return &Template{
		Name:     string(name),
		Location: location,
		Doc:      m,
	}, nil
}

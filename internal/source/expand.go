package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/roach88/gen192/internal/doc"
)

// InheritKey names the parent of a C-PAC preset. The parent is either a
// preset id ("default", "abcd-options") or a path to a YAML file.
const InheritKey = "FROM"

// ErrInheritanceCycle is returned when a FROM chain revisits a file.
var ErrInheritanceCycle = errors.New("FROM inheritance cycle")

// PresetFile returns the file defining a preset id inside configsDir.
func PresetFile(configsDir, presetID string) string {
	return filepath.Join(configsDir, "pipeline_config_"+presetID+".yml")
}

// resolveParent maps a FROM value to a file.
func resolveParent(configsDir, ref string) string {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".yml", ".yaml":
		if filepath.IsAbs(ref) {
			return ref
		}
		return filepath.Join(configsDir, ref)
	default:
		return PresetFile(configsDir, ref)
	}
}

// ExpandPreset loads the preset and resolves its FROM chain: each document
// is deep-merged over its parent and the FROM key is dropped.
func ExpandPreset(fsys afero.Fs, configsDir, presetID string) (doc.Map, error) {
	return expandFile(fsys, configsDir, PresetFile(configsDir, presetID), nil)
}

func expandFile(fsys afero.Fs, configsDir, file string, chain []string) (doc.Map, error) {
	for _, seen := range chain {
		if seen == file {
			return nil, fmt.Errorf("%s: %w", strings.Join(append(chain, file), " -> "), ErrInheritanceCycle)
		}
	}
	chain = append(chain, file)

	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading preset: %w", err)
	}
	m, err := doc.DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	raw, ok := m[InheritKey]
	if !ok {
		return m, nil
	}
	delete(m, InheritKey)

	switch parent := raw.(type) {
	case doc.Null:
		return m, nil
	case doc.String:
		if parent == "" {
			return m, nil
		}
		base, err := expandFile(fsys, configsDir, resolveParent(configsDir, string(parent)), chain)
		if err != nil {
			return nil, err
		}
		return Overlay(base, m), nil
	default:
		return nil, fmt.Errorf("%s: %s must be a string, got %T", file, InheritKey, raw)
	}
}

// Overlay returns base with over deep-merged on top. Mappings present on
// both sides are merged key by key; any other value from over replaces the
// base value. Neither input is modified.
func Overlay(base, over doc.Map) doc.Map {
	out := doc.CloneMap(base)
	if out == nil {
		out = doc.Map{}
	}
	for k, v := range over {
		child, isMap := v.(doc.Map)
		prev, prevIsMap := out[k].(doc.Map)
		if isMap && prevIsMap {
			out[k] = Overlay(prev, child)
			continue
		}
		out[k] = doc.Clone(v)
	}
	return out
}

package doc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPath is returned by Set for a zero-length path.
	ErrEmptyPath = errors.New("empty path")

	// ErrNotMapping is returned by Set when a non-terminal node on the path
	// holds a value that cannot be walked into.
	ErrNotMapping = errors.New("path runs through a non-mapping value")
)

// Path addresses a location in a document, root first.
type Path []string

// P is shorthand for building a Path from keys.
func P(keys ...string) Path {
	return Path(keys)
}

// String renders the path as a bracketed list of quoted keys,
// e.g. ['registration_workflows', 'anatomical_registration'].
func (p Path) String() string {
	quoted := make([]string, len(p))
	for i, k := range p {
		quoted[i] = "'" + k + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Get returns the value stored at path. The bool is false as soon as an
// intermediate node is not a Map or a key is missing; a stored Null is
// returned as (Null{}, true).
func Get(m Map, path Path) (Value, bool) {
	if len(path) == 0 {
		return nil, false
	}

	var cur Value = m
	for _, key := range path {
		node, ok := cur.(Map)
		if !ok {
			return nil, false
		}
		cur, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set assigns v at path, creating empty mappings for missing intermediate
// keys and overwriting whatever the final key held.
//
// The path is checked before anything is written: if a non-terminal node is
// present but is not a Map, Set returns ErrNotMapping and m is unchanged.
func Set(m Map, path Path, v Value) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	if m == nil {
		return fmt.Errorf("set %s: %w", path, ErrNotMapping)
	}

	// Validation pass: no mutation until the whole walk is known to succeed.
	node := m
	for i, key := range path[:len(path)-1] {
		child, ok := node[key]
		if !ok {
			break // remainder will be created
		}
		next, ok := child.(Map)
		if !ok {
			return fmt.Errorf("set %s: key %s: %w", path, path[:i+1], ErrNotMapping)
		}
		node = next
	}

	node = m
	for _, key := range path[:len(path)-1] {
		next, _ := node[key].(Map)
		if next == nil {
			next = Map{}
			node[key] = next
		}
		node = next
	}
	node[path[len(path)-1]] = v
	return nil
}

// Delete removes the value at path and returns it. If any part of the path is
// missing the document is not touched and the bool is false.
func Delete(m Map, path Path) (Value, bool) {
	if len(path) == 0 {
		return nil, false
	}

	var parent Map
	if len(path) == 1 {
		parent = m
	} else {
		v, ok := Get(m, path[:len(path)-1])
		if !ok {
			return nil, false
		}
		parent, ok = v.(Map)
		if !ok {
			return nil, false
		}
	}

	last := path[len(path)-1]
	old, ok := parent[last]
	if !ok {
		return nil, false
	}
	delete(parent, last)
	return old, true
}

package doc

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlIndent matches the two-space layout C-PAC writes its presets in.
const yamlIndent = 2

// DecodeYAML parses a YAML document whose root must be a mapping.
// An empty input yields an empty Map.
func DecodeYAML(data []byte) (Map, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if root.Kind == 0 {
		return Map{}, nil
	}

	v, err := fromNode(&root)
	if err != nil {
		return nil, err
	}
	m, ok := v.(Map)
	if !ok {
		return nil, fmt.Errorf("document root is %T: %w", v, ErrNotMapping)
	}
	return m, nil
}

// EncodeYAML writes m as a YAML document with sorted mapping keys.
func EncodeYAML(w io.Writer, m Map) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(toNode(m)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// MarshalYAML is EncodeYAML into a byte slice.
func MarshalYAML(m Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeYAML(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Map{}, nil
		}
		return fromNode(n.Content[0])

	case yaml.AliasNode:
		return fromNode(n.Alias)

	case yaml.MappingNode:
		m := make(Map, len(n.Content)/2)
		// Merged entries go in first so explicit keys override them.
		for i := 0; i+1 < len(n.Content); i += 2 {
			if isMergeKey(n.Content[i]) {
				if err := mergeInto(m, n.Content[i+1]); err != nil {
					return nil, fmt.Errorf("line %d: %w", n.Content[i].Line, err)
				}
			}
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if isMergeKey(keyNode) {
				continue
			}
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", keyNode.Line)
			}
			val, err := fromNode(valNode)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", keyNode.Value, err)
			}
			m[keyNode.Value] = val
		}
		return m, nil

	case yaml.SequenceNode:
		seq := make(Seq, len(n.Content))
		for i, item := range n.Content {
			val, err := fromNode(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq[i] = val
		}
		return seq, nil

	case yaml.ScalarNode:
		return fromScalar(n)

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

// isMergeKey reports a plain `<<` key. A quoted "<<" is an ordinary string.
func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

// mergeInto copies the entries of a `<<` value into m. The value is a
// mapping or a sequence of mappings, possibly through aliases; in a
// sequence, earlier mappings take precedence over later ones.
func mergeInto(m Map, n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		v, err := fromNode(n)
		if err != nil {
			return err
		}
		for k, val := range v.(Map) {
			m[k] = val
		}
		return nil
	case yaml.SequenceNode:
		for i := len(n.Content) - 1; i >= 0; i-- {
			item := n.Content[i]
			if item.Kind == yaml.AliasNode {
				item = item.Alias
			}
			if item.Kind != yaml.MappingNode {
				return fmt.Errorf("merge sequence item %d is not a mapping", i)
			}
			if err := mergeInto(m, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("merge value must be a mapping or a sequence of mappings: %w", ErrNotMapping)
	}
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// Out of int64 range; keep the magnitude rather than fail the load.
			var f float64
			if ferr := n.Decode(&f); ferr != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return Float(f), nil
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags are kept verbatim.
		return String(n.Value), nil
	}
}

func toNode(v Value) *yaml.Node {
	switch val := v.(type) {
	case nil, Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(val))}
	case Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(val), 10)}
	case Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(float64(val))}
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(val)}
	case Seq:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			n.Content = append(n.Content, toNode(item))
		}
		return n
	case Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range val.SortedKeys() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toNode(val[k]),
			)
		}
		return n
	default:
		panic(fmt.Sprintf("doc: unknown value type %T", v))
	}
}

// formatFloat renders f so that it reads back as a float, never as an int.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Package doc provides the schema-less configuration document model used by gen192.
//
// A document is a tree of string-keyed mappings whose leaves are scalars or
// sequences. Values are a sealed set of types (Null, Bool, Int, Float, String,
// Seq, Map) so tree walks are plain type switches.
//
// Locations inside a document are addressed by a Path, a root-first list of
// mapping keys. Get, Set and Delete treat a missing path as an ordinary
// outcome: configuration families drift, and a step may own a sub-tree that
// simply does not exist in some base pipeline.
//
// Key constraints:
//   - Absent (the bool result of Get/Delete) is distinct from a stored Null
//   - Set validates the whole path before mutating anything
//   - Mapping keys are always emitted in sorted order (YAML and canonical JSON)
package doc

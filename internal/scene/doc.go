// Package scene provides the canonical data model for slate canvases.
//
// This package contains type definitions and serialization only. All other
// internal packages import scene; scene imports nothing internal. This keeps
// the data model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Geometry is float64 locally but rounded to int on the wire
//   - Wire records carry only the compressed minimal protocol fields
//   - Canonical JSON (sorted keys, NFC strings, ints only) is the ONLY
//     serialization used for snapshot hashing and golden comparison
package scene

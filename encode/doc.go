// Package encode renders decoded archive trees.
//
// # Usage
//
//	// Encode as indented text with class tags
//	err := encode.Encode(root, os.Stdout)
//
//	// Encode as JSON on one line
//	err := encode.Encode(root, w, encode.EncodeFormat(format.JSONFormat), encode.EncodeWire(true))
//
//	// Colored text for terminals
//	err := encode.Encode(root, os.Stdout, encode.EncodeColors(encode.NewColors()))
//
// Text output keeps class tags ("!Person") and set kinds.  JSON and YAML
// keep object key order and drop tags; CBOR uses deterministic encoding
// and tags unordered sets.
//
// # Related Packages
//
//   - github.com/signadot/keyedarchive/ir - decoded trees
//   - github.com/signadot/keyedarchive/format - format names
package encode

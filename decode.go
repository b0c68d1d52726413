package keyedarchive

import (
	"fmt"

	"github.com/signadot/keyedarchive/ir"
	"github.com/signadot/keyedarchive/plist"
)

// Archive is a decoded archive with its metadata.
type Archive struct {
	Archiver string
	Version  int64
	// Top holds every "$top" entry, decoded.
	Top *ir.Node
	// Root is the "root" entry of Top, or nil when the archive has none.
	Root *ir.Node
}

// Decode resolves and normalizes the "$top.root" object of a parsed
// keyed archive.
func Decode(root *plist.Value, opts ...DecodeOption) (*ir.Node, error) {
	ds := newDecodeState(opts)
	parts, err := splitArchive(root)
	if err != nil {
		return nil, err
	}
	resolved, err := resolveRoot(parts, ds)
	if err != nil {
		return nil, err
	}
	return newNormalizer(ds).normalize(resolved)
}

// DecodeArchive decodes every "$top" entry of a parsed keyed archive.
// Objects referenced from several entries are shared between them.
func DecodeArchive(root *plist.Value, opts ...DecodeOption) (*Archive, error) {
	ds := newDecodeState(opts)
	parts, err := splitArchive(root)
	if err != nil {
		return nil, err
	}
	top, err := resolveTop(parts, ds)
	if err != nil {
		return nil, err
	}
	nTop, err := newNormalizer(ds).normalize(top)
	if err != nil {
		return nil, err
	}
	ds.log.Debug("decoded archive",
		"archiver", parts.archiver,
		"version", parts.version,
		"entries", len(nTop.Fields))
	return &Archive{
		Archiver: parts.archiver,
		Version:  parts.version,
		Top:      nTop,
		Root:     ir.Get(nTop, "root"),
	}, nil
}

// DecodeBytes parses data as a binary or XML property list and decodes
// its root object.
func DecodeBytes(data []byte, opts ...DecodeOption) (*ir.Node, error) {
	v, err := plist.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedArchive, err)
	}
	return Decode(v, opts...)
}

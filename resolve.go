package keyedarchive

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/signadot/keyedarchive/debug"
	"github.com/signadot/keyedarchive/plist"
)

// nullMarker is the object archivers store in slot 0 and refer to for
// nil.
const nullMarker = "$null"

type refState uint8

const (
	unvisited refState = iota
	resolving
	resolved
)

// resolver substitutes objects table entries for UIDs.  Each table slot
// is resolved once; later references to it share the result.  A
// reference back into a slot that is still being resolved is a cycle
// and fails with ErrCyclicReference.
type resolver struct {
	trail
	objects []*plist.Value
	memo    []*plist.Value
	state   []refState
	log     *slog.Logger
}

func newResolver(objects []*plist.Value, ds *decodeState) *resolver {
	return &resolver{
		trail:   trail{maxDepth: ds.maxDepth},
		objects: objects,
		memo:    make([]*plist.Value, len(objects)),
		state:   make([]refState, len(objects)),
		log:     ds.log,
	}
}

func (r *resolver) resolve(v *plist.Value) (*plist.Value, error) {
	if v == nil {
		return nil, r.fail(ErrMalformedArchive, -1, "missing value")
	}
	switch v.Kind {
	case plist.UIDKind:
		return r.deref(v.UID)

	case plist.ArrayKind, plist.SetKind:
		if err := r.enter(); err != nil {
			return nil, err
		}
		defer r.leave()
		res := &plist.Value{
			Kind:    v.Kind,
			Ordered: v.Ordered,
			Values:  make([]*plist.Value, len(v.Values)),
		}
		for i, c := range v.Values {
			r.pushIndex(i)
			rc, err := r.resolve(c)
			r.pop()
			if err != nil {
				return nil, err
			}
			res.Values[i] = rc
		}
		return res, nil

	case plist.DictKind:
		if err := r.enter(); err != nil {
			return nil, err
		}
		defer r.leave()
		if len(v.Keys) != len(v.Values) {
			return nil, r.fail(ErrMalformedArchive, -1,
				fmt.Sprintf("dict with %d keys and %d values", len(v.Keys), len(v.Values)))
		}
		res := &plist.Value{
			Kind:   plist.DictKind,
			Keys:   slices.Clone(v.Keys),
			Values: make([]*plist.Value, len(v.Values)),
		}
		for i, c := range v.Values {
			r.pushField(v.Keys[i])
			rc, err := r.resolve(c)
			r.pop()
			if err != nil {
				return nil, err
			}
			res.Values[i] = rc
		}
		return res, nil

	default:
		return v, nil
	}
}

func (r *resolver) deref(uid uint64) (*plist.Value, error) {
	if uid >= uint64(len(r.objects)) {
		return nil, r.fail(ErrDanglingReference, refIndex(uid),
			fmt.Sprintf("reference %d outside %d objects", uid, len(r.objects)))
	}
	switch r.state[uid] {
	case resolved:
		return r.memo[uid], nil
	case resolving:
		return nil, r.fail(ErrCyclicReference, int64(uid),
			fmt.Sprintf("object %d refers back to itself", uid))
	}
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()

	r.state[uid] = resolving
	obj := r.objects[uid]
	var (
		res *plist.Value
		err error
	)
	if obj != nil && obj.Kind == plist.StringKind && obj.String == nullMarker {
		res = plist.Null()
	} else {
		res, err = r.resolve(obj)
		if err != nil {
			return nil, err
		}
	}
	if debug.Resolve() {
		debug.Logf("resolve %s: object %d is %s\n", r.String(), uid, res.Kind)
	}
	r.memo[uid] = res
	r.state[uid] = resolved
	return res, nil
}

// archiveParts are the validated pieces of an archive root.
type archiveParts struct {
	objects  []*plist.Value
	top      *plist.Value
	archiver string
	version  int64
}

func splitArchive(root *plist.Value) (*archiveParts, error) {
	t := &trail{}
	if root == nil || root.Kind != plist.DictKind {
		kind := "nothing"
		if root != nil {
			kind = root.Kind.String()
		}
		return nil, t.fail(ErrMalformedArchive, -1, fmt.Sprintf("archive root is %s, not a dict", kind))
	}
	objects := root.Get("$objects")
	if objects == nil || objects.Kind != plist.ArrayKind {
		return nil, t.fail(ErrMalformedArchive, -1, "missing $objects array")
	}
	top := root.Get("$top")
	if top == nil || top.Kind != plist.DictKind {
		return nil, t.fail(ErrMalformedArchive, -1, "missing $top dict")
	}
	parts := &archiveParts{objects: objects.Values, top: top}
	if a := root.Get("$archiver"); a != nil && a.Kind == plist.StringKind {
		parts.archiver = a.String
	}
	if v := root.Get("$version"); v != nil && v.Kind == plist.IntegerKind {
		parts.version = v.Int
	}
	return parts, nil
}

// Resolve substitutes objects for the references in an archive root and
// returns the resolved "$top.root" object.  The result shares resolved
// objects wherever the archive references one object more than once.
// root is not modified.
func Resolve(root *plist.Value, opts ...DecodeOption) (*plist.Value, error) {
	ds := newDecodeState(opts)
	parts, err := splitArchive(root)
	if err != nil {
		return nil, err
	}
	return resolveRoot(parts, ds)
}

func resolveRoot(parts *archiveParts, ds *decodeState) (*plist.Value, error) {
	r := newResolver(parts.objects, ds)
	r.pushField("$top")
	rootRef := parts.top.Get("root")
	if rootRef == nil {
		return nil, r.fail(ErrMalformedArchive, -1, "$top has no root")
	}
	r.pushField("root")
	res, err := r.resolve(rootRef)
	if err != nil {
		return nil, err
	}
	ds.log.Debug("resolved archive root",
		"archiver", parts.archiver,
		"objects", len(parts.objects),
		"kind", res.Kind.String())
	return res, nil
}

func resolveTop(parts *archiveParts, ds *decodeState) (*plist.Value, error) {
	r := newResolver(parts.objects, ds)
	r.pushField("$top")
	return r.resolve(parts.top)
}

package plist

import "fmt"

const (
	KeyedArchiver        = "NSKeyedArchiver"
	KeyedArchiverVersion = 100000
)

// ArchiveBuilder assembles keyed archive roots by hand.  Objects live in
// a flat table and are referred to by the UID values the builder hands
// out.  Slot 0 holds the "$null" placeholder, as archivers write it.
type ArchiveBuilder struct {
	objects []*Value
	classes map[string]*Value
}

func NewArchiveBuilder() *ArchiveBuilder {
	return &ArchiveBuilder{
		objects: []*Value{String("$null")},
		classes: map[string]*Value{},
	}
}

// NullRef is the reference archivers use for nil.
func (b *ArchiveBuilder) NullRef() *Value {
	return UID(0)
}

// Add appends v to the object table and returns a reference to it.
func (b *ArchiveBuilder) Add(v *Value) *Value {
	b.objects = append(b.objects, v)
	return UID(uint64(len(b.objects) - 1))
}

// Reserve appends a placeholder and returns its reference.  Fill it
// with Put.
func (b *ArchiveBuilder) Reserve() *Value {
	return b.Add(Null())
}

// Put replaces the object that ref points to.
func (b *ArchiveBuilder) Put(ref, v *Value) {
	if ref.Kind != UIDKind || ref.UID >= uint64(len(b.objects)) {
		panic(fmt.Sprintf("plist: Put with invalid reference %v", ref.UID))
	}
	b.objects[ref.UID] = v
}

// Class returns a reference to the class description for name.  The
// "$classes" chain is name, supers, and NSObject.
func (b *ArchiveBuilder) Class(name string, supers ...string) *Value {
	if ref, ok := b.classes[name]; ok {
		return ref
	}
	chain := make([]*Value, 0, len(supers)+2)
	chain = append(chain, String(name))
	for _, s := range supers {
		chain = append(chain, String(s))
	}
	if name != "NSObject" {
		chain = append(chain, String("NSObject"))
	}
	ref := b.Add(Dict(
		KV{Key: "$classes", Val: Array(chain...)},
		KV{Key: "$classname", Val: String(name)},
	))
	b.classes[name] = ref
	return ref
}

// Object adds an instance of class with the given fields.
func (b *ArchiveBuilder) Object(class *Value, kvs ...KV) *Value {
	all := make([]KV, 0, len(kvs)+1)
	all = append(all, kvs...)
	all = append(all, KV{Key: "$class", Val: class})
	return b.Add(Dict(all...))
}

// AddString adds a string object.
func (b *ArchiveBuilder) AddString(s string) *Value {
	return b.Add(String(s))
}

// Dictionary adds an NSMutableDictionary.  Keys are added as string
// objects; vals are stored as given.
func (b *ArchiveBuilder) Dictionary(keys []string, vals []*Value) *Value {
	keyRefs := make([]*Value, len(keys))
	for i, k := range keys {
		keyRefs[i] = b.AddString(k)
	}
	return b.Object(b.Class("NSMutableDictionary", "NSDictionary"),
		KV{Key: "NS.keys", Val: Array(keyRefs...)},
		KV{Key: "NS.objects", Val: Array(vals...)},
	)
}

// Array adds an NSMutableArray.
func (b *ArchiveBuilder) Array(vals ...*Value) *Value {
	return b.Object(b.Class("NSMutableArray", "NSArray"),
		KV{Key: "NS.objects", Val: Array(vals...)},
	)
}

// Set adds an NSSet, or an NSOrderedSet when ordered.
func (b *ArchiveBuilder) Set(ordered bool, vals ...*Value) *Value {
	class := b.Class("NSSet")
	if ordered {
		class = b.Class("NSOrderedSet")
	}
	return b.Object(class, KV{Key: "NS.objects", Val: Array(vals...)})
}

// Root builds the archive with root as "$top.root".
func (b *ArchiveBuilder) Root(root *Value) *Value {
	return b.Top(KV{Key: "root", Val: root})
}

// Top builds the archive with the given "$top" entries.
func (b *ArchiveBuilder) Top(kvs ...KV) *Value {
	objects := make([]*Value, len(b.objects))
	copy(objects, b.objects)
	return Dict(
		KV{Key: "$archiver", Val: String(KeyedArchiver)},
		KV{Key: "$objects", Val: Array(objects...)},
		KV{Key: "$top", Val: Dict(kvs...)},
		KV{Key: "$version", Val: Int(KeyedArchiverVersion)},
	)
}

package keyedarchive

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/keyedarchive/ir"
	"github.com/signadot/keyedarchive/plist"
)

func kv(k string, v *plist.Value) plist.KV { return plist.KV{Key: k, Val: v} }

func TestDecodeMutableDictionary(t *testing.T) {
	b := plist.NewArchiveBuilder()
	root := b.Dictionary([]string{"a", "b"}, []*plist.Value{
		b.Add(plist.Int(1)),
		b.Add(plist.Bool(true)),
	})
	got, err := Decode(b.Root(root))
	if err != nil {
		t.Fatal(err)
	}
	want := ir.FromKeyVals([]ir.KeyVal{
		{Key: "a", Val: ir.FromInt(1)},
		{Key: "b", Val: ir.FromBool(true)},
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMutableArray(t *testing.T) {
	b := plist.NewArchiveBuilder()
	inner := b.Dictionary([]string{"inner"}, []*plist.Value{b.AddString("good")})
	arr := b.Array(inner, b.Add(plist.Bool(true)), b.NullRef())
	root := b.Dictionary([]string{"arr"}, []*plist.Value{arr})
	got, err := Decode(b.Root(root))
	if err != nil {
		t.Fatal(err)
	}
	want := ir.FromKeyVals([]ir.KeyVal{
		{Key: "arr", Val: ir.FromSlice([]*ir.Node{
			ir.FromKeyVals([]ir.KeyVal{{Key: "inner", Val: ir.FromString("good")}}),
			ir.FromBool(true),
			ir.Null(),
		})},
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
	v, ok := ir.GetIndexAs[bool](got, "arr", 1)
	if !ok || !v {
		t.Errorf("GetIndexAs[bool](arr, 1) = %v, %v", v, ok)
	}
}

func TestDecodeSharedReference(t *testing.T) {
	b := plist.NewArchiveBuilder()
	shared := b.Array(b.AddString("x"))
	root := b.Dictionary([]string{"p", "q"}, []*plist.Value{shared, shared})
	got, err := Decode(b.Root(root))
	if err != nil {
		t.Fatal(err)
	}
	p, q := ir.Get(got, "p"), ir.Get(got, "q")
	if p == nil || p != q {
		t.Fatalf("expected p and q to share one node, got %p and %p", p, q)
	}
	if p.Type != ir.ArrayType || len(p.Values) != 1 {
		t.Errorf("unexpected shared node %+v", p)
	}
}

func TestResolveSharedReference(t *testing.T) {
	b := plist.NewArchiveBuilder()
	shared := b.Add(plist.Dict(kv("n", plist.Int(5))))
	root := b.Add(plist.Dict(kv("x", shared), kv("y", shared)))
	archive := b.Root(root)
	got, err := Resolve(archive)
	if err != nil {
		t.Fatal(err)
	}
	if got.Get("x") != got.Get("y") {
		t.Error("expected one resolved value for both references")
	}
	// input is left alone
	objs := archive.Get("$objects").Values
	if objs[root.UID].Get("x").Kind != plist.UIDKind {
		t.Error("Resolve modified its input")
	}
}

func TestDecodeCycle(t *testing.T) {
	b := plist.NewArchiveBuilder()
	ref := b.Reserve()
	b.Put(ref, plist.Dict(kv("self", ref)))
	_, err := Decode(b.Root(ref))
	if !errors.Is(err, ErrCyclicReference) {
		t.Fatalf("expected cyclic reference error, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if de.Ref != int64(ref.UID) {
		t.Errorf("expected ref %d, got %d", ref.UID, de.Ref)
	}
	if de.Path != "$.'$top'.root.self" {
		t.Errorf("unexpected path %q", de.Path)
	}
}

func TestDecodeIndirectCycle(t *testing.T) {
	b := plist.NewArchiveBuilder()
	a := b.Reserve()
	c := b.Reserve()
	b.Put(a, plist.Dict(kv("next", c)))
	b.Put(c, plist.Dict(kv("back", a)))
	_, err := Decode(b.Root(a))
	if !errors.Is(err, ErrCyclicReference) {
		t.Fatalf("expected cyclic reference error, got %v", err)
	}
}

func TestNormalizeCycle(t *testing.T) {
	v := plist.Dict(kv("x", plist.Null()))
	v.Values[0] = v
	_, err := Normalize(v)
	if !errors.Is(err, ErrCyclicReference) {
		t.Fatalf("expected cyclic reference error, got %v", err)
	}
}

func deepChain(n int) *plist.Value {
	b := plist.NewArchiveBuilder()
	last := b.Add(plist.Int(0))
	for range n {
		last = b.Add(plist.Dict(kv("next", last)))
	}
	return b.Root(last)
}

func TestDecodeDeepChain(t *testing.T) {
	const n = 10000
	got, err := Decode(deepChain(n))
	if err != nil {
		t.Fatal(err)
	}
	node := got
	for i := range n {
		next := ir.Get(node, "next")
		if next == nil {
			t.Fatalf("chain ends at %d", i)
		}
		node = next
	}
	if v, ok := ir.As[int64](node); !ok || v != 0 {
		t.Errorf("chain ends in %v", node)
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	_, err := Decode(deepChain(100), MaxDepth(50))
	if !errors.Is(err, ErrTooDeep) {
		t.Fatalf("expected too deep error, got %v", err)
	}
	if _, err := Decode(deepChain(100), MaxDepth(1000)); err != nil {
		t.Fatalf("unexpected error with room to spare: %v", err)
	}
}

func TestDecodeNumericFidelity(t *testing.T) {
	b := plist.NewArchiveBuilder()
	root := b.Dictionary([]string{"flag", "real", "int"}, []*plist.Value{
		b.Add(plist.Bool(true)),
		b.Add(plist.Real(3.0)),
		b.Add(plist.Int(3)),
	})
	got, err := Decode(b.Root(root))
	if err != nil {
		t.Fatal(err)
	}
	flag := ir.Get(got, "flag")
	if flag.Type != ir.BoolType || !flag.Bool {
		t.Errorf("flag decoded as %s", flag.Type)
	}
	if _, ok := ir.GetAs[int64](got, "flag"); ok {
		t.Error("bool read back as an integer")
	}
	r := ir.Get(got, "real")
	if r.Type != ir.NumberType || r.Int64 != nil || r.Float64 == nil || *r.Float64 != 3.0 {
		t.Errorf("real decoded as %+v", r)
	}
	if _, ok := ir.GetAs[int64](got, "real"); ok {
		t.Error("real read back as an integer")
	}
	if f, ok := ir.GetAs[float64](got, "int"); !ok || f != 3 {
		t.Errorf("integer does not widen to float64: %v %v", f, ok)
	}
}

func setValues(t *testing.T, n *ir.Node) []int64 {
	t.Helper()
	if n == nil || n.Type != ir.SetType {
		t.Fatalf("expected a set, got %v", n)
	}
	res := make([]int64, len(n.Values))
	for i, v := range n.Values {
		x, ok := ir.As[int64](v)
		if !ok {
			t.Fatalf("set element %d is %s", i, v.Type)
		}
		res[i] = x
	}
	return res
}

func TestDecodeSets(t *testing.T) {
	b := plist.NewArchiveBuilder()
	ints := func(xs ...int64) []*plist.Value {
		res := make([]*plist.Value, len(xs))
		for i, x := range xs {
			res[i] = plist.Int(x)
		}
		return res
	}
	root := b.Dictionary(
		[]string{"ordered", "unordered", "nsordered", "nsset"},
		[]*plist.Value{
			b.Add(plist.Set(true, ints(3, 1, 2)...)),
			b.Add(plist.Set(false, ints(3, 1, 2, 1)...)),
			b.Set(true, ints(3, 1, 2)...),
			b.Set(false, ints(2, 2, 3, 1)...),
		})
	got, err := Decode(b.Root(root))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		key     string
		ordered bool
		want    []int64
	}{
		{"ordered", true, []int64{3, 1, 2}},
		{"unordered", false, []int64{1, 2, 3}},
		{"nsordered", true, []int64{3, 1, 2}},
		{"nsset", false, []int64{1, 2, 3}},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			n := ir.Get(got, tc.key)
			if diff := cmp.Diff(tc.want, setValues(t, n)); diff != "" {
				t.Errorf("set mismatch (-want +got):\n%s", diff)
			}
			if n.Ordered != tc.ordered {
				t.Errorf("expected ordered=%v", tc.ordered)
			}
		})
	}
}

func TestDecodeSetDistinctMembers(t *testing.T) {
	b := plist.NewArchiveBuilder()
	foo := b.Class("Foo")
	bar := b.Class("Bar")
	set := b.Set(false,
		b.Object(foo),
		b.Object(bar),
		b.Object(foo),
		plist.Int(1),
		plist.Real(1),
		plist.Int(1),
		b.Object(foo, kv("n", plist.Int(1))),
	)
	got, err := Decode(b.Root(set))
	if err != nil {
		t.Fatal(err)
	}
	want := []*ir.Node{
		ir.FromInt(1),
		ir.FromFloat(1),
		ir.FromKeyVals([]ir.KeyVal{}).WithTag("!Bar"),
		ir.FromKeyVals([]ir.KeyVal{}).WithTag("!Foo"),
		ir.FromKeyVals([]ir.KeyVal{{Key: "n", Val: ir.FromInt(1)}}).WithTag("!Foo"),
	}
	if got.Type != ir.SetType || got.Ordered {
		t.Fatalf("got %s ordered=%v, want unordered set", got.Type, got.Ordered)
	}
	if diff := cmp.Diff(want, got.Values); diff != "" {
		t.Errorf("set members mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDistantDates(t *testing.T) {
	tests := []struct {
		name string
		time *plist.Value
		want time.Time
	}{
		{"distant future", plist.Real(63113904000), time.Date(4001, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"distant past", plist.Real(-63114076800), time.Date(0, time.December, 30, 0, 0, 0, 0, time.UTC)},
		{"integer seconds", plist.Int(63113904000), time.Date(4001, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := plist.NewArchiveBuilder()
			date := b.Object(b.Class("NSDate"), kv("NS.time", tt.time))
			got, err := Decode(b.Root(date))
			if err != nil {
				t.Fatal(err)
			}
			when, ok := ir.As[time.Time](got)
			if !ok || !when.Equal(tt.want) {
				t.Errorf("decoded %v (ok=%v), want %v", when, ok, tt.want)
			}
		})
	}
}

func TestDecodeDateOutOfRange(t *testing.T) {
	for _, secs := range []float64{math.NaN(), math.Inf(1), -1e300} {
		b := plist.NewArchiveBuilder()
		date := b.Object(b.Class("NSDate"), kv("NS.time", plist.Real(secs)))
		_, err := Decode(b.Root(date))
		if !errors.Is(err, ErrMalformedArchive) {
			t.Errorf("NS.time %v: expected malformed archive, got %v", secs, err)
		}
	}
}

func TestDecodeFoundationLeaves(t *testing.T) {
	b := plist.NewArchiveBuilder()
	str := b.Object(b.Class("NSMutableString", "NSString"), kv("NS.string", plist.String("hi")))
	data := b.Object(b.Class("NSMutableData", "NSData"), kv("NS.data", plist.Data([]byte{1, 2})))
	date := b.Object(b.Class("NSDate"), kv("NS.time", plist.Real(60)))
	null := b.Object(b.Class("NSNull"))
	utf := b.Object(b.Class("NSString"), kv("NS.bytes", plist.Data([]byte("h\xc3\xa9"))))
	root := b.Dictionary(
		[]string{"str", "data", "date", "null", "raw", "utf"},
		[]*plist.Value{str, data, date, null, b.Add(plist.Data([]byte{3})), utf})
	got, err := Decode(b.Root(root))
	if err != nil {
		t.Fatal(err)
	}
	want := ir.FromKeyVals([]ir.KeyVal{
		{Key: "str", Val: ir.FromString("hi")},
		{Key: "data", Val: ir.FromBytes([]byte{1, 2})},
		{Key: "date", Val: ir.FromTime(time.Date(2001, time.January, 1, 0, 1, 0, 0, time.UTC))},
		{Key: "null", Val: ir.Null()},
		{Key: "raw", Val: ir.FromBytes([]byte{3})},
		{Key: "utf", Val: ir.FromString("hé")},
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePlainObject(t *testing.T) {
	b := plist.NewArchiveBuilder()
	person := b.Object(b.Class("Person"),
		kv("name", b.AddString("ann")),
		kv("age", plist.Int(3)),
		kv("boss", b.NullRef()),
	)
	got, err := Decode(b.Root(person))
	if err != nil {
		t.Fatal(err)
	}
	want := ir.FromKeyVals([]ir.KeyVal{
		{Key: "name", Val: ir.FromString("ann")},
		{Key: "age", Val: ir.FromInt(3)},
		{Key: "boss", Val: ir.Null()},
	}).WithTag("!Person")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSubclassedContainer(t *testing.T) {
	b := plist.NewArchiveBuilder()
	keys := []*plist.Value{b.AddString("k")}
	obj := b.Object(b.Class("MyDictionary", "NSMutableDictionary", "NSDictionary"),
		kv("NS.keys", plist.Array(keys...)),
		kv("NS.objects", plist.Array(plist.Int(1))),
	)
	got, err := Decode(b.Root(obj))
	if err != nil {
		t.Fatal(err)
	}
	want := ir.FromKeyVals([]ir.KeyVal{{Key: "k", Val: ir.FromInt(1)}})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMalformedMutableContainer(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *plist.ArchiveBuilder) *plist.Value
	}{
		{"missing objects", func(b *plist.ArchiveBuilder) *plist.Value {
			return b.Object(b.Class("NSMutableDictionary", "NSDictionary"),
				kv("NS.keys", plist.Array(b.AddString("a"))))
		}},
		{"missing keys", func(b *plist.ArchiveBuilder) *plist.Value {
			return b.Object(b.Class("NSMutableDictionary", "NSDictionary"),
				kv("NS.objects", plist.Array(plist.Int(1))))
		}},
		{"length mismatch", func(b *plist.ArchiveBuilder) *plist.Value {
			return b.Dictionary([]string{"a", "b"}, []*plist.Value{plist.Int(1)})
		}},
		{"key not a string", func(b *plist.ArchiveBuilder) *plist.Value {
			return b.Object(b.Class("NSMutableDictionary", "NSDictionary"),
				kv("NS.keys", plist.Array(plist.Int(1))),
				kv("NS.objects", plist.Array(plist.Int(1))))
		}},
		{"array without objects", func(b *plist.ArchiveBuilder) *plist.Value {
			return b.Object(b.Class("NSMutableArray", "NSArray"))
		}},
		{"array objects not an array", func(b *plist.ArchiveBuilder) *plist.Value {
			return b.Object(b.Class("NSMutableArray", "NSArray"), kv("NS.objects", plist.Int(2)))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := plist.NewArchiveBuilder()
			_, err := Decode(b.Root(tc.build(b)))
			if !errors.Is(err, ErrMalformedMutableContainer) {
				t.Errorf("expected malformed container error, got %v", err)
			}
		})
	}
}

func TestDecodeDanglingReference(t *testing.T) {
	archive := plist.Dict(
		kv("$objects", plist.Array(plist.Null())),
		kv("$top", plist.Dict(kv("root", plist.UID(7)))),
	)
	_, err := Decode(archive)
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected dangling reference error, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if de.Ref != 7 || de.Path != "$.'$top'.root" {
		t.Errorf("unexpected error detail %+v", de)
	}
}

func TestDecodeMalformedArchive(t *testing.T) {
	objects := kv("$objects", plist.Array(plist.String("$null"), plist.Int(1)))
	tests := []struct {
		name    string
		archive *plist.Value
	}{
		{"nil", nil},
		{"not a dict", plist.Array()},
		{"no objects", plist.Dict(kv("$top", plist.Dict(kv("root", plist.UID(1)))))},
		{"objects not an array", plist.Dict(
			kv("$objects", plist.Dict()),
			kv("$top", plist.Dict(kv("root", plist.UID(1)))))},
		{"no top", plist.Dict(objects)},
		{"top not a dict", plist.Dict(objects, kv("$top", plist.Array()))},
		{"no root", plist.Dict(objects, kv("$top", plist.Dict(kv("other", plist.UID(1)))))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.archive)
			if !errors.Is(err, ErrMalformedArchive) {
				t.Errorf("expected malformed archive error, got %v", err)
			}
		})
	}
}

func TestNormalizeUnresolved(t *testing.T) {
	_, err := Normalize(plist.Array(plist.UID(1)))
	if !errors.Is(err, ErrMalformedArchive) {
		t.Fatalf("expected malformed archive error, got %v", err)
	}
}

func TestDecodeArchive(t *testing.T) {
	b := plist.NewArchiveBuilder()
	shared := b.AddString("s")
	archive := b.Top(
		kv("root", b.Array(shared)),
		kv("extra", shared),
	)
	got, err := DecodeArchive(archive)
	if err != nil {
		t.Fatal(err)
	}
	if got.Archiver != plist.KeyedArchiver || got.Version != plist.KeyedArchiverVersion {
		t.Errorf("unexpected metadata %q %d", got.Archiver, got.Version)
	}
	want := ir.FromSlice([]*ir.Node{ir.FromString("s")})
	if diff := cmp.Diff(want, got.Root); diff != "" {
		t.Errorf("root mismatch (-want +got):\n%s", diff)
	}
	if ir.Get(got.Top, "extra") != got.Root.Values[0] {
		t.Error("expected top entries to share decoded objects")
	}
}

func TestDecodeBytes(t *testing.T) {
	b := plist.NewArchiveBuilder()
	root := b.Dictionary([]string{"set", "n"}, []*plist.Value{
		b.Add(plist.Set(true, plist.Int(2), plist.Int(1))),
		b.Add(plist.Real(1.5)),
	})
	data, err := plist.EncodeBinary(b.Root(root))
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{2, 1}, setValues(t, ir.Get(got, "set"))); diff != "" {
		t.Errorf("set mismatch (-want +got):\n%s", diff)
	}
	if f, ok := ir.GetAs[float64](got, "n"); !ok || f != 1.5 {
		t.Errorf("n = %v, %v", f, ok)
	}
	if _, err := DecodeBytes([]byte("bplist00 truncated")); !errors.Is(err, ErrMalformedArchive) {
		t.Errorf("expected malformed archive error, got %v", err)
	}
}

func TestClassOf(t *testing.T) {
	mk := func(name string, supers ...string) *plist.Value {
		return plist.Dict(kv("$class", plist.Dict(
			kv("$classes", plist.Array(append([]*plist.Value{plist.String(name)}, stringValues(supers)...)...)),
			kv("$classname", plist.String(name)),
		)))
	}
	tests := []struct {
		obj       *plist.Value
		wantClass Class
		wantName  string
	}{
		{mk("NSMutableDictionary", "NSDictionary", "NSObject"), DictionaryClass, "NSMutableDictionary"},
		{mk("NSArray", "NSObject"), ArrayClass, "NSArray"},
		{mk("MyArray", "NSMutableArray", "NSArray", "NSObject"), ArrayClass, "MyArray"},
		{mk("NSMutableOrderedSet", "NSOrderedSet", "NSObject"), OrderedSetClass, "NSMutableOrderedSet"},
		{mk("Person", "NSObject"), PlainClass, "Person"},
		{plist.Dict(kv("a", plist.Int(1))), PlainClass, ""},
	}
	for _, tc := range tests {
		c, name := ClassOf(tc.obj)
		if c != tc.wantClass || name != tc.wantName {
			t.Errorf("ClassOf() = %s %q, want %s %q", c, name, tc.wantClass, tc.wantName)
		}
	}
}

func stringValues(ss []string) []*plist.Value {
	res := make([]*plist.Value, len(ss))
	for i, s := range ss {
		res[i] = plist.String(s)
	}
	return res
}

package keyedarchive

import (
	"fmt"

	"github.com/signadot/keyedarchive/plist"
)

// Class is the decoding rule selected for an archived object.
type Class int

const (
	// PlainClass objects become objects tagged with their class name.
	PlainClass Class = iota
	DictionaryClass
	ArrayClass
	SetClass
	OrderedSetClass
	StringClass
	DataClass
	DateClass
	NullClass
)

var classNames = map[string]Class{
	"NSDictionary":        DictionaryClass,
	"NSMutableDictionary": DictionaryClass,
	"NSArray":             ArrayClass,
	"NSMutableArray":      ArrayClass,
	"NSSet":               SetClass,
	"NSMutableSet":        SetClass,
	"NSCountedSet":        SetClass,
	"NSOrderedSet":        OrderedSetClass,
	"NSMutableOrderedSet": OrderedSetClass,
	"NSString":            StringClass,
	"NSMutableString":     StringClass,
	"NSData":              DataClass,
	"NSMutableData":       DataClass,
	"NSDate":              DateClass,
	"NSNull":              NullClass,
}

func (c Class) String() string {
	switch c {
	case PlainClass:
		return "plain"
	case DictionaryClass:
		return "dictionary"
	case ArrayClass:
		return "array"
	case SetClass:
		return "set"
	case OrderedSetClass:
		return "orderedset"
	case StringClass:
		return "string"
	case DataClass:
		return "data"
	case DateClass:
		return "date"
	case NullClass:
		return "null"
	default:
		return fmt.Sprintf("<class %d>", int(c))
	}
}

// ClassName returns the "$classname" of the class description a
// resolved object refers to under "$class".
func ClassName(obj *plist.Value) (string, bool) {
	desc := obj.Get("$class")
	if desc == nil || desc.Kind != plist.DictKind {
		return "", false
	}
	name := desc.Get("$classname")
	if name == nil || name.Kind != plist.StringKind {
		return "", false
	}
	return name.String, true
}

// classChain lists the class name followed by the names in "$classes",
// most derived first.
func classChain(obj *plist.Value) []string {
	name, ok := ClassName(obj)
	if !ok {
		return nil
	}
	chain := []string{name}
	classes := obj.Get("$class").Get("$classes")
	if classes == nil || classes.Kind != plist.ArrayKind {
		return chain
	}
	for _, c := range classes.Values {
		if c != nil && c.Kind == plist.StringKind && c.String != name {
			chain = append(chain, c.String)
		}
	}
	return chain
}

// ClassOf returns the decoding rule for obj together with its class
// name.  The first name in the class chain with a known rule decides,
// so subclasses of the Foundation containers decode as those
// containers.  Objects without a class description are plain with an
// empty name.
func ClassOf(obj *plist.Value) (Class, string) {
	chain := classChain(obj)
	if len(chain) == 0 {
		return PlainClass, ""
	}
	for _, name := range chain {
		if c, ok := classNames[name]; ok {
			return c, chain[0]
		}
	}
	return PlainClass, chain[0]
}

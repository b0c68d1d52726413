// Package ir provides the generic value tree produced by decoding keyed
// archives.
//
// # Overview
//
// A decoded archive is a tree of [Node]s.  The IR works as a recursive
// tagged union, where values are placed in fields depending on the node
// type.
//
// # Node Types
//
// The Type field indicates the node's type:
//
//   - NullType: null value
//   - BoolType: boolean (true/false)
//   - NumberType: int64 (Int64 set) or float64 (Float64 set)
//   - StringType: string value
//   - BytesType: byte sequence
//   - TimeType: absolute time instant
//   - ArrayType: ordered list of nodes
//   - SetType: collection of nodes with an Ordered flag
//   - ObjectType: key-value pairs (fields and values)
//
// # IR Structure Constraints
//
// For ObjectType nodes, Fields[i] is the key for the value at Values[i],
// so there will always be the same number of fields as values.  Fields
// are string typed and occur once.
//
// Exactly one of Int64 and Float64 is set on a NumberType node.  An
// integer valued real keeps Float64.
//
// An ordered set keeps its elements in the order they were decoded.  An
// unordered set built with [FromSet] is sorted by [Compare] with
// duplicates removed.
//
// Objects decoded from an archived class that has no natural Go
// counterpart carry the class name in Tag, as in "!MyClass".
//
// Nodes do not point to their parents.  A subtree which is referenced
// from several places in an archive is the same *Node in each place.
//
// # Typed Access
//
// [As], [GetAs], [GetObject] and [GetIndexAs] project nodes onto Go types
// and report absence rather than failing:
//
//	name, ok := ir.GetAs[string](root, "name")
//	count, ok := ir.GetIndexAs[int64](root, "counts", 2)
//
// # Paths
//
// [Node.GetPath] and [Node.ListPath] navigate with JSONPath-style paths
// such as "$.items[0].name".
package ir

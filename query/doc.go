// Package query evaluates expr-lang expressions over decoded archives.
//
//	n, err := query.Eval(`root.items[0].name`, root, nil)
//	n, err := query.Eval(`classname("$.owner") == "Person"`, root, nil)
//
// Objects are seen as maps, so class tags are reached through classname.
package query

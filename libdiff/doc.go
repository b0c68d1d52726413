// Package libdiff computes structural diffs between decoded archives.
//
// A diff is itself an ir tree.  Unchanged values are omitted; changed
// object fields appear under their names, and changed array, set and
// string elements under their index.  Operations are tagged:
//
//   - !insert and !delete carry the whole value, with its class as
//     argument, e.g. !delete(Person)
//   - !replace holds "from" and "to"
//   - !arraydiff and !strdiff(multiline) hold index keyed operations
//   - !addtag, !rmtag and !retag record class changes
//
// [Patch] applies a diff and [Reverse] inverts one.
package libdiff

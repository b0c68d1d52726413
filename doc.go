// Package keyedarchive decodes NSKeyedArchiver archives into ir trees.
//
// An archive stores objects in a flat "$objects" table and refers to
// them by UID.  Decoding first resolves those references, then
// normalizes the archived Foundation classes:
//
//   - NSDictionary and NSMutableDictionary become objects, keeping key order
//   - NSArray and NSMutableArray become arrays
//   - NSSet and NSOrderedSet become sets; unordered sets are sorted and deduplicated
//   - NSString, NSData, NSDate and NSNull become the matching leaves
//   - numbers keep the integer, real or bool kind they were archived with
//
// Any other archived object becomes an object tagged "!ClassName" with
// its fields decoded and "$class" removed.
//
// # Usage
//
//	v, err := plist.Load("state.plist")
//	if err != nil {
//	    return err
//	}
//	root, err := keyedarchive.Decode(v, keyedarchive.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	name, ok := ir.GetAs[string](root, "name")
//
// # References
//
// An object referenced more than once decodes to a single *ir.Node
// shared by every referrer.  An object that refers back to itself
// cannot be represented and fails with [ErrCyclicReference].  Nesting is
// bounded by [MaxDepth].
//
// # Related Packages
//
//   - github.com/signadot/keyedarchive/plist - property list parsing
//   - github.com/signadot/keyedarchive/ir - decoded trees and typed access
//   - github.com/signadot/keyedarchive/encode - rendering decoded trees
//   - github.com/signadot/keyedarchive/libdiff - diffing decoded trees
//   - github.com/signadot/keyedarchive/cmd/ka - command line tool
package keyedarchive

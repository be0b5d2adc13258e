/*
Package ref implements the lazy reference layer that sits between the tree
(package llrb) and the block store (package store).

A ValueRef or NodeRef is a tagged union of "resident" (an in-memory referent
not yet on disk), "persisted" (an address, not yet paged in), and
"resident+persisted" (both, once Store has run): it models a node that may
exist only in memory (created by an uncommitted Set/Delete), only on disk
(an untouched subtree reached by address from a loaded parent), or both. Get
pages a persisted-only ref's referent in from the store and caches it; Store
writes a resident-only ref's referent out and remembers its address. Both
are idempotent and safe to call repeatedly.

This laziness is what keeps Get, Set, and Delete from paging in the whole
tree: a lookup only follows the NodeRefs on its search path, and a commit
only serializes the NodeRefs created by the current transaction, leaving
untouched subtrees as bare addresses.
*/
package ref

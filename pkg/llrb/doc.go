/*
Package llrb implements the persistent, copy-on-write left-leaning
red-black tree that backs llrbkv's ordered storage.

Every insert or delete builds a new path of nodes from a new root down to
the point of modification, sharing every untouched subtree by address with
the previous version. Nothing already on disk is ever mutated; balancing
allocates fresh nodes rather than rewriting in place. A Tree's in-memory
root only becomes durable when Commit walks the dirty path and publishes
its address through the block store.

# Balancing

balance restores the left-leaning invariant at one node using the
classic four-case structure: a red left child paired with a red right
child recolors; a red-red left lean rotates right; a red left-then-right
lean double-rotates. Rotation is purely structural — it never changes a
node's color — and is always followed by an explicit recolor step that
blackens both children and reddens the node above them. insert calls
balance on both the freshly built subtree and the node above it on the
way back up the recursion, matching the reference tree's own insert
rather than the more compact single-balance-per-level form some LLRB
write-ups use.

delete rebuilds the spine down to the deleted key using classical BST
deletion (successor-by-predecessor-in-the-left-subtree when a node has
two children) but does not re-run balance or reblacken the root on the
way back up: a tree that has only ever been modified by insert keeps the
red-black invariants, but deletions can leave it merely BST-ordered. This
mirrors the tree this package is modeled on, which never implements an
LLRB deletion fix-up (moveRedLeft/moveRedRight) either.
*/
package llrb

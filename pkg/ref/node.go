package ref

import (
	"fmt"

	"github.com/kvforge/llrbkv/pkg/store"
)

// Color is a red-black tree node's link color, stored as a property of the
// node itself (the color of the link from its parent) per the left-leaning
// convention.
type Color bool

const (
	Red   Color = true
	Black Color = false
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Node is one binary search tree node: a key, a lazy reference to its
// value, lazy references to its two children, and the color of the link
// above it.
type Node struct {
	Left  *NodeRef
	Key   string
	Value *ValueRef
	Right *NodeRef
	Color Color
}

// CloneWith returns a shallow copy of n with the given fields overridden.
// The tree never mutates a Node in place once it may be shared with an
// older committed version; every change goes through CloneWith to build a
// new node on a new path to the root.
func (n *Node) CloneWith(opts ...func(*Node)) *Node {
	clone := &Node{
		Left:  n.Left,
		Key:   n.Key,
		Value: n.Value,
		Right: n.Right,
		Color: n.Color,
	}
	for _, opt := range opts {
		opt(clone)
	}
	return clone
}

// NodeRef is a lazy reference to a Node, either held in memory, known only
// by address, or both.
type NodeRef struct {
	node    *Node
	address store.Address
}

// NilRef is the empty-subtree reference: no node, no address. It is the
// Left/Right of every leaf and the tree's root reference before anything
// has ever been inserted.
func NilRef() *NodeRef {
	return &NodeRef{}
}

// NewNodeRef wraps a resident node that has not yet been written to the
// store.
func NewNodeRef(n *Node) *NodeRef {
	return &NodeRef{node: n}
}

// NewPersistedNodeRef wraps an address of a node already on disk.
func NewPersistedNodeRef(addr store.Address) *NodeRef {
	return &NodeRef{address: addr}
}

// IsNil reports whether r is the empty-subtree reference.
func (r *NodeRef) IsNil() bool {
	return r == nil || (r.node == nil && r.address == 0)
}

// Address returns the ref's on-disk address, or 0 if it is nil or has never
// been stored.
func (r *NodeRef) Address() store.Address {
	if r == nil {
		return 0
	}
	return r.address
}

// Get returns the referenced node, paging it in (and its value and
// children refs, still lazily) from s if this ref is persisted-only.
func (r *NodeRef) Get(s *store.Store) (*Node, error) {
	if r.IsNil() {
		return nil, nil
	}
	if r.node == nil {
		payload, err := s.Read(r.address)
		if err != nil {
			return nil, err
		}
		n, err := decodeNode(payload)
		if err != nil {
			return nil, fmt.Errorf("llrbkv: decode node at %d: %w", r.address, err)
		}
		r.node = n
	}
	return r.node, nil
}

// Store writes the referenced node to s if this ref is resident-only,
// recursively storing its children and value first, and caches the
// resulting address. A no-op if already persisted or nil.
func (r *NodeRef) Store(s *store.Store) error {
	if r.IsNil() {
		return nil
	}
	if r.node != nil && r.address == 0 {
		if err := r.node.Left.Store(s); err != nil {
			return err
		}
		if err := r.node.Right.Store(s); err != nil {
			return err
		}
		if err := r.node.Value.Store(s); err != nil {
			return err
		}
		payload, err := encodeNode(r.node)
		if err != nil {
			return fmt.Errorf("llrbkv: encode node: %w", err)
		}
		addr, err := s.Write(payload)
		if err != nil {
			return err
		}
		r.address = addr
	}
	return nil
}

// IsRed reports whether r's link color is red. A nil ref is always black,
// the base case every LLRB color check relies on. Only a resident node is
// inspected: a persisted ref that Get has not yet paged in reports false.
func IsRed(r *NodeRef) bool {
	if r.IsNil() {
		return false
	}
	return r.node != nil && r.node.Color == Red
}

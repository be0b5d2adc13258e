package llrb

import (
	"github.com/rs/zerolog"

	"github.com/kvforge/llrbkv/pkg/errs"
	"github.com/kvforge/llrbkv/pkg/log"
	"github.com/kvforge/llrbkv/pkg/metrics"
	"github.com/kvforge/llrbkv/pkg/ref"
	"github.com/kvforge/llrbkv/pkg/store"
)

// Tree is a handle onto one persistent LLRB tree backed by a block store.
// It is not safe for concurrent use from multiple goroutines; cross-process
// coordination goes through the store's advisory lock instead.
type Tree struct {
	store  *store.Store
	root   *ref.NodeRef
	logger zerolog.Logger
}

// Open builds a Tree over s, loading whatever root address the superblock
// currently holds (0 for a brand new file, meaning an empty tree).
func Open(s *store.Store) (*Tree, error) {
	t := &Tree{
		store:  s,
		logger: log.WithComponent("tree"),
	}
	if err := t.refreshRoot(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) refreshRoot() error {
	addr, err := t.store.GetRootAddress()
	if err != nil {
		return err
	}
	if addr == 0 {
		t.root = ref.NilRef()
	} else {
		t.root = ref.NewPersistedNodeRef(addr)
	}
	return nil
}

// Get walks from the root comparing keys, returning the bound value or
// errs.ErrNotFound. If this handle does not already hold the writer lock,
// it first refreshes its root reference so it observes any commit made by
// another handle since the last read.
func (t *Tree) Get(key string) ([]byte, error) {
	if !t.store.Locked() {
		if err := t.refreshRoot(); err != nil {
			return nil, err
		}
	}

	node, err := t.root.Get(t.store)
	if err != nil {
		return nil, err
	}

	for node != nil {
		switch {
		case key < node.Key:
			node, err = node.Left.Get(t.store)
		case key > node.Key:
			node, err = node.Right.Get(t.store)
		default:
			return node.Value.Get(t.store)
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, errs.ErrNotFound
}

// Set builds a new root with key bound to value and installs it as the
// current in-memory root. The new tree is not durable until Commit.
func (t *Tree) Set(key string, value []byte) error {
	acquired, err := t.store.Lock()
	if err != nil {
		return err
	}
	if acquired {
		if err := t.refreshRoot(); err != nil {
			return err
		}
	}

	newRoot, err := t.insert(t.root, key, ref.NewValueRef(value))
	if err != nil {
		return err
	}
	newRoot, err = t.blacken(newRoot)
	if err != nil {
		return err
	}

	t.root = newRoot
	return nil
}

// Delete builds a new root with key removed and installs it as the current
// in-memory root. errs.ErrNotFound leaves the root unchanged.
func (t *Tree) Delete(key string) error {
	acquired, err := t.store.Lock()
	if err != nil {
		return err
	}
	if acquired {
		if err := t.refreshRoot(); err != nil {
			return err
		}
	}

	newRoot, err := t.deleteKey(t.root, key)
	if err != nil {
		return err
	}

	t.root = newRoot
	return nil
}

// Commit stores every dirty node reachable from the current root (bottom
// up, so a node is only serialized once its children and value are
// durable), publishes the resulting address as the new root, and releases
// the writer lock CommitRootAddress acquired.
func (t *Tree) Commit() error {
	if err := t.root.Store(t.store); err != nil {
		return err
	}
	if err := t.store.CommitRootAddress(t.root.Address()); err != nil {
		return err
	}

	depth, err := t.Depth()
	if err != nil {
		return err
	}
	metrics.SetTreeDepth(depth)
	t.logger.Debug().Int("depth", depth).Msg("tree committed")
	return nil
}

// RootKey returns the key at the current in-memory root, or errs.ErrEmpty
// if the tree is empty.
func (t *Tree) RootKey() (string, error) {
	node, err := t.root.Get(t.store)
	if err != nil {
		return "", err
	}
	if node == nil {
		return "", errs.ErrEmpty
	}
	return node.Key, nil
}

// Depth returns the height of the current in-memory tree, counting the
// root as depth 1 and an empty tree as depth 0.
func (t *Tree) Depth() (int, error) {
	return t.depth(t.root)
}

func (t *Tree) depth(nodeRef *ref.NodeRef) (int, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return 0, err
	}
	if node == nil {
		return 0, nil
	}
	left, err := t.depth(node.Left)
	if err != nil {
		return 0, err
	}
	right, err := t.depth(node.Right)
	if err != nil {
		return 0, err
	}
	if left > right {
		return left + 1, nil
	}
	return right + 1, nil
}

// insert recursively descends the comparison path, returning a new subtree
// with key bound to value. balance runs both on the rebuilt child and on
// the node above it, mirroring the tree's own double-balance shape rather
// than the single-balance-per-level form.
func (t *Tree) insert(nodeRef *ref.NodeRef, key string, value *ref.ValueRef) (*ref.NodeRef, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return nil, err
	}

	if node == nil {
		return ref.NewNodeRef(&ref.Node{
			Left:  ref.NilRef(),
			Key:   key,
			Value: value,
			Right: ref.NilRef(),
			Color: ref.Red,
		}), nil
	}

	switch {
	case key < node.Key:
		newLeft, err := t.insert(node.Left, key, value)
		if err != nil {
			return nil, err
		}
		newLeft, err = t.balance(newLeft)
		if err != nil {
			return nil, err
		}
		clone := node.CloneWith(func(n *ref.Node) { n.Left = newLeft })
		return t.balance(ref.NewNodeRef(clone))

	case key > node.Key:
		newRight, err := t.insert(node.Right, key, value)
		if err != nil {
			return nil, err
		}
		newRight, err = t.balance(newRight)
		if err != nil {
			return nil, err
		}
		clone := node.CloneWith(func(n *ref.Node) { n.Right = newRight })
		return t.balance(ref.NewNodeRef(clone))

	default:
		clone := node.CloneWith(func(n *ref.Node) { n.Value = value })
		return ref.NewNodeRef(clone), nil
	}
}

// deleteKey recursively descends to key, rebuilding the spine with the
// node removed. It does not rebalance on the way back up.
func (t *Tree) deleteKey(nodeRef *ref.NodeRef, key string) (*ref.NodeRef, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errs.ErrNotFound
	}

	switch {
	case key < node.Key:
		newLeft, err := t.deleteKey(node.Left, key)
		if err != nil {
			return nil, err
		}
		clone := node.CloneWith(func(n *ref.Node) { n.Left = newLeft })
		return ref.NewNodeRef(clone), nil

	case key > node.Key:
		newRight, err := t.deleteKey(node.Right, key)
		if err != nil {
			return nil, err
		}
		clone := node.CloneWith(func(n *ref.Node) { n.Right = newRight })
		return ref.NewNodeRef(clone), nil

	default:
		left, err := node.Left.Get(t.store)
		if err != nil {
			return nil, err
		}
		right, err := node.Right.Get(t.store)
		if err != nil {
			return nil, err
		}

		switch {
		case left != nil && right != nil:
			replacement, err := t.findMax(node.Left)
			if err != nil {
				return nil, err
			}
			newLeft, err := t.deleteKey(node.Left, replacement.Key)
			if err != nil {
				return nil, err
			}
			return ref.NewNodeRef(&ref.Node{
				Left:  newLeft,
				Key:   replacement.Key,
				Value: replacement.Value,
				Right: node.Right,
				Color: node.Color,
			}), nil
		case left != nil:
			return node.Left, nil
		default:
			return node.Right, nil
		}
	}
}

// findMax walks right pointers from nodeRef until it runs out, returning
// the maximum-key node of that subtree.
func (t *Tree) findMax(nodeRef *ref.NodeRef) (*ref.Node, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return nil, err
	}
	for {
		next, err := node.Right.Get(t.store)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return node, nil
		}
		node = next
	}
}

// balance restores the LLRB invariant locally at nodeRef using the
// standard four-case left-leaning shape. Rotation is purely structural;
// color fix-up happens in recolor, called once per case.
func (t *Tree) balance(nodeRef *ref.NodeRef) (*ref.NodeRef, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return nil, err
	}
	if node == nil || node.Color == ref.Red {
		return nodeRef, nil
	}

	left, err := node.Left.Get(t.store)
	if err != nil {
		return nil, err
	}
	right, err := node.Right.Get(t.store)
	if err != nil {
		return nil, err
	}

	if isRed(left) {
		if isRed(right) {
			return t.recolor(nodeRef)
		}

		leftLeft, err := left.Left.Get(t.store)
		if err != nil {
			return nil, err
		}
		if isRed(leftLeft) {
			rotated, err := t.rotateRight(nodeRef)
			if err != nil {
				return nil, err
			}
			return t.recolor(rotated)
		}

		leftRight, err := left.Right.Get(t.store)
		if err != nil {
			return nil, err
		}
		if isRed(leftRight) {
			newLeft, err := t.rotateLeft(node.Left)
			if err != nil {
				return nil, err
			}
			clone := node.CloneWith(func(n *ref.Node) { n.Left = newLeft })
			rotated, err := t.rotateRight(ref.NewNodeRef(clone))
			if err != nil {
				return nil, err
			}
			return t.recolor(rotated)
		}
	}

	if isRed(right) {
		rightRight, err := right.Right.Get(t.store)
		if err != nil {
			return nil, err
		}
		if isRed(rightRight) {
			rotated, err := t.rotateLeft(nodeRef)
			if err != nil {
				return nil, err
			}
			return t.recolor(rotated)
		}

		rightLeft, err := right.Left.Get(t.store)
		if err != nil {
			return nil, err
		}
		if isRed(rightLeft) {
			newRight, err := t.rotateRight(node.Right)
			if err != nil {
				return nil, err
			}
			clone := node.CloneWith(func(n *ref.Node) { n.Right = newRight })
			rotated, err := t.rotateLeft(ref.NewNodeRef(clone))
			if err != nil {
				return nil, err
			}
			return t.recolor(rotated)
		}
	}

	return nodeRef, nil
}

// rotateLeft reshapes N and its right child R into a new node taking R's
// key/value, whose left subtree is a clone of N with right := R.left (N's
// color unchanged), and whose right subtree is R.right. No color changes;
// those happen in recolor.
func (t *Tree) rotateLeft(nodeRef *ref.NodeRef) (*ref.NodeRef, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return nil, err
	}
	right, err := node.Right.Get(t.store)
	if err != nil {
		return nil, err
	}

	newLeft := node.CloneWith(func(n *ref.Node) { n.Right = right.Left })
	newNode := right.CloneWith(func(n *ref.Node) { n.Left = ref.NewNodeRef(newLeft) })
	return ref.NewNodeRef(newNode), nil
}

// rotateRight mirrors rotateLeft structurally.
func (t *Tree) rotateRight(nodeRef *ref.NodeRef) (*ref.NodeRef, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return nil, err
	}
	left, err := node.Left.Get(t.store)
	if err != nil {
		return nil, err
	}

	newRight := node.CloneWith(func(n *ref.Node) { n.Left = left.Right })
	newNode := left.CloneWith(func(n *ref.Node) { n.Right = ref.NewNodeRef(newRight) })
	return ref.NewNodeRef(newNode), nil
}

// recolor blackens both children and reddens nodeRef itself. Called after
// every rotation and whenever a node has two red children.
func (t *Tree) recolor(nodeRef *ref.NodeRef) (*ref.NodeRef, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return nil, err
	}
	left, err := node.Left.Get(t.store)
	if err != nil {
		return nil, err
	}
	right, err := node.Right.Get(t.store)
	if err != nil {
		return nil, err
	}

	clone := node.CloneWith(func(n *ref.Node) {
		n.Left = blackenRef(node.Left, left)
		n.Right = blackenRef(node.Right, right)
		n.Color = ref.Red
	})
	return ref.NewNodeRef(clone), nil
}

// blacken returns nodeRef repainted BLACK, the fix-up applied to the whole
// tree's root after every insert.
func (t *Tree) blacken(nodeRef *ref.NodeRef) (*ref.NodeRef, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nodeRef, nil
	}
	clone := node.CloneWith(func(n *ref.Node) { n.Color = ref.Black })
	return ref.NewNodeRef(clone), nil
}

func blackenRef(nodeRef *ref.NodeRef, node *ref.Node) *ref.NodeRef {
	if node == nil {
		return nodeRef
	}
	clone := node.CloneWith(func(n *ref.Node) { n.Color = ref.Black })
	return ref.NewNodeRef(clone)
}

func isRed(node *ref.Node) bool {
	return node != nil && node.Color == ref.Red
}

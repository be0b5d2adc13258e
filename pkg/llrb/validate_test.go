package llrb

import (
	"fmt"

	"github.com/kvforge/llrbkv/pkg/ref"
)

// validateBST walks nodeRef verifying I3 (BST order): every key in a left
// subtree is less than the node's key, every key in a right subtree is
// greater. min/max are nil when unbounded on that side.
func (t *Tree) validateBST(nodeRef *ref.NodeRef, min, max *string) error {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return err
	}
	if node == nil {
		return nil
	}
	if min != nil && node.Key <= *min {
		return fmt.Errorf("key %q not greater than lower bound %q", node.Key, *min)
	}
	if max != nil && node.Key >= *max {
		return fmt.Errorf("key %q not less than upper bound %q", node.Key, *max)
	}
	if err := t.validateBST(node.Left, min, &node.Key); err != nil {
		return err
	}
	return t.validateBST(node.Right, &node.Key, max)
}

// validateBlackHeight walks nodeRef verifying I4 (uniform black height and
// no two consecutive red links) and returns the black height of the
// subtree (number of BLACK nodes on any root-to-null path, including the
// null leaf).
func (t *Tree) validateBlackHeight(nodeRef *ref.NodeRef) (int, error) {
	node, err := nodeRef.Get(t.store)
	if err != nil {
		return 0, err
	}
	if node == nil {
		return 1, nil
	}

	left, err := node.Left.Get(t.store)
	if err != nil {
		return 0, err
	}
	right, err := node.Right.Get(t.store)
	if err != nil {
		return 0, err
	}
	if isRed(node) && (isRed(left) || isRed(right)) {
		return 0, fmt.Errorf("two consecutive red links at key %q", node.Key)
	}

	leftHeight, err := t.validateBlackHeight(node.Left)
	if err != nil {
		return 0, err
	}
	rightHeight, err := t.validateBlackHeight(node.Right)
	if err != nil {
		return 0, err
	}
	if leftHeight != rightHeight {
		return 0, fmt.Errorf("unequal black height at key %q: left=%d right=%d", node.Key, leftHeight, rightHeight)
	}

	if node.Color == ref.Black {
		return leftHeight + 1, nil
	}
	return leftHeight, nil
}

// assertValidRedBlackTree validates I3 and I4 against the tree's current
// in-memory root.
func (t *Tree) assertValidRedBlackTree() error {
	if err := t.validateBST(t.root, nil, nil); err != nil {
		return err
	}
	_, err := t.validateBlackHeight(t.root)
	return err
}

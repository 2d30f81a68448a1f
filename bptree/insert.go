package bptree

import (
	"github.com/sutrodb/bptree-index/storage/buffer"
	"github.com/sutrodb/bptree-index/storage/disk"
	"github.com/sutrodb/bptree-index/storage/relation"
)

// splitResult carries the (promoted_key, new_right_page) signal a split
// bubbles up to its caller; hasSplit false means the child absorbed the
// entry without overflowing.
type splitResult[K Key[K]] struct {
	promoted K
	newRight disk.PageID
	hasSplit bool
}

// insert is the public contract's insert(key, rid): recursive top-down
// descent with bottom-up split propagation (§4.4).
func (t *tree[K]) insert(key K, rid relation.RID) error {
	if t.isRootLeaf {
		result, err := t.insertIntoLeaf(t.rootPageID, key, rid)
		if err != nil {
			return err
		}
		if result.hasSplit {
			return t.makeNewRoot(result, true)
		}
		return nil
	}

	result, err := t.insertRecursive(t.rootPageID, key, rid)
	if err != nil {
		return err
	}
	if result.hasSplit {
		return t.makeNewRoot(result, false)
	}
	return nil
}

func (t *tree[K]) insertRecursive(pageID disk.PageID, key K, rid relation.RID) (splitResult[K], error) {
	guard, err := t.bpm.FetchPageWrite(pageID)
	if err != nil {
		return splitResult[K]{}, err
	}

	node, err := decodeInternal[K](guard.Data())
	if err != nil {
		guard.Drop()
		return splitResult[K]{}, err
	}

	idx := route(node.Keys, key)
	child := node.Children[idx]

	var childResult splitResult[K]
	if node.Level == 1 {
		childResult, err = t.insertIntoLeaf(child, key, rid)
	} else {
		childResult, err = t.insertRecursive(child, key, rid)
	}
	if err != nil {
		guard.Drop()
		return splitResult[K]{}, err
	}

	if !childResult.hasSplit {
		guard.Drop()
		return splitResult[K]{}, nil
	}

	node.Keys, node.Children = insertKeyChild(node.Keys, node.Children, idx, childResult.promoted, childResult.newRight)
	node.Len++

	if node.Len <= InternalCapacity[K]() {
		return splitResult[K]{}, t.saveInternal(guard, node)
	}

	return t.splitInternal(pageID, guard, node)
}

func (t *tree[K]) insertIntoLeaf(pageID disk.PageID, key K, rid relation.RID) (splitResult[K], error) {
	guard, err := t.bpm.FetchPageWrite(pageID)
	if err != nil {
		return splitResult[K]{}, err
	}

	node, err := decodeLeaf[K](guard.Data())
	if err != nil {
		guard.Drop()
		return splitResult[K]{}, err
	}

	node.Keys, node.Rids, _ = insertKeyRID(node.Keys, node.Rids, key, rid)
	node.Len++

	if node.Len <= LeafCapacity[K]() {
		return splitResult[K]{}, t.saveLeaf(guard, node)
	}

	return t.splitLeaf(pageID, guard, node)
}

// splitLeaf implements the uniform split rule with copy-up: the middle
// entry stays in the right leaf and is also promoted (§4.4).
func (t *tree[K]) splitLeaf(pageID disk.PageID, guard *buffer.WritePageGuard, node *LeafNode[K]) (splitResult[K], error) {
	m := len(node.Keys) / 2

	rightKeys := append([]K{}, node.Keys[m:]...)
	rightRids := append([]relation.RID{}, node.Rids[m:]...)

	newPageID := t.bpm.NewPageID()
	newRight := &LeafNode[K]{
		Keys:     rightKeys,
		Rids:     rightRids,
		RightSib: node.RightSib,
		Len:      len(rightKeys),
	}

	node.Keys = node.Keys[:m]
	node.Rids = node.Rids[:m]
	node.Len = m
	node.RightSib = newPageID

	if err := t.saveLeaf(guard, node); err != nil {
		return splitResult[K]{}, err
	}
	if err := t.writeNewLeaf(newPageID, newRight); err != nil {
		return splitResult[K]{}, err
	}

	return splitResult[K]{promoted: rightKeys[0], newRight: newPageID, hasSplit: true}, nil
}

// splitInternal implements the uniform split rule with move-up: the
// middle key is promoted and removed from both halves; its child
// pointer stays as the new right node's leftmost child (§4.4).
func (t *tree[K]) splitInternal(pageID disk.PageID, guard *buffer.WritePageGuard, node *InternalNode[K]) (splitResult[K], error) {
	m := len(node.Keys) / 2
	promoted := node.Keys[m]

	rightKeys := append([]K{}, node.Keys[m+1:]...)
	rightChildren := append([]disk.PageID{}, node.Children[m+1:]...)

	newPageID := t.bpm.NewPageID()
	newRight := &InternalNode[K]{
		Level:    node.Level,
		Keys:     rightKeys,
		Children: rightChildren,
		Len:      len(rightKeys),
	}

	node.Keys = node.Keys[:m]
	node.Children = node.Children[:m+1]
	node.Len = m

	if err := t.saveInternal(guard, node); err != nil {
		return splitResult[K]{}, err
	}
	if err := t.writeNewInternal(newPageID, newRight); err != nil {
		return splitResult[K]{}, err
	}

	return splitResult[K]{promoted: promoted, newRight: newPageID, hasSplit: true}, nil
}

// makeNewRoot allocates the new internal root produced when the
// original root split, per the two Root split cases in §4.4.
func (t *tree[K]) makeNewRoot(result splitResult[K], oldRootWasLeaf bool) error {
	level := 0
	if oldRootWasLeaf {
		level = 1
	}

	newRootID := t.bpm.NewPageID()
	newRoot := &InternalNode[K]{
		Level:    level,
		Keys:     []K{result.promoted},
		Children: []disk.PageID{t.rootPageID, result.newRight},
		Len:      1,
	}

	if err := t.writeNewInternal(newRootID, newRoot); err != nil {
		return err
	}

	t.rootPageID = newRootID
	t.isRootLeaf = false
	return nil
}

func (t *tree[K]) saveLeaf(guard *buffer.WritePageGuard, node *LeafNode[K]) error {
	data, err := encodeLeaf(node)
	if err != nil {
		guard.Drop()
		return err
	}
	guard.SetData(data)
	guard.Drop()
	return nil
}

func (t *tree[K]) saveInternal(guard *buffer.WritePageGuard, node *InternalNode[K]) error {
	data, err := encodeInternal(node)
	if err != nil {
		guard.Drop()
		return err
	}
	guard.SetData(data)
	guard.Drop()
	return nil
}

func (t *tree[K]) writeNewLeaf(pageID disk.PageID, node *LeafNode[K]) error {
	guard, err := t.bpm.FetchPageWrite(pageID)
	if err != nil {
		return err
	}
	return t.saveLeaf(guard, node)
}

func (t *tree[K]) writeNewInternal(pageID disk.PageID, node *InternalNode[K]) error {
	guard, err := t.bpm.FetchPageWrite(pageID)
	if err != nil {
		return err
	}
	return t.saveInternal(guard, node)
}

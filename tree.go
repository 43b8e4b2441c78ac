package rtree

import "golang.org/x/exp/constraints"

func (t *tree[P, V]) Insert(s Shape[P], v V) {
	t.mustUnlocked()
	e := &Entry[P, V]{shape: s, mbr: s.MBR(), value: v}
	t.root = t.index.insertIntoRoot(t.root, e)
	t.size++
}

// Remove drops every entry matching q and reports how many.
func (t *tree[P, V]) Remove(q Query[P]) int {
	t.mustUnlocked()
	return t.removeWhere(q.AcceptMBR, func(e *Entry[P, V]) bool {
		return q.AcceptShape(e.shape)
	})
}

// RemoveFunc drops entries matching q whose value f approves.
func (t *tree[P, V]) RemoveFunc(q Query[P], f func(V) bool) int {
	t.mustUnlocked()
	return t.removeWhere(q.AcceptMBR, func(e *Entry[P, V]) bool {
		return q.AcceptShape(e.shape) && f(e.value)
	})
}

// Retain keeps only the entries matching q, the inverse of Remove.
func (t *tree[P, V]) Retain(q Query[P]) int {
	t.mustUnlocked()
	// keeping q means sweeping whatever q rejects, so no pruning
	return t.removeWhere(acceptAll[P], func(e *Entry[P, V]) bool {
		return !q.AcceptShape(e.shape)
	})
}

func (t *tree[P, V]) Query(q Query[P]) Iterator[P, V] {
	t.mustUnlocked()
	return newIterator(t.root, q)
}

// QueryMut locks the tree and hands out the only handle allowed to
// change it until the iterator is closed.
func (t *tree[P, V]) QueryMut(q Query[P]) MutIterator[P, V] {
	t.mustUnlocked()
	t.locked = true
	it := &mutIterator[P, V]{tree: t, query: q}
	it.stack = pushAccepted(nil, t.root, q)
	it.advance()
	return it
}

func (t *tree[P, V]) Iterator() Iterator[P, V] {
	return t.Query(All[P]())
}

func (t *tree[P, V]) Len() int {
	return t.size
}

func (t *tree[P, V]) IsEmpty() bool {
	return t.size == 0
}

func (t *tree[P, V]) Clear() {
	t.mustUnlocked()
	t.root = newLeaf[P, V]()
	t.size = 0
}

func (t *tree[P, V]) mustUnlocked() {
	if t.locked {
		panic("rtree: tree is locked by a mutable query")
	}
}

func acceptAll[P constraints.Float](Rect[P]) bool {
	return true
}

// removeWhere sweeps out entries under branches passing prune that
// match, then repairs the tree. Underfull nodes dissolve and their
// entries go back in through the usual insertion path.
func (t *tree[P, V]) removeWhere(prune func(Rect[P]) bool, match func(*Entry[P, V]) bool) int {
	if t.root.isEmpty() {
		return 0
	}
	var reinsert []*Entry[P, V]
	removed := 0
	t.removeFrom(t.root, prune, match, &removed, &reinsert, true)
	if !t.root.leaf {
		if t.root.isEmpty() {
			// insertion expects an empty root to be a leaf
			t.root = newLeaf[P, V]()
		} else {
			for !t.root.leaf && len(t.root.children) == 1 {
				t.root = t.root.children[0]
			}
		}
	}
	for _, e := range reinsert {
		t.root = t.index.insertIntoRoot(t.root, e)
	}
	t.size -= removed
	return removed
}

// removeFrom sweeps the subtree of n and reports whether n should
// stay in its parent. A node dropping under min moves its surviving
// entries onto the reinsert list instead of staying.
func (t *tree[P, V]) removeFrom(n *node[P, V], prune func(Rect[P]) bool, match func(*Entry[P, V]) bool, removed *int, reinsert *[]*Entry[P, V], atRoot bool) bool {
	if !prune(n.mbr) {
		return true
	}
	if n.leaf {
		before := len(n.entries)
		kept := n.entries[:0]
		for _, e := range n.entries {
			if match(e) {
				*removed++
			} else {
				kept = append(kept, e)
			}
		}
		n.entries = kept
		if len(n.entries) < t.min && !atRoot {
			*reinsert = append(*reinsert, n.entries...)
			n.entries = nil
			return false
		}
		if len(n.entries) != before {
			n.recomputeMBR()
		}
		return true
	}
	wasRemoved, wasQueued := *removed, len(*reinsert)
	kept := n.children[:0]
	for _, c := range n.children {
		if t.removeFrom(c, prune, match, removed, reinsert, false) {
			kept = append(kept, c)
		}
	}
	n.children = kept
	if len(n.children) < t.min && !atRoot {
		collectEntries(n, reinsert)
		return false
	}
	// anything pulled out below leaves this mbr stale
	if *removed != wasRemoved || len(*reinsert) != wasQueued {
		n.recomputeMBR()
	}
	return true
}

type iterator[P constraints.Float, V any] struct {
	query Query[P]
	stack []*iterLevel[P, V]
	next  *Entry[P, V]
}

func newIterator[P constraints.Float, V any](root *node[P, V], q Query[P]) *iterator[P, V] {
	it := &iterator[P, V]{query: q}
	it.stack = pushAccepted(nil, root, q)
	it.advance()
	return it
}

func (it *iterator[P, V]) HasNext() bool {
	return it.next != nil
}

func (it *iterator[P, V]) Next() (Shape[P], V, error) {
	if it.next == nil {
		var zero V
		return nil, zero, ErrNoMoreEntries
	}
	e := it.next
	it.advance()
	return e.shape, e.value, nil
}

func (it *iterator[P, V]) advance() {
	it.next = nextEntry(&it.stack, it.query)
}

// pushAccepted seeds a traversal stack with n unless the query prunes
// it or it has nothing to offer.
func pushAccepted[P constraints.Float, V any](stack []*iterLevel[P, V], n *node[P, V], q Query[P]) []*iterLevel[P, V] {
	if n.isEmpty() || !q.AcceptMBR(n.mbr) {
		return stack
	}
	return append(stack, &iterLevel[P, V]{node: n})
}

// nextEntry resumes the depth first walk and returns the next entry
// passing the exact shape check, nil when the walk is done.
func nextEntry[P constraints.Float, V any](stack *[]*iterLevel[P, V], q Query[P]) *Entry[P, V] {
	for len(*stack) > 0 {
		top := (*stack)[len(*stack)-1]
		if top.node.leaf {
			for top.idx < len(top.node.entries) {
				e := top.node.entries[top.idx]
				top.idx++
				if q.AcceptShape(e.shape) {
					return e
				}
			}
			*stack = (*stack)[:len(*stack)-1]
			continue
		}
		if top.idx < len(top.node.children) {
			child := top.node.children[top.idx]
			top.idx++
			if q.AcceptMBR(child.mbr) {
				*stack = append(*stack, &iterLevel[P, V]{node: child})
			}
			continue
		}
		*stack = (*stack)[:len(*stack)-1]
	}
	return nil
}

type mutIterator[P constraints.Float, V any] struct {
	tree   *tree[P, V]
	query  Query[P]
	stack  []*iterLevel[P, V]
	cur    *Entry[P, V]
	next   *Entry[P, V]
	marked []*Entry[P, V]
	done   bool
}

func (it *mutIterator[P, V]) HasNext() bool {
	return it.next != nil
}

func (it *mutIterator[P, V]) Next() (*Entry[P, V], error) {
	if it.next == nil {
		it.cur = nil
		// exhaustion commits and releases the tree
		it.Close()
		return nil, ErrNoMoreEntries
	}
	it.cur = it.next
	it.advance()
	return it.cur, nil
}

func (it *mutIterator[P, V]) advance() {
	it.next = nextEntry(&it.stack, it.query)
}

// Remove marks the entry last returned by Next. The removal itself
// waits until Close so the walk never sees a shifting tree.
func (it *mutIterator[P, V]) Remove() {
	if it.cur == nil {
		return
	}
	it.marked = append(it.marked, it.cur)
	it.cur = nil
}

// Close releases the tree and applies pending removals. Closing twice
// is a no-op.
func (it *mutIterator[P, V]) Close() {
	if it.done {
		return
	}
	it.done = true
	it.stack, it.cur, it.next = nil, nil, nil
	it.tree.locked = false
	if len(it.marked) == 0 {
		return
	}
	marked := make(map[*Entry[P, V]]struct{}, len(it.marked))
	for _, e := range it.marked {
		marked[e] = struct{}{}
	}
	it.marked = nil
	it.tree.removeWhere(acceptAll[P], func(e *Entry[P, V]) bool {
		_, ok := marked[e]
		return ok
	})
}

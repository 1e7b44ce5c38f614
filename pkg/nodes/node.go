package nodes

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mattsolo1/grove-board/pkg/models"
)

// ID identifies a node within its Store.
type ID string

// RefID implements Ref.
func (id ID) RefID() ID { return id }

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// Ref is anything that names a node: an ID or the *Node itself.
type Ref interface {
	RefID() ID
}

// Node is a single record of the board tree. All mutation goes through its
// methods; Data and Children hand out snapshots.
type Node struct {
	id    ID
	typ   models.NodeType
	cfg   models.TypeConfig
	store *Store

	mu       sync.RWMutex
	data     Data
	children []*Node
	subs     []Subscriber
	removing bool
	deleted  bool
}

// RefID implements Ref.
func (n *Node) RefID() ID { return n.id }

// ID returns the node identifier.
func (n *Node) ID() ID { return n.id }

// Type returns the node type tag.
func (n *Node) Type() models.NodeType { return n.typ }

// Data returns the current payload snapshot.
func (n *Node) Data() Data {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.data
}

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.children)
}

// ChildAt returns the child at index i, or nil when out of bounds.
func (n *Node) ChildAt(i int) *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// HasChild reports whether id is in the child list.
func (n *Node) HasChild(id ID) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.ContainsFunc(n.children, func(c *Node) bool { return c.id == id })
}

// IsDeleted reports whether the node has been removed from its store.
func (n *Node) IsDeleted() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.deleted
}

// SetData shallow-merges partial into the payload, keeping only declared fields,
// and notifies ChangeData subscribers with the keys that changed.
func (n *Node) SetData(partial map[string]string) ([]string, error) {
	n.mu.Lock()
	if n.deleted {
		n.mu.Unlock()
		return nil, fmt.Errorf("set data on %s: %w", n.id, ErrNotFound)
	}
	next, changed := n.data.merge(n.cfg, partial)
	n.data = next
	n.mu.Unlock()

	n.notify(Event{Kind: ChangeData, Node: n, Keys: changed})
	return changed, nil
}

// AddChild appends the referenced node to the child list.
func (n *Node) AddChild(ref Ref) error {
	return n.InsertChildAt(n.ChildCount(), ref)
}

// InsertChildAt inserts the referenced node at index i (0 <= i <= ChildCount).
func (n *Node) InsertChildAt(i int, ref Ref) error {
	child, err := n.store.Resolve(ref)
	if err != nil {
		return fmt.Errorf("add child to %s: %w", n.id, err)
	}
	if child == n || child.isAncestorOf(n) {
		return fmt.Errorf("add %s to %s: %w", child.id, n.id, ErrCycle)
	}

	n.mu.Lock()
	if n.deleted {
		n.mu.Unlock()
		return fmt.Errorf("add child to %s: %w", n.id, ErrNotFound)
	}
	if i < 0 || i > len(n.children) {
		n.mu.Unlock()
		return fmt.Errorf("insert at %d of %d: %w", i, len(n.children), ErrOutOfRange)
	}
	n.children = slices.Insert(n.children, i, child)
	n.mu.Unlock()

	n.notify(Event{Kind: ChangeChildren, Node: n})
	return nil
}

// RemoveChildAt detaches and returns the child at index i. The child stays in
// the store.
func (n *Node) RemoveChildAt(i int) (*Node, error) {
	n.mu.Lock()
	if i < 0 || i >= len(n.children) {
		size := len(n.children)
		n.mu.Unlock()
		return nil, fmt.Errorf("remove at %d of %d: %w", i, size, ErrOutOfRange)
	}
	child := n.children[i]
	n.children = slices.Delete(n.children, i, i+1)
	n.mu.Unlock()

	n.notify(Event{Kind: ChangeChildren, Node: n})
	return child, nil
}

// RemoveFromParents detaches the node from every parent listing it and returns
// those parents.
func (n *Node) RemoveFromParents() []*Node {
	return n.store.RemoveFromParents(n)
}

// Subscribe registers s for this node's changes. Subscribing twice is a no-op.
func (n *Node) Subscribe(s Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if slices.Contains(n.subs, s) {
		return
	}
	n.subs = append(n.subs, s)
}

// Unsubscribe removes s. Unknown subscribers are ignored.
func (n *Node) Unsubscribe(s Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = slices.DeleteFunc(n.subs, func(x Subscriber) bool { return x == s })
}

// detach removes every occurrence of id from the child list. It reports whether
// anything was removed and notifies only in that case.
func (n *Node) detach(id ID) bool {
	n.mu.Lock()
	before := len(n.children)
	n.children = slices.DeleteFunc(n.children, func(c *Node) bool { return c.id == id })
	removed := len(n.children) != before
	n.mu.Unlock()

	if removed {
		n.notify(Event{Kind: ChangeChildren, Node: n})
	}
	return removed
}

// isAncestorOf walks the subtree below n looking for target.
func (n *Node) isAncestorOf(target *Node) bool {
	seen := map[ID]struct{}{}
	stack := n.Children()
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c == target {
			return true
		}
		if _, ok := seen[c.id]; ok {
			continue
		}
		seen[c.id] = struct{}{}
		stack = append(stack, c.Children()...)
	}
	return false
}

// notify calls a snapshot of the subscribers outside the lock, so callbacks may
// mutate the node (or subscribe/unsubscribe) without deadlocking.
func (n *Node) notify(ev Event) {
	n.mu.RLock()
	subs := slices.Clone(n.subs)
	n.mu.RUnlock()
	for _, s := range subs {
		s.OnNodeChange(ev)
	}
}

// Package nodes holds the in-memory board tree: node records, their immutable
// payload snapshots, and synchronous change notification.
//
// A Store owns every Node by identifier. Nodes reference their children
// directly but do not track parents; ParentsOf scans the table instead.
// Notification is synchronous: subscribers run on the caller's goroutine,
// after the mutation is visible, against a snapshot of the subscriber list.
package nodes

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-board/pkg/ident"
	"github.com/mattsolo1/grove-board/pkg/models"
)

// Store owns all nodes of a board.
type Store struct {
	mu        sync.RWMutex
	types     map[models.NodeType]models.TypeConfig
	gen       *ident.Generator
	nodes     map[ID]*Node
	order     []ID
	retired   map[ID]struct{}
	observers []Observer
	log       logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithTypes replaces the type registry. Defaults to models.DefaultNodeTypes.
func WithTypes(types map[models.NodeType]models.TypeConfig) Option {
	return func(s *Store) { s.types = types }
}

// WithGenerator sets the identifier generator.
func WithGenerator(g *ident.Generator) Option {
	return func(s *Store) { s.gen = g }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		types:   models.DefaultNodeTypes,
		nodes:   make(map[ID]*Node),
		retired: make(map[ID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gen == nil {
		s.gen = ident.New()
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithField("component", "nodes")
	return s
}

// AddObserver registers o for node creation and deletion.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.observers, o) {
		s.observers = append(s.observers, o)
	}
}

// RemoveObserver unregisters o.
func (s *Store) RemoveObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = slices.DeleteFunc(s.observers, func(x Observer) bool { return x == o })
}

// Types returns the registered node types.
func (s *Store) Types() []models.NodeType {
	return slices.Sorted(maps.Keys(s.types))
}

// TypeConfig returns the configuration of a registered type.
func (s *Store) TypeConfig(t models.NodeType) (models.TypeConfig, bool) {
	cfg, ok := s.types[t]
	return cfg, ok
}

// CreateNode allocates a node of type t. Fields t does not declare are dropped.
func (s *Store) CreateNode(t models.NodeType, data map[string]string) (*Node, error) {
	cfg, ok := s.types[t]
	if !ok {
		return nil, fmt.Errorf("create node: %w: %q", ErrInvalidType, t)
	}

	s.mu.Lock()
	id := ID(s.gen.NextUnique(func(c string) bool { return s.usedLocked(ID(c)) }))
	n := s.insertLocked(id, t, cfg, data)
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"node_id": id, "type": t}).Debug("created node")
	for _, o := range observers {
		o.OnCreate(n)
	}
	return n, nil
}

// Restore recreates a persisted node under its original identifier.
func (s *Store) Restore(id ID, t models.NodeType, data map[string]string) (*Node, error) {
	cfg, ok := s.types[t]
	if !ok {
		return nil, fmt.Errorf("restore %s: %w: %q", id, ErrInvalidType, t)
	}
	if !ident.IsValid(string(id)) {
		return nil, fmt.Errorf("restore %q: %w", id, ErrInvalidID)
	}

	s.mu.Lock()
	if s.usedLocked(id) {
		s.mu.Unlock()
		return nil, fmt.Errorf("restore %s: %w", id, ErrDuplicateID)
	}
	n := s.insertLocked(id, t, cfg, data)
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.OnCreate(n)
	}
	return n, nil
}

func (s *Store) usedLocked(id ID) bool {
	if _, ok := s.nodes[id]; ok {
		return true
	}
	_, ok := s.retired[id]
	return ok
}

func (s *Store) insertLocked(id ID, t models.NodeType, cfg models.TypeConfig, data map[string]string) *Node {
	n := &Node{
		id:    id,
		typ:   t,
		cfg:   cfg,
		store: s,
		data:  newData(cfg, data),
	}
	s.nodes[id] = n
	s.order = append(s.order, id)
	return n
}

// GetNodeByID returns the node for id, or nil.
func (s *Store) GetNodeByID(id ID) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[id]
}

// Resolve turns an ID or *Node into a live node of this store.
func (s *Store) Resolve(ref Ref) (*Node, error) {
	if ref == nil {
		return nil, fmt.Errorf("resolve <nil>: %w", ErrNotFound)
	}
	if n, ok := ref.(*Node); ok && n == nil {
		return nil, fmt.Errorf("resolve <nil>: %w", ErrNotFound)
	}
	id := ref.RefID()
	s.mu.RLock()
	n, ok := s.nodes[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", id, ErrNotFound)
	}
	if given, isNode := ref.(*Node); isNode && given != n {
		return nil, fmt.Errorf("resolve %s: foreign node: %w", id, ErrNotFound)
	}
	return n, nil
}

// IsNode reports whether v is a non-nil *Node.
func IsNode(v any) bool {
	n, ok := v.(*Node)
	return ok && n != nil
}

// IsNodeID reports whether v is a string or ID shaped like a node identifier.
func IsNodeID(v any) bool {
	switch id := v.(type) {
	case ID:
		return ident.IsValid(string(id))
	case string:
		return ident.IsValid(id)
	default:
		return false
	}
}

// Len returns the number of live nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// All iterates over live nodes in creation order.
func (s *Store) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		s.mu.RLock()
		list := make([]*Node, 0, len(s.order))
		for _, id := range s.order {
			list = append(list, s.nodes[id])
		}
		s.mu.RUnlock()
		for _, n := range list {
			if !yield(n) {
				return
			}
		}
	}
}

// ParentsOf returns every live node listing ref as a child.
func (s *Store) ParentsOf(ref Ref) []*Node {
	if ref == nil {
		return nil
	}
	id := ref.RefID()
	var parents []*Node
	for n := range s.All() {
		if n.HasChild(id) {
			parents = append(parents, n)
		}
	}
	return parents
}

// RemoveFromParents detaches ref from every parent and returns those parents.
// Each parent fires one ChangeChildren notification.
func (s *Store) RemoveFromParents(ref Ref) []*Node {
	if ref == nil {
		return nil
	}
	id := ref.RefID()
	var detached []*Node
	for _, p := range s.ParentsOf(ref) {
		if p.detach(id) {
			detached = append(detached, p)
		}
	}
	return detached
}

// Delete removes a node from the store. It detaches the node from its parents,
// notifies ChangeRemoved subscribers while the node is still resolvable, then
// drops it and retires its identifier. Deleting a node twice is a no-op.
func (s *Store) Delete(ref Ref) error {
	if ref == nil {
		return fmt.Errorf("delete <nil>: %w", ErrNotFound)
	}
	id := ref.RefID()

	s.mu.RLock()
	n, live := s.nodes[id]
	_, retired := s.retired[id]
	s.mu.RUnlock()
	if !live {
		if retired {
			return nil
		}
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}

	n.mu.Lock()
	if n.removing {
		n.mu.Unlock()
		return nil
	}
	n.removing = true
	n.mu.Unlock()

	s.RemoveFromParents(n)
	n.notify(Event{Kind: ChangeRemoved, Node: n})

	s.mu.Lock()
	delete(s.nodes, id)
	s.order = slices.DeleteFunc(s.order, func(x ID) bool { return x == id })
	s.retired[id] = struct{}{}
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	n.mu.Lock()
	n.deleted = true
	n.children = nil
	n.subs = nil
	n.mu.Unlock()

	s.log.WithField("node_id", id).Debug("deleted node")
	for _, o := range observers {
		o.OnDelete(n)
	}
	return nil
}

// Reset drops every node, retired id and observer.
//
// DANGEROUS: intended for tests only. Outstanding *Node values become deleted
// and observers are not notified.
func (s *Store) Reset() {
	s.mu.Lock()
	old := s.nodes
	s.nodes = make(map[ID]*Node)
	s.order = nil
	s.retired = make(map[ID]struct{})
	s.observers = nil
	s.mu.Unlock()

	for _, n := range old {
		n.mu.Lock()
		n.deleted = true
		n.children = nil
		n.subs = nil
		n.mu.Unlock()
	}
}

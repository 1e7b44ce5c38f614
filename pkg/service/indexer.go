package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/nodes"
	"github.com/mattsolo1/grove-board/pkg/search"
)

// NodeSearchIndex keeps a search.Index in step with a node store.
//
// A node's document is its indexed fields. Containers also carry the indexed
// fields of their direct children, so a change to a child reindexes the child
// and then every parent.
type NodeSearchIndex struct {
	store *nodes.Store
	index search.Index
	types map[models.NodeType]models.TypeConfig
	log   logrus.FieldLogger
}

// NewNodeSearchIndex indexes every node already in store and follows the store
// from then on.
func NewNodeSearchIndex(store *nodes.Store, index search.Index, log logrus.FieldLogger) *NodeSearchIndex {
	if log == nil {
		log = logrus.StandardLogger()
	}
	x := &NodeSearchIndex{
		store: store,
		index: index,
		types: models.DefaultNodeTypes,
		log:   log.WithField("component", "indexer"),
	}
	for n := range store.All() {
		n.Subscribe(x)
		x.reindex(n)
	}
	store.AddObserver(x)
	return x
}

// Detach stops following the store.
func (x *NodeSearchIndex) Detach() {
	x.store.RemoveObserver(x)
	for n := range x.store.All() {
		n.Unsubscribe(x)
	}
}

// Fields returns the ordered text fields indexed for n.
func (x *NodeSearchIndex) Fields(n *nodes.Node) ([]string, error) {
	cfg, ok := x.types[n.Type()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, n.Type())
	}
	fields := ownFields(cfg, n.Data())
	if cfg.Container {
		for _, c := range n.Children() {
			if ccfg, ok := x.types[c.Type()]; ok {
				fields = append(fields, ownFields(ccfg, c.Data())...)
			}
		}
	}
	return fields, nil
}

func ownFields(cfg models.TypeConfig, data nodes.Data) []string {
	out := make([]string, 0, len(cfg.Indexed))
	for _, key := range cfg.Indexed {
		out = append(out, data.Get(key))
	}
	return out
}

// OnCreate implements nodes.Observer.
func (x *NodeSearchIndex) OnCreate(n *nodes.Node) {
	n.Subscribe(x)
	x.reindex(n)
}

// OnDelete implements nodes.Observer.
func (x *NodeSearchIndex) OnDelete(n *nodes.Node) {
	if err := x.index.DeleteReference(string(n.ID())); err != nil {
		x.log.WithError(err).WithField("node_id", n.ID()).Warn("failed to remove node from index")
	}
}

// OnNodeChange implements nodes.Subscriber.
func (x *NodeSearchIndex) OnNodeChange(ev nodes.Event) {
	switch ev.Kind {
	case nodes.ChangeData:
		x.reindex(ev.Node)
		for _, p := range x.store.ParentsOf(ev.Node) {
			x.reindex(p)
		}
	case nodes.ChangeChildren:
		x.reindex(ev.Node)
	}
}

// Reindex rebuilds the entry of every node in the store.
func (x *NodeSearchIndex) Reindex() {
	for n := range x.store.All() {
		x.reindex(n)
	}
}

func (x *NodeSearchIndex) reindex(n *nodes.Node) {
	log := x.log.WithField("node_id", n.ID())
	fields, err := x.Fields(n)
	if err != nil {
		log.WithError(err).Warn("failed to index node")
		return
	}
	if err := x.index.SetReference(string(n.ID()), fields...); err != nil {
		log.WithError(err).Warn("failed to index node")
	}
}

// Search returns the live nodes matching text, best match first.
func (x *NodeSearchIndex) Search(text string) ([]*nodes.Node, error) {
	q, err := x.index.Search(text)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}
	found := search.MapResults(q, func(id string) *nodes.Node {
		return x.store.GetNodeByID(nodes.ID(id))
	})
	out := found[:0]
	for _, n := range found {
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

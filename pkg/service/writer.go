package service

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/nodes"
	"github.com/mattsolo1/grove-board/pkg/registry"
)

const (
	nodeKeyPrefix = "node/"
	rootKey       = "board/root"
)

func nodeKey(id nodes.ID) string { return nodeKeyPrefix + string(id) }

// record is the persisted form of a node.
type record struct {
	Type     models.NodeType   `json:"type"`
	Data     map[string]string `json:"data"`
	Children []nodes.ID        `json:"children,omitempty"`
}

// The registry reserves its separators; JSON lets us spell them as escapes.
var recordEscaper = strings.NewReplacer("␟", `\u241f`, "␞", `\u241e`)

func encodeRecord(n *nodes.Node) (string, error) {
	children := n.Children()
	rec := record{Type: n.Type(), Data: n.Data().Map()}
	for _, c := range children {
		rec.Children = append(rec.Children, c.ID())
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return recordEscaper.Replace(string(b)), nil
}

// Writer mirrors every node of a store into a registry under "node/<id>".
// The registry debounces, so a burst of mutations costs one backend write.
type Writer struct {
	store *nodes.Store
	reg   *registry.Registry
	log   logrus.FieldLogger
}

// NewWriter follows store. Nodes already present are subscribed to but not
// rewritten.
func NewWriter(store *nodes.Store, reg *registry.Registry, log logrus.FieldLogger) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &Writer{store: store, reg: reg, log: log.WithField("component", "writer")}
	for n := range store.All() {
		n.Subscribe(w)
	}
	store.AddObserver(w)
	return w
}

// Detach stops following the store.
func (w *Writer) Detach() {
	w.store.RemoveObserver(w)
	for n := range w.store.All() {
		n.Unsubscribe(w)
	}
}

// OnCreate implements nodes.Observer.
func (w *Writer) OnCreate(n *nodes.Node) {
	n.Subscribe(w)
	w.save(n)
}

// OnDelete implements nodes.Observer.
func (w *Writer) OnDelete(n *nodes.Node) {
	w.reg.ResetKey(nodeKey(n.ID()))
}

// OnNodeChange implements nodes.Subscriber.
func (w *Writer) OnNodeChange(ev nodes.Event) {
	switch ev.Kind {
	case nodes.ChangeData, nodes.ChangeChildren:
		w.save(ev.Node)
	}
}

// SaveAll rewrites every node.
func (w *Writer) SaveAll() {
	for n := range w.store.All() {
		w.save(n)
	}
}

func (w *Writer) save(n *nodes.Node) {
	log := w.log.WithField("node_id", n.ID())
	value, err := encodeRecord(n)
	if err != nil {
		log.WithError(err).Error("failed to encode node")
		return
	}
	if err := w.reg.SetKeyString(nodeKey(n.ID()), value); err != nil {
		log.WithError(err).Error("failed to persist node")
	}
}

// SetRoot records the id of the board's root folder.
func (w *Writer) SetRoot(n *nodes.Node) error {
	return w.reg.SetKeyString(rootKey, string(n.ID()))
}

// Load restores the nodes persisted in reg into store. Nodes are restored
// first and linked afterwards, so children may precede their parents.
// Unreadable records and dangling child ids are skipped with a warning.
// It returns the persisted root folder, or nil if there is none.
func Load(store *nodes.Store, reg *registry.Registry, log logrus.FieldLogger) *nodes.Node {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "loader")

	records := make(map[nodes.ID]record)
	var order []nodes.ID
	for _, key := range reg.Keys() {
		id, ok := strings.CutPrefix(key, nodeKeyPrefix)
		if !ok {
			continue
		}
		value, _ := reg.GetKey(key)
		var rec record
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			log.WithError(err).WithField("key", key).Warn("skipping unreadable node record")
			continue
		}
		if _, err := store.Restore(nodes.ID(id), rec.Type, rec.Data); err != nil {
			log.WithError(err).WithField("key", key).Warn("skipping node record")
			continue
		}
		records[nodes.ID(id)] = rec
		order = append(order, nodes.ID(id))
	}

	for _, id := range order {
		parent := store.GetNodeByID(id)
		for _, childID := range records[id].Children {
			if err := parent.AddChild(childID); err != nil {
				log.WithError(err).WithFields(logrus.Fields{"node_id": id, "child_id": childID}).
					Warn("skipping child link")
			}
		}
	}

	rootID, ok := reg.GetKey(rootKey)
	if !ok {
		if len(order) > 0 {
			log.Warn("board has nodes but no root folder")
		}
		return nil
	}
	root := store.GetNodeByID(nodes.ID(rootID))
	if root == nil || root.Type() != models.NodeTypeFolder {
		log.WithField("node_id", rootID).Warn("persisted root is not a folder, starting a new one")
		return nil
	}
	return root
}

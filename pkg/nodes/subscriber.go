package nodes

// ChangeKind names the category of a node mutation.
type ChangeKind string

const (
	// ChangeData fires after SetData replaced the payload.
	ChangeData ChangeKind = "data"
	// ChangeChildren fires after the ordered child list changed.
	ChangeChildren ChangeKind = "children"
	// ChangeRemoved fires right before a node is dropped from its store.
	ChangeRemoved ChangeKind = "removed"
)

// Event describes one mutation of Node.
type Event struct {
	Kind ChangeKind
	Node *Node
	// Keys lists the changed fields for ChangeData, in declaration order.
	Keys []string
}

// Subscriber observes the mutations of the nodes it is subscribed to.
//
// Subscribers are compared with == to keep subscriptions idempotent, so the
// dynamic type must be comparable. Pointer types such as *Listener are.
type Subscriber interface {
	OnNodeChange(Event)
}

// Listener adapts a function to the Subscriber interface. Each Listener is a
// distinct handle: subscribing the same *Listener twice is a no-op.
type Listener struct {
	fn func(Event)
}

// NewListener wraps fn in a subscription handle.
func NewListener(fn func(Event)) *Listener {
	return &Listener{fn: fn}
}

// OnNodeChange implements Subscriber.
func (l *Listener) OnNodeChange(ev Event) {
	l.fn(ev)
}

// Observer is notified when nodes enter or leave a Store.
type Observer interface {
	OnCreate(n *Node)
	OnDelete(n *Node)
}

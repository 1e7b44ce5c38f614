package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/nodes"
	"github.com/mattsolo1/grove-board/pkg/registry"
	"github.com/mattsolo1/grove-board/pkg/search"
)

// Storage backends accepted in StorageConfig.Backend.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageBadger = "badger"
	StorageMemory = "memory"
)

// DefaultRootTitle is the title of a freshly created board's root folder.
const DefaultRootTitle = "Board"

// Config holds service configuration
type Config struct {
	DataDir string        `mapstructure:"data_dir" validate:"required"`
	Storage StorageConfig `mapstructure:"storage"`
	Search  SearchConfig  `mapstructure:"search"`
}

// StorageConfig configures the persistent registry.
type StorageConfig struct {
	Backend    string        `mapstructure:"backend" validate:"oneof=file sqlite badger memory"`
	Key        string        `mapstructure:"key" validate:"required"`
	QuotaBytes int64         `mapstructure:"quota_bytes" validate:"min=0"`
	FlushDelay time.Duration `mapstructure:"flush_delay" validate:"min=0"`
}

// SearchConfig configures the search index.
type SearchConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=memory sqlite"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig(dataDir string) *Config {
	return &Config{
		DataDir: dataDir,
		Storage: StorageConfig{
			Backend:    StorageFile,
			Key:        registry.DefaultStorageKey,
			QuotaBytes: 5 << 20,
			FlushDelay: registry.DefaultFlushDelay,
		},
		Search: SearchConfig{Backend: search.BackendMemory},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Service is the board: a node store kept searchable and persisted.
type Service struct {
	Config *Config

	log      logrus.FieldLogger
	store    *nodes.Store
	index    search.Index
	indexer  *NodeSearchIndex
	backend  registry.Backend
	ownsBack bool
	reg      *registry.Registry
	writer   *Writer
	root     *nodes.Node
}

type options struct {
	log     logrus.FieldLogger
	backend registry.Backend
	index   search.Index
	hooks   registry.Hooks
	store   []nodes.Option
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the logger shared by every component.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithBackend uses b instead of the configured storage backend. The caller
// keeps ownership of b.
func WithBackend(b registry.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithIndex uses idx instead of the configured search backend.
func WithIndex(idx search.Index) Option {
	return func(o *options) { o.index = idx }
}

// WithHooks sets the registry flush hooks.
func WithHooks(h registry.Hooks) Option {
	return func(o *options) { o.hooks = h }
}

// WithStoreOptions passes options to the node store.
func WithStoreOptions(opts ...nodes.Option) Option {
	return func(o *options) { o.store = append(o.store, opts...) }
}

// New creates a new board service, restoring whatever the backend holds.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(o)
	}

	s := &Service{Config: cfg, log: o.log}

	s.backend = o.backend
	if s.backend == nil {
		b, err := openBackend(cfg, o.log)
		if err != nil {
			return nil, err
		}
		s.backend = b
		s.ownsBack = true
	}
	if cfg.Storage.QuotaBytes > 0 {
		s.backend = registry.WithQuota(s.backend, cfg.Storage.QuotaBytes)
	}

	s.index = o.index
	if s.index == nil {
		idx, err := search.Open(search.Config{
			Backend: cfg.Search.Backend,
			Path:    filepath.Join(cfg.DataDir, "index.db"),
			Logger:  o.log,
		})
		if err != nil {
			s.closeBackend()
			return nil, fmt.Errorf("create index: %w", err)
		}
		s.index = idx
	}

	reg, err := registry.Open(ctx, s.backend,
		registry.WithStorageKey(cfg.Storage.Key),
		registry.WithFlushDelay(cfg.Storage.FlushDelay),
		registry.WithHooks(o.hooks),
		registry.WithLogger(o.log),
	)
	if err != nil {
		_ = s.index.Close()
		s.closeBackend()
		return nil, fmt.Errorf("open registry: %w", err)
	}
	s.reg = reg

	s.store = nodes.New(append([]nodes.Option{nodes.WithLogger(o.log)}, o.store...)...)
	root := Load(s.store, reg, o.log)
	s.indexer = NewNodeSearchIndex(s.store, s.index, o.log)
	s.writer = NewWriter(s.store, reg, o.log)

	if root == nil {
		root, err = s.store.CreateNode(models.NodeTypeFolder, map[string]string{models.FieldTitle: DefaultRootTitle})
		if err != nil {
			return nil, fmt.Errorf("create root: %w", err)
		}
		if err := s.writer.SetRoot(root); err != nil {
			return nil, fmt.Errorf("record root: %w", err)
		}
	}
	s.root = root
	return s, nil
}

func openBackend(cfg *Config, log logrus.FieldLogger) (registry.Backend, error) {
	switch cfg.Storage.Backend {
	case StorageFile:
		return registry.NewFileBackend(filepath.Join(cfg.DataDir, "registry"))
	case StorageSQLite:
		return registry.NewSQLiteBackend(filepath.Join(cfg.DataDir, "board.db"))
	case StorageBadger:
		return registry.NewBadgerBackend(registry.BadgerConfig{
			Path:   filepath.Join(cfg.DataDir, "badger"),
			Logger: log.WithField("component", "badger"),
		})
	case StorageMemory:
		return registry.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, cfg.Storage.Backend)
	}
}

func (s *Service) closeBackend() {
	if s.ownsBack {
		_ = s.backend.Close()
	}
}

// Store returns the underlying node store.
func (s *Service) Store() *nodes.Store { return s.store }

// Registry returns the persistent registry.
func (s *Service) Registry() *registry.Registry { return s.reg }

// Indexer returns the search adapter.
func (s *Service) Indexer() *NodeSearchIndex { return s.indexer }

// Root returns the board's root folder.
func (s *Service) Root() *nodes.Node { return s.root }

// Node resolves a node id.
func (s *Service) Node(id string) (*nodes.Node, error) {
	return s.store.Resolve(nodes.ID(id))
}

// CreateNode creates a node and, when parent is not nil, appends it to parent.
func (s *Service) CreateNode(t models.NodeType, data map[string]string, parent nodes.Ref) (*nodes.Node, error) {
	var p *nodes.Node
	if parent != nil {
		var err error
		if p, err = s.container(parent); err != nil {
			return nil, err
		}
	}
	n, err := s.store.CreateNode(t, data)
	if err != nil {
		return nil, err
	}
	if p != nil {
		if err := p.AddChild(n); err != nil {
			_ = s.store.Delete(n)
			return nil, err
		}
	}
	return n, nil
}

func (s *Service) container(ref nodes.Ref) (*nodes.Node, error) {
	p, err := s.store.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if cfg, _ := s.store.TypeConfig(p.Type()); !cfg.Container {
		return nil, fmt.Errorf("%s (%s): %w", p.ID(), p.Type(), ErrNotContainer)
	}
	return p, nil
}

// UpdateResult reports what Update did.
type UpdateResult struct {
	// Changed lists the fields whose value changed.
	Changed []string
	// Removed is true when the update left the node empty and it was deleted.
	Removed bool
}

// Update merges partial into the node's data. A node whose type considers the
// resulting data empty is detached from every parent and deleted.
func (s *Service) Update(ref nodes.Ref, partial map[string]string) (UpdateResult, error) {
	n, err := s.store.Resolve(ref)
	if err != nil {
		return UpdateResult{}, err
	}
	changed, err := n.SetData(partial)
	if err != nil {
		return UpdateResult{}, err
	}
	res := UpdateResult{Changed: changed}

	cfg, _ := s.store.TypeConfig(n.Type())
	if n != s.root && cfg.IsEmpty != nil && cfg.IsEmpty(n.Data()) {
		n.RemoveFromParents()
		if err := s.store.Delete(n); err != nil {
			return res, fmt.Errorf("remove empty node %s: %w", n.ID(), err)
		}
		res.Removed = true
		s.log.WithField("node_id", n.ID()).Debug("removed empty node")
	}
	return res, nil
}

// AddChild appends child to parent. Negative index appends; otherwise the
// child is inserted at index.
func (s *Service) AddChild(parent, child nodes.Ref, index int) error {
	p, err := s.container(parent)
	if err != nil {
		return err
	}
	if index < 0 {
		return p.AddChild(child)
	}
	return p.InsertChildAt(index, child)
}

// RemoveChildAt detaches the child at index from parent.
func (s *Service) RemoveChildAt(parent nodes.Ref, index int) (*nodes.Node, error) {
	p, err := s.store.Resolve(parent)
	if err != nil {
		return nil, err
	}
	return p.RemoveChildAt(index)
}

// Delete removes a node. Its children stay in the store.
func (s *Service) Delete(ref nodes.Ref) error {
	if ref != nil && ref.RefID() == s.root.ID() {
		return fmt.Errorf("delete %s: %w", s.root.ID(), ErrRootFolder)
	}
	return s.store.Delete(ref)
}

// DeleteTree removes a node and every descendant left without a parent.
func (s *Service) DeleteTree(ref nodes.Ref) (int, error) {
	n, err := s.store.Resolve(ref)
	if err != nil {
		return 0, err
	}
	children := n.Children()
	if err := s.Delete(n); err != nil {
		return 0, err
	}
	count := 1
	for _, c := range children {
		if c.IsDeleted() || len(s.store.ParentsOf(c)) > 0 {
			continue
		}
		sub, err := s.DeleteTree(c)
		count += sub
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// Search returns the nodes matching text, best match first.
func (s *Service) Search(text string) ([]*nodes.Node, error) {
	return s.indexer.Search(text)
}

// WalkFunc is called for each node of the tree with its depth below the root.
type WalkFunc func(n *nodes.Node, depth int) error

// SkipChildren may be returned by a WalkFunc to skip a node's children.
var SkipChildren = errors.New("skip children")

// Walk visits the tree depth-first from the root, parents before children.
// A node reachable through several parents is visited once per path.
func (s *Service) Walk(fn WalkFunc) error {
	return walk(s.root, 0, fn)
}

func walk(n *nodes.Node, depth int, fn WalkFunc) error {
	if err := fn(n, depth); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	for _, c := range n.Children() {
		if err := walk(c, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Orphans returns the nodes not reachable from the root.
func (s *Service) Orphans() []*nodes.Node {
	reachable := make(map[nodes.ID]struct{})
	_ = s.Walk(func(n *nodes.Node, _ int) error {
		if _, seen := reachable[n.ID()]; seen {
			return SkipChildren
		}
		reachable[n.ID()] = struct{}{}
		return nil
	})
	var out []*nodes.Node
	for n := range s.store.All() {
		if _, ok := reachable[n.ID()]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// Reset deletes every node, clears the registry and starts over with a fresh
// root folder. It returns the number of nodes deleted.
func (s *Service) Reset(ctx context.Context, mode registry.ResetMode) (int, error) {
	all := slices.Collect(s.store.All())
	for _, n := range all {
		if err := s.store.Delete(n); err != nil {
			return 0, fmt.Errorf("reset: %w", err)
		}
	}
	if err := s.reg.Reset(ctx, mode); err != nil {
		return len(all), err
	}

	root, err := s.store.CreateNode(models.NodeTypeFolder, map[string]string{models.FieldTitle: DefaultRootTitle})
	if err != nil {
		return len(all), fmt.Errorf("create root: %w", err)
	}
	if err := s.writer.SetRoot(root); err != nil {
		return len(all), fmt.Errorf("record root: %w", err)
	}
	s.root = root
	s.log.WithField("nodes", len(all)).Info("reset board")
	return len(all), nil
}

// Flush writes pending changes to the backend now.
func (s *Service) Flush(ctx context.Context) error {
	return s.reg.Flush(ctx)
}

// Close flushes pending changes and releases the index and backend.
func (s *Service) Close(ctx context.Context) error {
	err := s.reg.Close(ctx)
	s.indexer.Detach()
	s.writer.Detach()
	if cerr := s.index.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if s.ownsBack {
		if cerr := s.backend.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

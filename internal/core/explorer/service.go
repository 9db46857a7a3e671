package explorer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/busview/busview/internal/core/display"
	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/core/namespace"
	"github.com/busview/busview/internal/core/tree"
	"github.com/busview/busview/internal/gateway"
	"github.com/busview/busview/pkg/metrics"
	"github.com/rs/zerolog/log"
)

// ErrValidation marks errors caught before any gateway call is made. They
// are shown next to the offending input; the operation never starts.
var ErrValidation = errors.New("validation failed")

// ErrUnknownState marks inbound view messages whose state id does not match
// a live display state. They are logged and ignored.
var ErrUnknownState = errors.New("no live display state for id")

// ErrReload marks a connection change whose follow-up collection reloads
// failed. The new connection is in place; callers decide how to present the
// partial success.
var ErrReload = errors.New("reload after connection change failed")

// Service owns the namespace, the display-state cache and the tree
// projection, and coordinates them with the broker gateway.
//
// Mutations of the shared structures are serialized on one mutex, standing
// in for the host's single cooperative scheduler. Gateway calls (the
// suspension points) always run outside the lock, and every continuation
// re-validates identities against the store before splicing results back in.
// A failed gateway call commits nothing.
type Service struct {
	mu      sync.Mutex
	ns      *namespace.Namespace
	gw      gateway.Gateway
	newGw   gateway.Factory
	tree    *tree.Projection
	display *display.Cache
	metrics *metrics.Collector

	onViewRefresh func(*display.State)
	onViewClose   func(*display.State)
}

// New builds a service around an already-connected gateway. factory is used
// when the operator changes the connection descriptor; collector may be nil.
func New(connectionString string, gw gateway.Gateway, factory gateway.Factory, collector *metrics.Collector) *Service {
	ns := namespace.New(connectionString)
	return &Service{
		ns:      ns,
		gw:      gw,
		newGw:   factory,
		tree:    tree.NewProjection(ns),
		display: display.NewCache(),
		metrics: collector,
	}
}

// OnViewRefresh registers the presentation callback invoked whenever the
// active detail view must repaint. The callback receives the full state.
func (s *Service) OnViewRefresh(fn func(*display.State)) {
	s.onViewRefresh = fn
}

// OnViewClose registers the presentation callback invoked when the entity
// shown in the detail view is deleted.
func (s *Service) OnViewClose(fn func(*display.State)) {
	s.onViewClose = fn
}

// Subscribe registers a tree observer; the signal names the collection that
// changed and carries no payload.
func (s *Service) Subscribe(obs tree.Observer) {
	s.tree.Subscribe(obs)
}

// Children resolves tree children from the store's latest state.
func (s *Service) Children(node *tree.Node) []tree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Children(node)
}

// ActiveView returns the display state currently shown, or nil.
func (s *Service) ActiveView() *display.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display.ActiveState()
}

// ConnectionString returns the current connection descriptor.
func (s *Service) ConnectionString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ns.ConnectionString
}

// gateway snapshots the gateway handle under the lock. Operations take one
// snapshot up front so a concurrent ChangeConnection cannot swap the handle
// out from under a call in flight.
func (s *Service) gateway() gateway.Gateway {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gw
}

// ChangeConnection swaps the connection descriptor and reloads both root
// collections. The new gateway is built first; on failure the old
// connection stays in place untouched. When the swap succeeds but a reload
// fails, the error wraps ErrReload so callers can report the partial
// success instead of pretending the namespace is loaded.
func (s *Service) ChangeConnection(ctx context.Context, connectionString string) error {
	if connectionString == "" {
		return fmt.Errorf("%w: connection string must not be empty", ErrValidation)
	}
	next, err := s.newGw(connectionString)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.gw
	s.gw = next
	s.ns.Reset(connectionString)
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close previous gateway")
		}
	}
	s.tree.Notify(tree.CollectionQueues)
	s.tree.Notify(tree.CollectionTopics)

	// Reload both roots; a failure leaves the fresh (empty) collection in
	// place until the next refresh.
	var qErr, tErr error
	if _, qErr = s.ListQueues(ctx); qErr != nil {
		log.Warn().Err(qErr).Msg("Queue reload after connection change failed")
	}
	if _, tErr = s.ListTopics(ctx); tErr != nil {
		log.Warn().Err(tErr).Msg("Topic reload after connection change failed")
	}
	if joined := errors.Join(qErr, tErr); joined != nil {
		return fmt.Errorf("%w: %v", ErrReload, joined)
	}
	return nil
}

// Close shuts the gateway down.
func (s *Service) Close() error {
	s.mu.Lock()
	gw := s.gw
	s.mu.Unlock()
	if gw == nil {
		return nil
	}
	return gw.Close()
}

func wrapValidation(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func notLoaded(kind models.EntityKind, name string) error {
	return fmt.Errorf("%s '%s' is not loaded", kind, name)
}

var nameRegex = regexp.MustCompile(`^[\w.-]+$`)

// validateName enforces the entity naming rule and the case-insensitive
// sibling collision check before any create request is sent.
func (s *Service) validateName(kind models.EntityKind, topicName, subName, name string) error {
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: %s name may contain only letters, numbers, periods, hyphens, and underscores", ErrValidation, kind)
	}
	s.mu.Lock()
	siblings := s.ns.SiblingNames(kind, topicName, subName)
	s.mu.Unlock()
	if namespace.HasSibling(siblings, name) {
		return fmt.Errorf("%w: %s '%s' already exists", ErrValidation, kind, name)
	}
	return nil
}

// repaint applies refreshed snapshots to the display cache; if one of them
// is the entity currently shown, the view is pushed the latest state.
func (s *Service) repaint(entities ...models.Entity) {
	s.mu.Lock()
	var refreshed *display.State
	for _, e := range entities {
		if st := s.display.Refresh(e); st != nil {
			refreshed = st
			break
		}
	}
	cb := s.onViewRefresh
	s.mu.Unlock()
	if refreshed != nil && cb != nil {
		cb(refreshed)
	}
}

// pushIfActive pushes the view state for an entity if it is the one shown.
func (s *Service) pushIfActive(entity models.Entity) {
	s.mu.Lock()
	state := s.display.ActiveState()
	cb := s.onViewRefresh
	active := state != nil && models.SamePath(state.Entity, entity)
	s.mu.Unlock()
	if active && cb != nil {
		cb(state)
	}
}

// evictAndClose drops the display state of a deleted entity and closes the
// open view when it was showing that entity.
func (s *Service) evictAndClose(entity models.Entity) {
	s.mu.Lock()
	closed := s.display.EvictFor(entity)
	cb := s.onViewClose
	s.mu.Unlock()
	if closed != nil && cb != nil {
		cb(closed)
	}
}

// show creates-or-activates the display state for an entity and pushes it.
func (s *Service) show(entity models.Entity) *display.State {
	s.mu.Lock()
	state := s.display.GetOrCreate(entity)
	cb := s.onViewRefresh
	s.mu.Unlock()
	if cb != nil {
		cb(state)
	}
	return state
}

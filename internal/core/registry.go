package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"inventorycore/pkg/domain"
)

// DefaultSaveKey is the persistent store key the world document lives under.
const DefaultSaveKey = "inventory/world"

// Registry tracks the live root containers and the scene-element snapshots of
// the last loaded world. It is an in-memory index, not a store: SaveAll and
// LoadAll hand the world to the PersistentStore it was built with.
type Registry struct {
	store   domain.PersistentStore
	key     string
	logger  logrus.FieldLogger
	metrics MetricsRecorder
	now     func() time.Time

	roots         []*Container
	sceneElements map[string]domain.ContainerSnapshot
	loaded        bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSaveKey overrides DefaultSaveKey.
func WithSaveKey(key string) RegistryOption {
	return func(r *Registry) {
		if key != "" {
			r.key = key
		}
	}
}

// WithRegistryLogger sets the structured logger.
func WithRegistryLogger(logger logrus.FieldLogger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// WithRegistryMetrics sets the recorder receiving the registered roots gauge.
func WithRegistryMetrics(m MetricsRecorder) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// WithClock overrides the clock stamping saved worlds.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry builds a registry over store. A nil store keeps everything in
// memory: SaveAll only snapshots and LoadAll returns nothing.
func NewRegistry(store domain.PersistentStore, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:         store,
		key:           DefaultSaveKey,
		sceneElements: make(map[string]domain.ContainerSnapshot),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.logger == nil {
		r.logger = logrus.StandardLogger()
	}
	if r.metrics == nil {
		r.metrics = NoopMetrics()
	}
	if r.now == nil {
		r.now = func() time.Time { return time.Now().UTC() }
	}
	return r
}

// Key returns the store key the world is saved under.
func (r *Registry) Key() string { return r.key }

// Store returns the backing store, possibly nil.
func (r *Registry) Store() domain.PersistentStore { return r.store }

// RegisterRoot adds c to the set of saved roots. Nested containers and
// repeated registrations are ignored.
func (r *Registry) RegisterRoot(c *Container) {
	if c == nil || c.nested || slices.Contains(r.roots, c) {
		return
	}
	r.roots = append(r.roots, c)
	r.metrics.SetRegisteredRoots(len(r.roots))
}

// UnregisterRoot removes c from the set of saved roots.
func (r *Registry) UnregisterRoot(c *Container) {
	i := slices.Index(r.roots, c)
	if i < 0 {
		return
	}
	r.roots = slices.Delete(r.roots, i, i+1)
	r.metrics.SetRegisteredRoots(len(r.roots))
}

// Roots returns the registered roots in registration order.
func (r *Registry) Roots() []*Container {
	return slices.Clone(r.roots)
}

// Snapshots captures every registered root. Nested containers only appear
// inside their root.
func (r *Registry) Snapshots() ([]domain.ContainerSnapshot, error) {
	out := make([]domain.ContainerSnapshot, 0, len(r.roots))
	for _, root := range r.roots {
		snap, err := root.ToSnapshot()
		if err != nil {
			return nil, fmt.Errorf("snapshot root %s: %w", root.ID(), err)
		}
		out = append(out, snap)
	}
	return out, nil
}

// SaveAll snapshots every registered root and writes the world document to
// the store.
func (r *Registry) SaveAll(ctx context.Context) ([]domain.ContainerSnapshot, error) {
	snaps, err := r.Snapshots()
	if err != nil {
		return nil, err
	}
	if r.store == nil {
		return snaps, nil
	}
	world := domain.World{Version: domain.WorldVersion, SavedAt: r.now(), Containers: snaps}
	if err := domain.SaveJSON(ctx, r.store, r.key, world); err != nil {
		return nil, fmt.Errorf("save world: %w", err)
	}
	r.logger.WithFields(logrus.Fields{"op": "save", "roots": len(snaps), "key": r.key}).Info("world saved")
	return snaps, nil
}

// LoadAll returns the root snapshots held by the store, empty when nothing
// was saved. The first successful load caches scene elements by name.
func (r *Registry) LoadAll(ctx context.Context) ([]domain.ContainerSnapshot, error) {
	if r.store == nil {
		return nil, nil
	}
	world, err := domain.LoadJSON[domain.World](ctx, r.store, r.key)
	if errors.Is(err, domain.ErrNotFound) {
		r.logger.WithFields(logrus.Fields{"op": "load", "key": r.key}).Debug("no saved world")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	if world.Version > domain.WorldVersion {
		return nil, fmt.Errorf("%w: world version %d is newer than %d", domain.ErrStructuralViolation, world.Version, domain.WorldVersion)
	}
	for _, issue := range domain.ValidateWorld(world) {
		r.logger.WithFields(logrus.Fields{"op": "load", "path": issue.Path}).Warn(issue.Message)
	}
	if !r.loaded {
		for name, snap := range world.SceneElements() {
			r.sceneElements[name] = snap
		}
		r.loaded = true
	}
	r.logger.WithFields(logrus.Fields{"op": "load", "roots": len(world.Containers), "key": r.key}).Info("world loaded")
	return world.Containers, nil
}

// FindSceneElement returns the cached snapshot of the scene element named name.
func (r *Registry) FindSceneElement(name string) (domain.ContainerSnapshot, bool) {
	snap, ok := r.sceneElements[name]
	if !ok {
		return domain.ContainerSnapshot{}, false
	}
	return snap.Clone(), true
}

// Reset forgets every root and the scene-element cache. The next LoadAll
// repopulates the cache.
func (r *Registry) Reset() {
	r.roots = nil
	r.sceneElements = make(map[string]domain.ContainerSnapshot)
	r.loaded = false
	r.metrics.SetRegisteredRoots(0)
}

package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"inventorycore/pkg/domain"
)

// Service wires containers to a registry and an object factory, and drives
// whole-world saves and loads.
type Service struct {
	registry *Registry
	factory  ObjectFactory
	collab   collaborators
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger handed to attached containers.
func WithServiceLogger(logger logrus.FieldLogger) ServiceOption {
	return func(s *Service) { s.collab.logger = logger }
}

// WithServiceMetrics sets the recorder handed to attached containers.
func WithServiceMetrics(m MetricsRecorder) ServiceOption {
	return func(s *Service) { s.collab.metrics = m }
}

// WithServicePresenter sets the presenter handed to attached containers.
func WithServicePresenter(p Presenter) ServiceOption {
	return func(s *Service) { s.collab.presenter = p }
}

// WithServiceIDs sets the identity source handed to attached containers.
func WithServiceIDs(ids IDGenerator) ServiceOption {
	return func(s *Service) { s.collab.ids = ids }
}

// NewService constructs a service over registry and factory.
func NewService(registry *Registry, factory ObjectFactory, opts ...ServiceOption) *Service {
	if registry == nil {
		registry = NewRegistry(nil)
	}
	s := &Service{registry: registry, factory: factory}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.collab.registry = registry
	s.collab.factory = factory
	s.collab.ensureDefaults()
	return s
}

// Registry returns the persistence registry.
func (s *Service) Registry() *Registry { return s.registry }

// Factory returns the object factory.
func (s *Service) Factory() ObjectFactory { return s.factory }

// Attach initializes a container placed by the host. A scene element with a
// cached snapshot is restored from it; anything else registers fresh.
func (s *Service) Attach(c *Container) error {
	if c == nil {
		return fmt.Errorf("%w: nil container", domain.ErrStructuralViolation)
	}
	c.collab.adopt(s.collab)
	c.Initialize()
	if c.IsSceneElement() {
		if snap, ok := s.registry.FindSceneElement(c.SceneElementName()); ok {
			return c.RestoreFrom(snap, false)
		}
	}
	return c.Register(false)
}

// Spawn creates a root container of typeID through the factory and registers
// it fresh.
func (s *Service) Spawn(typeID string) (*Container, error) {
	if s.factory == nil {
		return nil, fmt.Errorf("%w: no object factory", domain.ErrLookupMiss)
	}
	c, err := s.factory.CreateContainer(typeID)
	if err != nil {
		return nil, err
	}
	c.collab.adopt(s.collab)
	c.Initialize()
	if err := c.Register(false); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadWorld reads the saved world, respawns every dynamic root through the
// factory and restores it. Scene elements are left cached for Attach. Roots
// whose type the factory does not know are logged and skipped.
func (s *Service) LoadWorld(ctx context.Context) ([]*Container, error) {
	snaps, err := s.registry.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var restored []*Container
	var errs []error
	for _, snap := range snaps {
		if snap.IsSceneElement {
			continue
		}
		fields := logrus.Fields{"op": "load", "container_id": snap.ID, "container_type": snap.TypeID}
		if s.factory == nil {
			s.collab.logger.WithFields(fields).Warn("no object factory to respawn container")
			continue
		}
		c, err := s.factory.CreateContainer(snap.TypeID)
		if err != nil {
			s.collab.logger.WithFields(fields).WithError(err).Warn("container type lookup failed, skipping")
			continue
		}
		c.collab.adopt(s.collab)
		c.Initialize()
		if err := c.RestoreFrom(snap, false); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", snap.ID, err))
			continue
		}
		restored = append(restored, c)
	}
	return restored, errors.Join(errs...)
}

// SaveWorld refreshes root transforms from their bodies and saves every
// registered root.
func (s *Service) SaveWorld(ctx context.Context) ([]domain.ContainerSnapshot, error) {
	for _, root := range s.registry.Roots() {
		root.SyncTransform()
	}
	return s.registry.SaveAll(ctx)
}

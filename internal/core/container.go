package core

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"inventorycore/pkg/domain"
)

type lifecycleState int

const (
	stateUnconstructed lifecycleState = iota
	stateInitialized
	stateRegistered
)

func (s lifecycleState) String() string {
	switch s {
	case stateInitialized:
		return "initialized"
	case stateRegistered:
		return "registered"
	default:
		return "unconstructed"
	}
}

// ContainerConfig describes the static shape of a container.
type ContainerConfig struct {
	// TypeID is the factory type used to respawn the container on load.
	TypeID string
	// SlotCount is the capacity when Anchors is empty.
	SlotCount int
	// Anchors overrides SlotCount with explicit slot placements.
	Anchors []Anchor
	// DefaultFillType, when set, fills every empty slot with a fresh item of
	// this type on the fresh Register path.
	DefaultFillType string
	// SceneElementName marks a container pre-placed in a scene, looked up by
	// name instead of respawned through the factory.
	SceneElementName string
	// Key is the stable local key used to match this container when nested.
	// A key reported by the host node takes its place when this is empty.
	Key string
}

// collaborators are the services a container talks to. Nested containers
// inherit any their parent has and they lack.
type collaborators struct {
	factory   ObjectFactory
	registry  *Registry
	presenter Presenter
	ids       IDGenerator
	logger    logrus.FieldLogger
	metrics   MetricsRecorder
}

func (c *collaborators) adopt(src collaborators) {
	if c.factory == nil {
		c.factory = src.factory
	}
	if c.registry == nil {
		c.registry = src.registry
	}
	if c.presenter == nil {
		c.presenter = src.presenter
	}
	if c.ids == nil {
		c.ids = src.ids
	}
	if c.logger == nil {
		c.logger = src.logger
	}
	if c.metrics == nil {
		c.metrics = src.metrics
	}
}

func (c *collaborators) ensureDefaults() {
	if c.ids == nil {
		c.ids = UUIDGenerator{}
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	if c.metrics == nil {
		c.metrics = NoopMetrics()
	}
}

// ContainerOption configures a container at construction.
type ContainerOption func(*Container)

// WithHost attaches the host node whose subtree holds nested containers.
func WithHost(node HostNode) ContainerOption {
	return func(c *Container) { c.host = node }
}

// WithBody attaches the physical body posed from saved transforms.
func WithBody(body Body) ContainerOption {
	return func(c *Container) { c.body = body }
}

// WithFactory sets the object factory used for default fill and restores.
func WithFactory(f ObjectFactory) ContainerOption {
	return func(c *Container) { c.collab.factory = f }
}

// WithRegistry sets the persistence registry roots register into.
func WithRegistry(r *Registry) ContainerOption {
	return func(c *Container) { c.collab.registry = r }
}

// WithPresenter sets the transfer animation presenter.
func WithPresenter(p Presenter) ContainerOption {
	return func(c *Container) { c.collab.presenter = p }
}

// WithIDGenerator sets the identity source for the container and its items.
func WithIDGenerator(ids IDGenerator) ContainerOption {
	return func(c *Container) { c.collab.ids = ids }
}

// WithLogger sets the structured logger.
func WithLogger(logger logrus.FieldLogger) ContainerOption {
	return func(c *Container) { c.collab.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) ContainerOption {
	return func(c *Container) { c.collab.metrics = m }
}

// Container owns a slot stack, a filter chain and the nested containers found
// under its host node. It moves through Unconstructed, Initialized and
// Registered; there is no way back.
type Container struct {
	cfg      ContainerConfig
	id       string
	key      string
	state    lifecycleState
	nested   bool
	disabled bool

	slots      *SlotStack
	filters    FilterChain
	children   []*Container
	discovered bool

	saved    domain.Transform
	hasSaved bool

	host   HostNode
	body   Body
	collab collaborators

	subs    []subscription
	nextSub int
}

// NewContainer builds an unconstructed container.
func NewContainer(cfg ContainerConfig, opts ...ContainerOption) *Container {
	c := &Container{cfg: cfg, key: cfg.Key}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Apply sets options after construction, typically on containers handed out
// by a factory.
func (c *Container) Apply(opts ...ContainerOption) {
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
}

// ID returns the container identity, empty until registered or restored.
func (c *Container) ID() string { return c.id }

// TypeID returns the factory type identifier.
func (c *Container) TypeID() string { return c.cfg.TypeID }

// Key returns the local key used for nested matching.
func (c *Container) Key() string { return c.key }

// SceneElementName returns the stable scene name, empty for spawned containers.
func (c *Container) SceneElementName() string { return c.cfg.SceneElementName }

// IsSceneElement reports whether the container is pre-placed in a scene.
func (c *Container) IsSceneElement() bool { return c.cfg.SceneElementName != "" }

// IsNested reports whether the container was registered as a nested container.
func (c *Container) IsNested() bool { return c.nested }

// Initialized reports whether Initialize has run.
func (c *Container) Initialized() bool { return c.state >= stateInitialized }

// Registered reports whether Register or RestoreFrom has completed.
func (c *Container) Registered() bool { return c.state == stateRegistered }

// Enabled reports whether the container accepts Add, Remove and Peek.
func (c *Container) Enabled() bool { return !c.disabled }

// Capacity returns the fixed slot count, zero before Initialize.
func (c *Container) Capacity() int {
	if c.slots == nil {
		return 0
	}
	return c.slots.Capacity()
}

// Count returns the number of stored items.
func (c *Container) Count() int {
	if c.slots == nil {
		return 0
	}
	return c.slots.Count()
}

// Items returns the stored items in slot order.
func (c *Container) Items() []*Item {
	if c.slots == nil {
		return nil
	}
	return c.slots.Items()
}

// Slots exposes the slot stack, nil before Initialize.
func (c *Container) Slots() *SlotStack { return c.slots }

// Nested returns the nested containers in discovery order.
func (c *Container) Nested() []*Container {
	return append([]*Container(nil), c.children...)
}

// SavedTransform returns the pose captured at Register, restored from a
// snapshot, or refreshed by SyncTransform.
func (c *Container) SavedTransform() (domain.Transform, bool) {
	return c.saved, c.hasSaved
}

// AddFilter attaches an admission filter. It applies to future adds only.
func (c *Container) AddFilter(f Filter) bool { return c.filters.Add(f) }

// RemoveFilter detaches an admission filter.
func (c *Container) RemoveFilter(f Filter) bool { return c.filters.Remove(f) }

// Filters returns the attached filters.
func (c *Container) Filters() []Filter { return c.filters.Filters() }

func (c *Container) log() logrus.FieldLogger {
	if c.collab.logger == nil {
		c.collab.ensureDefaults()
	}
	fields := logrus.Fields{"container_type": c.cfg.TypeID}
	if c.id != "" {
		fields["container_id"] = c.id
	}
	if c.cfg.SceneElementName != "" {
		fields["scene_element"] = c.cfg.SceneElementName
	}
	return c.collab.logger.WithFields(fields)
}

func (c *Container) anchors() []Anchor {
	if len(c.cfg.Anchors) > 0 {
		return c.cfg.Anchors
	}
	return GridAnchors(c.cfg.SlotCount, 1)
}

// Initialize allocates the slot stack, discovers nested containers once and
// initializes them. Repeated calls never duplicate the nested list.
func (c *Container) Initialize() {
	c.collab.ensureDefaults()
	if c.slots == nil {
		c.slots = NewSlotStack(c.anchors())
	}
	if !c.discovered {
		c.children = discoverNested(c, c.host)
		c.discovered = true
	}
	for _, child := range c.children {
		child.collab.adopt(c.collab)
		child.Initialize()
	}
	if c.state < stateInitialized {
		c.state = stateInitialized
	}
}

func (c *Container) requireFresh(op string) error {
	switch c.state {
	case stateUnconstructed:
		err := fmt.Errorf("%w: %s before Initialize", domain.ErrStructuralViolation, op)
		c.log().WithField("op", op).Error(err)
		return err
	case stateRegistered:
		err := fmt.Errorf("%w: %s on registered container %s", domain.ErrStructuralViolation, op, c.id)
		c.log().WithField("op", op).Error(err)
		return err
	}
	return nil
}

// Register is the fresh path: it assigns an identity, registers nested
// containers in discovery order, captures the transform of a root, fills
// empty slots with the default item type and records a root in the registry.
// When a nested registration fails the container drops its identity and may
// be registered again; nested containers that already succeeded are kept.
func (c *Container) Register(nested bool) error {
	if err := c.requireFresh("register"); err != nil {
		return err
	}
	c.id = c.collab.ids.NewID()
	c.nested = nested
	for _, child := range c.children {
		if child.state == stateRegistered && child.nested {
			continue
		}
		if err := child.Register(true); err != nil {
			c.id = ""
			return fmt.Errorf("register nested %s: %w", child.cfg.TypeID, err)
		}
	}
	if !nested {
		c.captureTransform()
	}
	if c.cfg.DefaultFillType != "" {
		c.fillDefaults()
	}
	c.state = stateRegistered
	if !nested {
		c.registerRoot()
	}
	c.log().WithField("nested", nested).Debug("container registered")
	return nil
}

func (c *Container) captureTransform() {
	if c.body != nil {
		c.saved = c.body.Pose()
	} else {
		c.saved = domain.IdentityTransform()
	}
	c.hasSaved = true
}

// SyncTransform refreshes the saved transform of a root from its body.
func (c *Container) SyncTransform() {
	if c.nested || c.body == nil || c.state != stateRegistered {
		return
	}
	c.captureTransform()
}

func (c *Container) fillDefaults() {
	if c.collab.factory == nil {
		c.log().WithField("item_type", c.cfg.DefaultFillType).Warn("default fill configured without an object factory")
		return
	}
	for !c.slots.Full() {
		item, err := c.collab.factory.CreateItem(c.cfg.DefaultFillType)
		if err != nil {
			c.log().WithField("item_type", c.cfg.DefaultFillType).WithError(err).Warn("default fill item lookup failed")
			return
		}
		item.InitializeNew(c.collab.ids)
		if err := c.tryAdd(item, false); err != nil {
			c.log().WithFields(logrus.Fields{"item_type": item.TypeID(), "item_id": item.ID()}).WithError(err).Warn("default fill stopped")
			return
		}
	}
}

func (c *Container) registerRoot() {
	if c.collab.registry != nil && !c.disabled {
		c.collab.registry.RegisterRoot(c)
	}
}

// Disable stops the container from accepting Add, Remove and Peek and drops
// a root from the persistence registry.
func (c *Container) Disable() {
	c.disabled = true
	if !c.nested && c.collab.registry != nil {
		c.collab.registry.UnregisterRoot(c)
	}
}

// Enable reverses Disable; a registered root rejoins the registry.
func (c *Container) Enable() {
	c.disabled = false
	if !c.nested && c.state == stateRegistered {
		c.registerRoot()
	}
}

package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

type testNode struct {
	key       string
	container *Container
	children  []*testNode
}

func (n *testNode) Children() []HostNode {
	out := make([]HostNode, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *testNode) Container() *Container { return n.container }
func (n *testNode) Key() string           { return n.key }

func (n *testNode) add(child *testNode) *testNode {
	n.children = append(n.children, child)
	return child
}

type seqIDs struct {
	prefix string
	n      int
}

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

type recordingPresenter struct {
	calls []Anchor
}

func (p *recordingPresenter) Execute(_ *Item, target Anchor) {
	p.calls = append(p.calls, target)
}

func quietLogger() (*logrus.Logger, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat := NewCatalog()
	for _, typeID := range []string{"apple", "sword", "coin"} {
		if err := cat.RegisterItem(typeID, nil); err != nil {
			t.Fatalf("register %s: %v", typeID, err)
		}
	}
	return cat
}

var itemIDs = &seqIDs{prefix: "item"}

func newIdentified(typeID string) *Item {
	item := NewItem(typeID)
	item.InitializeNew(itemIDs)
	return item
}

// newLive builds, initializes and registers a root container.
func newLive(t *testing.T, cfg ContainerConfig, opts ...ContainerOption) *Container {
	t.Helper()
	logger, _ := quietLogger()
	c := NewContainer(cfg, append([]ContainerOption{WithLogger(logger)}, opts...)...)
	c.Initialize()
	if err := c.Register(false); err != nil {
		t.Fatalf("register %s: %v", cfg.TypeID, err)
	}
	return c
}

// logged reports whether hook captured an entry at level whose message
// contains substr.
func logged(hook *logtest.Hook, level logrus.Level, substr string) bool {
	for _, entry := range hook.AllEntries() {
		if entry.Level == level && strings.Contains(entry.Message, substr) {
			return true
		}
	}
	return false
}

package domain

import (
	"fmt"
	"strconv"
)

// ValidationError describes one problem found in a persisted world.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}

// ValidateWorld checks a world for problems that would break a restore:
// duplicate or missing identities, missing type ids, unnamed scene elements,
// and transforms on nested containers.
func ValidateWorld(w World) []ValidationError {
	v := worldValidator{seen: make(map[string]string)}
	if w.Version > WorldVersion {
		v.add("world", fmt.Sprintf("version %d is newer than supported version %d", w.Version, WorldVersion))
	}
	names := make(map[string]string)
	for i, c := range w.Containers {
		path := "containers[" + strconv.Itoa(i) + "]"
		v.container(path, c, false)
		if c.IsSceneElement {
			if prev, dup := names[c.SceneElementName]; dup && c.SceneElementName != "" {
				v.add(path, fmt.Sprintf("scene element name %q already used by %s", c.SceneElementName, prev))
			}
			names[c.SceneElementName] = path
		}
	}
	return v.errs
}

type worldValidator struct {
	seen map[string]string
	errs []ValidationError
}

func (v *worldValidator) add(path, msg string) {
	v.errs = append(v.errs, ValidationError{Path: path, Message: msg})
}

func (v *worldValidator) identity(path, id string) {
	if id == "" {
		v.add(path, "missing id")
		return
	}
	if prev, dup := v.seen[id]; dup {
		v.add(path, fmt.Sprintf("id %s already used by %s", id, prev))
		return
	}
	v.seen[id] = path
}

func (v *worldValidator) container(path string, c ContainerSnapshot, nested bool) {
	v.identity(path, c.ID)
	if c.TypeID == "" && !c.IsSceneElement {
		v.add(path, "missing type_id")
	}
	if nested && c.Transform != nil {
		v.add(path, "nested container carries a transform")
	}
	if nested && c.IsSceneElement {
		v.add(path, "nested container flagged as scene element")
	}
	if c.IsSceneElement && c.SceneElementName == "" {
		v.add(path, "scene element without a name")
	}
	for i, item := range c.Items {
		itemPath := path + ".items[" + strconv.Itoa(i) + "]"
		v.identity(itemPath, item.ID)
		if item.TypeID == "" {
			v.add(itemPath, "missing type_id")
		}
	}
	keys := make(map[string]struct{})
	for i, child := range c.Nested {
		childPath := path + ".nested[" + strconv.Itoa(i) + "]"
		if child.Key != "" {
			if _, dup := keys[child.Key]; dup {
				v.add(childPath, fmt.Sprintf("duplicate nested key %q", child.Key))
			}
			keys[child.Key] = struct{}{}
		}
		v.container(childPath, child, true)
	}
}

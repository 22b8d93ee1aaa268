package domain

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the world pose of a root container. Nested containers never
// carry one; their pose is implied by their parent.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// IdentityTransform returns the origin pose with no rotation.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

// NewTransform builds a transform from a position and a rotation about axis by angle radians.
func NewTransform(position mgl32.Vec3, angle float32, axis mgl32.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl32.QuatRotate(angle, axis)}
}

// ApproxEqual reports whether both transforms match within mgl32's float epsilon.
func (t Transform) ApproxEqual(other Transform) bool {
	return t.Position.ApproxEqual(other.Position) && t.Rotation.ApproxEqual(other.Rotation)
}

type transformWire struct {
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"` // w, x, y, z
}

// MarshalJSON encodes the rotation as [w, x, y, z].
func (t Transform) MarshalJSON() ([]byte, error) {
	return json.Marshal(transformWire{
		Position: [3]float32(t.Position),
		Rotation: [4]float32{t.Rotation.W, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2]},
	})
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON. A missing or
// all-zero rotation decodes as the identity rotation.
func (t *Transform) UnmarshalJSON(data []byte) error {
	var wire transformWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	t.Position = mgl32.Vec3(wire.Position)
	if wire.Rotation == [4]float32{} {
		t.Rotation = mgl32.QuatIdent()
		return nil
	}
	t.Rotation = mgl32.Quat{W: wire.Rotation[0], V: mgl32.Vec3{wire.Rotation[1], wire.Rotation[2], wire.Rotation[3]}}
	return nil
}

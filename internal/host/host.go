// Package host defines the scene-editing surface that generated actions
// target, and an in-memory implementation of it.
package host

import (
	"errors"

	"github.com/rcliao/forgecore/internal/model"
)

// Object kinds.
const (
	KindMesh   = "MESH"
	KindLight  = "LIGHT"
	KindCamera = "CAMERA"
)

// Light types.
const (
	LightSun   = "SUN"
	LightArea  = "AREA"
	LightSpot  = "SPOT"
	LightPoint = "POINT"
)

// Keyframe data paths.
const (
	PathLocation = "location"
	PathRotation = "rotation_euler"
)

// Errors returned by Scene implementations.
var (
	ErrNoObject   = errors.New("no such object")
	ErrNoMaterial = errors.New("no such material")
	ErrNoNode     = errors.New("no such shader node")
	ErrBadValue   = errors.New("invalid value")
)

// ObjectInfo is the read-only view of one scene object.
type ObjectInfo struct {
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Location model.Vec3 `json:"location"`
}

// Snapshot is the host state generators are allowed to read.
type Snapshot struct {
	Objects  []ObjectInfo `json:"objects"`
	Selected []string     `json:"selected"`
	FilePath string       `json:"file_path,omitempty"`
}

// Object returns the named object.
func (s Snapshot) Object(name string) (ObjectInfo, bool) {
	for _, o := range s.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return ObjectInfo{}, false
}

// OfKind returns the names of all objects of the given kind, in scene order.
func (s Snapshot) OfKind(kind string) []string {
	var out []string
	for _, o := range s.Objects {
		if o.Kind == kind {
			out = append(out, o.Name)
		}
	}
	return out
}

// SelectedMeshes returns the selected objects that are meshes, in selection order.
func (s Snapshot) SelectedMeshes() []string {
	var out []string
	for _, name := range s.Selected {
		if o, ok := s.Object(name); ok && o.Kind == KindMesh {
			out = append(out, name)
		}
	}
	return out
}

// ExportOptions configures one scene export.
type ExportOptions struct {
	Preset             string  `json:"preset"`
	Scale              float64 `json:"scale"`
	BakeSpaceTransform bool    `json:"bake_space_transform,omitempty"`
}

// Scene is the host scene-mutation API. Every method that creates something
// returns the id of the created object, material or node.
type Scene interface {
	Snapshot() Snapshot

	CreatePrimitive(name, shape string, size float64, location model.Vec3) (string, error)
	AddModifier(object, modifier string, amount float64) error
	ShadeSmooth(object string) error
	SetLocation(object string, location model.Vec3) error
	RemoveObject(object string) error

	NewMaterial(name string) (string, error)
	AddShaderNode(material, nodeType string) (string, error)
	LinkShaderNodes(material, from, output, to, input string) error
	SetNodeInput(material, node, input string, value any) error
	AssignMaterial(object, material string) error

	AddCamera(name string, location, rotation model.Vec3) (string, error)
	SetActiveCamera(object string) error
	AddLight(name, lightType string, location model.Vec3, energy, size float64) (string, error)

	SetFrameRange(start, end int) error
	InsertKeyframe(object, path string, frame int, value model.Vec3) error

	EnsureDir(path string) error
	Export(path string, opts ExportOptions) error
}

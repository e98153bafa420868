package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/forgecore/internal/model"
)

// Object is a scene object held by Sim.
type Object struct {
	Name      string     `json:"name"`
	Kind      string     `json:"kind"`
	Shape     string     `json:"shape,omitempty"`
	Size      float64    `json:"size,omitempty"`
	Location  model.Vec3 `json:"location"`
	Rotation  model.Vec3 `json:"rotation"`
	Smooth    bool       `json:"smooth,omitempty"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
	Material  string     `json:"material,omitempty"`
	Light     *Light     `json:"light,omitempty"`
	Keyframes []Keyframe `json:"keyframes,omitempty"`
}

// Modifier is a mesh modifier with its single amount setting
// (subdivision levels, bevel width).
type Modifier struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// Light holds the settings of a light object.
type Light struct {
	Type   string  `json:"type"`
	Energy float64 `json:"energy"`
	Size   float64 `json:"size,omitempty"`
}

// Keyframe is one recorded key on an object property.
type Keyframe struct {
	Path  string     `json:"path"`
	Frame int        `json:"frame"`
	Value model.Vec3 `json:"value"`
}

// Material is a node-based material.
type Material struct {
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links,omitempty"`
}

// Node is a shader node and the inputs set on it.
type Node struct {
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Inputs map[string]any `json:"inputs,omitempty"`
}

// Link connects an output socket of one node to an input socket of another.
type Link struct {
	From   string `json:"from"`
	Output string `json:"output"`
	To     string `json:"to"`
	Input  string `json:"input"`
}

// ExportRecord is a completed export.
type ExportRecord struct {
	Path    string        `json:"path"`
	Options ExportOptions `json:"options"`
	Objects int           `json:"objects"`
}

type simState struct {
	Objects      []*Object      `json:"objects"`
	Materials    []*Material    `json:"materials,omitempty"`
	Selected     []string       `json:"selected"`
	ActiveCamera string         `json:"active_camera,omitempty"`
	FrameStart   int            `json:"frame_start"`
	FrameEnd     int            `json:"frame_end"`
	FilePath     string         `json:"file_path,omitempty"`
	Dirs         []string       `json:"dirs,omitempty"`
	Exports      []ExportRecord `json:"exports,omitempty"`
}

// Sim is an in-memory Scene. Names are made unique the way the host does it,
// by appending ".001", ".002" and so on. Newly created objects become the
// selection. A Sim is not safe for concurrent use.
type Sim struct {
	st simState
}

// NewSim returns an empty, unsaved scene.
func NewSim() *Sim {
	return &Sim{st: simState{FrameStart: 1, FrameEnd: 250}}
}

// LoadSim reads a scene saved by Save. A missing file yields an empty scene.
func LoadSim(path string) (*Sim, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewSim(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s := NewSim()
	if err := json.Unmarshal(data, &s.st); err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", path, err)
	}
	return s, nil
}

// Save writes the scene to path and records it as the scene's file path.
func (s *Sim) Save(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve scene path: %w", err)
	}
	s.st.FilePath = abs
	data, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create scene dir: %w", err)
	}
	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace scene: %w", err)
	}
	return nil
}

// Snapshot implements Scene.
func (s *Sim) Snapshot() Snapshot {
	snap := Snapshot{
		Objects:  make([]ObjectInfo, len(s.st.Objects)),
		Selected: append([]string(nil), s.st.Selected...),
		FilePath: s.st.FilePath,
	}
	for i, o := range s.st.Objects {
		snap.Objects[i] = ObjectInfo{Name: o.Name, Kind: o.Kind, Location: o.Location}
	}
	return snap
}

// Object returns a copy of the named object.
func (s *Sim) Object(name string) (Object, bool) {
	o := s.object(name)
	if o == nil {
		return Object{}, false
	}
	c := *o
	c.Modifiers = append([]Modifier(nil), o.Modifiers...)
	c.Keyframes = append([]Keyframe(nil), o.Keyframes...)
	if o.Light != nil {
		l := *o.Light
		c.Light = &l
	}
	return c, true
}

// Material returns a copy of the named material.
func (s *Sim) Material(name string) (Material, bool) {
	m := s.material(name)
	if m == nil {
		return Material{}, false
	}
	c := Material{Name: m.Name, Links: append([]Link(nil), m.Links...)}
	for _, n := range m.Nodes {
		in := make(map[string]any, len(n.Inputs))
		for k, v := range n.Inputs {
			in[k] = v
		}
		c.Nodes = append(c.Nodes, Node{Name: n.Name, Type: n.Type, Inputs: in})
	}
	return c, true
}

// Select replaces the selection. Unknown names are an error.
func (s *Sim) Select(names ...string) error {
	for _, n := range names {
		if s.object(n) == nil {
			return fmt.Errorf("select %q: %w", n, ErrNoObject)
		}
	}
	s.st.Selected = append([]string(nil), names...)
	return nil
}

// FrameRange returns the scene frame range.
func (s *Sim) FrameRange() (start, end int) { return s.st.FrameStart, s.st.FrameEnd }

// ActiveCamera returns the name of the active camera, if any.
func (s *Sim) ActiveCamera() string { return s.st.ActiveCamera }

// Exports returns the exports performed so far.
func (s *Sim) Exports() []ExportRecord { return append([]ExportRecord(nil), s.st.Exports...) }

// Dirs returns the directories ensured so far.
func (s *Sim) Dirs() []string { return append([]string(nil), s.st.Dirs...) }

// Summary counts scene objects by kind.
type Summary struct {
	Objects   int    `json:"objects"`
	Meshes    int    `json:"meshes"`
	Lights    int    `json:"lights"`
	Cameras   int    `json:"cameras"`
	Materials int    `json:"materials"`
	Selected  int    `json:"selected"`
	FilePath  string `json:"file_path,omitempty"`
}

// Summary reports object counts.
func (s *Sim) Summary() Summary {
	sum := Summary{
		Objects:   len(s.st.Objects),
		Materials: len(s.st.Materials),
		Selected:  len(s.st.Selected),
		FilePath:  s.st.FilePath,
	}
	for _, o := range s.st.Objects {
		switch o.Kind {
		case KindMesh:
			sum.Meshes++
		case KindLight:
			sum.Lights++
		case KindCamera:
			sum.Cameras++
		}
	}
	return sum
}

// CreatePrimitive implements Scene.
func (s *Sim) CreatePrimitive(name, shape string, size float64, location model.Vec3) (string, error) {
	if !model.ValidShapes[shape] {
		return "", fmt.Errorf("create primitive: unknown shape %q: %w", shape, ErrBadValue)
	}
	if !finite(size) || size <= 0 {
		return "", fmt.Errorf("create primitive: size %g: %w", size, ErrBadValue)
	}
	if !location.Finite() {
		return "", fmt.Errorf("create primitive: location %s: %w", location, ErrBadValue)
	}
	if name == "" {
		name = strings.ToUpper(shape[:1]) + shape[1:]
	}
	return s.add(&Object{Name: name, Kind: KindMesh, Shape: shape, Size: size, Location: location}), nil
}

// AddModifier implements Scene.
func (s *Sim) AddModifier(object, modifier string, amount float64) error {
	o, err := s.mesh(object)
	if err != nil {
		return err
	}
	if modifier == "" || !finite(amount) || amount < 0 {
		return fmt.Errorf("add modifier %q: %w", modifier, ErrBadValue)
	}
	o.Modifiers = append(o.Modifiers, Modifier{Type: modifier, Amount: amount})
	return nil
}

// ShadeSmooth implements Scene.
func (s *Sim) ShadeSmooth(object string) error {
	o, err := s.mesh(object)
	if err != nil {
		return err
	}
	o.Smooth = true
	return nil
}

// SetLocation implements Scene.
func (s *Sim) SetLocation(object string, location model.Vec3) error {
	o := s.object(object)
	if o == nil {
		return fmt.Errorf("set location %q: %w", object, ErrNoObject)
	}
	if !location.Finite() {
		return fmt.Errorf("set location %q: %w", object, ErrBadValue)
	}
	o.Location = location
	return nil
}

// RemoveObject implements Scene.
func (s *Sim) RemoveObject(object string) error {
	for i, o := range s.st.Objects {
		if o.Name != object {
			continue
		}
		s.st.Objects = append(s.st.Objects[:i], s.st.Objects[i+1:]...)
		sel := s.st.Selected[:0]
		for _, n := range s.st.Selected {
			if n != object {
				sel = append(sel, n)
			}
		}
		s.st.Selected = sel
		if s.st.ActiveCamera == object {
			s.st.ActiveCamera = ""
		}
		return nil
	}
	return fmt.Errorf("remove %q: %w", object, ErrNoObject)
}

// NewMaterial implements Scene.
func (s *Sim) NewMaterial(name string) (string, error) {
	if name == "" {
		name = "Material"
	}
	name = unique(name, func(n string) bool { return s.material(n) != nil })
	s.st.Materials = append(s.st.Materials, &Material{Name: name})
	return name, nil
}

// AddShaderNode implements Scene.
func (s *Sim) AddShaderNode(material, nodeType string) (string, error) {
	m := s.material(material)
	if m == nil {
		return "", fmt.Errorf("add shader node to %q: %w", material, ErrNoMaterial)
	}
	if !strings.HasPrefix(nodeType, "ShaderNode") {
		return "", fmt.Errorf("add shader node %q: %w", nodeType, ErrBadValue)
	}
	name := unique(strings.TrimPrefix(nodeType, "ShaderNode"), func(n string) bool { return m.node(n) != nil })
	m.Nodes = append(m.Nodes, Node{Name: name, Type: nodeType, Inputs: map[string]any{}})
	return name, nil
}

// LinkShaderNodes implements Scene.
func (s *Sim) LinkShaderNodes(material, from, output, to, input string) error {
	m := s.material(material)
	if m == nil {
		return fmt.Errorf("link nodes in %q: %w", material, ErrNoMaterial)
	}
	for _, n := range []string{from, to} {
		if m.node(n) == nil {
			return fmt.Errorf("link nodes in %q: %q: %w", material, n, ErrNoNode)
		}
	}
	m.Links = append(m.Links, Link{From: from, Output: output, To: to, Input: input})
	return nil
}

// SetNodeInput implements Scene.
func (s *Sim) SetNodeInput(material, node, input string, value any) error {
	m := s.material(material)
	if m == nil {
		return fmt.Errorf("set input on %q: %w", material, ErrNoMaterial)
	}
	n := m.node(node)
	if n == nil {
		return fmt.Errorf("set input on %q: %q: %w", material, node, ErrNoNode)
	}
	if f, ok := value.(float64); ok && !finite(f) {
		return fmt.Errorf("set input %q: %w", input, ErrBadValue)
	}
	if n.Inputs == nil {
		n.Inputs = map[string]any{}
	}
	n.Inputs[input] = value
	return nil
}

// AssignMaterial implements Scene.
func (s *Sim) AssignMaterial(object, material string) error {
	o, err := s.mesh(object)
	if err != nil {
		return err
	}
	if s.material(material) == nil {
		return fmt.Errorf("assign %q: %w", material, ErrNoMaterial)
	}
	o.Material = material
	return nil
}

// AddCamera implements Scene.
func (s *Sim) AddCamera(name string, location, rotation model.Vec3) (string, error) {
	if !location.Finite() || !rotation.Finite() {
		return "", fmt.Errorf("add camera: %w", ErrBadValue)
	}
	if name == "" {
		name = "Camera"
	}
	return s.add(&Object{Name: name, Kind: KindCamera, Location: location, Rotation: rotation}), nil
}

// SetActiveCamera implements Scene.
func (s *Sim) SetActiveCamera(object string) error {
	o := s.object(object)
	if o == nil {
		return fmt.Errorf("set active camera %q: %w", object, ErrNoObject)
	}
	if o.Kind != KindCamera {
		return fmt.Errorf("set active camera %q: not a camera: %w", object, ErrBadValue)
	}
	s.st.ActiveCamera = object
	return nil
}

// AddLight implements Scene.
func (s *Sim) AddLight(name, lightType string, location model.Vec3, energy, size float64) (string, error) {
	switch lightType {
	case LightSun, LightArea, LightSpot, LightPoint:
	default:
		return "", fmt.Errorf("add light: type %q: %w", lightType, ErrBadValue)
	}
	if !location.Finite() || !finite(energy) || energy < 0 {
		return "", fmt.Errorf("add light: %w", ErrBadValue)
	}
	if name == "" {
		name = "Light"
	}
	return s.add(&Object{
		Name:     name,
		Kind:     KindLight,
		Location: location,
		Light:    &Light{Type: lightType, Energy: energy, Size: size},
	}), nil
}

// SetFrameRange implements Scene.
func (s *Sim) SetFrameRange(start, end int) error {
	if start < 0 || end < start {
		return fmt.Errorf("frame range %d..%d: %w", start, end, ErrBadValue)
	}
	s.st.FrameStart, s.st.FrameEnd = start, end
	return nil
}

// InsertKeyframe implements Scene. The keyed value is also applied to the object.
func (s *Sim) InsertKeyframe(object, path string, frame int, value model.Vec3) error {
	o := s.object(object)
	if o == nil {
		return fmt.Errorf("keyframe %q: %w", object, ErrNoObject)
	}
	if !value.Finite() {
		return fmt.Errorf("keyframe %q: %w", object, ErrBadValue)
	}
	switch path {
	case PathLocation:
		o.Location = value
	case PathRotation:
		o.Rotation = value
	default:
		return fmt.Errorf("keyframe %q: data path %q: %w", object, path, ErrBadValue)
	}
	o.Keyframes = append(o.Keyframes, Keyframe{Path: path, Frame: frame, Value: value})
	return nil
}

// EnsureDir implements Scene. Directories are recorded, not created.
func (s *Sim) EnsureDir(path string) error {
	if path == "" {
		return fmt.Errorf("ensure dir: empty path: %w", ErrBadValue)
	}
	for _, d := range s.st.Dirs {
		if d == path {
			return nil
		}
	}
	s.st.Dirs = append(s.st.Dirs, path)
	return nil
}

// Export implements Scene. The target directory must have been ensured first.
func (s *Sim) Export(path string, opts ExportOptions) error {
	dir := filepath.Dir(path)
	found := false
	for _, d := range s.st.Dirs {
		if d == dir {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("export %s: directory %s does not exist", path, dir)
	}
	if !finite(opts.Scale) || opts.Scale <= 0 {
		return fmt.Errorf("export %s: scale %g: %w", path, opts.Scale, ErrBadValue)
	}
	s.st.Exports = append(s.st.Exports, ExportRecord{Path: path, Options: opts, Objects: len(s.st.Objects)})
	return nil
}

func (s *Sim) add(o *Object) string {
	o.Name = unique(o.Name, func(n string) bool { return s.object(n) != nil })
	s.st.Objects = append(s.st.Objects, o)
	s.st.Selected = []string{o.Name}
	return o.Name
}

func (s *Sim) object(name string) *Object {
	for _, o := range s.st.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

func (s *Sim) mesh(name string) (*Object, error) {
	o := s.object(name)
	if o == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrNoObject)
	}
	if o.Kind != KindMesh {
		return nil, fmt.Errorf("%q is a %s, not a mesh: %w", name, o.Kind, ErrBadValue)
	}
	return o, nil
}

func (s *Sim) material(name string) *Material {
	for _, m := range s.st.Materials {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (m *Material) node(name string) *Node {
	for i := range m.Nodes {
		if m.Nodes[i].Name == name {
			return &m.Nodes[i]
		}
	}
	return nil
}

func unique(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		n := fmt.Sprintf("%s.%03d", name, i)
		if !taken(n) {
			return n
		}
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

package generate

import (
	"math"

	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

// Defaults applied when a parameter is absent from the prompt.
//
//	category        parameter      default
//	MeshCreate      shape          cube
//	MeshCreate      size           1 unit
//	MeshCreate      location       origin
//	MeshCreate      count          1, copies spaced CopySpacing sizes apart on +X
//	MaterialCreate  color          DefaultColor
//	MaterialCreate  material_type  none (principled defaults, roughness 0.5)
//	SceneLayout     preset         default (sun light, camera at 5,-5,3)
//	Animate         pattern        bounce
//	Export          engine         both unity and unreal
const (
	DefaultShape = model.ShapeCube
	DefaultSize  = 1.0
	CopySpacing  = 2.0
	NamePrefix   = "Generated_"
)

// DefaultLocation is the scene origin.
var DefaultLocation = model.Vec3{0, 0, 0}

// DefaultColor is the base color of a material with no color in the prompt.
var DefaultColor = model.Color{Name: "default", RGBA: [4]float64{0.8, 0.8, 0.8, 1}}

// Modifier settings applied on request.
const (
	SubsurfLevels = 2.0
	BevelWidth    = 0.1
)

type input struct {
	name  string
	value float64
}

// materialInputs are the principled BSDF settings per material type.
var materialInputs = map[string][]input{
	model.MaterialMetallic: {{"Metallic", 1}, {"Roughness", 0.1}},
	model.MaterialGlass:    {{"Transmission", 1}, {"Roughness", 0}, {"IOR", 1.45}},
	model.MaterialPlastic:  {{"Metallic", 0}, {"Roughness", 0.3}},
	model.MaterialRough:    {{"Metallic", 0}, {"Roughness", 0.9}},
	"":                     {{"Roughness", 0.5}},
}

// Grid layout.
const (
	GridColumns = 3
	GridSpacing = 3.0
)

// light is one light of a lighting preset.
type light struct {
	name     string
	kind     string
	location model.Vec3
	energy   float64
	size     float64
}

// Lighting presets.
const (
	PresetStudio   = "studio"
	PresetDramatic = "dramatic"
	PresetDefault  = "default"
)

var lightingPresets = map[string][]light{
	PresetStudio: {
		{"Key_Light", host.LightArea, model.Vec3{3, 0, 2}, 1000, 2},
		{"Fill_Light", host.LightArea, model.Vec3{-3, 0, 2}, 500, 2},
	},
	PresetDramatic: {
		{"Spot_Light", host.LightSpot, model.Vec3{0, 0, 5}, 2000, 0.5},
	},
	PresetDefault: {
		{"Sun", host.LightSun, model.Vec3{5, 5, 10}, 5, 0},
	},
}

// Camera presets.
const (
	CameraClose = "close"
	CameraFar   = "far"
)

var cameraPresets = map[string]model.Vec3{
	CameraClose:   {2, -2, 1.5},
	CameraFar:     {10, -10, 5},
	PresetDefault: {5, -5, 3},
}

// CameraRotation points a preset camera at the origin.
var CameraRotation = model.Vec3{1.1, 0, 0.785}

// Animation timing.
const (
	FPS             = 24
	DurationSeconds = 5
	FrameStart      = 1
	FrameEnd        = FrameStart + FPS*DurationSeconds - 1
	FrameMid        = FrameEnd / 2
	BounceHeight    = 2.0
)

// FullTurn is one rotation about Z, in radians.
const FullTurn = 2 * math.Pi

// exportPreset is the export configuration of a game engine.
type exportPreset struct {
	name  string
	scale float64
	bake  bool
}

// exportPresets in emission order.
var exportPresets = []exportPreset{
	{"unity", 1, false},
	{"unreal", 100, true},
}

// ExportSubdir is created beside a saved scene file.
const ExportSubdir = "exports"

// Package model defines the core data types shared by the router pipeline.
package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Vec3 is an (x, y, z) triple in scene units.
type Vec3 [3]float64

// Finite reports whether every component is a finite number.
func (v Vec3) Finite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}

// Color is a named color with its linear RGBA value.
type Color struct {
	Name string     `json:"name"`
	RGBA [4]float64 `json:"rgba"`
}

// Shapes are the primitive shapes the extractor recognizes.
const (
	ShapeCube     = "cube"
	ShapeSphere   = "sphere"
	ShapeCylinder = "cylinder"
	ShapeCone     = "cone"
	ShapePlane    = "plane"
	ShapeTorus    = "torus"
)

// Material types the extractor recognizes.
const (
	MaterialMetallic = "metallic"
	MaterialGlass    = "glass"
	MaterialPlastic  = "plastic"
	MaterialRough    = "rough"
)

// ValidShapes are the allowed values of the shape parameter.
var ValidShapes = map[string]bool{
	ShapeCube:     true,
	ShapeSphere:   true,
	ShapeCylinder: true,
	ShapeCone:     true,
	ShapePlane:    true,
	ShapeTorus:    true,
}

// ValidMaterials are the allowed values of the material_type parameter.
var ValidMaterials = map[string]bool{
	MaterialMetallic: true,
	MaterialGlass:    true,
	MaterialPlastic:  true,
	MaterialRough:    true,
}

// Parameter bounds. Values outside them are dropped at extraction time.
const (
	MaxSize  = 1000.0
	MaxCount = 64
)

// Params is the set of typed parameters detected in a prompt.
// A nil field means the parameter was not detected.
type Params struct {
	Shape    *string  `json:"shape,omitempty"`
	Size     *float64 `json:"size,omitempty"`
	Location *Vec3    `json:"location,omitempty"`
	Color    *Color   `json:"color,omitempty"`
	Material *string  `json:"material_type,omitempty"`
	Count    *int     `json:"count,omitempty"`
}

// Clone returns a copy that shares no pointers with p.
func (p Params) Clone() Params {
	return Params{
		Shape:    clonePtr(p.Shape),
		Size:     clonePtr(p.Size),
		Location: clonePtr(p.Location),
		Color:    clonePtr(p.Color),
		Material: clonePtr(p.Material),
		Count:    clonePtr(p.Count),
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Keys returns the names of the detected parameters, sorted.
func (p Params) Keys() []string {
	var keys []string
	if p.Shape != nil {
		keys = append(keys, "shape")
	}
	if p.Size != nil {
		keys = append(keys, "size")
	}
	if p.Location != nil {
		keys = append(keys, "location")
	}
	if p.Color != nil {
		keys = append(keys, "color")
	}
	if p.Material != nil {
		keys = append(keys, "material_type")
	}
	if p.Count != nil {
		keys = append(keys, "count")
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether no parameter was detected.
func (p Params) Empty() bool {
	return len(p.Keys()) == 0
}

// Validate checks every present value against the type its key expects.
func (p Params) Validate() error {
	var bad []string
	if p.Shape != nil && !ValidShapes[*p.Shape] {
		bad = append(bad, "shape")
	}
	if p.Size != nil && (math.IsNaN(*p.Size) || *p.Size <= 0 || *p.Size > MaxSize) {
		bad = append(bad, "size")
	}
	if p.Location != nil && !p.Location.Finite() {
		bad = append(bad, "location")
	}
	if p.Color != nil && p.Color.Name == "" {
		bad = append(bad, "color")
	}
	if p.Material != nil && !ValidMaterials[*p.Material] {
		bad = append(bad, "material_type")
	}
	if p.Count != nil && (*p.Count < 1 || *p.Count > MaxCount) {
		bad = append(bad, "count")
	}
	if len(bad) > 0 {
		return fmt.Errorf("invalid parameters: %s", strings.Join(bad, ", "))
	}
	return nil
}

package sandbox

import (
	"fmt"

	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

// handler performs one call against the scene and returns the id of what it
// created, if anything.
type handler func(host.Scene, model.Call) (string, error)

// creates lists the operations whose returned id is a scene object or material.
var creates = map[string]bool{
	host.OpCreatePrimitive: true,
	host.OpNewMaterial:     true,
	host.OpAddCamera:       true,
	host.OpAddLight:        true,
}

var handlers = map[string]handler{
	host.OpCreatePrimitive: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "name", "shape")
		sz := a.number(c, "size")
		loc := a.vec3(c, "location")
		if a.err != nil {
			return "", a.err
		}
		return s.CreatePrimitive(p[0], p[1], sz, loc)
	},
	host.OpAddModifier: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "object", "modifier")
		amount := a.number(c, "amount")
		if a.err != nil {
			return "", a.err
		}
		return "", s.AddModifier(p[0], p[1], amount)
	},
	host.OpShadeSmooth: func(s host.Scene, c model.Call) (string, error) {
		obj, err := c.String("object")
		if err != nil {
			return "", err
		}
		return "", s.ShadeSmooth(obj)
	},
	host.OpSetLocation: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "object")
		loc := a.vec3(c, "location")
		if a.err != nil {
			return "", a.err
		}
		return "", s.SetLocation(p[0], loc)
	},
	host.OpRemoveObject: func(s host.Scene, c model.Call) (string, error) {
		obj, err := c.String("object")
		if err != nil {
			return "", err
		}
		return "", s.RemoveObject(obj)
	},
	host.OpNewMaterial: func(s host.Scene, c model.Call) (string, error) {
		name, err := c.String("name")
		if err != nil {
			return "", err
		}
		return s.NewMaterial(name)
	},
	host.OpAddShaderNode: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "material", "type")
		if a.err != nil {
			return "", a.err
		}
		return s.AddShaderNode(p[0], p[1])
	},
	host.OpLinkShaderNodes: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "material", "from", "output", "to", "input")
		if a.err != nil {
			return "", a.err
		}
		return "", s.LinkShaderNodes(p[0], p[1], p[2], p[3], p[4])
	},
	host.OpSetNodeInput: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "material", "node", "input")
		if a.err != nil {
			return "", a.err
		}
		v, ok := c.Arg("value")
		if !ok {
			return "", fmt.Errorf("%s: missing argument %q", c.Op, "value")
		}
		return "", s.SetNodeInput(p[0], p[1], p[2], v)
	},
	host.OpAssignMaterial: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "object", "material")
		if a.err != nil {
			return "", a.err
		}
		return "", s.AssignMaterial(p[0], p[1])
	},
	host.OpAddCamera: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "name")
		loc, rot := a.vec3(c, "location"), a.vec3(c, "rotation")
		if a.err != nil {
			return "", a.err
		}
		return s.AddCamera(p[0], loc, rot)
	},
	host.OpSetActiveCamera: func(s host.Scene, c model.Call) (string, error) {
		obj, err := c.String("object")
		if err != nil {
			return "", err
		}
		return "", s.SetActiveCamera(obj)
	},
	host.OpAddLight: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "name", "type")
		loc := a.vec3(c, "location")
		energy, size := a.number(c, "energy"), a.number(c, "size")
		if a.err != nil {
			return "", a.err
		}
		return s.AddLight(p[0], p[1], loc, energy, size)
	},
	host.OpSetFrameRange: func(s host.Scene, c model.Call) (string, error) {
		var a args
		start, end := a.integer(c, "start"), a.integer(c, "end")
		if a.err != nil {
			return "", a.err
		}
		return "", s.SetFrameRange(start, end)
	},
	host.OpInsertKeyframe: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "object", "path")
		frame := a.integer(c, "frame")
		value := a.vec3(c, "value")
		if a.err != nil {
			return "", a.err
		}
		return "", s.InsertKeyframe(p[0], p[1], frame, value)
	},
	host.OpEnsureDir: func(s host.Scene, c model.Call) (string, error) {
		path, err := c.String("path")
		if err != nil {
			return "", err
		}
		return "", s.EnsureDir(path)
	},
	host.OpExportScene: func(s host.Scene, c model.Call) (string, error) {
		var a args
		p := a.strings(c, "path", "preset")
		scale := a.number(c, "scale")
		bake := a.flag(c, "bake_space_transform")
		if a.err != nil {
			return "", a.err
		}
		return "", s.Export(p[0], host.ExportOptions{Preset: p[1], Scale: scale, BakeSpaceTransform: bake})
	},
}

// args collects typed arguments and keeps the first decoding error.
type args struct{ err error }

func (a *args) strings(c model.Call, keys ...string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		v, err := c.String(k)
		a.keep(err)
		out[i] = v
	}
	return out
}

func (a *args) number(c model.Call, key string) float64 {
	v, err := c.Float(key)
	a.keep(err)
	return v
}

func (a *args) integer(c model.Call, key string) int {
	v, err := c.Int(key)
	a.keep(err)
	return v
}

func (a *args) flag(c model.Call, key string) bool {
	v, err := c.Bool(key)
	a.keep(err)
	return v
}

func (a *args) vec3(c model.Call, key string) model.Vec3 {
	v, err := c.Vec3(key)
	a.keep(err)
	return v
}

func (a *args) keep(err error) {
	if a.err == nil {
		a.err = err
	}
}

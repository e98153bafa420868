package generate

import (
	"strings"

	"github.com/rcliao/forgecore/internal/extract"
	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

func mesh(req Request) (model.Action, error) {
	p := req.Params
	shape, size, loc, count := DefaultShape, DefaultSize, DefaultLocation, 1
	if p.Shape != nil {
		shape = *p.Shape
	}
	if p.Size != nil {
		size = *p.Size
	}
	if p.Location != nil {
		loc = *p.Location
	}
	if p.Count != nil {
		count = *p.Count
	}

	smooth := extract.HasPhrase(req.Prompt, "smooth")
	bevel := extract.HasPhrase(req.Prompt, "bevel") || extract.HasPhrase(req.Prompt, "beveled")

	var calls []model.Call
	var objects []model.Ref
	for i := 0; i < count; i++ {
		obj := model.Ref(len(calls))
		objects = append(objects, obj)
		calls = append(calls, model.NewCall(host.OpCreatePrimitive,
			"name", NamePrefix+title(shape),
			"shape", shape,
			"size", size,
			"location", loc.Add(model.Vec3{float64(i) * size * CopySpacing, 0, 0}),
		))
		if smooth {
			calls = append(calls,
				model.NewCall(host.OpShadeSmooth, "object", obj),
				model.NewCall(host.OpAddModifier, "object", obj, "modifier", host.ModifierSubsurf, "amount", SubsurfLevels),
			)
		}
		if bevel {
			calls = append(calls, model.NewCall(host.OpAddModifier, "object", obj, "modifier", host.ModifierBevel, "amount", BevelWidth))
		}
	}

	if p.Color != nil || p.Material != nil {
		var mat model.Ref
		calls, mat = materialGraph(calls, p)
		for _, obj := range objects {
			calls = append(calls, model.NewCall(host.OpAssignMaterial, "object", obj, "material", mat))
		}
	}
	return model.NewAction(model.MeshCreate, calls), nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

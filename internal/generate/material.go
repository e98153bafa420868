package generate

import (
	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

func material(req Request) (model.Action, error) {
	calls, mat := materialGraph(nil, req.Params)
	for _, obj := range req.Snapshot.SelectedMeshes() {
		calls = append(calls, model.NewCall(host.OpAssignMaterial, "object", obj, "material", mat))
	}
	return model.NewAction(model.MaterialCreate, calls), nil
}

// materialGraph appends the calls building a principled material and returns
// a reference to the new material.
func materialGraph(calls []model.Call, p model.Params) ([]model.Call, model.Ref) {
	color := DefaultColor
	if p.Color != nil {
		color = *p.Color
	}
	kind := ""
	if p.Material != nil {
		kind = *p.Material
	}

	name := NamePrefix + "Material"
	if kind != "" {
		name += "_" + title(kind)
	}
	if p.Color != nil {
		name += "_" + title(color.Name)
	}

	mat := model.Ref(len(calls))
	out := model.Ref(len(calls) + 1)
	bsdf := model.Ref(len(calls) + 2)
	calls = append(calls,
		model.NewCall(host.OpNewMaterial, "name", name),
		model.NewCall(host.OpAddShaderNode, "material", mat, "type", host.NodeOutput),
		model.NewCall(host.OpAddShaderNode, "material", mat, "type", host.NodePrincipled),
		model.NewCall(host.OpLinkShaderNodes, "material", mat, "from", bsdf, "output", "BSDF", "to", out, "input", "Surface"),
		model.NewCall(host.OpSetNodeInput, "material", mat, "node", bsdf, "input", "Base Color", "value", color.RGBA),
	)
	for _, in := range materialInputs[kind] {
		calls = append(calls, model.NewCall(host.OpSetNodeInput, "material", mat, "node", bsdf, "input", in.name, "value", in.value))
	}
	return calls, mat
}

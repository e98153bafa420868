package generate

import (
	"github.com/rcliao/forgecore/internal/extract"
	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

var (
	lightingWords = []string{"light", "lights", "lighting", PresetStudio, PresetDramatic}
	cameraWords   = []string{"camera"}
	gridWords     = []string{"layout", "lay out", "arrange", "organize", "organise", "grid", "align"}
)

// layout emits, in order, the lighting rig, the camera and the grid
// arrangement the prompt asks for. A prompt naming none of them is a scene
// setup: camera and sun when missing, then the grid.
func layout(req Request) (model.Action, error) {
	prompt, snap := req.Prompt, req.Snapshot
	_, lighting := extract.FirstPhrase(prompt, lightingWords...)
	_, camera := extract.FirstPhrase(prompt, cameraWords...)
	_, grid := extract.FirstPhrase(prompt, gridWords...)

	var calls []model.Call
	if !lighting && !camera && !grid {
		if len(snap.OfKind(host.KindCamera)) == 0 {
			calls = addCamera(calls, cameraPresets[PresetDefault])
		}
		if len(snap.OfKind(host.KindLight)) == 0 {
			calls = addLights(calls, lightingPresets[PresetDefault])
		}
		return model.NewAction(model.SceneLayout, arrange(calls, snap)), nil
	}

	if lighting {
		for _, l := range snap.OfKind(host.KindLight) {
			calls = append(calls, model.NewCall(host.OpRemoveObject, "object", l))
		}
		preset, _ := extract.FirstPhrase(prompt, PresetStudio, PresetDramatic)
		if preset == "" {
			preset = PresetDefault
		}
		calls = addLights(calls, lightingPresets[preset])
	}
	if camera {
		preset, _ := extract.FirstPhrase(prompt, CameraClose, CameraFar)
		if preset == "" {
			preset = PresetDefault
		}
		loc := cameraPresets[preset]
		if cams := snap.OfKind(host.KindCamera); len(cams) > 0 {
			calls = append(calls,
				model.NewCall(host.OpSetLocation, "object", cams[0], "location", loc),
				model.NewCall(host.OpSetActiveCamera, "object", cams[0]),
			)
		} else {
			calls = addCamera(calls, loc)
		}
	}
	if grid {
		if len(gridTargets(snap)) == 0 {
			return model.Action{}, fail(model.SceneLayout, "no meshes in the scene to arrange")
		}
		calls = arrange(calls, snap)
	}
	return model.NewAction(model.SceneLayout, calls), nil
}

func addCamera(calls []model.Call, loc model.Vec3) []model.Call {
	cam := model.Ref(len(calls))
	return append(calls,
		model.NewCall(host.OpAddCamera, "name", "Camera", "location", loc, "rotation", CameraRotation),
		model.NewCall(host.OpSetActiveCamera, "object", cam),
	)
}

func addLights(calls []model.Call, lights []light) []model.Call {
	for _, l := range lights {
		calls = append(calls, model.NewCall(host.OpAddLight,
			"name", l.name,
			"type", l.kind,
			"location", l.location,
			"energy", l.energy,
			"size", l.size,
		))
	}
	return calls
}

// gridTargets are the selected meshes, or every mesh when none is selected.
func gridTargets(snap host.Snapshot) []string {
	if sel := snap.SelectedMeshes(); len(sel) > 0 {
		return sel
	}
	return snap.OfKind(host.KindMesh)
}

func arrange(calls []model.Call, snap host.Snapshot) []model.Call {
	for i, obj := range gridTargets(snap) {
		row, col := i/GridColumns, i%GridColumns
		loc := model.Vec3{float64(col) * GridSpacing, float64(row) * GridSpacing, 0}
		calls = append(calls, model.NewCall(host.OpSetLocation, "object", obj, "location", loc))
	}
	return calls
}

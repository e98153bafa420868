package generate

import (
	"github.com/rcliao/forgecore/internal/extract"
	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

var spinWords = []string{"spin", "spinning", "spins", "rotate", "rotating", "rotation", "turn", "turntable"}

func animate(req Request) (model.Action, error) {
	targets := req.Snapshot.SelectedMeshes()
	if len(targets) == 0 {
		return model.Action{}, fail(model.Animate, "no mesh is selected")
	}
	_, spin := extract.FirstPhrase(req.Prompt, spinWords...)

	calls := []model.Call{model.NewCall(host.OpSetFrameRange, "start", FrameStart, "end", FrameEnd)}
	for _, obj := range targets {
		if spin {
			calls = append(calls,
				keyframe(obj, host.PathRotation, FrameStart, model.Vec3{}),
				keyframe(obj, host.PathRotation, FrameEnd, model.Vec3{0, 0, FullTurn}),
			)
			continue
		}
		base := DefaultLocation
		if o, ok := req.Snapshot.Object(obj); ok {
			base = o.Location
		}
		calls = append(calls,
			keyframe(obj, host.PathLocation, FrameStart, base),
			keyframe(obj, host.PathLocation, FrameMid, base.Add(model.Vec3{0, 0, BounceHeight})),
			keyframe(obj, host.PathLocation, FrameEnd, base),
		)
	}
	return model.NewAction(model.Animate, calls), nil
}

func keyframe(obj, path string, frame int, value model.Vec3) model.Call {
	return model.NewCall(host.OpInsertKeyframe, "object", obj, "path", path, "frame", frame, "value", value)
}

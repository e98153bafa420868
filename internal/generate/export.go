package generate

import (
	"path/filepath"
	"strings"

	"github.com/rcliao/forgecore/internal/extract"
	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

func exportScene(req Request) (model.Action, error) {
	var presets []exportPreset
	for _, p := range exportPresets {
		if extract.HasPhrase(req.Prompt, p.name) {
			presets = append(presets, p)
		}
	}
	if len(presets) == 0 {
		presets = exportPresets
	}

	dir, base := req.ExportDir, "scene"
	if fp := req.Snapshot.FilePath; fp != "" {
		dir = filepath.Join(filepath.Dir(fp), ExportSubdir)
		base = strings.TrimSuffix(filepath.Base(fp), filepath.Ext(fp))
	}
	if dir == "" {
		return model.Action{}, fail(model.Export, "scene has not been saved and no export directory is configured")
	}

	calls := []model.Call{model.NewCall(host.OpEnsureDir, "path", dir)}
	for _, p := range presets {
		calls = append(calls, model.NewCall(host.OpExportScene,
			"path", filepath.Join(dir, base+"_"+p.name+".fbx"),
			"preset", p.name,
			"scale", p.scale,
			"bake_space_transform", p.bake,
		))
	}
	return model.NewAction(model.Export, calls), nil
}

package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/forgecore/internal/model"
)

func TestSimNamesAreUnique(t *testing.T) {
	s := NewSim()
	a, err := s.CreatePrimitive("Generated_Cube", model.ShapeCube, 1, model.Vec3{})
	require.NoError(t, err)
	b, err := s.CreatePrimitive("Generated_Cube", model.ShapeCube, 1, model.Vec3{3, 0, 0})
	require.NoError(t, err)
	c, err := s.CreatePrimitive("", model.ShapeSphere, 2, model.Vec3{})
	require.NoError(t, err)

	assert.Equal(t, "Generated_Cube", a)
	assert.Equal(t, "Generated_Cube.001", b)
	assert.Equal(t, "Sphere", c)
	assert.Equal(t, []string{"Sphere"}, s.Snapshot().Selected)
}

func TestSimRejectsBadInput(t *testing.T) {
	s := NewSim()
	_, err := s.CreatePrimitive("x", "pyramid", 1, model.Vec3{})
	assert.ErrorIs(t, err, ErrBadValue)
	_, err = s.CreatePrimitive("x", model.ShapeCube, -1, model.Vec3{})
	assert.ErrorIs(t, err, ErrBadValue)
	assert.ErrorIs(t, s.ShadeSmooth("ghost"), ErrNoObject)
	assert.ErrorIs(t, s.AssignMaterial("ghost", "m"), ErrNoObject)

	cam, err := s.AddCamera("", model.Vec3{}, model.Vec3{})
	require.NoError(t, err)
	assert.ErrorIs(t, s.ShadeSmooth(cam), ErrBadValue, "cameras are not meshes")
	assert.Equal(t, 0, s.Summary().Meshes)
}

func TestSimMaterialGraph(t *testing.T) {
	s := NewSim()
	obj, err := s.CreatePrimitive("", model.ShapeCube, 1, model.Vec3{})
	require.NoError(t, err)

	mat, err := s.NewMaterial("Generated_Material")
	require.NoError(t, err)
	out, err := s.AddShaderNode(mat, "ShaderNodeOutputMaterial")
	require.NoError(t, err)
	node, err := s.AddShaderNode(mat, "ShaderNodeBsdfPrincipled")
	require.NoError(t, err)
	assert.Equal(t, "BsdfPrincipled", node)
	require.NoError(t, s.LinkShaderNodes(mat, node, "BSDF", out, "Surface"))
	require.NoError(t, s.SetNodeInput(mat, node, "Metallic", 1.0))
	require.NoError(t, s.AssignMaterial(obj, mat))

	m, ok := s.Material(mat)
	require.True(t, ok)
	assert.Len(t, m.Nodes, 2)
	assert.Equal(t, 1.0, m.Nodes[1].Inputs["Metallic"])
	assert.ErrorIs(t, s.LinkShaderNodes(mat, "nope", "BSDF", node, "x"), ErrNoNode)

	o, _ := s.Object(obj)
	assert.Equal(t, mat, o.Material)
}

func TestSimRemoveClearsSelectionAndCamera(t *testing.T) {
	s := NewSim()
	cam, err := s.AddCamera("Camera", model.Vec3{5, -5, 3}, model.Vec3{})
	require.NoError(t, err)
	require.NoError(t, s.SetActiveCamera(cam))

	require.NoError(t, s.RemoveObject(cam))
	assert.Empty(t, s.Snapshot().Selected)
	assert.Empty(t, s.ActiveCamera())
	assert.ErrorIs(t, s.RemoveObject(cam), ErrNoObject)
}

func TestSimExportNeedsDir(t *testing.T) {
	s := NewSim()
	opts := ExportOptions{Preset: "unity", Scale: 1}
	require.Error(t, s.Export("/tmp/out/scene_unity.fbx", opts))

	require.NoError(t, s.EnsureDir("/tmp/out"))
	require.NoError(t, s.EnsureDir("/tmp/out"))
	require.NoError(t, s.Export("/tmp/out/scene_unity.fbx", opts))
	assert.Len(t, s.Dirs(), 1)
	assert.Len(t, s.Exports(), 1)
}

func TestSimSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")

	s, err := LoadSim(path)
	require.NoError(t, err, "missing file is an empty scene")
	assert.Empty(t, s.Snapshot().FilePath)

	_, err = s.CreatePrimitive("", model.ShapeTorus, 1, model.Vec3{1, 2, 3})
	require.NoError(t, err)
	_, err = s.AddLight("", LightSun, model.Vec3{5, 5, 10}, 5, 0)
	require.NoError(t, err)
	require.NoError(t, s.Save(path))

	loaded, err := LoadSim(path)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), loaded.Snapshot())
	assert.Equal(t, Summary{Objects: 2, Meshes: 1, Lights: 1, Selected: 1, FilePath: path}, loaded.Summary())

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadSim(path)
	assert.Error(t, err)
}

func TestSnapshotSelectedMeshes(t *testing.T) {
	snap := Snapshot{
		Objects: []ObjectInfo{
			{Name: "Cube", Kind: KindMesh},
			{Name: "Light", Kind: KindLight},
			{Name: "Cone", Kind: KindMesh},
		},
		Selected: []string{"Cone", "Light", "Gone"},
	}
	assert.Equal(t, []string{"Cone"}, snap.SelectedMeshes())
	assert.Equal(t, []string{"Cube", "Cone"}, snap.OfKind(KindMesh))
}

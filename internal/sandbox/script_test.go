package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

func TestRenderReferencesEarlierResults(t *testing.T) {
	a := generated(t, model.MeshCreate, "create a blue cube", host.Snapshot{})
	src := Render(a)

	assert.Contains(t, src, `import "forgecore/host"`)
	assert.Contains(t, src, `v0, err := host.Call("create_primitive", "name", "Generated_Cube", "shape", "cube", "size", 1.0, "location", host.Vec(0.0, 0.0, 0.0))`)
	assert.Contains(t, src, `host.RGBA(0.0, 0.0, 1.0, 1.0)`)
	assert.Contains(t, src, `host.Call("assign_material", "object", v0, "material", v1)`)
	require.NoError(t, CheckImports(src))
}

func TestScriptModeMatchesDirectMode(t *testing.T) {
	for _, prompt := range []string{"create three smooth red cubes", "create a glass torus at 1 2 3"} {
		t.Run(prompt, func(t *testing.T) {
			direct, script := host.NewSim(), host.NewSim()
			a := generated(t, model.MeshCreate, prompt, direct.Snapshot())

			dres := New(direct).Execute(a)
			sres := New(script, WithMode(ModeScript)).Execute(a)

			require.True(t, dres.OK(), dres.Detail)
			require.True(t, sres.OK(), sres.Detail)
			assert.Equal(t, dres.Affected, sres.Affected)
			assert.Equal(t, a.Len(), dres.Calls)
			assert.Equal(t, dres.Calls, sres.Calls)
			assert.Equal(t, direct.Snapshot(), script.Snapshot())
		})
	}
}

func TestScriptFailureStops(t *testing.T) {
	sim := host.NewSim()
	src := `package main

import "forgecore/host"

func Run() error {
	if _, err := host.Call("create_primitive", "name", "A", "shape", "cube", "size", 1.0, "location", host.Vec(0.0, 0.0, 0.0)); err != nil {
		return err
	}
	if _, err := host.Call("shade_smooth", "object", "Ghost"); err != nil {
		return err
	}
	_, err := host.Call("create_primitive", "name", "B", "shape", "cube", "size", 1.0, "location", host.Vec(0.0, 0.0, 0.0))
	return err
}
`
	res := New(sim).ExecuteScript(src)
	assert.False(t, res.OK())
	assert.Equal(t, model.KindExecutionFailure, res.Kind)
	assert.Contains(t, res.Message, "call 2")
	assert.Equal(t, []string{"A"}, res.Affected)
	assert.Equal(t, 1, res.Calls)
	assert.Equal(t, 1, sim.Summary().Objects)
}

func TestScriptImportAllowlist(t *testing.T) {
	src := `package main

import (
	"os"
	"forgecore/host"
)

func Run() error {
	_ = host.Vec
	return os.RemoveAll("/")
}
`
	assert.Error(t, CheckImports(src))
	res := New(host.NewSim()).ExecuteScript(src)
	assert.False(t, res.OK())
	assert.Equal(t, "Script rejected", res.Message)
	assert.Contains(t, res.Detail, `"os"`)
}

func TestScriptCompileErrors(t *testing.T) {
	res := New(host.NewSim()).ExecuteScript("package main\n\nfunc Run() error { return nope }\n")
	assert.False(t, res.OK())

	res = New(host.NewSim()).ExecuteScript("package main\n\nfunc Run() int { return 1 }\n")
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "signature")
}

func TestFloatLiteral(t *testing.T) {
	assert.Equal(t, "2.0", floatLit(2))
	assert.Equal(t, "0.785", floatLit(0.785))
	assert.Equal(t, "-3.0", floatLit(-3))
	assert.Equal(t, "1e+21", floatLit(1e21))
}

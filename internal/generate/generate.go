// Package generate turns a classified prompt into the ordered host calls
// that carry it out.
//
// Generators are pure: they read the scene snapshot in the request and
// never touch the host. Defaults for absent parameters live in defaults.go.
package generate

import (
	"fmt"

	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

// Request is everything a generator may look at.
type Request struct {
	Category model.Category
	Prompt   string
	Params   model.Params
	Snapshot host.Snapshot
	// ExportDir is used for exports when the scene has never been saved.
	ExportDir string
}

// Error reports parameters that are insufficient or contradictory for a category.
type Error struct {
	Category model.Category
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("generate %s: %s", e.Category, e.Reason)
}

func fail(c model.Category, format string, args ...any) error {
	return &Error{Category: c, Reason: fmt.Sprintf(format, args...)}
}

// Func generates the action for one category.
type Func func(Request) (model.Action, error)

type entry struct {
	category model.Category
	gen      Func
}

// generators is the static category table, in classifier priority order.
var generators = []entry{
	{model.Export, exportScene},
	{model.Animate, animate},
	{model.MaterialCreate, material},
	{model.SceneLayout, layout},
	{model.MeshCreate, mesh},
	{model.JournalEntry, journal},
}

// Generate dispatches the request to the generator of its category.
func Generate(req Request) (model.Action, error) {
	for _, e := range generators {
		if e.category == req.Category {
			return e.gen(req)
		}
	}
	return model.Action{}, fail(req.Category, "no generator for category")
}

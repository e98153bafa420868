package sandbox

import (
	"fmt"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
	"go.uber.org/zap"

	"github.com/rcliao/forgecore/internal/model"
)

// ScriptImport is the only package a script may import.
const ScriptImport = "forgecore/host"

var allowedImports = map[string]bool{ScriptImport: true}

// Render writes the action as a Go program whose Run function performs the
// calls in order and returns the first error. Results of calls referenced
// later are kept in variables v<index>.
func Render(a model.Action) string {
	calls := a.Calls()
	used := map[int]bool{}
	for _, c := range calls {
		for _, arg := range c.Args {
			if ref, ok := arg.Value.(model.Ref); ok {
				used[int(ref)] = true
			}
		}
	}

	var b strings.Builder
	b.WriteString("package main\n\nimport \"" + ScriptImport + "\"\n\nfunc Run() error {\n")
	for i, c := range calls {
		expr := callExpr(c)
		if used[i] {
			fmt.Fprintf(&b, "\tv%d, err := %s\n\tif err != nil {\n\t\treturn err\n\t}\n", i, expr)
			continue
		}
		fmt.Fprintf(&b, "\tif _, err := %s; err != nil {\n\t\treturn err\n\t}\n", expr)
	}
	b.WriteString("\treturn nil\n}\n")
	return b.String()
}

func callExpr(c model.Call) string {
	parts := []string{strconv.Quote(c.Op)}
	for _, a := range c.Args {
		parts = append(parts, strconv.Quote(a.Key), literal(a.Value))
	}
	return "host.Call(" + strings.Join(parts, ", ") + ")"
}

func literal(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		return floatLit(x)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case model.Ref:
		return fmt.Sprintf("v%d", int(x))
	case model.Vec3:
		return fmt.Sprintf("host.Vec(%s, %s, %s)", floatLit(x[0]), floatLit(x[1]), floatLit(x[2]))
	case [4]float64:
		return fmt.Sprintf("host.RGBA(%s, %s, %s, %s)", floatLit(x[0]), floatLit(x[1]), floatLit(x[2]), floatLit(x[3]))
	}
	return strconv.Quote(fmt.Sprint(v))
}

// floatLit formats f so the interpreter types it as float64.
func floatLit(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// CheckImports rejects scripts importing anything outside the host binding.
func CheckImports(src string) error {
	f, err := parser.ParseFile(token.NewFileSet(), "action.go", src, parser.ImportsOnly)
	if err != nil {
		return fmt.Errorf("parse script: %w", err)
	}
	var forbidden []string
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || !allowedImports[path] {
			forbidden = append(forbidden, imp.Path.Value)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports: %s", strings.Join(forbidden, ", "))
	}
	return nil
}

// ExecuteScript interprets a script produced by Render (or written by hand
// against the same binding) in a single tick. The script must define
// func Run() error.
func (s *Sandbox) ExecuteScript(src string) (res model.Result) {
	var aff affected
	calls, done := 0, 0
	defer func() {
		if p := recover(); p != nil {
			res = model.Failed(model.KindExecutionFailure, "Script panicked", fmt.Sprint(p))
			res.Affected, res.Calls = aff.list(), done
		}
	}()

	if err := CheckImports(src); err != nil {
		return model.Failed(model.KindExecutionFailure, "Script rejected", err.Error())
	}

	call := func(op string, kv ...any) (string, error) {
		c := model.NewCall(op, kv...)
		calls++
		id, err := s.call(c)
		if err != nil {
			return "", err
		}
		done++
		aff.note(c, id)
		return id, nil
	}

	i := interp.New(interp.Options{})
	if err := i.Use(interp.Exports{
		ScriptImport + "/host": {
			"Call": reflect.ValueOf(call),
			"Vec":  reflect.ValueOf(func(x, y, z float64) model.Vec3 { return model.Vec3{x, y, z} }),
			"RGBA": reflect.ValueOf(func(r, g, b, a float64) [4]float64 { return [4]float64{r, g, b, a} }),
		},
	}); err != nil {
		return model.Failed(model.KindExecutionFailure, "Script binding failed", err.Error())
	}
	if _, err := i.Eval(src); err != nil {
		return model.Failed(model.KindExecutionFailure, "Script did not compile", err.Error())
	}
	v, err := i.Eval("main.Run")
	if err != nil {
		return model.Failed(model.KindExecutionFailure, "Script has no Run function", err.Error())
	}
	run, ok := v.Interface().(func() error)
	if !ok {
		return model.Failed(model.KindExecutionFailure, "Script Run has the wrong signature", "want func() error")
	}

	if err := run(); err != nil {
		s.logger.Warn("script failed", zap.Int("calls", calls), zap.Error(err))
		res = model.Failed(model.KindExecutionFailure, fmt.Sprintf("Script failed at call %d", calls), err.Error())
		res.Affected, res.Calls = aff.list(), done
		return res
	}
	res = model.Succeeded(successMessage(calls), aff.list()...)
	res.Calls = done
	return res
}

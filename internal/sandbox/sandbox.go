// Package sandbox executes generated actions against a host scene.
//
// Calls run in order and stop at the first failure. Host errors and panics
// become a failed result; nothing escapes to the caller. Side effects of
// calls that completed before a failure are left in place.
package sandbox

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

// Execution modes.
const (
	ModeDirect = "direct"
	ModeScript = "script"
)

// DefaultBudget is the number of calls run per host tick.
const DefaultBudget = 32

// Sandbox runs actions on one scene. It is not safe for concurrent use;
// callers serialize access the way the host's main thread does.
type Sandbox struct {
	scene  host.Scene
	mode   string
	budget int
	logger *zap.Logger
}

// Option configures a Sandbox.
type Option func(*Sandbox)

// WithMode selects direct dispatch or interpreted scripts.
func WithMode(mode string) Option {
	return func(s *Sandbox) { s.mode = mode }
}

// WithBudget sets the number of calls Execute runs per tick.
func WithBudget(n int) Option {
	return func(s *Sandbox) {
		if n > 0 {
			s.budget = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sandbox) { s.logger = l }
}

// New returns a sandbox over scene.
func New(scene host.Scene, opts ...Option) *Sandbox {
	s := &Sandbox{scene: scene, mode: ModeDirect, budget: DefaultBudget, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Mode returns the execution mode.
func (s *Sandbox) Mode() string { return s.mode }

// Scene returns the scene the sandbox mutates.
func (s *Sandbox) Scene() host.Scene { return s.scene }

// Execute runs the whole action and returns its result. In direct mode it
// drives Run.Step with the configured budget; in script mode it renders the
// action and interprets it in a single tick.
func (s *Sandbox) Execute(a model.Action) model.Result {
	if s.mode == ModeScript {
		return s.ExecuteScript(Render(a))
	}
	r := s.Start(a)
	for !r.Step(s.budget) {
	}
	return r.Result()
}

// Run is an action being executed tick by tick.
type Run struct {
	sb       *Sandbox
	calls    []model.Call
	ids      []string
	next     int
	ticks    int
	affected affected
	result   *model.Result
}

// Start prepares a run of the action. No call is made until Step.
func (s *Sandbox) Start(a model.Action) *Run {
	calls := a.Calls()
	return &Run{sb: s, calls: calls, ids: make([]string, len(calls))}
}

// Step executes at most budget calls and reports whether the run is finished.
// A budget below one runs a single call.
func (r *Run) Step(budget int) bool {
	if r.result != nil {
		return true
	}
	if budget < 1 {
		budget = 1
	}
	r.ticks++
	for n := 0; n < budget && r.next < len(r.calls); n++ {
		i := r.next
		id, err := r.exec(i)
		if err != nil {
			res := model.Failed(model.KindExecutionFailure,
				fmt.Sprintf("Step %d of %d (%s) failed", i+1, len(r.calls), r.calls[i].Op),
				err.Error())
			res.Affected, res.Calls = r.affected.list(), r.next
			r.result = &res
			r.sb.logger.Warn("call failed",
				zap.Int("step", i+1),
				zap.String("op", r.calls[i].Op),
				zap.Error(err))
			return true
		}
		r.ids[i] = id
		r.next++
	}
	if r.next < len(r.calls) {
		return false
	}
	res := model.Succeeded(successMessage(len(r.calls)), r.affected.list()...)
	res.Calls = r.next
	r.result = &res
	return true
}

// Done reports whether the run has finished.
func (r *Run) Done() bool { return r.result != nil }

// Ticks returns the number of Step calls that did work.
func (r *Run) Ticks() int { return r.ticks }

// Result returns the outcome. It is only meaningful once Done.
func (r *Run) Result() model.Result {
	if r.result == nil {
		res := model.Failed(model.KindExecutionFailure, "Action did not finish", fmt.Sprintf("%d of %d calls executed", r.next, len(r.calls)))
		res.Calls = r.next
		return res
	}
	return *r.result
}

func (r *Run) exec(i int) (string, error) {
	c, err := r.resolve(i)
	if err != nil {
		return "", err
	}
	id, err := r.sb.call(c)
	if err != nil {
		return "", err
	}
	r.affected.note(c, id)
	return id, nil
}

// resolve replaces Ref arguments with the ids returned by earlier calls.
func (r *Run) resolve(i int) (model.Call, error) {
	c := r.calls[i]
	for _, a := range c.Args {
		ref, ok := a.Value.(model.Ref)
		if !ok {
			continue
		}
		j := int(ref)
		if j < 0 || j >= i {
			return c, fmt.Errorf("%s: argument %q refers to call %d, which has not run", c.Op, a.Key, j+1)
		}
		if r.ids[j] == "" {
			return c, fmt.Errorf("%s: argument %q refers to call %d (%s), which returned no id", c.Op, a.Key, j+1, r.calls[j].Op)
		}
		c = c.With(a.Key, r.ids[j])
	}
	return c, nil
}

// call dispatches one resolved call, converting a host panic into an error.
func (s *Sandbox) call(c model.Call) (id string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: host panic: %v", c.Op, p)
		}
	}()
	h, ok := handlers[c.Op]
	if !ok {
		return "", fmt.Errorf("unknown operation %q", c.Op)
	}
	s.logger.Debug("host call", zap.String("op", c.Op), zap.Int("args", len(c.Args)))
	return h(s.scene, c)
}

func successMessage(n int) string {
	switch n {
	case 0:
		return "Nothing to execute"
	case 1:
		return "Executed 1 operation"
	}
	return fmt.Sprintf("Executed %d operations", n)
}

// affected collects the ids of objects and materials touched by a run,
// in first-touched order.
type affected struct {
	ids  []string
	seen map[string]bool
}

func (a *affected) note(c model.Call, id string) {
	if creates[c.Op] {
		a.add(id)
	}
	if obj, err := c.String("object"); err == nil {
		a.add(obj)
	}
}

func (a *affected) add(id string) {
	if id == "" {
		return
	}
	if a.seen == nil {
		a.seen = map[string]bool{}
	}
	if !a.seen[id] {
		a.seen[id] = true
		a.ids = append(a.ids, id)
	}
}

func (a *affected) list() []string {
	return append([]string(nil), a.ids...)
}

package model

import "fmt"

// Ref refers to the object id returned by an earlier call of the same action.
// The sandbox resolves it at execution time.
type Ref int

// Arg is a single keyword argument of a host call.
// Value is one of float64, int, bool, string, Vec3, [4]float64 or Ref.
type Arg struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Call is one atomic host-API operation.
type Call struct {
	Op   string `json:"op"`
	Args []Arg  `json:"args,omitempty"`
}

// NewCall builds a call from alternating key/value pairs.
func NewCall(op string, kv ...any) Call {
	c := Call{Op: op}
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		c.Args = append(c.Args, Arg{Key: key, Value: kv[i+1]})
	}
	return c
}

func (c Call) clone() Call {
	out := Call{Op: c.Op}
	if c.Args != nil {
		out.Args = append([]Arg(nil), c.Args...)
	}
	return out
}

// Arg returns the raw value of the named argument.
func (c Call) Arg(key string) (any, bool) {
	for _, a := range c.Args {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// With returns a copy of the call with the named argument replaced.
func (c Call) With(key string, value any) Call {
	out := c.clone()
	for i := range out.Args {
		if out.Args[i].Key == key {
			out.Args[i].Value = value
			return out
		}
	}
	out.Args = append(out.Args, Arg{Key: key, Value: value})
	return out
}

func (c Call) missing(key string) error {
	return fmt.Errorf("%s: missing argument %q", c.Op, key)
}

func (c Call) wrongType(key, want string, got any) error {
	return fmt.Errorf("%s: argument %q is %T, want %s", c.Op, key, got, want)
}

// Float returns a numeric argument.
func (c Call) Float(key string) (float64, error) {
	v, ok := c.Arg(key)
	if !ok {
		return 0, c.missing(key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, c.wrongType(key, "number", v)
}

// Int returns an integer argument.
func (c Call) Int(key string) (int, error) {
	v, ok := c.Arg(key)
	if !ok {
		return 0, c.missing(key)
	}
	n, ok := v.(int)
	if !ok {
		return 0, c.wrongType(key, "int", v)
	}
	return n, nil
}

// String returns a string argument.
func (c Call) String(key string) (string, error) {
	v, ok := c.Arg(key)
	if !ok {
		return "", c.missing(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", c.wrongType(key, "string", v)
	}
	return s, nil
}

// Bool returns a boolean argument.
func (c Call) Bool(key string) (bool, error) {
	v, ok := c.Arg(key)
	if !ok {
		return false, c.missing(key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, c.wrongType(key, "bool", v)
	}
	return b, nil
}

// Vec3 returns a vector argument.
func (c Call) Vec3(key string) (Vec3, error) {
	v, ok := c.Arg(key)
	if !ok {
		return Vec3{}, c.missing(key)
	}
	vec, ok := v.(Vec3)
	if !ok {
		return Vec3{}, c.wrongType(key, "vec3", v)
	}
	return vec, nil
}

// RGBA returns a color argument.
func (c Call) RGBA(key string) ([4]float64, error) {
	v, ok := c.Arg(key)
	if !ok {
		return [4]float64{}, c.missing(key)
	}
	rgba, ok := v.([4]float64)
	if !ok {
		return [4]float64{}, c.wrongType(key, "rgba", v)
	}
	return rgba, nil
}

// Journal directive kinds.
const (
	DirectiveGoal     = "goal"
	DirectiveProgress = "progress"
	DirectiveNote     = "note"
	DirectiveShow     = "show"
)

// JournalDirective is what a journal prompt asks the memory store to record.
type JournalDirective struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// Action is the ordered, immutable sequence of host calls generated for one prompt.
type Action struct {
	category Category
	calls    []Call
	journal  *JournalDirective
}

// NewAction copies calls into a new action.
func NewAction(category Category, calls []Call) Action {
	a := Action{category: category, calls: make([]Call, len(calls))}
	for i, c := range calls {
		a.calls[i] = c.clone()
	}
	return a
}

// NewJournalAction builds an action with no host calls that carries a journal directive.
func NewJournalAction(d JournalDirective) Action {
	return Action{category: JournalEntry, journal: &d}
}

// Category returns the category the action was generated for.
func (a Action) Category() Category { return a.category }

// Len returns the number of calls.
func (a Action) Len() int { return len(a.calls) }

// Call returns a copy of the i-th call.
func (a Action) Call(i int) Call { return a.calls[i].clone() }

// Calls returns a copy of all calls.
func (a Action) Calls() []Call {
	out := make([]Call, len(a.calls))
	for i, c := range a.calls {
		out[i] = c.clone()
	}
	return out
}

// Ops returns the operation names in order.
func (a Action) Ops() []string {
	ops := make([]string, len(a.calls))
	for i, c := range a.calls {
		ops[i] = c.Op
	}
	return ops
}

// Journal returns the journal directive, if any.
func (a Action) Journal() (JournalDirective, bool) {
	if a.journal == nil {
		return JournalDirective{}, false
	}
	return *a.journal, true
}

// ActionSummary is the persisted digest of a generated action.
type ActionSummary struct {
	Calls   int               `json:"calls"`
	Ops     []string          `json:"ops,omitempty"`
	Script  string            `json:"script,omitempty"`
	Journal *JournalDirective `json:"journal,omitempty"`
}

// Summary digests the action; script is the rendered program, if any.
func (a Action) Summary(script string) ActionSummary {
	s := ActionSummary{Calls: len(a.calls), Script: script}
	if len(a.calls) > 0 {
		s.Ops = a.Ops()
	}
	if a.journal != nil {
		d := *a.journal
		s.Journal = &d
	}
	return s
}

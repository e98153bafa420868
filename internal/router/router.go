// Package router is the single entry point that turns a prompt into a
// result: extract, classify, generate, execute, journal.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rcliao/forgecore/internal/extract"
	"github.com/rcliao/forgecore/internal/generate"
	"github.com/rcliao/forgecore/internal/intent"
	"github.com/rcliao/forgecore/internal/journal"
	"github.com/rcliao/forgecore/internal/metrics"
	"github.com/rcliao/forgecore/internal/model"
	"github.com/rcliao/forgecore/internal/sandbox"
)

// Journal is the part of the memory store the router writes to.
type Journal interface {
	Append(model.Entry) (model.Entry, error)
	Goal() (model.JournalGoal, error)
}

// Router routes prompts. It is not safe for concurrent use.
type Router struct {
	sandbox   *sandbox.Sandbox
	journal   Journal
	exportDir string
	logger    *zap.Logger
	metrics   *metrics.Metrics
	entropy   io.Reader
	now       func() time.Time
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(r *Router) { r.logger = l } }

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option { return func(r *Router) { r.metrics = m } }

// WithExportDir sets where unsaved scenes are exported.
func WithExportDir(dir string) Option { return func(r *Router) { r.exportDir = dir } }

// New returns a router executing on sb and journaling to j.
func New(sb *sandbox.Sandbox, j Journal, opts ...Option) *Router {
	r := &Router{
		sandbox: sb,
		journal: j,
		logger:  zap.NewNop(),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Router) newID() string {
	return ulid.MustNew(ulid.Timestamp(r.now()), r.entropy).String()
}

// Route handles one prompt and always returns a result; failures are
// reported in it, never raised. Exactly one journal entry is appended per
// call unless the journal itself fails, in which case the reason is in
// Result.JournalError.
func (r *Router) Route(ctx context.Context, prompt string) model.Result {
	start := r.now()
	reqID := r.newID()
	log := r.logger.With(zap.String("request_id", reqID))

	params := extract.Extract(prompt)
	category, match := intent.Explain(prompt)
	log.Debug("classified",
		zap.String("category", category.String()),
		zap.String("keyword", match.Phrase),
		zap.Strings("params", params.Keys()))

	entry := model.Entry{
		RequestID: reqID,
		Kind:      model.KindRoute,
		Prompt:    prompt,
		Category:  category,
		Params:    params,
	}

	var (
		res   model.Result
		calls int
	)
	switch {
	case ctx.Err() != nil:
		res = model.Failed(model.KindExecutionFailure, "Request cancelled before execution", ctx.Err().Error())
	case category == model.Unknown:
		res = model.Failed(model.KindUnclassifiedIntent, model.NotUnderstood, "")
	default:
		action, err := r.generate(prompt, category, params)
		if err != nil {
			res = model.Failed(model.KindGenerationError, fmt.Sprintf("Could not build a %s action", category), err.Error())
			break
		}
		script := ""
		if action.Len() > 0 {
			script = sandbox.Render(action)
		}
		summary := action.Summary(script)
		entry.Action = &summary

		if d, ok := action.Journal(); ok {
			return r.finish(log, start, r.applyJournal(log, entry, d), 0)
		}
		res = r.sandbox.Execute(action)
		calls = res.Calls
	}

	res.Category, res.RequestID = category, reqID
	stored := res
	entry.Result = &stored
	if e, err := r.journal.Append(entry); err != nil {
		res = r.journalFailed(log, res, err)
	} else {
		res.EntryID = e.ID
	}
	return r.finish(log, start, res, calls)
}

func (r *Router) generate(prompt string, category model.Category, params model.Params) (model.Action, error) {
	return generate.Generate(generate.Request{
		Category:  category,
		Prompt:    prompt,
		Params:    params,
		Snapshot:  r.sandbox.Scene().Snapshot(),
		ExportDir: r.exportDir,
	})
}

// Plan is what Route would do for a prompt.
type Plan struct {
	Category model.Category          `json:"category"`
	Keyword  string                  `json:"keyword,omitempty"`
	Params   model.Params            `json:"params"`
	Calls    []model.Call            `json:"calls,omitempty"`
	Script   string                  `json:"script,omitempty"`
	Journal  *model.JournalDirective `json:"journal,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Plan extracts, classifies and generates without executing or journaling.
func (r *Router) Plan(prompt string) Plan {
	category, match := intent.Explain(prompt)
	p := Plan{Category: category, Keyword: match.Phrase, Params: extract.Extract(prompt)}
	if category == model.Unknown {
		p.Error = model.NotUnderstood
		return p
	}
	action, err := r.generate(prompt, category, p.Params)
	if err != nil {
		p.Error = err.Error()
		return p
	}
	p.Calls = action.Calls()
	if action.Len() > 0 {
		p.Script = sandbox.Render(action)
	}
	if d, ok := action.Journal(); ok {
		p.Journal = &d
	}
	return p
}

// applyJournal records a journal directive. The directive's own entry is the
// audit record of the request.
func (r *Router) applyJournal(log *zap.Logger, entry model.Entry, d model.JournalDirective) model.Result {
	var res model.Result
	switch d.Kind {
	case model.DirectiveGoal:
		entry.Kind, entry.Goal = model.KindGoal, d.Text
		res = model.Succeeded("Goal set: " + d.Text)
	case model.DirectiveProgress:
		entry.Kind, entry.Note = model.KindProgress, d.Text
		res = model.Succeeded("Progress logged: " + d.Text)
	case model.DirectiveNote:
		entry.Note = d.Text
		res = model.Succeeded("Note saved")
	default:
		res = r.showGoal()
	}
	res.Category, res.RequestID = entry.Category, entry.RequestID
	stored := res
	entry.Result = &stored

	e, err := r.journal.Append(entry)
	if errors.Is(err, journal.ErrNoGoal) {
		res = model.Failed(model.KindGenerationError, "Set a goal before logging progress", err.Error())
		res.Category, res.RequestID = entry.Category, entry.RequestID
		stored = res
		entry.Kind, entry.Note = model.KindRoute, d.Text
		e, err = r.journal.Append(entry)
	}
	if err != nil {
		failed := model.Failed(model.KindStoreIOError, "Could not write the journal", err.Error())
		failed.Category, failed.RequestID = res.Category, res.RequestID
		return r.journalFailed(log, failed, err)
	}
	res.EntryID = e.ID
	return res
}

func (r *Router) showGoal() model.Result {
	g, err := r.journal.Goal()
	if err != nil {
		return model.Succeeded("No goal set")
	}
	days := make([]string, 0, len(g.Progress))
	for day := range g.Progress {
		days = append(days, day)
	}
	sort.Strings(days)

	var lines []string
	for _, day := range days {
		for _, n := range g.Progress[day] {
			lines = append(lines, fmt.Sprintf("%s #%d %s", day, n.EntryID, n.Text))
		}
	}
	res := model.Succeeded(fmt.Sprintf("Goal: %s (%d progress notes)", g.Text, len(lines)))
	res.Detail = strings.Join(lines, "\n")
	return res
}

func (r *Router) journalFailed(log *zap.Logger, res model.Result, err error) model.Result {
	log.Error("journal write failed", zap.Error(err))
	r.metrics.JournalError()
	res.JournalError = err.Error()
	return res
}

func (r *Router) finish(log *zap.Logger, start time.Time, res model.Result, calls int) model.Result {
	d := r.now().Sub(start)
	r.metrics.ObserveRoute(res.Category.String(), string(res.Status), d, calls)
	log.Info("routed",
		zap.String("category", res.Category.String()),
		zap.String("status", string(res.Status)),
		zap.Int64("entry_id", res.EntryID),
		zap.Duration("took", d))
	return res
}

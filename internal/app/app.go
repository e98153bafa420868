// Package app wires the scene, sandbox, journal, router and index together
// and serializes every use of them, the way the host runs all scene edits on
// its main thread.
package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rcliao/forgecore/internal/config"
	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/index"
	"github.com/rcliao/forgecore/internal/journal"
	"github.com/rcliao/forgecore/internal/metrics"
	"github.com/rcliao/forgecore/internal/model"
	"github.com/rcliao/forgecore/internal/router"
	"github.com/rcliao/forgecore/internal/sandbox"
)

// App is safe for concurrent use.
type App struct {
	mu        sync.Mutex
	cfg       *config.Config
	logger    *zap.Logger
	scene     *host.Sim
	journal   *journal.Store
	router    *router.Router
	metrics   *metrics.Metrics
	index     *index.Index
	scenePath string
}

// Open loads the saved scene and journal named by cfg.
func Open(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	scene, err := host.LoadSim(cfg.ScenePath())
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	store, err := journal.Open(cfg.JournalPath(), journal.WithLogger(logger.Named("journal")))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	m := metrics.New()
	sb := sandbox.New(scene,
		sandbox.WithMode(cfg.Sandbox.Mode),
		sandbox.WithBudget(cfg.Sandbox.TickBudget),
		sandbox.WithLogger(logger.Named("sandbox")))
	r := router.New(sb, store,
		router.WithLogger(logger.Named("router")),
		router.WithMetrics(m),
		router.WithExportDir(cfg.ExportPath()))

	return &App{
		cfg:       cfg,
		logger:    logger,
		scene:     scene,
		journal:   store,
		router:    r,
		metrics:   m,
		scenePath: cfg.ScenePath(),
	}, nil
}

// Route routes one prompt and saves the scene afterwards. The result is
// always valid; the error only reports a failed scene save.
func (a *App) Route(ctx context.Context, prompt string) (model.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := a.router.Route(ctx, prompt)
	if res.Category == model.Unknown || res.Category == model.JournalEntry {
		return res, nil
	}
	if err := a.scene.Save(a.scenePath); err != nil {
		a.logger.Error("scene save failed", zap.String("path", a.scenePath), zap.Error(err))
		return res, fmt.Errorf("save scene: %w", err)
	}
	return res, nil
}

// Plan reports what Route would do for prompt without doing it.
func (a *App) Plan(prompt string) router.Plan {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.router.Plan(prompt)
}

// SetGoal records a daily goal through the router's journal path.
func (a *App) SetGoal(ctx context.Context, text string) (model.Result, error) {
	return a.Route(ctx, "set daily goal: "+text)
}

// AddProgress records a progress note against the active goal.
func (a *App) AddProgress(ctx context.Context, text string) (model.Result, error) {
	return a.Route(ctx, "progress: "+text)
}

// AddNote records a free journal note.
func (a *App) AddNote(ctx context.Context, text string) (model.Result, error) {
	return a.Route(ctx, "note: "+text)
}

// Recent returns up to n journal entries, newest first.
func (a *App) Recent(n int) []model.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.journal.Recent(n)
}

// Entries returns the whole journal in order.
func (a *App) Entries() []model.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.journal.All()
}

// Goal returns the active goal; journal.ErrNoGoal when none is set.
func (a *App) Goal() (model.JournalGoal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.journal.Goal()
}

// Reload rereads the journal file, picking up writes by other processes.
func (a *App) Reload() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.journal.Reload()
}

// Scene summarizes the current scene.
func (a *App) Scene() (host.Summary, host.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scene.Summary(), a.scene.Snapshot()
}

// Select replaces the scene selection.
func (a *App) Select(names ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.scene.Select(names...); err != nil {
		return err
	}
	return a.scene.Save(a.scenePath)
}

// Search brings the index up to date with the journal and searches it.
func (a *App) Search(ctx context.Context, p index.SearchParams) ([]index.Hit, error) {
	ix, err := a.syncIndex(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Search(ctx, p)
}

// Stats brings the index up to date with the journal and summarizes it.
func (a *App) Stats(ctx context.Context) (*index.Stats, error) {
	ix, err := a.syncIndex(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Stats(ctx)
}

func (a *App) syncIndex(ctx context.Context) (*index.Index, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index == nil {
		ix, err := index.Open(a.cfg.IndexPath())
		if err != nil {
			return nil, err
		}
		a.index = ix
	}
	n, err := a.index.Sync(ctx, a.journal.All())
	if err != nil {
		return nil, fmt.Errorf("sync index: %w", err)
	}
	if n > 0 {
		a.logger.Debug("index synced", zap.Int("added", n))
	}
	return a.index, nil
}

// Metrics returns the router metrics.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Config returns the configuration the app was opened with.
func (a *App) Config() *config.Config { return a.cfg }

// Close releases the index, if it was opened.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index == nil {
		return nil
	}
	err := a.index.Close()
	a.index = nil
	return err
}

// Package controller orchestrates the editor session: it keeps the document
// list, each document's editing surface, the on-disk files and the persisted
// snapshot consistent.
//
// A Controller is not safe for concurrent use. Production hosts run it on a
// Loop; tests drive it directly with a manual scheduler.
package controller

import (
	"log/slog"
	"time"

	"github.com/starford/hyprtext/internal/debounce"
	"github.com/starford/hyprtext/internal/history"
	"github.com/starford/hyprtext/internal/preview"
	"github.com/starford/hyprtext/internal/session"
	"github.com/starford/hyprtext/internal/snapshot"
	"github.com/starford/hyprtext/internal/storage"
	"github.com/starford/hyprtext/internal/surface"
)

// Font size bounds and sort delay default.
const (
	MinFontSize      = 6
	MaxFontSize      = 48
	DefaultSortDelay = 500 * time.Millisecond
)

// Active addresses the active document wherever an ID is expected.
const Active = 0

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Swallowed errors are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithSnapshots sets the persistence store. Without one, Restore starts from
// the default snapshot and Persist is a no-op.
func WithSnapshots(s *snapshot.Store) Option {
	return func(c *Controller) { c.snapshots = s }
}

// WithHistory records opens and explicit saves.
func WithHistory(h history.Recorder) Option {
	return func(c *Controller) { c.history = h }
}

// WithRenderer sets the markdown preview renderer.
func WithRenderer(r preview.Renderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// WithScheduler sets the timer source for the sort debounce.
func WithScheduler(s debounce.Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithDispatch routes debounce firings, typically onto a Loop.
func WithDispatch(fn func(func())) Option {
	return func(c *Controller) { c.dispatch = fn }
}

// WithSortDelay sets the quiescence window before an auto-sort.
func WithSortDelay(d time.Duration) Option {
	return func(c *Controller) { c.sortDelay = d }
}

// WithSortOnLoad controls whether non-markdown documents are sorted as soon
// as they are loaded.
func WithSortOnLoad(on bool) Option {
	return func(c *Controller) { c.sortOnLoad = on }
}

// WithSurfaces sets the factory for per-document editing surfaces.
func WithSurfaces(fn func() surface.Surface) Option {
	return func(c *Controller) { c.newSurface = fn }
}

// WithEvents registers a listener for session events.
func WithEvents(fn func(Event)) Option {
	return func(c *Controller) { c.onEvent = fn }
}

// WithPathsChanged registers a listener called with the bound paths whenever
// the set of Bound documents may have changed.
func WithPathsChanged(fn func([]string)) Option {
	return func(c *Controller) { c.onPaths = fn }
}

// WithFontSize sets the font size used until a snapshot is restored.
func WithFontSize(n int) Option {
	return func(c *Controller) { c.fontSize = n }
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns one Session and the surfaces of its documents.
type Controller struct {
	logger     *slog.Logger
	files      storage.Provider
	session    *session.Session
	surfaces   map[int]surface.Surface
	disk       map[int]string
	snapshots  *snapshot.Store
	history    history.Recorder
	renderer   preview.Renderer
	sched      debounce.Scheduler
	dispatch   func(func())
	sortDelay  time.Duration
	sortOnLoad bool
	sorts      *debounce.Debouncer[int]
	newSurface func() surface.Surface
	onEvent    func(Event)
	onPaths    func([]string)
	fontSize   int
	now        func() time.Time
}

// New creates a Controller reading and writing documents through files.
func New(files storage.Provider, opts ...Option) *Controller {
	c := &Controller{
		logger:     slog.Default(),
		files:      files,
		session:    session.New(files),
		surfaces:   make(map[int]surface.Surface),
		disk:       make(map[int]string),
		sortDelay:  DefaultSortDelay,
		sortOnLoad: true,
		newSurface: func() surface.Surface { return surface.NewMemory() },
		fontSize:   snapshot.DefaultFontSize,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.renderer == nil {
		c.renderer = preview.NewGoldmark()
	}
	c.fontSize = clampFontSize(c.fontSize)
	c.sorts = debounce.New[int](c.sortDelay, c.sched, c.dispatch)
	return c
}

// FontSize returns the current global font size.
func (c *Controller) FontSize() int {
	return c.fontSize
}

// SortDelay returns the auto-sort quiescence window.
func (c *Controller) SortDelay() time.Duration {
	return c.sorts.Delay()
}

// SortPending reports whether an auto-sort is scheduled for the document.
func (c *Controller) SortPending(id int) bool {
	return c.sorts.Pending(id)
}

func clampFontSize(n int) int {
	return max(MinFontSize, min(n, MaxFontSize))
}

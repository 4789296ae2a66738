package shell

import (
	"fmt"
	"sync/atomic"

	"github.com/GriffinCanCode/webshell/internal/connectivity"
	"github.com/GriffinCanCode/webshell/internal/monitoring"
	"github.com/GriffinCanCode/webshell/internal/policy"
	"go.uber.org/zap"
)

// Options configures the primary window.
type Options struct {
	Title       string
	AppURL      string
	WidthRatio  float64
	HeightRatio float64
	MinWidth    int
	MinHeight   int
	StartHidden bool
}

// Controller owns the primary window. All methods except Quitting must be
// called from the session loop.
type Controller struct {
	opts     Options
	platform Platform
	policy   *policy.Policy
	metrics  *monitoring.Metrics
	log      *zap.Logger

	win      Window
	started  bool
	zoom     float64
	quitting atomic.Bool
}

// NewController creates a controller. No window exists until Start or
// Activate.
func NewController(opts Options, platform Platform, pol *policy.Policy, metrics *monitoring.Metrics, log *zap.Logger) *Controller {
	return &Controller{
		opts:     opts,
		platform: platform,
		policy:   pol,
		metrics:  metrics,
		log:      log,
	}
}

// Window returns the current handle, which may be nil or destroyed.
func (c *Controller) Window() Window {
	return c.win
}

// ZoomLevel returns the current zoom level.
func (c *Controller) ZoomLevel() float64 {
	return c.zoom
}

// Quitting reports whether an explicit quit is in progress. Safe to call
// from any goroutine.
func (c *Controller) Quitting() bool {
	return c.quitting.Load()
}

func (c *Controller) live() bool {
	return c.win != nil && !c.win.IsDestroyed()
}

// window returns the live window or records a stale access.
func (c *Controller) window(op string) (Window, bool) {
	if c.live() {
		return c.win, true
	}
	c.log.Warn("Window operation skipped", zap.String("op", op), zap.Error(ErrNoWindow))
	c.metrics.RecordStaleWindowOp(op)
	return nil, false
}

// create builds a new window. Nothing is kept if the display cannot be read.
func (c *Controller) create(hidden bool) (Window, error) {
	display, err := c.platform.PrimaryDisplay()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	if display.Width <= 0 || display.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoDisplay, display.Width, display.Height)
	}

	bounds := Geometry(display, c.opts)
	win, err := c.platform.CreateWindow(WindowOptions{
		Title:  c.opts.Title,
		Bounds: bounds,
		Hidden: hidden,
	})
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	c.win = win
	c.zoom = 0
	c.metrics.IncWindowsCreated()
	c.log.Info("Window created",
		zap.Int("width", bounds.Width),
		zap.Int("height", bounds.Height),
		zap.Bool("hidden", hidden),
	)
	return win, nil
}

// Start creates the first window once the platform is ready. It honors the
// start-hidden option; later creations never do.
func (c *Controller) Start() (bool, error) {
	if c.live() {
		return false, nil
	}
	hidden := c.opts.StartHidden && !c.started
	win, err := c.create(hidden)
	if err != nil {
		return false, err
	}
	c.started = true
	if !hidden {
		win.Focus()
	}
	return true, nil
}

// Activate brings the session window to the front, creating it when absent
// or destroyed. It never creates a second window. The returned bool reports
// whether a new window was created.
func (c *Controller) Activate(source string) (bool, error) {
	c.metrics.RecordActivation(source)

	if !c.live() {
		win, err := c.create(false)
		if err != nil {
			return false, err
		}
		c.started = true
		win.Focus()
		return true, nil
	}

	if c.win.IsMinimized() {
		c.win.Restore()
	}
	if !c.win.IsVisible() {
		c.win.Show()
	}
	c.win.Focus()
	c.log.Debug("Window activated", zap.String("source", source))
	return false, nil
}

// Show makes the window visible and focused.
func (c *Controller) Show() {
	win, ok := c.window("show")
	if !ok {
		return
	}
	if win.IsMinimized() {
		win.Restore()
	}
	win.Show()
	win.Focus()
}

// Hide hides the window without destroying it.
func (c *Controller) Hide() {
	if win, ok := c.window("hide"); ok {
		win.Hide()
	}
}

// ToggleVisibility shows a hidden window and hides a visible one.
func (c *Controller) ToggleVisibility() {
	win, ok := c.window("toggle")
	if !ok {
		return
	}
	if win.IsVisible() {
		win.Hide()
		return
	}
	c.Show()
}

// RequestClose handles the user closing the window. It returns true when the
// close must be prevented, in which case the window is hidden instead.
func (c *Controller) RequestClose() bool {
	if c.Quitting() {
		return false
	}
	c.Hide()
	return true
}

// Quit destroys the window and exits the platform.
func (c *Controller) Quit() {
	c.quitting.Store(true)
	if c.live() {
		c.win.Destroy()
	}
	c.log.Info("Quitting")
	c.platform.Quit()
}

// Navigate applies the policy decision for a navigation request and performs
// exactly the action it names.
func (c *Controller) Navigate(rawURL string, origin policy.Origin) policy.Decision {
	decision := c.policy.Decide(rawURL, origin)
	c.metrics.RecordDecision(string(origin), decision.String())

	fields := []zap.Field{
		zap.String("url", rawURL),
		zap.String("origin", string(origin)),
		zap.Stringer("decision", decision),
	}

	switch decision {
	case policy.LoadInPlace:
		c.log.Debug("Navigation allowed", fields...)
		if win, ok := c.window("navigate"); ok {
			win.LoadURL(rawURL)
			c.restoreZoom(win)
		}
	case policy.OpenExternal:
		c.log.Info("Navigation handed to OS", fields...)
		c.OpenExternalLink(rawURL)
	case policy.Block:
		c.log.Info("Navigation blocked", fields...)
	}
	return decision
}

// OpenExternalLink hands an http(s) URL to the OS default handler. Anything
// else is dropped. It reports whether the handler was invoked.
func (c *Controller) OpenExternalLink(rawURL string) bool {
	target, err := policy.ValidateExternal(rawURL)
	if err != nil {
		c.log.Warn("External link dropped", zap.String("url", rawURL), zap.Error(err))
		c.metrics.RecordExternalOpen("dropped")
		return false
	}
	if err := c.platform.OpenExternal(target); err != nil {
		c.log.Warn("OS handler failed", zap.String("url", target), zap.Error(err))
		c.metrics.RecordExternalOpen("failed")
		return true
	}
	c.metrics.RecordExternalOpen("opened")
	return true
}

// Apply performs a connectivity action.
func (c *Controller) Apply(action connectivity.Action) {
	switch action {
	case connectivity.ActionLoadRemote:
		c.LoadRemote()
	case connectivity.ActionShowOffline:
		c.ShowOffline()
	}
}

// LoadRemote loads the application entry URL.
func (c *Controller) LoadRemote() {
	if win, ok := c.window("load-remote"); ok {
		c.log.Info("Loading remote content", zap.String("url", c.opts.AppURL))
		win.LoadURL(c.opts.AppURL)
		c.restoreZoom(win)
	}
}

// ShowOffline loads the bundled offline view.
func (c *Controller) ShowOffline() {
	if win, ok := c.window("show-offline"); ok {
		c.log.Info("Showing offline view")
		win.LoadOffline()
		c.restoreZoom(win)
	}
}

// ReloadApp reloads the canonical entry URL rather than refreshing the
// current document, so it also leaves the offline view.
func (c *Controller) ReloadApp() {
	c.LoadRemote()
}

// ZoomIn increases the zoom level by one step.
func (c *Controller) ZoomIn() {
	c.setZoom("zoom-in", c.zoom+ZoomStep)
}

// ZoomOut decreases the zoom level by one step.
func (c *Controller) ZoomOut() {
	c.setZoom("zoom-out", c.zoom-ZoomStep)
}

// ZoomReset restores the default zoom level.
func (c *Controller) ZoomReset() {
	c.setZoom("zoom-reset", 0)
}

// restoreZoom carries the zoom level over to a newly loaded document.
func (c *Controller) restoreZoom(win Window) {
	if c.zoom != 0 {
		win.SetZoomLevel(c.zoom)
	}
}

func (c *Controller) setZoom(op string, level float64) {
	win, ok := c.window(op)
	if !ok {
		return
	}
	c.zoom = min(max(level, ZoomMin), ZoomMax)
	win.SetZoomLevel(c.zoom)
}

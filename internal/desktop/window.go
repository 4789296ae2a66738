package desktop

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/webshell/internal/shell"
)

// hookInterval is how often the hook is offered to the current document.
// A document loaded since the last pass picks it up within one interval.
const hookInterval = 500 * time.Millisecond

//go:embed frontend/hook.js
var hookScript string

// window is a handle over the Wails main window. Visibility is tracked here
// because the runtime cannot be queried for it.
type window struct {
	ctx      context.Context
	platform *Platform
	native   native

	mu        sync.Mutex
	visible   bool
	destroyed bool
	zoom      float64

	kick chan struct{}
	done chan struct{}
	once sync.Once
}

func newWindow(ctx context.Context, p *Platform) *window {
	return &window{
		ctx:      ctx,
		platform: p,
		native:   p.native,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// keep installs the hook and the zoom level into whatever document the
// webview shows. The hook guards itself, so repeated runs are harmless.
func (w *window) keep() {
	ticker := time.NewTicker(hookInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-w.ctx.Done():
			return
		case <-w.kick:
		case <-ticker.C:
		}
		w.native.WindowExecJS(w.ctx, w.injection())
	}
}

func (w *window) injection() string {
	w.mu.Lock()
	zoom := w.zoom
	w.mu.Unlock()
	if zoom == 0 {
		return hookScript
	}
	return hookScript + ";\n" + zoomScript(zoom)
}

// refresh asks the keeper for an immediate pass.
func (w *window) refresh() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *window) markDestroyed() {
	w.mu.Lock()
	w.destroyed = true
	w.visible = false
	w.mu.Unlock()
	w.once.Do(func() { close(w.done) })
}

func (w *window) IsDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

func (w *window) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *window) setVisible(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = v
}

func (w *window) IsMinimized() bool {
	return w.native.WindowIsMinimised(w.ctx)
}

func (w *window) Show() {
	w.native.WindowShow(w.ctx)
	w.setVisible(true)
}

func (w *window) Hide() {
	w.native.WindowHide(w.ctx)
	w.setVisible(false)
}

func (w *window) Restore() {
	w.native.WindowUnminimise(w.ctx)
}

// Focus raises the window. Wails has no focus call, so the window is pinned
// on top for a moment.
func (w *window) Focus() {
	w.native.WindowShow(w.ctx)
	w.native.WindowSetAlwaysOnTop(w.ctx, true)
	w.native.WindowSetAlwaysOnTop(w.ctx, false)
}

// LoadURL navigates the webview. Remote targets are checked first, off the
// session loop; an unreachable target is reported as a failed load. The
// finished load is reported by the hook once the new document is complete.
func (w *window) LoadURL(url string) {
	w.platform.setOfflineView(false)
	script := fmt.Sprintf("window.location.replace(%s)", jsString(url))
	if !isRemote(url) {
		w.native.WindowExecJS(w.ctx, script)
		w.refresh()
		return
	}

	go func() {
		if !w.platform.preflight(w.ctx, url) || w.IsDestroyed() {
			return
		}
		w.native.WindowExecJS(w.ctx, script)
		w.refresh()
	}()
}

// LoadOffline reloads the embedded frontend, which routes to the offline
// view while the flag is set.
func (w *window) LoadOffline() {
	w.platform.setOfflineView(true)
	w.native.WindowReloadApp(w.ctx)
	w.refresh()
}

// SetZoomLevel applies level now and to every later document.
func (w *window) SetZoomLevel(level float64) {
	w.mu.Lock()
	w.zoom = level
	w.mu.Unlock()
	w.native.WindowExecJS(w.ctx, zoomScript(level))
}

// Destroy invalidates the handle. The native window goes away with the
// application.
func (w *window) Destroy() {
	w.markDestroyed()
}

func zoomScript(level float64) string {
	return fmt.Sprintf("document.documentElement.style.zoom = %s", jsString(fmt.Sprintf("%.4f", shell.ZoomFactor(level))))
}

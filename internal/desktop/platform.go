package desktop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/webshell/internal/connectivity"
	"github.com/GriffinCanCode/webshell/internal/shell"
	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"
)

// codeDisconnected is reported when the preflight check cannot reach the
// application (net::ERR_INTERNET_DISCONNECTED).
const codeDisconnected = -106

const postTimeout = 2 * time.Second

// Checker tests whether a remote URL is reachable before it is loaded.
type Checker interface {
	Check(ctx context.Context) error
}

// Session is the part of the shell session the desktop layer talks to.
type Session interface {
	Post(ctx context.Context, ev shell.Event) error
	Quitting() bool
}

// Platform implements shell.Platform on the Wails runtime. It is usable once
// the Wails startup hook has run.
type Platform struct {
	log     *zap.Logger
	checker Checker
	native  native

	// offline routes the embedded frontend to its offline view.
	offline atomic.Bool

	mu      sync.Mutex
	ctx     context.Context
	session Session
	win     *window
	stopped bool
}

// NewPlatform creates an unstarted platform. checker may be nil.
func NewPlatform(checker Checker, log *zap.Logger) *Platform {
	if log == nil {
		log = zap.NewNop()
	}
	return &Platform{log: log, checker: checker, native: wailsRuntime{}}
}

func (p *Platform) setOfflineView(v bool) {
	p.offline.Store(v)
}

// OfflineView reports whether the embedded frontend should show the offline
// view rather than the loading screen.
func (p *Platform) OfflineView() bool {
	return p.offline.Load()
}

func (p *Platform) attach(session Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = session
}

func (p *Platform) startup(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx = ctx
}

func (p *Platform) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.win != nil {
		p.win.markDestroyed()
	}
}

func (p *Platform) context() (context.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx == nil || p.stopped {
		return nil, shell.ErrNotReady
	}
	return p.ctx, nil
}

// post delivers an event produced by the platform itself.
func (p *Platform) post(ev shell.Event) {
	p.mu.Lock()
	session, ctx := p.session, p.ctx
	p.mu.Unlock()
	if session == nil || ctx == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()
	if err := session.Post(ctx, ev); err != nil {
		p.log.Warn("Platform event dropped", zap.String("event", string(ev.Name)), zap.Error(err))
	}
}

// PrimaryDisplay returns the size of the primary screen.
func (p *Platform) PrimaryDisplay() (shell.Display, error) {
	ctx, err := p.context()
	if err != nil {
		return shell.Display{}, err
	}
	screens, err := p.native.ScreenGetAll(ctx)
	if err != nil {
		return shell.Display{}, fmt.Errorf("list screens: %w", err)
	}
	return primaryScreen(screens)
}

func primaryScreen(screens []runtime.Screen) (shell.Display, error) {
	if len(screens) == 0 {
		return shell.Display{}, shell.ErrNoDisplay
	}
	screen := screens[0]
	for _, s := range screens {
		if s.IsPrimary {
			screen = s
			break
		}
	}
	return shell.Display{Width: screen.Size.Width, Height: screen.Size.Height}, nil
}

// CreateWindow prepares the native window. Wails owns exactly one window,
// so a new handle is issued over it each time.
func (p *Platform) CreateWindow(opts shell.WindowOptions) (shell.Window, error) {
	ctx, err := p.context()
	if err != nil {
		return nil, err
	}

	p.native.WindowSetTitle(ctx, opts.Title)
	p.native.WindowSetSize(ctx, opts.Bounds.Width, opts.Bounds.Height)
	p.native.WindowCenter(ctx)

	win := newWindow(ctx, p)
	if !opts.Hidden {
		win.Show()
	}

	p.mu.Lock()
	prev := p.win
	p.win = win
	p.mu.Unlock()
	if prev != nil {
		prev.markDestroyed()
	}
	go win.keep()
	return win, nil
}

// OpenExternal hands url to the default browser.
func (p *Platform) OpenExternal(url string) error {
	ctx, err := p.context()
	if err != nil {
		return err
	}
	p.native.BrowserOpenURL(ctx, url)
	return nil
}

// Quit stops the Wails application.
func (p *Platform) Quit() {
	ctx, err := p.context()
	if err != nil {
		return
	}
	p.native.Quit(ctx)
}

// preflight checks reachability of a remote load and reports the outcome as
// a load event.
func (p *Platform) preflight(ctx context.Context, url string) bool {
	if p.checker == nil {
		return true
	}
	if err := p.checker.Check(ctx); err != nil {
		p.log.Debug("Preflight failed", zap.String("url", url), zap.Error(err))
		p.post(shell.Event{
			Name: shell.EventLoadFailed,
			Failure: connectivity.Failure{
				Code:        codeDisconnected,
				Description: err.Error(),
				URL:         url,
				MainFrame:   true,
			},
		})
		return false
	}
	return true
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

func isRemote(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

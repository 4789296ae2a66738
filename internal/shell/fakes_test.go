package shell

import (
	"sync"

	"github.com/GriffinCanCode/webshell/internal/monitoring"
	"github.com/GriffinCanCode/webshell/internal/policy"
	"go.uber.org/zap"
)

const testAppURL = "https://www.perplexity.ai/"

type fakeWindow struct {
	mu        sync.Mutex
	opts      WindowOptions
	visible   bool
	minimized bool
	destroyed bool
	focused   int
	loads     []string
	offline   int
	zoom      float64
	zoomCalls int
}

func (w *fakeWindow) IsDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

func (w *fakeWindow) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *fakeWindow) IsMinimized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minimized
}

func (w *fakeWindow) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = true
}

func (w *fakeWindow) Hide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = false
}

func (w *fakeWindow) Restore() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minimized = false
}

func (w *fakeWindow) Focus() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focused++
}

func (w *fakeWindow) LoadURL(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loads = append(w.loads, url)
}

func (w *fakeWindow) LoadOffline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.offline++
}

func (w *fakeWindow) SetZoomLevel(level float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.zoom = level
	w.zoomCalls++
}

func (w *fakeWindow) Destroy() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.destroyed = true
	w.visible = false
}

func (w *fakeWindow) Loads() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.loads...)
}

func (w *fakeWindow) OfflineLoads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.offline
}

func (w *fakeWindow) Focused() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused
}

type fakePlatform struct {
	mu         sync.Mutex
	display    Display
	displayErr error
	windows    []*fakeWindow
	opened     []string
	quits      int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{display: Display{Width: 1920, Height: 1080}}
}

func (p *fakePlatform) PrimaryDisplay() (Display, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.display, p.displayErr
}

func (p *fakePlatform) CreateWindow(opts WindowOptions) (Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w := &fakeWindow{opts: opts, visible: !opts.Hidden}
	p.windows = append(p.windows, w)
	return w, nil
}

func (p *fakePlatform) OpenExternal(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened = append(p.opened, url)
	return nil
}

func (p *fakePlatform) Quit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quits++
}

func (p *fakePlatform) Windows() []*fakeWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*fakeWindow(nil), p.windows...)
}

func (p *fakePlatform) Opened() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.opened...)
}

func testOptions() Options {
	return Options{
		Title:       "Perplexity",
		AppURL:      testAppURL,
		WidthRatio:  0.6,
		HeightRatio: 0.8,
		MinWidth:    800,
		MinHeight:   600,
	}
}

func testPolicy() *policy.Policy {
	pol, err := policy.New(testAppURL, []string{"perplexity.ai", "accounts.google.com"})
	if err != nil {
		panic(err)
	}
	return pol
}

func newTestController(opts Options) (*Controller, *fakePlatform, *monitoring.Metrics) {
	platform := newFakePlatform()
	metrics := monitoring.NewMetrics()
	return NewController(opts, platform, testPolicy(), metrics, zap.NewNop()), platform, metrics
}

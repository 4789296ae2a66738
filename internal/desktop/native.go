package desktop

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// native is the slice of the Wails runtime the platform uses.
type native interface {
	ScreenGetAll(ctx context.Context) ([]runtime.Screen, error)
	WindowSetTitle(ctx context.Context, title string)
	WindowSetSize(ctx context.Context, width, height int)
	WindowCenter(ctx context.Context)
	WindowShow(ctx context.Context)
	WindowHide(ctx context.Context)
	WindowUnminimise(ctx context.Context)
	WindowIsMinimised(ctx context.Context) bool
	WindowSetAlwaysOnTop(ctx context.Context, onTop bool)
	WindowExecJS(ctx context.Context, js string)
	WindowReloadApp(ctx context.Context)
	BrowserOpenURL(ctx context.Context, url string)
	Quit(ctx context.Context)
}

type wailsRuntime struct{}

func (wailsRuntime) ScreenGetAll(ctx context.Context) ([]runtime.Screen, error) {
	return runtime.ScreenGetAll(ctx)
}

func (wailsRuntime) WindowSetTitle(ctx context.Context, title string) {
	runtime.WindowSetTitle(ctx, title)
}

func (wailsRuntime) WindowSetSize(ctx context.Context, width, height int) {
	runtime.WindowSetSize(ctx, width, height)
}

func (wailsRuntime) WindowCenter(ctx context.Context)     { runtime.WindowCenter(ctx) }
func (wailsRuntime) WindowShow(ctx context.Context)       { runtime.WindowShow(ctx) }
func (wailsRuntime) WindowHide(ctx context.Context)       { runtime.WindowHide(ctx) }
func (wailsRuntime) WindowUnminimise(ctx context.Context) { runtime.WindowUnminimise(ctx) }
func (wailsRuntime) WindowReloadApp(ctx context.Context)  { runtime.WindowReloadApp(ctx) }
func (wailsRuntime) Quit(ctx context.Context)             { runtime.Quit(ctx) }

func (wailsRuntime) WindowIsMinimised(ctx context.Context) bool {
	return runtime.WindowIsMinimised(ctx)
}

func (wailsRuntime) WindowSetAlwaysOnTop(ctx context.Context, onTop bool) {
	runtime.WindowSetAlwaysOnTop(ctx, onTop)
}

func (wailsRuntime) WindowExecJS(ctx context.Context, js string) {
	runtime.WindowExecJS(ctx, js)
}

func (wailsRuntime) BrowserOpenURL(ctx context.Context, url string) {
	runtime.BrowserOpenURL(ctx, url)
}

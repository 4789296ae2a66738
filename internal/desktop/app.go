package desktop

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	goruntime "runtime"
	"strings"

	"github.com/GriffinCanCode/webshell/internal/shell"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"
)

//go:embed all:frontend
var assets embed.FS

// AppConfig configures the native application.
type AppConfig struct {
	Title     string
	MinWidth  int
	MinHeight int
	// AllowedOrigins may call the bridge besides the embedded frontend.
	AllowedOrigins []string
	Metadata       shell.Metadata
}

// App runs the Wails application around a shell session.
type App struct {
	cfg      AppConfig
	platform *Platform
	log      *zap.Logger
}

// NewApp creates the application. The platform is handed to the session
// before Run.
func NewApp(cfg AppConfig, platform *Platform, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{cfg: cfg, platform: platform, log: log}
}

// Run blocks on the native event loop until the application quits.
func (a *App) Run(session Session) error {
	frontend, err := fs.Sub(assets, "frontend")
	if err != nil {
		return fmt.Errorf("frontend assets: %w", err)
	}

	a.platform.attach(session)
	bridge := NewBridge(session, a.platform, a.cfg.Metadata)

	err = wails.Run(&options.App{
		Title:       a.cfg.Title,
		MinWidth:    a.cfg.MinWidth,
		MinHeight:   a.cfg.MinHeight,
		StartHidden: true,
		AssetServer: &assetserver.Options{
			Assets: frontend,
		},
		Menu:                   buildMenu(a.cfg.Title, goruntime.GOOS, a.post),
		BackgroundColour:       &options.RGBA{R: 32, G: 33, B: 36, A: 255},
		BindingsAllowedOrigins: strings.Join(a.cfg.AllowedOrigins, ","),
		OnStartup: func(ctx context.Context) {
			a.platform.startup(ctx)
			bridge.startup(ctx)
			a.platform.post(shell.Event{Name: shell.EventReady})
		},
		OnBeforeClose: func(ctx context.Context) bool {
			if session.Quitting() {
				return false
			}
			a.platform.post(shell.Event{Name: shell.EventClose})
			return true
		},
		OnShutdown: func(ctx context.Context) {
			a.platform.shutdown()
			a.log.Info("Native application stopped")
		},
		Bind: []interface{}{bridge},
	})
	if err != nil {
		return fmt.Errorf("run desktop app: %w", err)
	}
	return nil
}

func (a *App) post(name shell.EventName) menu.Callback {
	return func(*menu.CallbackData) {
		a.platform.post(shell.Event{Name: name})
	}
}

// buildMenu carries the keyboard shortcuts, so they also work on remote
// pages. Quit has exactly one entry: the application menu on macOS, the
// Window menu elsewhere.
func buildMenu(title, goos string, post func(shell.EventName) menu.Callback) *menu.Menu {
	m := menu.NewMenu()
	if goos == "darwin" {
		app := m.AddSubmenu(title)
		app.AddText("Quit "+title, keys.CmdOrCtrl("q"), post(shell.EventQuit))
		m.Append(menu.EditMenu())
	}

	view := m.AddSubmenu("View")
	view.AddText("Reload", keys.CmdOrCtrl("r"), post(shell.EventReload))
	view.AddSeparator()
	view.AddText("Zoom In", keys.CmdOrCtrl("="), post(shell.EventZoomIn))
	view.AddText("Zoom Out", keys.CmdOrCtrl("-"), post(shell.EventZoomOut))
	view.AddText("Actual Size", keys.CmdOrCtrl("0"), post(shell.EventZoomReset))

	window := m.AddSubmenu("Window")
	window.AddText("Show", nil, post(shell.EventActivate))
	window.AddText("Show/Hide", nil, post(shell.EventToggle))
	window.AddText("Hide", keys.CmdOrCtrl("w"), post(shell.EventClose))
	if goos != "darwin" {
		window.AddSeparator()
		window.AddText("Quit", keys.CmdOrCtrl("q"), post(shell.EventQuit))
	}
	return m
}

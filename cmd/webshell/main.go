package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/webshell/internal/autostart"
	"github.com/GriffinCanCode/webshell/internal/config"
	"github.com/GriffinCanCode/webshell/internal/connectivity"
	"github.com/GriffinCanCode/webshell/internal/desktop"
	"github.com/GriffinCanCode/webshell/internal/instance"
	"github.com/GriffinCanCode/webshell/internal/logging"
	"github.com/GriffinCanCode/webshell/internal/monitoring"
	"github.com/GriffinCanCode/webshell/internal/policy"
	"github.com/GriffinCanCode/webshell/internal/shell"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const signalTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	hidden := flag.Bool("hidden", false, "Start with the window hidden")
	autostartMode := flag.String("autostart", "", "Launch at login: on or off")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "webshell: %v\n", err)
		return 1
	}
	if *hidden {
		cfg.Window.StartHidden = true
	}

	meta := shell.Metadata{
		Name:      cfg.App.Name,
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		AppURL:    cfg.App.URL,
	}
	if *showVersion {
		fmt.Printf("%s %s (commit %s, built %s)\n", meta.Name, meta.Version, meta.Commit, meta.BuildDate)
		return 0
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "webshell: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Component("main")

	if *autostartMode != "" {
		return setAutostart(cfg, *autostartMode, log)
	}

	if cfg.Screenshot.Enabled {
		log.Info("Screenshot mode requested, capture is left to the harness",
			zap.String("path", cfg.Screenshot.Path))
	}

	socket := cfg.SocketPath()
	coord, err := instance.Acquire(socket, logger.Component("instance"))
	if errors.Is(err, instance.ErrNotPrimary) {
		ctx, cancel := context.WithTimeout(context.Background(), signalTimeout)
		defer cancel()
		client := instance.NewClient(socket)
		if err := client.Activate(ctx, os.Args[1:]); err != nil {
			log.Warn("Failed to signal running instance",
				zap.Bool("primary_healthy", client.Healthy(ctx)),
				zap.Error(err))
		} else {
			log.Info("Another instance is running, activated it")
		}
		return 0
	}
	if err != nil {
		log.Error("Failed to acquire instance lock", zap.Error(err))
		return 1
	}
	defer coord.Close()

	return runPrimary(cfg, meta, coord, logger)
}

func runPrimary(cfg *config.Config, meta shell.Metadata, coord *instance.Coordinator, logger *logging.Logger) int {
	log := logger.Component("main")

	pol, err := policy.New(cfg.App.URL, cfg.App.AllowedHosts)
	if err != nil {
		log.Error("Invalid application URL", zap.Error(err))
		return 1
	}

	metrics := monitoring.NewMetrics()
	prober := connectivity.NewProber(connectivity.ProberConfig{
		URL:       cfg.App.URL,
		Interval:  cfg.Connectivity.ProbeInterval,
		Timeout:   cfg.Connectivity.ProbeTimeout,
		Retries:   2,
		UserAgent: "webshell/" + version,
	}, logger.Component("prober"))
	platform := desktop.NewPlatform(prober, logger.Component("desktop"))

	deps := shell.Dependencies{
		Platform: platform,
		Policy:   pol,
		Metrics:  metrics,
		Logger:   logger.Component("session"),
	}
	if cfg.Connectivity.ProbeEnabled {
		deps.Prober = prober
	}

	session, err := shell.NewSession(shell.Options{
		Title:       cfg.App.Name,
		AppURL:      cfg.App.URL,
		WidthRatio:  cfg.Window.WidthRatio,
		HeightRatio: cfg.Window.HeightRatio,
		MinWidth:    cfg.Window.MinWidth,
		MinHeight:   cfg.Window.MinHeight,
		StartHidden: cfg.Window.StartHidden,
	}, true, deps)
	if err != nil {
		log.Error("Failed to create session", zap.Error(err))
		return 1
	}

	gin.SetMode(gin.ReleaseMode)
	go func() {
		err := coord.Serve(func(ctx context.Context, args []string) error {
			return session.Post(ctx, shell.Event{Name: shell.EventSecondInstance, Args: args})
		}, metrics)
		if err != nil {
			log.Error("Instance API stopped", zap.Error(err))
		}
	}()

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()

	loopErr := make(chan error, 1)
	go func() {
		err := session.Run(loopCtx)
		if errors.Is(err, shell.ErrStartup) {
			// The loop is gone, so the controller can be driven from here.
			session.Controller().Quit()
		}
		loopErr <- err
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		select {
		case <-sigCtx.Done():
			log.Info("Shutdown signal received")
			_ = session.Post(loopCtx, shell.Event{Name: shell.EventQuit})
		case <-loopCtx.Done():
		}
	}()

	log.Info("Starting shell",
		zap.String("session", session.ID),
		zap.String("url", cfg.App.URL),
		zap.String("version", meta.Version),
		zap.Bool("hidden", cfg.Window.StartHidden),
	)

	app := desktop.NewApp(desktop.AppConfig{
		Title:          cfg.App.Name,
		MinWidth:       cfg.Window.MinWidth,
		MinHeight:      cfg.Window.MinHeight,
		AllowedOrigins: bindingOrigins(cfg.App.URL, pol.AppHost(), cfg.App.AllowedHosts),
		Metadata:       meta,
	}, platform, logger.Component("desktop"))

	runErr := app.Run(session)
	cancelLoop()
	err = <-loopErr

	switch {
	case errors.Is(err, shell.ErrStartup):
		log.Error("Startup failed", zap.Error(err))
		return 1
	case runErr != nil:
		log.Error("Desktop application failed", zap.Error(runErr))
		return 1
	}
	log.Info("Shell stopped")
	return 0
}

// bindingOrigins lists the origins allowed to call the content bridge.
func bindingOrigins(appURL, appHost string, hosts []string) []string {
	scheme := "https"
	if u, err := url.Parse(appURL); err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}
	origins := []string{scheme + "://" + appHost}
	for _, h := range hosts {
		if h != appHost {
			origins = append(origins, "https://"+h)
		}
	}
	return origins
}

func setAutostart(cfg *config.Config, mode string, log *zap.Logger) int {
	exe, err := os.Executable()
	if err != nil {
		log.Error("Cannot resolve executable", zap.Error(err))
		return 1
	}
	entry := autostart.Entry{AppID: cfg.App.ID, Name: cfg.App.Name, Exec: exe}

	switch mode {
	case "on":
		err = entry.Enable()
	case "off":
		err = entry.Disable()
	default:
		log.Error("Invalid autostart mode, want on or off", zap.String("mode", mode))
		return 2
	}
	if err != nil {
		log.Error("Failed to update autostart", zap.String("mode", mode), zap.Error(err))
		return 1
	}

	path, _ := entry.Path()
	log.Info("Autostart updated", zap.String("mode", mode), zap.String("entry", path))
	return 0
}

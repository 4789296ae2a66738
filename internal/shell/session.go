package shell

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/GriffinCanCode/webshell/internal/connectivity"
	"github.com/GriffinCanCode/webshell/internal/monitoring"
	"github.com/GriffinCanCode/webshell/internal/policy"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrStartup marks failures that abort the startup attempt.
var ErrStartup = errors.New("startup failed")

// EventName identifies a session event.
type EventName string

const (
	EventReady            EventName = "ready"
	EventActivate         EventName = "activate"
	EventSecondInstance   EventName = "second-instance"
	EventWillNavigate     EventName = "will-navigate"
	EventWindowOpen       EventName = "window-open"
	EventLoadFailed       EventName = "did-fail-load"
	EventLoadFinished     EventName = "did-finish-load"
	EventClose            EventName = "close"
	EventToggle           EventName = "toggle"
	EventQuit             EventName = "quit"
	EventOpenExternalLink EventName = "open-external-link"
	EventNetworkStatus    EventName = "network-status"
	EventRetryConnection  EventName = "retry-connection"
	EventReload           EventName = "reload"
	EventZoomIn           EventName = "zoom-in"
	EventZoomOut          EventName = "zoom-out"
	EventZoomReset        EventName = "zoom-reset"
	EventLogMessage       EventName = "log-message"
)

// Event is the single input type of the session loop.
type Event struct {
	Name    EventName
	URL     string
	Online  bool
	Failure connectivity.Failure
	Text    string
	Args    []string
}

// Handler processes one event on the session loop.
type Handler func(ev Event) error

// Prober reports when the remote application becomes reachable again.
type Prober interface {
	Run(ctx context.Context, onReachable func()) error
}

// Dependencies are the collaborators of a Session.
type Dependencies struct {
	Platform Platform
	Policy   *policy.Policy
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger
	// Prober is optional; without it recovery waits for a retry.
	Prober Prober
}

// Validate checks that required dependencies are present.
func (d *Dependencies) Validate() error {
	switch {
	case d.Platform == nil:
		return errors.New("platform is required")
	case d.Policy == nil:
		return errors.New("policy is required")
	case d.Metrics == nil:
		return errors.New("metrics are required")
	}
	return nil
}

const (
	queueSize         = 64
	maxContentLogSize = 2048
)

// Session is the single long-lived shell session. It owns the window
// controller and the connectivity monitor, and serializes every event
// through one loop so neither needs locking.
type Session struct {
	ID      string
	Primary bool

	controller *Controller
	monitor    *connectivity.Monitor
	policy     *policy.Policy
	prober     Prober
	metrics    *monitoring.Metrics
	log        *zap.Logger

	handlers map[EventName]Handler
	events   chan Event

	ctx         context.Context
	probeCancel context.CancelFunc

	sanitizer    *bluemonday.Policy
	logLimiter   *rate.Limiter
	suppressLogs int
}

// NewSession creates the session and registers its event handlers once.
func NewSession(opts Options, primary bool, deps Dependencies) (*Session, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Session{
		ID:         uuid.NewString(),
		Primary:    primary,
		policy:     deps.Policy,
		prober:     deps.Prober,
		metrics:    deps.Metrics,
		events:     make(chan Event, queueSize),
		ctx:        context.Background(),
		sanitizer:  bluemonday.StrictPolicy(),
		logLimiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 20),
	}
	s.log = log.With(zap.String("session", s.ID))
	s.controller = NewController(opts, deps.Platform, deps.Policy, deps.Metrics, s.log.Named("window"))
	s.monitor = connectivity.New(connectivity.Settings{OnTransition: s.onTransition})
	s.registerHandlers()

	return s, nil
}

// Controller returns the window controller.
func (s *Session) Controller() *Controller {
	return s.controller
}

// State returns the connectivity state.
func (s *Session) State() connectivity.State {
	return s.monitor.State()
}

// Quitting reports whether an explicit quit is in progress. Safe to call
// from any goroutine.
func (s *Session) Quitting() bool {
	return s.controller.Quitting()
}

func (s *Session) registerHandlers() {
	s.handlers = map[EventName]Handler{
		EventReady:            s.handleReady,
		EventActivate:         s.handleActivate,
		EventSecondInstance:   s.handleActivate,
		EventWillNavigate:     s.handleNavigate(policy.WillNavigate),
		EventWindowOpen:       s.handleNavigate(policy.WindowOpen),
		EventLoadFailed:       s.handleLoadFailed,
		EventLoadFinished:     s.handleLoadFinished,
		EventClose:            s.handleClose,
		EventToggle:           s.simple(s.controller.ToggleVisibility),
		EventQuit:             s.handleQuit,
		EventOpenExternalLink: s.handleOpenExternalLink,
		EventNetworkStatus:    s.handleNetworkStatus,
		EventRetryConnection:  s.handleRetry,
		EventReload:           s.handleReload,
		EventZoomIn:           s.simple(s.controller.ZoomIn),
		EventZoomOut:          s.simple(s.controller.ZoomOut),
		EventZoomReset:        s.simple(s.controller.ZoomReset),
		EventLogMessage:       s.handleLogMessage,
	}
}

// Post enqueues an event from any goroutine.
func (s *Session) Post(ctx context.Context, ev Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the event queue until ctx is done or startup fails.
func (s *Session) Run(ctx context.Context) error {
	s.ctx = ctx
	defer s.stopProbe()

	s.log.Info("Session loop started", zap.Bool("primary", s.Primary))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			if err := s.Handle(ev); errors.Is(err, ErrStartup) {
				return err
			}
		}
	}
}

// Handle processes a single event synchronously.
func (s *Session) Handle(ev Event) error {
	handler, ok := s.handlers[ev.Name]
	if !ok {
		s.log.Warn("Unknown event dropped", zap.String("event", string(ev.Name)))
		return nil
	}

	start := time.Now()
	err := handler(ev)
	s.metrics.RecordEvent(string(ev.Name), time.Since(start))

	if err != nil {
		s.log.Error("Event failed", zap.String("event", string(ev.Name)), zap.Error(err))
	}
	return err
}

func (s *Session) simple(fn func()) Handler {
	return func(Event) error {
		fn()
		return nil
	}
}

func (s *Session) handleReady(Event) error {
	created, err := s.controller.Start()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	if created {
		s.loadForState()
	}
	return nil
}

func (s *Session) handleActivate(ev Event) error {
	created, err := s.controller.Activate(string(ev.Name))
	if err != nil {
		return err
	}
	if created {
		s.loadForState()
	}
	return nil
}

// loadForState fills a freshly created window with what the current state
// calls for.
func (s *Session) loadForState() {
	if s.monitor.State() == connectivity.Offline {
		s.controller.ShowOffline()
		return
	}
	s.controller.LoadRemote()
}

func (s *Session) handleNavigate(origin policy.Origin) Handler {
	return func(ev Event) error {
		s.controller.Navigate(ev.URL, origin)
		return nil
	}
}

func (s *Session) handleLoadFailed(ev Event) error {
	s.log.Debug("Load failed",
		zap.Int("code", ev.Failure.Code),
		zap.String("description", ev.Failure.Description),
		zap.String("url", ev.Failure.URL),
		zap.Bool("main_frame", ev.Failure.MainFrame),
	)
	s.controller.Apply(s.monitor.LoadFailed(ev.Failure))
	return nil
}

func (s *Session) handleLoadFinished(ev Event) error {
	s.controller.Apply(s.monitor.LoadSucceeded(s.isRemote(ev.URL)))
	return nil
}

// isRemote reports whether url belongs to the hosted application.
func (s *Session) isRemote(rawURL string) bool {
	if _, err := policy.ValidateExternal(rawURL); err != nil {
		return false
	}
	u, err := url.Parse(rawURL)
	return err == nil && s.policy.Allows(u.Hostname())
}

func (s *Session) handleClose(Event) error {
	s.controller.RequestClose()
	return nil
}

func (s *Session) handleQuit(Event) error {
	s.stopProbe()
	s.controller.Quit()
	return nil
}

func (s *Session) handleOpenExternalLink(ev Event) error {
	s.controller.OpenExternalLink(ev.URL)
	return nil
}

func (s *Session) handleNetworkStatus(ev Event) error {
	s.log.Info("Network status reported", zap.Bool("online", ev.Online))
	s.controller.Apply(s.monitor.NetworkStatus(ev.Online))
	return nil
}

func (s *Session) handleRetry(Event) error {
	s.controller.Apply(s.monitor.Retry())
	return nil
}

// handleReload reloads the entry URL. From the offline view it goes through
// a retry so the state machine stays in step.
func (s *Session) handleReload(Event) error {
	if s.monitor.State() == connectivity.Offline {
		s.controller.Apply(s.monitor.Retry())
		return nil
	}
	s.controller.ReloadApp()
	return nil
}

func (s *Session) handleLogMessage(ev Event) error {
	if !s.logLimiter.Allow() {
		s.suppressLogs++
		return nil
	}

	text := truncate(s.sanitizer.Sanitize(ev.Text), maxContentLogSize)

	fields := []zap.Field{zap.String("source", "content"), zap.String("text", text)}
	if s.suppressLogs > 0 {
		fields = append(fields, zap.Int("suppressed", s.suppressLogs))
		s.suppressLogs = 0
	}
	s.log.Info("Content log", fields...)
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (s *Session) onTransition(from, to connectivity.State) {
	s.log.Info("Connectivity changed", zap.Stringer("from", from), zap.Stringer("to", to))
	s.metrics.RecordTransition(from.String(), to.String())

	if to == connectivity.Offline {
		s.startProbe()
	} else {
		s.stopProbe()
	}
}

func (s *Session) startProbe() {
	if s.prober == nil || s.probeCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.probeCancel = cancel

	go func() {
		err := s.prober.Run(ctx, func() {
			s.metrics.RecordProbe("reachable")
			if err := s.Post(ctx, Event{Name: EventRetryConnection}); err != nil {
				s.log.Debug("Probe result discarded", zap.Error(err))
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.metrics.RecordProbe("stopped")
			s.log.Debug("Probe stopped", zap.Error(err))
		}
	}()
}

func (s *Session) stopProbe() {
	if s.probeCancel != nil {
		s.probeCancel()
		s.probeCancel = nil
	}
}

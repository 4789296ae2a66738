package desktop

import (
	"context"

	"github.com/GriffinCanCode/webshell/internal/connectivity"
	"github.com/GriffinCanCode/webshell/internal/shell"
)

// Bridge is bound to the webview. Each method turns a call from the page
// into a session event; none of them touch the window directly.
type Bridge struct {
	ctx      context.Context
	session  Session
	platform *Platform
	metadata shell.Metadata
}

// NewBridge creates a bridge posting to session.
func NewBridge(session Session, platform *Platform, metadata shell.Metadata) *Bridge {
	return &Bridge{ctx: context.Background(), session: session, platform: platform, metadata: metadata}
}

func (b *Bridge) startup(ctx context.Context) {
	b.ctx = ctx
}

func (b *Bridge) post(ev shell.Event) error {
	ctx, cancel := context.WithTimeout(b.ctx, postTimeout)
	defer cancel()
	return b.session.Post(ctx, ev)
}

// WillNavigate reports an in-page navigation request.
func (b *Bridge) WillNavigate(url string) error {
	return b.post(shell.Event{Name: shell.EventWillNavigate, URL: url})
}

// WindowOpen reports a request for a new window.
func (b *Bridge) WindowOpen(url string) error {
	return b.post(shell.Event{Name: shell.EventWindowOpen, URL: url})
}

// LoadFailed reports a failed page load.
func (b *Bridge) LoadFailed(code int, description, url string, mainFrame bool) error {
	return b.post(shell.Event{
		Name: shell.EventLoadFailed,
		Failure: connectivity.Failure{
			Code:        code,
			Description: description,
			URL:         url,
			MainFrame:   mainFrame,
		},
	})
}

// LoadFinished reports a completed top-level load.
func (b *Bridge) LoadFinished(url string) error {
	return b.post(shell.Event{Name: shell.EventLoadFinished, URL: url})
}

// OpenExternalLink asks for url to be opened in the default browser.
func (b *Bridge) OpenExternalLink(url string) error {
	return b.post(shell.Event{Name: shell.EventOpenExternalLink, URL: url})
}

// NetworkStatus reports the page's online state.
func (b *Bridge) NetworkStatus(online bool) error {
	return b.post(shell.Event{Name: shell.EventNetworkStatus, Online: online})
}

// RetryConnection is the retry button of the offline view.
func (b *Bridge) RetryConnection() error {
	return b.post(shell.Event{Name: shell.EventRetryConnection})
}

func (b *Bridge) ZoomIn() error {
	return b.post(shell.Event{Name: shell.EventZoomIn})
}

func (b *Bridge) ZoomOut() error {
	return b.post(shell.Event{Name: shell.EventZoomOut})
}

func (b *Bridge) ZoomReset() error {
	return b.post(shell.Event{Name: shell.EventZoomReset})
}

// Reload reloads the application entry URL.
func (b *Bridge) Reload() error {
	return b.post(shell.Event{Name: shell.EventReload})
}

// LogMessage forwards a diagnostic line from the page.
func (b *Bridge) LogMessage(text string) error {
	return b.post(shell.Event{Name: shell.EventLogMessage, Text: text})
}

// OfflineView tells the embedded loading page to switch to the offline view.
func (b *Bridge) OfflineView() bool {
	return b.platform != nil && b.platform.OfflineView()
}

// GetAppMetadata returns the build metadata.
func (b *Bridge) GetAppMetadata() shell.Metadata {
	return b.metadata
}

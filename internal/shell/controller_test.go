package shell

import (
	"errors"
	"testing"

	"github.com/GriffinCanCode/webshell/internal/connectivity"
	"github.com/GriffinCanCode/webshell/internal/policy"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometry(t *testing.T) {
	opts := testOptions()

	tests := []struct {
		name    string
		display Display
		want    Bounds
	}{
		{
			name:    "ratio of full hd",
			display: Display{Width: 1920, Height: 1080},
			want:    Bounds{X: 384, Y: 108, Width: 1152, Height: 864},
		},
		{
			name:    "minimum size wins over ratio",
			display: Display{Width: 1024, Height: 700},
			want:    Bounds{X: 112, Y: 50, Width: 800, Height: 600},
		},
		{
			name:    "display size wins over minimum",
			display: Display{Width: 640, Height: 480},
			want:    Bounds{X: 0, Y: 0, Width: 640, Height: 480},
		},
		{
			name:    "offset work area",
			display: Display{X: 100, Y: 50, Width: 2000, Height: 1000},
			want:    Bounds{X: 500, Y: 150, Width: 1200, Height: 800},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Geometry(tt.display, opts))
		})
	}
}

func TestZoomFactor(t *testing.T) {
	assert.InDelta(t, 1.0, ZoomFactor(0), 1e-9)
	assert.InDelta(t, 1.2, ZoomFactor(1), 1e-9)
	assert.InDelta(t, 1/1.2, ZoomFactor(-1), 1e-9)
}

func TestStartCreatesVisibleFocusedWindow(t *testing.T) {
	c, platform, _ := newTestController(testOptions())

	created, err := c.Start()
	require.NoError(t, err)
	assert.True(t, created)

	require.Len(t, platform.Windows(), 1)
	win := platform.Windows()[0]
	assert.True(t, win.IsVisible())
	assert.Equal(t, 1, win.Focused())
	assert.Equal(t, "Perplexity", win.opts.Title)
}

func TestStartHiddenThenActivate(t *testing.T) {
	opts := testOptions()
	opts.StartHidden = true
	c, platform, _ := newTestController(opts)

	_, err := c.Start()
	require.NoError(t, err)
	win := platform.Windows()[0]
	assert.True(t, win.opts.Hidden)
	assert.False(t, win.IsVisible())
	assert.Zero(t, win.Focused())

	created, err := c.Activate("second-instance")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, platform.Windows(), 1)
	assert.True(t, win.IsVisible())
	assert.Equal(t, 1, win.Focused())
}

func TestStartHiddenOnlyAppliesToFirstWindow(t *testing.T) {
	opts := testOptions()
	opts.StartHidden = true
	c, platform, _ := newTestController(opts)

	_, err := c.Start()
	require.NoError(t, err)
	platform.Windows()[0].Destroy()

	created, err := c.Start()
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, platform.Windows(), 2)
	assert.False(t, platform.Windows()[1].opts.Hidden)
}

func TestActivateNeverCreatesSecondWindow(t *testing.T) {
	c, platform, metrics := newTestController(testOptions())

	_, err := c.Start()
	require.NoError(t, err)
	for range 3 {
		created, err := c.Activate("second-instance")
		require.NoError(t, err)
		assert.False(t, created)
	}

	assert.Len(t, platform.Windows(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WindowsCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Activations.WithLabelValues("second-instance")))
}

func TestActivateRestoresMinimizedWindow(t *testing.T) {
	c, platform, _ := newTestController(testOptions())

	_, err := c.Start()
	require.NoError(t, err)
	win := platform.Windows()[0]
	win.minimized = true
	win.visible = false

	_, err = c.Activate("activate")
	require.NoError(t, err)
	assert.False(t, win.IsMinimized())
	assert.True(t, win.IsVisible())
}

func TestActivateRecreatesDestroyedWindow(t *testing.T) {
	c, platform, _ := newTestController(testOptions())

	_, err := c.Start()
	require.NoError(t, err)
	platform.Windows()[0].Destroy()

	created, err := c.Activate("activate")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, platform.Windows(), 2)
	assert.Same(t, platform.Windows()[1], c.Window())
}

func TestDisplayFailureLeavesNoWindow(t *testing.T) {
	tests := []struct {
		name    string
		display Display
		err     error
	}{
		{name: "display error", err: errors.New("no screens")},
		{name: "zero work area", display: Display{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, platform, _ := newTestController(testOptions())
			platform.display = tt.display
			platform.displayErr = tt.err

			created, err := c.Start()
			assert.ErrorIs(t, err, ErrNoDisplay)
			assert.False(t, created)
			assert.Nil(t, c.Window())
			assert.Empty(t, platform.Windows())
		})
	}
}

func TestStaleWindowOperationsAreNoOps(t *testing.T) {
	c, platform, metrics := newTestController(testOptions())

	_, err := c.Start()
	require.NoError(t, err)
	win := platform.Windows()[0]
	win.Destroy()

	assert.NotPanics(t, func() {
		c.Show()
		c.Hide()
		c.ToggleVisibility()
		c.LoadRemote()
		c.ShowOffline()
		c.ZoomIn()
		c.Navigate(testAppURL+"search", policy.WillNavigate)
	})

	assert.Empty(t, win.Loads())
	assert.Zero(t, win.OfflineLoads())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StaleWindowOps.WithLabelValues("show")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StaleWindowOps.WithLabelValues("navigate")))
}

func TestToggleVisibility(t *testing.T) {
	c, platform, _ := newTestController(testOptions())

	_, err := c.Start()
	require.NoError(t, err)
	win := platform.Windows()[0]

	c.ToggleVisibility()
	assert.False(t, win.IsVisible())
	c.ToggleVisibility()
	assert.True(t, win.IsVisible())
}

func TestRequestCloseHidesUnlessQuitting(t *testing.T) {
	c, platform, _ := newTestController(testOptions())

	_, err := c.Start()
	require.NoError(t, err)
	win := platform.Windows()[0]

	assert.True(t, c.RequestClose())
	assert.False(t, win.IsVisible())
	assert.False(t, win.IsDestroyed())

	c.Quit()
	assert.True(t, c.Quitting())
	assert.True(t, win.IsDestroyed())
	assert.Equal(t, 1, platform.quits)
	assert.False(t, c.RequestClose())
}

func TestNavigate(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		origin     policy.Origin
		want       policy.Decision
		wantLoads  int
		wantOpened int
	}{
		{"allowed host", "https://perplexity.ai/settings", policy.WillNavigate, policy.LoadInPlace, 1, 0},
		{"sign in provider", "https://accounts.google.com/o/oauth2", policy.WillNavigate, policy.LoadInPlace, 1, 0},
		{"foreign host", "https://example.com/", policy.WillNavigate, policy.OpenExternal, 0, 1},
		{"foreign popup", "https://example.com/", policy.WindowOpen, policy.OpenExternal, 0, 1},
		{"popup to own host", "https://www.perplexity.ai/page", policy.WindowOpen, policy.LoadInPlace, 1, 0},
		{"mailto popup", "mailto:a@b.c", policy.WindowOpen, policy.Block, 0, 0},
		{"mailto navigation is not handed out", "mailto:a@b.c", policy.WillNavigate, policy.OpenExternal, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, platform, _ := newTestController(testOptions())
			_, err := c.Start()
			require.NoError(t, err)

			assert.Equal(t, tt.want, c.Navigate(tt.url, tt.origin))
			assert.Len(t, platform.Windows()[0].Loads(), tt.wantLoads)
			assert.Len(t, platform.Opened(), tt.wantOpened)
		})
	}
}

func TestOpenExternalLink(t *testing.T) {
	c, platform, metrics := newTestController(testOptions())

	assert.False(t, c.OpenExternalLink("ftp://example.com/file"))
	assert.False(t, c.OpenExternalLink("javascript:alert(1)"))
	assert.Empty(t, platform.Opened())

	assert.True(t, c.OpenExternalLink("https://example.com/"))
	assert.Equal(t, []string{"https://example.com/"}, platform.Opened())

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ExternalOpens.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExternalOpens.WithLabelValues("opened")))
}

func TestApply(t *testing.T) {
	c, platform, _ := newTestController(testOptions())
	_, err := c.Start()
	require.NoError(t, err)
	win := platform.Windows()[0]

	c.Apply(connectivity.ActionNone)
	c.Apply(connectivity.ActionShowOffline)
	c.Apply(connectivity.ActionLoadRemote)

	assert.Equal(t, 1, win.OfflineLoads())
	assert.Equal(t, []string{testAppURL}, win.Loads())
}

func TestZoomIsClamped(t *testing.T) {
	c, platform, _ := newTestController(testOptions())
	_, err := c.Start()
	require.NoError(t, err)
	win := platform.Windows()[0]

	c.ZoomIn()
	assert.Equal(t, ZoomStep, c.ZoomLevel())

	for range 50 {
		c.ZoomIn()
	}
	assert.Equal(t, ZoomMax, c.ZoomLevel())
	assert.Equal(t, ZoomMax, win.zoom)

	for range 50 {
		c.ZoomOut()
	}
	assert.Equal(t, ZoomMin, c.ZoomLevel())

	c.ZoomReset()
	assert.Zero(t, c.ZoomLevel())
}

func TestZoomSurvivesLoads(t *testing.T) {
	c, platform, _ := newTestController(testOptions())
	_, err := c.Start()
	require.NoError(t, err)
	win := platform.Windows()[0]

	c.LoadRemote()
	assert.Zero(t, win.zoomCalls, "default zoom is not re-applied")

	c.ZoomIn()
	c.LoadRemote()
	c.ShowOffline()
	c.Navigate("https://www.perplexity.ai/page", policy.WillNavigate)

	assert.Equal(t, 4, win.zoomCalls)
	assert.Equal(t, ZoomStep, win.zoom)
}

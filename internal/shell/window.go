package shell

import (
	"errors"
	"math"
)

var (
	ErrNoWindow  = errors.New("no live window")
	ErrNoDisplay = errors.New("primary display geometry unavailable")
	ErrNotReady  = errors.New("platform not ready")
)

// Window is the handle of the single primary content surface.
type Window interface {
	IsDestroyed() bool
	IsVisible() bool
	IsMinimized() bool
	Show()
	Hide()
	Restore()
	Focus()
	// LoadURL replaces the current document with url.
	LoadURL(url string)
	// LoadOffline shows the bundled offline view.
	LoadOffline()
	SetZoomLevel(level float64)
	Destroy()
}

// Platform is the OS side of the shell: displays, window creation and the
// default URL handler.
type Platform interface {
	PrimaryDisplay() (Display, error)
	CreateWindow(opts WindowOptions) (Window, error)
	OpenExternal(url string) error
	Quit()
}

// Display is the work area of a screen in logical pixels.
type Display struct {
	X, Y          int
	Width, Height int
}

// Bounds is a window rectangle in logical pixels.
type Bounds struct {
	X, Y          int
	Width, Height int
}

// WindowOptions are passed to Platform.CreateWindow.
type WindowOptions struct {
	Title  string
	Bounds Bounds
	Hidden bool
}

// Geometry sizes a window relative to the display and centers it. The
// minimum size wins over the ratio, the display size wins over both.
func Geometry(d Display, opts Options) Bounds {
	w := int(float64(d.Width) * opts.WidthRatio)
	h := int(float64(d.Height) * opts.HeightRatio)

	w = min(max(w, opts.MinWidth), d.Width)
	h = min(max(h, opts.MinHeight), d.Height)

	return Bounds{
		X:      d.X + (d.Width-w)/2,
		Y:      d.Y + (d.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// Zoom levels follow the Chromium convention: each step scales by 20%.
const (
	ZoomStep = 0.5
	ZoomMin  = -3.0
	ZoomMax  = 5.0
	zoomBase = 1.2
)

// ZoomFactor converts a zoom level to a scale factor, 0 being 100%.
func ZoomFactor(level float64) float64 {
	return math.Pow(zoomBase, level)
}

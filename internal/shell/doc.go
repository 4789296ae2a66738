// Package shell manages the single application session: the primary window,
// its lifecycle and the event loop that drives it.
//
// Key Components:
//   - Session: owns the controller and connectivity monitor, serializes events
//   - Controller: window creation, visibility, navigation, zoom and quit
//   - Window/Platform: the contracts a desktop backend implements
//
// Every producer (platform callbacks, the content bridge, the instance API,
// the prober) only posts events; state is touched on the loop goroutine.
//
// Example Usage:
//
//	session, err := shell.NewSession(opts, true, shell.Dependencies{
//	    Platform: platform,
//	    Policy:   pol,
//	    Metrics:  metrics,
//	    Logger:   log,
//	})
//	go session.Run(ctx)
//	session.Post(ctx, shell.Event{Name: shell.EventReady})
package shell

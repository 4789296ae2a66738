// Package desktop binds the shell contracts to a native Wails v2 window.
//
// Platform and its window implement shell.Platform and shell.Window on top of
// the Wails runtime. Bridge is bound to the webview and forwards every call
// from the page as a session event.
//
// Wails injects nothing into remote documents, so each window keeps offering
// hook.js to whatever document is showing. The hook reports navigation,
// connectivity and finished loads back through the bridge. The embedded
// root is a loading screen; it routes to offline.html only after LoadOffline.
//
// Wails requires the desktop build tags:
//
//	go build -tags desktop,production ./cmd/webshell
package desktop

// Command webshell hosts a single remote web application in a native window.
//
// Only one instance runs per user. A second launch asks the running one to
// show its window and exits.
//
// Usage:
//
//	webshell [flags]
//
// Flags:
//
//	-hidden           start with the window hidden (also --hidden)
//	-autostart on|off enable or disable launch at login, then exit
//	-version          print build metadata and exit
//
// Configuration is read from the TOML file named by WEBSHELL_CONFIG or the
// user config directory, a .env file and the environment; see package config.
package main

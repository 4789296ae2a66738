// Package config provides layered configuration for the shell.
//
// Values are resolved in order, later layers winning:
//   - Defaults (Default)
//   - TOML file: $WEBSHELL_CONFIG or <UserConfigDir>/webshell/config.toml
//   - .env file in the working directory
//   - Environment variables
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.App.URL)
//
// Environment Variables:
//   - APP_ID, APP_NAME, APP_URL, APP_ALLOWED_HOSTS (comma separated)
//   - WINDOW_WIDTH_RATIO, WINDOW_HEIGHT_RATIO, WINDOW_MIN_WIDTH, WINDOW_MIN_HEIGHT, START_HIDDEN
//   - PROBE_ENABLED, PROBE_INTERVAL, PROBE_TIMEOUT
//   - INSTANCE_SOCKET
//   - LOG_LEVEL, LOG_DEV
//   - SCREENSHOT_MODE, SCREENSHOT_PATH
package config

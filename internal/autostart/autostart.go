// Package autostart registers the shell to launch hidden at login through an
// XDG autostart entry. The entry's presence is the only persisted state.
package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HiddenFlag is appended to the launch command.
const HiddenFlag = "--hidden"

// Entry describes the autostart entry of one application.
type Entry struct {
	AppID string
	Name  string
	// Exec is the absolute path of the executable.
	Exec string
}

// Path returns the location of the entry file.
func (e Entry) Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, "autostart", e.AppID+".desktop"), nil
}

// Enabled reports whether the entry exists.
func (e Entry) Enabled() (bool, error) {
	path, err := e.Path()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Enable writes the entry, replacing any previous one.
func (e Entry) Enable() error {
	if e.AppID == "" || e.Exec == "" {
		return errors.New("autostart entry needs an app id and an executable")
	}
	path, err := e.Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".autostart-*")
	if err != nil {
		return fmt.Errorf("create autostart entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(e.render()); err != nil {
		tmp.Close()
		return fmt.Errorf("write autostart entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Disable removes the entry. Removing a missing entry is not an error.
func (e Entry) Disable() error {
	path, err := e.Path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove autostart entry: %w", err)
	}
	return nil
}

func (e Entry) render() string {
	name := e.Name
	if name == "" {
		name = e.AppID
	}

	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", name)
	fmt.Fprintf(&b, "Exec=%s %s\n", quoteExec(e.Exec), HiddenFlag)
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

var execEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)

// quoteExec quotes an Exec argument per the desktop entry rules. A literal
// percent sign is written as %% so it is not read as a field code.
func quoteExec(arg string) string {
	arg = strings.ReplaceAll(arg, "%", "%%")
	if !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`") {
		return arg
	}
	return `"` + execEscaper.Replace(arg) + `"`
}

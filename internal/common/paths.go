package common

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading ~ against the current user's home
// directory. Paths without one come back unchanged.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	usr, err := user.Current()
	if err != nil {
		return path
	}

	if path == "~" {
		return usr.HomeDir
	}

	return filepath.Join(usr.HomeDir, strings.TrimPrefix(path, "~/"))
}

// ConfigDir returns ~/.config/gramctl, creating it with owner-only
// permissions when missing.
func ConfigDir() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(usr.HomeDir, ".config", "gramctl")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", err
		}
	}

	return dir, nil
}

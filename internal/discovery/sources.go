// Package discovery inspects the locally installed editor client to find
// out which account it is currently signed in with.
package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Editions are the client builds whose state stores are probed, in order.
var Editions = []string{"Windsurf", "Windsurf - Next"}

// StatePath returns the state store location of one client edition on the
// current OS.
func StatePath(edition string) string {
	tail := filepath.Join(edition, "User", "globalStorage", "state.vscdb")
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, tail)
		}
		return expandPath(filepath.Join("~/AppData/Roaming", tail))
	case "darwin":
		return expandPath(filepath.Join("~/Library/Application Support", tail))
	default:
		if cfg := os.Getenv("XDG_CONFIG_HOME"); cfg != "" {
			return filepath.Join(cfg, tail)
		}
		return expandPath(filepath.Join("~/.config", tail))
	}
}

// DefaultStatePath returns the first existing state store, or the stable
// edition's location when none exists.
func DefaultStatePath() string {
	for _, edition := range Editions {
		if p := StatePath(edition); fileExists(p) {
			return p
		}
	}
	return StatePath(Editions[0])
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

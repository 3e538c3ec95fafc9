package cfg

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const appName = "navireader"

// ResolveDataDir picks the store root: an explicit directory wins, then an
// existing ~/.navireader, then the XDG data directory.
func ResolveDataDir(explicit string) string {
	home, _ := os.UserHomeDir()
	return resolveDataDir(explicit, home, xdg.DataHome)
}

func resolveDataDir(explicit, home, dataHome string) string {
	if explicit != "" {
		return ExpandHome(explicit, home)
	}

	if home != "" {
		legacy := filepath.Join(home, "."+appName)
		if info, err := os.Stat(legacy); err == nil && info.IsDir() {
			return legacy
		}
	}

	if dataHome != "" {
		return filepath.Join(dataHome, appName)
	}

	return filepath.Join(home, "."+appName)
}

func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yml")
}

// DefaultScanPath is the notes directory searched for #feed tags when none is configured.
func DefaultScanPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "git", currentUsername(), "zet")
}

func currentUsername() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if name := os.Getenv(key); name != "" {
			return name
		}
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return filepath.Base(u.Username)
	}
	return "user"
}

// ExpandHome replaces a leading ~ with home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

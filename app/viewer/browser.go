package viewer

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// startCommand launches an external program without waiting for it.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenURL opens an http(s) link in the system browser.
func OpenURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	switch runtime.GOOS {
	case "darwin":
		return startCommand("open", rawURL)
	case "windows":
		return startCommand("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return startCommand("xdg-open", rawURL)
	}
}

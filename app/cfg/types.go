package cfg

import (
	"time"

	"github.com/lysyi3m/navireader/app/feed"
)

type Cfg struct {
	// Storage
	DataDir    string
	ConfigFile string

	// Fetching
	Concurrency    int
	Timeout        time.Duration
	UserAgent      string
	HostDelay      time.Duration
	ExtractContent bool
	Filters        []feed.Filter

	// Notes
	ScanPath string
	NotesDir string

	Debug   bool
	Version string
}

// Options are the global command line options shared by every command.
type Options struct {
	DataDir    string `long:"data-dir" env:"NAVIREADER_DATA_DIR" description:"Directory holding the article cache (default: ~/.navireader or $XDG_DATA_HOME/navireader)"`
	ConfigFile string `long:"config" env:"NAVIREADER_CONFIG" description:"Path to the YAML config file (default: $XDG_CONFIG_HOME/navireader/config.yml)"`

	Concurrency    int           `long:"concurrency" env:"NAVIREADER_CONCURRENCY" default:"5" description:"Maximum number of feeds fetched at once"`
	Timeout        time.Duration `long:"timeout" env:"NAVIREADER_TIMEOUT" default:"30s" description:"Total time allowed for fetching one feed"`
	UserAgent      string        `long:"user-agent" env:"NAVIREADER_USER_AGENT" default:"NaviReader/0.1" description:"User agent string for HTTP requests"`
	HostDelay      time.Duration `long:"host-delay" env:"NAVIREADER_HOST_DELAY" default:"0s" description:"Minimum delay between requests to the same host"`
	ExtractContent bool          `long:"extract-content" env:"NAVIREADER_EXTRACT_CONTENT" description:"Fetch full article pages when a feed only carries summaries"`

	NotesDir string `long:"notes-dir" env:"NAVIREADER_NOTES_DIR" description:"Directory where notes are created (default: scan path)"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// FileConfig is the optional YAML config file.
type FileConfig struct {
	ScanPath       string        `yaml:"scan_path"`
	NotesDir       string        `yaml:"notes_dir"`
	ExtractContent bool          `yaml:"extract_content"`
	Filters        []feed.Filter `yaml:"filters"`
}

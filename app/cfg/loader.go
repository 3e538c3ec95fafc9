package cfg

import (
	"cmp"
	"fmt"
	"os"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

var globalCfg *Cfg

// Load resolves parsed command line options against the config file and
// the platform directories. Explicit options win over the file.
func Load(opts *Options) (*Cfg, error) {
	if opts == nil {
		opts = &Options{}
	}

	home, _ := os.UserHomeDir()

	configFile := cmp.Or(ExpandHome(opts.ConfigFile, home), DefaultConfigFile())
	fileConfig, err := LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must be non-negative")
	}
	if opts.Timeout < 0 || opts.HostDelay < 0 {
		return nil, fmt.Errorf("timeout and host delay must be non-negative")
	}

	scanPath := cmp.Or(ExpandHome(fileConfig.ScanPath, home), DefaultScanPath())

	cfg := &Cfg{
		DataDir:        ResolveDataDir(opts.DataDir),
		ConfigFile:     configFile,
		Concurrency:    opts.Concurrency,
		Timeout:        opts.Timeout,
		UserAgent:      opts.UserAgent,
		HostDelay:      opts.HostDelay,
		ExtractContent: opts.ExtractContent || fileConfig.ExtractContent,
		Filters:        fileConfig.Filters,
		ScanPath:       scanPath,
		NotesDir:       cmp.Or(ExpandHome(opts.NotesDir, home), ExpandHome(fileConfig.NotesDir, home), scanPath),
		Debug:          opts.Debug,
		Version:        GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

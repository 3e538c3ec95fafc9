package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/navireader/app/feed"
)

// LoadFile reads the YAML config file. A missing file yields an empty config.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig FileConfig
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateFile(&fileConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &fileConfig, nil
}

func validateFile(fileConfig *FileConfig) error {
	if fileConfig == nil {
		return fmt.Errorf("config is nil")
	}

	return feed.ValidateFilters(fileConfig.Filters)
}

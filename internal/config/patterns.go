package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jchaskell/cr/internal/transcript"
)

// LoadPatterns reads a pattern override file. The format follows the
// extension: .yaml/.yml or .toml. An empty path yields the defaults.
func LoadPatterns(path string) (transcript.Patterns, error) {
	if path == "" {
		return transcript.DefaultPatterns(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return transcript.Patterns{}, fmt.Errorf("read patterns: %w", err)
	}

	var src transcript.PatternSource
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &src)
	case ".toml":
		err = toml.Unmarshal(data, &src)
	default:
		return transcript.Patterns{}, fmt.Errorf("patterns file %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return transcript.Patterns{}, fmt.Errorf("decode patterns %s: %w", path, err)
	}

	p, err := transcript.Compile(src)
	if err != nil {
		return transcript.Patterns{}, fmt.Errorf("patterns %s: %w", path, err)
	}
	return p, nil
}

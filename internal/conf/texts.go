package conf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/squarelan/verify-relay/internal/service"
)

// LoadTexts loads user-facing texts from a YAML file. With no path the
// usual locations are tried, and the built-in texts are used when none
// exists. Empty fields keep their defaults.
func LoadTexts(path string) (service.Texts, error) {
	// Try multiple paths
	paths := []string{path}
	if path == "" {
		paths = []string{
			"configs/texts.yaml",
			"/etc/verify-relay/texts.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "texts.yaml"))
		}
	}

	var raw []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			raw, loadedPath = b, p
			break
		}
	}

	if raw == nil {
		if path != "" {
			return service.Texts{}, fmt.Errorf("failed to read %s", path)
		}
		return service.DefaultTexts(), nil
	}

	slog.Info("loading texts", "path", loadedPath)

	var texts service.Texts
	if err := yaml.Unmarshal(raw, &texts); err != nil {
		return service.Texts{}, fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}

	// Fill in defaults for empty values
	texts.FillDefaults()
	return texts, nil
}

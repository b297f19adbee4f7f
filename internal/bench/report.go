package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

// report is the on-disk shape of a comprehensive run.
type report struct {
	GeneratedAt time.Time           `yaml:"generated_at"`
	Categories  map[string][]Result `yaml:"categories"`
}

// WriteReport marshals the category results to a YAML file, creating parent
// directories as needed.
func WriteReport(path string, results map[string][]Result) error {
	data, err := yaml.Marshal(report{
		GeneratedAt: time.Now().UTC(),
		Categories:  results,
	})
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

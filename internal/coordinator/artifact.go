package coordinator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/faithogundimu/core/pkg/models"
)

// SaveDashboard writes the dashboard artifact into dir as both a run-stamped
// file and a stable dashboard.json consumed by presentation layers. Returns
// the stable path.
func SaveDashboard(dashboard models.Dashboard, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	raw, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal dashboard: %w", err)
	}

	stamped := filepath.Join(dir, fmt.Sprintf("dashboard_%s.json", dashboard.RunID))
	if err := os.WriteFile(stamped, raw, 0644); err != nil {
		return "", fmt.Errorf("write dashboard artifact: %w", err)
	}

	stable := filepath.Join(dir, "dashboard.json")
	if err := os.WriteFile(stable, raw, 0644); err != nil {
		return "", fmt.Errorf("write dashboard: %w", err)
	}
	return stable, nil
}

// LoadDashboard reads a saved dashboard artifact.
func LoadDashboard(path string) (models.Dashboard, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("read dashboard: %w", err)
	}

	var dashboard models.Dashboard
	if err := json.Unmarshal(raw, &dashboard); err != nil {
		return models.Dashboard{}, fmt.Errorf("parse dashboard: %w", err)
	}
	return dashboard, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Orchestra.MaxConcurrentCases != 8 {
		t.Errorf("MaxConcurrentCases = %d, want 8", cfg.Orchestra.MaxConcurrentCases)
	}
	if cfg.Orchestra.FetchTimeout != 15*time.Second {
		t.Errorf("FetchTimeout = %v, want 15s", cfg.Orchestra.FetchTimeout)
	}
	if cfg.Trials.MaxResults != 5 {
		t.Errorf("Trials.MaxResults = %d, want 5", cfg.Trials.MaxResults)
	}
	if cfg.Data.PathologyDB != "pathology_db.sqlite" {
		t.Errorf("PathologyDB = %q, want pathology_db.sqlite", cfg.Data.PathologyDB)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
data:
  dir: /srv/mdt/data
orchestration:
  max_concurrent_cases: 3
  fetch_timeout: 5s
trials:
  max_results: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Data.Dir != "/srv/mdt/data" {
		t.Errorf("Data.Dir = %q, want /srv/mdt/data", cfg.Data.Dir)
	}
	if cfg.Orchestra.MaxConcurrentCases != 3 {
		t.Errorf("MaxConcurrentCases = %d, want 3", cfg.Orchestra.MaxConcurrentCases)
	}
	if cfg.Orchestra.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.Orchestra.FetchTimeout)
	}
	if cfg.Trials.MaxResults != 2 {
		t.Errorf("Trials.MaxResults = %d, want 2", cfg.Trials.MaxResults)
	}
	// Values absent from the file keep defaults.
	if cfg.PubMed.MaxResults != 5 {
		t.Errorf("PubMed.MaxResults = %d, want default 5", cfg.PubMed.MaxResults)
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFromPath() with missing file: want error, got nil")
	}
}

func TestGetUserConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/home/mdt/.config")

	want := filepath.Join("/home/mdt/.config", "core", "config.yaml")
	if got := GetUserConfigPath(); got != want {
		t.Errorf("GetUserConfigPath() = %q, want %q", got, want)
	}
}

func TestDataConfig_Path(t *testing.T) {
	d := DataConfig{Dir: "/srv/data"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"relative joins dir", "pathology_db.sqlite", "/srv/data/pathology_db.sqlite"},
		{"absolute passes through", "/tmp/other.sqlite", "/tmp/other.sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Path(tt.in); got != tt.want {
				t.Errorf("Path(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

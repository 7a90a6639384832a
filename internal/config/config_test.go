package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Nodes.SplitCost != 8 {
		t.Errorf("expected split cost 8, got %d", cfg.Nodes.SplitCost)
	}
	if cfg.Nodes.AAPreference != 16 {
		t.Errorf("expected axial preference 16, got %d", cfg.Nodes.AAPreference)
	}
	if cfg.Nodes.MaxSegs != 64 {
		t.Errorf("expected max segs 64, got %d", cfg.Nodes.MaxSegs)
	}
	if cfg.Lightmap.SampleCount != 256 {
		t.Errorf("expected sample count 256, got %d", cfg.Lightmap.SampleCount)
	}
	if cfg.Lightmap.BounceCount != 2048 {
		t.Errorf("expected bounce count 2048, got %d", cfg.Lightmap.BounceCount)
	}
	if cfg.Lightmap.AtlasSize != 2048 {
		t.Errorf("expected atlas size 2048, got %d", cfg.Lightmap.AtlasSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zdray.yaml")
	yaml := []byte("nodes:\n  split_cost: 12\nlightmap:\n  atlas_size: 4096\n")
	if err := os.WriteFile(path, yaml, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if cfg.Nodes.SplitCost != 12 {
		t.Errorf("expected overridden split cost 12, got %d", cfg.Nodes.SplitCost)
	}
	if cfg.Lightmap.AtlasSize != 4096 {
		t.Errorf("expected overridden atlas size 4096, got %d", cfg.Lightmap.AtlasSize)
	}
	// Fields not present in the override file keep their defaults.
	if cfg.Nodes.AAPreference != 16 {
		t.Errorf("expected untouched axial preference 16, got %d", cfg.Nodes.AAPreference)
	}
}

func TestFlagsApplyOverridesDefaults(t *testing.T) {
	flags := NewFlags()
	if _, err := flags.Parse([]string{"-s", "20", "-S", "1024", "-debug"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg := Default()
	flags.Apply(cfg)

	if cfg.Nodes.SplitCost != 20 {
		t.Errorf("expected split cost 20, got %d", cfg.Nodes.SplitCost)
	}
	if cfg.Lightmap.AtlasSize != 1024 {
		t.Errorf("expected atlas size 1024, got %d", cfg.Lightmap.AtlasSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug logging, got %s", cfg.Logging.Level)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Nodes.SplitCost = 99
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if loaded.Nodes.SplitCost != 99 {
		t.Errorf("expected round-tripped split cost 99, got %d", loaded.Nodes.SplitCost)
	}
}

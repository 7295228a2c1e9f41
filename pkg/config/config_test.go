package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Analysis.Language != "python" {
		t.Errorf("Analysis.Language = %s, want python", cfg.Analysis.Language)
	}
	if cfg.Analysis.Threshold != 0.75 {
		t.Errorf("Analysis.Threshold = %f, want 0.75", cfg.Analysis.Threshold)
	}
	if cfg.Analysis.MaxRepos != 10 {
		t.Errorf("Analysis.MaxRepos = %d, want 10", cfg.Analysis.MaxRepos)
	}

	if cfg.Weights.Token+cfg.Weights.Semantic != 1.0 {
		t.Errorf("weights sum to %f, want 1.0", cfg.Weights.Token+cfg.Weights.Semantic)
	}

	if cfg.Preprocess.MaxChars != 10000 {
		t.Errorf("Preprocess.MaxChars = %d, want 10000", cfg.Preprocess.MaxChars)
	}
	if cfg.Preprocess.MinTokens != 10 {
		t.Errorf("Preprocess.MinTokens = %d, want 10", cfg.Preprocess.MinTokens)
	}

	if cfg.Commits.MaxPerRepo != 50 {
		t.Errorf("Commits.MaxPerRepo = %d, want 50", cfg.Commits.MaxPerRepo)
	}
	if !cfg.Commits.SkipAutomated {
		t.Error("Commits.SkipAutomated should be true by default")
	}

	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "threshold above 1",
			mutate:  func(c *Config) { c.Analysis.Threshold = 1.5 },
			wantErr: true,
		},
		{
			name:    "threshold below 0",
			mutate:  func(c *Config) { c.Analysis.Threshold = -0.1 },
			wantErr: true,
		},
		{
			name:    "misordered bands",
			mutate:  func(c *Config) { c.Bands.High = 0.99 },
			wantErr: true,
		},
		{
			name:    "equal band cut points",
			mutate:  func(c *Config) { c.Bands.Medium = c.Bands.High },
			wantErr: true,
		},
		{
			name:    "weights do not sum to 1",
			mutate:  func(c *Config) { c.Weights.Token = 0.7 },
			wantErr: true,
		},
		{
			name: "uneven weights that sum to 1",
			mutate: func(c *Config) {
				c.Weights.Token = 0.3
				c.Weights.Semantic = 0.7
			},
		},
		{
			name:    "non-positive max chars",
			mutate:  func(c *Config) { c.Preprocess.MaxChars = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoguard.toml")
	content := `
[analysis]
language = "java"
threshold = 0.8

[preprocess]
aggressive = true
max_chars = 5000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Analysis.Language != "java" {
		t.Errorf("Language = %s, want java", cfg.Analysis.Language)
	}
	if cfg.Analysis.Threshold != 0.8 {
		t.Errorf("Threshold = %f, want 0.8", cfg.Analysis.Threshold)
	}
	if !cfg.Preprocess.Aggressive {
		t.Error("Aggressive should be true")
	}
	if cfg.Preprocess.MaxChars != 5000 {
		t.Errorf("MaxChars = %d, want 5000", cfg.Preprocess.MaxChars)
	}
	// Untouched sections keep their defaults.
	if cfg.Analysis.MaxRepos != 10 {
		t.Errorf("MaxRepos = %d, want default 10", cfg.Analysis.MaxRepos)
	}
	if cfg.Commits.MaxPerRepo != 50 {
		t.Errorf("Commits.MaxPerRepo = %d, want default 50", cfg.Commits.MaxPerRepo)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoguard.yaml")
	content := `
analysis:
  threshold: 0.6
bands:
  critical: 0.9
  high: 0.8
  medium: 0.7
  low: 0.6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Analysis.Threshold != 0.6 {
		t.Errorf("Threshold = %f, want 0.6", cfg.Analysis.Threshold)
	}
	if cfg.Bands.Critical != 0.9 {
		t.Errorf("Bands.Critical = %f, want 0.9", cfg.Bands.Critical)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoguard.toml")
	content := `
[bands]
critical = 0.5
high = 0.9
medium = 0.7
low = 0.6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should reject misordered bands")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() should fail on missing file")
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	cfg := LoadOrDefault()
	if cfg.Analysis.Language != "python" {
		t.Errorf("Language = %s, want default python", cfg.Analysis.Language)
	}
}

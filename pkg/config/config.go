package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Validation errors surfaced at submission time, before any job is created.
var (
	ErrTooFewRepos         = errors.New("at least 2 repositories required")
	ErrTooManyRepos        = errors.New("repository count exceeds the configured cap")
	ErrThresholdRange      = errors.New("threshold must be between 0 and 1")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrBandOrdering        = errors.New("band thresholds must be ordered critical > high > medium > low")
	ErrWeightSum           = errors.New("token and semantic weights must sum to 1")
)

// Config holds all configuration options for repoguard.
type Config struct {
	Analysis   AnalysisConfig   `koanf:"analysis"`
	Bands      BandConfig       `koanf:"bands"`
	Weights    WeightConfig     `koanf:"weights"`
	Preprocess PreprocessConfig `koanf:"preprocess"`
	Commits    CommitConfig     `koanf:"commits"`
	Output     OutputConfig     `koanf:"output"`
}

// AnalysisConfig controls job-level analysis parameters.
type AnalysisConfig struct {
	Language  string  `koanf:"language"`
	Branch    string  `koanf:"branch"`
	Threshold float64 `koanf:"threshold"`
	MaxRepos  int     `koanf:"max_repos"`
}

// BandConfig defines the confidence band cut points. They must be
// strictly ordered critical > high > medium > low.
type BandConfig struct {
	Critical float64 `koanf:"critical"`
	High     float64 `koanf:"high"`
	Medium   float64 `koanf:"medium"`
	Low      float64 `koanf:"low"`
}

// WeightConfig controls the token/semantic blend. Weights must sum to 1.
type WeightConfig struct {
	Token    float64 `koanf:"token"`
	Semantic float64 `koanf:"semantic"`
}

// PreprocessConfig controls source normalization.
type PreprocessConfig struct {
	// MaxChars truncates normalized text at a raw character offset
	// before embedding. Tunable; character-offset truncation is the
	// conservative default.
	MaxChars int `koanf:"max_chars"`
	// MinTokens excludes files shorter than this after normalization.
	MinTokens int `koanf:"min_tokens"`
	// Aggressive replaces identifiers with positional placeholders.
	Aggressive bool `koanf:"aggressive"`
}

// CommitConfig bounds commit history inspection.
type CommitConfig struct {
	// MaxPerRepo caps the most-recent-commit window per repository.
	MaxPerRepo int `koanf:"max_per_repo"`
	// MaxDiffLines caps the added/removed lines kept per synthetic diff.
	MaxDiffLines int `koanf:"max_diff_lines"`
	// SkipAutomated drops merge/bump/bot commits before comparison.
	SkipAutomated bool `koanf:"skip_automated"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, markdown
	Color  bool   `koanf:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Language:  "python",
			Threshold: 0.75,
			MaxRepos:  10,
		},
		Bands: BandConfig{
			Critical: 0.95,
			High:     0.75,
			Medium:   0.65,
			Low:      0.50,
		},
		Weights: WeightConfig{
			Token:    0.5,
			Semantic: 0.5,
		},
		Preprocess: PreprocessConfig{
			MaxChars:   10000,
			MinTokens:  10,
			Aggressive: false,
		},
		Commits: CommitConfig{
			MaxPerRepo:    50,
			MaxDiffLines:  100,
			SkipAutomated: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks the invariants the engine depends on. A misordered
// band configuration is a configuration error, not a silent
// misclassification.
func (c *Config) Validate() error {
	if c.Analysis.Threshold < 0 || c.Analysis.Threshold > 1 {
		return ErrThresholdRange
	}
	if c.Analysis.MaxRepos < 2 {
		return fmt.Errorf("%w: max_repos must be at least 2", ErrTooFewRepos)
	}
	b := c.Bands
	if !(b.Critical > b.High && b.High > b.Medium && b.Medium > b.Low) {
		return ErrBandOrdering
	}
	if math.Abs(c.Weights.Token+c.Weights.Semantic-1.0) > 1e-9 {
		return ErrWeightSum
	}
	if c.Preprocess.MaxChars <= 0 {
		return fmt.Errorf("preprocess.max_chars must be positive (got %d)", c.Preprocess.MaxChars)
	}
	if c.Commits.MaxPerRepo < 0 {
		return fmt.Errorf("commits.max_per_repo must not be negative (got %d)", c.Commits.MaxPerRepo)
	}
	return nil
}

// Load loads configuration from a file, merged over defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config locations or returns defaults.
func LoadOrDefault() *Config {
	names := []string{
		"repoguard.toml",
		"repoguard.yaml",
		"repoguard.yml",
		"repoguard.json",
		".repoguard.toml",
		".repoguard.yaml",
		".repoguard.yml",
		".repoguard.json",
	}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}

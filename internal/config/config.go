// Package config loads the optional JSON run configuration for the
// load-confounds tool. Fields omitted from the file keep their defaults, so
// partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/llevitis/fmriprep-load-confounds/internal/confounds"
)

// Defaults applied when fields are omitted.
const (
	DefaultMotionModel  = "6params"
	DefaultNComponents  = 0.95
	DefaultOutputDir    = "out"
	DefaultOutputSuffix = "_confounds.tsv"
)

// RunConfig mirrors the command-line flags so recurring setups can live in a
// JSON file. Flags override file values; see cmd/load-confounds.
type RunConfig struct {
	Strategies       []string `json:"strategies,omitempty"`
	MotionModel      *string  `json:"motion_model,omitempty"`
	NComponents      *float64 `json:"n_components,omitempty"`
	UniformFullModel *bool    `json:"uniform_full_model,omitempty"`
	Workers          *int     `json:"workers,omitempty"`
	OutputDir        *string  `json:"output_dir,omitempty"`
	OutputSuffix     *string  `json:"output_suffix,omitempty"`
	JournalPath      *string  `json:"journal_path,omitempty"`
	ReportDir        *string  `json:"report_dir,omitempty"`
	KeepGoing        *bool    `json:"keep_going,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyRunConfig returns a RunConfig with all fields unset.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// LoadRunConfig loads a RunConfig from a JSON file. The file must have a
// .json extension and stay under the max file size.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RunConfig) Validate() error {
	if c.MotionModel != nil && !confounds.IsValidMotionModel(*c.MotionModel) {
		return fmt.Errorf("invalid motion_model %q: valid models are %s",
			*c.MotionModel, confounds.GetValidMotionModelsString())
	}

	if c.NComponents != nil {
		if _, err := confounds.ParseReductionSpec(*c.NComponents); err != nil {
			return fmt.Errorf("invalid n_components: %w", err)
		}
	}

	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	return nil
}

// GetStrategies returns the strategy list or the default.
func (c *RunConfig) GetStrategies() []string {
	if len(c.Strategies) == 0 {
		return []string{string(confounds.StrategyMinimal)}
	}
	return c.Strategies
}

// GetMotionModel returns the motion_model value or the default.
func (c *RunConfig) GetMotionModel() string {
	if c.MotionModel == nil || *c.MotionModel == "" {
		return DefaultMotionModel
	}
	return *c.MotionModel
}

// GetNComponents returns the n_components value or the default.
func (c *RunConfig) GetNComponents() float64 {
	if c.NComponents == nil {
		return DefaultNComponents
	}
	return *c.NComponents
}

// GetUniformFullModel returns the uniform_full_model value or the default.
func (c *RunConfig) GetUniformFullModel() bool {
	if c.UniformFullModel == nil {
		return false
	}
	return *c.UniformFullModel
}

// GetWorkers returns the workers value or the default (0 = one per CPU).
func (c *RunConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetOutputDir returns the output_dir value or the default.
func (c *RunConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return DefaultOutputDir
	}
	return *c.OutputDir
}

// GetOutputSuffix returns the output_suffix value or the default.
func (c *RunConfig) GetOutputSuffix() string {
	if c.OutputSuffix == nil || *c.OutputSuffix == "" {
		return DefaultOutputSuffix
	}
	return *c.OutputSuffix
}

// GetJournalPath returns the journal_path value; empty disables the journal.
func (c *RunConfig) GetJournalPath() string {
	if c.JournalPath == nil {
		return ""
	}
	return *c.JournalPath
}

// GetReportDir returns the report_dir value; empty disables reports.
func (c *RunConfig) GetReportDir() string {
	if c.ReportDir == nil {
		return ""
	}
	return *c.ReportDir
}

// GetKeepGoing returns the keep_going value or the default.
func (c *RunConfig) GetKeepGoing() bool {
	if c.KeepGoing == nil {
		return false
	}
	return *c.KeepGoing
}

package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/rohankatakam/defacto/internal/errors"
	"github.com/rohankatakam/defacto/internal/history"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}
	return sb.String()
}

// Err returns the result as a config error, or nil when valid.
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	return apperrors.New(apperrors.ErrorTypeConfig, apperrors.SeverityHigh, strings.TrimSpace(vr.Error()))
}

// Log reports warnings through logger.
func (vr *ValidationResult) Log(logger logrus.FieldLogger) {
	for _, warn := range vr.Warnings {
		logger.Warn(warn)
	}
}

// Validate checks the configuration before any history is read.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	c.validateHistory(result)
	c.validateMatrix(result)
	c.validateStorage(result)
	c.validateLog(result)

	return result
}

func (c *Config) validateHistory(result *ValidationResult) {
	if _, err := history.ParseBackend(c.History.Backend); err != nil {
		result.AddError("history.backend must be git or go-git, got %q", c.History.Backend)
	}
	if _, err := c.Location(); err != nil {
		result.AddError("history.timezone %q is not a known time zone", c.History.Timezone)
	}
	if c.History.CachePath == "" {
		result.AddWarning("history.cache_path is not set, history will not be cached")
	}
}

func (c *Config) validateMatrix(result *ValidationResult) {
	if c.Matrix.WindowDays < 0 {
		result.AddError("matrix.window_days must be >= 0, got %d", c.Matrix.WindowDays)
	}
	if c.Matrix.Clip && c.Matrix.ClipMax <= 0 {
		result.AddError("matrix.clip_max must be > 0 when clipping, got %d", c.Matrix.ClipMax)
	}
	if c.Matrix.FilterFiles {
		if _, err := history.NewFilter(c.Matrix.SourcePattern, c.Matrix.Include, c.Matrix.Exclude); err != nil {
			result.AddError("matrix file filter is invalid: %v", err)
		}
	} else if len(c.Matrix.Include) > 0 || len(c.Matrix.Exclude) > 0 {
		result.AddWarning("matrix.include/exclude are ignored while filter_files is off")
	}
	if c.Matrix.Top < 0 {
		result.AddWarning("matrix.top is negative, every pair will be listed")
	}
}

func (c *Config) validateStorage(result *ValidationResult) {
	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.LocalPath == "" {
			result.AddError("storage.local_path is required for sqlite storage")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			result.AddError("storage.postgres_dsn (or POSTGRES_DSN) is required for postgres storage")
		} else if !strings.HasPrefix(c.Storage.PostgresDSN, "postgres://") && !strings.HasPrefix(c.Storage.PostgresDSN, "postgresql://") {
			result.AddError("storage.postgres_dsn must start with postgres:// or postgresql://")
		} else if strings.Contains(c.Storage.PostgresDSN, "sslmode=disable") {
			result.AddWarning("storage.postgres_dsn has sslmode=disable")
		}
	default:
		result.AddError("storage.type must be sqlite or postgres, got %q", c.Storage.Type)
	}
}

func (c *Config) validateLog(result *ValidationResult) {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		result.AddError("log.level %q is not a valid level", c.Log.Level)
	}
}

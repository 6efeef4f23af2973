package config

import (
	"fmt"

	"lab-reconciliation-engine/internal/duplicate"
	"lab-reconciliation-engine/internal/matcher"
	"lab-reconciliation-engine/internal/reconciler"
	"lab-reconciliation-engine/pkg/logger"
)

// CreateMatcherConfig builds a matching configuration from CLI overrides.
// Zero or negative overrides keep the production defaults.
func CreateMatcherConfig(dateTolerance, minConfidence, maxCandidates int) (*matcher.Config, error) {
	config := matcher.DefaultConfig()

	if dateTolerance > 0 {
		config.DateToleranceDays = dateTolerance
	}
	if minConfidence > 0 {
		config.MinSurfacedConfidence = minConfidence
	}
	if maxCandidates > 0 {
		config.MaxCandidatesPerPayable = maxCandidates
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}
	return config, nil
}

// CreateReconcilerConfig builds a reconciliation configuration from CLI
// overrides. A negative tolerance keeps the default one-day window; zero is
// a valid same-day-only window.
func CreateReconcilerConfig(dateTolerance int) (*reconciler.Config, error) {
	config := reconciler.DefaultConfig()

	if dateTolerance >= 0 {
		config.DateToleranceDays = dateTolerance
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reconciler config: %w", err)
	}
	return config, nil
}

// CreateTierTable builds the duplicate tier table the CLI runs with.
func CreateTierTable() (*duplicate.TierTable, error) {
	table := duplicate.DefaultTierTable()
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tier table: %w", err)
	}
	return table, nil
}

// CreateLoggerConfig builds the logger configuration for a CLI run. Logs go
// to stderr so reports on stdout stay machine-readable.
func CreateLoggerConfig(verbose bool) *logger.Config {
	config := logger.DefaultConfig()
	if verbose {
		config.Level = logger.DebugLevel
	} else {
		config.Level = logger.WarnLevel
	}
	return config
}

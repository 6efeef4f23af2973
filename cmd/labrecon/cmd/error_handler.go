package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	pkgerrors "lab-reconciliation-engine/pkg/errors"

	"github.com/spf13/viper"
)

// HandleError prints a user-facing message for the failure and returns the
// process exit code. Called by main after Execute fails; the root command
// silences cobra's own error printing so every failure goes through here.
func HandleError(err error) int {
	if err == nil {
		return 0
	}

	var engineErr *pkgerrors.EngineError
	if errors.As(err, &engineErr) {
		return handleEngineError(engineErr)
	}
	return handleGenericError(err)
}

func handleEngineError(err *pkgerrors.EngineError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	if help := categoryHelp(err.Category); help != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", help)
	}

	if viper.GetBool("verbose") && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}
	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func categoryHelp(category pkgerrors.Category) string {
	switch category {
	case pkgerrors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure you have proper permissions to access the file`

	case pkgerrors.CategoryParse:
		return `Parse error help:
• Verify the CSV file format and column headers
• Check amounts use either 1234.56 or 1.234,56 notation consistently
• Ensure dates use YYYY-MM-DD or DD/MM/YYYY
• Save the export in UTF-8 encoding`

	case pkgerrors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Ensure amounts are not negative
• Check that all values are within acceptable ranges`

	case pkgerrors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Try running with default settings first`

	default:
		return ""
	}
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"lab-reconciliation-engine/cmd/labrecon/config"
	"lab-reconciliation-engine/internal/matcher"
	"lab-reconciliation-engine/internal/parsers"
	"lab-reconciliation-engine/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the match command
var (
	payablesFile  string
	statementFile string
	outputFormat  string
	outputFile    string
	dateTolerance int
	minConfidence int
	maxCandidates int
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Suggest payable-to-bank-statement matches",
	Long: `Match compares open payables with bank statement debit lines and prints
ranked pairing suggestions with a confidence score. Suggestions never write
anything back; the operator confirms them in the accounts-payable system.

Examples:
  # Basic matching
  labrecon match --payables contas.csv --bank-statement extrato.csv

  # Wider date window, JSON report to a file
  labrecon match --payables contas.csv --bank-statement extrato.csv \
    --date-tolerance 5 --output-format json --output-file sugestoes.json

  # Only high-band suggestions
  labrecon match --payables contas.csv --bank-statement extrato.csv --min-confidence 85`,

	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&payablesFile, "payables", "p", "", "path to the payables CSV export (required)")
	matchCmd.Flags().StringVarP(&statementFile, "bank-statement", "b", "", "path to the bank statement CSV (required)")

	matchCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	matchCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	matchCmd.Flags().IntVarP(&dateTolerance, "date-tolerance", "d", 0, "date window in days for value matching (default 3)")
	matchCmd.Flags().IntVar(&minConfidence, "min-confidence", 0, "drop suggestions below this confidence (default 50)")
	matchCmd.Flags().IntVar(&maxCandidates, "max-candidates", 0, "suggestions kept per payable (default 3)")

	matchCmd.MarkFlagRequired("payables")
	matchCmd.MarkFlagRequired("bank-statement")

	// Keys are namespaced per command so a shared flag name like
	// date-tolerance keeps its own binding.
	viper.BindPFlag("match.payables", matchCmd.Flags().Lookup("payables"))
	viper.BindPFlag("match.bank-statement", matchCmd.Flags().Lookup("bank-statement"))
	viper.BindPFlag("match.output-format", matchCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("match.output-file", matchCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("match.date-tolerance", matchCmd.Flags().Lookup("date-tolerance"))
	viper.BindPFlag("match.min-confidence", matchCmd.Flags().Lookup("min-confidence"))
	viper.BindPFlag("match.max-candidates", matchCmd.Flags().Lookup("max-candidates"))
}

func validateMatchFlags(cmd *cobra.Command, args []string) error {
	payablesFile = viper.GetString("match.payables")
	statementFile = viper.GetString("match.bank-statement")
	outputFormat = viper.GetString("match.output-format")
	outputFile = viper.GetString("match.output-file")
	dateTolerance = viper.GetInt("match.date-tolerance")
	minConfidence = viper.GetInt("match.min-confidence")
	maxCandidates = viper.GetInt("match.max-candidates")

	if err := validateFileExists(payablesFile, "payables file"); err != nil {
		return err
	}
	if err := validateFileExists(statementFile, "bank statement file"); err != nil {
		return err
	}

	if _, err := reporter.ParseFormat(outputFormat); err != nil {
		return err
	}

	if dateTolerance < 0 {
		return fmt.Errorf("date tolerance cannot be negative")
	}
	if minConfidence < 0 || minConfidence > 100 {
		return fmt.Errorf("min confidence must be between 0 and 100")
	}

	return validateOutputFile(outputFile)
}

func runMatch(cmd *cobra.Command, args []string) error {
	payables, payableStats, err := parsers.LoadPayables(payablesFile)
	if err != nil {
		return err
	}
	records, recordStats, err := parsers.LoadBankRecords(statementFile)
	if err != nil {
		return err
	}
	reportSkippedRows(payablesFile, payableStats)
	reportSkippedRows(statementFile, recordStats)

	matcherConfig, err := config.CreateMatcherConfig(dateTolerance, minConfidence, maxCandidates)
	if err != nil {
		return err
	}

	engine := matcher.NewEngine(matcherConfig)
	candidates := engine.FindMatches(payables, records)
	unmatchedPayables := engine.UnmatchedPayables(candidates, payables, 0)
	unmatchedRecords := engine.UnmatchedBankRecords(candidates, records, 0)

	report := reporter.BuildMatchReport(candidates, payables, records,
		unmatchedPayables, unmatchedRecords)

	format, _ := reporter.ParseFormat(outputFormat)
	return writeReport(outputFile, func(w *os.File) error {
		return report.Render(w, format)
	})
}

// reportSkippedRows surfaces tolerated parse failures on stderr so a silent
// skip never hides a truncated export.
func reportSkippedRows(path string, stats *parsers.LoadStats) {
	if stats == nil || len(stats.SkippedRows) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: skipped %d of %d rows in %s\n",
		len(stats.SkippedRows), stats.TotalRows, filepath.Base(path))
	if viper.GetBool("verbose") {
		for _, rowErr := range stats.SkippedRows {
			fmt.Fprintf(os.Stderr, "  %v\n", rowErr)
		}
	}
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func validateOutputFile(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
	}
	return nil
}

// writeReport renders to the output file when one is set, stdout otherwise.
func writeReport(path string, render func(*os.File) error) error {
	if path == "" {
		return render(os.Stdout)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()
	return render(out)
}

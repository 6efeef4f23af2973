package cmd

import (
	"fmt"
	"os"

	"lab-reconciliation-engine/cmd/labrecon/config"
	"lab-reconciliation-engine/internal/parsers"
	"lab-reconciliation-engine/internal/reconciler"
	"lab-reconciliation-engine/internal/reporter"
	"lab-reconciliation-engine/internal/split"
	"lab-reconciliation-engine/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	closureFile        string
	transactionsFile   string
	reconcileFormat    string
	reconcileOutFile   string
	reconcileTolerance int
	applyResults       bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check closure items against recorded transactions",
	Long: `Reconcile verifies that every item in a cash closure has exactly one
recorded transaction backing it. Items without a matching transaction are
flagged SEM_COMPROVANTE, items with more than one DUPLICIDADE, and date
discrepancies on an otherwise clean match are flagged DATA.

With --apply, verdicts are written back onto the items and their payment is
split into cash and receivable components; items already carrying the same
verdict are left untouched and conflicting links are reported, never
overwritten.

Examples:
  # Dry run, console report
  labrecon reconcile --closure fechamento.csv --transactions lancamentos.csv

  # Same-day window only, apply verdicts
  labrecon reconcile --closure fechamento.csv --transactions lancamentos.csv \
    --date-tolerance 0 --apply`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVarP(&closureFile, "closure", "c", "", "path to the closure items CSV (required)")
	reconcileCmd.Flags().StringVarP(&transactionsFile, "transactions", "t", "", "path to the recorded transactions CSV (required)")

	reconcileCmd.Flags().StringVarP(&reconcileFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&reconcileOutFile, "output-file", "o", "", "output file path (default: stdout)")

	reconcileCmd.Flags().IntVarP(&reconcileTolerance, "date-tolerance", "d", -1, "transaction lookup window in days (default 1)")
	reconcileCmd.Flags().BoolVar(&applyResults, "apply", false, "write verdicts and payment splits back onto the items")

	reconcileCmd.MarkFlagRequired("closure")
	reconcileCmd.MarkFlagRequired("transactions")

	viper.BindPFlag("reconcile.closure", reconcileCmd.Flags().Lookup("closure"))
	viper.BindPFlag("reconcile.transactions", reconcileCmd.Flags().Lookup("transactions"))
	viper.BindPFlag("reconcile.output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("reconcile.output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("reconcile.date-tolerance", reconcileCmd.Flags().Lookup("date-tolerance"))
	viper.BindPFlag("reconcile.apply", reconcileCmd.Flags().Lookup("apply"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	closureFile = viper.GetString("reconcile.closure")
	transactionsFile = viper.GetString("reconcile.transactions")
	reconcileFormat = viper.GetString("reconcile.output-format")
	reconcileOutFile = viper.GetString("reconcile.output-file")
	reconcileTolerance = viper.GetInt("reconcile.date-tolerance")
	applyResults = viper.GetBool("reconcile.apply")

	if err := validateFileExists(closureFile, "closure file"); err != nil {
		return err
	}
	if err := validateFileExists(transactionsFile, "transactions file"); err != nil {
		return err
	}

	if _, err := reporter.ParseFormat(reconcileFormat); err != nil {
		return err
	}

	return validateOutputFile(reconcileOutFile)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	items, itemStats, err := parsers.LoadServiceItems(closureFile)
	if err != nil {
		return err
	}
	transactions, txStats, err := parsers.LoadTransactions(transactionsFile)
	if err != nil {
		return err
	}
	reportSkippedRows(closureFile, itemStats)
	reportSkippedRows(transactionsFile, txStats)

	reconcilerConfig, err := config.CreateReconcilerConfig(reconcileTolerance)
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(config.CreateLoggerConfig(viper.GetBool("verbose")))
	if err != nil {
		return err
	}

	source := reconciler.NewSliceSource(transactions)
	results := reconciler.New(reconcilerConfig, log).Reconcile(items, source)

	report := reporter.BuildReconcileReport(results)
	format, _ := reporter.ParseFormat(reconcileFormat)
	if err := writeReport(reconcileOutFile, func(w *os.File) error {
		return report.Render(w, format)
	}); err != nil {
		return err
	}

	if !applyResults {
		return nil
	}

	splitCount := 0
	for _, item := range items {
		if split.ApplyToItem(item) {
			splitCount++
		}
	}
	totals := split.Sum(items)

	outcome := reconciler.Apply(items, results)
	fmt.Fprintf(os.Stderr, "Applied: %d updated, %d unchanged, %d conflicts\n",
		outcome.Updated, outcome.Unchanged, len(outcome.Conflicts))
	fmt.Fprintf(os.Stderr, "Payment split over %d items: cash %s, receivable %s\n",
		splitCount, totals.Cash.StringFixed(2), totals.Receivable.StringFixed(2))
	for _, conflict := range outcome.Conflicts {
		fmt.Fprintf(os.Stderr, "Conflict: %v\n", conflict)
	}

	return nil
}

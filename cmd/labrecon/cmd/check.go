package cmd

import (
	"fmt"
	"os"
	"strings"

	"lab-reconciliation-engine/cmd/labrecon/config"
	"lab-reconciliation-engine/internal/duplicate"
	"lab-reconciliation-engine/internal/models"
	"lab-reconciliation-engine/internal/parsers"
	"lab-reconciliation-engine/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the check command
var (
	checkPayablesFile   string
	checkDigitLine      string
	checkBarcode        string
	checkTaxpayerID     string
	checkDocumentNumber string
	checkBeneficiary    string
	checkAmount         string
	checkDueDate        string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Screen a document for duplicates before submission",
	Long: `Check classifies a document about to be entered against the registered
payables and reports the strongest duplicate evidence found: an exact
digit-line or barcode hit blocks the submission, weaker evidence is
surfaced for the operator to judge.

The command exits 1 when the submission is blocked, 0 otherwise.

Examples:
  labrecon check --payables contas.csv \
    --digit-line "34191.79001 01043.510047 91020.150008 6 96150000045000"

  labrecon check --payables contas.csv \
    --taxpayer-id 12.345.678/0001-90 --amount 450,00 --due-date 10/06/2024`,

	PreRunE: validateCheckFlags,
	RunE:    runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkPayablesFile, "payables", "p", "", "path to the payables CSV export (required)")

	checkCmd.Flags().StringVar(&checkDigitLine, "digit-line", "", "boleto digit line of the document")
	checkCmd.Flags().StringVar(&checkBarcode, "barcode", "", "boleto barcode of the document")
	checkCmd.Flags().StringVar(&checkTaxpayerID, "taxpayer-id", "", "supplier taxpayer ID (CNPJ/CPF)")
	checkCmd.Flags().StringVar(&checkDocumentNumber, "document-number", "", "supplier document number")
	checkCmd.Flags().StringVar(&checkBeneficiary, "beneficiary", "", "beneficiary name")
	checkCmd.Flags().StringVar(&checkAmount, "amount", "", "document amount")
	checkCmd.Flags().StringVar(&checkDueDate, "due-date", "", "document due date")

	checkCmd.MarkFlagRequired("payables")

	viper.BindPFlag("check.payables", checkCmd.Flags().Lookup("payables"))
}

func validateCheckFlags(cmd *cobra.Command, args []string) error {
	checkPayablesFile = viper.GetString("check.payables")

	if err := validateFileExists(checkPayablesFile, "payables file"); err != nil {
		return err
	}

	evidence := []string{checkDigitLine, checkBarcode, checkTaxpayerID,
		checkDocumentNumber, checkBeneficiary}
	for _, field := range evidence {
		if strings.TrimSpace(field) != "" {
			return nil
		}
	}
	return fmt.Errorf("at least one of --digit-line, --barcode, --taxpayer-id, --document-number or --beneficiary is required")
}

func runCheck(cmd *cobra.Command, args []string) error {
	records, stats, err := parsers.LoadPayables(checkPayablesFile)
	if err != nil {
		return err
	}
	reportSkippedRows(checkPayablesFile, stats)

	fingerprint := duplicate.Fingerprint{
		DigitLine:      checkDigitLine,
		Barcode:        checkBarcode,
		TaxpayerID:     checkTaxpayerID,
		DocumentNumber: checkDocumentNumber,
		Beneficiary:    checkBeneficiary,
	}
	if checkAmount != "" {
		amount, err := models.ParseAmount(checkAmount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		fingerprint.Amount = amount
	}
	if checkDueDate != "" {
		dueDate, err := models.ParseDate(checkDueDate)
		if err != nil {
			return fmt.Errorf("invalid due date: %w", err)
		}
		fingerprint.DueDate = dueDate
	}

	table, err := config.CreateTierTable()
	if err != nil {
		return err
	}

	verdict := duplicate.NewClassifier(table).Classify(fingerprint,
		duplicate.NewSliceLookup(records))
	reporter.RenderVerdict(os.Stdout, verdict)

	if !verdict.AllowContinue {
		return fmt.Errorf("submission blocked: %s", verdict.Reason)
	}
	return nil
}

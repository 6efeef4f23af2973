// Package models defines the data contracts shared by the reconciliation
// engine: payables, bank statement lines, LIS service items, recorded
// transactions, and the result values the engine produces for its callers.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// centTolerance is the threshold below which two amounts are considered
// equal to the cent.
var centTolerance = decimal.NewFromFloat(0.01)

// Direction represents the direction of a bank statement line.
type Direction string

const (
	// DirectionCredit represents money entering the account.
	DirectionCredit Direction = "CREDIT"
	// DirectionDebit represents money leaving the account.
	DirectionDebit Direction = "DEBIT"
)

// String returns the string representation of Direction.
func (d Direction) String() string {
	return string(d)
}

// IsValid checks if the direction is valid.
func (d Direction) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// ParseDirection parses and validates a direction from string.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CREDIT", "C", "CR", "ENTRADA":
		return DirectionCredit, nil
	case "DEBIT", "D", "DB", "SAIDA", "SAÍDA":
		return DirectionDebit, nil
	default:
		return "", fmt.Errorf("invalid direction '%s': must be CREDIT or DEBIT", s)
	}
}

// PayableStatus represents the lifecycle state of a payable.
type PayableStatus string

const (
	PayableStatusOpen      PayableStatus = "OPEN"
	PayableStatusPaid      PayableStatus = "PAID"
	PayableStatusCancelled PayableStatus = "CANCELLED"
)

// IsValid checks if the payable status is valid.
func (s PayableStatus) IsValid() bool {
	return s == PayableStatusOpen || s == PayableStatusPaid || s == PayableStatusCancelled
}

// ParsePayableStatus parses a payable status from string, accepting the
// Portuguese labels used by the upstream accounts-payable export.
func ParsePayableStatus(s string) (PayableStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN", "PENDING", "ABERTO", "PENDENTE", "":
		return PayableStatusOpen, nil
	case "PAID", "PAGO":
		return PayableStatusPaid, nil
	case "CANCELLED", "CANCELED", "CANCELADO":
		return PayableStatusCancelled, nil
	default:
		return "", fmt.Errorf("invalid payable status '%s'", s)
	}
}

// Payable represents an outgoing financial obligation awaiting payment.
// Payables are owned by the accounts-payable subsystem and are read-only
// to the engine.
type Payable struct {
	ID             string          `json:"id"`
	Beneficiary    string          `json:"beneficiary"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"dueDate"`
	DigitLine      string          `json:"digitLine,omitempty"`
	Barcode        string          `json:"barcode,omitempty"`
	TaxpayerID     string          `json:"taxpayerID,omitempty"`
	DocumentNumber string          `json:"documentNumber,omitempty"`
	Status         PayableStatus   `json:"status"`
}

// Validate performs basic validation on the Payable.
func (p *Payable) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("payable ID cannot be empty")
	}
	if p.Amount.IsNegative() {
		return fmt.Errorf("payable amount cannot be negative")
	}
	if p.DueDate.IsZero() {
		return fmt.Errorf("payable due date cannot be zero")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return fmt.Errorf("invalid payable status: %s", p.Status)
	}
	return nil
}

// IsCancelled returns true if the payable has been cancelled.
func (p *Payable) IsCancelled() bool {
	return p.Status == PayableStatusCancelled
}

// String returns a string representation of the Payable.
func (p *Payable) String() string {
	return fmt.Sprintf("Payable{ID: %s, Beneficiary: %s, Amount: %s, Due: %s}",
		p.ID, p.Beneficiary, p.Amount.String(), p.DueDate.Format("2006-01-02"))
}

// BankRecord represents one line of an imported bank statement. Records are
// supplied per reconciliation run and never persisted by the engine.
type BankRecord struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"direction"`
}

// Validate performs basic validation on the BankRecord.
func (b *BankRecord) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("bank record ID cannot be empty")
	}
	if b.Date.IsZero() {
		return fmt.Errorf("bank record date cannot be zero")
	}
	if !b.Direction.IsValid() {
		return fmt.Errorf("invalid bank record direction: %s", b.Direction)
	}
	return nil
}

// IsDebit returns true if the record represents outgoing money.
func (b *BankRecord) IsDebit() bool {
	return b.Direction == DirectionDebit
}

// AbsAmount returns the absolute value of the record amount. Statements from
// some banks carry debits as negative values.
func (b *BankRecord) AbsAmount() decimal.Decimal {
	return b.Amount.Abs()
}

// String returns a string representation of the BankRecord.
func (b *BankRecord) String() string {
	return fmt.Sprintf("BankRecord{ID: %s, Date: %s, Amount: %s, Direction: %s}",
		b.ID, b.Date.Format("2006-01-02"), b.Amount.String(), b.Direction)
}

// MatchType represents the strategy that produced a match candidate.
// The order of the constants is the strategy evaluation order: identifier
// evidence outranks value-date evidence, which outranks name evidence.
type MatchType int

const (
	// MatchExactIdentifier is a digit-line/barcode hit inside the bank
	// description. Strongest evidence.
	MatchExactIdentifier MatchType = iota
	// MatchExactValueDate is an exact amount within a small date window.
	MatchExactValueDate
	// MatchBeneficiaryName is a normalized-name containment with the value
	// inside a percentage tolerance.
	MatchBeneficiaryName
	// MatchManual marks a pairing recorded by an operator, not the engine.
	MatchManual
)

// String returns the string representation of MatchType.
func (mt MatchType) String() string {
	switch mt {
	case MatchExactIdentifier:
		return "exact-identifier"
	case MatchExactValueDate:
		return "exact-value-date"
	case MatchBeneficiaryName:
		return "beneficiary-name"
	case MatchManual:
		return "manual"
	default:
		return "unknown"
	}
}

// ConfidenceBand labels a confidence score range for display purposes.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
	BandNone   ConfidenceBand = "none"
)

// MatchCandidate represents one proposed pairing of a payable with a bank
// record. Candidates are produced per call, ranked, and returned; they are
// never mutated in place.
type MatchCandidate struct {
	Payable      *Payable        `json:"payable"`
	BankRecord   *BankRecord     `json:"bankRecord,omitempty"`
	Type         MatchType       `json:"type"`
	Confidence   int             `json:"confidence"`
	AmountDiff   decimal.Decimal `json:"amountDiff"`
	DateDiffDays int             `json:"dateDiffDays"`
}

// Band returns the confidence band for UI purposes: high >= 85,
// medium >= 70, low >= 50, none below.
func (mc *MatchCandidate) Band() ConfidenceBand {
	switch {
	case mc.Confidence >= 85:
		return BandHigh
	case mc.Confidence >= 70:
		return BandMedium
	case mc.Confidence >= 50:
		return BandLow
	default:
		return BandNone
	}
}

// String returns a string representation of the MatchCandidate.
func (mc *MatchCandidate) String() string {
	recordID := "-"
	if mc.BankRecord != nil {
		recordID = mc.BankRecord.ID
	}
	return fmt.Sprintf("MatchCandidate{Payable: %s, Record: %s, Type: %s, Confidence: %d}",
		mc.Payable.ID, recordID, mc.Type, mc.Confidence)
}

// PaymentMethod represents how a LIS service item was paid at the counter.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentPix    PaymentMethod = "PIX"
	PaymentCard   PaymentMethod = "CARD"
	PaymentUnpaid PaymentMethod = "UNPAID"
)

// IsValid checks if the payment method is valid.
func (pm PaymentMethod) IsValid() bool {
	switch pm {
	case PaymentCash, PaymentPix, PaymentCard, PaymentUnpaid:
		return true
	}
	return false
}

// ParsePaymentMethod parses a payment method from string, accepting the
// Portuguese labels found in LIS exports.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASH", "DINHEIRO":
		return PaymentCash, nil
	case "PIX":
		return PaymentPix, nil
	case "CARD", "CARTAO", "CARTÃO", "DEBITO", "CREDITO":
		return PaymentCard, nil
	case "UNPAID", "NAO PAGO", "NÃO PAGO", "PENDENTE", "":
		return PaymentUnpaid, nil
	default:
		return "", fmt.Errorf("invalid payment method '%s'", s)
	}
}

// PaymentStatus is the derived status of a service item's payment.
type PaymentStatus string

const (
	// StatusPendingClose marks cash in hand awaiting a cash closing.
	StatusPendingClose PaymentStatus = "PENDING_CLOSE"
	// StatusAwaitingPayment marks value still owed by a payer.
	StatusAwaitingPayment PaymentStatus = "AWAITING_PAYMENT"
	// StatusClosed marks an item already included in a closure.
	StatusClosed PaymentStatus = "CLOSED"
)

// ComprovanteStatus records the reconciliation verdict applied to an item.
type ComprovanteStatus string

const (
	ComprovanteUnchecked ComprovanteStatus = ""
	// ComprovanteConciliado marks an item paired to exactly one transaction.
	ComprovanteConciliado ComprovanteStatus = "CONCILIADO"
	// ComprovanteSemComprovante marks an item with no proof of payment.
	ComprovanteSemComprovante ComprovanteStatus = "SEM_COMPROVANTE"
	// ComprovanteDuplicidade marks an item with multiple equally valid
	// transactions; requires human resolution.
	ComprovanteDuplicidade ComprovanteStatus = "DUPLICIDADE"
)

// ServiceItem represents one LIS attendance row: a patient service with its
// payment method and the derived cash/receivable split.
type ServiceItem struct {
	ID          string    `json:"id"`
	ServiceCode string    `json:"serviceCode"`
	Date        time.Time `json:"date"`
	PatientName string    `json:"patientName,omitempty"`
	// ConvenioCode identifies the third-party payer; empty means private pay.
	ConvenioCode  string          `json:"convenioCode,omitempty"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	// GrossAmount is the full billable value. HasGross distinguishes a known
	// zero from an absent value.
	GrossAmount decimal.Decimal `json:"grossAmount"`
	HasGross    bool            `json:"hasGross"`

	CashComponent       decimal.Decimal `json:"cashComponent"`
	ReceivableComponent decimal.Decimal `json:"receivableComponent"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus,omitempty"`

	// ClosureID locks the item once it is assigned to a closed envelope.
	ClosureID         string            `json:"closureID,omitempty"`
	TransactionID     string            `json:"transactionID,omitempty"`
	ComprovanteStatus ComprovanteStatus `json:"comprovanteStatus,omitempty"`
}

// IsPrivatePay returns true when no convenio is billed for the item.
func (si *ServiceItem) IsPrivatePay() bool {
	return strings.TrimSpace(si.ConvenioCode) == ""
}

// IsLocked returns true once the item belongs to a closure; locked items
// are immutable to the selection and split layers.
func (si *ServiceItem) IsLocked() bool {
	return strings.TrimSpace(si.ClosureID) != ""
}

// Validate performs basic validation on the ServiceItem.
func (si *ServiceItem) Validate() error {
	if strings.TrimSpace(si.ID) == "" {
		return fmt.Errorf("service item ID cannot be empty")
	}
	if strings.TrimSpace(si.ServiceCode) == "" {
		return fmt.Errorf("service item code cannot be empty")
	}
	if si.Date.IsZero() {
		return fmt.Errorf("service item date cannot be zero")
	}
	if !si.PaymentMethod.IsValid() {
		return fmt.Errorf("invalid payment method: %s", si.PaymentMethod)
	}
	if si.AmountPaid.IsNegative() {
		return fmt.Errorf("amount paid cannot be negative")
	}
	return nil
}

// String returns a string representation of the ServiceItem.
func (si *ServiceItem) String() string {
	return fmt.Sprintf("ServiceItem{ID: %s, Code: %s, Date: %s, Paid: %s, Method: %s}",
		si.ID, si.ServiceCode, si.Date.Format("2006-01-02"), si.AmountPaid.String(), si.PaymentMethod)
}

// LabTransaction represents a financial transaction recorded in the
// back-office ledger, looked up during LIS reconciliation.
type LabTransaction struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	ReferenceCode string          `json:"referenceCode,omitempty"`
	Deleted       bool            `json:"deleted,omitempty"`
}

// Validate performs basic validation on the LabTransaction.
func (t *LabTransaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}
	return nil
}

// String returns a string representation of the LabTransaction.
func (t *LabTransaction) String() string {
	return fmt.Sprintf("LabTransaction{ID: %s, Date: %s, Amount: %s}",
		t.ID, t.Date.Format("2006-01-02"), t.Amount.String())
}

// DuplicateTier is the severity of a duplicate classification.
type DuplicateTier string

const (
	TierBlocked DuplicateTier = "blocked"
	TierHigh    DuplicateTier = "high"
	TierMedium  DuplicateTier = "medium"
	TierLow     DuplicateTier = "low"
	TierNone    DuplicateTier = "none"
)

// DuplicateVerdict is the advisory result of classifying a new document
// against existing records.
type DuplicateVerdict struct {
	Tier          DuplicateTier `json:"tier"`
	Reason        string        `json:"reason"`
	Conflict      *Payable      `json:"conflict,omitempty"`
	AllowContinue bool          `json:"allowContinue"`
}

// DivergenceType marks a secondary discrepancy on an otherwise matched item.
type DivergenceType string

const (
	DivergenceNone DivergenceType = ""
	// DivergenceDate marks a value match whose dates differ.
	DivergenceDate DivergenceType = "DATA"
)

// ReconcileResult pairs one LIS item with its reconciliation verdict.
type ReconcileResult struct {
	ItemID        string            `json:"itemID"`
	Verdict       ComprovanteStatus `json:"verdict"`
	TransactionID string            `json:"transactionID,omitempty"`
	Divergence    DivergenceType    `json:"divergence,omitempty"`
}

// Shared parsing and comparison helpers.

// ParseAmount parses a decimal value from string, tolerating currency
// symbols, thousands separators, and the Brazilian decimal comma.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)

	// "1.234,56" style: drop the thousands dot, turn the comma decimal.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format '%s': %w", s, err)
	}
	return d, nil
}

// ParseDate attempts to parse a date from string using the formats seen in
// bank and LIS exports.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	formats := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"02/01/2006",
		"02-01-2006",
		"2006/01/02",
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// DateOnly truncates a timestamp to its calendar date in UTC. Statement and
// LIS comparisons are date-based regardless of the time of day recorded.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateDiffDays returns the absolute calendar-day difference between two
// dates, ignoring the time of day.
func DateDiffDays(a, b time.Time) int {
	diff := DateOnly(a).Sub(DateOnly(b))
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// SameCents reports whether two amounts are equal to the cent.
func SameCents(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(centTolerance)
}

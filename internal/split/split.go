// Package split implements the payment component splitter: it divides a
// service item's value into the cash portion physically collected at the
// counter and the receivable portion still owed by a convenio, and derives
// the item's payment status. The cash component feeds cash-closing totals;
// the receivable component feeds accounts receivable.
package split

import (
	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
)

// Result is the outcome of splitting one payment.
type Result struct {
	Cash       decimal.Decimal
	Receivable decimal.Decimal
	Status     models.PaymentStatus
}

// Split determines the cash and receivable components for a payment.
//
// Rules are evaluated in order, first match wins:
//  1. UNPAID: nothing collected, everything receivable.
//  2. Private pay: everything collected, nothing receivable.
//  3. Convenio with a patient co-payment: the paid part is cash, the
//     remainder of the gross value is receivable.
//  4. Pure convenio billing: nothing collected, gross value receivable.
//
// Negative inputs are clamped to zero; the function never fails and has no
// side effects, so it is safe to call repeatedly and in parallel.
func Split(isPrivatePay bool, method models.PaymentMethod, amountPaid, grossAmount decimal.Decimal, hasGross bool) Result {
	if amountPaid.IsNegative() {
		amountPaid = decimal.Zero
	}
	if grossAmount.IsNegative() {
		grossAmount = decimal.Zero
	}

	grossOrPaid := amountPaid
	if hasGross {
		grossOrPaid = grossAmount
	}

	switch {
	case method == models.PaymentUnpaid:
		return Result{
			Cash:       decimal.Zero,
			Receivable: grossOrPaid,
			Status:     models.StatusAwaitingPayment,
		}

	case isPrivatePay:
		return Result{
			Cash:       amountPaid,
			Receivable: decimal.Zero,
			Status:     models.StatusPendingClose,
		}

	case amountPaid.IsPositive():
		receivable := grossOrPaid.Sub(amountPaid)
		if receivable.IsNegative() {
			receivable = decimal.Zero
		}
		return Result{
			Cash:       amountPaid,
			Receivable: receivable,
			Status:     models.StatusPendingClose,
		}

	default:
		receivable := decimal.Zero
		if hasGross {
			receivable = grossAmount
		}
		return Result{
			Cash:       decimal.Zero,
			Receivable: receivable,
			Status:     models.StatusAwaitingPayment,
		}
	}
}

// ApplyToItem fills the derived split fields on a service item. Items
// already assigned to a closure are locked and left untouched; the return
// value reports whether the item was updated.
func ApplyToItem(item *models.ServiceItem) bool {
	if item == nil || item.IsLocked() {
		return false
	}

	result := Split(item.IsPrivatePay(), item.PaymentMethod, item.AmountPaid, item.GrossAmount, item.HasGross)
	item.CashComponent = result.Cash
	item.ReceivableComponent = result.Receivable
	item.PaymentStatus = result.Status
	return true
}

// Totals aggregates component totals over a batch of items, typically the
// candidate set for one cash closing.
type Totals struct {
	Cash       decimal.Decimal
	Receivable decimal.Decimal
	Items      int
}

// Sum computes the component totals of the given items. Locked items are
// included: their components were frozen when the closure was made.
func Sum(items []*models.ServiceItem) Totals {
	totals := Totals{
		Cash:       decimal.Zero,
		Receivable: decimal.Zero,
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		totals.Cash = totals.Cash.Add(item.CashComponent)
		totals.Receivable = totals.Receivable.Add(item.ReceivableComponent)
		totals.Items++
	}
	return totals
}

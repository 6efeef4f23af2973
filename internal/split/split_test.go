package split

import (
	"testing"

	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestSplitRules(t *testing.T) {
	tests := []struct {
		name           string
		isPrivatePay   bool
		method         models.PaymentMethod
		amountPaid     decimal.Decimal
		grossAmount    decimal.Decimal
		hasGross       bool
		wantCash       decimal.Decimal
		wantReceivable decimal.Decimal
		wantStatus     models.PaymentStatus
	}{
		{
			name:           "unpaid with gross",
			method:         models.PaymentUnpaid,
			amountPaid:     d(0),
			grossAmount:    d(300),
			hasGross:       true,
			wantCash:       d(0),
			wantReceivable: d(300),
			wantStatus:     models.StatusAwaitingPayment,
		},
		{
			name:           "unpaid without gross falls back to amount paid",
			method:         models.PaymentUnpaid,
			amountPaid:     d(120),
			wantCash:       d(0),
			wantReceivable: d(120),
			wantStatus:     models.StatusAwaitingPayment,
		},
		{
			name:           "private pay without gross",
			isPrivatePay:   true,
			method:         models.PaymentCash,
			amountPaid:     d(200),
			wantCash:       d(200),
			wantReceivable: d(0),
			wantStatus:     models.StatusPendingClose,
		},
		{
			name:           "private pay ignores gross",
			isPrivatePay:   true,
			method:         models.PaymentPix,
			amountPaid:     d(200),
			grossAmount:    d(500),
			hasGross:       true,
			wantCash:       d(200),
			wantReceivable: d(0),
			wantStatus:     models.StatusPendingClose,
		},
		{
			name:           "convenio with co-payment",
			method:         models.PaymentCard,
			amountPaid:     d(50),
			grossAmount:    d(300),
			hasGross:       true,
			wantCash:       d(50),
			wantReceivable: d(250),
			wantStatus:     models.StatusPendingClose,
		},
		{
			name:           "convenio co-payment above gross clamps receivable",
			method:         models.PaymentCash,
			amountPaid:     d(350),
			grossAmount:    d(300),
			hasGross:       true,
			wantCash:       d(350),
			wantReceivable: d(0),
			wantStatus:     models.StatusPendingClose,
		},
		{
			name:           "pure convenio billing",
			method:         models.PaymentCash,
			amountPaid:     d(0),
			grossAmount:    d(300),
			hasGross:       true,
			wantCash:       d(0),
			wantReceivable: d(300),
			wantStatus:     models.StatusAwaitingPayment,
		},
		{
			name:           "pure convenio billing without gross",
			method:         models.PaymentCash,
			amountPaid:     d(0),
			wantCash:       d(0),
			wantReceivable: d(0),
			wantStatus:     models.StatusAwaitingPayment,
		},
		{
			name:           "negative inputs clamped",
			isPrivatePay:   true,
			method:         models.PaymentCash,
			amountPaid:     d(-10),
			grossAmount:    d(-20),
			hasGross:       true,
			wantCash:       d(0),
			wantReceivable: d(0),
			wantStatus:     models.StatusPendingClose,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.isPrivatePay, tt.method, tt.amountPaid, tt.grossAmount, tt.hasGross)

			if !got.Cash.Equal(tt.wantCash) {
				t.Errorf("Cash = %s, want %s", got.Cash, tt.wantCash)
			}
			if !got.Receivable.Equal(tt.wantReceivable) {
				t.Errorf("Receivable = %s, want %s", got.Receivable, tt.wantReceivable)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}

			if got.Cash.IsNegative() || got.Receivable.IsNegative() {
				t.Error("components must never be negative")
			}
		})
	}
}

func TestSplitComponentsSumToGross(t *testing.T) {
	// Whenever gross is known and the co-payment does not exceed it, the
	// two components must add back up to the gross value.
	cases := []struct {
		isPrivatePay bool
		method       models.PaymentMethod
		paid, gross  float64
	}{
		{false, models.PaymentUnpaid, 0, 300},
		{false, models.PaymentCash, 50, 300},
		{false, models.PaymentCard, 300, 300},
		{false, models.PaymentPix, 0, 120.50},
	}

	for _, c := range cases {
		got := Split(c.isPrivatePay, c.method, d(c.paid), d(c.gross), true)
		sum := got.Cash.Add(got.Receivable)
		if !sum.Equal(d(c.gross)) {
			t.Errorf("Split(%v, %s, %v, %v): cash %s + receivable %s != gross %v",
				c.isPrivatePay, c.method, c.paid, c.gross, got.Cash, got.Receivable, c.gross)
		}
	}
}

func TestSplitWithoutGross(t *testing.T) {
	// With no gross amount, cash equals the amount paid and nothing is
	// receivable for paying items.
	got := Split(true, models.PaymentCash, d(200), decimal.Zero, false)
	if !got.Cash.Equal(d(200)) || !got.Receivable.IsZero() {
		t.Errorf("expected cash=200 receivable=0, got cash=%s receivable=%s", got.Cash, got.Receivable)
	}
}

func TestApplyToItem(t *testing.T) {
	item := &models.ServiceItem{
		ID:            "IT001",
		ServiceCode:   "HEM-42",
		ConvenioCode:  "UNIMED",
		PaymentMethod: models.PaymentCash,
		AmountPaid:    d(50),
		GrossAmount:   d(300),
		HasGross:      true,
	}

	if !ApplyToItem(item) {
		t.Fatal("expected unlocked item to be updated")
	}
	if !item.CashComponent.Equal(d(50)) {
		t.Errorf("CashComponent = %s, want 50", item.CashComponent)
	}
	if !item.ReceivableComponent.Equal(d(250)) {
		t.Errorf("ReceivableComponent = %s, want 250", item.ReceivableComponent)
	}
	if item.PaymentStatus != models.StatusPendingClose {
		t.Errorf("PaymentStatus = %s, want %s", item.PaymentStatus, models.StatusPendingClose)
	}
}

func TestApplyToItemLocked(t *testing.T) {
	item := &models.ServiceItem{
		ID:            "IT002",
		ServiceCode:   "HEM-42",
		PaymentMethod: models.PaymentCash,
		AmountPaid:    d(80),
		ClosureID:     "ENV-2024-05",
		CashComponent: d(80),
	}

	if ApplyToItem(item) {
		t.Error("locked item must not be re-split")
	}
	if !item.CashComponent.Equal(d(80)) {
		t.Errorf("locked item components changed: %s", item.CashComponent)
	}

	if ApplyToItem(nil) {
		t.Error("nil item must not report an update")
	}
}

func TestSum(t *testing.T) {
	items := []*models.ServiceItem{
		{ID: "A", CashComponent: d(100), ReceivableComponent: d(0)},
		{ID: "B", CashComponent: d(50), ReceivableComponent: d(250)},
		nil,
		{ID: "C", CashComponent: d(0), ReceivableComponent: d(300)},
	}

	totals := Sum(items)
	if !totals.Cash.Equal(d(150)) {
		t.Errorf("Cash total = %s, want 150", totals.Cash)
	}
	if !totals.Receivable.Equal(d(550)) {
		t.Errorf("Receivable total = %s, want 550", totals.Receivable)
	}
	if totals.Items != 3 {
		t.Errorf("Items = %d, want 3", totals.Items)
	}
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceItemKind string

const (
	ItemKindOccasionCost     InvoiceItemKind = "occasion_cost"
	ItemKindAllInclusiveFee  InvoiceItemKind = "all_inclusive_fee"
	ItemKindDonation         InvoiceItemKind = "donation"
	ItemKindDiscount         InvoiceItemKind = "discount"
	ItemKindManualAdjustment InvoiceItemKind = "manual_adjustment"
)

// Invoice collects the charges of one payer for one period. There is
// never more than one invoice per (payer, period); recomputation reuses
// the existing row.
type Invoice struct {
	Base
	PeriodID  uuid.UUID `db:"period_id"`
	UserID    uuid.UUID `db:"user_id"`
	Reference string    `db:"reference"`
}

// InvoiceItem is a single position on an invoice. Items derived from
// bookings carry the booking id; the all-inclusive fee carries only the
// attendee it was charged for.
type InvoiceItem struct {
	Base
	InvoiceID   uuid.UUID       `db:"invoice_id"`
	BookingID   *uuid.UUID      `db:"booking_id"`
	AttendeeID  *uuid.UUID      `db:"attendee_id"`
	Kind        InvoiceItemKind `db:"kind"`
	Text        string          `db:"text"`
	Amount      decimal.Decimal `db:"amount"`
	Paid        bool            `db:"paid"`
	PaymentDate *time.Time      `db:"payment_date"`
}

// Derived reports whether the item is (re)generated by the invoice
// engine. Non-derived items (donations, discounts, manual adjustments)
// are never touched by recomputation.
func (i *InvoiceItem) Derived() bool {
	return i.Kind == ItemKindOccasionCost || i.Kind == ItemKindAllInclusiveFee
}

package response

import (
	"time"

	"ferienpass/internal/data/entity"

	"github.com/shopspring/decimal"
)

type InvoiceItemResponse struct {
	ID          string                 `json:"id"`
	BookingID   *string                `json:"booking_id,omitempty"`
	AttendeeID  *string                `json:"attendee_id,omitempty"`
	Kind        entity.InvoiceItemKind `json:"kind"`
	Text        string                 `json:"text"`
	Amount      string                 `json:"amount"`
	Paid        bool                   `json:"paid"`
	PaymentDate *time.Time             `json:"payment_date,omitempty"`
}

type InvoiceResponse struct {
	ID          string                `json:"id"`
	PeriodID    string                `json:"period_id"`
	UserID      string                `json:"user_id"`
	Reference   string                `json:"reference"`
	Items       []InvoiceItemResponse `json:"items"`
	Total       string                `json:"total"`
	Outstanding string                `json:"outstanding"`
	CreatedAt   time.Time             `json:"created_at"`
}

func InvoiceItemToResponse(item *entity.InvoiceItem) InvoiceItemResponse {
	resp := InvoiceItemResponse{
		ID:          item.ID.String(),
		Kind:        item.Kind,
		Text:        item.Text,
		Amount:      item.Amount.StringFixed(2),
		Paid:        item.Paid,
		PaymentDate: item.PaymentDate,
	}
	if item.BookingID != nil {
		id := item.BookingID.String()
		resp.BookingID = &id
	}
	if item.AttendeeID != nil {
		id := item.AttendeeID.String()
		resp.AttendeeID = &id
	}
	return resp
}

func InvoiceToResponse(invoice *entity.Invoice, items []*entity.InvoiceItem) InvoiceResponse {
	resp := InvoiceResponse{
		ID:        invoice.ID.String(),
		PeriodID:  invoice.PeriodID.String(),
		UserID:    invoice.UserID.String(),
		Reference: invoice.Reference,
		Items:     make([]InvoiceItemResponse, 0, len(items)),
		CreatedAt: invoice.CreatedAt,
	}

	total := decimal.Zero
	outstanding := decimal.Zero
	for _, item := range items {
		resp.Items = append(resp.Items, InvoiceItemToResponse(item))
		total = total.Add(item.Amount)
		if !item.Paid {
			outstanding = outstanding.Add(item.Amount)
		}
	}
	resp.Total = total.StringFixed(2)
	resp.Outstanding = outstanding.StringFixed(2)

	return resp
}

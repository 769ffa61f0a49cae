package request

type AddInvoiceItemRequest struct {
	Kind   string `json:"kind" validate:"required,oneof=donation discount manual_adjustment"`
	Text   string `json:"text" validate:"required,min=1,max=200"`
	Amount string `json:"amount" validate:"required"`
}

type MarkItemPaidRequest struct {
	PaymentDate *string `json:"payment_date,omitempty"`
}

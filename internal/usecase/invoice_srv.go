package usecase

import (
	"context"
	"time"

	"ferienpass/internal/billing"
	"ferienpass/internal/data/entity"
	"ferienpass/internal/data/repository"
	"ferienpass/internal/dto/request"
	"ferienpass/internal/dto/response"
	"ferienpass/pkg/apperrors"
	"ferienpass/pkg/events"
	"ferienpass/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// allInclusiveFeeText labels the pass fee line on all-inclusive
// invoices.
const allInclusiveFeeText = "Ferienpass"

type InvoiceService interface {
	// Recompute brings one payer's invoice in line with their accepted
	// bookings. Creating the invoice on first use, it updates derived
	// items only; paid items and manual positions are never touched.
	Recompute(ctx context.Context, periodID, userID uuid.UUID) error

	// RecomputeAll recomputes the invoice of every payer with bookings
	// in the period.
	RecomputeAll(ctx context.Context, periodID uuid.UUID) error

	GetInvoice(ctx context.Context, userID, invoiceID string) (*response.InvoiceResponse, error)
	GetUserInvoices(ctx context.Context, userID string) ([]*response.InvoiceResponse, error)
	ListPeriodInvoices(ctx context.Context, periodID string) ([]*response.InvoiceResponse, error)

	AddManualItem(ctx context.Context, invoiceID string, req *request.AddInvoiceItemRequest) (*response.InvoiceResponse, error)
	RemoveItem(ctx context.Context, itemID string) error
	MarkItemPaid(ctx context.Context, itemID string, req *request.MarkItemPaidRequest) error
	UnmarkItemPaid(ctx context.Context, itemID string) error
}

type invoiceService struct {
	repo      *repository.Repository
	config    *utils.Config
	events    *events.Dispatcher
	payerLock *keyedMutex
	log       *zap.Logger
}

func NewInvoiceService(repo *repository.Repository, config *utils.Config, dispatcher *events.Dispatcher, log *zap.Logger) InvoiceService {
	return &invoiceService{
		repo:      repo,
		config:    config,
		events:    dispatcher,
		payerLock: newKeyedMutex(),
		log:       log.With(zap.String("service", "invoice")),
	}
}

func (s *invoiceService) Recompute(ctx context.Context, periodID, userID uuid.UUID) error {
	// Serialize recomputation per payer so two triggers cannot derive
	// duplicate items.
	s.payerLock.Lock(userID)
	defer s.payerLock.Unlock(userID)

	period, err := s.repo.Period.FindByID(ctx, periodID)
	if err != nil {
		return apperrors.Internal("failed to load period", err)
	}
	if period == nil {
		return apperrors.NotFoundWithID("period", periodID.String())
	}
	if period.ReadOnly() {
		return apperrors.Conflict("archived periods are read-only")
	}
	if !period.Confirmed() {
		// Invoices exist from confirmation onward; earlier booking
		// changes have nothing to bill yet.
		return nil
	}

	invoice, err := s.findOrCreateInvoice(ctx, period, userID)
	if err != nil {
		return err
	}

	bookings, err := s.repo.Booking.FindByUserAndPeriod(ctx, userID, periodID)
	if err != nil {
		return apperrors.Internal("failed to load bookings", err)
	}

	titles, err := s.repo.Activity.FindTitlesByPeriod(ctx, periodID)
	if err != nil {
		return apperrors.Internal("failed to load activity titles", err)
	}

	desired := billing.Derive(period, bookings, billing.Texts{
		ActivityTitles:  titles,
		AllInclusiveFee: allInclusiveFeeText,
	})

	existing, err := s.repo.InvoiceItem.FindByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return apperrors.Internal("failed to load invoice items", err)
	}

	create, remove := billing.Diff(existing, desired)

	for _, id := range remove {
		if err := s.repo.InvoiceItem.Delete(ctx, id); err != nil {
			return apperrors.Internal("failed to remove stale invoice item", err)
		}
	}

	now := time.Now()
	for _, want := range create {
		item := &entity.InvoiceItem{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			InvoiceID:  invoice.ID,
			BookingID:  want.BookingID,
			AttendeeID: want.AttendeeID,
			Kind:       want.Kind,
			Text:       want.Text,
			Amount:     want.Amount,
		}
		if err := s.repo.InvoiceItem.Create(ctx, item); err != nil {
			return apperrors.Internal("failed to create invoice item", err)
		}
	}

	if len(create) > 0 || len(remove) > 0 {
		s.events.Dispatch(events.Event{
			Type:     events.InvoiceUpdated,
			PeriodID: periodID,
			UserID:   userID,
		})
	}

	s.log.Info("Invoice recomputed",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("created", len(create)),
		zap.Int("removed", len(remove)))
	return nil
}

func (s *invoiceService) RecomputeAll(ctx context.Context, periodID uuid.UUID) error {
	payers, err := s.repo.User.FindByPeriodWithBookings(ctx, periodID)
	if err != nil {
		return apperrors.Internal("failed to load payers", err)
	}

	for _, payer := range payers {
		if err := s.Recompute(ctx, periodID, payer.ID); err != nil {
			return err
		}
	}

	s.log.Info("All invoices recomputed",
		zap.String("period_id", periodID.String()),
		zap.Int("payers", len(payers)))
	return nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, userID, invoiceID string) (*response.InvoiceResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID format", nil)
	}

	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.UserID != userUUID {
		return nil, apperrors.Forbidden("invoice belongs to another account")
	}

	return s.buildResponse(ctx, invoice)
}

func (s *invoiceService) GetUserInvoices(ctx context.Context, userID string) ([]*response.InvoiceResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID format", nil)
	}

	invoices, err := s.repo.Invoice.FindByUserID(ctx, userUUID)
	if err != nil {
		return nil, apperrors.Internal("failed to list invoices", err)
	}

	return s.buildResponses(ctx, invoices)
}

func (s *invoiceService) ListPeriodInvoices(ctx context.Context, periodID string) ([]*response.InvoiceResponse, error) {
	periodUUID, err := uuid.Parse(periodID)
	if err != nil {
		return nil, apperrors.Validation("invalid period ID format", nil)
	}

	invoices, err := s.repo.Invoice.FindByPeriodID(ctx, periodUUID)
	if err != nil {
		return nil, apperrors.Internal("failed to list invoices", err)
	}

	return s.buildResponses(ctx, invoices)
}

// AddManualItem appends a donation, discount or manual adjustment.
// These live outside derivation and survive every recompute.
func (s *invoiceService) AddManualItem(ctx context.Context, invoiceID string, req *request.AddInvoiceItemRequest) (*response.InvoiceResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.Validation(utils.FormatValidationErrors(errs), nil)
	}

	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, apperrors.Validation("invalid amount", nil)
	}

	kind := entity.InvoiceItemKind(req.Kind)
	// Discounts reduce the total, so they must be negative; donations
	// must add to it.
	switch kind {
	case entity.ItemKindDiscount:
		if !amount.IsNegative() {
			return nil, apperrors.Validation("discount amounts must be negative", nil)
		}
	case entity.ItemKindDonation:
		if !amount.IsPositive() {
			return nil, apperrors.Validation("donation amounts must be positive", nil)
		}
	}

	now := time.Now()
	item := &entity.InvoiceItem{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		InvoiceID: invoice.ID,
		Kind:      kind,
		Text:      req.Text,
		Amount:    amount,
	}

	if err := s.repo.InvoiceItem.Create(ctx, item); err != nil {
		s.log.Error("Failed to add manual invoice item", zap.Error(err), zap.String("invoice_id", invoiceID))
		return nil, apperrors.Internal("failed to add invoice item", err)
	}

	s.log.Info("Manual invoice item added",
		zap.String("invoice_id", invoiceID),
		zap.String("kind", req.Kind))

	return s.buildResponse(ctx, invoice)
}

// RemoveItem deletes a manual item that has not been paid. Derived
// items stay under the control of recomputation and cannot be removed
// here.
func (s *invoiceService) RemoveItem(ctx context.Context, itemID string) error {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Derived() {
		return apperrors.Conflict("derived invoice items are managed by recomputation")
	}
	if item.Paid {
		return apperrors.Conflict("paid invoice items cannot be removed")
	}

	if err := s.repo.InvoiceItem.Delete(ctx, item.ID); err != nil {
		return apperrors.Internal("failed to remove invoice item", err)
	}

	s.log.Info("Manual invoice item removed",
		zap.String("item_id", itemID),
		zap.String("kind", string(item.Kind)))
	return nil
}

func (s *invoiceService) MarkItemPaid(ctx context.Context, itemID string, req *request.MarkItemPaidRequest) error {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Paid {
		return nil
	}

	paymentDate := time.Now()
	if req != nil && req.PaymentDate != nil {
		d, err := parseDate(*req.PaymentDate)
		if err != nil {
			return apperrors.Validation("invalid payment_date", nil)
		}
		paymentDate = d
	}

	if err := s.repo.InvoiceItem.SetPaid(ctx, item.ID, true, &paymentDate); err != nil {
		return apperrors.Internal("failed to mark item paid", err)
	}

	s.log.Info("Invoice item marked paid", zap.String("item_id", itemID))
	return nil
}

func (s *invoiceService) UnmarkItemPaid(ctx context.Context, itemID string) error {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !item.Paid {
		return nil
	}

	if err := s.repo.InvoiceItem.SetPaid(ctx, item.ID, false, nil); err != nil {
		return apperrors.Internal("failed to unmark item paid", err)
	}

	s.log.Info("Invoice item payment reverted", zap.String("item_id", itemID))
	return nil
}

func (s *invoiceService) findOrCreateInvoice(ctx context.Context, period *entity.Period, userID uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.repo.Invoice.FindByPayerAndPeriod(ctx, userID, period.ID)
	if err != nil {
		return nil, err
	}
	if invoice != nil {
		return invoice, nil
	}

	now := time.Now()
	invoice = &entity.Invoice{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PeriodID:  period.ID,
		UserID:    userID,
		Reference: utils.GenerateInvoiceReference(s.config.Invoice.ReferencePrefix),
	}

	if err := s.repo.Invoice.Create(ctx, invoice); err != nil {
		s.log.Error("Failed to create invoice", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperrors.Internal("failed to create invoice", err)
	}

	s.log.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("reference", invoice.Reference))
	return invoice, nil
}

func (s *invoiceService) findInvoice(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, apperrors.Validation("invalid invoice ID format", nil)
	}

	invoice, err := s.repo.Invoice.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("failed to load invoice", err)
	}
	if invoice == nil {
		return nil, apperrors.NotFoundWithID("invoice", invoiceID)
	}
	return invoice, nil
}

func (s *invoiceService) findItem(ctx context.Context, itemID string) (*entity.InvoiceItem, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, apperrors.Validation("invalid item ID format", nil)
	}

	item, err := s.repo.InvoiceItem.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("failed to load invoice item", err)
	}
	if item == nil {
		return nil, apperrors.NotFoundWithID("invoice item", itemID)
	}
	return item, nil
}

func (s *invoiceService) buildResponse(ctx context.Context, invoice *entity.Invoice) (*response.InvoiceResponse, error) {
	items, err := s.repo.InvoiceItem.FindByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to load invoice items", err)
	}

	resp := response.InvoiceToResponse(invoice, items)
	return &resp, nil
}

func (s *invoiceService) buildResponses(ctx context.Context, invoices []*entity.Invoice) ([]*response.InvoiceResponse, error) {
	resps := make([]*response.InvoiceResponse, len(invoices))
	for i, invoice := range invoices {
		resp, err := s.buildResponse(ctx, invoice)
		if err != nil {
			return nil, err
		}
		resps[i] = resp
	}
	return resps, nil
}

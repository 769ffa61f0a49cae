package repository

import (
	"context"
	"fmt"
	"time"

	"ferienpass/internal/data/entity"
	"ferienpass/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type InvoiceItemRepository interface {
	Create(ctx context.Context, item *entity.InvoiceItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceItem, error)
	FindByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*entity.InvoiceItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetPaid(ctx context.Context, id uuid.UUID, paid bool, paymentDate *time.Time) error
}

type invoiceItemRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewInvoiceItemRepository(db database.PgxIface, log *zap.Logger) InvoiceItemRepository {
	return &invoiceItemRepository{
		db:  db,
		log: log.With(zap.String("repository", "invoice_item")),
	}
}

const invoiceItemColumns = `id, invoice_id, booking_id, attendee_id, kind, text,
	amount, paid, payment_date, created_at, updated_at`

func (r *invoiceItemRepository) Create(ctx context.Context, item *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (` + invoiceItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		item.ID,
		item.InvoiceID,
		item.BookingID,
		item.AttendeeID,
		item.Kind,
		item.Text,
		item.Amount,
		item.Paid,
		item.PaymentDate,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create invoice item",
			zap.Error(err),
			zap.String("invoice_id", item.InvoiceID.String()),
			zap.String("kind", string(item.Kind)),
		)
		return fmt.Errorf("create invoice item: %w", err)
	}

	return nil
}

func (r *invoiceItemRepository) scanItem(row pgx.Row) (*entity.InvoiceItem, error) {
	var item entity.InvoiceItem
	err := row.Scan(
		&item.ID,
		&item.InvoiceID,
		&item.BookingID,
		&item.AttendeeID,
		&item.Kind,
		&item.Text,
		&item.Amount,
		&item.Paid,
		&item.PaymentDate,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *invoiceItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceItem, error) {
	query := `SELECT ` + invoiceItemColumns + ` FROM invoice_items WHERE id = $1`

	item, err := r.scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find invoice item by ID", zap.Error(err), zap.String("item_id", id.String()))
		return nil, fmt.Errorf("find invoice item by ID %s: %w", id.String(), err)
	}
	return item, nil
}

func (r *invoiceItemRepository) FindByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT ` + invoiceItemColumns + `
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY kind, text, created_at
	`

	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		r.log.Error("Failed to find invoice items",
			zap.Error(err),
			zap.String("invoice_id", invoiceID.String()),
		)
		return nil, fmt.Errorf("find items of invoice %s: %w", invoiceID.String(), err)
	}
	defer rows.Close()

	var items []*entity.InvoiceItem
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item row: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *invoiceItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM invoice_items WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete invoice item", zap.Error(err), zap.String("item_id", id.String()))
		return fmt.Errorf("delete invoice item %s: %w", id.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("invoice item %s not found", id.String())
	}

	return nil
}

func (r *invoiceItemRepository) SetPaid(ctx context.Context, id uuid.UUID, paid bool, paymentDate *time.Time) error {
	query := `UPDATE invoice_items SET paid = $2, payment_date = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, paid, paymentDate)
	if err != nil {
		r.log.Error("Failed to update invoice item payment",
			zap.Error(err),
			zap.String("item_id", id.String()),
			zap.Bool("paid", paid),
		)
		return fmt.Errorf("update payment state of item %s: %w", id.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("invoice item %s not found", id.String())
	}

	return nil
}

package repository

import (
	"context"
	"fmt"

	"ferienpass/internal/data/entity"
	"ferienpass/pkg/apperrors"
	"ferienpass/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	FindByPayerAndPeriod(ctx context.Context, userID, periodID uuid.UUID) (*entity.Invoice, error)
	FindByPeriodID(ctx context.Context, periodID uuid.UUID) ([]*entity.Invoice, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Invoice, error)
}

type invoiceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewInvoiceRepository(db database.PgxIface, log *zap.Logger) InvoiceRepository {
	return &invoiceRepository{
		db:  db,
		log: log.With(zap.String("repository", "invoice")),
	}
}

const invoiceColumns = `id, period_id, user_id, reference, created_at, updated_at`

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		invoice.ID,
		invoice.PeriodID,
		invoice.UserID,
		invoice.Reference,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create invoice",
			zap.Error(err),
			zap.String("user_id", invoice.UserID.String()),
			zap.String("period_id", invoice.PeriodID.String()),
		)
		return fmt.Errorf("create invoice %s: %w", invoice.Reference, err)
	}

	return nil
}

func (r *invoiceRepository) scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := row.Scan(
		&invoice.ID,
		&invoice.PeriodID,
		&invoice.UserID,
		&invoice.Reference,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	invoice, err := r.scanInvoice(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find invoice by ID", zap.Error(err), zap.String("invoice_id", id.String()))
		return nil, fmt.Errorf("find invoice by ID %s: %w", id.String(), err)
	}
	return invoice, nil
}

// FindByPayerAndPeriod returns the single invoice of the payer in the
// period, or nil. More than one row is a data corruption we refuse to
// paper over.
func (r *invoiceRepository) FindByPayerAndPeriod(ctx context.Context, userID, periodID uuid.UUID) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1 AND period_id = $2`

	rows, err := r.db.Query(ctx, query, userID, periodID)
	if err != nil {
		r.log.Error("Failed to find invoice by payer",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("period_id", periodID.String()),
		)
		return nil, fmt.Errorf("find invoice by payer: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		invoice, err := r.scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	switch len(invoices) {
	case 0:
		return nil, nil
	case 1:
		return invoices[0], nil
	default:
		return nil, apperrors.InvariantViolation(
			fmt.Sprintf("payer %s has %d invoices in period %s", userID.String(), len(invoices), periodID.String()),
		)
	}
}

func (r *invoiceRepository) FindByPeriodID(ctx context.Context, periodID uuid.UUID) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE period_id = $1 ORDER BY reference`

	return r.queryInvoices(ctx, query, periodID)
}

func (r *invoiceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1 ORDER BY created_at DESC`

	return r.queryInvoices(ctx, query, userID)
}

func (r *invoiceRepository) queryInvoices(ctx context.Context, query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query invoices", zap.Error(err))
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		invoice, err := r.scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	return invoices, nil
}

package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	models "docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/repositories"
	docsysRepo "docvault/internal/domain/repositories/docsystem"

	"docvault/internal/repository/postgres"
)

var invoiceColumns = []string{
	"i.id", "i.document_id", "i.vendor_name", "i.invoice_date", "i.invoice_value", "i.invoice_qty",
	"i.owner_id", "d.original_name AS document_name", "i.created_at", "i.updated_at",
}

// PostgresInvoiceRepository implements the InvoiceRepository interface
type PostgresInvoiceRepository struct {
	pool   repositories.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(config *postgres.RepositoryConfig) docsysRepo.InvoiceRepository {
	return &PostgresInvoiceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func (r *PostgresInvoiceRepository) selectInvoices() squirrel.SelectBuilder {
	return postgres.Builder().Select(invoiceColumns...).
		From(r.tables.Invoices + " i").
		Join(r.tables.Documents + " d ON d.id = i.document_id")
}

func (r *PostgresInvoiceRepository) Create(ctx context.Context, inv *models.InvoiceRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, vendor_name, invoice_date, invoice_value, invoice_qty, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Invoices)

	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		inv.DocumentID,
		inv.VendorName,
		inv.InvoiceDate,
		inv.InvoiceValue,
		inv.InvoiceQty,
		inv.OwnerID,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return postgres.MapError(pgx.ErrNoRows, "document", inv.DocumentID)
		}
		return postgres.MapError(err, "invoice", inv.VendorName)
	}
	return nil
}

func (r *PostgresInvoiceRepository) GetByID(ctx context.Context, id string) (*models.InvoiceRecord, error) {
	inv, err := postgres.GetOne[models.InvoiceRecord](ctx, postgres.GetExecutor(ctx, r.pool),
		r.selectInvoices().Where(squirrel.Eq{"i.id": id}))
	if err != nil {
		return nil, postgres.MapError(err, "invoice", id)
	}
	return inv, nil
}

func (r *PostgresInvoiceRepository) Update(ctx context.Context, inv *models.InvoiceRecord) error {
	sql, args, err := postgres.Builder().Update(r.tables.Invoices).
		Set("document_id", inv.DocumentID).
		Set("vendor_name", inv.VendorName).
		Set("invoice_date", inv.InvoiceDate).
		Set("invoice_value", inv.InvoiceValue).
		Set("invoice_qty", inv.InvoiceQty).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": inv.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&inv.UpdatedAt); err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return postgres.MapError(pgx.ErrNoRows, "document", inv.DocumentID)
		}
		return postgres.MapError(err, "invoice", inv.ID)
	}
	return nil
}

func (r *PostgresInvoiceRepository) Delete(ctx context.Context, id string) error {
	n, err := postgres.Exec(ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Delete(r.tables.Invoices).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return postgres.MapError(err, "invoice", id)
	}
	if n == 0 {
		return postgres.MapError(pgx.ErrNoRows, "invoice", id)
	}
	return nil
}

// List returns matching invoices ordered by invoice date, newest first
func (r *PostgresInvoiceRepository) List(ctx context.Context, f models.InvoiceFilter) ([]models.InvoiceRecord, error) {
	sb := r.selectInvoices()
	if f.OwnerID != "" {
		sb = sb.Where(squirrel.Eq{"i.owner_id": f.OwnerID})
	}
	if f.StartDate != nil {
		sb = sb.Where(squirrel.GtOrEq{"i.invoice_date": *f.StartDate})
	}
	if f.EndDate != nil {
		sb = sb.Where(squirrel.LtOrEq{"i.invoice_date": *f.EndDate})
	}
	if f.VendorName != "" {
		sb = sb.Where(squirrel.ILike{"i.vendor_name": postgres.ContainsPattern(f.VendorName)})
	}
	if f.MinValue != nil {
		sb = sb.Where(squirrel.GtOrEq{"i.invoice_value": *f.MinValue})
	}
	if f.MaxValue != nil {
		sb = sb.Where(squirrel.LtOrEq{"i.invoice_value": *f.MaxValue})
	}
	if f.DocumentIDs != nil {
		sb = sb.Where("i.document_id = ANY(?)", postgres.NonNil(f.DocumentIDs))
	}
	sb = sb.OrderBy("i.invoice_date DESC", "i.id")

	invoices := []models.InvoiceRecord{}
	if err := postgres.Select(ctx, postgres.GetExecutor(ctx, r.pool), &invoices, sb); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// ListDocumentIDs returns the distinct documents referenced by an owner's invoices
func (r *PostgresInvoiceRepository) ListDocumentIDs(ctx context.Context, ownerID string) ([]string, error) {
	ids := []string{}
	if err := postgres.Select(ctx, postgres.GetExecutor(ctx, r.pool), &ids,
		postgres.Builder().Select("DISTINCT document_id").From(r.tables.Invoices).
			Where(squirrel.Eq{"owner_id": ownerID})); err != nil {
		return nil, fmt.Errorf("list invoice documents: %w", err)
	}
	return ids, nil
}

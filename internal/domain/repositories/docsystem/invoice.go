package docsystem

import (
	"context"

	"docvault/internal/domain/models/docsystem"
)

// InvoiceRepository defines data access operations for invoice records
type InvoiceRepository interface {
	Create(ctx context.Context, inv *docsystem.InvoiceRecord) error

	GetByID(ctx context.Context, id string) (*docsystem.InvoiceRecord, error)

	Update(ctx context.Context, inv *docsystem.InvoiceRecord) error

	Delete(ctx context.Context, id string) error

	// List returns matching invoices ordered by invoice date, newest first
	List(ctx context.Context, f docsystem.InvoiceFilter) ([]docsystem.InvoiceRecord, error)

	// ListDocumentIDs returns the distinct documents referenced by an owner's invoices
	ListDocumentIDs(ctx context.Context, ownerID string) ([]string, error)
}

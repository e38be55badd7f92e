package docsystem

import (
	"context"
	"io"
	"time"

	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
)

// InvoiceService manages invoice records linked to documents
type InvoiceService interface {
	CreateInvoice(ctx context.Context, user models.CurrentUser, req *InvoiceRequest) (*docsystem.InvoiceRecord, error)
	GetInvoice(ctx context.Context, user models.CurrentUser, id string) (*docsystem.InvoiceRecord, error)
	ListInvoices(ctx context.Context, user models.CurrentUser, f docsystem.InvoiceFilter) ([]docsystem.InvoiceRecord, error)
	UpdateInvoice(ctx context.Context, user models.CurrentUser, id string, req *InvoiceRequest) (*docsystem.InvoiceRecord, error)
	DeleteInvoice(ctx context.Context, user models.CurrentUser, id string) error

	// ExportInvoices writes an XLSX workbook of the filtered invoices to w
	ExportInvoices(ctx context.Context, user models.CurrentUser, f docsystem.InvoiceFilter, w io.Writer) error
}

type InvoiceRequest struct {
	DocumentID   string    `json:"document_id"`
	VendorName   string    `json:"vendor_name"`
	InvoiceDate  time.Time `json:"invoice_date"`
	InvoiceValue float64   `json:"invoice_value"`
	InvoiceQty   int       `json:"invoice_qty"`
}

package docsystem

import "time"

type InvoiceRecord struct {
	ID           string    `json:"id" db:"id"`
	DocumentID   string    `json:"document_id" db:"document_id"`
	VendorName   string    `json:"vendor_name" db:"vendor_name"`
	InvoiceDate  time.Time `json:"invoice_date" db:"invoice_date"`
	InvoiceValue float64   `json:"invoice_value" db:"invoice_value"`
	InvoiceQty   int       `json:"invoice_qty" db:"invoice_qty"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	// DocumentName is joined from the documents table for listings and export
	DocumentName string    `json:"document_name" db:"document_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// InvoiceFilter narrows invoice listings. Zero values mean "no bound".
type InvoiceFilter struct {
	OwnerID    string
	StartDate  *time.Time
	EndDate    *time.Time
	VendorName string // case-insensitive substring
	MinValue   *float64
	MaxValue   *float64
	// DocumentIDs restricts results to invoices on these documents when non-nil
	DocumentIDs []string
}

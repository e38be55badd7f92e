package docsystem

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	docsysRepo "docvault/internal/domain/repositories/docsystem"
	"docvault/internal/domain/services"
	docsysSvc "docvault/internal/domain/services/docsystem"
)

type invoiceService struct {
	invoiceRepo docsysRepo.InvoiceRepository
	docRepo     docsysRepo.DocumentRepository
	resolver    services.AccessResolver
	composer    services.QueryComposer
	logger      *slog.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo docsysRepo.InvoiceRepository,
	docRepo docsysRepo.DocumentRepository,
	resolver services.AccessResolver,
	composer services.QueryComposer,
	logger *slog.Logger,
) docsysSvc.InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		docRepo:     docRepo,
		resolver:    resolver,
		composer:    composer,
		logger:      logger,
	}
}

func validateInvoice(req *docsysSvc.InvoiceRequest) error {
	return validationError(validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required, is.UUID),
		validation.Field(&req.VendorName, validation.Required, validation.RuneLength(1, config.MaxVendorNameLength)),
		validation.Field(&req.InvoiceDate, validation.Required),
		validation.Field(&req.InvoiceValue, validation.Min(0.0)),
		validation.Field(&req.InvoiceQty, validation.Min(0)),
	))
}

// CreateInvoice records an invoice against a document the caller can read
func (s *invoiceService) CreateInvoice(ctx context.Context, user models.CurrentUser, req *docsysSvc.InvoiceRequest) (*docsystem.InvoiceRecord, error) {
	req.VendorName = strings.TrimSpace(req.VendorName)
	if err := validateInvoice(req); err != nil {
		return nil, err
	}
	if _, err := s.resolver.RequireDocument(ctx, user, req.DocumentID, docsystem.ActionRead); err != nil {
		return nil, err
	}

	inv := &docsystem.InvoiceRecord{
		DocumentID:   req.DocumentID,
		VendorName:   req.VendorName,
		InvoiceDate:  req.InvoiceDate,
		InvoiceValue: req.InvoiceValue,
		InvoiceQty:   req.InvoiceQty,
		OwnerID:      user.ID,
	}
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice created", "id", inv.ID, "document_id", inv.DocumentID, "owner_id", user.ID)
	return inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, user models.CurrentUser, id string) (*docsystem.InvoiceRecord, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(user, inv.OwnerID) {
		return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrAccessDenied)
	}
	return inv, nil
}

// ListInvoices returns the caller's invoices whose documents the caller can
// still read, newest invoice date first.
func (s *invoiceService) ListInvoices(ctx context.Context, user models.CurrentUser, f docsystem.InvoiceFilter) ([]docsystem.InvoiceRecord, error) {
	f.OwnerID = user.ID
	f.VendorName = strings.TrimSpace(f.VendorName)

	q, err := s.composer.ComposeDocumentQuery(ctx, user, services.DocumentListOptions{Invoices: true})
	if err != nil {
		return nil, err
	}
	docs, err := s.docRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list invoice documents: %w", err)
	}
	f.DocumentIDs = make([]string, 0, len(docs))
	for _, d := range docs {
		f.DocumentIDs = append(f.DocumentIDs, d.ID)
	}

	invoices, err := s.invoiceRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, user models.CurrentUser, id string, req *docsysSvc.InvoiceRequest) (*docsystem.InvoiceRecord, error) {
	req.VendorName = strings.TrimSpace(req.VendorName)
	if err := validateInvoice(req); err != nil {
		return nil, err
	}

	inv, err := s.manageableInvoice(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if req.DocumentID != inv.DocumentID {
		if _, err := s.resolver.RequireDocument(ctx, user, req.DocumentID, docsystem.ActionRead); err != nil {
			return nil, err
		}
	}

	inv.DocumentID = req.DocumentID
	inv.VendorName = req.VendorName
	inv.InvoiceDate = req.InvoiceDate
	inv.InvoiceValue = req.InvoiceValue
	inv.InvoiceQty = req.InvoiceQty
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice updated", "id", id, "by", user.ID)
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, user models.CurrentUser, id string) error {
	if _, err := s.manageableInvoice(ctx, user, id); err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("invoice deleted", "id", id, "by", user.ID)
	return nil
}

// ExportInvoices writes the filtered listing as an XLSX workbook
func (s *invoiceService) ExportInvoices(ctx context.Context, user models.CurrentUser, f docsystem.InvoiceFilter, w io.Writer) error {
	invoices, err := s.ListInvoices(ctx, user, f)
	if err != nil {
		return err
	}
	if err := writeInvoiceWorkbook(w, invoices); err != nil {
		return fmt.Errorf("export invoices: %w", err)
	}
	s.logger.Info("invoices exported", "user_id", user.ID, "rows", len(invoices))
	return nil
}

func (s *invoiceService) manageableInvoice(ctx context.Context, user models.CurrentUser, id string) (*docsystem.InvoiceRecord, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(user, inv.OwnerID) {
		return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrPermissionDenied)
	}
	return inv, nil
}

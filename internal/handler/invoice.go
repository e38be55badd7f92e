package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"docvault/internal/domain/models/docsystem"
	docsysSvc "docvault/internal/domain/services/docsystem"
	"docvault/internal/httputil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceHandler handles invoice records and their export
type InvoiceHandler struct {
	invoiceService docsysSvc.InvoiceService
	logger         *slog.Logger
}

func NewInvoiceHandler(invoiceService docsysSvc.InvoiceService, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, logger: logger}
}

type invoiceBody struct {
	DocumentID   string        `json:"document_id"`
	VendorName   string        `json:"vendor_name"`
	InvoiceDate  httputil.Date `json:"invoice_date"`
	InvoiceValue float64       `json:"invoice_value"`
	InvoiceQty   int           `json:"invoice_qty"`
}

func (b invoiceBody) request() *docsysSvc.InvoiceRequest {
	return &docsysSvc.InvoiceRequest{
		DocumentID:   b.DocumentID,
		VendorName:   b.VendorName,
		InvoiceDate:  b.InvoiceDate.Time,
		InvoiceValue: b.InvoiceValue,
		InvoiceQty:   b.InvoiceQty,
	}
}

// invoiceFilter reads the shared listing/export filters. Both snake_case and
// camelCase parameter names are accepted.
func invoiceFilter(r *http.Request) (docsystem.InvoiceFilter, error) {
	var f docsystem.InvoiceFilter
	q := r.URL.Query()
	alias := func(snake, camel string) {
		if q.Get(snake) == "" && q.Get(camel) != "" {
			q.Set(snake, q.Get(camel))
		}
	}
	alias("start_date", "startDate")
	alias("end_date", "endDate")
	alias("min_value", "minValue")
	alias("max_value", "maxValue")
	r.URL.RawQuery = q.Encode()

	var err error
	if f.StartDate, err = httputil.QueryDate(r, "start_date"); err != nil {
		return f, err
	}
	if f.EndDate, err = httputil.QueryDate(r, "end_date"); err != nil {
		return f, err
	}
	if f.MinValue, err = httputil.QueryFloat(r, "min_value"); err != nil {
		return f, err
	}
	if f.MaxValue, err = httputil.QueryFloat(r, "max_value"); err != nil {
		return f, err
	}
	f.VendorName = queryAny(r, "vendor_name", "vendorName")
	return f, nil
}

// POST /api/invoices
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body invoiceBody
	if !decode(w, r, &body) {
		return
	}
	inv, err := h.invoiceService.CreateInvoice(r.Context(), user, body.request())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, inv)
}

// GET /api/invoices
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	f, err := invoiceFilter(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoices, err := h.invoiceService.ListInvoices(r.Context(), user, f)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, invoices)
}

// GET /api/invoices/{id}
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	inv, err := h.invoiceService.GetInvoice(r.Context(), user, r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, inv)
}

// PUT /api/invoices/{id}
func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body invoiceBody
	if !decode(w, r, &body) {
		return
	}
	inv, err := h.invoiceService.UpdateInvoice(r.Context(), user, r.PathValue("id"), body.request())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, inv)
}

// DELETE /api/invoices/{id}
func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.invoiceService.DeleteInvoice(r.Context(), user, r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondNoContent(w)
}

// ExportInvoices renders the filtered invoices as an XLSX download. The
// workbook is buffered so a failure still produces a problem response.
// GET /api/invoices/export
func (h *InvoiceHandler) ExportInvoices(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	f, err := invoiceFilter(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := h.invoiceService.ExportInvoices(r.Context(), user, f, &buf); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-records.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

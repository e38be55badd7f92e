package docsystem

import (
	"io"

	"github.com/xuri/excelize/v2"

	"docvault/internal/domain/models/docsystem"
)

// InvoiceSheet is the worksheet name of the invoice export.
const InvoiceSheet = "Invoice Records"

var invoiceColumns = []struct {
	header string
	width  float64
}{
	{"Vendor Name", 20},
	{"Invoice Date", 15},
	{"Invoice Value", 15},
	{"Invoice Qty", 15},
	{"Document Name", 30},
}

func writeInvoiceWorkbook(w io.Writer, invoices []docsystem.InvoiceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InvoiceSheet); err != nil {
		return err
	}

	header := make([]any, len(invoiceColumns))
	for i, col := range invoiceColumns {
		header[i] = col.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(InvoiceSheet, name, name, col.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(InvoiceSheet, "A1", &header); err != nil {
		return err
	}

	for i, inv := range invoices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			inv.VendorName,
			inv.InvoiceDate.Format("Mon Jan 02 2006"),
			inv.InvoiceValue,
			inv.InvoiceQty,
			inv.DocumentName,
		}
		if err := f.SetSheetRow(InvoiceSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

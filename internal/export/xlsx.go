package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docuparse/invoice-extractor/internal/entity"
)

// WriteInvoicesXLSX renders extracted invoices back into a normalized
// workbook (one row per product line, invoice columns repeated). Handy
// for eyeballing a batch run against the source documents.
func WriteInvoicesXLSX(invoices []entity.Extraction, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Serial Number",
		"Invoice Date",
		"Customer Name",
		"Phone Number",
		"Product",
		"Quantity",
		"Unit Price",
		"Tax",
		"Price With Tax",
		"Invoice Total",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	rows := 0
	for _, inv := range invoices {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		if len(inv.Products) == 0 {
			write(1, inv.InvoiceDetails.SerialNumber)
			write(2, inv.InvoiceDetails.Date)
			write(3, inv.Customer.CustomerName)
			write(4, inv.Customer.PhoneNumber)
			write(10, inv.InvoiceDetails.TotalAmount)
			row++
			rows++
			continue
		}
		for _, p := range inv.Products {
			write(1, inv.InvoiceDetails.SerialNumber)
			write(2, inv.InvoiceDetails.Date)
			write(3, inv.Customer.CustomerName)
			write(4, inv.Customer.PhoneNumber)
			write(5, p.Name)
			write(6, p.Quantity)
			write(7, p.UnitPrice)
			write(8, p.Tax)
			write(9, p.PriceWithTax)
			write(10, inv.InvoiceDetails.TotalAmount)
			row++
			rows++
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 16)
	_ = f.SetColWidth(sheet, "C", "C", 26)
	_ = f.SetColWidth(sheet, "D", "D", 16)
	_ = f.SetColWidth(sheet, "E", "E", 28)
	_ = f.SetColWidth(sheet, "F", "J", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"invoices", len(invoices),
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

package tabular

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docuparse/invoice-extractor/internal/entity"
	"github.com/docuparse/invoice-extractor/internal/llm"
)

// Aggregator converts a spreadsheet's rows into the invoice model
// without any per-row generative call: one header-mapping call total,
// then deterministic grouping and arithmetic.
type Aggregator struct {
	mapper llm.HeaderMapper
	logger *slog.Logger
}

func NewAggregator(mapper llm.HeaderMapper, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{mapper: mapper, logger: logger}
}

// Aggregate reads the first sheet (first row = headers), resolves the
// canonical columns via the mapping call, and folds the remaining rows
// into grouped invoices. All state is local to this call.
func (a *Aggregator) Aggregate(ctx context.Context, path string) ([]entity.Extraction, error) {
	start := time.Now()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			a.logger.Warn("tabular.close_error", "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return []entity.Extraction{}, nil
	}

	headers := rows[0]
	mapping, err := a.mapper.MapHeaders(ctx, headers)
	if err != nil {
		return nil, fmt.Errorf("map headers: %w", err)
	}

	invoices := aggregateRows(mapping, headers, rows[1:])

	a.logger.Info("tabular.aggregate.ok",
		"sheet", sheets[0],
		"rows", len(rows)-1,
		"invoices", len(invoices),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return invoices, nil
}

// invoiceAccum is one in-progress invoice, created lazily on the first
// row of its group. Products are keyed by exact name; both groups and
// products keep first-seen order for output.
type invoiceAccum struct {
	details  entity.InvoiceDetails
	customer entity.Customer
	products map[string]*entity.Product
	order    []string
}

func aggregateRows(mapping entity.HeaderMapping, headers []string, rows [][]string) []entity.Extraction {
	cols := resolveColumns(mapping, headers)

	groups := make(map[entity.GroupKey]*invoiceAccum)
	var keyOrder []entity.GroupKey

	for _, row := range rows {
		cell := func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		cust := cell(cols.customer)
		date := cell(cols.date)
		total := cell(cols.total)

		// Non-invoice noise: header echoes, subtotal lines, blank
		// separators. Silently dropped.
		if cust == "" || strings.EqualFold(cust, "unknown customer") ||
			date == "" || total == "" || ParseFloat(total) == 0 {
			continue
		}

		serial := cell(cols.serial)
		if serial == "" {
			serial = "Unknown Serial"
		}
		phone := NormalizePhone(cell(cols.phone))

		key := entity.GroupKey{CustomerName: cust, SerialNumber: serial, PhoneNumber: phone}
		inv, ok := groups[key]
		if !ok {
			inv = &invoiceAccum{
				details: entity.InvoiceDetails{
					SerialNumber: serial,
					Date:         date,
				},
				customer: entity.Customer{
					CustomerName: cust,
					PhoneNumber:  phone,
				},
				products: make(map[string]*entity.Product),
			}
			groups[key] = inv
			keyOrder = append(keyOrder, key)
		}

		name := cell(cols.product)
		if name == "" {
			name = "Unknown Product"
		}
		qty := ParseFloat(cell(cols.quantity))
		unit := ParseFloat(cell(cols.unitPrice))
		taxAmount, taxFormatted := parseTax(cell(cols.tax), unit, qty, cols.taxHeader)

		if p, exists := inv.products[name]; exists {
			// Merge by name: quantity accumulates, but tax and
			// price-with-tax are recomputed from the merged base.
			// Summing independently-rounded taxes would drift.
			p.Quantity += qty
			perc := percentFromTax(p.Tax)
			mergedTax := (p.Quantity * p.UnitPrice) * (perc / 100)
			p.Tax = formatTax(mergedTax, perc)
			p.PriceWithTax = p.Quantity*p.UnitPrice + mergedTax
		} else {
			inv.products[name] = &entity.Product{
				Name:         name,
				Quantity:     qty,
				UnitPrice:    unit,
				Tax:          taxFormatted,
				PriceWithTax: qty*unit + taxAmount,
			}
			inv.order = append(inv.order, name)
		}
	}

	out := make([]entity.Extraction, 0, len(keyOrder))
	for _, key := range keyOrder {
		inv := groups[key]

		products := make([]entity.Product, 0, len(inv.order))
		var totalQty, totalTax, totalAmount float64
		for _, name := range inv.order {
			p := inv.products[name]
			totalQty += p.Quantity
			totalTax += amountFromTax(p.Tax)
			totalAmount += p.PriceWithTax
			products = append(products, *p)
		}

		inv.details.TotalQuantity = totalQty
		inv.details.TotalTaxAmount = round2(totalTax)
		inv.details.TotalAmount = round2(totalAmount)
		inv.customer.TotalPurchaseAmount = round2(totalAmount)

		out = append(out, entity.Extraction{
			InvoiceDetails: inv.details,
			Customer:       inv.customer,
			Products:       products,
		})
	}
	return out
}

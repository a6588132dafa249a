package tabular

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/docuparse/invoice-extractor/internal/entity"
)

var testHeaders = []string{
	"Customer Name", "Phone", "Invoice Date", "Serial No",
	"Product", "Qty", "Unit Price", "Tax %", "Total Amount",
}

var testMapping = entity.HeaderMapping{
	CustomerName: "Customer Name",
	PhoneNumber:  "Phone",
	InvoiceDate:  "Invoice Date",
	SerialNumber: "Serial No",
	ProductName:  "Product",
	Quantity:     "Qty",
	UnitPrice:    "Unit Price",
	Tax:          "Tax %",
	TotalAmount:  "Total Amount",
}

func row(cust, phone, date, serial, product, qty, unit, tax, total string) []string {
	return []string{cust, phone, date, serial, product, qty, unit, tax, total}
}

func TestAggregateRowsMergesDuplicateProducts(t *testing.T) {
	rows := [][]string{
		row("Acme Traders", "9998887770", "2024-01-05", "INV-001", "Widget", "1", "100", "18%", "118"),
		row("Acme Traders", "9998887770", "2024-01-05", "INV-001", "Widget", "1", "100", "18%", "118"),
	}

	out := aggregateRows(testMapping, testHeaders, rows)
	require.Len(t, out, 1)

	inv := out[0]
	require.Len(t, inv.Products, 1)
	p := inv.Products[0]

	assert.Equal(t, "Widget", p.Name)
	assert.InDelta(t, 2.0, p.Quantity, 1e-9)
	assert.InDelta(t, 100.0, p.UnitPrice, 1e-9)
	assert.Equal(t, "36.00 (18%)", p.Tax)
	assert.InDelta(t, 236.00, p.PriceWithTax, 1e-9)

	assert.Equal(t, "INV-001", inv.InvoiceDetails.SerialNumber)
	assert.Equal(t, "2024-01-05", inv.InvoiceDetails.Date)
	assert.InDelta(t, 2.0, inv.InvoiceDetails.TotalQuantity, 1e-9)
	assert.InDelta(t, 36.00, inv.InvoiceDetails.TotalTaxAmount, 1e-9)
	assert.InDelta(t, 236.00, inv.InvoiceDetails.TotalAmount, 1e-9)
	assert.InDelta(t, 236.00, inv.Customer.TotalPurchaseAmount, 1e-9)
}

func TestAggregateRowsRecomputesMergedTax(t *testing.T) {
	// Absolute tax column: 0.50 on a 3.00 subtotal back-computes to
	// 16.67%. Merging must recompute tax from the merged base, not add
	// the two independently-rounded amounts.
	mapping := testMapping
	mapping.Tax = "Tax Amount"
	headers := append(append([]string{}, testHeaders[:7]...), "Tax Amount", "Total Amount")

	rows := [][]string{
		row("Acme Traders", "", "2024-01-05", "INV-002", "Bolt", "1", "3", "0.50", "3.50"),
		row("Acme Traders", "", "2024-01-05", "INV-002", "Bolt", "1", "3", "0.50", "3.50"),
	}

	out := aggregateRows(mapping, headers, rows)
	require.Len(t, out, 1)
	require.Len(t, out[0].Products, 1)
	p := out[0].Products[0]

	assert.InDelta(t, 2.0, p.Quantity, 1e-9)
	assert.Equal(t, "1.00 (16.67%)", p.Tax)
	// (2*3) * 16.67% = 1.0002, not 0.50 + 0.50
	assert.InDelta(t, 6+6*0.1667, p.PriceWithTax, 1e-9)
}

func TestAggregateRowsGroupsByKey(t *testing.T) {
	rows := [][]string{
		row("Acme Traders", "111", "2024-01-05", "INV-001", "Widget", "1", "100", "18%", "118"),
		row("Beta Supplies", "222", "2024-01-06", "INV-002", "Gadget", "2", "50", "18%", "118"),
		row("Acme Traders", "111", "2024-01-05", "INV-001", "Sprocket", "1", "40", "18%", "47.2"),
		// same customer, different serial -> different invoice
		row("Acme Traders", "111", "2024-01-07", "INV-003", "Widget", "1", "100", "18%", "118"),
	}

	out := aggregateRows(testMapping, testHeaders, rows)
	require.Len(t, out, 3)

	// first-seen GroupKey order
	assert.Equal(t, "INV-001", out[0].InvoiceDetails.SerialNumber)
	assert.Equal(t, "INV-002", out[1].InvoiceDetails.SerialNumber)
	assert.Equal(t, "INV-003", out[2].InvoiceDetails.SerialNumber)

	// products within an invoice in first-seen order
	require.Len(t, out[0].Products, 2)
	assert.Equal(t, "Widget", out[0].Products[0].Name)
	assert.Equal(t, "Sprocket", out[0].Products[1].Name)
}

func TestAggregateRowsExcludesNoise(t *testing.T) {
	rows := [][]string{
		row("", "111", "2024-01-05", "INV-001", "Widget", "1", "100", "18%", "118"),
		row("Unknown Customer", "111", "2024-01-05", "INV-001", "Widget", "1", "100", "18%", "118"),
		row("unknown customer", "111", "2024-01-05", "INV-001", "Widget", "1", "100", "18%", "118"),
		row("Acme Traders", "111", "", "INV-001", "Widget", "1", "100", "18%", "118"),
		row("Acme Traders", "111", "2024-01-05", "INV-001", "Widget", "1", "100", "18%", ""),
		row("Acme Traders", "111", "2024-01-05", "INV-001", "Widget", "1", "100", "18%", "0.0"),
	}

	out := aggregateRows(testMapping, testHeaders, rows)
	assert.Empty(t, out)
}

func TestAggregateRowsNormalizesPhoneAndDefaults(t *testing.T) {
	headers := []string{"Customer Name", "Mobile No", "Invoice Date", "Product", "Qty", "Unit Price", "GST %", "Total Amount"}
	// mapping missed phone, serial and tax: keyword fallback must find
	// "Mobile No" and "GST %", serial defaults to Unknown Serial
	mapping := entity.HeaderMapping{
		CustomerName: "Customer Name",
		InvoiceDate:  "Invoice Date",
		ProductName:  "Product",
		Quantity:     "Qty",
		UnitPrice:    "Unit Price",
		TotalAmount:  "Total Amount",
	}
	rows := [][]string{
		{"Acme Traders", "9998887770.0", "2024-01-05", "Widget", "2", "100", "18", "236"},
		{"Beta Supplies", "nan", "2024-01-06", "Gadget", "1", "50", "18", "59"},
	}

	out := aggregateRows(mapping, headers, rows)
	require.Len(t, out, 2)

	assert.Equal(t, "9998887770", out[0].Customer.PhoneNumber)
	assert.Equal(t, "Unknown Serial", out[0].InvoiceDetails.SerialNumber)
	assert.Equal(t, "36.00 (18%)", out[0].Products[0].Tax)

	assert.Equal(t, "", out[1].Customer.PhoneNumber)
}

func TestAggregateRowsIdempotent(t *testing.T) {
	rows := [][]string{
		row("Acme Traders", "111", "2024-01-05", "INV-001", "Widget", "1", "100", "18%", "118"),
	}

	first := aggregateRows(testMapping, testHeaders, rows)
	second := aggregateRows(testMapping, testHeaders, rows)
	assert.Equal(t, first, second)
}

func TestAggregateRowsShortRows(t *testing.T) {
	// rows shorter than the header row must read missing cells as blank
	rows := [][]string{
		{"Acme Traders", "111", "2024-01-05", "INV-001", "Widget", "1", "100"},
	}
	out := aggregateRows(testMapping, testHeaders, rows)
	// total amount cell is missing -> excluded as noise
	assert.Empty(t, out)
}

type staticMapper struct {
	mapping entity.HeaderMapping
	calls   int
}

func (m *staticMapper) MapHeaders(_ context.Context, _ []string) (entity.HeaderMapping, error) {
	m.calls++
	return m.mapping, nil
}

func TestAggregateEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{
		"Customer Name", "Phone", "Invoice Date", "Serial No",
		"Product", "Qty", "Unit Price", "Tax %", "Total Amount",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{
		"Acme Traders", "9998887770", "2024-01-05", "INV-001", "Widget", 1, 100, "18%", 118,
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{
		"Acme Traders", "9998887770", "2024-01-05", "INV-001", "Widget", 1, 100, "18%", 118,
	}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	mapper := &staticMapper{mapping: testMapping}
	agg := NewAggregator(mapper, nil)

	out, err := agg.Aggregate(context.Background(), path)
	require.NoError(t, err)

	// exactly one generative call per spreadsheet
	assert.Equal(t, 1, mapper.calls)

	require.Len(t, out, 1)
	require.Len(t, out[0].Products, 1)
	p := out[0].Products[0]
	assert.Equal(t, "Widget", p.Name)
	assert.InDelta(t, 2.0, p.Quantity, 1e-9)
	assert.Equal(t, "36.00 (18%)", p.Tax)
	assert.InDelta(t, 236.00, p.PriceWithTax, 1e-9)
	assert.InDelta(t, 236.00, out[0].InvoiceDetails.TotalAmount, 1e-9)
}

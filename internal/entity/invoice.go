package entity

import "fmt"

// Product is one line item belonging to exactly one invoice.
// Tax carries both the absolute amount and the percentage in a single
// string, e.g. "450.00 (18%)". PriceWithTax is always derivable as
// quantity*unit_price + tax amount; there is no independent source of truth.
type Product struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Tax          string  `json:"tax"`
	PriceWithTax float64 `json:"price_with_tax"`
}

// Customer is the single buyer on an invoice. TotalPurchaseAmount
// mirrors the invoice's total amount.
type Customer struct {
	CustomerName        string  `json:"customer_name"`
	PhoneNumber         string  `json:"phone_number"`
	TotalPurchaseAmount float64 `json:"total_purchase_amount"`
}

// InvoiceDetails holds the per-invoice metadata and rolled-up totals.
type InvoiceDetails struct {
	SerialNumber   string  `json:"serial_number"`
	TotalQuantity  float64 `json:"total_quantity"`
	TotalTaxAmount float64 `json:"total_tax_amount"`
	TotalAmount    float64 `json:"total_amount"`
	Date           string  `json:"date"`
}

// Extraction is one normalized invoice: metadata, its single customer,
// and the list of product line items. Value object, built fresh per
// request and never mutated after the batch response is assembled.
type Extraction struct {
	InvoiceDetails InvoiceDetails `json:"invoice_details"`
	Customer       Customer       `json:"customer"`
	Products       []Product      `json:"products"`
}

// FileError stands in for an Extraction in the batch result list when
// one file fails; the batch itself continues.
type FileError struct {
	Error string `json:"error"`
	File  string `json:"file"`
}

// HeaderMapping maps the nine canonical fields to the exact column
// header found in a given spreadsheet. An empty string means the
// mapping call found no match; the aggregator then falls back to a
// keyword scan. Produced once per spreadsheet, consumed immediately.
type HeaderMapping struct {
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
	InvoiceDate  string `json:"invoice_date"`
	TotalAmount  string `json:"total_amount"`
	Quantity     string `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	ProductName  string `json:"product_name"`
	SerialNumber string `json:"serial_number"`
	Tax          string `json:"tax"`
}

// GroupKey is the grouping identity for spreadsheet rows: rows sharing
// a key accumulate into one invoice.
type GroupKey struct {
	CustomerName string
	SerialNumber string
	PhoneNumber  string
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.CustomerName, k.SerialNumber, k.PhoneNumber)
}

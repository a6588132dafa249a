package tabular

import (
	"strings"

	"github.com/docuparse/invoice-extractor/constants"
	"github.com/docuparse/invoice-extractor/internal/entity"
)

// columns holds the resolved column index per canonical field, -1 when
// neither the mapping nor the keyword fallback found one. taxHeader
// keeps the matched tax header's text: a "%" in it flags the column as
// percentage-valued.
type columns struct {
	customer  int
	phone     int
	date      int
	total     int
	quantity  int
	unitPrice int
	product   int
	serial    int
	tax       int
	taxHeader string
}

// resolveColumns turns a HeaderMapping into column indexes. For any
// field the mapping left null, the first header containing one of the
// field's keywords (case-insensitive) is taken instead.
func resolveColumns(mapping entity.HeaderMapping, headers []string) columns {
	find := func(mapped, field string) int {
		if mapped != "" {
			for i, h := range headers {
				if strings.TrimSpace(h) == strings.TrimSpace(mapped) {
					return i
				}
			}
		}
		for _, kw := range constants.FieldKeywords[field] {
			for i, h := range headers {
				if strings.Contains(strings.ToLower(h), kw) {
					return i
				}
			}
		}
		return -1
	}

	c := columns{
		customer:  find(mapping.CustomerName, constants.FieldCustomerName),
		phone:     find(mapping.PhoneNumber, constants.FieldPhoneNumber),
		date:      find(mapping.InvoiceDate, constants.FieldInvoiceDate),
		total:     find(mapping.TotalAmount, constants.FieldTotalAmount),
		quantity:  find(mapping.Quantity, constants.FieldQuantity),
		unitPrice: find(mapping.UnitPrice, constants.FieldUnitPrice),
		product:   find(mapping.ProductName, constants.FieldProductName),
		serial:    find(mapping.SerialNumber, constants.FieldSerialNumber),
		tax:       find(mapping.Tax, constants.FieldTax),
	}
	if c.tax >= 0 && c.tax < len(headers) {
		c.taxHeader = headers[c.tax]
	}
	return c
}

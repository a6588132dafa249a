package constants

// Canonical field names resolved against spreadsheet column headers.
// The header-mapping call returns one matched header (or null) per field.
const (
	FieldCustomerName = "customer_name"
	FieldPhoneNumber  = "phone_number"
	FieldInvoiceDate  = "invoice_date"
	FieldTotalAmount  = "total_amount"
	FieldQuantity     = "quantity"
	FieldUnitPrice    = "unit_price"
	FieldProductName  = "product_name"
	FieldSerialNumber = "serial_number"
	FieldTax          = "tax"
)

// CanonicalFields lists every field the header mapping must cover,
// in the order they appear in the mapping schema.
var CanonicalFields = []string{
	FieldCustomerName,
	FieldPhoneNumber,
	FieldInvoiceDate,
	FieldTotalAmount,
	FieldQuantity,
	FieldUnitPrice,
	FieldProductName,
	FieldSerialNumber,
	FieldTax,
}

// FieldKeywords drives the deterministic fallback when the mapping
// leaves a field null: the first header containing one of these
// substrings (case-insensitive) wins. The "%" entry for tax matches
// headers like "GST %".
var FieldKeywords = map[string][]string{
	FieldCustomerName: {"customer", "client", "buyer", "consignee"},
	FieldPhoneNumber:  {"phone", "mobile", "contact"},
	FieldInvoiceDate:  {"date"},
	FieldTotalAmount:  {"total", "amount"},
	FieldQuantity:     {"qty", "quantity"},
	FieldUnitPrice:    {"unit price", "rate", "price"},
	FieldProductName:  {"product", "item", "description"},
	FieldSerialNumber: {"serial", "invoice no", "invoice #"},
	FieldTax:          {"tax", "%"},
}

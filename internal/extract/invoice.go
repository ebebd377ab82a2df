package extract

// AccountInfo holds the account block printed at the top of an invoice.
type AccountInfo struct {
	AccountNumber string `json:"account_number"`
	BusinessName  string `json:"business_name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
}

// InvoiceInfo holds the invoice metadata fields.
type InvoiceInfo struct {
	InvoiceNumber string `json:"invoice_number"`
	TABCNumber    string `json:"tabc_number"`
	Load          string `json:"load"`
	Terms         string `json:"terms"`
	Driver        string `json:"driver"`
	SalesRep      string `json:"sales_rep"`
}

// InvoiceItem is one purchased line item. Total is always derived from
// Quantity and Price, never read from the transcription.
type InvoiceItem struct {
	Code        string  `json:"code"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

// Totals holds the derived invoice totals. Tax is always zero for this
// invoice family.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// TableColumn describes one column of the item table.
type TableColumn struct {
	Key    string `json:"key"`
	Header string `json:"header"`
}

// ParsedInvoice is the structured result of extracting one OCR transcription.
type ParsedInvoice struct {
	AccountInfo AccountInfo   `json:"account_info"`
	InvoiceInfo InvoiceInfo   `json:"invoice_info"`
	Items       []InvoiceItem `json:"items"`
	Columns     []TableColumn `json:"columns"`
	Totals      Totals        `json:"totals"`
}

// Columns returns the fixed item table schema. It does not depend on the
// extracted data; renderers use it so they never need to know the shape.
func Columns() []TableColumn {
	return []TableColumn{
		{Key: "code", Header: "Item Code"},
		{Key: "quantity", Header: "Quantity"},
		{Key: "description", Header: "Description"},
		{Key: "price", Header: "Unit Price"},
		{Key: "total", Header: "Total"},
	}
}

package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Header field patterns. Each field is searched independently over the whole
// transcription, first match wins; a miss falls back to the profile value.
var (
	reAccountNumber    = regexp.MustCompile(`(?i)Account.*?:\s*(\d+)`)
	reAddress          = regexp.MustCompile(`(?i)CARSON FOOD MART,?\s*(.*?(?:TX|TEXAS)\s+\d{5})`)
	rePhone            = regexp.MustCompile(`\((\d{3})\)\s*(\d{3})-(\d{4})`)
	reInvoiceNumber    = regexp.MustCompile(`(?i)Invoice.*?#:\s*([^\n]+)`)
	reInvoiceNumberAlt = regexp.MustCompile(`(\d+P\d+#)`)
	reTABCNumber       = regexp.MustCompile(`(?i)TABC#:\s*([^\n]+)`)
	reLoad             = regexp.MustCompile(`(?i)Load:\s*([^\n]+)`)
	reTerms            = regexp.MustCompile(`(?i)Terms:\s*([^\n]+)`)
	reDriver           = regexp.MustCompile(`(?i)Driver:\s*([^\n]+)`)
	reSalesRep         = regexp.MustCompile(`(?i)Salesrep:\s*([^\n]+)`)
)

// Item line patterns. A candidate line starts with a 4-5 digit item code,
// optionally behind a leading asterisk marker. The primary pattern carries an
// explicit quantity; the colon fallback covers transcriptions where the model
// separates description and price with a colon, and implies quantity 1.
var (
	reItemCandidate = regexp.MustCompile(`^[*\s]*\d{4,5}`)
	reItemMarker    = regexp.MustCompile(`^\*\s*`)
	reItemPrimary   = regexp.MustCompile(`(\d{4,5})\s+(\d+)\s+([^$]+?)\s+(\d+\.\d+)`)
	reItemFallback  = regexp.MustCompile(`(\d{4,5})\s+([^:]+):\s*(\d+\.\d+)`)
)

// scanMode tracks the line scanner's position relative to the item section.
// stopped is distinct from beforeItems: both skip item matching, but stopped
// ends the scan so lines after the totals section are never inspected.
type scanMode int

const (
	beforeItems scanMode = iota
	inItems
	stopped
)

// Extractor turns raw OCR transcriptions into structured invoices. It is
// stateless apart from the sender profile and safe for concurrent use.
type Extractor struct {
	profile Profile
}

// New returns an Extractor bound to the given sender profile.
func New(profile Profile) *Extractor {
	return &Extractor{profile: profile}
}

var defaultExtractor = New(DefaultProfile())

// Extract parses ocrText with the default sender profile.
func Extract(ocrText string) *ParsedInvoice {
	return defaultExtractor.Extract(ocrText)
}

// Extract recovers a structured invoice from a raw OCR transcription. It
// never fails: for any input, including empty or non-invoice text, it returns
// a fully populated record. An empty Items slice is the signal that no line
// items could be found.
func (e *Extractor) Extract(ocrText string) *ParsedInvoice {
	items := e.scanItems(ocrText)

	var subtotal float64
	for _, item := range items {
		subtotal += item.Total
	}
	tax := 0.0 // these invoices carry no tax

	return &ParsedInvoice{
		AccountInfo: e.accountInfo(ocrText),
		InvoiceInfo: e.invoiceInfo(ocrText),
		Items:       items,
		Columns:     Columns(),
		Totals: Totals{
			Subtotal: subtotal,
			Tax:      tax,
			Total:    subtotal + tax,
		},
	}
}

func (e *Extractor) accountInfo(text string) AccountInfo {
	info := AccountInfo{
		AccountNumber: matchGroup(reAccountNumber, text, e.profile.AccountNumber),
		BusinessName:  e.profile.BusinessName,
		Address:       matchGroup(reAddress, text, e.profile.Address),
		Phone:         e.profile.Phone,
	}
	if m := rePhone.FindStringSubmatch(text); m != nil {
		info.Phone = fmt.Sprintf("(%s) %s-%s", m[1], m[2], m[3])
	}
	return info
}

func (e *Extractor) invoiceInfo(text string) InvoiceInfo {
	invoiceNumber := matchGroup(reInvoiceNumber, text, "")
	if invoiceNumber == "" {
		invoiceNumber = matchGroup(reInvoiceNumberAlt, text, e.profile.InvoiceNumber)
	}
	return InvoiceInfo{
		InvoiceNumber: invoiceNumber,
		TABCNumber:    matchGroup(reTABCNumber, text, e.profile.TABCNumber),
		Load:          matchGroup(reLoad, text, e.profile.Load),
		Terms:         matchGroup(reTerms, text, e.profile.Terms),
		Driver:        matchGroup(reDriver, text, e.profile.Driver),
		SalesRep:      matchGroup(reSalesRep, text, e.profile.SalesRep),
	}
}

// matchGroup returns the trimmed first capture group, or fallback on a miss.
func matchGroup(re *regexp.Regexp, text, fallback string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fallback
}

// scanItems walks the transcription line by line. Lines before the item
// section header are ignored; inside the section, candidate lines are matched
// against the item patterns and non-matching noise lines are dropped; a
// Subtotal/Total Amount line stops the scan for good.
func (e *Extractor) scanItems(text string) []InvoiceItem {
	items := []InvoiceItem{}
	mode := beforeItems

	for _, line := range strings.Split(text, "\n") {
		if mode == stopped {
			break
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			// Blank OCR artifacts never affect the mode.
		case strings.Contains(trimmed, "Item"):
			// Section header such as "Itemized List". The header line
			// itself yields no item.
			mode = inItems
		default:
			if mode == inItems && reItemCandidate.MatchString(trimmed) {
				if item, ok := parseItemLine(trimmed); ok {
					items = append(items, item)
				}
			}
			if strings.Contains(trimmed, "Subtotal:") || strings.Contains(trimmed, "Total Amount:") {
				mode = stopped
			}
		}
	}

	return items
}

// parseItemLine tries the item patterns in priority order on a candidate
// line. A false return means the line is dropped; malformed item lines are
// never an error.
func parseItemLine(line string) (InvoiceItem, bool) {
	clean := strings.TrimSpace(reItemMarker.ReplaceAllString(line, ""))

	// Primary: "10048 1 BUDWEISER BUD 2/12 CAN 28.95"
	if m := reItemPrimary.FindStringSubmatch(clean); m != nil {
		quantity, qtyErr := strconv.Atoi(m[2])
		price, priceErr := strconv.ParseFloat(m[4], 64)
		if qtyErr != nil || priceErr != nil {
			return InvoiceItem{}, false
		}
		return InvoiceItem{
			Code:        m[1],
			Quantity:    quantity,
			Description: strings.TrimSpace(m[3]),
			Price:       price,
			Total:       float64(quantity) * price,
		}, true
	}

	// Fallback: "10048 BUDWEISER BUD 2/12 CAN: 28.95", quantity implied 1.
	if m := reItemFallback.FindStringSubmatch(clean); m != nil {
		price, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return InvoiceItem{}, false
		}
		return InvoiceItem{
			Code:        m[1],
			Quantity:    1,
			Description: strings.TrimSpace(m[2]),
			Price:       price,
			Total:       price,
		}, true
	}

	return InvoiceItem{}, false
}

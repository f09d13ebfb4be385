package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Address mirrors the address_t composite Postgres type. The breakdown
// follows Philippine addressing: street line, barangay, city/municipality,
// province.
type Address struct {
	Line1      string  `json:"line1"`
	Barangay   string  `json:"barangay"`
	City       string  `json:"city"`
	Province   string  `json:"province"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    string  `json:"country"`
	Landmark   *string `json:"landmark,omitempty"`
}

// Value marshals Address into a Postgres composite literal.
func (a Address) Value() (driver.Value, error) {
	if strings.TrimSpace(a.Line1) == "" {
		return nil, fmt.Errorf("address: missing line1")
	}
	if strings.TrimSpace(a.City) == "" {
		return nil, fmt.Errorf("address: missing city")
	}
	if strings.TrimSpace(a.Province) == "" {
		return nil, fmt.Errorf("address: missing province")
	}

	country := strings.TrimSpace(a.Country)
	if country == "" {
		country = "PH"
	}

	parts := []string{
		quoteCompositeString(a.Line1),
		quoteCompositeString(a.Barangay),
		quoteCompositeString(a.City),
		quoteCompositeString(a.Province),
		quoteCompositeNullable(a.PostalCode),
		quoteCompositeString(country),
		quoteCompositeNullable(a.Landmark),
	}

	return "(" + strings.Join(parts, ",") + ")", nil
}

// Scan decodes the Postgres composite literal.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("address: unsupported scan type %T", value)
	}

	fields, err := parseComposite(raw, 7)
	if err != nil {
		return err
	}

	a.Line1 = fields[0]
	a.Barangay = fields[1]
	a.City = fields[2]
	a.Province = fields[3]
	a.PostalCode = newCompositeNullable(fields[4])

	country := strings.TrimSpace(fields[5])
	if country == "" || isCompositeNull(fields[5]) {
		country = "PH"
	}
	a.Country = country

	a.Landmark = newCompositeNullable(fields[6])

	return nil
}

package domain

import "strings"

// Address is a postal address. ZipCode is kept as text, it is validated
// only when a provider has to be routed by it.
type Address struct {
	ID          int64   `json:"id" db:"id"`
	Street      string  `json:"street" db:"street"`
	HouseNumber string  `json:"house_number" db:"house_number"`
	ZipCode     string  `json:"zip_code" db:"zip_code"`
	City        string  `json:"city" db:"city"`
	District    *string `json:"district,omitempty" db:"district"`
}

// String renders the address the way geocoders expect it:
// "<street> <house number>, <zip code> <city>".
func (a Address) String() string {
	street := strings.TrimSpace(strings.Join([]string{a.Street, a.HouseNumber}, " "))
	city := strings.TrimSpace(strings.Join([]string{a.ZipCode, a.City}, " "))

	switch {
	case street == "":
		return city
	case city == "":
		return street
	default:
		return street + ", " + city
	}
}

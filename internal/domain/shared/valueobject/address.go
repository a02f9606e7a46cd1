package valueobject

import "strings"

// Address is a postal address snapshot captured during checkout
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// IsEmpty reports whether the address has no meaningful content
func (a Address) IsEmpty() bool {
	return a.Street1 == "" && a.City == "" && a.PostalCode == ""
}

// Validate checks required fields
func (a Address) Validate() error {
	var missing []string
	if a.Name == "" {
		missing = append(missing, "name")
	}
	if a.Street1 == "" {
		missing = append(missing, "street1")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if a.PostalCode == "" {
		missing = append(missing, "postal_code")
	}
	if a.Country == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return &AddressValidationError{Missing: missing}
	}
	return nil
}

// AddressValidationError lists the missing required fields
type AddressValidationError struct {
	Missing []string
}

func (e *AddressValidationError) Error() string {
	return "address missing required fields: " + strings.Join(e.Missing, ", ")
}

package draft

import (
	"fmt"
	"regexp"
)

var reNationalID = regexp.MustCompile(`^[0-9]{12}$`)

// ValidNationalID reports whether s is exactly 12 digits.
func ValidNationalID(s string) bool { return reNationalID.MatchString(s) }

// MinPrincipal is the smallest loan amount that can be submitted.
const MinPrincipal = 100

// CheckDistinctMobiles enforces pairwise distinctness among the non-empty
// values of primary, secondary and emergency mobile numbers. Re-checked on
// every customer field update.
func (d *Draft) CheckDistinctMobiles() error {
	pairs := [][2]string{
		{d.PrimaryMobile, d.SecondaryMobile},
		{d.PrimaryMobile, d.EmergencyMobile},
		{d.SecondaryMobile, d.EmergencyMobile},
	}
	for _, p := range pairs {
		if p[0] != "" && p[0] == p[1] {
			return &DuplicateContactError{}
		}
	}
	return nil
}

// requiredFields in display order; email and secondary mobile stay optional.
func (d *Draft) requiredFields() []struct{ label, value string } {
	return []struct{ label, value string }{
		{"National ID", d.NationalID},
		{"Name", d.Name},
		{"Primary mobile", d.PrimaryMobile},
		{"Emergency contact mobile", d.EmergencyMobile},
		{"Emergency contact relation", d.EmergencyRelation},
		{"Present address", d.PresentAddress},
		{"Permanent address", d.PermanentAddress},
	}
}

// ValidateCustomerInfo gates the 1→2 transition: required fields present
// and the distinct-mobile invariant holds.
func (d *Draft) ValidateCustomerInfo() error {
	for _, f := range d.requiredFields() {
		if f.value == "" {
			return NewValidationError(fmt.Sprintf("%s is required", f.label))
		}
	}
	if err := d.CheckDistinctMobiles(); err != nil {
		return err
	}
	return nil
}

// ValidateForSubmit gates the final 3→completed transition. Checks run in
// this order and the first failure wins; no network call is made when any
// of them fails.
func (d *Draft) ValidateForSubmit() error {
	if !ValidNationalID(d.NationalID) {
		return NewValidationError("National ID must be exactly 12 digits")
	}
	for _, f := range d.requiredFields() {
		if f.value == "" {
			return NewValidationError(fmt.Sprintf("%s is required", f.label))
		}
	}
	if err := d.CheckDistinctMobiles(); err != nil {
		return err
	}
	if !d.HasPledgeableItem() {
		return NewValidationError("At least one gold item with description and positive weights is required")
	}
	if d.PrincipalAmount < MinPrincipal {
		return NewValidationError(fmt.Sprintf("Loan amount must be at least %d", MinPrincipal))
	}
	if d.TermMonths < 1 {
		return NewValidationError("Term must be at least 1 month")
	}
	if d.InterestRatePercent < 0 {
		return NewValidationError("Interest rate cannot be negative")
	}
	if d.MonthlyPayment <= 0 {
		return NewValidationError("Monthly payment has not been computed")
	}
	if d.TotalPayable <= 0 {
		return NewValidationError("Total payable has not been computed")
	}
	return nil
}

// Package fees computes the filing-fee breakdown of a legal act.
package fees

import (
	"errors"
	"fmt"
	"math"

	"github.com/xelth-com/huissierpro/internal/models"
)

// DefaultBaseFee applies to any category missing from the emolument table.
const DefaultBaseFee int64 = 25000

// TaxRate is the VAT applied to emoluments and transport.
const TaxRate = 0.18

// ErrInvalidFeeValue is returned for negative or non-finite fee inputs.
var ErrInvalidFeeValue = errors.New("invalid fee value")

// Editable fee inputs.
const (
	FieldEmoluments   = "emoluments"
	FieldTransport    = "transport"
	FieldRegistration = "registration"
)

// baseFees holds the fixed emoluments per act category, in FCFA.
// Sommation de payer is intentionally absent and falls back to DefaultBaseFee.
var baseFees = map[models.Category]int64{
	models.CategoryAssignation:           75000,
	models.CategoryConstat:               35000,
	models.CategorySaisieAttribution:     120000,
	models.CategorySaisieVente:           150000,
	models.CategoryExpulsion:             80000,
	models.CategorySignificationJugement: 20000,
}

// BaseFeeFor returns the fixed emolument for a category.
func BaseFeeFor(category models.Category) int64 {
	if fee, ok := baseFees[category]; ok {
		return fee
	}
	return DefaultBaseFee
}

// Initial returns the baseline breakdown for a freshly created act.
func Initial(category models.Category) models.Fees {
	f, _ := Recompute(models.Fees{Emoluments: float64(BaseFeeFor(category))})
	return f
}

// Recompute derives tax and total from the editable inputs.
// Applying it to its own output yields the same value.
func Recompute(f models.Fees) (models.Fees, error) {
	inputs := []struct {
		name  string
		value float64
	}{
		{FieldEmoluments, f.Emoluments},
		{FieldTransport, f.Transport},
		{FieldRegistration, f.Registration},
	}
	for _, in := range inputs {
		if err := checkValue(in.name, in.value); err != nil {
			return f, err
		}
	}

	f.Tax = round2(TaxRate * (f.Emoluments + f.Transport))
	f.Total = f.Emoluments + f.Transport + f.Registration + f.Tax
	return f, nil
}

// Check reports whether f is a breakdown Recompute could have produced:
// finite non-negative inputs with matching tax and total.
func Check(f models.Fees) error {
	want, err := Recompute(f)
	if err != nil {
		return err
	}
	if math.Abs(want.Tax-f.Tax) > tolerance || math.Abs(want.Total-f.Total) > tolerance {
		return fmt.Errorf("%w: tax/total %v/%v do not match inputs (want %v/%v)",
			ErrInvalidFeeValue, f.Tax, f.Total, want.Tax, want.Total)
	}
	return nil
}

// tolerance absorbs float noise below the rounding step.
const tolerance = 0.005

// SetField edits one input and recomputes the derived values in the same step.
func SetField(f models.Fees, field string, value float64) (models.Fees, error) {
	if err := checkValue(field, value); err != nil {
		return f, err
	}
	switch field {
	case FieldEmoluments:
		f.Emoluments = value
	case FieldTransport:
		f.Transport = value
	case FieldRegistration:
		f.Registration = value
	default:
		return f, fmt.Errorf("%w: unknown field %q", ErrInvalidFeeValue, field)
	}
	return Recompute(f)
}

func checkValue(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidFeeValue, field)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative (got %v)", ErrInvalidFeeValue, field, v)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

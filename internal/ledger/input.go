package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds of quantities and rates: below 10^12 with at most 20 decimals.
const (
	maxIntegerDigits  = 12
	maxFractionDigits = 20
)

// Input is a validated add-item request. Build it with ParseInput or
// NewInput; a zero Input is rejected by Ledger.Add.
type Input struct {
	Name     string
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

// ParseInput turns raw form values into a validated Input. Every field is
// checked, so the returned ValidationError names all the problems at once.
func ParseInput(name, quantity, rate string) (Input, error) {
	fields := map[string]string{}

	in := Input{Name: strings.TrimSpace(name)}
	if in.Name == "" {
		fields["name"] = ReasonRequired
	}

	var ok bool
	if in.Quantity, ok = parseNumber("quantity", quantity, fields); ok {
		checkQuantity(in.Quantity, fields)
	}
	if in.Rate, ok = parseNumber("rate", rate, fields); ok {
		checkRate(in.Rate, fields)
	}

	if len(fields) > 0 {
		return Input{}, &ValidationError{Fields: fields}
	}
	return in, nil
}

// NewInput validates already typed values.
func NewInput(name string, quantity, rate decimal.Decimal) (Input, error) {
	in := Input{Name: strings.TrimSpace(name), Quantity: quantity, Rate: rate}
	if err := in.validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

func (in Input) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = ReasonRequired
	}
	checkQuantity(in.Quantity, fields)
	checkRate(in.Rate, fields)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkQuantity(q decimal.Decimal, fields map[string]string) {
	switch {
	case !inRange(q):
		fields["quantity"] = ReasonOutOfRange
	case !q.IsPositive():
		fields["quantity"] = ReasonMustBePositive
	}
}

func checkRate(r decimal.Decimal, fields map[string]string) {
	switch {
	case !inRange(r):
		fields["rate"] = ReasonOutOfRange
	case r.IsNegative():
		fields["rate"] = ReasonNegative
	}
}

// inRange bounds the integer and fractional digits of a number. It only
// looks at the coefficient and exponent, so a value like 1e400000000 is
// rejected without ever being expanded.
func inRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -maxFractionDigits {
		return false
	}
	coef := d.Coefficient()
	digits := int64(len(coef.Abs(coef).String()))
	return digits+exp <= maxIntegerDigits
}

func parseNumber(field, raw string, fields map[string]string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		fields[field] = ReasonRequired
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		fields[field] = ReasonNotANumber
		return decimal.Zero, false
	}
	return d, true
}

package arthax

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FieldKind is the validation rule of an input field.
type FieldKind int

const (
	// Text must not be blank.
	Text FieldKind = iota
	// Positive must be a number strictly greater than zero.
	Positive
	// NonNegative is an optional number, zero when blank.
	NonNegative
	// Freeform is an optional string, Default when blank.
	Freeform
)

// Field is one local input of a feature.
type Field struct {
	Name    string // payload key, also the input name
	Kind    FieldKind
	Message string // notified when the value is rejected
	Default string // Freeform only
}

// Values are the raw user inputs of a trigger, by field name.
type Values map[string]string

// parse validates raw and returns its payload value: a string or a json.Number.
func (f Field) parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	reject := func() error { return &ValidationError{Field: f.Name, Message: f.Message} }

	switch f.Kind {
	case Text:
		if raw == "" {
			return nil, reject()
		}
		return raw, nil
	case Freeform:
		if raw == "" {
			return f.Default, nil
		}
		return raw, nil
	case Positive, NonNegative:
		if raw == "" {
			if f.Kind == NonNegative {
				return json.Number("0"), nil
			}
			return nil, reject()
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, reject()
		}
		if f.Kind == Positive && !d.IsPositive() {
			return nil, reject()
		}
		if f.Kind == NonNegative && d.IsNegative() {
			return nil, reject()
		}
		return json.Number(d.String()), nil
	}
	return nil, fmt.Errorf("unknown field kind %d", f.Kind)
}

// Input is the validated input of a trigger.
type Input struct {
	Identity Identity
	Values   map[string]any
}

// Decimal returns a numeric input, zero if absent.
func (in Input) Decimal(name string) decimal.Decimal {
	n, ok := in.Values[name].(json.Number)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// String returns a text input.
func (in Input) String(name string) string {
	s, _ := in.Values[name].(string)
	return s
}

// Payload returns the request body: every field plus user_id.
func (in Input) Payload() map[string]any {
	p := make(map[string]any, len(in.Values)+1)
	for k, v := range in.Values {
		p[k] = v
	}
	p["user_id"] = in.Identity.ID
	return p
}

// maxMinorUnits is the largest amount, in minor units, go-money can hold.
var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// FormatAmount formats an amount in a currency, e.g. "₹200,000.00" for INR.
// Unknown currencies fall back to the plain number followed by the code.
func FormatAmount(d decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return d.StringFixed(2) + " " + code
	}
	minor := d.Shift(int32(cur.Fraction)).Truncate(0)
	if minor.GreaterThan(maxMinorUnits) || minor.LessThan(maxMinorUnits.Neg()) {
		return d.StringFixed(2) + " " + code
	}
	return cur.Formatter().Format(minor.IntPart())
}

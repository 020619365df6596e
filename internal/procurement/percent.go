package procurement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent is a payment percentage that may be unset. Unset travels as "".
type Percent struct {
	value decimal.Decimal
	set   bool
}

// PercentOf returns a set percentage.
func PercentOf(v decimal.Decimal) Percent {
	return Percent{value: v, set: true}
}

// PercentFromInt is a convenience for whole percentages.
func PercentFromInt(v int64) Percent {
	return PercentOf(decimal.NewFromInt(v))
}

// IsSet reports whether a value was supplied.
func (p Percent) IsSet() bool { return p.set }

// Decimal returns the value, zero when unset.
func (p Percent) Decimal() decimal.Decimal {
	if !p.set {
		return decimal.Zero
	}
	return p.value
}

// Equal compares set state and value.
func (p Percent) Equal(o Percent) bool {
	return p.set == o.set && p.Decimal().Equal(o.Decimal())
}

func (p Percent) String() string {
	if !p.set {
		return ""
	}
	return p.value.String()
}

// MarshalJSON implements json.Marshaler.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte(`""`), nil
	}
	return []byte(p.value.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string, "" or null.
func (p *Percent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Percent{}
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*p = Percent{}
			return nil
		}
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid percentage %q", raw)
	}
	*p = PercentOf(v)
	return nil
}

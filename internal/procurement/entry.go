package procurement

import "github.com/shopspring/decimal"

// maxEntryCents keeps the buffer inside 13 integer digits.
const maxEntryCents int64 = 999_999_999_999_999

// KeyResult tells the caller what a keystroke did to a PriceEntry.
type KeyResult int

const (
	// KeyIgnored means the key had no effect and must not reach the field.
	KeyIgnored KeyResult = iota
	// KeyConsumed means the buffer handled the key.
	KeyConsumed
	// KeyPassThrough means the key is for navigation and the buffer is untouched.
	KeyPassThrough
)

func (r KeyResult) String() string {
	switch r {
	case KeyConsumed:
		return "consumed"
	case KeyPassThrough:
		return "pass-through"
	default:
		return "ignored"
	}
}

// PriceEntry is a calculator-tape currency field holding integer cents.
type PriceEntry struct {
	cents int64
}

// NewPriceEntry starts the buffer at v, truncated to cents.
func NewPriceEntry(v decimal.Decimal) *PriceEntry {
	if v.IsNegative() {
		v = decimal.Zero
	}
	cents := v.Shift(2).Truncate(0).IntPart()
	if cents > maxEntryCents {
		cents = maxEntryCents
	}
	return &PriceEntry{cents: cents}
}

// Press applies one key. Digits shift in from the right and Backspace drops the last digit.
func (e *PriceEntry) Press(key string) KeyResult {
	switch key {
	case "Tab", "Enter":
		return KeyPassThrough
	case "Backspace":
		e.cents /= 10
		return KeyConsumed
	}
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return KeyIgnored
	}
	next := e.cents*10 + int64(key[0]-'0')
	if next > maxEntryCents {
		return KeyIgnored
	}
	e.cents = next
	return KeyConsumed
}

// Type presses every key in order.
func (e *PriceEntry) Type(keys ...string) {
	for _, k := range keys {
		e.Press(k)
	}
}

// Cents returns the raw buffer.
func (e *PriceEntry) Cents() int64 { return e.cents }

// Value returns cents / 100.
func (e *PriceEntry) Value() decimal.Decimal {
	return decimal.New(e.cents, -2)
}

// String formats the value with two decimals.
func (e *PriceEntry) String() string {
	return e.Value().StringFixed(2)
}

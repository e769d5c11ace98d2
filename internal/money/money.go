// Package money provides the fixed-point decimal type every monetary
// value in the orchestrator is stored and computed in (share
// quantities are whole int64 counts). float64 is never used for cash, prices, or position sizing: a
// single accumulated rounding error across a day of cycles would make
// the audit trail unreconcilable, which is exactly the failure mode
// spec invariant 7 rules out.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the fractional precision carried internally (four digits),
// matching the spec's minimum precision requirement. Fee components are
// rounded to two digits with RoundCash (fees.go); other values, cash
// balances included, keep the scale their arithmetic produced.
const Scale = 4

// Amount is a decimal value with at least four fractional digits of
// precision, safe to add/subtract/multiply without float drift.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{d: decimal.Zero}

// New builds an Amount from a string representation, the only safe way
// to construct one from a literal (a float64 literal has already lost
// precision by the time Go parses it).
func New(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// MustNew panics on a malformed literal; reserved for constants known
// at compile time (tests, default config values).
func MustNew(s string) Amount {
	a, err := New(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromInt builds an exact Amount from an integer (share counts, lot counts).
func FromInt(i int64) Amount { return Amount{d: decimal.NewFromInt(i)} }

// FromFloat is a narrow escape hatch for values that genuinely
// originate as float64 (an upstream market data feed's last price);
// it should never be used for anything computed inside this module.
func FromFloat(f float64) Amount { return Amount{d: decimal.NewFromFloat(f)} }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }
func (a Amount) Mul(b Amount) Amount { return Amount{d: a.d.Mul(b.d)} }

// Div divides and keeps Scale fractional digits; dividing by zero panics
// in shopspring/decimal, so callers must check b.IsZero() first.
func (a Amount) Div(b Amount) Amount {
	return Amount{d: a.d.DivRound(b.d, Scale)}
}

func (a Amount) Neg() Amount                { return Amount{d: a.d.Neg()} }
func (a Amount) Abs() Amount                { return Amount{d: a.d.Abs()} }
func (a Amount) IsZero() bool               { return a.d.IsZero() }
func (a Amount) IsNegative() bool           { return a.d.Sign() < 0 }
func (a Amount) IsPositive() bool           { return a.d.Sign() > 0 }
func (a Amount) GreaterThan(b Amount) bool  { return a.d.GreaterThan(b.d) }
func (a Amount) LessThan(b Amount) bool     { return a.d.LessThan(b.d) }
func (a Amount) GreaterOrEqual(b Amount) bool { return a.d.GreaterThanOrEqual(b.d) }
func (a Amount) LessOrEqual(b Amount) bool  { return a.d.LessThanOrEqual(b.d) }
func (a Amount) Equal(b Amount) bool        { return a.d.Equal(b.d) }

// RoundCash rounds to two decimal places using banker's rounding
// (round-half-to-even), matching spec §6.3's settlement convention and
// avoiding the systematic upward bias plain round-half-up would
// introduce across millions of fee calculations.
func (a Amount) RoundCash() Amount {
	return Amount{d: a.d.RoundBank(2)}
}

// Round rounds to the given number of decimal places using banker's rounding.
func (a Amount) Round(places int32) Amount {
	return Amount{d: a.d.RoundBank(places)}
}

// Float64 surfaces the value for contexts that must emit plain JSON
// numbers (API responses); never use the result in further arithmetic.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

// String renders the full-precision decimal representation, keeping
// the value's fractional scale (trailing zeros included).
func (a Amount) String() string {
	if exp := a.d.Exponent(); exp < 0 {
		return a.d.StringFixed(-exp)
	}
	return a.d.String()
}

// MarshalJSON emits the amount as a JSON string to avoid float64
// round-tripping through encoding/json's number decoder.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.d.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: invalid JSON amount %q: %w", string(data), err)
	}
	a.d = d
	return nil
}

// Value implements database/sql/driver.Valuer, persisting as NUMERIC text.
func (a Amount) Value() (driver.Value, error) {
	return a.d.String(), nil
}

// Scan implements sql.Scanner, reading a NUMERIC/DECIMAL column back.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		a.d = decimal.Zero
		return nil
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("money: scan amount %q: %w", string(v), err)
		}
		a.d = d
		return nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("money: scan amount %q: %w", v, err)
		}
		a.d = d
		return nil
	case float64:
		a.d = decimal.NewFromFloat(v)
		return nil
	default:
		return fmt.Errorf("money: unsupported scan source %T", src)
	}
}

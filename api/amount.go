package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Amount is a monetary value in pounds sterling held as an exact number
// of pence. The HMRC tax forms carry amounts as JSON numbers with two
// decimal places; floating point is not acceptable for money, so the
// wire value 100.30 round-trips through Amount(10030).
type Amount int64

// ParseAmount parses a decimal amount with up to two decimal places,
// e.g. "3442.79", "-0.5", "500".
func ParseAmount(s string) (Amount, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, errors.New("empty amount")
	}
	negative := false
	switch trimmed[0] {
	case '-':
		negative = true
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}

	whole, frac, dotted := strings.Cut(trimmed, ".")
	if whole == "" && frac == "" {
		return 0, errors.Errorf("malformed amount %q", s)
	}
	if dotted && frac == "" {
		return 0, errors.Errorf("malformed amount %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	pounds, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errors.Errorf("malformed amount %q", s)
	}
	if len(frac) > 2 {
		return 0, errors.Errorf("amount %q has more than two decimal places", s)
	}
	pence := int64(0)
	if frac != "" {
		pence, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || pence < 0 {
			return 0, errors.Errorf("malformed amount %q", s)
		}
		if len(frac) == 1 {
			pence *= 10
		}
	}
	total := pounds*100 + pence
	if negative {
		total = -total
	}
	return Amount(total), nil
}

// AmountFromPence builds an Amount from an exact pence count.
func AmountFromPence(pence int64) Amount {
	return Amount(pence)
}

// Pence returns the amount as pence.
func (a Amount) Pence() int64 {
	return int64(a)
}

// String renders the amount with two decimal places, e.g. "100.30".
func (a Amount) String() string {
	pence := int64(a)
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	return fmt.Sprintf("%s%d.%02d", sign, pence/100, pence%100)
}

// MarshalJSON renders the amount as a bare JSON number with two decimal
// places, matching the representation in the HMRC documentation.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

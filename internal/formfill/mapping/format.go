package mapping

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type amountState int

const (
	amountEmpty amountState = iota
	amountValid
	amountInvalid
)

// parseAmount reads a monetary or numeric value. Nil and blank strings are
// empty; anything that is not a number is invalid.
func parseAmount(v interface{}) (decimal.Decimal, amountState) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, amountEmpty
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Zero, amountEmpty
		}
		s = strings.NewReplacer(",", "", "$", "").Replace(s)
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, amountInvalid
		}
		return d, amountValid
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, amountInvalid
		}
		return d, amountValid
	case decimal.Decimal:
		return t, amountValid
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero, amountEmpty
		}
		return *t, amountValid
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, amountInvalid
		}
		return decimal.NewFromFloat(t), amountValid
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, amountInvalid
		}
		return decimal.NewFromFloat32(t), amountValid
	case int:
		return decimal.NewFromInt(int64(t)), amountValid
	case int32:
		return decimal.NewFromInt32(t), amountValid
	case int64:
		return decimal.NewFromInt(t), amountValid
	case uint:
		return decimal.NewFromInt(int64(t)), amountValid
	case uint32:
		return decimal.NewFromInt(int64(t)), amountValid
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(t), 0), amountValid
	}
	return decimal.Zero, amountInvalid
}

var currencyPrinter = message.NewPrinter(language.English)

// FormatCurrency renders d with thousands separators and two decimals,
// e.g. "100,000.00". Digits are never routed through float64.
func FormatCurrency(d decimal.Decimal) string {
	r := d.Round(2)
	fixed := r.Abs().StringFixed(2)
	dot := strings.IndexByte(fixed, '.')

	var whole string
	if w := r.Abs().Truncate(0).BigInt(); w.IsInt64() {
		whole = currencyPrinter.Sprint(number.Decimal(w.Int64()))
	} else {
		whole = groupThousands(fixed[:dot])
	}
	if r.Sign() < 0 {
		return "-" + whole + fixed[dot:]
	}
	return whole + fixed[dot:]
}

// groupThousands inserts commas into a run of digits.
func groupThousands(digits string) string {
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func currency(v interface{}) slot {
	d, state := parseAmount(v)
	switch state {
	case amountEmpty:
		return include("")
	case amountValid:
		return include(FormatCurrency(d))
	}
	return omit()
}

// plainNumber renders a number the way it was given: json.Number and
// numeric strings keep their literal text, floats use the shortest form.
func plainNumber(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if _, err := decimal.NewFromString(s); err != nil {
			return "", false
		}
		return s, true
	case json.Number:
		return t.String(), true
	case decimal.Decimal:
		if t.Exponent() < 0 {
			return t.StringFixed(-t.Exponent()), true
		}
		return t.String(), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint32:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	}
	return "", false
}

// numeric formats rates, terms and counts.
func numeric(v interface{}) slot {
	if v == nil {
		return include("")
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return include("")
	}
	s, ok := plainNumber(v)
	if !ok {
		return omit()
	}
	return include(s)
}

// text passes free text through. Structured values cannot be rendered.
func text(v interface{}) slot {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return omit()
	}
	return include(str(v))
}

func flag(v interface{}) slot {
	return include(truthy(v))
}

// dateParts splits a YYYY-MM-DD date, optionally followed by a time, into
// zero-padded day, month and year.
func dateParts(v interface{}) (day, month, year string, ok bool) {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return "", "", "", false
		}
		t = d
	case string:
		s := strings.TrimSpace(d)
		if len(s) < 10 || (len(s) > 10 && s[10] != 'T' && s[10] != ' ') {
			return "", "", "", false
		}
		parsed, err := time.Parse("2006-01-02", s[:10])
		if err != nil {
			return "", "", "", false
		}
		t = parsed
	default:
		return "", "", "", false
	}
	return t.Format("02"), t.Format("01"), t.Format("2006"), true
}

// sum adds the amount under key for every item. Blank amounts count as
// zero; a single invalid amount makes the total unknowable.
func sum(items []object, key string) slot {
	total := decimal.Zero
	for _, it := range items {
		d, state := parseAmount(it[key])
		switch state {
		case amountInvalid:
			return omit()
		case amountValid:
			total = total.Add(d)
		}
	}
	return include(FormatCurrency(total))
}

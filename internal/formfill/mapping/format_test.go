package mapping

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Currency
// ==========================

func TestCurrency(t *testing.T) {
	tests := []struct {
		name   string
		in     interface{}
		want   string
		wantOK bool
	}{
		{"int", 100000, "100,000.00", true},
		{"float", 85000.5, "85,000.50", true},
		{"json number", json.Number("1234567.891"), "1,234,567.89", true},
		{"numeric string", "85000.50", "85,000.50", true},
		{"grouped string", "1,250", "1,250.00", true},
		{"decimal", decimal.RequireFromString("85000.50"), "85,000.50", true},
		{"zero", 0, "0.00", true},
		{"negative", -1500, "-1,500.00", true},
		{"negative cents", "-0.5", "-0.50", true},
		{"rounds to zero", "-0.001", "0.00", true},
		{"half rounds up", "2.345", "2.35", true},
		{"beyond float precision", json.Number("98765432109876543.21"), "98,765,432,109,876,543.21", true},
		{"beyond int64", "123456789012345678901234.5", "123,456,789,012,345,678,901,234.50", true},
		{"nil", nil, "", true},
		{"blank", "  ", "", true},
		{"garbage", "abc", "", false},
		{"bool", true, "", false},
		{"nan", math.NaN(), "", false},
		{"object", map[string]interface{}{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := currency(tt.in)
			assert.Equal(t, tt.wantOK, s.ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, s.value)
			}
		})
	}
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands("0"))
	assert.Equal(t, "999", groupThousands("999"))
	assert.Equal(t, "1,000", groupThousands("1000"))
	assert.Equal(t, "12,345,678", groupThousands("12345678"))
}

// ==========================
// Rates, terms and counts
// ==========================

func TestNumeric(t *testing.T) {
	tests := []struct {
		name   string
		in     interface{}
		want   string
		wantOK bool
	}{
		{"int", 12, "12", true},
		{"json number keeps literal", json.Number("10.00"), "10.00", true},
		{"string keeps literal", " 10.00 ", "10.00", true},
		{"float shortest", 10.5, "10.5", true},
		{"whole float", 12.0, "12", true},
		{"decimal keeps scale", decimal.RequireFromString("9.50"), "9.50", true},
		{"nil", nil, "", true},
		{"blank", "", "", true},
		{"word", "twelve", "", false},
		{"bool", false, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := numeric(tt.in)
			assert.Equal(t, tt.wantOK, s.ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, s.value)
			}
		})
	}
}

// ==========================
// Dates
// ==========================

func TestDateParts(t *testing.T) {
	d, m, y, ok := dateParts("2024-12-31")
	assert.True(t, ok)
	assert.Equal(t, []string{"31", "12", "2024"}, []string{d, m, y})

	d, m, y, ok = dateParts("1985-03-07T00:00:00Z")
	assert.True(t, ok)
	assert.Equal(t, []string{"07", "03", "1985"}, []string{d, m, y})

	d, m, y, ok = dateParts(time.Date(2030, time.January, 2, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, []string{"02", "01", "2030"}, []string{d, m, y})

	for _, bad := range []interface{}{nil, "", "31/12/2024", "2024-13-01", "2024-02-30", "2024-12-31x", 20241231} {
		_, _, _, ok := dateParts(bad)
		assert.False(t, ok, "%v", bad)
	}
}

// ==========================
// Truthiness and text
// ==========================

func TestTruthy(t *testing.T) {
	for _, v := range []interface{}{true, "true", "Yes", " y ", "1", "on", 1, json.Number("2"), 0.5} {
		assert.True(t, truthy(v), "%v", v)
	}
	for _, v := range []interface{}{nil, false, "", "no", "false", "0", 0, json.Number("0"), []interface{}{}} {
		assert.False(t, truthy(v), "%v", v)
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, include("Acme"), text("Acme"))
	assert.Equal(t, include(""), text(nil))
	assert.Equal(t, include("42"), text(json.Number("42")))
	assert.Equal(t, include("7"), text(7))
	assert.False(t, text(map[string]interface{}{"a": 1}).ok)
	assert.False(t, text([]interface{}{"a"}).ok)
}

func TestToken(t *testing.T) {
	assert.Equal(t, "full_time", token("Full Time"))
	assert.Equal(t, "full_time", token("full-time"))
	assert.Equal(t, "", token(nil))
}

// ==========================
// Totals
// ==========================

func TestSum(t *testing.T) {
	items := []object{
		{"amount": json.Number("1000")},
		{"amount": nil},
		{"amount": ""},
		{"amount": "250.50"},
	}
	assert.Equal(t, include("1,250.50"), sum(items, "amount"))

	items = append(items, object{"amount": "n/a"})
	assert.False(t, sum(items, "amount").ok)

	assert.Equal(t, include("0.00"), sum(nil, "amount"))
}

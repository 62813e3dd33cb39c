package mapping

import (
	"strings"

	"loan-form-workers/internal/formfill/layout"
)

// companySection renders the first company borrower, its directors and its
// assets and liabilities.
func companySection(b *builder, r record) {
	companies := r.list("company_borrowers")
	if len(companies) == 0 {
		return
	}
	c := companies[0]

	b.put("company.name", 0, text(c["company_name"]))
	b.put("company.abn", 0, text(firstNonBlank(c["company_abn"], c["company_acn"])))
	b.put("company.industry_type", 0, text(c["industry_type"]))
	b.put("company.contact_number", 0, text(c["contact_number"]))
	b.put("company.annual_income", 0, currency(c["annual_company_income"]))
	b.put("company.trustee_name", 0, text(c["trustee_name"]))
	b.putYesNo("company.is_trustee", 0, c["is_trustee"])
	b.putYesNo("company.is_smsf_trustee", 0, c["is_smsf_trustee"])
	for _, part := range layout.AddressParts {
		b.put("company.address."+part, 0, text(c["registered_address_"+part]))
	}

	for k, d := range asList(c["directors"]) {
		b.put("director.name", k, text(d["name"]))

		digits := []rune(strings.TrimSpace(str(d["director_id"])))
		for i := 0; i < layout.DirectorIDWidth; i++ {
			cell := ""
			if i < len(digits) {
				cell = string(digits[i])
			}
			b.putCell("director.id", k, i, include(cell))
		}

		roles := roleSet(d["roles"])
		for _, role := range layout.DirectorRoles {
			b.put("director.role."+role, k, include(roles[role]))
		}
	}

	assets := asList(c["assets"])
	liabilities := asList(c["liabilities"])

	for k, p := range byCategory(assets, "asset_type", "property") {
		b.put("company.property.address", k, text(firstNonBlank(p["address"], p["description"])))
		b.put("company.property.value", k, currency(p["value"]))
		b.put("company.property.owing", k, currency(p["amount_owing"]))
		b.put("company.property.refinance", k, flag(p["to_be_refinanced"]))
	}

	for _, cat := range layout.Categories {
		item, ok := firstOfCategory(cat, assets, liabilities)
		if !ok {
			continue
		}
		prefix := "company." + cat.Name
		value, owing := categoryAmounts(cat, item)
		b.put(prefix+".value", 0, value)
		b.put(prefix+".owing", 0, owing)
		b.put(prefix+".refinance", 0, flag(item["to_be_refinanced"]))
	}

	b.put("company.total_assets", 0, sum(assets, "value"))
	b.put("company.total_liabilities", 0, sum(liabilities, "amount"))
}

// roleSet reads director roles given as a list or a delimited string.
func roleSet(v interface{}) map[string]bool {
	var raw []string
	switch t := v.(type) {
	case []interface{}:
		for _, it := range t {
			raw = append(raw, str(it))
		}
	case []string:
		raw = t
	case string:
		raw = strings.FieldsFunc(t, func(r rune) bool {
			return r == ',' || r == ';' || r == '|'
		})
	}

	roles := make(map[string]bool, len(raw))
	for _, s := range raw {
		if tok := token(s); tok != "" {
			roles[tok] = true
		}
	}
	return roles
}

// byCategory keeps the items whose typeKey matches one of names.
func byCategory(items []object, typeKey string, names ...string) []object {
	var out []object
	for _, it := range items {
		tok := token(it[typeKey])
		for _, n := range names {
			if tok == n {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// firstOfCategory finds the single item rendered in a category row.
func firstOfCategory(cat layout.Category, assets, liabilities []object) (object, bool) {
	items, key := assets, "asset_type"
	if cat.Liability {
		items, key = liabilities, "liability_type"
	}
	matched := byCategory(items, key, cat.Aliases...)
	if len(matched) == 0 {
		return nil, false
	}
	return matched[0], true
}

// categoryAmounts returns the value and owing cells of a category row.
// Liability rows show the outstanding amount in both.
func categoryAmounts(cat layout.Category, item object) (slot, slot) {
	if cat.Liability {
		amount := currency(item["amount"])
		return amount, amount
	}
	return currency(item["value"]), currency(item["amount_owing"])
}

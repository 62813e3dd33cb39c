package mapping

import (
	"strings"

	"loan-form-workers/internal/formfill/layout"
)

func solvencySection(b *builder, r record) {
	for _, f := range layout.SolvencyFlags {
		b.putYesNo("solvency."+f, 0, r.scalar(f))
	}
}

// individuals picks the people rendered in the two individual blocks:
// borrowers first, then guarantors, in input order. Company borrowers and
// company guarantors are skipped.
func individuals(r record) []object {
	var out []object
	for _, p := range r.list("borrowers") {
		if !truthy(p["is_company"]) {
			out = append(out, p)
		}
	}
	for _, g := range r.list("guarantors") {
		switch token(g["guarantor_type"]) {
		case "", "individual":
			out = append(out, g)
		}
	}
	return out
}

func individualSection(b *builder, r record) {
	for k, p := range individuals(r) {
		if k >= layout.MaxIndividuals {
			break
		}
		b.put("individual.title", k, text(p["title"]))
		b.put("individual.first_name", k, text(p["first_name"]))
		b.put("individual.last_name", k, text(p["last_name"]))
		b.putDate("individual.dob", k, p["date_of_birth"])
		b.put("individual.drivers_licence_no", k, text(p["drivers_licence_no"]))
		b.put("individual.home_phone", k, text(p["home_phone"]))
		b.put("individual.mobile", k, text(p["mobile"]))
		b.put("individual.email", k, text(p["email"]))
		for _, part := range layout.AddressParts {
			b.put("individual.address."+part, k, text(p["address_"+part]))
		}
		b.put("individual.occupation", k, text(p["occupation"]))
		b.put("individual.employer_name", k, text(p["employer_name"]))
		b.put("individual.annual_income", k, currency(p["annual_income"]))

		employment := token(p["employment_type"])
		if employment == "contractor" {
			employment = "contract"
		}
		for _, e := range layout.EmploymentTypes {
			b.put("individual.employment."+e, k, include(employment == e))
		}
	}
}

// individualAssetSection pools the assets and liabilities of every borrower
// and guarantor. Each row is tagged BG1 or BG2.
func individualAssetSection(b *builder, r record) {
	var assets, liabilities []object
	for _, key := range []string{"borrowers", "guarantors"} {
		for _, p := range r.list(key) {
			assets = append(assets, asList(p["assets"])...)
			liabilities = append(liabilities, asList(p["liabilities"])...)
		}
	}
	if len(assets) == 0 && len(liabilities) == 0 {
		return
	}

	putTag := func(prefix string, k int, item object) {
		tag := bgTag(item)
		b.put(prefix+".bg1", k, include(tag == "BG1"))
		b.put(prefix+".bg2", k, include(tag == "BG2"))
	}

	for k, p := range byCategory(assets, "asset_type", "property") {
		b.put("individual_assets.property.address", k, text(firstNonBlank(p["address"], p["description"])))
		b.put("individual_assets.property.value", k, currency(p["value"]))
		b.put("individual_assets.property.owing", k, currency(p["amount_owing"]))
		putTag("individual_assets.property", k, p)
	}

	for _, cat := range layout.Categories {
		item, ok := firstOfCategory(cat, assets, liabilities)
		if !ok {
			continue
		}
		prefix := "individual_assets." + cat.Name
		value, owing := categoryAmounts(cat, item)
		b.put(prefix+".value", 0, value)
		b.put(prefix+".owing", 0, owing)
		putTag(prefix, 0, item)
	}

	b.put("individual_assets.total_assets", 0, sum(assets, "value"))
	b.put("individual_assets.total_liabilities", 0, sum(liabilities, "amount"))
}

// bgTag defaults to BG1.
func bgTag(item object) string {
	tag := strings.ToUpper(strings.TrimSpace(str(item["bg_type"])))
	if tag == "" {
		return "BG1"
	}
	return tag
}

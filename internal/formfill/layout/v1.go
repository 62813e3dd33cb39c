package layout

// DirectorIDWidth is the number of digit boxes per director id.
const DirectorIDWidth = 12

// Category is an asset or liability class that owns a fixed row in the
// asset and liability sections.
type Category struct {
	Name      string
	Aliases   []string
	Liability bool
}

var (
	AddressParts    = []string{"unit", "street_no", "street_name", "suburb", "state", "postcode"}
	DirectorRoles   = []string{"director", "secretary", "public_officer"}
	EmploymentTypes = []string{"full_time", "part_time", "casual", "contract"}
	PropertyTypes   = []string{"residential", "commercial", "rural", "industrial", "land", "other"}
	Occupancies     = []string{"owner_occupied", "investment"}
	LoanPurposes    = []string{
		"purchase", "seed_capital", "settlement_shortfall", "equity_venture", "cash_out",
		"refinance", "construction", "payout_existing_debt", "other",
	}
	ExitStrategies = []string{"refinance", "sale_of_security", "cash_flow", "other"}
	SolvencyFlags  = []string{
		"has_pending_litigation",
		"has_unsatisfied_judgements",
		"has_been_bankrupt",
		"has_been_refused_credit",
		"has_outstanding_ato_debt",
		"has_outstanding_tax_returns",
		"has_payment_arrangements",
	}

	// Categories is in template row order.
	Categories = []Category{
		{Name: "vehicle", Aliases: []string{"vehicle", "motor_vehicle"}},
		{Name: "savings", Aliases: []string{"savings", "cash"}},
		{Name: "investment_shares", Aliases: []string{"investment_shares", "shares"}},
		{Name: "credit_card", Aliases: []string{"credit_card"}, Liability: true},
		{Name: "other_creditor", Aliases: []string{"other_creditor"}, Liability: true},
		{Name: "other", Aliases: []string{"other"}},
	}
)

// Row capacities of the v1 template.
const (
	MaxDirectors          = 2
	MaxIndividuals        = 2
	MaxSecurityProperties = 3
	MaxLoanRequirements   = 6
)

const (
	individualBase   = 106
	individualStride = 23
	securityBase     = 198
	securityStride   = 33
)

// V1 is the layout of the loan application template in production.
var V1 = MustTable("v1", v1Rows()...)

func text(field string, n int) Row {
	return Row{Field: field, Kind: Text, Base: n}
}

func check(field string, n int) Row {
	return Row{Field: field, Kind: Checkbox, Base: n}
}

func v1Rows() []Row {
	var rows []Row
	add := func(r ...Row) { rows = append(rows, r...) }

	// Company borrower. Only the first company is rendered.
	add(
		text("company.name", 1),
		text("company.abn", 2),
		text("company.industry_type", 3),
		text("company.contact_number", 4),
		text("company.annual_income", 5),
		text("company.trustee_name", 6),
		check("company.is_trustee.yes", 20),
		check("company.is_trustee.no", 21),
		check("company.is_smsf_trustee.yes", 22),
		check("company.is_smsf_trustee.no", 23),
	)
	for i, part := range AddressParts {
		add(text("company.address."+part, 43+i))
	}

	add(
		Row{Field: "director.name", Kind: Text, Base: 7, Stride: 23, Capacity: MaxDirectors},
		Row{Field: "director.id", Kind: Text, Base: 8, Stride: 23, Capacity: MaxDirectors, Width: DirectorIDWidth},
	)
	for i, role := range DirectorRoles {
		add(Row{Field: "director.role." + role, Kind: Checkbox, Base: 24 + i, Stride: len(DirectorRoles), Capacity: MaxDirectors})
	}

	// Company property rows are numbered irregularly in the template.
	add(
		Row{Field: "company.property.address", Kind: Text, Anchors: []int{49, 53, 59, 62}},
		Row{Field: "company.property.value", Kind: Text, Anchors: []int{50, 54, 60, 63}},
		Row{Field: "company.property.owing", Kind: Text, Anchors: []int{51, 55, 61, 64}},
		Row{Field: "company.property.refinance", Kind: Checkbox, Anchors: []int{52, 53, 54, 55}},
	)
	for i, c := range Categories {
		add(
			text("company."+c.Name+".value", 65+2*i),
			text("company."+c.Name+".owing", 66+2*i),
			check("company."+c.Name+".refinance", 86+i),
		)
	}
	add(
		text("company.total_assets", 77),
		text("company.total_liabilities", 78),
	)

	for i, flag := range SolvencyFlags {
		add(
			check("solvency."+flag+".yes", 92+2*i),
			check("solvency."+flag+".no", 93+2*i),
		)
	}

	// Individual borrowers and guarantors.
	ind := func(kind Kind, field string, off int) Row {
		return Row{Field: "individual." + field, Kind: kind, Base: individualBase + off, Stride: individualStride, Capacity: MaxIndividuals}
	}
	add(
		ind(Text, "title", 0),
		ind(Text, "first_name", 1),
		ind(Text, "last_name", 2),
		ind(Text, "dob.day", 3),
		ind(Text, "dob.month", 4),
		ind(Text, "dob.year", 5),
		ind(Text, "drivers_licence_no", 6),
		ind(Text, "home_phone", 7),
		ind(Text, "mobile", 8),
		ind(Text, "email", 9),
	)
	for i, part := range AddressParts {
		add(ind(Text, "address."+part, 10+i))
	}
	add(
		ind(Text, "occupation", 16),
		ind(Text, "employer_name", 17),
		ind(Text, "annual_income", 22),
	)
	for i, e := range EmploymentTypes {
		add(ind(Checkbox, "employment."+e, 18+i))
	}

	// Assets and liabilities pooled over every individual.
	add(
		Row{Field: "individual_assets.property.address", Kind: Text, Anchors: []int{152, 157, 160, 163}},
		Row{Field: "individual_assets.property.value", Kind: Text, Anchors: []int{153, 158, 161, 164}},
		Row{Field: "individual_assets.property.owing", Kind: Text, Anchors: []int{154, 159, 162, 165}},
		Row{Field: "individual_assets.property.bg1", Kind: Checkbox, Anchors: []int{155, 180, 182, 184}},
		Row{Field: "individual_assets.property.bg2", Kind: Checkbox, Anchors: []int{156, 181, 183, 185}},
	)
	for i, c := range Categories {
		add(
			text("individual_assets."+c.Name+".value", 166+2*i),
			text("individual_assets."+c.Name+".owing", 167+2*i),
			check("individual_assets."+c.Name+".bg1", 186+2*i),
			check("individual_assets."+c.Name+".bg2", 187+2*i),
		)
	}
	add(
		text("individual_assets.total_assets", 178),
		text("individual_assets.total_liabilities", 179),
	)

	sec := func(kind Kind, field string, off int) Row {
		return Row{Field: "security." + field, Kind: kind, Base: securityBase + off, Stride: securityStride, Capacity: MaxSecurityProperties}
	}
	for i, part := range AddressParts {
		add(sec(Text, "address."+part, i))
	}
	add(
		sec(Text, "first_mortgage", 6),
		sec(Text, "second_mortgage", 7),
		sec(Text, "first_mortgage_debt", 8),
		sec(Text, "second_mortgage_debt", 9),
		sec(Checkbox, "estimated_value_basis", 10),
		sec(Checkbox, "purchase_price_basis", 11),
		sec(Text, "estimated_value", 12),
		sec(Text, "purchase_price", 13),
	)
	for i, t := range PropertyTypes {
		add(sec(Checkbox, "type."+t, 14+i))
	}
	add(
		sec(Text, "type_description", 20),
		sec(Text, "bedrooms", 21),
		sec(Text, "bathrooms", 22),
		sec(Text, "car_spaces", 23),
		sec(Text, "building_size", 24),
		sec(Text, "land_size", 25),
		sec(Checkbox, "single_story", 26),
		sec(Checkbox, "double_story", 27),
		sec(Checkbox, "garage", 28),
		sec(Checkbox, "carport", 29),
		sec(Checkbox, "off_street_parking", 30),
	)
	for i, o := range Occupancies {
		add(sec(Checkbox, "occupancy."+o, 31+i))
	}

	add(
		text("loan.amount", 297),
		text("loan.term", 298),
		text("loan.settlement.day", 299),
		text("loan.settlement.month", 300),
		text("loan.settlement.year", 301),
		text("loan.interest_rate", 302),
		text("loan.additional_comments", 312),
		check("loan.other_credit_providers.yes", 313),
		check("loan.other_credit_providers.no", 314),
		text("loan.other_credit_providers_details", 315),
	)
	for i, p := range LoanPurposes {
		add(check("loan.purpose."+p, 303+i))
	}

	add(
		Row{Field: "requirement.description", Kind: Text, Base: 316, Stride: 2, Capacity: MaxLoanRequirements},
		Row{Field: "requirement.amount", Kind: Text, Base: 317, Stride: 2, Capacity: MaxLoanRequirements},
		text("requirement.total", 328),
	)

	for i, s := range ExitStrategies {
		add(check("exit."+s, 329+i))
	}
	add(text("exit.details", 333))

	return rows
}

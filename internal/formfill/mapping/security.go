package mapping

import (
	"loan-form-workers/internal/formfill/layout"
)

func securitySection(b *builder, r record) {
	for k, p := range r.list("security_properties") {
		if k >= layout.MaxSecurityProperties {
			break
		}
		for _, part := range layout.AddressParts {
			b.put("security.address."+part, k, text(p["address_"+part]))
		}
		b.put("security.first_mortgage", k, currency(p["first_mortgage"]))
		b.put("security.second_mortgage", k, currency(p["second_mortgage"]))
		b.put("security.first_mortgage_debt", k, currency(p["first_mortgage_debt"]))
		b.put("security.second_mortgage_debt", k, currency(p["second_mortgage_debt"]))

		// Both valuation bases are always declared.
		b.put("security.estimated_value_basis", k, include(true))
		b.put("security.purchase_price_basis", k, include(true))
		b.put("security.estimated_value", k, currency(p["estimated_value"]))
		b.put("security.purchase_price", k, currency(p["purchase_price"]))

		propertyType := token(p["property_type"])
		for _, t := range layout.PropertyTypes {
			b.put("security.type."+t, k, include(propertyType == t))
		}
		if propertyType == "other" {
			b.put("security.type_description", k, text(p["description_if_applicable"]))
		} else {
			b.put("security.type_description", k, include(""))
		}

		b.put("security.bedrooms", k, numeric(p["bedrooms"]))
		b.put("security.bathrooms", k, numeric(p["bathrooms"]))
		b.put("security.car_spaces", k, numeric(p["car_spaces"]))
		b.put("security.building_size", k, currency(p["building_size"]))
		b.put("security.land_size", k, currency(p["land_size"]))

		single := truthy(p["is_single_story"])
		b.put("security.single_story", k, include(single))
		b.put("security.double_story", k, include(!single))
		b.put("security.garage", k, flag(p["has_garage"]))
		b.put("security.carport", k, flag(p["has_carport"]))
		b.put("security.off_street_parking", k, flag(p["has_off_street_parking"]))

		occupancy := token(p["occupancy"])
		for _, o := range layout.Occupancies {
			b.put("security.occupancy."+o, k, include(occupancy == o))
		}
	}
}

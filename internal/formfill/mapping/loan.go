package mapping

import (
	"loan-form-workers/internal/formfill/layout"
)

func loanSection(b *builder, r record) {
	b.put("loan.amount", 0, currency(r.scalar("loan_amount")))
	b.put("loan.term", 0, numeric(r.scalar("loan_term")))
	b.putDate("loan.settlement", 0, r.scalar("estimated_settlement_date"))
	b.put("loan.interest_rate", 0, numeric(r.scalar("interest_rate")))

	purpose := token(r.scalar("loan_purpose"))
	for _, p := range layout.LoanPurposes {
		b.put("loan.purpose."+p, 0, include(purpose == p))
	}

	b.put("loan.additional_comments", 0, text(r.scalar("additional_comments")))
	b.putYesNo("loan.other_credit_providers", 0, r.scalar("has_other_credit_providers"))
	b.put("loan.other_credit_providers_details", 0, text(r.scalar("other_credit_providers_details")))
}

// requirementSection itemizes up to six requirements; the total covers all
// of them.
func requirementSection(b *builder, r record) {
	reqs := r.list("loan_requirements")
	if len(reqs) == 0 {
		return
	}
	for k, q := range reqs {
		b.put("requirement.description", k, text(q["description"]))
		b.put("requirement.amount", k, currency(q["amount"]))
	}
	b.put("requirement.total", 0, sum(reqs, "amount"))
}

func exitSection(b *builder, r record) {
	strategy := token(r.scalar("exit_strategy"))
	for _, s := range layout.ExitStrategies {
		b.put("exit."+s, 0, include(strategy == s))
	}
	b.put("exit.details", 0, text(r.scalar("exit_strategy_details")))
}

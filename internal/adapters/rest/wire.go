package rest

import (
	"strings"

	"mifi/internal/budget"
	"mifi/internal/core"
)

// wireTransaction is the backend's transaction entity. It names the bank
// "account".
type wireTransaction struct {
	core.RawTransaction
	Account core.FlexString `json:"account"`
}

func (w wireTransaction) raw() core.RawTransaction {
	r := w.RawTransaction
	if strings.TrimSpace(string(r.Bank)) == "" {
		r.Bank = w.Account
	}
	return r
}

type wireCategory struct {
	ID          core.FlexString `json:"id"`
	Name        core.FlexString `json:"name"`
	Description core.FlexString `json:"description"`
}

// wireEnvelope accepts the flat {categoryId, limit} form and the entity
// form with a nested category.
type wireEnvelope struct {
	CategoryID core.FlexString `json:"categoryId"`
	Category   *wireCategory   `json:"category"`
	Limit      core.FlexAmount `json:"limit"`
}

type wireBudget struct {
	Title         string                 `json:"title"`
	Type          string                 `json:"type"`
	Start         string                 `json:"start"`
	End           string                 `json:"end"`
	PeriodStart   string                 `json:"periodStart"`
	PeriodEnd     string                 `json:"periodEnd"`
	Incomes       []budget.PayloadIncome `json:"incomes"`
	FixedExpenses []budget.FixedExpense  `json:"fixedExpenses"`
	Envelopes     []wireEnvelope         `json:"envelopes"`
}

func (w wireBudget) empty() bool {
	return w.Title == "" && w.Type == "" && len(w.Incomes) == 0 && len(w.FixedExpenses) == 0 && len(w.Envelopes) == 0
}

func (w wireBudget) payload() budget.Payload {
	p := budget.Payload{
		Title:         w.Title,
		Type:          w.Type,
		Start:         firstNonEmpty(w.Start, w.PeriodStart),
		End:           firstNonEmpty(w.End, w.PeriodEnd),
		Incomes:       w.Incomes,
		FixedExpenses: w.FixedExpenses,
	}
	for _, e := range w.Envelopes {
		id := string(e.CategoryID)
		if id == "" && e.Category != nil {
			id = string(e.Category.ID)
		}
		p.Envelopes = append(p.Envelopes, budget.PayloadEnvelope{CategoryID: id, Limit: e.Limit.Money()})
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

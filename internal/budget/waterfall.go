package budget

import (
	"fmt"
	"strings"

	"mifi/internal/core"
)

// FixedPolicy decides which transfers count toward the fixed expenses that
// are subtracted from income before the "Pozostałe" pool is formed.
type FixedPolicy string

const (
	// FixedAllTransfers subtracts every transfer, budgetable ones included.
	FixedAllTransfers FixedPolicy = "all"
	// FixedNonBudgetableOnly subtracts only transfers that do not open a pool.
	FixedNonBudgetableOnly FixedPolicy = "non_budgetable"
)

// ParseFixedPolicy accepts "all" and "non_budgetable"; empty means all.
func ParseFixedPolicy(s string) (FixedPolicy, error) {
	switch p := FixedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FixedAllTransfers, nil
	case FixedAllTransfers, FixedNonBudgetableOnly:
		return p, nil
	default:
		return "", fmt.Errorf("unknown fixed expense policy %q", s)
	}
}

func (p FixedPolicy) counts(t Transfer) bool {
	if p == FixedNonBudgetableOnly {
		return !t.Budgetable
	}
	return true
}

type (
	// Pool is money available to envelopes. Used and Remaining are only
	// filled for envelope sources.
	Pool struct {
		Name      string     `json:"name"`
		Amount    core.Money `json:"amount"`
		Used      core.Money `json:"used"`
		Remaining core.Money `json:"remaining"`
	}

	EnvelopeView struct {
		Envelope
		Budgeted  core.Money `json:"budgeted"`
		Remaining core.Money `json:"remaining"`
		// OverAllocated is set when the splits exceed the limit. It is a
		// warning, not an error.
		OverAllocated bool `json:"overAllocated"`
	}

	// Waterfall is the derived view of a Month. Every figure is recomputed
	// from the inputs; nothing is carried over between edits.
	Waterfall struct {
		Month                   core.MonthKey  `json:"month"`
		Policy                  FixedPolicy    `json:"policy"`
		TotalIncome             core.Money     `json:"totalIncome"`
		TotalFixed              core.Money     `json:"totalFixedExpenses"`
		RemainingAfterTransfers core.Money     `json:"remainingAfterTransfers"`
		Pools                   []Pool         `json:"pools"`
		TotalBudgetable         core.Money     `json:"totalBudgetable"`
		Sources                 []Pool         `json:"sources"`
		Envelopes               []EnvelopeView `json:"envelopes"`
		TotalBudgeted           core.Money     `json:"totalBudgeted"`
	}
)

// ComputeWaterfall derives every layer of the allocation from m.
//
// Pools are the budgetable transfers in their original order followed by
// the synthetic "Pozostałe" pool holding what is left after transfers. A
// budgetable transfer named "Pozostałe" is shadowed by the synthetic pool.
// Remaining balances may be negative.
func ComputeWaterfall(m Month, policy FixedPolicy) Waterfall {
	if policy == "" {
		policy = FixedAllTransfers
	}
	w := Waterfall{Month: m.Key, Policy: policy}

	for _, in := range m.Incomes {
		w.TotalIncome = w.TotalIncome.Add(in.Amount)
	}
	for _, t := range m.Transfers {
		if policy.counts(t) {
			w.TotalFixed = w.TotalFixed.Add(t.Amount)
		}
	}
	w.RemainingAfterTransfers = w.TotalIncome.Sub(w.TotalFixed)

	poolIdx := make(map[string]int)
	for _, t := range m.Transfers {
		if !t.Budgetable || t.Name == PoolRemaining {
			continue
		}
		if i, ok := poolIdx[t.Name]; ok {
			w.Pools[i].Amount = w.Pools[i].Amount.Add(t.Amount)
			continue
		}
		poolIdx[t.Name] = len(w.Pools)
		w.Pools = append(w.Pools, Pool{Name: t.Name, Amount: t.Amount})
	}
	poolIdx[PoolRemaining] = len(w.Pools)
	w.Pools = append(w.Pools, Pool{Name: PoolRemaining, Amount: w.RemainingAfterTransfers})
	for _, p := range w.Pools {
		w.TotalBudgetable = w.TotalBudgetable.Add(p.Amount)
	}

	used := make(map[string]core.Money, 3)
	w.Envelopes = make([]EnvelopeView, 0, len(m.Envelopes))
	for _, e := range m.Envelopes {
		e.Splits = append([]Split(nil), e.Splits...)
		used[e.Source] = used[e.Source].Add(e.Limit)
		w.TotalBudgeted = w.TotalBudgeted.Add(e.Limit)

		budgeted := e.Budgeted()
		w.Envelopes = append(w.Envelopes, EnvelopeView{
			Envelope:      e,
			Budgeted:      budgeted,
			Remaining:     e.Limit.Sub(budgeted),
			OverAllocated: budgeted.Cents > e.Limit.Cents,
		})
	}

	for _, name := range Sources() {
		var amount core.Money
		if i, ok := poolIdx[name]; ok {
			amount = w.Pools[i].Amount
		}
		w.Sources = append(w.Sources, Pool{
			Name:      name,
			Amount:    amount,
			Used:      used[name],
			Remaining: amount.Sub(used[name]),
		})
	}
	return w
}

// Source returns the envelope source with the given name.
func (w Waterfall) Source(name string) (Pool, bool) {
	for _, p := range w.Sources {
		if p.Name == name {
			return p, true
		}
	}
	return Pool{}, false
}

// Pool returns the pool with the given name.
func (w Waterfall) Pool(name string) (Pool, bool) {
	for _, p := range w.Pools {
		if p.Name == name {
			return p, true
		}
	}
	return Pool{}, false
}

// OverAllocated returns the envelopes whose splits exceed their limit.
func (w Waterfall) OverAllocated() []EnvelopeView {
	var out []EnvelopeView
	for _, e := range w.Envelopes {
		if e.OverAllocated {
			out = append(out, e)
		}
	}
	return out
}

package budget

import (
	"errors"
	"testing"
	"time"

	"mifi/internal/core"
)

var march = core.MonthKey{Year: 2025, Month: time.March}

func zl(units int64) core.Money { return core.NewMoney(units, 0) }

func TestComputeWaterfall_RemainingPool(t *testing.T) {
	m := Month{
		Key:       march,
		Incomes:   []Income{{Source: "Salary", Amount: zl(7000)}},
		Transfers: []Transfer{{Name: "Hipoteka", Amount: zl(2800)}},
		Envelopes: []Envelope{{Name: "GROCERIES", Source: PoolRemaining, Limit: zl(1000)}},
	}
	w := ComputeWaterfall(m, FixedAllTransfers)

	if w.TotalIncome != zl(7000) {
		t.Errorf("total income = %s", w.TotalIncome)
	}
	if w.RemainingAfterTransfers != zl(4200) {
		t.Errorf("remaining after transfers = %s, want 4200.00", w.RemainingAfterTransfers)
	}
	pool, ok := w.Pool(PoolRemaining)
	if !ok || pool.Amount != zl(4200) {
		t.Fatalf("Pozostałe pool = %+v, %v", pool, ok)
	}
	src, _ := w.Source(PoolRemaining)
	if src.Used != zl(1000) || src.Remaining != zl(3200) {
		t.Errorf("Pozostałe source = %+v, want used 1000 remaining 3200", src)
	}
	life, ok := w.Source(PoolLife)
	if !ok || !life.Amount.IsZero() || !life.Remaining.IsZero() {
		t.Errorf("Życie without a transfer should be an empty pool, got %+v", life)
	}
}

func TestComputeWaterfall_FixedPolicy(t *testing.T) {
	m := Month{
		Key:     march,
		Incomes: []Income{{Source: "Salary", Amount: zl(7000)}},
		Transfers: []Transfer{
			{Name: "Rent", Amount: zl(2000)},
			{Name: PoolLife, Amount: zl(3000), Budgetable: true},
		},
	}
	tests := []struct {
		policy    FixedPolicy
		fixed     core.Money
		remaining core.Money
	}{
		{FixedAllTransfers, zl(5000), zl(2000)},
		{FixedNonBudgetableOnly, zl(2000), zl(5000)},
		{"", zl(5000), zl(2000)},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			w := ComputeWaterfall(m, tt.policy)
			if w.TotalFixed != tt.fixed || w.RemainingAfterTransfers != tt.remaining {
				t.Fatalf("fixed=%s remaining=%s, want %s %s", w.TotalFixed, w.RemainingAfterTransfers, tt.fixed, tt.remaining)
			}
			if w.TotalBudgetable != zl(3000).Add(tt.remaining) {
				t.Errorf("total budgetable = %s", w.TotalBudgetable)
			}
		})
	}
}

func TestComputeWaterfall_NegativeBalancesAreReported(t *testing.T) {
	m := Month{
		Key:       march,
		Incomes:   []Income{{Source: "Salary", Amount: zl(1000)}},
		Transfers: []Transfer{{Name: PoolLife, Amount: zl(500), Budgetable: true}},
		Envelopes: []Envelope{
			{Name: "GROCERIES", Source: PoolLife, Limit: zl(400), Splits: []Split{{Name: "Lidl", Amount: zl(300)}, {Name: "Biedronka", Amount: zl(200)}}},
			{Name: "FUEL", Source: PoolLife, Limit: zl(300)},
		},
	}
	w := ComputeWaterfall(m, FixedAllTransfers)

	life, _ := w.Source(PoolLife)
	if life.Remaining != zl(-200) {
		t.Errorf("Życie remaining = %s, want -200.00", life.Remaining)
	}
	g := w.Envelopes[0]
	if g.Budgeted != zl(500) || g.Remaining != zl(-100) || !g.OverAllocated {
		t.Errorf("GROCERIES view = %+v", g)
	}
	if over := w.OverAllocated(); len(over) != 1 || over[0].Name != "GROCERIES" {
		t.Errorf("OverAllocated = %+v", over)
	}
	if w.TotalBudgeted != zl(700) {
		t.Errorf("total budgeted = %s", w.TotalBudgeted)
	}
}

func TestComputeWaterfall_ConsistentAfterEverySetter(t *testing.T) {
	m := DefaultTemplate(march, nil)
	steps := []func(Month) (Month, error){
		func(m Month) (Month, error) { return SetIncome(m, DefaultIncomeSource, zl(8000)) },
		func(m Month) (Month, error) { return SetIncome(m, "Bonus", zl(500)) },
		func(m Month) (Month, error) { return SetTransferAmount(m, "Opłaty", zl(1200)) },
		func(m Month) (Month, error) { return SetTransferBudgetable(m, "Oszczędzanie", true) },
		func(m Month) (Month, error) { return AddTransfer(m, Transfer{Name: "Gym", Amount: zl(150)}) },
		func(m Month) (Month, error) { return SetEnvelopeLimit(m, "GROCERIES", zl(1500)) },
		func(m Month) (Month, error) { return SetEnvelopeSource(m, "FUEL", PoolIrregular) },
		func(m Month) (Month, error) { return SetEnvelopeLimit(m, "FUEL", zl(400)) },
		func(m Month) (Month, error) { return AddSplit(m, "GROCERIES", Split{Name: "Lidl", Amount: zl(900)}) },
		func(m Month) (Month, error) {
			return SetSplit(m, "GROCERIES", 0, Split{Name: "Lidl", Amount: zl(1000)})
		},
		func(m Month) (Month, error) { return RemoveTransfer(m, "Gym") },
		func(m Month) (Month, error) { return RemoveIncome(m, "Bonus") },
	}
	for i, step := range steps {
		next, err := step(m)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		got := ComputeWaterfall(next, FixedAllTransfers)
		assertConsistent(t, next, got)
		m = next
	}
}

// assertConsistent recomputes every figure by hand.
func assertConsistent(t *testing.T, m Month, w Waterfall) {
	t.Helper()
	var income, fixed core.Money
	for _, in := range m.Incomes {
		income = income.Add(in.Amount)
	}
	for _, tr := range m.Transfers {
		fixed = fixed.Add(tr.Amount)
	}
	if w.TotalIncome != income || w.RemainingAfterTransfers != income.Sub(fixed) {
		t.Fatalf("income %s / remaining %s drifted", w.TotalIncome, w.RemainingAfterTransfers)
	}
	for _, src := range w.Sources {
		var used core.Money
		for _, e := range m.Envelopes {
			if e.Source == src.Name {
				used = used.Add(e.Limit)
			}
		}
		if src.Used != used || src.Remaining != src.Amount.Sub(used) {
			t.Fatalf("source %s = %+v, want used %s", src.Name, src, used)
		}
	}
	for i, e := range m.Envelopes {
		if w.Envelopes[i].Remaining != e.Limit.Sub(e.Budgeted()) {
			t.Fatalf("envelope %s remaining drifted", e.Name)
		}
	}
}

func TestSetters_DoNotMutateInput(t *testing.T) {
	orig := DefaultTemplate(march, nil)
	before := ComputeWaterfall(orig, FixedAllTransfers)

	if _, err := SetEnvelopeLimit(orig, "GROCERIES", zl(999)); err != nil {
		t.Fatal(err)
	}
	if _, err := AddSplit(orig, "GROCERIES", Split{Name: "x", Amount: zl(1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := SetTransferAmount(orig, "Opłaty", zl(1)); err != nil {
		t.Fatal(err)
	}

	after := ComputeWaterfall(orig, FixedAllTransfers)
	if before.TotalBudgeted != after.TotalBudgeted || before.TotalFixed != after.TotalFixed {
		t.Fatal("input month was modified by a setter")
	}
	if e, _ := orig.Envelope("GROCERIES"); len(e.Splits) != 0 {
		t.Fatal("splits leaked into the input month")
	}
}

func TestSetters_Errors(t *testing.T) {
	m := DefaultTemplate(march, nil)
	tests := []struct {
		name string
		run  func() (Month, error)
		want error
	}{
		{"negative income", func() (Month, error) { return SetIncome(m, "x", zl(-1)) }, ErrNegativeAmount},
		{"blank income", func() (Month, error) { return SetIncome(m, " ", zl(1)) }, ErrEmptyName},
		{"unknown transfer", func() (Month, error) { return SetTransferAmount(m, "nope", zl(1)) }, ErrNotFound},
		{"duplicate transfer", func() (Month, error) { return AddTransfer(m, Transfer{Name: "spotify"}) }, ErrDuplicate},
		{"unknown source", func() (Month, error) { return SetEnvelopeSource(m, "FUEL", "Wakacje") }, ErrUnknownSource},
		{"negative limit", func() (Month, error) { return SetEnvelopeLimit(m, "FUEL", zl(-5)) }, ErrNegativeAmount},
		{"split out of range", func() (Month, error) { return SetSplit(m, "FUEL", 3, Split{Name: "a"}) }, ErrNotFound},
		{"remove missing split", func() (Month, error) { return RemoveSplit(m, "FUEL", 0) }, ErrNotFound},
		{"envelope source", func() (Month, error) { return AddEnvelope(m, Envelope{Name: "PETS", Source: "x"}) }, ErrUnknownSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if len(got.Transfers) != len(m.Transfers) || len(got.Envelopes) != len(m.Envelopes) {
				t.Fatal("failed setter must return the unchanged month")
			}
		})
	}
}

func TestParseFixedPolicy(t *testing.T) {
	for in, want := range map[string]FixedPolicy{"": FixedAllTransfers, "ALL": FixedAllTransfers, "non_budgetable": FixedNonBudgetableOnly} {
		got, err := ParseFixedPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseFixedPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFixedPolicy("some"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestDefaultTemplate(t *testing.T) {
	m := DefaultTemplate(march, nil)
	w := ComputeWaterfall(m, FixedAllTransfers)

	// 7000 - (2800+1400+1000+1500+4500+2000+180+250+315+31)
	if w.RemainingAfterTransfers != zl(-6976) {
		t.Errorf("remaining after transfers = %s", w.RemainingAfterTransfers)
	}
	if len(w.Pools) != 4 {
		t.Fatalf("pools = %+v", w.Pools)
	}
	if len(m.Envelopes) != 18 {
		t.Errorf("envelopes = %d, want one per default category", len(m.Envelopes))
	}

	empty := Empty(march, nil)
	if ComputeWaterfall(empty, FixedAllTransfers).TotalIncome.Cents != 0 {
		t.Error("empty month should have no income")
	}
	if len(empty.Transfers) != len(m.Transfers) {
		t.Error("empty month keeps the transfer structure")
	}
}

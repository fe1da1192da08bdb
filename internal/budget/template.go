package budget

import (
	"mifi/internal/categories"
	"mifi/internal/core"
)

// DefaultIncomeSource names the single income of the built-in template.
const DefaultIncomeSource = "Przychód - pensja"

func pln(units int64) core.Money { return core.NewMoney(units, 0) }

var defaultTransfers = []Transfer{
	{Name: "Hipoteka (opłaty)", Description: "Rata kredytu hipotecznego", Bank: "PKO SA", Amount: pln(2800)},
	{Name: "Opłaty", Description: "Media, czynsz, internet", Bank: "Santander", Amount: pln(1400)},
	{Name: "Oszczędzanie", Description: "Wpłacone na dobry zysk", Bank: "PKO SA", Amount: pln(1000)},
	{Name: PoolIrregular, Description: "Nieprzewidziane wydatki", Bank: "PKO SA", Amount: pln(1500), Budgetable: true},
	{Name: PoolLife, Description: "Codzienne wydatki", Bank: "mbank", Amount: pln(4500), Budgetable: true},
	{Name: "Wypłata dla nas", Description: "Kieszonkowe, wydatki osobiste", Bank: "Pko bp/santander tomek", Amount: pln(2000), Budgetable: true},
	{Name: "AI", Description: "Subskrypcje AI, automatyzacja", Bank: "Automat", Amount: pln(180)},
	{Name: "Iphone", Description: "Rata za telefon", Bank: "CA apka", Amount: pln(250)},
	{Name: "Lodówka + pralka", Description: "Raty za sprzęt AGD", Bank: "Alior bank apka", Amount: pln(315)},
	{Name: "Spotify", Description: "Subskrypcja muzyki", Bank: "mbank automat", Amount: pln(31)},
}

// DefaultTemplate is the plan used when the budget source has no template
// of its own: one salary, the usual transfers and an empty envelope for
// every category, all drawing from "Życie".
func DefaultTemplate(key core.MonthKey, dir *categories.Directory) Month {
	if dir == nil {
		dir = categories.Default()
	}
	m := Month{
		Key:       key,
		Incomes:   []Income{{Source: DefaultIncomeSource, Amount: pln(7000)}},
		Transfers: append([]Transfer(nil), defaultTransfers...),
	}
	for _, c := range dir.All() {
		m.Envelopes = append(m.Envelopes, Envelope{CategoryID: c.ID, Name: c.Name, Source: PoolLife})
	}
	return m
}

// Empty is the template structure with every amount set to zero, for users
// who decline to start from a template.
func Empty(key core.MonthKey, dir *categories.Directory) Month {
	m := DefaultTemplate(key, dir)
	for i := range m.Incomes {
		m.Incomes[i].Amount = core.Money{}
	}
	for i := range m.Transfers {
		m.Transfers[i].Amount = core.Money{}
	}
	return m
}

// DefaultTemplatePayload is DefaultTemplate in stored form.
func DefaultTemplatePayload(dir *categories.Directory) Payload {
	p, _ := BuildPayload(DefaultTemplate(core.MonthKey{}, dir), dir)
	p = p.AsTemplate()
	p.Title = "Default Budget"
	return p
}

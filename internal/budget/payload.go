package budget

import (
	"fmt"
	"strings"

	"mifi/internal/categories"
	"mifi/internal/core"
)

// TypeMonthly is the only budget type this model produces.
const TypeMonthly = "MONTHLY"

// dueDay is the day of month assigned to every fixed expense.
const dueDay = 5

type (
	// Payload is the flat form a month is saved and fetched in.
	Payload struct {
		Title         string            `json:"title" toml:"title"`
		Type          string            `json:"type,omitempty" toml:"type"`
		Start         string            `json:"start,omitempty" toml:"start"`
		End           string            `json:"end,omitempty" toml:"end"`
		Incomes       []PayloadIncome   `json:"incomes" toml:"incomes"`
		FixedExpenses []FixedExpense    `json:"fixedExpenses" toml:"fixed_expenses"`
		Envelopes     []PayloadEnvelope `json:"envelopes" toml:"envelopes"`
		// Scratch carries the planning state the flat lists cannot express.
		// When present it is authoritative for transfers and envelopes.
		Scratch *Scratch `json:"scratch,omitempty" toml:"scratch,omitempty"`
	}

	PayloadIncome struct {
		Amount core.Money `json:"amount" toml:"amount"`
		Source string     `json:"source" toml:"source"`
	}

	FixedExpense struct {
		Amount      core.Money `json:"amount" toml:"amount"`
		Description string     `json:"description" toml:"description"`
		DueDate     string     `json:"dueDate,omitempty" toml:"due_date"`
	}

	PayloadEnvelope struct {
		CategoryID string     `json:"categoryId" toml:"category_id"`
		Limit      core.Money `json:"limit" toml:"limit"`
	}

	Scratch struct {
		Transfers []Transfer `json:"transfers" toml:"transfers"`
		Envelopes []Envelope `json:"envelopes" toml:"envelopes"`
	}
)

var polishMonths = [...]string{
	"styczeń", "luty", "marzec", "kwiecień", "maj", "czerwiec",
	"lipiec", "sierpień", "wrzesień", "październik", "listopad", "grudzień",
}

// Title returns the display title of a month's budget, e.g. "marzec 2025 Budget".
func Title(k core.MonthKey) string {
	if k.Month < 1 || k.Month > 12 {
		return "Budget"
	}
	return fmt.Sprintf("%s %d Budget", polishMonths[k.Month-1], k.Year)
}

// BuildPayload flattens m for saving. Only positive incomes, positive
// non-budgetable transfers and positive envelopes with a known category
// reach the flat lists; envelopes are kept once per category id, first one
// wins. The names of positive envelopes that could not be mapped to an id
// are returned so the caller can report them.
func BuildPayload(m Month, dir *categories.Directory) (Payload, []string) {
	if dir == nil {
		dir = categories.Default()
	}
	p := Payload{
		Title:         Title(m.Key),
		Type:          TypeMonthly,
		Start:         m.Key.Day(1),
		End:           m.Key.Day(m.Key.Days()),
		Incomes:       []PayloadIncome{},
		FixedExpenses: []FixedExpense{},
		Envelopes:     []PayloadEnvelope{},
		Scratch:       &Scratch{},
	}

	for _, in := range m.Incomes {
		if in.Amount.IsPositive() {
			p.Incomes = append(p.Incomes, PayloadIncome{Amount: in.Amount, Source: in.Source})
		}
	}

	for _, t := range m.Transfers {
		p.Scratch.Transfers = append(p.Scratch.Transfers, t)
		if t.Budgetable || !t.Amount.IsPositive() {
			continue
		}
		desc := t.Description
		if strings.TrimSpace(desc) == "" {
			desc = t.Name
		}
		p.FixedExpenses = append(p.FixedExpenses, FixedExpense{
			Amount:      t.Amount,
			Description: desc,
			DueDate:     m.Key.Day(dueDay),
		})
	}

	var unmapped []string
	seen := make(map[string]bool)
	for _, e := range m.Envelopes {
		id, ok := resolveID(dir, e)
		if ok {
			e.CategoryID = id
		}
		e.Splits = append([]Split(nil), e.Splits...)
		p.Scratch.Envelopes = append(p.Scratch.Envelopes, e)

		if !e.Limit.IsPositive() {
			continue
		}
		if !ok {
			unmapped = append(unmapped, e.Name)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		p.Envelopes = append(p.Envelopes, PayloadEnvelope{CategoryID: id, Limit: e.Limit})
	}
	return p, unmapped
}

// resolveID maps an envelope to its category id by name first, then by
// the id it already carries.
func resolveID(dir *categories.Directory, e Envelope) (string, bool) {
	if id, ok := dir.IDFor(e.Name); ok {
		return id, true
	}
	if e.CategoryID != "" {
		if _, ok := dir.NameFor(e.CategoryID); ok {
			return e.CategoryID, true
		}
	}
	return "", false
}

// FromPayload rebuilds a Month from a fetched payload.
//
// With scratch data the transfers and envelopes come from it. Without, the
// fixed expenses become non-budgetable transfers named after their
// description and envelopes draw from "Życie". Envelope names are always
// taken from the directory; unknown ids keep the id as name.
func FromPayload(key core.MonthKey, p Payload, dir *categories.Directory) Month {
	if dir == nil {
		dir = categories.Default()
	}
	m := Month{Key: key}
	for _, in := range p.Incomes {
		m.Incomes = append(m.Incomes, Income{Source: in.Source, Amount: in.Amount.Abs()})
	}

	if p.Scratch != nil {
		m.Transfers = append(m.Transfers, p.Scratch.Transfers...)
		for _, e := range p.Scratch.Envelopes {
			if name, ok := dir.NameFor(e.CategoryID); ok {
				e.Name = name
			}
			if !IsSource(e.Source) {
				e.Source = PoolLife
			}
			e.Splits = append([]Split(nil), e.Splits...)
			m.Envelopes = append(m.Envelopes, e)
		}
		return m
	}

	for _, fe := range p.FixedExpenses {
		m.Transfers = append(m.Transfers, Transfer{
			Name:        fe.Description,
			Description: fe.Description,
			Amount:      fe.Amount.Abs(),
		})
	}
	seen := make(map[string]bool)
	for _, pe := range p.Envelopes {
		if seen[pe.CategoryID] {
			continue
		}
		seen[pe.CategoryID] = true
		name, ok := dir.NameFor(pe.CategoryID)
		if !ok {
			name = pe.CategoryID
		}
		m.Envelopes = append(m.Envelopes, Envelope{
			CategoryID: pe.CategoryID,
			Name:       name,
			Source:     PoolLife,
			Limit:      pe.Limit.Abs(),
		})
	}
	return m
}

// AsTemplate strips the period fields and due dates; a template is not
// tied to a month.
func (p Payload) AsTemplate() Payload {
	p.Type, p.Start, p.End = "", "", ""
	fixed := make([]FixedExpense, len(p.FixedExpenses))
	for i, fe := range p.FixedExpenses {
		fe.DueDate = ""
		fixed[i] = fe
	}
	p.FixedExpenses = fixed
	return p
}

// HasScratch reports whether the payload carries planning state beyond the
// flat lists.
func (p Payload) HasScratch() bool {
	return p.Scratch != nil && (len(p.Scratch.Transfers) > 0 || len(p.Scratch.Envelopes) > 0)
}

// Validate checks the fields every store relies on.
func (p Payload) Validate() error {
	var problems []string
	for i, in := range p.Incomes {
		if in.Amount.IsNegative() {
			problems = append(problems, fmt.Sprintf("incomes[%d]: %v", i, ErrNegativeAmount))
		}
	}
	for i, fe := range p.FixedExpenses {
		if fe.Amount.IsNegative() {
			problems = append(problems, fmt.Sprintf("fixedExpenses[%d]: %v", i, ErrNegativeAmount))
		}
	}
	for i, e := range p.Envelopes {
		if strings.TrimSpace(e.CategoryID) == "" {
			problems = append(problems, fmt.Sprintf("envelopes[%d]: missing categoryId", i))
		}
		if e.Limit.IsNegative() {
			problems = append(problems, fmt.Sprintf("envelopes[%d]: %v", i, ErrNegativeAmount))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid budget payload:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Clone returns a deep copy, for stores that hand payloads out.
func (p Payload) Clone() Payload {
	p.Incomes = append([]PayloadIncome(nil), p.Incomes...)
	p.FixedExpenses = append([]FixedExpense(nil), p.FixedExpenses...)
	p.Envelopes = append([]PayloadEnvelope(nil), p.Envelopes...)
	if p.Scratch != nil {
		s := Scratch{Transfers: append([]Transfer(nil), p.Scratch.Transfers...)}
		for _, e := range p.Scratch.Envelopes {
			e.Splits = append([]Split(nil), e.Splits...)
			s.Envelopes = append(s.Envelopes, e)
		}
		p.Scratch = &s
	}
	return p
}

package budget

import (
	"fmt"
	"strings"

	"mifi/internal/core"
)

// The setters below never modify their input. Each returns a fresh Month
// or an error, in which case the input remains the current state.

func checkAmount(a core.Money) error {
	if a.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, a)
	}
	return nil
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// SetIncome sets the amount of the income with the given source, adding it
// when absent.
func SetIncome(m Month, source string, amount core.Money) (Month, error) {
	source, err := checkName(source)
	if err != nil {
		return m, err
	}
	if err := checkAmount(amount); err != nil {
		return m, err
	}
	out := m.Clone()
	if i := out.incomeIndex(source); i >= 0 {
		out.Incomes[i].Amount = amount
		return out, nil
	}
	out.Incomes = append(out.Incomes, Income{Source: source, Amount: amount})
	return out, nil
}

func RemoveIncome(m Month, source string) (Month, error) {
	i := m.incomeIndex(source)
	if i < 0 {
		return m, fmt.Errorf("income %q: %w", source, ErrNotFound)
	}
	out := m.Clone()
	out.Incomes = append(out.Incomes[:i], out.Incomes[i+1:]...)
	return out, nil
}

func SetTransferAmount(m Month, name string, amount core.Money) (Month, error) {
	if err := checkAmount(amount); err != nil {
		return m, err
	}
	i := m.transferIndex(name)
	if i < 0 {
		return m, fmt.Errorf("transfer %q: %w", name, ErrNotFound)
	}
	out := m.Clone()
	out.Transfers[i].Amount = amount
	return out, nil
}

func SetTransferBudgetable(m Month, name string, budgetable bool) (Month, error) {
	i := m.transferIndex(name)
	if i < 0 {
		return m, fmt.Errorf("transfer %q: %w", name, ErrNotFound)
	}
	out := m.Clone()
	out.Transfers[i].Budgetable = budgetable
	return out, nil
}

// AddTransfer appends a user-defined transfer. Names are unique within a month.
func AddTransfer(m Month, t Transfer) (Month, error) {
	name, err := checkName(t.Name)
	if err != nil {
		return m, err
	}
	if err := checkAmount(t.Amount); err != nil {
		return m, err
	}
	if m.transferIndex(name) >= 0 {
		return m, fmt.Errorf("transfer %q: %w", name, ErrDuplicate)
	}
	t.Name = name
	t.Custom = true
	out := m.Clone()
	out.Transfers = append(out.Transfers, t)
	return out, nil
}

func RemoveTransfer(m Month, name string) (Month, error) {
	i := m.transferIndex(name)
	if i < 0 {
		return m, fmt.Errorf("transfer %q: %w", name, ErrNotFound)
	}
	out := m.Clone()
	out.Transfers = append(out.Transfers[:i], out.Transfers[i+1:]...)
	return out, nil
}

// AddEnvelope appends an envelope. An empty source defaults to "Życie".
func AddEnvelope(m Month, e Envelope) (Month, error) {
	name, err := checkName(e.Name)
	if err != nil {
		return m, err
	}
	if e.Source == "" {
		e.Source = PoolLife
	}
	if !IsSource(e.Source) {
		return m, fmt.Errorf("%w: %q", ErrUnknownSource, e.Source)
	}
	if err := checkAmount(e.Limit); err != nil {
		return m, err
	}
	for _, s := range e.Splits {
		if err := checkAmount(s.Amount); err != nil {
			return m, err
		}
	}
	if m.envelopeIndex(name) >= 0 {
		return m, fmt.Errorf("envelope %q: %w", name, ErrDuplicate)
	}
	e.Name = name
	e.Splits = append([]Split(nil), e.Splits...)
	out := m.Clone()
	out.Envelopes = append(out.Envelopes, e)
	return out, nil
}

func RemoveEnvelope(m Month, name string) (Month, error) {
	i := m.envelopeIndex(name)
	if i < 0 {
		return m, fmt.Errorf("envelope %q: %w", name, ErrNotFound)
	}
	out := m.Clone()
	out.Envelopes = append(out.Envelopes[:i], out.Envelopes[i+1:]...)
	return out, nil
}

func SetEnvelopeLimit(m Month, name string, limit core.Money) (Month, error) {
	if err := checkAmount(limit); err != nil {
		return m, err
	}
	i := m.envelopeIndex(name)
	if i < 0 {
		return m, fmt.Errorf("envelope %q: %w", name, ErrNotFound)
	}
	out := m.Clone()
	out.Envelopes[i].Limit = limit
	return out, nil
}

func SetEnvelopeSource(m Month, name, source string) (Month, error) {
	if !IsSource(source) {
		return m, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	i := m.envelopeIndex(name)
	if i < 0 {
		return m, fmt.Errorf("envelope %q: %w", name, ErrNotFound)
	}
	out := m.Clone()
	out.Envelopes[i].Source = source
	return out, nil
}

// AddSplit appends a sub-budget to the named envelope. Splits may exceed
// the envelope limit; the waterfall flags that instead.
func AddSplit(m Month, envelope string, s Split) (Month, error) {
	name, err := checkName(s.Name)
	if err != nil {
		return m, err
	}
	if err := checkAmount(s.Amount); err != nil {
		return m, err
	}
	i := m.envelopeIndex(envelope)
	if i < 0 {
		return m, fmt.Errorf("envelope %q: %w", envelope, ErrNotFound)
	}
	s.Name = name
	out := m.Clone()
	out.Envelopes[i].Splits = append(out.Envelopes[i].Splits, s)
	return out, nil
}

// SetSplit replaces the split at index idx of the named envelope.
func SetSplit(m Month, envelope string, idx int, s Split) (Month, error) {
	name, err := checkName(s.Name)
	if err != nil {
		return m, err
	}
	if err := checkAmount(s.Amount); err != nil {
		return m, err
	}
	i := m.envelopeIndex(envelope)
	if i < 0 {
		return m, fmt.Errorf("envelope %q: %w", envelope, ErrNotFound)
	}
	if idx < 0 || idx >= len(m.Envelopes[i].Splits) {
		return m, fmt.Errorf("split %d of %q: %w", idx, envelope, ErrNotFound)
	}
	s.Name = name
	out := m.Clone()
	out.Envelopes[i].Splits[idx] = s
	return out, nil
}

func RemoveSplit(m Month, envelope string, idx int) (Month, error) {
	i := m.envelopeIndex(envelope)
	if i < 0 {
		return m, fmt.Errorf("envelope %q: %w", envelope, ErrNotFound)
	}
	if idx < 0 || idx >= len(m.Envelopes[i].Splits) {
		return m, fmt.Errorf("split %d of %q: %w", idx, envelope, ErrNotFound)
	}
	out := m.Clone()
	splits := out.Envelopes[i].Splits
	out.Envelopes[i].Splits = append(splits[:idx], splits[idx+1:]...)
	return out, nil
}

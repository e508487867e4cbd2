package deal

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the fixed precision of every money field after normalization.
const MoneyPlaces = 2

type periodKey struct {
	dealID   string
	year     int
	month    int
	hasYear  bool
	hasMonth bool
}

func keyOf(r Record) periodKey {
	k := periodKey{dealID: r.DealID}

	if r.Period.Year != nil {
		k.year, k.hasYear = *r.Period.Year, true
	}

	if r.Period.Month != nil {
		k.month, k.hasMonth = *r.Period.Month, true
	}

	return k
}

// Normalize collapses duplicate (deal, year, month) rows of one client and
// brings values to canonical form. The input is left untouched.
//
// Among duplicates the row with an actual end date wins; otherwise the row
// that appears later in the source wins. A deal that has period rows loses
// its no-history marker rows, and a deal without any keeps exactly one.
//
// Output is ordered by deal first appearance, then by period ascending.
func Normalize(records []Record) []Record {
	var (
		dealOrder   = make(map[string]int)
		withPeriods = make(map[string]bool)
		markers     = make(map[string]Record)
		kept        = make(map[periodKey]Record, len(records))
	)

	for _, r := range records {
		if _, ok := dealOrder[r.DealID]; !ok {
			dealOrder[r.DealID] = len(dealOrder)
		}

		if !r.HasPeriod() {
			if cur, ok := markers[r.DealID]; !ok || r.Seq > cur.Seq {
				markers[r.DealID] = r
			}

			continue
		}

		withPeriods[r.DealID] = true

		k := keyOf(r)
		if cur, ok := kept[k]; ok && !prefer(r, cur) {
			continue
		}

		kept[k] = r
	}

	out := make([]Record, 0, len(kept)+len(markers))

	for _, r := range kept {
		out = append(out, normalizeRecord(r))
	}

	for id, r := range markers {
		if withPeriods[id] {
			continue
		}

		out = append(out, normalizeRecord(r))
	}

	slices.SortFunc(out, func(a, b Record) int {
		if c := compareInt(dealOrder[a.DealID], dealOrder[b.DealID]); c != 0 {
			return c
		}

		return ComparePeriods(a, b)
	})

	return out
}

// prefer reports whether candidate should replace current for the same key.
func prefer(candidate, current Record) bool {
	candEnded := candidate.Period.ActualEndDate != nil
	curEnded := current.Period.ActualEndDate != nil

	if candEnded != curEnded {
		return candEnded
	}

	return candidate.Seq > current.Seq
}

func normalizeRecord(r Record) Record {
	out := r

	out.Terms.Amount = roundMoney(r.Terms.Amount)
	out.Terms.CollateralValue = roundMoney(r.Terms.CollateralValue)

	if r.Terms.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*r.Terms.Currency))
		out.Terms.Currency = &cur
	}

	if r.Period != nil {
		p := *r.Period
		p.CurrentLimit = roundMoney(p.CurrentLimit)
		p.PlannedPayment = roundMoney(p.PlannedPayment)
		p.CurrentDebt = roundMoney(p.CurrentDebt)
		p.OverdueDebt = roundMoney(p.OverdueDebt)
		out.Period = &p
	}

	return out
}

func roundMoney(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}

	return decimal.NullDecimal{Decimal: d.Decimal.Round(MoneyPlaces), Valid: true}
}

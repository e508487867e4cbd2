package deal

// ComparePeriods orders two records by (year, month), with a missing year or
// month sorting before any present value. Records without period data sort
// first. Remaining ties fall back to source order so the result is total.
func ComparePeriods(a, b Record) int {
	if c := compareBool(a.HasPeriod(), b.HasPeriod()); c != 0 {
		return c
	}

	if a.HasPeriod() {
		if c := compareOptInt(a.Period.Year, b.Period.Year); c != 0 {
			return c
		}

		if c := compareOptInt(a.Period.Month, b.Period.Month); c != 0 {
			return c
		}
	}

	return compareInt(a.Seq, b.Seq)
}

// Latest returns the chronologically last period among the records of a
// single deal. It returns false when none of them carries period data.
func Latest(records []Record) (Record, bool) {
	var (
		latest Record
		found  bool
	)

	for _, r := range records {
		if !r.HasPeriod() {
			continue
		}

		if !found || ComparePeriods(r, latest) > 0 {
			latest = r
			found = true
		}
	}

	return latest, found
}

func compareOptInt(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	return compareInt(*a, *b)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}

	return 1
}

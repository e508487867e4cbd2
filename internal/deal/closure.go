package deal

// Closed applies the closed-loan rule to a deal's latest period: the deal is
// closed when its status code is above StatusOpen or an actual end date is
// recorded. A nil period (deal without history) is open.
func Closed(latest *Period) bool {
	if latest == nil {
		return false
	}

	if latest.Status != nil && *latest.Status > StatusOpen {
		return true
	}

	return latest.ActualEndDate != nil
}

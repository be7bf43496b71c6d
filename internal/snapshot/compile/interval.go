package compile

// MonthlyEquivalent converts a recurring amount with a billing interval to
// its monthly figure. Unknown interval/count combinations pass through as
// monthly rather than erroring; a missing price yields 0 and contributes
// nothing to MRR.
func MonthlyEquivalent(unitAmount float64, interval string, intervalCount int64) float64 {
	if unitAmount <= 0 {
		return 0
	}
	switch interval {
	case "year":
		return unitAmount / 12
	case "month":
		switch intervalCount {
		case 6:
			return unitAmount / 6
		case 3:
			return unitAmount / 3
		default:
			return unitAmount
		}
	default:
		return unitAmount
	}
}

package pricing

// Cost derives the monetary cost of a run from its total token count.
// Unknown or zero usage costs nothing.
func Cost(totalTokens *int64, unitPricePer1K float64) float64 {
	if totalTokens == nil || *totalTokens == 0 {
		return 0.0
	}
	return float64(*totalTokens) / 1000 * unitPricePer1K
}

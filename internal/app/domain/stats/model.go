package stats

// Summary aggregates campaign-wide counters. WinRateActual is the observed
// win percentage over all entries, rounded to two decimals.
type Summary struct {
	TotalScans    int64
	TotalWins     int64
	TotalClaimed  int64
	WinRateActual float64
}

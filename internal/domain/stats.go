package domain

// GlobalStats aggregates publicly visible reports by status.
type GlobalStats struct {
	Total             int64
	Submitted         int64
	InProgress        int64
	Resolved          int64
	AvgResolutionDays *float64
}

// NeighborhoodCount totals reports per quartier.
type NeighborhoodCount struct {
	Neighborhood string
	Total        int64
	Resolved     int64
}

// TypeCount totals reports per incident type.
type TypeCount struct {
	Type     string
	Total    int64
	Resolved int64
}

// MonthlyCount is one point of the volume-vs-resolution time series.
type MonthlyCount struct {
	Year     int
	Month    int
	Total    int64
	Resolved int64
}

// Statistics bundles the public aggregate endpoints payload.
type Statistics struct {
	Global         GlobalStats
	ByNeighborhood []NeighborhoodCount
	ByType         []TypeCount
	Evolution      []MonthlyCount
}

// UserReportStats summarizes one user's own reports for the profile view.
type UserReportStats struct {
	Total      int64
	Submitted  int64
	InProgress int64
	Resolved   int64
	Points     int64
}

package analysis

// SortField specifies how to sort analysis results.
type SortField string

const (
	// SortByCount sorts by offense count.
	SortByCount SortField = "count"
	// SortByAlpha sorts by check code or path.
	SortByAlpha SortField = "alpha"
	// SortBySeverity sorts by the most severe offense, errors first.
	SortBySeverity SortField = "severity"
)

// IsValid returns true if the sort field is valid.
func (s SortField) IsValid() bool {
	switch s {
	case SortByCount, SortByAlpha, SortBySeverity:
		return true
	default:
		return false
	}
}

// Options configures Analyze.
type Options struct {
	// SortBy specifies how to sort ByCheck and ByFile. Ties fall back
	// to alphabetical order.
	SortBy SortField

	// SortDesc sorts counts highest first.
	SortDesc bool
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SortBy:   SortByCount,
		SortDesc: true,
	}
}

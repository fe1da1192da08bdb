package core

// DerivedViews is everything the dashboard renders for one filter set.
type DerivedViews struct {
	Filters       Filters
	Buckets       []Bucket
	Categories    []CategoryTotal // every category in range, ranked
	TopCategories []CategoryTotal // at most TopCategoriesLimit
	ActiveMonths  int
	Summary       Summary
	Overall       Averages
	InRange       []Transaction
}

// ComputeDerivedViews is a pure function of the full history and the
// filters. Range figures only see in-range transactions; active months
// and overall averages always see the whole history.
func ComputeDerivedViews(history []Transaction, f Filters) (DerivedViews, error) {
	f = f.Normalized()
	if err := f.Validate(); err != nil {
		return DerivedViews{}, err
	}

	buckets, inRange := BuildBuckets(history, f)
	months := f.MonthsInRange()
	ranked := RollupCategories(inRange, history, months)

	return DerivedViews{
		Filters:       f,
		Buckets:       buckets,
		Categories:    ranked,
		TopCategories: TopCategories(ranked, TopCategoriesLimit),
		ActiveMonths:  ActiveMonths(history),
		Summary:       Summarize(buckets, months),
		Overall:       OverallAverages(history, OverallSince, f.Now),
		InRange:       inRange,
	}, nil
}

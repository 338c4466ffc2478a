package scanner

// SummarySampleSize is how many URIs a summary lists per category.
const SummarySampleSize = 20

type CategorySummary struct {
	Count   int      `json:"count"`
	Samples []string `json:"samples"`
}

type Summary struct {
	Added     CategorySummary `json:"added"`
	Updated   CategorySummary `json:"updated"`
	Removed   CategorySummary `json:"removed"`
	Unchanged CategorySummary `json:"unchanged"`
}

func summarize(files []LibraryFile) CategorySummary {
	n := len(files)
	if n > SummarySampleSize {
		n = SummarySampleSize
	}
	samples := make([]string, 0, n)
	for _, f := range files[:n] {
		samples = append(samples, f.URI)
	}
	return CategorySummary{Count: len(files), Samples: samples}
}

// Summary reports the count of every category along with its first URIs.
func (r *ScanResult) Summary() *Summary {
	removed := make([]LibraryFile, 0, len(r.Removed))
	for _, rf := range r.Removed {
		removed = append(removed, rf.File)
	}
	return &Summary{
		Added:     summarize(r.Added),
		Updated:   summarize(r.Updated),
		Removed:   summarize(removed),
		Unchanged: summarize(r.Unchanged),
	}
}

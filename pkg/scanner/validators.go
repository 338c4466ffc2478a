package scanner

type ScanPayload struct {
	DryRun      bool     `json:"dry_run"`
	Force       bool     `json:"force"`
	FilterPaths []string `json:"filter_paths,omitempty" validate:"omitempty,max=50,dive,required"`
}

func (p ScanPayload) options() ScanOptions {
	return ScanOptions{
		DryRun:      p.DryRun,
		Force:       p.Force,
		FilterPaths: p.FilterPaths,
	}
}

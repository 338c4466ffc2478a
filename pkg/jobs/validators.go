package jobs

type CreateScanJobPayload struct {
	LibraryID   *int     `json:"library_id,omitempty" validate:"omitempty,min=1"`
	Force       bool     `json:"force"`
	FilterPaths []string `json:"filter_paths,omitempty" validate:"omitempty,max=50,dive,required"`
}

type ListJobsQuery struct {
	Limit     int      `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset    int      `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Status    []string `query:"status" json:"status,omitempty" validate:"dive,oneof=pending in_progress completed failed"`
	LibraryID *int     `query:"library_id" json:"library_id,omitempty"`
}

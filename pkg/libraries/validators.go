package libraries

type CreateLibraryPayload struct {
	Name    string   `json:"name" mod:"trim" validate:"required,max=100"`
	Type    string   `json:"type" validate:"required,oneof=comics books"`
	Sources []string `json:"sources" validate:"required,min=1,max=50,dive,abs_dir"`
}

type ListLibrariesQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Type   *string `query:"type" json:"type,omitempty" validate:"omitempty,oneof=comics books"`
}

type UpdateLibraryPayload struct {
	Name    *string  `json:"name,omitempty" mod:"trim" validate:"omitempty,max=100"`
	Sources []string `json:"sources,omitempty" validate:"omitempty,min=1,max=50,dive,abs_dir"`
}

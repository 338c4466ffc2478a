package contents

type ListContentsQuery struct {
	Limit     int      `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=500"`
	Offset    int      `query:"offset" json:"offset,omitempty" validate:"min=0"`
	LibraryID *int     `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
	ParentID  *string  `query:"parent_id" json:"parent_id,omitempty" validate:"omitempty,uuid"`
	Root      bool     `query:"root" json:"root,omitempty"`
	Type      []string `query:"type" json:"type,omitempty" validate:"dive,oneof=comic comic_series book book_series"`
	Valid     *bool    `query:"valid" json:"valid,omitempty"`
}

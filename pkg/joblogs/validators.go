package joblogs

type ListJobLogsQuery struct {
	AfterID   *int     `query:"after_id" json:"after_id,omitempty" validate:"omitempty,min=0"`
	Level     []string `query:"level" json:"level,omitempty" validate:"dive,oneof=info warn error"`
	LibraryID *int     `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
}

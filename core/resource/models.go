package resource

import (
	"time"

	"github.com/cpgs-hub/backend/core"
)

// Type is the kind of academic document.
type Type string

const (
	TypeSyllabus Type = "syllabus"
	TypePYQ      Type = "pyq" // previous year questions
	TypeNotes    Type = "notes"
)

const (
	PDFContentType = "application/pdf"

	// Anonymous is recorded as uploader when none is given.
	Anonymous = "anonymous"
)

// Resource is an uploaded PDF. FileData is only loaded when serving the file.
type Resource struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Branch      string    `json:"branch"`
	Semester    int       `json:"semester"`
	SubjectName string    `json:"subject_name"`
	FileName    string    `json:"file_name"`
	FileData    []byte    `json:"-"`
	UploadedBy  string    `json:"uploaded_by"`
	IsApproved  bool      `json:"is_approved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewResource contains information needed to upload a Resource.
type NewResource struct {
	Type        string `json:"type" validate:"required,oneof=syllabus pyq notes"`
	Branch      string `json:"branch" validate:"required"`
	Semester    int    `json:"semester" validate:"required,min=1,max=12"`
	SubjectName string `json:"subject_name" validate:"required"`
	FileName    string `json:"file_name" validate:"required"`
	FileData    []byte `json:"-" validate:"required"`
	UploadedBy  string `json:"uploaded_by"`
}

func (nr *NewResource) Clean() {
	nr.Type = core.CleanString(nr.Type, true /* lower */)
	nr.Branch = core.CleanString(nr.Branch)
	nr.SubjectName = core.CleanString(nr.SubjectName)
	nr.FileName = core.CleanString(nr.FileName)
	nr.UploadedBy = core.CleanString(nr.UploadedBy)
	if nr.UploadedBy == "" {
		nr.UploadedBy = Anonymous
	}
}

// QueryFilter applies AND on its non-zero fields.
type QueryFilter struct {
	Branch   string `query:"branch"`
	Semester int    `query:"semester"`
	Type     string `query:"type"`
	Approved *bool  `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Branch = core.CleanString(qf.Branch)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
}

// Approval is the admin moderation input.
type Approval struct {
	ResourceID string `json:"resourceId" validate:"required"`
	IsApproved *bool  `json:"is_approved" validate:"required"`
}

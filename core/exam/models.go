package exam

import (
	"time"

	"github.com/cpgs-hub/backend/core"
)

type Type string

const (
	TypeMidSem Type = "Mid-Sem"
	TypeEndSem Type = "End-Sem"
)

// accepted input layouts for Exam dates
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

type Exam struct {
	ID        string    `json:"id"`
	Semester  int       `json:"semester"`
	Subject   string    `json:"subject"`
	Date      time.Time `json:"date"`
	Type      Type      `json:"type"`
	Branch    string    `json:"branch"`
	Time      string    `json:"time,omitempty"`
	Venue     string    `json:"venue,omitempty"`
	IsNotice  bool      `json:"isNotice"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedBy string    `json:"createdBy,omitempty"` // identity ID
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is used to create or replace an Exam.
type Input struct {
	Semester int    `json:"semester" validate:"required,min=1,max=12"`
	Subject  string `json:"subject" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=Mid-Sem End-Sem"`
	Branch   string `json:"branch" validate:"required"`
	Time     string `json:"time"`
	Venue    string `json:"venue"`
	IsNotice bool   `json:"isNotice"`
	ImageURL string `json:"imageUrl"`
}

func (in *Input) Clean() {
	in.Subject = core.CleanString(in.Subject)
	in.Date = core.CleanString(in.Date)
	in.Type = core.CleanString(in.Type)
	in.Branch = core.CleanString(in.Branch)
	in.Time = core.CleanString(in.Time)
	in.Venue = core.CleanString(in.Venue)
	in.ImageURL = core.CleanString(in.ImageURL)
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// QueryFilter applies AND on its non-zero fields.
type QueryFilter struct {
	Semester int    `query:"semester"`
	Branch   string `query:"branch"`
}

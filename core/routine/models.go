package routine

import (
	"strings"
	"time"

	"github.com/cpgs-hub/backend/core"
)

// Class is one slot of a day's schedule.
type Class struct {
	Time    string `json:"time" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Room    string `json:"room" validate:"required"`
}

type Day struct {
	Day     string  `json:"day" validate:"required"`
	Classes []Class `json:"classes" validate:"dive"`
}

// Routine is the weekly class schedule of a section in a semester.
type Routine struct {
	ID        string    `json:"id"`
	Section   string    `json:"section"` // upper case, eg: CSA-1
	Semester  int       `json:"semester"`
	Schedule  []Day     `json:"schedule"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewRoutine struct {
	Section  string `json:"section" validate:"required,section"`
	Semester int    `json:"semester" validate:"required,min=1,max=12"`
	Schedule []Day  `json:"schedule" validate:"required,min=1,dive"`
}

func (nr *NewRoutine) Clean() {
	nr.Section = strings.ToUpper(core.CleanString(nr.Section))
	for i := range nr.Schedule {
		d := &nr.Schedule[i]
		d.Day = core.CleanString(d.Day)
		for j := range d.Classes {
			c := &d.Classes[j]
			c.Time = core.CleanString(c.Time)
			c.Subject = core.CleanString(c.Subject)
			c.Room = core.CleanString(c.Room)
		}
	}
}

// QueryFilter applies AND on its non-zero fields.
type QueryFilter struct {
	Section  string `query:"section"`
	Semester int    `query:"semester"`
}

func (qf *QueryFilter) Clean() {
	qf.Section = strings.ToUpper(core.CleanString(qf.Section))
}

package announcement

import (
	"time"

	"github.com/cpgs-hub/backend/core"
)

type Attachment struct {
	Type string `json:"type" validate:"required,oneof=image pdf"`
	URL  string `json:"url" validate:"required"` // link or data URL
	Name string `json:"name" validate:"required"`
}

type Announcement struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	Author      string       `json:"author"`             // display name
	AuthorID    string       `json:"authorId,omitempty"` // identity ID
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Input is used to create or replace an Announcement.
type Input struct {
	Title       string       `json:"title" validate:"required"`
	Content     string       `json:"content" validate:"required"`
	Attachments []Attachment `json:"attachments" validate:"dive"`
	Author      string       `json:"author"`
}

func (in *Input) Clean() {
	in.Title = core.CleanString(in.Title)
	in.Content = core.CleanString(in.Content)
	in.Author = core.CleanString(in.Author)
	if in.Attachments == nil {
		in.Attachments = []Attachment{}
	}
}

package announcement

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
)

var ErrNotFound = core.NewNotFoundError("Announcement not found")

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		GetAnnouncement(ctx context.Context, id string) (Announcement, error)
		// QueryAnnouncements returns every announcement, newest first.
		QueryAnnouncements(ctx context.Context) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		DeleteAnnouncement(ctx context.Context, id string) error
	}

	Service interface {
		List(ctx context.Context) ([]Announcement, error)
		Get(ctx context.Context, id string) (Announcement, error)
		// Create falls back to authorName when the input carries no author.
		Create(ctx context.Context, in Input, authorID, authorName string) (Announcement, error)
		Update(ctx context.Context, id string, in Input) (Announcement, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, validate *validator.Validate) Service {
	return &service{repo: repo, validate: validate}
}

func (svc *service) List(ctx context.Context) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx)
}

func (svc *service) Get(ctx context.Context, id string) (Announcement, error) {
	return svc.repo.GetAnnouncement(ctx, id)
}

func (svc *service) Create(ctx context.Context, in Input, authorID, authorName string) (Announcement, error) {
	in.Clean()
	if in.Author == "" {
		in.Author = authorName
	}
	if err := svc.validate.Struct(in); err != nil {
		return Announcement{}, err
	}

	now := core.NowFunc()
	a, err := svc.repo.CreateAnnouncement(ctx, Announcement{
		Title:       in.Title,
		Content:     in.Content,
		Attachments: in.Attachments,
		Author:      in.Author,
		AuthorID:    authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Announcement{}, errors.Wrap(err, "creating announcement")
	}
	return a, nil
}

// Update replaces title, content and attachments; ownership is the caller's concern.
func (svc *service) Update(ctx context.Context, id string, in Input) (Announcement, error) {
	in.Clean()
	if err := svc.validate.Struct(in); err != nil {
		return Announcement{}, err
	}

	a, err := svc.repo.GetAnnouncement(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	a.Title = in.Title
	a.Content = in.Content
	a.Attachments = in.Attachments
	if in.Author != "" {
		a.Author = in.Author
	}
	a.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateAnnouncement(ctx, a)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAnnouncement(ctx, id)
}

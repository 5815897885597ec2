package resource

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
)

var (
	ErrNotFound = core.NewNotFoundError("File not found")
	ErrNotPDF   = errors.New("Only PDF files are allowed")
)

type (
	Repository interface {
		CreateResource(ctx context.Context, res Resource) (Resource, error)
		// GetResource loads FileData only when withData is set.
		GetResource(ctx context.Context, id string, withData bool) (Resource, error)
		// QueryResources returns matching resources without FileData, newest first. limit <= 0 means no limit.
		QueryResources(ctx context.Context, filter QueryFilter, limit int) ([]Resource, error)
		SetResourceApproval(ctx context.Context, id string, approved bool, at time.Time) (Resource, error)
		DeleteResource(ctx context.Context, id string) error
	}

	Service interface {
		Upload(ctx context.Context, nr NewResource) (Resource, error)
		Browse(ctx context.Context, filter QueryFilter) ([]Resource, error)
		Pending(ctx context.Context) ([]Resource, error)
		All(ctx context.Context) ([]Resource, error)
		ListApproved(ctx context.Context, limit int) ([]Resource, error)
		GetFile(ctx context.Context, id string) (Resource, error)
		SetApproval(ctx context.Context, ap Approval) (Resource, error)
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

// Upload stores a PDF as an unapproved resource.
func (svc *service) Upload(ctx context.Context, nr NewResource) (Resource, error) {
	nr.Clean()
	if err := svc.validate.Struct(nr); err != nil {
		return Resource{}, err
	}
	if http.DetectContentType(nr.FileData) != PDFContentType {
		return Resource{}, core.NewValidationError(ErrNotPDF, core.FieldError{Field: "file", Error: ErrNotPDF.Error()})
	}

	now := core.NowFunc()
	res, err := svc.repo.CreateResource(ctx, Resource{
		Type:        Type(nr.Type),
		Branch:      nr.Branch,
		Semester:    nr.Semester,
		SubjectName: nr.SubjectName,
		FileName:    nr.FileName,
		FileData:    nr.FileData,
		UploadedBy:  nr.UploadedBy,
		IsApproved:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Resource{}, errors.Wrap(err, "creating resource")
	}
	return res, nil
}

// Browse lists approved resources only.
func (svc *service) Browse(ctx context.Context, filter QueryFilter) ([]Resource, error) {
	filter.Clean()
	approved := true
	filter.Approved = &approved
	return svc.repo.QueryResources(ctx, filter, 0)
}

func (svc *service) Pending(ctx context.Context) ([]Resource, error) {
	approved := false
	return svc.repo.QueryResources(ctx, QueryFilter{Approved: &approved}, 0)
}

func (svc *service) All(ctx context.Context) ([]Resource, error) {
	return svc.repo.QueryResources(ctx, QueryFilter{}, 0)
}

func (svc *service) ListApproved(ctx context.Context, limit int) ([]Resource, error) {
	approved := true
	return svc.repo.QueryResources(ctx, QueryFilter{Approved: &approved}, limit)
}

func (svc *service) GetFile(ctx context.Context, id string) (Resource, error) {
	return svc.repo.GetResource(ctx, id, true)
}

func (svc *service) SetApproval(ctx context.Context, ap Approval) (Resource, error) {
	if err := svc.validate.Struct(ap); err != nil {
		return Resource{}, err
	}
	return svc.repo.SetResourceApproval(ctx, ap.ResourceID, *ap.IsApproved, core.NowFunc())
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteResource(ctx, id)
}

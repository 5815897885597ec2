package exam

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
)

var (
	ErrNotFound    = core.NewNotFoundError("Exam not found")
	errInvalidDate = errors.New("date must be formatted as YYYY-MM-DD or RFC 3339")
)

type (
	Repository interface {
		CreateExam(ctx context.Context, ex Exam) (Exam, error)
		GetExam(ctx context.Context, id string) (Exam, error)
		// QueryExams returns matching exams sorted by date ascending.
		QueryExams(ctx context.Context, filter QueryFilter) ([]Exam, error)
		UpdateExam(ctx context.Context, ex Exam) (Exam, error)
		DeleteExam(ctx context.Context, id string) error
	}

	Service interface {
		List(ctx context.Context, filter QueryFilter) ([]Exam, error)
		Get(ctx context.Context, id string) (Exam, error)
		Create(ctx context.Context, in Input, createdBy string) (Exam, error)
		Update(ctx context.Context, id string, in Input) (Exam, error)
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

func (svc *service) clean(in *Input) (time.Time, error) {
	in.Clean()
	if err := svc.validate.Struct(in); err != nil {
		return time.Time{}, err
	}
	date, ok := parseDate(in.Date)
	if !ok {
		return time.Time{}, core.NewValidationError(errInvalidDate, core.FieldError{Field: "date", Error: errInvalidDate.Error()})
	}
	return date, nil
}

func (svc *service) List(ctx context.Context, filter QueryFilter) ([]Exam, error) {
	filter.Branch = core.CleanString(filter.Branch)
	return svc.repo.QueryExams(ctx, filter)
}

func (svc *service) Get(ctx context.Context, id string) (Exam, error) {
	return svc.repo.GetExam(ctx, id)
}

func (svc *service) Create(ctx context.Context, in Input, createdBy string) (Exam, error) {
	date, err := svc.clean(&in)
	if err != nil {
		return Exam{}, err
	}

	now := core.NowFunc()
	ex, err := svc.repo.CreateExam(ctx, Exam{
		Semester:  in.Semester,
		Subject:   in.Subject,
		Date:      date,
		Type:      Type(in.Type),
		Branch:    in.Branch,
		Time:      in.Time,
		Venue:     in.Venue,
		IsNotice:  in.IsNotice,
		ImageURL:  in.ImageURL,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Exam{}, errors.Wrap(err, "creating exam")
	}
	return ex, nil
}

// Update replaces the editable fields; ownership is the caller's concern.
func (svc *service) Update(ctx context.Context, id string, in Input) (Exam, error) {
	date, err := svc.clean(&in)
	if err != nil {
		return Exam{}, err
	}

	ex, err := svc.repo.GetExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	ex.Semester = in.Semester
	ex.Subject = in.Subject
	ex.Date = date
	ex.Type = Type(in.Type)
	ex.Branch = in.Branch
	ex.Time = in.Time
	ex.Venue = in.Venue
	ex.IsNotice = in.IsNotice
	ex.ImageURL = in.ImageURL
	ex.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateExam(ctx, ex)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteExam(ctx, id)
}

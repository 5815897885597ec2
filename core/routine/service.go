package routine

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
)

var ErrNotFound = core.NewNotFoundError("Routine not found")

type (
	Repository interface {
		CreateRoutine(ctx context.Context, r Routine) (Routine, error)
		// QueryRoutines returns matching routines sorted by semester then section.
		QueryRoutines(ctx context.Context, filter QueryFilter) ([]Routine, error)
		DeleteRoutine(ctx context.Context, id string) error
	}

	Service interface {
		List(ctx context.Context, filter QueryFilter) ([]Routine, error)
		Create(ctx context.Context, nr NewRoutine) (Routine, error)
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

func (svc *service) List(ctx context.Context, filter QueryFilter) ([]Routine, error) {
	filter.Clean()
	return svc.repo.QueryRoutines(ctx, filter)
}

func (svc *service) Create(ctx context.Context, nr NewRoutine) (Routine, error) {
	nr.Clean()
	if err := svc.validate.Struct(nr); err != nil {
		return Routine{}, err
	}

	now := core.NowFunc()
	r, err := svc.repo.CreateRoutine(ctx, Routine{
		Section:   nr.Section,
		Semester:  nr.Semester,
		Schedule:  nr.Schedule,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Routine{}, errors.Wrap(err, "creating routine")
	}
	return r, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteRoutine(ctx, id)
}

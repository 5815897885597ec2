package sysconfig

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/cpgs-hub/backend/core"
)

var ErrNotFound = core.NewNotFoundError("Config not found")

type (
	Repository interface {
		GetConfig(ctx context.Context, key string) (Entry, error)
		QueryConfigs(ctx context.Context) ([]Entry, error)
		// UpsertConfig creates or replaces the entry with the same key.
		UpsertConfig(ctx context.Context, e Entry) (Entry, error)
	}

	Service interface {
		Get(ctx context.Context, key string) (Entry, error)
		// Value returns the stored value of key, or "" with found=false.
		Value(ctx context.Context, key string) (value string, found bool, err error)
		List(ctx context.Context) ([]Entry, error)
		Set(ctx context.Context, in Input, updatedBy string) (Entry, error)
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

func (svc *service) Get(ctx context.Context, key string) (Entry, error) {
	return svc.repo.GetConfig(ctx, core.CleanString(key))
}

func (svc *service) Value(ctx context.Context, key string) (string, bool, error) {
	e, err := svc.Get(ctx, key)
	switch {
	case err == ErrNotFound:
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return e.Value, true, nil
}

func (svc *service) List(ctx context.Context) ([]Entry, error) {
	return svc.repo.QueryConfigs(ctx)
}

func (svc *service) Set(ctx context.Context, in Input, updatedBy string) (Entry, error) {
	in.Key = core.CleanString(in.Key)
	if err := svc.validate.Struct(in); err != nil {
		return Entry{}, err
	}
	return svc.repo.UpsertConfig(ctx, Entry{
		Key:       in.Key,
		Value:     *in.Value,
		UpdatedBy: updatedBy,
		UpdatedAt: core.NowFunc(),
	})
}

package inmemdb

import (
	"context"
	"time"

	"github.com/cpgs-hub/backend/core/resource"
)

type resourceRepository struct {
	db *DB
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db}
}

func (repo *resourceRepository) CreateResource(_ context.Context, res resource.Resource) (resource.Resource, error) {
	res.ID = newID()
	repo.db.resources.put(res.ID, res)
	res.FileData = nil
	return res, nil
}

func (repo *resourceRepository) GetResource(_ context.Context, id string, withData bool) (resource.Resource, error) {
	res, ok := repo.db.resources.get(id)
	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	if !withData {
		res.FileData = nil
	}
	return res, nil
}

func (repo *resourceRepository) QueryResources(_ context.Context, filter resource.QueryFilter, limit int) ([]resource.Resource, error) {
	match := func(res resource.Resource) bool {
		return (filter.Branch == "" || res.Branch == filter.Branch) &&
			(filter.Semester == 0 || res.Semester == filter.Semester) &&
			(filter.Type == "" || string(res.Type) == filter.Type) &&
			(filter.Approved == nil || res.IsApproved == *filter.Approved)
	}
	newestFirst := func(a, b resource.Resource) bool { return a.CreatedAt.After(b.CreatedAt) }

	rows := repo.db.resources.filter(match, newestFirst)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].FileData = nil
	}
	return rows, nil
}

func (repo *resourceRepository) SetResourceApproval(_ context.Context, id string, approved bool, at time.Time) (resource.Resource, error) {
	res, ok := repo.db.resources.get(id)
	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	res.IsApproved = approved
	res.UpdatedAt = at
	if !repo.db.resources.replace(id, res) {
		return resource.Resource{}, resource.ErrNotFound
	}
	res.FileData = nil
	return res, nil
}

func (repo *resourceRepository) DeleteResource(_ context.Context, id string) error {
	if !repo.db.resources.delete(id) {
		return resource.ErrNotFound
	}
	return nil
}

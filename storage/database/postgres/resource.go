package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/resource"
)

// file_data is left out of listings
const resourceColumns = "id, type, branch, semester, subject_name, file_name, uploaded_by, is_approved, created_at, updated_at"

type resourceRow struct {
	ID          string    `db:"id"`
	Type        string    `db:"type"`
	Branch      string    `db:"branch"`
	Semester    int       `db:"semester"`
	SubjectName string    `db:"subject_name"`
	FileName    string    `db:"file_name"`
	FileData    []byte    `db:"file_data"`
	UploadedBy  string    `db:"uploaded_by"`
	IsApproved  bool      `db:"is_approved"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row resourceRow) resource() resource.Resource {
	return resource.Resource{
		ID:          row.ID,
		Type:        resource.Type(row.Type),
		Branch:      row.Branch,
		Semester:    row.Semester,
		SubjectName: row.SubjectName,
		FileName:    row.FileName,
		FileData:    row.FileData,
		UploadedBy:  row.UploadedBy,
		IsApproved:  row.IsApproved,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type resourceRepository struct {
	db *DB
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db}
}

func (repo *resourceRepository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	row := resourceRow{
		ID:          newID(),
		Type:        string(res.Type),
		Branch:      res.Branch,
		Semester:    res.Semester,
		SubjectName: res.SubjectName,
		FileName:    res.FileName,
		FileData:    res.FileData,
		UploadedBy:  res.UploadedBy,
		IsApproved:  res.IsApproved,
		CreatedAt:   res.CreatedAt.UTC(),
		UpdatedAt:   res.UpdatedAt.UTC(),
	}
	q := "INSERT INTO resources (" + resourceColumns + ", file_data) VALUES " +
		"(:id, :type, :branch, :semester, :subject_name, :file_name, :uploaded_by, :is_approved, :created_at, :updated_at, :file_data)"
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return resource.Resource{}, errors.Wrap(err, "inserting resource")
	}
	row.FileData = nil
	return row.resource(), nil
}

func (repo *resourceRepository) GetResource(ctx context.Context, id string, withData bool) (resource.Resource, error) {
	columns := resourceColumns
	if withData {
		columns += ", file_data"
	}
	var row resourceRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+columns+" FROM resources WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, errors.Wrap(err, "getting resource")
	}
	return row.resource(), nil
}

func (repo *resourceRepository) QueryResources(ctx context.Context, filter resource.QueryFilter, limit int) ([]resource.Resource, error) {
	var w where
	if filter.Branch != "" {
		w.add("branch = ?", filter.Branch)
	}
	if filter.Semester != 0 {
		w.add("semester = ?", filter.Semester)
	}
	if filter.Type != "" {
		w.add("type = ?", filter.Type)
	}
	if filter.Approved != nil {
		w.add("is_approved = ?", *filter.Approved)
	}

	q := "SELECT " + resourceColumns + " FROM resources" + w.String() + orderBy(core.Ordering{Field: "created_at", Desc: true})
	if limit > 0 {
		w.args = append(w.args, limit)
		q += " LIMIT $" + itoa(len(w.args))
	}

	var rows []resourceRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	list := make([]resource.Resource, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.resource())
	}
	return list, nil
}

func (repo *resourceRepository) SetResourceApproval(ctx context.Context, id string, approved bool, at time.Time) (resource.Resource, error) {
	var row resourceRow
	q := "UPDATE resources SET is_approved = $1, updated_at = $2 WHERE id = $3 RETURNING " + resourceColumns
	if err := repo.db.GetContext(ctx, &row, q, approved, at.UTC(), id); err != nil {
		if err == sql.ErrNoRows {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, errors.Wrap(err, "updating resource approval")
	}
	return row.resource(), nil
}

func (repo *resourceRepository) DeleteResource(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "resources", id, resource.ErrNotFound)
}

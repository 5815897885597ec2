package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/identity"
)

const identityColumns = "id, name, email, role, roll_number, profile_picture, password_hash, created_at, updated_at"

type identityRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	Role           string    `db:"role"`
	RollNumber     string    `db:"roll_number"`
	ProfilePicture string    `db:"profile_picture"`
	PasswordHash   string    `db:"password_hash"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func toIdentityRow(usr identity.Identity) identityRow {
	return identityRow{
		ID:             usr.ID,
		Name:           usr.Name,
		Email:          usr.Email,
		Role:           string(usr.Role),
		RollNumber:     usr.RollNumber,
		ProfilePicture: usr.ProfilePicture,
		PasswordHash:   string(usr.PasswordHash),
		CreatedAt:      usr.CreatedAt.UTC(),
		UpdatedAt:      usr.UpdatedAt.UTC(),
	}
}

func (row identityRow) identity() identity.Identity {
	usr := identity.Identity{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		Role:           identity.Role(row.Role),
		RollNumber:     row.RollNumber,
		ProfilePicture: row.ProfilePicture,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
	if row.PasswordHash != "" {
		usr.PasswordHash = []byte(row.PasswordHash)
	}
	return usr
}

type identityRepository struct {
	db *DB
}

var _ identity.Repository = (*identityRepository)(nil) // interface compliance check

func NewIdentityRepository(db *DB) identity.Repository {
	return &identityRepository{db: db}
}

// trapNoRowsErr maps "no rows" to identity.ErrNotFound
func (repo *identityRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return identity.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *identityRepository) CreateIdentity(ctx context.Context, usr identity.Identity) (identity.Identity, error) {
	usr.ID = newID()
	row := toIdentityRow(usr)
	q := "INSERT INTO users (" + identityColumns + ") VALUES " +
		"(:id, :name, :email, :role, :roll_number, :profile_picture, :password_hash, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return identity.Identity{}, identity.ErrEmailExists
		}
		return identity.Identity{}, errors.Wrap(err, "inserting identity")
	}
	return row.identity(), nil
}

func (repo *identityRepository) GetIdentityByID(ctx context.Context, id string) (identity.Identity, error) {
	var row identityRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+identityColumns+" FROM users WHERE id = $1", id); err != nil {
		return identity.Identity{}, repo.trapNoRowsErr(err, "getting identity by id")
	}
	return row.identity(), nil
}

func (repo *identityRepository) GetIdentityByEmail(ctx context.Context, email string) (identity.Identity, error) {
	var row identityRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+identityColumns+" FROM users WHERE email = $1", email); err != nil {
		return identity.Identity{}, repo.trapNoRowsErr(err, "getting identity by email")
	}
	return row.identity(), nil
}

func (repo *identityRepository) QueryIdentities(ctx context.Context) ([]identity.Identity, error) {
	var rows []identityRow
	q := "SELECT " + identityColumns + " FROM users" + orderBy(core.Ordering{Field: "created_at", Desc: true})
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying identities")
	}

	users := make([]identity.Identity, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.identity())
	}
	return users, nil
}

func (repo *identityRepository) UpdateIdentity(ctx context.Context, usr identity.Identity) (identity.Identity, error) {
	row := toIdentityRow(usr)
	q := "UPDATE users SET name = :name, email = :email, role = :role, roll_number = :roll_number, " +
		"profile_picture = :profile_picture, password_hash = :password_hash, updated_at = :updated_at WHERE id = :id"
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.Identity{}, identity.ErrEmailExists
		}
		return identity.Identity{}, errors.Wrap(err, "updating identity")
	}
	if err = checkAffected(res.RowsAffected, identity.ErrNotFound); err != nil {
		return identity.Identity{}, err
	}
	return row.identity(), nil
}

func (repo *identityRepository) DeleteIdentity(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "users", id, identity.ErrNotFound)
}

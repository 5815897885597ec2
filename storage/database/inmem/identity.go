package inmemdb

import (
	"context"

	"github.com/cpgs-hub/backend/core/identity"
)

type identityRepository struct {
	db *DB
}

var _ identity.Repository = (*identityRepository)(nil) // interface compliance check

func NewIdentityRepository(db *DB) identity.Repository {
	return &identityRepository{db: db}
}

func (repo *identityRepository) emailTaken(email, exceptID string) bool {
	taken := repo.db.identities.filter(func(usr identity.Identity) bool {
		return usr.Email == email && usr.ID != exceptID
	}, nil)
	return len(taken) > 0
}

func (repo *identityRepository) CreateIdentity(_ context.Context, usr identity.Identity) (identity.Identity, error) {
	repo.db.emailIndex.Lock()
	defer repo.db.emailIndex.Unlock()

	if repo.emailTaken(usr.Email, "") {
		return identity.Identity{}, identity.ErrEmailExists
	}
	usr.ID = newID()
	repo.db.identities.put(usr.ID, usr)
	return usr, nil
}

func (repo *identityRepository) GetIdentityByID(_ context.Context, id string) (identity.Identity, error) {
	if usr, ok := repo.db.identities.get(id); ok {
		return usr, nil
	}
	return identity.Identity{}, identity.ErrNotFound
}

func (repo *identityRepository) GetIdentityByEmail(_ context.Context, email string) (identity.Identity, error) {
	found := repo.db.identities.filter(func(usr identity.Identity) bool { return usr.Email == email }, nil)
	if len(found) == 0 {
		return identity.Identity{}, identity.ErrNotFound
	}
	return found[0], nil
}

func (repo *identityRepository) QueryIdentities(_ context.Context) ([]identity.Identity, error) {
	return repo.db.identities.filter(nil, func(a, b identity.Identity) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}), nil
}

func (repo *identityRepository) UpdateIdentity(_ context.Context, usr identity.Identity) (identity.Identity, error) {
	repo.db.emailIndex.Lock()
	defer repo.db.emailIndex.Unlock()

	if repo.emailTaken(usr.Email, usr.ID) {
		return identity.Identity{}, identity.ErrEmailExists
	}
	if !repo.db.identities.replace(usr.ID, usr) {
		return identity.Identity{}, identity.ErrNotFound
	}
	return usr, nil
}

func (repo *identityRepository) DeleteIdentity(_ context.Context, id string) error {
	if !repo.db.identities.delete(id) {
		return identity.ErrNotFound
	}
	return nil
}

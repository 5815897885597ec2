package inmemdb

import (
	"context"

	"github.com/cpgs-hub/backend/core/sysconfig"
)

type configRepository struct {
	db *DB
}

var _ sysconfig.Repository = (*configRepository)(nil) // interface compliance check

func NewConfigRepository(db *DB) sysconfig.Repository {
	return &configRepository{db: db}
}

func (repo *configRepository) GetConfig(_ context.Context, key string) (sysconfig.Entry, error) {
	if e, ok := repo.db.configs.get(key); ok {
		return e, nil
	}
	return sysconfig.Entry{}, sysconfig.ErrNotFound
}

func (repo *configRepository) QueryConfigs(_ context.Context) ([]sysconfig.Entry, error) {
	return repo.db.configs.filter(nil, func(a, b sysconfig.Entry) bool { return a.Key < b.Key }), nil
}

func (repo *configRepository) UpsertConfig(_ context.Context, e sysconfig.Entry) (sysconfig.Entry, error) {
	repo.db.configs.put(e.Key, e)
	return e, nil
}

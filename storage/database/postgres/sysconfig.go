package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/sysconfig"
)

type configRow struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedBy string    `db:"updated_by"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row configRow) entry() sysconfig.Entry {
	return sysconfig.Entry{Key: row.Key, Value: row.Value, UpdatedBy: row.UpdatedBy, UpdatedAt: row.UpdatedAt.UTC()}
}

type configRepository struct {
	db *DB
}

var _ sysconfig.Repository = (*configRepository)(nil) // interface compliance check

func NewConfigRepository(db *DB) sysconfig.Repository {
	return &configRepository{db: db}
}

func (repo *configRepository) GetConfig(ctx context.Context, key string) (sysconfig.Entry, error) {
	var row configRow
	if err := repo.db.GetContext(ctx, &row, "SELECT key, value, updated_by, updated_at FROM system_configs WHERE key = $1", key); err != nil {
		if err == sql.ErrNoRows {
			return sysconfig.Entry{}, sysconfig.ErrNotFound
		}
		return sysconfig.Entry{}, errors.Wrap(err, "getting config")
	}
	return row.entry(), nil
}

func (repo *configRepository) QueryConfigs(ctx context.Context) ([]sysconfig.Entry, error) {
	var rows []configRow
	q := "SELECT key, value, updated_by, updated_at FROM system_configs" + orderBy(core.Ordering{Field: "key"})
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying configs")
	}
	entries := make([]sysconfig.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry())
	}
	return entries, nil
}

func (repo *configRepository) UpsertConfig(ctx context.Context, e sysconfig.Entry) (sysconfig.Entry, error) {
	row := configRow{Key: e.Key, Value: e.Value, UpdatedBy: e.UpdatedBy, UpdatedAt: e.UpdatedAt.UTC()}
	q := "INSERT INTO system_configs (key, value, updated_by, updated_at) VALUES (:key, :value, :updated_by, :updated_at) " +
		"ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at"
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return sysconfig.Entry{}, errors.Wrap(err, "upserting config")
	}
	return row.entry(), nil
}

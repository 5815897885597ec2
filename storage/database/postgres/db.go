// Package postgres stores every collection in PostgreSQL through sqlx.
// The schema is managed with goose migrations embedded in the binary.
package postgres

import (
	"context"
	"database/sql/driver"
	"embed"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/cpgs-hub/backend/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

var gooseRunFunc = goose.RunContext // mockable

// DB is the shared connection pool. It is created once at startup and closed at shutdown.
type DB struct {
	*sqlx.DB
}

func Open(ctx context.Context, url string, timeout time.Duration) (*DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{DB: db}, nil
}

func ping(ctx context.Context, db *sqlx.DB) error {
	return core.WaitForDB(ctx, db.PingContext, 30)
}

func (db *DB) Close(_ context.Context) error {
	return db.DB.Close()
}

// Migrate runs a goose command ("up", "down", "status", ...) against the embedded migrations.
func Migrate(ctx context.Context, db *DB, command string, args ...string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := gooseRunFunc(ctx, command, db.DB.DB, "migrations", args...); err != nil {
		return errors.Wrapf(err, "running migration %q", command)
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func newID() string {
	return uuid.New().String()
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// deleteByID deletes one row, returning notFound when nothing matched.
func deleteByID(ctx context.Context, db *DB, table, id string, notFound error) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", table)
	}
	return checkAffected(res.RowsAffected, notFound)
}

func checkAffected(rowsAffected func() (int64, error), notFound error) error {
	n, err := rowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func orderBy(ords ...core.Ordering) string {
	clauses := make([]string, 0, len(ords))
	for _, ord := range ords {
		clauses = append(clauses, ord.String())
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

// where collects AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", "$"+itoa(len(w.args))))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// jsonb maps a Go value to a JSONB column.
type jsonb[T any] struct {
	V T
}

func (j jsonb[T]) Value() (driver.Value, error) {
	b, err := sonic.Marshal(j.V)
	if err != nil {
		return nil, errors.Wrap(err, "encoding jsonb")
	}
	return b, nil
}

func (j *jsonb[T]) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		return nil
	default:
		return errors.Errorf("cannot scan %T into jsonb", src)
	}
	return errors.Wrap(sonic.Unmarshal(data, &j.V), "decoding jsonb")
}

package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/routine"
)

func TestWhere(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.add("branch = ?", "CSE")
	w.add("semester = ?", 3)
	assert.Equal(t, " WHERE branch = $1 AND semester = $2", w.String())
	assert.Equal(t, []interface{}{"CSE", 3}, w.args)
}

func TestOrderBy(t *testing.T) {
	got := orderBy(core.Ordering{Field: "semester"}, core.Ordering{Field: "created_at", Desc: true})
	assert.Equal(t, " ORDER BY semester ASC, created_at DESC", got)
}

func TestJSONB(t *testing.T) {
	in := jsonb[[]routine.Day]{V: []routine.Day{
		{Day: "Monday", Classes: []routine.Class{{Time: "9:00", Subject: "DSA", Room: "101"}}},
	}}
	val, err := in.Value()
	require.NoError(t, err)

	var out jsonb[[]routine.Day]
	require.NoError(t, out.Scan(val))
	assert.Equal(t, in.V, out.V)

	require.NoError(t, out.Scan(`[{"day":"Friday","classes":[]}]`))
	assert.Equal(t, "Friday", out.V[0].Day)

	assert.Error(t, out.Scan(42))
}

func TestMigrate(t *testing.T) {
	origRun := gooseRunFunc
	defer func() { gooseRunFunc = origRun }()

	var gotCmd, gotDir string
	var gotArgs []string
	gooseRunFunc = func(_ context.Context, command string, _ *sql.DB, dir string, args ...string) error {
		gotCmd, gotDir, gotArgs = command, dir, args
		return nil
	}
	db := &DB{DB: &sqlx.DB{}}
	require.NoError(t, Migrate(context.Background(), db, "up-to", "1"))
	assert.Equal(t, "up-to", gotCmd)
	assert.Equal(t, "migrations", gotDir)
	assert.Equal(t, []string{"1"}, gotArgs)

	gooseRunFunc = func(context.Context, string, *sql.DB, string, ...string) error {
		return errors.New("boom")
	}
	assert.EqualError(t, Migrate(context.Background(), db, "down"), `running migration "down": boom`)
}

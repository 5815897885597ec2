package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/storage/database"
	"github.com/cpgs-hub/backend/testutil"
)

type migration struct {
	command string
	args    []string
}

type fixture struct {
	cli        *commandLine
	usrRepo    identity.Repository
	migrations []migration
}

func setup(t *testing.T) *fixture {
	store := database.NewInMemStore()
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	validate, _ := testutil.NewValidator()

	f := &fixture{usrRepo: store.Identities}
	f.cli = &commandLine{
		usrSvc: identity.NewService(store.Identities, validate),
		migrate: func(_ context.Context, command string, args ...string) error {
			f.migrations = append(f.migrations, migration{command: command, args: args})
			return nil
		},
		out: new(bytes.Buffer),
	}
	return f
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

// mockPassword makes the password prompt answer pwd.
func mockPassword(t *testing.T, pwd string) {
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_root(t *testing.T) {
	f := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, f.cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_createAdmin(t *testing.T) {
	f := setup(t)
	usr := testutil.CreateIdentity(t, f.usrRepo, "Alice", "alice@example.com", "s3cret-pass", identity.RoleUser)

	tests := []cliTest{
		{name: "email required", args: []string{"createadmin"}, extra: "s3cret-pass", wantErrStr: `required flag(s) "email" not set`},
		{name: "empty password", args: []string{"createadmin", "--email", "root@example.com"}, wantErr: errHelp},
		{name: "weak password", args: []string{"createadmin", "--email", "root@example.com"}, extra: "abc", wantErrStr: "password"},
		{name: "new admin", args: []string{"createadmin", "--name", "Root", "--email", "ROOT@example.com"}, extra: "s3cret-pass"},
		{name: "promote", args: []string{"createadmin", "--email", usr.Email}, extra: "n3w-passw0rd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd, _ := tt.extra.(string)
			mockPassword(t, pwd)
			checkErr(t, tt, f.cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	root, err := f.usrRepo.GetIdentityByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Root", root.Name)
	assert.Equal(t, identity.RoleAdmin, root.Role)
	assert.NoError(t, root.CheckPassword("s3cret-pass"))

	promoted, err := f.usrRepo.GetIdentityByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, promoted.Role)
	assert.Equal(t, "Alice", promoted.Name)
	assert.NoError(t, promoted.CheckPassword("n3w-passw0rd"))
}

func Test_commandLine_setRole(t *testing.T) {
	f := setup(t)
	usr := testutil.CreateIdentity(t, f.usrRepo, "Alice", "alice@example.com", "s3cret-pass", identity.RoleUser)

	tests := []cliTest{
		{name: "flags required", args: []string{"setrole", "--email", usr.Email}, wantErrStr: `required flag(s) "role" not set`},
		{name: "unknown account", args: []string{"setrole", "--email", "ghost@example.com", "--role", "cr"}, wantErr: identity.ErrNotFound},
		{name: "invalid role", args: []string{"setrole", "--email", usr.Email, "--role", "king"}, wantErrStr: "role"},
		{name: "ok", args: []string{"setrole", "--email", "Alice@Example.com", "--role", "HOD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, f.cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	got, err := f.usrRepo.GetIdentityByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleHOD, got.Role)
}

func Test_commandLine_resetPassword(t *testing.T) {
	f := setup(t)
	usr := testutil.CreateIdentity(t, f.usrRepo, "Alice", "alice@example.com", "s3cret-pass", identity.RoleUser)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErrStr: `required flag(s) "email" not set`},
		{name: "email but no password", args: []string{"resetpassword", "--email", usr.Email}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetpassword", "--email", "ghost@example.com"}, extra: "n3w-passw0rd", wantErr: identity.ErrNotFound},
		{name: "password with spaces", args: []string{"resetpassword", "--email", usr.Email}, extra: "new pass word", wantErrStr: "password"},
		{name: "reset", args: []string{"resetpassword", "--email", usr.Email}, extra: "n3w-passw0rd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd, _ := tt.extra.(string)
			mockPassword(t, pwd)
			checkErr(t, tt, f.cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	got, err := f.usrRepo.GetIdentityByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("n3w-passw0rd"))
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t)

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "up", args: []string{"migrate", "up"}, extra: migration{command: "up", args: []string{}}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}, extra: migration{command: "up-to", args: []string{"2"}}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}, extra: migration{command: "down-to", args: []string{"0"}}},
		{name: "status", args: []string{"migrate", "status"}, extra: migration{command: "status", args: []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.migrations = nil
			checkErr(t, tt, f.cli.run(append([]string{"admin"}, tt.args...)))
			if want, ok := tt.extra.(migration); ok {
				require.Len(t, f.migrations, 1)
				assert.Equal(t, want.command, f.migrations[0].command)
				assert.Equal(t, fmt.Sprint(want.args), fmt.Sprint(f.migrations[0].args))
			} else {
				assert.Empty(t, f.migrations)
			}
		})
	}

	t.Run("non-postgres store", func(t *testing.T) {
		store := database.NewInMemStore()
		f.cli.migrate = store.Migrate
		err := f.cli.run([]string{"admin", "migrate", "up"})
		assert.Equal(t, database.ErrNoMigrations, err)
		assert.True(t, strings.Contains(err.Error(), "postgres"))
	})
}

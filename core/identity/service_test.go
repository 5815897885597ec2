package identity_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpgs-hub/backend/core"
	. "github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/storage/database"
	"github.com/cpgs-hub/backend/testutil"
)

func newService(t *testing.T) (Service, Repository) {
	validate, _ := testutil.NewValidator()
	store := database.NewInMemStore()
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return NewService(store.Identities, validate), store.Identities
}

func failedTag(t *testing.T, err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "want validator.ValidationErrors; got %T (%v)", err, err)
	require.NotEmpty(t, verrs)
	return verrs[0].Tag()
}

func TestService_Register(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, NewIdentity{Name: " Alice Roy ", Email: " Alice@Example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "Alice Roy", usr.Name)
	assert.Equal(t, "alice@example.com", usr.Email)
	assert.Equal(t, RoleUser, usr.Role)
	assert.True(t, usr.HasPassword())
	assert.NoError(t, usr.CheckPassword("s3cret-pass"))

	tests := []struct {
		name    string
		ni      NewIdentity
		wantTag string
	}{
		{name: "missing name", ni: NewIdentity{Email: "b@x.com", Password: "s3cret-pass"}, wantTag: "required"},
		{name: "bad email", ni: NewIdentity{Name: "Bob", Email: "bob", Password: "s3cret-pass"}, wantTag: "email"},
		{name: "short password", ni: NewIdentity{Name: "Bob", Email: "b@x.com", Password: "abc"}, wantTag: "pwdminlen"},
		{name: "whitespace", ni: NewIdentity{Name: "Bob", Email: "b@x.com", Password: "has space1"}, wantTag: "pwdnospace"},
		{name: "similar to name", ni: NewIdentity{Name: "Alice Roy", Email: "c@x.com", Password: "aliceroy"}, wantTag: "pwdtoosim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.ni)
			assert.Equal(t, tt.wantTag, failedTag(t, err))
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, NewIdentity{Name: "Other", Email: "ALICE@example.com", Password: "an0ther-pass"})
		require.True(t, core.IsValidationError(err), "got %v", err)
		assert.Equal(t, map[string]string{"email": "Email already registered"}, err.(*core.ValidationError).FieldMap())
	})
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	alice := testutil.CreateIdentity(t, repo, "Alice", "alice@example.com", "s3cret-pass", RoleCR)
	testutil.CreateIdentity(t, repo, "Ghost", "ghost@example.com", "", RoleUser)

	usr, err := svc.Authenticate(ctx, Credentials{Email: " ALICE@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, usr.ID)

	// every failure looks the same
	for _, creds := range []Credentials{
		{Email: "alice@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "s3cret-pass"},
		{Email: "ghost@example.com", Password: "anything"},
	} {
		_, err = svc.Authenticate(ctx, creds)
		assert.Equal(t, ErrInvalidCredentials, err, creds.Email)
	}

	_, err = svc.Authenticate(ctx, Credentials{Email: "alice@example.com"})
	assert.Equal(t, "required", failedTag(t, err))
}

func TestService_UpdateRole(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	usr := testutil.CreateIdentity(t, repo, "Bob", "bob@example.com", "s3cret-pass", RoleUser)

	for _, role := range []string{"superuser", ""} {
		_, err := svc.UpdateRole(ctx, RoleUpdate{UserID: usr.ID, Role: role})
		assert.Error(t, err, role)
	}
	stored, err := repo.GetIdentityByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, stored.Role)

	_, err = svc.UpdateRole(ctx, RoleUpdate{UserID: "missing", Role: "cr"})
	assert.Equal(t, ErrNotFound, err)

	updated, err := svc.UpdateRole(ctx, RoleUpdate{UserID: usr.ID, Role: " HOD "})
	require.NoError(t, err)
	assert.Equal(t, RoleHOD, updated.Role)
	assert.True(t, updated.IsAdmin())
}

func TestService_EnsureAdmin(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "", PasswordChange{Email: "Root@Example.com", Password: "t0p-s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "Admin", created.Name)
	assert.Equal(t, "root@example.com", created.Email)
	assert.Equal(t, RoleAdmin, created.Role)

	usr := testutil.CreateIdentity(t, repo, "Carol", "carol@example.com", "s3cret-pass", RoleUser)
	promoted, err := svc.EnsureAdmin(ctx, "Carol D", PasswordChange{Email: "carol@example.com", Password: "n3w-pass-word"})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, promoted.ID)
	assert.Equal(t, "Carol D", promoted.Name)
	assert.Equal(t, RoleAdmin, promoted.Role)
	assert.NoError(t, promoted.CheckPassword("n3w-pass-word"))

	_, err = svc.EnsureAdmin(ctx, "Dan", PasswordChange{Email: "dan@example.com", Password: "short"})
	assert.Equal(t, "pwdminlen", failedTag(t, err))
}

func TestService_SetPassword(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	testutil.CreateIdentity(t, repo, "Erin", "erin@example.com", "s3cret-pass", RoleUser)

	assert.Equal(t, ErrNotFound, svc.SetPassword(ctx, PasswordChange{Email: "nobody@example.com", Password: "n3w-pass-word"}))
	assert.Equal(t, "pwdtoosim", failedTag(t, svc.SetPassword(ctx, PasswordChange{Email: "erin@example.com", Password: "erin@example.com"})))

	require.NoError(t, svc.SetPassword(ctx, PasswordChange{Email: "ERIN@example.com", Password: "n3w-pass-word"}))
	_, err := svc.Authenticate(ctx, Credentials{Email: "erin@example.com", Password: "n3w-pass-word"})
	assert.NoError(t, err)
}

func TestParseRole(t *testing.T) {
	for _, r := range AllRoles {
		got, err := ParseRole(" " + string(r) + " ")
		assert.NoError(t, err)
		assert.Equal(t, r, got)
		assert.Equal(t, r != RoleUser, got.IsAdmin())
	}
	_, err := ParseRole("root")
	assert.Error(t, err)
}

package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cpgs-hub/backend/core/identity"
)

type identityGetterMock map[string]identity.Identity

func (m identityGetterMock) GetByID(_ context.Context, id string) (identity.Identity, error) {
	if id == "boom" {
		return identity.Identity{}, errors.New("connection reset")
	}
	if usr, ok := m[id]; ok {
		return usr, nil
	}
	return identity.Identity{}, identity.ErrNotFound
}

func newPolicy() *Policy {
	users := identityGetterMock{}
	for _, role := range identity.AllRoles {
		users[string(role)] = identity.Identity{ID: string(role), Role: role}
	}
	return NewPolicy(users)
}

func TestPolicy_RequireAdmin(t *testing.T) {
	p := newPolicy()
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "no identity", id: "", wantErr: ErrUnauthenticated},
		{name: "stale token", id: "deleted", wantErr: ErrNotFound},
		{name: "user", id: "user", wantErr: ErrForbidden},
		{name: "cr", id: "cr"},
		{name: "hod", id: "hod"},
		{name: "developer", id: "developer"},
		{name: "admin", id: "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := p.RequireAdmin(ctx, tt.id)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr == nil {
				assert.Equal(t, tt.id, usr.ID)
			}
		})
	}

	t.Run("store failure", func(t *testing.T) {
		_, err := p.RequireAdmin(ctx, "boom")
		assert.Error(t, err)
		assert.NotEqual(t, ErrNotFound, err)
	})
}

func TestPolicy_AuthorizeMatchesAdminRoles(t *testing.T) {
	p := newPolicy()
	for _, role := range identity.AllRoles {
		err := p.Authorize(identity.Identity{Role: role})
		if role == identity.RoleUser {
			assert.Equal(t, ErrForbidden, err, role)
		} else {
			assert.NoError(t, err, role)
		}
	}
	assert.Equal(t, ErrForbidden, p.Authorize(identity.Identity{Role: "superuser"}))
}

func TestPolicy_RequireOwnerOrAdmin(t *testing.T) {
	p := newPolicy()
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		owner   string
		wantErr error
	}{
		{name: "owner", id: "user", owner: "user"},
		{name: "someone else", id: "user", owner: "cr", wantErr: ErrForbidden},
		{name: "no owner recorded", id: "user", owner: "", wantErr: ErrForbidden},
		{name: "admin on foreign record", id: "hod", owner: "user"},
		{name: "admin on ownerless record", id: "admin", owner: ""},
		{name: "unauthenticated", id: "", owner: "user", wantErr: ErrUnauthenticated},
		{name: "stale token", id: "ghost", owner: "ghost", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.RequireOwnerOrAdmin(ctx, tt.id, tt.owner)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

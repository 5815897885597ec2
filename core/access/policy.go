// Package access holds the authorization policy applied to every privileged action.
package access

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/core/session"
)

var (
	ErrUnauthenticated = session.ErrUnauthenticated
	ErrForbidden       = errors.New("Unauthorized access")
	ErrNotFound        = errors.New("User not found")
)

// IdentityGetter loads identities; identity.Service satisfies it.
type IdentityGetter interface {
	GetByID(ctx context.Context, id string) (identity.Identity, error)
}

// Policy decides whether a verified identity may perform a privileged action.
//
//	Unauthenticated -> Authenticated -> Authorized
//	                                 \-> Forbidden
//	                \-> NotFound (identity gone since the token was issued)
type Policy struct {
	identities IdentityGetter
}

func NewPolicy(identities IdentityGetter) *Policy {
	return &Policy{identities: identities}
}

// Authorize fails with ErrForbidden unless usr holds one of identity.AdminRoles.
func (p *Policy) Authorize(usr identity.Identity) error {
	if !usr.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// Resolve loads the identity behind a verified session.
func (p *Policy) Resolve(ctx context.Context, identityID string) (identity.Identity, error) {
	if identityID == "" {
		return identity.Identity{}, ErrUnauthenticated
	}
	usr, err := p.identities.GetByID(ctx, identityID)
	if err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return identity.Identity{}, ErrNotFound
		}
		return identity.Identity{}, errors.Wrap(err, "loading identity")
	}
	return usr, nil
}

// RequireAdmin returns the identity if it still exists and holds an admin role.
func (p *Policy) RequireAdmin(ctx context.Context, identityID string) (identity.Identity, error) {
	usr, err := p.Resolve(ctx, identityID)
	if err != nil {
		return identity.Identity{}, err
	}
	if err = p.Authorize(usr); err != nil {
		return identity.Identity{}, err
	}
	return usr, nil
}

// RequireOwnerOrAdmin passes when the caller created the record (ownerID) or is an admin.
// Records without a known owner are admin-only.
func (p *Policy) RequireOwnerOrAdmin(ctx context.Context, identityID, ownerID string) (identity.Identity, error) {
	usr, err := p.Resolve(ctx, identityID)
	if err != nil {
		return identity.Identity{}, err
	}
	if ownerID != "" && usr.ID == ownerID {
		return usr, nil
	}
	if err = p.Authorize(usr); err != nil {
		return identity.Identity{}, err
	}
	return usr, nil
}

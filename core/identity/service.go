package identity

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
)

var (
	ErrNotFound           = core.NewNotFoundError("User not found")
	ErrEmailExists        = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid credentials")
)

type (
	Repository interface {
		// CreateIdentity returns ErrEmailExists if the email is taken.
		CreateIdentity(ctx context.Context, usr Identity) (Identity, error)
		GetIdentityByID(ctx context.Context, id string) (Identity, error)
		GetIdentityByEmail(ctx context.Context, email string) (Identity, error)
		// QueryIdentities returns every identity, newest first.
		QueryIdentities(ctx context.Context) ([]Identity, error)
		UpdateIdentity(ctx context.Context, usr Identity) (Identity, error)
		DeleteIdentity(ctx context.Context, id string) error
	}

	Service interface {
		Register(ctx context.Context, ni NewIdentity) (Identity, error)
		Authenticate(ctx context.Context, creds Credentials) (Identity, error)
		GetByID(ctx context.Context, id string) (Identity, error)
		GetByEmail(ctx context.Context, email string) (Identity, error)
		QueryAll(ctx context.Context) ([]Identity, error)
		UpdateRole(ctx context.Context, ru RoleUpdate) (Identity, error)
		UpdateProfile(ctx context.Context, id string, pu ProfileUpdate) (Identity, error)
		Delete(ctx context.Context, id string) error
		SetPassword(ctx context.Context, pc PasswordChange) error
		EnsureAdmin(ctx context.Context, name string, pc PasswordChange) (Identity, error)
	}

	service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, validate *validator.Validate) Service {
	return &service{repo: repo, validate: validate}
}

func (svc *service) Register(ctx context.Context, ni NewIdentity) (Identity, error) {
	ni.Clean()
	if err := svc.validate.Struct(ni); err != nil {
		return Identity{}, err
	}

	now := core.NowFunc()
	usr := Identity{
		Name:       ni.Name,
		Email:      ni.Email,
		Role:       RoleUser,
		RollNumber: ni.RollNumber,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(ni.Password); err != nil {
		return Identity{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateIdentity(ctx, usr)
	if err != nil {
		if err == ErrEmailExists {
			return Identity{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Identity{}, errors.Wrap(err, "creating identity")
	}
	return usr, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email and for a wrong password alike.
func (svc *service) Authenticate(ctx context.Context, creds Credentials) (Identity, error) {
	if err := svc.validate.Struct(creds); err != nil {
		return Identity{}, err
	}

	usr, err := svc.repo.GetIdentityByEmail(ctx, core.CleanString(creds.Email, true /* lower */))
	if err != nil {
		if err != ErrNotFound {
			return Identity{}, errors.Wrap(err, "finding identity by email")
		}
		usr = Identity{} // compare against the dummy hash anyway
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Identity, error) {
	if id == "" {
		return Identity{}, ErrNotFound
	}
	return svc.repo.GetIdentityByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Identity, error) {
	return svc.repo.GetIdentityByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) QueryAll(ctx context.Context) ([]Identity, error) {
	return svc.repo.QueryIdentities(ctx)
}

// UpdateRole validates the new role before the stored record is touched.
func (svc *service) UpdateRole(ctx context.Context, ru RoleUpdate) (Identity, error) {
	ru.Role = core.CleanString(ru.Role, true /* lower */)
	if err := svc.validate.Struct(ru); err != nil {
		return Identity{}, err
	}

	usr, err := svc.repo.GetIdentityByID(ctx, ru.UserID)
	if err != nil {
		return Identity{}, err
	}
	usr.Role = Role(ru.Role)
	usr.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateIdentity(ctx, usr)
}

func (svc *service) UpdateProfile(ctx context.Context, id string, pu ProfileUpdate) (Identity, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return Identity{}, err
	}
	if name := core.CleanString(pu.Name); name != "" {
		usr.Name = name
	}
	if pu.ProfilePicture != nil {
		usr.ProfilePicture = core.CleanString(*pu.ProfilePicture)
	}
	usr.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateIdentity(ctx, usr)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteIdentity(ctx, id)
}

func (svc *service) SetPassword(ctx context.Context, pc PasswordChange) error {
	usr, err := svc.GetByEmail(ctx, pc.Email)
	if err != nil {
		return err
	}
	pc.Email = usr.Email
	pc.Name = usr.Name
	if err = svc.validate.Struct(pc); err != nil {
		return err
	}
	if err = usr.SetPassword(pc.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = core.NowFunc()
	_, err = svc.repo.UpdateIdentity(ctx, usr)
	return err
}

// EnsureAdmin creates an admin identity, or promotes and re-keys the existing one with that email.
func (svc *service) EnsureAdmin(ctx context.Context, name string, pc PasswordChange) (Identity, error) {
	pc.Email = core.CleanString(pc.Email, true /* lower */)
	pc.Name = core.CleanString(name)
	if err := svc.validate.Struct(pc); err != nil {
		return Identity{}, err
	}

	usr, err := svc.repo.GetIdentityByEmail(ctx, pc.Email)
	switch err {
	case nil:
		if pc.Name != "" {
			usr.Name = pc.Name
		}
		usr.Role = RoleAdmin
		usr.UpdatedAt = core.NowFunc()
		if err = usr.SetPassword(pc.Password); err != nil {
			return Identity{}, errors.Wrap(err, "hashing password")
		}
		return svc.repo.UpdateIdentity(ctx, usr)
	case ErrNotFound:
		now := core.NowFunc()
		usr = Identity{
			Name:      pc.Name,
			Email:     pc.Email,
			Role:      RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if usr.Name == "" {
			usr.Name = "Admin"
		}
		if err = usr.SetPassword(pc.Password); err != nil {
			return Identity{}, errors.Wrap(err, "hashing password")
		}
		return svc.repo.CreateIdentity(ctx, usr)
	default:
		return Identity{}, errors.Wrap(err, "finding identity by email")
	}
}

package identity

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cpgs-hub/backend/core"
)

// Role is one of the closed set of account roles.
type Role string

// Roles
const (
	RoleUser      Role = "user"
	RoleCR        Role = "cr"
	RoleHOD       Role = "hod"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

var (
	AllRoles = []Role{RoleUser, RoleCR, RoleHOD, RoleDeveloper, RoleAdmin}

	// AdminRoles is the Admin-Roles Set: every role but RoleUser is administrative.
	// It is the only source consulted when gating admin access.
	AdminRoles = []Role{RoleAdmin, RoleDeveloper, RoleCR, RoleHOD}

	// hashCost is the bcrypt work factor for stored passwords.
	hashCost = bcrypt.DefaultCost

	dummyHash     []byte
	dummyHashOnce sync.Once
)

func ParseRole(s string) (Role, error) {
	r := Role(core.CleanString(s, true /* lower */))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether r belongs to AdminRoles.
func (r Role) IsAdmin() bool {
	for _, role := range AdminRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Identity is a registered account.
type Identity struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	RollNumber     string    `json:"rollNumber,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	PasswordHash   []byte    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"` // UTC
	UpdatedAt      time.Time `json:"updatedAt"` // UTC
}

func (i *Identity) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), hashCost)
	if err != nil {
		return err
	}
	i.PasswordHash = hash
	return nil
}

// CheckPassword compares pwd with the stored hash in constant time.
// Identities without a password (non-credential accounts) never match,
// but still pay for a comparison so the call costs the same.
func (i *Identity) CheckPassword(pwd string) error {
	if len(i.PasswordHash) == 0 {
		_ = bcrypt.CompareHashAndPassword(getDummyHash(), []byte(pwd))
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword(i.PasswordHash, []byte(pwd))
}

func (i *Identity) HasPassword() bool { return len(i.PasswordHash) > 0 }

func (i *Identity) IsAdmin() bool { return i.Role.IsAdmin() }

// Summary is the public shape returned by the auth endpoints.
func (i *Identity) Summary() Summary {
	return Summary{ID: i.ID, Name: i.Name, Email: i.Email, Role: i.Role}
}

type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

// getDummyHash is compared against when no stored hash exists, to keep
// "unknown email" and "wrong password" equally expensive.
func getDummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("cpgs-hub-no-password"), hashCost)
	})
	return dummyHash
}

// NewIdentity contains information needed to register a new Identity.
type NewIdentity struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RollNumber string `json:"rollNumber"`
}

func (ni *NewIdentity) Clean() {
	ni.Name = core.CleanString(ni.Name)
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.RollNumber = core.CleanString(ni.RollNumber)
}

// Credentials is the login input.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RoleUpdate is the admin role-update input.
type RoleUpdate struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required,role"`
}

// ProfileUpdate defines what an identity may change on its own record.
type ProfileUpdate struct {
	Name           string  `json:"name"`
	ProfilePicture *string `json:"profilePicture"`
}

// PasswordChange is used by operators to set a new password.
type PasswordChange struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"-"`
	Password string `json:"password" validate:"required"`
}

package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

const (
	// CookieName is the name of the cookie carrying the session token.
	CookieName = "token"

	StandardTTL = 7 * 24 * time.Hour
	AdminTTL    = 24 * time.Hour
)

// ErrUnauthenticated is returned for a missing, malformed, expired or forged token.
var ErrUnauthenticated = errors.New("Not authenticated")

var signingMethod = jwt.SigningMethodHS256

// Claims represents the session claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role,omitempty"`
}

// IdentityID is the id of the identity the session belongs to.
func (c Claims) IdentityID() string { return c.Subject }

// Token is a freshly issued session token.
type Token struct {
	Value     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// Manager issues and verifies stateless session tokens.
type Manager struct {
	key    []byte
	issuer string
	now    func() time.Time
}

func NewManager(secretKey, issuer string) *Manager {
	return &Manager{key: []byte(secretKey), issuer: issuer, now: time.Now}
}

// Issue signs a token for identityID that expires ttl from now. role is optional.
func (m *Manager) Issue(identityID, role string, ttl time.Duration) (Token, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    m.issuer,
			Subject:   identityID,
			IssuedAt:  now.Unix(),
			ExpiresAt: exp.Unix(),
		},
		Role: role,
	}

	ss, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.key)
	if err != nil {
		return Token{}, errors.Wrap(err, "signing token")
	}
	return Token{Value: ss, ExpiresAt: exp, TTL: ttl}, nil
}

// Verify checks the signature and the expiry of tokenStr. Every failure is ErrUnauthenticated.
func (m *Manager) Verify(tokenStr string) (Claims, error) {
	if tokenStr == "" {
		return Claims{}, ErrUnauthenticated
	}

	var claims Claims
	parser := &jwt.Parser{
		ValidMethods:         []string{signingMethod.Alg()},
		SkipClaimsValidation: true, // validated below against m.now
	}
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return m.key, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrUnauthenticated
	}

	now := m.now().Unix()
	if !claims.VerifyExpiresAt(now, true) || !claims.VerifyIssuedAt(now, false) || claims.Subject == "" {
		return Claims{}, ErrUnauthenticated
	}
	return claims, nil
}

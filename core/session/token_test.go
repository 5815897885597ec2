package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueVerify(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ttl := StandardTTL

	mgr := NewManager("secret", "CPGS Hub")
	mgr.now = func() time.Time { return issuedAt }

	tok, err := mgr.Issue("u-1", "admin", ttl)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(ttl), tok.ExpiresAt)

	forged, err := NewManager("other-secret", "CPGS Hub").Issue("u-1", "admin", ttl)
	require.NoError(t, err)

	parts := strings.Split(tok.Value, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name    string
		token   string
		at      time.Time
		wantErr error
	}{
		{name: "no token", token: "", at: issuedAt, wantErr: ErrUnauthenticated},
		{name: "malformed", token: "lmaooolol", at: issuedAt, wantErr: ErrUnauthenticated},
		{name: "tampered payload", token: tampered, at: issuedAt, wantErr: ErrUnauthenticated},
		{name: "wrong signature", token: forged.Value, at: issuedAt, wantErr: ErrUnauthenticated},
		{name: "fresh", token: tok.Value, at: issuedAt},
		{name: "one second before expiry", token: tok.Value, at: issuedAt.Add(ttl - time.Second)},
		{name: "one second after expiry", token: tok.Value, at: issuedAt.Add(ttl + time.Second), wantErr: ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr.now = func() time.Time { return tt.at }

			claims, err := mgr.Verify(tt.token)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u-1", claims.IdentityID())
			assert.Equal(t, "admin", claims.Role)
		})
	}
}

func TestManager_AdminTTL(t *testing.T) {
	issuedAt := time.Now()
	mgr := NewManager("secret", "CPGS Hub")
	mgr.now = func() time.Time { return issuedAt }

	tok, err := mgr.Issue("u-2", "", AdminTTL)
	require.NoError(t, err)

	mgr.now = func() time.Time { return issuedAt.Add(AdminTTL - time.Second) }
	claims, err := mgr.Verify(tok.Value)
	require.NoError(t, err)
	assert.Empty(t, claims.Role)

	mgr.now = func() time.Time { return issuedAt.Add(AdminTTL + time.Second) }
	_, err = mgr.Verify(tok.Value)
	assert.Equal(t, ErrUnauthenticated, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("Alice@Example.com", "Alice", "https://img/alice.png")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)

	member := claims.Member()
	assert.Equal(t, "alice@example.com", member.ID)
	assert.Equal(t, "Alice", member.Name)
	assert.Equal(t, "https://img/alice.png", member.Avatar)
}

func TestMember_NameFallsBackToEmailLocalPart(t *testing.T) {
	c := &Claims{Email: "bob@example.com"}
	assert.Equal(t, "bob", c.Member().Name)
}

func TestValidate_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	good, err := m.Generate("alice@example.com", "", "")
	require.NoError(t, err)

	other := NewJWTManager("other-secret", time.Hour)
	expired := NewJWTManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Generate("alice@example.com", "", "")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Email: "alice@example.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]struct {
		manager *JWTManager
		token   string
	}{
		"wrong secret":  {other, good},
		"expired":       {m, old},
		"alg none":      {m, none},
		"garbage":       {m, "not.a.token"},
		"missing email": {m, noEmail},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tt.manager.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = m.Generate("", "", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

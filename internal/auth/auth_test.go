package auth

import (
	"testing"
	"time"

	"igire/backend/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("s3cret")
	instID := "i-1"

	raw, err := tokens.Issue(&models.User{ID: "u-1", Role: models.RoleInstitution, InstitutionID: &instID})
	require.NoError(t, err)

	id, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, &Identity{UserID: "u-1", Role: models.RoleInstitution, InstitutionID: "i-1"}, id)
}

func TestVerify_Rejects(t *testing.T) {
	tokens := NewTokens("s3cret")
	raw, err := tokens.Issue(&models.User{ID: "u-1", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = NewTokens("other").Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	expired := NewTokens("s3cret")
	expired.now = func() time.Time { return time.Now().Add(-TokenTTL - time.Hour) }
	old, err := expired.Issue(&models.User{ID: "u-1", Role: models.RoleUser})
	require.NoError(t, err)
	_, err = tokens.Verify(old)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "u-1", "role": "admin", "iss": issuer, "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")

	_, err = tokens.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RequiresKnownRole(t *testing.T) {
	tokens := NewTokens("s3cret")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1", "role": "superuser", "iss": issuer, "exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("muraho123")
	require.NoError(t, err)

	assert.NotEqual(t, "muraho123", hash)
	assert.True(t, CheckPassword(hash, "muraho123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

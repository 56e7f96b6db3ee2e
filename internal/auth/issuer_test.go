package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/stretchr/testify/require"
)

func orgID(v uint64) *uint64 { return &v }

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", 0)
	require.Equal(t, 2*time.Hour, issuer.TTL())

	user := &models.User{ID: 42, Email: "a@x.com", OrganizationID: orgID(7)}
	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.ID)
	require.Equal(t, "a@x.com", claims.Email)
	require.True(t, claims.HasOrganization())
	require.Equal(t, uint64(7), *claims.OrganizationID)
	require.Equal(t, "42", claims.Subject)
	require.WithinDuration(t, claims.IssuedAt.Add(2*time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestIssuer_NoOrganization(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	token, err := issuer.Issue(&models.User{ID: 1, Email: "solo@x.com"})
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Nil(t, claims.OrganizationID)
	require.False(t, claims.HasOrganization())
}

func TestIssuer_Expired(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer("secret", 2*time.Hour).WithClock(func() time.Time { return issued })

	token, err := issuer.Issue(&models.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	later := issuer.WithClock(func() time.Time { return issued.Add(2*time.Hour + time.Minute) })
	_, err = later.Verify(token)
	require.ErrorIs(t, err, ErrExpiredToken)

	stillValid := issuer.WithClock(func() time.Time { return issued.Add(119 * time.Minute) })
	_, err = stillValid.Verify(token)
	require.NoError(t, err)
}

func TestIssuer_RejectsForeignSecret(t *testing.T) {
	token, err := NewIssuer("one", time.Hour).Issue(&models.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	_, err = NewIssuer("two", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		ID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Verify(token)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestIssuer_RejectsGarbage(t *testing.T) {
	_, err := NewIssuer("secret", time.Hour).Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

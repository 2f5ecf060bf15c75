package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier("secret")

	tok, err := v.Issue("user-1", time.Hour)
	require.NoError(t, err)

	uid, err := v.VerifyToken(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier("secret")
	ctx := context.Background()

	expired, err := v.Issue("user-1", -time.Minute)
	require.NoError(t, err)
	_, err = v.VerifyToken(ctx, expired)
	assert.Error(t, err)

	other, err := NewJWTVerifier("other").Issue("user-1", time.Hour)
	require.NoError(t, err)
	_, err = v.VerifyToken(ctx, other)
	assert.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.VerifyToken(ctx, noExp)
	assert.Error(t, err)

	_, err = v.VerifyToken(ctx, "not-a-token")
	assert.Error(t, err)
}

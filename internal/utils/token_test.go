package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	loginToken, err := NewLoginToken()
	require.NoError(t, err)
	require.Len(t, loginToken, 12)

	signed, err := GenerateSessionToken(42, loginToken)
	require.NoError(t, err)

	claims, err := ValidateToken(signed)
	require.NoError(t, err)

	id, ok := AccountIDFromClaims(claims)
	require.True(t, ok)
	assert.EqualValues(t, 42, id)
	assert.Equal(t, loginToken, claims["token"])
}

func TestResetTokenCarriesAccountID(t *testing.T) {
	signed, err := GenerateResetToken(7)
	require.NoError(t, err)

	claims, err := ValidateToken(signed)
	require.NoError(t, err)

	id, ok := AccountIDFromClaims(claims)
	require.True(t, ok)
	assert.EqualValues(t, 7, id)
	assert.Nil(t, claims["token"])
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("Authorization", "Bearer abc123")

	token, err := ExtractToken(c)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	c.Request.Header.Set("Authorization", "Basic abc123")
	_, err = ExtractToken(c)
	assert.Error(t, err)

	c.Request.Header.Del("Authorization")
	_, err = ExtractToken(c)
	assert.Error(t, err)
}

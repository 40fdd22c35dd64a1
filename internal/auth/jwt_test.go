package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret!"

func TestSessionToken_RoundTrip(t *testing.T) {
	token, err := GenerateSessionToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestSessionToken_Expired(t *testing.T) {
	token, err := GenerateSessionToken(testSecret, 42, -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(testSecret, token)
	assert.Error(t, err)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	token, err := GenerateSessionToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken("another-secret-another-secret-12345", token)
	assert.Error(t, err)
}

func TestSessionToken_Tampered(t *testing.T) {
	token, err := GenerateSessionToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(testSecret, token+"x")
	assert.Error(t, err)
}

func TestOTPToken_RoundTrip(t *testing.T) {
	token, err := GenerateOTPToken(testSecret, 7, "123456")
	require.NoError(t, err)

	claims, err := ParseOTPToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "123456", claims.OTP)
}

func TestGenerateOTP_SixDigits(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenAndParseToken(t *testing.T) {
	aToken, rToken, err := GenToken("hh-1", "m-1", []byte(testSecret), 30*time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, aToken)
	require.NotEmpty(t, rToken)

	claims, err := ParseToken(aToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "hh-1", claims.HouseholdId)
	assert.Equal(t, "m-1", claims.MemberId)
}

// Config carries real duration strings ("2h", "168h"), so the expiry must be
// added as-is. A token issued with those values has to be valid right away
// and expire at the configured time, not before.
func TestGenTokenConfigDurations(t *testing.T) {
	aToken, _, err := GenToken("hh-1", "m-1", []byte(testSecret), 2*time.Hour, 168*time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(aToken, testSecret)
	require.NoError(t, err)

	require.NotNil(t, claims.ExpiresAt)
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, time.Hour)
	assert.LessOrEqual(t, remaining, 2*time.Hour)
}

func TestParseToken_WrongSecret(t *testing.T) {
	aToken, _, err := GenToken("hh-1", "m-1", []byte(testSecret), 30*time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(aToken, "other-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	aToken, _, err := GenToken("hh-1", "m-1", []byte(testSecret), -time.Minute, time.Hour)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = ParseToken(aToken, testSecret)
	assert.Error(t, err)
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 8*time.Hour)

	token, err := manager.GenerateToken(42, "admin@pfc.com", "Dr. Chandrika", "ADMIN", 7, "prashanti")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@pfc.com", claims.Email)
	assert.Equal(t, "Dr. Chandrika", claims.Name)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, uint(7), claims.ClinicID)
	assert.Equal(t, "prashanti", claims.ClinicSlug)
}

func TestVerifyTokenPlatformAdmin(t *testing.T) {
	manager := NewJWTManager("test-secret", 8*time.Hour)

	// 平台管理员无诊所归属
	token, err := manager.GenerateToken(1, "admin@platform.com", "Platform Admin", "SUPER_ADMIN", 0, "")
	require.NoError(t, err)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "SUPER_ADMIN", claims.Role)
	assert.Equal(t, uint(0), claims.ClinicID)
	assert.Empty(t, claims.ClinicSlug)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.GenerateToken(42, "admin@pfc.com", "Dr. Chandrika", "ADMIN", 7, "prashanti")
	require.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTamperedToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 8*time.Hour)
	other := NewJWTManager("other-secret", 8*time.Hour)

	token, err := other.GenerateToken(42, "admin@pfc.com", "Dr. Chandrika", "ADMIN", 7, "prashanti")
	require.NoError(t, err)

	// 不同密钥签发的令牌必须拒绝
	_, err = manager.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyMalformedToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 8*time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := manager.VerifyToken(token)
		assert.Error(t, err)
	}
}

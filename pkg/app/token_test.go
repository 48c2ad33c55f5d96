package app

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey: "user-secret",
		Expiry:    24 * time.Hour,
		Issuer:    "user-issuer",
	}
	tm := NewTokenManager(cfg)

	uid := int64(1001)
	nickname := "testuser"
	email := "test@example.com"

	// 1. 测试生成和解析
	token, err := tm.Generate(uid, nickname, email)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	parsedUser, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsedUser.UID != uid {
		t.Errorf("Expected UID %d, got %d", uid, parsedUser.UID)
	}
	if parsedUser.Nickname != nickname {
		t.Errorf("Expected Nickname %s, got %s", nickname, parsedUser.Nickname)
	}
	if parsedUser.Email != email {
		t.Errorf("Expected Email %s, got %s", email, parsedUser.Email)
	}
	if parsedUser.Issuer != cfg.Issuer {
		t.Errorf("Expected Issuer %s, got %s", cfg.Issuer, parsedUser.Issuer)
	}

	// 2. 测试过期
	shortExpiryCfg := cfg
	shortExpiryCfg.Expiry = -1 * time.Second
	tmExpired := NewTokenManager(shortExpiryCfg)

	expiredToken, err := tmExpired.Generate(uid, nickname, email)
	if err != nil {
		t.Fatalf("Generate (expired) failed: %v", err)
	}

	_, err = tm.Parse(expiredToken)
	if err == nil {
		t.Error("Expected error for expired token, but got nil")
	}

	// 3. 测试错误的密钥
	wrongKeyCfg := cfg
	wrongKeyCfg.SecretKey = "wrong-user-secret"
	tmWrongKey := NewTokenManager(wrongKeyCfg)

	wrongToken, _ := tmWrongKey.Generate(uid, nickname, email)
	_, err = tm.Parse(wrongToken)
	if err == nil {
		t.Error("Expected error for token generated with different secret key, but got nil")
	}

	// 4. 测试篡改后的 Token
	tamperedToken := token + "xyz"
	_, err = tm.Parse(tamperedToken)
	if err == nil {
		t.Error("Expected error for tampered user token, but got nil")
	}
}

func TestParseTokenWithKey_BearerPrefix(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "k"})
	token, err := tm.Generate(7, "n", "")
	require.NoError(t, err)

	user, err := ParseTokenWithKey("Bearer "+token, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.UID)

	_, err = ParseTokenWithKey(token, "")
	assert.Error(t, err)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), &UserEntity{UID: 3})
	user, ok := PrincipalFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(3), user.UID)
}

func TestSetTokenToContextWithKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm := NewTokenManager(TokenConfig{SecretKey: "k"})
	token, _ := tm.Generate(42, "alice", "a@example.com")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)

	require.NoError(t, SetTokenToContextWithKey(c, token, "k"))
	assert.Equal(t, int64(42), GetUID(c))

	user, ok := PrincipalFromContext(c.Request.Context())
	assert.True(t, ok)
	assert.Equal(t, "alice", user.Nickname)
}

package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/KamineHiro/shift-maker/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:  "test-secret-key-for-unit-testing-2026",
		SessionTTL: 24 * time.Hour,
	})
}

func TestGenerateAndParseSessionToken(t *testing.T) {
	m := newTestManager()

	token, issued, err := m.GenerateSessionToken("group-1", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateSessionToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.GroupID != "group-1" {
		t.Errorf("期望 GroupID=group-1，实际=%s", claims.GroupID)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("期望 Role=admin，实际=%s", claims.Role)
	}
	if claims.Issuer != "shift-maker" {
		t.Errorf("期望 Issuer=shift-maker，实际=%s", claims.Issuer)
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Errorf("JTI 应与签发时一致，实际=%s", claims.ID)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Errorf("会话 TTL 期望约24h，实际=%v", ttl)
	}
}

func TestParseToken_UniqueJTI(t *testing.T) {
	m := newTestManager()

	_, c1, _ := m.GenerateSessionToken("group-1", RoleStaff)
	_, c2, _ := m.GenerateSessionToken("group-1", RoleStaff)

	if c1.ID == c2.ID {
		t.Error("两次签发的 JTI 不应相同")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:  "test-secret-key-for-unit-testing-2026",
		SessionTTL: -time.Minute,
	})

	token, _, err := m.GenerateSessionToken("group-1", RoleStaff)
	if err != nil {
		t.Fatalf("GenerateSessionToken 失败: %v", err)
	}

	if _, err := m.ParseToken(token); err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际=%v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewManager(&config.AuthConfig{
		JWTSecret:  "another-secret-key-for-unit-test",
		SessionTTL: time.Hour,
	})

	token, _, _ := other.GenerateSessionToken("group-1", RoleAdmin)
	if _, err := m.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := newTestManager()
	if _, err := m.ParseToken("not-a-token"); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}

func TestParseToken_UnknownRole(t *testing.T) {
	m := newTestManager()

	claims := &Claims{
		GroupID: "group-1",
		Role:    "root",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "shift-maker",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	if _, err := m.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("未知角色应视为无效，实际=%v", err)
	}
}

package application

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-booking/internal/clock"
	"github.com/sanosuguru/go-event-booking/internal/domain/actor"
)

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name     string
		input    LoginInput
		wantID   int64
		wantRole actor.Role
		wantName string
	}{
		{"デモユーザー", LoginInput{Email: "user@demo.com", Password: "any"}, 1, actor.RoleUser, "John Doe"},
		{"デモ管理者", LoginInput{Email: "Admin@Demo.com ", Password: "any"}, 2, actor.RoleAdmin, "Admin User"},
		{"未登録のメールアドレス", LoginInput{Email: "alice@example.com"}, 3, actor.RoleUser, "alice"},
		{"名前を指定", LoginInput{Email: "bob@example.com", Name: "Bob"}, 4, actor.RoleUser, "Bob"},
	}

	s := NewAuthService("test-secret", time.Hour, clock.NewFixed(testNow))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Login(context.Background(), tt.input)
			require.NoError(t, err)

			assert.NotEmpty(t, result.Token)
			assert.Equal(t, testNow.Add(time.Hour), result.ExpiresAt)
			assert.Equal(t, tt.wantID, result.Actor.UserID)
			assert.Equal(t, tt.wantRole, result.Actor.Role)
			assert.Equal(t, tt.wantName, result.Actor.Name)
		})
	}

	t.Run("同じメールアドレスには同じIDを返す", func(t *testing.T) {
		result, err := s.Login(context.Background(), LoginInput{Email: "alice@example.com"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Actor.UserID)
	})

	t.Run("メールアドレスは必須", func(t *testing.T) {
		_, err := s.Login(context.Background(), LoginInput{Email: "  "})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_ParseToken(t *testing.T) {
	clk := clock.NewFixed(testNow)
	s := NewAuthService("test-secret", time.Hour, clk)

	result, err := s.Login(context.Background(), LoginInput{Email: "admin@demo.com"})
	require.NoError(t, err)

	t.Run("発行したトークンを検証できる", func(t *testing.T) {
		a, err := s.ParseToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, actor.Actor{UserID: 2, Name: "Admin User", Email: "admin@demo.com", Role: actor.RoleAdmin}, a)
	})

	t.Run("別の鍵で署名されたトークン", func(t *testing.T) {
		other := NewAuthService("other-secret", time.Hour, clk)
		_, err := other.ParseToken(result.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("不正な文字列", func(t *testing.T) {
		_, err := s.ParseToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("不明なロール", func(t *testing.T) {
		claims := UserClaims{
			UserID: 9,
			Role:   "superuser",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = s.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("期限切れのトークン", func(t *testing.T) {
		clk.Advance(2 * time.Hour)
		defer clk.Advance(-2 * time.Hour)

		_, err := s.ParseToken(result.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

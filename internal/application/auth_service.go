package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/clock"
	"github.com/sanosuguru/go-event-booking/internal/domain/actor"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

// デモアカウント
const (
	DemoUserEmail  = "user@demo.com"
	DemoAdminEmail = "admin@demo.com"
)

// UserClaims はトークンに載せる利用者情報
type UserClaims struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type demoUser struct {
	id   int64
	name string
	role actor.Role
}

// AuthService はデモ用のログインとトークン検証を行う
// パスワードは検証せず、メールアドレスごとにユーザーIDを払い出す
type AuthService struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock

	mu     sync.Mutex
	users  map[string]demoUser
	nextID int64
}

func NewAuthService(secret string, ttl time.Duration, clk clock.Clock) *AuthService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &AuthService{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
		users: map[string]demoUser{
			DemoUserEmail:  {id: 1, name: "John Doe", role: actor.RoleUser},
			DemoAdminEmail: {id: 2, name: "Admin User", role: actor.RoleAdmin},
		},
		nextID: 3,
	}
}

type LoginInput struct {
	Email    string
	Password string
	// 空の場合はメールアドレスのローカル部を使う
	Name string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Actor     actor.Actor
}

// Login は任意の認証情報を受け付けてトークンを発行する
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	a := s.resolve(email, strings.TrimSpace(input.Name))

	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)
	claims := UserClaims{
		UserID: a.UserID,
		Name:   a.Name,
		Email:  a.Email,
		Role:   string(a.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", a.UserID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		logger.Error("トークンの署名に失敗", zap.Int64("user_id", a.UserID), zap.Error(err))
		return nil, fmt.Errorf("トークンの発行に失敗: %w", err)
	}

	logger.Info("ログインしました", zap.Int64("user_id", a.UserID), zap.String("role", string(a.Role)))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Actor: a}, nil
}

// ParseToken はトークンを検証して操作者を返す
func (s *AuthService) ParseToken(tokenString string) (actor.Actor, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return actor.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, err := actor.ParseRole(claims.Role)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID <= 0 {
		return actor.Actor{}, fmt.Errorf("%w: user_id がありません", ErrInvalidToken)
	}
	return actor.Actor{
		UserID: claims.UserID,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   role,
	}, nil
}

func (s *AuthService) resolve(email, name string) actor.Actor {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		u = demoUser{id: s.nextID, role: actor.RoleUser}
		s.nextID++
	}
	if name != "" {
		u.name = name
	}
	if u.name == "" {
		u.name = strings.SplitN(email, "@", 2)[0]
	}
	s.users[email] = u

	return actor.Actor{UserID: u.id, Name: u.name, Email: email, Role: u.role}
}

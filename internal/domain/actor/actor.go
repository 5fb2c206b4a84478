package actor

import (
	"errors"
	"strings"
)

// Role は操作者の権限を表す
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var ErrUnknownRole = errors.New("不明なロールです")

// ParseRole は文字列からロールを解釈する
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", ErrUnknownRole
}

// Actor は現在の操作者を表す
type Actor struct {
	UserID int64
	Name   string
	Email  string
	Role   Role
}

// IsAdmin は管理者かを返す
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess は指定ユーザーの資源にアクセスできるかを返す
func (a Actor) CanAccess(ownerID int64) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

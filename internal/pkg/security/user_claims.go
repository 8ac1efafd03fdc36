package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	JWTIssuer                = "Agora"
	JWTExpirationTime        = time.Hour * 24
	defaultJWTSecret  string = "Agora"
)

// UserClaims Token 中携带的用户身份与角色
type UserClaims struct {
	UserID uint64   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

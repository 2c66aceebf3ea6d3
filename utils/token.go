package authUtils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrInvalidToken covers every verification failure: bad signature, expiry,
// malformed input, wrong algorithm. Callers get no finer detail on purpose.
var ErrInvalidToken = errors.New("invalid or expired token")

// ActionReset marks a token as usable only for the password-reset flow.
const ActionReset = "reset"

// Claims is the identity a token carries. Role is set on session tokens,
// Action on single-purpose tokens.
type Claims struct {
	Subject string
	Role    string
	Action  string
}

// TokenService signs and verifies HS256 tokens. The secret is injected at
// construction and immutable for the process lifetime.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret []byte) *TokenService {
	return &TokenService{secret: secret}
}

// Issue produces a signed token embedding claims, expiring ttl from now.
func (s *TokenService) Issue(claims Claims, ttl time.Duration) (string, error) {
	mapClaims := jwt.MapClaims{
		"sub": claims.Subject,
		"exp": time.Now().Add(ttl).Unix(),
	}
	if claims.Role != "" {
		mapClaims["role"] = claims.Role
	}
	if claims.Action != "" {
		mapClaims["action"] = claims.Action
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string. Any failure, including garbage
// input, comes back as ErrInvalidToken; Verify never panics.
func (s *TokenService) Verify(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if action, ok := mapClaims["action"].(string); ok {
		claims.Action = action
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

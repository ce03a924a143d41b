package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

// Claims is what an access token says about its bearer.
type Claims struct {
	UserID  string
	IsAdmin bool
}

// TokenService creates and validates HS256 access tokens.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secretKey: []byte(secret), ttl: tokenTTL, now: time.Now}
}

// Issue signs a token carrying userId and isAdmin that expires after one day.
func (s *TokenService) Issue(userID string, isAdmin bool) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"userId":  userID,
		"isAdmin": isAdmin,
		"exp":     now.Add(s.ttl).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Validate parses tokenStr and returns its claims if the signature and
// expiry check out.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, ok := mc["userId"].(string)
	if !ok || userID == "" {
		return nil, errors.New("token is missing userId")
	}
	isAdmin, _ := mc["isAdmin"].(bool)
	return &Claims{UserID: userID, IsAdmin: isAdmin}, nil
}

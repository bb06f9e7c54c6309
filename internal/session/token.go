package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The session cookie carries a signed token wrapping the session id,
// so a client cannot forge or swap ids.

type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: "shopfront",
	}
}

type cookieClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) Issue(sid string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := cookieClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse returns the session id from a cookie token, or an error for
// anything expired, tampered with, or signed differently.
func (t *TokenMaker) Parse(tokenStr string) (string, error) {
	var c cookieClaims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", errors.New("invalid session token")
	}
	if c.Issuer != "" && c.Issuer != t.issuer {
		return "", errors.New("invalid issuer")
	}
	if c.SID == "" {
		return "", errors.New("empty session id")
	}

	return c.SID, nil
}

package main

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// AccessClaims is the payload carried by an access token.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only the subject; refresh tokens assert identity, not profile data.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenCodec mints and verifies the access/refresh token pair against a single
// HMAC secret. The secret is injected at construction so tests can use a
// deterministic one. AccessTTL and RefreshTTL default to 1h and 7d; tests
// override them to mint already-expired tokens instead of sleeping.
type TokenCodec struct {
	secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(secret),
		AccessTTL:  accessTokenTTL,
		RefreshTTL: refreshTokenTTL,
	}
}

// MintAccess signs a short-lived token asserting {id, email}.
func (tc *TokenCodec) MintAccess(id uint, email string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.secret)
}

// MintRefresh signs a long-lived token asserting only {id}.
func (tc *TokenCodec) MintRefresh(id uint) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.secret)
}

// VerifyAccess checks signature and expiry and returns the decoded claims.
func (tc *TokenCodec) VerifyAccess(tokenString string) (*AccessClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// VerifyRefresh checks a refresh token and returns the user id it asserts.
// Invalid, expired and malformed tokens are indistinguishable to callers: all
// report ok=false.
func (tc *TokenCodec) VerifyRefresh(tokenString string) (uint, bool) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &RefreshClaims{}, func(t *jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}
	claims, ok := token.Claims.(*RefreshClaims)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// subjectID parses the numeric user id out of access claims.
func (c *AccessClaims) subjectID() (uint, bool) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

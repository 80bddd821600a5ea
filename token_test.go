package main

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	token, err := codec.MintAccess(42, "a@x.com")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	claims, err := codec.VerifyAccess(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email mismatch: got %q", claims.Email)
	}
	id, ok := claims.subjectID()
	if !ok || id != 42 {
		t.Fatalf("subject mismatch: got %d ok=%v", id, ok)
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	codec.AccessTTL = -time.Minute
	token, err := codec.MintAccess(42, "a@x.com")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := codec.VerifyAccess(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestAccessTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenCodec("secret-one").MintAccess(1, "a@x.com")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := NewTokenCodec("secret-two").VerifyAccess(token); err == nil {
		t.Fatal("expected token signed with a different secret to fail verification")
	}
}

func TestUnsignedTokenRejected(t *testing.T) {
	// alg=none must never pass the HS256-only parser
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}
	codec := NewTokenCodec("test-secret")
	if _, err := codec.VerifyAccess(token); err == nil {
		t.Fatal("expected unsigned token to fail access verification")
	}
	if _, ok := codec.VerifyRefresh(token); ok {
		t.Fatal("expected unsigned token to fail refresh verification")
	}
}

func TestRefreshTokenVerify(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	token, err := codec.MintRefresh(7)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	id, ok := codec.VerifyRefresh(token)
	if !ok || id != 7 {
		t.Fatalf("expected id 7, got %d ok=%v", id, ok)
	}
	if _, ok := codec.VerifyRefresh("not-a-token"); ok {
		t.Fatal("expected malformed token to be rejected")
	}
	if _, ok := NewTokenCodec("other-secret").VerifyRefresh(token); ok {
		t.Fatal("expected token signed with a different secret to be rejected")
	}
}

func TestExpiredRefreshTokenRejected(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	codec.RefreshTTL = -time.Minute
	token, err := codec.MintRefresh(7)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, ok := codec.VerifyRefresh(token); ok {
		t.Fatal("expected expired refresh token to be rejected")
	}
}

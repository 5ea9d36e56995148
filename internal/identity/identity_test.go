package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPeek(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{
		"sub": "user-42",
		"iss": "waylis",
		"exp": exp.Unix(),
	})

	claims, err := Peek(token)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if claims.Subject != "user-42" || claims.Issuer != "waylis" {
		t.Errorf("claims: got %+v", claims)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("expiry: got %v, want %v", claims.ExpiresAt, exp)
	}
	if claims.Expired() {
		t.Error("token expires in an hour, must not read as expired")
	}
}

func TestPeekExpiredAndEdgeCases(t *testing.T) {
	expired := signedToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	claims, err := Peek(expired)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if !claims.Expired() {
		t.Error("past expiry must read as expired")
	}

	// No expiry claim at all.
	eternal := signedToken(t, jwt.MapClaims{"sub": "user-42"})
	claims, err = Peek(eternal)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if claims.Expired() {
		t.Error("a token without expiry never expires")
	}

	if _, err := Peek(""); err == nil {
		t.Error("empty token must error")
	}
	if _, err := Peek("not-a-jwt"); err == nil {
		t.Error("garbage token must error")
	}
}

package auth_test

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/exceptions"
)

func TestJWTVerifier(t *testing.T) {
	verifier := auth.JWTVerifier{Secret: []byte("test-secret")}
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:    "Sari",
		Picture: "https://example.com/sari.png",
	}
	token, err := verifier.Sign(claims)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	t.Run("ParseBearer", func(t *testing.T) {
		parsed, err := verifier.ParseBearer("Bearer " + token)
		if err != nil {
			t.Fatalf("Failed to parse token: %v", err)
		}
		identity := parsed.Identity()
		if identity.Id != "user-1" || identity.DisplayName != "Sari" {
			t.Fatalf("Unexpected identity: %v", identity)
		}
		if identity.PhotoURL == nil || *identity.PhotoURL != "https://example.com/sari.png" {
			t.Fatalf("Expected photo URL on identity: %v", identity)
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := auth.JWTVerifier{Secret: []byte("other")}
		if _, err := other.Parse(token); err == nil {
			t.Fatalf("Expected a failure with the wrong secret")
		}
	})

	t.Run("NotBearer", func(t *testing.T) {
		if _, err := verifier.ParseBearer(token); err == nil {
			t.Fatalf("Expected a failure without the bearer prefix")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		expired := claims
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		token, err := verifier.Sign(expired)
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}
		if _, err := verifier.Parse(token); err == nil {
			t.Fatalf("Expected expired token to fail")
		}
	})
}

func TestRequire(t *testing.T) {
	provider := auth.ContextProvider{}
	if _, err := auth.Require(context.Background(), provider, "comment"); !exceptions.IsUnauthorized(err) {
		t.Fatalf("Expected Unauthorized for anonymous caller, got %v", err)
	}
	ctx := auth.WithIdentity(context.Background(), auth.Identity{Id: "u1", DisplayName: "Budi"})
	identity, err := auth.Require(ctx, provider, "comment")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if identity.Id != "u1" {
		t.Fatalf("Unexpected identity: %v", identity)
	}
	blank := auth.WithIdentity(context.Background(), auth.Identity{Id: "  "})
	if _, err := auth.Require(blank, provider, "comment"); !exceptions.IsUnauthorized(err) {
		t.Fatalf("Expected Unauthorized for blank id, got %v", err)
	}
}

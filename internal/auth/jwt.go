package auth

import (
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	jwt.RegisteredClaims
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

func (c *Claims) Identity() Identity {
	identity := Identity{
		Id:          c.Subject,
		DisplayName: c.Name,
	}
	if c.Picture != "" {
		picture := c.Picture
		identity.PhotoURL = &picture
	}
	return identity
}

// ClaimsMap flattens the claims into the shape API Gateway hands to the router.
func (c *Claims) ClaimsMap() map[string]string {
	claims := map[string]string{
		"sub":  c.Subject,
		"name": c.Name,
	}
	if c.Picture != "" {
		claims["picture"] = c.Picture
	}
	return claims
}

type JWTVerifier struct {
	Secret []byte
}

func (v JWTVerifier) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// ParseBearer accepts an Authorization header value of the form "Bearer <token>".
func (v JWTVerifier) ParseBearer(header string) (*Claims, error) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errors.New("authorization header is not a bearer token")
	}
	return v.Parse(strings.TrimSpace(parts[1]))
}

// Sign issues an HS256 token for claims. Used by local tooling and tests.
func (v JWTVerifier) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.Secret)
}

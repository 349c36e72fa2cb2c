// Package auth resolves the caller identity that mutating operations require.
package auth

import (
	"context"
	"strings"

	"recipeshare.me/recipes/internal/data"
	"recipeshare.me/recipes/internal/exceptions"
)

type Identity struct {
	Id          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

// Snapshot captures the display fields denormalized onto comments and messages.
func (i Identity) Snapshot() data.AuthorDTO {
	return data.AuthorDTO{
		Id:          i.Id,
		DisplayName: i.DisplayName,
		PhotoURL:    i.PhotoURL,
	}
}

// Provider exposes the identity of the current caller, nil when anonymous.
type Provider interface {
	CurrentIdentity(ctx context.Context) *Identity
}

type ctxKeyIdentity struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity{}, identity)
}

func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ctxKeyIdentity{}).(Identity)
	return identity, ok
}

// ContextProvider reads the identity placed on the context by the router.
type ContextProvider struct{}

func (ContextProvider) CurrentIdentity(ctx context.Context) *Identity {
	if identity, ok := FromContext(ctx); ok {
		return &identity
	}
	return nil
}

// Require resolves an authenticated identity or fails with Unauthorized.
func Require(ctx context.Context, provider Provider, action string) (Identity, error) {
	identity := provider.CurrentIdentity(ctx)
	if identity == nil || strings.TrimSpace(identity.Id) == "" {
		return Identity{}, exceptions.Unauthorized(action)
	}
	return *identity, nil
}

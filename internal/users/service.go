// Package users keeps the public profile shown next to a user's content.
package users

import (
	"context"

	"recipeshare.me/recipes/internal/auth"
	"recipeshare.me/recipes/internal/content"
	"recipeshare.me/recipes/internal/data"
)

const MaxDisplayNameLength = 80

type Service struct {
	Users     data.UserRepository
	Identity  auth.Provider
	Sanitizer *content.Sanitizer
}

func NewService(users data.UserRepository, identity auth.Provider) *Service {
	return &Service{
		Users:     users,
		Identity:  identity,
		Sanitizer: content.NewSanitizer(),
	}
}

// EnsureProfile creates or refreshes the caller's profile. Fields missing
// from input fall back to the identity's claims.
func (s *Service) EnsureProfile(ctx context.Context, input data.UserInputDTO) (data.UserDTO, error) {
	identity, err := auth.Require(ctx, s.Identity, "update a profile")
	if err != nil {
		return data.UserDTO{}, err
	}
	displayName := identity.DisplayName
	if input.DisplayName != nil {
		displayName = *input.DisplayName
	}
	if displayName != "" {
		cleaned, err := s.Sanitizer.Require("displayName", displayName, MaxDisplayNameLength)
		if err != nil {
			return data.UserDTO{}, err
		}
		input.DisplayName = &cleaned
	}
	if input.PhotoURL == nil {
		input.PhotoURL = identity.PhotoURL
	}
	return s.Users.PutProfile(ctx, identity.Id, input)
}

func (s *Service) GetProfile(ctx context.Context, userId string) (data.UserDTO, error) {
	return s.Users.GetUser(ctx, userId)
}

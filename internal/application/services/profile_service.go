package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/ports"
)

// ProfileService keeps the user's profile picture in the shared store
type ProfileService struct {
	store    ports.Store
	client   ports.CanvasClient
	tokens   ports.TokenSource
	prefixes []string
	logger   *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(store ports.Store, client ports.CanvasClient, tokens ports.TokenSource, prefixes []string, appLogger *logger.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		client:   client,
		tokens:   tokens,
		prefixes: prefixes,
		logger:   appLogger.WithComponent("profile"),
	}
}

// Refresh fetches the profile from the first prefix and stores its avatar
// bytes. A failed avatar download keeps the previously stored image and
// still returns the profile.
func (s *ProfileService) Refresh(ctx context.Context) (*entities.Profile, error) {
	if len(s.prefixes) == 0 {
		return nil, entities.ErrNoPrefixesConfigured
	}

	token, err := s.tokens.CanvasToken(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.client.FetchProfile(ctx, token, s.prefixes[0])
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	if profile.AvatarURL == "" {
		return profile, nil
	}

	image, err := s.client.FetchAvatar(ctx, profile.AvatarURL)
	if err != nil {
		s.logger.WithError(err).Warnw("Avatar download failed, keeping previous image", "avatar_url", profile.AvatarURL)
		return profile, nil
	}
	if err := s.store.Set(ctx, ports.KeyProfileImage, image); err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	s.logger.Infow("Profile refreshed", "name", profile.Name, "avatar_bytes", len(image))
	return profile, nil
}

// Image returns the stored avatar bytes, or nil when none was saved
func (s *ProfileService) Image(ctx context.Context) ([]byte, error) {
	image, err := s.store.Get(ctx, ports.KeyProfileImage)
	if errors.Is(err, entities.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load avatar: %w", err)
	}
	return image, nil
}

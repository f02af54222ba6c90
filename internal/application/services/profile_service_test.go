package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/ports"
)

func TestProfileService_Refresh(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	client := &fakeCanvas{
		profile: &entities.Profile{ID: 9, Name: "Ada", AvatarURL: "https://x/avatar.png"},
		avatar:  []byte("\x89PNG fake"),
	}
	svc := NewProfileService(store, client, staticToken("tok"), []string{"uni", "college"}, logger.NewNop())

	image, err := svc.Image(ctx)
	require.NoError(t, err)
	assert.Nil(t, image)

	profile, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)

	image, err = svc.Image(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG fake"), image)
}

func TestProfileService_NoAvatar(t *testing.T) {
	ctx := context.Background()
	client := &fakeCanvas{profile: &entities.Profile{Name: "Ada"}}
	svc := NewProfileService(newTestStore(t), client, staticToken("tok"), []string{"uni"}, logger.NewNop())

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, client.callCount())
}

func TestProfileService_AvatarFailureKeepsProfile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, ports.KeyProfileImage, []byte("old")))

	client := &fakeCanvas{
		profile:   &entities.Profile{Name: "Ada", AvatarURL: "https://x/missing.png"},
		avatarErr: fmt.Errorf("avatar: %w (status 404)", entities.ErrLoadFailed),
	}
	svc := NewProfileService(store, client, staticToken("tok"), []string{"uni"}, logger.NewNop())

	profile, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)

	image, err := svc.Image(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), image)
}

func TestProfileService_ProfileFailure(t *testing.T) {
	client := &fakeCanvas{err: entities.ErrNotAuthorized}
	svc := NewProfileService(newTestStore(t), client, staticToken("tok"), []string{"uni"}, logger.NewNop())

	profile, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, entities.ErrNotAuthorized)
	assert.Nil(t, profile)
}

func TestProfileService_NoPrefixes(t *testing.T) {
	client := &fakeCanvas{}
	svc := NewProfileService(newTestStore(t), client, staticToken("tok"), nil, logger.NewNop())

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, entities.ErrNoPrefixesConfigured)
	assert.Zero(t, client.callCount())
}

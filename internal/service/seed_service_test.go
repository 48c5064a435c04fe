package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/tracktivity/tracktivity-api/internal/models"
)

func TestSeedServiceTokenGuard(t *testing.T) {
	catalog := NewCatalogService(&memoryActivityRepo{}, nil, time.Minute, nil, validator.New(), testLogger())
	ctx := context.Background()

	disabled := NewSeedService(catalog, false, "token", testLogger())
	_, err := disabled.SeedActivities(ctx, "token", nil)
	require.ErrorIs(t, err, ErrSeedDisabled)

	enabled := NewSeedService(catalog, true, "token", testLogger())
	_, err = enabled.SeedActivities(ctx, "wrong", nil)
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	// An empty configured token disables seeding even when enabled.
	noToken := NewSeedService(catalog, true, "", testLogger())
	_, err = noToken.SeedActivities(ctx, "", nil)
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedServiceSkipsBlankNames(t *testing.T) {
	repo := &memoryActivityRepo{}
	catalog := NewCatalogService(repo, nil, time.Minute, nil, validator.New(), testLogger())
	svc := NewSeedService(catalog, true, "token", testLogger())

	affected, err := svc.SeedActivities(context.Background(), "token", []models.Activity{
		{Name: "  Hackathon  "},
		{Name: "   "},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.Len(t, repo.items, 1)
	require.Equal(t, "Hackathon", repo.items[0].Name)
}

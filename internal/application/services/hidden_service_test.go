package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/infrastructure/metrics"
	"github.com/acrylic/tracker/internal/ports"
)

func TestFilterHidden_BioCalc(t *testing.T) {
	normalized, _ := NormalizeAll(bioCalcStubs(), bioCalc())
	hidden := []entities.Assignment{{Name: "Lab", URL: "https://x/1"}}

	got := FilterHidden(normalized, hidden)

	require.Len(t, got, 1)
	assert.Equal(t, "HW3", got[0].Name)
}

func TestFilterHidden_MatchesNameAndURL(t *testing.T) {
	list := []entities.Assignment{
		{Name: "Lab", URL: "https://x/1"},
		{Name: "Lab", URL: "https://x/9"},
		{Name: "Quiz", URL: "https://x/1"},
	}
	hidden := []entities.Assignment{{Name: "Lab", URL: "https://x/1"}}

	got := FilterHidden(list, hidden)

	assert.Equal(t, []entities.Assignment{
		{Name: "Lab", URL: "https://x/9"},
		{Name: "Quiz", URL: "https://x/1"},
	}, got)
	assert.Equal(t, list, FilterHidden(list, nil))
}

func newTestHiddenService(t *testing.T, store ports.Store) *HiddenService {
	t.Helper()
	svc := NewHiddenService(store, logger.NewNop(), metrics.New())
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestHiddenService_HideUnhide(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := newTestHiddenService(t, store)

	lab := entities.Assignment{Name: "Lab", URL: "https://x/1", CourseName: "Bio"}
	hw := entities.Assignment{Name: "HW3", URL: "https://x/2", CourseName: "Calc"}

	require.NoError(t, svc.Hide(ctx, lab))
	require.NoError(t, svc.Hide(ctx, hw))
	require.NoError(t, svc.Hide(ctx, lab), "hiding twice is a no-op")
	assert.Len(t, svc.List(), 2)
	assert.True(t, svc.Contains(entities.Assignment{Name: "Lab", URL: "https://x/1"}))

	// a fresh service sees the persisted list
	reloaded := newTestHiddenService(t, store)
	assert.Equal(t, svc.List(), reloaded.List())

	removed, err := svc.Unhide(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Lab", removed.Name)
	assert.Equal(t, []entities.Assignment{hw}, svc.List())

	_, err = svc.Unhide(ctx, 5)
	assert.ErrorIs(t, err, entities.ErrIndexOutOfRange)
	_, err = svc.Unhide(ctx, -1)
	assert.ErrorIs(t, err, entities.ErrIndexOutOfRange)

	require.NoError(t, svc.Clear(ctx))
	assert.Empty(t, svc.List())
	assert.Empty(t, newTestHiddenService(t, store).List())
}

func TestHiddenService_Filter(t *testing.T) {
	ctx := context.Background()
	svc := newTestHiddenService(t, newTestStore(t))
	normalized, _ := NormalizeAll(bioCalcStubs(), bioCalc())

	require.NoError(t, svc.Hide(ctx, normalized[0]))

	got := svc.Filter(normalized)
	require.Len(t, got, 1)
	assert.Equal(t, "HW3", got[0].Name)
}

func TestHiddenService_LoadSkipsCorruptRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, ports.KeyHidden, []byte(`[{"name":"Lab","url":"https://x/1"},42]`)))

	svc := newTestHiddenService(t, store)

	require.Len(t, svc.List(), 1)
	assert.Equal(t, "Lab", svc.List()[0].Name)
}

func TestHiddenService_LoadUnreadableBlob(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, ports.KeyHidden, []byte(`not json`)))

	svc := newTestHiddenService(t, store)
	assert.Empty(t, svc.List())
}

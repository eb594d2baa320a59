package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

func TestReferenceListService_InitializeDefaultsIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lists := env.app.ReferenceLists

	require.NoError(t, lists.InitializeDefaults(ctx, env.est.ID))
	require.NoError(t, lists.InitializeDefaults(ctx, env.est.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.ReferenceList{}).Where("establishment_id = ?", env.est.ID).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultReferenceLists())), count)

	_, err := lists.GetList(ctx, env.est.ID, "colors")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestReferenceListService_ItemOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lists := env.app.ReferenceLists
	require.NoError(t, lists.InitializeDefaults(ctx, env.est.ID))

	list, err := lists.AddItem(ctx, env.est.ID, models.ListRoomTypes, models.ReferenceItem{Value: "loft", Label: "Loft", IsActive: true})
	require.NoError(t, err)
	last := list.Items[len(list.Items)-1]
	assert.Equal(t, "loft", last.Value)
	assert.Equal(t, len(list.Items), last.Order)

	_, err = lists.AddItem(ctx, env.est.ID, models.ListRoomTypes, models.ReferenceItem{Value: "loft", Label: "Loft bis"})
	assert.True(t, apperrors.Is(err, apperrors.CodeDuplicate))

	_, err = lists.AddItem(ctx, env.est.ID, models.ListRoomTypes, models.ReferenceItem{Value: "attic"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	list, err = lists.UpdateItem(ctx, env.est.ID, models.ListRoomTypes, "loft", models.ReferenceItem{Label: "Loft duplex", Order: 0, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "loft", list.Items[0].Value)
	assert.Equal(t, "Loft duplex", list.Items[0].Label)

	_, err = lists.UpdateItem(ctx, env.est.ID, models.ListRoomTypes, "castle", models.ReferenceItem{Label: "Château"})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	list, err = lists.RemoveItem(ctx, env.est.ID, models.ListRoomTypes, "loft")
	require.NoError(t, err)
	for _, it := range list.Items {
		assert.NotEqual(t, "loft", it.Value)
	}
	_, err = lists.RemoveItem(ctx, env.est.ID, models.ListRoomTypes, "loft")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = lists.RemoveItem(ctx, env.est.ID, "colors", "red")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	stored, err := lists.GetList(ctx, env.est.ID, models.ListRoomTypes)
	require.NoError(t, err)
	assert.Len(t, stored.Items, len(list.Items))
}

func TestReferenceListService_UpsertList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lists := env.app.ReferenceLists

	list, err := lists.UpsertList(ctx, env.est.ID, "floors", "Étages", []models.ReferenceItem{
		{Value: "2", Label: "Deuxième", Order: 2},
		{Value: "1", Label: "Premier", Order: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", list.Items[0].Value)

	list, err = lists.UpsertList(ctx, env.est.ID, "floors", "", []models.ReferenceItem{{Value: "0", Label: "Rez-de-chaussée"}})
	require.NoError(t, err)
	assert.Equal(t, "Étages", list.Label)
	assert.Len(t, list.Items, 1)

	_, err = lists.UpsertList(ctx, env.est.ID, "floors", "", []models.ReferenceItem{{Value: "0", Label: "A"}, {Value: "0", Label: "B"}})
	assert.True(t, apperrors.Is(err, apperrors.CodeDuplicate))

	_, err = lists.UpsertList(ctx, env.est.ID, " ", "", nil)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	all, err := lists.GetLists(ctx, env.est.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops/apperrors"
)

func TestSupplierService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	suppliers := env.app.Suppliers

	_, err := suppliers.CreateSupplier(ctx, env.est.ID, SupplierInput{})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	blanc, err := suppliers.CreateSupplier(ctx, env.est.ID, SupplierInput{Name: strPtr("Blanchisserie Alpine"), Category: strPtr("linen")})
	require.NoError(t, err)
	assert.True(t, blanc.IsActive)
	_, err = suppliers.CreateSupplier(ctx, env.est.ID, SupplierInput{Name: strPtr("Électro Services"), ContactName: strPtr("Paul Martin"), Category: strPtr("maintenance")})
	require.NoError(t, err)

	toggled, err := suppliers.ToggleActive(ctx, env.est.ID, blanc.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	active, err := suppliers.ListSuppliers(ctx, env.est.ID, SupplierFilter{Active: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Électro Services", active[0].Name)

	byContact, err := suppliers.ListSuppliers(ctx, env.est.ID, SupplierFilter{Search: "martin"})
	require.NoError(t, err)
	assert.Len(t, byContact, 1)

	byCategory, err := suppliers.ListSuppliers(ctx, env.est.ID, SupplierFilter{Category: "linen"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	_, err = suppliers.UpdateSupplier(ctx, env.est.ID, blanc.ID, SupplierInput{Name: strPtr(" ")})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestSupplierService_DeleteDetachesItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	supplier, err := env.app.Suppliers.CreateSupplier(ctx, env.est.ID, SupplierInput{Name: strPtr("Blanchisserie Alpine")})
	require.NoError(t, err)
	item := env.createItem(t, "Draps", 10, 2, "4.00")
	_, err = env.app.Inventory.UpdateItem(ctx, env.est.ID, item.ID, ItemInput{SupplierID: &supplier.ID})
	require.NoError(t, err)

	require.NoError(t, env.app.Suppliers.DeleteSupplier(ctx, env.est.ID, supplier.ID))

	stored, err := env.app.Inventory.GetItem(ctx, env.est.ID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SupplierID)

	err = env.app.Suppliers.DeleteSupplier(ctx, env.est.ID, supplier.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

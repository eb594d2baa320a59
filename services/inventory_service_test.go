package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

func TestCalculateStatus(t *testing.T) {
	tests := []struct {
		qty, min int
		want     string
	}{
		{0, 5, models.StockOutOfStock},
		{-2, 0, models.StockOutOfStock},
		{1, 5, models.StockLowStock},
		{5, 5, models.StockLowStock},
		{6, 5, models.StockInStock},
		{1, 0, models.StockInStock},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateStatus(tt.qty, tt.min), "qty=%d min=%d", tt.qty, tt.min)
	}

	for q := 0; q <= 30; q++ {
		for m := 0; m <= 10; m++ {
			got := CalculateStatus(q, m)
			assert.Equal(t, q == 0, got == models.StockOutOfStock)
			assert.Equal(t, q > m, got == models.StockInStock)
		}
	}
}

func TestApplyMovement(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		kind     string
		quantity int
		want     int
		code     apperrors.Code
	}{
		{"in", 4, models.MovementIn, 6, 10, ""},
		{"out", 10, models.MovementOut, 6, 4, ""},
		{"out to zero", 4, models.MovementOut, 4, 0, ""},
		{"out too many", 4, models.MovementOut, 10, 4, apperrors.CodeInsufficientStock},
		{"transfer too many", 1, models.MovementTransfer, 2, 1, apperrors.CodeInsufficientStock},
		{"adjustment sets level", 4, models.MovementAdjustment, 12, 12, ""},
		{"adjustment clamps", 4, models.MovementAdjustment, -3, 0, ""},
		{"unknown", 4, "gift", 1, 4, apperrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyMovement(tt.current, tt.kind, tt.quantity)
			assert.Equal(t, tt.want, got)
			if tt.code == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.Is(err, tt.code), "got %v", err)
			}
		})
	}
}

func (e *testEnv) createItem(t *testing.T, name string, qty, min int, price string) *models.InventoryItem {
	t.Helper()
	p := decimal.RequireFromString(price)
	item, err := e.app.Inventory.CreateItem(context.Background(), e.est.ID, ItemInput{
		Name:        &name,
		Category:    strPtr("linen"),
		Unit:        strPtr("pièce"),
		Quantity:    &qty,
		MinQuantity: &min,
		UnitPrice:   &p,
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) addOwner(t *testing.T, email string) *models.User {
	t.Helper()
	ctx := context.Background()
	user, err := e.app.Users.CreateUser(ctx, UserInput{Email: email, DisplayName: "Owner", Password: "secret1"})
	require.NoError(t, err)
	_, err = e.app.Users.AddMember(ctx, e.est.ID, user.ID, models.RoleOwner)
	require.NoError(t, err)
	return user
}

func TestInventoryService_StockMovementScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addOwner(t, "owner@lac.fr")

	item := env.createItem(t, "Serviettes", 10, 5, "2.50")
	assert.Equal(t, models.StockInStock, item.Status)
	assert.True(t, decimal.NewFromInt(25).Equal(item.TotalValue))

	movement, updated, err := env.app.Inventory.CreateStockMovement(ctx, env.est.ID, item.ID, "u1", "Léa", MovementInput{
		Type: models.MovementOut, Quantity: 6, Destination: "Étage 2",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, movement.PreviousQuantity)
	assert.Equal(t, 4, movement.NewQuantity)
	assert.Equal(t, "Serviettes", movement.ItemName)
	assert.Equal(t, 4, updated.Quantity)
	assert.Equal(t, models.StockLowStock, updated.Status)
	assert.True(t, decimal.NewFromInt(10).Equal(updated.TotalValue))
	require.NotNil(t, updated.LastMovementAt)

	notes, err := env.app.Notifications.ListForUser(ctx, owner.ID, true, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLowStock, notes[0].Type)
	assert.Equal(t, env.est.ID, notes[0].EstablishmentID)

	_, _, err = env.app.Inventory.CreateStockMovement(ctx, env.est.ID, item.ID, "u1", "Léa", MovementInput{
		Type: models.MovementOut, Quantity: 10,
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeInsufficientStock))

	stored, err := env.app.Inventory.GetItem(ctx, env.est.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Quantity)

	movements, err := env.app.Inventory.ListMovements(ctx, env.est.ID, item.ID, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	// staying low does not notify again
	_, _, err = env.app.Inventory.CreateStockMovement(ctx, env.est.ID, item.ID, "u1", "Léa", MovementInput{
		Type: models.MovementOut, Quantity: 1,
	})
	require.NoError(t, err)
	count, err := env.app.Notifications.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestInventoryService_StockMovementValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Savon", 3, 1, "0.40")

	_, _, err := env.app.Inventory.CreateStockMovement(ctx, env.est.ID, item.ID, "", "", MovementInput{Type: models.MovementIn, Quantity: 0})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, _, err = env.app.Inventory.CreateStockMovement(ctx, env.est.ID, item.ID, "", "", MovementInput{Type: "loss", Quantity: 1})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, _, err = env.app.Inventory.CreateStockMovement(ctx, env.est.ID, "missing", "", "", MovementInput{Type: models.MovementIn, Quantity: 1})
	assert.True(t, apperrors.Is(err, apperrors.CodeItemNotFound))

	_, updated, err := env.app.Inventory.CreateStockMovement(ctx, env.est.ID, item.ID, "", "", MovementInput{Type: models.MovementAdjustment, Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, models.StockOutOfStock, updated.Status)
}

func TestInventoryService_CreateItemValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.Inventory.CreateItem(ctx, env.est.ID, ItemInput{Name: strPtr("  ")})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = env.app.Inventory.CreateItem(ctx, env.est.ID, ItemInput{Name: strPtr("Draps"), Quantity: intPtr(-1)})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	neg := decimal.NewFromInt(-1)
	_, err = env.app.Inventory.CreateItem(ctx, env.est.ID, ItemInput{Name: strPtr("Draps"), UnitPrice: &neg})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestInventoryService_UpdateRecomputesStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Gel douche", 20, 5, "1.00")

	updated, err := env.app.Inventory.UpdateItem(ctx, env.est.ID, item.ID, ItemInput{MinQuantity: intPtr(25)})
	require.NoError(t, err)
	assert.Equal(t, models.StockLowStock, updated.Status)

	stored, err := env.app.Inventory.GetItem(ctx, env.est.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StockLowStock, stored.Status)
	assert.Equal(t, 25, stored.MinQuantity)
}

func TestInventoryService_StatsAndLowStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createItem(t, "Serviettes", 10, 5, "2.50")
	env.createItem(t, "Draps", 2, 5, "10.00")
	env.createItem(t, "Oreillers", 0, 2, "15.00")

	stats, err := env.app.Inventory.GetInventoryStats(ctx, env.est.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 1, stats.InStock)
	assert.Equal(t, 1, stats.LowStock)
	assert.Equal(t, 1, stats.OutOfStock)
	assert.True(t, decimal.NewFromInt(45).Equal(stats.TotalValue), "total %s", stats.TotalValue)
	assert.True(t, decimal.NewFromInt(45).Equal(stats.ValueByCategory["linen"]))

	low, err := env.app.Inventory.GetLowStockItems(ctx, env.est.ID)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Oreillers", low[0].Name)
	assert.Equal(t, "Draps", low[1].Name)

	found, err := env.app.Inventory.ListItems(ctx, env.est.ID, ItemFilter{Search: "drap"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Draps", found[0].Name)
}

func TestBuildInventoryWorkbook(t *testing.T) {
	maxQty := 50
	data, err := BuildInventoryWorkbook([]models.InventoryItem{
		{Name: "Serviettes", Category: "linen", Quantity: 10, MinQuantity: 5, MaxQuantity: &maxQty, UnitPrice: decimal.RequireFromString("2.5")},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{InventorySheet, InstructionsSheet}, f.GetSheetList())
	header, err := f.GetCellValue(InventorySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Nom", header)
	name, err := f.GetCellValue(InventorySheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Serviettes", name)
	qty, err := f.GetCellValue(InventorySheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "10", qty)
}

func TestInventoryService_GenerateImportTemplateWithoutItems(t *testing.T) {
	env := newTestEnv(t)
	env.createItem(t, "Draps", 2, 5, "10.00")

	data, err := env.app.Inventory.GenerateImportTemplate(context.Background(), env.est.ID, false)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	example, err := f.GetCellValue(InventorySheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Serviettes de bain", example)
}

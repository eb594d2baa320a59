package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

func TestComputeBlockageStats(t *testing.T) {
	interventionID := "int-1"
	blockages := []models.RoomBlockage{
		{RoomID: "r1", Urgency: models.UrgencyHigh, DurationDays: 1, EstimatedRevenueLoss: 100, IsActive: true, IsOverdue: true},
		{RoomID: "r2", Urgency: models.UrgencyHigh, DurationHours: 12, EstimatedRevenueLoss: 50,
			InterventionID: &interventionID, InterventionType: "plumbing"},
		{RoomID: "r1", Urgency: models.UrgencyLow, DurationHours: 6, EstimatedRevenueLoss: 30},
	}

	stats := ComputeBlockageStats(blockages)

	assert.Equal(t, 3, stats.TotalBlockages)
	assert.Equal(t, 1, stats.ActiveBlockages)
	assert.Equal(t, 2, stats.ResolvedBlockages)
	assert.Equal(t, 1, stats.OverdueBlockages)
	assert.Equal(t, 24.0, stats.LongestDurationHours)
	assert.Equal(t, 6.0, stats.ShortestDurationHours)
	assert.Equal(t, 14.0, stats.AverageDurationHours)
	assert.Equal(t, 180.0, stats.TotalRevenueLoss)
	assert.Equal(t, 60.0, stats.AverageRevenueLoss)
	assert.Equal(t, map[string]int{models.UrgencyHigh: 2, models.UrgencyLow: 1}, stats.ByUrgency)
	assert.Equal(t, map[string]int{"plumbing": 1, "manual": 2}, stats.ByInterventionType)
}

func TestComputeBlockageStats_Empty(t *testing.T) {
	stats := ComputeBlockageStats(nil)
	assert.Zero(t, stats.TotalBlockages)
	assert.Zero(t, stats.ShortestDurationHours)
	assert.NotNil(t, stats.ByUrgency)
}

func TestTopBlockedRooms(t *testing.T) {
	blockages := []models.RoomBlockage{
		{RoomID: "a", RoomNumber: "101", DurationHours: 2},
		{RoomID: "b", RoomNumber: "102", DurationHours: 5},
		{RoomID: "b", RoomNumber: "102", DurationHours: 1, IsActive: true},
		{RoomID: "c", RoomNumber: "103", DurationHours: 9},
		{RoomID: "d", RoomNumber: "100", DurationHours: 9},
	}

	top := TopBlockedRooms(blockages, 0)
	require.Len(t, top, 4)
	assert.Equal(t, "102", top[0].RoomNumber)
	assert.Equal(t, 2, top[0].BlockageCount)
	assert.Equal(t, 1, top[0].ActiveCount)
	assert.Equal(t, 6.0, top[0].TotalDurationHours)
	// equal count and duration fall back to room number
	assert.Equal(t, "100", top[1].RoomNumber)
	assert.Equal(t, "103", top[2].RoomNumber)
	assert.Equal(t, "101", top[3].RoomNumber)

	assert.Len(t, TopBlockedRooms(blockages, 2), 2)
}

func TestBlockageService_ResolveIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "101", 120)

	blockage, err := env.app.Rooms.BlockRoom(ctx, env.est.ID, room.ID, BlockRoomInput{Reason: "Peinture"})
	require.NoError(t, err)

	env.clock.Advance(24 * time.Hour)
	first, err := env.app.Blockages.ResolveBlockage(ctx, blockage.ID, env.est.ID, "u1")
	require.NoError(t, err)
	assert.False(t, first.IsActive)
	assert.Equal(t, 120.0, first.EstimatedRevenueLoss)

	env.clock.Advance(24 * time.Hour)
	second, err := env.app.Blockages.ResolveBlockage(ctx, blockage.ID, env.est.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, second.DurationDays)
	assert.Equal(t, 120.0, second.EstimatedRevenueLoss)
	assert.Equal(t, "u1", second.ResolvedBy)
}

func TestBlockageService_ResolveUnknown(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.app.Blockages.ResolveBlockage(context.Background(), "missing", env.est.ID, "u1")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestBlockageService_ResolveForInterventionWithoutBlockage(t *testing.T) {
	env := newTestEnv(t)
	b, err := env.app.Blockages.ResolveBlockageForIntervention(context.Background(), "int-x", env.est.ID, "u1")
	assert.NoError(t, err)
	assert.Nil(t, b)
}

func TestBlockageService_DeleteActiveIsRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "101", 80)

	blockage, err := env.app.Rooms.BlockRoom(ctx, env.est.ID, room.ID, BlockRoomInput{Reason: "Moisissure"})
	require.NoError(t, err)

	err = env.app.Blockages.DeleteBlockage(ctx, env.est.ID, blockage.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

	_, err = env.app.Rooms.UnblockRoom(ctx, env.est.ID, room.ID, "u1")
	require.NoError(t, err)
	require.NoError(t, env.app.Blockages.DeleteBlockage(ctx, env.est.ID, blockage.ID))

	_, err = env.app.Blockages.GetBlockage(ctx, env.est.ID, blockage.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestBlockageService_ActiveAndHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r1 := env.createRoom(t, "101", 100)
	r2 := env.createRoom(t, "102", 100)

	_, err := env.app.Rooms.BlockRoom(ctx, env.est.ID, r1.ID, BlockRoomInput{Reason: "Fuite"})
	require.NoError(t, err)
	_, err = env.app.Rooms.BlockRoom(ctx, env.est.ID, r2.ID, BlockRoomInput{Reason: "Vitre cassée", Urgency: models.UrgencyCritical})
	require.NoError(t, err)

	env.clock.Advance(3 * time.Hour)
	_, err = env.app.Rooms.UnblockRoom(ctx, env.est.ID, r1.ID, "u1")
	require.NoError(t, err)
	env.clock.Advance(2 * time.Hour)

	active, err := env.app.Blockages.GetActiveBlockages(ctx, env.est.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, r2.ID, active[0].RoomID)
	assert.Equal(t, 5, active[0].DurationHours)

	history, err := env.app.Blockages.GetBlockageHistory(ctx, env.est.ID, BlockageFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, r1.ID, history[0].RoomID)
	assert.Equal(t, 3, history[0].DurationHours)

	critical, err := env.app.Blockages.ListBlockages(ctx, env.est.ID, BlockageFilter{Urgency: models.UrgencyCritical})
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, r2.ID, critical[0].RoomID)

	stats, err := env.app.Blockages.GetBlockageStats(ctx, env.est.ID, BlockageFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBlockages)
	assert.Equal(t, 1, stats.ActiveBlockages)
	assert.Equal(t, 5.0, stats.LongestDurationHours)
	assert.Equal(t, 3.0, stats.ShortestDurationHours)
}

func TestBlockageService_RefreshActiveBlockages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "101", 100)
	eta := testStart.Add(2 * time.Hour).Format(time.RFC3339)

	blockage, err := env.app.Rooms.BlockRoom(ctx, env.est.ID, room.ID, BlockRoomInput{Reason: "Serrure", EstimatedUnblockDate: &eta})
	require.NoError(t, err)

	env.clock.Advance(3*time.Hour + 10*time.Minute)
	n, err := env.app.Blockages.RefreshActiveBlockages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var stored models.RoomBlockage
	require.NoError(t, env.db.First(&stored, "id = ?", blockage.ID).Error)
	assert.True(t, stored.IsOverdue)
	assert.Equal(t, 3, stored.DurationHours)
	assert.Equal(t, 10, stored.DurationMinutes)
}

func TestBlockageService_RefreshLeavesBlockageResolvedDuringSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "101", 100)
	eta := testStart.Add(2 * time.Hour).Format(time.RFC3339)

	blockage, err := env.app.Rooms.BlockRoom(ctx, env.est.ID, room.ID, BlockRoomInput{Reason: "Serrure", EstimatedUnblockDate: &eta})
	require.NoError(t, err)
	env.clock.Advance(3 * time.Hour)

	// resolve right after the sweep has loaded the active blockages
	pending := true
	err = env.db.Callback().Query().After("gorm:query").Register("test:resolve_during_sweep", func(tx *gorm.DB) {
		if !pending || tx.Statement.Table != "room_blockages" {
			return
		}
		pending = false
		_, err := env.app.Rooms.ResolveBlockage(context.Background(), env.est.ID, blockage.ID, "u1")
		require.NoError(t, err)
	})
	require.NoError(t, err)

	n, err := env.app.Blockages.RefreshActiveBlockages(ctx)
	require.NoError(t, err)
	assert.False(t, pending)
	assert.Zero(t, n)

	var stored models.RoomBlockage
	require.NoError(t, env.db.First(&stored, "id = ?", blockage.ID).Error)
	assert.False(t, stored.IsActive)
	assert.False(t, stored.IsOverdue)
	assert.Equal(t, 3, stored.DurationHours)
	assert.Equal(t, "u1", stored.ResolvedBy)
	assert.False(t, env.reloadRoom(t, room.ID).IsBlocked)
}

func TestBlockageService_ResolveForInterventionTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "204", 100)

	intervention, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{
		Title: "Climatisation", RoomID: &room.ID, BlocksRoom: true,
	}, manager)
	require.NoError(t, err)

	env.clock.Advance(36 * time.Hour)
	_, err = env.app.Interventions.ChangeStatus(ctx, env.est.ID, intervention.ID, models.InterventionCompleted, technician)
	require.NoError(t, err)

	var first models.RoomBlockage
	require.NoError(t, env.db.First(&first, "intervention_id = ?", intervention.ID).Error)
	require.False(t, first.IsActive)
	require.NotNil(t, first.ActualUnblockDate)
	assert.Equal(t, 150.0, first.EstimatedRevenueLoss)

	env.clock.Advance(24 * time.Hour)
	again, err := env.app.Blockages.ResolveBlockageForIntervention(ctx, intervention.ID, env.est.ID, manager.ID)
	assert.NoError(t, err)
	assert.Nil(t, again)

	_, err = env.app.Interventions.ChangeStatus(ctx, env.est.ID, intervention.ID, models.InterventionValidated, manager)
	require.NoError(t, err)

	var stored models.RoomBlockage
	require.NoError(t, env.db.First(&stored, "id = ?", first.ID).Error)
	require.NotNil(t, stored.ActualUnblockDate)
	assert.WithinDuration(t, *first.ActualUnblockDate, *stored.ActualUnblockDate, time.Second)
	assert.Equal(t, 150.0, stored.EstimatedRevenueLoss)
	assert.Equal(t, 1, stored.DurationDays)
	assert.Equal(t, 12, stored.DurationHours)
	assert.Equal(t, technician.ID, stored.ResolvedBy)

	r := env.reloadRoom(t, room.ID)
	assert.False(t, r.IsBlocked)
	assert.Equal(t, models.RoomStatusAvailable, r.Status)
}

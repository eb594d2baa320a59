package services

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

var (
	manager    = Actor{ID: "manager-1", Name: "Claire"}
	technician = Actor{ID: "tech-1", Name: "Marc"}
)

func TestInterventionService_CreateBlockingIntervention(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "305", 120)

	intervention, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{
		Title:             "Fuite salle de bain",
		Type:              "plumbing",
		Priority:          models.PriorityUrgent,
		RoomID:            &room.ID,
		BlocksRoom:        true,
		AssignedTo:        strPtr(technician.ID),
		AssignedToName:    technician.Name,
		EstimatedDuration: floatPtr(30),
	}, manager)
	require.NoError(t, err)
	assert.Equal(t, models.InterventionAssigned, intervention.Status)
	assert.Equal(t, "305", intervention.RoomNumber)
	assert.Equal(t, "Chambre 305", intervention.Location)
	assert.Equal(t, manager.ID, intervention.CreatedBy)

	stored := env.reloadRoom(t, room.ID)
	assert.True(t, stored.IsBlocked)
	assert.Equal(t, models.RoomStatusBlocked, stored.Status)

	active := env.activeBlockages(t, room.ID)
	require.Len(t, active, 1)
	b := active[0]
	require.NotNil(t, b.InterventionID)
	assert.Equal(t, intervention.ID, *b.InterventionID)
	assert.Equal(t, models.UrgencyCritical, b.Urgency)
	assert.Equal(t, "plumbing", b.InterventionType)
	require.NotNil(t, b.EstimatedUnblockDate)
	assert.WithinDuration(t, testStart.Add(30*time.Hour), *b.EstimatedUnblockDate, time.Second)
	// 120 * (1 + 6/24)
	assert.Equal(t, 150.0, b.EstimatedRevenueLoss)

	notes, err := env.app.Notifications.ListForUser(ctx, technician.ID, true, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationInterventionAssigned, notes[0].Type)
}

func TestInterventionService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{Title: ""}, manager)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{Title: "x", Priority: "asap"}, manager)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{Title: "x", RoomID: strPtr("missing"), BlocksRoom: true}, manager)
	assert.True(t, apperrors.Is(err, apperrors.CodeRoomNotFound))

	var count int64
	require.NoError(t, env.db.Model(&models.Intervention{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInterventionService_LifecycleReleasesRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "101", 100)

	intervention, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{
		Title:      "Chauffe-eau",
		Priority:   models.PriorityHigh,
		RoomID:     &room.ID,
		BlocksRoom: true,
	}, manager)
	require.NoError(t, err)
	assert.Equal(t, models.InterventionPending, intervention.Status)

	env.clock.Advance(time.Hour)
	started, err := env.app.Interventions.ChangeStatus(ctx, env.est.ID, intervention.ID, models.InterventionInProgress, technician)
	require.NoError(t, err)
	require.NotNil(t, started.StartedAt)
	assert.True(t, env.reloadRoom(t, room.ID).IsBlocked)

	env.clock.Advance(47 * time.Hour)
	done, err := env.app.Interventions.ChangeStatus(ctx, env.est.ID, intervention.ID, models.InterventionCompleted, technician)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	stored := env.reloadRoom(t, room.ID)
	assert.False(t, stored.IsBlocked)
	assert.Equal(t, models.RoomStatusAvailable, stored.Status)
	assert.Empty(t, env.activeBlockages(t, room.ID))

	history, err := env.app.Blockages.GetBlockageHistory(ctx, env.est.ID, BlockageFilter{RoomID: room.ID})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].DurationDays)
	assert.Equal(t, 200.0, history[0].EstimatedRevenueLoss)
	assert.Equal(t, technician.ID, history[0].ResolvedBy)

	// the creator hears about status changes made by someone else
	count, err := env.app.Notifications.UnreadCount(ctx, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestInterventionService_RoomStaysBlockedWhileAnotherBlockageIsOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "101", 100)

	first, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{
		Title: "Plomberie", RoomID: &room.ID, BlocksRoom: true,
	}, manager)
	require.NoError(t, err)
	second, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{
		Title: "Électricité", RoomID: &room.ID, BlocksRoom: true,
	}, manager)
	require.NoError(t, err)
	assert.Len(t, env.activeBlockages(t, room.ID), 2)

	_, err = env.app.Interventions.ChangeStatus(ctx, env.est.ID, first.ID, models.InterventionCancelled, manager)
	require.NoError(t, err)
	assert.True(t, env.reloadRoom(t, room.ID).IsBlocked)

	_, err = env.app.Interventions.ChangeStatus(ctx, env.est.ID, second.ID, models.InterventionCompleted, manager)
	require.NoError(t, err)
	assert.False(t, env.reloadRoom(t, room.ID).IsBlocked)
}

func TestInterventionService_ChangeStatusOutsideTableIsApplied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	intervention, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{Title: "Ampoule"}, manager)
	require.NoError(t, err)
	require.False(t, CanTransition(models.InterventionPending, models.InterventionValidated))

	validated, err := env.app.Interventions.ChangeStatus(ctx, env.est.ID, intervention.ID, models.InterventionValidated, manager)
	require.NoError(t, err)
	assert.Equal(t, models.InterventionValidated, validated.Status)
	assert.NotNil(t, validated.CompletedAt)

	_, err = env.app.Interventions.ChangeStatus(ctx, env.est.ID, intervention.ID, "done", manager)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestInterventionService_DeleteReleasesRoomAndComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "101", 100)

	intervention, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{
		Title: "Peinture", RoomID: &room.ID, BlocksRoom: true,
	}, manager)
	require.NoError(t, err)
	_, err = env.app.Interventions.AddComment(ctx, env.est.ID, intervention.ID, "Commencé ce matin", technician)
	require.NoError(t, err)

	require.NoError(t, env.app.Interventions.DeleteIntervention(ctx, env.est.ID, intervention.ID, manager))

	assert.False(t, env.reloadRoom(t, room.ID).IsBlocked)
	comments, err := env.app.Interventions.ListComments(ctx, env.est.ID, intervention.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	_, err = env.app.Interventions.GetIntervention(ctx, env.est.ID, intervention.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestInterventionService_AssignAndComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	intervention, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{Title: "Clim"}, manager)
	require.NoError(t, err)

	assigned, err := env.app.Interventions.Assign(ctx, env.est.ID, intervention.ID, technician.ID, technician.Name, manager)
	require.NoError(t, err)
	assert.Equal(t, models.InterventionAssigned, assigned.Status)
	assert.Equal(t, technician.Name, assigned.AssignedToName)

	_, err = env.app.Interventions.AddComment(ctx, env.est.ID, intervention.ID, "  ", technician)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	comment, err := env.app.Interventions.AddComment(ctx, env.est.ID, intervention.ID, "Pièce commandée", technician)
	require.NoError(t, err)
	assert.Equal(t, technician.Name, comment.UserName)

	require.NoError(t, env.app.Interventions.DeleteComment(ctx, env.est.ID, comment.ID))
	err = env.app.Interventions.DeleteComment(ctx, env.est.ID, comment.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	list, err := env.app.Interventions.ListInterventions(ctx, env.est.ID, InterventionFilter{AssignedTo: technician.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInterventionService_AddPhoto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	intervention, err := env.app.Interventions.CreateIntervention(ctx, env.est, InterventionInput{Title: "Vitre"}, manager)
	require.NoError(t, err)

	img := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))
	updated, err := env.app.Interventions.AddPhoto(ctx, env.est.ID, intervention.ID, img)
	require.NoError(t, err)
	require.Len(t, updated.Photos, 1)

	_, statErr := os.Stat(filepath.Join(env.app.Photos.Root(), filepath.FromSlash(updated.Photos[0])))
	assert.NoError(t, statErr)

	_, err = env.app.Interventions.AddPhoto(ctx, env.est.ID, intervention.ID, "%%%")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestInterventionService_CreateFromTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.createRoom(t, "101", 100)

	tpl, err := env.app.Templates.CreateTemplate(ctx, env.est.ID, TemplateInput{
		Name:              strPtr("Fuite d'eau"),
		Type:              strPtr("plumbing"),
		Priority:          strPtr(models.PriorityHigh),
		EstimatedDuration: floatPtr(2),
		BlocksRoom:        boolPtr(true),
	})
	require.NoError(t, err)

	intervention, err := env.app.Interventions.CreateFromTemplate(ctx, env.est, tpl.ID, InterventionInput{RoomID: &room.ID}, manager)
	require.NoError(t, err)
	assert.Equal(t, "Fuite d'eau", intervention.Title)
	assert.Equal(t, models.PriorityHigh, intervention.Priority)
	require.NotNil(t, intervention.TemplateID)
	assert.Equal(t, tpl.ID, *intervention.TemplateID)
	assert.True(t, env.reloadRoom(t, room.ID).IsBlocked)

	reloaded, err := env.app.Templates.GetTemplate(ctx, env.est.ID, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.UsageCount)

	_, err = env.app.Templates.UpdateTemplate(ctx, env.est.ID, tpl.ID, TemplateInput{IsActive: boolPtr(false)})
	require.NoError(t, err)
	_, err = env.app.Interventions.CreateFromTemplate(ctx, env.est, tpl.ID, InterventionInput{}, manager)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

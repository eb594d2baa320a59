package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

func TestTemplateService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templates := env.app.Templates

	_, err := templates.CreateTemplate(ctx, env.est.ID, TemplateInput{Name: strPtr(" ")})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	_, err = templates.CreateTemplate(ctx, env.est.ID, TemplateInput{Name: strPtr("X"), Priority: strPtr("asap")})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	_, err = templates.CreateTemplate(ctx, env.est.ID, TemplateInput{Name: strPtr("X"), EstimatedDuration: floatPtr(-1)})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	checklist := []string{"Vider", "Nettoyer"}
	active, err := templates.CreateTemplate(ctx, env.est.ID, TemplateInput{Name: strPtr("Bouche d'évacuation"), Checklist: &checklist})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, active.Priority)

	inactive, err := templates.CreateTemplate(ctx, env.est.ID, TemplateInput{Name: strPtr("Ancien"), IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	stored, err := templates.GetTemplate(ctx, env.est.ID, inactive.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	list, err := templates.ListTemplates(ctx, env.est.ID, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)
	assert.Equal(t, []string{"Vider", "Nettoyer"}, []string(list[0].Checklist))

	list, err = templates.ListTemplates(ctx, env.est.ID, false)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTemplateService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templates := env.app.Templates

	tpl, err := templates.CreateTemplate(ctx, env.est.ID, TemplateInput{Name: strPtr("Peinture"), BlocksRoom: boolPtr(true)})
	require.NoError(t, err)

	updated, err := templates.UpdateTemplate(ctx, env.est.ID, tpl.ID, TemplateInput{BlocksRoom: boolPtr(false), Priority: strPtr(models.PriorityLow)})
	require.NoError(t, err)
	assert.False(t, updated.BlocksRoom)

	stored, err := templates.GetTemplate(ctx, env.est.ID, tpl.ID)
	require.NoError(t, err)
	assert.False(t, stored.BlocksRoom)
	assert.Equal(t, models.PriorityLow, stored.Priority)
	assert.Equal(t, "Peinture", stored.Name)

	_, err = templates.UpdateTemplate(ctx, env.est.ID, tpl.ID, TemplateInput{Name: strPtr("")})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	require.NoError(t, templates.DeleteTemplate(ctx, env.est.ID, tpl.ID))
	err = templates.DeleteTemplate(ctx, env.est.ID, tpl.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	_, err = templates.GetTemplate(ctx, env.est.ID, tpl.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

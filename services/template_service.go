package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

type TemplateInput struct {
	Name              *string   `json:"name"`
	Description       *string   `json:"description"`
	Type              *string   `json:"type"`
	Priority          *string   `json:"priority"`
	EstimatedDuration *float64  `json:"estimatedDuration"`
	BlocksRoom        *bool     `json:"blocksRoom"`
	Checklist         *[]string `json:"checklist"`
	IsActive          *bool     `json:"isActive"`
}

type TemplateService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewTemplateService(db *gorm.DB, logger *logrus.Logger) *TemplateService {
	return &TemplateService{db: db, logger: logger}
}

func hours(h float64) *float64 { return &h }

// DefaultTemplates are installed for every new establishment.
func DefaultTemplates() []models.InterventionTemplate {
	return []models.InterventionTemplate{
		{
			Name: "Fuite d'eau", Type: "plumbing", Priority: models.PriorityHigh,
			EstimatedDuration: hours(2), BlocksRoom: true,
			Checklist: []string{"Couper l'arrivée d'eau", "Identifier la fuite", "Réparer", "Vérifier l'étanchéité"},
		},
		{
			Name: "Panne électrique", Type: "electrical", Priority: models.PriorityUrgent,
			EstimatedDuration: hours(1), BlocksRoom: true,
			Checklist: []string{"Couper le disjoncteur", "Diagnostiquer", "Réparer", "Tester"},
		},
		{
			Name: "Climatisation défectueuse", Type: "hvac", Priority: models.PriorityMedium,
			EstimatedDuration: hours(3), BlocksRoom: false,
			Checklist: []string{"Nettoyer les filtres", "Vérifier le thermostat", "Contrôler le gaz"},
		},
		{
			Name: "Remplacement d'ampoule", Type: "electrical", Priority: models.PriorityLow,
			EstimatedDuration: hours(0.25), BlocksRoom: false,
			Checklist: []string{"Remplacer l'ampoule", "Tester l'éclairage"},
		},
	}
}

// InstallDefaults creates the default templates for an establishment.
func (s *TemplateService) InstallDefaults(ctx context.Context, establishmentID string) error {
	templates := DefaultTemplates()
	for i := range templates {
		templates[i].EstablishmentID = establishmentID
		templates[i].IsActive = true
	}
	if err := s.db.WithContext(ctx).Create(&templates).Error; err != nil {
		return apperrors.DB("Impossible de créer les modèles par défaut", err)
	}
	return nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, establishmentID string, input TemplateInput) (*models.InterventionTemplate, error) {
	tpl := &models.InterventionTemplate{
		EstablishmentID: establishmentID,
		Priority:        models.PriorityMedium,
		Checklist:       []string{},
		IsActive:        true,
	}
	if err := applyTemplateInput(tpl, input); err != nil {
		return nil, err
	}
	if tpl.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le nom du modèle est obligatoire")
	}
	active := tpl.IsActive
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tpl).Error; err != nil {
			return err
		}
		// is_active defaults to true in the schema, so false must be written explicitly.
		if !active {
			tpl.IsActive = false
			return tx.Model(tpl).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to create template")
		return nil, apperrors.DB("Impossible de créer le modèle", err)
	}
	return tpl, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, establishmentID, id string) (*models.InterventionTemplate, error) {
	var tpl models.InterventionTemplate
	err := s.db.WithContext(ctx).Where("id = ? AND establishment_id = ?", id, establishmentID).First(&tpl).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeNotFound, "Modèle d'intervention introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("template_id", id).Error("failed to load template")
		return nil, apperrors.DB("Impossible de charger le modèle", err)
	}
	return &tpl, nil
}

// ListTemplates lists templates, most used first, then by name.
func (s *TemplateService) ListTemplates(ctx context.Context, establishmentID string, activeOnly bool) ([]models.InterventionTemplate, error) {
	q := s.db.WithContext(ctx).Where("establishment_id = ?", establishmentID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var templates []models.InterventionTemplate
	if err := q.Order("usage_count DESC").Order("name ASC").Find(&templates).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list templates")
		return nil, apperrors.DB("Impossible de charger les modèles", err)
	}
	return templates, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, establishmentID, id string, input TemplateInput) (*models.InterventionTemplate, error) {
	tpl, err := s.GetTemplate(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	if err := applyTemplateInput(tpl, input); err != nil {
		return nil, err
	}
	if tpl.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le nom du modèle est obligatoire")
	}
	err = s.db.WithContext(ctx).Model(tpl).
		Select("name", "description", "type", "priority", "estimated_duration", "blocks_room", "checklist", "is_active").
		Updates(tpl).Error
	if err != nil {
		s.logger.WithError(err).WithField("template_id", id).Error("failed to update template")
		return nil, apperrors.DB("Impossible de mettre à jour le modèle", err)
	}
	return tpl, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, establishmentID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND establishment_id = ?", id, establishmentID).Delete(&models.InterventionTemplate{})
	if res.Error != nil {
		s.logger.WithError(res.Error).WithField("template_id", id).Error("failed to delete template")
		return apperrors.DB("Impossible de supprimer le modèle", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "Modèle d'intervention introuvable")
	}
	return nil
}

func applyTemplateInput(tpl *models.InterventionTemplate, input TemplateInput) error {
	if input.Name != nil {
		tpl.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		tpl.Description = *input.Description
	}
	if input.Type != nil {
		tpl.Type = *input.Type
	}
	if input.Priority != nil {
		if !models.IsValidPriority(*input.Priority) {
			return apperrors.New(apperrors.CodeValidation, "Priorité invalide")
		}
		tpl.Priority = *input.Priority
	}
	if input.EstimatedDuration != nil {
		if *input.EstimatedDuration < 0 {
			return apperrors.New(apperrors.CodeValidation, "La durée estimée doit être positive")
		}
		tpl.EstimatedDuration = input.EstimatedDuration
	}
	if input.BlocksRoom != nil {
		tpl.BlocksRoom = *input.BlocksRoom
	}
	if input.Checklist != nil {
		tpl.Checklist = *input.Checklist
	}
	if input.IsActive != nil {
		tpl.IsActive = *input.IsActive
	}
	return nil
}

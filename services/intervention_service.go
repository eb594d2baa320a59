package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

// InterventionFilter narrows ListInterventions.
type InterventionFilter struct {
	Status     string
	Priority   string
	Type       string
	RoomID     string
	AssignedTo string
	Limit      int
}

// InterventionInput carries the fields a client may set on an intervention.
type InterventionInput struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Type              string   `json:"type"`
	Priority          string   `json:"priority"`
	Location          string   `json:"location"`
	RoomID            *string  `json:"roomId"`
	BlocksRoom        bool     `json:"blocksRoom"`
	AssignedTo        *string  `json:"assignedTo"`
	AssignedToName    string   `json:"assignedToName"`
	EstimatedDuration *float64 `json:"estimatedDuration"`
}

// InterventionUpdate carries the editable descriptive fields.
type InterventionUpdate struct {
	Title             *string  `json:"title"`
	Description       *string  `json:"description"`
	Type              *string  `json:"type"`
	Priority          *string  `json:"priority"`
	Location          *string  `json:"location"`
	EstimatedDuration *float64 `json:"estimatedDuration"`
}

type InterventionService struct {
	db            *gorm.DB
	blockages     *BlockageService
	notifications *NotificationService
	photos        *PhotoStore
	logger        *logrus.Logger
	now           Clock
}

func NewInterventionService(
	db *gorm.DB,
	blockages *BlockageService,
	notifications *NotificationService,
	photos *PhotoStore,
	logger *logrus.Logger,
	now Clock,
) *InterventionService {
	return &InterventionService{
		db:            db,
		blockages:     blockages,
		notifications: notifications,
		photos:        photos,
		logger:        logger,
		now:           clockOrDefault(now),
	}
}

// CreateIntervention records a work order. When it blocks a room, the room is
// blocked and a blockage opened in the same transaction.
func (s *InterventionService) CreateIntervention(ctx context.Context, establishment *models.Establishment, input InterventionInput, actor Actor) (*models.Intervention, error) {
	var intervention *models.Intervention
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		intervention, err = s.create(ctx, tx, establishment, input, actor, nil)
		return err
	})
	if err != nil {
		return nil, s.wrap(err, "Impossible de créer l'intervention", "")
	}
	s.afterCreate(ctx, intervention, actor)
	return intervention, nil
}

// CreateFromTemplate materializes a template into an intervention. Fields set
// in overrides win over the template's; the template usage count is bumped
// atomically.
func (s *InterventionService) CreateFromTemplate(ctx context.Context, establishment *models.Establishment, templateID string, overrides InterventionInput, actor Actor) (*models.Intervention, error) {
	var intervention *models.Intervention
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tpl models.InterventionTemplate
		err := tx.Where("id = ? AND establishment_id = ?", templateID, establishment.ID).First(&tpl).Error
		if isNotFound(err) {
			return apperrors.New(apperrors.CodeNotFound, "Modèle d'intervention introuvable")
		}
		if err != nil {
			return apperrors.DB("Impossible de charger le modèle", err)
		}
		if !tpl.IsActive {
			return apperrors.New(apperrors.CodeValidation, "Ce modèle est désactivé")
		}

		input := overrides
		if strings.TrimSpace(input.Title) == "" {
			input.Title = tpl.Name
		}
		if input.Description == "" {
			input.Description = tpl.Description
		}
		if input.Type == "" {
			input.Type = tpl.Type
		}
		if input.Priority == "" {
			input.Priority = tpl.Priority
		}
		if input.EstimatedDuration == nil {
			input.EstimatedDuration = tpl.EstimatedDuration
		}
		input.BlocksRoom = input.BlocksRoom || tpl.BlocksRoom

		intervention, err = s.create(ctx, tx, establishment, input, actor, &tpl.ID)
		if err != nil {
			return err
		}
		err = tx.Model(&models.InterventionTemplate{}).
			Where("id = ?", tpl.ID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
		if err != nil {
			return apperrors.DB("Impossible de mettre à jour le modèle", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "Impossible de créer l'intervention depuis le modèle", templateID)
	}
	s.afterCreate(ctx, intervention, actor)
	return intervention, nil
}

func (s *InterventionService) create(
	ctx context.Context,
	tx *gorm.DB,
	establishment *models.Establishment,
	input InterventionInput,
	actor Actor,
	templateID *string,
) (*models.Intervention, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le titre de l'intervention est obligatoire")
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidPriority(priority) {
		return nil, apperrors.New(apperrors.CodeValidation, "Priorité invalide")
	}
	if input.EstimatedDuration != nil && *input.EstimatedDuration < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "La durée estimée doit être positive")
	}

	intervention := &models.Intervention{
		EstablishmentID:   establishment.ID,
		Title:             title,
		Description:       input.Description,
		Type:              input.Type,
		Priority:          priority,
		Status:            models.InterventionPending,
		Location:          input.Location,
		AssignedToName:    input.AssignedToName,
		CreatedBy:         actor.ID,
		CreatedByName:     actor.Name,
		EstimatedDuration: input.EstimatedDuration,
		Photos:            []string{},
		TemplateID:        templateID,
	}
	if input.AssignedTo != nil && *input.AssignedTo != "" {
		intervention.AssignedTo = input.AssignedTo
		intervention.Status = models.InterventionAssigned
	}

	var room *models.Room
	if input.RoomID != nil && *input.RoomID != "" {
		var r models.Room
		err := forUpdate(tx).Where("id = ? AND establishment_id = ?", *input.RoomID, establishment.ID).First(&r).Error
		if isNotFound(err) {
			return nil, apperrors.New(apperrors.CodeRoomNotFound, "Chambre introuvable")
		}
		if err != nil {
			return nil, apperrors.DB("Impossible de charger la chambre", err)
		}
		room = &r
		intervention.RoomID = &r.ID
		intervention.RoomNumber = r.Number
		intervention.BlocksRoom = input.BlocksRoom
		if intervention.Location == "" {
			intervention.Location = "Chambre " + r.Number
		}
	}

	if err := tx.Create(intervention).Error; err != nil {
		return nil, apperrors.DB("Impossible de créer l'intervention", err)
	}

	if room != nil && intervention.BlocksRoom {
		if !room.IsBlocked {
			if err := markBlocked(tx, room); err != nil {
				return nil, err
			}
		}
		if _, err := s.blockages.WithTx(tx).CreateBlockageFromIntervention(ctx, intervention, room, establishment); err != nil {
			return nil, err
		}
	}
	return intervention, nil
}

func (s *InterventionService) afterCreate(ctx context.Context, intervention *models.Intervention, actor Actor) {
	s.logger.WithFields(logrus.Fields{
		"intervention_id":  intervention.ID,
		"establishment_id": intervention.EstablishmentID,
		"blocks_room":      intervention.BlocksRoom,
	}).Info("intervention created")

	if intervention.AssignedTo != nil && *intervention.AssignedTo != actor.ID {
		s.notifyAssignee(ctx, intervention)
	}
}

func (s *InterventionService) GetIntervention(ctx context.Context, establishmentID, id string) (*models.Intervention, error) {
	return s.load(s.db.WithContext(ctx), establishmentID, id)
}

func (s *InterventionService) load(db *gorm.DB, establishmentID, id string) (*models.Intervention, error) {
	var intervention models.Intervention
	err := db.Where("id = ? AND establishment_id = ?", id, establishmentID).First(&intervention).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeNotFound, "Intervention introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("intervention_id", id).Error("failed to load intervention")
		return nil, apperrors.DB("Impossible de charger l'intervention", err)
	}
	return &intervention, nil
}

func (s *InterventionService) ListInterventions(ctx context.Context, establishmentID string, filter InterventionFilter) ([]models.Intervention, error) {
	q := s.db.WithContext(ctx).Where("establishment_id = ?", establishmentID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.RoomID != "" {
		q = q.Where("room_id = ?", filter.RoomID)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var interventions []models.Intervention
	if err := q.Order("created_at DESC").Find(&interventions).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list interventions")
		return nil, apperrors.DB("Impossible de charger les interventions", err)
	}
	return interventions, nil
}

func (s *InterventionService) UpdateIntervention(ctx context.Context, establishmentID, id string, update InterventionUpdate) (*models.Intervention, error) {
	intervention, err := s.GetIntervention(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "Le titre de l'intervention est obligatoire")
		}
		intervention.Title = title
	}
	if update.Description != nil {
		intervention.Description = *update.Description
	}
	if update.Type != nil {
		intervention.Type = *update.Type
	}
	if update.Priority != nil {
		if !models.IsValidPriority(*update.Priority) {
			return nil, apperrors.New(apperrors.CodeValidation, "Priorité invalide")
		}
		intervention.Priority = *update.Priority
	}
	if update.Location != nil {
		intervention.Location = *update.Location
	}
	if update.EstimatedDuration != nil {
		intervention.EstimatedDuration = update.EstimatedDuration
	}

	err = s.db.WithContext(ctx).Model(intervention).
		Select("title", "description", "type", "priority", "location", "estimated_duration").
		Updates(intervention).Error
	if err != nil {
		s.logger.WithError(err).WithField("intervention_id", id).Error("failed to update intervention")
		return nil, apperrors.DB("Impossible de mettre à jour l'intervention", err)
	}
	return intervention, nil
}

// DeleteIntervention removes the intervention and its comments. An active
// blockage it opened is resolved first and the room freed when nothing else
// blocks it.
func (s *InterventionService) DeleteIntervention(ctx context.Context, establishmentID, id string, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		intervention, err := s.load(tx, establishmentID, id)
		if err != nil {
			return err
		}
		if err := s.releaseRoom(ctx, tx, intervention, actor); err != nil {
			return err
		}
		if err := tx.Where("intervention_id = ?", id).Delete(&models.InterventionComment{}).Error; err != nil {
			return apperrors.DB("Impossible de supprimer les commentaires", err)
		}
		if err := tx.Delete(intervention).Error; err != nil {
			return apperrors.DB("Impossible de supprimer l'intervention", err)
		}
		return nil
	})
	if err != nil {
		return s.wrap(err, "Impossible de supprimer l'intervention", id)
	}
	return nil
}

// ChangeStatus moves an intervention to status, stamping start and completion
// times. Reaching completed, validated or cancelled resolves the linked
// blockage.
func (s *InterventionService) ChangeStatus(ctx context.Context, establishmentID, id, status string, actor Actor) (*models.Intervention, error) {
	if !models.IsValidInterventionStatus(status) {
		return nil, apperrors.New(apperrors.CodeValidation, "Statut d'intervention invalide")
	}

	var intervention *models.Intervention
	var previous string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		intervention, err = s.load(tx, establishmentID, id)
		if err != nil {
			return err
		}
		previous = intervention.Status
		if previous == status {
			return nil
		}
		if !CanTransition(previous, status) {
			s.logger.WithFields(logrus.Fields{
				"intervention_id": id,
				"from":            previous,
				"to":              status,
			}).Warn("intervention status change outside the transition table")
		}

		now := s.now()
		intervention.Status = status
		switch status {
		case models.InterventionInProgress:
			if intervention.StartedAt == nil {
				intervention.StartedAt = &now
			}
			intervention.CompletedAt = nil
		case models.InterventionCompleted:
			intervention.CompletedAt = &now
		case models.InterventionValidated:
			if intervention.CompletedAt == nil {
				intervention.CompletedAt = &now
			}
		}

		err = tx.Model(intervention).
			Select("status", "started_at", "completed_at").
			Updates(intervention).Error
		if err != nil {
			return apperrors.DB("Impossible de modifier le statut de l'intervention", err)
		}
		if closesBlockage(status) {
			return s.releaseRoom(ctx, tx, intervention, actor)
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "Impossible de modifier le statut de l'intervention", id)
	}

	if previous != status {
		s.logger.WithFields(logrus.Fields{
			"intervention_id": id,
			"from":            previous,
			"to":              status,
		}).Info("intervention status changed")
		s.notifyStatusChange(ctx, intervention, actor)
	}
	return intervention, nil
}

// releaseRoom resolves the intervention's active blockage and frees the room
// when no other active blockage holds it.
func (s *InterventionService) releaseRoom(ctx context.Context, tx *gorm.DB, intervention *models.Intervention, actor Actor) error {
	blockages := s.blockages.WithTx(tx)
	resolved, err := blockages.ResolveBlockageForIntervention(ctx, intervention.ID, intervention.EstablishmentID, actor.ID)
	if err != nil || resolved == nil {
		return err
	}

	remaining, err := blockages.activeForRoom(ctx, intervention.EstablishmentID, resolved.RoomID)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return nil
	}
	var room models.Room
	if err := forUpdate(tx).Where("id = ?", resolved.RoomID).First(&room).Error; err != nil {
		if isNotFound(err) {
			return nil
		}
		return apperrors.DB("Impossible de charger la chambre", err)
	}
	return markAvailable(tx, &room)
}

// Assign hands the intervention to a user and notifies them. A pending
// intervention becomes assigned.
func (s *InterventionService) Assign(ctx context.Context, establishmentID, id, assigneeID, assigneeName string, actor Actor) (*models.Intervention, error) {
	if strings.TrimSpace(assigneeID) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le technicien assigné est obligatoire")
	}
	intervention, err := s.GetIntervention(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	intervention.AssignedTo = &assigneeID
	intervention.AssignedToName = assigneeName
	if intervention.Status == models.InterventionPending {
		intervention.Status = models.InterventionAssigned
	}
	err = s.db.WithContext(ctx).Model(intervention).
		Select("assigned_to", "assigned_to_name", "status").
		Updates(intervention).Error
	if err != nil {
		s.logger.WithError(err).WithField("intervention_id", id).Error("failed to assign intervention")
		return nil, apperrors.DB("Impossible d'assigner l'intervention", err)
	}
	if assigneeID != actor.ID {
		s.notifyAssignee(ctx, intervention)
	}
	return intervention, nil
}

// AddPhoto stores a base64 image and appends its path to the intervention.
func (s *InterventionService) AddPhoto(ctx context.Context, establishmentID, id, imageBase64 string) (*models.Intervention, error) {
	intervention, err := s.GetIntervention(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	path, err := s.photos.SaveBase64Image(imageBase64, "interventions/"+id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "Image invalide", err)
	}
	intervention.Photos = append(intervention.Photos, path)
	if err := s.db.WithContext(ctx).Model(intervention).Update("photos", intervention.Photos).Error; err != nil {
		if rmErr := s.photos.Remove(path); rmErr != nil {
			s.logger.WithError(rmErr).WithField("path", path).Warn("failed to remove orphan photo")
		}
		s.logger.WithError(err).WithField("intervention_id", id).Error("failed to attach photo")
		return nil, apperrors.DB("Impossible d'ajouter la photo", err)
	}
	return intervention, nil
}

func (s *InterventionService) AddComment(ctx context.Context, establishmentID, interventionID, content string, actor Actor) (*models.InterventionComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le commentaire est vide")
	}
	if _, err := s.GetIntervention(ctx, establishmentID, interventionID); err != nil {
		return nil, err
	}
	comment := &models.InterventionComment{
		InterventionID:  interventionID,
		EstablishmentID: establishmentID,
		UserID:          actor.ID,
		UserName:        actor.Name,
		Content:         content,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		s.logger.WithError(err).WithField("intervention_id", interventionID).Error("failed to add comment")
		return nil, apperrors.DB("Impossible d'ajouter le commentaire", err)
	}
	return comment, nil
}

func (s *InterventionService) ListComments(ctx context.Context, establishmentID, interventionID string) ([]models.InterventionComment, error) {
	var comments []models.InterventionComment
	err := s.db.WithContext(ctx).
		Where("intervention_id = ? AND establishment_id = ?", interventionID, establishmentID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, apperrors.DB("Impossible de charger les commentaires", err)
	}
	return comments, nil
}

func (s *InterventionService) DeleteComment(ctx context.Context, establishmentID, commentID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND establishment_id = ?", commentID, establishmentID).
		Delete(&models.InterventionComment{})
	if res.Error != nil {
		return apperrors.DB("Impossible de supprimer le commentaire", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "Commentaire introuvable")
	}
	return nil
}

func (s *InterventionService) notifyAssignee(ctx context.Context, intervention *models.Intervention) {
	if s.notifications == nil || intervention.AssignedTo == nil {
		return
	}
	n := &models.Notification{
		UserID:          *intervention.AssignedTo,
		EstablishmentID: intervention.EstablishmentID,
		Type:            models.NotificationInterventionAssigned,
		Title:           "Nouvelle intervention assignée",
		Message:         intervention.Title,
		Priority:        intervention.Priority,
		Link:            "/interventions/" + intervention.ID,
		Data:            NotificationData(map[string]string{"interventionId": intervention.ID}),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.WithError(err).WithField("intervention_id", intervention.ID).Warn("failed to notify assignee")
	}
}

func (s *InterventionService) notifyStatusChange(ctx context.Context, intervention *models.Intervention, actor Actor) {
	if s.notifications == nil || intervention.CreatedBy == "" || intervention.CreatedBy == actor.ID {
		return
	}
	n := &models.Notification{
		UserID:          intervention.CreatedBy,
		EstablishmentID: intervention.EstablishmentID,
		Type:            models.NotificationInterventionStatus,
		Title:           "Intervention mise à jour",
		Message:         intervention.Title + " : " + intervention.Status,
		Priority:        models.PriorityLow,
		Link:            "/interventions/" + intervention.ID,
		Data: NotificationData(map[string]string{
			"interventionId": intervention.ID,
			"status":         intervention.Status,
		}),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.WithError(err).WithField("intervention_id", intervention.ID).Warn("failed to notify status change")
	}
}

func (s *InterventionService) wrap(err error, message, id string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	s.logger.WithError(err).WithField("intervention_id", id).Error(message)
	return apperrors.DB(message, err)
}

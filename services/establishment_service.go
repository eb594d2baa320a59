package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

type EstablishmentInput struct {
	Name       *string `json:"name"`
	Type       *string `json:"type"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Website    *string `json:"website"`
	Logo       *string `json:"logo"`
	Currency   *string `json:"currency"`
	TotalRooms *int    `json:"totalRooms"`
}

type EstablishmentService struct {
	db         *gorm.DB
	references *ReferenceListService
	templates  *TemplateService
	logger     *logrus.Logger
}

func NewEstablishmentService(db *gorm.DB, references *ReferenceListService, templates *TemplateService, logger *logrus.Logger) *EstablishmentService {
	return &EstablishmentService{db: db, references: references, templates: templates, logger: logger}
}

// CreateEstablishment creates the establishment, then installs the owner
// membership, default reference lists and default templates. Failures of
// those follow-up steps are logged and do not fail the creation.
func (s *EstablishmentService) CreateEstablishment(ctx context.Context, input EstablishmentInput, ownerID string) (*models.Establishment, error) {
	if ownerID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le propriétaire est obligatoire")
	}
	var owner models.User
	err := s.db.WithContext(ctx).Select("id").First(&owner, "id = ?", ownerID).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeUserNotFound, "Utilisateur introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("owner_id", ownerID).Error("failed to load establishment owner")
		return nil, apperrors.DB("Impossible de créer l'établissement", err)
	}

	est := &models.Establishment{OwnerID: ownerID, Currency: "EUR", IsActive: true}
	applyEstablishmentInput(est, input)
	if est.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le nom de l'établissement est obligatoire")
	}
	if err := s.db.WithContext(ctx).Create(est).Error; err != nil {
		s.logger.WithError(err).WithField("owner_id", ownerID).Error("failed to create establishment")
		return nil, apperrors.DB("Impossible de créer l'établissement", err)
	}

	s.initialize(ctx, est)
	s.logger.WithFields(logrus.Fields{
		"establishment_id": est.ID,
		"owner_id":         ownerID,
	}).Info("establishment created")
	return est, nil
}

func (s *EstablishmentService) initialize(ctx context.Context, est *models.Establishment) {
	log := s.logger.WithField("establishment_id", est.ID)

	owner := models.EstablishmentMember{EstablishmentID: est.ID, UserID: est.OwnerID, Role: models.RoleOwner}
	if err := s.db.WithContext(ctx).Create(&owner).Error; err != nil {
		log.WithError(err).Warn("owner membership was not created")
	}
	if err := s.references.InitializeDefaults(ctx, est.ID); err != nil {
		log.WithError(err).Warn("default reference lists were not installed")
	}
	if err := s.templates.InstallDefaults(ctx, est.ID); err != nil {
		log.WithError(err).Warn("default intervention templates were not installed")
	}
}

func (s *EstablishmentService) GetEstablishment(ctx context.Context, id string) (*models.Establishment, error) {
	var est models.Establishment
	err := s.db.WithContext(ctx).First(&est, "id = ?", id).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeEstablishmentNotFound, "Établissement introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("establishment_id", id).Error("failed to load establishment")
		return nil, apperrors.DB("Impossible de charger l'établissement", err)
	}
	return &est, nil
}

// ListEstablishmentsForUser returns the establishments userID is a member of.
func (s *EstablishmentService) ListEstablishmentsForUser(ctx context.Context, userID string) ([]models.Establishment, error) {
	var establishments []models.Establishment
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.EstablishmentMember{}).Select("establishment_id").Where("user_id = ?", userID)).
		Order("name ASC").
		Find(&establishments).Error
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to list establishments")
		return nil, apperrors.DB("Impossible de charger les établissements", err)
	}
	return establishments, nil
}

func (s *EstablishmentService) UpdateEstablishment(ctx context.Context, id string, input EstablishmentInput) (*models.Establishment, error) {
	est, err := s.GetEstablishment(ctx, id)
	if err != nil {
		return nil, err
	}
	applyEstablishmentInput(est, input)
	if est.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le nom de l'établissement est obligatoire")
	}
	err = s.db.WithContext(ctx).Model(est).
		Select("name", "type", "address", "city", "phone", "email", "website", "logo", "currency", "total_rooms").
		Updates(est).Error
	if err != nil {
		s.logger.WithError(err).WithField("establishment_id", id).Error("failed to update establishment")
		return nil, apperrors.DB("Impossible de mettre à jour l'établissement", err)
	}
	return est, nil
}

// establishmentScoped lists the tables whose rows belong to one establishment,
// children first.
var establishmentScoped = []interface{}{
	&models.InterventionComment{},
	&models.RoomBlockage{},
	&models.Intervention{},
	&models.StockMovement{},
	&models.InventoryItem{},
	&models.Supplier{},
	&models.InterventionTemplate{},
	&models.Notification{},
	&models.ReferenceList{},
	&models.Room{},
	&models.EstablishmentMember{},
}

// DeleteEstablishment removes the establishment and all of its data.
func (s *EstablishmentService) DeleteEstablishment(ctx context.Context, id string) error {
	if _, err := s.GetEstablishment(ctx, id); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range establishmentScoped {
			if err := tx.Where("establishment_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Establishment{}, "id = ?", id).Error
	})
	if err != nil {
		s.logger.WithError(err).WithField("establishment_id", id).Error("failed to delete establishment")
		return apperrors.DB("Impossible de supprimer l'établissement", err)
	}
	s.logger.WithField("establishment_id", id).Info("establishment deleted")
	return nil
}

// GetSettings returns the free-form settings document.
func (s *EstablishmentService) GetSettings(ctx context.Context, id string) (map[string]interface{}, error) {
	est, err := s.GetEstablishment(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeSettings(est.Settings), nil
}

// UpdateSettings merges patch into the settings document. A nil value removes
// the key.
func (s *EstablishmentService) UpdateSettings(ctx context.Context, id string, patch map[string]interface{}) (map[string]interface{}, error) {
	est, err := s.GetEstablishment(ctx, id)
	if err != nil {
		return nil, err
	}
	settings := decodeSettings(est.Settings)
	for k, v := range patch {
		if v == nil {
			delete(settings, k)
			continue
		}
		settings[k] = v
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "Paramètres invalides", err)
	}
	if err := s.db.WithContext(ctx).Model(est).Update("settings", datatypes.JSON(raw)).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", id).Error("failed to update settings")
		return nil, apperrors.DB("Impossible de mettre à jour les paramètres", err)
	}
	return settings, nil
}

func decodeSettings(raw datatypes.JSON) map[string]interface{} {
	settings := map[string]interface{}{}
	if len(raw) == 0 {
		return settings
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return map[string]interface{}{}
	}
	return settings
}

func applyEstablishmentInput(est *models.Establishment, input EstablishmentInput) {
	if input.Name != nil {
		est.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		est.Type = *input.Type
	}
	if input.Address != nil {
		est.Address = *input.Address
	}
	if input.City != nil {
		est.City = *input.City
	}
	if input.Phone != nil {
		est.Phone = *input.Phone
	}
	if input.Email != nil {
		est.Email = strings.TrimSpace(*input.Email)
	}
	if input.Website != nil {
		est.Website = *input.Website
	}
	if input.Logo != nil {
		est.Logo = *input.Logo
	}
	if input.Currency != nil && *input.Currency != "" {
		est.Currency = strings.ToUpper(*input.Currency)
	}
	if input.TotalRooms != nil {
		est.TotalRooms = *input.TotalRooms
	}
}

package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

// RoomFilter narrows ListRooms.
type RoomFilter struct {
	Status string
	Floor  string
}

// RoomInput carries the editable fields of a room.
type RoomInput struct {
	Number        string   `json:"number"`
	Floor         string   `json:"floor"`
	Type          string   `json:"type"`
	PricePerNight *float64 `json:"pricePerNight"`
	Capacity      *int     `json:"capacity"`
	Description   *string  `json:"description"`
}

// BlockRoomInput describes a manual block.
type BlockRoomInput struct {
	Reason               string  `json:"reason"`
	Urgency              string  `json:"urgency"`
	Notes                string  `json:"notes"`
	EstimatedUnblockDate *string `json:"estimatedUnblockDate"`
	BlockedBy            string  `json:"-"`
}

type RoomService struct {
	db        *gorm.DB
	blockages *BlockageService
	logger    *logrus.Logger
	now       Clock
}

func NewRoomService(db *gorm.DB, blockages *BlockageService, logger *logrus.Logger, now Clock) *RoomService {
	return &RoomService{db: db, blockages: blockages, logger: logger, now: clockOrDefault(now)}
}

func (s *RoomService) CreateRoom(ctx context.Context, establishmentID string, input RoomInput) (*models.Room, error) {
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le numéro de chambre est obligatoire")
	}
	room := models.Room{
		EstablishmentID: establishmentID,
		Number:          number,
		Floor:           input.Floor,
		Type:            input.Type,
		Status:          models.RoomStatusAvailable,
	}
	if input.PricePerNight != nil {
		if *input.PricePerNight < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "Le prix par nuit doit être positif")
		}
		room.PricePerNight = *input.PricePerNight
	}
	if input.Capacity != nil {
		room.Capacity = *input.Capacity
	}
	if input.Description != nil {
		room.Description = *input.Description
	}

	if err := s.db.WithContext(ctx).Create(&room).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.New(apperrors.CodeDuplicate, "La chambre "+number+" existe déjà")
		}
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to create room")
		return nil, apperrors.DB("Impossible de créer la chambre", err)
	}
	return &room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, establishmentID, roomID string) (*models.Room, error) {
	return s.loadRoom(s.db.WithContext(ctx), establishmentID, roomID)
}

func (s *RoomService) loadRoom(db *gorm.DB, establishmentID, roomID string) (*models.Room, error) {
	var room models.Room
	err := db.Where("id = ? AND establishment_id = ?", roomID, establishmentID).First(&room).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeRoomNotFound, "Chambre introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("room_id", roomID).Error("failed to load room")
		return nil, apperrors.DB("Impossible de charger la chambre", err)
	}
	return &room, nil
}

// forUpdate holds a row lock on what the query loads until tx ends.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *RoomService) ListRooms(ctx context.Context, establishmentID string, filter RoomFilter) ([]models.Room, error) {
	q := s.db.WithContext(ctx).Where("establishment_id = ?", establishmentID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Floor != "" {
		q = q.Where("floor = ?", filter.Floor)
	}
	var rooms []models.Room
	if err := q.Order("number ASC").Find(&rooms).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list rooms")
		return nil, apperrors.DB("Impossible de charger les chambres", err)
	}
	return rooms, nil
}

// UpdateRoom edits descriptive fields. Status and blocking go through
// SetRoomStatus, BlockRoom and UnblockRoom.
func (s *RoomService) UpdateRoom(ctx context.Context, establishmentID, roomID string, input RoomInput) (*models.Room, error) {
	room, err := s.GetRoom(ctx, establishmentID, roomID)
	if err != nil {
		return nil, err
	}
	if n := strings.TrimSpace(input.Number); n != "" {
		room.Number = n
	}
	if input.Floor != "" {
		room.Floor = input.Floor
	}
	if input.Type != "" {
		room.Type = input.Type
	}
	if input.PricePerNight != nil {
		if *input.PricePerNight < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "Le prix par nuit doit être positif")
		}
		room.PricePerNight = *input.PricePerNight
	}
	if input.Capacity != nil {
		room.Capacity = *input.Capacity
	}
	if input.Description != nil {
		room.Description = *input.Description
	}

	err = s.db.WithContext(ctx).Model(room).
		Select("number", "floor", "type", "price_per_night", "capacity", "description").
		Updates(room).Error
	if err != nil {
		if isDuplicate(err) {
			return nil, apperrors.New(apperrors.CodeDuplicate, "La chambre "+room.Number+" existe déjà")
		}
		s.logger.WithError(err).WithField("room_id", roomID).Error("failed to update room")
		return nil, apperrors.DB("Impossible de mettre à jour la chambre", err)
	}
	return room, nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, establishmentID, roomID string) error {
	room, err := s.GetRoom(ctx, establishmentID, roomID)
	if err != nil {
		return err
	}
	if room.IsBlocked {
		return apperrors.New(apperrors.CodeRoomBlocked, "Impossible de supprimer une chambre bloquée")
	}
	if err := s.db.WithContext(ctx).Delete(room).Error; err != nil {
		s.logger.WithError(err).WithField("room_id", roomID).Error("failed to delete room")
		return apperrors.DB("Impossible de supprimer la chambre", err)
	}
	return nil
}

// SetRoomStatus changes the operational status of an unblocked room.
func (s *RoomService) SetRoomStatus(ctx context.Context, establishmentID, roomID, status string) (*models.Room, error) {
	if status == models.RoomStatusBlocked || !models.IsValidRoomStatus(status) {
		return nil, apperrors.New(apperrors.CodeValidation, "Statut de chambre invalide")
	}
	room, err := s.GetRoom(ctx, establishmentID, roomID)
	if err != nil {
		return nil, err
	}
	if room.IsBlocked {
		return nil, apperrors.New(apperrors.CodeRoomBlocked, "La chambre est bloquée, débloquez-la d'abord")
	}
	room.Status = status
	if err := s.db.WithContext(ctx).Model(room).Update("status", status).Error; err != nil {
		s.logger.WithError(err).WithField("room_id", roomID).Error("failed to set room status")
		return nil, apperrors.DB("Impossible de modifier le statut de la chambre", err)
	}
	return room, nil
}

// BlockRoom marks the room blocked and opens a manual blockage in one
// transaction.
func (s *RoomService) BlockRoom(ctx context.Context, establishmentID, roomID string, input BlockRoomInput) (*models.RoomBlockage, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le motif du blocage est obligatoire")
	}
	eta, err := parseOptionalTime(input.EstimatedUnblockDate)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "Date de déblocage estimée invalide", err)
	}

	var blockage *models.RoomBlockage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.loadRoom(forUpdate(tx), establishmentID, roomID)
		if err != nil {
			return err
		}
		if room.IsBlocked {
			return apperrors.New(apperrors.CodeRoomAlreadyBlocked, "La chambre est déjà bloquée")
		}
		if err := markBlocked(tx, room); err != nil {
			return err
		}

		blockage = &models.RoomBlockage{
			EstablishmentID:      establishmentID,
			RoomID:               room.ID,
			RoomNumber:           room.Number,
			RoomPricePerNight:    room.PricePerNight,
			Reason:               strings.TrimSpace(input.Reason),
			Urgency:              input.Urgency,
			Notes:                input.Notes,
			BlockedBy:            input.BlockedBy,
			EstimatedUnblockDate: eta,
		}
		if eta != nil {
			blockage.EstimatedRevenueLoss = CalculateRevenueLoss(room.PricePerNight, CalculateDuration(s.now(), *eta))
		}
		return s.blockages.WithTx(tx).open(ctx, blockage)
	})
	if err != nil {
		return nil, s.txError(err, "Impossible de bloquer la chambre", roomID)
	}

	s.logger.WithFields(logrus.Fields{
		"room_id":     roomID,
		"blockage_id": blockage.ID,
		"reason":      blockage.Reason,
	}).Info("room blocked")
	return blockage, nil
}

// UnblockRoom resolves every active blockage of the room and makes it
// available again, in one transaction. A room that is neither blocked nor
// held by a blockage is returned unchanged.
func (s *RoomService) UnblockRoom(ctx context.Context, establishmentID, roomID, actor string) (*models.Room, error) {
	var room *models.Room
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = s.loadRoom(forUpdate(tx), establishmentID, roomID)
		if err != nil {
			return err
		}
		blockages := s.blockages.WithTx(tx)
		active, err := blockages.activeForRoom(ctx, establishmentID, roomID)
		if err != nil {
			return err
		}
		if !room.IsBlocked && len(active) == 0 {
			// nothing to release; keep maintenance or cleaning as is
			return nil
		}
		for _, b := range active {
			if _, err := blockages.ResolveBlockage(ctx, b.ID, establishmentID, actor); err != nil {
				return err
			}
		}
		return markAvailable(tx, room)
	})
	if err != nil {
		return nil, s.txError(err, "Impossible de débloquer la chambre", roomID)
	}
	s.logger.WithField("room_id", roomID).Info("room unblocked")
	return room, nil
}

func (s *RoomService) txError(err error, message, roomID string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	s.logger.WithError(err).WithField("room_id", roomID).Error(message)
	return apperrors.DB(message, err)
}

func markBlocked(tx *gorm.DB, room *models.Room) error {
	room.Status = models.RoomStatusBlocked
	room.IsBlocked = true
	err := tx.Model(room).Select("status", "is_blocked").Updates(room).Error
	if err != nil {
		return apperrors.DB("Impossible de bloquer la chambre", err)
	}
	return nil
}

func markAvailable(tx *gorm.DB, room *models.Room) error {
	room.Status = models.RoomStatusAvailable
	room.IsBlocked = false
	err := tx.Model(room).Select("status", "is_blocked").Updates(room).Error
	if err != nil {
		return apperrors.DB("Impossible de débloquer la chambre", err)
	}
	return nil
}

// ResolveBlockage resolves one blockage and frees its room when no other
// active blockage holds it.
func (s *RoomService) ResolveBlockage(ctx context.Context, establishmentID, blockageID, actor string) (*models.RoomBlockage, error) {
	var resolved *models.RoomBlockage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blockages := s.blockages.WithTx(tx)
		var err error
		resolved, err = blockages.ResolveBlockage(ctx, blockageID, establishmentID, actor)
		if err != nil {
			return err
		}
		remaining, err := blockages.activeForRoom(ctx, establishmentID, resolved.RoomID)
		if err != nil || len(remaining) > 0 {
			return err
		}
		room, err := s.loadRoom(forUpdate(tx), establishmentID, resolved.RoomID)
		if apperrors.Is(err, apperrors.CodeRoomNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !room.IsBlocked {
			return nil
		}
		return markAvailable(tx, room)
	})
	if err != nil {
		return nil, s.txError(err, "Impossible de résoudre le blocage", blockageID)
	}
	return resolved, nil
}

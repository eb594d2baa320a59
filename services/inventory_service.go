package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

// CalculateStatus classifies a stock level: out_of_stock at zero, low_stock up
// to and including minQuantity, in_stock above.
func CalculateStatus(quantity, minQuantity int) string {
	switch {
	case quantity <= 0:
		return models.StockOutOfStock
	case quantity <= minQuantity:
		return models.StockLowStock
	default:
		return models.StockInStock
	}
}

// applyDerived recomputes the cached status and total value of item. Every
// write path calls it before persisting.
func applyDerived(item *models.InventoryItem) {
	item.Status = CalculateStatus(item.Quantity, item.MinQuantity)
	item.TotalValue = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
}

// ItemFilter narrows ListItems.
type ItemFilter struct {
	Status   string
	Category string
	Search   string
}

// ItemInput carries the editable fields of an inventory item.
type ItemInput struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	SKU         *string          `json:"sku"`
	Unit        *string          `json:"unit"`
	Quantity    *int             `json:"quantity"`
	MinQuantity *int             `json:"minQuantity"`
	MaxQuantity *int             `json:"maxQuantity"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	SupplierID  *string          `json:"supplierId"`
	Location    *string          `json:"location"`
	Notes       *string          `json:"notes"`
}

// MovementInput describes a stock movement. Quantity is a delta except for
// adjustments, where it is the new absolute level.
type MovementInput struct {
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason"`
	Reference   string `json:"reference"`
	Destination string `json:"destination"`
}

// InventoryStats summarizes an establishment's stock.
type InventoryStats struct {
	TotalItems      int                        `json:"totalItems"`
	InStock         int                        `json:"inStock"`
	LowStock        int                        `json:"lowStock"`
	OutOfStock      int                        `json:"outOfStock"`
	TotalValue      decimal.Decimal            `json:"totalValue"`
	ValueByCategory map[string]decimal.Decimal `json:"valueByCategory"`
}

type InventoryService struct {
	db            *gorm.DB
	notifications *NotificationService
	logger        *logrus.Logger
	now           Clock
}

func NewInventoryService(db *gorm.DB, notifications *NotificationService, logger *logrus.Logger, now Clock) *InventoryService {
	return &InventoryService{db: db, notifications: notifications, logger: logger, now: clockOrDefault(now)}
}

func (s *InventoryService) CreateItem(ctx context.Context, establishmentID string, input ItemInput) (*models.InventoryItem, error) {
	item := &models.InventoryItem{EstablishmentID: establishmentID}
	if err := applyItemInput(item, input); err != nil {
		return nil, err
	}
	if item.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le nom de l'article est obligatoire")
	}
	applyDerived(item)

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to create inventory item")
		return nil, apperrors.DB("Impossible de créer l'article", err)
	}
	return item, nil
}

func (s *InventoryService) GetItem(ctx context.Context, establishmentID, itemID string) (*models.InventoryItem, error) {
	return s.loadItem(s.db.WithContext(ctx), establishmentID, itemID)
}

func (s *InventoryService) loadItem(db *gorm.DB, establishmentID, itemID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := db.Where("id = ? AND establishment_id = ?", itemID, establishmentID).First(&item).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeItemNotFound, "Article introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("item_id", itemID).Error("failed to load inventory item")
		return nil, apperrors.DB("Impossible de charger l'article", err)
	}
	return &item, nil
}

func (s *InventoryService) ListItems(ctx context.Context, establishmentID string, filter ItemFilter) ([]models.InventoryItem, error) {
	q := s.db.WithContext(ctx).Where("establishment_id = ?", establishmentID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	var items []models.InventoryItem
	if err := q.Order("name ASC").Find(&items).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list inventory")
		return nil, apperrors.DB("Impossible de charger l'inventaire", err)
	}
	return items, nil
}

// UpdateItem edits an item. Quantity changes made here bypass the movement
// ledger; use CreateStockMovement to keep a trace.
func (s *InventoryService) UpdateItem(ctx context.Context, establishmentID, itemID string, input ItemInput) (*models.InventoryItem, error) {
	item, err := s.GetItem(ctx, establishmentID, itemID)
	if err != nil {
		return nil, err
	}
	if err := applyItemInput(item, input); err != nil {
		return nil, err
	}
	if item.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le nom de l'article est obligatoire")
	}
	applyDerived(item)

	err = s.db.WithContext(ctx).Model(item).
		Select("name", "category", "sku", "unit", "quantity", "min_quantity", "max_quantity", "unit_price",
			"total_value", "status", "supplier_id", "location", "notes").
		Updates(item).Error
	if err != nil {
		s.logger.WithError(err).WithField("item_id", itemID).Error("failed to update inventory item")
		return nil, apperrors.DB("Impossible de mettre à jour l'article", err)
	}
	return item, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, establishmentID, itemID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND establishment_id = ?", itemID, establishmentID).
		Delete(&models.InventoryItem{})
	if res.Error != nil {
		s.logger.WithError(res.Error).WithField("item_id", itemID).Error("failed to delete inventory item")
		return apperrors.DB("Impossible de supprimer l'article", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeItemNotFound, "Article introuvable")
	}
	return nil
}

// CreateStockMovement applies a movement to an item and records it. The item
// is read under a row lock and both writes commit together; a rejected
// movement leaves the item untouched.
func (s *InventoryService) CreateStockMovement(ctx context.Context, establishmentID, itemID, userID, userName string, data MovementInput) (*models.StockMovement, *models.InventoryItem, error) {
	if !models.IsValidMovementType(data.Type) {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "Type de mouvement invalide")
	}
	if data.Type != models.MovementAdjustment && data.Quantity <= 0 {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "La quantité doit être positive")
	}

	var movement *models.StockMovement
	var item *models.InventoryItem
	var previousStatus string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = s.loadItem(tx.Clauses(clause.Locking{Strength: "UPDATE"}), establishmentID, itemID)
		if err != nil {
			return err
		}
		previousStatus = item.Status

		newQuantity, err := ApplyMovement(item.Quantity, data.Type, data.Quantity)
		if err != nil {
			return err
		}

		movement = &models.StockMovement{
			EstablishmentID:  establishmentID,
			ItemID:           item.ID,
			ItemName:         item.Name,
			Type:             data.Type,
			Quantity:         data.Quantity,
			PreviousQuantity: item.Quantity,
			NewQuantity:      newQuantity,
			Reason:           data.Reason,
			Reference:        data.Reference,
			Destination:      data.Destination,
			UserID:           userID,
			UserName:         userName,
		}
		if err := tx.Create(movement).Error; err != nil {
			return apperrors.DB("Impossible d'enregistrer le mouvement de stock", err)
		}

		now := s.now()
		item.Quantity = newQuantity
		item.LastMovementAt = &now
		applyDerived(item)
		err = tx.Model(item).
			Select("quantity", "status", "total_value", "last_movement_at").
			Updates(item).Error
		if err != nil {
			return apperrors.DB("Impossible de mettre à jour l'article", err)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			err = apperrors.DB("Impossible d'enregistrer le mouvement de stock", err)
		}
		if apperrors.Is(err, apperrors.CodeDB) {
			s.logger.WithError(err).WithField("item_id", itemID).Error("stock movement failed")
		}
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"item_id":  itemID,
		"type":     data.Type,
		"quantity": data.Quantity,
		"new_qty":  item.Quantity,
		"status":   item.Status,
	}).Info("stock movement recorded")

	if item.Status != models.StockInStock && item.Status != previousStatus {
		s.notifyLowStock(ctx, item)
	}
	return movement, item, nil
}

// ApplyMovement computes the quantity after a movement. out and transfer
// fail with INSUFFICIENT_STOCK rather than go negative; an adjustment sets the
// level directly and clamps at zero.
func ApplyMovement(current int, movementType string, quantity int) (int, error) {
	switch movementType {
	case models.MovementIn:
		return current + quantity, nil
	case models.MovementOut, models.MovementTransfer:
		next := current - quantity
		if next < 0 {
			return current, apperrors.New(apperrors.CodeInsufficientStock,
				fmt.Sprintf("Stock insuffisant : %d disponible(s), %d demandé(s)", current, quantity))
		}
		return next, nil
	case models.MovementAdjustment:
		if quantity < 0 {
			return 0, nil
		}
		return quantity, nil
	}
	return current, apperrors.New(apperrors.CodeValidation, "Type de mouvement invalide")
}

// ListMovements returns the ledger, newest first. An empty itemID lists the
// whole establishment.
func (s *InventoryService) ListMovements(ctx context.Context, establishmentID, itemID string, limit int) ([]models.StockMovement, error) {
	q := s.db.WithContext(ctx).Where("establishment_id = ?", establishmentID)
	if itemID != "" {
		q = q.Where("item_id = ?", itemID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var movements []models.StockMovement
	if err := q.Order("created_at DESC").Find(&movements).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list stock movements")
		return nil, apperrors.DB("Impossible de charger les mouvements de stock", err)
	}
	return movements, nil
}

// GetLowStockItems returns items that are low or out of stock.
func (s *InventoryService) GetLowStockItems(ctx context.Context, establishmentID string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.WithContext(ctx).
		Where("establishment_id = ? AND status IN ?", establishmentID, []string{models.StockLowStock, models.StockOutOfStock}).
		Order("quantity ASC").
		Find(&items).Error
	if err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list low stock items")
		return nil, apperrors.DB("Impossible de charger les articles en rupture", err)
	}
	return items, nil
}

func (s *InventoryService) GetInventoryStats(ctx context.Context, establishmentID string) (*InventoryStats, error) {
	items, err := s.ListItems(ctx, establishmentID, ItemFilter{})
	if err != nil {
		return nil, err
	}
	stats := &InventoryStats{TotalValue: decimal.Zero, ValueByCategory: map[string]decimal.Decimal{}}
	for _, item := range items {
		stats.TotalItems++
		switch item.Status {
		case models.StockInStock:
			stats.InStock++
		case models.StockLowStock:
			stats.LowStock++
		case models.StockOutOfStock:
			stats.OutOfStock++
		}
		stats.TotalValue = stats.TotalValue.Add(item.TotalValue)
		category := item.Category
		if category == "" {
			category = "autre"
		}
		stats.ValueByCategory[category] = stats.ValueByCategory[category].Add(item.TotalValue)
	}
	return stats, nil
}

func (s *InventoryService) notifyLowStock(ctx context.Context, item *models.InventoryItem) {
	if s.notifications == nil {
		return
	}
	title := "Stock bas"
	priority := models.PriorityHigh
	if item.Status == models.StockOutOfStock {
		title = "Rupture de stock"
		priority = models.PriorityUrgent
	}
	tmpl := models.Notification{
		Type:     models.NotificationLowStock,
		Title:    title,
		Message:  fmt.Sprintf("%s : %d %s restant(s)", item.Name, item.Quantity, item.Unit),
		Priority: priority,
		Link:     "/inventory/" + item.ID,
		Data:     NotificationData(map[string]interface{}{"itemId": item.ID, "quantity": item.Quantity}),
	}
	roles := []string{models.RoleOwner, models.RoleManager}
	if _, err := s.notifications.NotifyEstablishmentRoles(ctx, item.EstablishmentID, roles, tmpl); err != nil {
		s.logger.WithError(err).WithField("item_id", item.ID).Warn("low stock notification failed")
	}
}

func applyItemInput(item *models.InventoryItem, input ItemInput) error {
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.SKU != nil {
		item.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return apperrors.New(apperrors.CodeValidation, "La quantité ne peut pas être négative")
		}
		item.Quantity = *input.Quantity
	}
	if input.MinQuantity != nil {
		if *input.MinQuantity < 0 {
			return apperrors.New(apperrors.CodeValidation, "Le seuil minimum ne peut pas être négatif")
		}
		item.MinQuantity = *input.MinQuantity
	}
	if input.MaxQuantity != nil {
		item.MaxQuantity = input.MaxQuantity
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return apperrors.New(apperrors.CodeValidation, "Le prix unitaire ne peut pas être négatif")
		}
		item.UnitPrice = *input.UnitPrice
	}
	if input.SupplierID != nil {
		if *input.SupplierID == "" {
			item.SupplierID = nil
		} else {
			item.SupplierID = input.SupplierID
		}
	}
	if input.Location != nil {
		item.Location = *input.Location
	}
	if input.Notes != nil {
		item.Notes = *input.Notes
	}
	return nil
}

package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

// SupplierFilter narrows ListSuppliers. A nil Active lists both states.
type SupplierFilter struct {
	Category string
	Active   *bool
	Search   string
}

type SupplierInput struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contactName"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Category    *string `json:"category"`
	Website     *string `json:"website"`
	Notes       *string `json:"notes"`
}

type SupplierService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewSupplierService(db *gorm.DB, logger *logrus.Logger) *SupplierService {
	return &SupplierService{db: db, logger: logger}
}

func (s *SupplierService) CreateSupplier(ctx context.Context, establishmentID string, input SupplierInput) (*models.Supplier, error) {
	supplier := &models.Supplier{EstablishmentID: establishmentID, IsActive: true}
	applySupplierInput(supplier, input)
	if supplier.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le nom du fournisseur est obligatoire")
	}
	if err := s.db.WithContext(ctx).Create(supplier).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to create supplier")
		return nil, apperrors.DB("Impossible de créer le fournisseur", err)
	}
	return supplier, nil
}

func (s *SupplierService) GetSupplier(ctx context.Context, establishmentID, id string) (*models.Supplier, error) {
	var supplier models.Supplier
	err := s.db.WithContext(ctx).Where("id = ? AND establishment_id = ?", id, establishmentID).First(&supplier).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeNotFound, "Fournisseur introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("supplier_id", id).Error("failed to load supplier")
		return nil, apperrors.DB("Impossible de charger le fournisseur", err)
	}
	return &supplier, nil
}

func (s *SupplierService) ListSuppliers(ctx context.Context, establishmentID string, filter SupplierFilter) ([]models.Supplier, error) {
	q := s.db.WithContext(ctx).Where("establishment_id = ?", establishmentID)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(contact_name) LIKE ?", like, like)
	}
	var suppliers []models.Supplier
	if err := q.Order("name ASC").Find(&suppliers).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list suppliers")
		return nil, apperrors.DB("Impossible de charger les fournisseurs", err)
	}
	return suppliers, nil
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, establishmentID, id string, input SupplierInput) (*models.Supplier, error) {
	supplier, err := s.GetSupplier(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	applySupplierInput(supplier, input)
	if supplier.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "Le nom du fournisseur est obligatoire")
	}
	err = s.db.WithContext(ctx).Model(supplier).
		Select("name", "contact_name", "email", "phone", "address", "category", "website", "notes").
		Updates(supplier).Error
	if err != nil {
		s.logger.WithError(err).WithField("supplier_id", id).Error("failed to update supplier")
		return nil, apperrors.DB("Impossible de mettre à jour le fournisseur", err)
	}
	return supplier, nil
}

// ToggleActive flips the supplier's active flag.
func (s *SupplierService) ToggleActive(ctx context.Context, establishmentID, id string) (*models.Supplier, error) {
	supplier, err := s.GetSupplier(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	supplier.IsActive = !supplier.IsActive
	if err := s.db.WithContext(ctx).Model(supplier).Update("is_active", supplier.IsActive).Error; err != nil {
		s.logger.WithError(err).WithField("supplier_id", id).Error("failed to toggle supplier")
		return nil, apperrors.DB("Impossible de modifier le fournisseur", err)
	}
	return supplier, nil
}

// DeleteSupplier removes the supplier and detaches it from inventory items.
func (s *SupplierService) DeleteSupplier(ctx context.Context, establishmentID, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND establishment_id = ?", id, establishmentID).Delete(&models.Supplier{})
		if res.Error != nil {
			return apperrors.DB("Impossible de supprimer le fournisseur", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeNotFound, "Fournisseur introuvable")
		}
		err := tx.Model(&models.InventoryItem{}).
			Where("establishment_id = ? AND supplier_id = ?", establishmentID, id).
			Update("supplier_id", nil).Error
		if err != nil {
			return apperrors.DB("Impossible de détacher le fournisseur des articles", err)
		}
		return nil
	})
	if err != nil && apperrors.Is(err, apperrors.CodeDB) {
		s.logger.WithError(err).WithField("supplier_id", id).Error("failed to delete supplier")
	}
	return err
}

func applySupplierInput(supplier *models.Supplier, input SupplierInput) {
	if input.Name != nil {
		supplier.Name = strings.TrimSpace(*input.Name)
	}
	if input.ContactName != nil {
		supplier.ContactName = *input.ContactName
	}
	if input.Email != nil {
		supplier.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		supplier.Phone = *input.Phone
	}
	if input.Address != nil {
		supplier.Address = *input.Address
	}
	if input.Category != nil {
		supplier.Category = *input.Category
	}
	if input.Website != nil {
		supplier.Website = *input.Website
	}
	if input.Notes != nil {
		supplier.Notes = *input.Notes
	}
}

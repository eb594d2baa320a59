package services

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

type ReferenceListService struct {
	db     *gorm.DB
	cache  *Cache
	logger *logrus.Logger
}

func NewReferenceListService(db *gorm.DB, cache *Cache, logger *logrus.Logger) *ReferenceListService {
	return &ReferenceListService{db: db, cache: cache, logger: logger}
}

func item(value, label, color string, order int) models.ReferenceItem {
	return models.ReferenceItem{Value: value, Label: label, Color: color, Order: order, IsActive: true}
}

// DefaultReferenceLists returns the lists installed for a new establishment.
func DefaultReferenceLists() []models.ReferenceList {
	return []models.ReferenceList{
		{Key: models.ListInterventionTypes, Label: "Types d'intervention", Items: []models.ReferenceItem{
			item("plumbing", "Plomberie", "#3b82f6", 1),
			item("electrical", "Électricité", "#f59e0b", 2),
			item("hvac", "Climatisation / chauffage", "#06b6d4", 3),
			item("carpentry", "Menuiserie", "#a16207", 4),
			item("painting", "Peinture", "#8b5cf6", 5),
			item("cleaning", "Nettoyage", "#10b981", 6),
			item("other", "Autre", "#6b7280", 7),
		}},
		{Key: models.ListInterventionLabels, Label: "Priorités", Items: []models.ReferenceItem{
			item(models.PriorityLow, "Basse", "#10b981", 1),
			item(models.PriorityMedium, "Moyenne", "#f59e0b", 2),
			item(models.PriorityHigh, "Haute", "#f97316", 3),
			item(models.PriorityUrgent, "Urgente", "#ef4444", 4),
		}},
		{Key: models.ListInventoryCategories, Label: "Catégories d'inventaire", Items: []models.ReferenceItem{
			item("linen", "Linge", "", 1),
			item("cleaning", "Produits d'entretien", "", 2),
			item("amenities", "Produits d'accueil", "", 3),
			item("maintenance", "Pièces techniques", "", 4),
			item("food", "Alimentation", "", 5),
			item("other", "Autre", "", 6),
		}},
		{Key: models.ListSupplierCategories, Label: "Catégories de fournisseurs", Items: []models.ReferenceItem{
			item("linen", "Blanchisserie", "", 1),
			item("maintenance", "Maintenance", "", 2),
			item("food", "Alimentaire", "", 3),
			item("cleaning", "Entretien", "", 4),
			item("other", "Autre", "", 5),
		}},
		{Key: models.ListRoomTypes, Label: "Types de chambre", Items: []models.ReferenceItem{
			item("single", "Simple", "", 1),
			item("double", "Double", "", 2),
			item("twin", "Twin", "", 3),
			item("suite", "Suite", "", 4),
			item("family", "Familiale", "", 5),
		}},
		{Key: models.ListBlockageReasons, Label: "Motifs de blocage", Items: []models.ReferenceItem{
			item("maintenance", "Maintenance", "#f59e0b", 1),
			item("water_damage", "Dégât des eaux", "#3b82f6", 2),
			item("renovation", "Rénovation", "#8b5cf6", 3),
			item("pest", "Nuisibles", "#ef4444", 4),
			item("other", "Autre", "#6b7280", 5),
		}},
	}
}

// InitializeDefaults installs the default lists that the establishment does
// not have yet.
func (s *ReferenceListService) InitializeDefaults(ctx context.Context, establishmentID string) error {
	var existing []string
	err := s.db.WithContext(ctx).Model(&models.ReferenceList{}).
		Where("establishment_id = ?", establishmentID).
		Pluck("list_key", &existing).Error
	if err != nil {
		return apperrors.DB("Impossible de charger les listes de référence", err)
	}
	have := make(map[string]bool, len(existing))
	for _, k := range existing {
		have[k] = true
	}

	var missing []models.ReferenceList
	for _, list := range DefaultReferenceLists() {
		if have[list.Key] {
			continue
		}
		list.EstablishmentID = establishmentID
		missing = append(missing, list)
	}
	if len(missing) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&missing).Error; err != nil {
		return apperrors.DB("Impossible d'initialiser les listes de référence", err)
	}
	s.cache.Delete(ctx, referenceListsKey(establishmentID))
	return nil
}

// GetLists returns every list of the establishment keyed by list key.
func (s *ReferenceListService) GetLists(ctx context.Context, establishmentID string) (map[string]models.ReferenceList, error) {
	cached := map[string]models.ReferenceList{}
	if s.cache.Get(ctx, referenceListsKey(establishmentID), &cached) {
		return cached, nil
	}

	var lists []models.ReferenceList
	if err := s.db.WithContext(ctx).Where("establishment_id = ?", establishmentID).Find(&lists).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to load reference lists")
		return nil, apperrors.DB("Impossible de charger les listes de référence", err)
	}
	out := make(map[string]models.ReferenceList, len(lists))
	for _, list := range lists {
		sortItems(list.Items)
		out[list.Key] = list
	}
	s.cache.Set(ctx, referenceListsKey(establishmentID), out)
	return out, nil
}

func (s *ReferenceListService) GetList(ctx context.Context, establishmentID, key string) (*models.ReferenceList, error) {
	lists, err := s.GetLists(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	list, ok := lists[key]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "Liste de référence introuvable")
	}
	return &list, nil
}

// UpsertList replaces the label and items of the list under key, creating it
// when missing.
func (s *ReferenceListService) UpsertList(ctx context.Context, establishmentID, key, label string, items []models.ReferenceItem) (*models.ReferenceList, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "La clé de la liste est obligatoire")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	var list models.ReferenceList
	err := s.db.WithContext(ctx).Where("establishment_id = ? AND list_key = ?", establishmentID, key).First(&list).Error
	switch {
	case isNotFound(err):
		list = models.ReferenceList{EstablishmentID: establishmentID, Key: key}
	case err != nil:
		return nil, apperrors.DB("Impossible de charger la liste de référence", err)
	}
	if label != "" {
		list.Label = label
	}
	list.Items = items
	sortItems(list.Items)

	if err := s.save(ctx, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AddItem appends an item. Values must be unique within a list.
func (s *ReferenceListService) AddItem(ctx context.Context, establishmentID, key string, newItem models.ReferenceItem) (*models.ReferenceList, error) {
	list, err := s.loadForWrite(ctx, establishmentID, key)
	if err != nil {
		return nil, err
	}
	for _, existing := range list.Items {
		if existing.Value == newItem.Value {
			return nil, apperrors.New(apperrors.CodeDuplicate, "Cette valeur existe déjà dans la liste")
		}
	}
	if newItem.Order == 0 {
		newItem.Order = len(list.Items) + 1
	}
	items := append(list.Items, newItem)
	if err := validateItems(items); err != nil {
		return nil, err
	}
	list.Items = items
	sortItems(list.Items)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateItem replaces the item whose value is value.
func (s *ReferenceListService) UpdateItem(ctx context.Context, establishmentID, key, value string, updated models.ReferenceItem) (*models.ReferenceList, error) {
	list, err := s.loadForWrite(ctx, establishmentID, key)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range list.Items {
		if list.Items[i].Value == value {
			if updated.Value == "" {
				updated.Value = value
			}
			list.Items[i] = updated
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.New(apperrors.CodeNotFound, "Élément de liste introuvable")
	}
	if err := validateItems(list.Items); err != nil {
		return nil, err
	}
	sortItems(list.Items)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ReferenceListService) RemoveItem(ctx context.Context, establishmentID, key, value string) (*models.ReferenceList, error) {
	list, err := s.loadForWrite(ctx, establishmentID, key)
	if err != nil {
		return nil, err
	}
	kept := make([]models.ReferenceItem, 0, len(list.Items))
	for _, it := range list.Items {
		if it.Value != value {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(list.Items) {
		return nil, apperrors.New(apperrors.CodeNotFound, "Élément de liste introuvable")
	}
	list.Items = kept
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ReferenceListService) loadForWrite(ctx context.Context, establishmentID, key string) (*models.ReferenceList, error) {
	var list models.ReferenceList
	err := s.db.WithContext(ctx).Where("establishment_id = ? AND list_key = ?", establishmentID, key).First(&list).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeNotFound, "Liste de référence introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to load reference list")
		return nil, apperrors.DB("Impossible de charger la liste de référence", err)
	}
	return &list, nil
}

func (s *ReferenceListService) save(ctx context.Context, list *models.ReferenceList) error {
	if err := s.db.WithContext(ctx).Save(list).Error; err != nil {
		if isDuplicate(err) {
			return apperrors.New(apperrors.CodeDuplicate, "Cette liste existe déjà")
		}
		s.logger.WithError(err).WithField("key", list.Key).Error("failed to save reference list")
		return apperrors.DB("Impossible d'enregistrer la liste de référence", err)
	}
	s.cache.Delete(ctx, referenceListsKey(list.EstablishmentID))
	return nil
}

func validateItems(items []models.ReferenceItem) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Value) == "" || strings.TrimSpace(it.Label) == "" {
			return apperrors.New(apperrors.CodeValidation, "Chaque élément doit avoir une valeur et un libellé")
		}
		if seen[it.Value] {
			return apperrors.New(apperrors.CodeDuplicate, "Valeur en double : "+it.Value)
		}
		seen[it.Value] = true
	}
	return nil
}

func sortItems(items []models.ReferenceItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
}

package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

const manualBlockageType = "manual"

// Durations are minute-grained, so cached stats that include active
// blockages go stale after a minute.
const blockageStatsTTL = time.Minute

// BlockageFilter narrows blockage queries. Zero values mean "no filter".
type BlockageFilter struct {
	RoomID  string
	Urgency string
	From    *time.Time
	To      *time.Time
	Limit   int
}

func (f BlockageFilter) isZero() bool {
	return f.RoomID == "" && f.Urgency == "" && f.From == nil && f.To == nil && f.Limit == 0
}

func (f BlockageFilter) apply(q *gorm.DB) *gorm.DB {
	if f.RoomID != "" {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.Urgency != "" {
		q = q.Where("urgency = ?", f.Urgency)
	}
	if f.From != nil {
		q = q.Where("blocked_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("blocked_at <= ?", *f.To)
	}
	return q
}

// BlockageStats aggregates the blockages of an establishment.
type BlockageStats struct {
	TotalBlockages        int            `json:"totalBlockages"`
	ActiveBlockages       int            `json:"activeBlockages"`
	ResolvedBlockages     int            `json:"resolvedBlockages"`
	OverdueBlockages      int            `json:"overdueBlockages"`
	AverageDurationHours  float64        `json:"averageDurationHours"`
	LongestDurationHours  float64        `json:"longestDurationHours"`
	ShortestDurationHours float64        `json:"shortestDurationHours"`
	TotalRevenueLoss      float64        `json:"totalRevenueLoss"`
	AverageRevenueLoss    float64        `json:"averageRevenueLoss"`
	ByUrgency             map[string]int `json:"byUrgency"`
	ByInterventionType    map[string]int `json:"byInterventionType"`
}

// RoomBlockageSummary totals the blockages of one room.
type RoomBlockageSummary struct {
	RoomID             string  `json:"roomId"`
	RoomNumber         string  `json:"roomNumber"`
	BlockageCount      int     `json:"blockageCount"`
	ActiveCount        int     `json:"activeCount"`
	TotalDurationHours float64 `json:"totalDurationHours"`
	TotalRevenueLoss   float64 `json:"totalRevenueLoss"`
}

// BlockageService tracks room block/unblock periods and their financial impact.
type BlockageService struct {
	db     *gorm.DB
	cache  *Cache
	logger *logrus.Logger
	now    Clock
}

func NewBlockageService(db *gorm.DB, cache *Cache, logger *logrus.Logger, now Clock) *BlockageService {
	return &BlockageService{db: db, cache: cache, logger: logger, now: clockOrDefault(now)}
}

// WithTx returns a copy of the service bound to tx.
func (s *BlockageService) WithTx(tx *gorm.DB) *BlockageService {
	clone := *s
	clone.db = tx
	return &clone
}

// open persists b as a new active blockage starting now.
func (s *BlockageService) open(ctx context.Context, b *models.RoomBlockage) error {
	b.BlockedAt = s.now()
	b.IsActive = true
	b.IsOverdue = false
	b.DurationDays, b.DurationHours, b.DurationMinutes = 0, 0, 0
	b.ActualUnblockDate = nil
	if !models.IsValidUrgency(b.Urgency) {
		b.Urgency = models.UrgencyMedium
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"establishment_id": b.EstablishmentID,
			"room_id":          b.RoomID,
		}).Error("failed to create room blockage")
		return apperrors.DB("Impossible de créer le blocage de la chambre", err)
	}
	s.cache.Delete(ctx, blockageStatsKey(b.EstablishmentID))
	return nil
}

// CreateBlockageFromIntervention opens a blockage tied to intervention for
// room and returns its id. The first revenue estimate uses the intervention's
// estimated duration.
func (s *BlockageService) CreateBlockageFromIntervention(
	ctx context.Context,
	intervention *models.Intervention,
	room *models.Room,
	establishment *models.Establishment,
) (string, error) {
	now := s.now()
	interventionID := intervention.ID
	b := &models.RoomBlockage{
		EstablishmentID:   establishment.ID,
		RoomID:            room.ID,
		RoomNumber:        room.Number,
		RoomPricePerNight: room.PricePerNight,
		InterventionID:    &interventionID,
		InterventionType:  intervention.Type,
		Reason:            intervention.Title,
		Urgency:           MapPriorityToUrgency(intervention.Priority),
		BlockedBy:         intervention.CreatedBy,
	}
	if intervention.Description != "" {
		b.Notes = intervention.Description
	}
	if intervention.EstimatedDuration != nil && *intervention.EstimatedDuration > 0 {
		hours := *intervention.EstimatedDuration
		eta := now.Add(time.Duration(hours * float64(time.Hour)))
		b.EstimatedUnblockDate = &eta
		b.EstimatedRevenueLoss = CalculateRevenueLoss(room.PricePerNight, DurationFromHours(hours))
	}

	if err := s.open(ctx, b); err != nil {
		return "", err
	}
	s.logger.WithFields(logrus.Fields{
		"blockage_id":     b.ID,
		"intervention_id": interventionID,
		"room_id":         room.ID,
	}).Info("room blockage opened for intervention")
	return b.ID, nil
}

// GetBlockage returns one blockage with its derived fields refreshed.
func (s *BlockageService) GetBlockage(ctx context.Context, establishmentID, id string) (*models.RoomBlockage, error) {
	var b models.RoomBlockage
	err := s.db.WithContext(ctx).
		Where("id = ? AND establishment_id = ?", id, establishmentID).
		First(&b).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeNotFound, "Blocage introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("blockage_id", id).Error("failed to load room blockage")
		return nil, apperrors.DB("Impossible de charger le blocage", err)
	}
	RefreshDerived(&b, s.now())
	return &b, nil
}

// ResolveBlockage closes an active blockage at the current time and records
// its final duration and revenue loss. Resolving an already resolved blockage
// returns it unchanged.
func (s *BlockageService) ResolveBlockage(ctx context.Context, blockageID, establishmentID, resolvedBy string) (*models.RoomBlockage, error) {
	var b models.RoomBlockage
	err := s.db.WithContext(ctx).
		Where("id = ? AND establishment_id = ?", blockageID, establishmentID).
		First(&b).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeNotFound, "Blocage introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("blockage_id", blockageID).Error("failed to load room blockage")
		return nil, apperrors.DB("Impossible de résoudre le blocage", err)
	}
	if !b.IsActive {
		return &b, nil
	}

	now := s.now()
	d := CalculateDuration(b.BlockedAt, now)
	b.DurationDays = d.Days
	b.DurationHours = d.Hours
	b.DurationMinutes = d.Minutes
	b.EstimatedRevenueLoss = CalculateRevenueLoss(b.RoomPricePerNight, d)
	b.ActualUnblockDate = &now
	b.IsActive = false
	b.IsOverdue = false
	b.ResolvedBy = resolvedBy

	res := s.db.WithContext(ctx).Model(&b).
		Where("is_active = ?", true).
		Select("duration_days", "duration_hours", "duration_minutes", "estimated_revenue_loss",
			"actual_unblock_date", "is_active", "is_overdue", "resolved_by").
		Updates(&b)
	if res.Error != nil {
		s.logger.WithError(res.Error).WithField("blockage_id", blockageID).Error("failed to resolve room blockage")
		return nil, apperrors.DB("Impossible de résoudre le blocage", res.Error)
	}
	if res.RowsAffected == 0 {
		// resolved concurrently; report the stored outcome
		var stored models.RoomBlockage
		if err := s.db.WithContext(ctx).First(&stored, "id = ?", b.ID).Error; err != nil {
			return nil, apperrors.DB("Impossible de résoudre le blocage", err)
		}
		return &stored, nil
	}
	s.cache.Delete(ctx, blockageStatsKey(establishmentID))

	s.logger.WithFields(logrus.Fields{
		"blockage_id":  b.ID,
		"room_id":      b.RoomID,
		"days":         d.Days,
		"hours":        d.Hours,
		"revenue_loss": b.EstimatedRevenueLoss,
	}).Info("room blockage resolved")
	return &b, nil
}

// ResolveBlockageForIntervention resolves the active blockage opened for
// interventionID. It returns nil, nil when there is none.
func (s *BlockageService) ResolveBlockageForIntervention(ctx context.Context, interventionID, establishmentID, resolvedBy string) (*models.RoomBlockage, error) {
	var b models.RoomBlockage
	err := s.db.WithContext(ctx).
		Where("intervention_id = ? AND establishment_id = ? AND is_active = ?", interventionID, establishmentID, true).
		First(&b).Error
	if isNotFound(err) {
		s.logger.WithField("intervention_id", interventionID).Info("no active blockage for intervention")
		return nil, nil
	}
	if err != nil {
		s.logger.WithError(err).WithField("intervention_id", interventionID).Error("failed to look up intervention blockage")
		return nil, apperrors.DB("Impossible de résoudre le blocage de l'intervention", err)
	}
	return s.ResolveBlockage(ctx, b.ID, establishmentID, resolvedBy)
}

// activeForRoom returns the active blockages of a room.
func (s *BlockageService) activeForRoom(ctx context.Context, establishmentID, roomID string) ([]models.RoomBlockage, error) {
	var blockages []models.RoomBlockage
	err := s.db.WithContext(ctx).
		Where("establishment_id = ? AND room_id = ? AND is_active = ?", establishmentID, roomID, true).
		Find(&blockages).Error
	if err != nil {
		return nil, apperrors.DB("Impossible de charger les blocages de la chambre", err)
	}
	return blockages, nil
}

// GetActiveBlockages lists open blockages, most recent first.
func (s *BlockageService) GetActiveBlockages(ctx context.Context, establishmentID string) ([]models.RoomBlockage, error) {
	var blockages []models.RoomBlockage
	err := s.db.WithContext(ctx).
		Where("establishment_id = ? AND is_active = ?", establishmentID, true).
		Order("blocked_at DESC").
		Find(&blockages).Error
	if err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list active blockages")
		return nil, apperrors.DB("Impossible de charger les blocages actifs", err)
	}
	return UpdateBlockageDurations(blockages, s.now()), nil
}

// GetBlockageHistory lists resolved blockages, most recently unblocked first.
func (s *BlockageService) GetBlockageHistory(ctx context.Context, establishmentID string, filter BlockageFilter) ([]models.RoomBlockage, error) {
	q := s.db.WithContext(ctx).
		Where("establishment_id = ? AND is_active = ?", establishmentID, false)
	q = filter.apply(q).Order("actual_unblock_date DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var blockages []models.RoomBlockage
	if err := q.Find(&blockages).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list blockage history")
		return nil, apperrors.DB("Impossible de charger l'historique des blocages", err)
	}
	return blockages, nil
}

// ListBlockages lists every blockage matching filter.
func (s *BlockageService) ListBlockages(ctx context.Context, establishmentID string, filter BlockageFilter) ([]models.RoomBlockage, error) {
	q := filter.apply(s.db.WithContext(ctx).Where("establishment_id = ?", establishmentID)).
		Order("blocked_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var blockages []models.RoomBlockage
	if err := q.Find(&blockages).Error; err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list blockages")
		return nil, apperrors.DB("Impossible de charger les blocages", err)
	}
	return UpdateBlockageDurations(blockages, s.now()), nil
}

// DeleteBlockage hard-deletes a resolved blockage. Active blockages must be
// resolved first so the room status stays consistent.
func (s *BlockageService) DeleteBlockage(ctx context.Context, establishmentID, id string) error {
	b, err := s.GetBlockage(ctx, establishmentID, id)
	if err != nil {
		return err
	}
	if b.IsActive {
		return apperrors.New(apperrors.CodeConflict, "Impossible de supprimer un blocage actif")
	}
	if err := s.db.WithContext(ctx).Delete(&models.RoomBlockage{}, "id = ?", id).Error; err != nil {
		s.logger.WithError(err).WithField("blockage_id", id).Error("failed to delete blockage")
		return apperrors.DB("Impossible de supprimer le blocage", err)
	}
	s.cache.Delete(ctx, blockageStatsKey(establishmentID))
	return nil
}

// GetBlockageStats aggregates the blockages matching filter. Unfiltered
// results are cached.
func (s *BlockageService) GetBlockageStats(ctx context.Context, establishmentID string, filter BlockageFilter) (*BlockageStats, error) {
	cacheable := filter.isZero()
	if cacheable {
		var cached BlockageStats
		if s.cache.Get(ctx, blockageStatsKey(establishmentID), &cached) {
			return &cached, nil
		}
	}

	filter.Limit = 0
	blockages, err := s.ListBlockages(ctx, establishmentID, filter)
	if err != nil {
		return nil, err
	}
	stats := ComputeBlockageStats(blockages)
	if cacheable {
		s.cache.SetWithin(ctx, blockageStatsKey(establishmentID), stats, blockageStatsTTL)
	}
	return &stats, nil
}

// GetTopBlockedRooms returns per-room totals ordered by blockage count.
func (s *BlockageService) GetTopBlockedRooms(ctx context.Context, establishmentID string, limit int, filter BlockageFilter) ([]RoomBlockageSummary, error) {
	filter.Limit = 0
	blockages, err := s.ListBlockages(ctx, establishmentID, filter)
	if err != nil {
		return nil, err
	}
	return TopBlockedRooms(blockages, limit), nil
}

// RefreshActiveBlockages persists recomputed durations and overdue flags for
// every active blockage. It returns how many records were updated.
func (s *BlockageService) RefreshActiveBlockages(ctx context.Context) (int, error) {
	var blockages []models.RoomBlockage
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&blockages).Error; err != nil {
		return 0, apperrors.DB("Impossible de charger les blocages actifs", err)
	}

	now := s.now()
	updated := 0
	touched := map[string]bool{}
	for i := range blockages {
		b := &blockages[i]
		RefreshDerived(b, now)
		// a blockage resolved since the load keeps its final values
		res := s.db.WithContext(ctx).Model(b).
			Where("is_active = ?", true).
			Select("duration_days", "duration_hours", "duration_minutes", "is_overdue").
			Updates(b)
		if res.Error != nil {
			s.logger.WithError(res.Error).WithField("blockage_id", b.ID).Warn("failed to refresh blockage")
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}
		updated++
		touched[b.EstablishmentID] = true
	}
	for establishmentID := range touched {
		s.cache.Delete(ctx, blockageStatsKey(establishmentID))
	}
	return updated, nil
}

func durationHours(b models.RoomBlockage) float64 {
	minutes := Duration{Days: b.DurationDays, Hours: b.DurationHours, Minutes: b.DurationMinutes}.TotalMinutes()
	return roundTo(float64(minutes)/60, 2)
}

// ComputeBlockageStats aggregates blockages whose derived fields are current.
func ComputeBlockageStats(blockages []models.RoomBlockage) BlockageStats {
	stats := BlockageStats{
		ByUrgency:          map[string]int{},
		ByInterventionType: map[string]int{},
	}
	if len(blockages) == 0 {
		return stats
	}

	var totalHours float64
	stats.ShortestDurationHours = -1
	for _, b := range blockages {
		stats.TotalBlockages++
		if b.IsActive {
			stats.ActiveBlockages++
		} else {
			stats.ResolvedBlockages++
		}
		if b.IsOverdue {
			stats.OverdueBlockages++
		}

		hours := durationHours(b)
		totalHours += hours
		if hours > stats.LongestDurationHours {
			stats.LongestDurationHours = hours
		}
		if stats.ShortestDurationHours < 0 || hours < stats.ShortestDurationHours {
			stats.ShortestDurationHours = hours
		}

		stats.TotalRevenueLoss += b.EstimatedRevenueLoss
		stats.ByUrgency[b.Urgency]++

		kind := b.InterventionType
		if b.InterventionID == nil || kind == "" {
			kind = manualBlockageType
		}
		stats.ByInterventionType[kind]++
	}

	n := float64(stats.TotalBlockages)
	stats.AverageDurationHours = roundTo(totalHours/n, 2)
	stats.AverageRevenueLoss = roundTo(stats.TotalRevenueLoss/n, 2)
	return stats
}

// TopBlockedRooms groups blockages by room, sorted by blockage count then
// total duration, both descending. limit <= 0 returns every room.
func TopBlockedRooms(blockages []models.RoomBlockage, limit int) []RoomBlockageSummary {
	byRoom := map[string]*RoomBlockageSummary{}
	for _, b := range blockages {
		summary, ok := byRoom[b.RoomID]
		if !ok {
			summary = &RoomBlockageSummary{RoomID: b.RoomID, RoomNumber: b.RoomNumber}
			byRoom[b.RoomID] = summary
		}
		summary.BlockageCount++
		if b.IsActive {
			summary.ActiveCount++
		}
		summary.TotalDurationHours = roundTo(summary.TotalDurationHours+durationHours(b), 2)
		summary.TotalRevenueLoss += b.EstimatedRevenueLoss
	}

	out := make([]RoomBlockageSummary, 0, len(byRoom))
	for _, summary := range byRoom {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BlockageCount != out[j].BlockageCount {
			return out[i].BlockageCount > out[j].BlockageCount
		}
		if out[i].TotalDurationHours != out[j].TotalDurationHours {
			return out[i].TotalDurationHours > out[j].TotalDurationHours
		}
		return out[i].RoomNumber < out[j].RoomNumber
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

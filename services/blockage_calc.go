package services

import (
	"math"
	"time"

	"hotel-ops/models"
)

const (
	msPerDay    = int64(24 * time.Hour / time.Millisecond)
	msPerHour   = int64(time.Hour / time.Millisecond)
	msPerMinute = int64(time.Minute / time.Millisecond)
)

// Duration is the truncated day/hour/minute breakdown of an interval.
type Duration struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// TotalMinutes returns the breakdown as a single minute count.
func (d Duration) TotalMinutes() int {
	return d.Days*24*60 + d.Hours*60 + d.Minutes
}

// CalculateDuration breaks end-start into whole days, hours and minutes.
// Wall-clock difference only; a negative interval yields zero.
func CalculateDuration(start, end time.Time) Duration {
	diffMs := end.Sub(start).Milliseconds()
	if diffMs <= 0 {
		return Duration{}
	}
	days := diffMs / msPerDay
	rem := diffMs % msPerDay
	hours := rem / msPerHour
	rem = rem % msPerHour
	minutes := rem / msPerMinute
	return Duration{Days: int(days), Hours: int(hours), Minutes: int(minutes)}
}

// CalculateRevenueLoss estimates lost revenue for a blocked room. Minutes are
// not counted.
func CalculateRevenueLoss(pricePerNight float64, d Duration) float64 {
	return math.Round(pricePerNight * (float64(d.Days) + float64(d.Hours)/24))
}

// DurationFromHours converts an estimate expressed in hours.
func DurationFromHours(hours float64) Duration {
	if hours <= 0 {
		return Duration{}
	}
	start := time.Unix(0, 0)
	return CalculateDuration(start, start.Add(time.Duration(hours*float64(time.Hour))))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

var priorityToUrgency = map[string]string{
	models.PriorityLow:    models.UrgencyLow,
	models.PriorityMedium: models.UrgencyMedium,
	models.PriorityHigh:   models.UrgencyHigh,
	models.PriorityUrgent: models.UrgencyCritical,
}

// MapPriorityToUrgency maps an intervention priority to a blockage urgency.
// Unknown priorities map to medium.
func MapPriorityToUrgency(priority string) string {
	if u, ok := priorityToUrgency[priority]; ok {
		return u
	}
	return models.UrgencyMedium
}

// RefreshDerived recomputes the duration fields and the overdue flag of b at
// now. Resolved blockages are measured up to their unblock date and are never
// overdue.
func RefreshDerived(b *models.RoomBlockage, now time.Time) {
	end := now
	if !b.IsActive && b.ActualUnblockDate != nil {
		end = *b.ActualUnblockDate
	}
	d := CalculateDuration(b.BlockedAt, end)
	b.DurationDays = d.Days
	b.DurationHours = d.Hours
	b.DurationMinutes = d.Minutes
	b.IsOverdue = b.IsActive && b.EstimatedUnblockDate != nil && now.After(*b.EstimatedUnblockDate)
}

// UpdateBlockageDurations returns a copy of blockages with the derived fields
// of active ones recomputed at now. Nothing is persisted.
func UpdateBlockageDurations(blockages []models.RoomBlockage, now time.Time) []models.RoomBlockage {
	out := make([]models.RoomBlockage, len(blockages))
	copy(out, blockages)
	for i := range out {
		if out[i].IsActive {
			RefreshDerived(&out[i], now)
		}
	}
	return out
}

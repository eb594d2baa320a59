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

// Pusher delivers a payload to the live sessions of a user.
type Pusher interface {
	PushToUser(userID string, payload interface{}) error
}

// Mailer sends a plain-text e-mail.
type Mailer interface {
	Send(to, subject, body string) error
}

// NotificationService persists per-user notifications and fans them out to
// websocket sessions and, for urgent ones, e-mail.
type NotificationService struct {
	db     *gorm.DB
	pusher Pusher
	mailer Mailer
	logger *logrus.Logger
	now    Clock
}

func NewNotificationService(db *gorm.DB, pusher Pusher, mailer Mailer, logger *logrus.Logger, now Clock) *NotificationService {
	return &NotificationService{db: db, pusher: pusher, mailer: mailer, logger: logger, now: clockOrDefault(now)}
}

// NotificationData encodes v for Notification.Data. Encoding failures yield
// an empty payload.
func NotificationData(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func (s *NotificationService) Create(ctx context.Context, n *models.Notification) error {
	if n.UserID == "" || strings.TrimSpace(n.Title) == "" {
		return apperrors.New(apperrors.CodeValidation, "Destinataire et titre obligatoires")
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	if !models.IsValidPriority(n.Priority) {
		n.Priority = models.PriorityMedium
	}
	n.Read = false
	n.ReadAt = nil

	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", n.UserID).Error("failed to create notification")
		return apperrors.DB("Impossible de créer la notification", err)
	}

	s.deliver(ctx, n)
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) {
	if s.pusher != nil {
		if err := s.pusher.PushToUser(n.UserID, n); err != nil {
			s.logger.WithError(err).WithField("notification_id", n.ID).Warn("failed to push notification")
		}
	}
	if n.Priority != models.PriorityUrgent || s.mailer == nil {
		return
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "email").First(&user, "id = ?", n.UserID).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", n.UserID).Warn("urgent notification recipient not found")
		return
	}
	if user.Email == "" {
		return
	}
	if err := s.mailer.Send(user.Email, n.Title, n.Message); err != nil {
		s.logger.WithError(err).WithField("notification_id", n.ID).Warn("failed to email urgent notification")
	}
}

// NotifyEstablishmentRoles sends a copy of tmpl to every member of the
// establishment holding one of roles. Individual failures are logged and
// skipped; the number of notifications created is returned.
func (s *NotificationService) NotifyEstablishmentRoles(ctx context.Context, establishmentID string, roles []string, tmpl models.Notification) (int, error) {
	var userIDs []string
	err := s.db.WithContext(ctx).Model(&models.EstablishmentMember{}).
		Where("establishment_id = ? AND role IN ?", establishmentID, roles).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list notification recipients")
		return 0, apperrors.DB("Impossible de notifier l'établissement", err)
	}

	sent := 0
	for _, userID := range userIDs {
		n := tmpl
		n.Document = models.Document{}
		n.UserID = userID
		n.EstablishmentID = establishmentID
		if err := s.Create(ctx, &n); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("notification fan-out skipped a recipient")
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var notifications []models.Notification
	if err := q.Order("created_at DESC").Find(&notifications).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to list notifications")
		return nil, apperrors.DB("Impossible de charger les notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.DB("Impossible de compter les notifications", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": s.now()})
	if res.Error != nil {
		s.logger.WithError(res.Error).WithField("notification_id", id).Error("failed to mark notification read")
		return apperrors.DB("Impossible de marquer la notification comme lue", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "Notification introuvable")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": s.now()})
	if res.Error != nil {
		s.logger.WithError(res.Error).WithField("user_id", userID).Error("failed to mark notifications read")
		return 0, apperrors.DB("Impossible de marquer les notifications comme lues", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return apperrors.DB("Impossible de supprimer la notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "Notification introuvable")
	}
	return nil
}

// DeleteRead removes every read notification of a user.
func (s *NotificationService) DeleteRead(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ? AND is_read = ?", userID, true).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, apperrors.DB("Impossible de supprimer les notifications lues", res.Error)
	}
	return res.RowsAffected, nil
}

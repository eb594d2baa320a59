package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

const minPasswordLength = 6

type UserInput struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
}

type UserUpdate struct {
	DisplayName *string `json:"displayName"`
	Phone       *string `json:"phone"`
	IsActive    *bool   `json:"isActive"`
}

type UserService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewUserService(db *gorm.DB, logger *logrus.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

// HashPassword bcrypt-hashes a plain password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *UserService) CreateUser(ctx context.Context, input UserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.New(apperrors.CodeValidation, "Adresse e-mail invalide")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.New(apperrors.CodeValidation, "Le mot de passe doit contenir au moins 6 caractères")
	}
	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Impossible de créer l'utilisateur", err)
	}

	user := &models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Phone:        input.Phone,
		PasswordHash: hashed,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.New(apperrors.CodeDuplicate, "Un utilisateur avec cet e-mail existe déjà")
		}
		s.logger.WithError(err).WithField("email", email).Error("failed to create user")
		return nil, apperrors.DB("Impossible de créer l'utilisateur", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if isNotFound(err) {
		return nil, apperrors.New(apperrors.CodeUserNotFound, "Utilisateur introuvable")
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", id).Error("failed to load user")
		return nil, apperrors.DB("Impossible de charger l'utilisateur", err)
	}
	return &user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*update.DisplayName)
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	err = s.db.WithContext(ctx).Model(user).
		Select("display_name", "phone", "is_active").
		Updates(user).Error
	if err != nil {
		s.logger.WithError(err).WithField("user_id", id).Error("failed to update user")
		return nil, apperrors.DB("Impossible de mettre à jour l'utilisateur", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.New(apperrors.CodePasswordMismatch, "Le mot de passe actuel est incorrect")
		}
		return apperrors.Wrap(apperrors.CodePasswordMismatch, "Le mot de passe actuel est incorrect", err)
	}
	if len(next) < minPasswordLength {
		return apperrors.New(apperrors.CodeValidation, "Le mot de passe doit contenir au moins 6 caractères")
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "Impossible de modifier le mot de passe", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hashed).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", id).Error("failed to change password")
		return apperrors.DB("Impossible de modifier le mot de passe", err)
	}
	s.logger.WithField("user_id", id).Info("password changed")
	return nil
}

// AddMember gives userID a role in the establishment. An existing membership
// has its role replaced.
func (s *UserService) AddMember(ctx context.Context, establishmentID, userID, role string) (*models.EstablishmentMember, error) {
	if !models.IsValidRole(role) {
		return nil, apperrors.New(apperrors.CodeValidation, "Rôle invalide")
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	var member models.EstablishmentMember
	err := s.db.WithContext(ctx).
		Where("establishment_id = ? AND user_id = ?", establishmentID, userID).
		First(&member).Error
	switch {
	case isNotFound(err):
		member = models.EstablishmentMember{EstablishmentID: establishmentID, UserID: userID, Role: role}
		err = s.db.WithContext(ctx).Create(&member).Error
	case err == nil:
		member.Role = role
		err = s.db.WithContext(ctx).Model(&member).Update("role", role).Error
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"establishment_id": establishmentID,
			"user_id":          userID,
		}).Error("failed to add member")
		return nil, apperrors.DB("Impossible d'ajouter le membre", err)
	}
	return &member, nil
}

// RemoveMember revokes a membership. The establishment owner cannot be
// removed.
func (s *UserService) RemoveMember(ctx context.Context, establishmentID, userID string) error {
	var member models.EstablishmentMember
	err := s.db.WithContext(ctx).
		Where("establishment_id = ? AND user_id = ?", establishmentID, userID).
		First(&member).Error
	if isNotFound(err) {
		return apperrors.New(apperrors.CodeNotFound, "Membre introuvable")
	}
	if err != nil {
		return apperrors.DB("Impossible de charger le membre", err)
	}
	if member.Role == models.RoleOwner {
		return apperrors.New(apperrors.CodeConflict, "Le propriétaire ne peut pas être retiré")
	}
	if err := s.db.WithContext(ctx).Delete(&member).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to remove member")
		return apperrors.DB("Impossible de retirer le membre", err)
	}
	return nil
}

func (s *UserService) ListMembers(ctx context.Context, establishmentID string) ([]models.EstablishmentMember, error) {
	var members []models.EstablishmentMember
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("establishment_id = ?", establishmentID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		s.logger.WithError(err).WithField("establishment_id", establishmentID).Error("failed to list members")
		return nil, apperrors.DB("Impossible de charger les membres", err)
	}
	return members, nil
}

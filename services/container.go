package services

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Options carries the infrastructure a Container is built from. Pusher,
// Mailer and Cache are optional.
type Options struct {
	DB        *gorm.DB
	Logger    *logrus.Logger
	Cache     *Cache
	Pusher    Pusher
	Mailer    Mailer
	UploadDir string
	Now       Clock
}

// Container holds every service of the application. It is built once at
// startup and passed to the router and background jobs.
type Container struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Now    Clock

	Establishments *EstablishmentService
	Users          *UserService
	Rooms          *RoomService
	Blockages      *BlockageService
	Interventions  *InterventionService
	Inventory      *InventoryService
	Suppliers      *SupplierService
	Templates      *TemplateService
	Notifications  *NotificationService
	ReferenceLists *ReferenceListService
	Photos         *PhotoStore
}

func NewContainer(opts Options) *Container {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewCache(nil, 0, logger)
	}
	now := clockOrDefault(opts.Now)

	photos := NewPhotoStore(opts.UploadDir, now)
	notifications := NewNotificationService(opts.DB, opts.Pusher, opts.Mailer, logger, now)
	blockages := NewBlockageService(opts.DB, cache, logger, now)
	references := NewReferenceListService(opts.DB, cache, logger)
	templates := NewTemplateService(opts.DB, logger)

	return &Container{
		DB:     opts.DB,
		Logger: logger,
		Now:    now,

		Establishments: NewEstablishmentService(opts.DB, references, templates, logger),
		Users:          NewUserService(opts.DB, logger),
		Rooms:          NewRoomService(opts.DB, blockages, logger, now),
		Blockages:      blockages,
		Interventions:  NewInterventionService(opts.DB, blockages, notifications, photos, logger, now),
		Inventory:      NewInventoryService(opts.DB, notifications, logger, now),
		Suppliers:      NewSupplierService(opts.DB, logger),
		Templates:      templates,
		Notifications:  notifications,
		ReferenceLists: references,
		Photos:         photos,
	}
}

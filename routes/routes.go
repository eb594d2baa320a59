package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotel-ops/config"
	"hotel-ops/controllers"
	"hotel-ops/middleware"
	"hotel-ops/realtime"
	"hotel-ops/services"
)

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With",
			middleware.HeaderUserID, middleware.HeaderUserName},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter builds the controllers from the container and mounts them.
func SetupRouter(app *services.Container, cfg *config.Config, hub *realtime.Hub, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(logger), middleware.Identity())
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	r.Static("/uploads", app.Photos.Root())

	users := controllers.NewUserController(app.Users)
	establishments := controllers.NewEstablishmentController(app.Establishments, app.Users)
	rooms := controllers.NewRoomController(app.Rooms, app.Blockages)
	blockages := controllers.NewBlockageController(app.Blockages, app.Rooms)
	interventions := controllers.NewInterventionController(app.Interventions)
	inventory := controllers.NewInventoryController(app.Inventory)
	suppliers := controllers.NewSupplierController(app.Suppliers)
	templates := controllers.NewTemplateController(app.Templates, app.Interventions)
	notifications := controllers.NewNotificationController(app.Notifications, hub, logger)
	lists := controllers.NewReferenceListController(app.ReferenceLists)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if hub != nil {
		r.GET("/ws/notifications", notifications.Stream)
	}

	api := r.Group("/api")
	{
		userRoutes := api.Group("/users")
		{
			userRoutes.POST("", users.Create)
			userRoutes.GET("/:userId", users.Get)
			userRoutes.PUT("/:userId", users.Update)
			userRoutes.PUT("/:userId/password", users.ChangePassword)
			userRoutes.GET("/:userId/establishments", establishments.List)

			notes := userRoutes.Group("/:userId/notifications")
			{
				notes.GET("", notifications.List)
				notes.GET("/unread-count", notifications.UnreadCount)
				notes.PUT("/read-all", notifications.MarkAllRead)
				notes.DELETE("/read", notifications.DeleteRead)
				notes.PUT("/:notificationId/read", notifications.MarkRead)
				notes.DELETE("/:notificationId", notifications.Delete)
			}
		}

		api.GET("/establishments", establishments.List)
		api.POST("/establishments", establishments.Create)

		est := api.Group("/establishments/:establishmentId", middleware.EstablishmentScope(app.Establishments))
		{
			est.GET("", establishments.Get)
			est.PUT("", establishments.Update)
			est.DELETE("", establishments.Delete)
			est.GET("/settings", establishments.GetSettings)
			est.PUT("/settings", establishments.UpdateSettings)

			members := est.Group("/members")
			{
				members.GET("", establishments.Members)
				members.POST("", establishments.AddMember)
				members.DELETE("/:userId", establishments.RemoveMember)
			}

			roomRoutes := est.Group("/rooms")
			{
				roomRoutes.GET("", rooms.List)
				roomRoutes.POST("", rooms.Create)
				roomRoutes.GET("/:roomId", rooms.Get)
				roomRoutes.PUT("/:roomId", rooms.Update)
				roomRoutes.PATCH("/:roomId", rooms.Update)
				roomRoutes.DELETE("/:roomId", rooms.Delete)
				roomRoutes.PUT("/:roomId/status", rooms.SetStatus)
				roomRoutes.POST("/:roomId/block", rooms.Block)
				roomRoutes.POST("/:roomId/unblock", rooms.Unblock)
				roomRoutes.GET("/:roomId/blockages", rooms.Blockages)
			}

			blockageRoutes := est.Group("/blockages")
			{
				blockageRoutes.GET("", blockages.List)
				// fixed paths before /:blockageId
				blockageRoutes.GET("/active", blockages.Active)
				blockageRoutes.GET("/history", blockages.History)
				blockageRoutes.GET("/stats", blockages.Stats)
				blockageRoutes.GET("/top-rooms", blockages.TopRooms)
				blockageRoutes.GET("/:blockageId", blockages.Get)
				blockageRoutes.POST("/:blockageId/resolve", blockages.Resolve)
				blockageRoutes.DELETE("/:blockageId", blockages.Delete)
			}

			interventionRoutes := est.Group("/interventions")
			{
				interventionRoutes.GET("", interventions.List)
				interventionRoutes.POST("", interventions.Create)
				interventionRoutes.GET("/transitions", interventions.Transitions)
				interventionRoutes.GET("/:interventionId", interventions.Get)
				interventionRoutes.PUT("/:interventionId", interventions.Update)
				interventionRoutes.DELETE("/:interventionId", interventions.Delete)
				interventionRoutes.PUT("/:interventionId/status", interventions.ChangeStatus)
				interventionRoutes.PUT("/:interventionId/assign", interventions.Assign)
				interventionRoutes.POST("/:interventionId/photos", interventions.AddPhoto)
				interventionRoutes.GET("/:interventionId/comments", interventions.ListComments)
				interventionRoutes.POST("/:interventionId/comments", interventions.AddComment)
				interventionRoutes.DELETE("/:interventionId/comments/:commentId", interventions.DeleteComment)
			}

			inventoryRoutes := est.Group("/inventory")
			{
				inventoryRoutes.GET("", inventory.List)
				inventoryRoutes.POST("", inventory.Create)
				inventoryRoutes.GET("/movements", inventory.ListMovements)
				inventoryRoutes.GET("/low-stock", inventory.LowStock)
				inventoryRoutes.GET("/stats", inventory.Stats)
				inventoryRoutes.GET("/template", inventory.Template)
				inventoryRoutes.GET("/:itemId", inventory.Get)
				inventoryRoutes.PUT("/:itemId", inventory.Update)
				inventoryRoutes.DELETE("/:itemId", inventory.Delete)
				inventoryRoutes.GET("/:itemId/movements", inventory.ListMovements)
				inventoryRoutes.POST("/:itemId/movements", inventory.CreateMovement)
			}

			supplierRoutes := est.Group("/suppliers")
			{
				supplierRoutes.GET("", suppliers.List)
				supplierRoutes.POST("", suppliers.Create)
				supplierRoutes.GET("/:supplierId", suppliers.Get)
				supplierRoutes.PUT("/:supplierId", suppliers.Update)
				supplierRoutes.PATCH("/:supplierId/toggle", suppliers.Toggle)
				supplierRoutes.DELETE("/:supplierId", suppliers.Delete)
			}

			templateRoutes := est.Group("/templates")
			{
				templateRoutes.GET("", templates.List)
				templateRoutes.POST("", templates.Create)
				templateRoutes.GET("/:templateId", templates.Get)
				templateRoutes.PUT("/:templateId", templates.Update)
				templateRoutes.DELETE("/:templateId", templates.Delete)
				templateRoutes.POST("/:templateId/instantiate", templates.Instantiate)
			}

			listRoutes := est.Group("/reference-lists")
			{
				listRoutes.GET("", lists.All)
				listRoutes.POST("/init", lists.InitDefaults)
				listRoutes.GET("/:key", lists.Get)
				listRoutes.PUT("/:key", lists.Upsert)
				listRoutes.POST("/:key/items", lists.AddItem)
				listRoutes.PUT("/:key/items/:value", lists.UpdateItem)
				listRoutes.DELETE("/:key/items/:value", lists.RemoveItem)
			}
		}
	}

	return r
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotel-ops/middleware"
	"hotel-ops/realtime"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type NotificationController struct {
	notifications *services.NotificationService
	hub           *realtime.Hub
	logger        *logrus.Logger
}

func NewNotificationController(notifications *services.NotificationService, hub *realtime.Hub, logger *logrus.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, hub: hub, logger: logger}
}

// requireUser reads the :userId path parameter, falling back to the acting
// user.
func requireUser(c *gin.Context) (string, bool) {
	userID := c.Param("userId")
	if userID == "" {
		userID = middleware.CurrentActor(c).ID
	}
	if userID == "" {
		utils.BadRequest(c, "En-tête "+middleware.HeaderUserID+" manquant")
		return "", false
	}
	return userID, true
}

// GET /api/users/:userId/notifications?unreadOnly=true&limit=50
func (ctl *NotificationController) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	unread := utils.QueryBool(c, "unreadOnly")
	list, err := ctl.notifications.ListForUser(c.Request.Context(), userID, unread != nil && *unread, utils.QueryInt(c, "limit", 50))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctl *NotificationController) UnreadCount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	count, err := ctl.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"count": count})
}

// PUT /api/users/:userId/notifications/:notificationId/read
func (ctl *NotificationController) MarkRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := ctl.notifications.MarkAsRead(c.Request.Context(), userID, c.Param("notificationId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"read": true})
}

func (ctl *NotificationController) MarkAllRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	n, err := ctl.notifications.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"updated": n})
}

func (ctl *NotificationController) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := ctl.notifications.Delete(c.Request.Context(), userID, c.Param("notificationId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func (ctl *NotificationController) DeleteRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	n, err := ctl.notifications.DeleteRead(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": n})
}

// GET /ws/notifications?userId=
// Browsers cannot set headers on a websocket handshake, so the user id may
// come from the query string.
func (ctl *NotificationController) Stream(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = middleware.CurrentActor(c).ID
	}
	if userID == "" {
		utils.BadRequest(c, "Paramètre 'userId' manquant")
		return
	}
	if err := ctl.hub.Serve(c.Writer, c.Request, userID); err != nil {
		ctl.logger.WithError(err).WithField("user_id", userID).Warn("websocket upgrade failed")
	}
}

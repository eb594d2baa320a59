package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/middleware"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type EstablishmentController struct {
	establishments *services.EstablishmentService
	users          *services.UserService
}

func NewEstablishmentController(establishments *services.EstablishmentService, users *services.UserService) *EstablishmentController {
	return &EstablishmentController{establishments: establishments, users: users}
}

// POST /api/establishments
// The owner is the acting user unless the body names one.
func (ctl *EstablishmentController) Create(c *gin.Context) {
	var body struct {
		services.EstablishmentInput
		OwnerID string `json:"ownerId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Données d'établissement invalides")
		return
	}
	ownerID := body.OwnerID
	if ownerID == "" {
		ownerID = middleware.CurrentActor(c).ID
	}
	if ownerID == "" {
		utils.BadRequest(c, "Propriétaire manquant")
		return
	}
	est, err := ctl.establishments.CreateEstablishment(c.Request.Context(), body.EstablishmentInput, ownerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, est)
}

// GET /api/establishments lists the establishments of the acting user.
func (ctl *EstablishmentController) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := ctl.establishments.ListEstablishmentsForUser(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctl *EstablishmentController) Get(c *gin.Context) {
	utils.JSONSuccess(c, http.StatusOK, middleware.CurrentEstablishment(c))
}

func (ctl *EstablishmentController) Update(c *gin.Context) {
	var input services.EstablishmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données d'établissement invalides")
		return
	}
	est, err := ctl.establishments.UpdateEstablishment(c.Request.Context(), middleware.CurrentEstablishment(c).ID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, est)
}

func (ctl *EstablishmentController) Delete(c *gin.Context) {
	if err := ctl.establishments.DeleteEstablishment(c.Request.Context(), middleware.CurrentEstablishment(c).ID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func (ctl *EstablishmentController) GetSettings(c *gin.Context) {
	settings, err := ctl.establishments.GetSettings(c.Request.Context(), middleware.CurrentEstablishment(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, settings)
}

// PUT /api/establishments/:establishmentId/settings
// Keys set to null are removed.
func (ctl *EstablishmentController) UpdateSettings(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.BadRequest(c, "Paramètres invalides")
		return
	}
	settings, err := ctl.establishments.UpdateSettings(c.Request.Context(), middleware.CurrentEstablishment(c).ID, patch)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, settings)
}

func (ctl *EstablishmentController) Members(c *gin.Context) {
	members, err := ctl.users.ListMembers(c.Request.Context(), middleware.CurrentEstablishment(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, members)
}

// POST /api/establishments/:establishmentId/members
func (ctl *EstablishmentController) AddMember(c *gin.Context) {
	var body struct {
		UserID string `json:"userId" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Membre invalide")
		return
	}
	member, err := ctl.users.AddMember(c.Request.Context(), middleware.CurrentEstablishment(c).ID, body.UserID, body.Role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, member)
}

func (ctl *EstablishmentController) RemoveMember(c *gin.Context) {
	if err := ctl.users.RemoveMember(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("userId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

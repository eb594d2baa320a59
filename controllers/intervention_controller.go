package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/middleware"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type InterventionController struct {
	interventions *services.InterventionService
}

func NewInterventionController(interventions *services.InterventionService) *InterventionController {
	return &InterventionController{interventions: interventions}
}

// GET /api/establishments/:establishmentId/interventions
func (ctl *InterventionController) List(c *gin.Context) {
	list, err := ctl.interventions.ListInterventions(c.Request.Context(), middleware.CurrentEstablishment(c).ID, services.InterventionFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Type:       c.Query("type"),
		RoomID:     c.Query("roomId"),
		AssignedTo: c.Query("assignedTo"),
		Limit:      utils.QueryInt(c, "limit", 0),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctl *InterventionController) Create(c *gin.Context) {
	var input services.InterventionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données d'intervention invalides")
		return
	}
	intervention, err := ctl.interventions.CreateIntervention(c.Request.Context(), middleware.CurrentEstablishment(c), input, middleware.CurrentActor(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, intervention)
}

func (ctl *InterventionController) Get(c *gin.Context) {
	intervention, err := ctl.interventions.GetIntervention(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("interventionId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, intervention)
}

func (ctl *InterventionController) Update(c *gin.Context) {
	var update services.InterventionUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.BadRequest(c, "Données d'intervention invalides")
		return
	}
	intervention, err := ctl.interventions.UpdateIntervention(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("interventionId"), update)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, intervention)
}

func (ctl *InterventionController) Delete(c *gin.Context) {
	err := ctl.interventions.DeleteIntervention(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("interventionId"), middleware.CurrentActor(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// PUT /api/establishments/:establishmentId/interventions/:interventionId/status
func (ctl *InterventionController) ChangeStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Statut manquant")
		return
	}
	intervention, err := ctl.interventions.ChangeStatus(c.Request.Context(), middleware.CurrentEstablishment(c).ID,
		c.Param("interventionId"), body.Status, middleware.CurrentActor(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, intervention)
}

// GET /api/establishments/:establishmentId/interventions/transitions?status=
func (ctl *InterventionController) Transitions(c *gin.Context) {
	status := c.Query("status")
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"status": status,
		"next":   services.AllowedTransitions(status),
	})
}

// PUT /api/establishments/:establishmentId/interventions/:interventionId/assign
func (ctl *InterventionController) Assign(c *gin.Context) {
	var body struct {
		AssignedTo     string `json:"assignedTo" binding:"required"`
		AssignedToName string `json:"assignedToName"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Technicien manquant")
		return
	}
	intervention, err := ctl.interventions.Assign(c.Request.Context(), middleware.CurrentEstablishment(c).ID,
		c.Param("interventionId"), body.AssignedTo, body.AssignedToName, middleware.CurrentActor(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, intervention)
}

// POST /api/establishments/:establishmentId/interventions/:interventionId/photos
func (ctl *InterventionController) AddPhoto(c *gin.Context) {
	var body struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Image manquante")
		return
	}
	intervention, err := ctl.interventions.AddPhoto(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("interventionId"), body.Image)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, intervention)
}

func (ctl *InterventionController) ListComments(c *gin.Context) {
	comments, err := ctl.interventions.ListComments(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("interventionId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, comments)
}

func (ctl *InterventionController) AddComment(c *gin.Context) {
	var body struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Commentaire manquant")
		return
	}
	comment, err := ctl.interventions.AddComment(c.Request.Context(), middleware.CurrentEstablishment(c).ID,
		c.Param("interventionId"), body.Content, middleware.CurrentActor(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, comment)
}

func (ctl *InterventionController) DeleteComment(c *gin.Context) {
	if err := ctl.interventions.DeleteComment(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("commentId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

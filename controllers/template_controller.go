package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/middleware"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type TemplateController struct {
	templates     *services.TemplateService
	interventions *services.InterventionService
}

func NewTemplateController(templates *services.TemplateService, interventions *services.InterventionService) *TemplateController {
	return &TemplateController{templates: templates, interventions: interventions}
}

// GET /api/establishments/:establishmentId/templates?activeOnly=true
func (ctl *TemplateController) List(c *gin.Context) {
	activeOnly := utils.QueryBool(c, "activeOnly")
	templates, err := ctl.templates.ListTemplates(c.Request.Context(), middleware.CurrentEstablishment(c).ID, activeOnly != nil && *activeOnly)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, templates)
}

func (ctl *TemplateController) Create(c *gin.Context) {
	var input services.TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données de modèle invalides")
		return
	}
	tpl, err := ctl.templates.CreateTemplate(c.Request.Context(), middleware.CurrentEstablishment(c).ID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, tpl)
}

func (ctl *TemplateController) Get(c *gin.Context) {
	tpl, err := ctl.templates.GetTemplate(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("templateId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, tpl)
}

func (ctl *TemplateController) Update(c *gin.Context) {
	var input services.TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données de modèle invalides")
		return
	}
	tpl, err := ctl.templates.UpdateTemplate(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("templateId"), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, tpl)
}

func (ctl *TemplateController) Delete(c *gin.Context) {
	if err := ctl.templates.DeleteTemplate(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("templateId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/establishments/:establishmentId/templates/:templateId/instantiate
// The body may override any intervention field; an empty body is accepted.
func (ctl *TemplateController) Instantiate(c *gin.Context) {
	var overrides services.InterventionInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&overrides); err != nil {
			utils.BadRequest(c, "Données d'intervention invalides")
			return
		}
	}
	intervention, err := ctl.interventions.CreateFromTemplate(c.Request.Context(), middleware.CurrentEstablishment(c),
		c.Param("templateId"), overrides, middleware.CurrentActor(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, intervention)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/middleware"
	"hotel-ops/models"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type ReferenceListController struct {
	lists *services.ReferenceListService
}

func NewReferenceListController(lists *services.ReferenceListService) *ReferenceListController {
	return &ReferenceListController{lists: lists}
}

func (ctl *ReferenceListController) All(c *gin.Context) {
	lists, err := ctl.lists.GetLists(c.Request.Context(), middleware.CurrentEstablishment(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, lists)
}

func (ctl *ReferenceListController) Get(c *gin.Context) {
	list, err := ctl.lists.GetList(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("key"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// PUT /api/establishments/:establishmentId/reference-lists/:key
func (ctl *ReferenceListController) Upsert(c *gin.Context) {
	var body struct {
		Label string                 `json:"label"`
		Items []models.ReferenceItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Liste invalide")
		return
	}
	list, err := ctl.lists.UpsertList(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("key"), body.Label, body.Items)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctl *ReferenceListController) AddItem(c *gin.Context) {
	var item models.ReferenceItem
	if err := c.ShouldBindJSON(&item); err != nil {
		utils.BadRequest(c, "Élément invalide")
		return
	}
	list, err := ctl.lists.AddItem(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("key"), item)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, list)
}

func (ctl *ReferenceListController) UpdateItem(c *gin.Context) {
	var item models.ReferenceItem
	if err := c.ShouldBindJSON(&item); err != nil {
		utils.BadRequest(c, "Élément invalide")
		return
	}
	list, err := ctl.lists.UpdateItem(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("key"), c.Param("value"), item)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctl *ReferenceListController) RemoveItem(c *gin.Context) {
	list, err := ctl.lists.RemoveItem(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("key"), c.Param("value"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// POST /api/establishments/:establishmentId/reference-lists/init
func (ctl *ReferenceListController) InitDefaults(c *gin.Context) {
	estID := middleware.CurrentEstablishment(c).ID
	if err := ctl.lists.InitializeDefaults(c.Request.Context(), estID); err != nil {
		utils.RespondError(c, err)
		return
	}
	lists, err := ctl.lists.GetLists(c.Request.Context(), estID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, lists)
}

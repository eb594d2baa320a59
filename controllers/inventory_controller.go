package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/middleware"
	"hotel-ops/services"
	"hotel-ops/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InventoryController struct {
	inventory *services.InventoryService
}

func NewInventoryController(inventory *services.InventoryService) *InventoryController {
	return &InventoryController{inventory: inventory}
}

// GET /api/establishments/:establishmentId/inventory
func (ctl *InventoryController) List(c *gin.Context) {
	items, err := ctl.inventory.ListItems(c.Request.Context(), middleware.CurrentEstablishment(c).ID, services.ItemFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}

func (ctl *InventoryController) Create(c *gin.Context) {
	var input services.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données d'article invalides")
		return
	}
	item, err := ctl.inventory.CreateItem(c.Request.Context(), middleware.CurrentEstablishment(c).ID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, item)
}

func (ctl *InventoryController) Get(c *gin.Context) {
	item, err := ctl.inventory.GetItem(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("itemId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

func (ctl *InventoryController) Update(c *gin.Context) {
	var input services.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données d'article invalides")
		return
	}
	item, err := ctl.inventory.UpdateItem(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("itemId"), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

func (ctl *InventoryController) Delete(c *gin.Context) {
	if err := ctl.inventory.DeleteItem(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("itemId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/establishments/:establishmentId/inventory/:itemId/movements
func (ctl *InventoryController) CreateMovement(c *gin.Context) {
	var input services.MovementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données de mouvement invalides")
		return
	}
	actor := middleware.CurrentActor(c)
	movement, item, err := ctl.inventory.CreateStockMovement(c.Request.Context(), middleware.CurrentEstablishment(c).ID,
		c.Param("itemId"), actor.ID, actor.Name, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"movement": movement, "item": item})
}

// GET /api/establishments/:establishmentId/inventory/movements?itemId=&limit=
func (ctl *InventoryController) ListMovements(c *gin.Context) {
	itemID := c.Param("itemId")
	if itemID == "" {
		itemID = c.Query("itemId")
	}
	movements, err := ctl.inventory.ListMovements(c.Request.Context(), middleware.CurrentEstablishment(c).ID, itemID, utils.QueryInt(c, "limit", 100))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, movements)
}

func (ctl *InventoryController) LowStock(c *gin.Context) {
	items, err := ctl.inventory.GetLowStockItems(c.Request.Context(), middleware.CurrentEstablishment(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}

func (ctl *InventoryController) Stats(c *gin.Context) {
	stats, err := ctl.inventory.GetInventoryStats(c.Request.Context(), middleware.CurrentEstablishment(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}

// GET /api/establishments/:establishmentId/inventory/template?withItems=true
func (ctl *InventoryController) Template(c *gin.Context) {
	withItems := utils.QueryBool(c, "withItems")
	data, err := ctl.inventory.GenerateImportTemplate(c.Request.Context(), middleware.CurrentEstablishment(c).ID, withItems != nil && *withItems)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "modele_inventaire.xlsx"))
	c.Data(http.StatusOK, xlsxContentType, data)
}

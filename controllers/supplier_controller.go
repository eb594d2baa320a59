package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/middleware"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type SupplierController struct {
	suppliers *services.SupplierService
}

func NewSupplierController(suppliers *services.SupplierService) *SupplierController {
	return &SupplierController{suppliers: suppliers}
}

// GET /api/establishments/:establishmentId/suppliers?category=&active=&search=
func (ctl *SupplierController) List(c *gin.Context) {
	suppliers, err := ctl.suppliers.ListSuppliers(c.Request.Context(), middleware.CurrentEstablishment(c).ID, services.SupplierFilter{
		Category: c.Query("category"),
		Active:   utils.QueryBool(c, "active"),
		Search:   c.Query("search"),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, suppliers)
}

func (ctl *SupplierController) Create(c *gin.Context) {
	var input services.SupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données fournisseur invalides")
		return
	}
	supplier, err := ctl.suppliers.CreateSupplier(c.Request.Context(), middleware.CurrentEstablishment(c).ID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, supplier)
}

func (ctl *SupplierController) Get(c *gin.Context) {
	supplier, err := ctl.suppliers.GetSupplier(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("supplierId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, supplier)
}

func (ctl *SupplierController) Update(c *gin.Context) {
	var input services.SupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données fournisseur invalides")
		return
	}
	supplier, err := ctl.suppliers.UpdateSupplier(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("supplierId"), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, supplier)
}

// PATCH /api/establishments/:establishmentId/suppliers/:supplierId/toggle
func (ctl *SupplierController) Toggle(c *gin.Context) {
	supplier, err := ctl.suppliers.ToggleActive(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("supplierId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, supplier)
}

func (ctl *SupplierController) Delete(c *gin.Context) {
	if err := ctl.suppliers.DeleteSupplier(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("supplierId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

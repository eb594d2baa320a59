package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/services"
	"hotel-ops/utils"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// POST /api/users
func (ctl *UserController) Create(c *gin.Context) {
	var input services.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données utilisateur invalides")
		return
	}
	user, err := ctl.users.CreateUser(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, user)
}

func (ctl *UserController) Get(c *gin.Context) {
	user, err := ctl.users.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}

func (ctl *UserController) Update(c *gin.Context) {
	var update services.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.BadRequest(c, "Données utilisateur invalides")
		return
	}
	user, err := ctl.users.UpdateUser(c.Request.Context(), c.Param("userId"), update)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}

// PUT /api/users/:userId/password
func (ctl *UserController) ChangePassword(c *gin.Context) {
	var body struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Mot de passe manquant")
		return
	}
	if err := ctl.users.ChangePassword(c.Request.Context(), c.Param("userId"), body.CurrentPassword, body.NewPassword); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"updated": true})
}

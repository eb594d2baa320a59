package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/middleware"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type RoomController struct {
	rooms     *services.RoomService
	blockages *services.BlockageService
}

func NewRoomController(rooms *services.RoomService, blockages *services.BlockageService) *RoomController {
	return &RoomController{rooms: rooms, blockages: blockages}
}

// GET /api/establishments/:establishmentId/rooms
func (ctl *RoomController) List(c *gin.Context) {
	est := middleware.CurrentEstablishment(c)
	rooms, err := ctl.rooms.ListRooms(c.Request.Context(), est.ID, services.RoomFilter{
		Status: c.Query("status"),
		Floor:  c.Query("floor"),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// POST /api/establishments/:establishmentId/rooms
func (ctl *RoomController) Create(c *gin.Context) {
	var input services.RoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données de chambre invalides")
		return
	}
	room, err := ctl.rooms.CreateRoom(c.Request.Context(), middleware.CurrentEstablishment(c).ID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

func (ctl *RoomController) Get(c *gin.Context) {
	room, err := ctl.rooms.GetRoom(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("roomId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (ctl *RoomController) Update(c *gin.Context) {
	var input services.RoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données de chambre invalides")
		return
	}
	room, err := ctl.rooms.UpdateRoom(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("roomId"), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (ctl *RoomController) Delete(c *gin.Context) {
	if err := ctl.rooms.DeleteRoom(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("roomId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// PUT /api/establishments/:establishmentId/rooms/:roomId/status
func (ctl *RoomController) SetStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Statut manquant")
		return
	}
	room, err := ctl.rooms.SetRoomStatus(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("roomId"), body.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// POST /api/establishments/:establishmentId/rooms/:roomId/block
func (ctl *RoomController) Block(c *gin.Context) {
	var input services.BlockRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Données de blocage invalides")
		return
	}
	input.BlockedBy = middleware.CurrentActor(c).ID
	blockage, err := ctl.rooms.BlockRoom(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("roomId"), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, blockage)
}

// POST /api/establishments/:establishmentId/rooms/:roomId/unblock
func (ctl *RoomController) Unblock(c *gin.Context) {
	room, err := ctl.rooms.UnblockRoom(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("roomId"), middleware.CurrentActor(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// GET /api/establishments/:establishmentId/rooms/:roomId/blockages
func (ctl *RoomController) Blockages(c *gin.Context) {
	blockages, err := ctl.blockages.ListBlockages(c.Request.Context(), middleware.CurrentEstablishment(c).ID, services.BlockageFilter{
		RoomID: c.Param("roomId"),
		Limit:  utils.QueryInt(c, "limit", 0),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, blockages)
}

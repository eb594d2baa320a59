package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/middleware"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type BlockageController struct {
	blockages *services.BlockageService
	rooms     *services.RoomService
}

func NewBlockageController(blockages *services.BlockageService, rooms *services.RoomService) *BlockageController {
	return &BlockageController{blockages: blockages, rooms: rooms}
}

func blockageFilter(c *gin.Context) (services.BlockageFilter, bool) {
	from, err := utils.QueryTime(c, "from")
	if err != nil {
		utils.BadRequest(c, "Paramètre 'from' invalide")
		return services.BlockageFilter{}, false
	}
	to, err := utils.QueryTime(c, "to")
	if err != nil {
		utils.BadRequest(c, "Paramètre 'to' invalide")
		return services.BlockageFilter{}, false
	}
	return services.BlockageFilter{
		RoomID:  c.Query("roomId"),
		Urgency: c.Query("urgency"),
		From:    from,
		To:      to,
		Limit:   utils.QueryInt(c, "limit", 0),
	}, true
}

// GET /api/establishments/:establishmentId/blockages
func (ctl *BlockageController) List(c *gin.Context) {
	filter, ok := blockageFilter(c)
	if !ok {
		return
	}
	blockages, err := ctl.blockages.ListBlockages(c.Request.Context(), middleware.CurrentEstablishment(c).ID, filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, blockages)
}

func (ctl *BlockageController) Active(c *gin.Context) {
	blockages, err := ctl.blockages.GetActiveBlockages(c.Request.Context(), middleware.CurrentEstablishment(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, blockages)
}

func (ctl *BlockageController) History(c *gin.Context) {
	filter, ok := blockageFilter(c)
	if !ok {
		return
	}
	blockages, err := ctl.blockages.GetBlockageHistory(c.Request.Context(), middleware.CurrentEstablishment(c).ID, filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, blockages)
}

func (ctl *BlockageController) Stats(c *gin.Context) {
	filter, ok := blockageFilter(c)
	if !ok {
		return
	}
	stats, err := ctl.blockages.GetBlockageStats(c.Request.Context(), middleware.CurrentEstablishment(c).ID, filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}

func (ctl *BlockageController) TopRooms(c *gin.Context) {
	filter, ok := blockageFilter(c)
	if !ok {
		return
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 5
	}
	rooms, err := ctl.blockages.GetTopBlockedRooms(c.Request.Context(), middleware.CurrentEstablishment(c).ID, limit, filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (ctl *BlockageController) Get(c *gin.Context) {
	blockage, err := ctl.blockages.GetBlockage(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("blockageId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, blockage)
}

// POST /api/establishments/:establishmentId/blockages/:blockageId/resolve
func (ctl *BlockageController) Resolve(c *gin.Context) {
	blockage, err := ctl.rooms.ResolveBlockage(c.Request.Context(), middleware.CurrentEstablishment(c).ID,
		c.Param("blockageId"), middleware.CurrentActor(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, blockage)
}

func (ctl *BlockageController) Delete(c *gin.Context) {
	if err := ctl.blockages.DeleteBlockage(c.Request.Context(), middleware.CurrentEstablishment(c).ID, c.Param("blockageId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

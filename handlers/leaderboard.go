package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pothole-service/leaderboard"
	"pothole-service/models"
)

func (h *ReportsHandler) Leaderboard(c *gin.Context) {
	scores, err := h.store.TopReporters(c.Request.Context(), h.cfg.LeaderboardSize)
	if err != nil {
		respondError(c, storeFailure(err))
		return
	}
	c.JSON(http.StatusOK, models.LeaderboardResponse{Records: leaderboard.Build(scores)})
}

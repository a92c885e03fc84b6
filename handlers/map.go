package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pothole-service/map_aggr"
	"pothole-service/models"
)

// Map returns the public pins for a viewport, aggregated by S2 cells.
func (h *ReportsHandler) Map(c *gin.Context) {
	args := &models.MapArgs{}
	if err := c.ShouldBindJSON(args); err != nil {
		respondError(c, badRequest("%v", err))
		return
	}
	vp := args.VPort
	if vp.LatMin > vp.LatMax || vp.LonMin > vp.LonMax {
		respondError(c, badRequest("viewport min corner must be south-west of max corner"))
		return
	}

	reports, err := h.store.GetMapReports(c.Request.Context(), vp, h.cfg.MapRetention)
	if err != nil {
		respondError(c, storeFailure(err))
		return
	}

	a := map_aggr.NewAggregatorS2(&vp, &args.Center, args.UserID)
	for i := range reports {
		a.AddReport(&reports[i])
	}
	c.JSON(http.StatusOK, a.ToArray())
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pothole-service/heatmap"
	"pothole-service/models"
)

// Heatmap clusters the reports with the requested statuses, all of them when
// no status query parameter is given.
func (h *ReportsHandler) Heatmap(c *gin.Context) {
	statuses, err := parseStatuses(c.QueryArray("status"), models.AllStatuses)
	if err != nil {
		respondError(c, err)
		return
	}
	reports, err := h.store.ListReports(c.Request.Context(), models.ReportFilter{Statuses: statuses})
	if err != nil {
		respondError(c, storeFailure(err))
		return
	}

	clusters := heatmap.ClusterReports(reports, h.cfg.HeatmapGridResolution)
	total := 0
	for _, cl := range clusters {
		if !cl.Placeholder {
			total += cl.MemberCount
		}
	}
	c.JSON(http.StatusOK, models.HeatmapResponse{
		Clusters:   clusters,
		TotalCount: total,
		Label:      heatmapLabel(statuses, total),
	})
}

func heatmapLabel(statuses []models.Status, total int) string {
	scope := "all statuses"
	if len(statuses) < len(models.AllStatuses) {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		scope = strings.Join(names, ", ")
	}
	if total == 0 {
		return "No reports yet (" + scope + ")"
	}
	return fmt.Sprintf("%d reports (%s)", total, scope)
}

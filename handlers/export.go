package handlers

import (
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pothole-service/export"
	"pothole-service/metrics"
	"pothole-service/models"
	"pothole-service/region"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"

	HeaderSelectionStrategy = "X-Selection-Strategy"
	HeaderExportID          = "X-Export-ID"
)

// requestRegion returns the validated polygon of the request. The vertex
// list is used when present, the GeoJSON feature otherwise.
func requestRegion(req *models.RegionRequest) (models.Region, error) {
	r := req.Region
	if len(r) == 0 && req.Feature != nil {
		var err error
		if r, err = region.FromFeature(req.Feature); err != nil {
			return nil, err
		}
	}
	if err := region.Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

// ExportRegion selects the reports inside a polygon and renders them as a
// JSON or CSV document.
func (h *ReportsHandler) ExportRegion(c *gin.Context) {
	args := &models.ExportRequest{}
	if err := c.ShouldBindJSON(args); err != nil {
		h.exportFailed(c, "", badRequest("%v", err))
		return
	}
	format := strings.ToLower(strings.TrimSpace(args.Format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV {
		h.exportFailed(c, "", badRequest("unsupported format %q", args.Format))
		return
	}

	r, err := requestRegion(&args.RegionRequest)
	if err != nil {
		h.exportFailed(c, format, err)
		return
	}
	statuses, err := parseStatuses(args.Statuses, models.ExportStatuses)
	if err != nil {
		h.exportFailed(c, format, err)
		return
	}

	area := region.ComputeArea(r)
	metrics.RegionAreaSquareMeters.Observe(area)
	if area > h.cfg.MaxExportAreaM2 {
		log.Warnf("Rejecting export of %.0f m2, limit is %.0f m2", area, h.cfg.MaxExportAreaM2)
		metrics.ExportsTotal.WithLabelValues(format, "too_large").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       "region is too large to export",
			"area_m2":     area,
			"max_area_m2": h.cfg.MaxExportAreaM2,
		})
		return
	}

	sel, err := h.selector.SelectReportsInRegion(c.Request.Context(), r, statuses)
	if err != nil {
		h.exportFailed(c, format, err)
		return
	}
	metrics.SelectionsTotal.WithLabelValues(string(sel.Strategy)).Inc()
	metrics.SelectedReports.Observe(float64(len(sel.Reports)))

	exportID := uuid.NewString()
	c.Header(HeaderSelectionStrategy, string(sel.Strategy))
	c.Header(HeaderExportID, exportID)
	log.Infof("Export %s: %d reports, %.0f m2, strategy %s, format %s", exportID, len(sel.Reports), area, sel.Strategy, format)

	if format == FormatCSV {
		c.Header("Content-Disposition", `attachment; filename="`+export.FileName(exportID, FormatCSV)+`"`)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, sel.Reports); err != nil {
			log.Errorf("Export %s: failed to write CSV: %v", exportID, err)
			metrics.ExportsTotal.WithLabelValues(format, "error").Inc()
			return
		}
		metrics.ExportsTotal.WithLabelValues(format, "ok").Inc()
		return
	}

	resp := models.ExportResponse{
		ExportID: exportID,
		Strategy: string(sel.Strategy),
		AreaM2:   area,
		Region:   region.ToFeature(r),
		Count:    len(sel.Reports),
		Reports:  sel.Reports,
	}
	if len(sel.Reports) == 0 {
		resp.Message = export.NoReportsMessage
	}
	metrics.ExportsTotal.WithLabelValues(format, "ok").Inc()
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) exportFailed(c *gin.Context, format string, err error) {
	if format == "" {
		format = "unknown"
	}
	result := "invalid"
	if statusCode(err) >= http.StatusInternalServerError {
		result = "error"
	}
	metrics.ExportsTotal.WithLabelValues(format, result).Inc()
	respondError(c, err)
}

// Area lets clients check a polygon against the export limit before asking
// for the export itself.
func (h *ReportsHandler) Area(c *gin.Context) {
	args := &models.RegionRequest{}
	if err := c.ShouldBindJSON(args); err != nil {
		respondError(c, badRequest("%v", err))
		return
	}
	r, err := requestRegion(args)
	if err != nil {
		respondError(c, err)
		return
	}
	area := region.ComputeArea(r)
	c.JSON(http.StatusOK, models.AreaResponse{
		AreaM2:      area,
		MaxAreaM2:   h.cfg.MaxExportAreaM2,
		WithinLimit: area <= h.cfg.MaxExportAreaM2,
	})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"pothole-service/metrics"
	"pothole-service/models"
	"pothole-service/region"
)

func (h *ReportsHandler) CreateReport(c *gin.Context) {
	args := &models.ReportArgs{}
	if err := c.ShouldBindJSON(args); err != nil {
		respondError(c, badRequest("%v", err))
		return
	}

	severity, err := models.ParseSeverity(args.Severity)
	if err != nil {
		respondError(c, badRequest("%v", err))
		return
	}
	if args.Latitude == nil || args.Longitude == nil {
		respondError(c, badRequest("latitude and longitude are required"))
		return
	}
	lat, lon := *args.Latitude, *args.Longitude
	if err := region.ValidateVertex(models.Vertex{Lat: lat, Lon: lon}); err != nil {
		respondError(c, err)
		return
	}

	rep := &models.Report{
		PictureURL:  args.PictureURL,
		Description: args.Description,
		Severity:    &severity,
		Status:      models.StatusSubmitted,
		Latitude:    &lat,
		Longitude:   &lon,
		Address:     args.Address,
		AuthorID:    args.AuthorID,
	}
	if err := h.store.SaveReport(c.Request.Context(), rep); err != nil {
		respondError(c, storeFailure(err))
		return
	}

	c.JSON(http.StatusOK, models.ReportResponse{Seq: rep.Seq, Status: rep.Status})
}

func (h *ReportsHandler) GetReport(c *gin.Context) {
	seq, err := seqParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rep, err := h.store.GetReport(c.Request.Context(), seq)
	if err != nil {
		respondError(c, storeFailure(err))
		return
	}
	c.JSON(http.StatusOK, rep)
}

// UpdateStatus moves a report through its lifecycle and notifies the author.
func (h *ReportsHandler) UpdateStatus(c *gin.Context) {
	seq, err := seqParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	args := &models.UpdateStatusRequest{}
	if err := c.ShouldBindJSON(args); err != nil {
		respondError(c, badRequest("%v", err))
		return
	}
	to, err := models.ParseStatus(args.Status)
	if err != nil {
		respondError(c, badRequest("%v", err))
		return
	}

	ev, err := h.store.UpdateReportStatus(c.Request.Context(), seq, to)
	if err != nil {
		respondError(c, storeFailure(err))
		return
	}
	metrics.StatusChangesTotal.WithLabelValues(string(ev.NewStatus)).Inc()
	h.notify(ev)

	c.JSON(http.StatusOK, models.UpdateStatusResponse{Seq: ev.Seq, OldStatus: ev.OldStatus, NewStatus: ev.NewStatus})
}

func (h *ReportsHandler) notify(ev *models.StatusChangedEvent) {
	if h.notifier == nil {
		log.Infof("No notifier configured, skipping status event for report %d (%s -> %s)", ev.Seq, ev.OldStatus, ev.NewStatus)
		return
	}
	if err := h.notifier.Publish(ev); err != nil {
		metrics.PublishErrorTotal.Inc()
		log.Errorf("Failed to publish status event for report %d: %v", ev.Seq, err)
	}
}

func seqParam(c *gin.Context) (int64, error) {
	seq, err := strconv.ParseInt(c.Param("seq"), 10, 64)
	if err != nil || seq <= 0 {
		return 0, badRequest("invalid report seq %q", c.Param("seq"))
	}
	return seq, nil
}

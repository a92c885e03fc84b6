package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"pothole-service/config"
	"pothole-service/database"
	"pothole-service/models"
	"pothole-service/region"
	"pothole-service/selector"
	"pothole-service/version"
)

// ReportStore is implemented by database.ReportsService and database.MemoryStore.
type ReportStore interface {
	selector.ReportQuerier
	SaveReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, seq int64) (*models.Report, error)
	UpdateReportStatus(ctx context.Context, seq int64, to models.Status) (*models.StatusChangedEvent, error)
	ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
	GetMapReports(ctx context.Context, vp models.ViewPort, retention time.Duration) ([]models.Report, error)
	TopReporters(ctx context.Context, limit int) ([]models.ReporterScore, error)
}

// Notifier receives status-change events. *rabbitmq.Publisher satisfies it.
type Notifier interface {
	Publish(message any) error
}

type ReportsHandler struct {
	store    ReportStore
	selector *selector.Selector
	notifier Notifier
	cfg      *config.Config
}

// NewReportsHandler wires the handler. notifier may be nil, events are then
// only logged.
func NewReportsHandler(store ReportStore, notifier Notifier, cfg *config.Config) *ReportsHandler {
	return &ReportsHandler{
		store:    store,
		selector: selector.NewSelector(store),
		notifier: notifier,
		cfg:      cfg,
	}
}

// connectionChecker is implemented by notifiers holding a broker connection.
type connectionChecker interface {
	IsConnected() bool
}

// HealthCheck returns a simple health status. A lost notifier connection is
// reported but leaves the service healthy, reports are still accepted.
func (h *ReportsHandler) HealthCheck(c *gin.Context) {
	notifier := "disabled"
	if h.notifier != nil {
		notifier = "connected"
		if cc, ok := h.notifier.(connectionChecker); ok && !cc.IsConnected() {
			notifier = "disconnected"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  version.Service,
		"notifier": notifier,
	})
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
}

// storeFailure marks a report store error as an outage unless it already
// carries a client-facing meaning.
func storeFailure(err error) error {
	if errors.Is(err, database.ErrReportNotFound) || errors.Is(err, models.ErrInvalidTransition) ||
		errors.Is(err, errBadRequest) || errors.Is(err, selector.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", selector.ErrStoreUnavailable, err)
}

func statusCode(err error) int {
	var verr *region.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, selector.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		log.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	} else {
		log.Warnf("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// parseStatuses parses raw statuses and checks them against allowed.
// An empty input yields all allowed statuses.
func parseStatuses(raw []string, allowed []models.Status) ([]models.Status, error) {
	if len(raw) == 0 {
		return append([]models.Status{}, allowed...), nil
	}
	res := make([]models.Status, 0, len(raw))
	for _, s := range raw {
		st, err := models.ParseStatus(s)
		if err != nil {
			return nil, badRequest("%v", err)
		}
		if !models.ContainsStatus(allowed, st) {
			return nil, badRequest("status %s is not allowed here", st)
		}
		if !models.ContainsStatus(res, st) {
			res = append(res, st)
		}
	}
	return res, nil
}

package models

import (
	"time"

	geojson "github.com/paulmach/go.geojson"
)

type ReportArgs struct {
	PictureURL  string  `json:"picture_url"`
	Description string  `json:"description"`
	Severity    string  `json:"severity" binding:"required"`
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	Address     *string `json:"address"`
	AuthorID    string  `json:"author_id" binding:"required"`
}

type ReportResponse struct {
	Seq    int64  `json:"seq"`
	Status Status `json:"status"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateStatusResponse struct {
	Seq       int64  `json:"seq"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// StatusChangedEvent is published for the notification pipeline.
type StatusChangedEvent struct {
	Seq       int64     `json:"seq"`
	AuthorID  string    `json:"author_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// RegionRequest carries a polygon either as [lat, lng] pairs or as a GeoJSON
// Polygon feature. Region wins when both are given.
type RegionRequest struct {
	Region  Region           `json:"region"`
	Feature *geojson.Feature `json:"feature"`
}

type ExportRequest struct {
	RegionRequest
	Statuses []string `json:"statuses"`
	Format   string   `json:"format"` // json (default) or csv
}

type ExportResponse struct {
	ExportID string           `json:"export_id"`
	Strategy string           `json:"strategy"`
	AreaM2   float64          `json:"area_m2"`
	Region   *geojson.Feature `json:"region"`
	Count    int              `json:"count"`
	Message  string           `json:"message,omitempty"`
	Reports  []Report         `json:"reports"`
}

type AreaResponse struct {
	AreaM2      float64 `json:"area_m2"`
	MaxAreaM2   float64 `json:"max_area_m2"`
	WithinLimit bool    `json:"within_limit"`
}

type HeatmapResponse struct {
	Clusters   []Cluster `json:"clusters"`
	TotalCount int       `json:"total_count"`
	Label      string    `json:"label"`
}

type MapArgs struct {
	UserID string   `json:"user_id"`
	VPort  ViewPort `json:"vport"`
	Center Point    `json:"center"`
}

type LeaderboardRecord struct {
	Place         int      `json:"place"`
	AuthorID      string   `json:"author_id"`
	Points        int      `json:"points"`
	ReportsCount  int      `json:"reports_count"`
	ResolvedCount int      `json:"resolved_count"`
	Badges        []string `json:"badges"`
}

type LeaderboardResponse struct {
	Records []LeaderboardRecord `json:"records"`
}

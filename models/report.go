package models

import (
	"fmt"
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Severities is ordered by tie-break precedence, highest first.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

func ParseSeverity(s string) (Severity, error) {
	switch sv := Severity(strings.ToUpper(strings.TrimSpace(s))); sv {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return sv, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Report is a stored road-defect report. Legacy rows may miss severity,
// coordinates and address, so those are pointers.
type Report struct {
	Seq         int64     `json:"seq"`
	PictureURL  string    `json:"picture_url"`
	Description string    `json:"description"`
	Severity    *Severity `json:"severity,omitempty"`
	Status      Status    `json:"status"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Address     *string   `json:"address,omitempty"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Location returns the report coordinates, ok is false when either is unset.
func (r *Report) Location() (lat, lon float64, ok bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return 0, 0, false
	}
	return *r.Latitude, *r.Longitude, true
}

// ReportFilter narrows report listings. Zero values mean "no restriction".
type ReportFilter struct {
	Statuses []Status
	Since    time.Time
	Limit    int
}

// ReporterScore is the per-author aggregate the leaderboard is built from.
type ReporterScore struct {
	AuthorID      string `json:"author_id"`
	ReportsCount  int    `json:"reports_count"`
	ResolvedCount int    `json:"resolved_count"`
}

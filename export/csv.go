package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pothole-service/models"
)

// NoReportsMessage is written instead of rows when the selection is empty.
const NoReportsMessage = "No reports found in this area"

// CoordinatePlaces is the number of decimals kept for coordinates, about 1 cm.
const CoordinatePlaces = 7

var Header = []string{"seq", "created_at", "status", "severity", "latitude", "longitude", "address", "description", "picture_url", "author_id"}

// WriteCSV renders reports as CSV. An empty list still yields the header
// followed by a single NoReportsMessage line.
func WriteCSV(w io.Writer, reports []models.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	if len(reports) == 0 {
		if err := cw.Write([]string{NoReportsMessage}); err != nil {
			return err
		}
	}
	for i := range reports {
		if err := cw.Write(record(&reports[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(r *models.Report) []string {
	rec := []string{
		strconv.FormatInt(r.Seq, 10),
		r.CreatedAt.UTC().Format(time.RFC3339),
		string(r.Status),
		"",
		"",
		"",
		"",
		safeCell(r.Description),
		safeCell(r.PictureURL),
		safeCell(r.AuthorID),
	}
	if r.Severity != nil {
		rec[3] = string(*r.Severity)
	}
	if lat, lon, ok := r.Location(); ok {
		rec[4] = FormatCoordinate(lat)
		rec[5] = FormatCoordinate(lon)
	}
	if r.Address != nil {
		rec[6] = safeCell(*r.Address)
	}
	return rec
}

// safeCell quotes user text that a spreadsheet would evaluate as a formula.
func safeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// FormatCoordinate renders a coordinate with CoordinatePlaces fixed decimals.
func FormatCoordinate(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(CoordinatePlaces)
}

// FileName is the attachment name for an export document.
func FileName(exportID, format string) string {
	return "potholes-" + exportID + "." + format
}

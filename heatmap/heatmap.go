package heatmap

import (
	"math"
	"sort"

	"pothole-service/models"
)

// DefaultGridResolution is the cell size in degrees used by the admin heat map.
const DefaultGridResolution = 0.1

var severityColors = map[models.Severity]string{
	models.SeverityHigh:   "#dc2626",
	models.SeverityMedium: "#f59e0b",
	models.SeverityLow:    "#16a34a",
}

// placeholders are rendered when there is nothing to show yet.
var placeholders = []models.Cluster{
	{
		ScreenPosition:   &models.ScreenPoint{X: 0.25, Y: 0.35},
		MemberCount:      2,
		SizeTier:         models.SizeSmall,
		DominantSeverity: models.SeverityLow,
		Color:            severityColors[models.SeverityLow],
		Placeholder:      true,
	},
	{
		ScreenPosition:   &models.ScreenPoint{X: 0.55, Y: 0.5},
		MemberCount:      5,
		SizeTier:         models.SizeMedium,
		DominantSeverity: models.SeverityMedium,
		Color:            severityColors[models.SeverityMedium],
		Placeholder:      true,
	},
	{
		ScreenPosition:   &models.ScreenPoint{X: 0.7, Y: 0.25},
		MemberCount:      8,
		SizeTier:         models.SizeLarge,
		DominantSeverity: models.SeverityHigh,
		Color:            severityColors[models.SeverityHigh],
		Placeholder:      true,
	},
}

type cellKey struct {
	lat int64
	lon int64
}

type bucket struct {
	first  models.Point
	order  int
	count  int
	voting map[models.Severity]int
}

// ClusterReports groups reports into grid cells of gridResolution degrees.
//
// Each cluster is positioned at the first member seen for its cell, not at
// the members' mean. Reports without coordinates are skipped. An empty input
// yields the placeholder set instead of an empty slice.
func ClusterReports(reports []models.Report, gridResolution float64) []models.Cluster {
	if len(reports) == 0 {
		return Placeholders()
	}
	if gridResolution <= 0 || math.IsNaN(gridResolution) || math.IsInf(gridResolution, 0) {
		gridResolution = DefaultGridResolution
	}
	scale := 1 / gridResolution

	buckets := make(map[cellKey]*bucket)
	for i := range reports {
		lat, lon, ok := reports[i].Location()
		if !ok {
			continue
		}
		key := cellKey{
			lat: int64(math.Floor(lat * scale)),
			lon: int64(math.Floor(lon * scale)),
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				first:  models.Point{Lat: lat, Lon: lon},
				order:  len(buckets),
				voting: make(map[models.Severity]int),
			}
			buckets[key] = b
		}
		b.count++
		if sv := reports[i].Severity; sv != nil {
			b.voting[*sv]++
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].order < ordered[j].order })

	clusters := make([]models.Cluster, 0, len(ordered))
	for _, b := range ordered {
		sv := DominantSeverity(b.voting)
		clusters = append(clusters, models.Cluster{
			Position:         b.first,
			MemberCount:      b.count,
			SizeTier:         Tier(b.count),
			DominantSeverity: sv,
			Color:            Color(sv),
		})
	}
	return clusters
}

// DominantSeverity picks the severity with the most votes, ties going to the
// higher severity. No votes at all yields LOW.
func DominantSeverity(votes map[models.Severity]int) models.Severity {
	best := models.SeverityLow
	bestCount := 0
	for _, sv := range models.Severities {
		if votes[sv] > bestCount {
			best, bestCount = sv, votes[sv]
		}
	}
	return best
}

func Tier(count int) models.SizeTier {
	switch {
	case count < 3:
		return models.SizeSmall
	case count < 6:
		return models.SizeMedium
	case count < 10:
		return models.SizeLarge
	}
	return models.SizeExtraLarge
}

func Color(sv models.Severity) string {
	if c, ok := severityColors[sv]; ok {
		return c
	}
	return severityColors[models.SeverityLow]
}

// Placeholders returns a fresh copy of the empty-state clusters.
func Placeholders() []models.Cluster {
	res := make([]models.Cluster, len(placeholders))
	for i, p := range placeholders {
		sp := *p.ScreenPosition
		p.ScreenPosition = &sp
		res[i] = p
	}
	return res
}

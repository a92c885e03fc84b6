package leaderboard

import (
	"sort"

	"pothole-service/models"
)

const (
	PointsPerReport   = 1
	PointsPerResolved = 2
)

type Badge struct {
	Name     string
	Reports  int
	Resolved int
}

// Badges are awarded when both thresholds are met.
var Badges = []Badge{
	{Name: "first_report", Reports: 1},
	{Name: "road_watcher", Reports: 10},
	{Name: "pothole_hunter", Reports: 50},
	{Name: "fixer", Resolved: 5},
}

func Points(sc models.ReporterScore) int {
	return sc.ReportsCount*PointsPerReport + sc.ResolvedCount*PointsPerResolved
}

func BadgesFor(sc models.ReporterScore) []string {
	res := []string{}
	for _, b := range Badges {
		if sc.ReportsCount >= b.Reports && sc.ResolvedCount >= b.Resolved {
			res = append(res, b.Name)
		}
	}
	return res
}

// Build ranks the scores by points. Authors with equal points share a place
// and places are dense: 1, 1, 2.
func Build(scores []models.ReporterScore) []models.LeaderboardRecord {
	sorted := append([]models.ReporterScore{}, scores...)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := Points(sorted[i]), Points(sorted[j])
		if pi != pj {
			return pi > pj
		}
		return sorted[i].AuthorID < sorted[j].AuthorID
	})

	records := make([]models.LeaderboardRecord, 0, len(sorted))
	place := 0
	prev := -1
	for _, sc := range sorted {
		pts := Points(sc)
		if pts != prev {
			place++
			prev = pts
		}
		records = append(records, models.LeaderboardRecord{
			Place:         place,
			AuthorID:      sc.AuthorID,
			Points:        pts,
			ReportsCount:  sc.ReportsCount,
			ResolvedCount: sc.ResolvedCount,
			Badges:        BadgesFor(sc),
		})
	}
	return records
}

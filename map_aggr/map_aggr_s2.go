package map_aggr

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"pothole-service/models"
)

type aggrUnit struct {
	cnt         int64
	containment [4]bool // one flag per child cell
	pin         s2.Point
	pins        []*models.MapPin
}

// AggregatorS2 collapses dense groups of map pins into single pins carrying
// a count. Cells are merged bottom-up from maxLevel to a base level chosen
// so that the viewport is covered by roughly expectedCells cells.
type AggregatorS2 struct {
	level  int
	userID string
	points map[s2.CellID][]*models.MapPin
	aggrs  map[s2.CellID]*aggrUnit
}

const (
	expectedCells       = 16
	minLevel            = 2
	maxLevel            = 18
	minPinsToAggr       = 10
	weightDiffThreshold = 8
)

func CellBaseLevel(vp *models.ViewPort, center *models.Point) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{
			Lo: minLL.Lat.Radians(),
			Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{
			Lo: minLL.Lng.Radians(),
			Hi: maxLL.Lng.Radians()},
	}
	vpArea := rect.Area()

	centerCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(center.Lat, center.Lon))
	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel
}

func NewAggregatorS2(vp *models.ViewPort, center *models.Point, userID string) *AggregatorS2 {
	return &AggregatorS2{
		level:  CellBaseLevel(vp, center),
		userID: userID,
		points: make(map[s2.CellID][]*models.MapPin),
		aggrs:  make(map[s2.CellID]*aggrUnit),
	}
}

// AddReport adds a report as a single pin. Reports without coordinates are
// ignored.
func (a *AggregatorS2) AddReport(r *models.Report) {
	lat, lon, ok := r.Location()
	if !ok {
		return
	}
	pin := &models.MapPin{
		Latitude:  lat,
		Longitude: lon,
		Count:     1,
		Seq:       r.Seq,
		Own:       a.userID != "" && r.AuthorID == a.userID,
	}
	if r.Severity != nil {
		pin.Severity = *r.Severity
	}
	cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(maxLevel)
	a.points[cell] = append(a.points[cell], pin)
}

func (a *AggregatorS2) ToArray() []models.MapPin {
	a.aggregate()
	r := make([]models.MapPin, 0, len(a.aggrs))
	for _, unit := range a.aggrs {
		if unit.cnt <= minPinsToAggr {
			for _, pin := range unit.pins {
				r = append(r, *pin)
			}
			continue
		}
		ll := s2.LatLngFromPoint(unit.pin)
		r = append(r, models.MapPin{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     unit.cnt,
		})
	}
	return r
}

// computeCentroid places the parent pin between the children pins, leaving
// out children much lighter than the heaviest one.
func (a *AggregatorS2) computeCentroid(pCell s2.CellID, chAggrs []*aggrUnit) s2.Point {
	heavy := make([]s2.Point, 0, len(chAggrs))
	maxWeight := int64(0)
	for _, aggr := range chAggrs {
		if maxWeight < aggr.cnt {
			maxWeight = aggr.cnt
		}
	}
	for _, aggr := range chAggrs {
		if maxWeight/aggr.cnt < weightDiffThreshold {
			heavy = append(heavy, aggr.pin)
		}
	}
	switch len(heavy) {
	case 1:
		return heavy[0]
	case 2:
		return s2.PlanarCentroid(heavy[0], heavy[0], heavy[1])
	case 3:
		return s2.PlanarCentroid(heavy[0], heavy[1], heavy[2])
	}
	return s2.PointFromLatLng(pCell.LatLng())
}

func (a *AggregatorS2) aggrStep(level int) {
	if level < a.level {
		return
	}
	nextAggrs := make(map[s2.CellID]*aggrUnit)
	for cell, unit := range a.aggrs {
		p := cell.Parent(level)
		eu, ok := nextAggrs[p]
		if !ok {
			nextAggrs[p] = &aggrUnit{
				cnt:  unit.cnt,
				pins: unit.pins,
			}
		} else {
			nextAggrs[p] = &aggrUnit{
				cnt:         eu.cnt + unit.cnt,
				containment: eu.containment,
			}
			if eu.cnt+unit.cnt <= minPinsToAggr {
				nextAggrs[p].pins = append(append([]*models.MapPin{}, eu.pins...), unit.pins...)
			}
		}
		// unit lives on level+1, so it is a child of nextAggrs[p].
		nextAggrs[p].containment[cell.ChildPosition(level+1)] = true
	}
	for pCell, pUnit := range nextAggrs {
		chAggrs := make([]*aggrUnit, 0, 4)
		children := pCell.Children()
		for i, v := range pUnit.containment {
			if !v {
				continue
			}
			if chAggr, ok := a.aggrs[children[i]]; ok {
				chAggrs = append(chAggrs, chAggr)
			}
		}
		pUnit.pin = a.computeCentroid(pCell, chAggrs)
	}
	a.aggrs = nextAggrs
	a.aggrStep(level - 1)
}

func (a *AggregatorS2) aggregate() {
	a.aggrs = make(map[s2.CellID]*aggrUnit, len(a.points))
	for cell, pins := range a.points {
		a.aggrs[cell] = &aggrUnit{
			cnt:         int64(len(pins)),
			containment: [4]bool{true, true, true, true},
			pin:         s2.PointFromLatLng(cell.LatLng()),
		}
		if len(pins) <= minPinsToAggr {
			a.aggrs[cell].pins = pins
		}
	}
	a.aggrStep(maxLevel - 1)
}

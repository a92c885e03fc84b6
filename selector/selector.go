package selector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/apex/log"

	"pothole-service/models"
	"pothole-service/region"
)

type Strategy string

const (
	StrategyPrecise     Strategy = "precise"
	StrategyBoundingBox Strategy = "bounding-box"
)

// ErrStoreUnavailable wraps every failure of the underlying report store.
var ErrStoreUnavailable = errors.New("report store unavailable")

// ReportQuerier is the read-only store capability the selector needs.
type ReportQuerier interface {
	// ReportsIntersecting returns reports whose stored point geometry
	// intersects the closed region.
	ReportsIntersecting(ctx context.Context, r models.Region, statuses []models.Status) ([]models.Report, error)
	// ReportsInBoundingBox returns reports whose raw coordinates lie in vp.
	ReportsInBoundingBox(ctx context.Context, vp models.ViewPort, statuses []models.Status) ([]models.Report, error)
}

// Selection tags the selected reports with the strategy that produced them.
type Selection struct {
	Strategy Strategy        `json:"strategy"`
	Reports  []models.Report `json:"reports"`
}

type Selector struct {
	querier ReportQuerier
}

func NewSelector(querier ReportQuerier) *Selector {
	return &Selector{querier: querier}
}

// SelectReportsInRegion returns the reports inside the region whose status is
// one of statuses, most recent first.
//
// The precise geometric query runs first. Only when it finds nothing the
// region's bounding box is used against raw coordinates, which covers legacy
// reports stored without point geometry at the cost of matching a superset.
func (s *Selector) SelectReportsInRegion(ctx context.Context, r models.Region, statuses []models.Status) (*Selection, error) {
	if err := region.Validate(r); err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, &region.ValidationError{Reason: "empty status filter"}
	}
	closed := region.Close(r)

	reports, err := s.querier.ReportsIntersecting(ctx, closed, statuses)
	if err != nil {
		return nil, fmt.Errorf("%w: precise query: %w", ErrStoreUnavailable, err)
	}
	sel := &Selection{Strategy: StrategyPrecise, Reports: keepLocated(reports, statuses)}
	if len(sel.Reports) == 0 {
		vp := region.BoundingBox(closed)
		reports, err = s.querier.ReportsInBoundingBox(ctx, vp, statuses)
		if err != nil {
			return nil, fmt.Errorf("%w: bounding box query: %w", ErrStoreUnavailable, err)
		}
		sel = &Selection{Strategy: StrategyBoundingBox, Reports: keepLocated(reports, statuses)}
	}
	SortByRecency(sel.Reports)

	log.Infof("Selected %d reports in region of %d vertices using %s strategy", len(sel.Reports), len(r), sel.Strategy)
	return sel, nil
}

// keepLocated drops reports without coordinates or outside the status filter.
func keepLocated(reports []models.Report, statuses []models.Status) []models.Report {
	res := make([]models.Report, 0, len(reports))
	for _, rep := range reports {
		if _, _, ok := rep.Location(); !ok {
			continue
		}
		if !models.ContainsStatus(statuses, rep.Status) {
			continue
		}
		res = append(res, rep)
	}
	return res
}

// SortByRecency orders reports by creation time, newest first, and by
// descending seq for equal timestamps.
func SortByRecency(reports []models.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].Seq > reports[j].Seq
	})
}

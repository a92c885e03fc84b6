package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pothole-service/models"
	"pothole-service/region"
)

// MemoryStore keeps reports in process memory. It serves STORE_BACKEND=memory
// and tests, and mirrors ReportsService: only reports saved with coordinates
// get a point geometry and are visible to ReportsIntersecting.
type MemoryStore struct {
	mu       sync.RWMutex
	nextSeq  int64
	reports  map[int64]models.Report
	geometry map[int64]bool
	history  []models.StatusChangedEvent
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports:  map[int64]models.Report{},
		geometry: map[int64]bool{},
		now:      time.Now,
	}
}

func (m *MemoryStore) SaveReport(_ context.Context, r *models.Report) error {
	_, _, hasLocation := r.Location()
	m.Import(r, hasLocation)
	return nil
}

// Import stores r as is, keeping CreatedAt when set. withGeometry false
// models legacy rows that predate reports_geometry.
func (m *MemoryStore) Import(r *models.Report, withGeometry bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSeq++
	r.Seq = m.nextSeq
	now := m.now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	if r.Status == "" {
		r.Status = models.StatusSubmitted
	}
	m.reports[r.Seq] = *r
	_, _, hasLocation := r.Location()
	m.geometry[r.Seq] = withGeometry && hasLocation
	return r.Seq
}

func (m *MemoryStore) GetReport(_ context.Context, seq int64) (*models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rep, ok := m.reports[seq]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrReportNotFound, seq)
	}
	return &rep, nil
}

func (m *MemoryStore) UpdateReportStatus(_ context.Context, seq int64, to models.Status) (*models.StatusChangedEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rep, ok := m.reports[seq]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrReportNotFound, seq)
	}
	if err := models.CheckTransition(rep.Status, to); err != nil {
		return nil, err
	}
	ev := models.StatusChangedEvent{
		Seq:       seq,
		AuthorID:  rep.AuthorID,
		OldStatus: rep.Status,
		NewStatus: to,
		ChangedAt: m.now().UTC(),
	}
	rep.Status = to
	rep.UpdatedAt = ev.ChangedAt
	m.reports[seq] = rep
	m.history = append(m.history, ev)
	return &ev, nil
}

// History returns the recorded status changes of a report, oldest first.
func (m *MemoryStore) History(seq int64) []models.StatusChangedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := []models.StatusChangedEvent{}
	for _, ev := range m.history {
		if ev.Seq == seq {
			res = append(res, ev)
		}
	}
	return res
}

func (m *MemoryStore) ListReports(_ context.Context, filter models.ReportFilter) ([]models.Report, error) {
	res := m.collect(func(_ bool, rep *models.Report) bool {
		if len(filter.Statuses) > 0 && !models.ContainsStatus(filter.Statuses, rep.Status) {
			return false
		}
		return filter.Since.IsZero() || !rep.CreatedAt.Before(filter.Since)
	})
	if filter.Limit > 0 && len(res) > filter.Limit {
		res = res[:filter.Limit]
	}
	return res, nil
}

func (m *MemoryStore) GetMapReports(_ context.Context, vp models.ViewPort, retention time.Duration) ([]models.Report, error) {
	vp = extendViewPort(vp)
	cutoff := m.now().Add(-retention)
	return m.collect(func(_ bool, rep *models.Report) bool {
		lat, lon, ok := rep.Location()
		if !ok || rep.Status == models.StatusRejected || rep.CreatedAt.Before(cutoff) {
			return false
		}
		return lat > vp.LatMin && lon > vp.LonMin && lat <= vp.LatMax && lon <= vp.LonMax
	}), nil
}

func (m *MemoryStore) TopReporters(_ context.Context, limit int) ([]models.ReporterScore, error) {
	m.mu.RLock()
	byAuthor := map[string]*models.ReporterScore{}
	for _, rep := range m.reports {
		if rep.Status == models.StatusRejected {
			continue
		}
		sc, ok := byAuthor[rep.AuthorID]
		if !ok {
			sc = &models.ReporterScore{AuthorID: rep.AuthorID}
			byAuthor[rep.AuthorID] = sc
		}
		sc.ReportsCount++
		if rep.Status == models.StatusResolved {
			sc.ResolvedCount++
		}
	}
	m.mu.RUnlock()

	res := make([]models.ReporterScore, 0, len(byAuthor))
	for _, sc := range byAuthor {
		res = append(res, *sc)
	}
	sort.Slice(res, func(i, j int) bool {
		pi := res[i].ReportsCount + 2*res[i].ResolvedCount
		pj := res[j].ReportsCount + 2*res[j].ResolvedCount
		if pi != pj {
			return pi > pj
		}
		return res[i].AuthorID < res[j].AuthorID
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *MemoryStore) ReportsIntersecting(_ context.Context, r models.Region, statuses []models.Status) ([]models.Report, error) {
	return m.collect(func(hasGeometry bool, rep *models.Report) bool {
		if !hasGeometry || !models.ContainsStatus(statuses, rep.Status) {
			return false
		}
		lat, lon, _ := rep.Location()
		return region.Contains(r, lat, lon)
	}), nil
}

func (m *MemoryStore) ReportsInBoundingBox(_ context.Context, vp models.ViewPort, statuses []models.Status) ([]models.Report, error) {
	return m.collect(func(_ bool, rep *models.Report) bool {
		lat, lon, ok := rep.Location()
		return ok && models.ContainsStatus(statuses, rep.Status) && region.InBoundingBox(vp, lat, lon)
	}), nil
}

// collect returns matching reports newest first, ties by descending seq.
func (m *MemoryStore) collect(match func(hasGeometry bool, rep *models.Report) bool) []models.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := []models.Report{}
	for seq, rep := range m.reports {
		if match(m.geometry[seq], &rep) {
			res = append(res, rep)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].Seq > res[j].Seq
	})
	return res
}

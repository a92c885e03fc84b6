package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"pothole-service/models"
)

func sv(s models.Severity) *models.Severity { return &s }

func newTestMemoryStore(now time.Time) *MemoryStore {
	m := NewMemoryStore()
	m.now = func() time.Time { return now }
	return m
}

func TestMemoryStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	rep := &models.Report{Severity: sv(models.SeverityHigh), Latitude: fp(1), Longitude: fp(2), AuthorID: "alice"}
	if err := m.SaveReport(ctx, rep); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if rep.Seq != 1 {
		t.Errorf("expected seq 1, got %d", rep.Seq)
	}
	got, err := m.GetReport(ctx, rep.Seq)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Status != models.StatusSubmitted || got.CreatedAt.IsZero() {
		t.Errorf("expected defaults to be applied, got %+v", got)
	}
	if _, err := m.GetReport(ctx, 99); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	rep := &models.Report{AuthorID: "alice"}
	m.SaveReport(ctx, rep)

	ev, err := m.UpdateReportStatus(ctx, rep.Seq, models.StatusPending)
	if err != nil {
		t.Fatalf("UpdateReportStatus: %v", err)
	}
	if ev.OldStatus != models.StatusSubmitted || ev.NewStatus != models.StatusPending || ev.AuthorID != "alice" {
		t.Errorf("unexpected event %+v", ev)
	}
	if _, err := m.UpdateReportStatus(ctx, rep.Seq, models.StatusPending); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := m.UpdateReportStatus(ctx, 42, models.StatusPending); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
	if h := m.History(rep.Seq); len(h) != 1 {
		t.Errorf("expected 1 history entry, got %d", len(h))
	}
}

func TestMemoryStoreSpatialQueries(t *testing.T) {
	ctx := context.Background()
	m := newTestMemoryStore(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	inside := &models.Report{Status: models.StatusPending, Latitude: fp(0.005), Longitude: fp(0.005)}
	outside := &models.Report{Status: models.StatusPending, Latitude: fp(5), Longitude: fp(5)}
	legacy := &models.Report{Status: models.StatusPending, Latitude: fp(0.004), Longitude: fp(0.006)}
	unlocated := &models.Report{Status: models.StatusPending}
	m.SaveReport(ctx, inside)
	m.SaveReport(ctx, outside)
	m.Import(legacy, false)
	m.SaveReport(ctx, unlocated)

	square := models.Region{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}, {Lat: 0.01, Lon: 0.01}, {Lat: 0.01, Lon: 0}, {Lat: 0, Lon: 0}}
	statuses := []models.Status{models.StatusPending}

	precise, _ := m.ReportsIntersecting(ctx, square, statuses)
	if len(precise) != 1 || precise[0].Seq != inside.Seq {
		t.Errorf("expected only the report with geometry inside, got %+v", precise)
	}
	if none, _ := m.ReportsIntersecting(ctx, square, []models.Status{models.StatusResolved}); len(none) != 0 {
		t.Errorf("expected status filter to apply, got %d reports", len(none))
	}

	vp := models.ViewPort{LatMin: 0, LonMin: 0, LatMax: 0.01, LonMax: 0.01}
	boxed, _ := m.ReportsInBoundingBox(ctx, vp, statuses)
	if len(boxed) != 2 {
		t.Fatalf("expected inside and legacy reports, got %d", len(boxed))
	}
	if boxed[0].Seq != legacy.Seq || boxed[1].Seq != inside.Seq {
		t.Errorf("expected descending seq for equal timestamps, got %d, %d", boxed[0].Seq, boxed[1].Seq)
	}
}

func TestMemoryStoreListReports(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	for i, st := range []models.Status{models.StatusPending, models.StatusResolved, models.StatusPending} {
		m.Import(&models.Report{Status: st, CreatedAt: base.Add(time.Duration(i) * time.Hour)}, false)
	}

	testCases := []struct {
		name     string
		filter   models.ReportFilter
		expected []int64
	}{
		{"All", models.ReportFilter{}, []int64{3, 2, 1}},
		{"By status", models.ReportFilter{Statuses: []models.Status{models.StatusPending}}, []int64{3, 1}},
		{"Since", models.ReportFilter{Since: base.Add(time.Hour)}, []int64{3, 2}},
		{"Limit", models.ReportFilter{Limit: 1}, []int64{3}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reports, _ := m.ListReports(ctx, tc.filter)
			if len(reports) != len(tc.expected) {
				t.Fatalf("expected %d reports, got %d", len(tc.expected), len(reports))
			}
			for i, seq := range tc.expected {
				if reports[i].Seq != seq {
					t.Errorf("position %d: expected seq %d, got %d", i, seq, reports[i].Seq)
				}
			}
		})
	}
}

func TestMemoryStoreMapReports(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m := newTestMemoryStore(now)

	fresh := &models.Report{Status: models.StatusPending, Latitude: fp(1.5), Longitude: fp(1.5)}
	edge := &models.Report{Status: models.StatusPending, Latitude: fp(2.4), Longitude: fp(2.4)}
	rejected := &models.Report{Status: models.StatusRejected, Latitude: fp(1.5), Longitude: fp(1.5)}
	old := &models.Report{Status: models.StatusPending, Latitude: fp(1.5), Longitude: fp(1.5), CreatedAt: now.Add(-48 * time.Hour)}
	for _, r := range []*models.Report{fresh, edge, rejected, old} {
		m.SaveReport(ctx, r)
	}

	vp := models.ViewPort{LatMin: 1, LonMin: 1, LatMax: 2, LonMax: 2}
	reports, _ := m.GetMapReports(ctx, vp, 24*time.Hour)
	if len(reports) != 2 {
		t.Fatalf("expected fresh and extended-viewport reports, got %+v", reports)
	}
}

func TestMemoryStoreTopReporters(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	add := func(author string, st models.Status) {
		m.Import(&models.Report{AuthorID: author, Status: st}, false)
	}
	add("bob", models.StatusPending)
	add("bob", models.StatusPending)
	add("alice", models.StatusResolved)
	add("carol", models.StatusRejected)
	add("dave", models.StatusPending)

	scores, _ := m.TopReporters(ctx, 2)
	expected := []models.ReporterScore{
		{AuthorID: "alice", ReportsCount: 1, ResolvedCount: 1},
		{AuthorID: "bob", ReportsCount: 2},
	}
	if len(scores) != len(expected) {
		t.Fatalf("expected %d scores, got %+v", len(expected), scores)
	}
	for i := range expected {
		if scores[i] != expected[i] {
			t.Errorf("position %d: expected %+v, got %+v", i, expected[i], scores[i])
		}
	}
}

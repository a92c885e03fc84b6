package selector

import (
	"context"
	"errors"
	"testing"
	"time"

	"pothole-service/database"
	"pothole-service/models"
	"pothole-service/region"
)

type fakeQuerier struct {
	precise      []models.Report
	boxed        []models.Report
	preciseErr   error
	boxErr       error
	preciseCalls int
	boxCalls     int
	lastRegion   models.Region
	lastBox      models.ViewPort
}

func (f *fakeQuerier) ReportsIntersecting(_ context.Context, r models.Region, _ []models.Status) ([]models.Report, error) {
	f.preciseCalls++
	f.lastRegion = r
	return f.precise, f.preciseErr
}

func (f *fakeQuerier) ReportsInBoundingBox(_ context.Context, vp models.ViewPort, _ []models.Status) ([]models.Report, error) {
	f.boxCalls++
	f.lastBox = vp
	return f.boxed, f.boxErr
}

func fp(f float64) *float64 { return &f }

var (
	openSquare = models.Region{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}, {Lat: 0.01, Lon: 0.01}, {Lat: 0.01, Lon: 0}}
	allExport  = []models.Status{models.StatusPending, models.StatusInProgress, models.StatusResolved}
	t0         = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
)

func located(seq int64, st models.Status, created time.Time) models.Report {
	return models.Report{Seq: seq, Status: st, Latitude: fp(0.005), Longitude: fp(0.005), CreatedAt: created}
}

func TestSelectPrecise(t *testing.T) {
	q := &fakeQuerier{precise: []models.Report{
		located(1, models.StatusPending, t0),
		located(2, models.StatusResolved, t0.Add(time.Hour)),
	}}
	sel, err := NewSelector(q).SelectReportsInRegion(context.Background(), openSquare, allExport)
	if err != nil {
		t.Fatalf("SelectReportsInRegion: %v", err)
	}
	if sel.Strategy != StrategyPrecise {
		t.Errorf("expected precise strategy, got %s", sel.Strategy)
	}
	if q.boxCalls != 0 {
		t.Errorf("fallback must not run when the precise query matched, ran %d times", q.boxCalls)
	}
	if len(q.lastRegion) != 5 || q.lastRegion[0] != q.lastRegion[4] {
		t.Errorf("expected the ring to be closed before querying, got %v", q.lastRegion)
	}
	if len(sel.Reports) != 2 || sel.Reports[0].Seq != 2 {
		t.Errorf("expected newest report first, got %+v", sel.Reports)
	}
}

func TestSelectFallback(t *testing.T) {
	q := &fakeQuerier{boxed: []models.Report{located(7, models.StatusPending, t0)}}
	sel, err := NewSelector(q).SelectReportsInRegion(context.Background(), openSquare, allExport)
	if err != nil {
		t.Fatalf("SelectReportsInRegion: %v", err)
	}
	if sel.Strategy != StrategyBoundingBox {
		t.Errorf("expected bounding-box strategy, got %s", sel.Strategy)
	}
	if q.preciseCalls != 1 || q.boxCalls != 1 {
		t.Errorf("expected one call per strategy, got %d/%d", q.preciseCalls, q.boxCalls)
	}
	expectedBox := models.ViewPort{LatMin: 0, LonMin: 0, LatMax: 0.01, LonMax: 0.01}
	if q.lastBox != expectedBox {
		t.Errorf("expected box %+v, got %+v", expectedBox, q.lastBox)
	}
	if len(sel.Reports) != 1 || sel.Reports[0].Seq != 7 {
		t.Errorf("unexpected reports %+v", sel.Reports)
	}
}

func TestSelectEmpty(t *testing.T) {
	q := &fakeQuerier{}
	sel, err := NewSelector(q).SelectReportsInRegion(context.Background(), openSquare, allExport)
	if err != nil {
		t.Fatalf("expected no error for an empty result, got %v", err)
	}
	if sel.Reports == nil || len(sel.Reports) != 0 {
		t.Errorf("expected an empty, non-nil report list, got %#v", sel.Reports)
	}
}

func TestSelectValidation(t *testing.T) {
	testCases := []struct {
		name     string
		region   models.Region
		statuses []models.Status
	}{
		{"Two vertices", models.Region{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}, allExport},
		{"No vertices", nil, allExport},
		{"Out of range", models.Region{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 91, Lon: 1}}, allExport},
		{"Empty status filter", openSquare, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeQuerier{}
			_, err := NewSelector(q).SelectReportsInRegion(context.Background(), tc.region, tc.statuses)
			var verr *region.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected a ValidationError, got %v", err)
			}
			if q.preciseCalls+q.boxCalls != 0 {
				t.Error("store must not be queried for invalid input")
			}
		})
	}
}

func TestSelectStoreUnavailable(t *testing.T) {
	testCases := []struct {
		name string
		q    *fakeQuerier
	}{
		{"Precise query fails", &fakeQuerier{preciseErr: errors.New("dial tcp: connection refused")}},
		{"Fallback query fails", &fakeQuerier{boxErr: errors.New("deadlock")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSelector(tc.q).SelectReportsInRegion(context.Background(), openSquare, allExport)
			if !errors.Is(err, ErrStoreUnavailable) {
				t.Errorf("expected ErrStoreUnavailable, got %v", err)
			}
		})
	}
}

func TestSelectDropsUnlocatedAndFilteredStatuses(t *testing.T) {
	q := &fakeQuerier{precise: []models.Report{
		{Seq: 1, Status: models.StatusPending},
		located(2, models.StatusRejected, t0),
		located(3, models.StatusPending, t0),
	}}
	sel, _ := NewSelector(q).SelectReportsInRegion(context.Background(), openSquare, allExport)
	if len(sel.Reports) != 1 || sel.Reports[0].Seq != 3 {
		t.Errorf("expected only report 3, got %+v", sel.Reports)
	}
}

func TestSortByRecency(t *testing.T) {
	reports := []models.Report{
		located(1, models.StatusPending, t0),
		located(2, models.StatusPending, t0.Add(time.Minute)),
		located(3, models.StatusPending, t0),
	}
	SortByRecency(reports)
	expected := []int64{2, 3, 1}
	for i, seq := range expected {
		if reports[i].Seq != seq {
			t.Errorf("position %d: expected seq %d, got %d", i, seq, reports[i].Seq)
		}
	}
}

func TestSelectIsIdempotent(t *testing.T) {
	store := database.NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		store.SaveReport(ctx, &models.Report{Status: models.StatusPending, Latitude: fp(0.001 * float64(i+1)), Longitude: fp(0.005)})
	}
	s := NewSelector(store)
	first, _ := s.SelectReportsInRegion(ctx, openSquare, allExport)
	second, _ := s.SelectReportsInRegion(ctx, openSquare, allExport)
	if len(first.Reports) != 3 || len(second.Reports) != 3 {
		t.Fatalf("expected 3 reports twice, got %d and %d", len(first.Reports), len(second.Reports))
	}
	for i := range first.Reports {
		if first.Reports[i].Seq != second.Reports[i].Seq {
			t.Errorf("position %d differs between runs", i)
		}
	}
}

func TestSelectRoundTripWithStore(t *testing.T) {
	store := database.NewMemoryStore()
	ctx := context.Background()

	center := &models.Report{Status: models.StatusPending, Latitude: fp(0.005), Longitude: fp(0.005)}
	far := &models.Report{Status: models.StatusPending, Latitude: fp(5), Longitude: fp(5)}
	nowhere := &models.Report{Status: models.StatusPending}
	for _, r := range []*models.Report{center, far, nowhere} {
		store.SaveReport(ctx, r)
	}

	sel, err := NewSelector(store).SelectReportsInRegion(ctx, openSquare, []models.Status{models.StatusPending})
	if err != nil {
		t.Fatalf("SelectReportsInRegion: %v", err)
	}
	if sel.Strategy != StrategyPrecise {
		t.Errorf("expected precise strategy, got %s", sel.Strategy)
	}
	if len(sel.Reports) != 1 || sel.Reports[0].Seq != center.Seq {
		t.Errorf("expected exactly the center report, got %+v", sel.Reports)
	}
}

func TestSelectLegacyRowsViaFallback(t *testing.T) {
	store := database.NewMemoryStore()
	ctx := context.Background()

	legacy := &models.Report{Status: models.StatusInProgress, Latitude: fp(0.002), Longitude: fp(0.008)}
	store.Import(legacy, false)

	sel, err := NewSelector(store).SelectReportsInRegion(ctx, openSquare, allExport)
	if err != nil {
		t.Fatalf("SelectReportsInRegion: %v", err)
	}
	if sel.Strategy != StrategyBoundingBox {
		t.Errorf("expected bounding-box strategy, got %s", sel.Strategy)
	}
	if len(sel.Reports) != 1 || sel.Reports[0].Seq != legacy.Seq {
		t.Errorf("expected the legacy report, got %+v", sel.Reports)
	}
}

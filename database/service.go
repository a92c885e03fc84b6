package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"pothole-service/models"
	"pothole-service/region"
	"pothole-service/utils"
)

var ErrReportNotFound = errors.New("report not found")

const reportColumns = `r.seq, r.picture_url, r.description, r.severity, r.status,
	r.latitude, r.longitude, r.address, r.author_id, r.created_at, r.updated_at`

type ReportsService struct {
	db *sql.DB
}

func NewReportsService(db *sql.DB) *ReportsService {
	return &ReportsService{db: db}
}

// SaveReport stores the report and, when it has coordinates, its point
// geometry. The assigned seq is written back into r.
func (s *ReportsService) SaveReport(ctx context.Context, r *models.Report) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		log.Errorf("Error creating transaction: %v", err)
		return err
	}
	defer tx.Rollback()

	var severity any
	if r.Severity != nil {
		severity = string(*r.Severity)
	}
	result, err := tx.ExecContext(ctx, `INSERT
		INTO reports (picture_url, description, severity, status, latitude, longitude, address, author_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PictureURL, r.Description, severity, string(r.Status), r.Latitude, r.Longitude, r.Address, r.AuthorID)
	utils.LogResult("saveReport", result, err, true)
	if err != nil {
		return err
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return err
	}

	if lat, lon, ok := r.Location(); ok {
		result, err = tx.ExecContext(ctx, `INSERT
			INTO reports_geometry (seq, geom)
			VALUES (?, ST_GeomFromText(?, 4326))`,
			seq, region.PointToWKT(lat, lon))
		utils.LogResult("saveReportGeometry", result, err, true)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Errorf("Error committing the transaction: %v", err)
		return err
	}
	r.Seq = seq
	log.Infof("Saved report %d by %s", seq, r.AuthorID)
	return nil
}

func (s *ReportsService) GetReport(ctx context.Context, seq int64) (*models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+reportColumns+`
		FROM reports r
		WHERE r.seq = ?`, seq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %d", ErrReportNotFound, seq)
	}
	rep, err := scanReport(rows)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// UpdateReportStatus moves the report to a new status if the lifecycle
// allows it and records the change in report_status_history.
func (s *ReportsService) UpdateReportStatus(ctx context.Context, seq int64, to models.Status) (*models.StatusChangedEvent, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		log.Errorf("Error creating transaction: %v", err)
		return nil, err
	}
	defer tx.Rollback()

	var from, authorID string
	err = tx.QueryRowContext(ctx, `SELECT status, author_id FROM reports WHERE seq = ? FOR UPDATE`, seq).Scan(&from, &authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrReportNotFound, seq)
	}
	if err != nil {
		return nil, err
	}
	if err := models.CheckTransition(models.Status(from), to); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `UPDATE reports SET status = ? WHERE seq = ?`, string(to), seq)
	utils.LogResult("updateReportStatus", result, err, true)
	if err != nil {
		return nil, err
	}
	result, err = tx.ExecContext(ctx, `INSERT
		INTO report_status_history (seq, old_status, new_status)
		VALUES (?, ?, ?)`, seq, from, string(to))
	utils.LogResult("insertStatusHistory", result, err, true)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Errorf("Error committing the transaction: %v", err)
		return nil, err
	}
	return &models.StatusChangedEvent{
		Seq:       seq,
		AuthorID:  authorID,
		OldStatus: models.Status(from),
		NewStatus: to,
		ChangedAt: time.Now().UTC(),
	}, nil
}

// ListReports returns reports matching the filter, newest first.
func (s *ReportsService) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	var (
		conds []string
		args  []any
	)
	if len(filter.Statuses) > 0 {
		conds = append(conds, "r.status IN ("+placeholders(len(filter.Statuses))+")")
		args = append(args, statusArgs(filter.Statuses)...)
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "r.created_at >= ?")
		args = append(args, filter.Since)
	}
	query := `SELECT ` + reportColumns + ` FROM reports r`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	return s.queryReports(ctx, query, args...)
}

// GetMapReports returns located, non rejected reports younger than retention
// inside the viewport extended by half its size on every side.
func (s *ReportsService) GetMapReports(ctx context.Context, vp models.ViewPort, retention time.Duration) ([]models.Report, error) {
	vp = extendViewPort(vp)
	return s.queryReports(ctx, `SELECT `+reportColumns+`
		FROM reports r
		WHERE r.latitude > ? AND r.longitude > ?
			AND r.latitude <= ? AND r.longitude <= ?
			AND r.status <> 'REJECTED'
			AND TIMESTAMPDIFF(HOUR, r.created_at, NOW()) <= ?
		ORDER BY r.created_at DESC, r.seq DESC`,
		vp.LatMin, vp.LonMin, vp.LatMax, vp.LonMax, retention.Hours())
}

// TopReporters returns per-author counts ordered by leaderboard points.
func (s *ReportsService) TopReporters(ctx context.Context, limit int) ([]models.ReporterScore, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT author_id,
			SUM(status <> 'REJECTED') AS reports_count,
			SUM(status = 'RESOLVED') AS resolved_count
		FROM reports
		GROUP BY author_id
		HAVING reports_count > 0
		ORDER BY reports_count + 2 * resolved_count DESC, author_id
		LIMIT ?`, limit)
	if err != nil {
		log.Errorf("Could not retrieve top reporters: %v", err)
		return nil, err
	}
	defer rows.Close()

	res := []models.ReporterScore{}
	for rows.Next() {
		var sc models.ReporterScore
		if err := rows.Scan(&sc.AuthorID, &sc.ReportsCount, &sc.ResolvedCount); err != nil {
			return nil, err
		}
		res = append(res, sc)
	}
	return res, rows.Err()
}

// ReportsIntersecting runs the spatial query against reports_geometry. The
// region must be closed. Reports without a geometry row are not returned.
func (s *ReportsService) ReportsIntersecting(ctx context.Context, r models.Region, statuses []models.Status) ([]models.Report, error) {
	args := append([]any{region.ToWKT(r)}, statusArgs(statuses)...)
	return s.queryReports(ctx, `SELECT `+reportColumns+`
		FROM reports r
		JOIN reports_geometry rg ON r.seq = rg.seq
		WHERE ST_Intersects(ST_GeomFromText(?, 4326), rg.geom)
			AND r.status IN (`+placeholders(len(statuses))+`)
		ORDER BY r.created_at DESC, r.seq DESC`, args...)
}

// ReportsInBoundingBox matches raw coordinates against vp, borders included.
func (s *ReportsService) ReportsInBoundingBox(ctx context.Context, vp models.ViewPort, statuses []models.Status) ([]models.Report, error) {
	args := append([]any{vp.LatMin, vp.LatMax, vp.LonMin, vp.LonMax}, statusArgs(statuses)...)
	return s.queryReports(ctx, `SELECT `+reportColumns+`
		FROM reports r
		WHERE r.latitude IS NOT NULL AND r.longitude IS NOT NULL
			AND r.latitude BETWEEN ? AND ?
			AND r.longitude BETWEEN ? AND ?
			AND r.status IN (`+placeholders(len(statuses))+`)
		ORDER BY r.created_at DESC, r.seq DESC`, args...)
}

func (s *ReportsService) queryReports(ctx context.Context, query string, args ...any) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Errorf("Could not retrieve reports: %v", err)
		return nil, err
	}
	defer rows.Close()

	res := []models.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			log.Errorf("Cannot scan a row: %v", err)
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		res = append(res, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func scanReport(rows *sql.Rows) (models.Report, error) {
	var (
		rep         models.Report
		description sql.NullString
		severity    sql.NullString
		status      string
		latitude    sql.NullFloat64
		longitude   sql.NullFloat64
		address     sql.NullString
	)
	if err := rows.Scan(&rep.Seq, &rep.PictureURL, &description, &severity, &status,
		&latitude, &longitude, &address, &rep.AuthorID, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
		return rep, err
	}
	rep.Description = description.String
	rep.Status = models.Status(status)
	if severity.Valid {
		sv := models.Severity(severity.String)
		rep.Severity = &sv
	}
	if latitude.Valid {
		rep.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		rep.Longitude = &longitude.Float64
	}
	if address.Valid {
		rep.Address = &address.String
	}
	return rep, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return "NULL"
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func statusArgs(statuses []models.Status) []any {
	args := make([]any, len(statuses))
	for i, st := range statuses {
		args[i] = string(st)
	}
	return args
}

// extendViewPort grows the viewport by half its size in each direction.
func extendViewPort(vp models.ViewPort) models.ViewPort {
	latSize := vp.LatMax - vp.LatMin
	lonSize := vp.LonMax - vp.LonMin
	vp.LatMin -= latSize / 2
	vp.LatMax += latSize / 2
	vp.LonMin -= lonSize / 2
	vp.LonMax += lonSize / 2
	return vp
}

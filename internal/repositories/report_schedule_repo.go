package repositories

import (
	"context"
	"time"

	"casaops/internal/models"

	"github.com/google/uuid"
)

type ReportScheduleRepository interface {
	Create(ctx context.Context, schedule *models.ReportSchedule) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ReportSchedule, error)
	Update(ctx context.Context, schedule *models.ReportSchedule) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReportSchedule, error)
	ListEnabled(ctx context.Context, limit, offset int) ([]*models.ReportSchedule, error)
	RecordRun(ctx context.Context, scheduleID uuid.UUID, ranAt time.Time) error
	CreateGeneratedReport(ctx context.Context, report *models.GeneratedReport) error
	ListGeneratedReports(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.GeneratedReport, error)
}

type reportScheduleRepo struct {
	db Database
}

func NewReportScheduleRepository(db Database) ReportScheduleRepository {
	return &reportScheduleRepo{db: db}
}

const scheduleColumns = `id, tenant_id, report_type, frequency, format, recipients, enabled, last_run_at, created_at, updated_at`

func (r *reportScheduleRepo) scanSchedule(row interface{ Scan(dest ...any) error }) (*models.ReportSchedule, error) {
	schedule := &models.ReportSchedule{}
	err := row.Scan(&schedule.ID, &schedule.TenantID, &schedule.ReportType, &schedule.Frequency, &schedule.Format, &schedule.Recipients, &schedule.Enabled, &schedule.LastRunAt, &schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (r *reportScheduleRepo) Create(ctx context.Context, schedule *models.ReportSchedule) error {
	query := `
		INSERT INTO report_schedules (id, tenant_id, report_type, frequency, format, recipients, enabled, last_run_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, schedule.ID, schedule.TenantID, schedule.ReportType, schedule.Frequency, schedule.Format, schedule.Recipients, schedule.Enabled, schedule.LastRunAt)
	return err
}

func (r *reportScheduleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ReportSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM report_schedules
		WHERE tenant_id = $1 AND id = $2
	`
	return r.scanSchedule(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *reportScheduleRepo) Update(ctx context.Context, schedule *models.ReportSchedule) error {
	query := `
		UPDATE report_schedules
		SET report_type = $1, frequency = $2, format = $3, recipients = $4, enabled = $5, updated_at = NOW()
		WHERE tenant_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query, schedule.ReportType, schedule.Frequency, schedule.Format, schedule.Recipients, schedule.Enabled, schedule.TenantID, schedule.ID)
	return err
}

func (r *reportScheduleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM report_schedules WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *reportScheduleRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReportSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM report_schedules
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.querySchedules(ctx, query, tenantID, limit, offset)
}

// ListEnabled returns enabled schedules across all tenants; used by the
// background scheduler.
func (r *reportScheduleRepo) ListEnabled(ctx context.Context, limit, offset int) ([]*models.ReportSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM report_schedules
		WHERE enabled = true
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`
	return r.querySchedules(ctx, query, limit, offset)
}

func (r *reportScheduleRepo) RecordRun(ctx context.Context, scheduleID uuid.UUID, ranAt time.Time) error {
	query := `
		UPDATE report_schedules
		SET last_run_at = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, ranAt, scheduleID)
	return err
}

func (r *reportScheduleRepo) CreateGeneratedReport(ctx context.Context, report *models.GeneratedReport) error {
	query := `
		INSERT INTO generated_reports (id, tenant_id, schedule_id, report_type, format, object_key, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, report.ID, report.TenantID, report.ScheduleID, report.ReportType, report.Format, report.ObjectKey, report.SizeBytes)
	return err
}

func (r *reportScheduleRepo) ListGeneratedReports(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.GeneratedReport, error) {
	query := `
		SELECT id, tenant_id, schedule_id, report_type, format, object_key, size_bytes, created_at
		FROM generated_reports
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.GeneratedReport
	for rows.Next() {
		report := &models.GeneratedReport{}
		if err := rows.Scan(&report.ID, &report.TenantID, &report.ScheduleID, &report.ReportType, &report.Format, &report.ObjectKey, &report.SizeBytes, &report.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *reportScheduleRepo) querySchedules(ctx context.Context, query string, args ...any) ([]*models.ReportSchedule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.ReportSchedule
	for rows.Next() {
		schedule, err := r.scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

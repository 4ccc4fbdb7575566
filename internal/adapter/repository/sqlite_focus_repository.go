package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.

	"github.com/johnquangdev/ifocus/internal/domain/entities"
	repo "github.com/johnquangdev/ifocus/internal/domain/repositories"
)

// SQLiteFocusRepository reads the Flask application's ifocus.db directly.
// The user, assignment, enrollment and focus_data tables belong to the web
// app and are never created here; only the report and job tables are.
type SQLiteFocusRepository struct {
	db *sql.DB
}

var _ repo.Store = (*SQLiteFocusRepository)(nil)

// OpenSQLite opens the database at path and creates the companion tables
func OpenSQLite(path string) (*SQLiteFocusRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time, sqlite serialises them anyway
	db.SetMaxOpenConns(1)

	r := &SQLiteFocusRepository{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return r, nil
}

// Close closes the underlying database.
func (r *SQLiteFocusRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteFocusRepository) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS focus_reports (
			id TEXT PRIMARY KEY,
			student_id INTEGER,
			assignment_id INTEGER NOT NULL,
			job_id TEXT NOT NULL,
			metrics TEXT NOT NULL,
			summary_text TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS insight_jobs (
			id TEXT PRIMARY KEY,
			job_type TEXT NOT NULL,
			status TEXT NOT NULL,
			student_id INTEGER,
			assignment_id INTEGER NOT NULL,
			sample_count INTEGER NOT NULL DEFAULT 0,
			heatmap_url TEXT,
			skip_reason TEXT,
			last_error TEXT,
			attempt_count INTEGER NOT NULL DEFAULT 0,
			started_at TEXT,
			completed_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_focus_reports_pair ON focus_reports(assignment_id, student_id);`,
		`CREATE INDEX IF NOT EXISTS idx_insight_jobs_status ON insight_jobs(status);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const sampleColumns = `id, user_id, assignment_id, x_coord, y_coord, outside, timestamp`

func (r *SQLiteFocusRepository) ListSamplesForPair(ctx context.Context, studentID, assignmentID int64) (entities.Batch, error) {
	return r.querySamples(ctx,
		`SELECT `+sampleColumns+` FROM focus_data WHERE user_id = ? AND assignment_id = ? ORDER BY id`,
		studentID, assignmentID)
}

func (r *SQLiteFocusRepository) ListSamplesForAssignment(ctx context.Context, assignmentID int64) (entities.Batch, error) {
	return r.querySamples(ctx,
		`SELECT `+sampleColumns+` FROM focus_data WHERE assignment_id = ? ORDER BY id`,
		assignmentID)
}

func (r *SQLiteFocusRepository) querySamples(ctx context.Context, query string, args ...any) (entities.Batch, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query focus data: %w", err)
	}
	defer rows.Close()

	var batch entities.Batch
	for rows.Next() {
		var (
			s       entities.FocusSample
			outside sql.NullBool
			ts      any
		)
		if err := rows.Scan(&s.ID, &s.StudentID, &s.AssignmentID, &s.X, &s.Y, &outside, &ts); err != nil {
			return nil, fmt.Errorf("scan focus data: %w", err)
		}
		s.Outside = outside.Valid && outside.Bool
		if s.Timestamp, err = parseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("focus data %d: %w", s.ID, err)
		}
		batch = append(batch, s)
	}
	return batch, rows.Err()
}

const enrollmentQuery = `
	SELECT e.id, e.user_id, e.assignment_id, e.grade, e.insights,
	       u.id, u.username, u.role,
	       a.id, a.teacher_id, a.title, a.pdf_path, a.youtube_url, a.summary, a.insights
	FROM enrollment e
	LEFT JOIN "user" u ON u.id = e.user_id
	LEFT JOIN assignment a ON a.id = e.assignment_id`

func (r *SQLiteFocusRepository) ListEnrollments(ctx context.Context) ([]*entities.Enrollment, error) {
	return r.queryEnrollments(ctx, enrollmentQuery+` ORDER BY e.id`)
}

func (r *SQLiteFocusRepository) ListEnrollmentsByUser(ctx context.Context, userID int64) ([]*entities.Enrollment, error) {
	return r.queryEnrollments(ctx, enrollmentQuery+` WHERE e.user_id = ? ORDER BY e.id`, userID)
}

func (r *SQLiteFocusRepository) GetEnrollment(ctx context.Context, studentID, assignmentID int64) (*entities.Enrollment, error) {
	enrollments, err := r.queryEnrollments(ctx,
		enrollmentQuery+` WHERE e.user_id = ? AND e.assignment_id = ? ORDER BY e.id LIMIT 1`,
		studentID, assignmentID)
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return nil, entities.ErrEnrollmentNotFound
	}
	return enrollments[0], nil
}

func (r *SQLiteFocusRepository) queryEnrollments(ctx context.Context, query string, args ...any) ([]*entities.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*entities.Enrollment
	for rows.Next() {
		var (
			e          entities.Enrollment
			grade      sql.NullFloat64
			insights   sql.NullString
			userID     sql.NullInt64
			username   sql.NullString
			role       sql.NullString
			assignment nullableAssignment
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.AssignmentID, &grade, &insights,
			&userID, &username, &role,
			&assignment.id, &assignment.teacherID, &assignment.title,
			&assignment.pdfPath, &assignment.youtubeURL, &assignment.summary, &assignment.insights,
		); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		if grade.Valid {
			e.Grade = &grade.Float64
		}
		e.Insights = stringPtr(insights)
		if userID.Valid {
			e.Student = &entities.Student{ID: userID.Int64, Username: username.String, Role: role.String}
		}
		e.Assignment = assignment.entity()
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}

const assignmentQuery = `SELECT id, teacher_id, title, pdf_path, youtube_url, summary, insights FROM assignment`

func (r *SQLiteFocusRepository) ListAssignments(ctx context.Context) ([]*entities.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, assignmentQuery+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*entities.Assignment
	for rows.Next() {
		var a nullableAssignment
		if err := rows.Scan(&a.id, &a.teacherID, &a.title, &a.pdfPath, &a.youtubeURL, &a.summary, &a.insights); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a.entity())
	}
	return assignments, rows.Err()
}

func (r *SQLiteFocusRepository) GetAssignment(ctx context.Context, assignmentID int64) (*entities.Assignment, error) {
	var a nullableAssignment
	err := r.db.QueryRowContext(ctx, assignmentQuery+` WHERE id = ?`, assignmentID).
		Scan(&a.id, &a.teacherID, &a.title, &a.pdfPath, &a.youtubeURL, &a.summary, &a.insights)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a.entity(), nil
}

func (r *SQLiteFocusRepository) SaveEnrollmentInsights(ctx context.Context, enrollmentID int64, insights string) error {
	return r.updateInsights(ctx, `UPDATE enrollment SET insights = ? WHERE id = ?`, insights, enrollmentID, entities.ErrEnrollmentNotFound)
}

func (r *SQLiteFocusRepository) SaveAssignmentInsights(ctx context.Context, assignmentID int64, insights string) error {
	return r.updateInsights(ctx, `UPDATE assignment SET insights = ? WHERE id = ?`, insights, assignmentID, entities.ErrAssignmentNotFound)
}

func (r *SQLiteFocusRepository) updateInsights(ctx context.Context, stmt, insights string, id int64, notFound error) error {
	res, err := r.db.ExecContext(ctx, stmt, insights, id)
	if err != nil {
		return fmt.Errorf("save insights: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (r *SQLiteFocusRepository) SaveReport(ctx context.Context, record *entities.FocusReportRecord) error {
	if record == nil {
		return errors.New("report record cannot be nil")
	}
	metrics, err := json.Marshal(record.Metrics.Data())
	if err != nil {
		return fmt.Errorf("encode report metrics: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO focus_reports (id, student_id, assignment_id, job_id, metrics, summary_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID.String(),
		nullInt64(record.StudentID),
		record.AssignmentID,
		record.JobID.String(),
		string(metrics),
		record.SummaryText,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (r *SQLiteFocusRepository) SaveInsightJob(ctx context.Context, job *entities.InsightJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO insight_jobs (id, job_type, status, student_id, assignment_id, sample_count, heatmap_url,
			skip_reason, last_error, attempt_count, started_at, completed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			sample_count = excluded.sample_count,
			heatmap_url = excluded.heatmap_url,
			skip_reason = excluded.skip_reason,
			last_error = excluded.last_error,
			attempt_count = excluded.attempt_count,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at`,
		job.ID.String(),
		string(job.JobType),
		string(job.Status),
		nullInt64(job.StudentID),
		job.AssignmentID,
		job.SampleCount,
		job.HeatmapURL,
		job.SkipReason,
		job.LastError,
		job.AttemptCount,
		formatTimePtr(job.StartedAt),
		formatTimePtr(job.CompletedAt),
		job.CreatedAt.UTC().Format(time.RFC3339Nano),
		job.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

type nullableAssignment struct {
	id         sql.NullInt64
	teacherID  sql.NullInt64
	title      sql.NullString
	pdfPath    sql.NullString
	youtubeURL sql.NullString
	summary    sql.NullString
	insights   sql.NullString
}

func (a nullableAssignment) entity() *entities.Assignment {
	if !a.id.Valid {
		return nil
	}
	return &entities.Assignment{
		ID:         a.id.Int64,
		TeacherID:  a.teacherID.Int64,
		Title:      a.title.String,
		PDFPath:    stringPtr(a.pdfPath),
		YoutubeURL: stringPtr(a.youtubeURL),
		Summary:    stringPtr(a.summary),
		Insights:   stringPtr(a.insights),
	}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

// Layouts written by SQLAlchemy and by hand-edited rows
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02",
}

func parseTimestamp(v any) (time.Time, error) {
	switch ts := v.(type) {
	case time.Time:
		return ts.UTC(), nil
	case []byte:
		return parseTimestamp(string(ts))
	case string:
		s := strings.TrimSpace(ts)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", ts)
	case int64:
		return time.Unix(ts, 0).UTC(), nil
	case nil:
		return time.Time{}, errors.New("missing timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

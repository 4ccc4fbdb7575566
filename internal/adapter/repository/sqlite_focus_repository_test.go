package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

// flaskSchema mirrors the tables the web application creates
var flaskSchema = []string{
	`CREATE TABLE user (
		id INTEGER PRIMARY KEY,
		username VARCHAR(80) NOT NULL UNIQUE,
		password VARCHAR(200) NOT NULL,
		role VARCHAR(20) NOT NULL
	)`,
	`CREATE TABLE assignment (
		id INTEGER PRIMARY KEY,
		teacher_id INTEGER NOT NULL,
		title VARCHAR(255) NOT NULL,
		pdf_path VARCHAR(2000),
		youtube_url VARCHAR(2000),
		summary TEXT,
		insights TEXT
	)`,
	`CREATE TABLE enrollment (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		assignment_id INTEGER NOT NULL,
		grade FLOAT,
		insights TEXT
	)`,
	`CREATE TABLE focus_data (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		assignment_id INTEGER NOT NULL,
		x_coord FLOAT NOT NULL,
		y_coord FLOAT NOT NULL,
		outside BOOLEAN,
		timestamp DATETIME
	)`,
}

var flaskRows = []string{
	`INSERT INTO user (id, username, password, role) VALUES (1, 'teacher', 'x', 'Teacher'), (2, 'alice', 'x', 'Student'), (3, 'bob', 'x', 'Student')`,
	`INSERT INTO assignment (id, teacher_id, title, pdf_path) VALUES (10, 1, 'Photosynthesis', 'uploads/photo.pdf')`,
	`INSERT INTO assignment (id, teacher_id, title, youtube_url) VALUES (11, 1, 'Fractions', 'https://youtu.be/abc')`,
	`INSERT INTO enrollment (id, user_id, assignment_id, grade) VALUES (100, 2, 10, 88.5), (101, 3, 10, NULL), (102, 2, 11, NULL)`,
	`INSERT INTO focus_data (id, user_id, assignment_id, x_coord, y_coord, outside, timestamp) VALUES
		(1, 2, 10, 0.2, 0.8, 0, '2024-03-01 09:00:00.000000'),
		(2, 2, 10, 0.9, 0.9, 1, '2024-03-01 09:00:05.000000'),
		(3, 2, 10, 0.9, 0.9, NULL, '2024-03-01 09:00:08'),
		(4, 3, 10, 0.5, 0.5, 0, '2024-03-01 09:01:00.250000'),
		(5, 2, 11, 0.1, 0.1, 0, '2024-03-02 10:00:00.000000')`,
}

func newTestSQLite(t *testing.T) *SQLiteFocusRepository {
	t.Helper()
	r, err := OpenSQLite(filepath.Join(t.TempDir(), "instance", "ifocus.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	for _, stmt := range append(append([]string{}, flaskSchema...), flaskRows...) {
		if _, err := r.db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v\n%s", err, stmt)
		}
	}
	return r
}

func TestSQLite_ListSamplesForPair(t *testing.T) {
	r := newTestSQLite(t)

	batch, err := r.ListSamplesForPair(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("ListSamplesForPair() error = %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("got %d samples, want 3", len(batch))
	}
	if batch[0].ID != 1 || batch[2].ID != 3 {
		t.Fatalf("samples not in id order: %+v", batch)
	}
	if batch[0].Outside || !batch[1].Outside || batch[2].Outside {
		t.Fatalf("outside flags = %v %v %v", batch[0].Outside, batch[1].Outside, batch[2].Outside)
	}
	if got := batch[2].Timestamp.Sub(batch[0].Timestamp); got != 8*time.Second {
		t.Fatalf("timestamp gap = %v, want 8s", got)
	}
	if batch[0].X != 0.2 || batch[0].Y != 0.8 {
		t.Fatalf("coordinates = (%v, %v)", batch[0].X, batch[0].Y)
	}
}

func TestSQLite_ListSamplesForAssignment(t *testing.T) {
	r := newTestSQLite(t)

	batch, err := r.ListSamplesForAssignment(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListSamplesForAssignment() error = %v", err)
	}
	if len(batch) != 4 {
		t.Fatalf("got %d samples, want 4", len(batch))
	}

	empty, err := r.ListSamplesForAssignment(context.Background(), 999)
	if err != nil || len(empty) != 0 {
		t.Fatalf("unknown assignment: %v, %d samples", err, len(empty))
	}
}

func TestSQLite_Enrollments(t *testing.T) {
	r := newTestSQLite(t)
	ctx := context.Background()

	all, err := r.ListEnrollments(ctx)
	if err != nil {
		t.Fatalf("ListEnrollments() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d enrollments, want 3", len(all))
	}

	mine, err := r.ListEnrollmentsByUser(ctx, 2)
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListEnrollmentsByUser() = %d, %v", len(mine), err)
	}

	e, err := r.GetEnrollment(ctx, 2, 10)
	if err != nil {
		t.Fatalf("GetEnrollment() error = %v", err)
	}
	if e.ID != 100 || e.Grade == nil || *e.Grade != 88.5 {
		t.Fatalf("enrollment = %+v", e)
	}
	if e.StudentName() != "alice" || e.AssignmentTitle() != "Photosynthesis" {
		t.Fatalf("relations = %q / %q", e.StudentName(), e.AssignmentTitle())
	}
	if !e.Assignment.IsPDF() || e.Assignment.IsVideo() {
		t.Fatalf("assignment material flags wrong: %+v", e.Assignment)
	}

	if _, err := r.GetEnrollment(ctx, 3, 11); !errors.Is(err, entities.ErrEnrollmentNotFound) {
		t.Fatalf("GetEnrollment(missing) error = %v", err)
	}
}

func TestSQLite_Assignments(t *testing.T) {
	r := newTestSQLite(t)
	ctx := context.Background()

	all, err := r.ListAssignments(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListAssignments() = %d, %v", len(all), err)
	}
	if err := all[1].Validate(); err != nil {
		t.Fatalf("video assignment invalid: %v", err)
	}

	if _, err := r.GetAssignment(ctx, 42); !errors.Is(err, entities.ErrAssignmentNotFound) {
		t.Fatalf("GetAssignment(missing) error = %v", err)
	}
}

func TestSQLite_SaveInsights(t *testing.T) {
	r := newTestSQLite(t)
	ctx := context.Background()

	if err := r.SaveEnrollmentInsights(ctx, 100, "<p>Nice work</p>"); err != nil {
		t.Fatalf("SaveEnrollmentInsights() error = %v", err)
	}
	e, _ := r.GetEnrollment(ctx, 2, 10)
	if e.Insights == nil || *e.Insights != "<p>Nice work</p>" {
		t.Fatalf("insights not stored: %+v", e.Insights)
	}

	if err := r.SaveAssignmentInsights(ctx, 11, "Engagement dips midway"); err != nil {
		t.Fatalf("SaveAssignmentInsights() error = %v", err)
	}
	a, _ := r.GetAssignment(ctx, 11)
	if a.Insights == nil || *a.Insights != "Engagement dips midway" {
		t.Fatalf("assignment insights not stored: %+v", a.Insights)
	}

	if err := r.SaveEnrollmentInsights(ctx, 999, "x"); !errors.Is(err, entities.ErrEnrollmentNotFound) {
		t.Fatalf("SaveEnrollmentInsights(missing) error = %v", err)
	}
}

func TestSQLite_SaveReportAndJob(t *testing.T) {
	r := newTestSQLite(t)
	ctx := context.Background()

	job := entities.NewEnrollmentJob(2, 10)
	job.MarkAsRunning()
	if err := r.SaveInsightJob(ctx, job); err != nil {
		t.Fatalf("SaveInsightJob(running) error = %v", err)
	}
	job.MarkAsCompleted()
	if err := r.SaveInsightJob(ctx, job); err != nil {
		t.Fatalf("SaveInsightJob(completed) error = %v", err)
	}

	var status string
	var count int
	if err := r.db.QueryRow(`SELECT status, (SELECT COUNT(*) FROM insight_jobs) FROM insight_jobs WHERE id = ?`, job.ID.String()).Scan(&status, &count); err != nil {
		t.Fatalf("query job: %v", err)
	}
	if status != "completed" || count != 1 {
		t.Fatalf("job row = %s (%d rows)", status, count)
	}

	sid := int64(2)
	report := &entities.FocusReport{SampleCount: 3, TotalDurationSeconds: 8, SummaryText: "Total duration: 8.00 seconds.\n"}
	if err := r.SaveReport(ctx, entities.NewFocusReportRecord(uuid.New(), &sid, 10, report)); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	var metrics string
	if err := r.db.QueryRow(`SELECT metrics FROM focus_reports WHERE assignment_id = 10`).Scan(&metrics); err != nil {
		t.Fatalf("query report: %v", err)
	}
	if metrics == "" || metrics[0] != '{' {
		t.Fatalf("metrics = %q", metrics)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 0, 5, 500000000, time.UTC)
	for _, in := range []any{
		"2024-03-01 09:00:05.500000",
		"2024-03-01T09:00:05.5",
		"2024-03-01T09:00:05.5Z",
		[]byte("2024-03-01 09:00:05.5"),
		want,
	} {
		got, err := parseTimestamp(in)
		if err != nil {
			t.Fatalf("parseTimestamp(%v) error = %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parseTimestamp(%v) = %v, want %v", in, got, want)
		}
	}

	if _, err := parseTimestamp(nil); err == nil {
		t.Fatal("expected error for nil timestamp")
	}
}

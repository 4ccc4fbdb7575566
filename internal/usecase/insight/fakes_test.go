package insight

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

type fakeStore struct {
	mu sync.Mutex

	samples     []entities.FocusSample
	enrollments []*entities.Enrollment
	assignments []*entities.Assignment
	listErr     error

	enrollmentInsights map[int64]string
	assignmentInsights map[int64]string
	reports            []*entities.FocusReportRecord
	jobs               map[uuid.UUID]entities.InsightJob
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		enrollmentInsights: map[int64]string{},
		assignmentInsights: map[int64]string{},
		jobs:               map[uuid.UUID]entities.InsightJob{},
	}
}

func (f *fakeStore) ListSamplesForPair(_ context.Context, studentID, assignmentID int64) (entities.Batch, error) {
	var out entities.Batch
	for _, s := range f.samples {
		if s.StudentID == studentID && s.AssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSamplesForAssignment(_ context.Context, assignmentID int64) (entities.Batch, error) {
	var out entities.Batch
	for _, s := range f.samples {
		if s.AssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListEnrollments(context.Context) ([]*entities.Enrollment, error) {
	return f.enrollments, f.listErr
}

func (f *fakeStore) ListEnrollmentsByUser(_ context.Context, userID int64) ([]*entities.Enrollment, error) {
	var out []*entities.Enrollment
	for _, e := range f.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, f.listErr
}

func (f *fakeStore) GetEnrollment(_ context.Context, studentID, assignmentID int64) (*entities.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.UserID == studentID && e.AssignmentID == assignmentID {
			return e, nil
		}
	}
	return nil, entities.ErrEnrollmentNotFound
}

func (f *fakeStore) ListAssignments(context.Context) ([]*entities.Assignment, error) {
	return f.assignments, f.listErr
}

func (f *fakeStore) GetAssignment(_ context.Context, assignmentID int64) (*entities.Assignment, error) {
	for _, a := range f.assignments {
		if a.ID == assignmentID {
			return a, nil
		}
	}
	return nil, entities.ErrAssignmentNotFound
}

func (f *fakeStore) SaveEnrollmentInsights(_ context.Context, enrollmentID int64, insights string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrollmentInsights[enrollmentID] = insights
	return nil
}

func (f *fakeStore) SaveAssignmentInsights(_ context.Context, assignmentID int64, insights string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignmentInsights[assignmentID] = insights
	return nil
}

func (f *fakeStore) SaveReport(_ context.Context, record *entities.FocusReportRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, record)
	return nil
}

func (f *fakeStore) SaveInsightJob(_ context.Context, job *entities.InsightJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = *job
	return nil
}

type generateCall struct {
	system, prompt string
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls []generateCall
	fn    func(system, prompt string) (string, error)
}

func (g *fakeGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, generateCall{system, prompt})
	g.mu.Unlock()
	if g.fn != nil {
		return g.fn(system, prompt)
	}
	return "  <p>Keep it up!</p>\n", nil
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakeSink struct {
	mu   sync.Mutex
	puts map[string][]byte
	err  error
}

func (s *fakeSink) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[key] = data
	return "mem://" + key, nil
}

type stubRenderer struct{}

func (stubRenderer) RenderBatch(title string, batch entities.Batch) ([]byte, error) {
	return []byte(title), nil
}

type fakeClaimer struct {
	mu   sync.Mutex
	held map[string]bool
	deny bool
}

func (c *fakeClaimer) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deny {
		return false, nil
	}
	if c.held == nil {
		c.held = map[string]bool{}
	}
	if c.held[key] {
		return false, nil
	}
	c.held[key] = true
	return true, nil
}

func (c *fakeClaimer) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.held, key)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*entities.ReportEvent
}

func (p *fakePublisher) Publish(_ context.Context, event *entities.ReportEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

var errBoom = errors.New("boom")

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sample(studentID, assignmentID int64, secs float64, x, y float64, outside bool) entities.FocusSample {
	return entities.FocusSample{
		StudentID:    studentID,
		AssignmentID: assignmentID,
		X:            x,
		Y:            y,
		Outside:      outside,
		Timestamp:    t0.Add(time.Duration(secs * float64(time.Second))),
	}
}

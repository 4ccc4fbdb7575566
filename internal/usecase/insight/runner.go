package insight

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

// Scope selects which job types a run covers
type Scope int

const (
	ScopeAll Scope = iota
	ScopeStudents
	ScopeAssignments
)

// RunSummary counts job outcomes of one run
type RunSummary struct {
	Processed int
	Skipped   int
	Failed    int
	Failures  []*entities.InsightJob

	mu sync.Mutex
}

func (r *RunSummary) record(job *entities.InsightJob) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch job.Status {
	case entities.InsightJobStatusCompleted:
		r.Processed++
	case entities.InsightJobStatusSkipped:
		r.Skipped++
	default:
		r.Failed++
		r.Failures = append(r.Failures, job)
	}
}

// Total returns the number of jobs recorded
func (r *RunSummary) Total() int {
	return r.Processed + r.Skipped + r.Failed
}

type task func(ctx context.Context, workerID int) *entities.InsightJob

// RunAll processes every enrollment, then every assignment. A failing job
// never stops the others; only listing failures and cancellation end the run.
func (s *Service) RunAll(ctx context.Context, scope Scope) (*RunSummary, error) {
	summary := &RunSummary{}

	if scope != ScopeAssignments {
		enrollments, err := s.store.ListEnrollments(ctx)
		if err != nil {
			return summary, err
		}
		s.logger.Info("🚀 Processing enrollments", zap.Int("count", len(enrollments)))
		if err := s.runPool(ctx, s.enrollmentTasks(enrollments), summary); err != nil {
			return summary, err
		}
	}

	if scope != ScopeStudents {
		assignments, err := s.store.ListAssignments(ctx)
		if err != nil {
			return summary, err
		}
		s.logger.Info("🚀 Processing assignments", zap.Int("count", len(assignments)))
		if err := s.runPool(ctx, s.assignmentTasks(assignments), summary); err != nil {
			return summary, err
		}
	}

	s.logger.Info("Run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// RunForUser processes only the enrollments of one user
func (s *Service) RunForUser(ctx context.Context, userID int64) (*RunSummary, error) {
	summary := &RunSummary{}

	enrollments, err := s.store.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		return summary, err
	}
	s.logger.Info("🚀 Processing enrollments for user", zap.Int64("user_id", userID), zap.Int("count", len(enrollments)))

	err = s.runPool(ctx, s.enrollmentTasks(enrollments), summary)
	return summary, err
}

func (s *Service) enrollmentTasks(enrollments []*entities.Enrollment) []task {
	tasks := make([]task, len(enrollments))
	for i, e := range enrollments {
		tasks[i] = func(ctx context.Context, workerID int) *entities.InsightJob {
			job, _ := s.processEnrollment(ctx, e, workerID)
			return job
		}
	}
	return tasks
}

func (s *Service) assignmentTasks(assignments []*entities.Assignment) []task {
	tasks := make([]task, len(assignments))
	for i, a := range assignments {
		tasks[i] = func(ctx context.Context, workerID int) *entities.InsightJob {
			job, _ := s.processAssignment(ctx, a, workerID)
			return job
		}
	}
	return tasks
}

// runPool fans tasks out to Concurrency workers and waits for all of them.
// Tasks not yet started when ctx ends are dropped.
func (s *Service) runPool(ctx context.Context, tasks []task, summary *RunSummary) error {
	queue := make(chan task)
	var wg sync.WaitGroup

	workers := s.opts.Concurrency
	if workers > len(tasks) {
		workers = len(tasks)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for t := range queue {
				summary.record(t(ctx, workerID))
			}
		}(i + 1)
	}

	var err error
feed:
	for _, t := range tasks {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case queue <- t:
		}
	}
	close(queue)
	wg.Wait()

	if err != nil {
		s.logger.Warn("Run cancelled", zap.Error(err))
	}
	return err
}

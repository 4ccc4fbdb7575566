package insight

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/internal/domain/entities"
	"github.com/johnquangdev/ifocus/internal/infrastructure/heatmap"
	"github.com/johnquangdev/ifocus/internal/usecase/focus"
	"github.com/johnquangdev/ifocus/pkg/jobcontext"
)

// ProcessEnrollment renders the heatmap and generates insights for one
// (student, assignment) pair. The returned job is skipped when there is no
// usable focus data or another runner holds the pair.
func (s *Service) ProcessEnrollment(ctx context.Context, enrollment *entities.Enrollment) (*entities.InsightJob, error) {
	return s.processEnrollment(ctx, enrollment, 0)
}

// ProcessAssignment does the same for the samples of all students of an assignment
func (s *Service) ProcessAssignment(ctx context.Context, assignment *entities.Assignment) (*entities.InsightJob, error) {
	return s.processAssignment(ctx, assignment, 0)
}

func (s *Service) processEnrollment(ctx context.Context, enrollment *entities.Enrollment, workerID int) (*entities.InsightJob, error) {
	job := entities.NewEnrollmentJob(enrollment.UserID, enrollment.AssignmentID)
	err := s.runJob(ctx, job, workerID, func(ctx context.Context) error {
		batch, err := s.store.ListSamplesForPair(ctx, enrollment.UserID, enrollment.AssignmentID)
		if err != nil {
			return err
		}
		title, key := StudentHeatmap(enrollment.UserID, enrollment.AssignmentID)

		return s.pipeline(ctx, job, batch, title, key,
			func(summary string) (string, string) { return StudentPrompt(enrollment, summary) },
			func(ctx context.Context, insights string) error {
				return s.store.SaveEnrollmentInsights(ctx, enrollment.ID, insights)
			},
		)
	})
	return job, err
}

func (s *Service) processAssignment(ctx context.Context, assignment *entities.Assignment, workerID int) (*entities.InsightJob, error) {
	job := entities.NewAssignmentJob(assignment.ID)
	err := s.runJob(ctx, job, workerID, func(ctx context.Context) error {
		batch, err := s.store.ListSamplesForAssignment(ctx, assignment.ID)
		if err != nil {
			return err
		}
		title, key := AssignmentHeatmap(assignment.ID)

		return s.pipeline(ctx, job, batch, title, key,
			func(summary string) (string, string) { return TeacherPrompt(assignment, summary) },
			func(ctx context.Context, insights string) error {
				return s.store.SaveAssignmentInsights(ctx, assignment.ID, insights)
			},
		)
	})
	return job, err
}

// pipeline is the shared body of both job types. Heatmap and insight
// failures are independent: both are attempted and reported together.
func (s *Service) pipeline(
	ctx context.Context,
	job *entities.InsightJob,
	batch entities.Batch,
	title, heatmapKey string,
	buildPrompt func(summary string) (system, prompt string),
	saveInsights func(ctx context.Context, insights string) error,
) error {
	if len(batch) == 0 {
		return entities.ErrNoFocusData
	}
	job.SampleCount = len(batch)
	log := s.jobLogger(job)

	var errs []error

	location, err := s.storeHeatmap(ctx, title, heatmapKey, batch)
	if err != nil {
		log.Error("❌ Failed to store heatmap", zap.String("key", heatmapKey), zap.Error(err))
		errs = append(errs, err)
	} else {
		job.SetHeatmapURL(location)
		log.Info("Heatmap stored", zap.String("location", location))
	}

	report, err := focus.SummarizeWith(batch, s.opts.Focus)
	if err != nil {
		if errors.Is(err, entities.ErrDegenerateInput) {
			log.Warn("Focus batch has no measurable duration", zap.Int("sample_count", len(batch)), zap.Error(err))
			if len(errs) == 0 {
				return err
			}
			return errors.Join(errs...)
		}
		return errors.Join(append(errs, err)...)
	}

	system, prompt := buildPrompt(report.SummaryText)
	insights, err := s.generate(ctx, system, prompt)
	if err != nil {
		log.Error("❌ Failed to generate insights", zap.String("backend", s.generator.Name()), zap.Error(err))
		return errors.Join(append(errs, err)...)
	}

	if err := saveInsights(ctx, insights); err != nil {
		return errors.Join(append(errs, err)...)
	}

	if err := s.store.SaveReport(ctx, entities.NewFocusReportRecord(job.ID, job.StudentID, job.AssignmentID, report)); err != nil {
		log.Warn("Failed to save report snapshot", zap.Error(err))
		errs = append(errs, err)
	}

	if s.publisher != nil {
		event := &entities.ReportEvent{
			JobID:        job.ID,
			JobType:      job.JobType,
			StudentID:    job.StudentID,
			AssignmentID: job.AssignmentID,
			Report:       *report,
			GeneratedAt:  time.Now().UTC(),
		}
		if job.HeatmapURL != nil {
			event.HeatmapURL = *job.HeatmapURL
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Warn("Failed to publish report event", zap.Error(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Service) storeHeatmap(ctx context.Context, title, key string, batch entities.Batch) (string, error) {
	doc, err := s.renderer.RenderBatch(title, batch)
	if err != nil {
		return "", err
	}

	var location string
	err = jobcontext.JobEnd(ctx, func(ctx context.Context) error {
		var putErr error
		location, putErr = s.sink.Put(ctx, key, heatmap.ContentType, doc)
		return putErr
	})
	return location, err
}

func (s *Service) generate(ctx context.Context, system, prompt string) (string, error) {
	var insights string
	err := jobcontext.JobEnd(ctx, func(ctx context.Context) error {
		out, err := s.generator.Generate(ctx, system, prompt)
		if err != nil {
			return err
		}
		insights = cleanInsights(out)
		if insights == "" {
			return apperrors.ErrAISummaryFailed(errors.New("empty response"))
		}
		return nil
	})
	return insights, err
}

// runJob claims the job's unit, runs body inside a job context and records
// the outcome. Only failures are returned; skips leave err nil.
func (s *Service) runJob(ctx context.Context, job *entities.InsightJob, workerID int, body func(context.Context) error) error {
	log := s.jobLogger(job)
	key := claimKey(job)

	claimed, err := s.claimer.Claim(ctx, key, s.opts.ClaimTTL)
	if err != nil {
		log.Error("❌ Failed to claim", zap.String("claim_key", key), zap.Error(err))
		job.MarkAsFailed(err.Error())
		s.saveJob(ctx, job)
		return err
	}
	if !claimed {
		log.Info("Skipping, already being processed", zap.String("claim_key", key))
		job.MarkAsSkipped(entities.ErrPairClaimed.Error())
		s.saveJob(ctx, job)
		return nil
	}
	defer func() {
		if err := s.claimer.Release(context.WithoutCancel(ctx), key); err != nil {
			log.Warn("Failed to release claim", zap.String("claim_key", key), zap.Error(err))
		}
	}()

	job.MarkAsRunning()
	s.saveJob(ctx, job)

	jobCtx, cancel := jobcontext.JobBegin(ctx, job.ID, string(job.JobType), workerID, jobcontext.Options{
		Timeout:    s.opts.JobTimeout,
		MaxRetries: s.opts.MaxRetries,
	})
	defer cancel()

	err = body(jobCtx)
	switch {
	case err == nil:
		job.MarkAsCompleted()
		log.Info("✅ Insights generated and stored", zap.Int("sample_count", job.SampleCount))
	case errors.Is(err, entities.ErrNoFocusData), errors.Is(err, entities.ErrDegenerateInput):
		job.MarkAsSkipped(err.Error())
		log.Info("Skipping, no usable focus data", zap.String("reason", err.Error()))
		err = nil
	default:
		job.MarkAsFailed(err.Error())
		log.Error("❌ Insight job failed", zap.Error(err))
	}

	s.saveJob(ctx, job)
	return err
}

// saveJob records the job for auditing; a failure here never changes the outcome
func (s *Service) saveJob(ctx context.Context, job *entities.InsightJob) {
	if err := s.store.SaveInsightJob(context.WithoutCancel(ctx), job); err != nil {
		s.jobLogger(job).Warn("Failed to save insight job", zap.String("status", string(job.Status)), zap.Error(err))
	}
}

func (s *Service) jobLogger(job *entities.InsightJob) *zap.Logger {
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.JobType)),
		zap.Int64("assignment_id", job.AssignmentID),
	}
	if job.StudentID != nil {
		fields = append(fields, zap.Int64("student_id", *job.StudentID))
	}
	return s.logger.With(fields...)
}

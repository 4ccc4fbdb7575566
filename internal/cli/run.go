package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/internal/usecase/insight"
)

// NewRunCmd creates the 'run' command, the batch insights job
func NewRunCmd() *cobra.Command {
	var (
		userID          int64
		studentsOnly    bool
		assignmentsOnly bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate heatmaps and insights for enrollments and assignments",
		Example: `  ifocus run
  ifocus run --user 42
  ifocus run --assignments-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID != 0 && assignmentsOnly {
				return apperrors.ErrInvalidArgument("--user cannot be combined with --assignments-only")
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.newInsightService(cmd.Context())
			if err != nil {
				return err
			}

			var summary *insight.RunSummary
			switch {
			case userID != 0:
				summary, err = svc.RunForUser(cmd.Context(), userID)
			case studentsOnly:
				summary, err = svc.RunAll(cmd.Context(), insight.ScopeStudents)
			case assignmentsOnly:
				summary, err = svc.RunAll(cmd.Context(), insight.ScopeAssignments)
			default:
				summary, err = svc.RunAll(cmd.Context(), insight.ScopeAll)
			}
			if summary != nil {
				printSummary(cmd, summary)
			}
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return apperrors.ErrInternal(fmt.Errorf("%d of %d insight jobs failed", summary.Failed, summary.Total()))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "Only process the enrollments of this user")
	cmd.Flags().BoolVar(&studentsOnly, "students-only", false, "Only process per-student enrollments")
	cmd.Flags().BoolVar(&assignmentsOnly, "assignments-only", false, "Only process assignment aggregates")
	cmd.MarkFlagsMutuallyExclusive("students-only", "assignments-only")

	return cmd
}

func printSummary(cmd *cobra.Command, summary *insight.RunSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed: %d\nSkipped:   %d\nFailed:    %d\n", summary.Processed, summary.Skipped, summary.Failed)
	for _, job := range summary.Failures {
		reason := ""
		if job.LastError != nil {
			reason = *job.LastError
		}
		if job.StudentID != nil {
			fmt.Fprintf(out, "  ✗ student %d, assignment %d: %s\n", *job.StudentID, job.AssignmentID, reason)
		} else {
			fmt.Fprintf(out, "  ✗ assignment %d: %s\n", job.AssignmentID, reason)
		}
	}
}

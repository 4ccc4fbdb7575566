package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/internal/domain/entities"
	domainrepo "github.com/johnquangdev/ifocus/internal/domain/repositories"
	"github.com/johnquangdev/ifocus/internal/usecase/focus"
)

// NewReportCmd creates the 'report' command
func NewReportCmd() *cobra.Command {
	var (
		studentID    int64
		assignmentID int64
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the focus report of a student, or of a whole assignment",
		Example: `  ifocus report --student 2 --assignment 10
  ifocus report --assignment 10 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.openStore()
			if err != nil {
				return err
			}

			batch, err := loadBatch(cmd.Context(), store, studentID, assignmentID)
			if err != nil {
				return err
			}

			report, err := focus.Summarize(batch)
			if err != nil {
				return apperrors.ErrDegenerateInput(err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), report.SummaryText)
			return err
		},
	}

	cmd.Flags().Int64Var(&studentID, "student", 0, "Student (user) ID; omit for the assignment aggregate")
	cmd.Flags().Int64Var(&assignmentID, "assignment", 0, "Assignment ID")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output the full report as JSON")
	_ = cmd.MarkFlagRequired("assignment")

	return cmd
}

// loadBatch reads the samples of a pair, or of the assignment when studentID is 0
func loadBatch(ctx context.Context, store domainrepo.FocusRepository, studentID, assignmentID int64) (entities.Batch, error) {
	var (
		batch entities.Batch
		err   error
		scope string
	)
	if studentID != 0 {
		scope = fmt.Sprintf("student %d on assignment %d", studentID, assignmentID)
		batch, err = store.ListSamplesForPair(ctx, studentID, assignmentID)
	} else {
		scope = fmt.Sprintf("assignment %d", assignmentID)
		batch, err = store.ListSamplesForAssignment(ctx, assignmentID)
	}
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list focus samples", err)
	}
	if len(batch) == 0 {
		return nil, apperrors.ErrNotFound("focus data for " + scope)
	}
	return batch, nil
}

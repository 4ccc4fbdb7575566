package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/ifocus/internal/infrastructure/heatmap"
	"github.com/johnquangdev/ifocus/internal/usecase/insight"
)

// NewHeatmapCmd creates the 'heatmap' command
func NewHeatmapCmd() *cobra.Command {
	var (
		studentID    int64
		assignmentID int64
	)

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Render and store one heatmap",
		Example: `  ifocus heatmap --assignment 10 --student 2
  ifocus heatmap --assignment 10`,
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
			sink, err := a.openSink(cmd.Context())
			if err != nil {
				return err
			}

			batch, err := loadBatch(cmd.Context(), store, studentID, assignmentID)
			if err != nil {
				return err
			}

			title, key := insight.AssignmentHeatmap(assignmentID)
			if studentID != 0 {
				title, key = insight.StudentHeatmap(studentID, assignmentID)
			}

			doc, err := a.renderer().RenderBatch(title, batch)
			if err != nil {
				return err
			}
			location, err := sink.Put(cmd.Context(), key, heatmap.ContentType, doc)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), location)
			return err
		},
	}

	cmd.Flags().Int64Var(&studentID, "student", 0, "Student (user) ID; omit for the assignment aggregate")
	cmd.Flags().Int64Var(&assignmentID, "assignment", 0, "Assignment ID")
	_ = cmd.MarkFlagRequired("assignment")

	return cmd
}

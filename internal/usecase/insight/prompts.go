package insight

import (
	"fmt"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

const teacherSystemPrompt = "You are an assistant that provides actionable feedback for teachers based on student focus behavior data."

// StudentPrompt builds the system instruction and prompt for one student's insights
func StudentPrompt(enrollment *entities.Enrollment, summary string) (system, prompt string) {
	student, title := enrollment.StudentName(), enrollment.AssignmentTitle()

	system = fmt.Sprintf(
		"You are an assistant that reviews a student's focus behavior for the assignment %q and student %s "+
			"and summarizes it into concise insights about the student's focus patterns. "+
			"Keep a personal tone, address the student directly and suggest how to improve "+
			"focus, concentration and study habits. "+
			"Sign off with: Best Regards, Your friendly iFocus Buddy",
		title, student,
	)
	text := fmt.Sprintf(
		"Please analyze %s's focus behavior for the assignment %q, summarized below, "+
			"and provide concise insights on their focus patterns.\n\n%s",
		student, title, summary,
	)
	prompt = "Summarize in rich text format in 200 words:\n\n" + text
	return system, prompt
}

// TeacherPrompt builds the system instruction and prompt for an assignment aggregate
func TeacherPrompt(assignment *entities.Assignment, summary string) (system, prompt string) {
	prompt = fmt.Sprintf(
		"Analyze the following summary of focus behavior for Assignment %q:\n\n%s\n\n"+
			"Based on this summary, provide actionable insights to help the teacher improve student engagement, "+
			"address potential distractions, and make the assignment more effective. Keep the insights concise and useful.",
		assignment.Title, summary,
	)
	return teacherSystemPrompt, prompt
}

// StudentHeatmap returns the title and storage key of a student's heatmap
func StudentHeatmap(studentID, assignmentID int64) (title, key string) {
	return fmt.Sprintf("Heatmap for Student %d - Assignment %d", studentID, assignmentID),
		fmt.Sprintf("heatmaps/heatmap_user_%d_assignment_%d.html", studentID, assignmentID)
}

// AssignmentHeatmap returns the title and storage key of an assignment's aggregate heatmap
func AssignmentHeatmap(assignmentID int64) (title, key string) {
	return fmt.Sprintf("Heatmap for Assignment %d", assignmentID),
		fmt.Sprintf("teacher_heatmaps/heatmap_assignment_%d.html", assignmentID)
}

// claimKey identifies the unit a job works on
func claimKey(job *entities.InsightJob) string {
	if job.StudentID == nil {
		return fmt.Sprintf("assignment:%d", job.AssignmentID)
	}
	return fmt.Sprintf("pair:%d:%d", *job.StudentID, job.AssignmentID)
}

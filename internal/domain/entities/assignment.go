package entities

import (
	"errors"
	"strings"
)

var (
	ErrAssignmentNoMaterial      = errors.New("an assignment must have either a PDF or a YouTube video")
	ErrAssignmentBothMaterials   = errors.New("an assignment cannot have both a PDF and a YouTube video")
	ErrEnrollmentGradeOutOfRange = errors.New("grade must be between 0 and 100")
)

// Student is the part of a user account the insight prompts need
type Student struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"type:varchar(80);uniqueIndex;not null"`
	Role     string `json:"role" gorm:"type:varchar(20);not null;default:'Student'"`
}

// TableName specifies the table name for GORM
func (Student) TableName() string {
	return "users"
}

// Assignment is a unit of work a teacher hands out, backed by a PDF or a video.
type Assignment struct {
	ID         int64   `json:"id" gorm:"primaryKey"`
	TeacherID  int64   `json:"teacher_id" gorm:"not null;index"`
	Title      string  `json:"title" gorm:"type:varchar(255);not null"`
	PDFPath    *string `json:"pdf_path,omitempty" gorm:"type:varchar(2000)"`
	YoutubeURL *string `json:"youtube_url,omitempty" gorm:"type:varchar(2000)"`
	Summary    *string `json:"summary,omitempty" gorm:"type:text"`
	Insights   *string `json:"insights,omitempty" gorm:"type:text"`
}

// TableName specifies the table name for GORM
func (Assignment) TableName() string {
	return "assignments"
}

// IsPDF reports whether the assignment is backed by a PDF
func (a *Assignment) IsPDF() bool {
	return a.PDFPath != nil && strings.TrimSpace(*a.PDFPath) != ""
}

// IsVideo reports whether the assignment is backed by a YouTube video
func (a *Assignment) IsVideo() bool {
	return a.YoutubeURL != nil && strings.TrimSpace(*a.YoutubeURL) != ""
}

// Validate checks that exactly one learning material is attached
func (a *Assignment) Validate() error {
	switch {
	case a.IsPDF() && a.IsVideo():
		return ErrAssignmentBothMaterials
	case !a.IsPDF() && !a.IsVideo():
		return ErrAssignmentNoMaterial
	}
	return nil
}

// Enrollment links a student to an assignment and carries the per-student insights.
type Enrollment struct {
	ID           int64    `json:"id" gorm:"primaryKey"`
	UserID       int64    `json:"user_id" gorm:"not null;index"`
	AssignmentID int64    `json:"assignment_id" gorm:"not null;index"`
	Grade        *float64 `json:"grade,omitempty"`
	Insights     *string  `json:"insights,omitempty" gorm:"type:text"`

	Student    *Student    `json:"student,omitempty" gorm:"foreignKey:UserID"`
	Assignment *Assignment `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
}

// TableName specifies the table name for GORM
func (Enrollment) TableName() string {
	return "enrollments"
}

// ValidateGrade checks the grade range when a grade is set
func (e *Enrollment) ValidateGrade() error {
	if e.Grade != nil && (*e.Grade < 0 || *e.Grade > 100) {
		return ErrEnrollmentGradeOutOfRange
	}
	return nil
}

// StudentName returns the username or a placeholder when the student is not loaded
func (e *Enrollment) StudentName() string {
	if e.Student == nil || e.Student.Username == "" {
		return "student"
	}
	return e.Student.Username
}

// AssignmentTitle returns the title or a placeholder when the assignment is not loaded
func (e *Enrollment) AssignmentTitle() string {
	if e.Assignment == nil || e.Assignment.Title == "" {
		return "assignment"
	}
	return e.Assignment.Title
}

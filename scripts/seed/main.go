// Command seed fills a development Postgres database with demo users,
// assignments, enrollments and synthetic focus samples, so that
// `ifocus run` has something to work on.
package main

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
	"github.com/johnquangdev/ifocus/internal/infrastructure/database"
	"github.com/johnquangdev/ifocus/pkg/config"
	"github.com/johnquangdev/ifocus/pkg/logger"
)

var demoUsernames = []string{"t1", "s1", "s2"}

const (
	samplesPerPair = 300
	sampleInterval = 500 * time.Millisecond
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed demo data in production")
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if _, err := database.Migrate(db, zl); err != nil {
		zl.Fatal("Failed to apply migrations", zap.Error(err))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		zl.Info("🗑️  Cleaning up existing demo data...")
		if err := cleanup(tx); err != nil {
			return err
		}
		return seed(tx, zl)
	})
	if err != nil {
		zl.Fatal("Failed to seed demo data", zap.Error(err))
	}

	zl.Info("✅ Demo data created")
	fmt.Println("Run `ifocus run` to generate heatmaps and insights.")
}

func cleanup(tx *gorm.DB) error {
	demoUsers := tx.Model(&entities.Student{}).Select("id").Where("username IN ?", demoUsernames)
	if err := tx.Where("user_id IN (?)", demoUsers).Delete(&entities.FocusSample{}).Error; err != nil {
		return err
	}
	if err := tx.Where("teacher_id IN (?)", demoUsers).Delete(&entities.Assignment{}).Error; err != nil {
		return err
	}
	return tx.Where("username IN ?", demoUsernames).Delete(&entities.Student{}).Error
}

func seed(tx *gorm.DB, zl *zap.Logger) error {
	teacher := &entities.Student{Username: "t1", Role: "Teacher"}
	students := []*entities.Student{
		{Username: "s1", Role: "Student"},
		{Username: "s2", Role: "Student"},
	}
	if err := tx.Create(teacher).Error; err != nil {
		return err
	}
	if err := tx.Create(&students).Error; err != nil {
		return err
	}

	pdf := "uploads/pdfs/AI.pdf"
	video := "https://www.youtube.com/watch?v=F7AK-WzpYdY"
	assignments := []*entities.Assignment{
		{TeacherID: teacher.ID, Title: "Assignment 1 PDF", PDFPath: &pdf},
		{TeacherID: teacher.ID, Title: "Assignment 2 Video", YoutubeURL: &video},
	}
	for _, a := range assignments {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("assignment %q: %w", a.Title, err)
		}
	}
	if err := tx.Create(&assignments).Error; err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(42, 7))
	start := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)

	for _, a := range assignments {
		for _, s := range students {
			if err := tx.Create(&entities.Enrollment{UserID: s.ID, AssignmentID: a.ID}).Error; err != nil {
				return err
			}
			samples := randomWalk(rng, s.ID, a.ID, start)
			if err := tx.CreateInBatches(&samples, 100).Error; err != nil {
				return err
			}
			zl.Info("Seeded focus samples",
				zap.String("student", s.Username),
				zap.String("assignment", a.Title),
				zap.Int("count", len(samples)),
			)
		}
	}
	return nil
}

// randomWalk produces gaze points that drift around the page and
// occasionally leave the screen
func randomWalk(rng *rand.Rand, studentID, assignmentID int64, start time.Time) []entities.FocusSample {
	samples := make([]entities.FocusSample, samplesPerPair)
	x, y := 0.3+rng.Float64()*0.4, 0.3+rng.Float64()*0.4

	for i := range samples {
		x = clamp(x + rng.NormFloat64()*0.04)
		y = clamp(y + rng.NormFloat64()*0.04)
		if rng.Float64() < 0.05 {
			x, y = rng.Float64(), rng.Float64()
		}
		samples[i] = entities.FocusSample{
			StudentID:    studentID,
			AssignmentID: assignmentID,
			X:            x,
			Y:            y,
			Outside:      rng.Float64() < 0.1,
			Timestamp:    start.Add(time.Duration(i) * sampleInterval),
		}
	}
	return samples
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

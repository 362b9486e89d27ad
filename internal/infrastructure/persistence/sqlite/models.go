package sqlite

import (
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
)

// Student and test ids are assigned by clients, so auto increment is off.

type studentModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Name  string `gorm:"not null"`
	Email string `gorm:"not null;uniqueIndex"`
}

func (studentModel) TableName() string { return "students" }

func (m studentModel) toDomain() *student.Student {
	return &student.Student{ID: m.ID, Name: m.Name, Email: m.Email}
}

type testModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement:false"`
	Name     string `gorm:"not null"`
	MaxScore int    `gorm:"not null"`
}

func (testModel) TableName() string { return "tests" }

func (m testModel) toDomain() *grading.Test {
	return &grading.Test{ID: m.ID, Name: m.Name, MaxScore: m.MaxScore}
}

// resultModel has no foreign key constraint on student_id: deleting a
// student keeps its results.
type resultModel struct {
	ID        int64 `gorm:"primaryKey"`
	StudentID int64 `gorm:"not null;index"`
	TestID    int64 `gorm:"not null;index"`
	Score     int   `gorm:"not null"`
}

func (resultModel) TableName() string { return "test_results" }

func (m resultModel) toDomain() grading.Result {
	return grading.Result{ID: m.ID, StudentID: m.StudentID, TestID: m.TestID, Score: m.Score}
}

// scoredRow is one row of the results-students join.
type scoredRow struct {
	ID        int64
	StudentID int64
	TestID    int64
	Score     int
	Name      string
	Email     string
}

func (r scoredRow) toDomain() grading.ScoredResult {
	return grading.ScoredResult{
		Result:  grading.Result{ID: r.ID, StudentID: r.StudentID, TestID: r.TestID, Score: r.Score},
		Student: student.Student{ID: r.StudentID, Name: r.Name, Email: r.Email},
	}
}

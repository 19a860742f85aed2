package database

import (
	"time"

	"github.com/google/uuid"
)

// Assignment represents a gradable assignment with a rubric
type Assignment struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RubricCategory represents one scoring category of an assignment rubric
type RubricCategory struct {
	ID           string    `json:"id" db:"id"`
	AssignmentID string    `json:"assignment_id" db:"assignment_id"`
	Header       string    `json:"header" db:"header"`
	MinPoints    float64   `json:"min_points" db:"min_points"`
	MaxPoints    float64   `json:"max_points" db:"max_points"`
	Position     int       `json:"position" db:"position"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Submission represents one student hand-in for an assignment
type Submission struct {
	ID           string    `json:"id" db:"id"`
	AssignmentID string    `json:"assignment_id" db:"assignment_id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	StudentName  string    `json:"student_name" db:"student_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Grade assigns points to one rubric category of a submission
type Grade struct {
	ID           string    `json:"id" db:"id"`
	SubmissionID string    `json:"submission_id" db:"submission_id"`
	CategoryID   string    `json:"category_id" db:"category_id"`
	Points       float64   `json:"points" db:"points"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// FileVersion stores one uploaded file of a submission
type FileVersion struct {
	ID           string    `json:"id" db:"id"`
	SubmissionID string    `json:"submission_id" db:"submission_id"`
	Name         string    `json:"name" db:"name"`
	Content      []byte    `json:"-" db:"content"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// FeedbackComment attaches reviewer feedback to a line of a file
type FeedbackComment struct {
	ID        string    `json:"id" db:"id"`
	FileID    string    `json:"file_id" db:"file_id"`
	Line      int       `json:"line" db:"line"`
	Author    string    `json:"author" db:"author"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewAssignment creates a new assignment with generated ID
func NewAssignment(name string) *Assignment {
	now := time.Now()
	return &Assignment{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewRubricCategory creates a new rubric category with generated ID
func NewRubricCategory(assignmentID, header string, minPoints, maxPoints float64, position int) *RubricCategory {
	return &RubricCategory{
		ID:           uuid.New().String(),
		AssignmentID: assignmentID,
		Header:       header,
		MinPoints:    minPoints,
		MaxPoints:    maxPoints,
		Position:     position,
		CreatedAt:    time.Now(),
	}
}

// NewSubmission creates a new submission with generated ID
func NewSubmission(assignmentID, studentID, studentName string) *Submission {
	return &Submission{
		ID:           uuid.New().String(),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		StudentName:  studentName,
		CreatedAt:    time.Now(),
	}
}

// NewGrade creates a new grade with generated ID
func NewGrade(submissionID, categoryID string, points float64) *Grade {
	return &Grade{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		CategoryID:   categoryID,
		Points:       points,
		CreatedAt:    time.Now(),
	}
}

// NewFileVersion creates a new file version with generated ID
func NewFileVersion(submissionID, name string, content []byte) *FileVersion {
	return &FileVersion{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		Name:         name,
		Content:      content,
		CreatedAt:    time.Now(),
	}
}

// NewFeedbackComment creates a new feedback comment with generated ID
func NewFeedbackComment(fileID string, line int, author, text string) *FeedbackComment {
	return &FeedbackComment{
		ID:        uuid.New().String(),
		FileID:    fileID,
		Line:      line,
		Author:    author,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/te5in/gradecore/internal/stats"
	"github.com/te5in/gradecore/internal/submission"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// PoolStats exposes the connection pool statistics for health reporting
func (r *Repository) PoolStats() map[string]interface{} {
	return r.db.GetPoolStats()
}

// CategorySpec describes one rubric category to be created
type CategorySpec struct {
	Header    string
	MinPoints float64
	MaxPoints float64
}

// CreateAssignment creates an assignment together with its rubric categories
func (r *Repository) CreateAssignment(name string, categories []CategorySpec) (*Assignment, []RubricCategory, error) {
	assignment := NewAssignment(name)

	tx, err := r.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO assignments (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, assignment.ID, assignment.Name, assignment.CreatedAt, assignment.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	created := make([]RubricCategory, 0, len(categories))
	for i, spec := range categories {
		category := NewRubricCategory(assignment.ID, spec.Header, spec.MinPoints, spec.MaxPoints, i)
		_, err = tx.Exec(`
			INSERT INTO rubric_categories (id, assignment_id, header, min_points, max_points, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, category.ID, category.AssignmentID, category.Header, category.MinPoints, category.MaxPoints, category.Position, category.CreatedAt)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create rubric category: %w", err)
		}
		created = append(created, *category)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return assignment, created, nil
}

// GetAssignment fetches an assignment by ID
func (r *Repository) GetAssignment(id string) (*Assignment, error) {
	var a Assignment
	err := r.db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM assignments WHERE id = ?
	`, id).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment: %w", err)
	}
	return &a, nil
}

// ListAssignments returns all assignments, newest first
func (r *Repository) ListAssignments() ([]Assignment, error) {
	rows, err := r.db.Query(`
		SELECT id, name, created_at, updated_at FROM assignments ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ListCategories returns the rubric categories of an assignment in rubric order
func (r *Repository) ListCategories(assignmentID string) ([]RubricCategory, error) {
	rows, err := r.db.Query(`
		SELECT id, assignment_id, header, min_points, max_points, position, created_at
		FROM rubric_categories WHERE assignment_id = ? ORDER BY position ASC
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rubric categories: %w", err)
	}
	defer rows.Close()

	var categories []RubricCategory
	for rows.Next() {
		var c RubricCategory
		if err := rows.Scan(&c.ID, &c.AssignmentID, &c.Header, &c.MinPoints, &c.MaxPoints, &c.Position, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rubric category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ReplaceRubric swaps the rubric of an assignment for a new category set.
// Grades for removed categories are dropped through the foreign key cascade.
func (r *Repository) ReplaceRubric(assignmentID string, categories []CategorySpec) ([]RubricCategory, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rubric_categories WHERE assignment_id = ?`, assignmentID); err != nil {
		return nil, fmt.Errorf("failed to clear rubric: %w", err)
	}

	created := make([]RubricCategory, 0, len(categories))
	for i, spec := range categories {
		category := NewRubricCategory(assignmentID, spec.Header, spec.MinPoints, spec.MaxPoints, i)
		_, err = tx.Exec(`
			INSERT INTO rubric_categories (id, assignment_id, header, min_points, max_points, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, category.ID, category.AssignmentID, category.Header, category.MinPoints, category.MaxPoints, category.Position, category.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create rubric category: %w", err)
		}
		created = append(created, *category)
	}

	if _, err := tx.Exec(`UPDATE assignments SET updated_at = ? WHERE id = ?`, time.Now(), assignmentID); err != nil {
		return nil, fmt.Errorf("failed to touch assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

// GradeSpec assigns points to one rubric category
type GradeSpec struct {
	CategoryID string
	Points     float64
}

// CreateSubmission records a submission together with its initial grades
func (r *Repository) CreateSubmission(assignmentID, studentID, studentName string, grades []GradeSpec) (*Submission, error) {
	sub := NewSubmission(assignmentID, studentID, studentName)

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO submissions (id, assignment_id, student_id, student_name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sub.ID, sub.AssignmentID, sub.StudentID, sub.StudentName, sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	for _, spec := range grades {
		grade := NewGrade(sub.ID, spec.CategoryID, spec.Points)
		_, err = tx.Exec(`
			INSERT INTO grades (id, submission_id, category_id, points, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, grade.ID, grade.SubmissionID, grade.CategoryID, grade.Points, grade.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create grade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return sub, nil
}

// UpsertGrade sets or replaces the points of one category of a submission
func (r *Repository) UpsertGrade(submissionID, categoryID string, points float64) error {
	stmt, err := r.db.GetPreparedStatement("insert_grade")
	if err != nil {
		return err
	}
	grade := NewGrade(submissionID, categoryID, points)
	if _, err := stmt.Exec(grade.ID, grade.SubmissionID, grade.CategoryID, grade.Points, grade.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert grade: %w", err)
	}
	return nil
}

// ListSubmissions returns the submissions of an assignment as listing
// entries. A submission with no grades yet carries a nil grade.
func (r *Repository) ListSubmissions(assignmentID string) ([]submission.Entry, error) {
	stmt, err := r.db.GetPreparedStatement("list_submissions")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var entries []submission.Entry
	for rows.Next() {
		var e submission.Entry
		var total sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.StudentID, &e.StudentName, &e.CreatedAt, &total); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if total.Valid {
			v := total.Float64
			e.Grade = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GradeMatrix assembles the per-submission grade matrix of an assignment.
// Rows follow submission creation order, columns follow rubric order, and
// ungraded cells come back as missing samples.
func (r *Repository) GradeMatrix(assignmentID string) ([]RubricCategory, [][]stats.Sample, error) {
	categories, err := r.ListCategories(assignmentID)
	if err != nil {
		return nil, nil, err
	}

	columnIndex := make(map[string]int, len(categories))
	for i, c := range categories {
		columnIndex[c.ID] = i
	}

	rows, err := r.db.Query(`
		SELECT id FROM submissions WHERE assignment_id = ? ORDER BY created_at ASC
	`, assignmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissionIDs []string
	rowIndex := make(map[string]int)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, nil, fmt.Errorf("failed to scan submission id: %w", err)
		}
		rowIndex[id] = len(submissionIDs)
		submissionIDs = append(submissionIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	matrix := make([][]stats.Sample, len(submissionIDs))
	for i := range matrix {
		matrix[i] = make([]stats.Sample, len(categories))
	}

	gradeRows, err := r.db.Query(`
		SELECT g.submission_id, g.category_id, g.points
		FROM grades g
		JOIN submissions s ON s.id = g.submission_id
		WHERE s.assignment_id = ?
	`, assignmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query grades: %w", err)
	}
	defer gradeRows.Close()

	for gradeRows.Next() {
		var submissionID, categoryID string
		var points float64
		if err := gradeRows.Scan(&submissionID, &categoryID, &points); err != nil {
			return nil, nil, fmt.Errorf("failed to scan grade: %w", err)
		}
		row, okRow := rowIndex[submissionID]
		col, okCol := columnIndex[categoryID]
		if okRow && okCol {
			matrix[row][col] = stats.F(points)
		}
	}

	return categories, matrix, gradeRows.Err()
}

// SaveFile stores one file version under a submission
func (r *Repository) SaveFile(submissionID, name string, content []byte) (*FileVersion, error) {
	file := NewFileVersion(submissionID, name, content)

	stmt, err := r.db.GetPreparedStatement("insert_file")
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Exec(file.ID, file.SubmissionID, file.Name, file.Content, file.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return file, nil
}

// GetFile fetches one file version by ID
func (r *Repository) GetFile(id string) (*FileVersion, error) {
	stmt, err := r.db.GetPreparedStatement("get_file")
	if err != nil {
		return nil, err
	}

	var f FileVersion
	err = stmt.QueryRow(id).Scan(&f.ID, &f.SubmissionID, &f.Name, &f.Content, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file: %w", err)
	}
	return &f, nil
}

// ListFiles returns the file versions of a submission, oldest first
func (r *Repository) ListFiles(submissionID string) ([]FileVersion, error) {
	rows, err := r.db.Query(`
		SELECT id, submission_id, name, created_at
		FROM files WHERE submission_id = ? ORDER BY created_at ASC
	`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []FileVersion
	for rows.Next() {
		var f FileVersion
		if err := rows.Scan(&f.ID, &f.SubmissionID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// AddFeedback attaches a feedback comment to a line of a file
func (r *Repository) AddFeedback(fileID string, line int, author, text string) (*FeedbackComment, error) {
	comment := NewFeedbackComment(fileID, line, author, text)

	stmt, err := r.db.GetPreparedStatement("insert_feedback")
	if err != nil {
		return nil, err
	}
	if _, err := stmt.Exec(comment.ID, comment.FileID, comment.Line, comment.Author, comment.Text, comment.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to add feedback: %w", err)
	}

	return comment, nil
}

// ListFeedback returns the feedback comments of a file in line order
func (r *Repository) ListFeedback(fileID string) ([]FeedbackComment, error) {
	rows, err := r.db.Query(`
		SELECT id, file_id, line, author, text, created_at
		FROM feedback_comments WHERE file_id = ? ORDER BY line ASC, created_at ASC
	`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var comments []FeedbackComment
	for rows.Next() {
		var c FeedbackComment
		if err := rows.Scan(&c.ID, &c.FileID, &c.Line, &c.Author, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// FeedbackOverviewItem is one feedback comment joined with its file and
// submission context for the per-assignment overview.
type FeedbackOverviewItem struct {
	Comment      FeedbackComment `json:"comment"`
	FileID       string          `json:"file_id"`
	FileName     string          `json:"file_name"`
	SubmissionID string          `json:"submission_id"`
	StudentName  string          `json:"student_name"`
}

// ListFeedbackByAssignment returns every feedback comment of an assignment
// grouped by file and line for the overview view.
func (r *Repository) ListFeedbackByAssignment(assignmentID string) ([]FeedbackOverviewItem, error) {
	rows, err := r.db.Query(`
		SELECT fc.id, fc.file_id, fc.line, fc.author, fc.text, fc.created_at,
			f.name, s.id, s.student_name
		FROM feedback_comments fc
		JOIN files f ON f.id = fc.file_id
		JOIN submissions s ON s.id = f.submission_id
		WHERE s.assignment_id = ?
		ORDER BY s.student_name ASC, f.name ASC, fc.line ASC, fc.created_at ASC
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback overview: %w", err)
	}
	defer rows.Close()

	var items []FeedbackOverviewItem
	for rows.Next() {
		var item FeedbackOverviewItem
		if err := rows.Scan(
			&item.Comment.ID, &item.Comment.FileID, &item.Comment.Line,
			&item.Comment.Author, &item.Comment.Text, &item.Comment.CreatedAt,
			&item.FileName, &item.SubmissionID, &item.StudentName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback overview: %w", err)
		}
		item.FileID = item.Comment.FileID
		items = append(items, item)
	}
	return items, rows.Err()
}

// Package types defines the request and response shapes shared by the
// HTTP handlers.
package types

// CreateAssignmentRequest is the payload for creating an assignment
// together with its rubric categories.
type CreateAssignmentRequest struct {
	Name       string                  `json:"name" binding:"required,min=1,max=200"`
	Categories []RubricCategoryRequest `json:"categories" binding:"required,min=1,dive"`
}

// RubricCategoryRequest describes one rubric category of an assignment.
type RubricCategoryRequest struct {
	Header    string  `json:"header" binding:"required,min=1,max=200"`
	MinPoints float64 `json:"min_points"`
	MaxPoints float64 `json:"max_points" binding:"required"`
}

// UpdateRubricRequest replaces the rubric of an assignment. Grades for
// removed categories are dropped.
type UpdateRubricRequest struct {
	Categories []RubricCategoryRequest `json:"categories" binding:"required,min=1,dive"`
}

// CreateSubmissionRequest records one student submission with optional
// per-category grades. Missing categories are treated as not yet graded.
type CreateSubmissionRequest struct {
	StudentID   string         `json:"student_id" binding:"required,min=1,max=100"`
	StudentName string         `json:"student_name" binding:"required,min=1,max=200"`
	Grades      []GradeRequest `json:"grades" binding:"dive"`
}

// GradeRequest assigns points to one rubric category.
type GradeRequest struct {
	CategoryID string  `json:"category_id" binding:"required"`
	Points     float64 `json:"points"`
}

// UploadFileRequest stores a file version under the submission named in
// the request path.
type UploadFileRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=300"`
	Content string `json:"content" binding:"required"`
}

// CompareRequest asks for a standalone diff of two text bodies. Context
// is a pointer so an explicit zero is distinct from unset.
type CompareRequest struct {
	Base    string `json:"base"`
	Revised string `json:"revised"`
	Context *int   `json:"context" binding:"omitempty,min=0,max=100"`
}

// FeedbackRequest attaches a feedback comment to a line of a file.
type FeedbackRequest struct {
	FileID string `json:"file_id" binding:"required"`
	Line   int    `json:"line" binding:"min=0"`
	Author string `json:"author" binding:"required,min=1,max=200"`
	Text   string `json:"text" binding:"required,min=1,max=10000"`
}

// DiffResponse is the wire form of a computed diff.
type DiffResponse struct {
	Lines      []DiffLineResponse   `json:"lines"`
	Regions    []DiffRegionResponse `json:"regions"`
	Similarity float64              `json:"similarity"`
	Context    int                  `json:"context"`
}

// DiffLineResponse is one classified line of a diff.
type DiffLineResponse struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// DiffRegionResponse is a half-open changed region with context.
type DiffRegionResponse struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CategoryStatsResponse carries the item analysis of one rubric category.
type CategoryStatsResponse struct {
	CategoryID string    `json:"category_id"`
	Header     string    `json:"header"`
	Mean       *float64  `json:"mean"`
	Stdev      *float64  `json:"stdev"`
	Median     *float64  `json:"median"`
	Mode       []float64 `json:"mode"`
	RIT        *float64  `json:"rit"`
	RIR        *float64  `json:"rir"`
	MeanPct    *float64  `json:"mean_pct"`
	Count      int       `json:"count"`
}

// RubricStatsResponse is the full statistics payload of an assignment.
type RubricStatsResponse struct {
	AssignmentID string                  `json:"assignment_id"`
	Submissions  int                     `json:"submissions"`
	Categories   []CategoryStatsResponse `json:"categories"`
}

// Package analytics orchestrates the grading analytics: it pulls grade
// matrices and files out of the repository and runs the statistics and
// diff engines over them.
package analytics

import (
	"time"

	"github.com/te5in/gradecore/internal/database"
	"github.com/te5in/gradecore/internal/diffview"
	"github.com/te5in/gradecore/internal/errors"
	"github.com/te5in/gradecore/internal/monitoring"
	"github.com/te5in/gradecore/internal/rubric"
	"github.com/te5in/gradecore/internal/submission"
	"github.com/te5in/gradecore/internal/types"
)

// Service handles analytics operations
type Service struct {
	repo    *database.Repository
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

// NewService creates a new analytics service
func NewService(repo *database.Repository, logger *monitoring.Logger, metrics *monitoring.Metrics) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

// RubricStats computes the item analysis of an assignment rubric from the
// full grade matrix.
func (s *Service) RubricStats(assignmentID string) (*types.RubricStatsResponse, error) {
	start := time.Now()

	assignment, err := s.repo.GetAssignment(assignmentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load assignment", err)
	}
	if assignment == nil {
		return nil, errors.NewNotFoundError("assignment", assignmentID)
	}

	dbCategories, matrix, err := s.repo.GradeMatrix(assignmentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load grade matrix", err)
	}

	categories := make([]rubric.Category, len(dbCategories))
	for i, c := range dbCategories {
		categories[i] = rubric.Category{
			ID:        c.ID,
			Header:    c.Header,
			MinPoints: c.MinPoints,
			MaxPoints: c.MaxPoints,
		}
	}

	analysis, err := rubric.ItemAnalysis(categories, matrix)
	if err != nil {
		return nil, errors.NewInternalError("failed to analyze rubric", err)
	}

	resp := &types.RubricStatsResponse{
		AssignmentID: assignmentID,
		Submissions:  len(matrix),
		Categories:   make([]types.CategoryStatsResponse, len(analysis)),
	}
	for i, cs := range analysis {
		resp.Categories[i] = types.CategoryStatsResponse{
			CategoryID: cs.Category.ID,
			Header:     cs.Category.Header,
			Mean:       cs.Summary.Mean,
			Stdev:      cs.Summary.Stdev,
			Median:     cs.Summary.Median,
			Mode:       cs.Summary.Mode,
			RIT:        cs.RIT,
			RIR:        cs.RIR,
			MeanPct:    cs.MeanPct,
			Count:      cs.Summary.Count,
		}
	}

	s.metrics.IncrementStatsRun()
	s.logger.StatsLogger(assignmentID, len(matrix), len(categories), time.Since(start), false)

	return resp, nil
}

// ListSubmissions returns the filtered, sorted submission listing of an
// assignment.
func (s *Service) ListSubmissions(assignmentID string, opts submission.ListOptions) ([]submission.Entry, error) {
	assignment, err := s.repo.GetAssignment(assignmentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load assignment", err)
	}
	if assignment == nil {
		return nil, errors.NewNotFoundError("assignment", assignmentID)
	}

	entries, err := s.repo.ListSubmissions(assignmentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to list submissions", err)
	}

	return submission.List(entries, opts), nil
}

// DiffFiles diffs two stored file versions and returns the classified
// lines with their changed regions.
func (s *Service) DiffFiles(fileID, otherID string, contextSize int) (*types.DiffResponse, error) {
	base, err := s.loadText(fileID)
	if err != nil {
		return nil, err
	}
	revised, err := s.loadText(otherID)
	if err != nil {
		return nil, err
	}

	return s.buildDiff(base, revised, contextSize), nil
}

// CompareTexts diffs two raw text bodies for the standalone plagiarism
// comparison endpoint.
func (s *Service) CompareTexts(base, revised string, contextSize int) *types.DiffResponse {
	return s.buildDiff(base, revised, contextSize)
}

// FeedbackOverview returns every feedback comment of an assignment with
// its file and student context.
func (s *Service) FeedbackOverview(assignmentID string) ([]database.FeedbackOverviewItem, error) {
	assignment, err := s.repo.GetAssignment(assignmentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load assignment", err)
	}
	if assignment == nil {
		return nil, errors.NewNotFoundError("assignment", assignmentID)
	}

	items, err := s.repo.ListFeedbackByAssignment(assignmentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load feedback", err)
	}
	return items, nil
}

func (s *Service) loadText(fileID string) (string, error) {
	file, err := s.repo.GetFile(fileID)
	if err != nil {
		return "", errors.NewInternalError("failed to load file", err)
	}
	if file == nil {
		return "", errors.NewNotFoundError("file", fileID)
	}

	text, err := diffview.Decode(file.Content)
	if err != nil {
		return "", errors.NewUnprocessableError("file is not decodable text", err)
	}
	return text, nil
}

func (s *Service) buildDiff(base, revised string, contextSize int) *types.DiffResponse {
	start := time.Now()

	lines := diffview.VisualizeWhitespace(diffview.Lines(base, revised))
	regions := diffview.ChangedRegions(lines, contextSize)
	similarity := diffview.Similarity(base, revised)

	resp := &types.DiffResponse{
		Lines:      make([]types.DiffLineResponse, len(lines)),
		Regions:    make([]types.DiffRegionResponse, len(regions)),
		Similarity: similarity,
		Context:    contextSize,
	}
	for i, line := range lines {
		resp.Lines[i] = types.DiffLineResponse{Text: line.Text, Kind: line.Kind.String()}
	}
	for i, region := range regions {
		resp.Regions[i] = types.DiffRegionResponse{Start: region.Start, End: region.End}
	}

	s.metrics.IncrementDiffRun()
	s.logger.DiffLogger(len(lines), len(regions), similarity, time.Since(start))

	return resp
}

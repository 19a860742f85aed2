package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/te5in/gradecore/internal/analytics"
	"github.com/te5in/gradecore/internal/cache"
	"github.com/te5in/gradecore/internal/config"
	"github.com/te5in/gradecore/internal/database"
	"github.com/te5in/gradecore/internal/errors"
	"github.com/te5in/gradecore/internal/monitoring"
	"github.com/te5in/gradecore/internal/submission"
	"github.com/te5in/gradecore/internal/types"
)

// Server bundles the services the HTTP handlers need
type Server struct {
	cfg     *config.Config
	repo    *database.Repository
	svc     *analytics.Service
	cache   *cache.Cache
	metrics *monitoring.Metrics
	logger  *monitoring.Logger
}

func newServer(cfg *config.Config, repo *database.Repository, svc *analytics.Service, appCache *cache.Cache, metrics *monitoring.Metrics, logger *monitoring.Logger) *Server {
	return &Server{
		cfg:     cfg,
		repo:    repo,
		svc:     svc,
		cache:   appCache,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)
	r.GET("/cache/stats", s.handleCacheStats)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/assignments", s.handleCreateAssignment)
		v1.GET("/assignments", s.handleListAssignments)
		v1.GET("/assignments/:id", s.handleGetAssignment)
		v1.PUT("/assignments/:id/rubric", s.handleUpdateRubric)
		v1.GET("/assignments/:id/rubric/stats", s.handleRubricStats)
		v1.POST("/assignments/:id/submissions", s.handleCreateSubmission)
		v1.GET("/assignments/:id/submissions", s.handleListSubmissions)
		v1.GET("/assignments/:id/feedback", s.handleFeedbackOverview)
		v1.POST("/submissions/:id/files", s.handleUploadFile)
		v1.GET("/files/:id", s.handleGetFile)
		v1.GET("/files/:id/diff/:otherID", s.handleDiffFiles)
		v1.POST("/compare", s.handleCompare)
		v1.POST("/feedback", s.handleAddFeedback)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"metrics":   s.metrics.GetStats(),
		"database":  s.repo.PoolStats(),
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.GetStats())
}

func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Stats())
}

func (s *Server) handleCreateAssignment(c *gin.Context) {
	var req types.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("invalid assignment payload", err.Error()))
		return
	}

	specs := make([]database.CategorySpec, len(req.Categories))
	for i, cat := range req.Categories {
		if cat.MaxPoints <= cat.MinPoints {
			c.Error(errors.NewValidationError("max_points must exceed min_points", cat.Header))
			return
		}
		specs[i] = database.CategorySpec{
			Header:    cat.Header,
			MinPoints: cat.MinPoints,
			MaxPoints: cat.MaxPoints,
		}
	}

	assignment, categories, err := s.repo.CreateAssignment(req.Name, specs)
	if err != nil {
		c.Error(errors.NewInternalError("failed to create assignment", err))
		return
	}

	// Covers the listing tag as well as every per-assignment view.
	s.cache.InvalidatePrefix("/api/v1/assignments")

	c.JSON(http.StatusCreated, gin.H{
		"assignment": assignment,
		"categories": categories,
	})
}

func (s *Server) handleListAssignments(c *gin.Context) {
	assignments, err := s.repo.ListAssignments()
	if err != nil {
		c.Error(errors.NewInternalError("failed to list assignments", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (s *Server) handleGetAssignment(c *gin.Context) {
	id := c.Param("id")

	assignment, err := s.repo.GetAssignment(id)
	if err != nil {
		c.Error(errors.NewInternalError("failed to load assignment", err))
		return
	}
	if assignment == nil {
		c.Error(errors.NewNotFoundError("assignment", id))
		return
	}

	categories, err := s.repo.ListCategories(id)
	if err != nil {
		c.Error(errors.NewInternalError("failed to load rubric", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignment": assignment,
		"categories": categories,
	})
}

func (s *Server) handleUpdateRubric(c *gin.Context) {
	id := c.Param("id")

	assignment, err := s.repo.GetAssignment(id)
	if err != nil {
		c.Error(errors.NewInternalError("failed to load assignment", err))
		return
	}
	if assignment == nil {
		c.Error(errors.NewNotFoundError("assignment", id))
		return
	}

	var req types.UpdateRubricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("invalid rubric payload", err.Error()))
		return
	}

	specs := make([]database.CategorySpec, len(req.Categories))
	for i, cat := range req.Categories {
		if cat.MaxPoints <= cat.MinPoints {
			c.Error(errors.NewValidationError("max_points must exceed min_points", cat.Header))
			return
		}
		specs[i] = database.CategorySpec{
			Header:    cat.Header,
			MinPoints: cat.MinPoints,
			MaxPoints: cat.MaxPoints,
		}
	}

	categories, err := s.repo.ReplaceRubric(id, specs)
	if err != nil {
		c.Error(errors.NewInternalError("failed to replace rubric", err))
		return
	}

	s.cache.InvalidatePrefix("/api/v1/assignments/" + id)

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) handleRubricStats(c *gin.Context) {
	resp, err := s.svc.RubricStats(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateSubmission(c *gin.Context) {
	id := c.Param("id")

	assignment, err := s.repo.GetAssignment(id)
	if err != nil {
		c.Error(errors.NewInternalError("failed to load assignment", err))
		return
	}
	if assignment == nil {
		c.Error(errors.NewNotFoundError("assignment", id))
		return
	}

	var req types.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("invalid submission payload", err.Error()))
		return
	}

	grades := make([]database.GradeSpec, len(req.Grades))
	for i, g := range req.Grades {
		grades[i] = database.GradeSpec{CategoryID: g.CategoryID, Points: g.Points}
	}

	sub, err := s.repo.CreateSubmission(id, req.StudentID, req.StudentName, grades)
	if err != nil {
		c.Error(errors.NewInternalError("failed to create submission", err))
		return
	}

	s.cache.InvalidatePrefix("/api/v1/assignments/" + id)

	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

func (s *Server) handleListSubmissions(c *gin.Context) {
	opts := submission.ListOptions{
		Query:      c.Query("q"),
		LatestOnly: c.Query("latest_only") == "true",
		SortBy:     submission.SortKey(c.DefaultQuery("sort_by", string(submission.SortByCreated))),
		Ascending:  c.Query("asc") == "true",
	}

	switch opts.SortBy {
	case submission.SortByName, submission.SortByGrade, submission.SortByCreated:
	default:
		c.Error(errors.NewValidationError("unknown sort key", string(opts.SortBy)))
		return
	}

	entries, err := s.svc.ListSubmissions(c.Param("id"), opts)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": entries,
		"total":       len(entries),
	})
}

func (s *Server) handleFeedbackOverview(c *gin.Context) {
	items, err := s.svc.FeedbackOverview(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	countsByFile := make(map[string]int, len(items))
	for _, item := range items {
		countsByFile[item.FileID]++
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback":       items,
		"counts_by_file": countsByFile,
		"total":          len(items),
	})
}

func (s *Server) handleUploadFile(c *gin.Context) {
	submissionID := c.Param("id")

	var req types.UploadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("invalid file payload", err.Error()))
		return
	}

	file, err := s.repo.SaveFile(submissionID, req.Name, []byte(req.Content))
	if err != nil {
		c.Error(errors.NewInternalError("failed to save file", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": file})
}

func (s *Server) handleGetFile(c *gin.Context) {
	id := c.Param("id")

	file, err := s.repo.GetFile(id)
	if err != nil {
		c.Error(errors.NewInternalError("failed to load file", err))
		return
	}
	if file == nil {
		c.Error(errors.NewNotFoundError("file", id))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":    file,
		"content": string(file.Content),
	})
}

func (s *Server) handleDiffFiles(c *gin.Context) {
	contextSize := s.cfg.Diff.DefaultContext
	if raw := c.Query("context"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.Error(errors.NewValidationError("context must be a non-negative integer", raw))
			return
		}
		contextSize = parsed
	}

	resp, err := s.svc.DiffFiles(c.Param("id"), c.Param("otherID"), contextSize)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCompare(c *gin.Context) {
	var req types.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("invalid compare payload", err.Error()))
		return
	}

	contextSize := s.cfg.Diff.DefaultContext
	if req.Context != nil {
		contextSize = *req.Context
	}

	c.JSON(http.StatusOK, s.svc.CompareTexts(req.Base, req.Revised, contextSize))
}

func (s *Server) handleAddFeedback(c *gin.Context) {
	var req types.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("invalid feedback payload", err.Error()))
		return
	}

	file, err := s.repo.GetFile(req.FileID)
	if err != nil {
		c.Error(errors.NewInternalError("failed to load file", err))
		return
	}
	if file == nil {
		c.Error(errors.NewNotFoundError("file", req.FileID))
		return
	}

	comment, err := s.repo.AddFeedback(req.FileID, req.Line, req.Author, req.Text)
	if err != nil {
		c.Error(errors.NewInternalError("failed to add feedback", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/te5in/gradecore/internal/analytics"
	"github.com/te5in/gradecore/internal/cache"
	"github.com/te5in/gradecore/internal/config"
	"github.com/te5in/gradecore/internal/database"
	"github.com/te5in/gradecore/internal/errors"
	"github.com/te5in/gradecore/internal/monitoring"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	metrics := monitoring.NewMetrics()
	logger := monitoring.NewLogger()
	svc := analytics.NewService(repo, logger, metrics)
	appCache := cache.NewCache(time.Minute)

	cfg := config.Load()

	r := gin.New()
	r.Use(errors.ErrorHandler())
	r.Use(appCache.Middleware(metrics, "/api/v1/assignments"))

	server := newServer(cfg, repo, svc, appCache, metrics, logger)
	server.registerRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTestAssignment(t *testing.T, r *gin.Engine) (assignmentID string, categoryIDs []string) {
	t.Helper()

	w := doJSON(t, r, "POST", "/api/v1/assignments", gin.H{
		"name": "Lab 1",
		"categories": []gin.H{
			{"header": "Correctness", "min_points": 0, "max_points": 10},
			{"header": "Style", "min_points": 0, "max_points": 5},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Assignment struct {
			ID string `json:"id"`
		} `json:"assignment"`
		Categories []struct {
			ID string `json:"id"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	ids := make([]string, len(resp.Categories))
	for i, c := range resp.Categories {
		ids[i] = c.ID
	}
	return resp.Assignment.ID, ids
}

func TestHealthEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAssignmentLifecycle(t *testing.T) {
	r := setupTestRouter(t)

	assignmentID, _ := createTestAssignment(t, r)

	w := doJSON(t, r, "GET", "/api/v1/assignments/"+assignmentID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Correctness")

	w = doJSON(t, r, "GET", "/api/v1/assignments/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAssignmentValidation(t *testing.T) {
	r := setupTestRouter(t)

	tests := []struct {
		name    string
		payload gin.H
	}{
		{
			name:    "missing name",
			payload: gin.H{"categories": []gin.H{{"header": "A", "max_points": 5}}},
		},
		{
			name:    "no categories",
			payload: gin.H{"name": "Lab", "categories": []gin.H{}},
		},
		{
			name: "inverted point bounds",
			payload: gin.H{"name": "Lab", "categories": []gin.H{
				{"header": "A", "min_points": 10, "max_points": 5},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, "POST", "/api/v1/assignments", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSubmissionListingAndStats(t *testing.T) {
	r := setupTestRouter(t)
	assignmentID, categoryIDs := createTestAssignment(t, r)

	students := []struct {
		id, name string
		points   []float64
	}{
		{"s1", "Ada", []float64{2, 1}},
		{"s2", "Grace", []float64{4, 2}},
		{"s3", "Edsger", []float64{6, 3}},
		{"s4", "Barbara", []float64{8, 4}},
	}
	for _, st := range students {
		w := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/assignments/%s/submissions", assignmentID), gin.H{
			"student_id":   st.id,
			"student_name": st.name,
			"grades": []gin.H{
				{"category_id": categoryIDs[0], "points": st.points[0]},
				{"category_id": categoryIDs[1], "points": st.points[1]},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(t, r, "GET", fmt.Sprintf("/api/v1/assignments/%s/submissions?sort_by=grade", assignmentID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Submissions []struct {
			StudentName string   `json:"student_name"`
			Grade       *float64 `json:"grade"`
		} `json:"submissions"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Equal(t, 4, listing.Total)
	assert.Equal(t, "Barbara", listing.Submissions[0].StudentName, "highest total first")

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/assignments/%s/submissions?q=gra", assignmentID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Total)
	assert.Equal(t, "Grace", listing.Submissions[0].StudentName)

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/assignments/%s/submissions?sort_by=bogus", assignmentID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/assignments/%s/rubric/stats", assignmentID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Submissions int `json:"submissions"`
		Categories  []struct {
			Header string   `json:"header"`
			Mean   *float64 `json:"mean"`
			RIT    *float64 `json:"rit"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Submissions)
	require.Len(t, stats.Categories, 2)
	require.NotNil(t, stats.Categories[0].Mean)
	assert.InDelta(t, 5.0, *stats.Categories[0].Mean, 1e-9)
	require.NotNil(t, stats.Categories[0].RIT)
	assert.InDelta(t, 1.0, *stats.Categories[0].RIT, 1e-9)
}

func TestStatsCacheInvalidatedOnSubmission(t *testing.T) {
	r := setupTestRouter(t)
	assignmentID, categoryIDs := createTestAssignment(t, r)

	statsPath := fmt.Sprintf("/api/v1/assignments/%s/rubric/stats", assignmentID)

	w := doJSON(t, r, "GET", statsPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"submissions":0`)

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/assignments/%s/submissions", assignmentID), gin.H{
		"student_id":   "s1",
		"student_name": "Ada",
		"grades":       []gin.H{{"category_id": categoryIDs[0], "points": 7}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "GET", statsPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"submissions":1`, "stale cached stats must not serve")
}

func TestFileDiffEndpoint(t *testing.T) {
	r := setupTestRouter(t)
	assignmentID, _ := createTestAssignment(t, r)

	w := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/assignments/%s/submissions", assignmentID), gin.H{
		"student_id":   "s1",
		"student_name": "Ada",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Submission struct {
			ID string `json:"id"`
		} `json:"submission"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	upload := func(name, content string) string {
		w := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/submissions/%s/files", created.Submission.ID), gin.H{
			"name":    name,
			"content": content,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			File struct {
				ID string `json:"id"`
			} `json:"file"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.File.ID
	}

	baseID := upload("v1.txt", "a\nb\nc")
	revisedID := upload("v2.txt", "a\nx\nc")

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/files/%s/diff/%s?context=1", baseID, revisedID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var diff struct {
		Lines []struct {
			Kind string `json:"kind"`
		} `json:"lines"`
		Regions    []struct{ Start, End int } `json:"regions"`
		Similarity float64                    `json:"similarity"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &diff))
	require.Len(t, diff.Lines, 4)
	assert.Equal(t, "removed", diff.Lines[1].Kind)
	assert.Equal(t, "added", diff.Lines[2].Kind)
	require.Len(t, diff.Regions, 1)

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/files/%s/diff/%s?context=-1", baseID, revisedID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/files/%s/diff/missing", baseID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignmentListInvalidatedOnCreate(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, "GET", "/api/v1/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Lab 1")

	createTestAssignment(t, r)

	w = doJSON(t, r, "GET", "/api/v1/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lab 1", "cached listing must not hide new assignments")
}

func TestDiffBinaryFileUnprocessable(t *testing.T) {
	r := setupTestRouter(t)
	assignmentID, _ := createTestAssignment(t, r)

	w := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/assignments/%s/submissions", assignmentID), gin.H{
		"student_id":   "s1",
		"student_name": "Ada",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Submission struct {
			ID string `json:"id"`
		} `json:"submission"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	upload := func(name, content string) string {
		w := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/submissions/%s/files", created.Submission.ID), gin.H{
			"name":    name,
			"content": content,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			File struct {
				ID string `json:"id"`
			} `json:"file"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.File.ID
	}

	binaryID := upload("blob.bin", string([]byte{0x00, 0x01, 0x02}))
	textID := upload("a.txt", "hello")

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/files/%s/diff/%s", binaryID, textID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"unprocessable"`)
	assert.Contains(t, w.Body.String(), "not decodable")
}

func TestCompareEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, "POST", "/api/v1/compare", gin.H{
		"base":    "a\nb\nc",
		"revised": "a\nb\nc",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"similarity":1`)
}

func TestCompareEndpointExplicitZeroContext(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, "POST", "/api/v1/compare", gin.H{
		"base":    "a\nb\nc",
		"revised": "a\nx\nc",
		"context": 0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var diff struct {
		Regions []struct {
			Start int `json:"start"`
			End   int `json:"end"`
		} `json:"regions"`
		Context int `json:"context"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &diff))
	assert.Equal(t, 0, diff.Context, "an explicit zero context must not be upgraded to the default")
	require.Len(t, diff.Regions, 1)
	assert.Equal(t, 1, diff.Regions[0].Start)
	assert.Equal(t, 3, diff.Regions[0].End)
}

func TestFeedbackEndpoints(t *testing.T) {
	r := setupTestRouter(t)
	assignmentID, _ := createTestAssignment(t, r)

	w := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/assignments/%s/submissions", assignmentID), gin.H{
		"student_id":   "s1",
		"student_name": "Ada",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Submission struct {
			ID string `json:"id"`
		} `json:"submission"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/submissions/%s/files", created.Submission.ID), gin.H{
		"name":    "main.go",
		"content": "package main\n",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var uploaded struct {
		File struct {
			ID string `json:"id"`
		} `json:"file"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))

	w = doJSON(t, r, "POST", "/api/v1/feedback", gin.H{
		"file_id": uploaded.File.ID,
		"line":    1,
		"author":  "reviewer",
		"text":    "missing doc comment",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/v1/feedback", gin.H{
		"file_id": "missing",
		"line":    1,
		"author":  "reviewer",
		"text":    "nope",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/assignments/%s/feedback", assignmentID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "missing doc comment")
	assert.Contains(t, w.Body.String(), `"total":1`)
}

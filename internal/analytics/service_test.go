package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/te5in/gradecore/internal/database"
	"github.com/te5in/gradecore/internal/errors"
	"github.com/te5in/gradecore/internal/monitoring"
	"github.com/te5in/gradecore/internal/submission"
)

func newTestService(t *testing.T) (*Service, *database.Repository) {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	return NewService(repo, monitoring.NewLogger(), monitoring.NewMetrics()), repo
}

func TestRubricStats(t *testing.T) {
	svc, repo := newTestService(t)

	assignment, categories, err := repo.CreateAssignment("Lab 1", []database.CategorySpec{
		{Header: "Correctness", MinPoints: 0, MaxPoints: 10},
		{Header: "Style", MinPoints: 0, MaxPoints: 5},
	})
	require.NoError(t, err)

	grades := [][]float64{{2, 1}, {4, 2}, {6, 3}, {8, 4}}
	for i, row := range grades {
		_, err := repo.CreateSubmission(assignment.ID, "s"+string(rune('1'+i)), "Student", []database.GradeSpec{
			{CategoryID: categories[0].ID, Points: row[0]},
			{CategoryID: categories[1].ID, Points: row[1]},
		})
		require.NoError(t, err)
	}

	resp, err := svc.RubricStats(assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Submissions)
	require.Len(t, resp.Categories, 2)

	correctness := resp.Categories[0]
	assert.Equal(t, "Correctness", correctness.Header)
	require.NotNil(t, correctness.Mean)
	assert.InDelta(t, 5.0, *correctness.Mean, 1e-9)
	require.NotNil(t, correctness.RIT)
	assert.InDelta(t, 1.0, *correctness.RIT, 1e-9)
	require.NotNil(t, correctness.MeanPct)
	assert.InDelta(t, 50.0, *correctness.MeanPct, 1e-9)
}

func TestRubricStatsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RubricStats("missing")
	require.Error(t, err)

	appErr := errors.ToAppError(err)
	assert.Equal(t, errors.CategoryNotFound, appErr.Category)
}

func TestListSubmissionsSorted(t *testing.T) {
	svc, repo := newTestService(t)

	assignment, categories, err := repo.CreateAssignment("Lab 1", []database.CategorySpec{
		{Header: "Correctness", MinPoints: 0, MaxPoints: 10},
	})
	require.NoError(t, err)

	_, err = repo.CreateSubmission(assignment.ID, "s1", "Ada", []database.GradeSpec{
		{CategoryID: categories[0].ID, Points: 4},
	})
	require.NoError(t, err)
	_, err = repo.CreateSubmission(assignment.ID, "s2", "Grace", []database.GradeSpec{
		{CategoryID: categories[0].ID, Points: 9},
	})
	require.NoError(t, err)

	entries, err := svc.ListSubmissions(assignment.ID, submission.ListOptions{
		SortBy: submission.SortByGrade,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Grace", entries[0].StudentName, "highest grade first")
}

func TestDiffFiles(t *testing.T) {
	svc, repo := newTestService(t)

	assignment, _, err := repo.CreateAssignment("Lab 1", []database.CategorySpec{
		{Header: "Correctness", MinPoints: 0, MaxPoints: 10},
	})
	require.NoError(t, err)

	sub, err := repo.CreateSubmission(assignment.ID, "s1", "Ada", nil)
	require.NoError(t, err)

	base, err := repo.SaveFile(sub.ID, "a.txt", []byte("a\nb\nc"))
	require.NoError(t, err)
	revised, err := repo.SaveFile(sub.ID, "b.txt", []byte("a\nx\nc"))
	require.NoError(t, err)

	resp, err := svc.DiffFiles(base.ID, revised.ID, 1)
	require.NoError(t, err)

	kinds := make([]string, len(resp.Lines))
	for i, l := range resp.Lines {
		kinds[i] = l.Kind
	}
	assert.Equal(t, []string{"unchanged", "removed", "added", "unchanged"}, kinds)
	require.Len(t, resp.Regions, 1)
	assert.Greater(t, resp.Similarity, 0.0)
}

func TestDiffFilesBinaryContent(t *testing.T) {
	svc, repo := newTestService(t)

	assignment, _, err := repo.CreateAssignment("Lab 1", []database.CategorySpec{
		{Header: "Correctness", MinPoints: 0, MaxPoints: 10},
	})
	require.NoError(t, err)

	sub, err := repo.CreateSubmission(assignment.ID, "s1", "Ada", nil)
	require.NoError(t, err)

	binary, err := repo.SaveFile(sub.ID, "a.bin", []byte{0x00, 0x01, 0x02})
	require.NoError(t, err)
	text, err := repo.SaveFile(sub.ID, "b.txt", []byte("hello"))
	require.NoError(t, err)

	_, err = svc.DiffFiles(binary.ID, text.ID, 1)
	require.Error(t, err)

	appErr := errors.ToAppError(err)
	assert.Equal(t, errors.CategoryUnprocessable, appErr.Category)
}

func TestCompareTexts(t *testing.T) {
	svc, _ := newTestService(t)

	resp := svc.CompareTexts("a\nb\nc", "a\nb\nc", 2)
	assert.Empty(t, resp.Regions)
	assert.InDelta(t, 1.0, resp.Similarity, 1e-9)
}

func TestFeedbackOverview(t *testing.T) {
	svc, repo := newTestService(t)

	assignment, _, err := repo.CreateAssignment("Lab 1", []database.CategorySpec{
		{Header: "Correctness", MinPoints: 0, MaxPoints: 10},
	})
	require.NoError(t, err)

	sub, err := repo.CreateSubmission(assignment.ID, "s1", "Ada", nil)
	require.NoError(t, err)

	file, err := repo.SaveFile(sub.ID, "main.go", []byte("package main\n"))
	require.NoError(t, err)

	_, err = repo.AddFeedback(file.ID, 1, "reviewer", "looks good")
	require.NoError(t, err)

	items, err := svc.FeedbackOverview(assignment.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ada", items[0].StudentName)
	assert.Equal(t, "looks good", items[0].Comment.Text)
}

// Package storetest holds the repository contract shared by every storage
// backend. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Repos is one set of repositories over a fresh, empty store.
type Repos struct {
	Students student.Repository
	Tests    grading.TestRepository
	Results  grading.ResultRepository
}

// Factory returns repositories over a new empty store.
type Factory func(t *testing.T) Repos

// Run executes the contract against the backend built by newRepos.
func Run(t *testing.T, newRepos Factory) {
	t.Run("StudentCreateGet", func(t *testing.T) { testStudentCreateGet(t, newRepos(t)) })
	t.Run("StudentDuplicates", func(t *testing.T) { testStudentDuplicates(t, newRepos(t)) })
	t.Run("StudentListOrder", func(t *testing.T) { testStudentListOrder(t, newRepos(t)) })
	t.Run("StudentDelete", func(t *testing.T) { testStudentDelete(t, newRepos(t)) })
	t.Run("TestCreateGetList", func(t *testing.T) { testTestCreateGetList(t, newRepos(t)) })
	t.Run("SubmitMissingReferences", func(t *testing.T) { testSubmitMissingReferences(t, newRepos(t)) })
	t.Run("ResultListings", func(t *testing.T) { testResultListings(t, newRepos(t)) })
	t.Run("LargeScores", func(t *testing.T) { testLargeScores(t, newRepos(t)) })
	t.Run("OrphansAfterDelete", func(t *testing.T) { testOrphansAfterDelete(t, newRepos(t)) })
}

func mustStudent(t *testing.T, r Repos, id int64, name, email string) {
	t.Helper()
	require.NoError(t, r.Students.Create(context.Background(), &student.Student{ID: id, Name: name, Email: email}))
}

func mustTest(t *testing.T, r Repos, id int64, name string, maxScore int) {
	t.Helper()
	require.NoError(t, r.Tests.Create(context.Background(), &grading.Test{ID: id, Name: name, MaxScore: maxScore}))
}

func mustSubmit(t *testing.T, r Repos, studentID, testID int64, score int) grading.Result {
	t.Helper()
	res := grading.Result{StudentID: studentID, TestID: testID, Score: score}
	require.NoError(t, r.Results.Submit(context.Background(), &res))
	require.NotZero(t, res.ID)
	return res
}

func testStudentCreateGet(t *testing.T, r Repos) {
	ctx := context.Background()
	mustStudent(t, r, 1, "Alice", "alice@example.com")

	got, err := r.Students.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &student.Student{ID: 1, Name: "Alice", Email: "alice@example.com"}, got)

	_, err = r.Students.GetByID(ctx, 2)
	assert.True(t, shared.IsNotFound(err))
}

func testStudentDuplicates(t *testing.T, r Repos) {
	ctx := context.Background()
	mustStudent(t, r, 1, "Alice", "alice@example.com")

	err := r.Students.Create(ctx, &student.Student{ID: 1, Name: "Other", Email: "other@example.com"})
	assert.True(t, shared.IsAlreadyExists(err), "duplicate id: %v", err)

	err = r.Students.Create(ctx, &student.Student{ID: 2, Name: "Other", Email: "alice@example.com"})
	assert.True(t, shared.IsAlreadyExists(err), "duplicate email: %v", err)

	list, err := r.Students.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testStudentListOrder(t *testing.T, r Repos) {
	ctx := context.Background()

	list, err := r.Students.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	mustStudent(t, r, 3, "Carol", "carol@example.com")
	mustStudent(t, r, 1, "Alice", "alice@example.com")
	mustStudent(t, r, 2, "Bob", "bob@example.com")

	list, err = r.Students.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(2), list[1].ID)
	assert.Equal(t, int64(3), list[2].ID)
}

func testStudentDelete(t *testing.T, r Repos) {
	ctx := context.Background()
	mustStudent(t, r, 1, "Alice", "alice@example.com")

	require.NoError(t, r.Students.Delete(ctx, 1))
	_, err := r.Students.GetByID(ctx, 1)
	assert.True(t, shared.IsNotFound(err))

	err = r.Students.Delete(ctx, 1)
	assert.True(t, shared.IsNotFound(err))

	// The email is free again.
	mustStudent(t, r, 2, "Alice", "alice@example.com")
}

func testTestCreateGetList(t *testing.T, r Repos) {
	ctx := context.Background()
	mustTest(t, r, 2, "Geometry", 50)
	mustTest(t, r, 1, "Algebra", 100)

	err := r.Tests.Create(ctx, &grading.Test{ID: 1, Name: "Again", MaxScore: 10})
	assert.True(t, shared.IsAlreadyExists(err))

	got, err := r.Tests.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &grading.Test{ID: 1, Name: "Algebra", MaxScore: 100}, got)

	_, err = r.Tests.GetByID(ctx, 9)
	assert.True(t, shared.IsNotFound(err))

	list, err := r.Tests.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(2), list[1].ID)
}

func testSubmitMissingReferences(t *testing.T, r Repos) {
	ctx := context.Background()
	mustStudent(t, r, 1, "Alice", "alice@example.com")
	mustTest(t, r, 1, "Algebra", 100)

	err := r.Results.Submit(ctx, &grading.Result{StudentID: 99, TestID: 1, Score: 10})
	assert.ErrorIs(t, err, grading.ErrUnknownStudent)
	assert.True(t, shared.IsForeignKey(err))

	err = r.Results.Submit(ctx, &grading.Result{StudentID: 1, TestID: 99, Score: 10})
	assert.ErrorIs(t, err, grading.ErrUnknownTest)

	results, err := r.Results.ListByTest(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
	results, err = r.Results.ListByStudent(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func testResultListings(t *testing.T, r Repos) {
	ctx := context.Background()
	mustStudent(t, r, 1, "Alice", "alice@example.com")
	mustStudent(t, r, 2, "Bob", "bob@example.com")
	mustTest(t, r, 1, "Algebra", 100)
	mustTest(t, r, 2, "Geometry", 100)

	first := mustSubmit(t, r, 2, 1, 70)
	mustSubmit(t, r, 1, 2, 40)
	second := mustSubmit(t, r, 1, 1, 150) // above max_score is accepted
	third := mustSubmit(t, r, 1, 1, 80)   // repeated attempt

	byTest, err := r.Results.ListByTest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []grading.Result{first, second, third}, byTest)

	byStudent, err := r.Results.ListByStudent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byStudent, 3)
	assert.Equal(t, int64(2), byStudent[0].TestID)
	assert.Equal(t, 150, byStudent[1].Score)

	scored, err := r.Results.ListScoredByTest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, scored, 3)
	assert.Equal(t, "Bob", scored[0].Student.Name)
	assert.Equal(t, first, scored[0].Result)
	assert.Equal(t, "alice@example.com", scored[1].Student.Email)
}

// largeScore does not fit in 32 bits.
const largeScore = 1 << 40

func testLargeScores(t *testing.T, r Repos) {
	ctx := context.Background()
	mustStudent(t, r, 1, "Alice", "alice@example.com")
	mustTest(t, r, 1, "Marathon", largeScore)
	high := mustSubmit(t, r, 1, 1, largeScore)
	low := mustSubmit(t, r, 1, 1, -largeScore)

	got, err := r.Tests.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, largeScore, got.MaxScore)

	byTest, err := r.Results.ListByTest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []grading.Result{high, low}, byTest)
}

func testOrphansAfterDelete(t *testing.T, r Repos) {
	ctx := context.Background()
	mustStudent(t, r, 1, "Alice", "alice@example.com")
	mustStudent(t, r, 2, "Bob", "bob@example.com")
	mustTest(t, r, 1, "Algebra", 100)
	mustSubmit(t, r, 1, 1, 90)
	mustSubmit(t, r, 2, 1, 60)

	require.NoError(t, r.Students.Delete(ctx, 1))

	byTest, err := r.Results.ListByTest(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byTest, 2)

	byStudent, err := r.Results.ListByStudent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byStudent, 1)

	scored, err := r.Results.ListScoredByTest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, int64(2), scored[0].Student.ID)

	// New submissions for the deleted student are refused.
	err = r.Results.Submit(ctx, &grading.Result{StudentID: 1, TestID: 1, Score: 10})
	assert.True(t, shared.IsForeignKey(err))
}

package command

import (
	"context"
	"testing"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/infrastructure/persistence/memory"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return logger.WithContext(context.Background(), logger.Discard())
}

func TestCreateStudent(t *testing.T) {
	ctx := testContext()
	store := memory.NewStore()
	h := NewCreateStudentHandler(store.Students(), nil)

	res, err := h.Handle(ctx, CreateStudentCommand{ID: 1, Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, MsgStudentCreated, res.Message)

	got, err := store.Students().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestCreateStudent_InvalidatesHighestScorers(t *testing.T) {
	ctx := testContext()
	store := memory.NewStore()
	cache := memory.NewStatsCache()
	top := grading.ScoredResult{Student: student.Student{ID: 2, Name: "Bob"}}
	require.NoError(t, cache.SetHighestScorer(ctx, 1, top))
	require.NoError(t, cache.SetAverage(ctx, 1, 70))

	h := NewCreateStudentHandler(store.Students(), cache)
	_, err := h.Handle(ctx, CreateStudentCommand{ID: 1, Name: "Carol", Email: "carol@example.com"})
	require.NoError(t, err)

	_, ok, _ := cache.GetHighestScorer(ctx, 1)
	assert.False(t, ok)
	_, ok, _ = cache.GetAverage(ctx, 1)
	assert.True(t, ok, "averages do not depend on students")

	// A rejected create leaves the cache alone.
	require.NoError(t, cache.SetHighestScorer(ctx, 1, top))
	_, err = h.Handle(ctx, CreateStudentCommand{ID: 1, Name: "Dave", Email: "dave@example.com"})
	require.ErrorIs(t, err, student.ErrDuplicateID)
	_, ok, _ = cache.GetHighestScorer(ctx, 1)
	assert.True(t, ok)
}

func TestCreateStudent_Conflicts(t *testing.T) {
	ctx := testContext()
	store := memory.NewStore()
	h := NewCreateStudentHandler(store.Students(), nil)
	_, err := h.Handle(ctx, CreateStudentCommand{ID: 1, Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = h.Handle(ctx, CreateStudentCommand{ID: 1, Name: "Bob", Email: "bob@example.com"})
	assert.ErrorIs(t, err, student.ErrDuplicateID)

	_, err = h.Handle(ctx, CreateStudentCommand{ID: 2, Name: "Bob", Email: "alice@example.com"})
	assert.ErrorIs(t, err, student.ErrDuplicateEmail)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestCreateStudent_Validation(t *testing.T) {
	h := NewCreateStudentHandler(memory.NewStore().Students(), nil)

	tests := []struct {
		name string
		cmd  CreateStudentCommand
	}{
		{"name too short", CreateStudentCommand{ID: 1, Name: "A", Email: "a@example.com"}},
		{"name too long", CreateStudentCommand{ID: 1, Name: string(make([]rune, 51)), Email: "a@example.com"}},
		{"blank email", CreateStudentCommand{ID: 1, Name: "Alice", Email: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(testContext(), tt.cmd)
			assert.True(t, shared.IsValidation(err), "got %v", err)
		})
	}
}

func TestCreateTest(t *testing.T) {
	ctx := testContext()
	store := memory.NewStore()
	h := NewCreateTestHandler(store.Tests())

	res, err := h.Handle(ctx, CreateTestCommand{ID: 1, Name: "Algebra", MaxScore: 100})
	require.NoError(t, err)
	assert.Equal(t, MsgTestCreated, res.Message)

	_, err = h.Handle(ctx, CreateTestCommand{ID: 1, Name: "Geometry", MaxScore: 50})
	assert.ErrorIs(t, err, grading.ErrDuplicateTest)

	_, err = h.Handle(ctx, CreateTestCommand{ID: 2, Name: "G", MaxScore: 50})
	assert.True(t, shared.IsValidation(err))
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Students().Create(ctx, &student.Student{ID: 1, Name: "Alice", Email: "alice@example.com"}))
	require.NoError(t, store.Tests().Create(ctx, &grading.Test{ID: 1, Name: "Algebra", MaxScore: 100}))
	require.NoError(t, store.Tests().Create(ctx, &grading.Test{ID: 2, Name: "Geometry", MaxScore: 100}))
}

func TestSubmitResult_InvalidatesOnlyItsTest(t *testing.T) {
	ctx := testContext()
	store := memory.NewStore()
	seed(t, store)
	cache := memory.NewStatsCache()
	require.NoError(t, cache.SetAverage(ctx, 1, 50))
	require.NoError(t, cache.SetAverage(ctx, 2, 70))

	h := NewSubmitResultHandler(store.Results(), cache)
	res, err := h.Handle(ctx, SubmitResultCommand{StudentID: 1, TestID: 1, Score: 120})
	require.NoError(t, err)
	assert.Equal(t, MsgResultCreated, res.Message)

	assert.False(t, cache.Cached(1))
	assert.True(t, cache.Cached(2))

	results, err := store.Results().ListByTest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 120, results[0].Score)
}

func TestSubmitResult_MissingReferences(t *testing.T) {
	ctx := testContext()
	store := memory.NewStore()
	seed(t, store)
	cache := memory.NewStatsCache()
	require.NoError(t, cache.SetAverage(ctx, 1, 50))
	h := NewSubmitResultHandler(store.Results(), cache)

	_, err := h.Handle(ctx, SubmitResultCommand{StudentID: 9, TestID: 1, Score: 10})
	assert.ErrorIs(t, err, grading.ErrUnknownStudent)

	_, err = h.Handle(ctx, SubmitResultCommand{StudentID: 1, TestID: 9, Score: 10})
	assert.ErrorIs(t, err, grading.ErrUnknownTest)

	assert.True(t, cache.Cached(1), "failed submissions leave the cache alone")
}

func TestSubmitResult_NilCache(t *testing.T) {
	store := memory.NewStore()
	seed(t, store)

	_, err := NewSubmitResultHandler(store.Results(), nil).
		Handle(testContext(), SubmitResultCommand{StudentID: 1, TestID: 2, Score: 1})
	assert.NoError(t, err)
}

func TestDeleteStudent(t *testing.T) {
	ctx := testContext()
	store := memory.NewStore()
	seed(t, store)
	cache := memory.NewStatsCache()
	top := grading.ScoredResult{Student: student.Student{ID: 1, Name: "Alice"}}
	require.NoError(t, cache.SetHighestScorer(ctx, 1, top))
	require.NoError(t, cache.SetHighestScorer(ctx, 2, top))
	require.NoError(t, cache.SetAverage(ctx, 1, 80))

	h := NewDeleteStudentHandler(store.Students(), cache)
	res, err := h.Handle(ctx, DeleteStudentCommand{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, MsgStudentDeleted, res.Message)

	_, ok, _ := cache.GetHighestScorer(ctx, 2)
	assert.False(t, ok)
	_, ok, _ = cache.GetAverage(ctx, 1)
	assert.True(t, ok)

	_, err = h.Handle(ctx, DeleteStudentCommand{ID: 1})
	assert.True(t, shared.IsNotFound(err))
}

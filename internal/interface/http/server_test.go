package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/application/command"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/application/query"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/infrastructure/persistence/memory"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/interface/http/handlers"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	server *Server
	store  *memory.Store
	cache  *memory.StatsCache
}

func newTestServer(t *testing.T, checker handlers.Checker) *testServer {
	t.Helper()
	store := memory.NewStore()
	cache := memory.NewStatsCache()

	deps := Dependencies{
		CreateStudent: command.NewCreateStudentHandler(store.Students(), cache),
		DeleteStudent: command.NewDeleteStudentHandler(store.Students(), cache),
		CreateTest:    command.NewCreateTestHandler(store.Tests()),
		SubmitResult:  command.NewSubmitResultHandler(store.Results(), cache),
		Students:      query.NewStudentsHandler(store.Students()),
		Tests:         query.NewTestsHandler(store.Tests()),
		Results:       query.NewResultsHandler(store.Results()),
		Aggregates:    query.NewAggregatesHandler(store.Results(), cache),
		Logger:        logger.Discard(),
		HealthChecker: checker,
	}
	return &testServer{t: t, server: NewServer(DefaultConfig(), deps), store: store, cache: cache}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(ts.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) mustDo(method, path string, body any) {
	ts.t.Helper()
	rec := ts.do(method, path, body)
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())
}

func (ts *testServer) seed() {
	ts.mustDo(http.MethodPost, "/students/", gin.H{"id": 1, "name": "Alice", "email": "alice@example.com"})
	ts.mustDo(http.MethodPost, "/students/", gin.H{"id": 2, "name": "Bob", "email": "bob@example.com"})
	ts.mustDo(http.MethodPost, "/tests/", gin.H{"id": 1, "name": "Algebra", "max_score": 100})
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	assert.Equal(t, code, decode[errorResponse](t, rec).Error.Code)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

func TestCreateAndGetStudent(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/students/", gin.H{"id": 7, "name": "Alice", "email": "alice@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Student created successfully", decode[messageResponse](t, rec).Message)

	rec = ts.do(http.MethodGet, "/students/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"name":"Alice","email":"alice@example.com"}`, rec.Body.String())
}

func TestCreateStudent_Errors(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seed()

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"duplicate id", gin.H{"id": 1, "name": "Carol", "email": "carol@example.com"}, http.StatusConflict, codeConflict},
		{"duplicate email", gin.H{"id": 3, "name": "Carol", "email": "alice@example.com"}, http.StatusConflict, codeConflict},
		{"short name", gin.H{"id": 3, "name": "C", "email": "c@example.com"}, http.StatusUnprocessableEntity, codeValidation},
		{"missing id", gin.H{"name": "Carol", "email": "carol@example.com"}, http.StatusUnprocessableEntity, codeValidation},
		{"missing email", gin.H{"id": 3, "name": "Carol"}, http.StatusUnprocessableEntity, codeValidation},
		{"wrong type", `{"id":"three","name":"Carol","email":"c@example.com"}`, http.StatusUnprocessableEntity, codeValidation},
		{"malformed json", `{"id":`, http.StatusUnprocessableEntity, codeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertError(t, ts.do(http.MethodPost, "/students/", tt.body), tt.status, tt.code)
		})
	}

	list := decode[[]query.StudentDTO](t, ts.do(http.MethodGet, "/students/", nil))
	assert.Len(t, list, 2, "failed creates persist nothing")
}

func TestCreateStudent_ZeroIDAccepted(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.mustDo(http.MethodPost, "/students/", gin.H{"id": 0, "name": "Zed", "email": "zed@example.com"})
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/students/0", nil).Code)
}

func TestGetStudent_Errors(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/students/99", nil)
	assertError(t, rec, http.StatusNotFound, codeNotFound)
	assert.Equal(t, "student not found", decode[errorResponse](t, rec).Error.Message)

	assertError(t, ts.do(http.MethodGet, "/students/abc", nil), http.StatusUnprocessableEntity, codeValidation)
}

func TestListStudents(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/students/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	ts.mustDo(http.MethodPost, "/students/", gin.H{"id": 5, "name": "Eve", "email": "eve@example.com"})
	ts.seed()

	list := decode[[]query.StudentDTO](t, ts.do(http.MethodGet, "/students/", nil))
	require.Len(t, list, 3)
	assert.Equal(t, []int64{1, 2, 5}, []int64{list[0].ID, list[1].ID, list[2].ID})
}

func TestDeleteStudent(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seed()
	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 2, "test_id": 1, "score": 40})

	rec := ts.do(http.MethodDelete, "/students/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Student deleted successfully", decode[messageResponse](t, rec).Message)

	assertError(t, ts.do(http.MethodGet, "/students/2", nil), http.StatusNotFound, codeNotFound)
	assertError(t, ts.do(http.MethodDelete, "/students/2", nil), http.StatusNotFound, codeNotFound)

	// The orphaned result stays listed.
	results := decode[[]query.ResultDTO](t, ts.do(http.MethodGet, "/get_results/1", nil))
	assert.Equal(t, []query.ResultDTO{{StudentID: 2, TestID: 1, Score: 40}}, results)
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestTests(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/tests/", gin.H{"id": 3, "name": "Physics", "max_score": 50})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Test created successfully", decode[messageResponse](t, rec).Message)

	rec = ts.do(http.MethodGet, "/tests/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":3,"name":"Physics","max_score":50}`, rec.Body.String())

	list := decode[[]query.TestDTO](t, ts.do(http.MethodGet, "/tests/", nil))
	assert.Len(t, list, 1)

	assertError(t, ts.do(http.MethodPost, "/tests/", gin.H{"id": 3, "name": "Chemistry", "max_score": 50}),
		http.StatusConflict, codeConflict)
	assertError(t, ts.do(http.MethodPost, "/tests/", gin.H{"id": 4, "name": "Chemistry"}),
		http.StatusUnprocessableEntity, codeValidation)
	assertError(t, ts.do(http.MethodGet, "/tests/4", nil), http.StatusNotFound, codeNotFound)
	assertError(t, ts.do(http.MethodGet, "/tests/x", nil), http.StatusUnprocessableEntity, codeValidation)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULTS & AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

func TestSubmitResult(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seed()

	rec := ts.do(http.MethodPost, "/test_results/", gin.H{"student_id": 1, "test_id": 1, "score": 150})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Test result created successfully", decode[messageResponse](t, rec).Message)

	assertError(t, ts.do(http.MethodPost, "/test_results/", gin.H{"student_id": 9, "test_id": 1, "score": 1}),
		http.StatusNotFound, codeForeignKey)
	assertError(t, ts.do(http.MethodPost, "/test_results/", gin.H{"student_id": 1, "test_id": 9, "score": 1}),
		http.StatusNotFound, codeForeignKey)
	assertError(t, ts.do(http.MethodPost, "/test_results/", gin.H{"student_id": 1, "test_id": 1}),
		http.StatusUnprocessableEntity, codeValidation)

	results := decode[[]query.ResultDTO](t, ts.do(http.MethodGet, "/get_results/1", nil))
	assert.Equal(t, []query.ResultDTO{{StudentID: 1, TestID: 1, Score: 150}}, results)
}

func TestResultListings(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seed()
	ts.mustDo(http.MethodPost, "/tests/", gin.H{"id": 2, "name": "Geometry", "max_score": 100})
	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 1, "test_id": 1, "score": 10})
	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 2, "test_id": 1, "score": 20})
	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 1, "test_id": 2, "score": 30})

	byStudent := ts.do(http.MethodGet, "/students/1/test_results", nil)
	require.Equal(t, http.StatusOK, byStudent.Code)
	assert.JSONEq(t, `[{"student_id":1,"test_id":1,"score":10},{"student_id":1,"test_id":2,"score":30}]`,
		byStudent.Body.String())

	byTest := decode[[]query.ResultDTO](t, ts.do(http.MethodGet, "/get_results/1", nil))
	assert.Len(t, byTest, 2)

	empty := ts.do(http.MethodGet, "/get_results/42", nil)
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())

	assertError(t, ts.do(http.MethodGet, "/get_results/abc", nil), http.StatusUnprocessableEntity, codeValidation)
}

func TestAverageScore(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seed()

	assertError(t, ts.do(http.MethodGet, "/students/1/average_score", nil), http.StatusNotFound, codeNoData)

	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 1, "test_id": 1, "score": 10})
	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 2, "test_id": 1, "score": 30})

	rec := ts.do(http.MethodGet, "/students/1/average_score", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Average score for test ID 1 is 20.0"}`, rec.Body.String())
	assert.True(t, ts.cache.Cached(1))

	// A new submission drops the cached value.
	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 2, "test_id": 1, "score": 10})
	assert.False(t, ts.cache.Cached(1))

	rec = ts.do(http.MethodGet, "/students/1/average_score", nil)
	assert.Equal(t, "Average score for test ID 1 is 16.666666666666668", decode[query.AverageDTO](t, rec).Message)
}

func TestHighestScorer(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seed()

	assertError(t, ts.do(http.MethodGet, "/highest_scorer/1", nil), http.StatusNotFound, codeNoData)

	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 1, "test_id": 1, "score": 80})
	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 2, "test_id": 1, "score": 80})

	rec := ts.do(http.MethodGet, "/highest_scorer/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Alice","email":"alice@example.com"}`, rec.Body.String())

	// Deleting the holder hands the title to the next best student.
	ts.mustDo(http.MethodDelete, "/students/1", nil)
	top := decode[query.StudentDTO](t, ts.do(http.MethodGet, "/highest_scorer/1", nil))
	assert.Equal(t, int64(2), top.ID)

	assertError(t, ts.do(http.MethodGet, "/highest_scorer/one", nil), http.StatusUnprocessableEntity, codeValidation)
}

func TestHighestScorer_ReusedStudentID(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seed()
	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 1, "test_id": 1, "score": 90})
	ts.mustDo(http.MethodPost, "/test_results/", gin.H{"student_id": 2, "test_id": 1, "score": 50})

	ts.mustDo(http.MethodDelete, "/students/1", nil)
	top := decode[query.StudentDTO](t, ts.do(http.MethodGet, "/highest_scorer/1", nil))
	assert.Equal(t, "Bob", top.Name)
	require.True(t, ts.cache.Cached(1))

	// The new student inherits the orphaned 90.
	ts.mustDo(http.MethodPost, "/students/", gin.H{"id": 1, "name": "Carol", "email": "carol@example.com"})
	top = decode[query.StudentDTO](t, ts.do(http.MethodGet, "/highest_scorer/1", nil))
	assert.Equal(t, query.StudentDTO{ID: 1, Name: "Carol", Email: "carol@example.com"}, top)
}

// ══════════════════════════════════════════════════════════════════════════════
// INFRASTRUCTURE
// ══════════════════════════════════════════════════════════════════════════════

func TestHealthEndpoints(t *testing.T) {
	checker := handlers.NewCompositeChecker("test")
	ts := newTestServer(t, checker)
	checker.Add("storage", handlers.PingCheck(ts.store))

	rec := ts.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[handlers.Status](t, rec).Healthy)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/ready", nil).Code)

	checker.Add("stats_cache", func(context.Context) error { return errors.New("connection refused") })
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/live", nil).Code)
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/live", nil)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec = httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)
	assertError(t, ts.do(http.MethodGet, "/nope", nil), http.StatusNotFound, codeNotFound)
}

func TestRecovery(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.server.engine.GET("/panic", func(*gin.Context) { panic("boom") })

	assertError(t, ts.do(http.MethodGet, "/panic", nil), http.StatusInternalServerError, codeInternal)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{student.ErrStudentNotFound, http.StatusNotFound, codeNotFound},
		{student.ErrDuplicateEmail, http.StatusConflict, codeConflict},
		{errors.New("disk full"), http.StatusInternalServerError, codeInternal},
	}
	for _, tt := range tests {
		status, code := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code)
	}
}

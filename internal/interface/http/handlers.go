package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/application/command"
	"github.com/gin-gonic/gin"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST BODIES
// Pointers tell a missing field from a zero value.
// ══════════════════════════════════════════════════════════════════════════════

type createStudentRequest struct {
	ID    *int64 `json:"id" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

type createTestRequest struct {
	ID       *int64 `json:"id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	MaxScore *int   `json:"max_score" binding:"required"`
}

type submitResultRequest struct {
	StudentID *int64 `json:"student_id" binding:"required"`
	TestID    *int64 `json:"test_id" binding:"required"`
	Score     *int   `json:"score" binding:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// bindJSON decodes the body into req, answering 422 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return false
	}
	return true
}

// pathID parses an integer path parameter, answering 422 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		writeError(c, http.StatusUnprocessableEntity, codeValidation,
			fmt.Sprintf("%s must be an integer", name))
		return 0, false
	}
	return id, true
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(c *gin.Context) {
	if s.deps.HealthChecker == nil {
		c.JSON(http.StatusOK, gin.H{"healthy": true, "uptime": s.Uptime().String()})
		return
	}

	status := s.deps.HealthChecker.Check(c.Request.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func (s *Server) handleReady(c *gin.Context) {
	if s.deps.HealthChecker != nil && !s.deps.HealthChecker.Check(c.Request.Context()).Healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

func (s *Server) handleLive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alive": true})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleCreateStudent(c *gin.Context) {
	var req createStudentRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := s.deps.CreateStudent.Handle(c.Request.Context(), command.CreateStudentCommand{
		ID:    *req.ID,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: res.Message})
}

func (s *Server) handleListStudents(c *gin.Context) {
	list, err := s.deps.Students.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	dto, err := s.deps.Students.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (s *Server) handleDeleteStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := s.deps.DeleteStudent.Handle(c.Request.Context(), command.DeleteStudentCommand{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: res.Message})
}

func (s *Server) handleResultsByStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := s.deps.Results.ByStudent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// handleAverageScore serves /students/:id/average_score where :id names the
// test.
func (s *Server) handleAverageScore(c *gin.Context) {
	testID, ok := pathID(c, "id")
	if !ok {
		return
	}

	dto, err := s.deps.Aggregates.AverageScore(c.Request.Context(), testID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleCreateTest(c *gin.Context) {
	var req createTestRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := s.deps.CreateTest.Handle(c.Request.Context(), command.CreateTestCommand{
		ID:       *req.ID,
		Name:     req.Name,
		MaxScore: *req.MaxScore,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: res.Message})
}

func (s *Server) handleListTests(c *gin.Context) {
	list, err := s.deps.Tests.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetTest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	dto, err := s.deps.Tests.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULTS & AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleSubmitResult(c *gin.Context) {
	var req submitResultRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := s.deps.SubmitResult.Handle(c.Request.Context(), command.SubmitResultCommand{
		StudentID: *req.StudentID,
		TestID:    *req.TestID,
		Score:     *req.Score,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: res.Message})
}

func (s *Server) handleResultsByTest(c *gin.Context) {
	testID, ok := pathID(c, "test_id")
	if !ok {
		return
	}

	list, err := s.deps.Results.ByTest(c.Request.Context(), testID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleHighestScorer(c *gin.Context) {
	testID, ok := pathID(c, "test_id")
	if !ok {
		return
	}

	dto, err := s.deps.Aggregates.HighestScorer(c.Request.Context(), testID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

package controllers

import (
	"LearnSphere/internal/models"
	"LearnSphere/pkg/logger"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssessmentService interface {
	LearnerQuizView(ctx context.Context, classroomID uuid.UUID, moduleIndex int) (*models.QuizView, error)
	Submit(ctx context.Context, learnerID, classroomID uuid.UUID, moduleIndex int, answers []string) (*models.SubmissionResult, error)
	LearnerProgress(ctx context.Context, learnerID, classroomID uuid.UUID) (*models.Progress, error)
}

type AssessmentHandler struct {
	log     logger.Log
	service AssessmentService
}

func NewAssessmentHandler(log logger.Log, s AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		log:     log,
		service: s,
	}
}

func moduleIndexParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("module_index"))
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid module_index"})
		return 0, false
	}
	return idx, true
}

func (h *AssessmentHandler) GetQuiz(c *gin.Context) {
	id, ok := classroomID(c)
	if !ok {
		return
	}
	idx, ok := moduleIndexParam(c)
	if !ok {
		return
	}

	view, err := h.service.LearnerQuizView(c.Request.Context(), id, idx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AssessmentHandler) SubmitQuiz(c *gin.Context) {
	id, ok := classroomID(c)
	if !ok {
		return
	}
	idx, ok := moduleIndexParam(c)
	if !ok {
		return
	}
	learnerID, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		Answers []string `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.service.Submit(c.Request.Context(), learnerID, id, idx, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AssessmentHandler) GetProgress(c *gin.Context) {
	id, ok := classroomID(c)
	if !ok {
		return
	}
	learnerID, ok := actor(c)
	if !ok {
		return
	}

	progress, err := h.service.LearnerProgress(c.Request.Context(), learnerID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

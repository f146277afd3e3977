package controllers

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/service/enrollment"
	"LearnSphere/pkg/logger"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, learnerID, courseID uuid.UUID) (*enrollment.EnrollmentTicket, error)
	Unenroll(ctx context.Context, learnerID, classroomID uuid.UUID) error
	Reassign(ctx context.Context, learnerID, fromClassroomID, toClassroomID uuid.UUID) error
	DeleteClassroom(ctx context.Context, classroomID uuid.UUID) error
}

type EnrollmentHandler struct {
	log     logger.Log
	service EnrollmentService
}

func NewEnrollmentHandler(log logger.Log, s EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:     log,
		service: s,
	}
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req struct {
		CourseID uuid.UUID `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	learnerID, ok := actor(c)
	if !ok {
		return
	}

	ticket, err := h.service.Enroll(c.Request.Context(), learnerID, req.CourseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	var req struct {
		ClassroomID uuid.UUID `json:"classroom_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	learnerID, ok := actor(c)
	if !ok {
		return
	}

	if err := h.service.Unenroll(c.Request.Context(), learnerID, req.ClassroomID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "withdrawn"})
}

func (h *EnrollmentHandler) Reassign(c *gin.Context) {
	var req struct {
		StudentID       uuid.UUID `json:"student_id" binding:"required"`
		FromClassroomID uuid.UUID `json:"from_classroom_id" binding:"required"`
		ToClassroomID   uuid.UUID `json:"to_classroom_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.service.Reassign(c.Request.Context(), req.StudentID, req.FromClassroomID, req.ToClassroomID)
	if err != nil {
		// A full target is a validation failure on this admin path, not a
		// race the caller should retry.
		if errors.Is(err, app_errors.ErrClassroomFull) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reassigned"})
}

func (h *EnrollmentHandler) DeleteClassroom(c *gin.Context) {
	id, ok := classroomID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteClassroom(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

package controllers

import (
	"LearnSphere/internal/app_errors"
	"LearnSphere/internal/delivery/http/controllers/middleware"
	"LearnSphere/internal/models"
	"LearnSphere/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AllocatorService interface {
	CreateClassroom(ctx context.Context, courseID, mentorID uuid.UUID) (*models.Classroom, error)
	ClassroomForMentor(ctx context.Context, classroomID, mentorID uuid.UUID) (*models.Classroom, error)
	MentorClassrooms(ctx context.Context, mentorID uuid.UUID) ([]models.Classroom, error)
	MarkSyllabusViewed(ctx context.Context, classroomID, mentorID uuid.UUID) (*models.Classroom, error)
	UpsertQuiz(ctx context.Context, classroomID, mentorID uuid.UUID, moduleIndex int, questions []models.Question) (*models.Classroom, error)
	Activate(ctx context.Context, classroomID, mentorID uuid.UUID) (*models.Classroom, error)
	UpdateTopicContent(ctx context.Context, classroomID, mentorID, moduleID, topicID uuid.UUID, content string) (*models.Classroom, error)
}

type ClassroomHandler struct {
	log     logger.Log
	service AllocatorService
}

func NewClassroomHandler(log logger.Log, s AllocatorService) *ClassroomHandler {
	return &ClassroomHandler{
		log:     log,
		service: s,
	}
}

func classroomID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("classroom_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid classroom_id"})
		return uuid.Nil, false
	}
	return id, true
}

func actor(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "actor not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ClassroomHandler) CreateClassroom(c *gin.Context) {
	var req struct {
		CourseID uuid.UUID `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	mentorID, ok := actor(c)
	if !ok {
		return
	}

	room, err := h.service.CreateClassroom(c.Request.Context(), req.CourseID, mentorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *ClassroomHandler) MyClassrooms(c *gin.Context) {
	mentorID, ok := actor(c)
	if !ok {
		return
	}
	rooms, err := h.service.MentorClassrooms(c.Request.Context(), mentorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classrooms": rooms})
}

func (h *ClassroomHandler) ClassroomByID(c *gin.Context) {
	id, ok := classroomID(c)
	if !ok {
		return
	}
	mentorID, ok := actor(c)
	if !ok {
		return
	}
	room, err := h.service.ClassroomForMentor(c.Request.Context(), id, mentorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *ClassroomHandler) MarkSyllabusViewed(c *gin.Context) {
	id, ok := classroomID(c)
	if !ok {
		return
	}
	mentorID, ok := actor(c)
	if !ok {
		return
	}
	room, err := h.service.MarkSyllabusViewed(c.Request.Context(), id, mentorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *ClassroomHandler) UpsertQuiz(c *gin.Context) {
	id, ok := classroomID(c)
	if !ok {
		return
	}
	mentorID, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		ModuleIndex *int              `json:"module_index" binding:"required"`
		Questions   []models.Question `json:"questions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	room, err := h.service.UpsertQuiz(c.Request.Context(), id, mentorID, *req.ModuleIndex, req.Questions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *ClassroomHandler) Activate(c *gin.Context) {
	id, ok := classroomID(c)
	if !ok {
		return
	}
	mentorID, ok := actor(c)
	if !ok {
		return
	}
	room, err := h.service.Activate(c.Request.Context(), id, mentorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *ClassroomHandler) UpdateTopicContent(c *gin.Context) {
	id, ok := classroomID(c)
	if !ok {
		return
	}
	mentorID, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		ModuleID uuid.UUID `json:"module_id" binding:"required"`
		TopicID  uuid.UUID `json:"topic_id" binding:"required"`
		Content  string    `json:"content"`
		Title    string    `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	// Titles are immutable after the snapshot is taken; reject the field
	// outright instead of ignoring it.
	if req.Title != "" {
		respondError(c, app_errors.ErrTitleImmutable)
		return
	}

	room, err := h.service.UpdateTopicContent(c.Request.Context(), id, mentorID, req.ModuleID, req.TopicID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

package controllers

import (
	"LearnSphere/internal/app_errors"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Every
// rejection carries its reason string; infrastructure faults and the enroll
// inconsistency stay opaque 500s.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrCourseNotFound),
		errors.Is(err, app_errors.ErrClassroomNotFound),
		errors.Is(err, app_errors.ErrQuizNotFound),
		errors.Is(err, app_errors.ErrProgressNotFound),
		errors.Is(err, app_errors.ErrModuleNotFound),
		errors.Is(err, app_errors.ErrTopicNotFound),
		errors.Is(err, app_errors.ErrNoOpenClassroom):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, app_errors.ErrTooFewQuestions),
		errors.Is(err, app_errors.ErrAnswerCountMismatch),
		errors.Is(err, app_errors.ErrNotClassMember),
		errors.Is(err, app_errors.ErrCourseMismatch),
		errors.Is(err, app_errors.ErrTitleImmutable),
		errors.Is(err, app_errors.ErrSyllabusNotViewed),
		errors.Is(err, app_errors.ErrFirstModuleQuizMissing),
		errors.Is(err, app_errors.ErrActiveEnrollmentExists),
		errors.Is(err, app_errors.ErrAlreadyEnrolled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, app_errors.ErrClassroomFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

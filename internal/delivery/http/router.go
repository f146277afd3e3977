package http

import (
	"LearnSphere/internal/delivery/http/controllers"
	"LearnSphere/internal/delivery/http/controllers/middleware"
	"LearnSphere/internal/models"
	"LearnSphere/internal/service"
	"LearnSphere/pkg/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(config))

	statusController := controllers.NewStatusHandler()
	classroomController := controllers.NewClassroomHandler(l, u.Allocator)
	enrollmentController := controllers.NewEnrollmentHandler(l, u.Enrollment)
	assessmentController := controllers.NewAssessmentHandler(l, u.Assessment)
	actorProvider := middleware.NewActorMiddlewareProvider(l, u.Identity)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		classrooms := v1.Group("/classrooms", actorProvider.ActorMiddleware)
		{
			mentor := classrooms.Group("", middleware.RequireRoles(models.MentorRole))
			{
				mentor.POST("", classroomController.CreateClassroom)
				mentor.GET("/mine", classroomController.MyClassrooms)
				mentor.GET("/:classroom_id", classroomController.ClassroomByID)
				mentor.PUT("/:classroom_id/syllabus-viewed", classroomController.MarkSyllabusViewed)
				mentor.PUT("/:classroom_id/quiz", classroomController.UpsertQuiz)
				mentor.PUT("/:classroom_id/activate", classroomController.Activate)
				mentor.PUT("/:classroom_id/topic-content", classroomController.UpdateTopicContent)
			}

			learner := classrooms.Group("", middleware.RequireRoles(models.LearnerRole))
			{
				learner.GET("/:classroom_id/quiz/:module_index", assessmentController.GetQuiz)
				learner.POST("/:classroom_id/quiz/:module_index/submit", assessmentController.SubmitQuiz)
				learner.GET("/:classroom_id/progress", assessmentController.GetProgress)
			}

			admin := classrooms.Group("", middleware.RequireRoles(models.AdminRole))
			{
				admin.DELETE("/:classroom_id", enrollmentController.DeleteClassroom)
			}
		}

		enrollments := v1.Group("/enrollments", actorProvider.ActorMiddleware)
		{
			learner := enrollments.Group("", middleware.RequireRoles(models.LearnerRole))
			{
				learner.POST("", enrollmentController.Enroll)
				learner.POST("/withdraw", enrollmentController.Withdraw)
			}

			admin := enrollments.Group("", middleware.RequireRoles(models.AdminRole))
			{
				admin.PUT("/reassign", enrollmentController.Reassign)
			}
		}
	}
	return r
}

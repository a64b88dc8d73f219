package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutoring_backend/handlers"
	"tutoring_backend/middleware"
	"tutoring_backend/services"
	"tutoring_backend/store"
	"tutoring_backend/upload"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, st store.Store, sink *upload.DiskSink, metrics *middleware.Metrics, logger *zap.Logger) {
	// Initialize handlers
	scheduleHandler := handlers.NewScheduleHandler(services.NewScheduleService(st), logger)
	homeworkHandler := handlers.NewHomeworkHandler(services.NewHomeworkService(st, sink), logger)
	groupHandler := handlers.NewGroupHandler(services.NewGroupService(st), logger)
	healthHandler := handlers.NewHealthHandler(st, logger)

	r.GET("/health", healthHandler.HealthCheck)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Uploaded files
	r.Static("/uploads", sink.Dir())

	api := r.Group("/api")
	{
		// Schedule routes
		schedule := api.Group("/schedule")
		schedule.GET("/student/:studentId", scheduleHandler.GetByStudent)
		schedule.GET("/group/:groupId", scheduleHandler.GetByGroup)
		schedule.GET("/group/:groupId/with-students", scheduleHandler.GetGroupWithStudents)
		schedule.POST("", scheduleHandler.Create)
		schedule.POST("/deleteMultiple", scheduleHandler.DeleteMultiple)
		schedule.PUT("/:id/updateAttendance", scheduleHandler.UpdateAttendance)
		schedule.PUT("/:id/updateGroupAttendance", scheduleHandler.UpdateGroupAttendance)
		schedule.PUT("/:id", scheduleHandler.Update)
		schedule.DELETE("/:id", scheduleHandler.Delete)

		// Homework routes
		homework := api.Group("/homework")
		homework.GET("/student/:studentId", homeworkHandler.GetByStudent)
		homework.GET("/group/:groupId", homeworkHandler.GetByGroup)
		homework.POST("", homeworkHandler.Create)
		homework.POST("/upload-answer", homeworkHandler.UploadAnswer)
		homework.POST("/deleteMultiple", homeworkHandler.DeleteMultiple)
		homework.PUT("/:id", homeworkHandler.UpdateGrade)
		homework.PUT("/:id/:studentId", homeworkHandler.UpdateStudentGrade)
		homework.DELETE("/:id", homeworkHandler.Delete)

		// Group routes
		groups := api.Group("/groups")
		groups.POST("", groupHandler.CreateGroup)
		groups.GET("/:id", groupHandler.GetGroup)
	}
}

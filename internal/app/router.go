package app

import (
	"course_exam_backend/docs"
	"course_exam_backend/internal/config"
	"course_exam_backend/internal/middleware"
	"course_exam_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	router.GET("/api/health", c.health.HealthCheck)

	// 需要登录的接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 学习进度
		authGroup.POST("/lessons/:lessonId/complete", c.learning.CompleteLesson)
		authGroup.GET("/courses/:courseId/progress", c.learning.GetCourseProgress)

		// 单元考试
		authGroup.GET("/moocs/:moocId/exam", c.exam.GetExamInfo)
		authGroup.POST("/moocs/:moocId/exam/attempts", c.exam.StartAttempt)
		authGroup.GET("/moocs/:moocId/exam/attempts", c.exam.ListAttempts)
		authGroup.POST("/exam/attempts/:attemptId/submit", c.exam.SubmitAttempt)
		authGroup.GET("/exam/attempts/:attemptId/result", c.exam.GetAttemptResult)
	}
}

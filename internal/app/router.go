package app

import (
	"hrm_backend/docs"
	"hrm_backend/internal/config"
	"hrm_backend/internal/middleware"
	"hrm_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		a.registerEmployeeRoutes(authGroup, c)

		// HR管理接口
		hr := authGroup.Group("")
		hr.Use(middleware.HRAdminOnly())
		a.registerHRRoutes(hr, c)
	}
}

// registerEmployeeRoutes 注册所有登录用户可访问的接口，具体的归属校验在service层完成
func (a *App) registerEmployeeRoutes(rg *gin.RouterGroup, c *controllers) {
	// 课程目录
	rg.GET("/courses", c.course.ListCourses)
	rg.GET("/courses/:id", c.course.GetCourse)

	// 学习计划
	rg.GET("/plans", c.plan.ListPlans)
	rg.GET("/plans/:id", c.plan.GetPlan)
	rg.POST("/plans/:id/enroll", c.enrollment.EnrollInPlan)
	rg.POST("/plans/:id/unenroll", c.enrollment.UnenrollFromPlan)

	// 课程报名与进度
	rg.POST("/enroll", c.enrollment.Enroll)
	rg.POST("/unenroll", c.enrollment.Unenroll)
	rg.GET("/progress", c.enrollment.ListProgress)
	rg.GET("/progress/:id", c.enrollment.GetProgress)
	rg.PUT("/progress/:id", c.enrollment.UpdateProgress)
	rg.POST("/progress/:id/complete", c.enrollment.Complete)
	rg.POST("/progress/:id/reset", c.enrollment.ResetProgress)

	// 培训
	rg.GET("/trainings", c.training.ListTrainings)
	rg.GET("/trainings/:id", c.training.GetTraining)
	rg.GET("/trainings/:id/sessions", c.training.ListSessions)

	// 培训申请
	rg.POST("/apply", c.application.Apply)
	rg.GET("/applications", c.application.ListApplications)
	rg.GET("/applications/:id", c.application.GetApplication)
	rg.POST("/applications/:id/cancel", c.application.Cancel)

	// 结业与评价
	rg.GET("/completions", c.completion.ListCompletions)
	rg.GET("/completions/:id", c.completion.GetCompletion)
	rg.GET("/completions/:id/certificates", c.completion.ListCertificates)
	rg.PUT("/applications/:id/feedback", c.completion.SubmitFeedback)
	rg.GET("/applications/:id/feedback", c.completion.GetFeedback)
	rg.PUT("/applications/:id/assessment", c.completion.SubmitAssessment)
	rg.GET("/applications/:id/assessment", c.completion.GetAssessment)
	rg.PUT("/applications/:id/performance-note", c.completion.SubmitPerformanceNote)
	rg.GET("/applications/:id/performance-note", c.completion.GetPerformanceNote)

	// 员工档案
	rg.GET("/employees/:id", c.employee.GetEmployee)
	rg.POST("/employees/:id/photo", c.employee.UploadPhoto)

	// 统计分析
	rg.GET("/analytics/plans/:id/users/:userId", c.analytics.GetPlanProgress)
	rg.GET("/analytics/users/:userId/streak", c.analytics.GetLearningStreak)
	rg.GET("/analytics/users/:userId/summary", c.analytics.GetUserSummary)
	rg.GET("/analytics/trainings/:id", c.analytics.GetTrainingStats)
	rg.GET("/analytics/courses/:id", c.analytics.GetCourseAnalytics)
}

func (a *App) registerHRRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/courses", c.course.CreateCourse)
	rg.PUT("/courses/:id", c.course.UpdateCourse)

	rg.POST("/plans", c.plan.CreatePlan)
	rg.PUT("/plans/:id", c.plan.UpdatePlan)
	rg.DELETE("/plans/:id", c.plan.DeletePlan)

	rg.POST("/trainings", c.training.CreateTraining)
	rg.PUT("/trainings/:id", c.training.UpdateTraining)
	rg.DELETE("/trainings/:id", c.training.DeactivateTraining)
	rg.POST("/trainings/:id/sessions", c.training.CreateSession)
	rg.PUT("/trainings/:id/sessions/:sessionId", c.training.UpdateSession)
	rg.DELETE("/trainings/:id/sessions/:sessionId", c.training.DeleteSession)

	rg.POST("/applications/:id/approve", c.application.Approve)
	rg.POST("/applications/:id/reject", c.application.Reject)

	rg.POST("/completions", c.completion.CreateCompletion)
	rg.POST("/completions/:id/certificates", c.completion.IssueCertificate)

	rg.GET("/employees", c.employee.ListEmployees)
	rg.GET("/employees/directory", c.employee.ListWithDirectory)
	rg.POST("/employees", c.employee.CreateEmployee)
	rg.PUT("/employees/:id", c.employee.UpdateEmployee)
	rg.DELETE("/employees/:id", c.employee.DeleteEmployee)

	rg.GET("/events/ws", c.events.StreamEvents)

	rg.GET("/admin/courses/:id/reconcile", c.admin.CheckCourse)
	rg.POST("/admin/reconcile", c.admin.ReconcileAll)
}

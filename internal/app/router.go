package app

import (
	"taskora_backend/docs"
	"taskora_backend/internal/config"
	"taskora_backend/internal/middleware"
	"taskora_backend/internal/model"

	"taskora_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerCompetitionRoutes(authGroup, c, repos)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Health)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/verify-email", c.auth.VerifyEmail)
		public.POST("/forgot-password", c.auth.ForgotPassword)
		public.POST("/reset-password", c.auth.ResetPassword)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/user", c.user.UpdateProfile)
	rg.POST("/user/avatar", c.user.UploadAvatar)

	// 项目
	rg.POST("/projects", c.project.CreateProject)
	rg.GET("/projects", c.project.ListProjects)
	rg.GET("/projects/:uuid", c.project.GetProject)
	rg.GET("/projects/:uuid/tasks", c.project.GetProjectTasks)
	rg.PUT("/projects/:uuid", c.project.UpdateProject)
	rg.DELETE("/projects/:uuid", c.project.DeleteProject)

	// 任务
	rg.POST("/tasks", c.task.CreateTask)
	rg.GET("/tasks", c.task.ListTasks)
	rg.GET("/tasks/:uuid", c.task.GetTask)
	rg.PUT("/tasks/:uuid", c.task.UpdateTask)
	rg.PATCH("/tasks/:uuid/status", c.task.UpdateTaskStatus)
	rg.DELETE("/tasks/:uuid", c.task.DeleteTask)

	// 标签
	rg.POST("/tags", c.tag.CreateTag)
	rg.GET("/tags", c.tag.ListTags)
	rg.PUT("/tags/:uuid", c.tag.UpdateTag)
	rg.DELETE("/tags/:uuid", c.tag.DeleteTag)

	// 状态字典
	rg.GET("/statuses", c.status.ListStatuses)
	rg.POST("/statuses", middleware.RoleMiddleware(model.RoleAdmin), c.status.CreateStatuses)
}

func (a *App) registerCompetitionRoutes(rg *gin.RouterGroup, c *controllers, repos *repositories) {
	competition := rg.Group("/competition")
	{
		// 提交答案要求邮箱已验证，查名单只要求登录
		competition.POST("/submit-answer", middleware.VerifiedMiddleware(repos.user), c.competition.SubmitAnswer)
		competition.GET("/winners", c.competition.GetWinners)

		admin := competition.Group("/")
		admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
		{
			admin.POST("/start", c.competition.StartChallenge)
			admin.POST("/end", c.competition.EndChallenge)
		}
	}
}

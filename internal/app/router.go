package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"corp_edu_backend/docs"
	"corp_edu_backend/internal/config"
	"corp_edu_backend/internal/middleware"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/pkg/monitoring"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.ActivityMiddleware(repos.user, activityInterval))
	{
		a.registerLearnerRoutes(authGroup, c)

		// 3. 管理员接口
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile", c.auth.UpdateProfile)
	rg.POST("/profile/avatar", c.auth.UploadAvatar)

	courses := rg.Group("/courses")
	{
		courses.GET("", c.content.ListCourses)
		courses.GET("/search", c.content.SearchCourses)
		courses.GET("/:id", c.learning.ViewCourse)
		courses.POST("/:id/modules/:moduleId/complete", c.learning.CompleteModule)
		courses.POST("/:id/quiz", c.learning.SubmitQuiz)
		courses.POST("/:id/reviews", c.learning.RateCourse)
		courses.GET("/:id/certificate", c.learning.GetCertificate)

		// 讨论区
		courses.GET("/:id/discussion", c.community.GetThread)
		courses.POST("/:id/discussion", c.community.CreatePost)
		courses.POST("/:id/discussion/:postId/replies", c.community.Reply)
	}

	rg.GET("/progress", c.learning.MyProgress)
	rg.GET("/leaderboard", c.user.Leaderboard)
	rg.GET("/badges", c.learning.Badges)

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", c.notification.GetNotifications)
		notifications.GET("/unread-count", c.notification.UnreadCount)
		notifications.POST("/read", c.notification.MarkAllRead)
	}
	rg.GET("/ws/notifications", c.notification.Subscribe)

	rg.GET("/categories", c.category.ListCategories)
	rg.GET("/resources", c.resource.ListResources)
	rg.POST("/assistant/chat", c.assistant.Chat)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
	{
		// 用户管理
		admin.GET("/users", c.user.GetUsers)
		admin.POST("/users", c.user.CreateUser)
		admin.PUT("/users/:id", c.user.UpdateUser)
		admin.POST("/users/:id/approve", c.user.ApproveUser)
		admin.DELETE("/users/:id", c.user.DeleteUser)
		admin.PUT("/users/:id/points", c.user.SetPoints)

		// 课程管理
		admin.POST("/courses", c.content.CreateCourse)
		admin.GET("/courses/:id", c.content.GetCourse)
		admin.PUT("/courses/:id", c.content.UpdateCourse)
		admin.DELETE("/courses/:id", c.content.DeleteCourse)
		admin.DELETE("/courses/:id/discussion", c.community.DeleteDiscussion)

		admin.POST("/uploads/video", c.content.UploadVideo)
		admin.POST("/uploads/textbook", c.content.UploadTextbook)
		admin.POST("/uploads/image", c.content.UploadImage)

		admin.POST("/categories", c.category.CreateCategory)
		admin.PUT("/categories/:id", c.category.RenameCategory)
		admin.DELETE("/categories/:id", c.category.DeleteCategory)

		admin.POST("/resources", c.resource.CreateResource)
		admin.PUT("/resources/:id", c.resource.UpdateResource)
		admin.DELETE("/resources/:id", c.resource.DeleteResource)

		admin.POST("/notifications", c.notification.SendAdminMessage)

		// 报表与统计
		admin.GET("/reports/users", c.analytics.UserReport)
		admin.GET("/reports/completions", c.analytics.CompletionReport)
		admin.GET("/reports/performance", c.analytics.PerformanceReport)
		admin.GET("/analytics/overview", c.analytics.Overview)
		admin.GET("/analytics/progress", c.analytics.LearnerProgress)
		admin.GET("/analytics/topics", c.analytics.DiscussionTopics)

		// 内容助手
		admin.POST("/assistant/draft", c.assistant.DraftCourse)
		admin.POST("/assistant/draft-from-text", c.assistant.DraftFromText)
		admin.POST("/assistant/quiz", c.assistant.GenerateQuiz)
	}
}

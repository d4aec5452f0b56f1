package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigwork-backend/internal/config"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/http/middleware"
	"github.com/ignatzorin/gigwork-backend/internal/interface/http/handler"
)

// Handlers собирает все HTTP-обработчики приложения.
type Handlers struct {
	Worker *handler.WorkerHandler
	Admin  *handler.AdminHandler
	Task   *handler.TaskHandler
	Health *handler.HealthHandler
	WS     *handler.WSHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")
	api.GET("/ws", h.WS.Handle)

	// Вход и регистрация ограничены по частоте запросов.
	auth := api.Group("")
	auth.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		auth.POST("/workers/register", h.Worker.Register)
		auth.POST("/workers/login", h.Worker.Login)
		auth.POST("/admin/login", h.Admin.Login)
	}

	api.GET("/tasks", h.Task.ListTasks)
	api.GET("/tasks/available", h.Task.ListAvailableTasks)
	api.GET("/tasks/:id", middleware.UUIDValidator("id"), h.Task.GetTask)

	me := api.Group("/me")
	me.Use(middleware.AuthMiddleware(tokens), middleware.RequireRole(valueobject.RoleWorker))
	{
		me.GET("", h.Worker.Me)
		me.GET("/stats", h.Worker.Stats)
		me.GET("/prediction", h.Worker.PredictMyHours)

		me.POST("/sessions/start", h.Worker.StartSession)
		me.POST("/sessions/stop", h.Worker.StopSession)
		me.POST("/breaks/start", h.Worker.StartBreak)
		me.POST("/breaks/end", h.Worker.EndBreak)

		me.GET("/tasks/recommended", h.Worker.RecommendedTasks)
		me.GET("/tasks/active", h.Worker.ActiveTasks)
		me.GET("/tasks/completed", h.Worker.CompletedTasks)
		me.POST("/tasks/:id/accept", middleware.UUIDValidator("id"), h.Task.AcceptTask)
		me.POST("/tasks/:id/start", middleware.UUIDValidator("id"), h.Task.StartTask)
		me.POST("/tasks/:id/complete", middleware.UUIDValidator("id"), h.Task.CompleteTask)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens), middleware.RequireRole(valueobject.RoleAdmin))
	{
		admin.GET("/workers", h.Admin.ListWorkers)
		admin.GET("/workers/:id", middleware.UUIDValidator("id"), h.Admin.GetWorker)
		admin.POST("/workers/:id/accept", middleware.UUIDValidator("id"), h.Admin.ApproveWorker)
		admin.POST("/workers/:id/reject", middleware.UUIDValidator("id"), h.Admin.RejectWorker)
		admin.GET("/workers/:id/prediction", middleware.UUIDValidator("id"), h.Admin.PredictWorkerHours)

		admin.POST("/tasks", h.Task.CreateTask)
		admin.POST("/tasks/:id/publish", middleware.UUIDValidator("id"), h.Task.PublishTask)
		admin.POST("/tasks/:id/cancel", middleware.UUIDValidator("id"), h.Task.CancelTask)
		admin.POST("/tasks/:id/assign", middleware.UUIDValidator("id"), h.Task.AssignTask)
		admin.POST("/tasks/:id/complete", middleware.UUIDValidator("id"), h.Task.CompleteTask)
		admin.POST("/tasks/:id/rate", middleware.UUIDValidator("id"), h.Task.RateTask)
		admin.GET("/tasks/:id/candidates", middleware.UUIDValidator("id"), h.Task.Candidates)
		admin.GET("/tasks/:id/best-worker", middleware.UUIDValidator("id"), h.Task.BestWorker)

		admin.GET("/analytics", h.Admin.Analytics)

		if cfg.IsDevelopment() {
			admin.POST("/seed", h.Admin.Seed)
		}
	}

	return r
}

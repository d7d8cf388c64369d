package app

import (
	"github.com/umutakksy/task-floww/internal/auth"
	"github.com/umutakksy/task-floww/internal/cache"
	"github.com/umutakksy/task-floww/internal/config"
	"github.com/umutakksy/task-floww/internal/events"
	"github.com/umutakksy/task-floww/internal/handlers"
	"github.com/umutakksy/task-floww/internal/repo"
	"github.com/umutakksy/task-floww/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log *zap.Logger, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	sessionStore := auth.NewStore(rdb, cfg.Redis.SessionTTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc)
	registerAuthRoutes(api, authHandler)

	protected := api.Group("", auth.RequireSession(sessionStore))

	userHandler := handlers.NewUserHandler(userSvc)
	protected.GET("/users", userHandler.List)

	folderRepo := repo.NewPGFolderRepo(db)
	treeCache := cache.NewTreeCache(rdb, cfg.Redis.TreeTTL.Duration())
	folderSvc := service.NewFolderService(folderRepo, treeCache, log)
	registerFolderRoutes(protected, handlers.NewFolderHandler(folderSvc))

	taskRepo := repo.NewPGTaskRepo(db)
	assignmentRepo := repo.NewPGAssignmentRepo(db)
	sink := events.NewLogSink(log)
	taskSvc := service.NewTaskService(taskRepo, assignmentRepo, sink, log)
	registerTaskRoutes(protected, handlers.NewTaskHandler(taskSvc))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Task Floww API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
}

func registerFolderRoutes(api *gin.RouterGroup, h *handlers.FolderHandler) {
	api.POST("/folders", h.Create)
	api.GET("/folders/tree", h.Tree)
	api.PATCH("/folders/:id", h.Update)
	api.DELETE("/folders/:id", h.Delete)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.POST("/tasks", h.Create)
	api.GET("/tasks/folder/:folderId", h.ListByFolder)
	api.GET("/tasks/assigned", h.Assigned)
	api.POST("/tasks/:id/assign/:userId", h.ToggleAssignee)
	api.PATCH("/tasks/:id/status", h.UpdateStatus)
	api.PATCH("/tasks/:id/progress", h.UpdateProgress)
	api.PATCH("/tasks/:id/priority", h.UpdatePriority)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
}

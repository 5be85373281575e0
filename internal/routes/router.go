// Package routesはroutingを行います。
package routes

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mi-todoes/backend/internal/config"
	"mi-todoes/backend/internal/handlers"
	"mi-todoes/backend/internal/repositories"
	"mi-todoes/backend/internal/services"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(db *sql.DB, cfg config.Config) *gin.Engine {
	r := gin.Default()

	// CORS対策
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(RateLimitMiddleware(cfg.Limiter))

	// リポジトリ
	todoRepo := repositories.NewTodoRepository(db)
	subtaskRepo := repositories.NewSubtaskRepository(db)
	noteRepo := repositories.NewNoteRepository(db)
	postRepo := repositories.NewPostRepository(db)
	userRepo := repositories.NewUserRepository(db)
	resetRepo := repositories.NewMySQLResetTokenRepo(db)

	// サービス
	todoService := services.NewTodoService(todoRepo, subtaskRepo, noteRepo)
	statsService := services.NewStatsService(todoRepo, subtaskRepo)
	postService := services.NewPostService(postRepo)
	mailService := services.NewMailService(cfg.SMTP)
	userService := services.NewUserService(userRepo, resetRepo, mailService, cfg.FrontendURL)
	jwtService := services.NewJWTService(cfg.JWTSecret)

	// ハンドラー
	userHandler := handlers.NewUserHandler(userService, jwtService)
	todoHandler := handlers.NewTodoHandler(todoService)
	statsHandler := handlers.NewStatsHandler(statsService)
	postHandler := handlers.NewPostHandler(postService)

	// ルーティング
	r.GET("/api/hello", HelloHandler)
	r.GET("/api/dbcheck", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Database connection failed", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy"})
	})
	r.POST("/api/register", userHandler.RegisterHandler)
	r.POST("/api/login", userHandler.LoginHandler)
	r.POST("/api/forgot-password", userHandler.ForgotPasswordHandler)
	r.POST("/api/reset-password/:token", userHandler.ResetPasswordHandler)

	authorized := r.Group("/")
	authorized.Use(AuthMiddleware(jwtService))
	{
		authorized.GET("/api/todos", todoHandler.GetTodosHandler)
		authorized.GET("/api/todos/stats/overview", statsHandler.GetStatsHandler)
		authorized.GET("/api/stats", statsHandler.GetStatsHandler)
		authorized.GET("/api/todos/:id", todoHandler.GetTodoByIDHandler)
		authorized.POST("/api/todos", todoHandler.CreateTodoHandler)
		authorized.PUT("/api/todos/:id", todoHandler.UpdateTodoHandler)
		authorized.DELETE("/api/todos/:id", todoHandler.DeleteTodoHandler)

		authorized.POST("/api/todos/:id/subtasks", todoHandler.CreateSubtaskHandler)
		authorized.PUT("/api/todos/:id/subtasks/:subtaskId", todoHandler.UpdateSubtaskHandler)
		authorized.DELETE("/api/todos/:id/subtasks/:subtaskId", todoHandler.DeleteSubtaskHandler)

		authorized.POST("/api/todos/:id/notes", todoHandler.CreateNoteHandler)
		authorized.DELETE("/api/todos/:id/notes/:noteId", todoHandler.DeleteNoteHandler)

		authorized.GET("/api/posts", postHandler.GetPostsHandler)
		authorized.GET("/api/posts/:id", postHandler.GetPostByIDHandler)
		authorized.POST("/api/posts", postHandler.CreatePostHandler)
		authorized.PUT("/api/posts/:id", postHandler.UpdatePostHandler)
		authorized.DELETE("/api/posts/:id", postHandler.DeletePostHandler)

		authorized.GET("/api/protected", userHandler.ProtectedHandler) // テスト用
	}

	return r
}

func HelloHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from Mi Todoes Backend!"})
}
